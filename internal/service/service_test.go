package service_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/zlog"

	"ticketdesk/internal/api/api"
	"ticketdesk/internal/browse"
	"ticketdesk/internal/dto"
	"ticketdesk/internal/model"
	"ticketdesk/internal/service"
	"ticketdesk/internal/translation"
	"ticketdesk/internal/upstream"
)

func TestMain(m *testing.M) {
	zlog.Init()
	m.Run()
}

// fakeTicketing stands in for the remote ticketing service.
type fakeTicketing struct {
	mu       sync.Mutex
	events   []model.Event
	tickets  []model.Ticket
	created  []map[string]any
	updated  map[string]map[string]any
	failWith string // when set, every request answers 500 with this reason
}

func (f *fakeTicketing) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/events", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failWith != "" {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": f.failWith})
			return
		}
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(f.events)
		case http.MethodPost:
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			f.created = append(f.created, body)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{"id": body["id"]})
		}
	})
	mux.HandleFunc("/api/admin/events/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := strings.TrimPrefix(r.URL.Path, "/api/admin/events/")
		switch r.Method {
		case http.MethodGet:
			for _, ev := range f.events {
				if ev.ID == id {
					json.NewEncoder(w).Encode(ev)
					return
				}
			}
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "event not found"})
		case http.MethodPut:
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			if f.updated == nil {
				f.updated = make(map[string]map[string]any)
			}
			f.updated[id] = body
			json.NewEncoder(w).Encode(map[string]any{"id": id})
		case http.MethodDelete:
			json.NewEncoder(w).Encode(map[string]any{})
		}
	})
	mux.HandleFunc("/api/admin/tickets", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		scope := r.URL.Query().Get("eventId")
		out := make([]model.Ticket, 0, len(f.tickets))
		for _, t := range f.tickets {
			if scope == "" || t.EventID == scope {
				out = append(out, t)
			}
		}
		json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("/api/tickets/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{})
	})
	mux.HandleFunc("/api/admin/statistics", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.Statistics{
			Languages: []model.LanguageCount{{Language: "fr", Count: 12}},
		})
	})
	return mux
}

type envelope struct {
	Status string `json:"status"`
	Error  *struct {
		Code string `json:"code"`
		Desc string `json:"desc"`
	} `json:"error"`
	Data json.RawMessage `json:"data"`
}

type testApp struct {
	fake   *fakeTicketing
	server *httptest.Server
	client *http.Client
}

func newTestApp(t *testing.T, fake *fakeTicketing) *testApp {
	t.Helper()

	backend := httptest.NewServer(fake.handler())
	t.Cleanup(backend.Close)

	logger := zerolog.Nop()
	svc := service.NewService(upstream.New(backend.URL, &logger), &logger, nil)
	app := api.NewRouters(&api.Routers{Service: svc})

	front := httptest.NewServer(app)
	t.Cleanup(front.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &testApp{
		fake:   fake,
		server: front,
		client: &http.Client{Jar: jar},
	}
}

func (a *testApp) do(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s %s response: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func sampleEvent() model.Event {
	return model.Event{
		ID:    "wine-tasting",
		Date:  time.Date(2026, 1, 31, 18, 30, 0, 0, time.UTC),
		Price: 35,
		Translations: []model.Translation{
			{Locale: "fr", Title: "Dégustation"},
			{Locale: "en", Title: "Tasting"},
		},
	}
}

func TestListEventsDecoratesForDisplay(t *testing.T) {
	app := newTestApp(t, &fakeTicketing{events: []model.Event{sampleEvent()}})

	code, env := app.do(t, http.MethodGet, "/v1/events", nil)
	if code != http.StatusOK || env.Status != "ok" {
		t.Fatalf("code %d, status %q", code, env.Status)
	}

	var items []struct {
		ID           string `json:"id"`
		DisplayTitle string `json:"display_title"`
		DisplayDate  string `json:"display_date"`
		DisplayTime  string `json:"display_time"`
	}
	if err := json.Unmarshal(env.Data, &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items", len(items))
	}
	if items[0].DisplayTitle != "Dégustation" {
		t.Errorf("display title = %q, want the French one", items[0].DisplayTitle)
	}
	if items[0].DisplayDate != "31/01/2026" || items[0].DisplayTime != "19:30" {
		t.Errorf("display date/time = %q %q", items[0].DisplayDate, items[0].DisplayTime)
	}
}

func TestUpstreamFailureIsReportedNotRetried(t *testing.T) {
	app := newTestApp(t, &fakeTicketing{failWith: "database exploded"})

	code, env := app.do(t, http.MethodGet, "/v1/events", nil)
	if code != http.StatusBadGateway {
		t.Fatalf("code = %d, want 502", code)
	}
	if env.Error == nil || env.Error.Code != dto.UpstreamFailed {
		t.Fatalf("error = %+v", env.Error)
	}
	if env.Error.Desc != "database exploded" {
		t.Errorf("desc = %q, want the reported reason", env.Error.Desc)
	}
}

func ticketsPage(t *testing.T, env envelope) dto.TicketPage {
	t.Helper()
	var page dto.TicketPage
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatal(err)
	}
	return page
}

func TestBrowseTickets(t *testing.T) {
	fake := &fakeTicketing{}
	for i := 0; i < 60; i++ {
		name := fmt.Sprintf("Guest %02d", i)
		if i < 3 {
			name = fmt.Sprintf("Alice %02d", i)
		}
		fake.tickets = append(fake.tickets, model.Ticket{
			TicketID:      fmt.Sprintf("tk-%02d", i),
			EventID:       "wine-tasting",
			CustomerName:  name,
			CustomerEmail: fmt.Sprintf("guest%02d@example.com", i),
		})
	}
	app := newTestApp(t, fake)

	_, env := app.do(t, http.MethodGet, "/v1/tickets", nil)
	page := ticketsPage(t, env)
	if page.TotalCount != 60 || page.FilteredCount != 60 {
		t.Fatalf("counts = %d/%d", page.FilteredCount, page.TotalCount)
	}
	if page.PerPage != browse.DefaultPageSize || page.TotalPages != 3 {
		t.Fatalf("per page %d, total pages %d", page.PerPage, page.TotalPages)
	}

	_, env = app.do(t, http.MethodGet, "/v1/tickets?page=3", nil)
	page = ticketsPage(t, env)
	if page.Page != 3 || len(page.Tickets) != 10 {
		t.Fatalf("page %d with %d tickets, want page 3 with 10", page.Page, len(page.Tickets))
	}

	// Typing a filter lands back on page 1 with only the matches.
	_, env = app.do(t, http.MethodGet, "/v1/tickets?page=3&customer_name=alice", nil)
	page = ticketsPage(t, env)
	if page.Page != 1 {
		t.Errorf("page = %d, want reset to 1", page.Page)
	}
	if page.FilteredCount != 3 || page.TotalCount != 60 {
		t.Errorf("counts = %d/%d, want 3/60", page.FilteredCount, page.TotalCount)
	}

	// Unknown page sizes fall back to the default.
	_, env = app.do(t, http.MethodGet, "/v1/tickets?customer_name=alice&per_page=33", nil)
	page = ticketsPage(t, env)
	if page.PerPage != browse.DefaultPageSize {
		t.Errorf("per page = %d, want %d", page.PerPage, browse.DefaultPageSize)
	}
}

func TestValidateTicket(t *testing.T) {
	app := newTestApp(t, &fakeTicketing{})

	code, env := app.do(t, http.MethodPost, "/v1/tickets/tk-1/validate", map[string]string{})
	if code != http.StatusBadRequest || env.Error == nil || env.Error.Code != dto.FieldIncorrect {
		t.Fatalf("missing validatedBy: code %d, error %+v", code, env.Error)
	}

	code, env = app.do(t, http.MethodPost, "/v1/tickets/tk-1/validate", map[string]string{"validatedBy": "Margaux"})
	if code != http.StatusOK || env.Status != "ok" {
		t.Fatalf("code %d, status %q", code, env.Status)
	}
}

type formView struct {
	State           string   `json:"state"`
	EditingID       string   `json:"editing_id"`
	ImportedLocales []string `json:"imported_locales"`
	CarriedForward  bool     `json:"carried_forward"`
	CanSubmit       bool     `json:"can_submit"`
	TranslationSeed string   `json:"translation_seed"`
}

func view(t *testing.T, env envelope) formView {
	t.Helper()
	var v formView
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestCreateEventFlow(t *testing.T) {
	fake := &fakeTicketing{}
	app := newTestApp(t, fake)

	_, env := app.do(t, http.MethodPost, "/v1/form/new", nil)
	if v := view(t, env); v.State != "editing_new" || v.CanSubmit {
		t.Fatalf("after open: %+v", v)
	}

	_, env = app.do(t, http.MethodGet, "/v1/form/translations/template", nil)
	v := view(t, env)
	if v.State != "importing_translations" {
		t.Fatalf("after template: %+v", v)
	}
	if v.TranslationSeed != translation.Template {
		t.Error("seed for a new event should be the blank template")
	}

	// Malformed JSON leaves the modal open and the form untouched.
	code, env := app.do(t, http.MethodPost, "/v1/form/translations/import", map[string]string{"document": "{broken"})
	if code != http.StatusBadRequest || env.Error == nil || env.Error.Code != dto.InvalidTranslation {
		t.Fatalf("broken import: code %d, error %+v", code, env.Error)
	}

	_, env = app.do(t, http.MethodPost, "/v1/form/translations/import", map[string]string{
		"document": `{"fr": {"title": "Dégustation"}, "en": {"title": "Tasting"}}`,
	})
	v = view(t, env)
	if v.State != "editing_new" || len(v.ImportedLocales) != 2 {
		t.Fatalf("after import: %+v", v)
	}

	code, env = app.do(t, http.MethodPost, "/v1/form/submit", map[string]any{
		"id":             "wine-tasting",
		"date":           "2026-01-31T19:30",
		"price":          "35",
		"capacity":       "40",
		"display_places": true,
	})
	if code != http.StatusCreated || env.Status != "ok" {
		t.Fatalf("submit: code %d, status %q, error %+v", code, env.Status, env.Error)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.created) != 1 {
		t.Fatalf("backend saw %d creates", len(fake.created))
	}
	created := fake.created[0]
	if created["id"] != "wine-tasting" || created["displayPlaces"] != true {
		t.Errorf("created payload = %v", created)
	}
	if created["capacity"] != float64(40) {
		t.Errorf("capacity = %v", created["capacity"])
	}
	if v, ok := created["imageUrl"]; !ok || v != nil {
		t.Errorf("imageUrl should be an explicit null, got %v (present %v)", v, ok)
	}
	if list, ok := created["translations"].([]any); !ok || len(list) != 2 {
		t.Errorf("translations = %v", created["translations"])
	}
}

func TestEditEventFlow(t *testing.T) {
	fake := &fakeTicketing{events: []model.Event{sampleEvent()}}
	app := newTestApp(t, fake)

	_, env := app.do(t, http.MethodPost, "/v1/form/edit/wine-tasting", nil)
	v := view(t, env)
	if v.State != "editing_existing" || v.EditingID != "wine-tasting" {
		t.Fatalf("after open: %+v", v)
	}
	if !v.CarriedForward {
		t.Error("record translations should carry forward before any import")
	}
	if !v.CanSubmit {
		t.Error("prefilled existing event should be submittable")
	}

	_, env = app.do(t, http.MethodGet, "/v1/form/translations/template", nil)
	if seed := view(t, env).TranslationSeed; !strings.Contains(seed, "Dégustation") {
		t.Errorf("seed should hold the record's translations:\n%s", seed)
	}
	if _, env = app.do(t, http.MethodPost, "/v1/form/translations/cancel", nil); view(t, env).State != "editing_existing" {
		t.Fatal("cancel should return to the editor")
	}

	code, env := app.do(t, http.MethodPost, "/v1/form/submit", map[string]any{
		"id":    "ignored-rename-attempt",
		"date":  "2026-02-14T20:00",
		"price": "42",
	})
	if code != http.StatusOK || env.Status != "ok" {
		t.Fatalf("submit: code %d, error %+v", code, env.Error)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	body, ok := fake.updated["wine-tasting"]
	if !ok {
		t.Fatalf("backend saw updates for %v, want wine-tasting", fake.updated)
	}
	if body["id"] != "wine-tasting" {
		t.Errorf("id = %v, the record id is immutable", body["id"])
	}
	if body["price"] != float64(42) {
		t.Errorf("price = %v", body["price"])
	}
}

func TestFormGuards(t *testing.T) {
	app := newTestApp(t, &fakeTicketing{})

	code, env := app.do(t, http.MethodGet, "/v1/form/translations/template", nil)
	if code != http.StatusBadRequest || env.Error == nil || env.Error.Code != dto.FormStateInvalid {
		t.Fatalf("template without form: code %d, error %+v", code, env.Error)
	}

	code, env = app.do(t, http.MethodPost, "/v1/form/submit", map[string]any{
		"id": "ev", "date": "2026-01-31T19:30", "price": "35",
	})
	if code != http.StatusBadRequest || env.Error == nil || env.Error.Code != dto.FormStateInvalid {
		t.Fatalf("submit without form: code %d, error %+v", code, env.Error)
	}

	// A new event with no translation import is incomplete, not saved.
	app.do(t, http.MethodPost, "/v1/form/new", nil)
	code, env = app.do(t, http.MethodPost, "/v1/form/submit", map[string]any{
		"id": "ev", "date": "2026-01-31T19:30", "price": "35",
	})
	if code != http.StatusBadRequest || env.Error == nil || env.Error.Code != dto.FormIncomplete {
		t.Fatalf("submit without import: code %d, error %+v", code, env.Error)
	}

	code, env = app.do(t, http.MethodPost, "/v1/form/submit", map[string]any{"id": "ev"})
	if code != http.StatusBadRequest || env.Error == nil || env.Error.Code != dto.FieldIncorrect {
		t.Fatalf("missing required fields: code %d, error %+v", code, env.Error)
	}

	_, env = app.do(t, http.MethodPost, "/v1/form/cancel", nil)
	if v := view(t, env); v.State != "idle" {
		t.Fatalf("after cancel: %+v", v)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	app := newTestApp(t, &fakeTicketing{})
	app.do(t, http.MethodPost, "/v1/form/new", nil)

	other := &http.Client{}
	resp, err := other.Get(app.server.URL + "/v1/form/translations/template")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("fresh session saw another session's form: code %d", resp.StatusCode)
	}
}

func TestStatisticsAndOverview(t *testing.T) {
	fake := &fakeTicketing{
		events: []model.Event{sampleEvent()},
		tickets: []model.Ticket{
			{TicketID: "tk-1", EventID: "wine-tasting", AmountPaid: 35, CreatedAt: time.Now()},
		},
	}
	app := newTestApp(t, fake)

	code, env := app.do(t, http.MethodGet, "/v1/statistics", nil)
	if code != http.StatusOK {
		t.Fatalf("statistics: code %d", code)
	}
	var s model.Statistics
	if err := json.Unmarshal(env.Data, &s); err != nil {
		t.Fatal(err)
	}
	if len(s.Languages) != 1 || s.Languages[0].Language != "fr" {
		t.Errorf("statistics = %+v", s)
	}

	code, env = app.do(t, http.MethodGet, "/v1/overview", nil)
	if code != http.StatusOK {
		t.Fatalf("overview: code %d", code)
	}
	var o struct {
		TotalEvents  int     `json:"total_events"`
		TotalTickets int     `json:"total_tickets"`
		TotalRevenue float64 `json:"total_revenue"`
	}
	if err := json.Unmarshal(env.Data, &o); err != nil {
		t.Fatal(err)
	}
	if o.TotalEvents != 1 || o.TotalTickets != 1 || o.TotalRevenue != 35 {
		t.Errorf("overview = %+v", o)
	}
}

func TestExportTranslations(t *testing.T) {
	app := newTestApp(t, &fakeTicketing{events: []model.Event{sampleEvent()}})

	code, env := app.do(t, http.MethodGet, "/v1/events/wine-tasting/translations", nil)
	if code != http.StatusOK {
		t.Fatalf("code %d", code)
	}
	var out map[string]string
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out["document"], `"Dégustation"`) {
		t.Errorf("document = %s", out["document"])
	}

	code, env = app.do(t, http.MethodGet, "/v1/events/missing/translations", nil)
	if code != http.StatusBadGateway || env.Error == nil || env.Error.Desc != "event not found" {
		t.Errorf("missing event: code %d, error %+v", code, env.Error)
	}
}
