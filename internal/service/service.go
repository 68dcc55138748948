package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"ticketdesk/internal/audit"
	"ticketdesk/internal/dates"
	"ticketdesk/internal/dto"
	"ticketdesk/internal/form"
	"ticketdesk/internal/model"
	"ticketdesk/internal/stats"
	"ticketdesk/internal/translation"
	"ticketdesk/internal/upstream"
	"ticketdesk/pkg/validator"
)

// actorName identifies the dashboard operator in validations and audit
// entries until real accounts exist behind the session boundary.
const actorName = "admin"

type Service interface {
	ListEvents(ctx *ginext.Context)
	GetEvent(ctx *ginext.Context)
	DeleteEvent(ctx *ginext.Context)
	ExportTranslations(ctx *ginext.Context)
	BrowseTickets(ctx *ginext.Context)
	ValidateTicket(ctx *ginext.Context)
	GetStatistics(ctx *ginext.Context)
	GetOverview(ctx *ginext.Context)
	OpenNewForm(ctx *ginext.Context)
	OpenEditForm(ctx *ginext.Context)
	TranslationTemplate(ctx *ginext.Context)
	ImportTranslations(ctx *ginext.Context)
	CancelImport(ctx *ginext.Context)
	SubmitForm(ctx *ginext.Context)
	CancelForm(ctx *ginext.Context)
}

type service struct {
	api      *upstream.Client
	log      *zerolog.Logger
	aud      *audit.Publisher
	sessions *sessionStore
}

func NewService(api *upstream.Client, logger *zerolog.Logger, aud *audit.Publisher) Service {
	return &service{
		api:      api,
		log:      logger,
		aud:      aud,
		sessions: newSessionStore(),
	}
}

// upstreamError surfaces a failed ticketing service call with its reported
// reason. Nothing is retried; the in-progress action is lost, the rest of
// the dashboard keeps working.
func (s *service) upstreamError(ctx *ginext.Context, err error, msg string) {
	s.log.Error().Err(err).Msg(msg)
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		dto.UpstreamError(ctx, apiErr.Reason)
		return
	}
	if errors.Is(err, upstream.ErrUnavailable) {
		dto.UpstreamError(ctx, dto.InternalError)
		return
	}
	dto.InternalServerError(ctx)
}

func (s *service) ListEvents(ctx *ginext.Context) {
	events, err := s.api.Events(ctx.Request.Context())
	if err != nil {
		s.upstreamError(ctx, err, "failed to list events")
		return
	}

	items := make([]dto.EventListItem, 0, len(events))
	for _, ev := range events {
		items = append(items, dto.EventListItem{
			Event:        ev,
			DisplayTitle: stats.EventTitle(ev),
			DisplayDate:  dates.FormatDate(ev.Date),
			DisplayTime:  dates.FormatTime(ev.Date),
		})
	}
	dto.SuccessResponse(ctx, items)
}

func (s *service) GetEvent(ctx *ginext.Context) {
	event, err := s.api.Event(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		s.upstreamError(ctx, err, "failed to get event")
		return
	}
	dto.SuccessResponse(ctx, event)
}

func (s *service) DeleteEvent(ctx *ginext.Context) {
	id := ctx.Param("id")
	if err := s.api.DeleteEvent(ctx.Request.Context(), id); err != nil {
		s.upstreamError(ctx, err, "failed to delete event")
		return
	}
	s.log.Info().Str("event_id", id).Msg("event deleted")
	s.aud.Record(actorName, audit.ActionEventDeleted, id)
	dto.SuccessResponse(ctx, nil)
}

func (s *service) ExportTranslations(ctx *ginext.Context) {
	event, err := s.api.Event(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		s.upstreamError(ctx, err, "failed to get event for export")
		return
	}
	doc, err := translation.Export(event.Translations)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to export translations")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, map[string]string{"document": doc})
}

// BrowseTickets drives the ticket table: reloads from the ticketing
// service when the event scope changes, then applies the text filters and
// pagination to the in-memory list. The browser's load token drops a slow
// response for an older scope instead of letting it overwrite a newer one.
func (s *service) BrowseTickets(ctx *ginext.Context) {
	sess := s.session(ctx)
	scope := ctx.Query("event_id")

	sess.mu.Lock()
	br := sess.browser
	if !br.Loaded() || br.Scope() != scope || ctx.Query("refresh") == "true" {
		tok := br.BeginLoad(scope)
		sess.mu.Unlock()

		tickets, err := s.api.Tickets(ctx.Request.Context(), scope)
		if err != nil {
			s.upstreamError(ctx, err, "failed to load tickets")
			return
		}

		sess.mu.Lock()
		if !br.CompleteLoad(tok, tickets) {
			s.log.Debug().Str("scope", scope).Msg("dropped stale ticket load")
		}
	}

	br.SetFilters(ctx.Query("customer_name"), ctx.Query("customer_email"))
	if v := ctx.Query("per_page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			br.SetPerPage(n)
		}
	}
	if v := ctx.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			br.GoToPage(n)
		}
	}

	page := dto.TicketPage{
		Tickets:       br.Page(),
		Page:          br.CurrentPage(),
		PerPage:       br.PerPage(),
		TotalPages:    br.TotalPages(),
		FilteredCount: br.FilteredCount(),
		TotalCount:    br.TotalCount(),
		PageTokens:    br.Tokens(),
	}
	sess.mu.Unlock()

	dto.SuccessResponse(ctx, page)
}

func (s *service) ValidateTicket(ctx *ginext.Context) {
	var req dto.ValidateTicketRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	id := ctx.Param("id")
	if err := s.api.ValidateTicket(ctx.Request.Context(), id, req.ValidatedBy); err != nil {
		s.upstreamError(ctx, err, "failed to validate ticket")
		return
	}
	s.log.Info().Str("ticket_id", id).Str("validated_by", req.ValidatedBy).Msg("ticket validated")
	s.aud.Record(req.ValidatedBy, audit.ActionTicketValidated, id)
	dto.SuccessResponse(ctx, nil)
}

func (s *service) GetStatistics(ctx *ginext.Context) {
	statistics, err := s.api.Statistics(ctx.Request.Context())
	if err != nil {
		s.upstreamError(ctx, err, "failed to load statistics")
		return
	}
	dto.SuccessResponse(ctx, stats.TopFive(*statistics))
}

func (s *service) GetOverview(ctx *ginext.Context) {
	events, err := s.api.Events(ctx.Request.Context())
	if err != nil {
		s.upstreamError(ctx, err, "failed to load events for overview")
		return
	}
	tickets, err := s.api.Tickets(ctx.Request.Context(), "")
	if err != nil {
		s.upstreamError(ctx, err, "failed to load tickets for overview")
		return
	}
	dto.SuccessResponse(ctx, stats.Build(events, tickets, time.Now()))
}

func formView(f *form.Form) dto.FormView {
	view := dto.FormView{
		State:     f.State().String(),
		CanSubmit: f.CanSubmit(),
	}
	if f.State() != form.StateIdle {
		view.Fields = f.Fields()
	}
	if ev := f.Editing(); ev != nil {
		view.EditingID = ev.ID
		view.CarriedForward = f.Imported() == nil
	}
	for _, t := range f.Imported() {
		view.ImportedLocales = append(view.ImportedLocales, t.Locale)
	}
	return view
}

func (s *service) OpenNewForm(ctx *ginext.Context) {
	sess := s.session(ctx)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.form.Cancel()
	if err := sess.form.OpenNew(); err != nil {
		dto.BadResponseError(ctx, dto.FormStateInvalid, err.Error())
		return
	}
	dto.SuccessResponse(ctx, formView(sess.form))
}

func (s *service) OpenEditForm(ctx *ginext.Context) {
	event, err := s.api.Event(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		s.upstreamError(ctx, err, "failed to get event for edit")
		return
	}

	sess := s.session(ctx)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.form.Cancel()
	if err := sess.form.OpenExisting(*event); err != nil {
		dto.BadResponseError(ctx, dto.FormStateInvalid, err.Error())
		return
	}
	dto.SuccessResponse(ctx, formView(sess.form))
}

// TranslationTemplate opens the import modal: it moves the form into the
// importing state and returns the seed document, either the record's
// current translations or the blank scaffold.
func (s *service) TranslationTemplate(ctx *ginext.Context) {
	sess := s.session(ctx)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.form.BeginImport(); err != nil {
		dto.BadResponseError(ctx, dto.FormStateInvalid, "No event form is open")
		return
	}
	seed, err := sess.form.TranslationSeed()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to build translation seed")
		dto.InternalServerError(ctx)
		return
	}
	view := formView(sess.form)
	view.TranslationSeed = seed
	dto.SuccessResponse(ctx, view)
}

func (s *service) ImportTranslations(ctx *ginext.Context) {
	var req dto.ImportTranslationsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	sess := s.session(ctx)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.form.State() != form.StateImportingTranslations {
		dto.BadResponseError(ctx, dto.FormStateInvalid, "The translation import is not open")
		return
	}

	// A parse failure leaves the form exactly where it was: still in the
	// import modal, previous imported set untouched.
	translations, err := translation.Import(req.Document)
	if err != nil {
		dto.BadResponseError(ctx, dto.InvalidTranslation, err.Error())
		return
	}
	if err := sess.form.CompleteImport(translations); err != nil {
		dto.BadResponseError(ctx, dto.FormStateInvalid, err.Error())
		return
	}
	s.log.Info().Int("locales", len(translations)).Msg("translations imported")
	dto.SuccessResponse(ctx, formView(sess.form))
}

func (s *service) CancelImport(ctx *ginext.Context) {
	sess := s.session(ctx)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.form.CancelImport(); err != nil {
		dto.BadResponseError(ctx, dto.FormStateInvalid, "The translation import is not open")
		return
	}
	dto.SuccessResponse(ctx, formView(sess.form))
}

func (s *service) SubmitForm(ctx *ginext.Context) {
	var req dto.SubmitEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	sess := s.session(ctx)
	sess.mu.Lock()

	fields := form.Fields{
		ID:               req.ID,
		Date:             req.Date,
		Price:            req.Price,
		Capacity:         req.Capacity,
		WomenOnly:        req.WomenOnly,
		DisplayPlaces:    req.DisplayPlaces,
		ImageURL:         req.ImageURL,
		ContactInstagram: req.ContactInstagram,
		ContactEmail:     req.ContactEmail,
		Pricing:          req.Pricing,
	}
	if sess.form.State() == form.StateEditingExisting {
		// The id is immutable once created; the form keeps the record's own.
		fields.ID = sess.form.Fields().ID
		fields.Pricing = sess.form.Fields().Pricing
	}
	if err := sess.form.SetFields(fields); err != nil {
		sess.mu.Unlock()
		dto.BadResponseError(ctx, dto.FormStateInvalid, "No event form is open")
		return
	}

	payload, isUpdate, err := sess.form.Submission()
	if err != nil {
		sess.mu.Unlock()
		if errors.Is(err, form.ErrNotSubmittable) {
			dto.BadResponseError(ctx, dto.FormIncomplete, "Translations are required. Import them before saving the event.")
			return
		}
		dto.BadResponseError(ctx, dto.FieldBadFormat, err.Error())
		return
	}
	var editingID string
	if ev := sess.form.Editing(); ev != nil {
		editingID = ev.ID
	}
	sess.mu.Unlock()

	var saved *model.Event
	if isUpdate {
		saved, err = s.api.UpdateEvent(ctx.Request.Context(), editingID, payload)
	} else {
		saved, err = s.api.CreateEvent(ctx.Request.Context(), payload)
	}
	if err != nil {
		// The form stays open with its edits; the operator can retry.
		s.upstreamError(ctx, err, "failed to save event")
		return
	}

	sess.mu.Lock()
	sess.form.Cancel()
	sess.mu.Unlock()

	if isUpdate {
		s.log.Info().Str("event_id", editingID).Msg("event updated")
		s.aud.Record(actorName, audit.ActionEventUpdated, editingID)
		dto.SuccessResponse(ctx, saved)
		return
	}
	s.log.Info().Str("event_id", payload.ID).Msg("event created")
	s.aud.Record(actorName, audit.ActionEventCreated, payload.ID)
	dto.SuccessCreatedResponse(ctx, saved)
}

func (s *service) CancelForm(ctx *ginext.Context) {
	sess := s.session(ctx)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.form.Cancel()
	dto.SuccessResponse(ctx, formView(sess.form))
}
