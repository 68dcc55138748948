// Package form models the event editor as an explicit state machine, so
// impossible combinations (translation modal open with no form behind it,
// submitting a new event without translations) cannot be represented.
package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ticketdesk/internal/dates"
	"ticketdesk/internal/dto"
	"ticketdesk/internal/model"
	"ticketdesk/internal/translation"
)

type State int

const (
	StateIdle State = iota
	StateEditingNew
	StateEditingExisting
	StateImportingTranslations
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditingNew:
		return "editing_new"
	case StateEditingExisting:
		return "editing_existing"
	case StateImportingTranslations:
		return "importing_translations"
	default:
		return "unknown"
	}
}

var (
	ErrBadTransition  = errors.New("transition not allowed from current form state")
	ErrNotSubmittable = errors.New("form is not ready to submit")
)

// Fields holds the scalar inputs exactly as the form controls do: strings
// for anything typed, parsed only at submission.
type Fields struct {
	ID               string         `json:"id"`
	Date             string         `json:"date"`
	Price            string         `json:"price"`
	Capacity         string         `json:"capacity"`
	WomenOnly        bool           `json:"women_only"`
	DisplayPlaces    bool           `json:"display_places"`
	ImageURL         string         `json:"image_url"`
	ContactInstagram string         `json:"contact_instagram"`
	ContactEmail     string         `json:"contact_email"`
	Pricing          *model.Pricing `json:"pricing,omitempty"`
}

// Form tracks one staff member's in-progress event edit.
type Form struct {
	state    State
	beneath  State // editing state the import modal is stacked on
	editing  *model.Event
	fields   Fields
	imported []model.Translation
}

func New() *Form {
	return &Form{state: StateIdle}
}

func (f *Form) State() State                  { return f.state }
func (f *Form) Fields() Fields                { return f.fields }
func (f *Form) Editing() *model.Event         { return f.editing }
func (f *Form) Imported() []model.Translation { return f.imported }

// SetFields replaces the scalar inputs; legal while any editor is open.
func (f *Form) SetFields(fields Fields) error {
	if f.state == StateIdle {
		return ErrBadTransition
	}
	f.fields = fields
	return nil
}

// OpenNew starts a blank form. Places display defaults to on, matching a
// freshly created event.
func (f *Form) OpenNew() error {
	if f.state != StateIdle {
		return ErrBadTransition
	}
	f.state = StateEditingNew
	f.editing = nil
	f.imported = nil
	f.fields = Fields{DisplayPlaces: true}
	return nil
}

// OpenExisting starts an edit with every scalar pre-populated from the
// record; its translations carry forward as the default translation source.
func (f *Form) OpenExisting(ev model.Event) error {
	if f.state != StateIdle {
		return ErrBadTransition
	}
	f.state = StateEditingExisting
	f.editing = &ev
	f.imported = nil
	fields := Fields{
		ID:            ev.ID,
		Date:          dates.FormInput(ev.Date),
		Price:         strconv.FormatFloat(ev.Price, 'f', -1, 64),
		WomenOnly:     ev.WomenOnly,
		DisplayPlaces: ev.DisplayPlaces,
		ImageURL:      ev.ImageURL,
		Pricing:       ev.Pricing,
	}
	if ev.Capacity != nil {
		fields.Capacity = strconv.Itoa(*ev.Capacity)
	}
	if ev.ContactInfo != nil {
		fields.ContactInstagram = ev.ContactInfo.Instagram
		fields.ContactEmail = ev.ContactInfo.Email
	}
	f.fields = fields
	return nil
}

// BeginImport opens the translation modal over the current editor.
func (f *Form) BeginImport() error {
	if f.state != StateEditingNew && f.state != StateEditingExisting {
		return ErrBadTransition
	}
	f.beneath = f.state
	f.state = StateImportingTranslations
	return nil
}

// CompleteImport installs the imported set and returns to the editor. The
// caller parses the document first; a parse failure never reaches here, so
// the previous imported set stays untouched on bad input.
func (f *Form) CompleteImport(translations []model.Translation) error {
	if f.state != StateImportingTranslations {
		return ErrBadTransition
	}
	f.imported = translations
	f.state = f.beneath
	return nil
}

// CancelImport closes the modal without touching the imported set.
func (f *Form) CancelImport() error {
	if f.state != StateImportingTranslations {
		return ErrBadTransition
	}
	f.state = f.beneath
	return nil
}

// Cancel discards everything in progress from any state.
func (f *Form) Cancel() {
	*f = Form{state: StateIdle}
}

// TranslationSeed is what the import modal is pre-filled with: the current
// record's translations exported to the editable document, or the blank
// scaffold when there is nothing to export.
func (f *Form) TranslationSeed() (string, error) {
	if f.editing != nil && len(f.editing.Translations) > 0 {
		return translation.Export(f.editing.Translations)
	}
	return translation.Template, nil
}

// Translations is the set a submission would carry: a fresh import wins,
// otherwise an existing record's translations carry forward.
func (f *Form) Translations() []model.Translation {
	if f.imported != nil {
		return f.imported
	}
	if f.editing != nil {
		return f.editing.Translations
	}
	return nil
}

// CanSubmit gates the submit control: id, date and price present, and a
// translation source available. A brand-new event without an import can
// never pass.
func (f *Form) CanSubmit() bool {
	if f.state != StateEditingNew && f.state != StateEditingExisting {
		return false
	}
	if f.fields.ID == "" || f.fields.Date == "" || f.fields.Price == "" {
		return false
	}
	return f.imported != nil || f.editing != nil
}

// Submission builds the upstream write payload from the current fields and
// translation source. Reports whether the submission updates an existing
// record.
func (f *Form) Submission() (dto.EventPayload, bool, error) {
	if !f.CanSubmit() {
		return dto.EventPayload{}, false, ErrNotSubmittable
	}

	date, err := dates.ParseFormInput(f.fields.Date)
	if err != nil {
		return dto.EventPayload{}, false, fmt.Errorf("parse date: %w", err)
	}
	price, err := strconv.ParseFloat(f.fields.Price, 64)
	if err != nil {
		return dto.EventPayload{}, false, fmt.Errorf("parse price: %w", err)
	}

	payload := dto.EventPayload{
		ID:            f.fields.ID,
		Date:          date,
		Price:         price,
		WomenOnly:     f.fields.WomenOnly,
		DisplayPlaces: f.fields.DisplayPlaces,
		Pricing:       f.fields.Pricing,
		Translations:  translation.Payload(f.Translations()),
	}

	if strings.TrimSpace(f.fields.Capacity) != "" {
		capacity, err := strconv.Atoi(f.fields.Capacity)
		if err != nil {
			return dto.EventPayload{}, false, fmt.Errorf("parse capacity: %w", err)
		}
		payload.Capacity = &capacity
	}
	if f.fields.ImageURL != "" {
		url := f.fields.ImageURL
		payload.ImageURL = &url
	}
	if f.fields.ContactInstagram != "" || f.fields.ContactEmail != "" {
		payload.ContactInfo = &dto.ContactPayload{
			Instagram: f.fields.ContactInstagram,
			Email:     f.fields.ContactEmail,
		}
	}

	return payload, f.editing != nil, nil
}
