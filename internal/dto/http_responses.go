package dto

import (
	"time"

	"github.com/wb-go/wbf/ginext"

	"ticketdesk/internal/browse"
	"ticketdesk/internal/model"
	"ticketdesk/internal/translation"
)

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	EventNotFound      = "EVENT_NOT_FOUND"
	UpstreamFailed     = "UPSTREAM_FAILED"
	InvalidTranslation = "TRANSLATION_INVALID"
	FormStateInvalid   = "FORM_STATE_INVALID"
	FormIncomplete     = "FORM_INCOMPLETE"
)

// SubmitEventRequest carries the event form fields as the frontend holds
// them: scalars as strings, exactly like the inputs they come from.
type SubmitEventRequest struct {
	ID               string         `json:"id" validate:"required"`
	Date             string         `json:"date" validate:"required"`
	Price            string         `json:"price" validate:"required"`
	Capacity         string         `json:"capacity"`
	WomenOnly        bool           `json:"women_only"`
	DisplayPlaces    bool           `json:"display_places"`
	ImageURL         string         `json:"image_url"`
	ContactInstagram string         `json:"contact_instagram"`
	ContactEmail     string         `json:"contact_email" validate:"omitempty,email"`
	Pricing          *model.Pricing `json:"pricing"`
}

// ValidateTicketRequest names the staff member performing the check-in.
type ValidateTicketRequest struct {
	ValidatedBy string `json:"validatedBy" validate:"required"`
}

// ImportTranslationsRequest wraps the pasted JSON document.
type ImportTranslationsRequest struct {
	Document string `json:"document" validate:"required"`
}

// EventPayload is the write shape of the ticketing service. It is not the
// read shape: the service expects camelCase keys on create/update and
// explicit nulls for cleared optional fields.
type EventPayload struct {
	ID            string                  `json:"id"`
	Date          time.Time               `json:"date"`
	Price         float64                 `json:"price"`
	Capacity      *int                    `json:"capacity"`
	WomenOnly     bool                    `json:"womenOnly"`
	DisplayPlaces bool                    `json:"displayPlaces"`
	ImageURL      *string                 `json:"imageUrl"`
	ContactInfo   *ContactPayload         `json:"contactInfo"`
	Pricing       *model.Pricing          `json:"pricing"`
	Translations  []translation.Localized `json:"translations"`
}

type ContactPayload struct {
	Instagram string `json:"instagram,omitempty"`
	Email     string `json:"email,omitempty"`
}

// EventListItem decorates a wire event with the strings the tables render.
type EventListItem struct {
	model.Event
	DisplayTitle string `json:"display_title"`
	DisplayDate  string `json:"display_date"`
	DisplayTime  string `json:"display_time"`
}

// TicketPage is one page of the filtered ticket table.
type TicketPage struct {
	Tickets       []model.Ticket `json:"tickets"`
	Page          int            `json:"page"`
	PerPage       int            `json:"per_page"`
	TotalPages    int            `json:"total_pages"`
	FilteredCount int            `json:"filtered_count"`
	TotalCount    int            `json:"total_count"`
	PageTokens    []browse.Token `json:"page_tokens"`
}

// FormView mirrors the submission state machine for the frontend.
type FormView struct {
	State           string   `json:"state"`
	EditingID       string   `json:"editing_id,omitempty"`
	Fields          any      `json:"fields,omitempty"`
	ImportedLocales []string `json:"imported_locales,omitempty"`
	CarriedForward  bool     `json:"carried_forward"`
	CanSubmit       bool     `json:"can_submit"`
	TranslationSeed string   `json:"translation_seed,omitempty"`
}

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
}

func BadResponseError(c *ginext.Context, code, desc string) {
	c.JSON(400, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func InternalServerError(c *ginext.Context) {
	c.JSON(500, Response{
		Status: "error",
		Error: &Error{
			Code: ServiceUnavailable,
			Desc: InternalError,
		},
	})
}

// UpstreamError surfaces the ticketing service's reported reason without
// retrying; the action failed but the dashboard stays usable.
func UpstreamError(c *ginext.Context, desc string) {
	c.JSON(502, Response{
		Status: "error",
		Error: &Error{
			Code: UpstreamFailed,
			Desc: desc,
		},
	})
}

func EventNotFoundError(c *ginext.Context) {
	BadResponseError(c, EventNotFound, "Event not found")
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(200, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(201, Response{
		Status: "ok",
		Data:   data,
	})
}
