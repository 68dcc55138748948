package model

import "time"

// Wire shapes of the ticketing service. Events and tickets are owned and
// mutated by that service; this layer only holds transient copies.

type Program struct {
	Items []string `json:"items"`
}

type PriceTier struct {
	Price float64 `json:"price"`
	Label string  `json:"label,omitempty"`
}

type Pricing struct {
	Normal  PriceTier  `json:"normal"`
	Student *PriceTier `json:"student,omitempty"`
}

type ContactInfo struct {
	Instagram string `json:"instagram,omitempty"`
	Email     string `json:"email,omitempty"`
}

type Translation struct {
	Locale          string   `json:"locale"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	FullDescription string   `json:"full_description,omitempty"`
	Location        string   `json:"location"`
	Program         *Program `json:"program,omitempty"`
	WhyParticipate  string   `json:"why_participate,omitempty"`
}

type Event struct {
	ID            string        `json:"id"`
	Date          time.Time     `json:"date"`
	Price         float64       `json:"price"`
	Capacity      *int          `json:"capacity,omitempty"`
	WomenOnly     bool          `json:"women_only"`
	DisplayPlaces bool          `json:"display_places"`
	ImageURL      string        `json:"image_url,omitempty"`
	ContactInfo   *ContactInfo  `json:"contact_info,omitempty"`
	Pricing       *Pricing      `json:"pricing,omitempty"`
	Translations  []Translation `json:"translations"`
}

type Ticket struct {
	TicketID      string     `json:"ticket_id"`
	EventID       string     `json:"event_id"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email"`
	Quantity      int        `json:"quantity"`
	TicketType    string     `json:"ticket_type"`
	AmountPaid    float64    `json:"amount_paid"`
	ValidatedAt   *time.Time `json:"validated_at"`
	ValidatedBy   string     `json:"validated_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	Profession    string     `json:"profession,omitempty"`
	School        string     `json:"school,omitempty"`
	Languages     []string   `json:"languages,omitempty"`
}

// Validated reports whether the ticket has been checked in.
func (t Ticket) Validated() bool {
	return t.ValidatedAt != nil
}

type LanguageCount struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

type SchoolCount struct {
	School string `json:"school"`
	Count  int    `json:"count"`
}

type ProfessionCount struct {
	Profession string `json:"profession"`
	Count      int    `json:"count"`
}

// Statistics lists arrive pre-sorted by the ticketing service.
type Statistics struct {
	Languages   []LanguageCount   `json:"languages"`
	Schools     []SchoolCount     `json:"schools"`
	Professions []ProfessionCount `json:"professions"`
}
