// Package translation converts event translations between the snake_case
// wire shape stored by the ticketing service and the camelCase JSON
// document staff paste into the import modal after running it through a
// translator.
//
// Duplicate locale keys in an imported document resolve last-wins, the way
// JSON object decoding already behaves; imported locales are returned
// sorted so the result is deterministic.
package translation

import (
	"encoding/json"
	"fmt"
	"sort"

	"ticketdesk/internal/model"
)

// Editable is the per-locale shape staff edit. Field names differ from the
// wire shape on purpose: the document is meant to be readable by humans and
// AI translators.
type Editable struct {
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	FullDescription string         `json:"fullDescription,omitempty"`
	Location        string         `json:"location"`
	Program         *model.Program `json:"program,omitempty"`
	WhyParticipate  string         `json:"whyParticipate,omitempty"`
}

// Localized is an Editable tagged with its locale, the element shape the
// event create/update payload carries.
type Localized struct {
	Locale string `json:"locale"`
	Editable
}

// importedLocale accepts both naming conventions on input; the camelCase
// key wins when both carry a value.
type importedLocale struct {
	Title                string         `json:"title"`
	Description          string         `json:"description"`
	FullDescription      string         `json:"fullDescription"`
	FullDescriptionSnake string         `json:"full_description"`
	Location             string         `json:"location"`
	Program              *model.Program `json:"program"`
	WhyParticipate       string         `json:"whyParticipate"`
	WhyParticipateSnake  string         `json:"why_participate"`
}

// toEditable and toWire are the two halves of the naming bridge; keeping
// them as an explicit pair is what makes the round-trip checkable.

func toEditable(t model.Translation) Editable {
	return Editable{
		Title:           t.Title,
		Description:     t.Description,
		FullDescription: t.FullDescription,
		Location:        t.Location,
		Program:         t.Program,
		WhyParticipate:  t.WhyParticipate,
	}
}

func toWire(locale string, in importedLocale) model.Translation {
	full := in.FullDescription
	if full == "" {
		full = in.FullDescriptionSnake
	}
	why := in.WhyParticipate
	if why == "" {
		why = in.WhyParticipateSnake
	}
	return model.Translation{
		Locale:          locale,
		Title:           in.Title,
		Description:     in.Description,
		FullDescription: full,
		Location:        in.Location,
		Program:         in.Program,
		WhyParticipate:  why,
	}
}

// Export renders an event's translations as an indented JSON document keyed
// by locale, in the editable naming convention.
func Export(translations []model.Translation) (string, error) {
	doc := make(map[string]Editable, len(translations))
	for _, t := range translations {
		doc[t.Locale] = toEditable(t)
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export translations: %w", err)
	}
	return string(out), nil
}

// Import parses a locale-keyed JSON document into wire translations. A
// missing field never fails the import; it defaults to empty. Unparseable
// text fails the whole import so the caller's previous translation set
// stays the state of record.
func Import(doc string) ([]model.Translation, error) {
	var locales map[string]importedLocale
	if err := json.Unmarshal([]byte(doc), &locales); err != nil {
		return nil, fmt.Errorf("invalid translation JSON: %w", err)
	}
	translations := make([]model.Translation, 0, len(locales))
	for locale, fields := range locales {
		translations = append(translations, toWire(locale, fields))
	}
	sort.Slice(translations, func(i, j int) bool {
		return translations[i].Locale < translations[j].Locale
	})
	return translations, nil
}

// Payload converts wire translations into the localized editable shape the
// event create/update calls send upstream.
func Payload(translations []model.Translation) []Localized {
	out := make([]Localized, 0, len(translations))
	for _, t := range translations {
		out = append(out, Localized{Locale: t.Locale, Editable: toEditable(t)})
	}
	return out
}

// Template is the blank scaffold offered for brand-new events, so staff
// never have to type the mapping structure by hand.
const Template = `{
  "fr": {
    "title": "",
    "description": "",
    "fullDescription": "",
    "location": "",
    "program": {
      "items": []
    },
    "whyParticipate": ""
  },
  "en": {
    "title": "",
    "description": "",
    "fullDescription": "",
    "location": "",
    "program": {
      "items": []
    },
    "whyParticipate": ""
  },
  "ru": {
    "title": "",
    "description": "",
    "fullDescription": "",
    "location": "",
    "program": {
      "items": []
    },
    "whyParticipate": ""
  }
}`
