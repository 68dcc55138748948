// Package dates pins all display formatting to Europe/Paris, matching how
// staff read event times regardless of where the service runs.
package dates

import "time"

const formInputLayout = "2006-01-02T15:04"

var paris = loadParis()

func loadParis() *time.Location {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		// Without tzdata fall back to CET; display shifts by an hour in
		// summer but nothing breaks.
		return time.FixedZone("CET", 3600)
	}
	return loc
}

// FormatDate renders the day in French order, e.g. 31/01/2026.
func FormatDate(t time.Time) string {
	return t.In(paris).Format("02/01/2006")
}

// FormatTime renders the wall clock, e.g. 19:30.
func FormatTime(t time.Time) string {
	return t.In(paris).Format("15:04")
}

// FormatDateTime combines both.
func FormatDateTime(t time.Time) string {
	return t.In(paris).Format("02/01/2006 15:04")
}

// FormInput renders an instant the way a datetime-local control expects.
func FormInput(t time.Time) string {
	return t.In(paris).Format(formInputLayout)
}

// ParseFormInput reads a datetime-local value as Paris wall time and
// returns the UTC instant sent to the ticketing service.
func ParseFormInput(s string) (time.Time, error) {
	t, err := time.ParseInLocation(formInputLayout, s, paris)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
