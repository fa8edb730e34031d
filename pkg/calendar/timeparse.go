package calendar

import (
	"regexp"
	"time"
)

// DefaultEventDuration pads a parsed start time when no end is given.
const DefaultEventDuration = 60 * time.Minute

// candidate layouts tried against datetime-looking fragments of the text.
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"January 2, 2006 at 3:04 PM",
	"January 2, 2006 3:04 PM",
	"Jan 2, 2006 at 3:04 PM",
	"Jan 2, 2006 3:04 PM",
	"Jan 2 at 3:04 PM",
	"January 2 at 3:04 PM",
}

// overridable for tests
var now = time.Now

// fragments that look like they might carry a datetime; the scan is naive,
// and failure to parse just skips calendar event creation.
var datetimePattern = regexp.MustCompile(
	`(?i)((?:\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(?::\d{2})?(?:Z|[+-]\d{2}:\d{2})?)|` +
		`(?:\d{1,2}/\d{1,2}/\d{4} \d{1,2}:\d{2})|` +
		`(?:(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{1,2}(?:, \d{4})?(?: at)? \d{1,2}:\d{2} ?(?:AM|PM)))`)

// ExtractTimeRange scans text for the first parseable datetime and returns a
// [start, end) window. Both values are nil when nothing parses.
func ExtractTimeRange(text string) (*time.Time, *time.Time) {
	for _, fragment := range datetimePattern.FindAllString(text, 5) {
		for _, layout := range layouts {
			parsed, err := time.Parse(layout, fragment)
			if err != nil {
				continue
			}
			// Year-less layouts land in year 0; pin them to the current
			// year, rolling into the next one when that lands in the past.
			if parsed.Year() == 0 {
				ref := now()
				parsed = time.Date(ref.Year(), parsed.Month(), parsed.Day(),
					parsed.Hour(), parsed.Minute(), 0, 0, time.Local)
				if parsed.Before(ref) {
					parsed = parsed.AddDate(1, 0, 0)
				}
			}
			end := parsed.Add(DefaultEventDuration)
			return &parsed, &end
		}
	}
	return nil, nil
}
