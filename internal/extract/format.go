package extract

import "regexp"

var isoDate = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// FormatDate converts an ISO date (YYYY-MM-DD) to DD.MM.YYYY. Any input
// that does not match the ISO pattern is returned unchanged; the formatter
// never fails on malformed values.
func FormatDate(s string) string {
	m := isoDate.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return m[3] + "." + m[2] + "." + m[1]
}
