package adapters

import (
	"regexp"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParsePublished parses a publication timestamp; unparseable input yields nil
func ParsePublished(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

var pdfDate = regexp.MustCompile(`^(?:D:)?(\d{4})(\d{2})?(\d{2})?(\d{2})?(\d{2})?(\d{2})?`)

// ParsePDFDate parses the D:YYYYMMDDHHmmSS form used in PDF info dictionaries.
// Timezone suffixes are ignored.
func ParsePDFDate(s string) *time.Time {
	m := pdfDate.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil
	}
	parts := []string{m[1], "01", "01", "00", "00", "00"}
	for i := 2; i < len(m); i++ {
		if m[i] != "" {
			parts[i-1] = m[i]
		}
	}
	t, err := time.Parse("20060102150405", strings.Join(parts, ""))
	if err != nil {
		return nil
	}
	return &t
}
