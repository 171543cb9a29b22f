package inspection

import "strings"

// CleanCityName strips everything outside the uppercase-letter/space set and
// collapses repeated whitespace, e.g. "CHI  CAGO!!" -> "CHI CAGO". Input is
// upper-cased first so mixed-case source values survive the filter.
func CleanCityName(city string) string {
	upper := strings.ToUpper(city)

	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		if (r >= 'A' && r <= 'Z') || r == ' ' {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
