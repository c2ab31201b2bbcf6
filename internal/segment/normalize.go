package segment

import "strings"

// CollapseWhitespace replaces every run of spaces, tabs, carriage returns and
// newlines with a single space and trims both ends, so that lines broken
// inside a paragraph read as one continuous text.
func CollapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSuffix(b.String(), " ")
}
