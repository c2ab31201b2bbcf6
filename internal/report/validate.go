package report

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidReport wraps every structural problem found by Validate.
var ErrInvalidReport = errors.New("invalid report")

// Validate checks the structure of a rendered comparison report: a single
// H1 title on the first non-empty line, one pipe table whose rows all have
// the header's column count and one row per window, and the test result
// line.
func Validate(markdown string) error {
	lines := strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n")
	first := -1
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			first = i
			break
		}
	}
	if first == -1 {
		return fmt.Errorf("%w: document is empty", ErrInvalidReport)
	}
	if !strings.HasPrefix(lines[first], "# ") {
		return fmt.Errorf("%w: first line must be an H1 heading", ErrInvalidReport)
	}
	var (
		header  = -1
		rows    int
		hasTest bool
	)
	for i := first + 1; i < len(lines); i++ {
		l := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(l, "# "):
			return fmt.Errorf("%w: extra H1 heading on line %d", ErrInvalidReport, i+1)
		case strings.HasPrefix(l, "|"):
			cols := tableColumns(l)
			if header == -1 {
				header = cols
				continue
			}
			if cols != header {
				return fmt.Errorf("%w: table row on line %d has %d columns, want %d", ErrInvalidReport, i+1, cols, header)
			}
			if !isSeparatorRow(l) {
				rows++
			}
		case strings.HasPrefix(l, "Mann-Whitney U ="):
			hasTest = true
		}
	}
	if header == -1 {
		return fmt.Errorf("%w: missing summary table", ErrInvalidReport)
	}
	if rows != 2 {
		return fmt.Errorf("%w: summary table has %d rows, want 2", ErrInvalidReport, rows)
	}
	if !hasTest {
		return fmt.Errorf("%w: missing test result line", ErrInvalidReport)
	}
	return nil
}

func tableColumns(line string) int {
	return len(strings.Split(strings.Trim(line, "|"), "|"))
}

func isSeparatorRow(line string) bool {
	for _, r := range line {
		switch r {
		case '|', '-', ':', ' ':
		default:
			return false
		}
	}
	return true
}
