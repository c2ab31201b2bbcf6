// Package report writes the artifacts of a comparison: a Markdown summary,
// a JSON result, the labelled values for plotting, and an optional PDF.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hyperifyio/sentlen/internal/compare"
	"github.com/hyperifyio/sentlen/internal/sample"
)

// Info describes the run that produced a comparison.
type Info struct {
	RunID     uuid.UUID   `json:"run_id"`
	Dataset   string      `json:"dataset,omitempty"`
	Mode      sample.Mode `json:"mode"`
	Size      int         `json:"size"`
	Seed      uint64      `json:"seed"`
	Generated time.Time   `json:"generated"`
}

// Name returns the base name of the artifacts of r, for example
// "comparison_1840-1859-vs-1900-1919".
func Name(r compare.Result) string {
	return "comparison_" + r.A.Window.Slug() + "-vs-" + r.B.Window.Slug()
}

// Markdown renders a short human-readable summary.
func Markdown(w io.Writer, r compare.Result, info Info) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Sentence length %s vs %s\n\n", r.A.Window, r.B.Window)
	if info.Dataset != "" {
		fmt.Fprintf(&b, "- Dataset: %s\n", info.Dataset)
	}
	fmt.Fprintf(&b, "- Run: %s\n", info.RunID)
	fmt.Fprintf(&b, "- Sampling: %s, n = %d per window, seed %d\n", info.Mode, info.Size, info.Seed)
	if !info.Generated.IsZero() {
		fmt.Fprintf(&b, "- Generated: %s\n", info.Generated.UTC().Format(time.RFC3339))
	}
	b.WriteString("\n| Window | n | Median |\n|---|---:|---:|\n")
	for _, s := range []sample.Sample{r.A, r.B} {
		fmt.Fprintf(&b, "| %s | %d | %.2f |\n", s.Window, s.Len(), s.Median)
	}
	fmt.Fprintf(&b, "\nMann-Whitney U = %s, p = %s (two-sided)\n", formatFloat(r.U), formatP(r.P))
	_, err := io.WriteString(w, b.String())
	return err
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func formatP(p float64) string {
	if p < 0.0001 {
		return strconv.FormatFloat(p, 'e', 2, 64)
	}
	return strconv.FormatFloat(p, 'f', 4, 64)
}

type jsonResult struct {
	Info   Info           `json:"info"`
	Result compare.Result `json:"result"`
	LabelA string         `json:"label_a"`
	LabelB string         `json:"label_b"`
}

// JSON writes r and info as an indented JSON document.
func JSON(w io.Writer, r compare.Result, info Info) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonResult{Info: info, Result: r, LabelA: r.A.Label(), LabelB: r.B.Label()})
}

// ValuesCSV writes one "label;value" row per sampled value. This is the
// input of the external density plot.
func ValuesCSV(w io.Writer, r compare.Result) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write([]string{"label", "id", "value"}); err != nil {
		return err
	}
	for _, s := range []sample.Sample{r.A, r.B} {
		label := s.Label()
		for i, v := range s.Values {
			id := ""
			if i < len(s.IDs) {
				id = s.IDs[i]
			}
			if err := cw.Write([]string{label, id, strconv.FormatFloat(v, 'g', -1, 64)}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Paths lists the files written by WriteAll.
type Paths struct {
	Markdown string `json:"markdown"`
	JSON     string `json:"json"`
	Values   string `json:"values"`
	PDF      string `json:"pdf,omitempty"`
}

// WriteAll writes every artifact of r into dir, named after Name(r).
func WriteAll(dir string, r compare.Result, info Info, withPDF bool) (Paths, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("mkdir results dir: %w", err)
	}
	base := filepath.Join(dir, Name(r))
	p := Paths{Markdown: base + ".md", JSON: base + ".json", Values: base + ".csv"}

	var md strings.Builder
	if err := Markdown(&md, r, info); err != nil {
		return Paths{}, err
	}
	if err := Validate(md.String()); err != nil {
		return Paths{}, err
	}
	if err := os.WriteFile(p.Markdown, []byte(md.String()), 0o644); err != nil {
		return Paths{}, fmt.Errorf("write markdown: %w", err)
	}
	if err := writeWith(p.JSON, func(w io.Writer) error { return JSON(w, r, info) }); err != nil {
		return Paths{}, fmt.Errorf("write json: %w", err)
	}
	if err := writeWith(p.Values, func(w io.Writer) error { return ValuesCSV(w, r) }); err != nil {
		return Paths{}, fmt.Errorf("write values: %w", err)
	}
	if withPDF {
		p.PDF = base + ".pdf"
		if err := WritePDF(md.String(), p.PDF); err != nil {
			return Paths{}, fmt.Errorf("write pdf: %w", err)
		}
	}
	return p, nil
}

func writeWith(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
