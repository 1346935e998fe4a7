// Package render turns the result of a run into text for terminals and files.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"science-helper/internal/usecase"
)

const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Table draws the learning table. width <= 0 leaves the width unbounded.
func Table(out usecase.ProcessOutput, width int) string {
	tbl := out.Table()
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(tbl.Columns()...).
		Rows(tbl.Rows()...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	if width > 0 {
		t = t.Width(width)
	}
	return t.Render()
}

// Narrative is the per-sentence explanation view as markdown.
func Narrative(out usecase.ProcessOutput) string {
	var b strings.Builder
	for _, rec := range out.Records {
		b.WriteString("### English Sentence\n")
		b.WriteString(rec.English)
		b.WriteString("\n\n**Direct Marathi Meaning:**  \n")
		b.WriteString(rec.DirectTranslation)
		b.WriteString("\n\n**Easy Marathi (Teacher Explanation):**  \n")
		b.WriteString(rec.SimpleExplanation)
		b.WriteString("\n\n---\n\n")
	}
	return b.String()
}

// Markdown renders markdown for a terminal of the given width.
func Markdown(md string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle("dark")}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("render: create markdown renderer: %w", err)
	}
	s, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render: markdown: %w", err)
	}
	return s, nil
}

// Summary tells the learner how many sentences were explained and how many
// were skipped, and why.
func Summary(out usecase.ProcessOutput) string {
	if out.SentenceCount == 0 {
		return "No sentences found."
	}
	s := fmt.Sprintf("%d of %d sentences explained", len(out.Records), out.SentenceCount)
	if out.Skipped() == 0 {
		return s + "."
	}
	return fmt.Sprintf("%s; %d skipped (%d could not be parsed, %d service errors).",
		s, out.Skipped(), out.ParseFailures(), out.ServiceFailures())
}

// Export writes a run in one of the file formats.
func Export(out usecase.ProcessOutput, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		buf, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return "", fmt.Errorf("render: json: %w", err)
		}
		return string(buf) + "\n", nil
	case FormatYAML:
		buf, err := yaml.Marshal(out)
		if err != nil {
			return "", fmt.Errorf("render: yaml: %w", err)
		}
		return string(buf), nil
	case FormatMarkdown:
		return MarkdownTable(out) + "\n" + Narrative(out) + Summary(out) + "\n", nil
	case FormatTable, "":
		return Table(out, 0) + "\n" + Summary(out) + "\n", nil
	default:
		return "", fmt.Errorf("render: unknown format %q", format)
	}
}

// MarkdownTable is the learning table as a GitHub-flavoured markdown table.
func MarkdownTable(out usecase.ProcessOutput) string {
	tbl := out.Table()
	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" ")
			b.WriteString(escapeCell(c))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	writeRow(tbl.Columns())
	b.WriteString("|---|---|---|\n")
	for _, row := range tbl.Rows() {
		writeRow(row)
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}
