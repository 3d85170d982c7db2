// Package output renders result records for the caller and optionally
// persists them to a SQLite database.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"pagegrab/internal/runner"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// Format renders the records in the requested output format
// (json, text, markdown).
func Format(records []runner.Record, format string) (string, error) {
	switch format {
	case "json":
		b, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal records: %w", err)
		}
		return string(b), nil
	case "text":
		return formatText(records), nil
	case "markdown":
		return formatMarkdown(records)
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

func formatText(records []runner.Record) string {
	var b strings.Builder
	for _, rec := range records {
		if rec.Status != runner.StatusSuccess {
			fmt.Fprintf(&b, "[%d] error: %s\n", rec.ItemIndex, rec.Message)
			continue
		}
		fmt.Fprintf(&b, "[%d] %s\n", rec.ItemIndex, rec.Data.URL)
		switch {
		case len(rec.Data.Links) > 0:
			for _, link := range rec.Data.Links {
				fmt.Fprintf(&b, "%s\n", link)
			}
		case rec.Data.HTML != "":
			fmt.Fprintf(&b, "%s\n", rec.Data.HTML)
		default:
			fmt.Fprintf(&b, "%s\n", rec.Data.Text)
		}
	}
	return b.String()
}

// formatMarkdown converts HTML payloads to markdown; other payloads
// render the same as the text format.
func formatMarkdown(records []runner.Record) (string, error) {
	converter := md.NewConverter("", true, nil)

	var b strings.Builder
	for _, rec := range records {
		if rec.Status != runner.StatusSuccess || rec.Data.HTML == "" {
			b.WriteString(formatText([]runner.Record{rec}))
			continue
		}
		if rec.Data.Title != "" {
			fmt.Fprintf(&b, "# %s\n\n", rec.Data.Title)
		}
		markdown, err := converter.ConvertString(rec.Data.HTML)
		if err != nil {
			return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
		}
		b.WriteString(markdown)
		b.WriteString("\n")
	}
	return b.String(), nil
}
