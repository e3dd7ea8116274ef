// package formatter renders concerts for terminals and exports them to files (JSON, YAML, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
	"gopkg.in/yaml.v3"
)

// Placeholder is shown for users without an avatar.
const Placeholder = "/images/user-placeholder.png"

// Format names an export encoding.
type Format string

const (
	JSON     Format = "json"
	YAML     Format = "yaml"
	CSV      Format = "csv"
	Markdown Format = "md"
	Text     Format = "txt"
)

// Formats lists every supported export format.
var Formats = []Format{JSON, YAML, CSV, Markdown, Text}

// ParseFormat accepts a format name or a common alias ("yml", "markdown", "text").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "csv":
		return CSV, nil
	case "md", "markdown":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
}

// Export is a set of concerts with a heading.
type Export struct {
	Title       string
	GeneratedAt time.Time
	Concerts    []models.Concert
}

// record is the flattened row shared by the JSON, YAML and CSV encoders.
type record struct {
	ID         int64    `json:"id" yaml:"id"`
	City       string   `json:"city" yaml:"city"`
	Place      string   `json:"place" yaml:"place"`
	StartAt    string   `json:"start_at" yaml:"start_at"`
	Accepted   bool     `json:"accepted" yaml:"accepted"`
	Owner      string   `json:"owner,omitempty" yaml:"owner,omitempty"`
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	Tickets    int      `json:"tickets" yaml:"tickets"`
}

type document struct {
	Title       string   `json:"title" yaml:"title"`
	GeneratedAt string   `json:"generated_at" yaml:"generated_at"`
	Count       int      `json:"count" yaml:"count"`
	Concerts    []record `json:"concerts" yaml:"concerts"`
}

func toRecord(c models.Concert) record {
	r := record{
		ID:       c.ID,
		City:     c.City,
		Place:    c.Place,
		StartAt:  c.StartAt,
		Accepted: c.Accepted(),
		Tickets:  len(c.Tickets),
	}
	if c.User != nil {
		r.Owner = c.User.Name
	}
	for _, cat := range c.TicketCategories {
		r.Categories = append(r.Categories, CategoryLabel(cat))
	}
	return r
}

func toDocument(export *Export) document {
	doc := document{
		Title:       export.Title,
		GeneratedAt: export.GeneratedAt.UTC().Format(time.RFC3339),
		Count:       len(export.Concerts),
		Concerts:    make([]record, 0, len(export.Concerts)),
	}
	for _, c := range export.Concerts {
		doc.Concerts = append(doc.Concerts, toRecord(c))
	}
	return doc
}

// Encode renders export in the given format.
func Encode(export *Export, format Format) ([]byte, error) {
	switch format {
	case JSON:
		return ExportToJSON(export)
	case YAML:
		return ExportToYAML(export)
	case CSV:
		return ExportToCSV(export)
	case Markdown:
		return ExportToMarkdown(export)
	case Text:
		return ExportToText(export)
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
}

// ExportToJSON converts an Export to indented JSON.
func ExportToJSON(export *Export) ([]byte, error) {
	data, err := json.MarshalIndent(toDocument(export), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToYAML converts an Export to YAML.
func ExportToYAML(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toDocument(export)); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToCSV converts an Export to CSV format with columns: ID, City, Place, Start, Accepted, Owner, Categories, Tickets
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "City", "Place", "Start", "Accepted", "Owner", "Categories", "Tickets"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, c := range export.Concerts {
		r := toRecord(c)
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.City,
			r.Place,
			r.StartAt,
			strconv.FormatBool(r.Accepted),
			r.Owner,
			strings.Join(r.Categories, "; "),
			strconv.Itoa(r.Tickets),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts an Export to a Markdown document with one section per concert.
func ExportToMarkdown(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Title)
	fmt.Fprintf(&buf, "**Concerts**: %d\n\n", len(export.Concerts))

	for _, c := range export.Concerts {
		fmt.Fprintf(&buf, "## %s\n\n", c.Title())
		fmt.Fprintf(&buf, "- **Date**: %s\n", FormatDateTime(c.StartAt))
		fmt.Fprintf(&buf, "- **Status**: %s\n", Status(c))
		if c.User != nil && c.User.Name != "" {
			fmt.Fprintf(&buf, "- **Organizer**: %s\n", c.User.Name)
		}
		if len(c.TicketCategories) > 0 {
			buf.WriteString("\n| Category | Price |\n|---|---|\n")
			for _, cat := range c.TicketCategories {
				fmt.Fprintf(&buf, "| %s | %s |\n", cat.Name, FormatPrice(cat.Price))
			}
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts an Export to plain text format
func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", export.Title)
	fmt.Fprintf(&buf, "Concerts: %d\n\n", len(export.Concerts))

	for i, c := range export.Concerts {
		fmt.Fprintf(&buf, "%d. %s - %s [%s]\n", i+1, c.Title(), FormatDateTime(c.StartAt), Status(c))
	}

	return buf.Bytes(), nil
}

// WriteExport encodes export and writes it to path.
//
// Defaults to concerts.{format} in the working directory.
func WriteExport(export *Export, format Format, path string) (string, error) {
	if path == "" {
		path = "concerts." + string(format)
	}

	data, err := Encode(export, format)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}
