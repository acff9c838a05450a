package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/homepanel/internal/models"
	"github.com/desertthunder/homepanel/internal/shared"
)

// Format is an export file format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// ParseFormat maps a user supplied name to a [Format].
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidInput, name)
	}
}

// QueueExport is a snapshot of the play queue.
type QueueExport struct {
	Name       string         `json:"name"`
	ExportedAt time.Time      `json:"exported_at"`
	Tracks     []models.Track `json:"tracks"`
}

// TotalSeconds sums the track lengths.
func (q *QueueExport) TotalSeconds() int {
	total := 0
	for _, t := range q.Tracks {
		total += int(t.Time)
	}
	return total
}

// ExportToCSV converts a queue to CSV format with columns: Position, Title, Artist, Album, Duration, File
func ExportToCSV(export *QueueExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "Artist", "Album", "Duration", "File"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range export.Tracks {
		record := []string{
			strconv.Itoa(i + 1),
			track.Title,
			track.Artist,
			track.Album,
			strconv.Itoa(int(track.Time)),
			track.File,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a queue to a Markdown document.
func ExportToMarkdown(export *QueueExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Name)
	if !export.ExportedAt.IsZero() {
		fmt.Fprintf(&buf, "**Exported**: %s %s\n", DateString(export.ExportedAt), TimeString(export.ExportedAt))
	}
	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(export.Tracks))
	fmt.Fprintf(&buf, "**Length**: %s\n\n", Duration(export.TotalSeconds()))

	buf.WriteString("## Tracks\n\n")
	for i, track := range export.Tracks {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, track.Artist, track.DisplayTitle(), albumPart, Duration(int(track.Time)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a queue to plain text format
func ExportToText(export *QueueExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Queue: %s\n", export.Name)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(export.Tracks))

	for i, track := range export.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, track.Artist, track.DisplayTitle())
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a queue to indented JSON.
func ExportToJSON(export *QueueExport) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

// Export renders the queue in the given format.
func Export(export *QueueExport, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	case FormatJSON:
		return ExportToJSON(export)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidInput, format)
	}
}

// WriteExport renders the queue and writes it to path, creating parent directories.
//
// Defaults to queue.{format} in the working directory.
func WriteExport(export *QueueExport, format Format, path string) (string, error) {
	if path == "" {
		path = "queue." + string(format)
	}

	data, err := Export(export, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s export: %w", format, err)
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
