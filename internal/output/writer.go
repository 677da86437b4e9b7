package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gustycube/netspread/internal/types"
)

// Format represents the output format
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// Writer writes simulation snapshots in one format
type Writer struct {
	format    Format
	w         io.Writer
	csvWriter *csv.Writer
	mu        sync.Mutex
	hasHeader bool
}

// ParseFormat parses a format string
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// NewWriter creates a new output writer
func NewWriter(format string, w io.Writer) (*Writer, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	writer := &Writer{
		format: f,
		w:      w,
	}

	if f == FormatCSV {
		writer.csvWriter = csv.NewWriter(w)
	}

	return writer, nil
}

// NewStdoutWriter creates a writer for stdout
func NewStdoutWriter(format string) (*Writer, error) {
	return NewWriter(format, os.Stdout)
}

// WriteSnapshot writes a snapshot in the configured format
func (w *Writer) WriteSnapshot(s types.Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.format {
	case FormatText:
		return w.writeText(s)

	case FormatJSON:
		encoder := json.NewEncoder(w.w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(s)

	case FormatJSONL:
		data, err := json.Marshal(s)
		if err != nil {
			return err
		}
		_, err = w.w.Write(append(data, '\n'))
		return err

	case FormatCSV:
		return w.writeCSV(s)

	default:
		return fmt.Errorf("unsupported format: %s", w.format)
	}
}

func (w *Writer) writeText(s types.Snapshot) error {
	var b strings.Builder
	b.WriteString("state:\n")
	for _, n := range s.Nodes {
		status := "not infected"
		if n.Infected {
			status = "infected"
		}
		fmt.Fprintf(&b, "\t%s: %s\n", n.Name, status)
	}
	_, err := io.WriteString(w.w, b.String())
	return err
}

func (w *Writer) writeCSV(s types.Snapshot) error {
	if !w.hasHeader {
		if err := w.csvWriter.Write([]string{"run_id", "step", "name", "chance", "infected"}); err != nil {
			return err
		}
		w.hasHeader = true
	}

	for _, n := range s.Nodes {
		err := w.csvWriter.Write([]string{
			s.RunID,
			strconv.Itoa(s.Step),
			n.Name,
			strconv.FormatFloat(n.Chance, 'f', -1, 64),
			strconv.FormatBool(n.Infected),
		})
		if err != nil {
			return err
		}
	}

	// keep rows visible when following a long run
	w.csvWriter.Flush()
	return w.csvWriter.Error()
}

// Flush flushes any buffered data
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.csvWriter != nil {
		w.csvWriter.Flush()
		return w.csvWriter.Error()
	}
	return nil
}
