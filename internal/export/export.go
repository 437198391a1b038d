// Package export renders a task view as JSON, CSV or PDF.
package export

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/jung-kurt/gofpdf"

	"todolist/internal/models"
)

// Format names an export encoding.
type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
	PDF  Format = "pdf"
)

// ParseFormat parses a format name; empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", JSON:
		return JSON, nil
	case CSV:
		return CSV, nil
	case PDF:
		return PDF, nil
	default:
		return "", fmt.Errorf("unknown format %s", s)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv; charset=utf-8"
	case PDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

type record struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Date  *string `json:"date"`
	Done  bool    `json:"done"`
}

// Write encodes tasks to w in the given format, preserving their order.
func Write(w io.Writer, tasks []models.Task, f Format) error {
	switch f {
	case JSON:
		return writeJSON(w, tasks)
	case CSV:
		return writeCSV(w, tasks)
	case PDF:
		return writePDF(w, tasks)
	default:
		return fmt.Errorf("unknown format %s", f)
	}
}

func writeJSON(w io.Writer, tasks []models.Task) error {
	records := make([]record, 0, len(tasks))
	for _, t := range tasks {
		rec := record{ID: int64(t.ID), Title: t.Title, Done: t.Done}
		if t.Date != nil {
			s := t.Date.UTC().Format(models.StoredDateLayout)
			rec.Date = &s
		}
		records = append(records, rec)
	}
	data, err := sonic.ConfigStd.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func writeCSV(w io.Writer, tasks []models.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "title", "date", "done"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, t := range tasks {
		d := ""
		if t.Date != nil {
			d = t.Date.Format(models.DateLayout)
		}
		if err := cw.Write([]string{strconv.FormatInt(int64(t.ID), 10), t.Title, d, strconv.FormatBool(t.Done)}); err != nil {
			return fmt.Errorf("failed to write csv row for task %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// pdfFont is an embedded UTF-8 font; the core PDF fonts only cover cp1252.
const pdfFont = "DejaVuSansCondensed"

//go:embed fonts/DejaVuSansCondensed.ttf
var dejaVuRegular []byte

//go:embed fonts/DejaVuSansCondensed-Bold.ttf
var dejaVuBold []byte

func writePDF(w io.Writer, tasks []models.Task) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(pdfFont, "", dejaVuRegular)
	pdf.AddUTF8FontFromBytes(pdfFont, "B", dejaVuBold)
	pdf.AddPage()
	pdf.SetFont(pdfFont, "B", 14)
	pdf.Cell(40, 10, "To-Do List")
	pdf.Ln(12)
	pdf.SetFont(pdfFont, "", 10)
	if len(tasks) == 0 {
		pdf.Cell(40, 6, "No tasks found.")
	}
	for _, t := range tasks {
		mark := "[ ]"
		if t.Done {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s  (%s)", mark, t.Title, models.FormatDate(t.Date))
		pdf.MultiCell(0, 6, line, "0", "L", false)
	}
	return pdf.Output(w)
}
