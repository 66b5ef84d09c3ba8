package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/Maheesh09/studio-full-stack/internal/models"
	"github.com/xuri/excelize/v2"
)

var contactHeader = []string{"Name", "Phone", "Message", "Created At"}

const timestampLayout = "2006-01-02 15:04:05"

func contactRow(c models.ContactSubmission) []string {
	return []string{c.FullName, c.Phone, c.Message, c.CreatedAt.Local().Format(timestampLayout)}
}

// ContactsCSV writes submissions as CSV with a header row.
func ContactsCSV(w io.Writer, contacts []models.ContactSubmission) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(contactHeader); err != nil {
		return err
	}
	for _, c := range contacts {
		if err := cw.Write(contactRow(c)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ContactsXLSX writes submissions as a single-sheet workbook.
func ContactsXLSX(w io.Writer, contacts []models.ContactSubmission) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Contacts"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := make([]interface{}, len(contactHeader))
	for i, h := range contactHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, c := range contacts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{c.FullName, c.Phone, c.Message, c.CreatedAt.Local().Format(timestampLayout)}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	f.SetColWidth(sheet, "A", "B", 20)
	f.SetColWidth(sheet, "C", "C", 60)
	f.SetColWidth(sheet, "D", "D", 20)

	_, err := f.WriteTo(w)
	return err
}

// Filename returns a dated download name such as contacts-2025-01-31.csv.
func Filename(ext string, now time.Time) string {
	return "contacts-" + now.Format("2006-01-02") + "." + ext
}
