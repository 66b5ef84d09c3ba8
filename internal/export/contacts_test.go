package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/Maheesh09/studio-full-stack/internal/models"
	"github.com/xuri/excelize/v2"
)

var sample = []models.ContactSubmission{
	{ID: 1, FullName: "Jane Doe", Phone: "+94771234567", Message: "Hello, \"studio\"", CreatedAt: time.Date(2025, 2, 1, 10, 0, 0, 0, time.Local)},
	{ID: 2, FullName: "Kamal", Phone: "0711111111", Message: "Line one\nline two", CreatedAt: time.Date(2025, 2, 2, 11, 30, 0, 0, time.Local)},
}

func TestContactsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := ContactsCSV(&buf, sample); err != nil {
		t.Fatalf("ContactsCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("CSV did not parse back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d", len(records))
	}
	if got := records[0]; got[0] != "Name" || got[1] != "Phone" || got[2] != "Message" || got[3] != "Created At" {
		t.Errorf("Unexpected header %v", got)
	}
	if records[1][2] != "Hello, \"studio\"" || records[2][2] != "Line one\nline two" {
		t.Errorf("Quoting lost data: %q / %q", records[1][2], records[2][2])
	}
	if records[2][3] != "2025-02-02 11:30:00" {
		t.Errorf("Unexpected timestamp %q", records[2][3])
	}
}

func TestContactsXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := ContactsXLSX(&buf, sample); err != nil {
		t.Fatalf("ContactsXLSX failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("Workbook did not open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Contacts")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if rows[0][3] != "Created At" || rows[1][0] != "Jane Doe" {
		t.Errorf("Unexpected rows %v", rows)
	}
}

func TestFilename(t *testing.T) {
	if got := Filename("csv", time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)); got != "contacts-2025-01-31.csv" {
		t.Errorf("Unexpected filename %q", got)
	}
}
