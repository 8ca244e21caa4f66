package listing

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadBusinesses_CSV(t *testing.T) {
	path := writeFile(t, "businesses.csv", "\ufeffName,Location,Description,URL,Website,Image_URL,Phone,Email\n"+
		"Blue Note,\"12 Main St, Downtown\",Jazz club,https://x/1,N/A,https://img/1,555-0100,N/A\n"+
		"Cafe Uno,Old Town,Espresso bar\n")

	got, err := ReadBusinesses(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].ID != "b-0" || got[0].Name != "Blue Note" || got[0].Location != "12 Main St, Downtown" {
		t.Errorf("unexpected first row: %+v", got[0])
	}
	if got[0].Website != "N/A" {
		t.Errorf("reader must keep raw values, got website %q", got[0].Website)
	}
	if got[1].ID != "b-1" || got[1].Phone != "" {
		t.Errorf("short row should read blank cells: %+v", got[1])
	}
}

func TestReadEvents_CSVCaseInsensitiveHeader(t *testing.T) {
	path := writeFile(t, "events.csv", "name,date,time,location,description,url,image url,source\n"+
		"Jazz Night,2026-10-14,20:00,Blue Note,Live jazz,https://e/1,https://img/e1,city\n")

	got, err := ReadEvents(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	e := got[0]
	if e.ID != "e-0" || e.Date != "2026-10-14" || e.ImageURL != "https://img/e1" || e.Source != "city" {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestReadEvents_MissingColumns(t *testing.T) {
	path := writeFile(t, "events.csv", "Title,Date\nJazz,2026-10-14\n")
	_, err := ReadEvents(path)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Name") || !strings.Contains(err.Error(), "Description") {
		t.Errorf("error should name missing columns: %v", err)
	}
}

func TestReadBusinesses_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, "businesses.json", "[]")
	_, err := ReadBusinesses(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestReadBusinesses_EmptyCSV(t *testing.T) {
	path := writeFile(t, "businesses.csv", "")
	if _, err := ReadBusinesses(path); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestReadBusinesses_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "businesses.xlsx")
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	_ = f.SetCellValue("Sheet1", "A1", "Name")
	_ = f.SetCellValue("Sheet1", "B1", "Location")
	_ = f.SetCellValue("Sheet1", "C1", "Description")
	_ = f.SetCellValue("Sheet1", "A2", "Harbor Pub")
	_ = f.SetCellValue("Sheet1", "B2", "Pier 4")
	_ = f.SetCellValue("Sheet1", "C2", "Fish and chips")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}

	got, err := ReadBusinesses(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Harbor Pub" || got[0].Location != "Pier 4" || got[0].Description != "Fish and chips" {
		t.Errorf("unexpected rows: %+v", got)
	}
}

type eventRow struct {
	Name        string `parquet:"Name"`
	Date        string `parquet:"Date"`
	Location    string `parquet:"Location"`
	Description string `parquet:"Description"`
}

func TestReadEvents_Parquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.parquet")
	rows := []eventRow{
		{Name: "Jazz Night", Date: "2026-10-14", Location: "Blue Note", Description: "Live jazz"},
		{Name: "Food Fair", Date: "2026-10-17", Location: "Old Town", Description: "Street food"},
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ReadEvents(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[1].ID != "e-1" || got[1].Name != "Food Fair" || got[1].Location != "Old Town" || got[1].Date != "2026-10-17" {
		t.Errorf("unexpected second row: %+v", got[1])
	}
	if got[0].Time != "" {
		t.Errorf("absent column should be blank, got %q", got[0].Time)
	}
}
