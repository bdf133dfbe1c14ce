package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"greenia/internal/models"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Table is a report flattened into rows, ready for CSV or a spreadsheet.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]any
}

func ActivityTable(rows []models.UserActivity) Table {
	t := Table{
		Sheet:  "Actividad",
		Header: []string{"Nombre", "Email", "Reconocimientos", "Botellas", "CO2 ahorrado (kg)"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Name, r.Email, r.Recognitions, r.Bottles, r.CO2SavedKg})
	}
	return t
}

func ImpactTable(rows []models.PlasticImpact) Table {
	t := Table{
		Sheet:  "Impacto",
		Header: []string{"Codigo", "Tipo", "Reconocimientos", "Botellas", "Peso (kg)", "CO2 ahorrado (kg)"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Code, r.Name, r.Recognitions, r.Bottles, r.WeightKg, r.CO2SavedKg})
	}
	return t
}

// ContentType returns the MIME type and file extension for format.
func ContentType(format string) (string, string, error) {
	switch strings.ToLower(format) {
	case "", FormatCSV:
		return "text/csv; charset=utf-8", FormatCSV, nil
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", FormatXLSX, nil
	default:
		return "", "", fmt.Errorf("unsupported export format %q", format)
	}
}

// Export writes t to w in the given format.
func Export(w io.Writer, format string, t Table) error {
	switch strings.ToLower(format) {
	case "", FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = cell(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteXLSX(w io.Writer, t Table) error {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := t.Sheet
	if sheet == "" {
		sheet = "Reporte"
	}
	if err := xl.SetSheetName(xl.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := xl.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.Rows {
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		record := row
		if err := xl.SetSheetRow(sheet, ref, &record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode xlsx: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

func cell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', 4, 64)
	default:
		return fmt.Sprint(x)
	}
}
