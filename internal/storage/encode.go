package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/xuri/excelize/v2"

	"github.com/IshaanNene/BeritaKepri/internal/types"
)

// SheetName is the worksheet articles are written to.
const SheetName = "Berita"

// Encode writes articles to w in the given format. Tabular formats use the
// column order category, date, title, body, link.
func Encode(w io.Writer, format string, articles []*types.Article) error {
	var err error
	switch format {
	case FormatXLSX:
		err = encodeXLSX(w, articles)
	case FormatCSV:
		err = encodeCSV(w, articles)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if articles == nil {
			articles = []*types.Article{}
		}
		err = enc.Encode(articles)
	case FormatJSONL:
		enc := json.NewEncoder(w)
		for _, a := range articles {
			if err = enc.Encode(a); err != nil {
				break
			}
		}
	case FormatTable:
		err = encodeTable(w, articles)
	default:
		return &types.StorageError{Backend: format, Err: types.ErrUnsupportedFormat}
	}
	if err != nil {
		return &types.StorageError{Backend: format, Err: err}
	}
	return nil
}

func encodeCSV(w io.Writer, articles []*types.Article) error {
	classified := Classified(articles)
	cw := csv.NewWriter(w)
	if err := cw.Write(types.Headers(classified)); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, a := range articles {
		if err := cw.Write(a.Row(classified)); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func encodeXLSX(w io.Writer, articles []*types.Article) error {
	classified := Classified(articles)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	headers := types.Headers(classified)
	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(SheetName, "A1", last, bold)
	}

	for i, a := range articles {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := a.Row(classified)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}

	widths := map[string]float64{
		types.ColumnCategory: 30, types.ColumnDate: 12, types.ColumnTitle: 50,
		types.ColumnBody: 80, types.ColumnLink: 45,
	}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(SheetName, col, col, widths[h])
	}

	_, err = f.WriteTo(w)
	return err
}

// tableWidths caps each column of the terminal preview, in display cells.
var tableWidths = map[string]int{
	types.ColumnCategory: 28,
	types.ColumnDate:     10,
	types.ColumnTitle:    48,
	types.ColumnBody:     40,
	types.ColumnLink:     50,
}

// encodeTable renders a fixed-width preview. Cells are truncated by
// display width so wide runes keep the columns aligned.
func encodeTable(w io.Writer, articles []*types.Article) error {
	classified := Classified(articles)
	headers := types.Headers(classified)

	rows := make([][]string, 0, len(articles)+1)
	rows = append(rows, headers)
	for _, a := range articles {
		rows = append(rows, a.Row(classified))
	}

	widths := make([]int, len(headers))
	for _, row := range rows {
		for i, c := range row {
			c = strings.Join(strings.Fields(c), " ")
			if cw := runewidth.StringWidth(c); cw > widths[i] {
				widths[i] = cw
			}
		}
	}
	for i, h := range headers {
		if widths[i] > tableWidths[h] {
			widths[i] = tableWidths[h]
		}
	}

	var sb strings.Builder
	for r, row := range rows {
		for i, c := range row {
			c = runewidth.Truncate(strings.Join(strings.Fields(c), " "), widths[i], "…")
			sb.WriteString(runewidth.FillRight(c, widths[i]))
			if i < len(row)-1 {
				sb.WriteString(" | ")
			}
		}
		sb.WriteString("\n")
		if r == 0 {
			for i := range headers {
				sb.WriteString(strings.Repeat("-", widths[i]))
				if i < len(headers)-1 {
					sb.WriteString("-+-")
				}
			}
			sb.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
