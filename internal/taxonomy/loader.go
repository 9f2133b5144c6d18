package taxonomy

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/IshaanNene/BeritaKepri/internal/config"
	"github.com/IshaanNene/BeritaKepri/internal/types"
)

// Sides of the economy a source describes.
const (
	SideProduction  = "production"
	SideExpenditure = "expenditure"
)

// Load reads every source and merges them in order. An unreadable source
// fails the whole load.
func Load(sources []config.TaxonomySource, minLen int) (*Taxonomy, error) {
	return LoadSide(sources, "", minLen)
}

// LoadSide reads the sources of one side. An empty side selects all.
func LoadSide(sources []config.TaxonomySource, side string, minLen int) (*Taxonomy, error) {
	tax := New()
	matched := 0
	for _, src := range sources {
		if side != "" && src.Side != side {
			continue
		}
		matched++
		t, err := LoadSource(src, minLen)
		if err != nil {
			return nil, err
		}
		tax.Merge(t)
	}
	if matched == 0 {
		label := side
		if label == "" {
			label = "any side"
		}
		return nil, &types.TaxonomyError{
			Source: label,
			Err:    fmt.Errorf("%w: no source configured", types.ErrTaxonomyUnavailable),
		}
	}
	return tax, nil
}

// LoadSource reads one CSV or XLSX table.
func LoadSource(src config.TaxonomySource, minLen int) (*Taxonomy, error) {
	rows, err := readRows(src)
	if err != nil {
		return nil, &types.TaxonomyError{Source: src.Path, Err: fmt.Errorf("%w: %w", types.ErrTaxonomyUnavailable, err)}
	}
	tax, err := build(rows, src, minLen)
	if err != nil {
		return nil, &types.TaxonomyError{Source: src.Path, Err: fmt.Errorf("%w: %w", types.ErrTaxonomyUnavailable, err)}
	}
	return tax, nil
}

func readRows(src config.TaxonomySource) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(src.Path)) {
	case ".csv":
		return readCSV(src.Path)
	case ".xlsx", ".xlsm":
		return readXLSX(src.Path, src.Sheet)
	default:
		return nil, fmt.Errorf("unsupported table format %q", filepath.Ext(src.Path))
	}
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	return f.GetRows(sheet)
}

// build turns table rows into a taxonomy. The first non-empty row is the
// header; columns are matched by name, ignoring case.
func build(rows [][]string, src config.TaxonomySource, minLen int) (*Taxonomy, error) {
	for len(rows) > 0 && blank(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("table is empty")
	}

	header := rows[0]
	catIdx := column(header, src.CategoryColumn)
	descIdx := column(header, src.DescriptionColumn)
	if catIdx < 0 {
		return nil, fmt.Errorf("column %q not found", src.CategoryColumn)
	}
	if descIdx < 0 {
		return nil, fmt.Errorf("column %q not found", src.DescriptionColumn)
	}

	tax := New()
	switch src.Layout {
	case "hierarchical":
		markerIdx := column(header, src.MarkerColumn)
		if markerIdx < 0 {
			return nil, fmt.Errorf("column %q not found", src.MarkerColumn)
		}
		buildHierarchical(tax, rows[1:], markerIdx, catIdx, descIdx, minLen)
	default:
		for _, row := range rows[1:] {
			name := cell(row, catIdx)
			if name == "" {
				continue
			}
			tax.Add(name, Tokenize(cell(row, descIdx), minLen))
		}
	}
	return tax, nil
}

// buildHierarchical reads tables where a row with a marker starts a
// top-level category and the following unmarked rows list its
// sub-categories.
func buildHierarchical(tax *Taxonomy, rows [][]string, markerIdx, catIdx, descIdx, minLen int) {
	current := ""
	for _, row := range rows {
		if blank(row) {
			continue
		}
		if cell(row, markerIdx) != "" {
			current = cell(row, catIdx)
			if current == "" {
				current = cell(row, markerIdx)
			}
			tax.Add(current, Tokenize(StripMarker(cell(row, descIdx)), minLen))
			continue
		}
		if current == "" {
			continue
		}
		desc := cell(row, descIdx)
		if desc == "" {
			desc = cell(row, catIdx)
		}
		tax.Add(current, Tokenize(StripMarker(desc), minLen))
	}
}

func column(header []string, name string) int {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return -1
	}
	for i, h := range header {
		if strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) == want {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
