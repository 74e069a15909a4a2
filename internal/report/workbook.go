// Package report writes the xlsx exports and reads xlsx imports.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"shaheen-admin/internal/chilla"
)

const (
	styleHeader  = "header"
	styleBold    = "bold"
	styleCenter  = "center"
	stylePercent = "percent"
	stylePresent = "present"
	styleAbsent  = "absent"
	styleYes     = "yes"
	styleNo      = "no"
)

func solid(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

var centered = &excelize.Alignment{Horizontal: "center", Vertical: "center"}

var styles = map[string]*excelize.Style{
	styleHeader: {
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      solid("4472C4"),
		Alignment: centered,
	},
	styleBold:    {Font: &excelize.Font{Bold: true}},
	styleCenter:  {Alignment: centered},
	stylePercent: {NumFmt: 2},
	stylePresent: {Font: &excelize.Font{Bold: true}, Fill: solid("92D050"), Alignment: centered},
	styleAbsent:  {Font: &excelize.Font{Bold: true}, Fill: solid("FF6B6B"), Alignment: centered},
	styleYes:     {Font: &excelize.Font{Bold: true, Color: "FFFFFF"}, Fill: solid("00FF00"), Alignment: centered},
	styleNo:      {Font: &excelize.Font{Bold: true, Color: "FFFFFF"}, Fill: solid("FF0000"), Alignment: centered},
}

// tierColors are the fill and font colours of a percentage cell per tier.
var tierColors = map[chilla.Tier][2]string{
	chilla.TierPerfect: {"00B050", "FFFFFF"},
	chilla.Tier90:      {"C6EFCE", "006100"},
	chilla.Tier80:      {"FFEB9C", "9C6500"},
	chilla.Tier70:      {"FFF2CC", "806000"},
	chilla.Tier50:      {"FFC7CE", "9C0006"},
	chilla.TierLow:     {"FFC7CE", "9C0006"},
}

func init() {
	for tier, c := range tierColors {
		styles[tierStyle(tier)] = &excelize.Style{
			Font:   &excelize.Font{Bold: true, Color: c[1]},
			Fill:   solid(c[0]),
			NumFmt: 2,
		}
	}
}

func tierStyle(t chilla.Tier) string { return "tier_" + string(t) }

// workbook wraps an excelize file. The first error is kept and later calls
// become no-ops, so writers check it once in save.
type workbook struct {
	f        *excelize.File
	styleIDs map[string]int
	renamed  bool
	err      error
}

func newWorkbook() *workbook {
	return &workbook{f: excelize.NewFile(), styleIDs: make(map[string]int)}
}

// sheet adds a worksheet, reusing the default one for the first call.
func (w *workbook) sheet(name string) string {
	name = sheetName(name)
	if w.err != nil {
		return name
	}
	if !w.renamed {
		w.renamed = true
		w.err = w.f.SetSheetName(w.f.GetSheetName(0), name)
		return name
	}
	_, w.err = w.f.NewSheet(name)
	return name
}

// sheetName trims a title to the 31 characters a sheet name allows.
func sheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, s)
	if r := []rune(s); len(r) > 31 {
		s = string(r[:31])
	}
	return s
}

func (w *workbook) row(sheet string, row int, values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

// header writes the styled first row and sets column widths.
func (w *workbook) header(sheet string, headers []string, widths []float64) {
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	w.row(sheet, 1, values...)
	w.style(sheet, 1, 1, len(headers), 1, styleHeader)
	for i, width := range widths {
		w.width(sheet, i+1, width)
	}
}

func (w *workbook) width(sheet string, col int, width float64) {
	if w.err != nil {
		return
	}
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetColWidth(sheet, name, name, width)
}

func (w *workbook) style(sheet string, col1, row1, col2, row2 int, key string) {
	if w.err != nil {
		return
	}
	id, ok := w.styleIDs[key]
	if !ok {
		def, known := styles[key]
		if !known {
			w.err = fmt.Errorf("unknown style %q", key)
			return
		}
		if id, w.err = w.f.NewStyle(def); w.err != nil {
			return
		}
		w.styleIDs[key] = id
	}
	from, err := excelize.CoordinatesToCellName(col1, row1)
	if err != nil {
		w.err = err
		return
	}
	to, err := excelize.CoordinatesToCellName(col2, row2)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(sheet, from, to, id)
}

func (w *workbook) cell(sheet string, col, row int, key string) {
	w.style(sheet, col, row, col, row, key)
}

// freeze keeps the first cols columns and rows rows in view.
func (w *workbook) freeze(sheet string, cols, rows int) {
	if w.err != nil {
		return
	}
	topLeft, err := excelize.CoordinatesToCellName(cols+1, rows+1)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      cols,
		YSplit:      rows,
		TopLeftCell: topLeft,
		ActivePane:  "bottomRight",
	})
}

// save writes the workbook to path, creating parent directories.
func (w *workbook) save(path string) error {
	defer w.f.Close()
	if w.err != nil {
		return fmt.Errorf("build %s: %w", filepath.Base(path), w.err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	return nil
}
