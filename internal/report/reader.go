package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadRows returns the data rows of the first sheet keyed by the header row.
// Blank rows are dropped.
func ReadRows(path string) ([]map[string]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("read %s: no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	head := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		head[i] = strings.TrimSpace(h)
	}
	var out []map[string]string
	for _, r := range rows[1:] {
		rec := make(map[string]string, len(head))
		blank := true
		for i, h := range head {
			if h == "" || i >= len(r) {
				continue
			}
			v := strings.TrimSpace(r[i])
			if v != "" {
				blank = false
			}
			rec[h] = v
		}
		if !blank {
			out = append(out, rec)
		}
	}
	return out, nil
}
