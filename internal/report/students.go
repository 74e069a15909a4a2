package report

import (
	"context"
	"fmt"
	"time"

	"shaheen-admin/internal/chilla"
	"shaheen-admin/internal/i18n"
	"shaheen-admin/internal/model"
	"shaheen-admin/internal/normalize"
	"shaheen-admin/internal/service"
)

func headers(ctx context.Context, ids ...string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = i18n.T(ctx, id)
	}
	return out
}

const matrixFixedCols = 7

// WriteStudentMatrix writes the P/A grid of a period, one column per day.
func WriteStudentMatrix(ctx context.Context, path string, m *service.StudentMatrix) error {
	w := newWorkbook()
	sh := w.sheet(m.Period.Name)

	cols := headers(ctx, "header_student_id", "header_name", "header_guardian_name",
		"header_guardian_number", "header_class", "header_masjid", "header_cluster")
	widths := []float64{20, 22, 22, 18, 10, 38, 10}
	for _, d := range m.Days {
		cols = append(cols, d)
		widths = append(widths, 12)
	}
	cols = append(cols, i18n.T(ctx, "header_total_present"))
	widths = append(widths, 14)
	w.header(sh, cols, widths)
	w.freeze(sh, matrixFixedCols, 1)

	present, absent := i18n.T(ctx, "mark_present"), i18n.T(ctx, "mark_absent")
	for i, r := range m.Rows {
		rowNum := i + 2
		values := []any{r.StudentID, r.Name, r.GuardianName, r.GuardianNumber, r.Class, r.Masjid, r.Cluster}
		for _, p := range r.Present {
			if p {
				values = append(values, present)
			} else {
				values = append(values, absent)
			}
		}
		values = append(values, r.TotalPresent)
		w.row(sh, rowNum, values...)
		w.cell(sh, matrixFixedCols, rowNum, styleCenter)
		for j, p := range r.Present {
			key := styleAbsent
			if p {
				key = stylePresent
			}
			w.cell(sh, matrixFixedCols+1+j, rowNum, key)
		}
		w.cell(sh, matrixFixedCols+1+len(r.Present), rowNum, styleBold)
	}
	return w.save(path)
}

// WriteStudentSummary writes every student's attendance percentage for a period
// with a summary sheet.
func WriteStudentSummary(ctx context.Context, path string, p chilla.Period, rows []*service.StudentSummaryRow) error {
	w := newWorkbook()
	sh := w.sheet(p.Name)
	w.header(sh, headers(ctx, "header_student_id", "header_name", "header_guardian_number",
		"header_masjid", "header_masjid_id", "header_cluster", "header_total_days",
		"header_days_attended", "header_days_absent", "header_attendance_pct"),
		[]float64{40, 25, 18, 30, 30, 15, 12, 15, 12, 15})

	var total float64
	for i, r := range rows {
		st, sum := r.Student, r.Summary
		w.row(sh, i+2, st.ID, orUnknown(st.Name), st.GuardianNumber,
			st.MasjidDetails.MasjidName, st.MasjidDetails.MasjidID,
			normalize.Text(st.MasjidDetails.ClusterNumber),
			sum.TotalDays, sum.DaysPresent, sum.DaysAbsent, sum.Percentage)
		w.cell(sh, 10, i+2, tierStyle(sum.Tier))
		total += sum.Percentage
	}

	var perfect, high, mid, low, zero int
	for _, r := range rows {
		pct := r.Summary.Percentage
		switch {
		case pct >= 100:
			perfect++
		case pct >= 80:
			high++
		case pct >= 50:
			mid++
		default:
			low++
		}
		if r.Summary.DaysPresent == 0 {
			zero++
		}
	}
	avg := 0.0
	if len(rows) > 0 {
		avg = chilla.Round2(total / float64(len(rows)))
	}

	ss := w.sheet(i18n.T(ctx, "sheet_summary"))
	w.header(ss, headers(ctx, "header_metric", "header_value"), []float64{35, 15})
	metrics := [][2]any{
		{i18n.T(ctx, "metric_period"), fmt.Sprintf("%s - %s", p.Start, p.End)},
		{i18n.T(ctx, "metric_total_days"), p.TotalDays()},
		{i18n.T(ctx, "metric_total_students"), len(rows)},
		{i18n.T(ctx, "metric_perfect"), perfect},
		{i18n.T(ctx, "metric_80_99"), high},
		{i18n.T(ctx, "metric_50_79"), mid},
		{i18n.T(ctx, "metric_below_50"), low},
		{i18n.T(ctx, "metric_zero"), zero},
		{i18n.T(ctx, "metric_average"), fmt.Sprintf("%.2f%%", avg)},
	}
	for i, m := range metrics {
		w.row(ss, i+2, m[0], m[1])
	}
	return w.save(path)
}

// WriteAttendanceCalendar writes one row per day of a student's history.
func WriteAttendanceCalendar(ctx context.Context, path string, st *model.Student, days []service.CalendarDay, loc *time.Location) error {
	w := newWorkbook()
	sh := w.sheet(i18n.T(ctx, "sheet_attendance"))
	w.header(sh, headers(ctx, "header_date", "header_time", "header_status"), []float64{15, 15, 10})

	present, absent := i18n.T(ctx, "mark_present"), i18n.T(ctx, "mark_absent")
	for i, d := range days {
		status, at, key := absent, "-", styleNo
		if d.Present {
			status, at, key = present, d.At.In(loc).Format("03:04:05 PM"), styleYes
		}
		w.row(sh, i+2, d.Day, at, status)
		w.cell(sh, 3, i+2, key)
	}
	w.row(sh, len(days)+3, i18n.T(ctx, "header_name"), st.Name)
	return w.save(path)
}

// WriteDailyAttendance writes the name, masjid and cluster of each event on one day.
func WriteDailyAttendance(ctx context.Context, path string, evts []*model.AttendanceEvent) error {
	w := newWorkbook()
	sh := w.sheet(i18n.T(ctx, "sheet_today_attendance"))
	w.header(sh, headers(ctx, "header_name", "header_masjid", "header_cluster"), []float64{28, 30, 10})
	for i, e := range evts {
		name := e.Name
		if name == "" {
			name = e.DisplayName
		}
		w.row(sh, i+2, orUnknown(name), orUnknown(e.MasjidDetails.MasjidName), normalize.Text(e.MasjidDetails.ClusterNumber))
	}
	return w.save(path)
}

func orUnknown(s string) string {
	if s == "" {
		return service.Unknown
	}
	return s
}
