package report

import (
	"context"
	"fmt"

	"shaheen-admin/internal/chilla"
	"shaheen-admin/internal/i18n"
	"shaheen-admin/internal/service"
)

func yesNo(ctx context.Context, b bool) string {
	if b {
		return i18n.T(ctx, "yes")
	}
	return i18n.T(ctx, "no")
}

// WriteVolunteerReport writes every volunteer's activity for one period.
func WriteVolunteerReport(ctx context.Context, path string, r *service.VolunteerReport) error {
	w := newWorkbook()
	sh := w.sheet(r.Period.Name)
	w.header(sh, headers(ctx, "header_volunteer_id", "header_volunteer_name", "header_hafiz",
		"header_email", "header_phone", "header_masjid", "header_cluster",
		"header_total_days_period", "header_days_worked", "header_days_absent",
		"header_total_records", "header_avg_records", "header_attendance_pct_period",
		"header_total_days_all"),
		[]float64{35, 25, 10, 30, 18, 25, 10, 20, 15, 12, 20, 18, 22, 22})

	for i, row := range r.Rows {
		v, sum := row.Volunteer, row.Summary
		w.row(sh, i+2, v.ID, v.Name, yesNo(ctx, v.IsHafiz), v.Email, v.Phone, v.Masjid, v.Cluster,
			sum.TotalDays, sum.DaysPresent, sum.DaysAbsent, sum.TotalRecords, sum.AvgPerDay,
			sum.Percentage, row.TotalDaysAllWindows)
		w.cell(sh, 12, i+2, stylePercent)
		w.cell(sh, 13, i+2, tierStyle(sum.Tier))
	}

	ss := w.sheet(i18n.T(ctx, "sheet_summary"))
	w.header(ss, headers(ctx, "header_metric", "header_value"), []float64{40, 15})
	metrics := [][2]any{
		{i18n.T(ctx, "metric_period"), fmt.Sprintf("%s - %s", r.Period.Start, r.Period.End)},
		{i18n.T(ctx, "metric_total_days"), r.Period.TotalDays()},
		{i18n.T(ctx, "metric_total_volunteers"), len(r.Rows)},
		{i18n.T(ctx, "metric_total_records"), r.TotalRecords},
		{i18n.T(ctx, "metric_average"), fmt.Sprintf("%.2f%%", service.AveragePercentage(r.Rows))},
	}
	for i, m := range metrics {
		w.row(ss, i+2, m[0], m[1])
	}
	return w.save(path)
}

// WriteHighAttendance writes one sheet per period listing the eligible volunteers
// followed by a tier summary.
func WriteHighAttendance(ctx context.Context, path string, reports []*service.VolunteerReport) error {
	w := newWorkbook()
	for _, r := range reports {
		sh := w.sheet(r.Period.Name)
		w.header(sh, headers(ctx, "header_sno", "header_volunteer_name", "header_hafiz",
			"header_email", "header_phone", "header_masjid", "header_cluster",
			"header_days_worked", "header_total_days", "header_attendance_pct"),
			[]float64{8, 25, 10, 30, 18, 25, 10, 15, 12, 15})

		eligible := r.Eligible()
		for i, row := range eligible {
			v, sum := row.Volunteer, row.Summary
			w.row(sh, i+2, i+1, v.Name, yesNo(ctx, v.IsHafiz), v.Email, v.Phone, v.Masjid, v.Cluster,
				sum.DaysPresent, sum.TotalDays, sum.Percentage)
			w.cell(sh, 10, i+2, tierStyle(sum.Tier))
		}

		counts := service.TierCounts(eligible)
		at := len(eligible) + 3
		summary := [][2]any{
			{i18n.T(ctx, "metric_summary"), ""},
			{i18n.T(ctx, "metric_period"), fmt.Sprintf("%s - %s", r.Period.Start, r.Period.End)},
			{i18n.T(ctx, "metric_total_days"), r.Period.TotalDays()},
			{i18n.T(ctx, "metric_total_eligible"), len(eligible)},
			{i18n.T(ctx, "metric_perfect"), counts[chilla.TierPerfect]},
			{i18n.T(ctx, "metric_90_99"), counts[chilla.Tier90]},
			{i18n.T(ctx, "metric_80_89"), counts[chilla.Tier80]},
			{i18n.T(ctx, "metric_70_79"), counts[chilla.Tier70]},
			{i18n.T(ctx, "metric_average"), fmt.Sprintf("%.2f%%", service.AveragePercentage(eligible))},
		}
		for i, m := range summary {
			w.row(sh, at+i, m[0], m[1])
			w.cell(sh, 1, at+i, styleBold)
		}
	}
	return w.save(path)
}

// WriteVolunteerWinners writes the volunteer prize winners. Phone numbers stay text.
func WriteVolunteerWinners(ctx context.Context, path string, rows []*service.VolunteerWinnerRow) error {
	w := newWorkbook()
	sh := w.sheet(i18n.T(ctx, "sheet_volunteer_winners"))
	w.header(sh, headers(ctx, "header_name", "header_phone_number", "header_masjid_name", "header_cluster_number"),
		[]float64{28, 20, 28, 16})
	for i, r := range rows {
		w.row(sh, i+2, r.Name, r.Phone, r.Masjid, r.Cluster)
	}
	return w.save(path)
}
