package report

import (
	"context"
	"fmt"
	"time"

	"shaheen-admin/internal/i18n"
	"shaheen-admin/internal/service"
)

// CertificateFileName names the workbook of students holding exactly count certificates.
func CertificateFileName(count int) string {
	if count == 1 {
		return "students_1_certificate.xlsx"
	}
	return fmt.Sprintf("students_%d_certificates.xlsx", count)
}

// WriteCertificateGroup writes the students of g with one completion date column
// per certificate, plus per-cluster and per-masjid tallies.
func WriteCertificateGroup(ctx context.Context, path string, g *service.CertificateGroup) error {
	w := newWorkbook()
	sh := w.sheet(i18n.T(ctx, "sheet_students"))

	cols := headers(ctx, "header_student_id", "header_name", "header_dob", "header_guardian_number",
		"header_masjid", "header_masjid_id", "header_cluster")
	widths := []float64{30, 25, 12, 18, 30, 30, 10}
	for i := 1; i <= g.Count; i++ {
		cols = append(cols, fmt.Sprintf("chillaCompletedOn_%d", i))
		widths = append(widths, 20)
	}
	w.header(sh, cols, widths)

	for i, cs := range g.Students {
		values := []any{cs.StudentID, cs.Name, cs.DOB, cs.GuardianNumber, cs.MasjidName, cs.MasjidID, cs.Cluster}
		for _, c := range cs.Certificates {
			date := ""
			if !c.Time.IsZero() {
				date = c.Time.UTC().Format(time.DateOnly)
			}
			values = append(values, date)
		}
		w.row(sh, i+2, values...)
	}

	total := i18n.T(ctx, "total")

	cl := w.sheet(i18n.T(ctx, "sheet_count_by_cluster"))
	w.header(cl, headers(ctx, "header_cluster", "header_students"), []float64{15, 12})
	clusters := service.ClusterCounts(g.Students)
	for i, r := range clusters {
		w.row(cl, i+2, r.Label, r.Students)
	}
	w.row(cl, len(clusters)+2, total, len(g.Students))
	w.style(cl, 1, len(clusters)+2, 2, len(clusters)+2, styleBold)

	ms := w.sheet(i18n.T(ctx, "sheet_count_by_masjid"))
	w.header(ms, headers(ctx, "header_masjid", "header_masjid_cluster", "header_masjid_id", "header_students"),
		[]float64{35, 15, 30, 12})
	masjids := service.MasjidCounts(g.Students)
	for i, r := range masjids {
		w.row(ms, i+2, r.Label, r.Cluster, r.MasjidID, r.Students)
	}
	w.row(ms, len(masjids)+2, total, "", i18n.T(ctx, "masjid_count", map[string]any{"Count": len(masjids)}), len(g.Students))
	w.style(ms, 1, len(masjids)+2, 4, len(masjids)+2, styleBold)

	return w.save(path)
}

// WriteWinners writes the prize winners with their regular certificate counts.
func WriteWinners(ctx context.Context, path string, rows []*service.WinnerRow) error {
	w := newWorkbook()
	sh := w.sheet(i18n.T(ctx, "sheet_winners"))
	w.header(sh, headers(ctx, "header_name", "header_guardian_name", "header_guardian_number",
		"header_student_id", "header_cluster", "header_masjid", "header_prize", "header_certificates"),
		[]float64{25, 25, 18, 30, 10, 30, 10, 14})
	for i, r := range rows {
		w.row(sh, i+2, r.Name, r.GuardianName, r.GuardianNumber, r.StudentID, r.Cluster, r.MasjidName, r.Prize, r.CertificatesCount)
	}
	return w.save(path)
}
