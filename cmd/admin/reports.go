package main

import (
	"context"
	"fmt"
	"path/filepath"

	"shaheen-admin/internal/i18n"
	"shaheen-admin/internal/report"
	"shaheen-admin/internal/service"
)

func (cli *commandLine) printStreak(ctx context.Context, res *service.StreakResult) {
	if res == nil {
		return
	}
	cli.printf("%s", i18n.T(ctx, "summary_streak", map[string]any{
		"Total":  res.Total,
		"Streak": res.Step.Streak,
	}))
	if res.Certificate != nil {
		key := "summary_certificate_exists"
		if res.Issued {
			key = "summary_certificate_issued"
		}
		cli.printf("%s", i18n.T(ctx, key, map[string]any{"Cycle": res.Step.Cycle}))
	}
}

func (cli *commandLine) printWrote(ctx context.Context, path string) {
	cli.printf("%s", i18n.T(ctx, "summary_wrote", map[string]any{"Path": path}))
}

func (cli *commandLine) studentMatrix(ctx context.Context, _ string) error {
	for _, p := range cli.reports.Windows() {
		m, err := cli.reports.StudentMatrix(ctx, p)
		if err != nil {
			return err
		}
		path := filepath.Join(cli.cfg.OutputDir, fmt.Sprintf("%s_Attendance_%s_to_%s.xlsx", p.Slug(), p.Start, p.End))
		if err := report.WriteStudentMatrix(ctx, path, m); err != nil {
			return err
		}
		cli.printWrote(ctx, path)
	}
	return nil
}

func (cli *commandLine) studentReport(ctx context.Context, _ string) error {
	for _, p := range cli.reports.Windows() {
		rows, err := cli.reports.StudentSummaries(ctx, p)
		if err != nil {
			return err
		}
		path := filepath.Join(cli.cfg.OutputDir, p.Slug()+"_Student_Attendance.xlsx")
		if err := report.WriteStudentSummary(ctx, path, p, rows); err != nil {
			return err
		}
		cli.printWrote(ctx, path)
	}
	return nil
}

func (cli *commandLine) volunteerReport(ctx context.Context, _ string) error {
	reports, err := cli.reports.VolunteerReports(ctx)
	if err != nil {
		return err
	}
	for _, r := range reports {
		path := filepath.Join(cli.cfg.OutputDir, "Volunteer_"+r.Period.Slug()+"_Report.xlsx")
		if err := report.WriteVolunteerReport(ctx, path, r); err != nil {
			return err
		}
		cli.printf("%s", i18n.T(ctx, "summary_volunteer_window", map[string]any{
			"Period":   r.Period.Name,
			"Eligible": len(r.Eligible()),
			"Total":    len(r.Rows),
		}))
		cli.printWrote(ctx, path)
	}
	return nil
}

func (cli *commandLine) highAttendance(ctx context.Context, _ string) error {
	reports, err := cli.reports.VolunteerReports(ctx)
	if err != nil {
		return err
	}
	path := filepath.Join(cli.cfg.OutputDir, "High_Attendance_Volunteers.xlsx")
	if err := report.WriteHighAttendance(ctx, path, reports); err != nil {
		return err
	}
	cli.printWrote(ctx, path)
	return nil
}

func (cli *commandLine) exportCertificates(ctx context.Context, _ string) error {
	groups, err := cli.reports.CertificateGroups(ctx)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		cli.printf("%s", i18n.T(ctx, "summary_no_certificates"))
		return nil
	}
	for _, g := range groups {
		path := filepath.Join(cli.cfg.OutputDir, report.CertificateFileName(g.Count))
		if err := report.WriteCertificateGroup(ctx, path, g); err != nil {
			return err
		}
		cli.printf("%s", i18n.T(ctx, "summary_certificate_group", map[string]any{
			"Count":    g.Count,
			"Students": len(g.Students),
		}))
		cli.printWrote(ctx, path)
	}
	return nil
}

func (cli *commandLine) winners(ctx context.Context, _ string) error {
	rows, err := cli.reports.Winners(ctx)
	if err != nil {
		return err
	}
	path := filepath.Join(cli.cfg.OutputDir, "winners_data.xlsx")
	if err := report.WriteWinners(ctx, path, rows); err != nil {
		return err
	}
	cli.printWrote(ctx, path)
	return nil
}

func (cli *commandLine) volunteerWinners(ctx context.Context, _ string) error {
	rows, err := cli.reports.VolunteerWinners(ctx)
	if err != nil {
		return err
	}
	day := cli.cfg.Rules.Calendar().Today(cli.now())
	path := filepath.Join(cli.cfg.OutputDir, fmt.Sprintf("volunteer_winners_%s.xlsx", day))
	if err := report.WriteVolunteerWinners(ctx, path, rows); err != nil {
		return err
	}
	cli.printf("%s", i18n.T(ctx, "summary_volunteer_winners", map[string]any{"Count": len(rows)}))
	cli.printWrote(ctx, path)
	return nil
}
