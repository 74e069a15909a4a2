package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"shaheen-admin/internal/chilla"
	"shaheen-admin/internal/i18n"
	"shaheen-admin/internal/report"
)

func (cli *commandLine) record(ctx context.Context, studentID string) error {
	res, err := cli.attendance.Record(ctx, studentID)
	if err != nil {
		return err
	}
	key := "summary_recorded"
	if !res.Created {
		key = "summary_already_recorded"
	}
	cli.printf("%s", i18n.T(ctx, key, map[string]any{"ID": res.Event.ID}))
	cli.printStreak(ctx, res.Streak)
	return nil
}

func (cli *commandLine) recomputeStreak(ctx context.Context, studentID string) error {
	res, err := cli.streaks.Refresh(ctx, studentID)
	if err != nil {
		return err
	}
	cli.printStreak(ctx, res)
	return nil
}

func (cli *commandLine) backfill(ctx context.Context, idsFile string) error {
	ids, err := readIDs(idsFile)
	if err != nil {
		return err
	}
	today := cli.cfg.Rules.Calendar().Today(cli.now())
	start, end := orDate(cli.cfg.BackfillStart, today), orDate(cli.cfg.BackfillEnd, today)

	sum, err := cli.attendance.Backfill(ctx, ids, start, end)
	if sum != nil {
		cli.printf("%s", i18n.T(ctx, "summary_backfill", map[string]any{
			"Days":    sum.Days,
			"Created": sum.Created,
			"Skipped": sum.Skipped,
			"Missing": len(sum.Missing),
			"Failed":  sum.Failed,
		}))
		if len(sum.Missing) > 0 {
			cli.printf("%s: %s", i18n.T(ctx, "summary_missing"), strings.Join(sum.Missing, ", "))
		}
	}
	return err
}

func (cli *commandLine) deleteAttendance(ctx context.Context, idsFile string) error {
	ids, err := readIDs(idsFile)
	if err != nil {
		return err
	}
	sum := cli.attendance.DeleteAll(ctx, ids)
	cli.printf("%s", i18n.T(ctx, "summary_deleted", map[string]any{
		"Students": sum.Students,
		"Events":   sum.Events,
		"Failed":   sum.Failed,
	}))
	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d students failed", sum.Failed, len(ids))
	}
	return nil
}

func (cli *commandLine) attendanceCalendar(ctx context.Context, studentID string) error {
	cal := cli.cfg.Rules.Calendar()
	st, days, err := cli.attendance.History(ctx, studentID, cli.cfg.HistoryStart, cal.Today(cli.now()))
	if err != nil {
		return err
	}
	path := filepath.Join(cli.cfg.OutputDir, fmt.Sprintf("attendance_%s.xlsx", studentID))
	if err := report.WriteAttendanceCalendar(ctx, path, st, days, cal.Location()); err != nil {
		return err
	}
	present := 0
	for _, d := range days {
		if d.Present {
			present++
		}
	}
	cli.printf("%s", i18n.T(ctx, "summary_calendar", map[string]any{"Present": present, "Days": len(days)}))
	cli.printWrote(ctx, path)
	return nil
}

func orDate(d, def chilla.Date) chilla.Date {
	if d.IsZero() {
		return def
	}
	return d
}

func (cli *commandLine) todaysAttendance(ctx context.Context, _ string) error {
	day := cli.cfg.Rules.Calendar().Today(cli.now())
	evts, err := cli.reports.AttendanceOn(ctx, day)
	if err != nil {
		return err
	}
	if len(evts) == 0 {
		cli.printf("%s", i18n.T(ctx, "summary_no_attendance_on", map[string]any{"Day": day.String()}))
		return nil
	}
	path := filepath.Join(cli.cfg.OutputDir, fmt.Sprintf("todays_attendance_%s.xlsx", day))
	if err := report.WriteDailyAttendance(ctx, path, evts); err != nil {
		return err
	}
	cli.printf("%s", i18n.T(ctx, "summary_attendance_on", map[string]any{"Count": len(evts), "Day": day.String()}))
	cli.printWrote(ctx, path)
	return nil
}
