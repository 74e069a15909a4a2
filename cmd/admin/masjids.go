package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"shaheen-admin/internal/i18n"
	"shaheen-admin/internal/report"
)

func (cli *commandLine) importMasjids(ctx context.Context, path string) error {
	rows, err := report.ReadRows(path)
	if err != nil {
		return err
	}
	sum := cli.masjids.Import(ctx, rows)
	cli.printf("%s", i18n.T(ctx, "summary_import", map[string]any{
		"Imported": sum.Imported,
		"Skipped":  sum.Skipped,
		"Failed":   sum.Failed,
	}))
	if sum.Failed > 0 {
		return fmt.Errorf("%d masjids failed to import", sum.Failed)
	}
	return nil
}

func (cli *commandLine) auditVolunteer(ctx context.Context, fragment string) error {
	found, err := cli.audit.FindVolunteers(ctx, fragment)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	switch len(found) {
	case 0:
		cli.printf("%s", i18n.T(ctx, "summary_no_volunteer", map[string]any{"Name": fragment}))
		return nil
	case 1:
	default:
		cli.printf("%s", i18n.T(ctx, "summary_volunteer_candidates", map[string]any{"Count": len(found)}))
		for _, v := range found {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Name, v.ID, v.Masjid)
		}
		return nil
	}

	v := found[0]
	cal := cli.cfg.Rules.Calendar()
	evts, err := cli.audit.Activity(ctx, v.ID, cal.Midnight(cli.cfg.HistoryStart))
	if err != nil {
		return err
	}
	cli.printf("%s", i18n.T(ctx, "summary_volunteer_activity", map[string]any{
		"Name":  v.Name,
		"Count": len(evts),
		"Since": cli.cfg.HistoryStart.String(),
	}))
	for _, e := range evts {
		at := e.AttendanceTime.In(cal.Location())
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", at.Format("2006-01-02"), at.Format("15:04:05"), e.DisplayName, e.StudentID)
	}
	return nil
}
