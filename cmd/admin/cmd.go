package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"shaheen-admin/internal/config"
	"shaheen-admin/internal/service"
)

var errHelp = errors.New("help provided")

type stores struct {
	students   service.StudentStore
	attendance service.AttendanceStore
	certs      service.CertificateStore
	volunteers service.VolunteerStore
	masjids    service.MasjidStore
	winners    service.WinnerStore
	tx         service.Transactor
}

type commandLine struct {
	cfg *config.Config
	out io.Writer
	now func() time.Time

	certs      *service.CertificateService
	streaks    *service.StreakService
	attendance *service.AttendanceService
	reports    *service.ReportService
	audit      *service.AuditService
	masjids    *service.MasjidService
}

func newCommandLine(cfg *config.Config, s stores, out io.Writer) *commandLine {
	certs := service.NewCertificateService(s.certs)
	streaks := service.NewStreakService(s.students, s.attendance, certs, s.tx, cfg.Rules.Modulo)
	return &commandLine{
		cfg:        cfg,
		out:        out,
		now:        time.Now,
		certs:      certs,
		streaks:    streaks,
		attendance: service.NewAttendanceService(s.students, s.attendance, streaks, cfg.Rules.Calendar()),
		reports: service.NewReportService(s.students, s.attendance, s.volunteers, s.certs, s.winners,
			cfg.Rules.Engine(), cfg.Rules.Windows),
		audit:   service.NewAuditService(s.volunteers, s.attendance),
		masjids: service.NewMasjidService(s.masjids),
	}
}

type task struct {
	name  string
	arg   string // empty when the task takes no argument
	usage string
	run   func(cli *commandLine, ctx context.Context, arg string) error
}

var tasks = []task{
	{"record", "STUDENT_ID", "record today's attendance and refresh the streak", (*commandLine).record},
	{"backfill", "IDS_FILE", "add attendance for BACKFILL_START..BACKFILL_END", (*commandLine).backfill},
	{"delete-attendance", "IDS_FILE", "delete all attendance and reset streaks", (*commandLine).deleteAttendance},
	{"recompute-streak", "STUDENT_ID", "re-apply the streak rule to the stored count", (*commandLine).recomputeStreak},
	{"attendance-calendar", "STUDENT_ID", "day by day history since HISTORY_START", (*commandLine).attendanceCalendar},
	{"todays-attendance", "", "everyone recorded today with masjid and cluster", (*commandLine).todaysAttendance},
	{"student-matrix", "", "P/A matrix per chilla", (*commandLine).studentMatrix},
	{"student-report", "", "student attendance percentages per chilla", (*commandLine).studentReport},
	{"volunteer-report", "", "volunteer activity per chilla", (*commandLine).volunteerReport},
	{"high-attendance", "", "volunteers at or above the eligibility threshold", (*commandLine).highAttendance},
	{"volunteer-certificates", "", "issue and render volunteer certificates", (*commandLine).volunteerCertificates},
	{"export-certificates", "", "student certificates grouped by count", (*commandLine).exportCertificates},
	{"export-certificates-pdf", "COUNT", "certificate PDFs for students with exactly COUNT certificates", (*commandLine).exportCertificatesPDF},
	{"render-certificates", "START..END", "certificate PDFs for certificates issued between two dates", (*commandLine).renderCertificates},
	{"winners", "", "winners with their certificate counts", (*commandLine).winners},
	{"volunteer-winners", "", "volunteer prize winners with phone and masjid", (*commandLine).volunteerWinners},
	{"import-masjids", "XLSX_FILE", "upsert masjids from a spreadsheet", (*commandLine).importMasjids},
	{"audit-volunteer", "NAME", "attendance recorded by a volunteer since HISTORY_START", (*commandLine).auditVolunteer},
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, t := range tasks {
		fmt.Fprintf(w, "  %-24s %-11s - %s\n", t.name, t.arg, t.usage)
	}
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		printUsage(cli.out)
		return errHelp
	}
	for _, t := range tasks {
		if t.name != args[1] {
			continue
		}
		rest := args[2:]
		if (t.arg == "" && len(rest) != 0) || (t.arg != "" && len(rest) != 1) {
			fmt.Fprintf(cli.out, "Usage: %s %s\n", t.name, t.arg)
			return errHelp
		}
		arg := ""
		if len(rest) == 1 {
			arg = rest[0]
		}
		start := cli.now()
		if err := t.run(cli, ctx, arg); err != nil {
			return fmt.Errorf("%s: %w", t.name, err)
		}
		logger.Printf("%s done in %s", t.name, time.Since(start).Round(time.Millisecond))
		return nil
	}
	printUsage(cli.out)
	return errHelp
}

func (cli *commandLine) printf(format string, a ...any) {
	fmt.Fprintf(cli.out, format+"\n", a...)
}
