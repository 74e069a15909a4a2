package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"shaheen-admin/internal/certpdf"
	"shaheen-admin/internal/chilla"
	"shaheen-admin/internal/i18n"
	"shaheen-admin/internal/normalize"
	"shaheen-admin/internal/service"
)

const certificateDateLayout = "02-01-2006"

// templateOrBlank returns path when the template exists, otherwise "" so pages render
// without a background.
func templateOrBlank(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Printf("WARN template %s not found, rendering without background", path)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("stat template: %w", err)
	}
	return path, nil
}

func (cli *commandLine) volunteerCertificates(ctx context.Context, _ string) error {
	reports, err := cli.reports.VolunteerReports(ctx)
	if err != nil {
		return err
	}
	renderer, err := certpdf.NewRenderer(cli.cfg.FontPath)
	if err != nil {
		return err
	}
	template, err := templateOrBlank(cli.cfg.VolunteerTemplate)
	if err != nil {
		return err
	}

	var issued, existing, rendered, failed int
	limit := cli.cfg.CertificateLimit
	for _, r := range reports {
		dir := filepath.Join(cli.cfg.OutputDir, r.Period.Slug())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		for _, row := range r.Eligible() {
			if limit > 0 && rendered >= limit {
				logger.Printf("Certificate limit %d reached", limit)
				break
			}
			_, ok, err := cli.certs.IssueVolunteer(ctx, row.Volunteer, row.Summary)
			if err != nil {
				logger.Printf("ERROR issue certificate for %s: %v", row.Volunteer.ID, err)
				failed++
				continue
			}
			if ok {
				issued++
			} else {
				existing++
			}

			name := fmt.Sprintf("%s_%s.pdf", normalize.SafeFileName(row.Volunteer.Name), row.Volunteer.ID)
			page := certpdf.Page{
				Name:   normalize.TitleCase(row.Volunteer.Name),
				Masjid: normalize.TitleCase(row.Volunteer.Masjid),
			}
			if err := writePDF(filepath.Join(dir, name), func(w io.Writer) error {
				return renderer.Render(w, template, certpdf.VolunteerLayout, []certpdf.Page{page})
			}); err != nil {
				logger.Printf("ERROR render certificate for %s: %v", row.Volunteer.ID, err)
				failed++
				continue
			}
			rendered++
		}
	}
	cli.printf("%s", i18n.T(ctx, "summary_volunteer_certificates", map[string]any{
		"Issued":   issued,
		"Existing": existing,
		"Rendered": rendered,
		"Failed":   failed,
	}))
	return nil
}

func writePDF(path string, render func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// masjidPages holds the pages of one masjid inside a cluster.
type masjidPages struct {
	cluster string
	masjid  string
	pages   []certpdf.Page
}

func (cli *commandLine) exportCertificatesPDF(ctx context.Context, arg string) error {
	count, err := strconv.Atoi(arg)
	if err != nil || count < 1 {
		return fmt.Errorf("invalid certificate count %q", arg)
	}
	g, err := cli.reports.GroupWithCount(ctx, count)
	if err != nil {
		return err
	}
	if g == nil {
		cli.printf("%s", i18n.T(ctx, "summary_no_group", map[string]any{"Count": count}))
		return nil
	}
	path := filepath.Join(cli.cfg.OutputDir, fmt.Sprintf("certificates_%d.zip", count))
	return cli.writeCertificateArchive(ctx, path, g.Students)
}

// renderCertificates renders the student certificates issued within a
// "YYYY-MM-DD..YYYY-MM-DD" range of local days.
func (cli *commandLine) renderCertificates(ctx context.Context, arg string) error {
	start, end, err := chilla.ParseRange(arg)
	if err != nil {
		return fmt.Errorf("invalid date range %q: %w", arg, err)
	}
	students, err := cli.reports.CertificatesBetween(ctx, start, end)
	if err != nil {
		return err
	}
	cli.printf("%s", i18n.T(ctx, "summary_rendered_range", map[string]any{"From": start.String(), "To": end.String()}))
	if len(students) == 0 {
		cli.printf("%s", i18n.T(ctx, "summary_no_certificates"))
		return nil
	}
	path := filepath.Join(cli.cfg.OutputDir, fmt.Sprintf("certificates_%s_to_%s.zip", start, end))
	return cli.writeCertificateArchive(ctx, path, students)
}

// writeCertificateArchive renders one PDF per masjid of students into a zip
// laid out as clusters/cluster_NN/<masjid>.pdf.
func (cli *commandLine) writeCertificateArchive(ctx context.Context, path string, students []*service.CertifiedStudent) error {
	renderer, err := certpdf.NewRenderer(cli.cfg.FontPath)
	if err != nil {
		return err
	}

	groups := groupPages(students, cli.cfg.Rules.Calendar().Location())
	archive, err := certpdf.CreateArchive(path)
	if err != nil {
		return err
	}

	var files, pages, failed int
	templates := make(map[string]string)
	for _, mp := range groups {
		template, ok := templates[mp.cluster]
		if !ok {
			if template, err = templateOrBlank(certpdf.ClusterTemplate(cli.cfg.TemplateDir, mp.cluster)); err != nil {
				archive.Close()
				return err
			}
			templates[mp.cluster] = template
		}
		name := certpdf.ClusterDir(mp.cluster) + "/" + normalize.SafeFileName(mp.masjid) + ".pdf"
		if err := archive.Add(name, func(w io.Writer) error {
			return renderer.Render(w, template, certpdf.StudentLayout, mp.pages)
		}); err != nil {
			logger.Printf("ERROR %v", err)
			failed++
			continue
		}
		files++
		pages += len(mp.pages)
	}
	if err := archive.Close(); err != nil {
		return err
	}

	cli.printf("%s", i18n.T(ctx, "summary_certificate_pdfs", map[string]any{
		"Files":  files,
		"Pages":  pages,
		"Failed": failed,
	}))
	cli.printWrote(ctx, path)
	return nil
}

// groupPages lays out one page per certificate, merged per masjid in the
// students' cluster, masjid and name order.
func groupPages(students []*service.CertifiedStudent, loc *time.Location) []*masjidPages {
	var out []*masjidPages
	index := make(map[string]*masjidPages)
	for _, cs := range students {
		cluster := orValue(cs.Cluster, service.Unknown)
		masjid := orValue(cs.MasjidName, service.UnknownMasjid)
		key := cluster + "\x00" + masjid
		mp, ok := index[key]
		if !ok {
			mp = &masjidPages{cluster: cluster, masjid: masjid}
			index[key] = mp
			out = append(out, mp)
		}
		for _, c := range cs.Certificates {
			date := ""
			if !c.Time.IsZero() {
				date = c.Time.In(loc).Format(certificateDateLayout)
			}
			mp.pages = append(mp.pages, certpdf.Page{
				Name:   normalize.TitleCase(cs.Name),
				Date:   date,
				Masjid: normalize.TitleCase(masjid),
			})
		}
	}
	return out
}

func orValue(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
