// Package certpdf renders certificates as text drawn over a template image.
package certpdf

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/go-pdf/fpdf"
)

const (
	pageWidth  = 3508
	pageHeight = 2481

	minFontSize = 7
	fontStep    = 0.5

	fontFamily = "certificate"
)

// Field places one line of text. X is the left edge and Y the baseline, both
// measured from the top-left corner in points.
type Field struct {
	X, Y     float64
	MaxWidth float64
	Size     float64
}

type Layout struct {
	Name   Field
	Date   Field
	Masjid Field
}

// StudentLayout fits the cluster certificate templates.
var StudentLayout = Layout{
	Name:   Field{X: 1700, Y: 1315, MaxWidth: 1300, Size: 58},
	Date:   Field{X: 1200, Y: 1530, MaxWidth: 650, Size: 45},
	Masjid: Field{X: 2200, Y: 1530, MaxWidth: 1300, Size: 52},
}

// VolunteerLayout fits the volunteer certificate template, which has no date.
var VolunteerLayout = Layout{
	Name:   Field{X: 1500, Y: pageHeight - 1300, MaxWidth: 1500, Size: 60},
	Masjid: Field{X: 1150, Y: pageHeight - 1100, MaxWidth: 1000, Size: 50},
}

// Page is the text of one certificate.
type Page struct {
	Name   string
	Date   string
	Masjid string
}

// Renderer draws certificates with a TrueType font, or Helvetica when none is available.
type Renderer struct {
	font []byte
}

func NewRenderer(fontPath string) (*Renderer, error) {
	if fontPath == "" {
		return &Renderer{}, nil
	}
	font, err := os.ReadFile(fontPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("WARN font %s not found, using Helvetica", fontPath)
		return &Renderer{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	return &Renderer{font: font}, nil
}

// Render writes one page per entry of pages to w. An empty template renders blank pages.
func (r *Renderer) Render(w io.Writer, template string, layout Layout, pages []Page) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	family, translate := r.setupFont(pdf)
	for _, p := range pages {
		pdf.AddPage()
		if template != "" {
			pdf.ImageOptions(template, 0, 0, pageWidth, pageHeight, false, fpdf.ImageOptions{ReadDpi: false}, 0, "")
		}
		pdf.SetTextColor(0, 0, 0)
		drawField(pdf, family, layout.Name, translate(p.Name))
		drawField(pdf, family, layout.Date, translate(p.Date))
		drawField(pdf, family, layout.Masjid, translate(p.Masjid))
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render certificate: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write certificate: %w", err)
	}
	return nil
}

func (r *Renderer) setupFont(pdf *fpdf.Fpdf) (string, func(string) string) {
	if len(r.font) > 0 {
		pdf.AddUTF8FontFromBytes(fontFamily, "", r.font)
		return fontFamily, func(s string) string { return s }
	}
	return "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
}

func drawField(pdf *fpdf.Fpdf, family string, f Field, text string) {
	if text == "" || f.Size == 0 {
		return
	}
	size := FitSize(func(size float64) float64 {
		pdf.SetFont(family, "", size)
		return pdf.GetStringWidth(text)
	}, f.Size, f.MaxWidth)
	pdf.SetFont(family, "", size)
	pdf.Text(f.X, f.Y, text)
}

// FitSize shrinks base in half-point steps until measure(size) fits maxWidth,
// stopping at 7pt. A zero maxWidth disables fitting.
func FitSize(measure func(size float64) float64, base, maxWidth float64) float64 {
	if maxWidth <= 0 {
		return base
	}
	size := base
	for measure(size) > maxWidth && size > minFontSize {
		size -= fontStep
	}
	return size
}
