package pdf

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taskdeck/internal/models"
)

// Generator is an interface so handlers can swap it in tests.
type Generator interface {
	TodoReport(w io.Writer, data ReportData) error
}

// ReportGenerator renders todo reports. With an empty FontPath the core
// Helvetica font is used, which only covers Latin-1.
type ReportGenerator struct {
	FontPath string
	fontName string
}

type ReportData struct {
	Profile     models.Profile
	Statistics  models.Statistics
	Todos       []models.Todo
	GeneratedAt time.Time
}

func NewReportGenerator(fontPath string) *ReportGenerator {
	g := &ReportGenerator{FontPath: fontPath, fontName: "Helvetica"}
	if fontPath != "" {
		g.fontName = "DejaVu"
	}
	return g
}

func (g *ReportGenerator) TodoReport(w io.Writer, data ReportData) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Task report", false)
	pdf.SetAuthor("Taskdeck", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	g.addUTF8Font(pdf)
	pdf.AddPage()

	// ===== header
	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "TASK REPORT", "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 12)
	pdf.CellFormat(0, 7, data.GeneratedAt.UTC().Format("02.01.2006 15:04")+" UTC", "", 1, "C", false, 0, "")
	g.hr(pdf)

	// ===== owner
	g.sectionTitle(pdf, "Owner")
	g.kvLine(pdf, "Name", data.Profile.Name)
	g.kvLine(pdf, "Username", data.Profile.Username)
	g.kvLine(pdf, "Email", data.Profile.Email)
	g.hr(pdf)

	// ===== statistics
	g.sectionTitle(pdf, "Statistics")
	g.kvLine(pdf, "Total", strconv.Itoa(data.Statistics.Total))
	g.kvLine(pdf, "Completed", strconv.Itoa(data.Statistics.Completed))
	g.kvLine(pdf, "Efficiency", fmt.Sprintf("%.1f%%", data.Statistics.Efficiency))
	g.hr(pdf)

	// ===== tasks
	g.sectionTitle(pdf, "Tasks")
	if len(data.Todos) == 0 {
		pdf.MultiCell(0, 6, "No tasks yet.", "", "L", false)
	} else {
		g.todoTable(pdf, data.Todos)
	}

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func (g *ReportGenerator) todoTable(pdf *gofpdf.Fpdf, todos []models.Todo) {
	widths := []float64{80, 20, 45, 25}
	header := []string{"Title", "Prio", "Deadline", "Status"}

	pdf.SetFont(g.fontName, "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(g.fontName, "", 10)
	for _, t := range todos {
		status := "open"
		if t.IsCompleted {
			status = "done"
		}
		title := t.Title
		if len([]rune(title)) > 40 {
			title = string([]rune(title)[:39]) + "…"
		}
		pdf.CellFormat(widths[0], 6, g.text(pdf, title), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, strconv.Itoa(t.Priority), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 6, t.Deadline.UTC().Format("2006-01-02 15:04"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, status, "1", 1, "L", false, 0, "")
	}
}

// text converts to the core font code page when no UTF-8 font is loaded.
func (g *ReportGenerator) text(pdf *gofpdf.Fpdf, s string) string {
	if g.FontPath != "" {
		return s
	}
	return pdf.UnicodeTranslatorFromDescriptor("")(s)
}

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, g.text(pdf, val), "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

func (g *ReportGenerator) addUTF8Font(pdf *gofpdf.Fpdf) {
	if g.FontPath == "" {
		return
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}
