package pdf

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/evalex7/e-plan/internal/model"
)

const fallbackFont = "Helvetica"

type Generator struct {
	fontName string
	fontData []byte
}

// NewGenerator loads the TTF at fontPath for Cyrillic text. With an empty
// path the core Helvetica font is used and characters outside cp1252 are
// not rendered faithfully.
func NewGenerator(fontPath string) (*Generator, error) {
	if strings.TrimSpace(fontPath) == "" {
		return &Generator{fontName: fallbackFont}, nil
	}
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("font data is empty")
	}
	return &Generator{fontName: "ReportFont", fontData: data}, nil
}

// Generate renders the certificate of completed maintenance work for a report.
func (g *Generator) Generate(doc model.ReportDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	tr := func(s string) string { return s }
	if g.fontData != nil {
		pdf.AddUTF8FontFromBytes(g.fontName, "", g.fontData)
		pdf.AddUTF8FontFromBytes(g.fontName, "B", g.fontData)
	} else {
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	report := doc.Report
	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr("АКТ виконаних робіт з технічного обслуговування"), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("від %s", report.CompletedDate.Display())), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Договір № %s (%s - %s)",
		doc.Contract.ContractNumber, doc.Contract.StartDate.Display(), doc.Contract.EndDate.Display())), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	addBlock(pdf, g.fontName, tr, "Замовник", []string{doc.Contract.ClientName})
	pdf.Ln(2)
	addBlock(pdf, g.fontName, tr, "Об'єкт", []string{
		doc.Object.Name,
		fmt.Sprintf("Адреса: %s", safeValue(doc.Object.Address)),
		fmt.Sprintf("Контактна особа: %s %s", safeValue(doc.Object.ContactPerson), doc.Object.ContactPhone),
	})
	pdf.Ln(2)
	addBlock(pdf, g.fontName, tr, "Виконавець", []string{
		doc.Engineer.Name,
		fmt.Sprintf("Телефон: %s", safeValue(doc.Engineer.Phone)),
	})
	pdf.Ln(4)

	headers := []string{"Відділ", "Дата", "Початок", "Кінець"}
	colWidths := []float64{45, 45, 45, 45}
	drawTableRow(pdf, g.fontName, tr, headers, colWidths, true)
	drawTableRow(pdf, g.fontName, tr, []string{
		string(report.Department),
		report.CompletedDate.Display(),
		safeValue(report.StartTime),
		safeValue(report.EndTime),
	}, colWidths, false)
	pdf.Ln(4)

	sections := []struct {
		title string
		body  string
	}{
		{"Виконані роботи", report.WorkDescription},
		{"Виявлені несправності", report.Issues},
		{"Рекомендації", report.Recommendations},
		{"Використані матеріали", report.MaterialsUsed},
		{"Примітки до наступного ТО", report.NextMaintenanceNotes},
	}
	for _, s := range sections {
		if strings.TrimSpace(s.body) == "" {
			continue
		}
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, tr(s.title), "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 11)
		pdf.MultiCell(0, 6, tr(s.body), "", "L", false)
		pdf.Ln(2)
	}

	pdf.Ln(4)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Підписи сторін"), "", 1, "L", false, 0, "")
	signatureBlock(pdf, g.fontName, tr, "Замовник", "")
	signatureBlock(pdf, g.fontName, tr, "Виконавець", doc.Engineer.Name)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addBlock(pdf *gofpdf.Fpdf, fontName string, tr func(string) string, title string, lines []string) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 6, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	for _, line := range lines {
		pdf.MultiCell(0, 5, tr(safeValue(line)), "", "L", false)
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		pdf.CellFormat(widths[i], 8, tr(col), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
}

func signatureBlock(pdf *gofpdf.Fpdf, fontName string, tr func(string) string, label, name string) {
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s: ______________________ /%s/", label, safeValue(name))), "", 1, "L", false, 0, "")
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}
