package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/evalex7/e-plan/internal/model"
	"github.com/evalex7/e-plan/internal/repository"
	"github.com/evalex7/e-plan/internal/schedule"
)

type ExcelGenerator interface {
	Generate(report model.ScheduleReport) ([]byte, error)
}

type PDFGenerator interface {
	Generate(doc model.ReportDocument) ([]byte, error)
}

type DocumentService struct {
	engine *Engine
	excel  ExcelGenerator
	pdf    PDFGenerator
}

type DocumentResult struct {
	FileName string
	Content  []byte
}

func NewDocumentService(engine *Engine, excel ExcelGenerator, pdf PDFGenerator) *DocumentService {
	return &DocumentService{
		engine: engine,
		excel:  excel,
		pdf:    pdf,
	}
}

// ScheduleWorkbook exports non-archived contracts with their next
// maintenance and every task, sorted by date.
func (s *DocumentService) ScheduleWorkbook(_ context.Context) (*DocumentResult, error) {
	today := s.engine.today()
	report := model.ScheduleReport{GeneratedOn: today}

	s.engine.repo.View(func(tx *repository.Tx) {
		objects := tx.Objects()
		engineers := tx.Engineers()
		contracts := tx.Contracts()

		objectName := func(id string) string {
			if i := slices.IndexFunc(objects, func(o model.ServiceObject) bool { return o.ID == id }); i >= 0 {
				return objects[i].Name
			}
			return ""
		}
		engineerName := func(id string) string {
			if i := slices.IndexFunc(engineers, func(e model.ServiceEngineer) bool { return e.ID == id }); i >= 0 {
				return engineers[i].Name
			}
			return ""
		}
		numbers := make(map[string]string, len(contracts))

		for _, c := range contracts {
			numbers[c.ID] = c.ContractNumber
			if c.IsArchived() {
				continue
			}
			next := schedule.Next(c, today, s.engine.opts.Schedule.DueWindowDays)
			report.Contracts = append(report.Contracts, model.ContractSummary{
				Contract:   c,
				ObjectName: objectName(c.ObjectID),
				NextDate:   next.Date,
				NextStatus: string(next.Status),
			})
		}

		for _, t := range tx.Tasks() {
			number, ok := numbers[t.ContractID]
			if !ok {
				continue
			}
			report.Tasks = append(report.Tasks, model.TaskLine{
				Task:           t,
				ContractNumber: number,
				ObjectName:     objectName(t.ObjectID),
				EngineerName:   engineerName(t.EngineerID),
			})
		}
	})
	slices.SortStableFunc(report.Tasks, func(a, b model.TaskLine) int {
		return a.Task.ScheduledDate.Compare(b.Task.ScheduledDate)
	})

	content, err := s.excel.Generate(report)
	if err != nil {
		return nil, err
	}
	return &DocumentResult{
		FileName: fmt.Sprintf("maintenance-schedule-%s.xlsx", today.Time().Format("20060102")),
		Content:  content,
	}, nil
}

// ReportPDF renders the completion certificate of one report.
func (s *DocumentService) ReportPDF(_ context.Context, reportID string) (*DocumentResult, error) {
	var (
		doc model.ReportDocument
		err error
	)
	s.engine.repo.View(func(tx *repository.Tx) {
		if doc.Report, err = tx.Report(reportID); err != nil {
			return
		}
		if doc.Contract, err = tx.Contract(doc.Report.ContractID); err != nil {
			return
		}
		// object and engineer may have been removed since; print what is left
		doc.Object, _ = tx.Object(doc.Contract.ObjectID)
		doc.Engineer, _ = tx.Engineer(doc.Report.EngineerID)
	})
	if err != nil {
		return nil, err
	}

	content, err := s.pdf.Generate(doc)
	if err != nil {
		return nil, err
	}
	return &DocumentResult{
		FileName: buildFileName(doc),
		Content:  content,
	}, nil
}

func buildFileName(doc model.ReportDocument) string {
	number := sanitizeFileName(doc.Contract.ContractNumber)
	if number == "" {
		number = doc.Contract.ID
	}
	department := strings.ToLower(sanitizeFileName(string(doc.Report.Department)))
	date := doc.Report.CompletedDate.Time().Format("20060102")
	if department == "" {
		return fmt.Sprintf("report-%s-%s.pdf", number, date)
	}
	return fmt.Sprintf("report-%s-%s-%s.pdf", number, department, date)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
