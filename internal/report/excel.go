// Package report renders compliance reports as xlsx workbooks and PDF
// documents for download.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/skillflow/skillflow/internal/clock"
	"github.com/skillflow/skillflow/internal/compliance"
)

var logger = slog.Default()

// SetLogger overrides the package logger.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

const maxColWidth = 50

// Exporter turns compliance reports into downloadable byte streams.
type Exporter struct {
	engine *compliance.Engine
	clk    clock.Clock
}

func NewExporter(engine *compliance.Engine, clk clock.Clock) *Exporter {
	if clk == nil {
		clk = clock.System(nil)
	}
	return &Exporter{engine: engine, clk: clk}
}

// Filename builds the download name, e.g.
// compliance_report_20260115_143002.xlsx.
func Filename(ext string, t time.Time) string {
	return fmt.Sprintf("compliance_report_%s.%s", t.Format("20060102_150405"), ext)
}

// Excel renders the report for a department filter as an xlsx workbook.
// Any failure degrades to a minimal single-sheet "Error" workbook; an error
// return means even that could not be produced.
func (x *Exporter) Excel(ctx context.Context, filter string) ([]byte, error) {
	rep, err := x.engine.Report(ctx, filter)
	if err != nil {
		logger.Error("compliance report failed, producing error workbook", "error", err)
		return errorWorkbook(err)
	}

	data, err := renderWorkbook(rep)
	if err != nil {
		logger.Error("workbook render failed, producing error workbook", "error", err)
		return errorWorkbook(err)
	}

	return data, nil
}

func renderWorkbook(rep *compliance.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return nil, err
	}
	if err := fillSheet(f, "Summary", []string{"Metric", "Value"}, summaryRows(rep)); err != nil {
		return nil, err
	}

	if len(rep.DepartmentCompliance) > 0 {
		rows := make([][]any, 0, len(rep.DepartmentCompliance))
		for _, d := range rep.DepartmentCompliance {
			rows = append(rows, []any{
				d.Department,
				fmt.Sprintf("%.2f%%", d.ComplianceRate),
				d.TotalEmployees,
				d.CompliantEmployees,
				d.CompletedTrainings,
				d.PendingTrainings,
				d.TotalTrainings,
			})
		}
		if err := addSheet(f, "Department Compliance",
			[]string{"Department", "Compliance Rate", "Total Employees", "Compliant Employees", "Completed Trainings", "Pending Trainings", "Total Trainings"},
			rows); err != nil {
			return nil, err
		}
	}

	if len(rep.CertificationStatus) > 0 {
		rows := make([][]any, 0, len(rep.CertificationStatus))
		for _, c := range rep.CertificationStatus {
			rows = append(rows, []any{
				c.Certification, c.Total, c.Valid, c.ExpiringSoon, c.Expired,
				fmt.Sprintf("%.2f%%", c.ComplianceRate),
			})
		}
		if err := addSheet(f, "Certification Status",
			[]string{"Certification", "Total", "Valid", "Expiring Soon", "Expired", "Compliance Rate"},
			rows); err != nil {
			return nil, err
		}
	}

	if len(rep.UpcomingExpirations) > 0 {
		rows := make([][]any, 0, len(rep.UpcomingExpirations))
		for _, e := range rep.UpcomingExpirations {
			rows = append(rows, []any{e.EmployeeName, e.CertificationName, e.ExpiryDate, e.DaysUntilExpiry, e.Department})
		}
		if err := addSheet(f, "Upcoming Expirations",
			[]string{"Employee", "Certification", "Expiry Date", "Days Until Expiry", "Department"},
			rows); err != nil {
			return nil, err
		}
	}

	if len(rep.MissingCertifications) > 0 {
		rows := make([][]any, 0, len(rep.MissingCertifications))
		for _, m := range rep.MissingCertifications {
			rows = append(rows, []any{m.EmployeeName, m.RequiredCertification, m.Department, m.DaysOverdue})
		}
		if err := addSheet(f, "Missing Certifications",
			[]string{"Employee", "Required Certification", "Department", "Days Overdue"},
			rows); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func summaryRows(rep *compliance.Report) [][]any {
	return [][]any{
		{"Total Employees", rep.TotalEmployees},
		{"Compliant Employees", rep.CompliantEmployees},
		{"Non-Compliant Employees", rep.NonCompliantEmployees},
		{"Overall Compliance Rate", fmt.Sprintf("%.2f%%", rep.OverallComplianceRate)},
		{"Expiring Soon", rep.ExpiringSoon},
		{"Expired Certifications", rep.ExpiredCertifications},
		{"Total Trainings", rep.TotalTrainings},
		{"Completed Trainings", rep.CompletedTrainings},
		{"Pending Trainings", rep.PendingTrainings},
	}
}

func addSheet(f *excelize.File, name string, headers []string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	return fillSheet(f, name, headers, rows)
}

func fillSheet(f *excelize.File, name string, headers []string, rows [][]any) error {
	widths := make([]int, len(headers))

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, h); err != nil {
			return err
		}
		widths[col] = len(h)
	}

	for r, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, cell, v); err != nil {
				return err
			}
			if col < len(widths) {
				if n := len(fmt.Sprint(v)); n > widths[col] {
					widths[col] = n
				}
			}
		}
	}

	// Auto-size columns to content, capped.
	for col, w := range widths {
		letter, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		width := float64(w + 2)
		if width > maxColWidth {
			width = maxColWidth
		}
		if err := f.SetColWidth(name, letter, letter, width); err != nil {
			return err
		}
	}

	return nil
}

// errorWorkbook is the last-resort export: a single "Error" sheet carrying
// the failure message, still a valid xlsx stream.
func errorWorkbook(cause error) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Error"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue("Error", "A1", "Error occurred during export"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue("Error", "A2", cause.Error()); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error workbook: %w", err)
	}

	return buf.Bytes(), nil
}
