package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/skillflow/skillflow/internal/compliance"
)

// Detail tables show at most this many rows; the summary is unlimited.
const pdfDetailLimit = 10

// PDF renders the report as a paginated document. Any failure falls back
// to the Excel export so the caller always receives a usable stream.
func (x *Exporter) PDF(ctx context.Context, filter string) ([]byte, error) {
	rep, err := x.engine.Report(ctx, filter)
	if err != nil {
		logger.Error("compliance report failed, falling back to workbook", "error", err)
		return x.Excel(ctx, filter)
	}

	data, err := x.renderPDF(rep, filter)
	if err != nil {
		logger.Error("pdf render failed, falling back to workbook", "error", err)
		return x.Excel(ctx, filter)
	}

	return data, nil
}

func (x *Exporter) renderPDF(rep *compliance.Report, filter string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Compliance Report", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	if filter != "" && filter != compliance.FilterAll {
		pdf.CellFormat(0, 6, "Department: "+filter, "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(0, 6, "Department: all", "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	writeHeading(pdf, "Summary")
	writeTable(pdf,
		[]string{"Metric", "Value"},
		[]float64{90, 60},
		summaryTableRows(rep), 0)

	if len(rep.DepartmentCompliance) > 0 {
		writeHeading(pdf, "Department Compliance")
		rows := make([][]string, 0, len(rep.DepartmentCompliance))
		for _, d := range rep.DepartmentCompliance {
			rows = append(rows, []string{
				d.Department,
				fmt.Sprintf("%.2f%%", d.ComplianceRate),
				fmt.Sprint(d.TotalEmployees),
				fmt.Sprint(d.CompliantEmployees),
			})
		}
		writeTable(pdf, []string{"Department", "Compliance Rate", "Employees", "Compliant"},
			[]float64{60, 40, 30, 30}, rows, pdfDetailLimit)
	}

	if len(rep.CertificationStatus) > 0 {
		writeHeading(pdf, "Certification Status")
		rows := make([][]string, 0, len(rep.CertificationStatus))
		for _, c := range rep.CertificationStatus {
			rows = append(rows, []string{
				truncate(c.Certification, 30),
				fmt.Sprint(c.Total),
				fmt.Sprint(c.Valid),
				fmt.Sprint(c.ExpiringSoon),
				fmt.Sprint(c.Expired),
				fmt.Sprintf("%.2f%%", c.ComplianceRate),
			})
		}
		writeTable(pdf, []string{"Certification", "Total", "Valid", "Expiring", "Expired", "Rate"},
			[]float64{60, 22, 22, 25, 22, 22}, rows, pdfDetailLimit)
	}

	if len(rep.UpcomingExpirations) > 0 {
		writeHeading(pdf, "Upcoming Expirations (Next 30 Days)")
		rows := make([][]string, 0, len(rep.UpcomingExpirations))
		for _, e := range rep.UpcomingExpirations {
			rows = append(rows, []string{
				e.EmployeeName,
				truncate(e.CertificationName, 30),
				fmt.Sprint(e.DaysUntilExpiry),
				e.Department,
			})
		}
		writeTable(pdf, []string{"Employee", "Certification", "Days Left", "Department"},
			[]float64{50, 55, 25, 40}, rows, pdfDetailLimit)
	}

	if len(rep.MissingCertifications) > 0 {
		writeHeading(pdf, "Missing Required Certifications")
		rows := make([][]string, 0, len(rep.MissingCertifications))
		for _, m := range rep.MissingCertifications {
			status := "Missing"
			if m.DaysOverdue > 0 {
				status = fmt.Sprintf("%d days overdue", m.DaysOverdue)
			}
			rows = append(rows, []string{
				m.EmployeeName,
				truncate(m.RequiredCertification, 30),
				m.Department,
				status,
			})
		}
		writeTable(pdf, []string{"Employee", "Required Certification", "Department", "Status"},
			[]float64{45, 55, 35, 35}, rows, pdfDetailLimit)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Generated on: "+x.clk.Now().Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func summaryTableRows(rep *compliance.Report) [][]string {
	rows := summaryRows(rep)
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{fmt.Sprint(r[0]), fmt.Sprint(r[1])})
	}
	return out
}

func writeHeading(pdf *fpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func writeTable(pdf *fpdf.Fpdf, headers []string, widths []float64, rows [][]string, limit int) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(220, 220, 220)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		for i, v := range row {
			pdf.CellFormat(widths[i], 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
