package compliance

import (
	"context"
	"fmt"
	"time"
)

// Alert is one actionable compliance issue with a sample of the affected
// rows attached.
type Alert struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Count   int    `json:"count"`
	Data    any    `json:"data"`
}

// AlertsResult splits issues into alerts (need action now) and warnings.
type AlertsResult struct {
	Alerts      []Alert `json:"alerts"`
	Warnings    []Alert `json:"warnings"`
	TotalAlerts int     `json:"total_alerts"`
	GeneratedAt string  `json:"generated_at"`
}

// Summary is the high-level compliance overview for the landing view.
type Summary struct {
	OverallCompliance           float64 `json:"overall_compliance"`
	TotalEmployees              int     `json:"total_employees"`
	CompliantEmployees          int     `json:"compliant_employees"`
	NonCompliantEmployees       int     `json:"non_compliant_employees"`
	ExpiringSoon                int     `json:"expiring_soon"`
	ExpiredCertifications       int     `json:"expired_certifications"`
	TotalTrainings              int     `json:"total_trainings"`
	CompletedTrainings          int     `json:"completed_trainings"`
	PendingTrainings            int     `json:"pending_trainings"`
	RiskLevel                   string  `json:"risk_level"`
	TopPerformingDepartment     string  `json:"top_performing_department,omitempty"`
	LowestPerformingDepartment  string  `json:"lowest_performing_department,omitempty"`
	CriticalExpirationsCount    int     `json:"critical_expirations_count"`
	MissingCertificationsCount  int     `json:"missing_certifications_count"`
	GeneratedAt                 string  `json:"generated_at"`
}

const lowComplianceThreshold = 70.0

// sample limit for alert payloads.
const alertSampleSize = 5

// Alerts collects critical expirations (7 days or less), low-compliance
// departments and missing certifications across all departments.
func (g *Engine) Alerts(ctx context.Context) (*AlertsResult, error) {
	s, err := g.load(ctx)
	if err != nil {
		return nil, err
	}
	now := g.clk.Now()

	res := &AlertsResult{
		Alerts:      []Alert{},
		Warnings:    []Alert{},
		GeneratedAt: now.Format(time.RFC3339),
	}

	var critical []UpcomingExpiration
	for _, exp := range g.upcomingExpirations(s, FilterAll, now) {
		if exp.DaysUntilExpiry <= criticalWindowDays {
			critical = append(critical, exp)
		}
	}
	if len(critical) > 0 {
		res.Alerts = append(res.Alerts, Alert{
			Type:    "critical_expiration",
			Title:   "Certifications Expiring Soon",
			Message: fmt.Sprintf("%d certifications expiring in %d days or less", len(critical), criticalWindowDays),
			Count:   len(critical),
			Data:    sample(critical),
		})
	}

	var lowDepts []DepartmentCompliance
	for _, dept := range g.departmentCompliance(s, FilterAll, now) {
		if dept.ComplianceRate < lowComplianceThreshold {
			lowDepts = append(lowDepts, dept)
		}
	}
	if len(lowDepts) > 0 {
		type deptRate struct {
			Department string  `json:"department"`
			Rate       float64 `json:"rate"`
		}
		rates := make([]deptRate, 0, len(lowDepts))
		for _, dept := range lowDepts {
			rates = append(rates, deptRate{Department: dept.Department, Rate: dept.ComplianceRate})
		}
		res.Warnings = append(res.Warnings, Alert{
			Type:    "low_compliance",
			Title:   "Low Compliance Departments",
			Message: fmt.Sprintf("%d departments have compliance below %.0f%%", len(lowDepts), lowComplianceThreshold),
			Count:   len(lowDepts),
			Data:    rates,
		})
	}

	missing := g.missingCertifications(s, FilterAll, now)
	if len(missing) > 0 {
		res.Warnings = append(res.Warnings, Alert{
			Type:    "missing_certifications",
			Title:   "Missing Required Certifications",
			Message: fmt.Sprintf("%d employees missing required certifications", len(missing)),
			Count:   len(missing),
			Data:    sample(missing),
		})
	}

	res.TotalAlerts = len(res.Alerts) + len(res.Warnings)
	return res, nil
}

func sample[T any](items []T) []T {
	if len(items) > alertSampleSize {
		return items[:alertSampleSize]
	}
	return items
}

// ComplianceSummary condenses the full report into the headline numbers
// plus a risk level derived from the overall rate.
func (g *Engine) ComplianceSummary(ctx context.Context) (*Summary, error) {
	s, err := g.load(ctx)
	if err != nil {
		return nil, err
	}
	now := g.clk.Now()

	var total, compliant, expiringSoon, expired int
	for i := range s.employees {
		total++
		st := g.classify(s, s.employees[i].ID, now)
		if st.compliant {
			compliant++
		}
		if st.hasExpiring {
			expiringSoon++
		}
		if st.hasExpired {
			expired++
		}
	}

	var rate float64
	if total > 0 {
		rate = round2(float64(compliant) / float64(total) * 100)
	}

	risk := "Low"
	switch {
	case rate < 70:
		risk = "High"
	case rate < 85:
		risk = "Medium"
	}

	stats := g.trainingStats(s, FilterAll)

	sum := &Summary{
		OverallCompliance:          rate,
		TotalEmployees:             total,
		CompliantEmployees:         compliant,
		NonCompliantEmployees:      total - compliant,
		ExpiringSoon:               expiringSoon,
		ExpiredCertifications:      expired,
		TotalTrainings:             stats.TotalTrainings,
		CompletedTrainings:         stats.CompletedTrainings,
		PendingTrainings:           stats.PendingTrainings,
		MissingCertificationsCount: len(g.missingCertifications(s, FilterAll, now)),
		GeneratedAt:                now.Format(time.RFC3339),
	}
	sum.RiskLevel = risk

	for _, exp := range g.upcomingExpirations(s, FilterAll, now) {
		if exp.DaysUntilExpiry <= criticalWindowDays {
			sum.CriticalExpirationsCount++
		}
	}

	depts := g.departmentCompliance(s, FilterAll, now)
	if len(depts) > 0 {
		top, low := depts[0], depts[0]
		for _, d := range depts[1:] {
			if d.ComplianceRate > top.ComplianceRate {
				top = d
			}
			if d.ComplianceRate < low.ComplianceRate {
				low = d
			}
		}
		sum.TopPerformingDepartment = top.Department
		sum.LowestPerformingDepartment = low.Department
	}

	return sum, nil
}
