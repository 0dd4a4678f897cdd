// Package dashboard assembles the single snapshot the UI renders: totals
// with day-over-day growth, employee status distribution, certification
// alert buckets, a training progress feed and sample metric rows.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"time"

	"github.com/skillflow/skillflow/internal/clock"
	"github.com/skillflow/skillflow/pkg/models"
	"github.com/skillflow/skillflow/pkg/repository"
)

var logger = slog.Default()

// SetLogger overrides the package logger.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

const (
	progressFeedSize = 8
	metricSampleSize = 4
	alertWindow      = 30 * 24 * time.Hour
	soonWindow       = 7 * 24 * time.Hour
)

// Stats mirrors the headline numbers of the dashboard payload. Growth
// percentages compare today against end-of-yesterday baselines in the
// report timezone. TrainingHoursGrowthPercentage is a known stub fixed
// at 0.0.
type Stats struct {
	TotalEmployees         int64   `json:"total_employees"`
	TotalTrainings         int64   `json:"total_trainings"`
	TotalCertifications    int64   `json:"total_certifications"`
	ActiveEnrollments      int64   `json:"active_enrollments"`
	TotalDepartments       int64   `json:"total_departments"`
	ExpiringCertifications int64   `json:"expiring_certifications"`
	CompletionRate         float64 `json:"completion_rate"`
	TotalTrainingHours     int64   `json:"total_training_hours"`

	EmployeeGrowthPercentage      float64 `json:"employee_growth_percentage"`
	EnrollmentGrowthPercentage    float64 `json:"enrollment_growth_percentage"`
	CertificationGrowthPercentage float64 `json:"certification_growth_percentage"`
	ExpiringChangePercentage      float64 `json:"expiring_change_percentage"`
	CompletionChangePercentage    float64 `json:"completion_change_percentage"`
	TrainingHoursGrowthPercentage float64 `json:"training_hours_growth_percentage"`
}

type StatusBucket struct {
	Label   string `json:"label"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

type TopPerformer struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Performance int    `json:"performance"`
}

type EmployeeStatus struct {
	TotalEmployees int            `json:"total_employees"`
	Distribution   []StatusBucket `json:"distribution"`
	TopPerformer   TopPerformer   `json:"top_performer"`
}

type AlertItem struct {
	ID                int64  `json:"id"`
	EmployeeName      string `json:"employee_name"`
	Role              string `json:"role"`
	Department        string `json:"department"`
	CertificationName string `json:"certification_name"`
	ExpiryDate        string `json:"expiry_date"`
	Status            string `json:"status"`
	AvatarURL         string `json:"avatar_url"`
}

type CertificationAlerts struct {
	Total         int         `json:"total"`
	Expired       []AlertItem `json:"expired"`
	ExpiringSoon  []AlertItem `json:"expiring_soon"`
	ExpiringLater []AlertItem `json:"expiring_later"`
	PeriodLabel   string      `json:"period_label"`
}

type ProgressItem struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Role             string `json:"role"`
	AvatarURL        string `json:"avatar_url"`
	TrainingName     string `json:"training_name"`
	Progress         int    `json:"progress"`
	Status           string `json:"status"`
	StartDate        string `json:"start_date,omitempty"`
	EndDate          string `json:"end_date,omitempty"`
	CompletionDate   string `json:"completion_date,omitempty"`
	HasCertification bool   `json:"has_certification"`
}

type MetricRow struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Role          string `json:"role,omitempty"`
	Status        string `json:"status,omitempty"`
	AvatarURL     string `json:"avatar_url"`
	Department    string `json:"department,omitempty"`
	EmployeeCount int    `json:"employee_count,omitempty"`
	TrainingCount int    `json:"training_count,omitempty"`
}

type HRMetrics struct {
	Employees   []MetricRow `json:"employees"`
	Trainings   []MetricRow `json:"trainings"`
	Departments []MetricRow `json:"departments"`
}

// Snapshot is the full dashboard payload.
type Snapshot struct {
	Stats            Stats               `json:"stats"`
	EmployeeStatus   EmployeeStatus      `json:"employee_status"`
	Alerts           CertificationAlerts `json:"certification_alerts"`
	TrainingProgress []ProgressItem      `json:"training_progress"`
	HRMetrics        HRMetrics           `json:"hr_metrics"`
}

// Aggregator reads the repositories and builds snapshots.
type Aggregator struct {
	departments repository.DepartmentRepo
	employees   repository.EmployeeRepo
	trainings   repository.TrainingRepo
	enrollments repository.EnrollmentRepo
	certs       repository.CertificationRepo
	clk         clock.Clock
}

func NewAggregator(
	departments repository.DepartmentRepo,
	employees repository.EmployeeRepo,
	trainings repository.TrainingRepo,
	enrollments repository.EnrollmentRepo,
	certs repository.CertificationRepo,
	clk clock.Clock,
) *Aggregator {
	if clk == nil {
		clk = clock.System(nil)
	}

	return &Aggregator{
		departments: departments,
		employees:   employees,
		trainings:   trainings,
		enrollments: enrollments,
		certs:       certs,
		clk:         clk,
	}
}

// Growth is the day-over-day percentage. A zero yesterday with a non-zero
// today reads as 100%, and raw values beyond 1000 are capped at 100 to keep
// near-zero baselines from exploding the chart.
func Growth(today, yesterday int64) float64 {
	switch {
	case yesterday > 0:
		raw := float64(today-yesterday) / float64(yesterday) * 100
		if raw > 1000 {
			return 100.0
		}
		return math.Round(raw*10) / 10
	case today > 0:
		return 100.0
	default:
		return 0.0
	}
}

// Snapshot never fails: any internal error degrades to a zero-filled
// snapshot so the dashboard always renders.
func (a *Aggregator) Snapshot(ctx context.Context) *Snapshot {
	snap, err := a.build(ctx)
	if err != nil {
		logger.Error("dashboard snapshot failed, serving defaults", "error", err)
		return defaultSnapshot()
	}

	return snap
}

func defaultSnapshot() *Snapshot {
	return &Snapshot{
		EmployeeStatus: EmployeeStatus{
			Distribution: []StatusBucket{
				{Label: "In Training"},
				{Label: "Certified"},
				{Label: "Completed"},
				{Label: "Available"},
			},
			TopPerformer: noTopPerformer(),
		},
		Alerts: CertificationAlerts{
			Expired:       []AlertItem{},
			ExpiringSoon:  []AlertItem{},
			ExpiringLater: []AlertItem{},
			PeriodLabel:   "30 Days Outlook",
		},
		TrainingProgress: []ProgressItem{},
		HRMetrics: HRMetrics{
			Employees:   []MetricRow{},
			Trainings:   []MetricRow{},
			Departments: []MetricRow{},
		},
	}
}

func noTopPerformer() TopPerformer {
	return TopPerformer{
		Name:        "No top performer yet",
		Role:        "Assign employees to trainings",
		Performance: 0,
	}
}

func (a *Aggregator) build(ctx context.Context) (*Snapshot, error) {
	departments, err := a.departments.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load departments: %w", err)
	}
	employees, err := a.employees.ListAllEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("load employees: %w", err)
	}
	trainings, err := a.trainings.ListAllTrainings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load trainings: %w", err)
	}
	enrollments, err := a.enrollments.ListAllEnrollments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}
	certs, err := a.certs.ListAllCertifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("load certifications: %w", err)
	}

	now := a.clk.Now()

	stats, err := a.stats(ctx, now, employees, trainings, enrollments, certs, departments)
	if err != nil {
		return nil, err
	}

	recent, err := a.enrollments.ListRecentEnrollments(ctx, progressFeedSize)
	if err != nil {
		return nil, fmt.Errorf("load recent enrollments: %w", err)
	}

	snap := &Snapshot{
		Stats:            *stats,
		EmployeeStatus:   employeeStatus(employees, trainings, enrollments, certs),
		Alerts:           alerts(now, employees, trainings, certs, departments),
		TrainingProgress: progressFeed(now, recent, employees, trainings, certs),
		HRMetrics:        hrMetrics(employees, trainings, enrollments, certs, departments),
	}

	return snap, nil
}

func (a *Aggregator) stats(
	ctx context.Context,
	now time.Time,
	employees []models.Employee,
	trainings []models.Training,
	enrollments []models.Enrollment,
	certs []models.Certification,
	departments []models.Department,
) (*Stats, error) {
	st := &Stats{
		TotalEmployees:      int64(len(employees)),
		TotalTrainings:      int64(len(trainings)),
		TotalCertifications: int64(len(certs)),
		TotalDepartments:    int64(len(departments)),
	}

	var completed int64
	for _, e := range enrollments {
		if e.Active() {
			st.ActiveEnrollments++
		}
		if e.Status == models.EnrollmentCompleted {
			completed++
		}
	}
	if len(enrollments) > 0 {
		st.CompletionRate = math.Round(float64(completed)/float64(len(enrollments))*1000) / 10
	}
	for _, t := range trainings {
		st.TotalTrainingHours += t.DurationHours
	}

	nowMs := clock.Millis(now)
	windowEnd := clock.Millis(now.Add(alertWindow))
	expiring, err := a.certs.CountCertificationsExpiringBetween(ctx, nowMs, windowEnd, 0)
	if err != nil {
		return nil, fmt.Errorf("count expiring certifications: %w", err)
	}
	st.ExpiringCertifications = expiring

	// Yesterday baselines are taken at 23:59:59.999 local, converted to
	// the stored UTC epoch.
	cutoff := clock.Millis(clock.EndOfDay(now.AddDate(0, 0, -1)))

	empBase, err := a.employees.CountEmployeesCreatedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("employee baseline: %w", err)
	}
	enrollBase, err := a.enrollments.CountEnrollmentsCreatedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("enrollment baseline: %w", err)
	}
	certBase, err := a.certs.CountCertificationsCreatedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("certification baseline: %w", err)
	}
	completedBase, err := a.enrollments.CountEnrollmentsCompletedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("completion baseline: %w", err)
	}
	expiringBase, err := a.certs.CountCertificationsExpiringBetween(ctx, cutoff, clock.Millis(clock.EndOfDay(now.AddDate(0, 0, -1)).Add(alertWindow)), cutoff)
	if err != nil {
		return nil, fmt.Errorf("expiring baseline: %w", err)
	}

	st.EmployeeGrowthPercentage = Growth(st.TotalEmployees, empBase)
	st.EnrollmentGrowthPercentage = Growth(int64(len(enrollments)), enrollBase)
	st.CertificationGrowthPercentage = Growth(st.TotalCertifications, certBase)
	st.ExpiringChangePercentage = Growth(expiring, expiringBase)
	st.CompletionChangePercentage = Growth(completed, completedBase)
	st.TrainingHoursGrowthPercentage = 0.0

	return st, nil
}

// employeeStatus buckets every employee into exactly one of four states,
// in priority order, so the counts always sum to the employee total.
func employeeStatus(
	employees []models.Employee,
	trainings []models.Training,
	enrollments []models.Enrollment,
	certs []models.Certification,
) EmployeeStatus {
	inTraining := make(map[int64]bool)
	hasCompleted := make(map[int64]bool)
	for _, e := range enrollments {
		if e.Active() {
			inTraining[e.EmployeeID] = true
		}
		if e.Status == models.EnrollmentCompleted {
			hasCompleted[e.EmployeeID] = true
		}
	}

	activeCertCount := make(map[int64]int)
	for _, c := range certs {
		if c.Status == models.CertificationActive {
			activeCertCount[c.EmployeeID]++
		}
	}

	var training, certified, completed, available int
	for _, e := range employees {
		switch {
		case inTraining[e.ID]:
			training++
		case activeCertCount[e.ID] > 0:
			certified++
		case hasCompleted[e.ID]:
			completed++
		default:
			available++
		}
	}

	total := len(employees)
	pct := func(n int) int {
		if total == 0 {
			return 0
		}
		return int(math.Round(float64(n) / float64(total) * 100))
	}

	status := EmployeeStatus{
		TotalEmployees: total,
		Distribution: []StatusBucket{
			{Label: "In Training", Count: training, Percent: pct(training)},
			{Label: "Certified", Count: certified, Percent: pct(certified)},
			{Label: "Completed", Count: completed, Percent: pct(completed)},
			{Label: "Available", Count: available, Percent: pct(available)},
		},
		TopPerformer: topPerformer(employees, trainings, activeCertCount),
	}

	return status
}

// topPerformer picks the employee with the most active certifications.
// Ties keep the first employee encountered; the tie-break is documented as
// unspecified.
func topPerformer(employees []models.Employee, trainings []models.Training, activeCertCount map[int64]int) TopPerformer {
	var best *models.Employee
	max := 0
	for i := range employees {
		if n := activeCertCount[employees[i].ID]; n > max {
			max = n
			best = &employees[i]
		}
	}
	if best == nil {
		return noTopPerformer()
	}

	denom := len(trainings)
	if denom < 1 {
		denom = 1
	}
	perf := int(math.Round(float64(max) / float64(denom) * 100))
	if perf > 100 {
		perf = 100
	}

	role := best.Position
	if role == "" {
		role = "Employee"
	}

	return TopPerformer{Name: best.FullName(), Role: role, Performance: perf}
}

func alerts(
	now time.Time,
	employees []models.Employee,
	trainings []models.Training,
	certs []models.Certification,
	departments []models.Department,
) CertificationAlerts {
	empByID := make(map[int64]*models.Employee, len(employees))
	for i := range employees {
		empByID[employees[i].ID] = &employees[i]
	}
	deptByID := make(map[int64]string, len(departments))
	for _, d := range departments {
		deptByID[d.ID] = d.Name
	}
	trainingByID := make(map[int64]string, len(trainings))
	for _, t := range trainings {
		trainingByID[t.ID] = t.Name
	}

	out := CertificationAlerts{
		Expired:       []AlertItem{},
		ExpiringSoon:  []AlertItem{},
		ExpiringLater: []AlertItem{},
		PeriodLabel:   "30 Days Outlook",
	}

	windowEnd := now.Add(alertWindow)
	soonEnd := now.Add(soonWindow)

	for _, c := range certs {
		if c.Status != models.CertificationActive && c.Status != models.CertificationExpired {
			continue
		}
		// No expiry date: only an already-expired status is alertable.
		if c.ExpiresAt == nil && c.Status != models.CertificationExpired {
			continue
		}

		var expiry time.Time
		if c.ExpiresAt != nil {
			expiry = clock.FromMillis(*c.ExpiresAt, now.Location())
			if c.Status != models.CertificationExpired && expiry.After(windowEnd) {
				continue
			}
		}

		item := AlertItem{
			ID:                c.ID,
			EmployeeName:      "Unknown Employee",
			Role:              "Employee",
			Department:        "Unassigned",
			CertificationName: trainingName(trainingByID, c.TrainingID),
		}
		if e, ok := empByID[c.EmployeeID]; ok {
			item.EmployeeName = e.FullName()
			if e.Position != "" {
				item.Role = e.Position
			}
			if e.DepartmentID != nil {
				if name, ok := deptByID[*e.DepartmentID]; ok {
					item.Department = name
				}
			}
			item.AvatarURL = avatarURL(initials(e.FirstName, e.LastName))
		} else {
			item.AvatarURL = avatarURL("Em")
		}
		if c.ExpiresAt != nil {
			item.ExpiryDate = expiry.Format("2006-01-02")
		}

		switch {
		case c.Status == models.CertificationExpired || (c.ExpiresAt != nil && expiry.Before(now)):
			item.Status = "expired"
			out.Expired = append(out.Expired, item)
		case !expiry.After(soonEnd):
			item.Status = "expiring_soon"
			out.ExpiringSoon = append(out.ExpiringSoon, item)
		default:
			item.Status = "expiring_later"
			out.ExpiringLater = append(out.ExpiringLater, item)
		}
	}

	out.Total = len(out.Expired) + len(out.ExpiringSoon) + len(out.ExpiringLater)
	return out
}

func progressFeed(
	now time.Time,
	recent []models.Enrollment,
	employees []models.Employee,
	trainings []models.Training,
	certs []models.Certification,
) []ProgressItem {
	empByID := make(map[int64]*models.Employee, len(employees))
	for i := range employees {
		empByID[employees[i].ID] = &employees[i]
	}
	trainingByID := make(map[int64]string, len(trainings))
	for _, t := range trainings {
		trainingByID[t.ID] = t.Name
	}
	activeCertPair := make(map[[2]int64]bool)
	for _, c := range certs {
		if c.Status == models.CertificationActive {
			activeCertPair[[2]int64{c.EmployeeID, c.TrainingID}] = true
		}
	}

	today := clock.StartOfDay(now)
	items := make([]ProgressItem, 0, len(recent))
	for _, e := range recent {
		item := ProgressItem{
			ID:               e.ID,
			Name:             "Unknown Employee",
			Role:             "Employee",
			TrainingName:     trainingName(trainingByID, e.TrainingID),
			Progress:         clampProgress(e.Progress),
			Status:           e.Status,
			HasCertification: activeCertPair[[2]int64{e.EmployeeID, e.TrainingID}],
		}
		if emp, ok := empByID[e.EmployeeID]; ok {
			item.Name = emp.FullName()
			if emp.Position != "" {
				item.Role = emp.Position
			}
			item.AvatarURL = avatarURL(initials(emp.FirstName, emp.LastName))
		} else {
			item.AvatarURL = avatarURL("Em")
		}

		if e.StartDate != nil {
			item.StartDate = clock.FromMillis(*e.StartDate, now.Location()).Format("2006-01-02")
		}
		if e.EndDate != nil {
			end := clock.FromMillis(*e.EndDate, now.Location())
			item.EndDate = end.Format("2006-01-02")
			// Past-deadline active enrollments display as overdue.
			if clock.StartOfDay(end).Before(today) &&
				e.Status != models.EnrollmentCompleted && e.Status != models.EnrollmentCancelled {
				item.Status = "overdue"
			}
		}
		if e.CompletedDate != nil {
			item.CompletionDate = clock.FromMillis(*e.CompletedDate, now.Location()).Format("2006-01-02")
		}

		items = append(items, item)
	}

	return items
}

func hrMetrics(
	employees []models.Employee,
	trainings []models.Training,
	enrollments []models.Enrollment,
	certs []models.Certification,
	departments []models.Department,
) HRMetrics {
	activeEnrolls := make(map[int64]int)
	enrollsByTraining := make(map[int64]int)
	enrollsByEmployee := make(map[int64]int)
	for _, e := range enrollments {
		if e.Active() {
			activeEnrolls[e.EmployeeID]++
		}
		enrollsByTraining[e.TrainingID]++
		enrollsByEmployee[e.EmployeeID]++
	}
	activeCerts := make(map[int64]int)
	for _, c := range certs {
		if c.Status == models.CertificationActive {
			activeCerts[c.EmployeeID]++
		}
	}
	deptByID := make(map[int64]string, len(departments))
	for _, d := range departments {
		deptByID[d.ID] = d.Name
	}

	m := HRMetrics{
		Employees:   []MetricRow{},
		Trainings:   []MetricRow{},
		Departments: []MetricRow{},
	}

	for _, e := range sampleSlice(employees) {
		status := "Available"
		if activeEnrolls[e.ID] > 0 {
			status = "In Training"
		} else if n := activeCerts[e.ID]; n > 0 {
			status = fmt.Sprintf("%d Certified", n)
		}

		dept := "Unassigned"
		if e.DepartmentID != nil {
			if name, ok := deptByID[*e.DepartmentID]; ok {
				dept = name
			} else {
				dept = fmt.Sprintf("Dept %d", *e.DepartmentID)
			}
		}

		role := e.Position
		if role == "" {
			role = "Employee"
		}

		m.Employees = append(m.Employees, MetricRow{
			ID:         e.ID,
			Name:       e.FullName(),
			Role:       role,
			Status:     status,
			AvatarURL:  avatarURL(initials(e.FirstName, e.LastName)),
			Department: dept,
		})
	}

	for _, t := range sampleSlice(trainings) {
		m.Trainings = append(m.Trainings, MetricRow{
			ID:            t.ID,
			Name:          t.Name,
			Role:          t.Description,
			AvatarURL:     avatarURL("TR"),
			TrainingCount: enrollsByTraining[t.ID],
		})
	}

	empDept := make(map[int64]*int64, len(employees))
	for i := range employees {
		empDept[employees[i].ID] = employees[i].DepartmentID
	}
	for _, d := range sampleSlice(departments) {
		var empCount, trainCount int
		for _, e := range employees {
			if e.DepartmentID != nil && *e.DepartmentID == d.ID {
				empCount++
				trainCount += enrollsByEmployee[e.ID]
			}
		}

		status := fmt.Sprintf("%d employees", empCount)
		if empCount == 0 {
			status = "No employees"
		} else if empCount > 30 {
			status = fmt.Sprintf("%d employees (Large)", empCount)
		}

		m.Departments = append(m.Departments, MetricRow{
			ID:            d.ID,
			Name:          d.Name,
			Status:        status,
			AvatarURL:     avatarURL(deptInitials(d.Name)),
			EmployeeCount: empCount,
			TrainingCount: trainCount,
		})
	}

	return m
}

func sampleSlice[T any](items []T) []T {
	if len(items) > metricSampleSize {
		return items[:metricSampleSize]
	}
	return items
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func trainingName(byID map[int64]string, id int64) string {
	if name, ok := byID[id]; ok {
		return name
	}
	return "Unknown Training"
}

func initials(first, last string) string {
	out := ""
	if first != "" {
		out += string([]rune(first)[0])
	}
	if last != "" {
		out += string([]rune(last)[0])
	}
	if out == "" {
		out = "Em"
	}
	return out
}

func deptInitials(name string) string {
	out := []rune{}
	start := true
	for _, r := range name {
		if r == ' ' {
			start = true
			continue
		}
		if start {
			out = append(out, r)
			start = false
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "DP"
	}
	return string(out)
}

func avatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random&color=fff&size=40"
}
