package api

import (
	"github.com/gorilla/mux"

	"github.com/skillflow/skillflow/internal/clock"
	"github.com/skillflow/skillflow/internal/compliance"
	"github.com/skillflow/skillflow/internal/config"
	"github.com/skillflow/skillflow/internal/dashboard"
	"github.com/skillflow/skillflow/internal/db"
	"github.com/skillflow/skillflow/internal/enrollment"
	"github.com/skillflow/skillflow/internal/report"
	"github.com/skillflow/skillflow/internal/repository/sqlite"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, db *db.DB) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository
	repo := sqlite.New(db)

	loc, err := cfg.Location()
	if err != nil {
		loc = nil
	}
	clk := clock.System(loc)

	// Domain services
	enrollSvc := enrollment.NewService(repo, repo, repo, repo, clk)
	engine := compliance.NewEngine(repo, repo, repo, repo, repo, clk)
	exporter := report.NewExporter(engine, clk)
	agg := dashboard.NewAggregator(repo, repo, repo, repo, repo, clk)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, cfg.JWTSecret, cfg.TokenDuration)
	departmentHandler := NewDepartmentHandler(repo, repo)
	employeeHandler := NewEmployeeHandler(repo, repo)
	trainingHandler := NewTrainingHandler(repo)
	enrollmentHandler := NewEnrollmentHandler(enrollSvc, repo)
	certificationHandler := NewCertificationHandler(repo)
	complianceHandler := NewComplianceHandler(engine, exporter, clk)
	dashboardHandler := NewDashboardHandler(agg)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/login", authHandler.Login).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Department endpoints
	apiV1.HandleFunc("/departments", departmentHandler.Create).Methods("POST")
	apiV1.HandleFunc("/departments", departmentHandler.List).Methods("GET")
	apiV1.HandleFunc("/departments/{id}", departmentHandler.Get).Methods("GET")
	apiV1.HandleFunc("/departments/{id}", departmentHandler.Update).Methods("PUT")
	apiV1.HandleFunc("/departments/{id}", departmentHandler.Delete).Methods("DELETE")
	apiV1.HandleFunc("/departments/{id}/employees", departmentHandler.Employees).Methods("GET")

	// Employee endpoints
	apiV1.HandleFunc("/employees", employeeHandler.Create).Methods("POST")
	apiV1.HandleFunc("/employees", employeeHandler.List).Methods("GET")
	apiV1.HandleFunc("/employees/{id}", employeeHandler.Get).Methods("GET")
	apiV1.HandleFunc("/employees/{id}", employeeHandler.Update).Methods("PUT")
	apiV1.HandleFunc("/employees/{id}", employeeHandler.Delete).Methods("DELETE")

	// Training endpoints
	apiV1.HandleFunc("/trainings", trainingHandler.Create).Methods("POST")
	apiV1.HandleFunc("/trainings", trainingHandler.List).Methods("GET")
	apiV1.HandleFunc("/trainings/{id}", trainingHandler.Get).Methods("GET")
	apiV1.HandleFunc("/trainings/{id}", trainingHandler.Update).Methods("PUT")
	apiV1.HandleFunc("/trainings/{id}", trainingHandler.Delete).Methods("DELETE")

	// Enrollment endpoints
	apiV1.HandleFunc("/enrollments", enrollmentHandler.Create).Methods("POST")
	apiV1.HandleFunc("/enrollments", enrollmentHandler.List).Methods("GET")
	apiV1.HandleFunc("/enrollments/{id}", enrollmentHandler.Get).Methods("GET")
	apiV1.HandleFunc("/enrollments/{id}/progress", enrollmentHandler.UpdateProgress).Methods("PUT")
	apiV1.HandleFunc("/enrollments/{id}/complete", enrollmentHandler.Complete).Methods("POST")
	apiV1.HandleFunc("/enrollments/{id}/cancel", enrollmentHandler.Cancel).Methods("POST")
	apiV1.HandleFunc("/enrollments/{id}", enrollmentHandler.Delete).Methods("DELETE")

	// Certification endpoints
	apiV1.HandleFunc("/certifications", certificationHandler.Create).Methods("POST")
	apiV1.HandleFunc("/certifications", certificationHandler.List).Methods("GET")
	apiV1.HandleFunc("/certifications/{id}", certificationHandler.Get).Methods("GET")
	apiV1.HandleFunc("/certifications/{id}", certificationHandler.Update).Methods("PUT")
	apiV1.HandleFunc("/certifications/{id}", certificationHandler.Delete).Methods("DELETE")

	// Compliance endpoints
	apiV1.HandleFunc("/compliance/report", complianceHandler.Report).Methods("POST")
	apiV1.HandleFunc("/compliance/export/{format}", complianceHandler.Export).Methods("POST")
	apiV1.HandleFunc("/compliance/email", complianceHandler.Email).Methods("POST")
	apiV1.HandleFunc("/compliance/departments", complianceHandler.DepartmentCompliance).Methods("GET")
	apiV1.HandleFunc("/compliance/certifications/status", complianceHandler.CertificationStatus).Methods("GET")
	apiV1.HandleFunc("/compliance/expirations/upcoming", complianceHandler.UpcomingExpirations).Methods("GET")
	apiV1.HandleFunc("/compliance/certifications/missing", complianceHandler.MissingCertifications).Methods("GET")
	apiV1.HandleFunc("/compliance/trainings/statistics", complianceHandler.TrainingStatistics).Methods("GET")
	apiV1.HandleFunc("/compliance/alerts", complianceHandler.Alerts).Methods("GET")
	apiV1.HandleFunc("/compliance/summary", complianceHandler.Summary).Methods("GET")

	// Dashboard endpoint
	apiV1.HandleFunc("/dashboard", dashboardHandler.Get).Methods("GET")

	return r
}
