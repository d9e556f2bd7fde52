package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/workpulse/timecore-backend-go/internal/config"
	appHTTP "github.com/workpulse/timecore-backend-go/internal/handler/http"
	"github.com/workpulse/timecore-backend-go/internal/pkg/cron"
	"github.com/workpulse/timecore-backend-go/internal/pkg/database"
	"github.com/workpulse/timecore-backend-go/internal/pkg/email"
	"github.com/workpulse/timecore-backend-go/internal/pkg/jwt"
	"github.com/workpulse/timecore-backend-go/internal/pkg/oauth"
	"github.com/workpulse/timecore-backend-go/internal/pkg/sse"
	"github.com/workpulse/timecore-backend-go/internal/pkg/storage"
	"github.com/workpulse/timecore-backend-go/internal/repository/postgresql"
	attendanceService "github.com/workpulse/timecore-backend-go/internal/service/attendance"
	auditService "github.com/workpulse/timecore-backend-go/internal/service/audit"
	authService "github.com/workpulse/timecore-backend-go/internal/service/auth"
	"github.com/workpulse/timecore-backend-go/internal/service/file"
	organizationService "github.com/workpulse/timecore-backend-go/internal/service/organization"
	timesheetService "github.com/workpulse/timecore-backend-go/internal/service/timesheet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	userRepo := postgresql.NewUserRepository(db)
	organizationRepo := postgresql.NewOrganizationRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	timesheetRepo := postgresql.NewTimesheetRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)
	jwtRepo := postgresql.NewJWTRepository(db)

	jwtSvc := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	googleSvc := oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		log.Fatal("Failed to initialize local storage:", err)
	}
	fileSvc := file.NewFileService(fileStorage)

	emailSvc, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service:", err)
	}

	hub := sse.NewHub()

	flushInterval, err := time.ParseDuration(cfg.Audit.FlushInterval)
	if err != nil {
		log.Fatal("Invalid AUDIT_FLUSH_INTERVAL:", err)
	}
	recorder := auditService.NewAuditService(auditRepo, hub, auditService.Config{
		BatchSize:     cfg.Audit.BatchSize,
		FlushInterval: flushInterval,
		WorkerCount:   cfg.Audit.WorkerCount,
		QueueSize:     cfg.Audit.QueueSize,
	})
	defer recorder.Stop()

	authSvc := authService.NewAuthService(db, userRepo, jwtSvc, jwtRepo)
	organizationSvc := organizationService.NewOrganizationService(organizationRepo)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, organizationRepo, userRepo, fileSvc, emailSvc, recorder, time.Now)
	timesheetSvc := timesheetService.NewTimesheetService(timesheetRepo, db, recorder, time.Now)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceRepo).RegisterJobs(scheduler)
	cron.NewTimesheetJobs(timesheetRepo, recorder).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	authHandler := appHTTP.NewAuthHandler(jwtSvc, authSvc, googleSvc, cfg.App.FrontendURL)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	timesheetHandler := appHTTP.NewTimesheetHandler(timesheetSvc)
	organizationHandler := appHTTP.NewOrganizationHandler(organizationSvc)
	eventsHandler := appHTTP.NewEventsHandler(jwtSvc, hub)
	auditHandler := appHTTP.NewAuditHandler(recorder)

	router := appHTTP.NewRouter(
		jwtSvc,
		authHandler,
		attendanceHandler,
		timesheetHandler,
		organizationHandler,
		eventsHandler,
		auditHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
