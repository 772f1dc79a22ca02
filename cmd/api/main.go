package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talentum-hr/payops-backend-go/internal/config"
	"github.com/talentum-hr/payops-backend-go/internal/domain/incentive"
	"github.com/talentum-hr/payops-backend-go/internal/domain/payroll"
	appHTTP "github.com/talentum-hr/payops-backend-go/internal/handler/http"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/attendancefeed"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/cron"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/database"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/docgen"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/jwt"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/webhook"
	"github.com/talentum-hr/payops-backend-go/internal/repository/postgresql"
	fnfService "github.com/talentum-hr/payops-backend-go/internal/service/fnf"
	incentiveService "github.com/talentum-hr/payops-backend-go/internal/service/incentive"
	leaveService "github.com/talentum-hr/payops-backend-go/internal/service/leave"
	payrollService "github.com/talentum-hr/payops-backend-go/internal/service/payroll"
	reportService "github.com/talentum-hr/payops-backend-go/internal/service/report"
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

	employeeRepo := postgresql.NewEmployeeRepository(db)
	leavePolicyRepo := postgresql.NewLeavePolicyRepository(db)
	leaveLedgerRepo := postgresql.NewLeaveLedgerRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	claimRepo := postgresql.NewIncentiveClaimRepository(db)
	salesRepo := postgresql.NewSalesEventRepository(db)
	returnsRepo := postgresql.NewReturnsRemakesRepository(db)
	runRepo := postgresql.NewPayrollRunRepository(db)
	componentRepo := postgresql.NewPayrollComponentRepository(db)
	overrideRepo := postgresql.NewPayrollOverrideRepository(db)
	fnfRepo := postgresql.NewFnFCaseRepository(db)
	reportRepo := postgresql.NewReportRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	docs := docgen.NewGenerator(cfg.App.OutputDir)
	attendanceFeed := attendancefeed.NewClient(cfg.Attendance.BaseURL, cfg.Attendance.APIKey)
	verifier := webhook.NewVerifier(cfg.Webhook.Token)

	ledgerSvc := leaveService.NewLedgerService(db, leavePolicyRepo, leaveLedgerRepo, employeeRepo)
	requestSvc := leaveService.NewRequestService(db, ledgerSvc, leavePolicyRepo, leaveRequestRepo, employeeRepo)
	claimSvc := incentiveService.NewClaimService(db, cfg.Incentive.DisputeWindowDays, claimRepo, employeeRepo)
	clawbackSvc := incentiveService.NewClawbackService(
		db,
		cfg.Incentive.PoolPenaltyPct,
		incentive.ClawbackMethod(cfg.Incentive.ClawbackMethod),
		salesRepo,
		returnsRepo,
		claimRepo,
		employeeRepo,
	)
	runSvc := payrollService.NewRunService(
		db,
		payrollService.RunConfig{
			VarianceAlertPct: decimal.NewFromFloat(cfg.Payroll.VarianceAlertPct),
			Statutory:        payroll.DefaultStatutoryRates(),
			TDSBands:         payroll.DefaultTDSBands,
		},
		runRepo,
		componentRepo,
		overrideRepo,
		attendanceFeed,
		claimRepo,
		clawbackSvc,
		leaveRequestRepo,
		leaveLedgerRepo,
		employeeRepo,
		docs,
	)
	overrideSvc := payrollService.NewOverrideService(
		db,
		decimal.NewFromFloat(cfg.Payroll.HighValueOverrideThreshold),
		runRepo,
		componentRepo,
		overrideRepo,
	)
	fnfSvc := fnfService.NewService(db, payroll.DefaultTDSBands, fnfRepo, employeeRepo, leavePolicyRepo, ledgerSvc, claimRepo, docs)
	reportSvc := reportService.NewReportService(reportRepo)

	leaveHandler := appHTTP.NewLeaveHandler(requestSvc, ledgerSvc)
	payrollHandler := appHTTP.NewPayrollHandler(runSvc, overrideSvc)
	incentiveHandler := appHTTP.NewIncentiveHandler(claimSvc)
	fnfHandler := appHTTP.NewFnFHandler(fnfSvc)
	webhookHandler := appHTTP.NewWebhookHandler(verifier, clawbackSvc)
	reportHandler := appHTTP.NewReportHandler(reportSvc)

	router := appHTTP.NewRouter(
		JWTService,
		leaveHandler,
		payrollHandler,
		incentiveHandler,
		fnfHandler,
		webhookHandler,
		reportHandler,
	)

	scheduler := cron.NewScheduler()
	cron.NewSettlementJobs(ledgerSvc, claimSvc).RegisterJobs(scheduler)
	scheduler.Start()

	port := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{
		Addr:    port,
		Handler: router,
	}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		fmt.Println("Server shutdown error:", err)
	}
	db.Close()
}
