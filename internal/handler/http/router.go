package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/talentum-hr/payops-backend-go/internal/handler/http/middleware"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/jwt"
)

func NewRouter(
	jwtService jwt.Service,
	leaveHandler LeaveHandler,
	payrollHandler PayrollHandler,
	incentiveHandler IncentiveHandler,
	fnfHandler FnFHandler,
	webhookHandler WebhookHandler,
	reportHandler ReportHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payops-backend"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Callback-Token", "X-Signature"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// POS webhooks authenticate with the shared callback token, not JWT.
		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/sales-closed", webhookHandler.SalesClosed)
			r.Post("/returns-remakes", webhookHandler.ReturnsRemakes)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/leaves", func(r chi.Router) {
				r.Route("/requests", func(r chi.Router) {
					r.Post("/", leaveHandler.CreateRequest)
					r.Get("/", leaveHandler.ListEmployeeRequests)
					r.Get("/{id}", leaveHandler.GetRequest)
					r.Post("/{id}/cancel", leaveHandler.CancelRequest)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireRole(
							middleware.RoleStoreManager,
							middleware.RoleAreaManager,
							middleware.RoleHRAdmin,
							middleware.RoleHRHead,
						))
						r.Post("/{id}/decision", leaveHandler.DecideRequest)
					})
				})

				r.Get("/policies", leaveHandler.ListPolicies)
				r.Get("/balance", leaveHandler.GetBalance)
				r.Get("/ledger", leaveHandler.ListLedger)

				// HR-only batch operations
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(middleware.RoleHRAdmin, middleware.RoleHRHead))
					r.Post("/accruals/run", leaveHandler.RunAccrual)
					r.Post("/year-close", leaveHandler.CloseYear)
				})
			})

			r.Route("/incentives/claims", func(r chi.Router) {
				r.Get("/", incentiveHandler.ListClaims)
				r.Get("/{id}", incentiveHandler.GetClaim)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(
						middleware.RoleStoreManager,
						middleware.RoleHRAdmin,
						middleware.RolePayrollAdmin,
					))
					r.Post("/", incentiveHandler.CreateClaim)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(
						middleware.RoleStoreManager,
						middleware.RoleAreaManager,
						middleware.RoleFinanceHead,
					))
					r.Post("/{id}/decision", incentiveHandler.DecideClaim)
				})
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Use(middleware.RequireRole(middleware.RolePayrollAdmin, middleware.RoleFinanceHead))

				r.Route("/runs", func(r chi.Router) {
					r.Post("/", payrollHandler.CreateRun)
					r.Get("/{id}", payrollHandler.GetRun)
					r.Post("/{id}/process", payrollHandler.ProcessRun)
					r.Post("/{id}/lock", payrollHandler.LockRun)
					r.Post("/{id}/post", payrollHandler.PostRun)
					r.Post("/{id}/cancel", payrollHandler.CancelRun)
					r.Get("/{id}/variance", payrollHandler.GetVariance)
					r.Get("/{id}/components", payrollHandler.ListComponents)
					r.Get("/{id}/overrides", payrollHandler.ListOverrides)
				})

				r.Route("/overrides", func(r chi.Router) {
					r.Post("/", payrollHandler.CreateOverride)
					r.Post("/{id}/decision", payrollHandler.DecideOverride)
					r.Post("/{id}/cancel", payrollHandler.CancelOverride)
				})
			})

			r.Route("/fnf/cases", func(r chi.Router) {
				r.Use(middleware.RequireRole(
					middleware.RoleHRAdmin,
					middleware.RoleHRHead,
					middleware.RoleAccounts,
					middleware.RolePayrollAdmin,
				))

				r.Post("/", fnfHandler.Initiate)
				r.Get("/", fnfHandler.ListCases)
				r.Get("/{id}", fnfHandler.GetCase)
				r.Post("/{id}/calculate", fnfHandler.Recalculate)
				r.Post("/{id}/recoveries", fnfHandler.AddRecovery)
				r.Post("/{id}/decision", fnfHandler.Decide)
				r.Post("/{id}/payout", fnfHandler.Payout)
				r.Post("/{id}/hold", fnfHandler.Hold)
				r.Post("/{id}/resume", fnfHandler.Resume)
				r.Post("/{id}/cancel", fnfHandler.Cancel)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequireRole(
					middleware.RolePayrollAdmin,
					middleware.RoleFinanceHead,
					middleware.RoleHRHead,
				))

				r.Get("/cost-by-store-role", reportHandler.GetCostByStoreRole)
				r.Get("/incentive-sales", reportHandler.GetIncentiveSales)
				r.Get("/clawback-summary", reportHandler.GetClawbackSummary)
				r.Get("/lwp-days", reportHandler.GetLWPDays)
				r.Get("/leave-utilization", reportHandler.GetLeaveUtilization)
				r.Get("/fnf-stats", reportHandler.GetFnFStats)
			})
		})
	})
	return r
}
