package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talentum-hr/payops-backend-go/internal/domain/employee"
	"github.com/talentum-hr/payops-backend-go/internal/domain/fnf"
	"github.com/talentum-hr/payops-backend-go/internal/domain/incentive"
	"github.com/talentum-hr/payops-backend-go/internal/domain/leave"
	"github.com/talentum-hr/payops-backend-go/internal/domain/payroll"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/database"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/docgen"
	incentiveservice "github.com/talentum-hr/payops-backend-go/internal/service/incentive"
)

var hundred = decimal.NewFromInt(100)

// ClawbackResolver turns a period's returns/remakes into run charges.
type ClawbackResolver interface {
	ResolveForPeriod(ctx context.Context, year, month int, runID string) ([]incentiveservice.ClawbackCharge, error)
}

// EncashmentSource reports leave days encashed at year close so the
// January run can pay them out.
type EncashmentSource interface {
	EncashedDaysInMonth(ctx context.Context, employeeID string, year, month int) (decimal.Decimal, error)
}

// DocumentGenerator renders the posted-run artifacts.
type DocumentGenerator interface {
	Payslip(data docgen.PayslipData) (string, error)
	BankTransferFile(year, month int, rows []docgen.BankTransferRow) (string, error)
}

// RunConfig carries the policy knobs of the run pipeline.
type RunConfig struct {
	VarianceAlertPct decimal.Decimal
	Statutory        payroll.StatutoryRates
	TDSBands         []payroll.TDSBand
}

// RunService drives the payroll run lifecycle: DRAFT → PROCESSING →
// REVIEW → LOCKED → POSTED. Every status move goes through the
// repository's compare-and-swap so two operators cannot race a run
// into the same transition.
type RunService struct {
	db  *database.DB
	cfg RunConfig
	payroll.PayrollRunRepository
	payroll.PayrollComponentRepository
	overrides  payroll.PayrollOverrideRepository
	attendance payroll.AttendanceProvider
	claims     incentive.IncentiveClaimRepository
	clawbacks  ClawbackResolver
	leaveReqs  leave.LeaveRequestRepository
	encashed   EncashmentSource
	employees  employee.EmployeeRepository
	docs       DocumentGenerator
}

func NewRunService(
	db *database.DB,
	cfg RunConfig,
	runRepository payroll.PayrollRunRepository,
	componentRepository payroll.PayrollComponentRepository,
	overrideRepository payroll.PayrollOverrideRepository,
	attendanceProvider payroll.AttendanceProvider,
	claimRepository incentive.IncentiveClaimRepository,
	clawbackResolver ClawbackResolver,
	leaveRequestRepository leave.LeaveRequestRepository,
	encashmentSource EncashmentSource,
	employeeRepository employee.EmployeeRepository,
	docs DocumentGenerator,
) *RunService {
	return &RunService{
		db:                         db,
		cfg:                        cfg,
		PayrollRunRepository:       runRepository,
		PayrollComponentRepository: componentRepository,
		overrides:                  overrideRepository,
		attendance:                 attendanceProvider,
		claims:                     claimRepository,
		clawbacks:                  clawbackResolver,
		leaveReqs:                  leaveRequestRepository,
		encashed:                   encashmentSource,
		employees:                  employeeRepository,
		docs:                       docs,
	}
}

func (s *RunService) CreateRun(ctx context.Context, req payroll.CreateRunRequest, createdBy string) (payroll.PayrollRun, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRun{}, err
	}

	run := payroll.PayrollRun{
		Month:     req.Month,
		Year:      req.Year,
		Status:    payroll.RunStatusDraft,
		CreatedBy: createdBy,
	}

	created, err := s.PayrollRunRepository.Create(ctx, run)
	if err != nil {
		var dup *payroll.DuplicateRunError
		if errors.As(err, &dup) {
			return payroll.PayrollRun{}, err
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	return created, nil
}

// Process executes the calculation pipeline DRAFT→PROCESSING→REVIEW.
// A failed sub-step leaves the run in PROCESSING with the error parked
// on it; a retried call skips sub-steps that already completed.
func (s *RunService) Process(ctx context.Context, runID string) (payroll.PayrollRun, error) {
	run, err := s.PayrollRunRepository.GetByID(ctx, runID)
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	switch run.Status {
	case payroll.RunStatusDraft:
		swapped, err := s.PayrollRunRepository.TransitionStatus(ctx, runID, payroll.RunStatusDraft, payroll.RunStatusProcessing)
		if err != nil {
			return payroll.PayrollRun{}, fmt.Errorf("failed to transition payroll run: %w", err)
		}
		if !swapped {
			return payroll.PayrollRun{}, payroll.ErrConcurrentTransition
		}
		run.Status = payroll.RunStatusProcessing
	case payroll.RunStatusProcessing:
		// Retry of a failed attempt; completed sub-steps are skipped.
	default:
		return payroll.PayrollRun{}, &payroll.InvalidStateError{
			Op: "process", Current: run.Status, Expected: payroll.RunStatusDraft,
		}
	}

	if err := s.runPipeline(ctx, &run); err != nil {
		msg := err.Error()
		run.ProcessingError = &msg
		if updateErr := s.PayrollRunRepository.Update(ctx, run); updateErr != nil {
			slog.Error("Failed to park processing error", "run_id", runID, "error", updateErr)
		}
		return payroll.PayrollRun{}, err
	}

	run.ProcessingError = nil
	if err := s.PayrollRunRepository.Update(ctx, run); err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to update payroll run: %w", err)
	}

	swapped, err := s.PayrollRunRepository.TransitionStatus(ctx, runID, payroll.RunStatusProcessing, payroll.RunStatusReview)
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to transition payroll run: %w", err)
	}
	if !swapped {
		return payroll.PayrollRun{}, payroll.ErrConcurrentTransition
	}
	run.Status = payroll.RunStatusReview

	return run, nil
}

// runPipeline runs the four sub-steps in order. Each step persists its
// components and its completion flag before the next starts, so a retry
// resumes where the failure happened.
func (s *RunService) runPipeline(ctx context.Context, run *payroll.PayrollRun) error {
	staff, err := s.employees.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to get active employees: %w", err)
	}

	if !run.AttendanceImported {
		facts, err := s.attendance.MonthlyFacts(ctx, run.Year, run.Month)
		if err != nil {
			return fmt.Errorf("failed to import attendance: %w", err)
		}
		factsByEmployee := make(map[string]payroll.AttendanceFact, len(facts))
		for _, f := range facts {
			factsByEmployee[f.EmployeeID] = f
		}

		// Fresh start for the base rows; a retry that failed before the
		// flag was set must not duplicate them.
		if err := s.PayrollComponentRepository.DeleteCalcByRun(ctx, run.ID); err != nil {
			return fmt.Errorf("failed to clear calculated components: %w", err)
		}

		var components []payroll.PayrollComponent
		for _, emp := range staff {
			earnings := s.earningsFor(run.ID, emp)
			encash, err := s.encashmentFor(ctx, run, emp)
			if err != nil {
				return err
			}
			earnings = append(earnings, encash...)
			components = append(components, earnings...)
			components = append(components, s.lwpFor(ctx, run, emp, factsByEmployee[emp.ID])...)
			components = append(components, s.statutoryFor(run.ID, emp, earnings)...)
		}
		if err := s.PayrollComponentRepository.CreateBatch(ctx, components); err != nil {
			return fmt.Errorf("failed to create payroll components: %w", err)
		}

		run.AttendanceImported = true
		if err := s.PayrollRunRepository.Update(ctx, *run); err != nil {
			return fmt.Errorf("failed to update payroll run: %w", err)
		}
	}

	if !run.IncentivesGenerated {
		rows, payable, err := s.incentivesFor(ctx, run, staff)
		if err != nil {
			return err
		}
		if err := s.PayrollComponentRepository.CreateBatch(ctx, rows); err != nil {
			return fmt.Errorf("failed to create incentive components: %w", err)
		}

		// Claims flip to paid only once their earnings rows are on disk;
		// a batch failure leaves every claim approved and payable on the
		// next attempt.
		for _, claim := range payable {
			claim.Paid = true
			claim.PaidInRunID = &run.ID
			claim.Status = incentive.ClaimStatusPaid
			if err := s.claims.Update(ctx, claim); err != nil {
				return fmt.Errorf("failed to mark claim paid: %w", err)
			}
		}

		run.IncentivesGenerated = true
		if err := s.PayrollRunRepository.Update(ctx, *run); err != nil {
			return fmt.Errorf("failed to update payroll run: %w", err)
		}
	}

	if !run.ClawbacksResolved {
		charges, err := s.clawbacks.ResolveForPeriod(ctx, run.Year, run.Month, run.ID)
		if err != nil {
			return fmt.Errorf("failed to resolve claw-backs: %w", err)
		}
		var rows []payroll.PayrollComponent
		for _, charge := range charges {
			code := payroll.CodeClawback
			if charge.Method == incentive.ClawbackMethodPoolPenalty {
				code = payroll.CodePoolPenalty
			}
			itemID := charge.ItemID
			rows = append(rows, payroll.PayrollComponent{
				RunID:       run.ID,
				EmployeeID:  charge.EmployeeID,
				Type:        payroll.ComponentTypeDeductions,
				Code:        code,
				Amount:      charge.Amount,
				Source:      payroll.SourceCalc,
				SourceRefID: &itemID,
			})
		}
		if err := s.PayrollComponentRepository.CreateBatch(ctx, rows); err != nil {
			return fmt.Errorf("failed to create claw-back components: %w", err)
		}

		run.ClawbacksResolved = true
		if err := s.PayrollRunRepository.Update(ctx, *run); err != nil {
			return fmt.Errorf("failed to update payroll run: %w", err)
		}
	}

	if !run.VarianceReported {
		lines, err := s.Variance(ctx, run.ID)
		if err != nil {
			return err
		}
		flagged := 0
		for _, l := range lines {
			if l.Flagged {
				flagged++
				slog.Warn("Payroll variance flagged",
					"run_id", run.ID,
					"employee_id", l.EmployeeID,
					"delta_pct", l.DeltaPct.String())
			}
		}

		run.VarianceReported = true
		if err := s.PayrollRunRepository.Update(ctx, *run); err != nil {
			return fmt.Errorf("failed to update payroll run: %w", err)
		}
		slog.Info("Payroll run processed", "run_id", run.ID, "employees", len(staff), "variance_flags", flagged)
	}

	return nil
}

// earningsFor splits gross into BASIC, HRA (half of basic) and SPECIAL
// (the remainder).
func (s *RunService) earningsFor(runID string, emp employee.Employee) []payroll.PayrollComponent {
	basic := emp.BasicSalary
	hra := basic.Div(decimal.NewFromInt(2)).Round(2)
	special := emp.GrossSalary.Sub(basic).Sub(hra)
	if special.IsNegative() {
		special = decimal.Zero
	}

	rows := []payroll.PayrollComponent{
		{RunID: runID, EmployeeID: emp.ID, Type: payroll.ComponentTypeEarnings, Code: payroll.CodeBasic, Amount: basic, Source: payroll.SourceCalc},
		{RunID: runID, EmployeeID: emp.ID, Type: payroll.ComponentTypeEarnings, Code: payroll.CodeHRA, Amount: hra, Source: payroll.SourceCalc},
	}
	if special.IsPositive() {
		rows = append(rows, payroll.PayrollComponent{
			RunID: runID, EmployeeID: emp.ID, Type: payroll.ComponentTypeEarnings, Code: payroll.CodeSpecial, Amount: special, Source: payroll.SourceCalc,
		})
	}
	return rows
}

// encashmentFor pays out leave days encashed at the prior year close,
// valued at basic/30 per day. The days sit on the December ledger
// entry, so only the January run emits this component.
func (s *RunService) encashmentFor(ctx context.Context, run *payroll.PayrollRun, emp employee.Employee) ([]payroll.PayrollComponent, error) {
	if run.Month != 1 {
		return nil, nil
	}

	days, err := s.encashed.EncashedDaysInMonth(ctx, emp.ID, run.Year-1, 12)
	if err != nil {
		return nil, fmt.Errorf("failed to get encashed leave days: %w", err)
	}
	if !days.IsPositive() {
		return nil, nil
	}

	return []payroll.PayrollComponent{{
		RunID:      run.ID,
		EmployeeID: emp.ID,
		Type:       payroll.ComponentTypeEarnings,
		Code:       payroll.CodeELEncash,
		Amount:     fnf.ELEncashmentFor(emp.BasicSalary, days),
		Source:     payroll.SourceCalc,
	}}, nil
}

// lwpFor deducts gross/30 per loss-of-pay day, combining the imported
// attendance figure with approved LWP leave for the period.
func (s *RunService) lwpFor(ctx context.Context, run *payroll.PayrollRun, emp employee.Employee, fact payroll.AttendanceFact) []payroll.PayrollComponent {
	lwpDays := fact.LWPDays

	approvedDays, err := s.leaveReqs.ApprovedLWPDays(ctx, emp.ID, run.Year, run.Month)
	if err != nil {
		slog.Error("Failed to get approved LWP days", "employee_id", emp.ID, "error", err)
	} else {
		lwpDays = lwpDays.Add(decimal.NewFromFloat(approvedDays))
	}

	if !lwpDays.IsPositive() {
		return nil
	}

	amount := emp.GrossSalary.Div(decimal.NewFromInt(30)).Mul(lwpDays).Round(2)
	return []payroll.PayrollComponent{{
		RunID:      run.ID,
		EmployeeID: emp.ID,
		Type:       payroll.ComponentTypeDeductions,
		Code:       payroll.CodeLWP,
		Amount:     amount,
		Source:     payroll.SourceCalc,
	}}
}

// incentivesFor collects approved claims whose dispute window has
// closed: component rows for claims not yet emitted into this run, plus
// the full payable set for the caller to mark paid after the rows
// persist. Skipping already-emitted claims keeps a retried attempt from
// duplicating earnings.
func (s *RunService) incentivesFor(ctx context.Context, run *payroll.PayrollRun, staff []employee.Employee) ([]payroll.PayrollComponent, []incentive.IncentiveClaim, error) {
	existing, err := s.PayrollComponentRepository.ListByRun(ctx, run.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list payroll components: %w", err)
	}
	emitted := make(map[string]bool)
	for _, c := range existing {
		if c.Code == payroll.CodeIncentive && c.SourceRefID != nil {
			emitted[*c.SourceRefID] = true
		}
	}

	now := time.Now()
	var rows []payroll.PayrollComponent
	var payable []incentive.IncentiveClaim

	for _, emp := range staff {
		claims, err := s.claims.ApprovedUnpaidByEmployee(ctx, emp.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get approved claims: %w", err)
		}
		for _, claim := range claims {
			if claim.InDispute(now) {
				continue
			}
			amount := claim.EffectiveAmount()
			if amount.IsZero() {
				continue
			}

			payable = append(payable, claim)
			if emitted[claim.ID] {
				continue
			}

			claimID := claim.ID
			rows = append(rows, payroll.PayrollComponent{
				RunID:       run.ID,
				EmployeeID:  emp.ID,
				Type:        payroll.ComponentTypeEarnings,
				Code:        payroll.CodeIncentive,
				Amount:      amount,
				Source:      payroll.SourceCalc,
				SourceRefID: &claimID,
			})
		}
	}

	return rows, payable, nil
}

// statutoryFor derives PF, ESIC, PT and TDS from the employee's
// earnings rows.
func (s *RunService) statutoryFor(runID string, emp employee.Employee, earnings []payroll.PayrollComponent) []payroll.PayrollComponent {
	gross := decimal.Zero
	for _, c := range earnings {
		if c.Type == payroll.ComponentTypeEarnings {
			gross = gross.Add(c.Amount)
		}
	}

	var rows []payroll.PayrollComponent
	add := func(code payroll.ComponentCode, amount decimal.Decimal) {
		if !amount.IsPositive() {
			return
		}
		rows = append(rows, payroll.PayrollComponent{
			RunID:      runID,
			EmployeeID: emp.ID,
			Type:       payroll.ComponentTypeDeductions,
			Code:       code,
			Amount:     amount,
			Source:     payroll.SourceCalc,
		})
	}

	if emp.PFApplicable {
		add(payroll.CodePF, s.cfg.Statutory.PF(emp.BasicSalary))
	}
	if emp.ESICApplicable {
		add(payroll.CodeESIC, s.cfg.Statutory.ESIC(gross))
	}
	add(payroll.CodePT, s.cfg.Statutory.PTAmount)
	add(payroll.CodeTDS, payroll.TDSFor(gross, s.cfg.TDSBands))

	return rows
}

// Lock freezes a reviewed run. Pending overrides block the lock.
func (s *RunService) Lock(ctx context.Context, runID, actor string) (payroll.PayrollRun, error) {
	run, err := s.PayrollRunRepository.GetByID(ctx, runID)
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	if run.Status != payroll.RunStatusReview {
		return payroll.PayrollRun{}, &payroll.InvalidStateError{
			Op: "lock", Current: run.Status, Expected: payroll.RunStatusReview,
		}
	}

	pending, err := s.overrides.CountPendingByRun(ctx, runID)
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to count pending overrides: %w", err)
	}
	if pending > 0 {
		return payroll.PayrollRun{}, payroll.ErrPendingOverrides
	}

	swapped, err := s.PayrollRunRepository.TransitionStatus(ctx, runID, payroll.RunStatusReview, payroll.RunStatusLocked)
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to transition payroll run: %w", err)
	}
	if !swapped {
		return payroll.PayrollRun{}, payroll.ErrConcurrentTransition
	}

	now := time.Now()
	run.Status = payroll.RunStatusLocked
	run.LockedBy = &actor
	run.LockedAt = &now
	if err := s.PayrollRunRepository.Update(ctx, run); err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to update payroll run: %w", err)
	}

	return run, nil
}

// Post books the locked run against a journal voucher and emits the
// bank payout file and payslips.
func (s *RunService) Post(ctx context.Context, runID, actor string, req payroll.PostRunRequest) (payroll.PayrollRun, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRun{}, err
	}

	run, err := s.PayrollRunRepository.GetByID(ctx, runID)
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	if run.Status != payroll.RunStatusLocked {
		return payroll.PayrollRun{}, &payroll.InvalidStateError{
			Op: "post", Current: run.Status, Expected: payroll.RunStatusLocked,
		}
	}

	jvDate, err := time.Parse("2006-01-02", req.JVDate)
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to parse JV date: %w", err)
	}

	swapped, err := s.PayrollRunRepository.TransitionStatus(ctx, runID, payroll.RunStatusLocked, payroll.RunStatusPosted)
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to transition payroll run: %w", err)
	}
	if !swapped {
		return payroll.PayrollRun{}, payroll.ErrConcurrentTransition
	}

	now := time.Now()
	run.Status = payroll.RunStatusPosted
	run.JVNumber = &req.JVNumber
	run.JVDate = &jvDate
	run.PostedBy = &actor
	run.PostedAt = &now
	if err := s.PayrollRunRepository.Update(ctx, run); err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to update payroll run: %w", err)
	}

	// Artifacts are best-effort after the books are posted; failures are
	// logged and regenerated on demand.
	if err := s.emitArtifacts(ctx, run); err != nil {
		slog.Error("Failed to emit run artifacts", "run_id", runID, "error", err)
	}

	return run, nil
}

// Cancel abandons a run in any pre-posted status.
func (s *RunService) Cancel(ctx context.Context, runID, actor string) (payroll.PayrollRun, error) {
	run, err := s.PayrollRunRepository.GetByID(ctx, runID)
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	if !run.Status.CanTransitionTo(payroll.RunStatusCancelled) {
		return payroll.PayrollRun{}, &payroll.InvalidStateError{
			Op: "cancel", Current: run.Status, Expected: payroll.RunStatusLocked,
		}
	}

	swapped, err := s.PayrollRunRepository.TransitionStatus(ctx, runID, run.Status, payroll.RunStatusCancelled)
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to transition payroll run: %w", err)
	}
	if !swapped {
		return payroll.PayrollRun{}, payroll.ErrConcurrentTransition
	}

	now := time.Now()
	run.Status = payroll.RunStatusCancelled
	run.CancelledBy = &actor
	run.CancelledAt = &now
	if err := s.PayrollRunRepository.Update(ctx, run); err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to update payroll run: %w", err)
	}

	return run, nil
}

// Totals recomputes the aggregate view from component rows.
func (s *RunService) Totals(ctx context.Context, runID string) (payroll.RunTotals, error) {
	components, err := s.PayrollComponentRepository.ListByRun(ctx, runID)
	if err != nil {
		return payroll.RunTotals{}, fmt.Errorf("failed to list payroll components: %w", err)
	}
	return payroll.ComputeTotals(components), nil
}

// Variance compares per-employee net pay against the prior period's run.
func (s *RunService) Variance(ctx context.Context, runID string) ([]payroll.VarianceLine, error) {
	run, err := s.PayrollRunRepository.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payroll run: %w", err)
	}

	prevYear, prevMonth := run.Year, run.Month-1
	if prevMonth == 0 {
		prevYear, prevMonth = run.Year-1, 12
	}

	prior, err := s.PayrollRunRepository.GetByPeriod(ctx, prevMonth, prevYear)
	if errors.Is(err, payroll.ErrRunNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prior payroll run: %w", err)
	}

	currentNet, err := s.netByEmployee(ctx, runID)
	if err != nil {
		return nil, err
	}
	priorNet, err := s.netByEmployee(ctx, prior.ID)
	if err != nil {
		return nil, err
	}

	var lines []payroll.VarianceLine
	for employeeID, net := range currentNet {
		prev, ok := priorNet[employeeID]
		if !ok || prev.IsZero() {
			continue
		}
		deltaPct := net.Sub(prev).Div(prev).Mul(hundred).Round(2)
		lines = append(lines, payroll.VarianceLine{
			EmployeeID: employeeID,
			PriorNet:   prev,
			CurrentNet: net,
			DeltaPct:   deltaPct,
			Flagged:    deltaPct.Abs().GreaterThanOrEqual(s.cfg.VarianceAlertPct),
		})
	}

	return lines, nil
}

func (s *RunService) netByEmployee(ctx context.Context, runID string) (map[string]decimal.Decimal, error) {
	components, err := s.PayrollComponentRepository.ListByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll components: %w", err)
	}

	net := make(map[string]decimal.Decimal)
	for _, c := range components {
		if c.Type == payroll.ComponentTypeEarnings {
			net[c.EmployeeID] = net[c.EmployeeID].Add(c.Amount)
		} else {
			net[c.EmployeeID] = net[c.EmployeeID].Sub(c.Amount)
		}
	}
	return net, nil
}

func (s *RunService) emitArtifacts(ctx context.Context, run payroll.PayrollRun) error {
	components, err := s.PayrollComponentRepository.ListByRun(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to list payroll components: %w", err)
	}

	byEmployee := make(map[string][]payroll.PayrollComponent)
	for _, c := range components {
		byEmployee[c.EmployeeID] = append(byEmployee[c.EmployeeID], c)
	}

	var bankRows []docgen.BankTransferRow
	for employeeID, rows := range byEmployee {
		emp, err := s.employees.GetByID(ctx, employeeID)
		if err != nil {
			return fmt.Errorf("failed to get employee: %w", err)
		}

		slip := docgen.PayslipData{
			EmployeeCode: emp.EmployeeCode,
			EmployeeName: emp.FullName,
			Month:        run.Month,
			Year:         run.Year,
		}
		for _, c := range rows {
			item := docgen.LineItem{Label: string(c.Code), Amount: c.Amount}
			if c.Type == payroll.ComponentTypeEarnings {
				slip.Earnings = append(slip.Earnings, item)
				slip.GrossPay = slip.GrossPay.Add(c.Amount)
			} else {
				slip.Deductions = append(slip.Deductions, item)
				slip.TotalDeduct = slip.TotalDeduct.Add(c.Amount)
			}
		}
		slip.NetPay = slip.GrossPay.Sub(slip.TotalDeduct)

		if _, err := s.docs.Payslip(slip); err != nil {
			return fmt.Errorf("failed to generate payslip: %w", err)
		}

		bankRows = append(bankRows, docgen.BankTransferRow{
			EmployeeCode:  emp.EmployeeCode,
			EmployeeName:  emp.FullName,
			BankName:      emp.BankName,
			AccountNumber: emp.BankAccountNo,
			IFSC:          emp.BankIFSC,
			Amount:        slip.NetPay,
			Remarks:       fmt.Sprintf("Salary %02d/%04d", run.Month, run.Year),
		})
	}

	if _, err := s.docs.BankTransferFile(run.Year, run.Month, bankRows); err != nil {
		return fmt.Errorf("failed to generate bank transfer file: %w", err)
	}
	return nil
}
