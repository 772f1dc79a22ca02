package payroll

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentum-hr/payops-backend-go/internal/domain/employee"
	"github.com/talentum-hr/payops-backend-go/internal/domain/incentive"
	"github.com/talentum-hr/payops-backend-go/internal/domain/leave"
	"github.com/talentum-hr/payops-backend-go/internal/domain/payroll"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/docgen"
	incentiveservice "github.com/talentum-hr/payops-backend-go/internal/service/incentive"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeRunRepo struct {
	runs   map[string]payroll.PayrollRun
	nextID int
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{runs: make(map[string]payroll.PayrollRun)}
}

func (f *fakeRunRepo) GetByID(_ context.Context, id string) (payroll.PayrollRun, error) {
	run, ok := f.runs[id]
	if !ok {
		return payroll.PayrollRun{}, payroll.ErrRunNotFound
	}
	return run, nil
}

func (f *fakeRunRepo) GetByPeriod(_ context.Context, month, year int) (payroll.PayrollRun, error) {
	for _, run := range f.runs {
		if run.Month == month && run.Year == year && run.Status != payroll.RunStatusCancelled {
			return run, nil
		}
	}
	return payroll.PayrollRun{}, payroll.ErrRunNotFound
}

func (f *fakeRunRepo) Create(_ context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	for _, existing := range f.runs {
		if existing.Month == run.Month && existing.Year == run.Year && existing.Status != payroll.RunStatusCancelled {
			return payroll.PayrollRun{}, &payroll.DuplicateRunError{
				Month: run.Month, Year: run.Year, ExistingRunID: existing.ID,
			}
		}
	}
	f.nextID++
	run.ID = fmt.Sprintf("run-%d", f.nextID)
	run.CreatedAt = time.Now()
	f.runs[run.ID] = run
	return run, nil
}

func (f *fakeRunRepo) Update(_ context.Context, run payroll.PayrollRun) error {
	stored, ok := f.runs[run.ID]
	if !ok {
		return payroll.ErrRunNotFound
	}
	// Status moves only through TransitionStatus.
	run.Status = stored.Status
	f.runs[run.ID] = run
	return nil
}

func (f *fakeRunRepo) TransitionStatus(_ context.Context, id string, expected, next payroll.RunStatus) (bool, error) {
	run, ok := f.runs[id]
	if !ok {
		return false, payroll.ErrRunNotFound
	}
	if run.Status != expected {
		return false, nil
	}
	run.Status = next
	f.runs[id] = run
	return true, nil
}

type fakeComponentRepo struct {
	components  []payroll.PayrollComponent
	nextID      int
	batchCalls  int
	failOnBatch int // 1-based CreateBatch call that fails once
}

func (f *fakeComponentRepo) ListByRun(_ context.Context, runID string) ([]payroll.PayrollComponent, error) {
	var out []payroll.PayrollComponent
	for _, c := range f.components {
		if c.RunID == runID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeComponentRepo) ListByRunEmployee(_ context.Context, runID, employeeID string) ([]payroll.PayrollComponent, error) {
	var out []payroll.PayrollComponent
	for _, c := range f.components {
		if c.RunID == runID && c.EmployeeID == employeeID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeComponentRepo) GetByRunEmployeeCode(_ context.Context, runID, employeeID string, code payroll.ComponentCode) (payroll.PayrollComponent, error) {
	for _, c := range f.components {
		if c.RunID == runID && c.EmployeeID == employeeID && c.Code == code {
			return c, nil
		}
	}
	return payroll.PayrollComponent{}, payroll.ErrComponentNotFound
}

func (f *fakeComponentRepo) CreateBatch(_ context.Context, components []payroll.PayrollComponent) error {
	f.batchCalls++
	if f.batchCalls == f.failOnBatch {
		return errors.New("Connection reset by peer")
	}
	for _, c := range components {
		f.nextID++
		c.ID = fmt.Sprintf("comp-%d", f.nextID)
		f.components = append(f.components, c)
	}
	return nil
}

func (f *fakeComponentRepo) Update(_ context.Context, component payroll.PayrollComponent) error {
	for i, c := range f.components {
		if c.ID == component.ID {
			f.components[i] = component
			return nil
		}
	}
	return payroll.ErrComponentNotFound
}

func (f *fakeComponentRepo) DeleteCalcByRun(_ context.Context, runID string) error {
	kept := f.components[:0]
	for _, c := range f.components {
		if c.RunID == runID && c.Source == payroll.SourceCalc {
			continue
		}
		kept = append(kept, c)
	}
	f.components = kept
	return nil
}

func (f *fakeComponentRepo) byCode(runID string, code payroll.ComponentCode) []payroll.PayrollComponent {
	var out []payroll.PayrollComponent
	for _, c := range f.components {
		if c.RunID == runID && c.Code == code {
			out = append(out, c)
		}
	}
	return out
}

type fakeOverrideRepo struct {
	overrides map[string]payroll.PayrollOverride
	nextID    int
}

func newFakeOverrideRepo() *fakeOverrideRepo {
	return &fakeOverrideRepo{overrides: make(map[string]payroll.PayrollOverride)}
}

func (f *fakeOverrideRepo) GetByID(_ context.Context, id string) (payroll.PayrollOverride, error) {
	o, ok := f.overrides[id]
	if !ok {
		return payroll.PayrollOverride{}, payroll.ErrOverrideNotFound
	}
	return o, nil
}

func (f *fakeOverrideRepo) ListByRun(_ context.Context, runID string) ([]payroll.PayrollOverride, error) {
	var out []payroll.PayrollOverride
	for _, o := range f.overrides {
		if o.RunID == runID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOverrideRepo) CountPendingByRun(_ context.Context, runID string) (int, error) {
	count := 0
	for _, o := range f.overrides {
		if o.RunID == runID && o.Status == payroll.OverrideStatusPending {
			count++
		}
	}
	return count, nil
}

func (f *fakeOverrideRepo) Create(_ context.Context, override payroll.PayrollOverride) (payroll.PayrollOverride, error) {
	f.nextID++
	override.ID = fmt.Sprintf("ovr-%d", f.nextID)
	f.overrides[override.ID] = override
	return override, nil
}

func (f *fakeOverrideRepo) Update(_ context.Context, override payroll.PayrollOverride) error {
	if _, ok := f.overrides[override.ID]; !ok {
		return payroll.ErrOverrideNotFound
	}
	f.overrides[override.ID] = override
	return nil
}

type fakeAttendance struct {
	facts []payroll.AttendanceFact
	err   error
}

func (f *fakeAttendance) MonthlyFacts(_ context.Context, _, _ int) ([]payroll.AttendanceFact, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.facts, nil
}

type fakeClaimsRepo struct {
	claims map[string]incentive.IncentiveClaim
	nextID int
}

func newFakeClaimsRepo() *fakeClaimsRepo {
	return &fakeClaimsRepo{claims: make(map[string]incentive.IncentiveClaim)}
}

func (f *fakeClaimsRepo) GetByID(_ context.Context, id string) (incentive.IncentiveClaim, error) {
	c, ok := f.claims[id]
	if !ok {
		return incentive.IncentiveClaim{}, incentive.ErrClaimNotFound
	}
	return c, nil
}

func (f *fakeClaimsRepo) GetByEmployeePeriod(_ context.Context, employeeID string, year, month int) (incentive.IncentiveClaim, error) {
	for _, c := range f.claims {
		if c.EmployeeID == employeeID && c.Year == year && c.Month == month {
			return c, nil
		}
	}
	return incentive.IncentiveClaim{}, incentive.ErrClaimNotFound
}

func (f *fakeClaimsRepo) List(_ context.Context, _ incentive.ClaimFilter) ([]incentive.IncentiveClaim, error) {
	var out []incentive.IncentiveClaim
	for _, c := range f.claims {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeClaimsRepo) ApprovedUnpaidByEmployee(_ context.Context, employeeID string) ([]incentive.IncentiveClaim, error) {
	var out []incentive.IncentiveClaim
	for _, c := range f.claims {
		if c.EmployeeID == employeeID && c.Status == incentive.ClaimStatusApproved && !c.Paid {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeClaimsRepo) Create(_ context.Context, claim incentive.IncentiveClaim) (incentive.IncentiveClaim, error) {
	f.nextID++
	claim.ID = fmt.Sprintf("claim-%d", f.nextID)
	f.claims[claim.ID] = claim
	return claim, nil
}

func (f *fakeClaimsRepo) Update(_ context.Context, claim incentive.IncentiveClaim) error {
	if _, ok := f.claims[claim.ID]; !ok {
		return incentive.ErrClaimNotFound
	}
	f.claims[claim.ID] = claim
	return nil
}

func (f *fakeClaimsRepo) CloseExpiredDisputeWindows(_ context.Context) (int, error) {
	return 0, nil
}

type fakeClawbacks struct {
	charges []incentiveservice.ClawbackCharge
	err     error
}

func (f *fakeClawbacks) ResolveForPeriod(_ context.Context, _, _ int, _ string) ([]incentiveservice.ClawbackCharge, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.charges, nil
}

type fakeLeaveRequestRepo struct {
	lwpDays map[string]float64 // employeeID -> days
}

func (f *fakeLeaveRequestRepo) GetByID(_ context.Context, _ string) (leave.LeaveRequest, error) {
	return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
}

func (f *fakeLeaveRequestRepo) GetByEmployee(_ context.Context, _ string) ([]leave.LeaveRequest, error) {
	return nil, nil
}

func (f *fakeLeaveRequestRepo) ApprovedLWPDays(_ context.Context, employeeID string, _, _ int) (float64, error) {
	return f.lwpDays[employeeID], nil
}

func (f *fakeLeaveRequestRepo) Create(_ context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	return request, nil
}

func (f *fakeLeaveRequestRepo) Update(_ context.Context, _ leave.LeaveRequest) error {
	return nil
}

type fakeEncashmentSource struct {
	days map[string]decimal.Decimal // employeeID -> December encashed days
}

func (f *fakeEncashmentSource) EncashedDaysInMonth(_ context.Context, employeeID string, _, _ int) (decimal.Decimal, error) {
	return f.days[employeeID], nil
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployeeRepo) GetActive(_ context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.employees {
		if e.IsActive() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) GetActiveByStoreID(_ context.Context, storeID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.employees {
		if e.IsActive() && e.StoreID == storeID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeDocs struct {
	payslips  int
	bankFiles int
	bankRows  []docgen.BankTransferRow
}

func (f *fakeDocs) Payslip(_ docgen.PayslipData) (string, error) {
	f.payslips++
	return "payslip.pdf", nil
}

func (f *fakeDocs) BankTransferFile(_, _ int, rows []docgen.BankTransferRow) (string, error) {
	f.bankFiles++
	f.bankRows = rows
	return "payout.csv", nil
}

func salariedEmployee(id string, basic, gross string) employee.Employee {
	return employee.Employee{
		ID:               id,
		EmployeeCode:     "1001-0001",
		FullName:         "Test Employee " + id,
		StoreID:          "store-1",
		EmploymentStatus: employee.EmploymentStatusActive,
		BasicSalary:      d(basic),
		GrossSalary:      d(gross),
		PFApplicable:     true,
		BankName:         "Test Bank",
		BankAccountNo:    "000111222333",
		BankIFSC:         "TEST0000001",
	}
}

type runFixture struct {
	svc        *RunService
	runs       *fakeRunRepo
	components *fakeComponentRepo
	overrides  *fakeOverrideRepo
	attendance *fakeAttendance
	claims     *fakeClaimsRepo
	clawbacks  *fakeClawbacks
	leaveReqs  *fakeLeaveRequestRepo
	encashed   *fakeEncashmentSource
	docs       *fakeDocs
}

func newRunFixture(staff ...employee.Employee) *runFixture {
	f := &runFixture{
		runs:       newFakeRunRepo(),
		components: &fakeComponentRepo{},
		overrides:  newFakeOverrideRepo(),
		attendance: &fakeAttendance{},
		claims:     newFakeClaimsRepo(),
		clawbacks:  &fakeClawbacks{},
		leaveReqs:  &fakeLeaveRequestRepo{lwpDays: make(map[string]float64)},
		encashed:   &fakeEncashmentSource{days: make(map[string]decimal.Decimal)},
		docs:       &fakeDocs{},
	}
	empRepo := &fakeEmployeeRepo{employees: make(map[string]employee.Employee)}
	for _, e := range staff {
		empRepo.employees[e.ID] = e
	}

	cfg := RunConfig{
		VarianceAlertPct: d("20"),
		Statutory:        payroll.DefaultStatutoryRates(),
		TDSBands:         payroll.DefaultTDSBands,
	}
	f.svc = NewRunService(nil, cfg, f.runs, f.components, f.overrides,
		f.attendance, f.claims, f.clawbacks, f.leaveReqs, f.encashed, empRepo, f.docs)
	return f
}

func TestCreateRun_DuplicatePeriodConflict(t *testing.T) {
	f := newRunFixture(salariedEmployee("emp-1", "20000", "40000"))
	ctx := context.Background()

	_, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{Month: 3, Year: 2025}, "admin-1")
	require.NoError(t, err)

	_, err = f.svc.CreateRun(ctx, payroll.CreateRunRequest{Month: 3, Year: 2025}, "admin-1")
	var dup *payroll.DuplicateRunError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "run-1", dup.ExistingRunID)
}

func TestProcess_GeneratesComponentsAndMovesToReview(t *testing.T) {
	f := newRunFixture(salariedEmployee("emp-1", "20000", "40000"))
	ctx := context.Background()

	run, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{Month: 3, Year: 2025}, "admin-1")
	require.NoError(t, err)

	run, err = f.svc.Process(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusReview, run.Status)
	assert.True(t, run.AttendanceImported)
	assert.True(t, run.IncentivesGenerated)
	assert.True(t, run.ClawbacksResolved)
	assert.True(t, run.VarianceReported)
	assert.Nil(t, run.ProcessingError)

	// 20000 basic, 10000 HRA, 10000 special; PF on capped basic, PT flat,
	// TDS at the 5% band on 40000 gross.
	require.Len(t, f.components.byCode(run.ID, payroll.CodeBasic), 1)
	assert.True(t, f.components.byCode(run.ID, payroll.CodeHRA)[0].Amount.Equal(d("10000")))
	assert.True(t, f.components.byCode(run.ID, payroll.CodeSpecial)[0].Amount.Equal(d("10000")))
	assert.True(t, f.components.byCode(run.ID, payroll.CodePF)[0].Amount.Equal(d("1800")))
	assert.True(t, f.components.byCode(run.ID, payroll.CodePT)[0].Amount.Equal(d("200")))
	assert.True(t, f.components.byCode(run.ID, payroll.CodeTDS)[0].Amount.Equal(d("2000")))

	totals, err := f.svc.Totals(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, totals.Gross.Equal(d("40000")))
	assert.True(t, totals.Net.Equal(d("36000")), "net = %s", totals.Net)
	assert.Equal(t, 1, totals.Employees)
}

func TestProcess_CombinesLWPSources(t *testing.T) {
	f := newRunFixture(salariedEmployee("emp-1", "20000", "40000"))
	ctx := context.Background()

	f.attendance.facts = []payroll.AttendanceFact{{EmployeeID: "emp-1", LWPDays: d("2")}}
	f.leaveReqs.lwpDays["emp-1"] = 1

	run, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{Month: 3, Year: 2025}, "admin-1")
	require.NoError(t, err)
	_, err = f.svc.Process(ctx, run.ID)
	require.NoError(t, err)

	// 3 loss-of-pay days at 40000/30 per day.
	rows := f.components.byCode(run.ID, payroll.CodeLWP)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Amount.Equal(d("4000")), "lwp = %s", rows[0].Amount)
}

func TestProcess_PaysClearedClaimsOnly(t *testing.T) {
	f := newRunFixture(salariedEmployee("emp-1", "20000", "40000"))
	ctx := context.Background()

	past := time.Now().AddDate(0, 0, -1)
	future := time.Now().AddDate(0, 0, 2)
	cleared, err := f.claims.Create(ctx, incentive.IncentiveClaim{
		EmployeeID: "emp-1", Year: 2025, Month: 2,
		CalculatedAmount:      d("700"),
		Status:                incentive.ClaimStatusApproved,
		DisputeWindowClosesAt: &past,
	})
	require.NoError(t, err)
	_, err = f.claims.Create(ctx, incentive.IncentiveClaim{
		EmployeeID: "emp-1", Year: 2025, Month: 3,
		CalculatedAmount:      d("500"),
		Status:                incentive.ClaimStatusApproved,
		DisputeWindowClosesAt: &future,
	})
	require.NoError(t, err)

	run, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{Month: 3, Year: 2025}, "admin-1")
	require.NoError(t, err)
	_, err = f.svc.Process(ctx, run.ID)
	require.NoError(t, err)

	rows := f.components.byCode(run.ID, payroll.CodeIncentive)
	require.Len(t, rows, 1, "claim still in dispute must wait for the next run")
	assert.True(t, rows[0].Amount.Equal(d("700")))

	paid, err := f.claims.GetByID(ctx, cleared.ID)
	require.NoError(t, err)
	assert.True(t, paid.Paid)
	assert.Equal(t, incentive.ClaimStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidInRunID)
	assert.Equal(t, run.ID, *paid.PaidInRunID)
}

func TestProcess_ClawbackChargesBecomeDeductions(t *testing.T) {
	f := newRunFixture(salariedEmployee("emp-1", "20000", "40000"))
	ctx := context.Background()

	f.clawbacks.charges = []incentiveservice.ClawbackCharge{
		{ItemID: "ret-1", EmployeeID: "emp-1", Amount: d("70"), Method: incentive.ClawbackMethodProportional},
		{ItemID: "ret-2", EmployeeID: "emp-1", Amount: d("100"), Method: incentive.ClawbackMethodPoolPenalty},
	}

	run, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{Month: 3, Year: 2025}, "admin-1")
	require.NoError(t, err)
	_, err = f.svc.Process(ctx, run.ID)
	require.NoError(t, err)

	clawbacks := f.components.byCode(run.ID, payroll.CodeClawback)
	require.Len(t, clawbacks, 1)
	assert.True(t, clawbacks[0].Amount.Equal(d("70")))
	require.NotNil(t, clawbacks[0].SourceRefID)
	assert.Equal(t, "ret-1", *clawbacks[0].SourceRefID)

	penalties := f.components.byCode(run.ID, payroll.CodePoolPenalty)
	require.Len(t, penalties, 1)
	assert.True(t, penalties[0].Amount.Equal(d("100")))
}

func TestProcess_FailureParksErrorAndRetryResumes(t *testing.T) {
	f := newRunFixture(salariedEmployee("emp-1", "20000", "40000"))
	ctx := context.Background()

	past := time.Now().AddDate(0, 0, -1)
	_, err := f.claims.Create(ctx, incentive.IncentiveClaim{
		EmployeeID: "emp-1", Year: 2025, Month: 2,
		CalculatedAmount:      d("700"),
		Status:                incentive.ClaimStatusApproved,
		DisputeWindowClosesAt: &past,
	})
	require.NoError(t, err)

	f.clawbacks.err = errors.New("sales feed timeout")

	run, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{Month: 3, Year: 2025}, "admin-1")
	require.NoError(t, err)
	_, err = f.svc.Process(ctx, run.ID)
	require.Error(t, err)

	parked, err := f.runs.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusProcessing, parked.Status)
	require.NotNil(t, parked.ProcessingError)
	assert.Contains(t, *parked.ProcessingError, "sales feed timeout")
	assert.True(t, parked.AttendanceImported)
	assert.True(t, parked.IncentivesGenerated)
	assert.False(t, parked.ClawbacksResolved)

	f.clawbacks.err = nil
	run, err = f.svc.Process(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusReview, run.Status)
	assert.Nil(t, run.ProcessingError)

	// Completed sub-steps were not re-run: base and incentive rows exist once.
	assert.Len(t, f.components.byCode(run.ID, payroll.CodeBasic), 1)
	assert.Len(t, f.components.byCode(run.ID, payroll.CodeIncentive), 1)
}

func TestProcess_IncentiveBatchFailureKeepsClaimPayable(t *testing.T) {
	f := newRunFixture(salariedEmployee("emp-1", "20000", "40000"))
	ctx := context.Background()

	past := time.Now().AddDate(0, 0, -1)
	claim, err := f.claims.Create(ctx, incentive.IncentiveClaim{
		EmployeeID: "emp-1", Year: 2025, Month: 2,
		CalculatedAmount:      d("700"),
		Status:                incentive.ClaimStatusApproved,
		DisputeWindowClosesAt: &past,
	})
	require.NoError(t, err)

	// First batch carries the base rows, second the incentive rows.
	f.components.failOnBatch = 2

	run, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{Month: 3, Year: 2025}, "admin-1")
	require.NoError(t, err)
	_, err = f.svc.Process(ctx, run.ID)
	require.Error(t, err)

	// The failed write must not consume the claim.
	stored, err := f.claims.GetByID(ctx, claim.ID)
	require.NoError(t, err)
	assert.False(t, stored.Paid)
	assert.Equal(t, incentive.ClaimStatusApproved, stored.Status)
	assert.Empty(t, f.components.byCode(run.ID, payroll.CodeIncentive))

	run, err = f.svc.Process(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusReview, run.Status)

	rows := f.components.byCode(run.ID, payroll.CodeIncentive)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Amount.Equal(d("700")))

	stored, err = f.claims.GetByID(ctx, claim.ID)
	require.NoError(t, err)
	assert.True(t, stored.Paid)
	assert.Equal(t, incentive.ClaimStatusPaid, stored.Status)
	require.NotNil(t, stored.PaidInRunID)
	assert.Equal(t, run.ID, *stored.PaidInRunID)
}

func TestProcess_JanuaryRunPaysYearCloseEncashment(t *testing.T) {
	f := newRunFixture(salariedEmployee("emp-1", "21000", "40000"))
	ctx := context.Background()

	f.encashed.days["emp-1"] = d("5")

	run, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{Month: 1, Year: 2026}, "admin-1")
	require.NoError(t, err)
	_, err = f.svc.Process(ctx, run.ID)
	require.NoError(t, err)

	// 5 days at 21000/30 per day.
	rows := f.components.byCode(run.ID, payroll.CodeELEncash)
	require.Len(t, rows, 1)
	assert.Equal(t, payroll.ComponentTypeEarnings, rows[0].Type)
	assert.True(t, rows[0].Amount.Equal(d("3500")), "encashment = %s", rows[0].Amount)

	// A mid-year run ignores the December balance.
	march, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{Month: 3, Year: 2026}, "admin-1")
	require.NoError(t, err)
	_, err = f.svc.Process(ctx, march.ID)
	require.NoError(t, err)
	assert.Empty(t, f.components.byCode(march.ID, payroll.CodeELEncash))
}

func TestProcess_RefusedFromReview(t *testing.T) {
	f := newRunFixture(salariedEmployee("emp-1", "20000", "40000"))
	ctx := context.Background()

	run, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{Month: 3, Year: 2025}, "admin-1")
	require.NoError(t, err)
	_, err = f.svc.Process(ctx, run.ID)
	require.NoError(t, err)

	_, err = f.svc.Process(ctx, run.ID)
	var stateErr *payroll.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, payroll.RunStatusReview, stateErr.Current)
}

func TestLock_BlockedByPendingOverride(t *testing.T) {
	f := newRunFixture(salariedEmployee("emp-1", "20000", "40000"))
	ctx := context.Background()

	run, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{Month: 3, Year: 2025}, "admin-1")
	require.NoError(t, err)
	_, err = f.svc.Process(ctx, run.ID)
	require.NoError(t, err)

	pending, err := f.overrides.Create(ctx, payroll.PayrollOverride{
		RunID: run.ID, EmployeeID: "emp-1", ComponentCode: payroll.CodeBasic,
		Status: payroll.OverrideStatusPending,
	})
	require.NoError(t, err)

	_, err = f.svc.Lock(ctx, run.ID, "admin-1")
	assert.ErrorIs(t, err, payroll.ErrPendingOverrides)

	pending.Status = payroll.OverrideStatusRejected
	require.NoError(t, f.overrides.Update(ctx, pending))

	run, err = f.svc.Lock(ctx, run.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusLocked, run.Status)
	require.NotNil(t, run.LockedBy)
	assert.Equal(t, "admin-1", *run.LockedBy)
}

func TestLock_RequiresReview(t *testing.T) {
	f := newRunFixture(salariedEmployee("emp-1", "20000", "40000"))
	ctx := context.Background()

	run, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{Month: 3, Year: 2025}, "admin-1")
	require.NoError(t, err)

	_, err = f.svc.Lock(ctx, run.ID, "admin-1")
	var stateErr *payroll.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, payroll.RunStatusDraft, stateErr.Current)
}

func TestPost_EmitsArtifactsAndIsIrreversible(t *testing.T) {
	f := newRunFixture(salariedEmployee("emp-1", "20000", "40000"))
	ctx := context.Background()

	run, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{Month: 3, Year: 2025}, "admin-1")
	require.NoError(t, err)
	_, err = f.svc.Process(ctx, run.ID)
	require.NoError(t, err)
	_, err = f.svc.Lock(ctx, run.ID, "admin-1")
	require.NoError(t, err)

	run, err = f.svc.Post(ctx, run.ID, "admin-1", payroll.PostRunRequest{
		JVNumber: "JV-2025-03-001", JVDate: "2025-04-01",
	})
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusPosted, run.Status)
	require.NotNil(t, run.JVNumber)
	assert.Equal(t, "JV-2025-03-001", *run.JVNumber)

	assert.Equal(t, 1, f.docs.payslips)
	assert.Equal(t, 1, f.docs.bankFiles)
	require.Len(t, f.docs.bankRows, 1)
	assert.True(t, f.docs.bankRows[0].Amount.Equal(d("36000")))

	_, err = f.svc.Post(ctx, run.ID, "admin-1", payroll.PostRunRequest{
		JVNumber: "JV-2025-03-002", JVDate: "2025-04-02",
	})
	var stateErr *payroll.InvalidStateError
	require.ErrorAs(t, err, &stateErr)

	_, err = f.svc.Cancel(ctx, run.ID, "admin-1")
	require.ErrorAs(t, err, &stateErr, "posted runs cannot be cancelled")
}

func TestCancel_AllowedBeforePost(t *testing.T) {
	f := newRunFixture(salariedEmployee("emp-1", "20000", "40000"))
	ctx := context.Background()

	run, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{Month: 3, Year: 2025}, "admin-1")
	require.NoError(t, err)

	run, err = f.svc.Cancel(ctx, run.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusCancelled, run.Status)
	require.NotNil(t, run.CancelledBy)
}

func TestVariance_FlagsLargeNetDelta(t *testing.T) {
	f := newRunFixture(salariedEmployee("emp-1", "20000", "40000"))
	ctx := context.Background()

	prior, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{Month: 2, Year: 2025}, "admin-1")
	require.NoError(t, err)
	require.NoError(t, f.components.CreateBatch(ctx, []payroll.PayrollComponent{
		{RunID: prior.ID, EmployeeID: "emp-1", Type: payroll.ComponentTypeEarnings, Code: payroll.CodeBasic, Amount: d("25000"), Source: payroll.SourceCalc},
	}))

	current, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{Month: 3, Year: 2025}, "admin-1")
	require.NoError(t, err)
	require.NoError(t, f.components.CreateBatch(ctx, []payroll.PayrollComponent{
		{RunID: current.ID, EmployeeID: "emp-1", Type: payroll.ComponentTypeEarnings, Code: payroll.CodeBasic, Amount: d("36000"), Source: payroll.SourceCalc},
	}))

	lines, err := f.svc.Variance(ctx, current.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].DeltaPct.Equal(d("44")), "delta = %s", lines[0].DeltaPct)
	assert.True(t, lines[0].Flagged)
}

func TestVariance_NoPriorRun(t *testing.T) {
	f := newRunFixture(salariedEmployee("emp-1", "20000", "40000"))
	ctx := context.Background()

	run, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{Month: 1, Year: 2025}, "admin-1")
	require.NoError(t, err)

	lines, err := f.svc.Variance(ctx, run.ID)
	require.NoError(t, err)
	assert.Nil(t, lines)
}
