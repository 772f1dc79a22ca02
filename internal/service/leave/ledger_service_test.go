package leave

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentum-hr/payops-backend-go/internal/domain/employee"
	"github.com/talentum-hr/payops-backend-go/internal/domain/leave"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakePolicyRepo struct {
	policies map[string]leave.LeavePolicy
}

func (f *fakePolicyRepo) GetByID(_ context.Context, id string) (leave.LeavePolicy, error) {
	p, ok := f.policies[id]
	if !ok {
		return leave.LeavePolicy{}, leave.ErrPolicyNotFound
	}
	return p, nil
}

func (f *fakePolicyRepo) GetByCode(_ context.Context, code string) (leave.LeavePolicy, error) {
	for _, p := range f.policies {
		if p.Code == code {
			return p, nil
		}
	}
	return leave.LeavePolicy{}, leave.ErrPolicyNotFound
}

func (f *fakePolicyRepo) GetActive(_ context.Context) ([]leave.LeavePolicy, error) {
	var out []leave.LeavePolicy
	for _, p := range f.policies {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeLedgerRepo struct {
	entries map[string]leave.LedgerEntry
	nextID  int
}

func ledgerKey(employeeID, policyID string, year, month int) string {
	return fmt.Sprintf("%s|%s|%d|%d", employeeID, policyID, year, month)
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{entries: make(map[string]leave.LedgerEntry)}
}

func (f *fakeLedgerRepo) GetEntry(_ context.Context, employeeID, policyID string, year, month int) (leave.LedgerEntry, error) {
	e, ok := f.entries[ledgerKey(employeeID, policyID, year, month)]
	if !ok {
		return leave.LedgerEntry{}, leave.ErrLedgerEntryNotFound
	}
	return e, nil
}

func (f *fakeLedgerRepo) GetByEmployeeYear(_ context.Context, employeeID string, year int) ([]leave.LedgerEntry, error) {
	var out []leave.LedgerEntry
	for _, e := range f.entries {
		if e.EmployeeID == employeeID && e.Year == year {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) EncashedDaysInMonth(_ context.Context, employeeID string, year, month int) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range f.entries {
		if e.EmployeeID == employeeID && e.Year == year && e.Month == month {
			total = total.Add(e.Encashed)
		}
	}
	return total, nil
}

func (f *fakeLedgerRepo) Create(_ context.Context, entry leave.LedgerEntry) (leave.LedgerEntry, error) {
	f.nextID++
	entry.ID = fmt.Sprintf("entry-%d", f.nextID)
	f.entries[ledgerKey(entry.EmployeeID, entry.LeavePolicyID, entry.Year, entry.Month)] = entry
	return entry, nil
}

func (f *fakeLedgerRepo) Update(_ context.Context, entry leave.LedgerEntry) error {
	key := ledgerKey(entry.EmployeeID, entry.LeavePolicyID, entry.Year, entry.Month)
	if _, ok := f.entries[key]; !ok {
		return leave.ErrLedgerEntryNotFound
	}
	f.entries[key] = entry
	return nil
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

func elPolicy() leave.LeavePolicy {
	return leave.LeavePolicy{
		ID:                  "pol-el",
		Code:                "EL",
		DaysPerYear:         d("12"),
		MonthlyAccrual:      true,
		CarryForwardEnabled: true,
		CarryForwardMaxDays: d("5"),
		IsActive:            true,
	}
}

func newLedgerService(policies ...leave.LeavePolicy) (*LedgerService, *fakeLedgerRepo) {
	policyRepo := &fakePolicyRepo{policies: make(map[string]leave.LeavePolicy)}
	for _, p := range policies {
		policyRepo.policies[p.ID] = p
	}
	ledgerRepo := newFakeLedgerRepo()
	empRepo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": {ID: "emp-1", EmploymentStatus: employee.EmploymentStatusActive, BasicSalary: d("24000")},
	}}
	return NewLedgerService(nil, policyRepo, ledgerRepo, empRepo), ledgerRepo
}

func TestAccrueMonth_CreditsMonthlyRate(t *testing.T) {
	svc, _ := newLedgerService(elPolicy())

	entry, err := svc.AccrueMonth(context.Background(), "emp-1", "pol-el", 2025, 1)
	require.NoError(t, err)

	assert.True(t, entry.Accrual.Equal(d("1")), "accrual = %s", entry.Accrual)
	assert.True(t, entry.Closing.Equal(d("1")), "closing = %s", entry.Closing)
	assert.NotNil(t, entry.AccruedAt)
}

func TestAccrueMonth_Idempotent(t *testing.T) {
	svc, _ := newLedgerService(elPolicy())
	ctx := context.Background()

	first, err := svc.AccrueMonth(ctx, "emp-1", "pol-el", 2025, 1)
	require.NoError(t, err)
	second, err := svc.AccrueMonth(ctx, "emp-1", "pol-el", 2025, 1)
	require.NoError(t, err)

	assert.True(t, second.Closing.Equal(first.Closing), "closing changed on re-accrual")
	assert.True(t, second.Accrual.Equal(d("1")))
}

func TestAccrueMonth_ChainsOpeningFromPriorClosing(t *testing.T) {
	svc, _ := newLedgerService(elPolicy())
	ctx := context.Background()

	for month := 1; month <= 6; month++ {
		_, err := svc.AccrueMonth(ctx, "emp-1", "pol-el", 2025, month)
		require.NoError(t, err)
	}

	balance, err := svc.Balance(ctx, "emp-1", "pol-el", 2025, 6)
	require.NoError(t, err)
	assert.True(t, balance.Equal(d("6")), "balance after six months = %s", balance)
}

func TestAccrueMonth_FlatMonthlyRate(t *testing.T) {
	rate := d("1.25")
	policy := elPolicy()
	policy.FlatMonthlyRate = &rate
	svc, _ := newLedgerService(policy)

	entry, err := svc.AccrueMonth(context.Background(), "emp-1", "pol-el", 2025, 1)
	require.NoError(t, err)
	assert.True(t, entry.Accrual.Equal(d("1.25")))
}

func TestApplyUsage_DebitsAndRecordsDetail(t *testing.T) {
	svc, _ := newLedgerService(elPolicy())
	ctx := context.Background()

	_, err := svc.AccrueMonth(ctx, "emp-1", "pol-el", 2025, 1)
	require.NoError(t, err)
	_, err = svc.AccrueMonth(ctx, "emp-1", "pol-el", 2025, 2)
	require.NoError(t, err)

	entry, err := svc.ApplyUsage(ctx, "emp-1", "pol-el", "req-1", 2025, 2, d("1.5"))
	require.NoError(t, err)

	assert.True(t, entry.Used.Equal(d("1.5")))
	assert.True(t, entry.Closing.Equal(d("0.5")), "closing = %s", entry.Closing)
	assert.True(t, entry.UsedDetails.Contains("req-1"))
}

func TestApplyUsage_DuplicateRequestRejected(t *testing.T) {
	svc, _ := newLedgerService(elPolicy())
	ctx := context.Background()

	_, err := svc.AccrueMonth(ctx, "emp-1", "pol-el", 2025, 1)
	require.NoError(t, err)

	_, err = svc.ApplyUsage(ctx, "emp-1", "pol-el", "req-1", 2025, 1, d("0.5"))
	require.NoError(t, err)

	_, err = svc.ApplyUsage(ctx, "emp-1", "pol-el", "req-1", 2025, 1, d("0.5"))
	assert.ErrorIs(t, err, leave.ErrUsageAlreadyApplied)
}

func TestApplyUsage_InsufficientBalance(t *testing.T) {
	svc, _ := newLedgerService(elPolicy())
	ctx := context.Background()

	_, err := svc.AccrueMonth(ctx, "emp-1", "pol-el", 2025, 1)
	require.NoError(t, err)

	_, err = svc.ApplyUsage(ctx, "emp-1", "pol-el", "req-1", 2025, 1, d("3"))
	var insufficient *leave.InsufficientBalanceError
	require.True(t, errors.As(err, &insufficient))
	assert.True(t, insufficient.Available.Equal(d("1")))
	assert.True(t, insufficient.Requested.Equal(d("3")))
}

func TestApplyUsage_NegativeBalanceAllowedForLWP(t *testing.T) {
	policy := elPolicy()
	policy.ID = "pol-lwp"
	policy.Code = "LWP"
	policy.MonthlyAccrual = false
	policy.AllowNegativeBalance = true
	svc, _ := newLedgerService(policy)

	entry, err := svc.ApplyUsage(context.Background(), "emp-1", "pol-lwp", "req-1", 2025, 1, d("2"))
	require.NoError(t, err)

	assert.True(t, entry.Closing.IsZero(), "closing clamped at zero")
	assert.True(t, entry.NegativeBalance.Equal(d("2")), "deficit = %s", entry.NegativeBalance)
}

func TestActivePolicies_FiltersInactive(t *testing.T) {
	retired := elPolicy()
	retired.ID = "pol-old"
	retired.Code = "OLD"
	retired.IsActive = false
	svc, _ := newLedgerService(elPolicy(), retired)

	policies, err := svc.ActivePolicies(context.Background())
	require.NoError(t, err)
	require.Len(t, policies, 1)
	assert.Equal(t, "pol-el", policies[0].ID)
}

func TestCloseYear_CarryForwardCappedAndForfeited(t *testing.T) {
	svc, repo := newLedgerService(elPolicy())
	ctx := context.Background()

	for month := 1; month <= 12; month++ {
		_, err := svc.AccrueMonth(ctx, "emp-1", "pol-el", 2025, month)
		require.NoError(t, err)
	}

	results, err := svc.CloseYear(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	require.NoError(t, res.Err)
	assert.True(t, res.CarriedForward.Equal(d("5")), "carried = %s", res.CarriedForward)
	assert.True(t, res.Forfeited.Equal(d("7")), "forfeited = %s", res.Forfeited)

	jan, err := repo.GetEntry(ctx, "emp-1", "pol-el", 2026, 1)
	require.NoError(t, err)
	assert.True(t, jan.CarriedForward.Equal(d("5")))
	assert.True(t, jan.Closing.Equal(d("5")))
}

func TestCloseYear_EncashesClosingBalance(t *testing.T) {
	policy := elPolicy()
	policy.EncashOnYearClose = true
	policy.CarryForwardEnabled = false
	svc, repo := newLedgerService(policy)
	ctx := context.Background()

	for month := 1; month <= 12; month++ {
		_, err := svc.AccrueMonth(ctx, "emp-1", "pol-el", 2025, month)
		require.NoError(t, err)
	}

	results, err := svc.CloseYear(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].EncashedDays.Equal(d("12")))
	// 12 days at 24000/30 per day.
	assert.True(t, results[0].EncashmentAmount.Equal(d("9600")), "amount = %s", results[0].EncashmentAmount)

	dec, err := repo.GetEntry(ctx, "emp-1", "pol-el", 2025, 12)
	require.NoError(t, err)
	assert.True(t, dec.Encashed.Equal(d("12")))
	assert.True(t, dec.Closing.IsZero())

	days, err := repo.EncashedDaysInMonth(ctx, "emp-1", 2025, 12)
	require.NoError(t, err)
	assert.True(t, days.Equal(d("12")), "payroll reads the December entry for the payout")

	jan, err := repo.GetEntry(ctx, "emp-1", "pol-el", 2026, 1)
	require.NoError(t, err)
	assert.True(t, jan.Closing.IsZero(), "encashing policy starts the year at zero")
}

func TestCloseYear_MergesIntoExistingJanuary(t *testing.T) {
	svc, repo := newLedgerService(elPolicy())
	ctx := context.Background()

	for month := 1; month <= 12; month++ {
		_, err := svc.AccrueMonth(ctx, "emp-1", "pol-el", 2025, month)
		require.NoError(t, err)
	}

	// The new year starts before the close runs: January already has an
	// accrual on it.
	_, err := svc.AccrueMonth(ctx, "emp-1", "pol-el", 2026, 1)
	require.NoError(t, err)

	results, err := svc.CloseYear(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.True(t, results[0].CarriedForward.Equal(d("5")))

	jan, err := repo.GetEntry(ctx, "emp-1", "pol-el", 2026, 1)
	require.NoError(t, err)
	assert.True(t, jan.CarriedForward.Equal(d("5")))
	assert.True(t, jan.Accrual.Equal(d("1")), "the existing accrual survives the merge")
	assert.True(t, jan.Closing.Equal(d("6")), "closing = %s", jan.Closing)
}
