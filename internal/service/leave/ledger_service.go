package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talentum-hr/payops-backend-go/internal/domain/employee"
	"github.com/talentum-hr/payops-backend-go/internal/domain/fnf"
	"github.com/talentum-hr/payops-backend-go/internal/domain/leave"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/database"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/keylock"
)

// LedgerService owns every write to the leave ledger. All mutations for
// one employee are serialized through the key lock so concurrent accrual
// and usage cannot interleave.
type LedgerService struct {
	db       *database.DB
	locks    *keylock.KeyLock
	policies leave.LeavePolicyRepository
	leave.LeaveLedgerRepository
	employees employee.EmployeeRepository
}

func NewLedgerService(
	db *database.DB,
	policyRepository leave.LeavePolicyRepository,
	ledgerRepository leave.LeaveLedgerRepository,
	employeeRepository employee.EmployeeRepository,
) *LedgerService {
	return &LedgerService{
		db:                    db,
		locks:                 keylock.New(),
		policies:              policyRepository,
		LeaveLedgerRepository: ledgerRepository,
		employees:             employeeRepository,
	}
}

// AccrueMonth credits the monthly accrual for one employee and policy.
// A second call for the same period is a no-op: AccruedAt is set exactly
// once.
func (s *LedgerService) AccrueMonth(ctx context.Context, employeeID, policyID string, year, month int) (leave.LedgerEntry, error) {
	policy, err := s.policies.GetByID(ctx, policyID)
	if err != nil {
		return leave.LedgerEntry{}, fmt.Errorf("failed to get leave policy: %w", err)
	}
	if !policy.IsActive {
		return leave.LedgerEntry{}, leave.ErrPolicyInactive
	}

	s.locks.Lock(employeeID)
	defer s.locks.Unlock(employeeID)

	entry, err := s.openEntry(ctx, employeeID, policy, year, month)
	if err != nil {
		return leave.LedgerEntry{}, err
	}

	if entry.AccruedAt != nil {
		return entry, nil
	}

	if policy.MonthlyAccrual {
		entry.Accrual = policy.MonthlyAccrualRate()
	}
	now := time.Now()
	entry.AccruedAt = &now
	leave.ComputeClosing(&entry)

	if err := s.LeaveLedgerRepository.Update(ctx, entry); err != nil {
		return leave.LedgerEntry{}, fmt.Errorf("failed to update ledger entry: %w", err)
	}

	return entry, nil
}

// AccrueCurrentPeriod runs the accrual batch for every active employee
// and policy. Per-employee failures are logged and skipped so one bad
// record cannot stall the whole batch.
func (s *LedgerService) AccrueCurrentPeriod(ctx context.Context) error {
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())

	policies, err := s.policies.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to get active leave policies: %w", err)
	}

	employees, err := s.employees.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to get active employees: %w", err)
	}

	failed := 0
	for _, emp := range employees {
		for _, policy := range policies {
			if !policy.MonthlyAccrual {
				continue
			}
			if _, err := s.AccrueMonth(ctx, emp.ID, policy.ID, year, month); err != nil {
				slog.Error("Accrual failed",
					"employee_id", emp.ID,
					"policy_id", policy.ID,
					"error", err)
				failed++
			}
		}
	}

	slog.Info("Monthly accrual batch finished",
		"year", year, "month", month,
		"employees", len(employees), "failed", failed)
	return nil
}

// ApplyUsage debits approved leave days against the period the request
// starts in. The request id is the idempotency key; re-applying the same
// request returns ErrUsageAlreadyApplied.
func (s *LedgerService) ApplyUsage(ctx context.Context, employeeID, policyID, requestID string, year, month int, days decimal.Decimal) (leave.LedgerEntry, error) {
	policy, err := s.policies.GetByID(ctx, policyID)
	if err != nil {
		return leave.LedgerEntry{}, fmt.Errorf("failed to get leave policy: %w", err)
	}

	s.locks.Lock(employeeID)
	defer s.locks.Unlock(employeeID)

	entry, err := s.openEntry(ctx, employeeID, policy, year, month)
	if err != nil {
		return leave.LedgerEntry{}, err
	}

	if entry.UsedDetails.Contains(requestID) {
		return leave.LedgerEntry{}, leave.ErrUsageAlreadyApplied
	}

	available := entry.RawBalance()
	if available.LessThan(days) && !policy.AllowNegativeBalance {
		return leave.LedgerEntry{}, &leave.InsufficientBalanceError{
			Available: available,
			Requested: days,
		}
	}

	entry.Used = entry.Used.Add(days)
	entry.UsedDetails = append(entry.UsedDetails, leave.UsageDetail{
		RequestID: requestID,
		Days:      days,
		AppliedAt: time.Now(),
	})
	leave.ComputeClosing(&entry)

	if err := s.LeaveLedgerRepository.Update(ctx, entry); err != nil {
		return leave.LedgerEntry{}, fmt.Errorf("failed to update ledger entry: %w", err)
	}

	return entry, nil
}

// Balance returns the current raw balance for the period, zero when the
// period has no entry yet.
func (s *LedgerService) Balance(ctx context.Context, employeeID, policyID string, year, month int) (decimal.Decimal, error) {
	entry, err := s.LeaveLedgerRepository.GetEntry(ctx, employeeID, policyID, year, month)
	if errors.Is(err, leave.ErrLedgerEntryNotFound) {
		// Fall back to the prior period's closing.
		prevYear, prevMonth := leave.PrevPeriod(year, month)
		prev, prevErr := s.LeaveLedgerRepository.GetEntry(ctx, employeeID, policyID, prevYear, prevMonth)
		if errors.Is(prevErr, leave.ErrLedgerEntryNotFound) {
			return decimal.Zero, nil
		}
		if prevErr != nil {
			return decimal.Zero, fmt.Errorf("failed to get prior ledger entry: %w", prevErr)
		}
		return prev.RawBalance(), nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return entry.RawBalance(), nil
}

// EncashAll converts the period's full remaining balance into encashed
// days, zeroing the ledger. F&F payout is the only caller; returns the
// days encashed.
func (s *LedgerService) EncashAll(ctx context.Context, employeeID, policyID string, year, month int) (decimal.Decimal, error) {
	policy, err := s.policies.GetByID(ctx, policyID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get leave policy: %w", err)
	}

	s.locks.Lock(employeeID)
	defer s.locks.Unlock(employeeID)

	entry, err := s.openEntry(ctx, employeeID, policy, year, month)
	if err != nil {
		return decimal.Zero, err
	}

	days := entry.RawBalance()
	if !days.IsPositive() {
		return decimal.Zero, nil
	}

	entry.Encashed = entry.Encashed.Add(days)
	leave.ComputeClosing(&entry)

	if err := s.LeaveLedgerRepository.Update(ctx, entry); err != nil {
		return decimal.Zero, fmt.Errorf("failed to update ledger entry: %w", err)
	}
	return days, nil
}

// YearCloseResult summarizes one employee's year-close outcome.
type YearCloseResult struct {
	EmployeeID       string
	PolicyID         string
	CarriedForward   decimal.Decimal
	Forfeited        decimal.Decimal
	EncashedDays     decimal.Decimal
	EncashmentAmount decimal.Decimal
	Err              error
}

// ActivePolicies lists the policies requests can be raised against.
func (s *LedgerService) ActivePolicies(ctx context.Context) ([]leave.LeavePolicy, error) {
	policies, err := s.policies.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active leave policies: %w", err)
	}
	return policies, nil
}

// CloseYear runs the December year-close for every active employee and
// policy: carry-forward up to the policy cap, forfeit the excess, and
// for encashing policies record the encashed days on the December entry.
// The batch continues past individual failures and reports them in the
// result slice.
func (s *LedgerService) CloseYear(ctx context.Context, year int) ([]YearCloseResult, error) {
	policies, err := s.policies.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active leave policies: %w", err)
	}

	employees, err := s.employees.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active employees: %w", err)
	}

	var results []YearCloseResult
	for _, emp := range employees {
		for _, policy := range policies {
			res := s.closeYearFor(ctx, emp, policy, year)
			if res.Err != nil {
				slog.Error("Year close failed",
					"employee_id", emp.ID,
					"policy_id", policy.ID,
					"error", res.Err)
			}
			results = append(results, res)
		}
	}

	return results, nil
}

func (s *LedgerService) closeYearFor(ctx context.Context, emp employee.Employee, policy leave.LeavePolicy, year int) YearCloseResult {
	res := YearCloseResult{EmployeeID: emp.ID, PolicyID: policy.ID}

	s.locks.Lock(emp.ID)
	defer s.locks.Unlock(emp.ID)

	dec, err := s.LeaveLedgerRepository.GetEntry(ctx, emp.ID, policy.ID, year, 12)
	if errors.Is(err, leave.ErrLedgerEntryNotFound) {
		return res
	}
	if err != nil {
		res.Err = fmt.Errorf("failed to get December entry: %w", err)
		return res
	}

	balance := dec.Closing

	if policy.EncashOnYearClose {
		// The whole closing balance is encashed at basic/30 per day;
		// the January run pays the amount out as an earnings component.
		dec.Encashed = dec.Encashed.Add(balance)
		res.EncashedDays = balance
		res.EncashmentAmount = fnf.ELEncashmentFor(emp.BasicSalary, balance)
		balance = decimal.Zero
	} else if policy.CarryForwardEnabled {
		carry := balance
		if carry.GreaterThan(policy.CarryForwardMaxDays) {
			carry = policy.CarryForwardMaxDays
		}
		res.CarriedForward = carry
		res.Forfeited = balance.Sub(carry)
		balance = carry
	} else {
		res.Forfeited = balance
		balance = decimal.Zero
	}

	leave.ComputeClosing(&dec)
	if err := s.LeaveLedgerRepository.Update(ctx, dec); err != nil {
		res.Err = fmt.Errorf("failed to update December entry: %w", err)
		return res
	}

	// Seed January of the next year with the carried-forward amount. A
	// late year-close may find January already opened by lazy accrual;
	// the carry-forward merges into that entry instead of conflicting.
	jan, err := s.LeaveLedgerRepository.GetEntry(ctx, emp.ID, policy.ID, year+1, 1)
	switch {
	case err == nil:
		jan.CarriedForward = res.CarriedForward
		leave.ComputeClosing(&jan)
		if err := s.LeaveLedgerRepository.Update(ctx, jan); err != nil {
			res.Err = fmt.Errorf("failed to update January entry: %w", err)
			return res
		}
	case errors.Is(err, leave.ErrLedgerEntryNotFound):
		jan = leave.LedgerEntry{
			EmployeeID:     emp.ID,
			LeavePolicyID:  policy.ID,
			Year:           year + 1,
			Month:          1,
			CarriedForward: res.CarriedForward,
		}
		leave.ComputeClosing(&jan)
		if _, err := s.LeaveLedgerRepository.Create(ctx, jan); err != nil {
			res.Err = fmt.Errorf("failed to create January entry: %w", err)
			return res
		}
	default:
		res.Err = fmt.Errorf("failed to get January entry: %w", err)
		return res
	}

	return res
}

// openEntry loads the period entry, creating it from the prior period's
// closing when absent. Callers must hold the employee lock.
func (s *LedgerService) openEntry(ctx context.Context, employeeID string, policy leave.LeavePolicy, year, month int) (leave.LedgerEntry, error) {
	entry, err := s.LeaveLedgerRepository.GetEntry(ctx, employeeID, policy.ID, year, month)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, leave.ErrLedgerEntryNotFound) {
		return leave.LedgerEntry{}, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	entry = leave.LedgerEntry{
		EmployeeID:    employeeID,
		LeavePolicyID: policy.ID,
		Year:          year,
		Month:         month,
	}

	prevYear, prevMonth := leave.PrevPeriod(year, month)
	prev, err := s.LeaveLedgerRepository.GetEntry(ctx, employeeID, policy.ID, prevYear, prevMonth)
	if err == nil {
		// January openings come from CarriedForward, not the December
		// closing; year close already seeded that entry when it ran.
		if month != 1 {
			entry.Opening = prev.Closing
		}
	} else if !errors.Is(err, leave.ErrLedgerEntryNotFound) {
		return leave.LedgerEntry{}, fmt.Errorf("failed to get prior ledger entry: %w", err)
	}

	leave.ComputeClosing(&entry)

	created, err := s.LeaveLedgerRepository.Create(ctx, entry)
	if err != nil {
		return leave.LedgerEntry{}, fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return created, nil
}
