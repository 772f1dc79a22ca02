package leave

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is the per-employee, per-period, per-policy balance record.
// Entries form an append-only monthly chain: each month's opening equals
// the prior month's closing (or the carried-forward amount at a year
// boundary). Closing is never persisted negative; any deficit is recorded
// in NegativeBalance instead.
type LedgerEntry struct {
	ID            string
	EmployeeID    string
	LeavePolicyID string
	Year          int
	Month         int // 1..12

	Opening        decimal.Decimal
	Accrual        decimal.Decimal
	Used           decimal.Decimal
	Encashed       decimal.Decimal
	CarriedForward decimal.Decimal

	Closing         decimal.Decimal
	NegativeBalance decimal.Decimal

	AccruedAt   *time.Time   // set once by the monthly accrual; guards re-accrual
	UsedDetails UsageDetails // one record per applied leave request

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ComputeClosing recomputes the running-balance recurrence:
//
//	closing = opening + accrual - used - encashed + carried_forward
//
// clamped at zero, with the deficit recorded in NegativeBalance. This is
// the only place the recurrence lives; callers invoke it explicitly before
// persisting, never as a save-hook side effect.
func ComputeClosing(e *LedgerEntry) {
	raw := e.Opening.
		Add(e.Accrual).
		Sub(e.Used).
		Sub(e.Encashed).
		Add(e.CarriedForward)

	if raw.IsNegative() {
		e.Closing = decimal.Zero
		e.NegativeBalance = raw.Neg()
	} else {
		e.Closing = raw
		e.NegativeBalance = decimal.Zero
	}
}

// RawBalance returns the unclamped recurrence value (closing minus deficit).
func (e LedgerEntry) RawBalance() decimal.Decimal {
	return e.Closing.Sub(e.NegativeBalance)
}

// UsageDetail records one approved leave request applied to this entry.
// The request id is the dedupe key: applying the same request twice must
// be rejected.
type UsageDetail struct {
	RequestID string          `json:"request_id"`
	Days      decimal.Decimal `json:"days"`
	AppliedAt time.Time       `json:"applied_at"`
}

// UsageDetails is the JSONB list of applied requests
type UsageDetails []UsageDetail

func (d UsageDetails) Contains(requestID string) bool {
	for _, u := range d {
		if u.RequestID == requestID {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer for database storage
func (d UsageDetails) Value() (driver.Value, error) {
	if len(d) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for database retrieval
func (d *UsageDetails) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan usage details: invalid type")
	}

	return json.Unmarshal(bytes, d)
}

// PrevPeriod returns the (year, month) preceding the given period.
func PrevPeriod(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}
