package approval

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Decision enum for a single chain level
type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// Level is one step of a sequential approval chain. Authority is a role
// name ("store_manager", "finance", ...), owned by the wrapping entity's
// configuration, not by this package.
type Level struct {
	Authority   string     `json:"authority"`
	Status      Decision   `json:"status"`
	DecidedBy   *string    `json:"decided_by,omitempty"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	Comments    *string    `json:"comments,omitempty"`
	SLADeadline *time.Time `json:"sla_deadline,omitempty"`
}

// Chain is an ordered list of approval levels. Decisions may only be
// recorded at the next pending level; any rejection terminates the chain.
// LeaveRequest, PayrollOverride, IncentiveClaim and FnFCase all embed one.
type Chain struct {
	Levels []Level `json:"levels"`
}

func NewChain(authorities ...string) Chain {
	levels := make([]Level, 0, len(authorities))
	for _, a := range authorities {
		levels = append(levels, Level{Authority: a, Status: DecisionPending})
	}
	return Chain{Levels: levels}
}

// NextPendingLevel returns the index of the level awaiting a decision,
// or -1 when the chain is terminal (fully approved or rejected).
func (c Chain) NextPendingLevel() int {
	if c.IsRejected() {
		return -1
	}
	for i, l := range c.Levels {
		if l.Status == DecisionPending {
			return i
		}
	}
	return -1
}

func (c Chain) IsFullyApproved() bool {
	if len(c.Levels) == 0 {
		return false
	}
	for _, l := range c.Levels {
		if l.Status != DecisionApproved {
			return false
		}
	}
	return true
}

func (c Chain) IsRejected() bool {
	for _, l := range c.Levels {
		if l.Status == DecisionRejected {
			return true
		}
	}
	return false
}

// RecordDecision applies an approve/reject decision at the given level.
// The level must be the next pending one and the chain must not already
// be terminal; anything else is ErrChainFinalized / ErrLevelNotPending.
func (c *Chain) RecordDecision(level int, approve bool, actor, comments string) error {
	if level < 0 || level >= len(c.Levels) {
		return ErrLevelOutOfRange
	}
	if c.IsRejected() || c.IsFullyApproved() {
		return ErrChainFinalized
	}
	if level != c.NextPendingLevel() {
		return ErrLevelNotPending
	}

	now := time.Now()
	l := &c.Levels[level]
	if approve {
		l.Status = DecisionApproved
	} else {
		l.Status = DecisionRejected
	}
	l.DecidedBy = &actor
	l.DecidedAt = &now
	if comments != "" {
		l.Comments = &comments
	}
	return nil
}

var (
	ErrLevelOutOfRange = errors.New("approval level out of range")
	ErrLevelNotPending = errors.New("approval level is not the next pending level")
	ErrChainFinalized  = errors.New("approval chain already finalized")
)

// Value implements driver.Valuer for JSONB storage
func (c Chain) Value() (driver.Value, error) {
	if len(c.Levels) == 0 {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner for JSONB retrieval
func (c *Chain) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan approval chain: invalid type")
	}

	return json.Unmarshal(bytes, c)
}
