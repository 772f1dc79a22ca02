package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_SequentialApproval(t *testing.T) {
	chain := NewChain("manager", "accounts", "hr_head")

	assert.Equal(t, 0, chain.NextPendingLevel())
	assert.False(t, chain.IsFullyApproved())
	assert.False(t, chain.IsRejected())

	require.NoError(t, chain.RecordDecision(0, true, "mgr-1", "ok"))
	assert.Equal(t, 1, chain.NextPendingLevel())

	require.NoError(t, chain.RecordDecision(1, true, "acc-1", ""))
	require.NoError(t, chain.RecordDecision(2, true, "hr-1", "final"))

	assert.True(t, chain.IsFullyApproved())
	assert.Equal(t, -1, chain.NextPendingLevel())
}

func TestChain_OutOfOrderDecisionRejected(t *testing.T) {
	chain := NewChain("store_manager", "area_manager", "finance")

	// Level 1 cannot decide before level 0
	err := chain.RecordDecision(1, true, "am-1", "")
	assert.ErrorIs(t, err, ErrLevelNotPending)

	require.NoError(t, chain.RecordDecision(0, true, "sm-1", ""))

	// Level 0 cannot be decided twice
	err = chain.RecordDecision(0, true, "sm-1", "again")
	assert.ErrorIs(t, err, ErrLevelNotPending)
}

func TestChain_RejectionShortCircuits(t *testing.T) {
	chain := NewChain("manager", "accounts", "hr_head")

	require.NoError(t, chain.RecordDecision(0, true, "mgr-1", ""))
	require.NoError(t, chain.RecordDecision(1, false, "acc-1", "numbers off"))

	assert.True(t, chain.IsRejected())
	assert.False(t, chain.IsFullyApproved())
	assert.Equal(t, -1, chain.NextPendingLevel())

	// Once rejected the chain stays rejected regardless of further calls
	err := chain.RecordDecision(2, true, "hr-1", "")
	assert.ErrorIs(t, err, ErrChainFinalized)
	assert.True(t, chain.IsRejected())
}

func TestChain_ApprovedIsStable(t *testing.T) {
	chain := NewChain("manager")
	require.NoError(t, chain.RecordDecision(0, true, "mgr-1", ""))
	assert.True(t, chain.IsFullyApproved())

	err := chain.RecordDecision(0, false, "mgr-1", "changed my mind")
	assert.ErrorIs(t, err, ErrChainFinalized)
	assert.True(t, chain.IsFullyApproved())
}

func TestChain_LevelOutOfRange(t *testing.T) {
	chain := NewChain("manager")
	assert.ErrorIs(t, chain.RecordDecision(3, true, "x", ""), ErrLevelOutOfRange)
	assert.ErrorIs(t, chain.RecordDecision(-1, true, "x", ""), ErrLevelOutOfRange)
}

func TestChain_EmptyChainNeverApproved(t *testing.T) {
	var chain Chain
	assert.False(t, chain.IsFullyApproved())
	assert.Equal(t, -1, chain.NextPendingLevel())
}

func TestChain_JSONRoundTrip(t *testing.T) {
	chain := NewChain("manager", "finance")
	require.NoError(t, chain.RecordDecision(0, true, "mgr-1", "ok"))

	v, err := chain.Value()
	require.NoError(t, err)

	var decoded Chain
	require.NoError(t, decoded.Scan(v))
	assert.Len(t, decoded.Levels, 2)
	assert.Equal(t, DecisionApproved, decoded.Levels[0].Status)
	assert.Equal(t, "finance", decoded.Levels[1].Authority)
}
