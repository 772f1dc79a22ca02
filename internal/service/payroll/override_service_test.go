package payroll

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentum-hr/payops-backend-go/internal/domain/payroll"
)

func newOverrideFixture(t *testing.T) (*runFixture, *OverrideService, payroll.PayrollRun) {
	t.Helper()
	f := newRunFixture(salariedEmployee("emp-1", "20000", "40000"))
	ctx := context.Background()

	run, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{Month: 3, Year: 2025}, "admin-1")
	require.NoError(t, err)
	run, err = f.svc.Process(ctx, run.ID)
	require.NoError(t, err)

	svc := NewOverrideService(nil, d("10000"), f.runs, f.components, f.overrides)
	return f, svc, run
}

func TestCreateOverride_RequiresReviewRun(t *testing.T) {
	f := newRunFixture(salariedEmployee("emp-1", "20000", "40000"))
	ctx := context.Background()

	run, err := f.svc.CreateRun(ctx, payroll.CreateRunRequest{Month: 3, Year: 2025}, "admin-1")
	require.NoError(t, err)

	svc := NewOverrideService(nil, d("10000"), f.runs, f.components, f.overrides)
	_, err = svc.CreateOverride(ctx, payroll.CreateOverrideRequest{
		RunID: run.ID, EmployeeID: "emp-1", ComponentCode: "BASIC",
		OverrideAmount: 21000, ReasonCode: "ARREARS",
	}, "admin-1")

	var stateErr *payroll.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, payroll.RunStatusDraft, stateErr.Current)
}

func TestCreateOverride_HighValueForcesTwoLevels(t *testing.T) {
	_, svc, run := newOverrideFixture(t)
	ctx := context.Background()

	// Difference 11000 is at the threshold's far side: two levels.
	high, err := svc.CreateOverride(ctx, payroll.CreateOverrideRequest{
		RunID: run.ID, EmployeeID: "emp-1", ComponentCode: "BASIC",
		OverrideAmount: 31000, ReasonCode: "ARREARS",
	}, "admin-1")
	require.NoError(t, err)
	assert.True(t, high.IsHighValue)
	assert.Len(t, high.Chain.Levels, 2)
	assert.True(t, high.Difference.Equal(d("11000")))

	low, err := svc.CreateOverride(ctx, payroll.CreateOverrideRequest{
		RunID: run.ID, EmployeeID: "emp-1", ComponentCode: "HRA",
		OverrideAmount: 10500, ReasonCode: "ARREARS",
	}, "admin-1")
	require.NoError(t, err)
	assert.False(t, low.IsHighValue)
	assert.Len(t, low.Chain.Levels, 1)
}

func TestDecideOverride_ApprovalRewritesComponent(t *testing.T) {
	f, svc, run := newOverrideFixture(t)
	ctx := context.Background()

	override, err := svc.CreateOverride(ctx, payroll.CreateOverrideRequest{
		RunID: run.ID, EmployeeID: "emp-1", ComponentCode: "BASIC",
		OverrideAmount: 20500, ReasonCode: "ARREARS",
	}, "admin-1")
	require.NoError(t, err)
	assert.True(t, override.OriginalAmount.Equal(d("20000")))

	override, err = svc.DecideOverride(ctx, override.ID, "padmin-1", payroll.DecideOverrideRequest{
		Level: 0, Approve: true,
	})
	require.NoError(t, err)
	assert.Equal(t, payroll.OverrideStatusApproved, override.Status)
	assert.True(t, override.Applied)
	require.NotNil(t, override.AppliedAt)

	component, err := f.components.GetByRunEmployeeCode(ctx, run.ID, "emp-1", payroll.CodeBasic)
	require.NoError(t, err)
	assert.True(t, component.Amount.Equal(d("20500")))
	assert.Equal(t, payroll.SourceOverride, component.Source)
	require.NotNil(t, component.OverrideID)
	assert.Equal(t, override.ID, *component.OverrideID)
}

func TestDecideOverride_RejectionLeavesComponent(t *testing.T) {
	f, svc, run := newOverrideFixture(t)
	ctx := context.Background()

	override, err := svc.CreateOverride(ctx, payroll.CreateOverrideRequest{
		RunID: run.ID, EmployeeID: "emp-1", ComponentCode: "BASIC",
		OverrideAmount: 25000, ReasonCode: "ARREARS",
	}, "admin-1")
	require.NoError(t, err)

	override, err = svc.DecideOverride(ctx, override.ID, "padmin-1", payroll.DecideOverrideRequest{
		Level: 0, Approve: false, Comments: "no supporting document",
	})
	require.NoError(t, err)
	assert.Equal(t, payroll.OverrideStatusRejected, override.Status)
	assert.False(t, override.Applied)

	component, err := f.components.GetByRunEmployeeCode(ctx, run.ID, "emp-1", payroll.CodeBasic)
	require.NoError(t, err)
	assert.True(t, component.Amount.Equal(d("20000")))
	assert.Equal(t, payroll.SourceCalc, component.Source)

	_, err = svc.DecideOverride(ctx, override.ID, "padmin-1", payroll.DecideOverrideRequest{
		Level: 0, Approve: true,
	})
	assert.ErrorIs(t, err, payroll.ErrOverrideAlreadyDecided)
}

func TestDecideOverride_RefusedOnLockedRun(t *testing.T) {
	f, svc, run := newOverrideFixture(t)
	ctx := context.Background()

	override, err := svc.CreateOverride(ctx, payroll.CreateOverrideRequest{
		RunID: run.ID, EmployeeID: "emp-1", ComponentCode: "BASIC",
		OverrideAmount: 20500, ReasonCode: "ARREARS",
	}, "admin-1")
	require.NoError(t, err)

	swapped, err := f.runs.TransitionStatus(ctx, run.ID, payroll.RunStatusReview, payroll.RunStatusLocked)
	require.NoError(t, err)
	require.True(t, swapped)

	_, err = svc.DecideOverride(ctx, override.ID, "padmin-1", payroll.DecideOverrideRequest{
		Level: 0, Approve: true,
	})
	assert.ErrorIs(t, err, payroll.ErrRunImmutable)
}

func TestCancelOverride_UnblocksLock(t *testing.T) {
	f, svc, run := newOverrideFixture(t)
	ctx := context.Background()

	override, err := svc.CreateOverride(ctx, payroll.CreateOverrideRequest{
		RunID: run.ID, EmployeeID: "emp-1", ComponentCode: "BASIC",
		OverrideAmount: 25000, ReasonCode: "ARREARS",
	}, "admin-1")
	require.NoError(t, err)

	_, err = f.svc.Lock(ctx, run.ID, "admin-1")
	require.ErrorIs(t, err, payroll.ErrPendingOverrides)

	override, err = svc.CancelOverride(ctx, override.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.OverrideStatusCancelled, override.Status)

	run, err = f.svc.Lock(ctx, run.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusLocked, run.Status)
}
