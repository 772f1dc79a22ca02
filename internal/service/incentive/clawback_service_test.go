package incentive

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentum-hr/payops-backend-go/internal/domain/employee"
	"github.com/talentum-hr/payops-backend-go/internal/domain/incentive"
)

type fakeSalesRepo struct {
	events map[string]incentive.SalesEvent
	nextID int
}

func newFakeSalesRepo() *fakeSalesRepo {
	return &fakeSalesRepo{events: make(map[string]incentive.SalesEvent)}
}

func (f *fakeSalesRepo) CreateIfAbsent(_ context.Context, event incentive.SalesEvent) (bool, error) {
	if _, ok := f.events[event.InvoiceID]; ok {
		return false, nil
	}
	f.nextID++
	event.ID = fmt.Sprintf("sale-%d", f.nextID)
	f.events[event.InvoiceID] = event
	return true, nil
}

func (f *fakeSalesRepo) GetByInvoiceID(_ context.Context, invoiceID string) (incentive.SalesEvent, error) {
	e, ok := f.events[invoiceID]
	if !ok {
		return incentive.SalesEvent{}, incentive.ErrSalesEventNotFound
	}
	return e, nil
}

type fakeReturnsRepo struct {
	items  map[string]incentive.ReturnsRemakesItem
	nextID int
}

func newFakeReturnsRepo() *fakeReturnsRepo {
	return &fakeReturnsRepo{items: make(map[string]incentive.ReturnsRemakesItem)}
}

func returnsKey(invoiceID string, typ incentive.ReturnType) string {
	return invoiceID + "|" + string(typ)
}

func (f *fakeReturnsRepo) CreateIfAbsent(_ context.Context, item incentive.ReturnsRemakesItem) (bool, error) {
	for _, existing := range f.items {
		if returnsKey(existing.InvoiceID, existing.Type) == returnsKey(item.InvoiceID, item.Type) {
			return false, nil
		}
	}
	f.nextID++
	item.ID = fmt.Sprintf("ret-%d", f.nextID)
	f.items[item.ID] = item
	return true, nil
}

func (f *fakeReturnsRepo) GetByID(_ context.Context, id string) (incentive.ReturnsRemakesItem, error) {
	item, ok := f.items[id]
	if !ok {
		return incentive.ReturnsRemakesItem{}, incentive.ErrReturnItemNotFound
	}
	return item, nil
}

func (f *fakeReturnsRepo) UnresolvedInPeriod(_ context.Context, year, month int) ([]incentive.ReturnsRemakesItem, error) {
	var out []incentive.ReturnsRemakesItem
	for _, item := range f.items {
		if item.ClawbackApplied || item.UnresolvedReason != nil {
			continue
		}
		if item.EventDate.Year() == year && int(item.EventDate.Month()) == month {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeReturnsRepo) Update(_ context.Context, item incentive.ReturnsRemakesItem) error {
	if _, ok := f.items[item.ID]; !ok {
		return incentive.ErrReturnItemNotFound
	}
	f.items[item.ID] = item
	return nil
}

func newClawbackService(staff ...employee.Employee) (*ClawbackService, *fakeSalesRepo, *fakeReturnsRepo, *fakeClaimRepo) {
	return newClawbackServiceWithMethod(incentive.ClawbackMethodProportional, staff...)
}

func newClawbackServiceWithMethod(method incentive.ClawbackMethod, staff ...employee.Employee) (*ClawbackService, *fakeSalesRepo, *fakeReturnsRepo, *fakeClaimRepo) {
	salesRepo := newFakeSalesRepo()
	returnsRepo := newFakeReturnsRepo()
	claimRepo := newFakeClaimRepo()
	empRepo := &fakeEmployeeRepo{employees: make(map[string]employee.Employee)}
	for _, e := range staff {
		empRepo.employees[e.ID] = e
	}
	svc := NewClawbackService(nil, 10, method, salesRepo, returnsRepo, claimRepo, empRepo)
	return svc, salesRepo, returnsRepo, claimRepo
}

func TestIngestSalesClosed_DedupesOnInvoice(t *testing.T) {
	svc, _, _, _ := newClawbackService(eligibleStylist("emp-1"))
	ctx := context.Background()

	payload := incentive.SalesClosedPayload{
		InvoiceID:  "INV-001",
		EmployeeID: "emp-1",
		StoreID:    "store-1",
		Amount:     1500,
		SaleDate:   "2025-01-10",
	}

	created, err := svc.IngestSalesClosed(ctx, payload)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.IngestSalesClosed(ctx, payload)
	require.NoError(t, err)
	assert.False(t, created, "redelivery must not create a second event")
}

func TestIngestReturn_DedupesOnInvoiceAndType(t *testing.T) {
	svc, _, _, _ := newClawbackService(eligibleStylist("emp-1"))
	ctx := context.Background()

	payload := incentive.ReturnsRemakesPayload{
		InvoiceID:        "INV-001",
		EmployeeID:       "emp-1",
		StoreID:          "store-1",
		Type:             "RETURN",
		Amount:           500,
		EventDate:        "2025-02-05",
		OriginalSaleDate: "2025-01-20",
		PolicyWindowDays: 30,
		PolicyApplicable: true,
	}

	created, err := svc.IngestReturn(ctx, payload)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.IngestReturn(ctx, payload)
	require.NoError(t, err)
	assert.False(t, created)

	// Same invoice, different type is a distinct event.
	payload.Type = "REMAKE"
	created, err = svc.IngestReturn(ctx, payload)
	require.NoError(t, err)
	assert.True(t, created)
}

func seedApprovedClaim(t *testing.T, claimRepo *fakeClaimRepo, employeeID string, year, month int, actualSales, amount string) incentive.IncentiveClaim {
	t.Helper()
	approved := decimal.RequireFromString(amount)
	claim, err := claimRepo.Create(context.Background(), incentive.IncentiveClaim{
		EmployeeID:     employeeID,
		Year:           year,
		Month:          month,
		ActualSales:    decimal.RequireFromString(actualSales),
		ApprovedAmount: &approved,
		Status:         incentive.ClaimStatusApproved,
	})
	require.NoError(t, err)
	return claim
}

func TestResolveForPeriod_ProportionalClawback(t *testing.T) {
	svc, salesRepo, returnsRepo, claimRepo := newClawbackService(eligibleStylist("emp-1"))
	ctx := context.Background()

	salesRepo.events["INV-001"] = incentive.SalesEvent{
		ID: "sale-1", InvoiceID: "INV-001", EmployeeID: "emp-1", StoreID: "store-1",
		Amount:   d("13000"),
		SaleDate: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
	}
	seedApprovedClaim(t, claimRepo, "emp-1", 2025, 1, "130000", "700")

	_, err := svc.IngestReturn(ctx, incentive.ReturnsRemakesPayload{
		InvoiceID: "INV-001", EmployeeID: "emp-1", StoreID: "store-1",
		Type: "RETURN", Amount: 13000,
		EventDate: "2025-02-05", OriginalSaleDate: "2025-01-20",
		PolicyWindowDays: 30, PolicyApplicable: true,
	})
	require.NoError(t, err)

	charges, err := svc.ResolveForPeriod(ctx, 2025, 2, "run-1")
	require.NoError(t, err)
	require.Len(t, charges, 1)

	assert.Equal(t, "emp-1", charges[0].EmployeeID)
	assert.True(t, charges[0].Amount.Equal(d("70")), "charge = %s", charges[0].Amount)
	assert.Equal(t, incentive.ClawbackMethodProportional, charges[0].Method)

	item, err := returnsRepo.GetByID(ctx, charges[0].ItemID)
	require.NoError(t, err)
	assert.True(t, item.ClawbackApplied)
	require.NotNil(t, item.ResolvedInRunID)
	assert.Equal(t, "run-1", *item.ResolvedInRunID)

	// Resolution is single-shot: the next run sees nothing.
	charges, err = svc.ResolveForPeriod(ctx, 2025, 2, "run-2")
	require.NoError(t, err)
	assert.Empty(t, charges)
}

func TestResolveForPeriod_OutsideWindowSkipped(t *testing.T) {
	svc, _, _, _ := newClawbackService(eligibleStylist("emp-1"))
	ctx := context.Background()

	_, err := svc.IngestReturn(ctx, incentive.ReturnsRemakesPayload{
		InvoiceID: "INV-002", EmployeeID: "emp-1", StoreID: "store-1",
		Type: "RETURN", Amount: 5000,
		EventDate: "2025-02-25", OriginalSaleDate: "2025-01-20",
		PolicyWindowDays: 30, PolicyApplicable: true,
	})
	require.NoError(t, err)

	charges, err := svc.ResolveForPeriod(ctx, 2025, 2, "run-1")
	require.NoError(t, err)
	assert.Empty(t, charges, "36-day-old sale is outside the 30-day window")
}

func TestResolveForPeriod_PoolPenaltyWhenNoClaim(t *testing.T) {
	staff := []employee.Employee{
		eligibleStylist("emp-1"),
		eligibleStylist("emp-2"),
		eligibleStylist("emp-3"),
	}
	svc, _, _, _ := newClawbackService(staff...)
	ctx := context.Background()

	// No sales event and no claim recorded for this invoice.
	_, err := svc.IngestReturn(ctx, incentive.ReturnsRemakesPayload{
		InvoiceID: "INV-003", EmployeeID: "emp-1", StoreID: "store-1",
		Type: "REMAKE", Amount: 3000,
		EventDate: "2025-02-05", OriginalSaleDate: "2025-01-25",
		PolicyWindowDays: 30, PolicyApplicable: true,
	})
	require.NoError(t, err)

	charges, err := svc.ResolveForPeriod(ctx, 2025, 2, "run-1")
	require.NoError(t, err)
	require.Len(t, charges, 3)

	total := decimal.Zero
	for _, c := range charges {
		assert.Equal(t, incentive.ClawbackMethodPoolPenalty, c.Method)
		total = total.Add(c.Amount)
	}
	// 10% of 3000, split across the store.
	assert.True(t, total.Equal(d("300")), "total = %s", total)
}

func TestResolveForPeriod_ConfiguredPoolMethodOverridesMatch(t *testing.T) {
	staff := []employee.Employee{
		eligibleStylist("emp-1"),
		eligibleStylist("emp-2"),
	}
	svc, salesRepo, _, claimRepo := newClawbackServiceWithMethod(incentive.ClawbackMethodPoolPenalty, staff...)
	ctx := context.Background()

	// The original sale and claim are both on record, but the store is
	// configured for pooled recovery.
	salesRepo.events["INV-005"] = incentive.SalesEvent{
		ID: "sale-5", InvoiceID: "INV-005", EmployeeID: "emp-1", StoreID: "store-1",
		Amount:   d("13000"),
		SaleDate: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
	}
	seedApprovedClaim(t, claimRepo, "emp-1", 2025, 1, "130000", "700")

	_, err := svc.IngestReturn(ctx, incentive.ReturnsRemakesPayload{
		InvoiceID: "INV-005", EmployeeID: "emp-1", StoreID: "store-1",
		Type: "RETURN", Amount: 3000,
		EventDate: "2025-02-05", OriginalSaleDate: "2025-01-20",
		PolicyWindowDays: 30, PolicyApplicable: true,
	})
	require.NoError(t, err)

	charges, err := svc.ResolveForPeriod(ctx, 2025, 2, "run-1")
	require.NoError(t, err)
	require.Len(t, charges, 2)

	total := decimal.Zero
	for _, c := range charges {
		assert.Equal(t, incentive.ClawbackMethodPoolPenalty, c.Method)
		total = total.Add(c.Amount)
	}
	assert.True(t, total.Equal(d("300")), "total = %s", total)
}

func TestResolveForPeriod_UnresolvedFlaggedWithoutFailing(t *testing.T) {
	// Store has no active staff, so even the pool penalty cannot land.
	svc, _, returnsRepo, _ := newClawbackService()
	ctx := context.Background()

	_, err := svc.IngestReturn(ctx, incentive.ReturnsRemakesPayload{
		InvoiceID: "INV-004", EmployeeID: "emp-gone", StoreID: "store-9",
		Type: "RETURN", Amount: 2000,
		EventDate: "2025-02-05", OriginalSaleDate: "2025-01-25",
		PolicyWindowDays: 30, PolicyApplicable: true,
	})
	require.NoError(t, err)

	charges, err := svc.ResolveForPeriod(ctx, 2025, 2, "run-1")
	require.NoError(t, err)
	assert.Empty(t, charges)

	var flagged *incentive.ReturnsRemakesItem
	for _, item := range returnsRepo.items {
		if item.InvoiceID == "INV-004" {
			flagged = &item
			break
		}
	}
	require.NotNil(t, flagged)
	require.NotNil(t, flagged.UnresolvedReason)
	assert.False(t, flagged.ClawbackApplied)
}
