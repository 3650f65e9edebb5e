package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/erp/procurement/internal/infrastructure/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

type transitionFixture struct {
	orders      *MockOrderRepository
	products    *MockProductRepository
	batches     *MockBatchRepository
	suppliers   *MockSupplierRepository
	technicians *MockTechnicianRepository
	numbers     *MockNumberStore
	publisher   *MockEventPublisher
	locker      *recordingLocker
	service     *TransitionService
}

func newTransitionFixture(t *testing.T) *transitionFixture {
	t.Helper()
	f := &transitionFixture{
		orders:      new(MockOrderRepository),
		products:    new(MockProductRepository),
		batches:     new(MockBatchRepository),
		suppliers:   new(MockSupplierRepository),
		technicians: new(MockTechnicianRepository),
		numbers:     new(MockNumberStore),
		publisher:   new(MockEventPublisher),
		locker:      &recordingLocker{},
	}
	registry, err := strategy.NewRegistryWithDefaults("")
	require.NoError(t, err)
	scope := &NoOpTransactionScope{
		OrderRepo:      f.orders,
		ProductRepo:    f.products,
		BatchRepo:      f.batches,
		SupplierRepo:   f.suppliers,
		TechnicianRepo: f.technicians,
		NumberStore:    f.numbers,
	}
	f.service = NewTransitionService(scope, f.locker, registry,
		WithEventPublisher(f.publisher),
		WithTransitionClock(func() time.Time { return fixedNow }),
	)
	return f
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func header(paymentType trade.PaymentType) trade.NewOrderHeaderInput {
	return trade.NewOrderHeaderInput{
		BranchID:    uuid.New(),
		OrderNumber: "PO/PRD/BR001/202505/0001",
		Name:        "Workshop restock",
		RequesterID: uuid.New(),
		OrderDate:   time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
		PaymentType: paymentType,
	}
}

func productOrder(t *testing.T, status trade.Status, productID uuid.UUID, qty, price int64) *trade.ProductPurchase {
	t.Helper()
	o, err := trade.NewProductPurchase(header(trade.PaymentTypeCash))
	require.NoError(t, err)
	_, err = o.AddLine(productID, "P-1", "Brake pad", amount(qty), amount(price))
	require.NoError(t, err)
	o.Status = status
	o.ClearDomainEvents()
	return o
}

func supplierOrder(t *testing.T, status trade.Status, paymentType trade.PaymentType, supplierID, productID uuid.UUID) *trade.SupplierPurchase {
	t.Helper()
	in := header(paymentType)
	in.OrderNumber = "PO/SUP/SUP01/202505/0001"
	o, err := trade.NewSupplierPurchase(in, supplierID, "SUP01")
	require.NoError(t, err)
	_, err = o.AddLine(productID, "P-1", "Brake pad", amount(10), amount(5000), nil)
	require.NoError(t, err)
	o.Status = status
	o.ClearDomainEvents()
	return o
}

func TestTransitionService_ProcessCostsLinesFromBatches(t *testing.T) {
	f := newTransitionFixture(t)
	ctx := context.Background()
	productID := uuid.New()
	order := productOrder(t, trade.StatusRequested, productID, 5, 2000)

	older, err := inventory.NewStockBatch(productID, "BATCH/P-1/SUP01/202501/0001", amount(3), amount(1000),
		time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), nil, nil)
	require.NoError(t, err)
	newer, err := inventory.NewStockBatch(productID, "BATCH/P-1/SUP01/202502/0001", amount(10), amount(1500),
		time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC), nil, nil)
	require.NoError(t, err)

	f.orders.On("FindByIDForUpdate", mock.Anything, trade.KindProduct, order.ID).Return(order, nil)
	f.products.On("StockLevels", mock.Anything, []uuid.UUID{productID}).
		Return(map[uuid.UUID]decimal.Decimal{productID: amount(13)}, nil)
	f.batches.On("FindByProduct", mock.Anything, productID).Return([]inventory.StockBatch{*newer, *older}, nil)
	f.orders.On("SaveWithLock", mock.Anything, order).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.Submit(ctx, trade.KindProduct, order.ID, trade.TransitionProcess)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, trade.StatusProcessing, result.Status)
	assert.Empty(t, result.Violations)

	line := order.ActiveLines()[0]
	assert.True(t, amount(1200).Equal(line.UnitCost), "unit cost %s", line.UnitCost)
	assert.True(t, amount(4000).Equal(line.ProfitAmount), "profit %s", line.ProfitAmount)
	assert.True(t, amount(40).Equal(line.ProfitMargin), "margin %s", line.ProfitMargin)

	assert.Equal(t, []string{"order:product:" + order.ID.String()}, f.locker.keys)
	assert.Equal(t, 1, f.locker.released)
	f.publisher.AssertNumberOfCalls(t, "Publish", 1)
	f.orders.AssertExpectations(t)
}

func TestTransitionService_ShipRefusedOnShortage(t *testing.T) {
	f := newTransitionFixture(t)
	ctx := context.Background()
	productID := uuid.New()
	order := productOrder(t, trade.StatusProcessing, productID, 10, 2000)
	expected := fixedNow.AddDate(0, 0, 3)
	order.ExpectedDate = &expected

	f.orders.On("FindByIDForUpdate", mock.Anything, trade.KindProduct, order.ID).Return(order, nil)
	f.products.On("StockLevels", mock.Anything, []uuid.UUID{productID}).
		Return(map[uuid.UUID]decimal.Decimal{productID: amount(4)}, nil)

	result, err := f.service.Submit(ctx, trade.KindProduct, order.ID, trade.TransitionShip)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, trade.StatusProcessing, result.Status)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, trade.CodeInsufficientStock, result.Violations[0].Code)

	shortage, ok := result.Violations[0].Data.(trade.StockShortage)
	require.True(t, ok)
	assert.True(t, amount(10).Equal(shortage.Required))
	assert.True(t, amount(4).Equal(shortage.Available))
	assert.True(t, amount(6).Equal(shortage.Shortage))

	assert.Equal(t, trade.StatusProcessing, order.Status)
	f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	f.products.AssertNotCalled(t, "DeductStock", mock.Anything, mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestTransitionService_ShipDeductsStock(t *testing.T) {
	f := newTransitionFixture(t)
	ctx := context.Background()
	productID := uuid.New()
	order := productOrder(t, trade.StatusProcessing, productID, 4, 2000)
	expected := fixedNow.AddDate(0, 0, 3)
	order.ExpectedDate = &expected

	f.orders.On("FindByIDForUpdate", mock.Anything, trade.KindProduct, order.ID).Return(order, nil)
	f.products.On("StockLevels", mock.Anything, []uuid.UUID{productID}).
		Return(map[uuid.UUID]decimal.Decimal{productID: amount(4)}, nil)
	f.products.On("DeductStock", mock.Anything, productID, mock.MatchedBy(func(q decimal.Decimal) bool {
		return q.Equal(amount(4))
	})).Return(nil)
	f.orders.On("SaveWithLock", mock.Anything, order).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.Submit(ctx, trade.KindProduct, order.ID, trade.TransitionShip)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, trade.StatusShipped, result.Status)
	f.products.AssertExpectations(t)
}

func TestTransitionService_DeductRaceBecomesRefusal(t *testing.T) {
	f := newTransitionFixture(t)
	ctx := context.Background()
	productID := uuid.New()
	order := productOrder(t, trade.StatusProcessing, productID, 4, 2000)
	expected := fixedNow.AddDate(0, 0, 3)
	order.ExpectedDate = &expected
	stored := productOrder(t, trade.StatusProcessing, productID, 4, 2000)
	stored.ID = order.ID

	f.orders.On("FindByIDForUpdate", mock.Anything, trade.KindProduct, order.ID).Return(order, nil)
	f.orders.On("FindByID", mock.Anything, trade.KindProduct, order.ID).Return(stored, nil)
	f.products.On("StockLevels", mock.Anything, []uuid.UUID{productID}).
		Return(map[uuid.UUID]decimal.Decimal{productID: amount(4)}, nil)
	f.products.On("DeductStock", mock.Anything, productID, mock.Anything).
		Return(shared.ErrInsufficientStock)
	f.products.On("FindByID", mock.Anything, productID).
		Return(&inventory.Product{Code: "P-1", Name: "Brake pad", Stock: amount(1)}, nil)

	result, err := f.service.Submit(ctx, trade.KindProduct, order.ID, trade.TransitionShip)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, trade.StatusProcessing, result.Status)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, trade.CodeInsufficientStock, result.Violations[0].Code)
	shortage, ok := result.Violations[0].Data.(trade.StockShortage)
	require.True(t, ok)
	assert.Equal(t, productID, shortage.ProductID)
	assert.True(t, shortage.Required.Equal(amount(4)))
	assert.True(t, shortage.Available.Equal(amount(1)))
	assert.True(t, shortage.Shortage.Equal(amount(3)))
	assert.Contains(t, result.Violations[0].Message, "short 3")
	f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestTransitionService_IllegalTransition(t *testing.T) {
	f := newTransitionFixture(t)
	order := productOrder(t, trade.StatusDraft, uuid.New(), 1, 100)
	f.orders.On("FindByIDForUpdate", mock.Anything, trade.KindProduct, order.ID).Return(order, nil)

	result, err := f.service.Submit(context.Background(), trade.KindProduct, order.ID, trade.TransitionShip)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, trade.ErrIllegalTransition)
	assert.Equal(t, trade.StatusDraft, order.Status)
}

func TestTransitionService_UnknownTransitionIsInvalidInput(t *testing.T) {
	f := newTransitionFixture(t)

	_, err := f.service.Submit(context.Background(), trade.KindProduct, uuid.New(), trade.Transition("teleport"))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Empty(t, f.locker.keys)
}

func TestTransitionService_LockFailure(t *testing.T) {
	f := newTransitionFixture(t)
	f.locker.err = shared.ErrLockNotObtained

	_, err := f.service.Submit(context.Background(), trade.KindProduct, uuid.New(), trade.TransitionRequest)
	assert.ErrorIs(t, err, shared.ErrLockNotObtained)
	f.orders.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionService_CashSupplierUnpaidCannotProcess(t *testing.T) {
	f := newTransitionFixture(t)
	order := supplierOrder(t, trade.StatusRequested, trade.PaymentTypeCash, uuid.New(), uuid.New())
	f.orders.On("FindByIDForUpdate", mock.Anything, trade.KindSupplier, order.ID).Return(order, nil)

	result, err := f.service.Submit(context.Background(), trade.KindSupplier, order.ID, trade.TransitionProcess)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, trade.StatusRequested, result.Status)

	codes := make([]string, 0, len(result.Violations))
	for _, v := range result.Violations {
		codes = append(codes, v.Code)
	}
	assert.Contains(t, codes, trade.CodePaymentNotPaid)
	assert.Contains(t, codes, trade.CodePaymentProofMissing)
	f.suppliers.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
}

func TestTransitionService_CreditSupplierProcessRecordsBalance(t *testing.T) {
	f := newTransitionFixture(t)
	supplier, err := partner.NewSupplier("SUP01", "Sumber Makmur")
	require.NoError(t, err)
	order := supplierOrder(t, trade.StatusRequested, trade.PaymentTypeCredit, supplier.ID, uuid.New())

	f.orders.On("FindByIDForUpdate", mock.Anything, trade.KindSupplier, order.ID).Return(order, nil)
	f.suppliers.On("FindByIDForUpdate", mock.Anything, supplier.ID).Return(supplier, nil)
	f.suppliers.On("SaveBalance", mock.Anything, supplier).Return(nil)
	f.orders.On("SaveWithLock", mock.Anything, order).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.Submit(context.Background(), trade.KindSupplier, order.ID, trade.TransitionProcess)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.True(t, amount(50000).Equal(supplier.TotalPO))
	assert.True(t, amount(50000).Equal(supplier.Piutang))
}

func TestTransitionService_CreditSupplierCancelReversesBalance(t *testing.T) {
	f := newTransitionFixture(t)
	supplier, err := partner.NewSupplier("SUP01", "Sumber Makmur")
	require.NoError(t, err)
	supplier.Reset(amount(50000), amount(50000))
	order := supplierOrder(t, trade.StatusProcessing, trade.PaymentTypeCredit, supplier.ID, uuid.New())

	f.orders.On("FindByIDForUpdate", mock.Anything, trade.KindSupplier, order.ID).Return(order, nil)
	f.suppliers.On("FindByIDForUpdate", mock.Anything, supplier.ID).Return(supplier, nil)
	f.suppliers.On("SaveBalance", mock.Anything, mock.MatchedBy(func(s *partner.Supplier) bool {
		return s.TotalPO.IsZero() && s.Piutang.IsZero()
	})).Return(nil)
	f.orders.On("SaveWithLock", mock.Anything, order).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.Submit(context.Background(), trade.KindSupplier, order.ID, trade.TransitionCancel)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, trade.StatusCancelled, result.Status)
	f.suppliers.AssertExpectations(t)
}

func TestTransitionService_ReceiveCreatesBatches(t *testing.T) {
	f := newTransitionFixture(t)
	productID := uuid.New()
	order := supplierOrder(t, trade.StatusProcessing, trade.PaymentTypeCash, uuid.New(), productID)

	var created *inventory.StockBatch
	f.orders.On("FindByIDForUpdate", mock.Anything, trade.KindSupplier, order.ID).Return(order, nil)
	f.numbers.On("MaxSequence", mock.Anything, "BATCH/P-1/SUP01/202505/").Return(0, nil)
	f.batches.On("Create", mock.Anything, mock.AnythingOfType("*inventory.StockBatch")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*inventory.StockBatch) }).
		Return(nil)
	f.products.On("AddStock", mock.Anything, productID, mock.MatchedBy(func(q decimal.Decimal) bool {
		return q.Equal(amount(10))
	})).Return(nil)
	f.orders.On("SaveWithLock", mock.Anything, order).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.Submit(context.Background(), trade.KindSupplier, order.ID, trade.TransitionReceive)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, trade.StatusReceived, result.Status)

	require.NotNil(t, created)
	assert.Equal(t, "BATCH/P-1/SUP01/202505/0001", created.BatchNumber)
	assert.True(t, amount(5000).Equal(created.UnitCost))
	assert.Equal(t, fixedNow, created.EntryDate)
	require.NotNil(t, created.SupplierPurchaseID)
	assert.Equal(t, order.ID, *created.SupplierPurchaseID)
	require.NotNil(t, order.ReceivedAt)
	f.products.AssertExpectations(t)
}

func TestTransitionService_SaveConflictIsReturned(t *testing.T) {
	f := newTransitionFixture(t)
	order := productOrder(t, trade.StatusDraft, uuid.New(), 1, 100)
	f.orders.On("FindByIDForUpdate", mock.Anything, trade.KindProduct, order.ID).Return(order, nil)
	f.orders.On("SaveWithLock", mock.Anything, order).Return(shared.ErrConcurrencyConflict)

	_, err := f.service.Submit(context.Background(), trade.KindProduct, order.ID, trade.TransitionRequest)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestTransitionService_PublishFailureDoesNotFailTransition(t *testing.T) {
	f := newTransitionFixture(t)
	order := productOrder(t, trade.StatusDraft, uuid.New(), 1, 100)
	f.orders.On("FindByIDForUpdate", mock.Anything, trade.KindProduct, order.ID).Return(order, nil)
	f.orders.On("SaveWithLock", mock.Anything, order).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("bus down"))

	result, err := f.service.Submit(context.Background(), trade.KindProduct, order.ID, trade.TransitionRequest)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, trade.StatusRequested, result.Status)
}

func TestTransitionService_PreviewDoesNotMutate(t *testing.T) {
	f := newTransitionFixture(t)
	productID := uuid.New()
	order := productOrder(t, trade.StatusRequested, productID, 10, 2000)
	f.orders.On("FindByID", mock.Anything, trade.KindProduct, order.ID).Return(order, nil)
	f.products.On("StockLevels", mock.Anything, []uuid.UUID{productID}).
		Return(map[uuid.UUID]decimal.Decimal{productID: amount(4)}, nil)

	result, err := f.service.Preview(context.Background(), trade.KindProduct, order.ID, trade.TransitionProcess)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, trade.StatusRequested, result.Status)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, trade.StatusRequested, order.Status)
	assert.Empty(t, f.locker.keys)
	f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}
