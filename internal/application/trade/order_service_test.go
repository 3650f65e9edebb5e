package trade

import (
	"context"
	"testing"
	"time"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/numbering"
	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	orders      *MockOrderRepository
	products    *MockProductRepository
	suppliers   *MockSupplierRepository
	technicians *MockTechnicianRepository
	numbers     *MockNumberStore
	service     *OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:      new(MockOrderRepository),
		products:    new(MockProductRepository),
		suppliers:   new(MockSupplierRepository),
		technicians: new(MockTechnicianRepository),
		numbers:     new(MockNumberStore),
	}
	gens := map[trade.Kind]*numbering.Generator{
		trade.KindProduct:  numbering.NewGenerator(f.numbers),
		trade.KindService:  numbering.NewGenerator(f.numbers),
		trade.KindSupplier: numbering.NewGenerator(f.numbers),
	}
	f.service = NewOrderService(f.orders, f.products, f.suppliers, f.technicians, gens)
	return f
}

func TestOrderService_CreateAssignsNextNumber(t *testing.T) {
	f := newOrderFixture()
	product, err := inventory.NewProduct("P-1", "Brake pad", nil)
	require.NoError(t, err)
	orderDate := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.numbers.On("MaxSequence", mock.Anything, "PO/PRD/BR001/202505/").Return(6, nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o trade.Order) bool {
		return o.Header().OrderNumber == "PO/PRD/BR001/202505/0007"
	})).Return(nil)

	resp, err := f.service.Create(context.Background(), trade.KindProduct, CreateOrderRequest{
		BranchID:    uuid.New(),
		BranchCode:  "BR001",
		Name:        "Workshop restock",
		RequesterID: uuid.New(),
		OrderDate:   &orderDate,
		PaymentType: "cash",
		Lines: []AddLineRequest{
			{ItemID: product.ID, Quantity: amount(5), Price: amount(2000)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "PO/PRD/BR001/202505/0007", resp.OrderNumber)
	assert.Equal(t, trade.StatusDraft, resp.Status)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "P-1", resp.Lines[0].ItemCode)
	assert.True(t, amount(10000).Equal(resp.TotalAmount))
}

func TestOrderService_CreateRetriesOnDuplicate(t *testing.T) {
	f := newOrderFixture()
	orderDate := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

	f.numbers.On("MaxSequence", mock.Anything, "PO/SRV/BR001/202505/").Return(6, nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o trade.Order) bool {
		return o.Header().OrderNumber == "PO/SRV/BR001/202505/0007"
	})).Return(numbering.ErrDuplicate).Once()
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o trade.Order) bool {
		return o.Header().OrderNumber == "PO/SRV/BR001/202505/0008"
	})).Return(nil).Once()

	resp, err := f.service.Create(context.Background(), trade.KindService, CreateOrderRequest{
		BranchID:    uuid.New(),
		BranchCode:  "BR001",
		Name:        "AC servicing",
		RequesterID: uuid.New(),
		OrderDate:   &orderDate,
		PaymentType: "credit",
	})
	require.NoError(t, err)
	assert.Equal(t, "PO/SRV/BR001/202505/0008", resp.OrderNumber)
	f.orders.AssertNumberOfCalls(t, "Create", 2)
}

func TestOrderService_CreateSupplierRequiresSupplier(t *testing.T) {
	f := newOrderFixture()

	_, err := f.service.Create(context.Background(), trade.KindSupplier, CreateOrderRequest{
		BranchID:    uuid.New(),
		BranchCode:  "BR001",
		Name:        "Restock",
		RequesterID: uuid.New(),
		PaymentType: "credit",
	})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_SUPPLIER", domainErr.Code)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderService_CreateSupplierStartsRequested(t *testing.T) {
	f := newOrderFixture()
	supplier, err := partner.NewSupplier("SUP01", "Sumber Makmur")
	require.NoError(t, err)
	orderDate := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

	f.suppliers.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)
	f.numbers.On("MaxSequence", mock.Anything, "PO/SUP/SUP01/202505/").Return(0, nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Create(context.Background(), trade.KindSupplier, CreateOrderRequest{
		BranchID:    uuid.New(),
		BranchCode:  "BR001",
		Name:        "Restock",
		RequesterID: uuid.New(),
		OrderDate:   &orderDate,
		PaymentType: "credit",
		SupplierID:  &supplier.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "PO/SUP/SUP01/202505/0001", resp.OrderNumber)
	assert.Equal(t, trade.StatusRequested, resp.Status)
	require.NotNil(t, resp.SupplierID)
	assert.Equal(t, supplier.ID, *resp.SupplierID)
}

func TestOrderService_AssignTechnicianCapturesFee(t *testing.T) {
	f := newOrderFixture()
	in := header(trade.PaymentTypeCredit)
	order, err := trade.NewServicePurchase(in)
	require.NoError(t, err)
	line, err := order.AddLine(uuid.New(), "AC cleaning", amount(2), amount(300000))
	require.NoError(t, err)
	lineID := line.ID
	tech, err := partner.NewTechnician("T-01", "Budi", amount(100000))
	require.NoError(t, err)

	f.technicians.On("FindByID", mock.Anything, tech.ID).Return(tech, nil)
	f.orders.On("FindByID", mock.Anything, trade.KindService, order.ID).Return(order, nil)
	f.orders.On("SaveWithLock", mock.Anything, order).Return(nil)

	resp, err := f.service.AssignTechnician(context.Background(), order.ID, lineID, AssignTechnicianRequest{TechnicianID: tech.ID})
	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, &tech.ID, resp.Lines[0].TechnicianID)
	assert.True(t, amount(100000).Equal(resp.Lines[0].UnitCost))
	assert.True(t, amount(400000).Equal(resp.Lines[0].ProfitAmount))
}

func TestOrderService_MarkPaidChecksProof(t *testing.T) {
	f := newOrderFixture()
	proofs := new(MockProofChecker)
	f.service.SetProofChecker(proofs)
	order := supplierOrder(t, trade.StatusRequested, trade.PaymentTypeCash, uuid.New(), uuid.New())

	proofs.On("Exists", mock.Anything, "proofs/missing.jpg").Return(false, nil)
	proofs.On("Exists", mock.Anything, "proofs/receipt.jpg").Return(true, nil)
	f.orders.On("FindByID", mock.Anything, trade.KindSupplier, order.ID).Return(order, nil)
	f.orders.On("SaveWithLock", mock.Anything, order).Return(nil)

	_, err := f.service.MarkPaid(context.Background(), trade.KindSupplier, order.ID, MarkPaidRequest{PaymentProof: "proofs/missing.jpg"})
	require.Error(t, err)
	f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)

	resp, err := f.service.MarkPaid(context.Background(), trade.KindSupplier, order.ID, MarkPaidRequest{PaymentProof: "proofs/receipt.jpg"})
	require.NoError(t, err)
	assert.Equal(t, trade.PaymentStatusPaid, resp.PaymentStatus)
	assert.Equal(t, "proofs/receipt.jpg", resp.PaymentProof)
}

func TestOrderService_UpdateRefusedWhenDone(t *testing.T) {
	f := newOrderFixture()
	order := productOrder(t, trade.StatusDone, uuid.New(), 1, 100)
	f.orders.On("FindByID", mock.Anything, trade.KindProduct, order.ID).Return(order, nil)

	name := "Renamed"
	_, err := f.service.Update(context.Background(), trade.KindProduct, order.ID, UpdateOrderRequest{Name: &name})
	require.Error(t, err)
	assert.Equal(t, "Workshop restock", order.Name)
}

func TestOrderService_UpdateSetsSupplierReceivedAt(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	received := time.Date(2025, 5, 18, 9, 0, 0, 0, time.UTC)
	processing := supplierOrder(t, trade.StatusProcessing, trade.PaymentTypeCredit, uuid.New(), uuid.New())
	f.orders.On("FindByID", mock.Anything, trade.KindSupplier, processing.ID).Return(processing, nil)
	f.orders.On("SaveWithLock", mock.Anything, processing).Return(nil)

	resp, err := f.service.Update(ctx, trade.KindSupplier, processing.ID, UpdateOrderRequest{ReceivedAt: &received})
	require.NoError(t, err)
	require.NotNil(t, resp.ReceivedAt)
	assert.Equal(t, received, *resp.ReceivedAt)

	done := supplierOrder(t, trade.StatusReceived, trade.PaymentTypeCredit, uuid.New(), uuid.New())
	f.orders.On("FindByID", mock.Anything, trade.KindSupplier, done.ID).Return(done, nil)
	_, err = f.service.Update(ctx, trade.KindSupplier, done.ID, UpdateOrderRequest{ReceivedAt: &received})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	assert.Nil(t, done.ReceivedAt)

	product := productOrder(t, trade.StatusRequested, uuid.New(), 1, 100)
	f.orders.On("FindByID", mock.Anything, trade.KindProduct, product.ID).Return(product, nil)
	_, err = f.service.Update(ctx, trade.KindProduct, product.ID, UpdateOrderRequest{ReceivedAt: &received})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	f.orders.AssertNumberOfCalls(t, "SaveWithLock", 1)
}

func TestOrderService_DeleteOnlyFromInitialStatus(t *testing.T) {
	f := newOrderFixture()
	draft := productOrder(t, trade.StatusDraft, uuid.New(), 1, 100)
	requested := productOrder(t, trade.StatusRequested, uuid.New(), 1, 100)
	f.orders.On("FindByID", mock.Anything, trade.KindProduct, draft.ID).Return(draft, nil)
	f.orders.On("FindByID", mock.Anything, trade.KindProduct, requested.ID).Return(requested, nil)
	f.orders.On("SaveWithLock", mock.Anything, draft).Return(nil)

	require.NoError(t, f.service.Delete(context.Background(), trade.KindProduct, draft.ID))
	assert.NotNil(t, draft.DeletedAt)

	err := f.service.Delete(context.Background(), trade.KindProduct, requested.ID)
	require.Error(t, err)
	assert.Nil(t, requested.DeletedAt)
}

func TestOrderService_ListRejectsUnknownStatus(t *testing.T) {
	f := newOrderFixture()

	_, err := f.service.List(context.Background(), trade.KindProduct, ListOrdersRequest{Status: []string{"lost"}})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	f.orders.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_NotFoundPropagates(t *testing.T) {
	f := newOrderFixture()
	id := uuid.New()
	f.orders.On("FindByID", mock.Anything, trade.KindProduct, id).Return(nil, shared.ErrNotFound)

	_, err := f.service.GetByID(context.Background(), trade.KindProduct, id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
