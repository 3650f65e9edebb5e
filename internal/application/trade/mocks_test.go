package trade

import (
	"context"
	"sync"
	"time"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of trade.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, kind trade.Kind, id uuid.UUID) (trade.Order, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForUpdate(ctx context.Context, kind trade.Kind, id uuid.UUID) (trade.Order, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(trade.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, order trade.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, order trade.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) List(ctx context.Context, kind trade.Kind, filter trade.OrderListFilter) ([]trade.Order, int64, error) {
	args := m.Called(ctx, kind, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]trade.Order), args.Get(1).(int64), args.Error(2)
}

// MockProductRepository is a mock implementation of inventory.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *inventory.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) StockLevels(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]decimal.Decimal), args.Error(1)
}

func (m *MockProductRepository) DeductStock(ctx context.Context, id uuid.UUID, qty decimal.Decimal) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *MockProductRepository) AddStock(ctx context.Context, id uuid.UUID, qty decimal.Decimal) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

// MockBatchRepository is a mock implementation of inventory.BatchRepository
type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) Create(ctx context.Context, batch *inventory.StockBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockBatch, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockBatch), args.Error(1)
}

func (m *MockBatchRepository) FindBySupplierPurchase(ctx context.Context, id uuid.UUID) ([]inventory.StockBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockBatch), args.Error(1)
}

func (m *MockBatchRepository) FindExpiring(ctx context.Context, before time.Time) ([]inventory.StockBatch, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockBatch), args.Error(1)
}

// MockSupplierRepository is a mock implementation of partner.SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context) ([]partner.Supplier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Save(ctx context.Context, s *partner.Supplier) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSupplierRepository) SaveBalance(ctx context.Context, s *partner.Supplier) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// MockTechnicianRepository is a mock implementation of partner.TechnicianRepository
type MockTechnicianRepository struct {
	mock.Mock
}

func (m *MockTechnicianRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Technician, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Technician), args.Error(1)
}

func (m *MockTechnicianRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*partner.Technician, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Technician), args.Error(1)
}

func (m *MockTechnicianRepository) FindAll(ctx context.Context) ([]partner.Technician, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Technician), args.Error(1)
}

func (m *MockTechnicianRepository) Save(ctx context.Context, t *partner.Technician) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTechnicianRepository) SaveBalance(ctx context.Context, t *partner.Technician) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

// MockNumberStore is a mock implementation of numbering.Store
type MockNumberStore struct {
	mock.Mock
}

func (m *MockNumberStore) MaxSequence(ctx context.Context, stem string) (int, error) {
	args := m.Called(ctx, stem)
	return args.Int(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockProofChecker is a mock implementation of ProofChecker
type MockProofChecker struct {
	mock.Mock
}

func (m *MockProofChecker) Exists(ctx context.Context, ref string) (bool, error) {
	args := m.Called(ctx, ref)
	return args.Bool(0), args.Error(1)
}

// recordingLocker hands out every key and remembers them
type recordingLocker struct {
	mu       sync.Mutex
	keys     []string
	released int
	err      error
}

func (l *recordingLocker) Obtain(_ context.Context, key string) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	l.keys = append(l.keys, key)
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
	}, nil
}
