package models

import (
	"time"

	"github.com/erp/procurement/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderHeaderModel holds the columns every order table shares
type OrderHeaderModel struct {
	AggregateModel
	BranchID      uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderNumber   string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name          string    `gorm:"type:varchar(200)"`
	RequesterID   uuid.UUID `gorm:"type:uuid;not null"`
	OrderDate     time.Time `gorm:"not null;index"`
	ExpectedDate  *time.Time
	Status        trade.Status        `gorm:"type:varchar(20);not null"`
	PaymentType   trade.PaymentType   `gorm:"type:varchar(10);not null"`
	PaymentStatus trade.PaymentStatus `gorm:"type:varchar(10);not null"`
	PaymentProof  string              `gorm:"type:varchar(500)"`
	Notes         string              `gorm:"type:text"`
	TotalAmount   decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	DeletedAt     gorm.DeletedAt      `gorm:"index"`
}

func (m *OrderHeaderModel) toDomain() trade.OrderHeader {
	h := trade.OrderHeader{
		BaseAggregateRoot: m.ToAggregateRoot(),
		BranchID:          m.BranchID,
		OrderNumber:       m.OrderNumber,
		Name:              m.Name,
		RequesterID:       m.RequesterID,
		OrderDate:         m.OrderDate,
		ExpectedDate:      m.ExpectedDate,
		Status:            m.Status,
		PaymentType:       m.PaymentType,
		PaymentStatus:     m.PaymentStatus,
		PaymentProof:      m.PaymentProof,
		Notes:             m.Notes,
		TotalAmount:       m.TotalAmount,
	}
	if m.DeletedAt.Valid {
		at := m.DeletedAt.Time
		h.DeletedAt = &at
	}
	return h
}

func (m *OrderHeaderModel) fromDomain(h *trade.OrderHeader) {
	m.FromDomainAggregateRoot(h.BaseAggregateRoot)
	m.BranchID = h.BranchID
	m.OrderNumber = h.OrderNumber
	m.Name = h.Name
	m.RequesterID = h.RequesterID
	m.OrderDate = h.OrderDate
	m.ExpectedDate = h.ExpectedDate
	m.Status = h.Status
	m.PaymentType = h.PaymentType
	m.PaymentStatus = h.PaymentStatus
	m.PaymentProof = h.PaymentProof
	m.Notes = h.Notes
	m.TotalAmount = h.TotalAmount
	m.DeletedAt = gorm.DeletedAt{}
	if h.DeletedAt != nil {
		m.DeletedAt = gorm.DeletedAt{Time: *h.DeletedAt, Valid: true}
	}
}

// HeaderColumns returns the mutable header columns for a versioned update
func (m *OrderHeaderModel) HeaderColumns() map[string]interface{} {
	cols := map[string]interface{}{
		"name":           m.Name,
		"expected_date":  m.ExpectedDate,
		"status":         m.Status,
		"payment_type":   m.PaymentType,
		"payment_status": m.PaymentStatus,
		"payment_proof":  m.PaymentProof,
		"notes":          m.Notes,
		"total_amount":   m.TotalAmount,
		"version":        m.Version,
		"updated_at":     m.UpdatedAt,
		"deleted_at":     nil,
	}
	if m.DeletedAt.Valid {
		cols["deleted_at"] = m.DeletedAt.Time
	}
	return cols
}

// LineAuditModel holds the columns every line table shares. Deleted lines are
// kept and loaded with the order, so DeletedAt is a plain column.
type LineAuditModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
	DeletedAt *time.Time `gorm:"index"`
}

func (m *LineAuditModel) toDomain() trade.LineAudit {
	return trade.LineAudit{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt, DeletedAt: m.DeletedAt}
}

func lineAuditFromDomain(orderID uuid.UUID, a trade.LineAudit) LineAuditModel {
	return LineAuditModel{ID: a.ID, OrderID: orderID, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt, DeletedAt: a.DeletedAt}
}

// ProductPurchaseModel is the persistence model for a product purchase
type ProductPurchaseModel struct {
	OrderHeaderModel
	Lines []ProductLineModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (ProductPurchaseModel) TableName() string {
	return "product_purchases"
}

// ProductLineModel is a product purchase line
type ProductLineModel struct {
	LineAuditModel
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductCode  string          `gorm:"type:varchar(50);not null"`
	ProductName  string          `gorm:"type:varchar(200);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ProfitAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ProfitMargin decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductLineModel) TableName() string {
	return "product_purchase_lines"
}

// ToDomain converts the model to a domain ProductPurchase
func (m *ProductPurchaseModel) ToDomain() *trade.ProductPurchase {
	o := &trade.ProductPurchase{
		OrderHeader: m.toDomain(),
		Lines:       make([]trade.ProductLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		o.Lines[i] = trade.ProductLine{
			LineAudit:    l.toDomain(),
			ProductID:    l.ProductID,
			ProductCode:  l.ProductCode,
			ProductName:  l.ProductName,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			LineTotal:    l.LineTotal,
			UnitCost:     l.UnitCost,
			ProfitAmount: l.ProfitAmount,
			ProfitMargin: l.ProfitMargin,
		}
	}
	return o
}

// ProductPurchaseModelFromDomain creates a model from a domain ProductPurchase
func ProductPurchaseModelFromDomain(o *trade.ProductPurchase) *ProductPurchaseModel {
	m := &ProductPurchaseModel{Lines: make([]ProductLineModel, len(o.Lines))}
	m.fromDomain(&o.OrderHeader)
	for i, l := range o.Lines {
		m.Lines[i] = ProductLineModel{
			LineAuditModel: lineAuditFromDomain(o.ID, l.LineAudit),
			ProductID:      l.ProductID,
			ProductCode:    l.ProductCode,
			ProductName:    l.ProductName,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			LineTotal:      l.LineTotal,
			UnitCost:       l.UnitCost,
			ProfitAmount:   l.ProfitAmount,
			ProfitMargin:   l.ProfitMargin,
		}
	}
	return m
}

// ServicePurchaseModel is the persistence model for a service purchase
type ServicePurchaseModel struct {
	OrderHeaderModel
	Lines []ServiceLineModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (ServicePurchaseModel) TableName() string {
	return "service_purchases"
}

// ServiceLineModel is a service purchase line
type ServiceLineModel struct {
	LineAuditModel
	ServiceID    uuid.UUID       `gorm:"type:uuid;not null"`
	ServiceName  string          `gorm:"type:varchar(200);not null"`
	TechnicianID *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ProfitAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ProfitMargin decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (ServiceLineModel) TableName() string {
	return "service_purchase_lines"
}

// ToDomain converts the model to a domain ServicePurchase
func (m *ServicePurchaseModel) ToDomain() *trade.ServicePurchase {
	o := &trade.ServicePurchase{
		OrderHeader: m.toDomain(),
		Lines:       make([]trade.ServiceLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		o.Lines[i] = trade.ServiceLine{
			LineAudit:    l.toDomain(),
			ServiceID:    l.ServiceID,
			ServiceName:  l.ServiceName,
			TechnicianID: l.TechnicianID,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			LineTotal:    l.LineTotal,
			UnitCost:     l.UnitCost,
			ProfitAmount: l.ProfitAmount,
			ProfitMargin: l.ProfitMargin,
		}
	}
	return o
}

// ServicePurchaseModelFromDomain creates a model from a domain ServicePurchase
func ServicePurchaseModelFromDomain(o *trade.ServicePurchase) *ServicePurchaseModel {
	m := &ServicePurchaseModel{Lines: make([]ServiceLineModel, len(o.Lines))}
	m.fromDomain(&o.OrderHeader)
	for i, l := range o.Lines {
		m.Lines[i] = ServiceLineModel{
			LineAuditModel: lineAuditFromDomain(o.ID, l.LineAudit),
			ServiceID:      l.ServiceID,
			ServiceName:    l.ServiceName,
			TechnicianID:   l.TechnicianID,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			LineTotal:      l.LineTotal,
			UnitCost:       l.UnitCost,
			ProfitAmount:   l.ProfitAmount,
			ProfitMargin:   l.ProfitMargin,
		}
	}
	return m
}

// SupplierPurchaseModel is the persistence model for a supplier purchase
type SupplierPurchaseModel struct {
	OrderHeaderModel
	SupplierID   uuid.UUID `gorm:"type:uuid;not null;index"`
	SupplierCode string    `gorm:"type:varchar(50);not null"`
	ReceivedAt   *time.Time
	Lines        []SupplierLineModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (SupplierPurchaseModel) TableName() string {
	return "supplier_purchases"
}

// SupplierLineModel is a supplier purchase line
type SupplierLineModel struct {
	LineAuditModel
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductCode string          `gorm:"type:varchar(50);not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ExpiryDate  *time.Time
}

// TableName returns the table name for GORM
func (SupplierLineModel) TableName() string {
	return "supplier_purchase_lines"
}

// ToDomain converts the model to a domain SupplierPurchase
func (m *SupplierPurchaseModel) ToDomain() *trade.SupplierPurchase {
	o := &trade.SupplierPurchase{
		OrderHeader:  m.toDomain(),
		SupplierID:   m.SupplierID,
		SupplierCode: m.SupplierCode,
		ReceivedAt:   m.ReceivedAt,
		Lines:        make([]trade.SupplierLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		o.Lines[i] = trade.SupplierLine{
			LineAudit:   l.toDomain(),
			ProductID:   l.ProductID,
			ProductCode: l.ProductCode,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitCost:    l.UnitCost,
			LineTotal:   l.LineTotal,
			ExpiryDate:  l.ExpiryDate,
		}
	}
	return o
}

// SupplierPurchaseModelFromDomain creates a model from a domain SupplierPurchase
func SupplierPurchaseModelFromDomain(o *trade.SupplierPurchase) *SupplierPurchaseModel {
	m := &SupplierPurchaseModel{
		SupplierID:   o.SupplierID,
		SupplierCode: o.SupplierCode,
		ReceivedAt:   o.ReceivedAt,
		Lines:        make([]SupplierLineModel, len(o.Lines)),
	}
	m.fromDomain(&o.OrderHeader)
	for i, l := range o.Lines {
		m.Lines[i] = SupplierLineModel{
			LineAuditModel: lineAuditFromDomain(o.ID, l.LineAudit),
			ProductID:      l.ProductID,
			ProductCode:    l.ProductCode,
			ProductName:    l.ProductName,
			Quantity:       l.Quantity,
			UnitCost:       l.UnitCost,
			LineTotal:      l.LineTotal,
			ExpiryDate:     l.ExpiryDate,
		}
	}
	return m
}
