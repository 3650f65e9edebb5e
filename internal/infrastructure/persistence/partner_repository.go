package persistence

import (
	"context"
	"time"

	"github.com/erp/procurement/internal/domain/partner"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSupplierRepository implements partner.SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a supplier and row-locks it
func (r *GormSupplierRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns every supplier ordered by code
func (r *GormSupplierRepository) FindAll(ctx context.Context) ([]partner.Supplier, error) {
	var rows []models.SupplierModel
	if err := r.db.WithContext(ctx).Order("code").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]partner.Supplier, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save inserts or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	return r.db.WithContext(ctx).Save(models.SupplierModelFromDomain(supplier)).Error
}

// SaveBalance writes total_po and piutang only
func (r *GormSupplierRepository) SaveBalance(ctx context.Context, supplier *partner.Supplier) error {
	return saveBalance(ctx, r.db, &models.SupplierModel{}, supplier.ID, supplier.CounterpartBalance)
}

// GormTechnicianRepository implements partner.TechnicianRepository using GORM
type GormTechnicianRepository struct {
	db *gorm.DB
}

// NewGormTechnicianRepository creates a new GormTechnicianRepository
func NewGormTechnicianRepository(db *gorm.DB) *GormTechnicianRepository {
	return &GormTechnicianRepository{db: db}
}

// FindByID finds a technician by its ID
func (r *GormTechnicianRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Technician, error) {
	var model models.TechnicianModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a technician and row-locks it
func (r *GormTechnicianRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*partner.Technician, error) {
	var model models.TechnicianModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns every technician ordered by code
func (r *GormTechnicianRepository) FindAll(ctx context.Context) ([]partner.Technician, error) {
	var rows []models.TechnicianModel
	if err := r.db.WithContext(ctx).Order("code").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]partner.Technician, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save inserts or updates a technician
func (r *GormTechnicianRepository) Save(ctx context.Context, technician *partner.Technician) error {
	return r.db.WithContext(ctx).Save(models.TechnicianModelFromDomain(technician)).Error
}

// SaveBalance writes total_po and piutang only
func (r *GormTechnicianRepository) SaveBalance(ctx context.Context, technician *partner.Technician) error {
	return saveBalance(ctx, r.db, &models.TechnicianModel{}, technician.ID, technician.CounterpartBalance)
}

func saveBalance(ctx context.Context, db *gorm.DB, model interface{}, id uuid.UUID, b partner.CounterpartBalance) error {
	result := db.WithContext(ctx).Model(model).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_po":   b.TotalPO,
			"piutang":    b.Piutang,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var (
	_ partner.SupplierRepository   = (*GormSupplierRepository)(nil)
	_ partner.TechnicianRepository = (*GormTechnicianRepository)(nil)
)
