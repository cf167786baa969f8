package repository

import (
	"context"

	"maintenance/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

func (r *EquipmentRepository) Create(ctx context.Context, eq *domain.Equipment) error {
	return r.db.WithContext(ctx).Create(eq).Error
}

func (r *EquipmentRepository) GetByID(ctx context.Context, id int64) (*domain.Equipment, error) {
	var eq domain.Equipment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&eq).Error; err != nil {
		return nil, err
	}
	return &eq, nil
}

func (r *EquipmentRepository) List(ctx context.Context) ([]domain.Equipment, error) {
	var rows []domain.Equipment
	err := r.db.WithContext(ctx).Order("code ASC").Find(&rows).Error
	return rows, err
}

func (r *EquipmentRepository) Update(ctx context.Context, id int64, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Equipment{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateReadings locks the equipment row and lets check reject the new
// readings before they are written.
func (r *EquipmentRepository) UpdateReadings(ctx context.Context, id int64, primary, secondary *decimal.Decimal, check func(current *domain.Equipment) error) (*domain.Equipment, error) {
	var eq domain.Equipment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&eq).Error; err != nil {
			return err
		}
		if err := check(&eq); err != nil {
			return err
		}
		updates := map[string]any{}
		if primary != nil {
			updates["primary_meter_reading"] = *primary
			eq.PrimaryMeterReading = primary
		}
		if secondary != nil {
			updates["secondary_meter_reading"] = *secondary
			eq.SecondaryMeterReading = secondary
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&domain.Equipment{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &eq, nil
}
