package equipment

import (
	"context"

	"maintenance/internal/domain"

	"github.com/shopspring/decimal"
)

type EquipmentRepository interface {
	Create(ctx context.Context, eq *domain.Equipment) error
	GetByID(ctx context.Context, id int64) (*domain.Equipment, error)
	List(ctx context.Context) ([]domain.Equipment, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	UpdateReadings(ctx context.Context, id int64, primary, secondary *decimal.Decimal, check func(current *domain.Equipment) error) (*domain.Equipment, error)
}
