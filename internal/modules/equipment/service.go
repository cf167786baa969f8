package equipment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"maintenance/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	repo EquipmentRepository
}

func NewService(repo EquipmentRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateEquipmentRequest) (*domain.Equipment, error) {
	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: code and name are required", ErrValidation)
	}
	if err := checkUnit(req.PrimaryMeterUnit, "primary"); err != nil {
		return nil, err
	}
	if err := checkUnit(req.SecondaryMeterUnit, "secondary"); err != nil {
		return nil, err
	}
	if negative(req.PrimaryMeterReading) || negative(req.SecondaryMeterReading) {
		return nil, fmt.Errorf("%w: meter readings must not be negative", ErrValidation)
	}

	eq := &domain.Equipment{
		Code:                  code,
		Name:                  name,
		Description:           req.Description,
		PrimaryMeterUnit:      req.PrimaryMeterUnit,
		SecondaryMeterUnit:    req.SecondaryMeterUnit,
		PrimaryMeterReading:   req.PrimaryMeterReading,
		SecondaryMeterReading: req.SecondaryMeterReading,
	}
	if err := s.repo.Create(ctx, eq); err != nil {
		return nil, err
	}
	return eq, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Equipment, error) {
	eq, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return eq, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Equipment, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateEquipmentRequest) (*domain.Equipment, error) {
	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.PrimaryMeterUnit != nil {
		if err := checkUnit(*req.PrimaryMeterUnit, "primary"); err != nil {
			return nil, err
		}
		updates["primary_meter_unit"] = *req.PrimaryMeterUnit
	}
	if req.SecondaryMeterUnit != nil {
		if err := checkUnit(*req.SecondaryMeterUnit, "secondary"); err != nil {
			return nil, err
		}
		updates["secondary_meter_unit"] = *req.SecondaryMeterUnit
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, notFound(err)
		}
	}
	return s.Get(ctx, id)
}

// UpdateReadings records new meter readings. Meters only move forward.
func (s *Service) UpdateReadings(ctx context.Context, id int64, req UpdateReadingsRequest) (*domain.Equipment, error) {
	if req.Primary == nil && req.Secondary == nil {
		return nil, fmt.Errorf("%w: no reading given", ErrValidation)
	}
	if negative(req.Primary) || negative(req.Secondary) {
		return nil, fmt.Errorf("%w: meter readings must not be negative", ErrValidation)
	}

	eq, err := s.repo.UpdateReadings(ctx, id, req.Primary, req.Secondary, func(current *domain.Equipment) error {
		if backwards(current.PrimaryMeterReading, req.Primary) {
			return fmt.Errorf("%w: primary reading %s is below the stored %s", ErrValidation, req.Primary, current.PrimaryMeterReading)
		}
		if backwards(current.SecondaryMeterReading, req.Secondary) {
			return fmt.Errorf("%w: secondary reading %s is below the stored %s", ErrValidation, req.Secondary, current.SecondaryMeterReading)
		}
		return nil
	})
	if err != nil {
		return nil, notFound(err)
	}
	return eq, nil
}

func checkUnit(u domain.MeterUnit, slot string) error {
	if u == "" || u.Valid() {
		return nil
	}
	return fmt.Errorf("%w: %s meter unit %q is not valid", ErrValidation, slot, u)
}

func negative(d *decimal.Decimal) bool {
	return d != nil && d.IsNegative()
}

func backwards(current, next *decimal.Decimal) bool {
	return current != nil && next != nil && next.LessThan(*current)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
