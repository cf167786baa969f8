package equipment

import (
	"maintenance/internal/domain"

	"github.com/shopspring/decimal"
)

type CreateEquipmentRequest struct {
	Code                  string           `json:"code" validate:"required,max=64"`
	Name                  string           `json:"name" validate:"required,max=200"`
	Description           string           `json:"description,omitempty"`
	PrimaryMeterUnit      domain.MeterUnit `json:"primary_meter_unit,omitempty"`
	SecondaryMeterUnit    domain.MeterUnit `json:"secondary_meter_unit,omitempty"`
	PrimaryMeterReading   *decimal.Decimal `json:"primary_meter_reading,omitempty"`
	SecondaryMeterReading *decimal.Decimal `json:"secondary_meter_reading,omitempty"`
}

type UpdateEquipmentRequest struct {
	Name               *string           `json:"name,omitempty" validate:"omitempty,max=200"`
	Description        *string           `json:"description,omitempty"`
	PrimaryMeterUnit   *domain.MeterUnit `json:"primary_meter_unit,omitempty"`
	SecondaryMeterUnit *domain.MeterUnit `json:"secondary_meter_unit,omitempty"`
}

type UpdateReadingsRequest struct {
	Primary   *decimal.Decimal `json:"primary,omitempty"`
	Secondary *decimal.Decimal `json:"secondary,omitempty"`
}
