package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type MeterUnit string

const (
	MeterHours      MeterUnit = "hours"
	MeterMiles      MeterUnit = "miles"
	MeterKilometers MeterUnit = "kilometers"
	MeterCycles     MeterUnit = "cycles"
)

func (u MeterUnit) Valid() bool {
	switch u {
	case MeterHours, MeterMiles, MeterKilometers, MeterCycles:
		return true
	default:
		return false
	}
}

// Label returns the unit name agreeing with n ("1 hour", "2 hours").
func (u MeterUnit) Label(n decimal.Decimal) string {
	singular := n.Abs().Equal(decimal.NewFromInt(1))
	switch u {
	case MeterHours:
		if singular {
			return "hour"
		}
		return "hours"
	case MeterMiles:
		if singular {
			return "mile"
		}
		return "miles"
	case MeterKilometers:
		if singular {
			return "kilometer"
		}
		return "kilometers"
	case MeterCycles:
		if singular {
			return "cycle"
		}
		return "cycles"
	default:
		if singular {
			return "unit"
		}
		return "units"
	}
}

type Equipment struct {
	ID                    int64            `json:"id"`
	Code                  string           `json:"code" gorm:"size:64;not null;uniqueIndex"`
	Name                  string           `json:"name" gorm:"size:200;not null"`
	Description           string           `json:"description,omitempty" gorm:"type:text"`
	PrimaryMeterUnit      MeterUnit        `json:"primary_meter_unit,omitempty" gorm:"size:16"`
	SecondaryMeterUnit    MeterUnit        `json:"secondary_meter_unit,omitempty" gorm:"size:16"`
	PrimaryMeterReading   *decimal.Decimal `json:"primary_meter_reading,omitempty" gorm:"type:decimal(20,4)"`
	SecondaryMeterReading *decimal.Decimal `json:"secondary_meter_reading,omitempty" gorm:"type:decimal(20,4)"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}
