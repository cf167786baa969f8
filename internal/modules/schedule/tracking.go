package schedule

import (
	"time"

	"maintenance/internal/domain"

	"github.com/shopspring/decimal"
)

// Normalize turns a persisted tracking row and its explicit due rows into the
// evaluator's input. A nil tracking has no active dimension.
func Normalize(tt *domain.TaskTracking) Tracking {
	if tt == nil {
		return Tracking{}
	}

	t := Tracking{
		Repair: tt.RepairTaskID != nil,
		Date: DateTracking{
			Active:        tt.TrackByDate,
			Every:         tt.TrackByDateEvery,
			Interval:      tt.DateInterval,
			AdvanceNotice: tt.DateAdvanceNotice,
			LastPerformed: tt.DateLastPerformed,
			NextDue:       tt.DateNextDue,
		},
		Primary: MeterTracking{
			Active:        tt.TrackByPrimary,
			Every:         tt.TrackByPrimaryEvery,
			Unit:          tt.PrimaryMeterType,
			Interval:      tt.PrimaryInterval,
			AdvanceNotice: tt.PrimaryAdvanceNotice,
			LastPerformed: tt.PrimaryLastPerformed,
			NextDue:       tt.PrimaryNextDue,
		},
		Secondary: MeterTracking{
			Active:        tt.TrackBySecondary,
			Every:         tt.TrackBySecondaryEvery,
			Unit:          tt.SecondaryMeterType,
			Interval:      tt.SecondaryInterval,
			AdvanceNotice: tt.SecondaryAdvanceNotice,
			LastPerformed: tt.SecondaryLastPerformed,
			NextDue:       tt.SecondaryNextDue,
		},
	}

	for _, d := range tt.DueDates {
		t.Date.Explicit = append(t.Date.Explicit, d.DueDate)
	}
	for _, m := range tt.DueMeters {
		switch m.Slot {
		case domain.MeterSlotPrimary:
			t.Primary.Explicit = append(t.Primary.Explicit, m.Value)
		case domain.MeterSlotSecondary:
			t.Secondary.Explicit = append(t.Secondary.Explicit, m.Value)
		}
	}
	return t
}

// ReadingsOf snapshots an equipment's live meters. A nil equipment has none.
func ReadingsOf(eq *domain.Equipment) Readings {
	if eq == nil {
		return Readings{}
	}
	return Readings{
		Primary:   copyDecimal(eq.PrimaryMeterReading),
		Secondary: copyDecimal(eq.SecondaryMeterReading),
	}
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func dateOnlyPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := dateOnly(*t)
	return &v
}
