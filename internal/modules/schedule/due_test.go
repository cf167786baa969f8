package schedule

import (
	"testing"
	"time"

	"maintenance/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func timePtr(t time.Time) *time.Time { return &t }

func everyThirtyDays() Tracking {
	return Tracking{Date: DateTracking{
		Active:        true,
		Every:         true,
		Interval:      intPtr(30),
		AdvanceNotice: 5,
		LastPerformed: timePtr(day(2024, 1, 1)),
	}}
}

func TestCalculateDueStatus_DateBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		severity Severity
		message  string
		days     int
	}{
		{"well ahead", at(2024, 1, 10, 9, 30), SeverityOK, "in 20 days", 21},
		{"inside advance notice", at(2024, 1, 26, 9, 30), SeverityWarning, "in 4 days", 5},
		{"day before", at(2024, 1, 30, 9, 30), SeverityWarning, "in 1 day", 1},
		{"day before at midnight", at(2024, 1, 30, 0, 0), SeverityWarning, "in 1 day", 1},
		{"due day", at(2024, 1, 31, 9, 30), SeverityOverdue, "today", 0},
		{"due day late evening", at(2024, 1, 31, 23, 59), SeverityOverdue, "today", 0},
		{"one day late", at(2024, 2, 1, 9, 30), SeverityOverdue, "1 day ago", -1},
		{"five days late", at(2024, 2, 5, 9, 30), SeverityOverdue, "5 days ago", -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statuses, err := CalculateDueStatus(everyThirtyDays(), Readings{}, tt.now)
			require.NoError(t, err)
			require.Len(t, statuses, 1)

			st := statuses[0]
			assert.Equal(t, DimensionDate, st.Dimension)
			assert.Equal(t, tt.severity, st.Severity)
			assert.Equal(t, tt.message, st.Message)
			require.NotNil(t, st.DaysRemaining)
			assert.Equal(t, tt.days, *st.DaysRemaining)
			assert.Equal(t, day(2024, 1, 31), *st.DueDate)
		})
	}
}

func TestCalculateDueStatus_NextDueWinsOverInterval(t *testing.T) {
	tr := everyThirtyDays()
	tr.Date.NextDue = timePtr(day(2024, 3, 1))

	statuses, err := CalculateDueStatus(tr, Readings{}, at(2024, 2, 5, 12, 0))
	require.NoError(t, err)
	assert.Equal(t, SeverityOK, statuses[0].Severity)
	assert.Equal(t, day(2024, 3, 1), *statuses[0].DueDate)
}

func TestCalculateDueStatus_ExplicitDates(t *testing.T) {
	explicit := []time.Time{day(2024, 6, 1), day(2024, 2, 1), day(2024, 4, 1)}

	tests := []struct {
		name string
		last *time.Time
		want time.Time
	}{
		{"never performed takes earliest", nil, day(2024, 2, 1)},
		{"first strictly after last", timePtr(day(2024, 2, 1)), day(2024, 4, 1)},
		{"between dates", timePtr(day(2024, 4, 15)), day(2024, 6, 1)},
		{"all exhausted falls back to latest", timePtr(day(2024, 7, 1)), day(2024, 6, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Tracking{Date: DateTracking{Active: true, LastPerformed: tt.last, Explicit: explicit}}
			statuses, err := CalculateDueStatus(tr, Readings{}, at(2024, 1, 1, 12, 0))
			require.NoError(t, err)
			assert.Equal(t, tt.want, *statuses[0].DueDate)
		})
	}
}

func TestCalculateDueStatus_MeterEvery(t *testing.T) {
	tr := Tracking{Primary: MeterTracking{
		Active:        true,
		Every:         true,
		Unit:          domain.MeterHours,
		Interval:      decPtr(250),
		AdvanceNotice: dec(20),
		LastPerformed: decPtr(1000),
	}}

	tests := []struct {
		reading  int64
		severity Severity
		message  string
	}{
		{1100, SeverityOK, "in 150 hours"},
		{1230, SeverityWarning, "in 20 hours"},
		{1249, SeverityWarning, "in 1 hour"},
		{1250, SeverityOverdue, "due now"},
		{1251, SeverityOverdue, "1 hour ago"},
		{1262, SeverityOverdue, "12 hours ago"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			statuses, err := CalculateDueStatus(tr, Readings{Primary: decPtr(tt.reading)}, at(2024, 1, 1, 0, 0))
			require.NoError(t, err)
			require.Len(t, statuses, 1)
			assert.Equal(t, DimensionPrimary, statuses[0].Dimension)
			assert.Equal(t, tt.severity, statuses[0].Severity)
			assert.Equal(t, tt.message, statuses[0].Message)
			assert.True(t, statuses[0].DueValue.Equal(dec(1250)))
		})
	}
}

func TestCalculateDueStatus_MeterExplicitValues(t *testing.T) {
	tr := Tracking{Secondary: MeterTracking{
		Active:        true,
		Unit:          domain.MeterMiles,
		LastPerformed: decPtr(5000),
		Explicit:      []decimal.Decimal{dec(10000), dec(5000), dec(7500)},
	}}

	statuses, err := CalculateDueStatus(tr, Readings{Secondary: decPtr(7000)}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, DimensionSecondary, statuses[0].Dimension)
	assert.True(t, statuses[0].DueValue.Equal(dec(7500)))
	assert.Equal(t, "in 500 miles", statuses[0].Message)

	tr.Secondary.LastPerformed = decPtr(12000)
	statuses, err = CalculateDueStatus(tr, Readings{Secondary: decPtr(12500)}, time.Now())
	require.NoError(t, err)
	assert.True(t, statuses[0].DueValue.Equal(dec(10000)))
	assert.Equal(t, "2500 miles ago", statuses[0].Message)
}

func TestCalculateDueStatus_RepairTask(t *testing.T) {
	tr := Tracking{
		Repair: true,
		// Repair tasks ignore the dimension flags.
		Date:    DateTracking{Explicit: []time.Time{day(2024, 5, 10), day(2024, 5, 3)}, AdvanceNotice: 30},
		Primary: MeterTracking{Active: true},
	}

	statuses, err := CalculateDueStatus(tr, Readings{}, at(2024, 5, 1, 8, 0))
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, DimensionRepair, statuses[0].Dimension)
	assert.Equal(t, SeverityOK, statuses[0].Severity)
	assert.Equal(t, day(2024, 5, 3), *statuses[0].DueDate)
	assert.Equal(t, "in 1 day", statuses[0].Message)

	tr.Date.NextDue = timePtr(day(2024, 4, 30))
	due, err := IsTaskDue(tr, Readings{}, at(2024, 5, 1, 8, 0))
	require.NoError(t, err)
	assert.True(t, due)

	_, err = CalculateDueStatus(Tracking{Repair: true}, Readings{}, time.Now())
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCalculateDueStatus_InvalidState(t *testing.T) {
	tests := []struct {
		name string
		tr   Tracking
		r    Readings
	}{
		{"every without last performed", Tracking{Date: DateTracking{Active: true, Every: true, Interval: intPtr(7)}}, Readings{}},
		{"every without interval", Tracking{Date: DateTracking{Active: true, Every: true, LastPerformed: timePtr(day(2024, 1, 1))}}, Readings{}},
		{"on mode without dates", Tracking{Date: DateTracking{Active: true}}, Readings{}},
		{"meter on mode without values", Tracking{Primary: MeterTracking{Active: true}}, Readings{Primary: decPtr(1)}},
		{"meter without reading", Tracking{Primary: MeterTracking{Active: true, Every: true, NextDue: decPtr(10)}}, Readings{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateDueStatus(tt.tr, tt.r, time.Now())
			assert.ErrorIs(t, err, ErrInvalidState)
		})
	}
}

func TestIsTaskDue(t *testing.T) {
	due, err := IsTaskDue(Tracking{}, Readings{}, time.Now())
	require.NoError(t, err)
	assert.False(t, due, "no active dimension is never due")

	statuses, err := CalculateDueStatus(Tracking{}, Readings{}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, statuses)

	tr := everyThirtyDays()
	tr.Primary = MeterTracking{Active: true, Every: true, Unit: domain.MeterHours, NextDue: decPtr(100)}

	due, err = IsTaskDue(tr, Readings{Primary: decPtr(10)}, at(2024, 1, 10, 9, 0))
	require.NoError(t, err)
	assert.False(t, due)

	due, err = IsTaskDue(tr, Readings{Primary: decPtr(100)}, at(2024, 1, 10, 9, 0))
	require.NoError(t, err)
	assert.True(t, due, "meter due now makes the task due")

	due, err = IsTaskDue(tr, Readings{Primary: decPtr(10)}, at(2024, 1, 27, 9, 0))
	require.NoError(t, err)
	assert.True(t, due, "date warning makes the task due")
}

func TestCalculateDueStatus_EvaluatesInCallersLocation(t *testing.T) {
	loc := time.FixedZone("UTC-4", -4*60*60)
	tr := Tracking{Date: DateTracking{Active: true, Every: true, NextDue: timePtr(time.Date(2024, 3, 10, 0, 0, 0, 0, loc))}}

	statuses, err := CalculateDueStatus(tr, Readings{}, time.Date(2024, 3, 10, 22, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.Equal(t, "today", statuses[0].Message)
}

func TestCalculateDueStatus_UTCDatesWestOfUTC(t *testing.T) {
	west := time.FixedZone("UTC-5", -5*60*60)
	tr := Tracking{Date: DateTracking{Active: true, Every: true, NextDue: timePtr(day(2024, 1, 31))}}

	tests := []struct {
		name     string
		now      time.Time
		severity Severity
		message  string
		days     int
	}{
		{"morning of due day", time.Date(2024, 1, 31, 10, 0, 0, 0, west), SeverityOverdue, "today", 0},
		{"evening before", time.Date(2024, 1, 30, 19, 0, 0, 0, west), SeverityOK, "in 1 day", 1},
		{"day after", time.Date(2024, 2, 1, 8, 0, 0, 0, west), SeverityOverdue, "1 day ago", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statuses, err := CalculateDueStatus(tr, Readings{}, tt.now)
			require.NoError(t, err)
			require.Len(t, statuses, 1)

			st := statuses[0]
			assert.Equal(t, tt.severity, st.Severity)
			assert.Equal(t, tt.message, st.Message)
			assert.Equal(t, tt.days, *st.DaysRemaining)
			assert.True(t, st.DueDate.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, west)))
		})
	}
}

func TestCalculateDueStatus_UTCDatesEastOfUTC(t *testing.T) {
	east := time.FixedZone("UTC+9", 9*60*60)
	tr := Tracking{Date: DateTracking{Active: true, Every: true, NextDue: timePtr(day(2024, 1, 31))}}

	statuses, err := CalculateDueStatus(tr, Readings{}, time.Date(2024, 1, 31, 7, 0, 0, 0, east))
	require.NoError(t, err)
	assert.Equal(t, "today", statuses[0].Message)
	assert.Equal(t, 0, *statuses[0].DaysRemaining)
}

func TestCalculateDueStatus_ExplicitDatesAcrossZones(t *testing.T) {
	west := time.FixedZone("UTC-5", -5*60*60)
	tr := Tracking{Date: DateTracking{
		Active:        true,
		LastPerformed: timePtr(time.Date(2024, 1, 9, 0, 0, 0, 0, west)),
		Explicit:      []time.Time{day(2024, 1, 31), day(2024, 1, 10)},
	}}

	statuses, err := CalculateDueStatus(tr, Readings{}, time.Date(2024, 1, 10, 10, 0, 0, 0, west))
	require.NoError(t, err)
	assert.Equal(t, "today", statuses[0].Message, "Jan 10 follows a Jan 9 completion")
}

func TestNormalize(t *testing.T) {
	repairID := int64(4)
	tt := &domain.TaskTracking{
		RepairTaskID:          &repairID,
		TrackByDate:           true,
		DateAdvanceNotice:     3,
		TrackByPrimary:        true,
		PrimaryMeterType:      domain.MeterHours,
		TrackBySecondary:      true,
		TrackBySecondaryEvery: true,
		SecondaryNextDue:      decPtr(9),
		DueDates:              []domain.TrackingDueDate{{DueDate: day(2024, 1, 2)}},
		DueMeters: []domain.TrackingDueMeter{
			{Slot: domain.MeterSlotPrimary, Value: dec(100)},
			{Slot: domain.MeterSlotSecondary, Value: dec(7)},
			{Slot: domain.MeterSlotPrimary, Value: dec(200)},
		},
	}

	got := Normalize(tt)
	assert.True(t, got.Repair)
	assert.True(t, got.Date.Active)
	assert.Equal(t, 3, got.Date.AdvanceNotice)
	assert.Equal(t, []time.Time{day(2024, 1, 2)}, got.Date.Explicit)
	assert.Len(t, got.Primary.Explicit, 2)
	assert.Len(t, got.Secondary.Explicit, 1)
	assert.True(t, got.Secondary.Every)
	assert.Equal(t, domain.MeterHours, got.Primary.Unit)

	assert.Equal(t, Tracking{}, Normalize(nil))
}
