package schedule

import (
	"fmt"
	"sort"
	"time"

	"maintenance/internal/domain"

	"github.com/shopspring/decimal"
)

type Severity string

const (
	SeverityOK      Severity = "ok"
	SeverityWarning Severity = "warning"
	SeverityOverdue Severity = "overdue"
)

type Dimension string

const (
	DimensionRepair    Dimension = "repair"
	DimensionDate      Dimension = "date"
	DimensionPrimary   Dimension = "primary"
	DimensionSecondary Dimension = "secondary"
)

// DateTracking is the date axis of a tracking. In Every mode the next due date
// is NextDue, or LastPerformed plus Interval days; otherwise it is taken from
// Explicit.
type DateTracking struct {
	Active        bool
	Every         bool
	Interval      *int
	AdvanceNotice int
	LastPerformed *time.Time
	NextDue       *time.Time
	Explicit      []time.Time
}

// MeterTracking is one meter axis of a tracking, mirroring DateTracking with
// meter values in place of dates.
type MeterTracking struct {
	Active        bool
	Every         bool
	Unit          domain.MeterUnit
	Interval      *decimal.Decimal
	AdvanceNotice decimal.Decimal
	LastPerformed *decimal.Decimal
	NextDue       *decimal.Decimal
	Explicit      []decimal.Decimal
}

type Tracking struct {
	Repair    bool
	Date      DateTracking
	Primary   MeterTracking
	Secondary MeterTracking
}

// Readings are the live meter values of the tracked equipment.
type Readings struct {
	Primary   *decimal.Decimal
	Secondary *decimal.Decimal
}

type DueStatus struct {
	Dimension      Dimension        `json:"dimension"`
	Severity       Severity         `json:"severity"`
	Message        string           `json:"message"`
	DaysRemaining  *int             `json:"days_remaining,omitempty"`
	DueDate        *time.Time       `json:"due_date,omitempty"`
	UnitsRemaining *decimal.Decimal `json:"units_remaining,omitempty"`
	DueValue       *decimal.Decimal `json:"due_value,omitempty"`
}

// CalculateDueStatus evaluates every active dimension of t at now. Inactive
// dimensions are skipped; a repair tracking yields a single date check with no
// advance notice.
func CalculateDueStatus(t Tracking, r Readings, now time.Time) ([]DueStatus, error) {
	if t.Repair {
		due, err := repairDueDate(t.Date)
		if err != nil {
			return nil, err
		}
		return []DueStatus{evaluateDate(DimensionRepair, due, 0, now)}, nil
	}

	var out []DueStatus
	if t.Date.Active {
		due, err := nextDueDate(t.Date)
		if err != nil {
			return nil, err
		}
		out = append(out, evaluateDate(DimensionDate, due, t.Date.AdvanceNotice, now))
	}
	if t.Primary.Active {
		st, err := evaluateMeterDimension(DimensionPrimary, t.Primary, r.Primary)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	if t.Secondary.Active {
		st, err := evaluateMeterDimension(DimensionSecondary, t.Secondary, r.Secondary)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// IsTaskDue reports whether any active dimension is not Ok.
func IsTaskDue(t Tracking, r Readings, now time.Time) (bool, error) {
	statuses, err := CalculateDueStatus(t, r, now)
	if err != nil {
		return false, err
	}
	return anyDue(statuses), nil
}

func anyDue(statuses []DueStatus) bool {
	for _, st := range statuses {
		if st.Severity != SeverityOK {
			return true
		}
	}
	return false
}

func repairDueDate(d DateTracking) (time.Time, error) {
	if d.NextDue != nil {
		return *d.NextDue, nil
	}
	if len(d.Explicit) > 0 {
		return sortedDates(d.Explicit)[0], nil
	}
	return time.Time{}, fmt.Errorf("%w: repair task has no due date", ErrInvalidState)
}

func nextDueDate(d DateTracking) (time.Time, error) {
	if d.Every {
		if d.NextDue != nil {
			return *d.NextDue, nil
		}
		if d.LastPerformed != nil && d.Interval != nil {
			return d.LastPerformed.AddDate(0, 0, *d.Interval), nil
		}
		return time.Time{}, fmt.Errorf("%w: date tracking has neither a next due date nor a last performed date and interval", ErrInvalidState)
	}

	if len(d.Explicit) == 0 {
		return time.Time{}, fmt.Errorf("%w: date tracking has no due dates", ErrInvalidState)
	}
	dates := sortedDates(d.Explicit)
	if d.LastPerformed == nil {
		return dates[0], nil
	}
	for _, due := range dates {
		if calendarDays(*d.LastPerformed, due) > 0 {
			return due, nil
		}
	}
	return dates[len(dates)-1], nil
}

func nextDueValue(m MeterTracking) (decimal.Decimal, error) {
	if m.Every {
		if m.NextDue != nil {
			return *m.NextDue, nil
		}
		if m.LastPerformed != nil && m.Interval != nil {
			return m.LastPerformed.Add(*m.Interval), nil
		}
		return decimal.Zero, fmt.Errorf("%w: meter tracking has neither a next due value nor a last performed value and interval", ErrInvalidState)
	}

	if len(m.Explicit) == 0 {
		return decimal.Zero, fmt.Errorf("%w: meter tracking has no due values", ErrInvalidState)
	}
	values := append([]decimal.Decimal(nil), m.Explicit...)
	sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })
	if m.LastPerformed == nil {
		return values[0], nil
	}
	for _, v := range values {
		if v.GreaterThan(*m.LastPerformed) {
			return v, nil
		}
	}
	return values[len(values)-1], nil
}

func evaluateMeterDimension(dim Dimension, m MeterTracking, reading *decimal.Decimal) (DueStatus, error) {
	due, err := nextDueValue(m)
	if err != nil {
		return DueStatus{}, err
	}
	if reading == nil {
		return DueStatus{}, fmt.Errorf("%w: equipment has no %s meter reading", ErrInvalidState, dim)
	}
	return evaluateMeter(dim, m.Unit, due, *reading, m.AdvanceNotice), nil
}

func evaluateDate(dim Dimension, due time.Time, advanceNotice int, now time.Time) DueStatus {
	dueDay := calendarDay(due, now.Location())
	today := startOfDay(now)
	days := calendarDays(today, dueDay)

	st := DueStatus{Dimension: dim, DueDate: &dueDay, DaysRemaining: &days}
	switch {
	case days < 0:
		st.Severity = SeverityOverdue
		st.Message = fmt.Sprintf("%s ago", dayCount(-days))
	case days == 0:
		st.Severity = SeverityOverdue
		st.Message = "today"
	default:
		st.Severity = SeverityOK
		if days <= advanceNotice {
			st.Severity = SeverityWarning
		}
		// Whole 24h periods left until the due day starts, at least one.
		whole := int(dueDay.Sub(now) / (24 * time.Hour))
		if whole < 1 {
			whole = 1
		}
		st.Message = fmt.Sprintf("in %s", dayCount(whole))
	}
	return st
}

func evaluateMeter(dim Dimension, unit domain.MeterUnit, due, current, advanceNotice decimal.Decimal) DueStatus {
	remaining := due.Sub(current)
	st := DueStatus{Dimension: dim, DueValue: &due, UnitsRemaining: &remaining}

	switch {
	case remaining.IsNegative():
		n := remaining.Abs()
		st.Severity = SeverityOverdue
		st.Message = fmt.Sprintf("%s %s ago", n.String(), unit.Label(n))
	case remaining.IsZero():
		st.Severity = SeverityOverdue
		st.Message = "due now"
	default:
		st.Severity = SeverityOK
		if remaining.LessThanOrEqual(advanceNotice) {
			st.Severity = SeverityWarning
		}
		st.Message = fmt.Sprintf("in %s %s", remaining.String(), unit.Label(remaining))
	}
	return st
}

func dayCount(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// calendarDay places t's own calendar day at midnight in loc. Due and
// performed dates are date-only; the zone they were stored in never moves the day.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// dateOnly is the storage form of a date-only value: its calendar day at UTC midnight.
func dateOnly(t time.Time) time.Time {
	return calendarDay(t, time.UTC)
}

// calendarDays counts midnights between two day starts, ignoring DST shifts.
func calendarDays(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func sortedDates(in []time.Time) []time.Time {
	out := append([]time.Time(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
