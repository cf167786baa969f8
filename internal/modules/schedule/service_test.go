package schedule

import (
	"context"
	"testing"
	"time"

	"maintenance/internal/database"
	"maintenance/internal/domain"
	"maintenance/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	svc       *Service
	equipment *repository.EquipmentRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := database.NewTestDB(t)
	eqRepo := repository.NewEquipmentRepository(db)
	return &fixture{
		db:        db,
		svc:       NewService(repository.NewTaskRepository(db), eqRepo, nil),
		equipment: eqRepo,
	}
}

func (f *fixture) addEquipment(t *testing.T, code string, hours *decimal.Decimal) *domain.Equipment {
	t.Helper()
	eq := &domain.Equipment{
		Code:                code,
		Name:                code,
		PrimaryMeterUnit:    domain.MeterHours,
		PrimaryMeterReading: hours,
	}
	require.NoError(t, f.equipment.Create(context.Background(), eq))
	return eq
}

func (f *fixture) setHours(t *testing.T, eq *domain.Equipment, hours int64) {
	t.Helper()
	_, err := f.equipment.UpdateReadings(context.Background(), eq.ID, decPtr(hours), nil, func(*domain.Equipment) error { return nil })
	require.NoError(t, err)
}

func TestCreateTask_DateEveryAndRecordPerformed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eq := f.addEquipment(t, "GEN-1", nil)

	task, err := f.svc.CreateTask(ctx, CreateTaskRequest{
		EquipmentID: eq.ID,
		Name:        "Change oil",
		Tracking: TrackingRequest{
			ByDate:            true,
			DateEvery:         true,
			DateInterval:      intPtr(30),
			DateAdvanceNotice: 5,
			DateLastPerformed: timePtr(day(2024, 1, 1)),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, task.Tracking)
	require.NotNil(t, task.Tracking.TaskID)
	assert.Equal(t, task.ID, *task.Tracking.TaskID)

	st, err := f.svc.GetTaskStatus(ctx, task.ID, at(2024, 1, 27, 10, 0))
	require.NoError(t, err)
	assert.True(t, st.Due)
	require.Len(t, st.Statuses, 1)
	assert.Equal(t, SeverityWarning, st.Statuses[0].Severity)
	assert.Equal(t, "GEN-1", st.EquipmentCode)

	performed, err := f.svc.RecordPerformed(ctx, task.ID, at(2024, 1, 28, 15, 45))
	require.NoError(t, err)
	assert.True(t, performed.Tracking.DateLastPerformed.Equal(day(2024, 1, 28)))
	assert.True(t, performed.Tracking.DateNextDue.Equal(day(2024, 2, 27)))

	st, err = f.svc.GetTaskStatus(ctx, task.ID, at(2024, 1, 29, 10, 0))
	require.NoError(t, err)
	assert.False(t, st.Due)
	assert.Equal(t, SeverityOK, st.Statuses[0].Severity)
	assert.True(t, st.Statuses[0].DueDate.Equal(day(2024, 2, 27)))
}

func TestDateOnlyValuesKeepTheirCalendarDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eq := f.addEquipment(t, "PMP-3", nil)
	east := time.FixedZone("UTC+3", 3*60*60)
	west := time.FixedZone("UTC-5", -5*60*60)

	task, err := f.svc.CreateTask(ctx, CreateTaskRequest{
		EquipmentID: eq.ID,
		Name:        "Inspect seals",
		Tracking:    TrackingRequest{ByDate: true, DateEvery: true, DateInterval: intPtr(30)},
	})
	require.NoError(t, err)

	performed, err := f.svc.RecordPerformed(ctx, task.ID, time.Date(2024, 1, 28, 23, 30, 0, 0, east))
	require.NoError(t, err)
	assert.True(t, performed.Tracking.DateLastPerformed.Equal(day(2024, 1, 28)))
	assert.True(t, performed.Tracking.DateNextDue.Equal(day(2024, 2, 27)))

	st, err := f.svc.GetTaskStatus(ctx, task.ID, time.Date(2024, 2, 27, 9, 0, 0, 0, west))
	require.NoError(t, err)
	assert.Equal(t, "today", st.Statuses[0].Message)

	due := time.Date(2024, 3, 5, 0, 0, 0, 0, west)
	repair, err := f.svc.CreateRepairTask(ctx, CreateRepairTaskRequest{EquipmentID: eq.ID, Title: "Leak", DueDate: &due})
	require.NoError(t, err)
	assert.True(t, repair.Tracking.DateNextDue.Equal(day(2024, 3, 5)))

	st, err = f.svc.GetRepairTaskStatus(ctx, repair.ID, time.Date(2024, 3, 5, 8, 0, 0, 0, west))
	require.NoError(t, err)
	assert.Equal(t, SeverityOverdue, st.Statuses[0].Severity)
	assert.Equal(t, "today", st.Statuses[0].Message)
}

func TestRecordPerformed_MeterTakesCurrentReading(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eq := f.addEquipment(t, "CMP-1", decPtr(1000))

	task, err := f.svc.CreateTask(ctx, CreateTaskRequest{
		EquipmentID: eq.ID,
		Name:        "Replace belts",
		Tracking: TrackingRequest{Primary: MeterTrackingRequest{
			Enabled:       true,
			Every:         true,
			Interval:      decPtr(250),
			AdvanceNotice: dec(20),
			LastPerformed: decPtr(900),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MeterHours, task.Tracking.PrimaryMeterType, "unit falls back to the equipment's")

	st, err := f.svc.GetTaskStatus(ctx, task.ID, at(2024, 1, 1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "in 150 hours", st.Statuses[0].Message)

	f.setHours(t, eq, 1140)
	st, err = f.svc.GetTaskStatus(ctx, task.ID, at(2024, 1, 1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, SeverityWarning, st.Statuses[0].Severity)

	performed, err := f.svc.RecordPerformed(ctx, task.ID, at(2024, 1, 2, 0, 0))
	require.NoError(t, err)
	assert.True(t, performed.Tracking.PrimaryLastPerformed.Equal(dec(1140)))
	assert.True(t, performed.Tracking.PrimaryNextDue.Equal(dec(1390)))

	st, err = f.svc.GetTaskStatus(ctx, task.ID, at(2024, 1, 2, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "in 250 hours", st.Statuses[0].Message)
}

func TestRecordPerformed_MeterWithoutReading(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eq := f.addEquipment(t, "NEW-1", nil)

	task, err := f.svc.CreateTask(ctx, CreateTaskRequest{
		EquipmentID: eq.ID,
		Name:        "First service",
		Tracking:    TrackingRequest{Primary: MeterTrackingRequest{Enabled: true, Every: true, Interval: decPtr(50), NextDue: decPtr(50)}},
	})
	require.NoError(t, err)

	_, err = f.svc.RecordPerformed(ctx, task.ID, day(2024, 1, 1))
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.svc.GetTaskStatus(ctx, task.ID, day(2024, 1, 1))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCreateTask_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateTask(ctx, CreateTaskRequest{EquipmentID: 77, Name: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)

	eq := &domain.Equipment{Code: "NOUNIT", Name: "No unit"}
	require.NoError(t, f.equipment.Create(ctx, eq))
	_, err = f.svc.CreateTask(ctx, CreateTaskRequest{
		EquipmentID: eq.ID,
		Name:        "Needs a unit",
		Tracking:    TrackingRequest{Primary: MeterTrackingRequest{Enabled: true, NextDue: decPtr(10)}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreateTask(ctx, CreateTaskRequest{
		EquipmentID: eq.ID,
		Name:        "Every without interval",
		Tracking:    TrackingRequest{ByDate: true, DateEvery: true},
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreateRepairTask(ctx, CreateRepairTaskRequest{EquipmentID: eq.ID, Title: "No date"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListDue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eq := f.addEquipment(t, "LOADER", decPtr(500))
	bare := f.addEquipment(t, "BARE", nil)
	now := at(2024, 3, 10, 9, 0)

	_, err := f.svc.CreateTask(ctx, CreateTaskRequest{
		EquipmentID: eq.ID,
		Name:        "Grease",
		Tracking:    TrackingRequest{ByDate: true, DueDates: []time.Time{day(2024, 6, 1)}},
	})
	require.NoError(t, err)

	overdue, err := f.svc.CreateTask(ctx, CreateTaskRequest{
		EquipmentID: eq.ID,
		Name:        "Hydraulic filter",
		Tracking:    TrackingRequest{Primary: MeterTrackingRequest{Enabled: true, DueValues: []decimal.Decimal{dec(450), dec(900)}}},
	})
	require.NoError(t, err)

	broken, err := f.svc.CreateTask(ctx, CreateTaskRequest{
		EquipmentID: bare.ID,
		Name:        "Meter without reading",
		Tracking:    TrackingRequest{Primary: MeterTrackingRequest{Enabled: true, NextDue: decPtr(10)}},
	})
	require.NoError(t, err)

	repair, err := f.svc.CreateRepairTask(ctx, CreateRepairTaskRequest{
		EquipmentID: eq.ID,
		Title:       "Fix door",
		DueDate:     timePtr(day(2024, 3, 9)),
	})
	require.NoError(t, err)

	closed, err := f.svc.CreateRepairTask(ctx, CreateRepairTaskRequest{
		EquipmentID: eq.ID,
		Title:       "Replace mirror",
		DueDates:    []time.Time{day(2024, 3, 1)},
	})
	require.NoError(t, err)
	_, err = f.svc.CloseRepairTask(ctx, closed.ID, now)
	require.NoError(t, err)

	rows, err := f.svc.ListDue(ctx, now, false)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, overdue.ID, rows[0].ID)
	assert.Equal(t, KindTask, rows[0].Kind)
	assert.Equal(t, "50 hours ago", rows[0].Statuses[0].Message)

	assert.Equal(t, broken.ID, rows[1].ID)
	assert.NotEmpty(t, rows[1].Error)
	assert.Empty(t, rows[1].Statuses)

	assert.Equal(t, repair.ID, rows[2].ID)
	assert.Equal(t, KindRepair, rows[2].Kind)
	assert.Equal(t, DimensionRepair, rows[2].Statuses[0].Dimension)
	assert.Equal(t, "1 day ago", rows[2].Statuses[0].Message)

	all, err := f.svc.ListDue(ctx, now, true)
	require.NoError(t, err)
	assert.Len(t, all, 4, "ok tasks are listed on request, closed repairs never")
}

func TestCloseRepairTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eq := f.addEquipment(t, "VAN", nil)

	repair, err := f.svc.CreateRepairTask(ctx, CreateRepairTaskRequest{
		EquipmentID: eq.ID,
		Title:       "Wiper motor",
		DueDates:    []time.Time{day(2024, 5, 10), day(2024, 5, 3)},
	})
	require.NoError(t, err)

	st, err := f.svc.GetRepairTaskStatus(ctx, repair.ID, at(2024, 5, 1, 8, 0))
	require.NoError(t, err)
	assert.True(t, st.Statuses[0].DueDate.Equal(day(2024, 5, 3)))

	got, err := f.svc.CloseRepairTask(ctx, repair.ID, at(2024, 5, 2, 8, 0))
	require.NoError(t, err)
	assert.Equal(t, domain.RepairClosed, got.Status)
	require.NotNil(t, got.ClosedAt)

	_, err = f.svc.CloseRepairTask(ctx, repair.ID, at(2024, 5, 2, 9, 0))
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.svc.CloseRepairTask(ctx, 9999, at(2024, 5, 2, 9, 0))
	assert.ErrorIs(t, err, ErrNotFound)
}
