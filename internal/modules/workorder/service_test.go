package workorder

import (
	"context"
	"testing"
	"time"

	"maintenance/internal/database"
	"maintenance/internal/domain"
	"maintenance/internal/modules/inventory"
	"maintenance/internal/modules/schedule"
	"maintenance/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc       *Service
	schedule  *schedule.Service
	inventory *inventory.Service
	equipment *domain.Equipment
}

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := database.NewTestDB(t)
	eqRepo := repository.NewEquipmentRepository(db)
	invRepo := repository.NewInventoryRepository(db)

	eq := &domain.Equipment{Code: "GEN-1", Name: "Generator", PrimaryMeterUnit: domain.MeterHours}
	require.NoError(t, eqRepo.Create(context.Background(), eq))

	sched := schedule.NewService(repository.NewTaskRepository(db), eqRepo, nil)
	inv := inventory.NewService(repository.NewLedgerRepository(db), invRepo, nil, time.Second, nil)
	return &fixture{
		svc:       NewService(repository.NewWorkOrderRepository(db), invRepo, sched, eqRepo, nil),
		schedule:  sched,
		inventory: inv,
		equipment: eq,
	}
}

func TestCost_LaborAndParts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	wo, err := f.svc.Create(ctx, CreateWorkOrderRequest{EquipmentID: f.equipment.ID, Description: "Annual service"})
	require.NoError(t, err)
	assert.Equal(t, domain.WorkOrderOpen, wo.Status)
	assert.NotEmpty(t, wo.Number)

	line, err := f.svc.AddTask(ctx, wo.ID, AddTaskRequest{Description: "Replace filters"})
	require.NoError(t, err)

	_, err = f.svc.AddLabor(ctx, line.ID, AddLaborRequest{Technician: "R. Silva", Hours: d("2.5"), RateDollar: d("20"), RateVES: d("730")})
	require.NoError(t, err)
	_, err = f.svc.AddLabor(ctx, line.ID, AddLaborRequest{Technician: "M. Pérez", Hours: d("1"), RateDollar: d("15"), RateVES: d("547.5")})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, wo.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkOrderInProgress, got.Status)

	// Parts: 5 @ $4 then 10 @ $6; issuing 8 draws 5 + 3.
	w, err := f.inventory.CreateWarehouse(ctx, inventory.CreateWarehouseRequest{Name: "Main"})
	require.NoError(t, err)
	item, err := f.inventory.CreateItem(ctx, inventory.CreateItemRequest{PartNumber: "FLT-1", Name: "Filter"})
	require.NoError(t, err)
	stock, err := f.inventory.CreateInventory(ctx, inventory.CreateInventoryRequest{ItemID: item.ID, WarehouseID: w.ID})
	require.NoError(t, err)
	for _, r := range []struct{ qty, dollar, ves string }{{"5", "4", "146"}, {"10", "6", "219"}} {
		_, err := f.inventory.UpsertReceipt(ctx, inventory.UpsertReceiptRequest{
			InventoryID:    stock.ID,
			QtyReceived:    d(r.qty),
			UnitCostDollar: d(r.dollar),
			UnitCostVES:    d(r.ves),
		})
		require.NoError(t, err)
	}
	_, err = f.inventory.CreateIssuance(ctx, inventory.CreateIssuanceRequest{
		InventoryID:     stock.ID,
		Quantity:        d("8"),
		WorkOrderTaskID: &line.ID,
	})
	require.NoError(t, err)

	cost, err := f.svc.Cost(ctx, wo.ID)
	require.NoError(t, err)
	assert.True(t, cost.Labor.Dollar.Equal(d("65")), cost.Labor.Dollar.String())
	assert.True(t, cost.Labor.VES.Equal(d("2372.5")), cost.Labor.VES.String())
	assert.True(t, cost.Parts.Dollar.Equal(d("38")), cost.Parts.Dollar.String())
	assert.True(t, cost.Parts.VES.Equal(d("1387")), cost.Parts.VES.String())
	assert.True(t, cost.Total.Dollar.Equal(d("103")), cost.Total.Dollar.String())
	assert.True(t, cost.Total.VES.Equal(d("3759.5")), cost.Total.VES.String())
}

func TestCompleteTask_ReportsToScheduler(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	interval := 90
	last := day(2024, 1, 1)
	task, err := f.schedule.CreateTask(ctx, schedule.CreateTaskRequest{
		EquipmentID: f.equipment.ID,
		Name:        "Inspect",
		Tracking:    schedule.TrackingRequest{ByDate: true, DateEvery: true, DateInterval: &interval, DateLastPerformed: &last},
	})
	require.NoError(t, err)
	due := day(2024, 2, 1)
	repair, err := f.schedule.CreateRepairTask(ctx, schedule.CreateRepairTaskRequest{EquipmentID: f.equipment.ID, Title: "Leak", DueDate: &due})
	require.NoError(t, err)

	wo, err := f.svc.Create(ctx, CreateWorkOrderRequest{Number: "WO-1", EquipmentID: f.equipment.ID})
	require.NoError(t, err)
	recurring, err := f.svc.AddTask(ctx, wo.ID, AddTaskRequest{TaskID: &task.ID})
	require.NoError(t, err)
	fix, err := f.svc.AddTask(ctx, wo.ID, AddTaskRequest{RepairTaskID: &repair.ID})
	require.NoError(t, err)

	on := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	_, err = f.svc.CompleteTask(ctx, recurring.ID, on)
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, wo.ID, on)
	assert.ErrorIs(t, err, ErrInvalidState, "one task still open")

	_, err = f.svc.CompleteTask(ctx, fix.ID, on)
	require.NoError(t, err)
	_, err = f.svc.CompleteTask(ctx, fix.ID, on)
	assert.ErrorIs(t, err, ErrInvalidState)

	st, err := f.schedule.GetTaskStatus(ctx, task.ID, on)
	require.NoError(t, err)
	assert.True(t, st.Statuses[0].DueDate.Equal(day(2024, 6, 3)), "next due is performed day plus interval")

	done, err := f.svc.Complete(ctx, wo.ID, on)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkOrderCompleted, done.Status)

	_, err = f.svc.AddTask(ctx, wo.ID, AddTaskRequest{Description: "late"})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestAddTask_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateWorkOrderRequest{EquipmentID: 404})
	assert.ErrorIs(t, err, ErrNotFound)

	wo, err := f.svc.Create(ctx, CreateWorkOrderRequest{EquipmentID: f.equipment.ID})
	require.NoError(t, err)

	a, b := int64(1), int64(2)
	_, err = f.svc.AddTask(ctx, wo.ID, AddTaskRequest{TaskID: &a, RepairTaskID: &b})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.AddTask(ctx, wo.ID, AddTaskRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.AddLabor(ctx, 999, AddLaborRequest{Technician: "x", Hours: d("1")})
	assert.ErrorIs(t, err, ErrNotFound)

	ghost := int64(999)
	line, err := f.svc.AddTask(ctx, wo.ID, AddTaskRequest{TaskID: &ghost})
	require.NoError(t, err)
	_, err = f.svc.CompleteTask(ctx, line.ID, time.Now())
	assert.ErrorIs(t, err, ErrNotFound, "unknown recurring task surfaces as not found")
}
