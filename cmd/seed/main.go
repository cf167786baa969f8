package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"maintenance/internal/config"
	"maintenance/internal/database"
	"maintenance/internal/domain"
	"maintenance/internal/modules/equipment"
	"maintenance/internal/modules/inventory"
	"maintenance/internal/modules/schedule"
	"maintenance/internal/pkg/logger"
	"maintenance/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DatabaseURL, database.PoolConfig{MaxOpenConns: 1}, true, log)
	if err != nil {
		log.WithError(err).Fatal("DB connection failed")
	}

	ctx := context.Background()
	equipmentRepo := repository.NewEquipmentRepository(db)
	inventoryService := inventory.NewService(
		repository.NewLedgerRepository(db),
		repository.NewInventoryRepository(db),
		nil, cfg.LockTTL, log,
	)
	equipmentService := equipment.NewService(equipmentRepo)
	scheduleService := schedule.NewService(repository.NewTaskRepository(db), equipmentRepo, log)

	// ================== INVENTORY ==================
	log.Info("Creating warehouse and parts...")
	warehouse, err := inventoryService.CreateWarehouse(ctx, inventory.CreateWarehouseRequest{Name: "Main yard", Location: "Bay 1"})
	must(log, "warehouse", err)

	parts := []struct {
		number, name string
		receipts     []string
		cost         string
	}{
		{"FLT-100", "Oil filter", []string{"10", "6"}, "7.50"},
		{"FLT-220", "Hydraulic filter", []string{"4"}, "32"},
		{"BLT-015", "Drive belt", []string{"2"}, "18.25"},
	}
	for _, p := range parts {
		item, err := inventoryService.CreateItem(ctx, inventory.CreateItemRequest{PartNumber: p.number, Name: p.name, Unit: "ea"})
		must(log, "item "+p.number, err)

		inv, err := inventoryService.CreateInventory(ctx, inventory.CreateInventoryRequest{
			ItemID:        item.ID,
			WarehouseID:   warehouse.ID,
			LowStockLevel: decimal.NewFromInt(2),
		})
		must(log, "inventory "+p.number, err)

		for _, qty := range p.receipts {
			_, err := inventoryService.UpsertReceipt(ctx, inventory.UpsertReceiptRequest{
				InventoryID:    inv.ID,
				QtyReceived:    decimal.RequireFromString(qty),
				UnitCostDollar: decimal.RequireFromString(p.cost),
				Notes:          "opening stock",
			})
			must(log, "receipt "+p.number, err)
		}
	}

	// ================== EQUIPMENT ==================
	log.Info("Creating equipment...")
	hours := decimal.NewFromInt(1180)
	miles := decimal.NewFromInt(42300)
	loader, err := equipmentService.Create(ctx, equipment.CreateEquipmentRequest{
		Code:                "LDR-01",
		Name:                "Wheel loader",
		PrimaryMeterUnit:    domain.MeterHours,
		PrimaryMeterReading: &hours,
	})
	must(log, "equipment LDR-01", err)

	truck, err := equipmentService.Create(ctx, equipment.CreateEquipmentRequest{
		Code:                "TRK-07",
		Name:                "Service truck",
		PrimaryMeterUnit:    domain.MeterMiles,
		PrimaryMeterReading: &miles,
	})
	must(log, "equipment TRK-07", err)

	// ================== SCHEDULE ==================
	log.Info("Creating maintenance tasks...")
	today := startOfDay(time.Now())
	every250 := decimal.NewFromInt(250)
	lastService := decimal.NewFromInt(1000)
	ninety := 90

	_, err = scheduleService.CreateTask(ctx, schedule.CreateTaskRequest{
		EquipmentID: loader.ID,
		Name:        "Engine oil and filter",
		Tracking: schedule.TrackingRequest{
			Primary: schedule.MeterTrackingRequest{
				Enabled:       true,
				Every:         true,
				Interval:      &every250,
				AdvanceNotice: decimal.NewFromInt(25),
				LastPerformed: &lastService,
			},
		},
	})
	must(log, "task oil", err)

	lastInspection := today.AddDate(0, 0, -85)
	_, err = scheduleService.CreateTask(ctx, schedule.CreateTaskRequest{
		EquipmentID: truck.ID,
		Name:        "Quarterly inspection",
		Tracking: schedule.TrackingRequest{
			ByDate:            true,
			DateEvery:         true,
			DateInterval:      &ninety,
			DateAdvanceNotice: 7,
			DateLastPerformed: &lastInspection,
		},
	})
	must(log, "task inspection", err)

	due := today.AddDate(0, 0, 3)
	_, err = scheduleService.CreateRepairTask(ctx, schedule.CreateRepairTaskRequest{
		EquipmentID: truck.ID,
		Title:       "Replace cracked mirror",
		DueDate:     &due,
	})
	must(log, "repair task", err)

	log.Info("Seed completed")
}

func must(log *logrus.Logger, what string, err error) {
	if err != nil {
		log.WithError(err).WithField("step", what).Fatal("seed failed")
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
