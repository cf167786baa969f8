package database

import (
	"maintenance/internal/domain"

	"gorm.io/gorm"
)

func Models() []any {
	return []any{
		&domain.Equipment{},
		&domain.Task{},
		&domain.RepairTask{},
		&domain.TaskTracking{},
		&domain.TrackingDueDate{},
		&domain.TrackingDueMeter{},
		&domain.Warehouse{},
		&domain.Item{},
		&domain.Inventory{},
		&domain.Vendor{},
		&domain.PurchaseOrder{},
		&domain.Receipt{},
		&domain.Issuance{},
		&domain.WorkOrder{},
		&domain.WorkOrderTask{},
		&domain.LaborEntry{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
