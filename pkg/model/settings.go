package model

import "time"

type PrintQueueSettings struct {
	ID                  string    `json:"id,omitempty" bson:"_id,omitempty"`
	ShopOwnerID         string    `json:"shop_owner_id" bson:"shop_owner_id" validate:"required,mongodb"`
	AutoAccept          bool      `json:"auto_accept" bson:"auto_accept"`
	NotificationEnabled bool      `json:"notification_enabled" bson:"notification_enabled"`
	QueueLimit          int       `json:"queue_limit" bson:"queue_limit" validate:"min=1,max=500"`
	UpdatedAt           time.Time `json:"updated_at" bson:"updated_at"`
}

type EquipmentStatus string

const (
	EquipmentActive      EquipmentStatus = "active"
	EquipmentMaintenance EquipmentStatus = "maintenance"
	EquipmentInactive    EquipmentStatus = "inactive"
)

type Equipment struct {
	ID              string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ShopOwnerID     string          `json:"shop_owner_id" bson:"shop_owner_id" validate:"required,mongodb"`
	EquipmentName   string          `json:"equipment_name" bson:"equipment_name" validate:"required,min=2,max=100"`
	EquipmentType   string          `json:"equipment_type" bson:"equipment_type" validate:"required,min=2,max=50"`
	Brand           string          `json:"brand,omitempty" bson:"brand,omitempty" validate:"omitempty,max=50"`
	Model           string          `json:"model,omitempty" bson:"model,omitempty" validate:"omitempty,max=50"`
	Status          EquipmentStatus `json:"status" bson:"status" validate:"required,oneof=active maintenance inactive"`
	Capabilities    []string        `json:"capabilities,omitempty" bson:"capabilities,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
	LastMaintenance *time.Time      `json:"last_maintenance,omitempty" bson:"last_maintenance,omitempty"`
	NextMaintenance *time.Time      `json:"next_maintenance,omitempty" bson:"next_maintenance,omitempty"`
	CreatedAt       time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" bson:"updated_at"`
}

type NotificationSettings struct {
	ID                                string    `json:"id,omitempty" bson:"_id,omitempty"`
	ShopOwnerID                       string    `json:"shop_owner_id" bson:"shop_owner_id" validate:"required,mongodb"`
	EmailNotifications                bool      `json:"email_notifications" bson:"email_notifications"`
	SMSNotifications                  bool      `json:"sms_notifications" bson:"sms_notifications"`
	NewOrderNotifications             bool      `json:"new_order_notifications" bson:"new_order_notifications"`
	OrderCompletionNotifications      bool      `json:"order_completion_notifications" bson:"order_completion_notifications"`
	EquipmentMaintenanceNotifications bool      `json:"equipment_maintenance_notifications" bson:"equipment_maintenance_notifications"`
	LowSuppliesNotifications          bool      `json:"low_supplies_notifications" bson:"low_supplies_notifications"`
	DailySummaryNotifications         bool      `json:"daily_summary_notifications" bson:"daily_summary_notifications"`
	UpdatedAt                         time.Time `json:"updated_at" bson:"updated_at"`
}

// SweepMarker is the durable record of the last expiry sweep.
type SweepMarker struct {
	Name         string    `json:"name" bson:"_id"`
	LastRunAt    time.Time `json:"last_run_at" bson:"last_run_at"`
	LastDeleted  int       `json:"last_deleted" bson:"last_deleted"`
	LastErrors   []string  `json:"last_errors,omitempty" bson:"last_errors,omitempty"`
	TotalDeleted int64     `json:"total_deleted" bson:"total_deleted"`
}
