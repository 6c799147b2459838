package models

import (
	"time"
)

type Warehouse struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string `gorm:"unique;not null"          json:"name"`
	Members []User `gorm:"many2many:warehouse_members" json:"members,omitempty"`
}

type User struct {
	Username    string `gorm:"primaryKey"     json:"username"`
	Description string `gorm:"not null"       json:"description"`
	DisplayName string `gorm:"not null"       json:"display_name"`
	WarehouseID uint   `gorm:"index;not null" json:"warehouse_id"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"unique;not null"          json:"name"`
}

type Budget struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"                         json:"id"`
	WarehouseID uint    `gorm:"not null;uniqueIndex:idx_budget_scope,priority:1" json:"warehouse_id"`
	CategoryID  uint    `gorm:"not null;uniqueIndex:idx_budget_scope,priority:2" json:"category_id"`
	Month       string  `gorm:"not null;uniqueIndex:idx_budget_scope,priority:3" json:"month"`
	Amount      float64 `gorm:"not null"                                         json:"amount"`
}

const (
	FlowIn  = "in"
	FlowOut = "out"
)

type FlowLog struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	WarehouseID uint      `gorm:"index;not null"           json:"warehouse_id"`
	CategoryID  uint      `gorm:"index;not null"           json:"category_id"`
	Username    string    `gorm:"index;not null"           json:"username"`
	Kind        string    `gorm:"not null"                 json:"kind"`
	Amount      float64   `gorm:"not null"                 json:"amount"`
	Note        string    `json:"note"`
	OccurredAt  time.Time `gorm:"index;not null"           json:"occurred_at"`
	CreatedAt   time.Time `json:"created_at"`
}
