package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
)

// Order is the aggregate root owning a set of order lines.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:(gen_random_uuid());primaryKey"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Name        string            `gorm:"column:name;not null"`
	Description string            `gorm:"column:description;not null"`
	Status      enums.OrderStatus `gorm:"column:status;type:char(1);not null;default:'P'"`
	Date        time.Time         `gorm:"column:date;type:date;not null"`
	User        *User             `gorm:"foreignKey:UserID"`
	Lines       []OrderLine       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
