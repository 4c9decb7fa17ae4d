package models

import "time"

// CartSnapshot is the durable record behind the sqlite cart storage driver.
// Only the serialized line list is stored; totals and the drawer flag are
// recomputed on load.
type CartSnapshot struct {
	SessionID string `gorm:"primaryKey;size:64"`
	Lines     string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}
