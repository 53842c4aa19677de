package conservation

import "time"

// Movement is an append-only journal line written for every decrement.
type Movement struct {
	ID             int64        `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	OwnerID        string       `json:"owner_id" gorm:"size:128;not null;index:ix_inventory_movements_owner_source,priority:1"`
	SourceType     SourceKind   `json:"source_type" gorm:"size:32;not null;index:ix_inventory_movements_owner_source,priority:2"`
	SourceID       int64        `json:"source_id,string" gorm:"not null;index:ix_inventory_movements_owner_source,priority:3"`
	ConsumerType   ConsumerKind `json:"consumer_type" gorm:"size:32;not null"`
	ConsumerID     int64        `json:"consumer_id,string" gorm:"not null;index"`
	Quantity       float64      `json:"quantity" gorm:"not null"`
	RemainingAfter float64      `json:"remaining_after" gorm:"not null"`
	CreatedAt      time.Time    `json:"created_at" gorm:"not null"`
}

func (Movement) TableName() string { return "inventory_movements" }

type MovementFilter struct {
	SourceType SourceKind
	SourceID   int64
	Limit      int
}
