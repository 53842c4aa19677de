package domain

import "time"

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Batch is one pyrolysis run. BiomassWeight was drawn from a single biomass
// record when the batch was created; BiocharWeight is known once it completes.
type Batch struct {
	ID              int64      `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	OwnerID         string     `json:"owner_id" gorm:"size:128;not null;index:ix_biochar_batches_owner_status,priority:1"`
	BiomassID       int64      `json:"biomass_id,string" gorm:"not null;index"`
	BatchNumber     string     `json:"batch_number" gorm:"size:32;not null;uniqueIndex"`
	BiomassWeight   float64    `json:"biomass_weight" gorm:"type:numeric(14,3);not null"`
	BiocharWeight   *float64   `json:"biochar_weight,omitempty" gorm:"type:numeric(14,3)"`
	YieldPercentage *float64   `json:"yield_percentage,omitempty" gorm:"type:numeric(12,2)"`
	KilnType        *string    `json:"kiln_type,omitempty" gorm:"size:64"`
	TemperatureC    *float64   `json:"temperature_c,omitempty" gorm:"type:numeric(6,1)"`
	ProductionDate  time.Time  `json:"production_date" gorm:"not null"`
	Status          Status     `json:"status" gorm:"size:16;not null;index:ix_biochar_batches_owner_status,priority:2"`
	FailureReason   *string    `json:"failure_reason,omitempty" gorm:"type:text"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"not null"`
}

func (Batch) TableName() string { return "biochar_batches" }
