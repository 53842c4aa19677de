package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Record, error)
	List(ctx context.Context, req ListRequest) ([]Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	Update(ctx context.Context, req UpdateRequest) (*Record, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	BatchID  string     `json:"batch_id"`
	Location string     `json:"location"`
	StoredAt *time.Time `json:"stored_at"`
}

type ListRequest struct {
	Status string
}

// UpdateRequest is a direct edit; status follows the edited quantities.
type UpdateRequest struct {
	ID             string     `json:"-"`
	Location       *string    `json:"location"`
	QuantityStored *float64   `json:"quantity_stored"`
	Remaining      *float64   `json:"remaining"`
	StoredAt       *time.Time `json:"stored_at"`
}

var (
	ErrInvalidOwner     = errors.New("invalid_owner")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidBatch     = errors.New("invalid_batch")
	ErrInvalidLocation  = errors.New("invalid_location")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidRemaining = errors.New("invalid_remaining")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrBatchNotComplete = errors.New("batch_not_completed")
	ErrBatchEmpty       = errors.New("batch_empty")
	ErrAlreadyStored    = errors.New("batch_already_stored")
	ErrNotFound         = errors.New("not_found")
)
