package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Inventory, error)
	List(ctx context.Context, req ListRequest) ([]Inventory, error)
	Get(ctx context.Context, id string) (*Inventory, error)
	Update(ctx context.Context, req UpdateRequest) (*Inventory, error)
	Delete(ctx context.Context, id string) error

	RecordUsage(ctx context.Context, req UsageRequest) (*Usage, error)
	ListUsages(ctx context.Context, req UsageListRequest) ([]Usage, error)

	// ReconcileStatuses re-derives every stocked inventory's status under the
	// current low-stock policy and returns how many rows changed.
	ReconcileStatuses(ctx context.Context) (int, error)
}

type CreateRequest struct {
	Name           string     `json:"name"`
	FertilizerType string     `json:"fertilizer_type"`
	Quantity       float64    `json:"quantity"`
	Unit           string     `json:"unit"`
	PurchasedAt    *time.Time `json:"purchased_at"`
	Supplier       *string    `json:"supplier"`
}

type ListRequest struct {
	Status         string
	FertilizerType string
}

// UpdateRequest is a direct edit. Status is re-derived with the pre-edit
// quantity as the previous value.
type UpdateRequest struct {
	ID              string     `json:"-"`
	Name            *string    `json:"name"`
	FertilizerType  *string    `json:"fertilizer_type"`
	Quantity        *float64   `json:"quantity"`
	InitialQuantity *float64   `json:"initial_quantity"`
	Unit            *string    `json:"unit"`
	PurchasedAt     *time.Time `json:"purchased_at"`
	Supplier        *string    `json:"supplier"`
}

type UsageRequest struct {
	InventoryID  string     `json:"-"`
	ParcelID     string     `json:"parcel_id"`
	QuantityUsed float64    `json:"quantity_used"`
	UsedAt       *time.Time `json:"used_at"`
	Notes        *string    `json:"notes"`
}

type UsageListRequest struct {
	InventoryID string
	ParcelID    string
}

var (
	ErrInvalidOwner    = errors.New("invalid_owner")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidType     = errors.New("invalid_fertilizer_type")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidUnit     = errors.New("invalid_unit")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidParcel   = errors.New("invalid_parcel")
	ErrNotFound        = errors.New("not_found")
)
