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
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	StorageID          string     `json:"storage_id"`
	ParcelID           string     `json:"parcel_id"`
	QuantityUsed       float64    `json:"quantity_used"`
	FertilizerID       *string    `json:"fertilizer_id"`
	FertilizerQuantity *float64   `json:"fertilizer_quantity"`
	Method             *string    `json:"method"`
	AppliedAt          *time.Time `json:"applied_at"`
	Notes              *string    `json:"notes"`
}

type ListRequest struct {
	StorageID string
	ParcelID  string
}

var (
	ErrInvalidOwner              = errors.New("invalid_owner")
	ErrInvalidID                 = errors.New("invalid_id")
	ErrInvalidStorage            = errors.New("invalid_storage")
	ErrInvalidParcel             = errors.New("invalid_parcel")
	ErrInvalidFertilizer         = errors.New("invalid_fertilizer")
	ErrInvalidQuantity           = errors.New("invalid_quantity")
	ErrInvalidFertilizerQuantity = errors.New("invalid_fertilizer_quantity")
	ErrNotFound                  = errors.New("not_found")
)
