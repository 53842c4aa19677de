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
	ParcelID        string     `json:"parcel_id"`
	CropType        string     `json:"crop_type"`
	HarvestDate     *time.Time `json:"harvest_date"`
	Quantity        float64    `json:"quantity"`
	MoistureContent *float64   `json:"moisture_content"`
	Notes           *string    `json:"notes"`
}

type ListRequest struct {
	ParcelID string
	Status   string
	CropType string
}

// UpdateRequest is a direct edit. It re-derives status but does not run
// conservation checks against downstream batches.
type UpdateRequest struct {
	ID              string     `json:"-"`
	CropType        *string    `json:"crop_type"`
	HarvestDate     *time.Time `json:"harvest_date"`
	Quantity        *float64   `json:"quantity"`
	Remaining       *float64   `json:"remaining"`
	MoistureContent *float64   `json:"moisture_content"`
	Notes           *string    `json:"notes"`
}

var (
	ErrInvalidOwner     = errors.New("invalid_owner")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidParcel    = errors.New("invalid_parcel")
	ErrInvalidCropType  = errors.New("invalid_crop_type")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidRemaining = errors.New("invalid_remaining")
	ErrInvalidMoisture  = errors.New("invalid_moisture_content")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrNotFound         = errors.New("not_found")
)
