package domain

import (
	"context"
	"errors"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Parcel, error)
	List(ctx context.Context, req ListRequest) ([]Parcel, error)
	Get(ctx context.Context, id string) (*Parcel, error)
	Update(ctx context.Context, req UpdateRequest) (*Parcel, error)
	Deactivate(ctx context.Context, id string) (*Parcel, error)
	Verify(ctx context.Context, req VerifyRequest) (*Parcel, error)
	Delete(ctx context.Context, id string) error

	// Lookup returns an owner's parcel for downstream ledgers.
	Lookup(ctx context.Context, ownerID string, id int64) (*Parcel, error)
}

type CreateRequest struct {
	Name                   string         `json:"name"`
	Location               *string        `json:"location"`
	AreaHectares           float64        `json:"area_hectares"`
	CultivatedAreaHectares *float64       `json:"cultivated_area_hectares"`
	ExpectedYieldTonnes    *float64       `json:"expected_yield_tonnes"`
	ActualYieldTonnes      *float64       `json:"actual_yield_tonnes"`
	SoilType               *string        `json:"soil_type"`
	DocumentURLs           []string       `json:"document_urls"`
	Metadata               map[string]any `json:"metadata"`
}

type ListRequest struct {
	Status             string
	VerificationStatus string
	Name               string
}

type UpdateRequest struct {
	ID                     string         `json:"-"`
	Name                   *string        `json:"name"`
	Location               *string        `json:"location"`
	AreaHectares           *float64       `json:"area_hectares"`
	CultivatedAreaHectares *float64       `json:"cultivated_area_hectares"`
	ExpectedYieldTonnes    *float64       `json:"expected_yield_tonnes"`
	ActualYieldTonnes      *float64       `json:"actual_yield_tonnes"`
	SoilType               *string        `json:"soil_type"`
	DocumentURLs           []string       `json:"document_urls"`
	Metadata               map[string]any `json:"metadata"`
	Status                 *string        `json:"status"`
}

type VerifyRequest struct {
	ID     string  `json:"-"`
	Status string  `json:"status"`
	Note   *string `json:"note"`
}

var (
	ErrInvalidOwner              = errors.New("invalid_owner")
	ErrInvalidID                 = errors.New("invalid_id")
	ErrInvalidName               = errors.New("invalid_name")
	ErrInvalidArea               = errors.New("invalid_area")
	ErrInvalidStatus             = errors.New("invalid_status")
	ErrInvalidVerificationStatus = errors.New("invalid_verification_status")
	ErrInvalidDocumentURL        = errors.New("invalid_document_url")
	ErrForbidden                 = errors.New("forbidden")
	ErrNotFound                  = errors.New("not_found")
	ErrInactive                  = errors.New("parcel_inactive")
)
