package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Batch, error)
	List(ctx context.Context, req ListRequest) ([]Batch, error)
	Get(ctx context.Context, id string) (*Batch, error)
	Complete(ctx context.Context, req CompleteRequest) (*Batch, error)
	Fail(ctx context.Context, req FailRequest) (*Batch, error)
	Update(ctx context.Context, req UpdateRequest) (*Batch, error)
	Delete(ctx context.Context, id string) error

	// Lookup returns an owner's batch for the storage ledger.
	Lookup(ctx context.Context, ownerID string, id int64) (*Batch, error)
}

type CreateRequest struct {
	BiomassID      string     `json:"biomass_id"`
	BiomassWeight  float64    `json:"biomass_weight"`
	KilnType       *string    `json:"kiln_type"`
	TemperatureC   *float64   `json:"temperature_c"`
	ProductionDate *time.Time `json:"production_date"`
}

type ListRequest struct {
	BiomassID string
	Status    string
}

// CompleteRequest requires the measured output; zero is a valid weight.
type CompleteRequest struct {
	ID            string   `json:"-"`
	BiocharWeight *float64 `json:"biochar_weight"`
}

type FailRequest struct {
	ID     string  `json:"-"`
	Reason *string `json:"reason"`
}

// UpdateRequest is a direct edit. Weight changes recompute the yield but do
// not touch the biomass ledger.
type UpdateRequest struct {
	ID             string     `json:"-"`
	BiomassWeight  *float64   `json:"biomass_weight"`
	BiocharWeight  *float64   `json:"biochar_weight"`
	KilnType       *string    `json:"kiln_type"`
	TemperatureC   *float64   `json:"temperature_c"`
	ProductionDate *time.Time `json:"production_date"`
}

var (
	ErrInvalidOwner         = errors.New("invalid_owner")
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidBiomass       = errors.New("invalid_biomass")
	ErrInvalidBiomassWeight = errors.New("invalid_biomass_weight")
	ErrInvalidBiocharWeight = errors.New("invalid_biochar_weight")
	ErrInvalidTemperature   = errors.New("invalid_temperature")
	ErrInvalidStatus        = errors.New("invalid_status")
	ErrInvalidTransition    = errors.New("invalid_transition")
	ErrNotCompleted         = errors.New("batch_not_completed")
	ErrNotFound             = errors.New("not_found")
)
