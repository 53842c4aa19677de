package domain

import (
	"context"
	"errors"
)

type Service interface {
	Summary(ctx context.Context) (*Summary, error)
	SummaryPDF(ctx context.Context) ([]byte, error)
	SummaryXLSX(ctx context.Context) ([]byte, error)
}

var (
	ErrInvalidOwner = errors.New("invalid_owner")
)
