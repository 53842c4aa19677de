package authorization

import (
	"context"
	"errors"

	"github.com/smallbiznis/agrichar/internal/ownercontext"
)

const (
	ObjectParcel       = "parcel"
	ObjectBiomass      = "biomass"
	ObjectBiocharBatch = "biochar_batch"
	ObjectStorage      = "storage"
	ObjectApplication  = "application"
	ObjectFertilizer   = "fertilizer"
	ObjectMovement     = "movement"
	ObjectReport       = "report"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	ActionParcelVerify     = "parcel.verify"
	ActionParcelDeactivate = "parcel.deactivate"
	ActionBatchComplete    = "biochar_batch.complete"
	ActionBatchFail        = "biochar_batch.fail"
	ActionFertilizerUse    = "fertilizer.use"
	ActionReportExport     = "report.export"
)

type Service interface {
	Authorize(ctx context.Context, owner ownercontext.Owner, object string, action string) error
}

var (
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrForbidden     = errors.New("forbidden")
)
