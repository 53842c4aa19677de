package service

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/agrichar/internal/clock"
	"github.com/smallbiznis/agrichar/internal/ownercontext"
	"github.com/smallbiznis/agrichar/internal/parcel/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("parcel.service"),
		repo:  p.Repo,
		genID: p.GenID,
		clock: clk,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Parcel, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.AreaHectares <= 0 {
		return nil, domain.ErrInvalidArea
	}
	if err := validateOptionalArea(req.CultivatedAreaHectares, req.AreaHectares); err != nil {
		return nil, err
	}

	documents, err := encodeDocumentURLs(req.DocumentURLs)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	p := &domain.Parcel{
		ID:                     s.genID.Generate().Int64(),
		OwnerID:                ownerID,
		Name:                   name,
		Location:               trimmedOrNil(req.Location),
		AreaHectares:           req.AreaHectares,
		CultivatedAreaHectares: req.CultivatedAreaHectares,
		ExpectedYieldTonnes:    nonNegativeOrNil(req.ExpectedYieldTonnes),
		ActualYieldTonnes:      nonNegativeOrNil(req.ActualYieldTonnes),
		SoilType:               trimmedOrNil(req.SoilType),
		DocumentURLs:           documents,
		Status:                 domain.StatusActive,
		VerificationStatus:     domain.VerificationPending,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if req.Metadata != nil {
		p.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Insert(ctx, s.db, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Parcel, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}

	filter := domain.ListRequest{
		Status:             strings.ToLower(strings.TrimSpace(req.Status)),
		VerificationStatus: strings.ToLower(strings.TrimSpace(req.VerificationStatus)),
		Name:               strings.ToLower(strings.TrimSpace(req.Name)),
	}
	if filter.Status != "" && !validStatus(filter.Status) {
		return nil, domain.ErrInvalidStatus
	}
	if filter.VerificationStatus != "" && !validVerificationStatus(filter.VerificationStatus) {
		return nil, domain.ErrInvalidVerificationStatus
	}

	return s.repo.List(ctx, s.db, ownerID, filter)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Parcel, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}
	parcelID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, ownerID, parcelID)
}

func (s *Service) Lookup(ctx context.Context, ownerID string, id int64) (*domain.Parcel, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, domain.ErrInvalidOwner
	}
	if id == 0 {
		return nil, domain.ErrInvalidID
	}
	return s.load(ctx, ownerID, id)
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Parcel, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}
	parcelID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	item, err := s.load(ctx, ownerID, parcelID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Location != nil {
		item.Location = trimmedOrNil(req.Location)
	}
	if req.AreaHectares != nil {
		if *req.AreaHectares <= 0 {
			return nil, domain.ErrInvalidArea
		}
		item.AreaHectares = *req.AreaHectares
	}
	if req.CultivatedAreaHectares != nil {
		item.CultivatedAreaHectares = req.CultivatedAreaHectares
	}
	if err := validateOptionalArea(item.CultivatedAreaHectares, item.AreaHectares); err != nil {
		return nil, err
	}
	if req.ExpectedYieldTonnes != nil {
		item.ExpectedYieldTonnes = nonNegativeOrNil(req.ExpectedYieldTonnes)
	}
	if req.ActualYieldTonnes != nil {
		item.ActualYieldTonnes = nonNegativeOrNil(req.ActualYieldTonnes)
	}
	if req.SoilType != nil {
		item.SoilType = trimmedOrNil(req.SoilType)
	}
	if req.DocumentURLs != nil {
		documents, err := encodeDocumentURLs(req.DocumentURLs)
		if err != nil {
			return nil, err
		}
		item.DocumentURLs = documents
	}
	if req.Metadata != nil {
		item.Metadata = datatypes.JSONMap(req.Metadata)
	}
	if req.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*req.Status))
		if !validStatus(status) {
			return nil, domain.ErrInvalidStatus
		}
		item.Status = status
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) (*domain.Parcel, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}
	parcelID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	item, err := s.load(ctx, ownerID, parcelID)
	if err != nil {
		return nil, err
	}
	if item.Status == domain.StatusInactive {
		return item, nil
	}

	item.Status = domain.StatusInactive
	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Verify records an administrator's review of a parcel's proof documents.
// Administrators may review parcels of any owner.
func (s *Service) Verify(ctx context.Context, req domain.VerifyRequest) (*domain.Parcel, error) {
	reviewer, ok := ownercontext.OwnerFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}
	if !reviewer.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	parcelID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != domain.VerificationVerified && status != domain.VerificationRejected {
		return nil, domain.ErrInvalidVerificationStatus
	}

	item, err := s.repo.FindAnyByID(ctx, s.db, parcelID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	now := s.clock.Now()
	item.VerificationStatus = status
	item.VerificationNote = trimmedOrNil(req.Note)
	item.VerifiedBy = &reviewer.ID
	item.VerifiedAt = &now
	item.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	s.log.Info("parcel reviewed",
		zap.Int64("parcel_id", item.ID),
		zap.String("owner_id", item.OwnerID),
		zap.String("verification_status", status),
		zap.String("reviewer", reviewer.ID),
	)
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidOwner
	}
	parcelID, err := parseID(id)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, s.db, ownerID, parcelID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) load(ctx context.Context, ownerID string, id int64) (*domain.Parcel, error) {
	item, err := s.repo.FindByID(ctx, s.db, ownerID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func parseID(id string) (int64, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return 0, domain.ErrInvalidID
	}
	return parsed.Int64(), nil
}

func validateOptionalArea(cultivated *float64, total float64) error {
	if cultivated == nil {
		return nil
	}
	if *cultivated < 0 || *cultivated > total {
		return domain.ErrInvalidArea
	}
	return nil
}

func encodeDocumentURLs(values []string) (datatypes.JSON, error) {
	urls := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		parsed, err := url.Parse(value)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return nil, domain.ErrInvalidDocumentURL
		}
		urls = append(urls, value)
	}
	raw, err := json.Marshal(urls)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func validStatus(status string) bool {
	return status == domain.StatusActive || status == domain.StatusInactive
}

func validVerificationStatus(status string) bool {
	switch status {
	case domain.VerificationPending, domain.VerificationVerified, domain.VerificationRejected:
		return true
	default:
		return false
	}
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func nonNegativeOrNil(value *float64) *float64 {
	if value == nil || *value < 0 {
		return nil
	}
	v := *value
	return &v
}
