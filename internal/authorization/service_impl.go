package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/smallbiznis/agrichar/internal/ownercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	roleFarmer = "role:" + ownercontext.RoleFarmer
	roleAdmin  = "role:" + ownercontext.RoleAdmin
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

// Authorize checks the owner's role against the capability table. Record
// ownership is enforced separately by every query's owner_id filter.
func (s *ServiceImpl) Authorize(ctx context.Context, owner ownercontext.Owner, object string, action string) error {
	ownerID := strings.TrimSpace(owner.ID)
	if ownerID == "" {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	roleName, err := roleFor(owner.Role)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("user:%s", ownerID)
	if err := s.ensureGrouping(subject, roleName); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Info("authorization denied",
			zap.String("owner_id", ownerID),
			zap.String("role", roleName),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func roleFor(role string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "", ownercontext.RoleFarmer:
		return roleFarmer, nil
	case ownercontext.RoleAdmin:
		return roleAdmin, nil
	default:
		return "", ErrForbidden
	}
}

// ensureGrouping keeps exactly one role link per subject so a role change in
// the token takes effect on the next request.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	crud := []string{ActionView, ActionCreate, ActionUpdate, ActionDelete}
	objects := []string{
		ObjectParcel,
		ObjectBiomass,
		ObjectBiocharBatch,
		ObjectStorage,
		ObjectApplication,
		ObjectFertilizer,
	}

	policies := make([][]string, 0, len(objects)*len(crud)+8)
	for _, object := range objects {
		for _, action := range crud {
			policies = append(policies, []string{roleFarmer, object, action})
		}
	}
	policies = append(policies,
		[]string{roleFarmer, ObjectParcel, ActionParcelDeactivate},
		[]string{roleFarmer, ObjectBiocharBatch, ActionBatchComplete},
		[]string{roleFarmer, ObjectBiocharBatch, ActionBatchFail},
		[]string{roleFarmer, ObjectFertilizer, ActionFertilizerUse},
		[]string{roleFarmer, ObjectMovement, ActionView},
		[]string{roleFarmer, ObjectReport, ActionView},
		[]string{roleFarmer, ObjectReport, ActionReportExport},

		// Admin reviews proof documents
		[]string{roleAdmin, ObjectParcel, ActionParcelVerify},
	)

	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}

	has, err := enforcer.HasGroupingPolicy(roleAdmin, roleFarmer)
	if err != nil {
		return err
	}
	if !has {
		if _, err := enforcer.AddGroupingPolicy(roleAdmin, roleFarmer); err != nil {
			return err
		}
	}
	return nil
}
