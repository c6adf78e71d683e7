package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	principaldomain "github.com/smallbiznis/workhub/internal/principal/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectSetting         = "setting"
	ObjectPaymentSetting  = "payment_setting"
	ObjectPlan            = "plan"
	ObjectPlanOrder       = "plan_order"
	ObjectInvoice         = "invoice"
	ObjectPayout          = "payout"
	ObjectReferralSetting = "referral_setting"
	ObjectTenant          = "tenant"
)

const (
	ActionSettingView   = "setting.view"
	ActionSettingUpdate = "setting.update"

	ActionPaymentSettingView   = "payment_setting.view"
	ActionPaymentSettingUpdate = "payment_setting.update"

	ActionPlanView = "plan.view"

	ActionPlanOrderCreate   = "plan_order.create"
	ActionPlanOrderComplete = "plan_order.complete"

	ActionInvoiceView   = "invoice.view"
	ActionInvoiceCreate = "invoice.create"
	ActionInvoiceUpdate = "invoice.update"
	ActionInvoicePay    = "invoice.pay"

	ActionPayoutView    = "payout.view"
	ActionPayoutRequest = "payout.request"
	ActionPayoutReview  = "payout.review"

	ActionReferralSettingView   = "referral_setting.view"
	ActionReferralSettingUpdate = "referral_setting.update"

	ActionTenantCreate = "tenant.create"
)

const (
	RoleSuperAdmin = "role:superadmin"
	RoleCompany    = "role:company"
	RoleStaff      = "role:staff"
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

func (s *ServiceImpl) Authorize(ctx context.Context, actor *principaldomain.User, object string, action string) error {
	if actor == nil || actor.ID == 0 {
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

	subject := fmt.Sprintf("user:%s", actor.ID)
	domain, err := tenantDomain(actor)
	if err != nil {
		return err
	}
	if err := s.ensureGrouping(subject, roleFor(actor), domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Info("authorization denied",
			zap.String("subject", subject),
			zap.String("domain", domain),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

// tenantDomain is the tenant the actor acts for. Staff act for their creator.
func tenantDomain(actor *principaldomain.User) (string, error) {
	owner := actor.ID
	if actor.IsStaff() {
		if actor.CreatedBy == nil || *actor.CreatedBy == 0 {
			return "", ErrInvalidActor
		}
		owner = *actor.CreatedBy
	}
	return fmt.Sprintf("tenant:%s", owner), nil
}

func roleFor(actor *principaldomain.User) string {
	switch {
	case actor.IsOperator():
		return RoleSuperAdmin
	case actor.IsTenant():
		return RoleCompany
	default:
		return RoleStaff
	}
}

// ensureGrouping keeps exactly one role per subject and domain, so a
// principal whose type changed loses the previous role.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
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
			if _, err := s.enforcer.RemoveGroupingPolicy(params...); err != nil {
				return fmt.Errorf("remove grouping %s/%s: %w", subject, rule[1], err)
			}
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Platform operator
		{RoleSuperAdmin, ObjectSetting, ActionSettingView},
		{RoleSuperAdmin, ObjectSetting, ActionSettingUpdate},
		{RoleSuperAdmin, ObjectPaymentSetting, ActionPaymentSettingView},
		{RoleSuperAdmin, ObjectPaymentSetting, ActionPaymentSettingUpdate},
		{RoleSuperAdmin, ObjectPlan, ActionPlanView},
		{RoleSuperAdmin, ObjectPlanOrder, ActionPlanOrderComplete},
		{RoleSuperAdmin, ObjectPayout, ActionPayoutReview},
		{RoleSuperAdmin, ObjectReferralSetting, ActionReferralSettingView},
		{RoleSuperAdmin, ObjectReferralSetting, ActionReferralSettingUpdate},
		{RoleSuperAdmin, ObjectTenant, ActionTenantCreate},

		// Tenant owner
		{RoleCompany, ObjectSetting, ActionSettingView},
		{RoleCompany, ObjectSetting, ActionSettingUpdate},
		{RoleCompany, ObjectPaymentSetting, ActionPaymentSettingView},
		{RoleCompany, ObjectPaymentSetting, ActionPaymentSettingUpdate},
		{RoleCompany, ObjectPlan, ActionPlanView},
		{RoleCompany, ObjectPlanOrder, ActionPlanOrderCreate},
		{RoleCompany, ObjectInvoice, ActionInvoiceView},
		{RoleCompany, ObjectInvoice, ActionInvoiceCreate},
		{RoleCompany, ObjectInvoice, ActionInvoiceUpdate},
		{RoleCompany, ObjectInvoice, ActionInvoicePay},
		{RoleCompany, ObjectPayout, ActionPayoutView},
		{RoleCompany, ObjectPayout, ActionPayoutRequest},
		{RoleCompany, ObjectReferralSetting, ActionReferralSettingView},

		// Staff created by a tenant
		{RoleStaff, ObjectSetting, ActionSettingView},
		{RoleStaff, ObjectPaymentSetting, ActionPaymentSettingView},
		{RoleStaff, ObjectPlan, ActionPlanView},
		{RoleStaff, ObjectInvoice, ActionInvoiceView},
		{RoleStaff, ObjectInvoice, ActionInvoiceCreate},
		{RoleStaff, ObjectInvoice, ActionInvoiceUpdate},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
