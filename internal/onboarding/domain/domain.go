package domain

import (
	"context"
	"errors"

	principaldomain "github.com/smallbiznis/workhub/internal/principal/domain"
)

const DefaultWorkspaceName = "Default"

type CreateTenantRequest struct {
	Name          string `json:"name" binding:"required,max=255" validate:"required,max=255"`
	Email         string `json:"email" binding:"required,email" validate:"required,email"`
	WorkspaceName string `json:"workspace_name" binding:"omitempty,max=255" validate:"omitempty,max=255"`
	ReferralCode  string `json:"referral_code" binding:"omitempty,max=64" validate:"omitempty,max=64"`
}

type Result struct {
	Tenant    *principaldomain.User      `json:"tenant"`
	Workspace *principaldomain.Workspace `json:"workspace"`
}

type Service interface {
	// CreateTenant creates a company principal with its default workspace
	// and seeds the workspace settings from the operator.
	CreateTenant(ctx context.Context, req CreateTenantRequest) (*Result, error)
}

var (
	ErrInvalidRequest      = errors.New("invalid_request")
	ErrInvalidReferralCode = errors.New("invalid_referral_code")
)
