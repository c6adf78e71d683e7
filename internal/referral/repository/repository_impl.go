package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	referraldomain "github.com/smallbiznis/workhub/internal/referral/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) referraldomain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) referraldomain.Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) SumReferrals(ctx context.Context, companyID snowflake.ID) (decimal.Decimal, error) {
	var out sumRow
	err := r.db.WithContext(ctx).
		Model(&referraldomain.Referral{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("company_id = ?", companyID).
		Scan(&out).Error
	if err != nil {
		return decimal.Zero, err
	}
	return out.Total, nil
}

func (r *repository) SumPayouts(ctx context.Context, companyID snowflake.ID, statuses []referraldomain.PayoutStatus) (decimal.Decimal, error) {
	var out sumRow
	stmt := r.db.WithContext(ctx).
		Model(&referraldomain.PayoutRequest{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("company_id = ?", companyID)
	if len(statuses) > 0 {
		stmt = stmt.Where("status IN ?", statuses)
	}
	if err := stmt.Scan(&out).Error; err != nil {
		return decimal.Zero, err
	}
	return out.Total, nil
}

func (r *repository) CreateReferral(ctx context.Context, ref *referraldomain.Referral) error {
	return r.db.WithContext(ctx).Create(ref).Error
}

func (r *repository) FindReferralByReferred(ctx context.Context, referredID snowflake.ID) (*referraldomain.Referral, error) {
	var row referraldomain.Referral
	err := r.db.WithContext(ctx).Where("referred_company_id = ?", referredID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) CreatePayout(ctx context.Context, p *referraldomain.PayoutRequest) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) FindPayout(ctx context.Context, id snowflake.ID) (*referraldomain.PayoutRequest, error) {
	var row referraldomain.PayoutRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListPayouts(ctx context.Context, companyID snowflake.ID) ([]referraldomain.PayoutRequest, error) {
	var rows []referraldomain.PayoutRequest
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) TransitionPayout(ctx context.Context, id snowflake.ID, status referraldomain.PayoutStatus, reviewer snowflake.ID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&referraldomain.PayoutRequest{}).
		Where("id = ? AND status = ?", id, referraldomain.PayoutStatusPending).
		Updates(map[string]any{
			"status":      status,
			"reviewed_by": reviewer,
			"reviewed_at": at,
			"updated_at":  at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) FindSettings(ctx context.Context) (*referraldomain.ReferralSetting, error) {
	var row referraldomain.ReferralSetting
	err := r.db.WithContext(ctx).Order("id ASC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) SaveSettings(ctx context.Context, s *referraldomain.ReferralSetting) error {
	return r.db.WithContext(ctx).Save(s).Error
}

type sumRow struct {
	Total decimal.Decimal
}
