package domain

import "errors"

var (
	ErrInsufficientBalance = errors.New("insufficient_referral_balance")
	ErrBelowThreshold      = errors.New("payout_below_threshold")
	ErrInvalidAmount       = errors.New("invalid_payout_amount")
	ErrInvalidCompany      = errors.New("invalid_company")
	ErrPayoutNotFound      = errors.New("payout_not_found")
	ErrInvalidStatus       = errors.New("invalid_payout_status")
	ErrPayoutInProgress    = errors.New("payout_in_progress")
	ErrInvalidPercentage   = errors.New("invalid_commission_percentage")
)
