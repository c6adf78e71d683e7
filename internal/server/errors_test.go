package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/smallbiznis/workhub/internal/authorization"
	invoicedomain "github.com/smallbiznis/workhub/internal/invoice/domain"
	paymentmethoddomain "github.com/smallbiznis/workhub/internal/paymentmethod/domain"
	plandomain "github.com/smallbiznis/workhub/internal/plan/domain"
	principaldomain "github.com/smallbiznis/workhub/internal/principal/domain"
	referraldomain "github.com/smallbiznis/workhub/internal/referral/domain"
	settingsdomain "github.com/smallbiznis/workhub/internal/settings/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"insufficient balance", referraldomain.ErrInsufficientBalance, http.StatusBadRequest, "validation_error"},
		{"wrapped overpayment", fmt.Errorf("record: %w", invoicedomain.ErrOverpayment), http.StatusBadRequest, "validation_error"},
		{"payment config", &paymentmethoddomain.ValidationError{Method: "stripe", Errors: []string{"Secret is required"}}, http.StatusBadRequest, "validation_error"},
		{"principal unresolved", settingsdomain.ErrPrincipalUnresolved, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", authorization.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"email taken", principaldomain.ErrEmailTaken, http.StatusConflict, "conflict"},
		{"order not pending", plandomain.ErrOrderNotPending, http.StatusConflict, "conflict"},
		{"locked invoice", invoicedomain.ErrInvoiceLocked, http.StatusConflict, "conflict"},
		{"unknown method", paymentmethoddomain.ErrUnknownMethod, http.StatusNotFound, "not_found"},
		{"plan missing", plandomain.ErrPlanNotFound, http.StatusNotFound, "not_found"},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, payload := mapError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.typ, payload.Type)
		})
	}
}

func TestPaymentConfigErrorListsMessages(t *testing.T) {
	_, payload := mapError(&paymentmethoddomain.ValidationError{Method: "paypal", Errors: []string{"Client ID is required", "Secret is required"}})
	assert.Len(t, payload.Errors, 2)
	assert.Equal(t, "Client ID is required", payload.Errors[0].Message)
}

func TestClassifyErrorForLog(t *testing.T) {
	typ, code := classifyErrorForLog(referraldomain.ErrBelowThreshold)
	assert.Equal(t, "validation_error", typ)
	assert.Equal(t, "payout_below_threshold", code)

	typ, code = classifyErrorForLog(plandomain.ErrOrderNotPending)
	assert.Equal(t, "conflict", typ)
	assert.Equal(t, "plan_order_not_pending", code)
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "billing_cycle", toSnake("BillingCycle"))
	assert.Equal(t, "name", toSnake("Name"))
}
