package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/smallbiznis/workhub/internal/authorization"
	invoicedomain "github.com/smallbiznis/workhub/internal/invoice/domain"
	onboardingdomain "github.com/smallbiznis/workhub/internal/onboarding/domain"
	paymentmethoddomain "github.com/smallbiznis/workhub/internal/paymentmethod/domain"
	plandomain "github.com/smallbiznis/workhub/internal/plan/domain"
	principaldomain "github.com/smallbiznis/workhub/internal/principal/domain"
	referraldomain "github.com/smallbiznis/workhub/internal/referral/domain"
	"github.com/smallbiznis/workhub/internal/scope"
	settingsdomain "github.com/smallbiznis/workhub/internal/settings/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

// domainValidation lists the domain errors reported as 400 with the field
// and message shown to the caller.
var domainValidation = []struct {
	err     error
	field   string
	message string
}{
	{settingsdomain.ErrInvalidKey, "key", "setting key is required"},
	{paymentmethoddomain.ErrUnknownField, "fields", "unknown payment field"},
	{plandomain.ErrInvalidBillingCycle, "billing_cycle", "billing cycle must be monthly or yearly"},
	{plandomain.ErrPlanDisabled, "plan_id", "plan is not available"},
	{plandomain.ErrInvalidUser, "user_id", "unknown account"},
	{invoicedomain.ErrInvalidAmount, "amount", "amount must be positive"},
	{invoicedomain.ErrInvalidTaxRate, "tax_rate", "tax rate must be between 0 and 100"},
	{invoicedomain.ErrInvalidDueDate, "due_date", "due date must not precede the issue date"},
	{invoicedomain.ErrInvalidCustomer, "customer_name", "customer name is required"},
	{invoicedomain.ErrInvalidDescription, "description", "item description is required"},
	{invoicedomain.ErrOverpayment, "amount", "payment exceeds the balance due"},
	{referraldomain.ErrInsufficientBalance, "amount", "amount exceeds the available referral balance"},
	{referraldomain.ErrBelowThreshold, "amount", "amount is below the payout threshold"},
	{referraldomain.ErrInvalidAmount, "amount", "amount must be positive"},
	{referraldomain.ErrInvalidPercentage, "commission_percentage", "commission percentage must be between 0 and 100"},
	{referraldomain.ErrInvalidCompany, "company_id", "unknown company"},
	{onboardingdomain.ErrInvalidReferralCode, "referral_code", "referral code does not exist"},
	{principaldomain.ErrInvalidEmail, "email", "invalid email"},
	{principaldomain.ErrInvalidName, "name", "invalid name"},
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		if status == http.StatusTooManyRequests && c.Writer.Header().Get("Retry-After") == "" {
			c.Header("Retry-After", "1")
		}
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

// bindError converts gin binding failures into field level validation errors.
func bindError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return fromFieldErrors(fieldErrs)
	}
	return invalidRequestError()
}

func fromFieldErrors(fieldErrs validator.ValidationErrors) *ValidationErrors {
	out := &ValidationErrors{Errors: make([]ValidationError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Errors = append(out.Errors, ValidationError{
			Field:   toSnake(fe.Field()),
			Code:    fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "invalid value"
	}
}

func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, validationPayload(vErr.Errors)
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return http.StatusBadRequest, validationPayload(fromFieldErrors(fieldErrs).Errors)
	}

	var cfgErr *paymentmethoddomain.ValidationError
	if errors.As(err, &cfgErr) {
		items := make([]ValidationError, 0, len(cfgErr.Errors))
		for _, msg := range cfgErr.Errors {
			items = append(items, ValidationError{Field: cfgErr.Method, Code: "invalid_payment_config", Message: msg})
		}
		return http.StatusBadRequest, validationPayload(items)
	}

	for _, v := range domainValidation {
		if errors.Is(err, v.err) {
			return http.StatusBadRequest, validationPayload([]ValidationError{
				{Field: v.field, Code: v.err.Error(), Message: v.message},
			})
		}
	}
	if errors.Is(err, ErrInvalidRequest) || errors.Is(err, onboardingdomain.ErrInvalidRequest) {
		return http.StatusBadRequest, validationPayload([]ValidationError{
			{Field: "request", Code: "invalid_request", Message: "invalid request"},
		})
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, scope.ErrUnresolved),
		errors.Is(err, settingsdomain.ErrPrincipalUnresolved),
		errors.Is(err, paymentmethoddomain.ErrPrincipalUnresolved),
		errors.Is(err, invoicedomain.ErrPrincipalRequired):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, authorization.ErrInvalidActor):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func validationPayload(items []ValidationError) errorPayload {
	return errorPayload{
		Type:    "validation_error",
		Message: "validation error",
		Errors:  items,
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, principaldomain.ErrEmailTaken),
		errors.Is(err, plandomain.ErrOrderNotPending),
		errors.Is(err, invoicedomain.ErrInvoiceLocked),
		errors.Is(err, referraldomain.ErrInvalidStatus),
		errors.Is(err, referraldomain.ErrPayoutInProgress):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, principaldomain.ErrEmailTaken):
		return "email already registered"
	case errors.Is(err, plandomain.ErrOrderNotPending):
		return "order is no longer pending"
	case errors.Is(err, invoicedomain.ErrInvoiceLocked):
		return "invoice is paid or cancelled"
	case errors.Is(err, referraldomain.ErrInvalidStatus):
		return "payout was already reviewed"
	case errors.Is(err, referraldomain.ErrPayoutInProgress):
		return "another payout request is in progress"
	default:
		return "conflict"
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, principaldomain.ErrNotFound),
		errors.Is(err, principaldomain.ErrWorkspaceMissing),
		errors.Is(err, paymentmethoddomain.ErrUnknownMethod),
		errors.Is(err, plandomain.ErrPlanNotFound),
		errors.Is(err, plandomain.ErrOrderNotFound),
		errors.Is(err, plandomain.ErrCouponNotFound),
		errors.Is(err, invoicedomain.ErrInvoiceNotFound),
		errors.Is(err, invoicedomain.ErrItemNotFound),
		errors.Is(err, referraldomain.ErrPayoutNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// classifyErrorForLog returns the response type and a stable code for request logs.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	} else if payload.Type != "internal_error" {
		code = strings.SplitN(err.Error(), ":", 2)[0]
	}
	return payload.Type, code
}
