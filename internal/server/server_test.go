package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/workhub/internal/authorization"
	"github.com/smallbiznis/workhub/internal/clock"
	"github.com/smallbiznis/workhub/internal/config"
	invoicedomain "github.com/smallbiznis/workhub/internal/invoice/domain"
	"github.com/smallbiznis/workhub/internal/observability"
	principaldomain "github.com/smallbiznis/workhub/internal/principal/domain"
	principalrepo "github.com/smallbiznis/workhub/internal/principal/repository"
	referraldomain "github.com/smallbiznis/workhub/internal/referral/domain"
	"github.com/smallbiznis/workhub/internal/scope"
	settingsdomain "github.com/smallbiznis/workhub/internal/settings/domain"
	settingsrepo "github.com/smallbiznis/workhub/internal/settings/repository"
	settingsservice "github.com/smallbiznis/workhub/internal/settings/service"
	dbpkg "github.com/smallbiznis/workhub/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAuthz struct {
	deny map[string]bool
}

func (f *fakeAuthz) Authorize(ctx context.Context, actor *principaldomain.User, object string, action string) error {
	if f.deny[action] {
		return authorization.ErrForbidden
	}
	return nil
}

type fakeReferralService struct {
	referraldomain.Service

	payoutErr error
	company   snowflake.ID
}

func (f *fakeReferralService) RequestPayout(ctx context.Context, companyID snowflake.ID, amount decimal.Decimal) (*referraldomain.PayoutRequest, error) {
	f.company = companyID
	if f.payoutErr != nil {
		return nil, f.payoutErr
	}
	return &referraldomain.PayoutRequest{ID: 1, CompanyID: companyID, Amount: amount, Status: referraldomain.PayoutStatusPending}, nil
}

type fakeInvoiceService struct {
	invoicedomain.Service

	invoice *invoicedomain.Invoice
}

func (f *fakeInvoiceService) Get(ctx context.Context, sc scope.Scope, id snowflake.ID) (*invoicedomain.Invoice, error) {
	if f.invoice == nil || f.invoice.ID != id {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return f.invoice, nil
}

type testServer struct {
	engine     *gin.Engine
	node       *snowflake.Node
	principals principaldomain.Repository
	settings   settingsdomain.Service
	authz      *fakeAuthz
	referrals  *fakeReferralService
	invoices   *fakeInvoiceService
	clock      *clock.FakeClock
	operator   *principaldomain.User
	tenant     *principaldomain.User
	workspace  *principaldomain.Workspace
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&principaldomain.User{}, &principaldomain.Workspace{}, &settingsdomain.Setting{}))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.Config{Mode: config.ModeSaaS, Installed: true}
	principals := principalrepo.NewRepository(db)
	settings := settingsservice.NewService(settingsservice.ServiceParams{
		Log:        zap.NewNop(),
		Cfg:        cfg,
		DB:         db,
		GenID:      node,
		Repo:       settingsrepo.NewRepository(db),
		Principals: principals,
		Defaults:   settingsservice.NewDefaultsProvider(config.NewStaticOverlay(nil)),
	})

	ctx := context.Background()
	op := &principaldomain.User{ID: node.Generate(), Name: "Operator", Email: "op@example.com", Type: principaldomain.UserTypeSuperAdmin, IsActive: true}
	require.NoError(t, principals.CreateUser(ctx, op))
	tenant := &principaldomain.User{ID: node.Generate(), Name: "Tenant", Email: "tenant@example.com", Type: principaldomain.UserTypeCompany, IsActive: true}
	require.NoError(t, principals.CreateUser(ctx, tenant))
	ws := &principaldomain.Workspace{ID: node.Generate(), Name: "Default", Slug: "default", CreatedBy: tenant.ID, IsActive: true}
	require.NoError(t, principals.CreateWorkspace(ctx, ws))
	require.NoError(t, principals.SetCurrentWorkspace(ctx, tenant.ID, ws.ID))

	engine := NewEngine(observability.Config{}, nil, prometheus.NewRegistry())
	authz := &fakeAuthz{deny: map[string]bool{}}
	referrals := &fakeReferralService{}
	invoices := &fakeInvoiceService{}
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	NewServer(ServerParams{
		Gin:         engine,
		Cfg:         cfg,
		Log:         zap.NewNop(),
		Principals:  principals,
		Scopes:      scope.NewResolver(scope.ResolverParams{Log: zap.NewNop(), Cfg: cfg, Repo: principals}),
		AuthzSvc:    authz,
		SettingsSvc: settings,
		ReferralSvc: referrals,
		InvoiceSvc:  invoices,
		Clock:       clk,
	})

	return &testServer{
		engine:     engine,
		node:       node,
		principals: principals,
		settings:   settings,
		authz:      authz,
		referrals:  referrals,
		invoices:   invoices,
		clock:      clk,
		operator:   op,
		tenant:     tenant,
		workspace:  ws,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAnonymousSettingsResolveToOperator(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	_, err := ts.settings.Update(ctx, scope.Scope{PrincipalID: ts.operator.ID, Operator: true}, settingsdomain.UpdateRequest{Key: "title_text", Value: "Platform"})
	require.NoError(t, err)

	rec := ts.do(t, http.MethodGet, "/api/settings", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"title_text": "Platform"}, decodeBody(t, rec)["data"])

	rec = ts.do(t, http.MethodGet, "/api/settings/dateFormat", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Y-m-d", decodeBody(t, rec)["data"].(map[string]any)["value"])

	rec = ts.do(t, http.MethodGet, "/api/settings/no_such_key", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTenantUpdatesWorkspaceSettings(t *testing.T) {
	ts := newTestServer(t)
	headers := map[string]string{HeaderPrincipal: ts.tenant.ID.String()}

	rec := ts.do(t, http.MethodPut, "/api/settings", map[string]any{
		"values": map[string]string{"color": "theme-4"},
	}, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := ts.settings.Resolve(context.Background(), scope.For(ts.tenant.ID, ts.workspace.ID))
	assert.Equal(t, "theme-4", got["color"])

	rec = ts.do(t, http.MethodGet, "/api/settings", nil, headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"color": "theme-4"}, decodeBody(t, rec)["data"])
}

func TestUpdateSettingsRequiresPrincipal(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/settings", map[string]any{"values": map[string]string{"color": "x"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/settings", map[string]any{"values": map[string]string{"color": "x"}},
		map[string]string{HeaderPrincipal: "not-a-number"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthorizationDenied(t *testing.T) {
	ts := newTestServer(t)
	ts.authz.deny[authorization.ActionSettingUpdate] = true

	rec := ts.do(t, http.MethodPut, "/api/settings", map[string]any{"values": map[string]string{"color": "x"}},
		map[string]string{HeaderPrincipal: ts.tenant.ID.String()})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decodeBody(t, rec)["error"].(map[string]any)["type"])
}

func TestForeignWorkspaceRejected(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	other := &principaldomain.User{ID: ts.node.Generate(), Name: "Other", Email: "other@example.com", Type: principaldomain.UserTypeCompany, IsActive: true}
	require.NoError(t, ts.principals.CreateUser(ctx, other))
	foreign := &principaldomain.Workspace{ID: ts.node.Generate(), Name: "Theirs", Slug: "theirs", CreatedBy: other.ID, IsActive: true}
	require.NoError(t, ts.principals.CreateWorkspace(ctx, foreign))

	rec := ts.do(t, http.MethodGet, "/api/settings", nil, map[string]string{
		HeaderPrincipal: ts.tenant.ID.String(),
		HeaderWorkspace: foreign.ID.String(),
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPayoutErrorsAreValidationErrors(t *testing.T) {
	ts := newTestServer(t)
	headers := map[string]string{HeaderPrincipal: ts.tenant.ID.String()}

	ts.referrals.payoutErr = referraldomain.ErrBelowThreshold
	rec := ts.do(t, http.MethodPost, "/api/referral/payouts", map[string]any{"amount": "10"}, headers)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)["error"].(map[string]any)
	assert.Equal(t, "validation_error", body["type"])
	first := body["errors"].([]any)[0].(map[string]any)
	assert.Equal(t, "amount", first["field"])
	assert.Equal(t, "payout_below_threshold", first["code"])

	ts.referrals.payoutErr = nil
	rec = ts.do(t, http.MethodPost, "/api/referral/payouts", map[string]any{"amount": "60"}, headers)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, ts.tenant.ID, ts.referrals.company)
}

func TestHealthAndFallback(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody(t, rec)["error"].(map[string]any)["type"])
}

func TestInvoiceResponseCarriesDerivedFields(t *testing.T) {
	ts := newTestServer(t)
	inv := &invoicedomain.Invoice{
		ID:          ts.node.Generate(),
		TenantID:    ts.tenant.ID,
		TotalAmount: decimal.NewFromInt(83),
		PaidAmount:  decimal.NewFromInt(40),
		Status:      invoicedomain.InvoiceStatusPartial,
		DueDate:     ts.clock.Now().Add(-time.Hour),
	}
	ts.invoices.invoice = inv

	rec := ts.do(t, http.MethodGet, "/api/invoices/"+inv.ID.String(), nil, map[string]string{HeaderPrincipal: ts.tenant.ID.String()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "43", data["balance_due"])
	assert.Equal(t, true, data["is_overdue"])
	assert.Equal(t, "partial", data["status"])

	ts.clock.Advance(-48 * time.Hour)
	rec = ts.do(t, http.MethodGet, "/api/invoices/"+inv.ID.String(), nil, map[string]string{HeaderPrincipal: ts.tenant.ID.String()})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["data"].(map[string]any)["is_overdue"])
}
