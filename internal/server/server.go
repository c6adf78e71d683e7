package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/workhub/internal/authorization"
	"github.com/smallbiznis/workhub/internal/clock"
	"github.com/smallbiznis/workhub/internal/config"
	invoicedomain "github.com/smallbiznis/workhub/internal/invoice/domain"
	"github.com/smallbiznis/workhub/internal/observability"
	obsmiddleware "github.com/smallbiznis/workhub/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/workhub/internal/observability/metrics"
	obstracing "github.com/smallbiznis/workhub/internal/observability/tracing"
	onboardingdomain "github.com/smallbiznis/workhub/internal/onboarding/domain"
	paymentmethoddomain "github.com/smallbiznis/workhub/internal/paymentmethod/domain"
	plandomain "github.com/smallbiznis/workhub/internal/plan/domain"
	principaldomain "github.com/smallbiznis/workhub/internal/principal/domain"
	"github.com/smallbiznis/workhub/internal/ratelimit"
	referraldomain "github.com/smallbiznis/workhub/internal/referral/domain"
	"github.com/smallbiznis/workhub/internal/scope"
	settingsdomain "github.com/smallbiznis/workhub/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, gatherer prometheus.Gatherer) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics, gatherer)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	log            *zap.Logger
	principals     principaldomain.Repository
	scopes         ScopeResolver
	authzSvc       authorization.Service
	settingsSvc    settingsdomain.Service
	paymentSvc     paymentmethoddomain.Service
	planSvc        plandomain.Service
	invoiceSvc     invoicedomain.Service
	referralSvc    referraldomain.Service
	onboardingSvc  onboardingdomain.Service
	billingLimiter *ratelimit.BillingLimiter
	obsMetrics     *obsmetrics.Metrics
	clock          clock.Clock
}

// ScopeResolver turns the caller into the settings scope of the request.
type ScopeResolver interface {
	Resolve(ctx context.Context, req scope.Request) (scope.Scope, error)
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Log            *zap.Logger
	Principals     principaldomain.Repository
	Scopes         *scope.Resolver
	AuthzSvc       authorization.Service
	SettingsSvc    settingsdomain.Service
	PaymentSvc     paymentmethoddomain.Service
	PlanSvc        plandomain.Service
	InvoiceSvc     invoicedomain.Service
	ReferralSvc    referraldomain.Service
	OnboardingSvc  onboardingdomain.Service
	BillingLimiter *ratelimit.BillingLimiter `optional:"true"`
	ObsMetrics     *obsmetrics.Metrics       `optional:"true"`
	Clock          clock.Clock               `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            p.Log.Named("http.server"),
		principals:     p.Principals,
		scopes:         p.Scopes,
		authzSvc:       p.AuthzSvc,
		settingsSvc:    p.SettingsSvc,
		paymentSvc:     p.PaymentSvc,
		planSvc:        p.PlanSvc,
		invoiceSvc:     p.InvoiceSvc,
		referralSvc:    p.ReferralSvc,
		onboardingSvc:  p.OnboardingSvc,
		billingLimiter: p.BillingLimiter,
		obsMetrics:     p.ObsMetrics,
		clock:          p.Clock,
	}
	if svc.clock == nil {
		svc.clock = clock.SystemClock{}
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.PrincipalContext())

	// -------- Settings --------
	// Reads fall back to the operator or single tenant for anonymous callers.
	api.GET("/settings", s.GetSettings)
	api.GET("/settings/:key", s.GetSetting)
	api.PUT("/settings", s.AuthRequired(), s.authorize(authorization.ObjectSetting, authorization.ActionSettingUpdate), s.UpdateSettings)

	// -------- Payment Methods --------
	pm := api.Group("/payment-methods", s.AuthRequired())
	{
		pm.GET("", s.authorize(authorization.ObjectPaymentSetting, authorization.ActionPaymentSettingView), s.ListPaymentMethods)
		pm.GET("/:method", s.authorize(authorization.ObjectPaymentSetting, authorization.ActionPaymentSettingView), s.GetPaymentMethod)
		pm.PUT("/:method", s.authorize(authorization.ObjectPaymentSetting, authorization.ActionPaymentSettingUpdate), s.UpdatePaymentMethod)
		pm.POST("/:method/validate", s.authorize(authorization.ObjectPaymentSetting, authorization.ActionPaymentSettingView), s.ValidatePaymentMethod)
	}

	// -------- Plans --------
	api.GET("/plans", s.AuthRequired(), s.authorize(authorization.ObjectPlan, authorization.ActionPlanView), s.ListPlans)
	api.POST("/plans/:id/pricing", s.AuthRequired(), s.authorize(authorization.ObjectPlan, authorization.ActionPlanView), s.PricingRateLimit(), s.CalculatePricing)
	api.POST("/plans/:id/orders", s.AuthRequired(), s.authorize(authorization.ObjectPlanOrder, authorization.ActionPlanOrderCreate), s.CreatePlanOrder)
	api.POST("/coupons/validate", s.AuthRequired(), s.authorize(authorization.ObjectPlan, authorization.ActionPlanView), s.PricingRateLimit(), s.ValidateCoupon)
	api.POST("/plan-orders/:id/succeed", s.AuthRequired(), s.authorize(authorization.ObjectPlanOrder, authorization.ActionPlanOrderComplete), s.CompletePlanOrder)
	api.POST("/plan-orders/:id/fail", s.AuthRequired(), s.authorize(authorization.ObjectPlanOrder, authorization.ActionPlanOrderComplete), s.FailPlanOrder)

	// -------- Invoices --------
	inv := api.Group("/invoices", s.AuthRequired())
	{
		inv.GET("", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.ListInvoices)
		inv.POST("", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceCreate), s.CreateInvoice)
		inv.GET("/:id", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.GetInvoiceByID)
		inv.GET("/:id/pdf", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.DownloadInvoicePDF)
		inv.POST("/:id/cancel", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceUpdate), s.CancelInvoice)
		inv.POST("/:id/items", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceUpdate), s.AddInvoiceItem)
		inv.PATCH("/:id/items/:itemId", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceUpdate), s.UpdateInvoiceItem)
		inv.DELETE("/:id/items/:itemId", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceUpdate), s.DeleteInvoiceItem)
		inv.POST("/:id/payments", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoicePay), s.RecordInvoicePayment)
	}

	// -------- Referral --------
	ref := api.Group("/referral", s.AuthRequired())
	{
		ref.GET("/balance", s.authorize(authorization.ObjectPayout, authorization.ActionPayoutView), s.GetReferralBalance)
		ref.GET("/payouts", s.authorize(authorization.ObjectPayout, authorization.ActionPayoutView), s.ListPayouts)
		ref.POST("/payouts", s.authorize(authorization.ObjectPayout, authorization.ActionPayoutRequest), s.RequestPayout)
		ref.GET("/settings", s.authorize(authorization.ObjectReferralSetting, authorization.ActionReferralSettingView), s.GetReferralSettings)
	}
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(s.PrincipalContext())
	admin.Use(s.AuthRequired())

	admin.POST("/tenants", s.authorize(authorization.ObjectTenant, authorization.ActionTenantCreate), s.CreateTenant)

	admin.POST("/referral/payouts/:id/approve", s.authorize(authorization.ObjectPayout, authorization.ActionPayoutReview), s.ApprovePayout)
	admin.POST("/referral/payouts/:id/reject", s.authorize(authorization.ObjectPayout, authorization.ActionPayoutReview), s.RejectPayout)
	admin.GET("/referral/settings", s.authorize(authorization.ObjectReferralSetting, authorization.ActionReferralSettingView), s.GetReferralSettings)
	admin.PUT("/referral/settings", s.authorize(authorization.ObjectReferralSetting, authorization.ActionReferralSettingUpdate), s.UpdateReferralSettings)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
