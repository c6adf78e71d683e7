package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/workhub/internal/authorization"
	"github.com/smallbiznis/workhub/internal/clock"
	"github.com/smallbiznis/workhub/internal/config"
	"github.com/smallbiznis/workhub/internal/invoice"
	"github.com/smallbiznis/workhub/internal/migration"
	"github.com/smallbiznis/workhub/internal/observability"
	"github.com/smallbiznis/workhub/internal/onboarding"
	"github.com/smallbiznis/workhub/internal/paymentmethod"
	"github.com/smallbiznis/workhub/internal/plan"
	"github.com/smallbiznis/workhub/internal/principal"
	"github.com/smallbiznis/workhub/internal/ratelimit"
	"github.com/smallbiznis/workhub/internal/referral"
	"github.com/smallbiznis/workhub/internal/scope"
	"github.com/smallbiznis/workhub/internal/seed"
	"github.com/smallbiznis/workhub/internal/server"
	"github.com/smallbiznis/workhub/internal/settings"
	"github.com/smallbiznis/workhub/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		ratelimit.Module,

		// Functional Domains
		principal.Module,
		scope.Module,
		authorization.Module,
		settings.Module,
		paymentmethod.Module,
		referral.Module,
		plan.Module,
		invoice.Module,
		onboarding.Module,

		seed.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
