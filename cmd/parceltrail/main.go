package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/parceltrail/parceltrail/internal/auth"
	"github.com/parceltrail/parceltrail/internal/auth/session"
	"github.com/parceltrail/parceltrail/internal/config"
	"github.com/parceltrail/parceltrail/internal/db"
	"github.com/parceltrail/parceltrail/internal/invitation"
	"github.com/parceltrail/parceltrail/internal/migration"
	"github.com/parceltrail/parceltrail/internal/observability"
	"github.com/parceltrail/parceltrail/internal/organization"
	"github.com/parceltrail/parceltrail/internal/providers/email"
	"github.com/parceltrail/parceltrail/internal/ratelimit"
	"github.com/parceltrail/parceltrail/internal/server"
	"github.com/parceltrail/parceltrail/internal/shipment"
	"github.com/parceltrail/parceltrail/internal/signup"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		migration.Module,

		auth.Module,
		session.Module,
		organization.Module,
		shipment.Module,
		invitation.Module,
		signup.Module,
		email.Module,
		ratelimit.Module,

		server.Module,
	)
	app.Run()
}

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
