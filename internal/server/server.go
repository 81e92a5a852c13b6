package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	authdomain "github.com/parceltrail/parceltrail/internal/auth/domain"
	"github.com/parceltrail/parceltrail/internal/auth/session"
	"github.com/parceltrail/parceltrail/internal/config"
	invitationdomain "github.com/parceltrail/parceltrail/internal/invitation/domain"
	"github.com/parceltrail/parceltrail/internal/observability"
	obslogger "github.com/parceltrail/parceltrail/internal/observability/logger"
	obstracing "github.com/parceltrail/parceltrail/internal/observability/tracing"
	orgdomain "github.com/parceltrail/parceltrail/internal/organization/domain"
	"github.com/parceltrail/parceltrail/internal/ratelimit"
	shipmentdomain "github.com/parceltrail/parceltrail/internal/shipment/domain"
	signupdomain "github.com/parceltrail/parceltrail/internal/signup/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
	engine          *gin.Engine
	cfg             config.Config
	sessions        *session.Manager
	limiter         *ratelimit.TokenBucket
	authsvc         authdomain.Service
	organizationSvc orgdomain.Service
	shipmentSvc     shipmentdomain.Service
	invitationSvc   invitationdomain.Service
	signupsvc       signupdomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Sessions        *session.Manager
	Limiter         *ratelimit.TokenBucket `optional:"true"`
	Authsvc         authdomain.Service
	OrganizationSvc orgdomain.Service
	ShipmentSvc     shipmentdomain.Service
	InvitationSvc   invitationdomain.Service
	Signupsvc       signupdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		sessions:        p.Sessions,
		limiter:         p.Limiter,
		authsvc:         p.Authsvc,
		organizationSvc: p.OrganizationSvc,
		shipmentSvc:     p.ShipmentSvc,
		invitationSvc:   p.InvitationSvc,
		signupsvc:       p.Signupsvc,
	}

	svc.registerAuthRoutes()
	svc.registerShipmentRoutes()
	svc.registerMemberRoutes()
	svc.registerPublicRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/signup", s.Signup)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
	auth.POST("/change-password", s.AuthRequired(), s.ChangePassword)
}

func (s *Server) registerShipmentRoutes() {
	shipments := s.engine.Group("/shipments", s.AuthRequired())
	shipments.POST("", s.CreateShipment)
	shipments.GET("", s.ListShipments)
	shipments.POST("/:id/events", s.AddTravelEvent)

	events := s.engine.Group("/events", s.AuthRequired())
	events.PUT("/:id", s.UpdateTravelEvent)
	events.DELETE("/:id", s.DeleteTravelEvent)
}

func (s *Server) registerMemberRoutes() {
	users := s.engine.Group("/users", s.AuthRequired())
	users.GET("", s.ListUsers)
	users.POST("/invite", s.RequireOwner(), s.InviteUser)
	users.DELETE("/:id", s.RequireOwner(), s.RemoveUser)

	invitations := s.engine.Group("/invitations")
	invitations.GET("", s.AuthRequired(), s.RequireOwner(), s.ListInvitations)
	invitations.POST("/:id/resend", s.AuthRequired(), s.RequireOwner(), s.ResendInvitation)
	invitations.DELETE("/:id", s.AuthRequired(), s.RequireOwner(), s.CancelInvitation)

	// Token-based acceptance is unauthenticated: the invitee has no account
	// yet. The wildcard carries the token here, not a snowflake id.
	invitations.POST("/:id/accept", s.RateLimited(), s.AcceptInvitation)
}

func (s *Server) registerPublicRoutes() {
	s.engine.GET("/track/:trackingNumber", s.RateLimited(), s.Track)
}
