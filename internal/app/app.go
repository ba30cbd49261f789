// Package app assembles the reservation service from its configuration.
package app

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/myceliumAI/polypore/internal/config"
	"github.com/myceliumAI/polypore/internal/events"
	"github.com/myceliumAI/polypore/internal/middleware"
	"github.com/myceliumAI/polypore/internal/modules/dashboard"
	"github.com/myceliumAI/polypore/internal/modules/inventory"
	"github.com/myceliumAI/polypore/internal/modules/live"
	"github.com/myceliumAI/polypore/internal/modules/reservation"
	"github.com/myceliumAI/polypore/internal/modules/shoot"
	"github.com/myceliumAI/polypore/internal/modules/sweep"
	"github.com/myceliumAI/polypore/internal/pkg/clock"
	jwtsvc "github.com/myceliumAI/polypore/internal/pkg/jwt"
	"github.com/myceliumAI/polypore/internal/repository"
)

type App struct {
	cfg     *config.Config
	db      *gorm.DB
	JWT     *jwtsvc.Service
	Hub     *live.Hub
	Events  *events.Fanout
	Sweeper *sweep.Sweeper

	reservations *reservation.Handler
	inventory    *inventory.Handler
	shoots       *shoot.Handler
	dashboard    *dashboard.Handler
	live         *live.Handler
}

// New wires repositories, services and handlers. Brokers that fail to connect are
// logged and skipped; the websocket hub is always present.
func New(cfg *config.Config, db *gorm.DB, clk clock.Clock) *App {
	if clk == nil {
		clk = clock.Real{}
	}

	hub := live.NewHub()
	sinks := []events.Sink{hub}
	if cfg.AMQPURL != "" {
		if s, err := events.NewAMQPSink(cfg.AMQPURL, cfg.AMQPExchange); err != nil {
			log.Printf("amqp_sink_disabled error=%q", err.Error())
		} else {
			sinks = append(sinks, s)
		}
	}
	if len(cfg.KafkaBrokers) > 0 {
		sinks = append(sinks, events.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic))
	}
	fanout := events.NewFanout(sinks...)

	itemRepo := repository.NewItemRepository(db)
	shootRepo := repository.NewShootRepository(db)
	reservationRepo := repository.NewReservationRepository(db, cfg.TxMaxRetries)

	reservationService := reservation.NewService(reservationRepo, fanout, clk)
	inventoryService := inventory.NewService(itemRepo, reservationRepo, clk)
	shootService := shoot.NewService(shootRepo, reservationRepo, itemRepo, fanout, clk)
	dashboardService := dashboard.NewService(itemRepo, shootRepo, reservationRepo, clk)

	return &App{
		cfg:     cfg,
		db:      db,
		JWT:     jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL),
		Hub:     hub,
		Events:  fanout,
		Sweeper: sweep.NewSweeper(reservationRepo, fanout, clk),

		reservations: reservation.NewHandler(reservationService),
		inventory:    inventory.NewHandler(inventoryService),
		shoots:       shoot.NewHandler(shootService),
		dashboard:    dashboard.NewHandler(dashboardService, cfg.TimelineDefaultDays),
		live:         live.NewHandler(hub, cfg.CORSAllowedOrigins),
	}
}

func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorLogger(), middleware.CORS(a.cfg.CORSAllowedOrigins))

	r.GET("/healthz", a.health)

	v1 := r.Group("/api/v1")
	{
		a.inventory.RegisterPublicRoutes(v1)
		a.shoots.RegisterPublicRoutes(v1)
		a.reservations.RegisterPublicRoutes(v1)
		a.dashboard.RegisterRoutes(v1)
		a.live.RegisterRoutes(v1)

		operator := v1.Group("")
		operator.Use(middleware.JWTAuth(a.JWT), middleware.OperatorOnly())
		{
			a.inventory.RegisterOperatorRoutes(operator)
			a.shoots.RegisterOperatorRoutes(operator)
			a.reservations.RegisterOperatorRoutes(operator)
		}
	}
	return r
}

// StartSweep runs the expiry sweep in the background per configuration.
func (a *App) StartSweep(ctx context.Context) (stop func()) {
	return a.Sweeper.Schedule(ctx, sweep.Config{
		Interval: a.cfg.SweepInterval,
		Enabled:  a.cfg.SweepEnabled,
	})
}

// Close shuts down event sinks, which disconnects websocket subscribers.
func (a *App) Close() error {
	return a.Events.Close()
}

func (a *App) health(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
