package api

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mockline/scheduler/internal/intake"
	"github.com/mockline/scheduler/internal/meetings"
	"github.com/mockline/scheduler/internal/repo/models"
	"github.com/mockline/scheduler/internal/scheduling"
	"github.com/mockline/scheduler/pkg/errors"
	"github.com/mockline/scheduler/pkg/logger"
)

type Server interface {
	Serve(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

func NewServer(
	cfg Config,
	log logger.Logger,
	scheduler *scheduling.Scheduler,
	intake *intake.Service,
	provider meetings.Provider,
	slots models.SlotsRepo,
	interviews models.InterviewsRepo,
) Server {
	serveLog := log.With("api_http_server")

	fiberCfg := fiber.Config{
		ReadTimeout:             cfg.HTTP.ReadTimeout,
		WriteTimeout:            cfg.HTTP.WriteTimeout,
		IdleTimeout:             cfg.HTTP.IdleTimeout,
		DisableStartupMessage:   true,
		EnableTrustedProxyCheck: true,
		ProxyHeader:             cfg.Proxy.Header,
		TrustedProxies:          cfg.Proxy.Trusted,
	}

	fiberCfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
		serveLog.Warn(errors.WrapFail(err, "handle http request"))
		return c.Status(http.StatusInternalServerError).JSON(errorBody{Error: "internal error"})
	}

	s := &server{
		scheduler:  scheduler,
		intake:     intake,
		provider:   provider,
		slots:      slots,
		interviews: interviews,
		http:       fiber.New(fiberCfg),
		addr:       cfg.HTTP.Addr,
		log:        serveLog,
	}

	s.setupRoutes()

	return s
}

type server struct {
	scheduler  *scheduling.Scheduler
	intake     *intake.Service
	provider   meetings.Provider
	slots      models.SlotsRepo
	interviews models.InterviewsRepo

	http *fiber.App
	addr string
	log  logger.Logger
}

func (s *server) Serve(ctx context.Context) error {
	errCh := make(chan error)
	go func() { errCh <- s.http.Listen(s.addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return errors.Error("serve context done")
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return errors.WrapFail(s.http.ShutdownWithContext(ctx), "shutdown http server")
}

func (s *server) setupRoutes() {
	s.http.Post("/slots", s.handleCreateSlot)
	s.http.Post("/slots/bulk", s.handleCreateSlotsBulk)
	s.http.Get("/slots", s.handleListSlots)
	s.http.Delete("/slots/:id", s.handleDeleteSlot)

	s.http.Post("/interviews", s.handleCreateInterview)
	s.http.Get("/interviews/:id", s.handleGetInterview)
	s.http.Get("/interviews/:id/meeting", s.handleGetMeeting)
	s.http.Get("/interviews", s.handleListInterviews)
	s.http.Delete("/interviews/:id", s.handleDeleteInterview)

	s.http.Post("/interviews/:id/assign", s.handleAssign)
	s.http.Post("/interviews/:id/confirm", s.handleConfirm)
	s.http.Post("/interviews/:id/cancel", s.handleCancel)
	s.http.Post("/interviews/:id/complete", s.handleComplete)
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *server) sendError(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(errorBody{Error: msg})
}
