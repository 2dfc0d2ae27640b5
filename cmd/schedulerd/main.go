package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mockline/scheduler/internal/api"
	"github.com/mockline/scheduler/internal/intake"
	"github.com/mockline/scheduler/internal/meetings"
	"github.com/mockline/scheduler/internal/notify"
	"github.com/mockline/scheduler/internal/repo"
	"github.com/mockline/scheduler/internal/scheduling"
	"github.com/mockline/scheduler/pkg/errors"
	"github.com/mockline/scheduler/pkg/logger"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		stdlog.Panic(errors.WrapFail(err, "load config"))
	}

	log, err := logger.New(cfg.Environment)
	if err != nil {
		stdlog.Panic(errors.WrapFail(err, "init logger"))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGABRT)
	defer cancel()

	client, err := repo.NewMongoClient(ctx, cfg.Mongo)
	if err != nil {
		log.Panic(errors.WrapFail(err, "init mongo client"))
	}

	var provider meetings.Provider = meetings.Unconfigured{}
	if cfg.Meetings.Configured() {
		provider = meetings.NewZoomProvider(cfg.Meetings, log)
	} else {
		log.Warnf("meeting provider is not configured, interviews will be assigned without meetings")
	}

	var dispatcher notify.Dispatcher = notify.NewLogDispatcher(log)
	if cfg.Telegram.Token != "" {
		dispatcher, err = notify.NewTelegramDispatcher(cfg.Telegram, log)
		if err != nil {
			log.Panic(errors.WrapFail(err, "init telegram dispatcher"))
		}
	}

	scheduler := scheduling.New(client, provider, dispatcher, cfg.Meetings.Hosts, log)
	intakeSvc := intake.New(client.Interviews(), log)

	server := api.NewServer(cfg.API, log, scheduler, intakeSvc, provider, client.Slots(), client.Interviews())

	stopped := make(chan struct{})
	context.AfterFunc(ctx, func() {
		stdlog.Println("Graceful shutdown...")

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Warn(errors.WrapFail(err, "shutdown server"))
		}

		err = client.Close(shutdownCtx)
		if err != nil {
			log.Warn(errors.WrapFail(err, "close mongo client"))
		}

		stopped <- struct{}{}
	})

	stdlog.Println("Scheduler is listening on", cfg.API.HTTP.Addr)

	err = server.Serve(ctx)
	if err != nil && ctx.Err() == nil {
		log.Panic(err)
	}

	<-stopped
	stdlog.Println("Shutdown complete")
}
