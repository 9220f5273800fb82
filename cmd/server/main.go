package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"comanda/internal/config"
	"comanda/internal/infrastructure/logger"
	"comanda/internal/infrastructure/metrics"
	"comanda/internal/infrastructure/mysql"
	"comanda/internal/infrastructure/rabbitmq"
	"comanda/internal/notify"
	notifyctrl "comanda/internal/notify/controller"
	"comanda/internal/order"
	"comanda/internal/payment"
	"comanda/internal/server"
	"comanda/internal/table"
	"comanda/internal/tenant"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	var mirror notify.Mirror
	if cfg.RabbitMQ.Enabled {
		conn, ch, err := rabbitmq.Connect(cfg.RabbitMQ)
		if err != nil {
			zapLogger.Fatal("connecting to rabbitmq", zap.Error(err))
		}
		defer conn.Close()

		mirror, err = notify.NewAMQPMirror(ch)
		if err != nil {
			zapLogger.Fatal("declaring notification exchange", zap.Error(err))
		}
		zapLogger.Info("rabbitmq connected")
	}

	bus := notify.NewBus(mirror, zapLogger)
	paymentMetr := metrics.NewPaymentMetrics(prometheus.DefaultRegisterer)

	orderCtrl := order.NewModule(db, cfg, bus, zapLogger)
	tableCtrl := table.NewModule(db, zapLogger)
	configCtrl := tenant.NewModule(db, zapLogger)
	paymentModule := payment.NewModule(db, cfg, bus, paymentMetr, zapLogger)
	streamCtrl := notifyctrl.NewStreamController(bus, zapLogger)

	router := server.NewRouter(orderCtrl, tableCtrl, paymentModule.Controller, configCtrl, streamCtrl, zapLogger)
	srv := server.New(cfg.Server.Port, router, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		return paymentModule.Sweeper.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		zapLogger.Fatal("server error", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
