// Command gateway runs the notification dispatch gateway: the HTTP intake
// API, the delivery report consumer, and the queued-notification sweeper,
// all sharing one Redis status store and one AMQP connection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/notifgate/notifgate/pkg/broker"
	"github.com/notifgate/notifgate/pkg/config"
	"github.com/notifgate/notifgate/pkg/consumer"
	"github.com/notifgate/notifgate/pkg/dispatch"
	"github.com/notifgate/notifgate/pkg/gateway"
	"github.com/notifgate/notifgate/pkg/logger"
	"github.com/notifgate/notifgate/pkg/publisher"
	"github.com/notifgate/notifgate/pkg/redisconn"
	"github.com/notifgate/notifgate/pkg/statusstore"
)

type appConfig struct {
	Logger   logger.Config
	Redis    redisconn.Config
	Broker   broker.Config
	Store    statusstore.Config
	Consumer consumer.Config
	HTTP     gateway.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg.Logger)
	config.MustLoad(&cfg.Redis)
	config.MustLoad(&cfg.Broker)
	config.MustLoad(&cfg.Store)
	config.MustLoad(&cfg.Consumer)
	config.MustLoad(&cfg.HTTP)

	log := logger.New(cfg.Logger, logger.WithService("notifgate"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("gateway exited", logger.Error(err))
		os.Exit(1)
	}
	log.Info("gateway stopped")
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	rdb, err := redisconn.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	conn, err := broker.Dial(ctx, cfg.Broker)
	if err != nil {
		return err
	}
	defer conn.Close()

	pubCh, err := conn.Channel()
	if err != nil {
		return err
	}
	defer pubCh.Close()

	if err := broker.DeclareTopology(pubCh); err != nil {
		return err
	}

	consCh, err := conn.Channel()
	if err != nil {
		return err
	}
	defer consCh.Close()

	store := statusstore.NewRedisStore(rdb, cfg.Store)

	pub, err := publisher.New(pubCh,
		publisher.WithLogger(log.With(logger.Component("publisher"))),
	)
	if err != nil {
		return err
	}

	dispatcher, err := dispatch.New(store, pub,
		dispatch.WithLogger(log.With(logger.Component("dispatch"))),
	)
	if err != nil {
		return err
	}

	verifier := consumer.NewVerifier(cfg.Consumer.SourceSecrets, cfg.Consumer.SignatureMaxAge)
	cons, err := consumer.New(store, verifier,
		consumer.WithQueue(cfg.Consumer.Queue),
		consumer.WithConsumerTag(cfg.Consumer.ConsumerTag),
		consumer.WithPrefetch(cfg.Consumer.Prefetch),
		consumer.WithLogger(log.With(logger.Component("consumer"))),
	)
	if err != nil {
		return err
	}

	sweeper := statusstore.NewSweeper(store, cfg.Store,
		statusstore.WithSweeperLogger(log.With(logger.Component("sweeper"))),
	)

	handler := gateway.Router(dispatcher, map[string]gateway.Healthcheck{
		"redis":  redisconn.Healthcheck(rdb),
		"broker": broker.Healthcheck(conn),
	}, log.With(logger.Component("gateway")))
	server := gateway.NewServer(cfg.HTTP, log.With(logger.Component("gateway")))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx, handler) })
	g.Go(func() error { return cons.Run(gctx, consCh) })
	g.Go(func() error { return sweeper.Run(gctx) })

	return g.Wait()
}
