// Package logger builds the application's slog.Logger from environment
// configuration and provides typed attribute helpers so log keys stay
// consistent across the gateway, the report consumer and the sweeper.
//
// # Usage
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//
//	log := logger.New(cfg, logger.WithService("notifgate"))
//	log.Info("notification accepted",
//	    logger.NotificationID(id),
//	    logger.Channel("email"),
//	)
package logger
