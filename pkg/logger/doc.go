// Package logger builds configured *slog.Logger instances.
//
// JSON output is the default so logs are ingestible by aggregation systems;
// text format is available for local development. The environment-driven
// Config allows a deployment to switch level and format without code
// changes:
//
//	log := logger.NewFromConfig(config.MustLoad[logger.Config](),
//		logger.WithAttr(slog.String("service", "contentforge")))
//	logger.SetAsDefault(log)
package logger
