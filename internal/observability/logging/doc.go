// Package logging configures log/slog for the API and worker binaries and
// carries loggers and request ids through contexts.
//
//	logger := logging.WithRequestID(ctx, logging.FromContext(ctx))
//	logger.Info("notification queued", slog.Int64("notification_id", id))
package logging
