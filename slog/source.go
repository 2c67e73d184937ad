// Package slog provides logging decorators for praxis services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"praxis"
)

// Ensure LoggingSource implements praxis.Source.
var _ praxis.Source = (*LoggingSource)(nil)

// LoggingSource wraps a Source with per-page fetch logging.
type LoggingSource struct {
	next   praxis.Source
	logger *slog.Logger
}

// NewLoggingSource creates a new LoggingSource.
func NewLoggingSource(next praxis.Source, logger *slog.Logger) *LoggingSource {
	return &LoggingSource{next: next, logger: logger}
}

// FetchPage delegates to the wrapped source and logs the outcome.
func (s *LoggingSource) FetchPage(ctx context.Context, src praxis.SourceDescriptor, page int) ([]praxis.RawUnit, bool, error) {
	begin := time.Now()
	units, more, err := s.next.FetchPage(ctx, src, page)
	if err != nil {
		s.logger.Warn("page fetch failed",
			"source", src.Name,
			"page", page,
			"duration", time.Since(begin),
			"error", praxis.ErrorMessage(err),
		)
		return units, more, err
	}
	s.logger.Info("page fetched",
		"source", src.Name,
		"page", page,
		"units", len(units),
		"more", more,
		"duration", time.Since(begin),
	)
	return units, more, nil
}
