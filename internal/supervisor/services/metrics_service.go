// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package services

import (
	"context"
	"time"

	"github.com/tomtom215/island/internal/logging"
	"github.com/tomtom215/island/internal/metrics"
)

// DefaultTextfileInterval is how often MetricsTextfileService rewrites the file.
const DefaultTextfileInterval = 30 * time.Second

// MetricsTextfileService periodically writes the Prometheus registry to a
// node_exporter textfile. The file is written once more on shutdown so
// the final counters of a sync daemon are not lost.
type MetricsTextfileService struct {
	path     string
	interval time.Duration
	write    func(path string) error
}

// NewMetricsTextfileService creates the service. A non-positive interval
// uses DefaultTextfileInterval.
func NewMetricsTextfileService(path string, interval time.Duration) *MetricsTextfileService {
	if interval <= 0 {
		interval = DefaultTextfileInterval
	}
	return &MetricsTextfileService{path: path, interval: interval, write: metrics.WriteTextfile}
}

// Serve implements suture.Service.
func (m *MetricsTextfileService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.flush()
			return ctx.Err()
		case <-ticker.C:
			m.flush()
		}
	}
}

func (m *MetricsTextfileService) flush() {
	if err := m.write(m.path); err != nil {
		logging.Warn().Err(err).Str("path", m.path).Msg("Failed to write metrics textfile")
	}
}

// String implements fmt.Stringer.
func (m *MetricsTextfileService) String() string {
	return "metrics-textfile"
}
