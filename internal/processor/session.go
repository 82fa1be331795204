// Package processor runs the per-packet pipeline: build a record from the
// raw packet, enrich it, evaluate alerts, and retain it in the ring buffer.
package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/gopacket"
	uuid "github.com/satori/go.uuid"

	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/alert"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/capture"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/geo"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/log"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/metrics"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/models"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/store"
)

const (
	initialBackoff  = 100 * time.Millisecond
	maxBackoff      = 5 * time.Second
	maxReadFailures = 10

	defaultGeoTimeout = 2 * time.Second
)

// Options tunes a capture session.
type Options struct {
	// Capacity of the retention window; store.DefaultCapacity when zero.
	Capacity int `mapstructure:"capacity"`
	// GeoTimeout bounds a single enrichment lookup.
	GeoTimeout time.Duration `mapstructure:"geo_timeout"`
}

// Session owns one capture run. The capture loop is the sole writer to the
// ring; readers consume point-in-time snapshots while capture continues.
type Session struct {
	id      string
	start   time.Time
	source  capture.Source
	builder *Builder
	locator geo.Locator // nil disables enrichment
	engine  *alert.Engine
	ring    *store.Ring

	geoTimeout time.Duration

	// Retry policy for transient source errors.
	retryBackoff time.Duration
	retryMax     time.Duration
	maxFailures  int
}

// NewSession wires a session from its injected collaborators. A nil locator
// turns enrichment into a no-op.
func NewSession(src capture.Source, locator geo.Locator, engine *alert.Engine, opts Options) *Session {
	start := time.Now()
	geoTimeout := opts.GeoTimeout
	if geoTimeout <= 0 {
		geoTimeout = defaultGeoTimeout
	}
	return &Session{
		id:         uuid.Must(uuid.NewV4()).String(),
		start:      start,
		source:     src,
		builder:    NewBuilder(start),
		locator:    locator,
		engine:     engine,
		ring:       store.NewRing(opts.Capacity),
		geoTimeout: geoTimeout,

		retryBackoff: initialBackoff,
		retryMax:     maxBackoff,
		maxFailures:  maxReadFailures,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// StartTime returns when the session was created.
func (s *Session) StartTime() time.Time { return s.start }

// Uptime returns the session age.
func (s *Session) Uptime() time.Duration { return time.Since(s.start) }

// Count returns the total number of records ever captured this session.
func (s *Session) Count() uint64 { return s.ring.Count() }

// Snapshot returns a consistent copy of the retention window.
func (s *Session) Snapshot() []*models.PacketRecord { return s.ring.Snapshot() }

// Engine exposes the alert engine for rule registration and polling.
func (s *Session) Engine() *alert.Engine { return s.engine }

// Run pulls packets from the source until ctx is cancelled. Per-packet
// failures are skipped; transient source errors are retried with bounded
// backoff; sustained source failure terminates the loop with an error.
func (s *Session) Run(ctx context.Context) error {
	logger := log.GetLogger().WithField("session", s.id)
	logger.Info("capture session started")

	failures := 0
	backoff := s.retryBackoff

	for {
		select {
		case <-ctx.Done():
			logger.Infof("capture session stopped, %d records captured", s.ring.Count())
			return nil
		default:
		}

		data, ci, err := s.source.ReadPacket()
		if err != nil {
			if capture.IsTimeout(err) {
				continue // idle interface, poll again
			}
			failures++
			metrics.SourceErrorsTotal.Inc()
			if failures >= s.maxFailures {
				logger.WithError(err).Error("capture source failed persistently, terminating")
				return fmt.Errorf("capture source failed after %d attempts: %w", failures, err)
			}
			logger.WithError(err).Warnf("capture read error, retrying in %s", backoff)
			if !sleepCtx(ctx, backoff) {
				return nil
			}
			backoff *= 2
			if backoff > s.retryMax {
				backoff = s.retryMax
			}
			continue
		}
		failures = 0
		backoff = s.retryBackoff

		metrics.PacketsReadTotal.Inc()
		s.handlePacket(ctx, data, ci)
	}
}

func (s *Session) handlePacket(ctx context.Context, data []byte, ci gopacket.CaptureInfo) {
	rec, ok := s.builder.Build(data, ci)
	if !ok {
		metrics.PacketsSkippedTotal.WithLabelValues("no_network_layer").Inc()
		log.GetLogger().Debug("skipping packet without network layer")
		return
	}

	s.enrich(ctx, rec)

	// Record is complete from here on; alert evaluation and the store both
	// see the final, immutable value.
	s.engine.Evaluate(rec)

	if evicted := s.ring.Append(rec); evicted {
		metrics.EvictionsTotal.Inc()
	}
	metrics.RecordsBuiltTotal.Inc()
	metrics.RetainedRecords.Set(float64(s.ring.Len()))
}

func (s *Session) enrich(ctx context.Context, rec *models.PacketRecord) {
	if s.locator == nil {
		return
	}
	lookupCtx, cancel := context.WithTimeout(ctx, s.geoTimeout)
	defer cancel()

	loc, err := s.locator.Lookup(lookupCtx, rec.SrcIP)
	if err != nil {
		if errors.Is(err, geo.ErrNotFound) {
			metrics.GeoLookupsTotal.WithLabelValues(metrics.LookupNotFound).Inc()
		} else {
			metrics.GeoLookupsTotal.WithLabelValues(metrics.LookupError).Inc()
			log.GetLogger().WithError(err).Debugf("geolocation lookup failed for %s", rec.SrcIP)
		}
		return
	}
	metrics.GeoLookupsTotal.WithLabelValues(metrics.LookupHit).Inc()
	rec.Geo = &loc
}

// sleepCtx sleeps for d or until ctx is cancelled; reports whether the full
// duration elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
