package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/alanbjohnston/pacsat-telem/internal/broadcast"
	"github.com/alanbjohnston/pacsat-telem/internal/catalog"
	"github.com/alanbjohnston/pacsat-telem/internal/metrics"
	"github.com/alanbjohnston/pacsat-telem/internal/sched"
	"github.com/alanbjohnston/pacsat-telem/internal/telem"
	"github.com/alanbjohnston/pacsat-telem/internal/wod"
)

// ErrTooManyFileErrors is returned by Loop.Run when the failure governor
// trips. Continuing to sample with no way to persist data only wastes
// power on the payload.
var ErrTooManyFileErrors = errors.New("too many file I/O errors")

// defaultIdleWait bounds the busy-poll between iterations. It is far
// below the second-level period granularity, so due actions are never
// meaningfully delayed.
const defaultIdleWait = 250 * time.Millisecond

// WithClock sets the clock the loop polls. Tests install a fake.
func WithClock(clock sched.Clock) func(*Loop) {
	return func(l *Loop) {
		l.clock = clock
	}
}

// WithBroadcaster enables radio broadcast of sampled frames.
func WithBroadcaster(caster *broadcast.Broadcaster) func(*Loop) {
	return func(l *Loop) {
		l.caster = caster
	}
}

// WithCatalog enables catalog bookkeeping for rotated artifacts.
func WithCatalog(store *catalog.Store) func(*Loop) {
	return func(l *Loop) {
		l.store = store
	}
}

// WithMetrics sets the loop's metrics collectors.
func WithMetrics(m *metrics.Metrics) func(*Loop) {
	return func(l *Loop) {
		l.metrics = m
	}
}

// WithLogger sets the logger for the loop.
func WithLogger(logger *slog.Logger) func(*Loop) {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithIdleWait overrides the bounded wait between loop iterations.
func WithIdleWait(d time.Duration) func(*Loop) {
	return func(l *Loop) {
		l.idleWait = d
	}
}

// LoopConfig carries the periods driving the loop. A zero or negative
// period disables that action.
type LoopConfig struct {
	SamplePeriod time.Duration
	StorePeriod  time.Duration
	BeaconPeriod time.Duration
}

// Loop drives sampling, WOD storage and broadcast on a single control
// goroutine. All sampling state, including the last telemetry frame and
// the due-time bookkeeping, lives on this struct so each test can build
// a fresh one.
type Loop struct {
	config   LoopConfig
	sensors  telem.Reader
	wodLog   *wod.Log
	governor *wod.Governor

	caster  *broadcast.Broadcaster
	store   *catalog.Store
	metrics *metrics.Metrics

	clock    sched.Clock
	idleWait time.Duration
	logger   *slog.Logger

	lastSample time.Time
	lastStore  time.Time
	lastBeacon time.Time
	frame      telem.Frame
}

// NewLoop creates a loop over the given sensor reader, WOD log and
// failure governor.
func NewLoop(config LoopConfig, sensors telem.Reader, wodLog *wod.Log, governor *wod.Governor, options ...func(*Loop)) *Loop {
	l := Loop{
		config:   config,
		sensors:  sensors,
		wodLog:   wodLog,
		governor: governor,
		clock:    sched.System(),
		idleWait: defaultIdleWait,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
	}

	for _, option := range options {
		option(&l)
	}

	return &l
}

// Run polls the clock until the context is cancelled or the failure
// governor trips. Cancellation is observed only between iterations, so
// an in-flight append always completes or fails cleanly first.
func (l *Loop) Run(ctx context.Context) error {
	now := l.clock.Now()
	l.lastSample, l.lastStore, l.lastBeacon = now, now, now

	for {
		l.Tick(l.clock.Now())

		if l.governor.ShouldShutDown() {
			l.logger.Error("too many file I/O errors, exiting",
				slog.Int("failures", l.governor.Failures()))
			return ErrTooManyFileErrors
		}

		select {
		case <-ctx.Done():
			l.logger.Info("shutdown requested, exiting")
			return nil
		case <-time.After(l.idleWait):
		}
	}
}

// Tick runs one loop iteration at the given instant. The store and
// sample transitions are independent and may both fire in the same
// iteration.
func (l *Loop) Tick(now time.Time) {
	if sched.Due(now, l.lastStore, l.config.StorePeriod) {
		l.lastStore = now
		l.storeFrame()
	}

	if sched.Due(now, l.lastSample, l.config.SamplePeriod) {
		l.lastSample = now
		l.sampleAndBroadcast(now)
	}

	if sched.Due(now, l.lastBeacon, l.config.BeaconPeriod) {
		l.lastBeacon = now
		l.sendBeacon()
	}
}

func (l *Loop) sampleAndBroadcast(now time.Time) {
	l.frame = l.sensors.Read(now)
	if l.metrics != nil {
		l.metrics.SamplesTotal.Inc()
	}
	l.logger.Debug("sampled sensors", slog.Int("sequence", int(l.frame.Sequence)))

	if l.caster == nil {
		return
	}
	if err := l.caster.SendSensorFrame(l.frame); err != nil {
		// Best effort: a dead radio link never stops local logging.
		l.logger.Debug(fmt.Sprintf("broadcasting telemetry: %s", err))
		if l.metrics != nil {
			l.metrics.BroadcastErrors.Inc()
		}
		return
	}
	if l.metrics != nil {
		l.metrics.BroadcastsTotal.Inc()
	}
}

func (l *Loop) storeFrame() {
	size, err := l.wodLog.Append(l.frame)
	if err != nil {
		l.governor.RecordFailure()
		if l.metrics != nil {
			l.metrics.AppendErrors.Inc()
		}
		l.logger.Error(fmt.Sprintf("could not save WOD data: %s", err),
			slog.Int("failures", l.governor.Failures()))
		return
	}

	if l.metrics != nil {
		l.metrics.AppendsTotal.Inc()
		l.metrics.WorkingFileBytes.Set(float64(size))
	}
	l.logger.Debug("wrote WOD record",
		slog.Int("timestamp", int(l.frame.Timestamp)),
		slog.Int64("bytes", size))

	if !l.wodLog.ShouldRotate(size) {
		return
	}

	l.logger.Info("rolling WOD file", slog.String("size", humanize.IBytes(uint64(size))))
	artifact, err := l.wodLog.Rotate()
	if err != nil {
		l.logger.Error(fmt.Sprintf("rotating WOD file: %s", err))
		return
	}

	if l.metrics != nil {
		l.metrics.RotationsTotal.Inc()
		l.metrics.WorkingFileBytes.Set(0)
	}
	l.recordArtifact(artifact, size)
}

func (l *Loop) recordArtifact(artifact string, size int64) {
	if l.store == nil {
		return
	}

	a := catalog.Artifact{
		Name:      artifact,
		SizeBytes: size,
	}

	frames, err := wod.ReadFrames(artifact)
	if err != nil {
		l.logger.Error(fmt.Sprintf("reading rotated artifact: %s", err))
	} else if len(frames) > 0 {
		a.FrameCount = int64(len(frames))
		a.FirstTimestamp.Int64 = int64(frames[0].Timestamp)
		a.FirstTimestamp.Valid = true
		a.LastTimestamp.Int64 = int64(frames[len(frames)-1].Timestamp)
		a.LastTimestamp.Valid = true
	}

	if _, err := l.store.RecordArtifact(a); err != nil {
		l.logger.Error(fmt.Sprintf("cataloging artifact: %s", err))
	}
}

func (l *Loop) sendBeacon() {
	if l.caster == nil {
		return
	}
	if err := l.caster.SendTimeBeacon(); err != nil {
		l.logger.Debug(fmt.Sprintf("sending time beacon: %s", err))
		if l.metrics != nil {
			l.metrics.BroadcastErrors.Inc()
		}
	}
}
