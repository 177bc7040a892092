package music

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const defaultClockDuration = 3 * time.Minute

var ErrUnloaded = errors.New("engine unloaded")

// ClockLoader builds engines that advance a playback clock instead of driving an audio device.
// The service process uses it so transport state and progress ticks behave as on a device.
type ClockLoader struct {
	logger *slog.Logger
}

func NewClockLoader(logger *slog.Logger) *ClockLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClockLoader{logger: logger.With("component", "clock-engine")}
}

func (l *ClockLoader) ConfigureSession(context.Context) error {
	return nil
}

func (l *ClockLoader) Load(ctx context.Context, url string, opts LoadOptions, onStatus func(Status)) (Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if url == "" {
		return nil, errors.New("empty audio url")
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = defaultProgressInterval
	}
	duration := opts.DurationHint
	if duration <= 0 {
		duration = defaultClockDuration
	}

	e := &clockEngine{
		interval: opts.ProgressInterval,
		duration: duration,
		onStatus: onStatus,
		playing:  opts.AutoPlay,
		done:     make(chan struct{}),
	}
	go e.run()
	l.logger.Debug("engine loaded", "url", url, "duration_ms", duration.Milliseconds())
	return e, nil
}

type clockEngine struct {
	interval time.Duration
	duration time.Duration
	onStatus func(Status)

	mu       sync.Mutex
	playing  bool
	position time.Duration
	volume   float64
	unloaded bool
	done     chan struct{}
}

func (e *clockEngine) run() {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-e.done:
			return
		case <-ticker.C:
			st, ok := e.tick()
			if !ok {
				continue
			}
			// Delivered without holding e.mu.
			if e.onStatus != nil {
				e.onStatus(st)
			}
		}
	}
}

func (e *clockEngine) tick() (Status, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.unloaded {
		return Status{}, false
	}
	finished := false
	if e.playing {
		e.position += e.interval
		if e.position >= e.duration {
			e.position = e.duration
			e.playing = false
			finished = true
		}
	}
	return e.statusLocked(finished), true
}

func (e *clockEngine) statusLocked(finished bool) Status {
	return Status{
		Loaded:     true,
		Playing:    e.playing,
		PositionMs: e.position.Milliseconds(),
		DurationMs: e.duration.Milliseconds(),
		DidFinish:  finished,
	}
}

func (e *clockEngine) Play(context.Context) error {
	return e.with(func() {
		if e.position >= e.duration {
			e.position = 0
		}
		e.playing = true
	})
}

func (e *clockEngine) Pause(context.Context) error {
	return e.with(func() { e.playing = false })
}

func (e *clockEngine) Stop(context.Context) error {
	return e.with(func() {
		e.playing = false
		e.position = 0
	})
}

func (e *clockEngine) SeekTo(_ context.Context, positionMs int64) error {
	return e.with(func() {
		e.position = min(time.Duration(positionMs)*time.Millisecond, e.duration)
	})
}

func (e *clockEngine) SetVolume(_ context.Context, volume float64) error {
	return e.with(func() { e.volume = volume })
}

func (e *clockEngine) Unload(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.unloaded {
		return nil
	}
	e.unloaded = true
	close(e.done)
	return nil
}

func (e *clockEngine) with(fn func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.unloaded {
		return ErrUnloaded
	}
	fn()
	return nil
}
