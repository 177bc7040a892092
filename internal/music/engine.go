package music

import (
	"context"
	"time"
)

type Track struct {
	ID         string `json:"id" validate:"required"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	AudioURL   string `json:"audioUrl" validate:"required,url"`
	ImageURL   string `json:"imageUrl,omitempty"`
	DurationMs int64  `json:"durationMs,omitempty"`
}

// Status is what an engine reports on every progress tick.
type Status struct {
	Loaded     bool
	Playing    bool
	PositionMs int64
	DurationMs int64
	DidFinish  bool
}

type LoadOptions struct {
	AutoPlay         bool
	ProgressInterval time.Duration
	// DurationHint is the catalog duration, used by engines that cannot probe the source.
	DurationHint time.Duration
}

// Loader constructs audio engines. Only the Player calls it.
type Loader interface {
	// ConfigureSession prepares background and silent-mode playback.
	ConfigureSession(ctx context.Context) error
	Load(ctx context.Context, url string, opts LoadOptions, onStatus func(Status)) (Engine, error)
}

// Engine is one loaded audio source. A status tick already in flight may still arrive after Unload.
type Engine interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Stop(ctx context.Context) error
	Unload(ctx context.Context) error
	SeekTo(ctx context.Context, positionMs int64) error
	SetVolume(ctx context.Context, volume float64) error
}
