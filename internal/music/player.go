// Package music owns the one live audio engine and navigation across the playlist.
package music

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"sanctuary-app/internal/feed"
	"sanctuary-app/internal/metrics"
	"sanctuary-app/internal/persist"
	"sanctuary-app/internal/storage"
)

const (
	StorageKey  = "music-player-storage"
	TopicStatus = "music.status"

	defaultProgressInterval = 500 * time.Millisecond
)

var (
	ErrNoTrack      = errors.New("no track selected")
	ErrInvalidTrack = errors.New("invalid track")
)

// State is the runtime view of the player.
type State struct {
	CurrentTrack *Track  `json:"currentTrack"`
	Playlist     []Track `json:"playlist"`
	IsPlaying    bool    `json:"isPlaying"`
	IsLoading    bool    `json:"isLoading"`
	PositionMs   int64   `json:"position"`
	DurationMs   int64   `json:"duration"`
	Volume       float64 `json:"volume"`
}

// snapshot is the persisted subset; playback never resumes on its own after a restart.
type snapshot struct {
	CurrentTrack *Track  `json:"currentTrack"`
	Playlist     []Track `json:"playlist"`
}

type Options struct {
	Loader           Loader
	AutoAdvance      bool
	ProgressInterval time.Duration
	Logger           *slog.Logger
	Metrics          *metrics.Metrics
	Publisher        feed.Publisher
}

type Player struct {
	loader      Loader
	repo        *persist.Repository[snapshot]
	logger      *slog.Logger
	metrics     *metrics.Metrics
	pub         feed.Publisher
	autoAdvance bool
	interval    time.Duration

	mu     sync.Mutex
	state  State
	engine Engine
	gen    uint64
	rev    uint64
}

func NewPlayer(kv storage.KV, opts Options) *Player {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = defaultProgressInterval
	}
	logger := opts.Logger.With("component", "music")
	return &Player{
		loader: opts.Loader,
		repo: persist.New[snapshot](kv, persist.Options[snapshot]{
			Key:      StorageKey,
			Version:  1,
			Defaults: func() snapshot { return snapshot{Playlist: []Track{}} },
			Metrics:  opts.Metrics,
			Logger:   logger,
		}),
		logger:      logger,
		metrics:     opts.Metrics,
		pub:         feed.OrNop(opts.Publisher),
		autoAdvance: opts.AutoAdvance,
		interval:    opts.ProgressInterval,
		state:       State{Playlist: []Track{}, Volume: 1},
	}
}

func (p *Player) Hydrate(ctx context.Context) error {
	snap, _, err := p.repo.Load(ctx)
	if snap.Playlist == nil {
		snap.Playlist = []Track{}
	}
	p.mu.Lock()
	p.state.CurrentTrack = snap.CurrentTrack
	p.state.Playlist = snap.Playlist
	if snap.CurrentTrack != nil {
		p.state.DurationMs = snap.CurrentTrack.DurationMs
	}
	p.mu.Unlock()
	return err
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return copyState(p.state)
}

func (p *Player) SetPlaylist(ctx context.Context, tracks []Track) error {
	for _, t := range tracks {
		if err := validateTrack(t); err != nil {
			return err
		}
	}
	p.mu.Lock()
	p.state.Playlist = append([]Track{}, tracks...)
	p.rev++
	rev, snap, view := p.rev, snapshotOf(p.state), copyState(p.state)
	p.mu.Unlock()

	p.repo.Persist(ctx, rev, snap)
	p.pub.Publish(TopicStatus, view)
	return nil
}

// SetCurrentTrack releases any owned engine and loads track with autoplay. Load failures are
// logged and leave the player idle. A load that finishes after a newer call is discarded.
func (p *Player) SetCurrentTrack(ctx context.Context, track Track) error {
	if err := validateTrack(track); err != nil {
		return err
	}

	p.mu.Lock()
	p.gen++
	gen := p.gen
	old := p.engine
	p.engine = nil
	p.state.CurrentTrack = &track
	p.state.IsLoading = true
	p.state.IsPlaying = false
	p.state.PositionMs = 0
	p.state.DurationMs = track.DurationMs
	volume := p.state.Volume
	p.rev++
	rev, snap, view := p.rev, snapshotOf(p.state), copyState(p.state)
	p.mu.Unlock()

	p.repo.Persist(ctx, rev, snap)
	p.pub.Publish(TopicStatus, view)

	if old != nil {
		p.release(ctx, old)
	}
	if p.loader == nil {
		p.loadFailed(gen, errors.New("no audio loader configured"))
		return nil
	}
	if err := p.loader.ConfigureSession(ctx); err != nil {
		p.logger.Warn("configure audio session failed", "error", err)
	}

	eng, err := p.loader.Load(ctx, track.AudioURL, LoadOptions{
		AutoPlay:         true,
		ProgressInterval: p.interval,
		DurationHint:     time.Duration(track.DurationMs) * time.Millisecond,
	}, p.onStatus(gen))
	if err != nil {
		p.loadFailed(gen, err)
		return nil
	}

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		p.metrics.EngineLoad(metrics.ResultSuperseded)
		p.logger.Debug("discarding superseded engine", "trackId", track.ID)
		p.release(ctx, eng)
		return nil
	}
	p.engine = eng
	p.state.IsLoading = false
	p.state.IsPlaying = true
	view = copyState(p.state)
	p.mu.Unlock()

	p.metrics.EngineLoad(metrics.ResultOK)
	if volume != 1 {
		if err := eng.SetVolume(ctx, volume); err != nil {
			p.logger.Warn("set volume failed", "error", err)
		}
	}
	p.pub.Publish(TopicStatus, view)
	return nil
}

func (p *Player) loadFailed(gen uint64, err error) {
	p.metrics.EngineLoad(metrics.ResultError)
	p.logger.Error("load audio failed", "error", err)

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.state.IsLoading = false
	p.state.IsPlaying = false
	view := copyState(p.state)
	p.mu.Unlock()
	p.pub.Publish(TopicStatus, view)
}

// onStatus binds an engine's callback to its generation so late ticks from a replaced engine
// are ignored.
func (p *Player) onStatus(gen uint64) func(Status) {
	return func(st Status) {
		p.mu.Lock()
		if gen != p.gen {
			p.mu.Unlock()
			return
		}
		if st.Loaded {
			p.state.PositionMs = st.PositionMs
			if st.DurationMs > 0 {
				p.state.DurationMs = st.DurationMs
			}
			p.state.IsPlaying = st.Playing
		}
		advance := st.DidFinish && p.autoAdvance
		view := copyState(p.state)
		p.mu.Unlock()

		p.pub.Publish(TopicStatus, view)
		if advance {
			// The engine may be delivering this from inside its own lock; Next unloads it.
			go func() {
				if err := p.Next(context.Background()); err != nil {
					p.logger.Warn("auto advance failed", "error", err)
				}
			}()
		}
	}
}

// Play resumes the owned engine, or reloads the selected track when no engine exists.
func (p *Player) Play(ctx context.Context) error {
	p.mu.Lock()
	eng := p.engine
	var cur *Track
	if p.state.CurrentTrack != nil {
		t := *p.state.CurrentTrack
		cur = &t
	}
	p.mu.Unlock()

	if eng == nil {
		if cur == nil {
			return ErrNoTrack
		}
		return p.SetCurrentTrack(ctx, *cur)
	}
	if err := eng.Play(ctx); err != nil {
		p.logger.Warn("play failed", "error", err)
		return nil
	}
	p.setPlaying(eng, true)
	return nil
}

func (p *Player) Pause(ctx context.Context) error {
	p.mu.Lock()
	eng := p.engine
	p.mu.Unlock()
	if eng == nil {
		return nil
	}
	if err := eng.Pause(ctx); err != nil {
		p.logger.Warn("pause failed", "error", err)
		return nil
	}
	p.setPlaying(eng, false)
	return nil
}

func (p *Player) setPlaying(eng Engine, playing bool) {
	p.mu.Lock()
	if p.engine != eng {
		p.mu.Unlock()
		return
	}
	p.state.IsPlaying = playing
	view := copyState(p.state)
	p.mu.Unlock()
	p.pub.Publish(TopicStatus, view)
}

// Stop halts and releases the engine. Any load still in flight is discarded when it lands.
func (p *Player) Stop(ctx context.Context) error {
	p.mu.Lock()
	p.gen++
	eng := p.engine
	p.engine = nil
	p.state.IsPlaying = false
	p.state.IsLoading = false
	p.state.PositionMs = 0
	view := copyState(p.state)
	p.mu.Unlock()

	if eng != nil {
		if err := eng.Stop(ctx); err != nil {
			p.logger.Warn("stop failed", "error", err)
		}
		p.release(ctx, eng)
	}
	p.pub.Publish(TopicStatus, view)
	return nil
}

func (p *Player) Next(ctx context.Context) error {
	return p.step(ctx, func(i, n int) int {
		return (i + 1) % n
	})
}

func (p *Player) Previous(ctx context.Context) error {
	return p.step(ctx, func(i, n int) int {
		if i <= 0 {
			return n - 1
		}
		return i - 1
	})
}

// step moves to the index chosen by pick. A current track missing from the playlist counts as
// index -1. An empty playlist is a no-op.
func (p *Player) step(ctx context.Context, pick func(i, n int) int) error {
	p.mu.Lock()
	playlist := p.state.Playlist
	n := len(playlist)
	if n == 0 {
		p.mu.Unlock()
		return nil
	}
	i := -1
	if p.state.CurrentTrack != nil {
		i = indexOf(playlist, p.state.CurrentTrack.ID)
	}
	target := playlist[pick(i, n)]
	p.mu.Unlock()

	return p.SetCurrentTrack(ctx, target)
}

func (p *Player) SeekTo(ctx context.Context, positionMs int64) error {
	if positionMs < 0 {
		positionMs = 0
	}
	p.mu.Lock()
	eng := p.engine
	p.mu.Unlock()
	if eng == nil {
		return nil
	}
	if err := eng.SeekTo(ctx, positionMs); err != nil {
		p.logger.Warn("seek failed", "error", err)
	}
	return nil
}

// SetVolume clamps volume to [0,1]. Without an engine the value is kept for the next load.
func (p *Player) SetVolume(ctx context.Context, volume float64) error {
	volume = min(max(volume, 0), 1)
	p.mu.Lock()
	p.state.Volume = volume
	eng := p.engine
	p.mu.Unlock()
	if eng == nil {
		return nil
	}
	if err := eng.SetVolume(ctx, volume); err != nil {
		p.logger.Warn("set volume failed", "error", err)
	}
	return nil
}

// Close stops playback and writes the latest snapshot.
func (p *Player) Close(ctx context.Context) error {
	_ = p.Stop(ctx)
	return p.Flush(ctx)
}

func (p *Player) Flush(ctx context.Context) error {
	p.mu.Lock()
	rev, snap := p.rev, snapshotOf(p.state)
	p.mu.Unlock()
	if rev == 0 {
		return nil
	}
	return p.repo.Save(ctx, rev, snap)
}

func (p *Player) release(ctx context.Context, eng Engine) {
	if err := eng.Unload(ctx); err != nil {
		p.logger.Warn("unload failed", "error", err)
	}
}

func validateTrack(t Track) error {
	if strings.TrimSpace(t.ID) == "" || strings.TrimSpace(t.AudioURL) == "" {
		return fmt.Errorf("%w: id and audio url are required", ErrInvalidTrack)
	}
	return nil
}

func indexOf(tracks []Track, id string) int {
	for i, t := range tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func snapshotOf(st State) snapshot {
	c := copyState(st)
	return snapshot{CurrentTrack: c.CurrentTrack, Playlist: c.Playlist}
}

func copyState(st State) State {
	if st.CurrentTrack != nil {
		t := *st.CurrentTrack
		st.CurrentTrack = &t
	}
	st.Playlist = append([]Track{}, st.Playlist...)
	return st
}
