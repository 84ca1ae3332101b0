// Package simulation drives the dashboard's live state: on a fixed cadence it pulls
// log lines, advances the chart and totals, picks a pipeline stage and publishes
// one consistent snapshot.
package simulation

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"ArbiOps/internal/feed"
	"ArbiOps/internal/logstream"
	"ArbiOps/internal/metrics"
	"ArbiOps/internal/model"
	"ArbiOps/internal/pipeline"
	"ArbiOps/internal/recorder"
)

const (
	// MaxLogs caps the terminal buffer.
	MaxLogs = 50
	// DefaultInterval is the tick cadence.
	DefaultInterval = 3 * time.Second
	// DefaultRequestTimeout bounds one log source request.
	DefaultRequestTimeout = 2 * time.Second
)

// Status announcements.
const (
	startMessage = "Authentication successful. Neural engine spooling up..."
	stopMessage  = "Sequence aborted by user."
	pauseMessage = "Sequence paused by user."
)

// ErrControlsLocked is returned when controls are changed while the system is active.
var ErrControlsLocked = errors.New("controls cannot be changed while the system is active")

// Ticker runs fn every interval until the returned stop function is called.
// After stop returns no new run of fn may start.
type Ticker interface {
	Every(interval time.Duration, fn func()) (stop func())
}

// Options configure a Loop.
type Options struct {
	Interval       time.Duration
	RequestTimeout time.Duration
	Controls       model.Controls
	// Announce seeds boot lines and appends a line on every status change.
	Announce bool
}

// Deps are the collaborators of a Loop. Recorder and Metrics may be nil.
type Deps struct {
	Source   logstream.Source
	Selector pipeline.Selector
	Ticker   Ticker
	Rand     feed.Rand
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

// Loop owns all simulation state. Views read published snapshots only.
type Loop struct {
	mu   sync.Mutex
	opts Options
	deps Deps

	status   model.SystemStatus
	controls model.Controls
	logs     []model.LogEntry
	chart    []model.ChartDataPoint
	totals   model.RunningTotals
	stage    model.PipelineStage
	tick     uint64

	// gen changes on every start and stop; a tick applies only if gen is unchanged.
	gen       uint64
	stopTimer func()
	cancelRun context.CancelFunc
	broker    *Broker
}

// NewLoop creates an idle loop with a zeroed chart window.
func NewLoop(opts Options, deps Deps) (*Loop, error) {
	if deps.Source == nil || deps.Selector == nil || deps.Ticker == nil || deps.Rand == nil {
		return nil, errors.New("simulation: source, selector, ticker and rand are required")
	}
	if err := opts.Controls.Validate(); err != nil {
		return nil, err
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if deps.Recorder == nil {
		deps.Recorder = recorder.NewNoopRecorder()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	l := &Loop{
		opts:     opts,
		deps:     deps,
		status:   model.StatusIdle,
		controls: opts.Controls,
		logs:     []model.LogEntry{},
		chart:    feed.SeedWindow(deps.Now()),
		broker:   NewBroker(),
	}
	if opts.Announce {
		l.appendLocked(
			model.LogEntry{Category: model.CategorySystem, Message: "ArbiOS v4.2.0 initialized."},
			model.LogEntry{Category: model.CategorySystem, Message: "Waiting for user input..."},
		)
	}
	l.broker.Publish(l.snapshotLocked())
	deps.Metrics.SetStatus(l.status)
	return l, nil
}

// Start moves the system to ACTIVE and registers the tick timer. It reports
// false if the system was already active.
func (l *Loop) Start(origin string) bool {
	l.mu.Lock()
	t := l.startLocked()
	l.mu.Unlock()
	return l.finish(t, origin)
}

// Stop moves the system to IDLE. It reports false if it was already idle.
func (l *Loop) Stop(origin string) bool {
	return l.halt(model.StatusIdle, origin, stopMessage)
}

// Pause moves an active system to PAUSED. It reports false unless the system was active.
func (l *Loop) Pause(origin string) bool {
	return l.halt(model.StatusPaused, origin, pauseMessage)
}

// Toggle stops an active system and starts any other. It returns the new status.
func (l *Loop) Toggle(origin string) model.SystemStatus {
	l.mu.Lock()
	var t transition
	if l.status == model.StatusActive {
		t = l.haltLocked(model.StatusIdle, stopMessage)
	} else {
		t = l.startLocked()
	}
	to := l.status
	l.mu.Unlock()
	l.finish(t, origin)
	return to
}

// transition describes a status change made under the lock; its side effects
// run after the lock is released.
type transition struct {
	changed  bool
	from, to model.SystemStatus
	added    []model.LogEntry
}

func (l *Loop) startLocked() transition {
	if l.status == model.StatusActive {
		return transition{}
	}
	from := l.status
	l.status = model.StatusActive
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(context.Background())
	l.cancelRun = cancel
	l.stopTimer = l.deps.Ticker.Every(l.opts.Interval, func() { l.runTick(ctx, gen) })
	added := l.announceLocked(startMessage)
	l.broker.Publish(l.snapshotLocked())
	return transition{changed: true, from: from, to: model.StatusActive, added: added}
}

func (l *Loop) halt(to model.SystemStatus, origin, msg string) bool {
	l.mu.Lock()
	t := l.haltLocked(to, msg)
	l.mu.Unlock()
	return l.finish(t, origin)
}

// haltLocked leaves ACTIVE (or PAUSED, for a stop) and clears the active stage.
func (l *Loop) haltLocked(to model.SystemStatus, msg string) transition {
	if l.status == to || l.status == model.StatusIdle {
		return transition{}
	}
	from := l.status
	l.cancelTimerLocked()
	l.status = to
	l.stage = model.StageNone
	added := l.announceLocked(msg)
	l.broker.Publish(l.snapshotLocked())
	return transition{changed: true, from: from, to: to, added: added}
}

func (l *Loop) finish(t transition, origin string) bool {
	if t.changed {
		l.afterTransition(t.from, t.to, origin, t.added)
	}
	return t.changed
}

// cancelTimerLocked removes the tick timer and invalidates any in-flight tick.
func (l *Loop) cancelTimerLocked() {
	l.gen++
	if l.stopTimer != nil {
		l.stopTimer()
		l.stopTimer = nil
	}
	if l.cancelRun != nil {
		l.cancelRun()
		l.cancelRun = nil
	}
}

func (l *Loop) afterTransition(from, to model.SystemStatus, origin string, added []model.LogEntry) {
	log.Printf("[INFO] simulation %s -> %s (%s)", from, to, origin)
	l.deps.Metrics.SetStatus(to)
	if err := l.deps.Recorder.RecordStatus(&recorder.StatusEvent{From: from, To: to, Source: origin}); err != nil {
		log.Printf("[ERROR] record status: %v", err)
	}
	if err := l.deps.Recorder.RecordLogs(added); err != nil {
		log.Printf("[ERROR] record logs: %v", err)
	}
}

// SetControls replaces the controls. Rejected while active.
func (l *Loop) SetControls(c model.Controls) error {
	if err := c.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.status == model.StatusActive {
		return ErrControlsLocked
	}
	l.controls = c
	l.broker.Publish(l.snapshotLocked())
	return nil
}

// Snapshot returns a copy of the current state.
func (l *Loop) Snapshot() *model.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Subscribe delivers every published snapshot, starting with the latest.
func (l *Loop) Subscribe(buffer int) (<-chan *model.Snapshot, func()) {
	return l.broker.Subscribe(buffer)
}

// Close stops the loop for shutdown.
func (l *Loop) Close() {
	l.Stop("shutdown")
}

func (l *Loop) runTick(ctx context.Context, gen uint64) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] simulation tick panicked: %v", r)
		}
	}()
	started := time.Now()

	count, ok := l.drawCount(gen)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, l.opts.RequestTimeout)
	entries, err := l.deps.Source.RequestLogs(reqCtx, count)
	cancel()
	if err == nil && len(entries) == 0 {
		err = &logstream.ProviderError{Source: l.deps.Source.Name(), Op: "parse", Err: errors.New("no log lines returned")}
	}
	fallback := false
	if err != nil {
		if ctx.Err() != nil {
			l.deps.Metrics.ObserveDiscard()
			return
		}
		log.Printf("[WARN] log source failed, using fallback lines: %v", err)
		l.deps.Metrics.ObserveLogFailure()
		entries = logstream.Fallback()
		fallback = true
	} else if len(entries) > count {
		entries = entries[:count]
	}

	snap, rec, added, ok := l.apply(gen, entries, fallback)
	if !ok {
		l.deps.Metrics.ObserveDiscard()
		return
	}
	if fallback {
		l.deps.Metrics.ObserveFallback()
	}
	l.deps.Metrics.ObserveTick(time.Since(started), snap)

	if err := l.deps.Recorder.RecordTick(rec); err != nil {
		log.Printf("[ERROR] record tick: %v", err)
	}
	if err := l.deps.Recorder.RecordLogs(added); err != nil {
		log.Printf("[ERROR] record logs: %v", err)
	}
}

func (l *Loop) drawCount(gen uint64) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen != gen || l.status != model.StatusActive {
		return 0, false
	}
	return l.deps.Rand.IntN(2) + 1, true
}

// apply commits one tick. It is a no-op if the run that issued it has ended.
func (l *Loop) apply(gen uint64, entries []model.LogEntry, fallback bool) (*model.Snapshot, *recorder.TickRecord, []model.LogEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen != gen || l.status != model.StatusActive {
		return nil, nil, nil, false
	}

	added := l.appendLocked(entries...)

	r := l.deps.Rand
	l.totals.TotalProfit += 10 + r.Float64()*50
	l.totals.ROI = math.Min(model.MaxROI, l.totals.ROI+r.Float64()*5)

	l.tick++
	l.stage = l.deps.Selector.Next(l.tick)

	point := feed.Next(l.controls, r, l.deps.Now())
	l.chart = feed.Slide(l.chart, point)

	snap := l.snapshotLocked()
	l.broker.Publish(snap)

	rec := &recorder.TickRecord{
		Tick:     l.tick,
		Point:    point,
		Totals:   l.totals,
		Stage:    l.stage,
		Controls: l.controls,
		Fallback: fallback,
	}
	return snap, rec, added, true
}

func (l *Loop) announceLocked(msg string) []model.LogEntry {
	if !l.opts.Announce {
		return nil
	}
	return l.appendLocked(model.LogEntry{Category: model.CategorySystem, Message: msg})
}

// appendLocked stamps entries, appends them in order and evicts the oldest past MaxLogs.
func (l *Loop) appendLocked(entries ...model.LogEntry) []model.LogEntry {
	if len(entries) == 0 {
		return nil
	}
	ts := l.deps.Now().Format(model.LogTimeLayout)
	added := make([]model.LogEntry, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		e.Timestamp = ts
		added[i] = e
	}
	l.logs = append(l.logs, added...)
	if n := len(l.logs); n > MaxLogs {
		l.logs = append([]model.LogEntry(nil), l.logs[n-MaxLogs:]...)
	}
	return added
}

func (l *Loop) snapshotLocked() *model.Snapshot {
	logs := make([]model.LogEntry, len(l.logs))
	copy(logs, l.logs)
	chart := make([]model.ChartDataPoint, len(l.chart))
	copy(chart, l.chart)
	return &model.Snapshot{
		Status:      l.status,
		Controls:    l.controls,
		Logs:        logs,
		Chart:       chart,
		Totals:      l.totals,
		ActiveStage: l.stage,
		Tick:        l.tick,
		PublishedAt: l.deps.Now(),
	}
}
