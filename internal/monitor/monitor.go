// Package monitor runs the poll cycle for one feed source: fetch the latest
// post, decide whether it is new, relay it to the channel and advance the
// last-seen marker.
package monitor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gooseband/relaybot/internal/model"
)

type Source interface {
	Name() string
	Latest(ctx context.Context) (model.Post, error)
}

type Sender interface {
	Send(post model.Post) error
}

type HistoryStorage interface {
	Save(ctx context.Context, post model.Post) error
}

type ErrorNotifier interface {
	Notify(msg string)
}

// Outcome is the result of one poll cycle.
type Outcome int

const (
	Skipped Outcome = iota
	Relayed
	Failed
)

// marker is the identifier/timestamp boundary separating already-relayed
// posts from not-yet-seen ones. It lives in memory only.
type marker struct {
	id        string
	published time.Time
	set       bool
}

type Monitor struct {
	source   Source
	sender   Sender
	history  HistoryStorage
	reporter ErrorNotifier

	checkInterval time.Duration
	relayFirst    bool

	// runMu serializes poll cycles: a forced check from the bot never
	// overlaps with a scheduled one. stateMu guards the marker and the
	// snapshot, which the status command reads from another goroutine.
	runMu   sync.Mutex
	stateMu sync.Mutex
	mark    marker
	snap    model.Snapshot
}

func New(
	source Source,
	sender Sender,
	history HistoryStorage,
	reporter ErrorNotifier,
	checkInterval time.Duration,
	relayFirst bool,
) *Monitor {
	return &Monitor{
		source:        source,
		sender:        sender,
		history:       history,
		reporter:      reporter,
		checkInterval: checkInterval,
		relayFirst:    relayFirst,
		snap:          model.Snapshot{SourceName: source.Name()},
	}
}

func (m *Monitor) Name() string {
	return m.source.Name()
}

// Start runs an immediate check and then one check per interval until the
// context is cancelled. Fetch and send failures are recorded in the
// snapshot and do not stop the loop.
func (m *Monitor) Start(ctx context.Context) error {
	log.Printf("[INFO] monitor %s started", m.source.Name())

	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	m.Check(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check runs one poll cycle and reports its outcome.
func (m *Monitor) Check(ctx context.Context) (Outcome, error) {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	name := m.source.Name()
	log.Printf("[INFO] checking %s for new posts", name)

	post, err := m.source.Latest(ctx)
	if err != nil {
		m.recordFailure(err)
		log.Printf("[ERROR] failed to fetch latest post from %s: %v", name, err)
		m.reporter.Notify(fmt.Sprintf("failed to fetch latest post from %s: %v", name, err))
		return Failed, err
	}

	if !m.isNew(post) {
		m.recordCheck()
		log.Printf("[INFO] no new posts on %s", name)
		return Skipped, nil
	}

	if m.baseline(post) {
		log.Printf("[INFO] baseline established for %s", name)
		return Skipped, nil
	}

	if err := m.sender.Send(post); err != nil {
		// The marker stays put so the post is relayed on the next cycle
		// instead of being silently dropped.
		m.recordFailure(err)
		log.Printf("[ERROR] failed to relay post from %s: %v", name, err)
		m.reporter.Notify(fmt.Sprintf("failed to relay post from %s: %v", name, err))
		return Failed, err
	}

	m.advance(post)
	log.Printf("[INFO] relayed new post from %s: %s", name, post.Link)

	if m.history != nil {
		if err := m.history.Save(ctx, post); err != nil {
			log.Printf("[ERROR] failed to save post history for %s: %v", name, err)
		}
	}

	return Relayed, nil
}

// Snapshot returns the current status of this source.
func (m *Monitor) Snapshot() model.Snapshot {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.snap
}

// isNew reports whether the post lies past the stored marker. Posts with
// known timestamps compare by strict ordering, otherwise by identifier
// inequality.
func (m *Monitor) isNew(post model.Post) bool {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	if !m.mark.set {
		return true
	}
	if !post.Published.IsZero() && !m.mark.published.IsZero() {
		return post.Published.After(m.mark.published)
	}
	return post.ID != m.mark.id
}

// baseline records the first observed post without relaying it, unless the
// monitor is configured to relay the first post too. Reports whether the
// post was consumed as a baseline.
func (m *Monitor) baseline(post model.Post) bool {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	if m.mark.set || m.relayFirst {
		return false
	}

	m.mark = marker{id: post.ID, published: post.Published, set: true}
	m.snap.LastCheck = time.Now()
	m.snap.LastError = ""
	m.snap.ErrorCount = 0
	return true
}

// advance moves the marker past a successfully relayed post.
func (m *Monitor) advance(post model.Post) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	m.mark = marker{id: post.ID, published: post.Published, set: true}
	m.snap.LastCheck = time.Now()
	m.snap.LastPost = time.Now()
	m.snap.LastError = ""
	m.snap.ErrorCount = 0
	m.snap.Relayed++
}

func (m *Monitor) recordCheck() {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	m.snap.LastCheck = time.Now()
	m.snap.LastError = ""
	m.snap.ErrorCount = 0
}

func (m *Monitor) recordFailure(err error) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	m.snap.LastCheck = time.Now()
	m.snap.LastError = err.Error()
	m.snap.ErrorCount++
}
