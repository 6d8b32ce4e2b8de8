package api

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soaringjerry/Raay/internal/builder"
	"github.com/soaringjerry/Raay/internal/drafts"
	"github.com/soaringjerry/Raay/internal/metrics"
	"github.com/soaringjerry/Raay/internal/services"
)

// liveSession guards one builder session. Sessions are single-user but a browser can still
// fire overlapping requests, so every handler holds mu while it touches s.
type liveSession struct {
	mu       sync.Mutex
	s        *builder.Session
	surveyID string
	lastUsed time.Time
}

// sessionRegistry holds the live sessions of this process. Sessions idle past idle are
// evicted by Sweep and come back from the draft store on the next request.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*liveSession
	drafts   drafts.Store
	idle     time.Duration
	now      func() time.Time
	log      *zap.Logger
	metrics  *metrics.Metrics
}

func newSessionRegistry(store drafts.Store, idle time.Duration, log *zap.Logger, m *metrics.Metrics) *sessionRegistry {
	return &sessionRegistry{
		sessions: map[string]*liveSession{},
		drafts:   store,
		idle:     idle,
		now:      time.Now,
		log:      log,
		metrics:  m,
	}
}

func (r *sessionRegistry) options() []builder.Option {
	return []builder.Option{builder.WithLogger(r.log), builder.WithObserver(r.metrics)}
}

func (r *sessionRegistry) create(locale string) *liveSession {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	opts := append(r.options(), builder.WithLocale(locale))
	ls := &liveSession{s: builder.NewSession(id, opts...), lastUsed: r.now()}
	r.mu.Lock()
	r.sessions[id] = ls
	n := len(r.sessions)
	r.mu.Unlock()
	r.metrics.SetActiveSessions(n)
	return ls
}

// open starts a session editing a saved survey. Question ids are assigned 1..n in
// survey order.
func (r *sessionRegistry) open(locale string, sv *services.Survey) (*liveSession, error) {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	snap := builder.Snapshot{Locale: locale, Envelope: sv.Envelope, LastID: len(sv.Envelope.Questions), SurveyID: sv.ID}
	for i := range sv.Envelope.Questions {
		snap.IDs = append(snap.IDs, i+1)
	}
	s, err := builder.Restore(id, snap, r.options()...)
	if err != nil {
		return nil, err
	}
	ls := &liveSession{s: s, surveyID: sv.ID, lastUsed: r.now()}
	r.mu.Lock()
	r.sessions[id] = ls
	n := len(r.sessions)
	r.mu.Unlock()
	r.metrics.SetActiveSessions(n)
	return ls, nil
}

// get returns the live session id, restoring it from its draft when it was evicted.
// The second result is false when neither exists.
func (r *sessionRegistry) get(ctx context.Context, id string) (*liveSession, bool) {
	r.mu.Lock()
	ls, ok := r.sessions[id]
	if ok {
		ls.lastUsed = r.now()
	}
	r.mu.Unlock()
	if ok {
		return ls, true
	}

	snap, found, err := r.drafts.Get(ctx, id)
	if err != nil {
		r.metrics.RecordDraftError("get")
		r.log.Warn("draft lookup failed", zap.String("session", id), zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	s, err := builder.Restore(id, snap, r.options()...)
	if err != nil {
		r.log.Warn("draft restore failed", zap.String("session", id), zap.Error(err))
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another request may have restored it first.
	if ls, ok := r.sessions[id]; ok {
		ls.lastUsed = r.now()
		return ls, true
	}
	ls = &liveSession{s: s, surveyID: snap.SurveyID, lastUsed: r.now()}
	r.sessions[id] = ls
	r.metrics.SetActiveSessions(len(r.sessions))
	r.log.Info("session restored from draft", zap.String("session", id))
	return ls, true
}

// persist stores a draft of ls. Failures are logged and counted; the live session stays
// authoritative.
func (r *sessionRegistry) persist(ctx context.Context, ls *liveSession) {
	snap := ls.s.Snapshot()
	snap.SurveyID = ls.surveyID
	if err := r.drafts.Set(ctx, ls.s.ID, snap); err != nil {
		r.metrics.RecordDraftError("set")
		r.log.Warn("draft save failed", zap.String("session", ls.s.ID), zap.Error(err))
	}
}

func (r *sessionRegistry) remove(ctx context.Context, id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()
	r.metrics.SetActiveSessions(n)
	if err := r.drafts.Delete(ctx, id); err != nil {
		r.metrics.RecordDraftError("delete")
		r.log.Warn("draft delete failed", zap.String("session", id), zap.Error(err))
	}
}

// Sweep evicts sessions idle longer than the configured timeout and returns how many went.
// Their drafts are kept.
func (r *sessionRegistry) Sweep() int {
	cutoff := r.now().Add(-r.idle)
	r.mu.Lock()
	evicted := 0
	for id, ls := range r.sessions {
		if ls.lastUsed.Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetActiveSessions(n)
	if evicted > 0 {
		r.metrics.RecordEvictions(evicted)
		r.log.Info("idle sessions evicted", zap.Int("evicted", evicted), zap.Int("active", n))
	}
	return evicted
}

func (r *sessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
