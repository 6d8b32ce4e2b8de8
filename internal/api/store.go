package api

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/soaringjerry/Raay/internal/services"
)

// MemoryStore is an in-process services.SurveyStore for development and tests. Surveys are
// stored as encoded copies so callers never share question options with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	surveys map[string][]byte
	byToken map[string]string
	audit   []services.AuditEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		surveys: map[string][]byte{},
		byToken: map[string]string{},
		audit:   []services.AuditEntry{},
	}
}

func (s *MemoryStore) InsertSurvey(ctx context.Context, sv *services.Survey) error {
	b, err := json.Marshal(sv)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.surveys[sv.ID]; ok {
		return services.NewConflictError("survey exists")
	}
	if _, ok := s.byToken[sv.ShareToken]; ok {
		return services.NewConflictError("share token in use")
	}
	s.surveys[sv.ID] = b
	s.byToken[sv.ShareToken] = sv.ID
	return nil
}

func (s *MemoryStore) UpdateSurvey(ctx context.Context, sv *services.Survey) error {
	b, err := json.Marshal(sv)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.surveys[sv.ID]; !ok {
		return services.NewNotFoundError("survey not found")
	}
	s.surveys[sv.ID] = b
	return nil
}

func (s *MemoryStore) GetSurvey(ctx context.Context, id string) (*services.Survey, error) {
	s.mu.RLock()
	b, ok := s.surveys[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var sv services.Survey
	if err := json.Unmarshal(b, &sv); err != nil {
		return nil, err
	}
	return &sv, nil
}

func (s *MemoryStore) GetSurveyByShareToken(ctx context.Context, token string) (*services.Survey, error) {
	s.mu.RLock()
	id, ok := s.byToken[token]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return s.GetSurvey(ctx, id)
}

func (s *MemoryStore) AddAudit(ctx context.Context, e services.AuditEntry) error {
	s.mu.Lock()
	s.audit = append(s.audit, e)
	s.mu.Unlock()
	return nil
}

// ListAudit returns the audit log, newest first.
func (s *MemoryStore) ListAudit() []services.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]services.AuditEntry, len(s.audit))
	copy(out, s.audit)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	return out
}
