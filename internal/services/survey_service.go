package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soaringjerry/Raay/internal/builder"
)

// SurveyStore persists surveys. Get methods return nil, nil when nothing matches.
type SurveyStore interface {
	InsertSurvey(ctx context.Context, sv *Survey) error
	UpdateSurvey(ctx context.Context, sv *Survey) error
	GetSurvey(ctx context.Context, id string) (*Survey, error)
	GetSurveyByShareToken(ctx context.Context, token string) (*Survey, error)
	AddAudit(ctx context.Context, entry AuditEntry) error
}

type SurveyService struct {
	store        SurveyStore
	shareBaseURL string
	now          func() time.Time
	newID        func() string
}

func NewSurveyService(store SurveyStore, shareBaseURL string) *SurveyService {
	return &SurveyService{
		store:        store,
		shareBaseURL: strings.TrimRight(shareBaseURL, "/"),
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
}

// Save creates the survey when surveyID is empty, otherwise replaces the stored envelope.
// Validation failures come back as *builder.ValidationError; store failures as bad_gateway.
func (s *SurveyService) Save(ctx context.Context, tenantID, actor, surveyID string, env builder.Envelope) (*SaveResult, error) {
	if tenantID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	if strings.TrimSpace(surveyID) == "" {
		sv := &Survey{
			ID:         s.newID(),
			TenantID:   tenantID,
			ShareToken: shareToken(s.newID()),
			Envelope:   env,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.store.InsertSurvey(ctx, sv); err != nil {
			return nil, storeError(err)
		}
		s.audit(ctx, actor, "create_survey", sv)
		return s.result(sv, true), nil
	}
	sv, err := s.owned(ctx, tenantID, surveyID)
	if err != nil {
		return nil, err
	}
	sv.Envelope = env
	sv.UpdatedAt = now
	if err := s.store.UpdateSurvey(ctx, sv); err != nil {
		return nil, storeError(err)
	}
	s.audit(ctx, actor, "update_survey", sv)
	return s.result(sv, false), nil
}

// Load returns a survey owned by tenantID.
func (s *SurveyService) Load(ctx context.Context, tenantID, id string) (*Survey, error) {
	if tenantID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	return s.owned(ctx, tenantID, id)
}

// LoadShared resolves a share token to its survey.
func (s *SurveyService) LoadShared(ctx context.Context, token string) (*Survey, error) {
	if strings.TrimSpace(token) == "" {
		return nil, NewInvalidError("share token required")
	}
	sv, err := s.store.GetSurveyByShareToken(ctx, token)
	if err != nil {
		return nil, storeError(err)
	}
	if sv == nil {
		return nil, NewNotFoundError("survey not found")
	}
	return sv, nil
}

// ShareURL is the public link for token, or "" when no base URL is configured.
func (s *SurveyService) ShareURL(token string) string {
	if s.shareBaseURL == "" {
		return ""
	}
	return s.shareBaseURL + "/s/" + token
}

func (s *SurveyService) owned(ctx context.Context, tenantID, id string) (*Survey, error) {
	sv, err := s.store.GetSurvey(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if sv == nil {
		return nil, NewNotFoundError("survey not found")
	}
	if sv.TenantID != tenantID {
		return nil, NewForbiddenError("forbidden")
	}
	return sv, nil
}

func (s *SurveyService) result(sv *Survey, created bool) *SaveResult {
	return &SaveResult{ID: sv.ID, ShareToken: sv.ShareToken, ShareURL: s.ShareURL(sv.ShareToken), Created: created}
}

// audit is best-effort; a saved survey is not rolled back for a missing audit row.
func (s *SurveyService) audit(ctx context.Context, actor, action string, sv *Survey) {
	_ = s.store.AddAudit(ctx, AuditEntry{
		Time:   s.now(),
		Actor:  actor,
		Action: action,
		Target: sv.ID,
		Note:   strconv.Itoa(len(sv.Envelope.Questions)) + " questions",
	})
}

func storeError(err error) error {
	if _, ok := AsServiceError(err); ok {
		return err
	}
	return NewBadGatewayError("survey store unavailable", err)
}

func shareToken(id string) string {
	return strings.ReplaceAll(id, "-", "")
}
