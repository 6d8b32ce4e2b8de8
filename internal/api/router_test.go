package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/Raay/internal/builder"
	"github.com/soaringjerry/Raay/internal/drafts"
	"github.com/soaringjerry/Raay/internal/metrics"
	"github.com/soaringjerry/Raay/internal/middleware"
	"github.com/soaringjerry/Raay/internal/services"
)

type testServer struct {
	t       *testing.T
	rt      *Router
	handler http.Handler
	store   *MemoryStore
	drafts  *drafts.MemoryStore
	metrics *metrics.Metrics
	token   string
}

func newTestServer(t *testing.T, store services.SurveyStore) *testServer {
	t.Helper()
	mem := NewMemoryStore()
	if store == nil {
		store = mem
	}
	ds := drafts.NewMemoryStore(time.Hour)
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), nil)
	rt := NewRouter(Deps{
		Surveys: services.NewSurveyService(store, "https://raay.example"),
		Drafts:  ds,
		Metrics: m,
	})
	mux := http.NewServeMux()
	rt.Register(mux)

	auth := middleware.NewAuthenticator("test-secret", time.Hour)
	token, err := auth.SignToken("u1", "tenant-1", "owner@example.com")
	require.NoError(t, err)

	return &testServer{
		t:       t,
		rt:      rt,
		handler: middleware.Locale("en")(auth.WithAuth(mux)),
		store:   mem,
		drafts:  ds,
		metrics: m,
		token:   token,
	}
}

type call struct {
	method string
	path   string
	body   any
	lang   string
	authed bool
}

func (ts *testServer) do(c call) *httptest.ResponseRecorder {
	ts.t.Helper()
	var body io.Reader
	if c.body != nil {
		b, err := json.Marshal(c.body)
		require.NoError(ts.t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	if c.lang != "" {
		req.Header.Set("Accept-Language", c.lang)
	}
	if c.authed {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeState(t *testing.T, rr *httptest.ResponseRecorder) sessionState {
	t.Helper()
	var st sessionState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st), rr.Body.String())
	return st
}

func decodeErr(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var e errorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &e), rr.Body.String())
	return e
}

func (ts *testServer) newSession(types ...builder.QuestionType) string {
	ts.t.Helper()
	rr := ts.do(call{method: http.MethodPost, path: "/api/builder/sessions"})
	require.Equal(ts.t, http.StatusCreated, rr.Code, rr.Body.String())
	sid := decodeState(ts.t, rr).SessionID
	require.NotEmpty(ts.t, sid)
	for _, qt := range types {
		rr := ts.do(call{method: http.MethodPost, path: "/api/builder/sessions/" + sid + "/questions", body: map[string]any{"type": qt}})
		require.Equal(ts.t, http.StatusCreated, rr.Code, rr.Body.String())
	}
	return sid
}

func TestHealthAndTypes(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.do(call{method: http.MethodGet, path: "/health", lang: "ar"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"locale":"ar"`)

	rr = ts.do(call{method: http.MethodGet, path: "/api/builder/types?lang=ar"})
	require.Equal(t, http.StatusOK, rr.Code)
	var out struct {
		Types []typeEntry `json:"types"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out.Types, 11)
	assert.Equal(t, builder.TypeShortText, out.Types[0].Type)
	assert.Equal(t, "إجابة قصيرة", out.Types[0].Label)
}

func TestCreateSession_Locale(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.do(call{method: http.MethodPost, path: "/api/builder/sessions", lang: "ar"})
	require.Equal(t, http.StatusCreated, rr.Code)
	st := decodeState(t, rr)
	assert.Equal(t, "ar", st.Locale)
	assert.Contains(t, st.Canvas, `dir="rtl"`)

	rr = ts.do(call{method: http.MethodPost, path: "/api/builder/sessions", lang: "ar", body: map[string]string{"locale": "en"}})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "en", decodeState(t, rr).Locale)
}

func TestAddQuestion(t *testing.T) {
	ts := newTestServer(t, nil)
	sid := ts.newSession()

	rr := ts.do(call{method: http.MethodPost, path: "/api/builder/sessions/" + sid + "/questions", body: map[string]any{"type": "rating"}})
	require.Equal(t, http.StatusCreated, rr.Code)
	st := decodeState(t, rr)
	assert.True(t, st.Applied)
	assert.Equal(t, 1, st.ID)
	assert.Equal(t, 1, st.Selected)
	assert.Equal(t, []int{1}, st.IDs)
	assert.Contains(t, st.Editor, "max_rating")

	rr = ts.do(call{method: http.MethodPost, path: "/api/builder/sessions/" + sid + "/questions", body: map[string]any{"type": "matrix"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "unknown_type", decodeErr(t, rr).Error)

	rr = ts.do(call{method: http.MethodGet, path: "/api/builder/sessions/" + sid})
	assert.Equal(t, []int{1}, decodeState(t, rr).IDs)
}

func TestUnknownSession(t *testing.T) {
	ts := newTestServer(t, nil)
	rr := ts.do(call{method: http.MethodGet, path: "/api/builder/sessions/nope", lang: "ar"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "انتهت صلاحية جلسة التحرير هذه.", decodeErr(t, rr).Message)
}

func TestStaleReferencesAreIgnored(t *testing.T) {
	ts := newTestServer(t, nil)
	sid := ts.newSession(builder.TypeShortText, builder.TypeEmail)
	base := "/api/builder/sessions/" + sid

	for _, c := range []call{
		{method: http.MethodDelete, path: base + "/questions/9"},
		{method: http.MethodPost, path: base + "/questions/9/duplicate"},
		{method: http.MethodPut, path: base + "/questions/9/type", body: map[string]any{"type": "date"}},
		{method: http.MethodPost, path: base + "/selection", body: map[string]any{"id": 9}},
		{method: http.MethodPost, path: base + "/order", body: map[string]any{"ids": []int{2}}},
		{method: http.MethodPost, path: base + "/order", body: map[string]any{"move": map[string]int{"id": 9, "to": 0}}},
	} {
		rr := ts.do(c)
		require.Equal(t, http.StatusOK, rr.Code, "%s %s: %s", c.method, c.path, rr.Body.String())
		st := decodeState(t, rr)
		assert.False(t, st.Applied, "%s %s", c.method, c.path)
		assert.Equal(t, []int{1, 2}, st.IDs)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.BuilderOperationsTotal.WithLabelValues("delete", builder.OutcomeIgnored)))
}

func TestStructuralOperations(t *testing.T) {
	ts := newTestServer(t, nil)
	sid := ts.newSession(builder.TypeShortText, builder.TypeSingleChoice, builder.TypeRating)
	base := "/api/builder/sessions/" + sid

	rr := ts.do(call{method: http.MethodPost, path: base + "/questions/2/duplicate"})
	require.Equal(t, http.StatusCreated, rr.Code)
	st := decodeState(t, rr)
	assert.Equal(t, 4, st.ID)
	assert.Equal(t, []int{1, 2, 3, 4}, st.IDs)

	rr = ts.do(call{method: http.MethodPost, path: base + "/order", body: map[string]any{"ids": []int{4, 3, 2, 1}}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []int{4, 3, 2, 1}, decodeState(t, rr).IDs)

	rr = ts.do(call{method: http.MethodPost, path: base + "/order", body: map[string]any{"move": map[string]int{"id": 1, "to": 0}}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []int{1, 4, 3, 2}, decodeState(t, rr).IDs)

	rr = ts.do(call{method: http.MethodDelete, path: base + "/questions/3"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []int{1, 4, 2}, decodeState(t, rr).IDs)

	rr = ts.do(call{method: http.MethodPut, path: base + "/questions/4/type", body: map[string]any{"type": "nps"}})
	require.Equal(t, http.StatusOK, rr.Code)
	st = decodeState(t, rr)
	assert.Equal(t, 5, st.ID)
	assert.Equal(t, []int{1, 5, 2}, st.IDs)

	rr = ts.do(call{method: http.MethodGet, path: base + "/envelope"})
	require.Equal(t, http.StatusOK, rr.Code)
	var env builder.Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Len(t, env.Questions, 3)
	assert.Equal(t, builder.TypeNPS, env.Questions[1].Type)
	for i, q := range env.Questions {
		assert.Equal(t, i, q.OrderIndex)
	}

	rr = ts.do(call{method: http.MethodPost, path: base + "/order", body: map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = ts.do(call{method: http.MethodDelete, path: base + "/questions/abc"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEdits(t *testing.T) {
	ts := newTestServer(t, nil)
	sid := ts.newSession(builder.TypeMultiChoice)
	base := "/api/builder/sessions/" + sid

	rr := ts.do(call{method: http.MethodPost, path: base + "/edits", body: builder.Edit{Field: builder.EditTextLocalized, Value: "ما هي ألوانك المفضلة؟"}})
	require.Equal(t, http.StatusOK, rr.Code)
	st := decodeState(t, rr)
	assert.True(t, st.Applied)
	assert.False(t, st.Rebuild)
	assert.Contains(t, st.Canvas, "ما هي ألوانك المفضلة؟")

	rr = ts.do(call{method: http.MethodPost, path: base + "/edits", body: builder.Edit{Field: builder.EditChoiceRemove, Index: 0}, lang: "ar"})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	e := decodeErr(t, rr)
	assert.Equal(t, builder.CodeMinChoices, e.Error)
	assert.Equal(t, "يجب أن يحتوي سؤال الاختيار على خيارين على الأقل.", e.Message)
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.ValidationRejections.WithLabelValues(builder.CodeMinChoices)))

	rr = ts.do(call{method: http.MethodPost, path: base + "/edits", body: builder.Edit{Field: builder.EditChoiceAdd}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decodeState(t, rr).Rebuild)

	rr = ts.do(call{method: http.MethodPost, path: base + "/edits", body: builder.Edit{Field: builder.EditChoiceText, Index: 7, Value: "x"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decodeState(t, rr).Applied)

	rr = ts.do(call{method: http.MethodPost, path: base + "/edits", body: builder.Edit{Field: builder.EditMaxRating, Value: "7"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(call{method: http.MethodPost, path: base + "/selection", body: map[string]any{"id": 0}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, decodeState(t, rr).Selected)

	rr = ts.do(call{method: http.MethodPost, path: base + "/edits", body: builder.Edit{Field: builder.EditText, Value: "x"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decodeState(t, rr).Applied)

	rr = ts.do(call{method: http.MethodGet, path: base + "/editor"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"selected":0`)
}

func TestPreview(t *testing.T) {
	ts := newTestServer(t, nil)
	sid := ts.newSession(builder.TypeDropdown)
	base := "/api/builder/sessions/" + sid

	rr := ts.do(call{method: http.MethodPut, path: base + "/meta", body: map[string]any{
		"title": map[string]string{"text": "Feedback", "text_localized": "ملاحظات"},
	}})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(call{method: http.MethodGet, path: base + "/preview?lang=ar"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	body := rr.Body.String()
	assert.Contains(t, body, `dir="rtl"`)
	assert.Contains(t, body, "ملاحظات")
	assert.Contains(t, body, "الخيار 1")
}

func TestSave(t *testing.T) {
	ts := newTestServer(t, nil)
	sid := ts.newSession(builder.TypeShortText, builder.TypeRating)
	base := "/api/builder/sessions/" + sid

	rr := ts.do(call{method: http.MethodPost, path: base + "/save"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.do(call{method: http.MethodPost, path: base + "/save", authed: true})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, builder.CodeTitleRequired, decodeErr(t, rr).Error)

	ts.do(call{method: http.MethodPut, path: base + "/meta", body: map[string]any{"title": map[string]string{"text": "Onboarding"}}})
	rr = ts.do(call{method: http.MethodPost, path: base + "/save", authed: true})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var res services.SaveResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.True(t, res.Created)
	assert.Equal(t, "https://raay.example/s/"+res.ShareToken, res.ShareURL)

	rr = ts.do(call{method: http.MethodPost, path: base + "/save", authed: true})
	require.Equal(t, http.StatusOK, rr.Code)
	var again services.SaveResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &again))
	assert.False(t, again.Created)
	assert.Equal(t, res.ID, again.ID)

	audit := ts.store.ListAudit()
	require.Len(t, audit, 2)
	assert.Equal(t, "owner@example.com", audit[0].Actor)

	rr = ts.do(call{method: http.MethodGet, path: "/api/surveys/shared/" + res.ShareToken + "/preview"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Onboarding")

	rr = ts.do(call{method: http.MethodGet, path: "/api/surveys/shared/missing/preview"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.do(call{method: http.MethodGet, path: "/api/surveys/" + res.ID, authed: true})
	require.Equal(t, http.StatusOK, rr.Code)
	var sv services.Survey
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sv))
	assert.Len(t, sv.Envelope.Questions, 2)

	rr = ts.do(call{method: http.MethodGet, path: "/api/surveys/" + res.ID + "/export?format=csv", authed: true})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "attachment; filename="+res.ID+".csv", rr.Header().Get("Content-Disposition"))
	assert.Contains(t, rr.Body.String(), "short-text")
	rr = ts.do(call{method: http.MethodGet, path: "/api/surveys/" + res.ID + "/export?format=pdf", authed: true})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.SurveySavesTotal.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.SurveySavesTotal.WithLabelValues("updated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.SurveySavesTotal.WithLabelValues("invalid")))
}

func TestOpenSavedSurvey(t *testing.T) {
	ts := newTestServer(t, nil)
	sid := ts.newSession(builder.TypeEmail, builder.TypeSlider)
	base := "/api/builder/sessions/" + sid
	ts.do(call{method: http.MethodPut, path: base + "/meta", body: map[string]any{"title": map[string]string{"text": "Contact"}}})
	rr := ts.do(call{method: http.MethodPost, path: base + "/save", authed: true})
	require.Equal(t, http.StatusCreated, rr.Code)
	var res services.SaveResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))

	rr = ts.do(call{method: http.MethodPost, path: "/api/builder/sessions", body: map[string]string{"survey_id": res.ID}})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.do(call{method: http.MethodPost, path: "/api/builder/sessions", body: map[string]string{"survey_id": res.ID}, authed: true})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	st := decodeState(t, rr)
	assert.Equal(t, []int{1, 2}, st.IDs)
	assert.Equal(t, res.ID, st.SurveyID)

	rr = ts.do(call{method: http.MethodPost, path: "/api/builder/sessions/" + st.SessionID + "/save", authed: true})
	require.Equal(t, http.StatusOK, rr.Code)
}

type failingStore struct {
	*MemoryStore
	fail bool
}

func (f *failingStore) InsertSurvey(ctx context.Context, sv *services.Survey) error {
	if f.fail {
		return errors.New("database is locked")
	}
	return f.MemoryStore.InsertSurvey(ctx, sv)
}

func TestSave_StoreFailureIsRetryable(t *testing.T) {
	store := &failingStore{MemoryStore: NewMemoryStore(), fail: true}
	ts := newTestServer(t, store)
	sid := ts.newSession(builder.TypeLongText)
	base := "/api/builder/sessions/" + sid
	ts.do(call{method: http.MethodPut, path: base + "/meta", body: map[string]any{"title": map[string]string{"text": "Retry me"}}})

	rr := ts.do(call{method: http.MethodPost, path: base + "/save", authed: true, lang: "ar"})
	require.Equal(t, http.StatusBadGateway, rr.Code)
	e := decodeErr(t, rr)
	assert.True(t, e.Retryable)
	assert.NotContains(t, e.Message, "database is locked")

	rr = ts.do(call{method: http.MethodGet, path: base})
	assert.Equal(t, []int{1}, decodeState(t, rr).IDs)

	store.fail = false
	rr = ts.do(call{method: http.MethodPost, path: base + "/save", authed: true})
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.SurveySavesTotal.WithLabelValues("unavailable")))
}

func TestIdleSessionRestoredFromDraft(t *testing.T) {
	ts := newTestServer(t, nil)
	sid := ts.newSession(builder.TypeShortText, builder.TypePhone, builder.TypeDate)
	base := "/api/builder/sessions/" + sid
	ts.do(call{method: http.MethodDelete, path: base + "/questions/2"})
	ts.do(call{method: http.MethodPost, path: base + "/selection", body: map[string]any{"id": 3}})

	now := time.Now()
	ts.rt.sessions.now = func() time.Time { return now.Add(time.Hour) }
	assert.Equal(t, 1, ts.rt.SweepIdle())
	assert.Equal(t, 0, ts.rt.sessions.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.SessionsEvictedTotal))

	rr := ts.do(call{method: http.MethodGet, path: base})
	require.Equal(t, http.StatusOK, rr.Code)
	st := decodeState(t, rr)
	assert.Equal(t, []int{1, 3}, st.IDs)
	assert.Equal(t, 3, st.Selected)

	// Ids are never reused after a restore.
	rr = ts.do(call{method: http.MethodPost, path: base + "/questions", body: map[string]any{"type": "email"}})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 4, decodeState(t, rr).ID)
}

func TestSaveAfterRestoreUpdatesSameSurvey(t *testing.T) {
	ts := newTestServer(t, nil)
	sid := ts.newSession(builder.TypeShortText)
	base := "/api/builder/sessions/" + sid
	ts.do(call{method: http.MethodPut, path: base + "/meta", body: map[string]any{"title": map[string]string{"text": "Kept"}}})

	rr := ts.do(call{method: http.MethodPost, path: base + "/save", authed: true})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var first services.SaveResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))

	now := time.Now()
	ts.rt.sessions.now = func() time.Time { return now.Add(time.Hour) }
	require.Equal(t, 1, ts.rt.SweepIdle())

	rr = ts.do(call{method: http.MethodGet, path: base})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, first.ID, decodeState(t, rr).SurveyID)

	rr = ts.do(call{method: http.MethodPost, path: base + "/save", authed: true})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var second services.SaveResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &second))
	assert.False(t, second.Created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ShareToken, second.ShareToken)
}

func TestOpenedSurveyRestoredFromDraftKeepsLink(t *testing.T) {
	ts := newTestServer(t, nil)
	sid := ts.newSession(builder.TypeEmail)
	base := "/api/builder/sessions/" + sid
	ts.do(call{method: http.MethodPut, path: base + "/meta", body: map[string]any{"title": map[string]string{"text": "Linked"}}})
	rr := ts.do(call{method: http.MethodPost, path: base + "/save", authed: true})
	require.Equal(t, http.StatusCreated, rr.Code)
	var res services.SaveResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))

	rr = ts.do(call{method: http.MethodPost, path: "/api/builder/sessions", body: map[string]string{"survey_id": res.ID}, authed: true})
	require.Equal(t, http.StatusCreated, rr.Code)
	opened := decodeState(t, rr).SessionID

	now := time.Now()
	ts.rt.sessions.now = func() time.Time { return now.Add(time.Hour) }
	require.Equal(t, 2, ts.rt.SweepIdle())

	rr = ts.do(call{method: http.MethodPost, path: "/api/builder/sessions/" + opened + "/save", authed: true})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var again services.SaveResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &again))
	assert.Equal(t, res.ID, again.ID)
}

func TestDeleteSession(t *testing.T) {
	ts := newTestServer(t, nil)
	sid := ts.newSession(builder.TypeShortText)

	rr := ts.do(call{method: http.MethodDelete, path: "/api/builder/sessions/" + sid})
	assert.Equal(t, http.StatusNoContent, rr.Code)

	_, ok, err := ts.drafts.Get(context.Background(), sid)
	require.NoError(t, err)
	assert.False(t, ok)

	rr = ts.do(call{method: http.MethodGet, path: "/api/builder/sessions/" + sid})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBadJSON(t *testing.T) {
	ts := newTestServer(t, nil)
	sid := ts.newSession()
	req := httptest.NewRequest(http.MethodPost, "/api/builder/sessions/"+sid+"/questions", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
