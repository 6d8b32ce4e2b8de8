package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/soaringjerry/Raay/internal/builder"
	"github.com/soaringjerry/Raay/internal/drafts"
	"github.com/soaringjerry/Raay/internal/metrics"
	"github.com/soaringjerry/Raay/internal/middleware"
	"github.com/soaringjerry/Raay/internal/services"
	"github.com/soaringjerry/Raay/internal/utils"
)

// Deps are the collaborators of the builder API. Nil fields get in-process defaults.
type Deps struct {
	Surveys     *services.SurveyService
	Drafts      drafts.Store
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	SessionIdle time.Duration
}

type Router struct {
	surveys  *services.SurveyService
	sessions *sessionRegistry
	log      *zap.Logger
	metrics  *metrics.Metrics
}

func NewRouter(d Deps) *Router {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NewWithRegistry(prometheus.NewRegistry(), d.Logger)
	}
	if d.Drafts == nil {
		d.Drafts = drafts.NewMemoryStore(drafts.DefaultTTL)
	}
	if d.Surveys == nil {
		d.Surveys = services.NewSurveyService(NewMemoryStore(), "")
	}
	if d.SessionIdle <= 0 {
		d.SessionIdle = 30 * time.Minute
	}
	return &Router{
		surveys:  d.Surveys,
		sessions: newSessionRegistry(d.Drafts, d.SessionIdle, d.Logger, d.Metrics),
		log:      d.Logger,
		metrics:  d.Metrics,
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", rt.handleHealth)
	mux.HandleFunc("GET /api/builder/types", rt.handleTypes)

	mux.HandleFunc("POST /api/builder/sessions", rt.handleCreateSession)
	mux.HandleFunc("GET /api/builder/sessions/{sid}", rt.withSession(rt.handleGetSession))
	mux.HandleFunc("DELETE /api/builder/sessions/{sid}", rt.handleDeleteSession)

	mux.HandleFunc("POST /api/builder/sessions/{sid}/questions", rt.withSession(rt.handleAddQuestion))
	mux.HandleFunc("POST /api/builder/sessions/{sid}/questions/{qid}/duplicate", rt.withSession(rt.handleDuplicate))
	mux.HandleFunc("DELETE /api/builder/sessions/{sid}/questions/{qid}", rt.withSession(rt.handleDeleteQuestion))
	mux.HandleFunc("PUT /api/builder/sessions/{sid}/questions/{qid}/type", rt.withSession(rt.handleChangeType))
	mux.HandleFunc("POST /api/builder/sessions/{sid}/order", rt.withSession(rt.handleOrder))
	mux.HandleFunc("POST /api/builder/sessions/{sid}/selection", rt.withSession(rt.handleSelect))
	mux.HandleFunc("GET /api/builder/sessions/{sid}/editor", rt.withSession(rt.handleEditor))
	mux.HandleFunc("POST /api/builder/sessions/{sid}/edits", rt.withSession(rt.handleEdit))
	mux.HandleFunc("PUT /api/builder/sessions/{sid}/meta", rt.withSession(rt.handleMeta))
	mux.HandleFunc("GET /api/builder/sessions/{sid}/envelope", rt.withSession(rt.handleEnvelope))
	mux.HandleFunc("GET /api/builder/sessions/{sid}/preview", rt.withSession(rt.handlePreview))
	mux.Handle("POST /api/builder/sessions/{sid}/save", middleware.RequireAuth(rt.withSession(rt.handleSave)))

	mux.Handle("GET /api/surveys/{id}", middleware.RequireAuth(http.HandlerFunc(rt.handleGetSurvey)))
	mux.Handle("GET /api/surveys/{id}/export", middleware.RequireAuth(http.HandlerFunc(rt.handleExport)))
	mux.HandleFunc("GET /api/surveys/shared/{token}/preview", rt.handleSharedPreview)
}

// SweepIdle evicts idle sessions. Called periodically by the server.
func (rt *Router) SweepIdle() int { return rt.sessions.Sweep() }

// GET /health
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":              true,
		"name":            "Raay API",
		"locale":          locale,
		"msg":             utils.T(locale, "health.ok"),
		"active_sessions": rt.sessions.Len(),
	})
}

type typeEntry struct {
	Type  builder.QuestionType `json:"type"`
	Label string               `json:"label"`
}

// GET /api/builder/types returns the palette in display order.
func (rt *Router) handleTypes(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	kinds := builder.Kinds()
	out := make([]typeEntry, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, typeEntry{Type: k.Type(), Label: k.Label().In(locale)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"types": out})
}

// sessionState is returned by every builder endpoint so the client can swap both panes.
type sessionState struct {
	SessionID string `json:"session_id"`
	Applied   bool   `json:"applied"`
	ID        int    `json:"id,omitempty"`
	Rebuild   bool   `json:"rebuild,omitempty"`
	Locale    string `json:"locale"`
	IDs       []int  `json:"ids"`
	Selected  int    `json:"selected"`
	SurveyID  string `json:"survey_id,omitempty"`
	Canvas    string `json:"canvas"`
	Editor    string `json:"editor"`
}

func (rt *Router) state(ls *liveSession) (sessionState, error) {
	canvas, err := ls.s.CanvasHTML()
	if err != nil {
		return sessionState{}, err
	}
	editor, err := ls.s.EditorHTML()
	if err != nil {
		return sessionState{}, err
	}
	ids := make([]int, 0, ls.s.Len())
	for _, q := range ls.s.Questions() {
		ids = append(ids, q.ID)
	}
	return sessionState{
		SessionID: ls.s.ID,
		Locale:    ls.s.Locale(),
		IDs:       ids,
		Selected:  ls.s.Selected(),
		SurveyID:  ls.surveyID,
		Canvas:    canvas,
		Editor:    editor,
	}, nil
}

func (rt *Router) writeState(w http.ResponseWriter, r *http.Request, status int, ls *liveSession, fill func(*sessionState)) {
	st, err := rt.state(ls)
	if err != nil {
		rt.writeBuilderError(w, r, err)
		return
	}
	if fill != nil {
		fill(&st)
	}
	writeJSON(w, status, st)
}

// finish answers a mutation. Applied changes are drafted; stale references and order
// mismatches answer 200 with applied=false and the current state.
func (rt *Router) finish(w http.ResponseWriter, r *http.Request, ls *liveSession, status int, err error, fill func(*sessionState)) {
	switch {
	case err == nil:
		rt.sessions.persist(r.Context(), ls)
		rt.writeState(w, r, status, ls, func(st *sessionState) {
			st.Applied = true
			if fill != nil {
				fill(st)
			}
		})
	case builder.IsRecoverable(err):
		rt.writeState(w, r, http.StatusOK, ls, nil)
	default:
		rt.writeBuilderError(w, r, err)
	}
}

// withSession resolves {sid} and holds the session lock for the duration of h.
func (rt *Router) withSession(h func(http.ResponseWriter, *http.Request, *liveSession)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ls, ok := rt.sessions.get(r.Context(), r.PathValue("sid"))
		if !ok {
			writeError(w, http.StatusNotFound, "session_not_found", utils.T(middleware.LocaleFromContext(r.Context()), "error.session_gone"))
			return
		}
		ls.mu.Lock()
		defer ls.mu.Unlock()
		h(w, r, ls)
	}
}

func questionID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("qid"))
	return id, err == nil
}

// POST /api/builder/sessions {locale?, survey_id?}
// With survey_id the saved survey is opened for editing; that requires a token.
func (rt *Router) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Locale   string `json:"locale"`
		SurveyID string `json:"survey_id"`
	}
	if err := decodeJSON(r, w, &req); err != nil {
		rt.badRequest(w, r)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	if req.Locale == builder.LocaleEnglish || req.Locale == builder.LocaleArabic {
		locale = req.Locale
	}

	if req.SurveyID == "" {
		ls := rt.sessions.create(locale)
		rt.sessions.persist(r.Context(), ls)
		rt.writeState(w, r, http.StatusCreated, ls, func(st *sessionState) { st.Applied = true })
		return
	}

	tid, _ := middleware.TenantIDFromContext(r.Context())
	sv, err := rt.surveys.Load(r.Context(), tid, req.SurveyID)
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	ls, err := rt.sessions.open(locale, sv)
	if err != nil {
		rt.writeBuilderError(w, r, err)
		return
	}
	rt.sessions.persist(r.Context(), ls)
	rt.writeState(w, r, http.StatusCreated, ls, func(st *sessionState) { st.Applied = true })
}

// GET /api/builder/sessions/{sid}
func (rt *Router) handleGetSession(w http.ResponseWriter, r *http.Request, ls *liveSession) {
	rt.writeState(w, r, http.StatusOK, ls, func(st *sessionState) { st.Applied = true })
}

// DELETE /api/builder/sessions/{sid} discards the session and its draft.
func (rt *Router) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	rt.sessions.remove(r.Context(), r.PathValue("sid"))
	w.WriteHeader(http.StatusNoContent)
}

// POST .../questions {type}
func (rt *Router) handleAddQuestion(w http.ResponseWriter, r *http.Request, ls *liveSession) {
	var req struct {
		Type builder.QuestionType `json:"type"`
	}
	if err := decodeJSON(r, w, &req); err != nil {
		rt.badRequest(w, r)
		return
	}
	id, err := ls.s.AddQuestion(req.Type)
	rt.finish(w, r, ls, http.StatusCreated, err, func(st *sessionState) { st.ID = id })
}

// POST .../questions/{qid}/duplicate
func (rt *Router) handleDuplicate(w http.ResponseWriter, r *http.Request, ls *liveSession) {
	qid, ok := questionID(r)
	if !ok {
		rt.badRequest(w, r)
		return
	}
	id, err := ls.s.DuplicateQuestion(qid)
	rt.finish(w, r, ls, http.StatusCreated, err, func(st *sessionState) { st.ID = id })
}

// DELETE .../questions/{qid}
func (rt *Router) handleDeleteQuestion(w http.ResponseWriter, r *http.Request, ls *liveSession) {
	qid, ok := questionID(r)
	if !ok {
		rt.badRequest(w, r)
		return
	}
	rt.finish(w, r, ls, http.StatusOK, ls.s.DeleteQuestion(qid), nil)
}

// PUT .../questions/{qid}/type {type}
func (rt *Router) handleChangeType(w http.ResponseWriter, r *http.Request, ls *liveSession) {
	qid, ok := questionID(r)
	if !ok {
		rt.badRequest(w, r)
		return
	}
	var req struct {
		Type builder.QuestionType `json:"type"`
	}
	if err := decodeJSON(r, w, &req); err != nil {
		rt.badRequest(w, r)
		return
	}
	id, err := ls.s.ChangeType(qid, req.Type)
	rt.finish(w, r, ls, http.StatusOK, err, func(st *sessionState) {
		st.ID = id
		st.Rebuild = true
	})
}

// POST .../order {ids: [...]} for a full permutation, or {move: {id, to}} for a drag.
func (rt *Router) handleOrder(w http.ResponseWriter, r *http.Request, ls *liveSession) {
	var req struct {
		IDs  []int `json:"ids"`
		Move *struct {
			ID int `json:"id"`
			To int `json:"to"`
		} `json:"move"`
	}
	if err := decodeJSON(r, w, &req); err != nil {
		rt.badRequest(w, r)
		return
	}
	switch {
	case req.Move != nil:
		rt.finish(w, r, ls, http.StatusOK, ls.s.MoveQuestion(req.Move.ID, req.Move.To), nil)
	case req.IDs != nil:
		rt.finish(w, r, ls, http.StatusOK, ls.s.Reorder(builder.Permutation(req.IDs)), nil)
	default:
		rt.badRequest(w, r)
	}
}

// POST .../selection {id}; id 0 clears the selection.
func (rt *Router) handleSelect(w http.ResponseWriter, r *http.Request, ls *liveSession) {
	var req struct {
		ID int `json:"id"`
	}
	if err := decodeJSON(r, w, &req); err != nil {
		rt.badRequest(w, r)
		return
	}
	if req.ID == 0 {
		ls.s.ClearSelection()
		rt.finish(w, r, ls, http.StatusOK, nil, func(st *sessionState) { st.Rebuild = true })
		return
	}
	rt.finish(w, r, ls, http.StatusOK, ls.s.Select(req.ID), func(st *sessionState) { st.Rebuild = true })
}

// GET .../editor
func (rt *Router) handleEditor(w http.ResponseWriter, r *http.Request, ls *liveSession) {
	editor, err := ls.s.EditorHTML()
	if err != nil {
		rt.writeBuilderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selected": ls.s.Selected(), "editor": editor})
}

// POST .../edits {field, index, value}
func (rt *Router) handleEdit(w http.ResponseWriter, r *http.Request, ls *liveSession) {
	var ed builder.Edit
	if err := decodeJSON(r, w, &ed); err != nil || ed.Field == "" {
		rt.badRequest(w, r)
		return
	}
	rebuild, err := ls.s.Edit(ed)
	rt.finish(w, r, ls, http.StatusOK, err, func(st *sessionState) { st.Rebuild = rebuild })
}

// PUT .../meta {title?, description?}; each is {text, text_localized}.
func (rt *Router) handleMeta(w http.ResponseWriter, r *http.Request, ls *liveSession) {
	var req struct {
		Title       *builder.LocalizedText `json:"title"`
		Description *builder.LocalizedText `json:"description"`
	}
	if err := decodeJSON(r, w, &req); err != nil {
		rt.badRequest(w, r)
		return
	}
	if req.Title != nil {
		ls.s.SetTitle(*req.Title)
	}
	if req.Description != nil {
		ls.s.SetDescription(*req.Description)
	}
	rt.finish(w, r, ls, http.StatusOK, nil, nil)
}

// GET .../envelope
func (rt *Router) handleEnvelope(w http.ResponseWriter, r *http.Request, ls *liveSession) {
	writeJSON(w, http.StatusOK, ls.s.Envelope())
}

// GET .../preview?lang=xx
func (rt *Router) handlePreview(w http.ResponseWriter, r *http.Request, ls *liveSession) {
	out, err := ls.s.PreviewHTML(middleware.LocaleFromContext(r.Context()))
	if err != nil {
		rt.writeBuilderError(w, r, err)
		return
	}
	writeHTML(w, out)
}

// POST .../save {survey_id?}
// The session is left untouched on failure so the user can retry.
func (rt *Router) handleSave(w http.ResponseWriter, r *http.Request, ls *liveSession) {
	var req struct {
		SurveyID string `json:"survey_id"`
	}
	if err := decodeJSON(r, w, &req); err != nil {
		rt.badRequest(w, r)
		return
	}
	surveyID := ls.surveyID
	if req.SurveyID != "" {
		surveyID = req.SurveyID
	}
	claims, _ := middleware.ClaimsFromContext(r.Context())
	tid, _ := middleware.TenantIDFromContext(r.Context())
	var actor string
	if claims != nil {
		actor = claims.Email
		if actor == "" {
			actor = claims.UID
		}
	}

	start := time.Now()
	res, err := rt.surveys.Save(r.Context(), tid, actor, surveyID, ls.s.Envelope())
	if err != nil {
		rt.metrics.RecordSave(saveOutcome(err), time.Since(start))
		rt.writeServiceError(w, r, err)
		return
	}
	outcome := "updated"
	status := http.StatusOK
	if res.Created {
		outcome, status = "created", http.StatusCreated
	}
	rt.metrics.RecordSave(outcome, time.Since(start))
	ls.surveyID = res.ID
	rt.sessions.persist(r.Context(), ls)
	rt.log.Info("survey saved",
		zap.String("session", ls.s.ID),
		zap.String("survey_id", res.ID),
		zap.String("tenant_id", tid),
		zap.Bool("created", res.Created),
		zap.Int("questions", ls.s.Len()),
	)
	writeJSON(w, status, res)
}

func saveOutcome(err error) string {
	if _, ok := builder.AsValidationError(err); ok {
		return "invalid"
	}
	if se, ok := services.AsServiceError(err); ok && se.Retryable() {
		return "unavailable"
	}
	return "failed"
}

// GET /api/surveys/{id}
func (rt *Router) handleGetSurvey(w http.ResponseWriter, r *http.Request) {
	tid, _ := middleware.TenantIDFromContext(r.Context())
	sv, err := rt.surveys.Load(r.Context(), tid, r.PathValue("id"))
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sv)
}

// GET /api/surveys/{id}/export?format=csv|json
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	tid, _ := middleware.TenantIDFromContext(r.Context())
	res, err := rt.surveys.Export(r.Context(), tid, r.PathValue("id"), r.URL.Query().Get("format"))
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+res.Filename)
	_, _ = w.Write(res.Data)
}

// GET /api/surveys/shared/{token}/preview?lang=xx
func (rt *Router) handleSharedPreview(w http.ResponseWriter, r *http.Request) {
	sv, err := rt.surveys.LoadShared(r.Context(), r.PathValue("token"))
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	out, err := builder.RenderHTML(builder.RenderPreview(sv.Envelope, middleware.LocaleFromContext(r.Context())))
	if err != nil {
		rt.writeBuilderError(w, r, err)
		return
	}
	writeHTML(w, out)
}
