package builder

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Operation outcomes reported to the Observer.
const (
	OutcomeApplied  = "applied"
	OutcomeIgnored  = "ignored"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "error"
)

// Observer receives one call per session operation.
type Observer interface {
	ObserveOperation(op, outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, string) {}

// Option configures a Session.
type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Session) {
		if o != nil {
			s.obs = o
		}
	}
}

// WithLocale sets the UI locale of the canvas and editor. Defaults to English.
func WithLocale(locale string) Option {
	return func(s *Session) { s.locale = locale }
}

// Session is one survey editing session: the canonical list, the selection, the survey
// metadata and the render targets bound to them. It is not safe for concurrent use.
type Session struct {
	ID          string
	Title       LocalizedText
	Description LocalizedText

	locale   string
	list     *QuestionList
	selected int
	canvas   *Canvas
	editor   *PropertyEditor
	log      *zap.Logger
	obs      Observer
}

func NewSession(id string, opts ...Option) *Session {
	s := &Session{
		ID:     id,
		locale: LocaleEnglish,
		list:   NewQuestionList(),
		log:    zap.NewNop(),
		obs:    nopObserver{},
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With(zap.String("session", id))
	s.canvas = NewCanvas(s.locale)
	s.editor = NewPropertyEditor(s.locale)
	s.canvas.Render(nil)
	s.editor.Render(nil)
	return s
}

func (s *Session) Locale() string { return s.locale }

// Questions returns the live questions in canonical order.
func (s *Session) Questions() []*Question { return s.list.Questions() }

func (s *Session) Len() int { return s.list.Len() }

// Canvas exposes the render target, mostly for drag gestures.
func (s *Session) Canvas() *Canvas { return s.canvas }

// AddQuestion appends a question of type t and selects it.
func (s *Session) AddQuestion(t QuestionType) (int, error) {
	id, err := s.list.Add(t)
	if err != nil {
		return 0, s.done("add", err)
	}
	s.canvas.Sync(s.list.Questions())
	s.selectID(id)
	return id, s.done("add", nil)
}

// DuplicateQuestion appends a deep copy of question id. The selection is left alone.
func (s *Session) DuplicateQuestion(id int) (int, error) {
	newID, ok := s.list.Duplicate(id)
	if !ok {
		return 0, s.done("duplicate", stale(id))
	}
	s.canvas.Sync(s.list.Questions())
	return newID, s.done("duplicate", nil)
}

// DeleteQuestion removes question id, clearing the selection if it pointed there.
func (s *Session) DeleteQuestion(id int) error {
	if !s.list.Delete(id) {
		return s.done("delete", stale(id))
	}
	if s.selected == id {
		s.selectID(0)
	}
	s.canvas.Sync(s.list.Questions())
	return s.done("delete", nil)
}

// Reorder applies p as the canonical order. On mismatch the canvas is put back in canonical order.
func (s *Session) Reorder(p Permutation) error {
	if err := s.list.Reorder(p); err != nil {
		s.canvas.Sync(s.list.Questions())
		return s.done("reorder", err)
	}
	s.canvas.Sync(s.list.Questions())
	return s.done("reorder", nil)
}

// MoveQuestion drags question id to position to on the canvas, then reconciles the list
// from the resulting node order.
func (s *Session) MoveQuestion(id, to int) error {
	if !s.canvas.Move(id, to) {
		return s.done("move", stale(id))
	}
	return s.reconcile("move")
}

// ReconcileOrder reads the canvas node order back into the list.
func (s *Session) ReconcileOrder() error { return s.reconcile("reconcile") }

func (s *Session) reconcile(op string) error {
	if err := s.list.Reorder(s.canvas.Order()); err != nil {
		s.canvas.Sync(s.list.Questions())
		return s.done(op, err)
	}
	s.canvas.Sync(s.list.Questions())
	return s.done(op, nil)
}

// Select opens question id in the property editor.
func (s *Session) Select(id int) error {
	if _, ok := s.list.Get(id); !ok {
		return s.done("select", stale(id))
	}
	s.selectID(id)
	return s.done("select", nil)
}

func (s *Session) ClearSelection() { s.selectID(0) }

// Selected returns the selected question id, 0 when nothing is selected.
func (s *Session) Selected() int { return s.selected }

// Edit writes ed through to the selected question and refreshes that question's canvas node.
// rebuild reports whether the property form changed shape and must be replaced by the caller.
func (s *Session) Edit(ed Edit) (rebuild bool, err error) {
	q, ok := s.list.Get(s.selected)
	if !ok {
		return false, s.done("edit", ErrNoSelection)
	}
	if err := s.editor.Apply(q, ed); err != nil {
		return false, s.done("edit", err)
	}
	s.canvas.Refresh(q)
	s.editor.Render(q)
	return restructures(ed), s.done("edit", nil)
}

// ChangeType replaces question id with a fresh question of type t at the same position,
// carrying over text, description and the required flag. Options are reset to t's defaults.
func (s *Session) ChangeType(id int, t QuestionType) (int, error) {
	if _, err := LookupKind(t); err != nil {
		return 0, s.done("change_type", err)
	}
	old, ok := s.list.Get(id)
	if !ok {
		return 0, s.done("change_type", stale(id))
	}
	if old.Type == t {
		return id, s.done("change_type", nil)
	}
	pos, wasSelected := old.OrderIndex, s.selected == id
	carried := old.Clone()
	s.list.Delete(id)
	newID, err := s.list.Add(t)
	if err != nil {
		return 0, s.done("change_type", err)
	}
	q, _ := s.list.Get(newID)
	q.Text, q.Description, q.Required = carried.Text, carried.Description, carried.Required
	s.list.Move(newID, pos)
	if wasSelected {
		s.selected = 0
	}
	s.canvas.Sync(s.list.Questions())
	if wasSelected {
		s.selectID(newID)
	}
	return newID, s.done("change_type", nil)
}

func (s *Session) SetTitle(t LocalizedText)       { s.Title = t }
func (s *Session) SetDescription(d LocalizedText) { s.Description = d }

// Envelope serializes the survey for save and preview.
func (s *Session) Envelope() Envelope {
	return BuildEnvelope(s.Title, s.Description, s.list.Questions())
}

func (s *Session) CanvasHTML() (string, error) { return s.canvas.HTML() }
func (s *Session) EditorHTML() (string, error) { return s.editor.HTML() }

// PreviewHTML renders the read-only preview in locale.
func (s *Session) PreviewHTML(locale string) (string, error) {
	return RenderHTML(RenderPreview(s.Envelope(), locale))
}

// Snapshot is the serializable state of a session, enough to rebuild it after eviction.
type Snapshot struct {
	Locale   string   `json:"locale"`
	Envelope Envelope `json:"envelope"`
	IDs      []int    `json:"ids"`
	LastID   int      `json:"last_id"`
	Selected int      `json:"selected,omitempty"`
	// SurveyID links the draft to the saved survey it edits. The session itself does
	// not track it.
	SurveyID string `json:"survey_id,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Locale:   s.locale,
		Envelope: s.Envelope(),
		IDs:      s.list.IDs(),
		LastID:   s.list.LastID(),
		Selected: s.selected,
	}
}

// Restore rebuilds a session from snap. Question ids and the id counter are preserved.
func Restore(id string, snap Snapshot, opts ...Option) (*Session, error) {
	if len(snap.IDs) != len(snap.Envelope.Questions) {
		return nil, fmt.Errorf("restore %s: %d ids for %d questions", id, len(snap.IDs), len(snap.Envelope.Questions))
	}
	qs := make([]*Question, len(snap.IDs))
	for i, eq := range snap.Envelope.Questions {
		if _, err := LookupKind(eq.Type); err != nil {
			return nil, fmt.Errorf("restore %s: %w", id, err)
		}
		qs[i] = eq.Question(snap.IDs[i])
	}
	list, err := restoreList(qs, snap.LastID)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", id, err)
	}
	if snap.Locale != "" {
		opts = append([]Option{WithLocale(snap.Locale)}, opts...)
	}
	s := NewSession(id, opts...)
	s.list = list
	s.Title, s.Description = snap.Envelope.Title, snap.Envelope.Description
	s.canvas.Render(list.Questions())
	if _, ok := list.Get(snap.Selected); ok {
		s.selectID(snap.Selected)
	}
	return s, nil
}

func (s *Session) selectID(id int) {
	s.selected = id
	s.canvas.Select(id)
	q, _ := s.list.Get(id)
	s.editor.Render(q)
}

func stale(id int) error {
	return fmt.Errorf("%w: question %d", ErrStaleReference, id)
}

// done logs and reports the outcome of op and returns err unchanged.
func (s *Session) done(op string, err error) error {
	switch {
	case err == nil:
		s.obs.ObserveOperation(op, OutcomeApplied)
	case IsRecoverable(err):
		s.log.Debug("builder operation ignored", zap.String("op", op), zap.Error(err))
		s.obs.ObserveOperation(op, OutcomeIgnored)
	case isRejection(err):
		s.log.Debug("builder operation rejected", zap.String("op", op), zap.Error(err))
		s.obs.ObserveOperation(op, OutcomeRejected)
	default:
		s.log.Warn("builder operation failed", zap.String("op", op), zap.Error(err))
		s.obs.ObserveOperation(op, OutcomeFailed)
	}
	return err
}

func isRejection(err error) bool {
	if _, ok := AsValidationError(err); ok {
		return true
	}
	return errors.Is(err, ErrUnknownType) || errors.Is(err, ErrUnsupportedEdit)
}
