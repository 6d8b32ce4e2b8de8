package builder

import "fmt"

// Permutation is a full ordering of question ids, as read back from the canvas after a drag.
type Permutation []int

// Validate checks that p covers exactly the ids in current, each once.
func (p Permutation) Validate(current []int) error {
	if len(p) != len(current) {
		return fmt.Errorf("%w: got %d ids, have %d", ErrPermutationMismatch, len(p), len(current))
	}
	want := make(map[int]bool, len(current))
	for _, id := range current {
		want[id] = true
	}
	seen := make(map[int]bool, len(p))
	for _, id := range p {
		if !want[id] {
			return fmt.Errorf("%w: unknown id %d", ErrPermutationMismatch, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate id %d", ErrPermutationMismatch, id)
		}
		seen[id] = true
	}
	return nil
}

// QuestionList is the canonical ordered collection of questions. It is the only mutator of
// the list; order_index always equals position.
type QuestionList struct {
	items  []*Question
	lastID int
}

func NewQuestionList() *QuestionList {
	return &QuestionList{}
}

// Add appends a question of type t built from registry defaults and returns its id.
func (l *QuestionList) Add(t QuestionType) (int, error) {
	q, err := newQuestion(t, l.lastID+1)
	if err != nil {
		return 0, err
	}
	l.lastID = q.ID
	l.append(q)
	return q.ID, nil
}

// Duplicate appends a deep copy of question id under a new id. ok is false when id is unknown.
func (l *QuestionList) Duplicate(id int) (int, bool) {
	i := l.index(id)
	if i < 0 {
		return 0, false
	}
	q := l.items[i].Clone()
	l.lastID++
	q.ID = l.lastID
	l.append(q)
	return q.ID, true
}

// Delete removes question id and closes the gap in order_index.
func (l *QuestionList) Delete(id int) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.items = append(l.items[:i:i], l.items[i+1:]...)
	l.renumber()
	return true
}

// Reorder applies p as the new canonical order. The list is untouched when p does not match.
func (l *QuestionList) Reorder(p Permutation) error {
	if err := p.Validate(l.IDs()); err != nil {
		return err
	}
	byID := make(map[int]*Question, len(l.items))
	for _, q := range l.items {
		byID[q.ID] = q
	}
	next := make([]*Question, 0, len(p))
	for _, id := range p {
		next = append(next, byID[id])
	}
	l.items = next
	l.renumber()
	return nil
}

// Move puts question id at position to, clamped to the list bounds.
func (l *QuestionList) Move(id, to int) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	ids := l.IDs()
	ids = append(ids[:i], ids[i+1:]...)
	to = max(0, min(to, len(ids)))
	ids = append(ids[:to], append([]int{id}, ids[to:]...)...)
	return l.Reorder(ids) == nil
}

// Get returns the live question for id.
func (l *QuestionList) Get(id int) (*Question, bool) {
	i := l.index(id)
	if i < 0 {
		return nil, false
	}
	return l.items[i], true
}

// IDs returns ids in canonical order.
func (l *QuestionList) IDs() []int {
	out := make([]int, len(l.items))
	for i, q := range l.items {
		out[i] = q.ID
	}
	return out
}

// Questions returns the live questions in canonical order. The slice is a copy.
func (l *QuestionList) Questions() []*Question {
	return append([]*Question(nil), l.items...)
}

func (l *QuestionList) Len() int { return len(l.items) }

// LastID is the highest id handed out so far.
func (l *QuestionList) LastID() int { return l.lastID }

// restoreList rebuilds a list from questions already carrying ids. Duplicate or non-positive
// ids are rejected so the never-reused invariant survives a restore.
func restoreList(qs []*Question, lastID int) (*QuestionList, error) {
	l := &QuestionList{lastID: lastID}
	seen := make(map[int]bool, len(qs))
	for _, q := range qs {
		if q.ID <= 0 || seen[q.ID] {
			return nil, fmt.Errorf("%w: invalid id %d in snapshot", ErrStaleReference, q.ID)
		}
		seen[q.ID] = true
		l.lastID = max(l.lastID, q.ID)
		l.append(q)
	}
	return l, nil
}

func (l *QuestionList) append(q *Question) {
	q.OrderIndex = len(l.items)
	l.items = append(l.items, q)
}

func (l *QuestionList) index(id int) int {
	for i, q := range l.items {
		if q.ID == id {
			return i
		}
	}
	return -1
}

func (l *QuestionList) renumber() {
	for i, q := range l.items {
		q.OrderIndex = i
	}
}
