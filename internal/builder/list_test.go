package builder

import (
	"errors"
	"reflect"
	"testing"
)

func mustAdd(t *testing.T, l *QuestionList, qt QuestionType) int {
	t.Helper()
	id, err := l.Add(qt)
	if err != nil {
		t.Fatalf("Add(%s): %v", qt, err)
	}
	return id
}

func orderIndexes(l *QuestionList) []int {
	out := []int{}
	for _, q := range l.Questions() {
		out = append(out, q.OrderIndex)
	}
	return out
}

func TestQuestionList_AddAssignsDefaults(t *testing.T) {
	l := NewQuestionList()
	id := mustAdd(t, l, TypeSingleChoice)
	if id != 1 {
		t.Fatalf("first id = %d, want 1", id)
	}
	q, _ := l.Get(id)
	if q.OrderIndex != 0 {
		t.Fatalf("order_index = %d, want 0", q.OrderIndex)
	}
	opts, ok := q.Options.(*ChoiceOptions)
	if !ok || len(opts.Choices) != 2 {
		t.Fatalf("default choices = %#v, want 2 choices", q.Options)
	}
	if opts.Choices[0].Text != "Option 1" || opts.Choices[1].TextLocalized != "الخيار 2" {
		t.Fatalf("unexpected default choices: %+v", opts.Choices)
	}
}

func TestQuestionList_AddUnknownType(t *testing.T) {
	l := NewQuestionList()
	if _, err := l.Add("matrix"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
	if l.Len() != 0 || l.LastID() != 0 {
		t.Fatalf("list changed on unknown type: len=%d lastID=%d", l.Len(), l.LastID())
	}
}

func TestQuestionList_DeleteCompactsOrder(t *testing.T) {
	l := NewQuestionList()
	for i := 0; i < 3; i++ {
		mustAdd(t, l, TypeShortText)
	}
	if !l.Delete(2) {
		t.Fatal("Delete(2) = false")
	}
	if got, want := l.IDs(), []int{1, 3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	if got, want := orderIndexes(l), []int{0, 1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order_index = %v, want %v", got, want)
	}
}

func TestQuestionList_DuplicateCopiesContent(t *testing.T) {
	l := NewQuestionList()
	mustAdd(t, l, TypeMultiChoice)
	mustAdd(t, l, TypeShortText)
	q1, _ := l.Get(1)
	q1.Text = L("Q1", "س1")
	q1.ValidationRules = map[string]any{"max_selected": 2, "tags": []any{"a"}}

	id, ok := l.Duplicate(1)
	if !ok {
		t.Fatal("Duplicate(1) = false")
	}
	if id != 3 {
		t.Fatalf("duplicate id = %d, want 3", id)
	}
	dup, _ := l.Get(id)
	if dup.OrderIndex != 2 {
		t.Fatalf("duplicate order_index = %d, want 2", dup.OrderIndex)
	}
	if dup.Text != q1.Text {
		t.Fatalf("duplicate text = %+v, want %+v", dup.Text, q1.Text)
	}

	// Mutating the copy must not reach the original.
	dup.Options.(*ChoiceOptions).Choices[0].Text = "changed"
	dup.ValidationRules["tags"].([]any)[0] = "b"
	if q1.Options.(*ChoiceOptions).Choices[0].Text != "Option 1" {
		t.Fatal("duplicate shares choices with original")
	}
	if q1.ValidationRules["tags"].([]any)[0] != "a" {
		t.Fatal("duplicate shares validation rules with original")
	}
}

func TestQuestionList_StaleReferencesAreNoops(t *testing.T) {
	l := NewQuestionList()
	mustAdd(t, l, TypeShortText)
	if _, ok := l.Duplicate(9); ok {
		t.Fatal("Duplicate(9) = true on missing id")
	}
	if l.Delete(9) {
		t.Fatal("Delete(9) = true on missing id")
	}
	if l.Len() != 1 || l.LastID() != 1 {
		t.Fatalf("state changed: len=%d lastID=%d", l.Len(), l.LastID())
	}
}

func TestQuestionList_Reorder(t *testing.T) {
	l := NewQuestionList()
	for i := 0; i < 3; i++ {
		mustAdd(t, l, TypeShortText)
	}
	if err := l.Reorder(Permutation{3, 1, 2}); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if got, want := l.IDs(), []int{3, 1, 2}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	q3, _ := l.Get(3)
	if q3.OrderIndex != 0 {
		t.Fatalf("q3 order_index = %d, want 0", q3.OrderIndex)
	}
}

func TestQuestionList_ReorderMismatchLeavesStateUntouched(t *testing.T) {
	l := NewQuestionList()
	for i := 0; i < 3; i++ {
		mustAdd(t, l, TypeShortText)
	}
	for _, p := range []Permutation{{1, 2}, {1, 2, 4}, {1, 1, 2}, {}} {
		if err := l.Reorder(p); !errors.Is(err, ErrPermutationMismatch) {
			t.Fatalf("Reorder(%v) err = %v, want ErrPermutationMismatch", p, err)
		}
		if got, want := l.IDs(), []int{1, 2, 3}; !reflect.DeepEqual(got, want) {
			t.Fatalf("after Reorder(%v) ids = %v, want %v", p, got, want)
		}
	}
}

func TestQuestionList_IDsNeverReused(t *testing.T) {
	l := NewQuestionList()
	for i := 0; i < 3; i++ {
		mustAdd(t, l, TypeShortText)
	}
	l.Delete(3)
	if id := mustAdd(t, l, TypeShortText); id != 4 {
		t.Fatalf("id after delete = %d, want 4", id)
	}
}

func TestQuestionList_Move(t *testing.T) {
	l := NewQuestionList()
	for i := 0; i < 4; i++ {
		mustAdd(t, l, TypeShortText)
	}
	if !l.Move(4, 0) {
		t.Fatal("Move(4, 0) = false")
	}
	if got, want := l.IDs(), []int{4, 1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	l.Move(4, 99)
	if got, want := l.IDs(), []int{1, 2, 3, 4}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ids after clamp = %v, want %v", got, want)
	}
}
