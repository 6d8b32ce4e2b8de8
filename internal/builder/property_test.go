package builder

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type listOp struct {
	Kind   int
	Target int
	Seed   int64
}

func genOps() gopter.Gen {
	op := gopter.CombineGens(gen.IntRange(0, 3), gen.IntRange(0, 12), gen.Int64()).
		Map(func(v []interface{}) listOp {
			return listOp{Kind: v[0].(int), Target: v[1].(int), Seed: v[2].(int64)}
		})
	return gen.SliceOf(op)
}

// apply runs op against l and returns the id it created, or 0.
func (op listOp) apply(l *QuestionList) int {
	types := Kinds()
	switch op.Kind {
	case 0:
		id, _ := l.Add(types[op.Target%len(types)].Type())
		return id
	case 1:
		id, _ := l.Duplicate(op.Target)
		return id
	case 2:
		l.Delete(op.Target)
	default:
		ids := l.IDs()
		rand.New(rand.NewSource(op.Seed)).Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		_ = l.Reorder(ids)
	}
	return 0
}

func dense(l *QuestionList) bool {
	seen := make(map[int]bool, l.Len())
	for _, q := range l.Questions() {
		if q.OrderIndex < 0 || q.OrderIndex >= l.Len() || seen[q.OrderIndex] {
			return false
		}
		seen[q.OrderIndex] = true
	}
	return len(seen) == l.Len()
}

// Order indexes stay a dense 0..n-1 after every add/duplicate/delete/reorder.
func TestProperty_OrderIndexDense(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("order_index is a dense permutation of positions", prop.ForAll(
		func(ops []listOp) bool {
			l := NewQuestionList()
			for _, op := range ops {
				op.apply(l)
				if !dense(l) {
					return false
				}
			}
			return true
		},
		genOps(),
	))

	properties.TestingRun(t)
}

// Every id handed out is greater than all ids handed out before it.
func TestProperty_IDsMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("ids are strictly increasing and never reused", prop.ForAll(
		func(ops []listOp) bool {
			l := NewQuestionList()
			high := 0
			for _, op := range ops {
				if id := op.apply(l); id != 0 {
					if id <= high {
						return false
					}
					high = id
				}
			}
			return l.LastID() == high
		},
		genOps(),
	))

	properties.TestingRun(t)
}

// Reordering to the current order changes nothing, and reapplying a reorder is stable.
func TestProperty_ReorderIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("reorder(p) twice equals reorder(p) once", prop.ForAll(
		func(n int, seed int64) bool {
			l := NewQuestionList()
			for i := 0; i < n; i++ {
				_, _ = l.Add(TypeShortText)
			}
			p := Permutation(l.IDs())
			rand.New(rand.NewSource(seed)).Shuffle(len(p), func(i, j int) { p[i], p[j] = p[j], p[i] })
			if err := l.Reorder(p); err != nil {
				return false
			}
			once := l.IDs()
			if err := l.Reorder(p); err != nil {
				return false
			}
			if err := l.Reorder(l.IDs()); err != nil {
				return false
			}
			twice := l.IDs()
			for i := range once {
				if once[i] != twice[i] || once[i] != p[i] {
					return false
				}
			}
			return dense(l)
		},
		gen.IntRange(0, 15),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

// The canvas node order always matches the canonical list after a session operation.
func TestProperty_CanvasFollowsList(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("canvas order equals list order", prop.ForAll(
		func(ops []listOp) bool {
			s := NewSession("prop")
			for _, op := range ops {
				switch op.Kind {
				case 0:
					_, _ = s.AddQuestion(TypeRating)
				case 1:
					_, _ = s.DuplicateQuestion(op.Target)
				case 2:
					_ = s.DeleteQuestion(op.Target)
				default:
					_ = s.MoveQuestion(op.Target, int(op.Seed%5))
				}
				got, want := s.Canvas().Order(), s.list.IDs()
				if len(got) != len(want) {
					return false
				}
				for i := range want {
					if got[i] != want[i] {
						return false
					}
				}
				if sel := s.Selected(); sel != 0 {
					if _, ok := s.list.Get(sel); !ok {
						return false
					}
				}
			}
			return true
		},
		genOps(),
	))

	properties.TestingRun(t)
}
