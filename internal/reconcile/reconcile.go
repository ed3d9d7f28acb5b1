// Package reconcile computes how an ordered, keyed sequence changed between
// two renders: which keys entered, which exited, and where the remaining
// ones moved.
package reconcile

// Action classifies a key in a transition.
type Action int

const (
	// Remain marks a key present in both sequences.
	Remain Action = iota
	// Enter marks a key only in the new sequence.
	Enter
	// Exit marks a key only in the old sequence.
	Exit
)

func (a Action) String() string {
	switch a {
	case Remain:
		return "remain"
	case Enter:
		return "enter"
	case Exit:
		return "exit"
	default:
		return "unknown"
	}
}

// Change describes one key. From is its index in the old sequence and To
// its index in the new one; the side it is absent from is -1.
type Change[K comparable] struct {
	Key    K
	Action Action
	From   int
	To     int
}

// Delta is the old position minus the new one, in rows. A positive delta
// means the item moved up.
func (c Change[K]) Delta() int {
	if c.Action != Remain {
		return 0
	}
	return c.From - c.To
}

// Moved reports whether a remaining key changed position.
func (c Change[K]) Moved() bool {
	return c.Action == Remain && c.From != c.To
}

// Transition is the full diff between two sequences. Entering and
// Remaining are in new-sequence order, Exiting in old-sequence order.
type Transition[K comparable] struct {
	Entering  []Change[K]
	Exiting   []Change[K]
	Remaining []Change[K]
}

// Empty reports whether nothing entered, exited or moved.
func (t Transition[K]) Empty() bool {
	if len(t.Entering) > 0 || len(t.Exiting) > 0 {
		return false
	}
	for _, c := range t.Remaining {
		if c.Moved() {
			return false
		}
	}
	return true
}

// Moving returns the remaining keys whose position changed.
func (t Transition[K]) Moving() []Change[K] {
	var out []Change[K]
	for _, c := range t.Remaining {
		if c.Moved() {
			out = append(out, c)
		}
	}
	return out
}

// Lookup returns the change recorded for key, if any.
func (t Transition[K]) Lookup(key K) (Change[K], bool) {
	for _, group := range [][]Change[K]{t.Remaining, t.Entering, t.Exiting} {
		for _, c := range group {
			if c.Key == key {
				return c, true
			}
		}
	}
	return Change[K]{}, false
}

// Diff compares two key sequences. Keys are expected to be unique; when a
// key repeats, only its first occurrence counts.
func Diff[K comparable](prev, next []K) Transition[K] {
	oldIndex := indexOf(prev)
	newIndex := indexOf(next)

	t := Transition[K]{}
	for i, k := range next {
		if newIndex[k] != i {
			continue
		}
		if from, ok := oldIndex[k]; ok {
			t.Remaining = append(t.Remaining, Change[K]{Key: k, Action: Remain, From: from, To: i})
		} else {
			t.Entering = append(t.Entering, Change[K]{Key: k, Action: Enter, From: -1, To: i})
		}
	}
	for i, k := range prev {
		if oldIndex[k] != i {
			continue
		}
		if _, ok := newIndex[k]; !ok {
			t.Exiting = append(t.Exiting, Change[K]{Key: k, Action: Exit, From: i, To: -1})
		}
	}
	return t
}

// DiffBy compares two item sequences by the key each item maps to.
func DiffBy[T any, K comparable](prev, next []T, key func(T) K) Transition[K] {
	return Diff(keys(prev, key), keys(next, key))
}

func keys[T any, K comparable](items []T, key func(T) K) []K {
	out := make([]K, len(items))
	for i, it := range items {
		out[i] = key(it)
	}
	return out
}

func indexOf[K comparable](ks []K) map[K]int {
	m := make(map[K]int, len(ks))
	for i, k := range ks {
		if _, dup := m[k]; !dup {
			m[k] = i
		}
	}
	return m
}
