package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_EnterExitRemain(t *testing.T) {
	tr := Diff([]int{1, 2, 3}, []int{2, 3, 4})

	require.Len(t, tr.Exiting, 1)
	assert.Equal(t, Change[int]{Key: 1, Action: Exit, From: 0, To: -1}, tr.Exiting[0])

	require.Len(t, tr.Entering, 1)
	assert.Equal(t, Change[int]{Key: 4, Action: Enter, From: -1, To: 2}, tr.Entering[0])

	assert.Equal(t, []Change[int]{
		{Key: 2, Action: Remain, From: 1, To: 0},
		{Key: 3, Action: Remain, From: 2, To: 1},
	}, tr.Remaining)
	assert.Equal(t, 1, tr.Remaining[0].Delta())
	assert.False(t, tr.Empty())
}

func TestDiff_Identical(t *testing.T) {
	tr := Diff([]string{"a", "b"}, []string{"a", "b"})
	assert.True(t, tr.Empty())
	assert.Empty(t, tr.Moving())
	assert.Len(t, tr.Remaining, 2)
}

func TestDiff_Reorder(t *testing.T) {
	tr := Diff([]int{1, 2, 3}, []int{3, 1, 2})
	assert.Empty(t, tr.Entering)
	assert.Empty(t, tr.Exiting)

	moving := tr.Moving()
	require.Len(t, moving, 3)
	c, ok := tr.Lookup(3)
	require.True(t, ok)
	assert.Equal(t, 2, c.Delta())
	c, _ = tr.Lookup(1)
	assert.Equal(t, -1, c.Delta())
}

func TestDiff_FromAndToEmpty(t *testing.T) {
	tr := Diff(nil, []int{5, 6})
	assert.Len(t, tr.Entering, 2)
	assert.Empty(t, tr.Remaining)

	tr = Diff([]int{5, 6}, nil)
	assert.Len(t, tr.Exiting, 2)
	assert.Equal(t, 1, tr.Exiting[1].From)

	assert.True(t, Diff[int](nil, nil).Empty())
}

func TestDiff_DuplicateKeysUseFirstOccurrence(t *testing.T) {
	tr := Diff([]int{1, 1, 2}, []int{2, 2})
	require.Len(t, tr.Remaining, 1)
	assert.Equal(t, Change[int]{Key: 2, Action: Remain, From: 2, To: 0}, tr.Remaining[0])
	require.Len(t, tr.Exiting, 1)
	assert.Equal(t, 1, tr.Exiting[0].Key)
}

func TestDiffBy(t *testing.T) {
	type row struct {
		id   int64
		body string
	}
	prev := []row{{1, "a"}, {2, "b"}}
	next := []row{{2, "b changed"}, {9, "new"}}

	tr := DiffBy(prev, next, func(r row) int64 { return r.id })
	_, ok := tr.Lookup(int64(9))
	assert.True(t, ok)
	c, _ := tr.Lookup(int64(1))
	assert.Equal(t, Exit, c.Action)
	c, _ = tr.Lookup(int64(2))
	assert.Equal(t, Remain, c.Action)
	_, ok = tr.Lookup(int64(42))
	assert.False(t, ok)
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "enter", Enter.String())
	assert.Equal(t, "exit", Exit.String())
	assert.Equal(t, "remain", Remain.String())
	assert.Equal(t, "unknown", Action(9).String())
}
