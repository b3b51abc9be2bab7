package keylist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_PushFrontOrder(t *testing.T) {
	t.Parallel()

	l := New[string](4)
	l.PushFront("a")
	l.PushFront("b")
	l.PushFront("c")

	assert.Equal(t, []string{"c", "b", "a"}, l.Keys())
	back, ok := l.Back()
	require.True(t, ok)
	assert.Equal(t, "a", back)
	front, ok := l.Front()
	require.True(t, ok)
	assert.Equal(t, "c", front)
}

func TestList_PushFrontExistingMoves(t *testing.T) {
	t.Parallel()

	l := New[string](4)
	l.PushFront("a")
	l.PushFront("b")
	l.PushFront("a")

	assert.Equal(t, 2, l.Len())
	assert.Equal(t, []string{"a", "b"}, l.Keys())
}

func TestList_MoveToFront(t *testing.T) {
	t.Parallel()

	l := New[int](4)
	for i := 1; i <= 3; i++ {
		l.PushFront(i)
	}
	assert.True(t, l.MoveToFront(1))
	assert.False(t, l.MoveToFront(42))
	assert.Equal(t, []int{1, 3, 2}, l.Keys())

	// Moving the head is a no-op.
	assert.True(t, l.MoveToFront(1))
	assert.Equal(t, []int{1, 3, 2}, l.Keys())
}

func TestList_RemoveAnywhere(t *testing.T) {
	t.Parallel()

	l := New[string](4)
	for _, k := range []string{"a", "b", "c", "d"} {
		l.PushFront(k)
	}

	assert.True(t, l.Remove("c")) // middle
	assert.True(t, l.Remove("d")) // head
	assert.True(t, l.Remove("a")) // tail
	assert.False(t, l.Remove("a"))

	assert.Equal(t, []string{"b"}, l.Keys())
	back, _ := l.Back()
	front, _ := l.Front()
	assert.Equal(t, "b", back)
	assert.Equal(t, "b", front)

	assert.True(t, l.Remove("b"))
	_, ok := l.Back()
	assert.False(t, ok)
	_, ok = l.Front()
	assert.False(t, ok)
	assert.Equal(t, 0, l.Len())
}
