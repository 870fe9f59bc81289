package ds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack_Peek(t *testing.T) {
	type T struct {
		Index int
		Level int
	}
	stack := NewStack[T]()
	stack.Push(
		T{
			Index: 1,
			Level: 2,
		},
	)

	last, ok := stack.Peek()

	assert.True(t, ok)
	assert.Equal(t, last.Index, 1)
	assert.Equal(t, last.Level, 2)
	assert.Equal(t, 1, stack.Len())
}

func TestStack_PopEmpty(t *testing.T) {
	stack := NewStack[int]()
	stack.Push(1)

	last, ok := stack.Pop()
	assert.True(t, ok)
	assert.Equal(t, 1, last)

	_, ok = stack.Pop()
	assert.False(t, ok)
	_, ok = stack.Peek()
	assert.False(t, ok)
	assert.True(t, stack.IsEmpty())
}
