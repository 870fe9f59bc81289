package ds

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestLinkedHashMap_Keys(t *testing.T) {
	lhm := NewLinkedHashMap[string, int]()

	assert.True(t, len(lhm.Keys()) == 0)

	lhm.Put("b", 1)
	lhm.Put("a", 2)
	lhm.Put("b", 3)

	assert.Equal(t, []string{"b", "a"}, lhm.Keys())
	assert.Equal(t, 2, lhm.Len())
}

func TestLinkedHashMap_Put(t *testing.T) {
	lhm := NewLinkedHashMap[string, any]()
	lhm.Put("abc", 1)
	lhm.Put("abc", 2)

	assert.Equal(t, lhm.hashMap, map[string]any{"abc": 2})

	value, ok := lhm.Get("abc")
	assert.True(t, ok)
	assert.Equal(t, 2, value)

	_, ok = lhm.Get("def")
	assert.False(t, ok)
}

func TestLinkedHashMap_ForEach(t *testing.T) {
	lhm := NewLinkedHashMap[string, int]()
	lhm.Put("one", 1)
	lhm.Put("two", 2)
	lhm.Put("three", 3)

	visited := make([]string, 0)
	err := lhm.ForEach(
		func(key string, value int) error {
			if value == 3 {
				return errors.New("stop")
			}
			visited = append(visited, key)
			return nil
		},
	)
	assert.EqualError(t, err, "stop")
	assert.Equal(t, []string{"one", "two"}, visited)
}
