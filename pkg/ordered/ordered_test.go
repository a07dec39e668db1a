package ordered

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet_KeepsInsertionOrder(t *testing.T) {
	s := NewSet("b", "a", "b", "c")

	assert.Equal(t, []string{"b", "a", "c"}, s.Items())
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("z"))
	assert.False(t, s.Add("a"))
	assert.True(t, s.Add("z"))
}

func TestSet_ItemsIsACopy(t *testing.T) {
	s := NewSet(1, 2)
	items := s.Items()
	items[0] = 99

	assert.Equal(t, []int{1, 2}, s.Items())
}

func TestMap_FirstValueWins(t *testing.T) {
	var m Map[string, string]

	v, stored := m.PutIfAbsent("@pkg/one", "=2.1.0")
	assert.True(t, stored)
	assert.Equal(t, "=2.1.0", v)

	v, stored = m.PutIfAbsent("@pkg/one", "1.0.0")
	assert.False(t, stored)
	assert.Equal(t, "=2.1.0", v)

	m.PutIfAbsent("@pkg/two", "2.2.2")

	assert.Equal(t, []string{"@pkg/one", "@pkg/two"}, m.Keys())
	assert.Equal(t, map[string]string{"@pkg/one": "=2.1.0", "@pkg/two": "2.2.2"}, m.ToMap())

	got, ok := m.Get("@pkg/two")
	assert.True(t, ok)
	assert.Equal(t, "2.2.2", got)
}
