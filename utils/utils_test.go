package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameGeneratorUnique(t *testing.T) {
	g := NewNameGenerator(1)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		name := g.Name()
		assert.NotEmpty(t, name)
		assert.False(t, seen[name], "duplicate name %q", name)
		seen[name] = true
	}
}

func TestNameGeneratorDeterministic(t *testing.T) {
	first := NewNameGenerator(42)
	a := []string{first.Name(), first.Name(), first.Name()}
	second := NewNameGenerator(42)
	b := []string{second.Name(), second.Name(), second.Name()}
	assert.Equal(t, a, b)
}

func TestDump(t *testing.T) {
	type bar struct {
		Row, Col int
		Heights  map[string]float64
	}
	v := &bar{Row: 1, Col: 2, Heights: map[string]float64{"b": 2, "a": 1}}

	s := SDump(v)
	assert.Contains(t, s, "Row: (int) 1")
	assert.NotContains(t, s, "0xc")
	assert.Less(t, bytes.Index([]byte(s), []byte(`"a"`)), bytes.Index([]byte(s), []byte(`"b"`)))

	var buf bytes.Buffer
	Fdump(&buf, v)
	assert.Equal(t, s, buf.String())
}
