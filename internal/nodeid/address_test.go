// internal/nodeid/address_test.go
package nodeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEdgeKey_String(t *testing.T) {
	testCases := []struct {
		name        string
		key         EdgeKey
		expectedStr string
	}{
		{
			name:        "node to node",
			key:         NewNodeEdge("osc", 0, "gain", 1),
			expectedStr: "osc:0->gain:1",
		},
		{
			name:        "node to param",
			key:         NewParamEdge("lfo", 2, "gain.gain"),
			expectedStr: "lfo:2->gain.gain",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedStr, tc.key.String())
		})
	}
}

func TestEdgeKey_Touches(t *testing.T) {
	k := NewNodeEdge("a", 0, "b", 0)
	assert.True(t, k.Touches("a"))
	assert.True(t, k.Touches("b"))
	assert.False(t, k.Touches("c"))
}

func TestEdgeKey_Less(t *testing.T) {
	a := NewNodeEdge("a", 0, "b", 0)
	b := NewNodeEdge("a", 1, "b", 0)
	c := NewParamEdge("a", 1, "b")

	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.True(t, b.Less(c))
	assert.False(t, a.Less(a))
}
