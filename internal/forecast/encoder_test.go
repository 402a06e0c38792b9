package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEncoding_FirstSeenOrder(t *testing.T) {
	enc := BuildEncoding([]string{"Colombo", "Kandy", "Colombo", "Galle", "Kandy"})

	require.Equal(t, 3, enc.Len())
	assert.Equal(t, []string{"Colombo", "Kandy", "Galle"}, enc.Values())

	code, ok := enc.Code("Colombo")
	require.True(t, ok)
	assert.Equal(t, 0, code)

	code, ok = enc.Code("Kandy")
	require.True(t, ok)
	assert.Equal(t, 1, code)

	code, ok = enc.Code("Galle")
	require.True(t, ok)
	assert.Equal(t, 2, code)
}

func TestBuildEncoding_Deterministic(t *testing.T) {
	values := []string{"b", "a", "c", "a", "b", "d"}

	first := BuildEncoding(values)
	second := BuildEncoding(values)

	assert.Equal(t, first.Values(), second.Values())
	for _, v := range first.Values() {
		c1, ok1 := first.Code(v)
		c2, ok2 := second.Code(v)
		require.True(t, ok1)
		require.True(t, ok2)
		assert.Equal(t, c1, c2)
	}
}

func TestEncoding_UnknownValue(t *testing.T) {
	enc := BuildEncoding([]string{"Colombo"})

	_, ok := enc.Code("Jaffna")
	assert.False(t, ok)
}

func TestEncoding_ValuesIsACopy(t *testing.T) {
	enc := BuildEncoding([]string{"a", "b"})

	values := enc.Values()
	values[0] = "mutated"

	assert.Equal(t, []string{"a", "b"}, enc.Values())
}

func TestBuildEncoding_Empty(t *testing.T) {
	enc := BuildEncoding(nil)
	assert.Equal(t, 0, enc.Len())
	assert.Empty(t, enc.Values())
}
