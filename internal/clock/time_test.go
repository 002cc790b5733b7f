package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHMS(t *testing.T) {
	cases := []struct {
		in   string
		want Seconds
	}{
		{"00:00:00", 0},
		{"08:30:00", 8*3600 + 30*60},
		{"25:30:00", 25*3600 + 30*60}, // overnight trip, not wrapped
	}
	for _, tc := range cases {
		got, err := ParseHMS(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseHMS_Invalid(t *testing.T) {
	for _, in := range []string{"", "8:30", "08:60:00", "08:30:60", "-1:00:00"} {
		_, err := ParseHMS(in)
		assert.Error(t, err, in)
	}
}

func TestString_PreservesOvernightHours(t *testing.T) {
	s, err := ParseHMS("25:30:05")
	require.NoError(t, err)
	assert.Equal(t, "25:30:05", s.String())
}

func TestAddSub(t *testing.T) {
	base := Seconds(100)
	later := base.Add(50)
	assert.Equal(t, Seconds(150), later)
	assert.Equal(t, 50.0, later.Sub(base))
}
