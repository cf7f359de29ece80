package panels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractValues(t *testing.T) {
	page := []byte(`<html><body>
<table>
  <tr><td id="watertemp"> 78.5 °F </td></tr>
  <tr><td id="airtemp">85<span> °F</span></td></tr>
  <tr><td>no id, ignored</td></tr>
</table>
</body></html>`)

	values := extractValues(page)

	assert.Equal(t, "78.5 °F", values["watertemp"])
	assert.Equal(t, "85 °F", values["airtemp"])
	assert.Len(t, values, 2)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"78.5 °F", f(78.5)},
		{"3200 ppm", f(3200)},
		{"-4.2", f(-4.2)},
		{"  24.3 V  ", f(24.3)},
		{"n/a", nil},
		{"", nil},
		{"°F 78", nil},
	}

	for _, tt := range tests {
		got := parseNumber(tt.in)
		if tt.want == nil {
			assert.Nil(t, got, "input %q", tt.in)
			continue
		}
		require.NotNil(t, got, "input %q", tt.in)
		assert.Equal(t, *tt.want, *got, "input %q", tt.in)
	}
}

func TestParseOnOff(t *testing.T) {
	on := parseOnOff("Running")
	require.NotNil(t, on)
	assert.True(t, *on)

	off := parseOnOff(" OFF ")
	require.NotNil(t, off)
	assert.False(t, *off)

	assert.Nil(t, parseOnOff("maybe"))
	assert.Nil(t, parseOnOff(""))
}

func f(v float64) *float64 {
	return &v
}
