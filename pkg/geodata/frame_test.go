package geodata

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrame(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Frame
	}{
		{"epsg prefix", "EPSG:4326", EPSGFrame(4326)},
		{"lowercase prefix", "epsg:3857", EPSGFrame(3857)},
		{"bare code", "4326", EPSGFrame(4326)},
		{"proj string", "+proj=utm +zone=33 +datum=WGS84", ProjFrame("+proj=utm +zone=33 +datum=WGS84")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFrame(tt.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want))
		})
	}
}

func TestParseFrame_Invalid(t *testing.T) {
	for _, in := range []string{"", "EPSG:abc", "not-a-frame"} {
		_, err := ParseFrame(in)
		assert.Error(t, err, in)
	}
}

func TestFrame_ProjParameterOrder(t *testing.T) {
	a := ProjFrame("+proj=utm +zone=33")
	b := ProjFrame("+zone=33 +proj=utm")
	assert.True(t, a.Equal(b))
}

func TestFrame_UnknownNeverEqual(t *testing.T) {
	var unknown Frame
	assert.False(t, unknown.Equal(unknown))
	assert.False(t, unknown.Equal(EPSGFrame(4326)))
	assert.False(t, EPSGFrame(4326).Equal(unknown))
}

func TestCheckFrames(t *testing.T) {
	require.NoError(t, CheckFrames(EPSGFrame(4326), EPSGFrame(4326)))

	err := CheckFrames(EPSGFrame(4326), EPSGFrame(3857))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrFrameMismatch))
	assert.Contains(t, err.Error(), "EPSG:4326")
	assert.Contains(t, err.Error(), "EPSG:3857")
}

func TestFrame_String(t *testing.T) {
	assert.Equal(t, "EPSG:4326", EPSGFrame(4326).String())
	assert.Equal(t, "unknown", Frame{}.String())
}
