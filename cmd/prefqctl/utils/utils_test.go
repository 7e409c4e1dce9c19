package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePairs(t *testing.T) {
	pairs, err := ParsePairs([]string{"01.mp4:02.mp4, 03.mp4:04.mp4", "a.webm:b.webm"})
	require.NoError(t, err)
	assert.Equal(t, [][2]string{
		{"01.mp4", "02.mp4"},
		{"03.mp4", "04.mp4"},
		{"a.webm", "b.webm"},
	}, pairs)
}

func TestParsePairsRejects(t *testing.T) {
	for _, specs := range [][]string{
		nil,
		{""},
		{"01.mp4"},
		{"01.mp4:"},
		{":02.mp4"},
		{"01.mp4:02.webm"},
	} {
		_, err := ParsePairs(specs)
		assert.Error(t, err, "specs %q", specs)
	}
}

func TestRestyLoggerImplementsInterface(t *testing.T) {
	var l interface {
		Errorf(format string, v ...any)
		Warnf(format string, v ...any)
		Debugf(format string, v ...any)
	} = RestyLogger{}
	assert.NotNil(t, l)
}
