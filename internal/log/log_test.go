package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":  LevelDebug,
		" ERROR": LevelError,
		"info":   LevelInfo,
		"":       LevelInfo,
		"trace":  LevelInfo,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ParseLevel(in))
		})
	}
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel(LevelInfo) })

	SetLevel(LevelError)
	assert.False(t, atom.Enabled(zapcore.InfoLevel))
	assert.True(t, atom.Enabled(zapcore.ErrorLevel))

	SetLevel(LevelDebug)
	assert.True(t, atom.Enabled(zapcore.DebugLevel))
}

func TestFieldsSkipsBadPairs(t *testing.T) {
	f := fields("year", 2025, 7, "ignored", "err", errors.New("x"), "dangling")
	assert.Len(t, f, 2)
	assert.Equal(t, "year", f[0].Key)
	assert.Equal(t, "err", f[1].Key)
	assert.Equal(t, zapcore.ErrorType, f[1].Type)
}
