package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestFromContext(t *testing.T) {
	ctx := context.Background()
	assert.Same(t, DefaultLogger(), FromContext(ctx))

	logger := zap.NewNop().Sugar()
	ctx = WithLogger(ctx, logger)
	assert.Same(t, logger, FromContext(ctx))
}

func TestNewLogger(t *testing.T) {
	debug := NewLogger(true)
	assert.True(t, debug.Desugar().Core().Enabled(zapcore.DebugLevel))

	info := NewLogger(false)
	assert.False(t, info.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, info.Desugar().Core().Enabled(zapcore.InfoLevel))
}

func TestDebugFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		debug    string
		level    string
		expected bool
	}{
		{name: "unset", expected: false},
		{name: "debug_flag", debug: "true", expected: true},
		{name: "log_level", level: "DEBUG", expected: true},
		{name: "info_level", level: "info", expected: false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Setenv("RRT_DEBUG", test.debug)
			t.Setenv("LOG_LEVEL", test.level)
			assert.Equal(t, test.expected, debugFromEnv())
		})
	}
}
