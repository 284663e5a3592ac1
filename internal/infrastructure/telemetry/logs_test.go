package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBridge_DisabledReturnsBase(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, Bridge(base, nil, "forms", zapcore.InfoLevel))
	assert.Same(t, base, Bridge(base, &LoggerProvider{}, "forms", zapcore.InfoLevel))
}

func TestMinLevelCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &minLevelCore{Core: inner, level: zapcore.WarnLevel}
	logger := zap.New(core).With(zap.String("component", "outbox"))

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept too")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "kept", entries[0].Message)
	assert.Equal(t, "outbox", entries[0].ContextMap()["component"])
	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))
}
