package utils

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(true, "warn")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	log, err = NewLogger(false, "debug")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter([]string{"kafka-1:9092", "kafka-2:9092"}, "expo.event.published")
	defer w.Close()

	assert.Equal(t, "expo.event.published", w.Topic)
	assert.Equal(t, "kafka-1:9092,kafka-2:9092", w.Addr.String())
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}

func TestNewFCMClient_DisabledWithoutCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	client, err := NewFCMClient(context.Background(), "", "demo", zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, client)

	_, err = NewFCMClient(context.Background(), "/does/not/exist.json", "demo", zap.NewNop())
	assert.Error(t, err)
}
