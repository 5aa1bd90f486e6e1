package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel) (*SlogLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewLogger(&LoggerConfig{Level: level, Format: "json", Output: buf}), buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var records []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		rec := map[string]interface{}{}
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}
	return records
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{input: "debug", expected: LevelDebug},
		{input: "INFO", expected: LevelInfo},
		{input: "", expected: LevelInfo},
		{input: "warning", expected: LevelWarn},
		{input: " error ", expected: LevelError},
		{input: "loud", expected: LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestSlogLogger_LevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn)
	ctx := context.Background()

	logger.Debug(ctx, "dropped")
	logger.Info(ctx, "dropped too")
	logger.Warn(ctx, nil, "kept")
	logger.Error(ctx, errors.New("boom"), "kept as well")

	records := decodeLines(t, buf)
	require.Len(t, records, 2)
	assert.Equal(t, "kept", records[0]["msg"])
	assert.Equal(t, "boom", records[1]["error"])
}

func TestSlogLogger_FieldsAndComponent(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug)

	scoped := logger.WithComponent("bfd").With("instance", "BFD-1")
	scoped.Info(context.Background(), "session admitted", "ttl", 255)

	records := decodeLines(t, buf)
	require.Len(t, records, 1)
	assert.Equal(t, "bfd", records[0]["component"])
	assert.Equal(t, "BFD-1", records[0]["instance"])
	assert.EqualValues(t, 255, records[0]["ttl"])
}

func TestSlogLogger_OddFieldsIgnored(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo)

	logger.Info(context.Background(), "odd", "key")

	records := decodeLines(t, buf)
	require.Len(t, records, 1)
	_, ok := records[0]["key"]
	assert.False(t, ok)
}

func TestNopLogger(t *testing.T) {
	logger := NewNop()
	assert.NotPanics(t, func() {
		logger.With("a", 1).WithComponent("x").Error(context.Background(), errors.New("e"), "m")
	})
}

func TestPerfLogger_End(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug)

	op := StartOperation(logger, "parse")
	d := op.End(context.Background(), "role", "bfd")

	assert.GreaterOrEqual(t, int64(d), int64(0))
	records := decodeLines(t, buf)
	require.Len(t, records, 1)
	assert.Equal(t, "parse", records[0]["operation"])
	assert.Equal(t, "bfd", records[0]["role"])
}
