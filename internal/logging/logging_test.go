package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedLogger() (*logrus.Logger, *bytes.Buffer) {
	logger := SetupLogging()
	buf := &bytes.Buffer{}
	logger.SetOutput(buf)
	return logger, buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]interface{}{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestSetupLogging_JSONWithLoglevelKey(t *testing.T) {
	logger, buf := newBufferedLogger()

	logger.Info("hello")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "info", lines[0]["loglevel"])
	assert.Equal(t, "hello", lines[0]["msg"])
}

func TestLogData_FieldsAndTimings(t *testing.T) {
	logger, buf := newBufferedLogger()
	logData := NewLogData(logger)

	logData.AddData("userID", "123456")
	logData.AddTiming("hash")()
	end := logData.AddToExistingTiming("hash")
	end()
	logData.Log().Info("done")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "123456", lines[0]["userID"])
	assert.Contains(t, lines[0], "hashMs")
}

func TestWrapAction_Complete(t *testing.T) {
	logger, buf := newBufferedLogger()

	run := WrapAction("AddUser", logger, func(ctx context.Context, logData *LogData) error {
		logData.AddData("userID", "654321")
		return nil
	})

	require.NoError(t, run(context.Background()))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "Action.AddUser.Complete", lines[0]["msg"])
	assert.Equal(t, "654321", lines[0]["userID"])
	assert.Contains(t, lines[0], "durationMs")
}

func TestWrapAction_Error(t *testing.T) {
	logger, buf := newBufferedLogger()

	run := WrapAction("Transfer", logger, func(ctx context.Context, logData *LogData) error {
		return errors.New("account index out of range")
	})

	err := run(context.Background())
	assert.EqualError(t, err, "account index out of range")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "Action.Transfer.Error", lines[0]["msg"])
	assert.Equal(t, "error", lines[0]["loglevel"])
	assert.Equal(t, "account index out of range", lines[0]["error"])
}
