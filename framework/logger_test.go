package framework

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapturingLoggerKeepsMessagesInOrder(t *testing.T) {
	var l CapturingLogger
	l.Printf("first %d", 1)
	l.Printf("second %s", "two")

	out := l.Output()
	require.Len(t, out, 2)
	assert.Equal(t, "first 1", out[0].Message)
	assert.Equal(t, "second two", out[1].Message)
	assert.False(t, out[1].Time.Before(out[0].Time))
}

func TestCapturingLoggerOutputIsACopy(t *testing.T) {
	var l CapturingLogger
	l.Printf("a")
	out := l.Output()
	l.Printf("b")
	assert.Len(t, out, 1)
	assert.Len(t, l.Output(), 2)
}

func TestCapturedOutputDump(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 11, 12, 345000000, time.UTC)
	output := CapturedOutput{{Time: ts, Message: "hello"}}

	var buf bytes.Buffer
	output.Dump(&buf, "  DEBUG ")
	assert.Equal(t, "  DEBUG [2024-05-01 10:11:12.345] hello\n", buf.String())
}

func TestLoggerWithPrefix(t *testing.T) {
	var l CapturingLogger
	LoggerWithPrefix(&l, "[gateway] ").Printf("status %d", 200)
	require.Len(t, l.Output(), 1)
	assert.Equal(t, "[gateway] status 200", l.Output()[0].Message)
}

func TestLoggerWithPrefixOfNilTargetDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		LoggerWithPrefix(nil, "x").Printf("ignored")
	})
}

func TestCapturingLoggerUsesClock(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 11, 12, 0, time.UTC)
	l := CapturingLogger{Clock: func() time.Time { return ts }}
	l.Printf("GET %s", "/health")

	var buf bytes.Buffer
	l.Output().Dump(&buf, "")
	assert.Equal(t, "[2024-05-01 10:11:12.000] GET /health\n", buf.String())
}
