package snapdump

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := WriterSink(&buf)

	sink(context.Background(), Entry{Text: "Point state: X=3, Y=4"})
	sink(context.Background(), Entry{Text: "a=1\nb=2"})

	assert.Equal(t, "Point state: X=3, Y=4\na=1\nb=2\n", buf.String())
}

func TestColorErrorSink(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		ColorErrorSink(&buf, false)(context.Background(), Diagnostic{Err: errors.New("boom")})

		assert.Equal(t, "snapdump: boom\n", buf.String())
	})

	t.Run("colored", func(t *testing.T) {
		var buf bytes.Buffer
		ColorErrorSink(&buf, true)(context.Background(), Diagnostic{Err: errors.New("boom")})

		assert.True(t, strings.HasPrefix(buf.String(), "\x1b["), buf.String())
		assert.True(t, strings.HasSuffix(buf.String(), " boom\n"), buf.String())
	})
}

func TestContextWithSink(t *testing.T) {
	_, ok := sinkFromContext(context.Background())
	assert.False(t, ok)

	_, ok = sinkFromContext(ContextWithSink(context.Background(), nil))
	assert.False(t, ok)

	sink, ok := sinkFromContext(ContextWithSink(context.Background(), DiscardSink))
	assert.True(t, ok)
	assert.NotNil(t, sink)
}

func TestCallerFrame(t *testing.T) {
	frame := callerFrame(0)

	assert.Contains(t, frame.Function, "TestCallerFrame")
	assert.True(t, strings.HasSuffix(frame.File, "sink_test.go"), frame.File)
}
