package snapdump

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_KeepsMostRecent(t *testing.T) {
	rec := NewRecorder(2)

	for i := range 3 {
		rec.Record(context.Background(), Entry{Text: fmt.Sprintf("n=%d", i)})
	}

	entries := rec.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "n=1", entries[0].Text)
	assert.Equal(t, "n=2", entries[1].Text)

	rec.Reset()
	assert.Equal(t, 0, rec.Len())
}

func TestRecorder_DefaultLimit(t *testing.T) {
	rec := NewRecorder(0)

	for range DefaultRecorderLimit + 10 {
		rec.Record(context.Background(), Entry{})
	}

	assert.Equal(t, DefaultRecorderLimit, rec.Len())
}

func TestRecorder_AsDumperSink(t *testing.T) {
	rec := NewRecorder(8)
	d, _ := newDumper(t, WithSink(rec.Record))

	var wg sync.WaitGroup

	for i := range 4 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			d.State(context.Background(), Point{X: i, Y: i}, 0)
		}()
	}

	wg.Wait()

	assert.Equal(t, 4, rec.Len())

	for _, e := range rec.Entries() {
		assert.Contains(t, e.Text, "Point state: X=")
	}
}
