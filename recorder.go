package snapdump

import (
	"context"
	"sync"

	"github.com/eapache/queue"
)

// DefaultRecorderLimit is the number of entries a Recorder keeps when created with a
// non-positive limit.
const DefaultRecorderLimit = 128

// Recorder keeps the most recent entries in memory, dropping the oldest once the limit is
// reached. Its Record method is a Sink.
type Recorder struct {
	mu      sync.Mutex
	limit   int
	entries *queue.Queue
}

// NewRecorder creates a Recorder holding up to limit entries.
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = DefaultRecorderLimit
	}

	return &Recorder{limit: limit, entries: queue.New()}
}

// Record stores e.
func (r *Recorder) Record(_ context.Context, e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries.Add(e)

	for r.entries.Length() > r.limit {
		r.entries.Remove()
	}
}

// Entries returns the recorded entries, oldest first.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, r.entries.Length())
	for i := range out {
		out[i] = r.entries.Get(i).(Entry)
	}

	return out
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.entries.Length()
}

// Reset drops all recorded entries.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = queue.New()
}
