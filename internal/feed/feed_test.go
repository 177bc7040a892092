package feed

import (
	"sync"
	"testing"
)

func TestRecorder_ConcurrentPublish(t *testing.T) {
	rec := &Recorder{}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				rec.Publish("music.status", j)
				_ = rec.Topics()
			}
		}()
	}
	wg.Wait()

	if got := len(rec.Events()); got != 400 {
		t.Fatalf("len(Events()) = %d, want %d", got, 400)
	}
}

func TestRecorder_EventsReturnsCopy(t *testing.T) {
	rec := &Recorder{}
	rec.Publish("theme.updated", "dark")

	events := rec.Events()
	events[0].Topic = "mutated"

	if got := rec.Topics()[0]; got != "theme.updated" {
		t.Fatalf("Topics()[0] = %q, want %q", got, "theme.updated")
	}
}

func TestOrNop_NilPublisher(t *testing.T) {
	OrNop(nil).Publish("theme.updated", nil)
}
