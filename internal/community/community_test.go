package community

import (
	"context"
	"testing"

	"sanctuary-app/internal/logging"
	"sanctuary-app/internal/storage"
)

func newTestStore(t *testing.T, kv storage.KV) *Store {
	t.Helper()
	s := NewStore(kv, Options{Logger: logging.Discard()})
	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate error = %v", err)
	}
	return s
}

func TestDraft_ClearRestoresDefault(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := newTestStore(t, kv)

	s.SaveDraft(ctx, "c1", "hello")
	if got := s.GetDraft("c1"); got != "hello" {
		t.Fatalf("GetDraft(c1) = %q, want %q", got, "hello")
	}
	s.ClearDraft(ctx, "c1")
	if got := s.GetDraft("c1"); got != "" {
		t.Fatalf("GetDraft(c1) after clear = %q, want empty", got)
	}
	if _, ok := s.State().Drafts["c1"]; ok {
		t.Fatalf("draft key c1 still present after ClearDraft")
	}

	again := newTestStore(t, kv)
	if _, ok := again.State().Drafts["c1"]; ok {
		t.Fatalf("draft key c1 present after restart")
	}
}

func TestDraft_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := newTestStore(t, kv)
	s.SaveDraft(ctx, "c2", "see you sunday")
	s.SaveDraft(ctx, "c2", "see you Sunday!")

	again := newTestStore(t, kv)
	if got := again.GetDraft("c2"); got != "see you Sunday!" {
		t.Fatalf("GetDraft(c2) = %q, want %q", got, "see you Sunday!")
	}
}

func TestSelection(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())

	s.SelectGroup(ctx, "g1")
	st := s.SelectConversation(ctx, "conv9")
	if st.SelectedGroupID != "g1" || st.SelectedConversationID != "conv9" {
		t.Fatalf("State = %+v", st)
	}
	st = s.ClearSelection(ctx)
	if st.SelectedGroupID != "" || st.SelectedConversationID != "" {
		t.Fatalf("State after ClearSelection = %+v", st)
	}
}

func TestState_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())
	s.SaveDraft(ctx, "c1", "x")

	st := s.State()
	st.Drafts["c1"] = "changed"
	if got := s.GetDraft("c1"); got != "x" {
		t.Fatalf("GetDraft(c1) = %q, want %q", got, "x")
	}
}
