package chat

import (
	"testing"

	"slackline/internal/api"
)

func activeSession(t *testing.T, channelID int64) *Session {
	t.Helper()
	s := &Session{}
	s.Activate(api.Channel{ID: channelID, Name: "general"})
	return s
}

func msg(id, channelID int64, content string) api.Message {
	return api.Message{ID: id, ChannelID: channelID, UserID: 1, Content: content}
}

func TestAppendIfAbsentDedupsById(t *testing.T) {
	s := activeSession(t, 1)

	// Confirmation and push for the same message, interleaved with others.
	inputs := []api.Message{
		msg(10, 1, "hi"),
		msg(11, 1, "there"),
		msg(10, 1, "hi"),
		msg(11, 1, "there"),
		msg(12, 1, "again"),
		msg(10, 1, "hi"),
	}
	for _, in := range inputs {
		s.AppendIfAbsent(in)
	}

	got := s.Messages()
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d: %+v", len(got), got)
	}
	seen := map[int64]bool{}
	for _, m := range got {
		if seen[m.ID] {
			t.Fatalf("duplicate id %d in list", m.ID)
		}
		seen[m.ID] = true
	}
}

func TestAppendIfAbsentDiscardsOtherChannels(t *testing.T) {
	s := activeSession(t, 1)

	if s.AppendIfAbsent(msg(10, 2, "wrong channel")) {
		t.Fatal("message for channel 2 must be discarded while channel 1 is active")
	}
	if len(s.Messages()) != 0 {
		t.Fatalf("list should be empty, got %+v", s.Messages())
	}
}

func TestAppendIfAbsentInactive(t *testing.T) {
	s := &Session{}
	if s.AppendIfAbsent(msg(10, 1, "hi")) {
		t.Fatal("append must be a no-op in the inactive state")
	}
}

func TestReplaceMessagesInstallsSnapshotVerbatim(t *testing.T) {
	s := activeSession(t, 1)
	s.AppendIfAbsent(msg(1, 1, "stale"))
	s.AppendIfAbsent(msg(2, 1, "stale too"))

	snapshot := []api.Message{msg(5, 1, "a"), msg(6, 1, "b"), msg(7, 1, "c")}
	s.ReplaceMessages(snapshot)

	got := s.Messages()
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	for i, want := range snapshot {
		if got[i].ID != want.ID {
			t.Fatalf("position %d: got id %d, want %d", i, got[i].ID, want.ID)
		}
	}
}

func TestReplaceMessagesEmptySnapshot(t *testing.T) {
	s := activeSession(t, 1)
	s.AppendIfAbsent(msg(1, 1, "old"))

	s.ReplaceMessages(nil)

	if len(s.Messages()) != 0 {
		t.Fatalf("expected empty list after empty snapshot, got %+v", s.Messages())
	}
	if !s.Active() {
		t.Fatal("session must stay active with an empty list")
	}
}

func TestApplyUpdateIsIdempotent(t *testing.T) {
	s := activeSession(t, 1)
	s.ReplaceMessages([]api.Message{msg(1, 1, "a"), msg(2, 1, "b"), msg(3, 1, "c")})

	edited := msg(2, 1, "b (fixed)")
	edited.IsEdited = true

	if !s.ApplyUpdate(edited) {
		t.Fatal("first update should apply")
	}
	s.ApplyUpdate(edited)

	got := s.Messages()
	if len(got) != 3 {
		t.Fatalf("update must not change list length, got %d", len(got))
	}
	if got[1].ID != 2 || got[1].Content != "b (fixed)" || !got[1].IsEdited {
		t.Fatalf("position 1 not updated in place: %+v", got[1])
	}
}

func TestApplyUpdateUnknownIdDiscarded(t *testing.T) {
	s := activeSession(t, 1)
	s.ReplaceMessages([]api.Message{msg(1, 1, "a")})

	if s.ApplyUpdate(msg(99, 1, "ghost")) {
		t.Fatal("update for unknown id must be discarded")
	}
	if len(s.Messages()) != 1 {
		t.Fatalf("list changed by discarded update: %+v", s.Messages())
	}
}

func TestApplyDeleteThenDelete(t *testing.T) {
	s := activeSession(t, 1)
	s.ReplaceMessages([]api.Message{msg(1, 1, "a"), msg(2, 1, "b")})

	if !s.ApplyDelete(1) {
		t.Fatal("first delete should apply")
	}
	if s.ApplyDelete(1) {
		t.Fatal("second delete for the same id must be a no-op")
	}

	got := s.Messages()
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("unexpected list after deletes: %+v", got)
	}
}

func TestTypingSlotLastWriterWins(t *testing.T) {
	s := activeSession(t, 1)

	s.SetTyping("alice", true)
	s.SetTyping("bob", true)

	who, ok := s.Typing()
	if !ok || who != "bob" {
		t.Fatalf("expected bob typing, got %q (%v)", who, ok)
	}

	// Stop from a user no longer shown must not clear bob.
	s.SetTyping("alice", false)
	if who, ok := s.Typing(); !ok || who != "bob" {
		t.Fatalf("alice's stop cleared bob's slot: %q (%v)", who, ok)
	}

	s.SetTyping("bob", false)
	if _, ok := s.Typing(); ok {
		t.Fatal("slot should be clear after bob stops")
	}
}

func TestActivateResetsState(t *testing.T) {
	s := activeSession(t, 1)
	s.ReplaceMessages([]api.Message{msg(1, 1, "a")})
	s.SetTyping("alice", true)

	s.Activate(api.Channel{ID: 2, Name: "random"})

	if len(s.Messages()) != 0 {
		t.Fatalf("activation must clear the list, got %+v", s.Messages())
	}
	if _, ok := s.Typing(); ok {
		t.Fatal("activation must clear the typing slot")
	}
	if ch, _ := s.Channel(); ch.ID != 2 {
		t.Fatalf("unexpected channel: %+v", ch)
	}
}
