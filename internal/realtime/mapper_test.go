package realtime

import (
	"encoding/json"
	"testing"

	"slackline/internal/chat"
	"slackline/internal/proto"
)

func envelope(t *testing.T, event string, data string) proto.Envelope {
	t.Helper()
	return proto.Envelope{Event: event, Data: json.RawMessage(data)}
}

func mustDecode(t *testing.T, env proto.Envelope) chat.Event {
	t.Helper()
	ev, ok, err := decodeEnvelope(env)
	if err != nil {
		t.Fatalf("decode %q: %v", env.Event, err)
	}
	if !ok {
		t.Fatalf("decode %q: unexpectedly dropped", env.Event)
	}
	return ev
}

func TestDecodeNewMessage(t *testing.T) {
	ev := mustDecode(t, envelope(t, "new_message",
		`{"channel_id":7,"message":{"id":101,"channel_id":7,"user_id":42,"content":"hi","username":"alice"}}`))

	if ev.Kind != chat.EventNewMessage || ev.ChannelID != 7 {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Message.ID != 101 || ev.Message.Content != "hi" {
		t.Fatalf("unexpected message: %+v", ev.Message)
	}
}

func TestDecodeNewMessageFillsChannelIDFromWrapper(t *testing.T) {
	ev := mustDecode(t, envelope(t, "new_message",
		`{"channel_id":7,"message":{"id":101,"user_id":42,"content":"hi"}}`))

	if ev.Message.ChannelID != 7 {
		t.Fatalf("channel id not backfilled: %+v", ev.Message)
	}
}

func TestDecodeMessageUpdated(t *testing.T) {
	ev := mustDecode(t, envelope(t, "message_updated",
		`{"channel_id":7,"message":{"id":101,"channel_id":7,"content":"fixed","is_edited":true}}`))

	if ev.Kind != chat.EventMessageUpdated || !ev.Message.IsEdited {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestDecodeMessageDeleted(t *testing.T) {
	ev := mustDecode(t, envelope(t, "message_deleted", `{"channel_id":7,"message_id":101}`))

	if ev.Kind != chat.EventMessageDeleted || ev.ChannelID != 7 || ev.MessageID != 101 {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestDecodeChannelCreated(t *testing.T) {
	ev := mustDecode(t, envelope(t, "channel_created", `{"channel":{"id":3,"name":"design"}}`))

	if ev.Kind != chat.EventChannelCreated || ev.Channel.ID != 3 || ev.Channel.Name != "design" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestDecodeUserStatusChanged(t *testing.T) {
	online := mustDecode(t, envelope(t, "user_status_changed", `{"user_id":42,"status":"online"}`))
	if online.Kind != chat.EventUserStatusChanged || online.UserID != 42 || !online.Online {
		t.Fatalf("unexpected event: %+v", online)
	}

	offline := mustDecode(t, envelope(t, "user_status_changed", `{"user_id":42,"status":"offline"}`))
	if offline.Online {
		t.Fatalf("offline status decoded as online: %+v", offline)
	}
}

func TestDecodeOnlineUsers(t *testing.T) {
	ev := mustDecode(t, envelope(t, "online_users", `{"user_ids":[1,2,3]}`))

	if ev.Kind != chat.EventOnlineUsers || len(ev.UserIDs) != 3 {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestDecodeUserTyping(t *testing.T) {
	ev := mustDecode(t, envelope(t, "user_typing",
		`{"channel_id":7,"username":"bob","is_typing":true}`))

	if ev.Kind != chat.EventUserTyping || ev.ChannelID != 7 || ev.Username != "bob" || !ev.IsTyping {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestDecodeServerError(t *testing.T) {
	ev := mustDecode(t, envelope(t, "error", `{"message":"channel not found"}`))

	if ev.Kind != chat.EventServerError || ev.Err != "channel not found" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestDecodeGreetingDropped(t *testing.T) {
	// The server's connection greeting carries no state the client acts on;
	// the link-up event is synthesized locally instead.
	_, ok, err := decodeEnvelope(envelope(t, "connected", `{"message":"hello"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ok {
		t.Fatal("greeting should be dropped")
	}
}

func TestDecodeUnknownEventDropped(t *testing.T) {
	_, ok, err := decodeEnvelope(envelope(t, "voice_call_started", `{"whatever":1}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ok {
		t.Fatal("unknown event should be dropped")
	}
}

func TestDecodeMalformedPayload(t *testing.T) {
	if _, _, err := decodeEnvelope(envelope(t, "new_message", `{"message":`)); err == nil {
		t.Fatal("expected a decode error")
	}
	if _, _, err := decodeEnvelope(proto.Envelope{Event: "new_message"}); err == nil {
		t.Fatal("expected an error for an empty payload")
	}
}

func TestEncodeRoundtrip(t *testing.T) {
	env, err := proto.Encode(proto.EventTyping, proto.UserTypingData{
		ChannelID: 7,
		UserID:    42,
		Username:  "alice",
		IsTyping:  true,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if env.Event != "typing" {
		t.Fatalf("event = %q", env.Event)
	}

	var d proto.UserTypingData
	if err := json.Unmarshal(env.Data, &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.ChannelID != 7 || d.Username != "alice" || !d.IsTyping {
		t.Fatalf("payload mangled: %+v", d)
	}
}
