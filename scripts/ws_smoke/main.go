// Command ws_smoke exercises the backend's realtime endpoint end to end:
// announce a user, join a channel, emit a typing signal, and print the first
// few pushed envelopes. Useful when pointing the client at a new backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"slackline/internal/proto"
)

func main() {
	addr := flag.String("addr", "ws://localhost:5000/ws", "websocket address")
	userID := flag.Int64("user", 1, "user id to announce")
	username := flag.String("username", "smoke", "username for the typing signal")
	channelID := flag.Int64("channel", 1, "channel id to join")
	events := flag.Int("events", 3, "number of pushed envelopes to print")
	timeout := flag.Duration("timeout", 10*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	mustSend := func(event string, data any) {
		env, err := proto.Encode(event, data)
		if err != nil {
			log.Fatalf("encode %s: %v", event, err)
		}
		if err := wsjson.Write(ctx, conn, env); err != nil {
			log.Fatalf("send %s: %v", event, err)
		}
	}

	mustSend(proto.EventUserOnline, proto.UserOnlineData{UserID: *userID})
	mustSend(proto.EventJoinChannel, proto.ChannelRefData{ChannelID: *channelID})
	mustSend(proto.EventTyping, proto.UserTypingData{
		ChannelID: *channelID,
		UserID:    *userID,
		Username:  *username,
		IsTyping:  true,
	})

	for i := 0; i < *events; i++ {
		var env proto.Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			log.Fatalf("read: %v", err)
		}
		fmt.Printf("event=%s data=%s\n", env.Event, env.Data)
	}
}
