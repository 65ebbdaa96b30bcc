package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := zerolog.Nop()
	return NewClient(srv.URL+"/api/", srv.Client(), &logger)
}

func TestSendMessageRequestShape(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/channels/7/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}

		body, _ := io.ReadAll(r.Body)
		var req SendMessageRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("bad body %q: %v", body, err)
		}
		if req.UserID != 42 || req.Content != "hi" {
			t.Errorf("body = %+v", req)
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Message{ID: 101, ChannelID: 7, UserID: 42, Content: "hi"})
	})

	msg, err := c.SendMessage(context.Background(), 7, SendMessageRequest{UserID: 42, Content: "hi"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.ID != 101 {
		t.Fatalf("expected the server-assigned id, got %+v", msg)
	}
}

func TestListMessagesPath(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/channels/3/messages" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode([]Message{
			{ID: 1, ChannelID: 3, Content: "a"},
			{ID: 2, ChannelID: 3, Content: "b"},
		})
	})

	msgs, err := c.ListMessages(context.Background(), 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 2 || msgs[0].ID != 1 || msgs[1].ID != 2 {
		t.Fatalf("snapshot order lost: %+v", msgs)
	}
}

func TestUpdateAndDeleteMessagePaths(t *testing.T) {
	var gotMethod, gotPath string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		json.NewEncoder(w).Encode(Message{ID: 5})
	})
	ctx := context.Background()

	if _, err := c.UpdateMessage(ctx, 5, UpdateMessageRequest{Content: "fixed"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/api/messages/5" {
		t.Fatalf("update hit %s %s", gotMethod, gotPath)
	}

	if err := c.DeleteMessage(ctx, 5); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/api/messages/5" {
		t.Fatalf("delete hit %s %s", gotMethod, gotPath)
	}
}

func TestErrorBodyDecoded(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "username taken"})
	})

	_, err := c.CreateUser(context.Background(), CreateUserRequest{Username: "alice", Email: "a@b.c"})
	if err == nil {
		t.Fatal("expected an error")
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Message != "username taken" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
}

func TestErrorWithoutBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := c.DeleteChannel(context.Background(), 1)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %+v", apiErr)
	}
}

func TestDeleteToleratesEmptyBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.DeleteReaction(context.Background(), 9); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestBaseURLTrailingSlash(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]User{})
	})

	if _, err := c.ListUsers(context.Background()); err != nil {
		t.Fatalf("list users: %v", err)
	}
}
