package telegram

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendMessage(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottest-token/sendMessage" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	b := NewBot("test-token", nil, slog.Default())
	b.api = srv.URL + "/bot"

	if err := b.SendMessage(42, "hello"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if got["chat_id"].(float64) != 42 {
		t.Errorf("chat_id = %v, want 42", got["chat_id"])
	}
	if got["text"] != "hello" {
		t.Errorf("text = %v, want hello", got["text"])
	}
}

func TestSendMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	b := NewBot("tok", nil, slog.Default())
	b.api = srv.URL + "/bot"

	err := b.SendMessage(1, "x")
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
}
