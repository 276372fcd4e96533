// File path: internal/mailer/client_test.go
package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig(endpoint string) Config {
	return Config{
		Endpoint:        endpoint,
		APIKey:          "test-key",
		From:            "noreply@forgewise.dev",
		AdminEmail:      "hello@forgewise.dev",
		Timeout:         2 * time.Second,
		PollInterval:    5 * time.Millisecond,
		DispatchTimeout: 2 * time.Second,
	}
}

func TestSendPollsUntilDelivered(t *testing.T) {
	var polls int32
	var sent sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/messages":
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("unexpected auth header %q", got)
			}
			if err := json.NewDecoder(r.Body).Decode(&sent); err != nil {
				t.Errorf("decode send request: %v", err)
			}
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(messageStatus{ID: "msg-1", Status: "queued"})
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/messages/"):
			n := atomic.AddInt32(&polls, 1)
			status := "processing"
			if n >= 3 {
				status = "delivered"
			}
			json.NewEncoder(w).Encode(messageStatus{ID: "msg-1", Status: status})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL))
	id, err := client.Send(context.Background(), Email{
		To:      []string{"hello@forgewise.dev"},
		Subject: "Test",
		HTML:    "<p>hi</p>",
		Attachments: []Attachment{
			{Filename: "Requirements_1.pdf", ContentType: "application/pdf", Content: []byte("%PDF-fake")},
		},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != "msg-1" {
		t.Fatalf("expected msg-1, got %q", id)
	}
	if atomic.LoadInt32(&polls) < 3 {
		t.Fatalf("expected at least 3 polls, got %d", polls)
	}
	if sent.From != "noreply@forgewise.dev" {
		t.Fatalf("expected configured sender, got %q", sent.From)
	}
	if len(sent.Attachments) != 1 || sent.Attachments[0].Content == "" {
		t.Fatalf("expected base64 attachment, got %+v", sent.Attachments)
	}
}

func TestSendFailedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(messageStatus{ID: "msg-2", Status: "queued"})
			return
		}
		json.NewEncoder(w).Encode(messageStatus{ID: "msg-2", Status: "bounced", Error: "mailbox unavailable"})
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL))
	_, err := client.Send(context.Background(), Email{To: []string{"x@example.com"}, Subject: "s", HTML: "b"})
	if err == nil {
		t.Fatal("expected dispatch failure")
	}
	if !strings.Contains(err.Error(), "mailbox unavailable") {
		t.Fatalf("expected provider detail preserved, got %v", err)
	}
}

func TestSendWithoutConfigFailsFast(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.APIKey = ""
	client := New(cfg)
	_, err := client.Send(context.Background(), Email{To: []string{"x@example.com"}})
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if atomic.LoadInt32(&requests) != 0 {
		t.Fatalf("expected no provider contact, got %d requests", requests)
	}
}
