package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAskReturnsReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostFormValue("message"); got != "hello there" {
			t.Errorf("unexpected message field: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"hi!"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	reply, err := client.Ask(context.Background(), "hello there")
	if err != nil {
		t.Fatalf("Ask err: %v", err)
	}
	if reply != "hi!" {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestAskNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	if _, err := client.Ask(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for 500 status")
	}
}

func TestAskMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	if _, err := client.Ask(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestAskMissingResponseField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	if _, err := client.Ask(context.Background(), "hello"); err == nil {
		t.Fatal("expected error when the response field is absent")
	}
}

func TestAskEmptyResponseFieldIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":""}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	reply, err := client.Ask(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Ask err: %v", err)
	}
	if reply != "" {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestAskTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient(srv.URL, time.Second)
	if _, err := client.Ask(context.Background(), "hello"); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"response":"ok"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", 5*time.Second)
	if _, err := client.Ask(context.Background(), "hello"); err != nil {
		t.Fatalf("Ask err: %v", err)
	}
}
