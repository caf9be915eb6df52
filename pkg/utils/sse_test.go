package utils

import (
	"net/http/httptest"
	"testing"
)

func TestSendSSEChunk(t *testing.T) {
	resp := httptest.NewRecorder()

	SendSSEChunk(resp, resp, map[string]string{"event": "heartbeat"})

	want := "data: {\"event\":\"heartbeat\"}\n\n"
	if got := resp.Body.String(); got != want {
		t.Fatalf("chunk = %q, want %q", got, want)
	}
	if !resp.Flushed {
		t.Fatal("chunk was not flushed")
	}
}

func TestSendSSEEvent(t *testing.T) {
	resp := httptest.NewRecorder()

	SendSSEEvent(resp, resp, "state", map[string]bool{"isLoading": true})

	want := "event: state\ndata: {\"isLoading\":true}\n\n"
	if got := resp.Body.String(); got != want {
		t.Fatalf("event = %q, want %q", got, want)
	}
}

func TestSetupSSEHeaders(t *testing.T) {
	resp := httptest.NewRecorder()

	SetupSSEHeaders(resp)

	if got := resp.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("content type = %q", got)
	}
	if got := resp.Header().Get("Cache-Control"); got != "no-cache" {
		t.Fatalf("cache control = %q", got)
	}
}
