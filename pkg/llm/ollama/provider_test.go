package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"research-tutor-be/pkg/llm"
)

func newTestProvider(url string) *OllamaProvider {
	p := NewOllamaProvider(url, "test-model")
	return p
}

func TestChat(t *testing.T) {
	var gotReq ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:   "test-model",
			Message: ollamaMessage{Role: "assistant", Content: "full answer"},
			Done:    true,
		})
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	got, err := p.Chat(context.Background(), []llm.Message{
		{Role: "system", Content: "persona"},
		{Role: "model", Content: "earlier reply"},
		{Role: "user", Content: "question"},
	}, llm.WithTemperature(0.7))
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "full answer" {
		t.Errorf("reply = %q", got)
	}

	if gotReq.Stream {
		t.Error("Chat must not request streaming")
	}
	if gotReq.Model != "test-model" {
		t.Errorf("model = %q", gotReq.Model)
	}
	// The provider-agnostic "model" role maps onto ollama's "assistant".
	if gotReq.Messages[1].Role != "assistant" {
		t.Errorf("role mapping: got %q", gotReq.Messages[1].Role)
	}
	if gotReq.Options.Temperature != 0.7 {
		t.Errorf("temperature = %v", gotReq.Options.Temperature)
	}
}

func TestRequestOptionOverrides(t *testing.T) {
	p := newTestProvider("http://unused")

	req := p.buildRequest([]llm.Message{{Role: "user", Content: "q"}}, false, []llm.Option{
		llm.WithModel("bigger-model"),
		llm.WithMaxTokens(256),
	})

	if req.Model != "bigger-model" {
		t.Errorf("model override: got %q", req.Model)
	}
	if req.Options.NumPredict != 256 {
		t.Errorf("num_predict = %d", req.Options.NumPredict)
	}

	// Without overrides the constructor model wins and num_predict stays unset.
	req = p.buildRequest(nil, false, nil)
	if req.Model != "test-model" {
		t.Errorf("default model: got %q", req.Model)
	}
	if req.Options.NumPredict != 0 {
		t.Errorf("num_predict should default to zero, got %d", req.Options.NumPredict)
	}
}

func TestChatStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if !req.Stream {
			t.Error("ChatStream must request streaming")
		}

		for _, delta := range []string{"Hel", "lo", " there"} {
			fmt.Fprintf(w, `{"model":"test-model","message":{"role":"assistant","content":%q},"done":false}`+"\n", delta)
		}
		fmt.Fprintln(w, `{"model":"test-model","message":{"role":"assistant","content":""},"done":true}`)
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	var got []string
	count, err := p.ChatStream(context.Background(), []llm.Message{{Role: "user", Content: "hi"}},
		func(fragment string) error {
			got = append(got, fragment)
			return nil
		})
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}
	if count != 3 {
		t.Errorf("fragment count = %d, want 3", count)
	}
	if strings.Join(got, "") != "Hello there" {
		t.Errorf("assembled = %q", strings.Join(got, ""))
	}
}

func TestChatStreamSkipsMalformedLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"content":"ok"},"done":false}`)
		fmt.Fprintln(w, `not json at all`)
		fmt.Fprintln(w, ``)
		fmt.Fprintln(w, `{"message":{"content":""},"done":true}`)
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	count, err := p.ChatStream(context.Background(), nil, func(string) error { return nil })
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestChatStreamWithoutDoneMarker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"content":"partial"},"done":false}`)
		// Connection closes without done:true.
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	count, err := p.ChatStream(context.Background(), nil, func(string) error { return nil })
	if err == nil {
		t.Fatal("stream ending without done marker must error")
	}
	if count != 1 {
		t.Errorf("count = %d, want the fragment delivered before the cut", count)
	}
}

func TestChatStreamStopsOnFragmentError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 100; i++ {
			fmt.Fprintf(w, `{"message":{"content":"f%d"},"done":false}`+"\n", i)
		}
		fmt.Fprintln(w, `{"message":{"content":""},"done":true}`)
	}))
	defer srv.Close()

	stop := errors.New("consumer gone")
	p := newTestProvider(srv.URL)
	delivered := 0
	count, err := p.ChatStream(context.Background(), nil, func(string) error {
		delivered++
		if delivered == 3 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("err = %v, want the fragment callback's error", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestChatErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	if _, err := p.Chat(context.Background(), nil); err == nil {
		t.Fatal("non-200 status must surface an error")
	}
	if _, err := p.ChatStream(context.Background(), nil, func(string) error { return nil }); err == nil {
		t.Fatal("non-200 status must surface an error on stream")
	}
}
