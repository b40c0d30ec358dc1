// Command openai-stub is a local OpenAI-compatible server for manual
// end-to-end runs. It titles a note with its first few words.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	noteBegin  = "----- BEGIN NOTE -----"
	noteEnd    = "----- END NOTE -----"
	titleWords = 6
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	log.Info().Str("addr", addr).Str("model", model).Msg("openai-stub listening")
	if err := http.ListenAndServe(addr, newHandler(model)); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func newHandler(model string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			http.Error(w, `{"error":{"message":"missing bearer token"}}`, http.StatusUnauthorized)
			return
		}
		defer r.Body.Close()
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":{"message":"invalid json"}}`, http.StatusBadRequest)
			return
		}
		user := ""
		if n := len(req.Messages); n > 0 {
			user = req.Messages[n-1].Content
		}
		content := "OK"
		if note, ok := noteBlock(user); ok {
			content = titleFor(note)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-stub",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	})
	return mux
}

// noteBlock returns the text between the note markers.
func noteBlock(s string) (string, bool) {
	i := strings.Index(s, noteBegin)
	if i < 0 {
		return "", false
	}
	body := s[i+len(noteBegin):]
	if j := strings.LastIndex(body, noteEnd); j >= 0 {
		body = body[:j]
	}
	return strings.TrimSpace(body), true
}

// titleFor builds a title from the first words of the first non-empty line,
// skipping Markdown heading marks.
func titleFor(note string) string {
	for _, line := range strings.Split(note, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line == "" {
			continue
		}
		words := strings.Fields(line)
		if len(words) > titleWords {
			words = words[:titleWords]
		}
		return strings.Join(words, " ")
	}
	return "Untitled"
}
