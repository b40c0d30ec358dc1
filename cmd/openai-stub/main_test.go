package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTitleFor(t *testing.T) {
	cases := []struct{ in, want string }{
		{"# Shopping list\n- milk", "Shopping list"},
		{"\n\none two three four five six seven eight", "one two three four five six"},
		{"   ", "Untitled"},
	}
	for _, tc := range cases {
		if got := titleFor(tc.in); got != tc.want {
			t.Fatalf("titleFor(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHandler_TitlesNoteBlock(t *testing.T) {
	srv := httptest.NewServer(newHandler("m"))
	defer srv.Close()

	body := `{"model":"m","messages":[{"role":"system","content":"s"},{"role":"user","content":"rules\n----- BEGIN NOTE -----\n## Trip to Oslo\ndetails\n----- END NOTE -----"}]}`
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer x")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Choices) != 1 || out.Choices[0].Message.Content != "Trip to Oslo" {
		t.Fatalf("choices=%+v", out.Choices)
	}
}

func TestHandler_RequiresBearer(t *testing.T) {
	srv := httptest.NewServer(newHandler("m"))
	defer srv.Close()
	resp, err := http.Post(srv.URL+"/v1/chat/completions", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}
