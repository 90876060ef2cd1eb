package proxy

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/youssefadel94/github-copilot-proxy/pkg/proxy/types"
)

func TestParseChatCompletionRequest(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantErr  bool
		wantCode string
	}{
		{
			name: "valid request",
			body: `{"model":"gpt-4o","messages":[{"role":"user","content":"hi"}]}`,
		},
		{
			name:     "missing model",
			body:     `{"messages":[{"role":"user","content":"hi"}]}`,
			wantErr:  true,
			wantCode: types.CodeInvalidValue,
		},
		{
			name:     "empty messages",
			body:     `{"model":"gpt-4o","messages":[]}`,
			wantErr:  true,
			wantCode: types.CodeInvalidValue,
		},
		{
			name:     "malformed json",
			body:     `{"model":`,
			wantErr:  true,
			wantCode: types.CodeInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/v1/chat/completions", strings.NewReader(tt.body))
			req, err := ParseChatCompletionRequest(r, 0)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var reqErr *RequestError
				if !errors.As(err, &reqErr) {
					t.Fatalf("error type = %T, want *RequestError", err)
				}
				if reqErr.Code != tt.wantCode {
					t.Errorf("code = %q, want %q", reqErr.Code, tt.wantCode)
				}
				return
			}
			if req.Model != "gpt-4o" {
				t.Errorf("model = %q, want gpt-4o", req.Model)
			}
		})
	}
}

func TestParseChatCompletionRequestTooLarge(t *testing.T) {
	body := `{"model":"gpt-4o","messages":[{"role":"user","content":"` +
		strings.Repeat("x", 200) + `"}]}`
	r := httptest.NewRequest("POST", "/v1/chat/completions", strings.NewReader(body))

	_, err := ParseChatCompletionRequest(r, 64)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error = %v, want *RequestError", err)
	}
	if reqErr.Code != types.CodeRequestTooLarge {
		t.Errorf("code = %q, want %q", reqErr.Code, types.CodeRequestTooLarge)
	}
}

func TestParseCompletionRequest(t *testing.T) {
	r := httptest.NewRequest("POST", "/v1/completions",
		strings.NewReader(`{"model":"gpt-4o","prompt":"Say hi"}`))

	req, err := ParseCompletionRequest(r, 0)
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if req.Prompt != "Say hi" {
		t.Errorf("prompt = %v, want Say hi", req.Prompt)
	}
}

func TestParseResponsesRequest(t *testing.T) {
	r := httptest.NewRequest("POST", "/v1/responses",
		strings.NewReader(`{"model":"gpt-4o","input":"Say hi","instructions":"be brief"}`))

	req, err := ParseResponsesRequest(r, 0)
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if req.Instructions != "be brief" {
		t.Errorf("instructions = %q, want 'be brief'", req.Instructions)
	}
}

func TestExtractSessionID(t *testing.T) {
	r := httptest.NewRequest("POST", "/v1/chat/completions", nil)
	r.Header.Set(SessionIDHeader, "sess-42")
	if got := ExtractSessionID(r); got != "sess-42" {
		t.Errorf("session id = %q, want sess-42", got)
	}

	r = httptest.NewRequest("POST", "/v1/chat/completions", nil)
	r.RemoteAddr = "10.0.0.7:59123"
	if got := ExtractSessionID(r); got != "10.0.0.7" {
		t.Errorf("session id = %q, want 10.0.0.7", got)
	}
}
