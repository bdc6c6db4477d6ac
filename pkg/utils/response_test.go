package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestRespondErrorCarriesRequestID(t *testing.T) {
	var body ErrorBody
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondError(w, r, http.StatusNotFound, "session not found")
	}))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "session not found" || body.RequestID == "" || body.Reply != "" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestRespondFallbackIncludesReply(t *testing.T) {
	resp := httptest.NewRecorder()
	RespondFallback(resp, httptest.NewRequest(http.MethodPost, "/", nil), http.StatusBadGateway, "reply generation failed", "sorry")

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != http.StatusBadGateway || body["reply"] != "sorry" || body["error"] != "reply generation failed" {
		t.Fatalf("unexpected response %d %+v", resp.Code, body)
	}
	if _, ok := body["requestId"]; ok {
		t.Fatalf("expected no request id outside the middleware, got %+v", body)
	}
}

func TestRespondJSONNilPayloadWritesHeadersOnly(t *testing.T) {
	resp := httptest.NewRecorder()
	RespondJSON(resp, http.StatusNoContent, nil)
	if resp.Code != http.StatusNoContent || resp.Body.Len() != 0 {
		t.Fatalf("unexpected response %d %q", resp.Code, resp.Body.String())
	}
}
