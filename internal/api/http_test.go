package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"scrumbringer-admin/internal/model"
)

func TestHTTPBackend_DecodesDataEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/projects/7/cards" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("expected bearer token; got %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": 1, "projectId": 7, "title": "A"}},
		})
	}))
	defer srv.Close()

	b := NewHTTPBackend(srv.URL+"/", "tok")
	cards, err := b.ListCards(context.Background(), 7)
	if err != nil {
		t.Fatalf("list cards: %v", err)
	}
	if len(cards) != 1 || cards[0].Title != "A" {
		t.Fatalf("unexpected cards: %+v", cards)
	}
}

func TestHTTPBackend_MapsErrorEnvelopeToApiError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":"CONFLICT_HAS_TASKS","message":"card has tasks"}}`))
	}))
	defer srv.Close()

	err := NewHTTPBackend(srv.URL, "").DeleteCard(context.Background(), 3)
	var ae *model.ApiError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *model.ApiError; got %T %v", err, err)
	}
	if ae.Status != 409 || ae.Code != "CONFLICT_HAS_TASKS" || ae.Message != "card has tasks" {
		t.Fatalf("unexpected api error: %+v", ae)
	}
}

func TestHTTPBackend_EmptyErrorBodyUsesStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewHTTPBackend(srv.URL, "").Me(context.Background())
	ae := AsAPIError(err)
	if ae.Status != 401 || ae.Message != "Unauthorized" {
		t.Fatalf("unexpected api error: %+v", ae)
	}
}

func TestNewResult_NormalizesTransportErrors(t *testing.T) {
	r := NewResult(0, errors.New("dial tcp: refused"))
	if r.OK() {
		t.Fatalf("expected failure")
	}
	if r.Err.Status != 0 || r.Err.Message != "dial tcp: refused" {
		t.Fatalf("unexpected err: %+v", r.Err)
	}
}
