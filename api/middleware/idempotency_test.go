package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/angelmondragon/atacado-backend/pkg/errors"
)

type fakeStore struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func requestWithPattern(method, url, pattern string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, url, body)
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestRequiresIdempotency(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		pattern string
		want    bool
	}{
		{"place order", http.MethodPost, "/api/v1/orders", true},
		{"transition", http.MethodPost, "/api/v1/orders/{orderId}/status", true},
		{"calculate", http.MethodPost, "/api/v1/orders/calculate", false},
		{"list orders", http.MethodGet, "/api/v1/orders", false},
	}
	for _, tt := range tests {
		if got := requiresIdempotency(tt.method, tt.pattern); got != tt.want {
			t.Fatalf("%s: expected %v got %v", tt.name, tt.want, got)
		}
	}
}

func TestIdempotencyMiddlewareRequiresHeader(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, time.Hour, nil)
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusCreated)
	})

	req := requestWithPattern(http.MethodPost, "/api/v1/orders", "/api/v1/orders", strings.NewReader(`{"foo":"bar"}`))
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if handlerCalled {
		t.Fatalf("handler should not run without idempotency key")
	}
}

func TestIdempotencyMiddlewareReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, time.Hour, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"order-1"}}`))
	})

	send := func() *httptest.ResponseRecorder {
		req := requestWithPattern(http.MethodPost, "/api/v1/orders", "/api/v1/orders", strings.NewReader(`{"foo":"bar"}`))
		req.Header.Set(HeaderIdempotencyKey, "abc")
		resp := httptest.NewRecorder()
		mw(handler).ServeHTTP(resp, req)
		return resp
	}

	first := send()
	if first.Code != http.StatusCreated {
		t.Fatalf("expected first response 201 got %d", first.Code)
	}
	second := send()
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201 got %d", second.Code)
	}
	if second.Body.String() != `{"data":{"id":"order-1"}}` {
		t.Fatalf("unexpected replay body %q", second.Body.String())
	}
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replay header")
	}
	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d", calls)
	}
	for _, ttl := range store.ttls {
		if ttl != time.Hour {
			t.Fatalf("expected configured ttl, got %v", ttl)
		}
	}
}

func TestIdempotencyMiddlewareRejectsDifferentBody(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, time.Hour, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`ok`))
	})

	pattern := "/api/v1/orders/{orderId}/status"
	url := "/api/v1/orders/123/status"
	req := requestWithPattern(http.MethodPost, url, pattern, strings.NewReader(`{"target_status":"CONFIRMED"}`))
	req.Header.Set(HeaderIdempotencyKey, "abc")
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)

	req = requestWithPattern(http.MethodPost, url, pattern, strings.NewReader(`{"target_status":"CANCELLED"}`))
	req.Header.Set(HeaderIdempotencyKey, "abc")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("unexpected error code %s", payload.Error.Code)
	}
}

func TestIdempotencyMiddlewareDoesNotStoreServerErrors(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, time.Hour, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for i := 0; i < 2; i++ {
		req := requestWithPattern(http.MethodPost, "/api/v1/orders", "/api/v1/orders", strings.NewReader(`{}`))
		req.Header.Set(HeaderIdempotencyKey, "retry-me")
		mw(handler).ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Fatalf("expected retry to reach the handler, ran %d", calls)
	}
	if len(store.data) != 0 {
		t.Fatalf("5xx responses must not be stored")
	}
}

func TestIdempotencyScopeSeparatesCallers(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, time.Hour, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	})

	for _, org := range []uuid.UUID{uuid.New(), uuid.New()} {
		req := requestWithPattern(http.MethodPost, "/api/v1/orders", "/api/v1/orders", strings.NewReader(`{}`))
		req = req.WithContext(WithActor(req.Context(), uuid.New(), org, "STORE"))
		req.Header.Set(HeaderIdempotencyKey, "shared")
		mw(handler).ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Fatalf("same key from different organizations must not collide, ran %d", calls)
	}
}

func TestIdempotencyMiddlewareSkipsOtherRoutes(t *testing.T) {
	mw := Idempotency(newFakeStore(), time.Hour, nil)
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	req := requestWithPattern(http.MethodPost, "/api/v1/orders/calculate", "/api/v1/orders/calculate", strings.NewReader(`{}`))
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Fatalf("calculate does not need an idempotency key")
	}
}
