package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"printhub/pkg/auth"
	"printhub/pkg/logger"
	"printhub/pkg/model"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

type mockVerifier struct {
	verifyFunc func(token, tokenType string) (*auth.Claims, error)
}

func (m *mockVerifier) Verify(token, tokenType string) (*auth.Claims, error) {
	return m.verifyFunc(token, tokenType)
}

func TestAuthenticate(t *testing.T) {
	verifier := &mockVerifier{verifyFunc: func(token, tokenType string) (*auth.Claims, error) {
		if token != "good" || tokenType != auth.TokenAccess {
			return nil, errors.New("bad token")
		}
		c := &auth.Claims{Role: model.RoleShopOwner}
		c.Subject = "owner-1"
		return c, nil
	}}

	var seen auth.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.IdentityFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := Authenticate(verifier, logger.Discard(), PublicRoute{Prefix: "/api/v1/auth/"}, PublicRoute{Method: http.MethodGet, Prefix: "/api/v1/shops"})(next)
	h = StreamRoutes("/api/v1/realtime/print-jobs")(h)

	tests := []struct {
		name       string
		method     string
		path       string
		header     string
		accept     string
		wantStatus int
		wantUser   string
	}{
		{"missing token", http.MethodGet, "/api/v1/print-jobs", "", "", http.StatusUnauthorized, ""},
		{"invalid token", http.MethodGet, "/api/v1/print-jobs", "Bearer nope", "", http.StatusUnauthorized, ""},
		{"valid token", http.MethodGet, "/api/v1/print-jobs", "Bearer good", "", http.StatusOK, "owner-1"},
		{"public prefix", http.MethodPost, "/api/v1/auth/sign-in", "", "", http.StatusOK, ""},
		{"public method only", http.MethodPost, "/api/v1/shops/info", "", "", http.StatusUnauthorized, ""},
		{"event stream query token", http.MethodGet, "/api/v1/realtime/print-jobs?access_token=good", "", "text/event-stream", http.StatusOK, "owner-1"},
		{"query token outside stream route", http.MethodGet, "/api/v1/print-jobs?access_token=good", "", "text/event-stream", http.StatusUnauthorized, ""},
		{"query token on stream route with POST", http.MethodPost, "/api/v1/realtime/print-jobs?access_token=good", "", "", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = auth.Identity{}
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if seen.UserID != tt.wantUser {
				t.Errorf("user = %q, want %q", seen.UserID, tt.wantUser)
			}
		})
	}
}

func TestContentTypeValidation(t *testing.T) {
	h := ContentTypeValidation(logger.Discard(), "multipart/form-data")(okHandler())

	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		want        int
	}{
		{"json post", http.MethodPost, `{}`, "application/json; charset=utf-8", http.StatusOK},
		{"text post", http.MethodPost, `x`, "text/plain", http.StatusUnsupportedMediaType},
		{"multipart allowed", http.MethodPost, `x`, "multipart/form-data; boundary=abc", http.StatusOK},
		{"empty post body", http.MethodPost, ``, "", http.StatusOK},
		{"get ignored", http.MethodGet, ``, "text/plain", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/x", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute, nil, logger.Discard())
	defer limiter.Stop()

	h := RateLimit(limiter)(okHandler())
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("other caller should not be limited, got %d", w.Code)
	}
}

func TestIdempotency_ReplaysSuccess(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	var calls atomic.Int32
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"1"}}`))
	})
	h := Idempotency(store)(next)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
		req.Header.Set(IdempotencyHeader, "k1")
		// an event-stream Accept header does not bypass replay
		req.Header.Set("Accept", "text/event-stream")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusCreated || w.Body.String() != `{"data":{"id":"1"}}` {
			t.Errorf("attempt %d: %d %s", i, w.Code, w.Body.String())
		}
	}
	if calls.Load() != 1 {
		t.Errorf("handler called %d times, want 1", calls.Load())
	}
}

func TestRequestTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	w := httptest.NewRecorder()
	RequestTimeout(20*time.Millisecond)(slow).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}

	stream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Deadline(); ok {
			t.Error("event stream should not get a deadline")
		}
		w.WriteHeader(http.StatusOK)
	})
	w = httptest.NewRecorder()
	StreamRoutes("/stream")(RequestTimeout(20*time.Millisecond)(stream)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream", nil))
	if w.Code != http.StatusOK {
		t.Errorf("stream status = %d", w.Code)
	}

	// the Accept header alone does not lift the timeout
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Accept", "text/event-stream")
	w = httptest.NewRecorder()
	StreamRoutes("/stream")(RequestTimeout(20*time.Millisecond)(slow)).ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status with stream Accept header = %d, want 503", w.Code)
	}
}

func TestRecoveryAndLogging(t *testing.T) {
	boom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	h := Recovery(logger.Discard())(RequestLogging(logger.Discard())(boom))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("expected request id header")
	}
}

func TestResponseWriterFlushes(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}
	var _ http.Flusher = rw
	rw.Flush()
	if !rec.Flushed {
		t.Error("expected Flush to reach the underlying writer")
	}
}

func TestMaxRequestSize(t *testing.T) {
	h := MaxRequestSize(4, 100)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("too long"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("too long"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("multipart status = %d, want 200", w.Code)
	}
}
