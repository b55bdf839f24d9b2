package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/possync/internal/server/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = remoteAddr

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestRateLimiter_AllowsUpToRate(t *testing.T) {
	rl := middleware.NewRateLimiter(3, time.Minute, discardLogger())
	defer rl.Stop()

	handler := rl.Middleware(okHandler())

	for i := 0; i < 3; i++ {
		rec := doRequest(handler, "192.0.2.1:1234")
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(handler, "192.0.2.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimiter_KeyedByClientIP(t *testing.T) {
	rl := middleware.NewRateLimiter(1, time.Minute, discardLogger())
	defer rl.Stop()

	handler := rl.Middleware(okHandler())

	assert.Equal(t, http.StatusOK, doRequest(handler, "192.0.2.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(handler, "192.0.2.1:9999").Code)

	// A different client IP gets its own bucket.
	assert.Equal(t, http.StatusOK, doRequest(handler, "192.0.2.2:1234").Code)
}

func TestRateLimiter_RefillsAfterWindow(t *testing.T) {
	rl := middleware.NewRateLimiter(1, 20*time.Millisecond, discardLogger())
	defer rl.Stop()

	handler := rl.Middleware(okHandler())

	assert.Equal(t, http.StatusOK, doRequest(handler, "192.0.2.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(handler, "192.0.2.1:1234").Code)

	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, http.StatusOK, doRequest(handler, "192.0.2.1:1234").Code)
}

func TestRateLimiter_MalformedRemoteAddr(t *testing.T) {
	rl := middleware.NewRateLimiter(1, time.Minute, discardLogger())
	defer rl.Stop()

	handler := rl.Middleware(okHandler())

	// No port: the raw address becomes the key and the request still passes.
	assert.Equal(t, http.StatusOK, doRequest(handler, "192.0.2.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(handler, "192.0.2.1").Code)
}
