package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// stubClient points a FinnhubClient at a local test server.
func stubClient(srv *httptest.Server) *FinnhubClient {
	return &FinnhubClient{
		baseURL:    srv.URL,
		apiKey:     "test_key",
		httpClient: &http.Client{Timeout: 5 * time.Second},
		limiter:    rate.NewLimiter(rate.Inf, 1),
		log:        zap.NewNop(),
	}
}

func TestGetQuote_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "NVDA", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test_key", r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"c":123.45,"h":125,"l":120,"o":121,"pc":119.8}`))
	}))
	defer srv.Close()

	price, err := stubClient(srv).GetQuote(context.Background(), "nvda")
	assert.NoError(t, err)
	assert.Equal(t, 123.45, price)
}

func TestGetQuote_ZeroPriceForwarded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Unknown tickers come back as all-zero quotes, not errors.
		w.Write([]byte(`{"c":0,"h":0,"l":0,"o":0,"pc":0}`))
	}))
	defer srv.Close()

	price, err := stubClient(srv).GetQuote(context.Background(), "BOGUS")
	assert.NoError(t, err)
	assert.Equal(t, 0.0, price)
}

func TestGetQuote_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := stubClient(srv).GetQuote(context.Background(), "NVDA")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestGetQuote_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := stubClient(srv).GetQuote(context.Background(), "NVDA")
	assert.Error(t, err)
}

func TestGetQuote_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"c":1}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := stubClient(srv).GetQuote(ctx, "NVDA")
	assert.Error(t, err)
}
