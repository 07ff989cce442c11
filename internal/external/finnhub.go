package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const finnhubBaseURL = "https://finnhub.io/api/v1/quote"

// FinnhubClient fetches near-real-time quotes from the external price
// collaborator. Calls are single-attempt and timeout-bounded; a quote is a
// transient value, so a failed lookup is surfaced, not retried. The limiter
// keeps us inside the provider's free-tier call budget.
type FinnhubClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

func NewFinnhubClient(apiKey string, perSecond float64, burst int, log *zap.Logger) *FinnhubClient {
	if perSecond <= 0 {
		perSecond = 0.5
	}
	if burst <= 0 {
		burst = 1
	}
	return &FinnhubClient{
		baseURL:    finnhubBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(perSecond), burst),
		log:        log,
	}
}

// GetQuote returns the collaborator's current price for a ticker. A zero
// price is forwarded as-is: ticker-not-found detection is the client's
// heuristic, not part of this contract.
func (c *FinnhubClient) GetQuote(ctx context.Context, ticker string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter: %w", err)
	}

	q := url.Values{}
	q.Set("symbol", strings.ToUpper(ticker))
	q.Set("token", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("quote fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("quote provider returned status %d", resp.StatusCode)
	}

	// Finnhub quote payload: c=current, h/l/o=session range, pc=prev close.
	var data struct {
		Current   float64 `json:"c"`
		High      float64 `json:"h"`
		Low       float64 `json:"l"`
		Open      float64 `json:"o"`
		PrevClose float64 `json:"pc"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}

	c.log.Debug("quote fetched",
		zap.String("ticker", strings.ToUpper(ticker)),
		zap.Float64("price", data.Current))

	return data.Current, nil
}
