package randomuser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Ch4rC0M1n0U/osintgenerator/internal/domain"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/observability/metrics"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/reliability/circuitbreaker"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/reliability/retry"
)

// DefaultBaseURL is the public randomuser API endpoint.
const DefaultBaseURL = "https://randomuser.me/api/"

// Client fetches raw identities from a randomuser-compatible API. Transient
// failures are retried with backoff; repeated failures trip the circuit
// breaker so callers fail fast instead of piling onto a dead upstream.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retryCfg   *retry.Config
	breaker    *circuitbreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates an upstream client. An empty baseURL falls back to
// DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	breaker := circuitbreaker.NewCircuitBreaker(5, 2, 30*time.Second)
	breaker.SetStateChangeCallback(func(from, to circuitbreaker.State) {
		logger.Warn("upstream circuit state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:  baseURL,
		retryCfg: retry.DefaultConfig(),
		breaker:  breaker,
		logger:   logger,
	}
}

// apiResponse mirrors the randomuser wire format. Postcode arrives as either
// a string or a number depending on nationality, hence json.RawMessage-free
// any decoding below.
type apiResponse struct {
	Results []apiResult `json:"results"`
	Error   string      `json:"error"`
}

type apiResult struct {
	Gender string `json:"gender"`
	Name   struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Nat   string `json:"nat"`
	Dob   struct {
		Date string `json:"date"`
		Age  int    `json:"age"`
	} `json:"dob"`
	Picture struct {
		Large string `json:"large"`
	} `json:"picture"`
	Location struct {
		Street struct {
			Number int    `json:"number"`
			Name   string `json:"name"`
		} `json:"street"`
		City     string `json:"city"`
		State    string `json:"state"`
		Country  string `json:"country"`
		Postcode any    `json:"postcode"`
	} `json:"location"`
}

// FetchOne requests a single identity. Nationality and gender are forwarded
// as query parameters when set. Failures come back wrapped in
// domain.ErrUpstreamUnavailable.
func (c *Client) FetchOne(ctx context.Context, nationality string, gender domain.Gender) (*domain.RawIdentity, error) {
	if !c.breaker.AllowRequest() {
		metrics.ObserveUpstreamRequest("circuit_open")
		return nil, fmt.Errorf("%w: circuit open", domain.ErrUpstreamUnavailable)
	}

	raw, err := retry.Do(ctx, c.retryCfg, c.logger, "randomuser.fetch", func(ctx context.Context) (*domain.RawIdentity, error) {
		return c.fetchOnce(ctx, nationality, gender)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		c.breaker.RecordFailure()
		metrics.ObserveUpstreamRequest("error")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	c.breaker.RecordSuccess()
	metrics.ObserveUpstreamRequest("success")
	return raw, nil
}

func (c *Client) fetchOnce(ctx context.Context, nationality string, gender domain.Gender) (*domain.RawIdentity, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	query := endpoint.Query()
	if nationality != "" {
		query.Set("nat", nationality)
	}
	if gender != "" {
		query.Set("gender", string(gender))
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("upstream error: %s", payload.Error)
	}
	if len(payload.Results) == 0 {
		return nil, errors.New("empty result set")
	}

	return mapResult(payload.Results[0]), nil
}

// mapResult converts one wire record to a RawIdentity. A date of birth that
// fails to parse leaves DateOfBirth zero; the caller falls back to the
// reported age.
func mapResult(r apiResult) *domain.RawIdentity {
	identity := &domain.RawIdentity{
		FirstName:    r.Name.First,
		LastName:     r.Name.Last,
		Email:        r.Email,
		Phone:        r.Phone,
		Gender:       r.Gender,
		Nationality:  r.Nat,
		Age:          r.Dob.Age,
		PhotoURL:     r.Picture.Large,
		StreetNumber: r.Location.Street.Number,
		StreetName:   r.Location.Street.Name,
		City:         r.Location.City,
		State:        r.Location.State,
		Country:      r.Location.Country,
		Postcode:     stringifyPostcode(r.Location.Postcode),
	}
	if dob, err := time.Parse(time.RFC3339, r.Dob.Date); err == nil {
		identity.DateOfBirth = dob
	}
	return identity
}

// stringifyPostcode flattens the union-typed postcode field.
func stringifyPostcode(v any) string {
	switch p := v.(type) {
	case nil:
		return ""
	case string:
		return p
	case float64:
		return strconv.FormatInt(int64(p), 10)
	default:
		return fmt.Sprint(p)
	}
}
