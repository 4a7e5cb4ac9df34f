package randomuser

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ch4rC0M1n0U/osintgenerator/internal/domain"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/reliability/retry"
)

const sampleBody = `{
	"results": [{
		"gender": "female",
		"name": {"title": "Ms", "first": "Emma", "last": "Claes"},
		"email": "emma.claes@example.com",
		"phone": "03-765-4321",
		"nat": "BE",
		"dob": {"date": "1993-04-12T08:15:00.000Z", "age": 31},
		"picture": {"large": "https://randomuser.me/api/portraits/women/5.jpg"},
		"location": {
			"street": {"number": 4521, "name": "Kerkstraat"},
			"city": "Antwerp",
			"state": "Flanders",
			"country": "Belgium",
			"postcode": 2000
		}
	}]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, 2*time.Second, slog.New(slog.NewTextHandler(testWriter{}, nil)))
	client.retryCfg = &retry.Config{MaxAttempts: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, BackoffMultiplier: 1}
	return client, server
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestFetchOneParsesPayload(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleBody))
	})

	raw, err := client.FetchOne(context.Background(), "BE", domain.GenderFemale)
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "nat=BE")
	assert.Contains(t, gotQuery, "gender=female")
	assert.Equal(t, "Emma", raw.FirstName)
	assert.Equal(t, "Claes", raw.LastName)
	assert.Equal(t, "female", raw.Gender)
	assert.Equal(t, 31, raw.Age)
	assert.Equal(t, 1993, raw.DateOfBirth.Year())
	assert.Equal(t, 4521, raw.StreetNumber)
	assert.Equal(t, "Kerkstraat", raw.StreetName)
	assert.Equal(t, "2000", raw.Postcode, "numeric postcode is stringified")
}

func TestFetchOneEmptyResults(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	})

	_, err := client.FetchOne(context.Background(), "", "")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestFetchOneServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchOne(context.Background(), "", "")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestFetchOneCircuitOpensAfterRepeatedFailures(t *testing.T) {
	var hits int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for i := 0; i < 10; i++ {
		_, err := client.FetchOne(context.Background(), "", "")
		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	}

	assert.Less(t, hits, 10, "circuit breaker should short-circuit after the failure threshold")
}

func TestStringifyPostcode(t *testing.T) {
	assert.Equal(t, "B-1000", stringifyPostcode("B-1000"))
	assert.Equal(t, "75001", stringifyPostcode(float64(75001)))
	assert.Equal(t, "", stringifyPostcode(nil))
}
