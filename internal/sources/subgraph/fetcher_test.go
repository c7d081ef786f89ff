package subgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/nftrecon/internal/transport"
	"github.com/agentstation/nftrecon/pkg/errors"
	"github.com/agentstation/nftrecon/pkg/logging"
)

// fakeSubgraph serves a fixed token list honoring first/skip.
type fakeSubgraph struct {
	mu       sync.Mutex
	total    int
	failAt   int // skip offset that returns 500, -1 for never
	requests []transport.GraphQLRequest
	times    []time.Time
}

func (f *fakeSubgraph) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req transport.GraphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.times = append(f.times, time.Now())
	f.mu.Unlock()

	first := int(req.Variables["first"].(float64))
	skip := int(req.Variables["skip"].(float64))
	if skip == f.failAt {
		http.Error(w, "indexer down", http.StatusInternalServerError)
		return
	}

	items := []map[string]any{}
	for i := skip; i < skip+first && i < f.total; i++ {
		// Alternate BigInt-as-string and plain number encodings.
		var editions any = i%3 + 1
		if i%2 == 0 {
			editions = fmt.Sprintf("%d", i%3+1)
		}
		items = append(items, map[string]any{
			"id":           fmt.Sprintf("%d", i),
			"name":         fmt.Sprintf("Piece %d", i/2),
			"artistName":   "Artist",
			"editionCount": editions,
		})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"tokens": items}})
}

func newFake(total int) (*fakeSubgraph, *httptest.Server) {
	fake := &fakeSubgraph{total: total, failAt: -1}
	return fake, httptest.NewServer(fake)
}

func TestFetchTokens_Paginates(t *testing.T) {
	fake, server := newFake(25)
	defer server.Close()

	f, err := New("left", Config{URL: server.URL, PageSize: 10})
	require.NoError(t, err)

	got, err := f.FetchTokens(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 25)
	assert.Equal(t, "0", got[0].ExternalID)
	assert.Equal(t, "24", got[24].ExternalID)
	assert.Equal(t, 1, got[0].EditionCount)
	assert.Equal(t, 2, got[1].EditionCount)
	assert.Equal(t, "Piece 12", got[24].Name)

	require.Len(t, fake.requests, 3)
	assert.EqualValues(t, 0, fake.requests[0].Variables["skip"])
	assert.EqualValues(t, 10, fake.requests[1].Variables["skip"])
	assert.EqualValues(t, 20, fake.requests[2].Variables["skip"])
}

func TestFetchTokens_ExactMultipleNeedsEmptyPage(t *testing.T) {
	fake, server := newFake(20)
	defer server.Close()

	f, err := New("left", Config{URL: server.URL, PageSize: 10})
	require.NoError(t, err)

	got, err := f.FetchTokens(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 20)
	assert.Len(t, fake.requests, 3)
}

func TestFetchTokens_StopsAtCap(t *testing.T) {
	fake, server := newFake(100)
	defer server.Close()

	f, err := New("right", Config{URL: server.URL, PageSize: 10, MaxRecords: 25})
	require.NoError(t, err)

	got, err := f.FetchTokens(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 25)
	require.Len(t, fake.requests, 3)
	assert.EqualValues(t, 5, fake.requests[2].Variables["first"])
}

func TestFetchTokens_Empty(t *testing.T) {
	_, server := newFake(0)
	defer server.Close()

	f, err := New("left", Config{URL: server.URL})
	require.NoError(t, err)

	got, err := f.FetchTokens(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchTokens_FailureAbortsWholeFetch(t *testing.T) {
	fake, server := newFake(50)
	fake.failAt = 20
	defer server.Close()

	f, err := New("left", Config{URL: server.URL, PageSize: 10})
	require.NoError(t, err)

	got, err := f.FetchTokens(context.Background())
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.IsFetchFailed(err))

	var fetchErr *errors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "left", fetchErr.Source)
	assert.Equal(t, 20, fetchErr.Offset)
}

func TestFetchTokens_SpacesPages(t *testing.T) {
	fake, server := newFake(25)
	defer server.Close()

	delay := 30 * time.Millisecond
	f, err := New("left", Config{URL: server.URL, PageSize: 10, Delay: delay})
	require.NoError(t, err)

	_, err = f.FetchTokens(context.Background())
	require.NoError(t, err)

	require.Len(t, fake.times, 3)
	for i := 1; i < len(fake.times); i++ {
		gap := fake.times[i].Sub(fake.times[i-1])
		assert.GreaterOrEqual(t, gap, delay-5*time.Millisecond, "gap %d", i)
	}
}

func TestFetchTokens_Canceled(t *testing.T) {
	_, server := newFake(25)
	defer server.Close()

	f, err := New("left", Config{URL: server.URL, PageSize: 10})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = f.FetchTokens(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildQuery(t *testing.T) {
	fields := DefaultFields()
	fields.ArtistName = "creatorName"
	query := buildQuery("editions", fields, "createdAt", "desc")

	assert.Contains(t, query, "editions(first: $first, skip: $skip, orderBy: createdAt, orderDirection: desc)")
	assert.Contains(t, query, "artistName: creatorName")
	assert.True(t, strings.HasPrefix(query, "query Tokens($first: Int!, $skip: Int!)"))
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		missing bool
	}{
		{name: "missing url", config: Config{}, missing: true},
		{name: "page size too large", config: Config{URL: "http://x", PageSize: 5000}},
		{name: "bad direction", config: Config{URL: "http://x", SortDirection: "up"}},
		{name: "bad sort field", config: Config{URL: "http://x", SortField: "id; drop"}},
		{name: "bad field alias", config: Config{URL: "http://x", Fields: Fields{ID: "id", Name: "name", ArtistName: "a b", EditionCount: "c"}}},
		{name: "negative delay", config: Config{URL: "http://x", Delay: -time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("left", tt.config)
			require.Error(t, err)
			var cfgErr *errors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.missing, errors.IsConfigMissing(err))
		})
	}
}

func TestFlexInt(t *testing.T) {
	var r record
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","editionCount":"12"}`), &r))
	assert.Equal(t, 12, int(r.EditionCount))

	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","editionCount":7}`), &r))
	assert.Equal(t, 7, int(r.EditionCount))

	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","editionCount":null}`), &r))
	assert.Equal(t, 0, int(r.EditionCount))

	assert.Error(t, json.Unmarshal([]byte(`{"editionCount":"many"}`), &r))
}

func TestFetchTokens_APIKeyHeader(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{"data":{"tokens":[]}}`))
	}))
	defer server.Close()

	f, err := New("right", Config{URL: server.URL, APIKey: "k-123", APIKeyHeader: "x-api-key"})
	require.NoError(t, err)

	_, err = f.FetchTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "k-123", got.Get("X-Api-Key"))
	assert.Empty(t, got.Get("Authorization"))
}

func TestFetchTokens_SideComesFromContext(t *testing.T) {
	_, server := newFake(3)
	defer server.Close()

	f, err := New("left", Config{URL: server.URL, PageSize: 2})
	require.NoError(t, err)

	testLogger := logging.NewTestLogger(t)
	ctx := logging.WithSide(logging.WithLogger(context.Background(), testLogger.Logger), "left")
	_, err = f.FetchTokens(ctx)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(testLogger.Output()), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, `"side":"left"`), line)
	}
}
