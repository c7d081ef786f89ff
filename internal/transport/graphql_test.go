package transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/nftrecon/internal/transport"
	"github.com/agentstation/nftrecon/pkg/errors"
)

func TestClient_Query(t *testing.T) {
	var received transport.GraphQLRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"data":{"tokens":[{"id":"1"}]}}`))
	}))
	defer server.Close()

	client := transport.New(transport.AuthenticatorFor("secret", ""))
	var out struct {
		Tokens []struct {
			ID string `json:"id"`
		} `json:"tokens"`
	}
	err := client.Query(context.Background(), server.URL, transport.GraphQLRequest{
		Query:     "query { tokens { id } }",
		Variables: map[string]any{"first": 10},
	}, &out)

	require.NoError(t, err)
	require.Len(t, out.Tokens, 1)
	assert.Equal(t, "1", out.Tokens[0].ID)
	assert.Equal(t, "query { tokens { id } }", received.Query)
	assert.EqualValues(t, 10, received.Variables["first"])
}

func TestClient_QueryErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "graphql errors",
			status: http.StatusOK,
			body:   `{"errors":[{"message":"bad field"},{"message":"second"}]}`,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "bad field; second")
			},
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `slow down`,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsRateLimited(err))
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			body:   `upstream`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errors.ErrSourceUnavailable)
			},
		},
		{
			name:   "no data",
			status: http.StatusOK,
			body:   `{"data":null}`,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "no data")
			},
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   `{"data":`,
			check: func(t *testing.T, err error) {
				var parseErr *errors.ParseError
				assert.ErrorAs(t, err, &parseErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			var out map[string]any
			err := transport.New(nil).Query(context.Background(), server.URL, transport.GraphQLRequest{Query: "{}"}, &out)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClient_QueryCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out map[string]any
	err := transport.New(nil).Query(ctx, server.URL, transport.GraphQLRequest{Query: "{}"}, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
