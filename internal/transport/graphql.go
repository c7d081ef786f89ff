package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/agentstation/nftrecon/pkg/errors"
	"github.com/agentstation/nftrecon/pkg/logging"
)

// GraphQLRequest is the standard GraphQL-over-HTTP request body.
type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// GraphQLError is one entry of a GraphQL response's errors array.
type GraphQLError struct {
	Message string `json:"message"`
}

// GraphQLResponse is the standard GraphQL-over-HTTP response body.
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// Query posts a GraphQL request and decodes the data member into target.
// Transport failures, non-200 statuses, and GraphQL errors are all returned
// as errors; a response carrying errors is never partially decoded.
func (c *Client) Query(ctx context.Context, url string, request GraphQLRequest, target any) error {
	resp, err := c.PostJSON(ctx, url, request)
	if err != nil {
		return errors.WrapAPI(url, 0, err)
	}

	var body GraphQLResponse
	if err := DecodeResponse(resp, url, &body); err != nil {
		return err
	}

	if len(body.Errors) > 0 {
		messages := make([]string, len(body.Errors))
		for i, e := range body.Errors {
			messages[i] = e.Message
		}
		return &errors.APIError{
			Source:     url,
			StatusCode: resp.StatusCode,
			Message:    "graphql: " + strings.Join(messages, "; "),
		}
	}

	if len(body.Data) == 0 || string(body.Data) == "null" {
		return errors.NewAPIError(url, resp.StatusCode, "graphql response has no data")
	}

	if err := json.Unmarshal(body.Data, target); err != nil {
		return errors.WrapParse("json", "graphql data", err)
	}
	return nil
}

// DecodeResponse decodes a JSON response into the target structure.
func DecodeResponse(resp *http.Response, source string, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &errors.APIError{
			Source:     source,
			StatusCode: resp.StatusCode,
			Message:    truncate(string(body), 200),
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", "response", err)
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s... (%d bytes)", s[:n], len(s))
}
