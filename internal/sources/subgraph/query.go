package subgraph

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/agentstation/nftrecon/pkg/tokens"
)

// identifier matches GraphQL names accepted for entities, fields, and enum values.
var identifier = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

// Fields maps token attributes to the subgraph's field names. The query
// aliases them back to fixed keys, so any schema decodes the same way.
type Fields struct {
	ID           string `mapstructure:"id"`
	Name         string `mapstructure:"name"`
	ArtistName   string `mapstructure:"artist_name"`
	EditionCount string `mapstructure:"edition_count"`
}

// DefaultFields returns the field names used by most NFT subgraphs.
func DefaultFields() Fields {
	return Fields{
		ID:           "id",
		Name:         "name",
		ArtistName:   "artistName",
		EditionCount: "editionCount",
	}
}

func (f Fields) validate() error {
	for _, name := range []string{f.ID, f.Name, f.ArtistName, f.EditionCount} {
		if !identifier.MatchString(name) {
			return fmt.Errorf("invalid field name %q", name)
		}
	}
	return nil
}

// buildQuery renders the paginated token query. orderBy and orderDirection
// are enum types in subgraph schemas, so they are inlined rather than
// passed as variables.
func buildQuery(entity string, fields Fields, sortField, sortDirection string) string {
	var b strings.Builder
	b.WriteString("query Tokens($first: Int!, $skip: Int!) {\n")
	fmt.Fprintf(&b, "  %s(first: $first, skip: $skip, orderBy: %s, orderDirection: %s) {\n", entity, sortField, sortDirection)
	fmt.Fprintf(&b, "    id: %s\n", fields.ID)
	fmt.Fprintf(&b, "    name: %s\n", fields.Name)
	fmt.Fprintf(&b, "    artistName: %s\n", fields.ArtistName)
	fmt.Fprintf(&b, "    editionCount: %s\n", fields.EditionCount)
	b.WriteString("  }\n}")
	return b.String()
}

// record is one token as returned by the subgraph.
type record struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	ArtistName   string  `json:"artistName"`
	EditionCount flexInt `json:"editionCount"`
}

func (r record) token() tokens.Token {
	return tokens.Token{
		ExternalID:   r.ID,
		Name:         r.Name,
		ArtistName:   r.ArtistName,
		EditionCount: int(r.EditionCount),
	}
}

// flexInt decodes integers sent either as JSON numbers or as strings, since
// subgraphs serialize BigInt fields as strings.
type flexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (n *flexInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = 0
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("edition count %q: %w", s, err)
		}
		*n = flexInt(v)
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("edition count %s: %w", data, err)
	}
	*n = flexInt(v)
	return nil
}
