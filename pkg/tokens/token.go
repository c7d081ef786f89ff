// Package tokens defines the token and collection records compared by
// nftrecon, and groups flat token lists into collections.
package tokens

import "fmt"

// Token is one NFT record as reported by a data source. ExternalID is the
// identifier shared across sources (the on-chain token number), so it is
// the join key when two token lists are compared.
type Token struct {
	ExternalID   string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	ArtistName   string `json:"artistName" yaml:"artistName"`
	EditionCount int    `json:"editionCount" yaml:"editionCount"`
}

// String returns a short human-readable form of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s %q by %q (%d editions)", t.ExternalID, t.Name, t.ArtistName, t.EditionCount)
}

// IDs returns the external IDs of list in order.
func IDs(list []Token) []string {
	ids := make([]string, len(list))
	for i, t := range list {
		ids[i] = t.ExternalID
	}
	return ids
}
