package tokens

// Collection is a group of tokens sharing the same name and artist.
//
// Collections built by Group number their IDs by first appearance in the
// input, so an ID only means something relative to the list it was grouped
// from. Two independently grouped lists agree on IDs only when both inputs
// were sorted the same way beforehand. Collections read from a contract
// carry the contract's canonical ID and no member tokens.
type Collection struct {
	CollectionID   string   `json:"collectionId" yaml:"collectionId"`
	Name           string   `json:"name" yaml:"name"`
	ArtistName     string   `json:"artistName" yaml:"artistName"`
	EditionCount   int      `json:"editionCount" yaml:"editionCount"`
	MemberTokenIDs []string `json:"memberTokenIds,omitempty" yaml:"memberTokenIds,omitempty"`
}

// ByID indexes collections by CollectionID. Later entries win on duplicate IDs.
func ByID(list []Collection) map[string]Collection {
	index := make(map[string]Collection, len(list))
	for _, c := range list {
		index[c.CollectionID] = c
	}
	return index
}
