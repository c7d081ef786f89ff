package tokens

import "strconv"

// keySeparator joins name and artist into one map key. NUL never appears
// in subgraph strings, so ("a\x00b", "c") cannot collide with ("a", "b\x00c")
// in practice.
const keySeparator = "\x00"

// Group folds tokens into collections keyed by exact (Name, ArtistName).
// No normalization is applied: names differing only by case or whitespace
// form separate collections.
//
// Collections are returned in order of first appearance and numbered "1",
// "2", ... in that order. Every input token lands in exactly one
// collection, and EditionCount always equals len(MemberTokenIDs).
func Group(list []Token) []Collection {
	collections := make([]Collection, 0)
	index := make(map[string]int)

	for _, t := range list {
		key := t.Name + keySeparator + t.ArtistName
		if i, seen := index[key]; seen {
			collections[i].MemberTokenIDs = append(collections[i].MemberTokenIDs, t.ExternalID)
			collections[i].EditionCount++
			continue
		}
		index[key] = len(collections)
		collections = append(collections, Collection{
			Name:           t.Name,
			ArtistName:     t.ArtistName,
			EditionCount:   1,
			MemberTokenIDs: []string{t.ExternalID},
		})
	}

	for i := range collections {
		collections[i].CollectionID = strconv.Itoa(i + 1)
	}

	return collections
}
