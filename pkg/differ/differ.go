// Package differ compares token and collection datasets and reports
// field-level and presence discrepancies between two sides.
//
// Three comparisons are provided:
//
//   - Tokens joins two token lists on ExternalID.
//   - CollectionsByKey joins two collection maps on CollectionID. Use it
//     whenever the IDs come from a stable source such as the contract.
//   - CollectionsByPosition pairs collections by list index. It exists for
//     comparing two independently grouped subgraph lists and is fragile:
//     one extra or reordered collection on either side shifts every later
//     pair, so every following pair is reported as mismatched.
//
// Names and artists are compared as exact strings; trailing whitespace or
// casing differences are reported.
package differ

import (
	"sort"
	"strconv"

	"github.com/agentstation/nftrecon/pkg/constants"
	"github.com/agentstation/nftrecon/pkg/tokens"
)

// Differ handles discrepancy detection between two datasets.
type Differ interface {
	// Tokens compares two token lists keyed by ExternalID.
	Tokens(left, right []tokens.Token) []Record[tokens.Token]

	// CollectionsByPosition compares two collection lists index by index.
	CollectionsByPosition(left, right []tokens.Collection) []Record[tokens.Collection]

	// CollectionsByKey compares two collection maps keyed by CollectionID.
	CollectionsByKey(left, right map[string]tokens.Collection) []Record[tokens.Collection]

	// Sides returns the configured left and right side names.
	Sides() (left, right string)
}

// differ is the default implementation of Differ.
type differ struct {
	left         string
	right        string
	ignoreFields map[Kind]bool
}

// New creates a Differ. Sides default to "left" and "right".
func New(opts ...Option) Differ {
	d := &differ{
		left:         constants.SideLeft,
		right:        constants.SideRight,
		ignoreFields: make(map[Kind]bool),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Sides returns the configured side names.
func (diff *differ) Sides() (string, string) {
	return diff.left, diff.right
}

// Tokens compares two token lists. Records for tokens present on the left
// come first, in left order, followed by right-only tokens in right order.
func (diff *differ) Tokens(left, right []tokens.Token) []Record[tokens.Token] {
	records := []Record[tokens.Token]{}

	rightMap := make(map[string]tokens.Token, len(right))
	for _, t := range right {
		rightMap[t.ExternalID] = t
	}

	for _, l := range left {
		r, exists := rightMap[l.ExternalID]
		if !exists {
			records = append(records, Record[tokens.Token]{
				ID:    l.ExternalID,
				Kinds: []Kind{MissingIn(diff.right)},
				Left:  &l,
			})
			continue
		}
		if kinds := diff.fields(l.Name, r.Name, l.ArtistName, r.ArtistName, l.EditionCount, r.EditionCount); len(kinds) > 0 {
			records = append(records, Record[tokens.Token]{
				ID:    l.ExternalID,
				Kinds: kinds,
				Left:  &l,
				Right: &r,
			})
		}
	}

	leftIDs := make(map[string]bool, len(left))
	for _, t := range left {
		leftIDs[t.ExternalID] = true
	}

	for _, r := range right {
		if !leftIDs[r.ExternalID] {
			records = append(records, Record[tokens.Token]{
				ID:    r.ExternalID,
				Kinds: []Kind{MissingIn(diff.left)},
				Right: &r,
			})
		}
	}

	return records
}

// CollectionsByPosition compares left[i] with right[i] for every index up
// to the longer list. The record ID is the collection ID of whichever side
// is present, preferring the left.
func (diff *differ) CollectionsByPosition(left, right []tokens.Collection) []Record[tokens.Collection] {
	records := []Record[tokens.Collection]{}

	n := max(len(left), len(right))
	for i := 0; i < n; i++ {
		switch {
		case i >= len(left):
			r := right[i]
			records = append(records, Record[tokens.Collection]{
				ID:    r.CollectionID,
				Kinds: []Kind{MissingIn(diff.left)},
				Right: &r,
			})
		case i >= len(right):
			l := left[i]
			records = append(records, Record[tokens.Collection]{
				ID:    l.CollectionID,
				Kinds: []Kind{MissingIn(diff.right)},
				Left:  &l,
			})
		default:
			l, r := left[i], right[i]
			if record := diff.collection(l.CollectionID, l, r); record != nil {
				records = append(records, *record)
			}
		}
	}

	return records
}

// CollectionsByKey compares collections sharing a CollectionID. Keys are
// visited in ascending order, numerically when both keys are integers.
func (diff *differ) CollectionsByKey(left, right map[string]tokens.Collection) []Record[tokens.Collection] {
	records := []Record[tokens.Collection]{}

	for _, id := range unionKeys(left, right) {
		l, inLeft := left[id]
		r, inRight := right[id]

		switch {
		case !inLeft:
			records = append(records, Record[tokens.Collection]{
				ID:    id,
				Kinds: []Kind{MissingIn(diff.left)},
				Right: &r,
			})
		case !inRight:
			records = append(records, Record[tokens.Collection]{
				ID:    id,
				Kinds: []Kind{MissingIn(diff.right)},
				Left:  &l,
			})
		default:
			if record := diff.collection(id, l, r); record != nil {
				records = append(records, *record)
			}
		}
	}

	return records
}

// collection compares two collections and returns a record if they differ.
func (diff *differ) collection(id string, l, r tokens.Collection) *Record[tokens.Collection] {
	kinds := diff.fields(l.Name, r.Name, l.ArtistName, r.ArtistName, l.EditionCount, r.EditionCount)
	if len(kinds) == 0 {
		return nil
	}
	return &Record[tokens.Collection]{
		ID:    id,
		Kinds: kinds,
		Left:  &l,
		Right: &r,
	}
}

// fields returns the kinds of the compared fields that differ, in the
// fixed order name, artistName, editions.
func (diff *differ) fields(leftName, rightName, leftArtist, rightArtist string, leftEditions, rightEditions int) []Kind {
	var kinds []Kind
	if leftName != rightName && !diff.ignoreFields[KindName] {
		kinds = append(kinds, KindName)
	}
	if leftArtist != rightArtist && !diff.ignoreFields[KindArtistName] {
		kinds = append(kinds, KindArtistName)
	}
	if leftEditions != rightEditions && !diff.ignoreFields[KindEditions] {
		kinds = append(kinds, KindEditions)
	}
	return kinds
}

// unionKeys returns the keys of both maps, sorted by compareKeys.
func unionKeys(left, right map[string]tokens.Collection) []string {
	keys := make([]string, 0, len(left)+len(right))
	for k := range left {
		keys = append(keys, k)
	}
	for k := range right {
		if _, dup := left[k]; !dup {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return compareKeys(keys[i], keys[j]) })
	return keys
}

// compareKeys orders integer keys numerically before any non-integer key,
// and non-integer keys lexically.
func compareKeys(a, b string) bool {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		if ai != bi {
			return ai < bi
		}
		return a < b
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return a < b
	}
}
