package differ_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/nftrecon/pkg/differ"
	"github.com/agentstation/nftrecon/pkg/tokens"
)

func tok(id, name, artist string, editions int) tokens.Token {
	return tokens.Token{ExternalID: id, Name: name, ArtistName: artist, EditionCount: editions}
}

func coll(id, name, artist string, editions int) tokens.Collection {
	return tokens.Collection{CollectionID: id, Name: name, ArtistName: artist, EditionCount: editions}
}

func TestTokens_IdenticalListsProduceNoRecords(t *testing.T) {
	list := []tokens.Token{tok("1", "Cat", "Bob", 2), tok("2", "Dog", "Ann", 1)}

	records := differ.New().Tokens(list, list)

	require.NotNil(t, records)
	assert.Empty(t, records)
}

func TestTokens_MissingOnOneSide(t *testing.T) {
	left := []tokens.Token{tok("1", "Cat", "Bob", 2), tok("9", "Owl", "Eve", 1)}
	right := []tokens.Token{tok("1", "Cat", "Bob", 2), tok("2", "Dog", "Ann", 1)}

	records := differ.New().Tokens(left, right)

	require.Len(t, records, 2)

	leftOnly := records[0]
	assert.Equal(t, "9", leftOnly.ID)
	assert.Equal(t, []differ.Kind{"missing_in_right"}, leftOnly.Kinds)
	require.NotNil(t, leftOnly.Left)
	assert.Equal(t, "Owl", leftOnly.Left.Name)
	assert.Nil(t, leftOnly.Right)

	rightOnly := records[1]
	assert.Equal(t, "2", rightOnly.ID)
	assert.Equal(t, []differ.Kind{"missing_in_left"}, rightOnly.Kinds)
	assert.Nil(t, rightOnly.Left)
	require.NotNil(t, rightOnly.Right)
	assert.Equal(t, "Dog", rightOnly.Right.Name)
}

func TestTokens_FieldSensitivity(t *testing.T) {
	tests := []struct {
		name  string
		left  tokens.Token
		right tokens.Token
		want  []differ.Kind
	}{
		{
			name:  "editions only",
			left:  tok("1", "Cat", "Bob", 3),
			right: tok("1", "Cat", "Bob", 4),
			want:  []differ.Kind{differ.KindEditions},
		},
		{
			name:  "trailing whitespace in name",
			left:  tok("1", "Cat", "Bob", 3),
			right: tok("1", "Cat ", "Bob", 3),
			want:  []differ.Kind{differ.KindName},
		},
		{
			name:  "artist casing",
			left:  tok("1", "Cat", "Bob", 3),
			right: tok("1", "Cat", "bob", 3),
			want:  []differ.Kind{differ.KindArtistName},
		},
		{
			name:  "all fields in fixed order",
			left:  tok("1", "Cat", "Bob", 3),
			right: tok("1", "Dog", "Ann", 1),
			want:  []differ.Kind{differ.KindName, differ.KindArtistName, differ.KindEditions},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := differ.New().Tokens([]tokens.Token{tt.left}, []tokens.Token{tt.right})
			require.Len(t, records, 1)
			assert.Equal(t, tt.want, records[0].Kinds)
			assert.Equal(t, tt.left, *records[0].Left)
			assert.Equal(t, tt.right, *records[0].Right)
		})
	}
}

func TestTokens_EndToEndExample(t *testing.T) {
	left := []tokens.Token{tok("1", "Cat", "Bob", 2)}
	right := []tokens.Token{tok("1", "Cat", "Bob", 2), tok("2", "Dog", "Ann", 1)}

	got := differ.New().Tokens(left, right)

	dog := tok("2", "Dog", "Ann", 1)
	want := []differ.Record[tokens.Token]{
		{ID: "2", Kinds: []differ.Kind{"missing_in_left"}, Right: &dog},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokens() mismatch (-want +got):\n%s", diff)
	}
}

func TestTokens_DeterministicOrder(t *testing.T) {
	left := []tokens.Token{tok("3", "A", "X", 1), tok("1", "B", "X", 1), tok("2", "C", "X", 1)}
	right := []tokens.Token{tok("5", "A", "X", 1), tok("1", "B", "Y", 1), tok("4", "A", "X", 1)}

	d := differ.New()
	first := d.Tokens(left, right)
	second := d.Tokens(left, right)

	assert.Equal(t, first, second)
	ids := make([]string, len(first))
	for i, r := range first {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"3", "1", "2", "5", "4"}, ids)
}

func TestWithSides(t *testing.T) {
	d := differ.New(differ.WithSides("subgraph", "contract"))

	left, right := d.Sides()
	assert.Equal(t, "subgraph", left)
	assert.Equal(t, "contract", right)

	records := d.Tokens([]tokens.Token{tok("1", "Cat", "Bob", 1)}, nil)
	require.Len(t, records, 1)
	assert.True(t, records[0].Has(differ.MissingIn("contract")))
	assert.Equal(t, differ.Kind("missing_in_contract"), records[0].Kinds[0])
}

func TestWithIgnoredFields(t *testing.T) {
	d := differ.New(differ.WithIgnoredFields(differ.KindEditions))

	records := d.Tokens(
		[]tokens.Token{tok("1", "Cat", "Bob", 3), tok("2", "Dog", "Ann", 1)},
		[]tokens.Token{tok("1", "Cat", "Bob", 4), tok("2", "Dog", "Ann ", 2)},
	)

	require.Len(t, records, 1)
	assert.Equal(t, "2", records[0].ID)
	assert.Equal(t, []differ.Kind{differ.KindArtistName}, records[0].Kinds)
}

func TestCollectionsByKey(t *testing.T) {
	t.Run("editions mismatch", func(t *testing.T) {
		left := map[string]tokens.Collection{"1": coll("1", "A", "X", 5)}
		right := map[string]tokens.Collection{"1": coll("1", "A", "X", 6)}

		records := differ.New().CollectionsByKey(left, right)

		require.Len(t, records, 1)
		assert.Equal(t, "1", records[0].ID)
		assert.Equal(t, []differ.Kind{differ.KindEditions}, records[0].Kinds)
		assert.Equal(t, 5, records[0].Left.EditionCount)
		assert.Equal(t, 6, records[0].Right.EditionCount)
	})

	t.Run("union of keys in numeric order", func(t *testing.T) {
		left := map[string]tokens.Collection{
			"2":  coll("2", "B", "X", 1),
			"10": coll("10", "J", "X", 1),
			"1":  coll("1", "A", "X", 1),
		}
		right := map[string]tokens.Collection{
			"1":   coll("1", "A", "X", 1),
			"3":   coll("3", "C", "X", 1),
			"abc": coll("abc", "Z", "X", 1),
		}

		records := differ.New(differ.WithSides("subgraph", "contract")).CollectionsByKey(left, right)

		require.Len(t, records, 4)
		assert.Equal(t, "2", records[0].ID)
		assert.Equal(t, []differ.Kind{"missing_in_contract"}, records[0].Kinds)
		assert.Nil(t, records[0].Right)
		assert.Equal(t, "3", records[1].ID)
		assert.Equal(t, []differ.Kind{"missing_in_subgraph"}, records[1].Kinds)
		assert.Nil(t, records[1].Left)
		assert.Equal(t, "10", records[2].ID)
		assert.Equal(t, "abc", records[3].ID)
	})

	t.Run("empty maps", func(t *testing.T) {
		records := differ.New().CollectionsByKey(nil, nil)
		require.NotNil(t, records)
		assert.Empty(t, records)
	})
}

func TestCollectionsByPosition(t *testing.T) {
	t.Run("equal lists", func(t *testing.T) {
		list := []tokens.Collection{coll("1", "A", "X", 2), coll("2", "B", "Y", 1)}
		assert.Empty(t, differ.New().CollectionsByPosition(list, list))
	})

	t.Run("unequal lengths", func(t *testing.T) {
		left := []tokens.Collection{coll("1", "A", "X", 2)}
		right := []tokens.Collection{coll("1", "A", "X", 2), coll("2", "B", "Y", 1), coll("3", "C", "Z", 1)}

		records := differ.New().CollectionsByPosition(left, right)
		require.Len(t, records, 2)
		assert.Equal(t, "2", records[0].ID)
		assert.Equal(t, []differ.Kind{"missing_in_left"}, records[0].Kinds)
		assert.Equal(t, "3", records[1].ID)

		records = differ.New().CollectionsByPosition(right, left)
		require.Len(t, records, 2)
		assert.Equal(t, []differ.Kind{"missing_in_right"}, records[0].Kinds)
		assert.NotNil(t, records[0].Left)
		assert.Nil(t, records[0].Right)
	})

	// One extra collection at the front of the right list shifts every
	// later pair, so matching collections are reported as mismatched.
	t.Run("insertion desynchronizes later pairs", func(t *testing.T) {
		left := []tokens.Collection{
			coll("1", "A", "X", 2),
			coll("2", "B", "Y", 1),
			coll("3", "C", "Z", 4),
		}
		right := []tokens.Collection{
			coll("1", "New", "W", 1),
			coll("2", "A", "X", 2),
			coll("3", "B", "Y", 1),
			coll("4", "C", "Z", 4),
		}

		positional := differ.New().CollectionsByPosition(left, right)
		require.Len(t, positional, 4)
		for i := 0; i < 3; i++ {
			assert.True(t, positional[i].Has(differ.KindName), "pair %d should be misaligned", i)
		}
		assert.Equal(t, []differ.Kind{"missing_in_left"}, positional[3].Kinds)
		assert.Equal(t, "C", positional[3].Right.Name)

		// The same data keyed by name and artist shows only the insertion.
		byName := func(list []tokens.Collection) map[string]tokens.Collection {
			out := map[string]tokens.Collection{}
			for _, c := range list {
				out[c.Name+"/"+c.ArtistName] = c
			}
			return out
		}
		keyed := differ.New().CollectionsByKey(byName(left), byName(right))
		require.Len(t, keyed, 1)
		assert.Equal(t, "New/W", keyed[0].ID)
	})
}

func TestSummarize(t *testing.T) {
	records := differ.New().Tokens(
		[]tokens.Token{tok("1", "Cat", "Bob", 3), tok("2", "Dog", "Ann", 1)},
		[]tokens.Token{tok("1", "Cat", "Bob", 4), tok("3", "Owl", "Eve", 1)},
	)

	summary := differ.Summarize(records)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.ByKind[differ.KindEditions])
	assert.Equal(t, 1, summary.ByKind["missing_in_right"])
	assert.Equal(t, 1, summary.ByKind["missing_in_left"])
	assert.Equal(t, []differ.Kind{"editions", "missing_in_left", "missing_in_right"}, summary.Kinds())
}

func TestReportJSON(t *testing.T) {
	records := differ.New().Tokens([]tokens.Token{tok("1", "Cat", "Bob", 1)}, nil)
	report := differ.NewReport("tokens", "keyed", "left", "right", records)

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "tokens", decoded["entity"])

	diffs, ok := decoded["differences"].([]any)
	require.True(t, ok)
	require.Len(t, diffs, 1)
	first := diffs[0].(map[string]any)
	assert.Equal(t, []any{"missing_in_right"}, first["differenceKinds"])
	assert.Nil(t, first["right"])
	assert.NotNil(t, first["left"])

	empty := differ.NewReport[tokens.Token]("tokens", "keyed", "left", "right", nil)
	assert.NotNil(t, empty.Records)
	assert.Equal(t, 0, empty.Summary.Total)
}
