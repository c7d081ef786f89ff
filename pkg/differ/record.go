package differ

import (
	"sort"

	"github.com/agentstation/utc"
)

// Kind tags one reason two entries disagree.
type Kind string

// Field kinds. Missing kinds are built with MissingIn.
const (
	KindName       Kind = "name"
	KindArtistName Kind = "artistName"
	KindEditions   Kind = "editions"
)

// MissingIn returns the kind reported when an entry is absent from side.
func MissingIn(side string) Kind {
	return Kind("missing_in_" + side)
}

// Record describes one discrepancy. Left or Right is nil when the entry
// exists only on the other side. A Record is never produced without at
// least one kind.
type Record[T any] struct {
	ID    string `json:"id" yaml:"id"`
	Kinds []Kind `json:"differenceKinds" yaml:"differenceKinds"`
	Left  *T     `json:"left" yaml:"left"`
	Right *T     `json:"right" yaml:"right"`
}

// Has reports whether the record carries kind.
func (r Record[T]) Has(kind Kind) bool {
	for _, k := range r.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Summary counts records and kinds.
type Summary struct {
	Total  int          `json:"total" yaml:"total"`
	ByKind map[Kind]int `json:"byKind" yaml:"byKind"`
}

// Kinds returns the summarized kinds in sorted order.
func (s Summary) Kinds() []Kind {
	kinds := make([]Kind, 0, len(s.ByKind))
	for k := range s.ByKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Summarize counts the kinds across records.
func Summarize[T any](records []Record[T]) Summary {
	summary := Summary{Total: len(records), ByKind: make(map[Kind]int)}
	for _, r := range records {
		for _, k := range r.Kinds {
			summary.ByKind[k]++
		}
	}
	return summary
}

// Report is the persisted form of one comparison.
type Report[T any] struct {
	Entity      string      `json:"entity" yaml:"entity"`
	Mode        string      `json:"mode" yaml:"mode"`
	Left        string      `json:"leftSource" yaml:"leftSource"`
	Right       string      `json:"rightSource" yaml:"rightSource"`
	GeneratedAt utc.Time    `json:"generatedAt" yaml:"generatedAt"`
	Summary     Summary     `json:"summary" yaml:"summary"`
	Records     []Record[T] `json:"differences" yaml:"differences"`
}

// NewReport wraps records with their comparison metadata.
func NewReport[T any](entity, mode, left, right string, records []Record[T]) Report[T] {
	if records == nil {
		records = []Record[T]{}
	}
	return Report[T]{
		Entity:      entity,
		Mode:        mode,
		Left:        left,
		Right:       right,
		GeneratedAt: utc.Now(),
		Summary:     Summarize(records),
		Records:     records,
	}
}
