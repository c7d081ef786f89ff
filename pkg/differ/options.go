package differ

// Option is a functional option for configuring a Differ.
type Option func(*differ)

// WithSides names the two datasets. The names appear in missing_in_<side>
// kinds, so WithSides("subgraph", "contract") reports entries absent from
// the contract as missing_in_contract.
func WithSides(left, right string) Option {
	return func(d *differ) {
		if left != "" {
			d.left = left
		}
		if right != "" {
			d.right = right
		}
	}
}

// WithIgnoredFields skips the given field kinds during comparison.
func WithIgnoredFields(kinds ...Kind) Option {
	return func(d *differ) {
		for _, k := range kinds {
			d.ignoreFields[k] = true
		}
	}
}
