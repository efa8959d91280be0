package truncate

// Marker is appended whenever text is cut so the model never mistakes a
// truncated context for a complete one.
const Marker = "\n...[truncated]"

// CharPolicy bounds free text by a character budget.
type CharPolicy struct {
	MaxChars int
}

// Apply drops the tail beyond the budget and appends the marker.
// Returns the (possibly shortened) text and whether it was cut.
func (p CharPolicy) Apply(text string) (string, bool) {
	if p.MaxChars <= 0 || len(text) <= p.MaxChars {
		return text, false
	}
	return text[:p.MaxChars] + Marker, true
}

// RowPolicy bounds tabular data by row count and serialized size. When the
// byte budget is still exceeded after the row cap, rows are reduced further
// using the average serialized row size, but never below MinRows.
type RowPolicy struct {
	MaxRows  int
	MaxBytes int
	MinRows  int
}

// Rows trims rows to the policy. serializedLen must report the byte size of
// serializing the first n rows; it is called at most twice.
func (p RowPolicy) Rows(rowCount int, serializedLen func(n int) int) int {
	keep := rowCount
	if p.MaxRows > 0 && keep > p.MaxRows {
		keep = p.MaxRows
	}
	if p.MaxBytes <= 0 || keep == 0 {
		return keep
	}

	size := serializedLen(keep)
	if size <= p.MaxBytes {
		return keep
	}

	// Estimate how many rows fit from the average per-row size.
	avg := size / keep
	if avg == 0 {
		avg = 1
	}
	fit := p.MaxBytes / avg
	if fit < p.MinRows {
		fit = p.MinRows
	}
	if fit > keep {
		fit = keep
	}
	return fit
}
