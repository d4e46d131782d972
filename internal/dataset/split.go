package dataset

import (
	"math"
	"math/rand"
	"sort"
	"time"
)

// Validator checks an uploaded table against a declared category set
// and performs a single stratified train/dev split.
type Validator struct {
	devRatio float64
	minRows  int
	rng      *rand.Rand
}

// NewValidator builds a validator. minRows <= 0 derives the minimum
// from the ratio: the smallest table whose dev partition is non-empty.
func NewValidator(devRatio float64, minRows int) *Validator {
	if devRatio <= 0 || devRatio >= 1 {
		devRatio = 0.2
	}
	if minRows <= 0 {
		minRows = int(math.Ceil(1 / devRatio))
	}
	return &Validator{
		devRatio: devRatio,
		minRows:  minRows,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ValidateAndSplit validates rows against the declared categories and
// returns a stratified train/dev partition. Every input row lands in
// exactly one of the two outputs, and each declared category appears
// in both.
func (v *Validator) ValidateAndSplit(declared []string, table *Table) (train, dev [][]string, err error) {
	rows := table.Rows

	if len(rows) < v.minRows {
		return nil, nil, ErrTooFewRows
	}

	counts := make(map[string]int)
	byCategory := make(map[string][]int)
	for i, row := range rows {
		category := row[1]
		counts[category]++
		byCategory[category] = append(byCategory[category], i)
	}

	declaredSet := make(map[string]bool, len(declared))
	for _, name := range declared {
		declaredSet[name] = true
	}

	var missing, extra []string
	for _, name := range declared {
		if counts[name] == 0 {
			missing = append(missing, name)
		}
	}
	for name := range counts {
		if !declaredSet[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	if len(missing) > 0 || len(extra) > 0 {
		return nil, nil, &CategoryMismatchError{Missing: missing, Extra: extra}
	}

	var sparse []string
	for _, name := range declared {
		if counts[name] < 2 {
			sparse = append(sparse, name)
		}
	}
	if len(sparse) > 0 {
		return nil, nil, &PerCategoryError{Categories: sparse}
	}

	// Stratified split: shuffle within each category, then take the
	// train share per category. The share is clamped so every category
	// lands in both partitions.
	for _, name := range declared {
		indices := byCategory[name]
		v.rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		n := len(indices)
		trainN := int(math.Round(float64(n) * (1 - v.devRatio)))
		if trainN < 1 {
			trainN = 1
		}
		if trainN > n-1 {
			trainN = n - 1
		}

		for _, idx := range indices[:trainN] {
			train = append(train, rows[idx])
		}
		for _, idx := range indices[trainN:] {
			dev = append(dev, rows[idx])
		}
	}

	return train, dev, nil
}
