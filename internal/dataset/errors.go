package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBadSchema means the uploaded table is not the expected
	// two-column example/category CSV.
	ErrBadSchema = errors.New("file must have exactly two columns named 'example' and 'category'")

	// ErrBadTestSchema means the uploaded table is not the expected
	// single-column example CSV.
	ErrBadTestSchema = errors.New("file must have exactly one column named 'example'")

	// ErrTooFewRows means the table is too small to produce a
	// non-empty dev partition.
	ErrTooFewRows = errors.New("not enough labelled examples")

	// ErrCategoryMismatch means the categories observed in the data
	// differ from the classifier's declared set.
	ErrCategoryMismatch = errors.New("categories in file do not match the classifier's categories")
)

// CategoryMismatchError reports which declared categories are missing
// from the data and which extra ones appeared.
type CategoryMismatchError struct {
	Missing []string
	Extra   []string
}

func (e *CategoryMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing categories: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("unexpected categories: %s", strings.Join(e.Extra, ", ")))
	}
	return fmt.Sprintf("%s (%s)", ErrCategoryMismatch, strings.Join(parts, "; "))
}

func (e *CategoryMismatchError) Unwrap() error {
	return ErrCategoryMismatch
}

// PerCategoryError reports categories with fewer than two examples.
// It is a sub-kind of category mismatch: errors.Is(err,
// ErrCategoryMismatch) holds for it too.
type PerCategoryError struct {
	Categories []string
}

func (e *PerCategoryError) Error() string {
	return fmt.Sprintf("need at least two examples per category, but got fewer for: %s",
		strings.Join(e.Categories, ", "))
}

func (e *PerCategoryError) Unwrap() error {
	return ErrCategoryMismatch
}
