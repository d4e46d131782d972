// Package dataset validates uploaded labelled tables and produces the
// stratified train/dev split that classifier training consumes. It is
// pure over in-memory rows; writing the split files is the caller's
// job.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// ContentColumn and CategoryColumn are the required header names,
// case-sensitive.
const (
	ContentColumn  = "example"
	CategoryColumn = "category"
)

// Table is a parsed upload: the header row plus data rows, each with
// exactly two fields (content, category).
type Table struct {
	Header []string
	Rows   [][]string
}

// ParseTable reads a CSV upload and checks the schema: exactly two
// columns with the expected header pair.
func ParseTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSchema, err)
	}
	if len(records) == 0 {
		return nil, ErrBadSchema
	}

	header := records[0]
	if len(header) != 2 || header[0] != ContentColumn || header[1] != CategoryColumn {
		return nil, ErrBadSchema
	}

	return &Table{
		Header: header,
		Rows:   records[1:],
	}, nil
}

// ParseUnlabeledTable reads a CSV upload of examples without
// categories: exactly one column with the expected content header.
func ParseUnlabeledTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadTestSchema, err)
	}
	if len(records) == 0 {
		return nil, ErrBadTestSchema
	}

	header := records[0]
	if len(header) != 1 || header[0] != ContentColumn {
		return nil, ErrBadTestSchema
	}

	return &Table{
		Header: header,
		Rows:   records[1:],
	}, nil
}

// WriteFile writes a header plus rows as CSV, preserving the original
// header of the upload in both split outputs.
func WriteFile(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
