package curation

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// Dataset is a header plus data rows read from a CSV or XLSX file.
type Dataset struct {
	Header    []string
	Rows      [][]string
	Delimiter rune // CSV delimiter; ',' for datasets read from workbooks
}

// DetectDelimiter picks ';' when the first line has semicolons and no commas,
// and ',' otherwise.
func DetectDelimiter(firstLine string) rune {
	if strings.Contains(firstLine, ";") && !strings.Contains(firstLine, ",") {
		return ';'
	}
	return ','
}

// ReadCSV reads a delimited dataset, detecting the delimiter from the first line.
// Rows may have any number of fields; missing trailing fields read as empty.
func ReadCSV(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte(utf8BOM))

	firstLine, _, _ := bufio.NewReader(bytes.NewReader(data)).ReadLine()
	delim := DetectDelimiter(string(firstLine))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	return &Dataset{Header: records[0], Rows: records[1:], Delimiter: delim}, nil
}

// ReadXLSX reads the first worksheet of a workbook as a dataset.
func ReadXLSX(r io.Reader) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}
	return &Dataset{Header: rows[0], Rows: rows[1:], Delimiter: ','}, nil
}

// ReadDataset opens path and reads it according to its extension.
func ReadDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("dataset %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return ReadCSV(f)
	case ".xlsx":
		return ReadXLSX(f)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// FindColumn returns the index of the header matching name case-insensitively, or -1.
func FindColumn(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, utf8BOM)), name) {
			return i
		}
	}
	return -1
}
