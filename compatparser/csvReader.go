package compatparser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/giygas/compatibility-api/logging"
	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrMissingHeader is returned for an empty file
	ErrMissingHeader = errors.New("missing header row")
	// ErrNoRows is returned when a file has a header but no data row
	ErrNoRows = errors.New("no data rows")
	// ErrMissingColumn is returned when a required column is absent from the header
	ErrMissingColumn = errors.New("missing required column")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// table is a header-keyed view of a CSV file
type table struct {
	headers []string
	rows    []map[string]string
}

// get returns the trimmed value of column in row i, empty when absent
func (t *table) get(i int, column string) string {
	return strings.TrimSpace(t.rows[i][column])
}

// require checks that every column is present in the header
func (t *table) require(columns ...string) error {
	present := make(map[string]struct{}, len(t.headers))
	for _, h := range t.headers {
		present[h] = struct{}{}
	}

	var missing []string
	for _, c := range columns {
		if _, ok := present[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// readCSVFile opens path and parses it with readCSV
func readCSVFile(path string) (*table, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	t, err := readCSV(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return t, nil
}

// readCSV parses a comma separated file whose first line is the header.
// Spreadsheet exports are not always UTF-8, so content that is not valid
// UTF-8 is decoded as Windows-1252. Header names are trimmed and lower-cased.
func readCSV(content []byte) (*table, error) {
	content = bytes.TrimPrefix(content, utf8BOM)

	var reader io.Reader
	if utf8.Valid(content) {
		reader = bytes.NewReader(content)
	} else {
		reader = charmap.Windows1252.NewDecoder().Reader(bytes.NewReader(content))
	}

	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := &table{headers: make([]string, len(header))}
	for i, h := range header {
		t.headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	skippedEmptyLines := 0
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		if isBlank(fields) {
			skippedEmptyLines++
			continue
		}

		row := make(map[string]string, len(t.headers))
		for i, h := range t.headers {
			if i < len(fields) {
				row[h] = fields[i]
			}
		}
		t.rows = append(t.rows, row)
	}

	if skippedEmptyLines > 0 {
		logging.Debug("Skipped blank CSV lines", "count", skippedEmptyLines)
	}

	if len(t.rows) == 0 {
		return nil, ErrNoRows
	}

	return t, nil
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
