// Package application contains the credential loader and the generation
// orchestration service sitting between the driving adapters and the
// PDF/storage ports.
package application

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"credstamp/internal/domain/model"
)

// ErrMalformedCSV indicates the credentials CSV has a bad header or row shape.
var ErrMalformedCSV = errors.New("malformed credentials CSV")

// csvHeader is the required header row, in this exact order.
var csvHeader = []string{"output_name", "login", "password"}

// utf8BOM is tolerated at the start of uploads saved as "UTF-8 with BOM".
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadRecords parses UTF-8 CSV bytes into credential records in file order.
// The header must be exactly "output_name,login,password" and every data row
// must have three fields. Fields are whitespace-trimmed. output_name must be
// non-empty on every row; login and password must be non-empty unless
// allowEmptyCredentials is set (keep-original generation does not use them).
//
// All shape and content failures wrap ErrMalformedCSV. Error messages cite
// 1-based file lines, with data starting at line 2.
func LoadRecords(data []byte, allowEmptyCredentials bool) ([]model.CredentialRecord, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = len(csvHeader)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read header row: %v", ErrMalformedCSV, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if !headerMatches(header) {
		return nil, fmt.Errorf("%w: header must be exactly %q, got %q",
			ErrMalformedCSV, strings.Join(csvHeader, ","), strings.Join(header, ","))
	}

	var records []model.CredentialRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedCSV, line, err)
		}

		rec := model.CredentialRecord{
			OutputName: strings.TrimSpace(row[0]),
			Login:      strings.TrimSpace(row[1]),
			Password:   strings.TrimSpace(row[2]),
		}
		if rec.OutputName == "" {
			return nil, fmt.Errorf("%w: line %d: empty output_name", ErrMalformedCSV, line)
		}
		if !allowEmptyCredentials && (rec.Login == "" || rec.Password == "") {
			return nil, fmt.Errorf("%w: line %d: empty login or password", ErrMalformedCSV, line)
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no credential rows", ErrMalformedCSV)
	}
	return records, nil
}

func headerMatches(header []string) bool {
	if len(header) != len(csvHeader) {
		return false
	}
	for i, name := range csvHeader {
		if header[i] != name {
			return false
		}
	}
	return true
}
