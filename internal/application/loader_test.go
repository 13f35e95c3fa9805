package application

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credstamp/internal/domain/model"
)

func TestLoadRecords(t *testing.T) {
	csv := "output_name,login,password\n" +
		"alice.pdf,alice,secret1\n" +
		"bob,bob,secret2\n"

	records, err := LoadRecords([]byte(csv), false)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.CredentialRecord{OutputName: "alice.pdf", Login: "alice", Password: "secret1"}, records[0])
	assert.Equal(t, model.CredentialRecord{OutputName: "bob", Login: "bob", Password: "secret2"}, records[1])
}

// Record count always equals the number of non-header rows.
func TestLoadRecords_CountMatchesRows(t *testing.T) {
	for _, n := range []int{1, 5, 40} {
		var b strings.Builder
		b.WriteString("output_name,login,password\n")
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "user%d,login%d,pw%d\n", i, i, i)
		}

		records, err := LoadRecords([]byte(b.String()), false)

		require.NoError(t, err)
		assert.Len(t, records, n)
	}
}

func TestLoadRecords_TrimsWhitespaceAndBOM(t *testing.T) {
	csv := "\xef\xbb\xbfoutput_name,login,password\n" +
		" alice , alice , secret1 \n"

	records, err := LoadRecords([]byte(csv), false)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "alice", records[0].OutputName)
	assert.Equal(t, "secret1", records[0].Password)
}

func TestLoadRecords_MalformedHeader(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{name: "wrong names", csv: "name,user,pass\na,b,c\n"},
		{name: "wrong order", csv: "login,output_name,password\na,b,c\n"},
		{name: "missing column", csv: "output_name,login\na,b\n"},
		{name: "extra column", csv: "output_name,login,password,email\na,b,c,d\n"},
		{name: "empty input", csv: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRecords([]byte(tt.csv), false)
			assert.ErrorIs(t, err, ErrMalformedCSV)
		})
	}
}

func TestLoadRecords_ShortRow(t *testing.T) {
	csv := "output_name,login,password\nalice,alice\n"

	_, err := LoadRecords([]byte(csv), false)

	require.ErrorIs(t, err, ErrMalformedCSV)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadRecords_EmptyOutputName(t *testing.T) {
	csv := "output_name,login,password\nalice,a,b\n,c,d\n"

	_, err := LoadRecords([]byte(csv), false)

	require.ErrorIs(t, err, ErrMalformedCSV)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), "output_name")
}

func TestLoadRecords_EmptyCredentials(t *testing.T) {
	csv := "output_name,login,password\nalice,,\n"

	_, err := LoadRecords([]byte(csv), false)
	assert.ErrorIs(t, err, ErrMalformedCSV)

	// Keep-original generation allows empty login/password.
	records, err := LoadRecords([]byte(csv), true)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Login)
}

func TestLoadRecords_NoRows(t *testing.T) {
	_, err := LoadRecords([]byte("output_name,login,password\n"), false)

	require.ErrorIs(t, err, ErrMalformedCSV)
	assert.Contains(t, err.Error(), "no credential rows")
}

func TestLoadRecords_DuplicateNamesAllowed(t *testing.T) {
	csv := "output_name,login,password\nsame,a,b\nsame,c,d\n"

	records, err := LoadRecords([]byte(csv), false)

	require.NoError(t, err)
	assert.Len(t, records, 2)
}
