package model

// CredentialRecord is one CSV row: the output filename stem plus the login
// and password to place into the template. Immutable once parsed.
type CredentialRecord struct {
	OutputName string
	Login      string
	Password   string
}
