package vault

import "time"

// Kind is the closed set of credential kinds spec §3 allows.
type Kind string

const (
	KindAPIKey       Kind = "api_key"
	KindPaymentToken Kind = "payment_token"
	KindOAuthToken   Kind = "oauth_token"
	KindSecret       Kind = "secret"
	KindCertificate  Kind = "certificate"
)

// Credential is a decrypted record: identity, kind, plaintext value,
// and non-secret metadata. Returned only by Get, never by List.
type Credential struct {
	ID        string
	Name      string
	Kind      Kind
	Value     []byte
	Metadata  map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CredentialSummary is the plaintext-free projection returned by
// List: identity, kind, and non-secret attributes only.
type CredentialSummary struct {
	ID        string
	Name      string
	Kind      Kind
	Metadata  map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time
}
