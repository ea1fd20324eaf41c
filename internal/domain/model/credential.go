package model

// DefaultEmail is stored when the remote service issues a key without an email.
const DefaultEmail = "User"

// Credential is the long-lived API key and account email for the scoring
// service. At most one exists at a time; storing a new one replaces the old.
type Credential struct {
	APIKey string
	Email  string
}

// IssuedCredential is what the remote auth-status endpoint returns once the
// user has completed the magic-link handshake.
type IssuedCredential struct {
	APIKey string
	Email  string
}

// Credential converts the issued payload into a storable Credential,
// applying DefaultEmail when the remote omitted it.
func (ic IssuedCredential) Credential() Credential {
	email := ic.Email
	if email == "" {
		email = DefaultEmail
	}
	return Credential{APIKey: ic.APIKey, Email: email}
}
