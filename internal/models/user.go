package models

// Credential is a stored login. PasswordHash is a bcrypt hash, never the plain password.
type Credential struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
}

// CredentialDocument is the persisted form of all credentials: username -> bcrypt hash.
type CredentialDocument map[string]string
