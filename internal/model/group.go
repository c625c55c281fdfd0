package model

type GroupID string

// Group is fixed at startup. CredentialHash is a base64 encoded bcrypt hash,
// never a cleartext secret.
type Group struct {
	ID             GroupID
	CredentialHash string
}
