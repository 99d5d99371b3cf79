package mfa

// Purpose identifies what a ciphertext protects.
type Purpose string

// PurposeOTPSecret scopes encryption to enrolled OTP secrets.
const PurposeOTPSecret Purpose = "otp_secret"

// Scope binds a ciphertext to its owner and purpose. It is fed into AES-GCM
// as AAD, so a ciphertext moved to another user or purpose fails to decrypt.
type Scope struct {
	// UserID is the owning user.
	UserID int64
	// Purpose is the encryption purpose.
	Purpose Purpose
}

// Encryptor defines the interface for encrypting/decrypting secret material
// at rest.
type Encryptor interface {
	// Encrypt returns ciphertext for the given plaintext and scope.
	Encrypt(plaintext []byte, scope Scope) (ciphertext []byte, err error)
	// Decrypt returns plaintext for the given ciphertext and scope.
	Decrypt(ciphertext []byte, scope Scope) (plaintext []byte, err error)
}

// KeyProvider provides raw AES keys. For AES-256-GCM, keys must be 32 bytes.
type KeyProvider interface {
	// Key returns the raw AES key to use for this scope.
	Key(scope Scope) ([]byte, error)
}
