package driven

// SecretCipher seals secrets before they are written to persistent storage.
// Decrypt never fails: values it cannot open are returned unchanged and
// treated as legacy plaintext.
type SecretCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(blob string) string
}
