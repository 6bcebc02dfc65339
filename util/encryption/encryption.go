package encryption

import "strings"

// prefix marking a config value as encrypted
const Prefix = "encrypted:"

type Encryption interface {
	// return a decrypted version of the given encrypted string
	Decrypt(encryptedText string) (string, error)
	// return an encrypted version of the given unencrypted string
	Encrypt(unencryptedText string) (string, error)
}

func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, Prefix)
}

// encrypt the given config value and mark it with Prefix. Empty and already encrypted values are returned as is
func SealValue(e Encryption, value string) (string, error) {
	if value == "" || IsEncrypted(value) {
		return value, nil
	}
	encrypted, err := e.Encrypt(value)
	if err != nil {
		return "", err
	}
	return Prefix + encrypted, nil
}

// decrypt the given config value if it is marked with Prefix, otherwise return it as is
func OpenValue(e Encryption, value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}
	return e.Decrypt(strings.TrimPrefix(value, Prefix))
}
