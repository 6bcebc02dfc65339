package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"
	"os"

	"github.com/pkg/errors"
)

const (
	aesKeyLength	= 32 // 256 bits
	aesKeyFilePerms	= 0600
)

// AES-GCM encryption with the key kept in a file
type AesEncryption struct {
	KeyFilePath	string
}

func (e *AesEncryption) gcm() (cipher.AEAD, error) {
	key, err := e.getKeyFromFile()
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// decrypt the given base64 encoded string
func (e *AesEncryption) Decrypt(encryptedText string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encryptedText)
	if err != nil {
		return "", errors.Wrap(err, "error decrypting text")
	}
	gcm, err := e.gcm()
	if err != nil {
		return "", errors.Wrap(err, "error decrypting text")
	}
	if len(data) < gcm.NonceSize() {
		return "", errors.Errorf("error decrypting text: \"%s\" is shorter than the nonce size (%d)", encryptedText, gcm.NonceSize())
	}
	nonce, sealed := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errors.Wrap(err, "error decrypting text")
	}
	return string(plain), nil
}

// encrypt the given string and return a base64 encoded string of the nonce followed by the sealed value
func (e *AesEncryption) Encrypt(unencryptedText string) (string, error) {
	gcm, err := e.gcm()
	if err != nil {
		return "", errors.Wrap(err, "error encrypting text")
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Wrap(err, "error encrypting text")
	}
	sealed := gcm.Seal(nonce, nonce, []byte(unencryptedText), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (e *AesEncryption) getKeyFromFile() ([]byte, error) {
	keyFromFile, err := os.ReadFile(e.KeyFilePath)
	if err != nil {
		return nil, err
	}
	key, err := base64.StdEncoding.DecodeString(string(keyFromFile))
	if err != nil || len(key) != aesKeyLength {
		return nil, errors.Errorf("key file %s doesn't hold a base64 encoded %d bytes key", e.KeyFilePath, aesKeyLength)
	}
	return key, nil
}

// create a new random key file at the given path unless one already exists there
func GenerateAesKeyFile(path string) error {
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return err
	}
	key := make([]byte, aesKeyLength)
	if _, err := rand.Read(key); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(base64.StdEncoding.EncodeToString(key)), aesKeyFilePerms)
}
