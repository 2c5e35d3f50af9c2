package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
)

// IVSize is the AES-CBC initialization vector size.
const IVSize = aes.BlockSize

// DecryptCBC decrypts AES-256-CBC ciphertext and removes PKCS7 padding.
//
// Length preconditions are enforced before the cipher is invoked, each as a
// distinct LengthError: 32-byte key, 16-byte IV, ciphertext non-empty and a
// multiple of the block size.
//
// Invalid padding after decryption is conclusive evidence of a wrong key,
// wrong IV, or corrupted transport; this function aborts with a CryptoError
// rather than returning best-effort bytes. Zero-length plaintext after
// unpadding is treated the same way.
func DecryptCBC(cipherBytes, key, iv []byte) ([]byte, error) {
	if len(key) != AESKeySize {
		return nil, &LengthError{Field: "aesKey", Expected: AESKeySize, Actual: len(key)}
	}
	if len(iv) != IVSize {
		return nil, &LengthError{Field: "iv", Expected: IVSize, Actual: len(iv)}
	}
	if len(cipherBytes) == 0 || len(cipherBytes)%aes.BlockSize != 0 {
		return nil, &LengthError{Field: "ciphertext", Expected: aes.BlockSize, Actual: len(cipherBytes), Multiple: true}
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, &CryptoError{Stage: StageAESDecrypt, Err: err}
	}

	plain := make([]byte, len(cipherBytes))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, cipherBytes)

	unpadded, err := pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return nil, &CryptoError{Stage: StageAESDecrypt, Err: err}
	}
	if len(unpadded) == 0 {
		return nil, &CryptoError{Stage: StageAESDecrypt, Err: errors.New("decryption yielded zero bytes")}
	}
	return unpadded, nil
}

// EncryptCBC encrypts plaintext with AES-256-CBC and PKCS7 padding, the
// inverse of DecryptCBC. Used by the client binary and round-trip tests.
func EncryptCBC(plaintext, key, iv []byte) ([]byte, error) {
	if len(key) != AESKeySize {
		return nil, &LengthError{Field: "aesKey", Expected: AESKeySize, Actual: len(key)}
	}
	if len(iv) != IVSize {
		return nil, &LengthError{Field: "iv", Expected: IVSize, Actual: len(iv)}
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-n], nil
}
