// Package secure 提供保险库的密钥派生与认证加密原语。
// 派生密钥只存在于内存中，落盘的只有盐值与密文。
package secure

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize 为随机盐值长度（字节）
	SaltSize = 16
	// KeySize 为派生密钥长度，对应 ChaCha20-Poly1305 的 256 位密钥
	KeySize = chacha20poly1305.KeySize
	// MinIterations 为 PBKDF2 的最低迭代次数
	MinIterations = 100000
)

// validationMarker 是校验令牌加密前的固定明文
var validationMarker = []byte("VALID")

var (
	// ErrDecrypt 表示密文无法用当前密钥解开（密钥错误、密文损坏或认证标签不匹配）
	ErrDecrypt = errors.New("secure: decryption failed")
	// ErrInvalidSalt 表示持久化的盐值无法解析
	ErrInvalidSalt = errors.New("secure: invalid salt")
)

// NewSalt 生成密码学安全的随机盐值
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// EncodeSalt 将盐值编码为标准 base64
func EncodeSalt(salt []byte) string {
	return base64.StdEncoding.EncodeToString(salt)
}

// DecodeSalt 解析持久化的 base64 盐值
func DecodeSalt(encoded string) ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(salt) == 0 {
		return nil, ErrInvalidSalt
	}
	return salt, nil
}

// Cipher 持有派生密钥，负责单个字段的加解密
type Cipher struct {
	key []byte
}

// DeriveKey 使用 PBKDF2-HMAC-SHA256 从口令与盐值派生对称密钥。
// iterations 低于 MinIterations 时按 MinIterations 处理。
func DeriveKey(passphrase string, salt []byte, iterations int) *Cipher {
	if iterations < MinIterations {
		iterations = MinIterations
	}
	key := pbkdf2.Key([]byte(passphrase), salt, iterations, KeySize, sha256.New)
	return &Cipher{key: key}
}

// Encrypt 加密明文，输出 base64(nonce || ciphertext || tag)
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", fmt.Errorf("init aead: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt 解密 Encrypt 的输出；任何失败都归一为 ErrDecrypt，不返回部分明文
func (c *Cipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrDecrypt
	}

	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", fmt.Errorf("init aead: %w", err)
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", ErrDecrypt
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}

// NewValidationToken 用当前密钥加密固定标记，供之后校验口令
func (c *Cipher) NewValidationToken() (string, error) {
	return c.Encrypt(string(validationMarker))
}

// CheckValidationToken 仅当令牌可解密且明文与标记完全一致时返回 true
func (c *Cipher) CheckValidationToken(token string) bool {
	plaintext, err := c.Decrypt(token)
	if err != nil {
		return false
	}
	return bytes.Equal([]byte(plaintext), validationMarker)
}
