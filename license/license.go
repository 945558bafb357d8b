// Package license 授权码的签发与校验。
// 授权码格式："KEY-" + base64url(payload JSON) + "." + base64(Ed25519 签名)。
// payload 含机器码、签发时间与过期日期，过期日期 LIFETIME 表示永久。
package license

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const keyPrefix = "KEY-"

// LifetimeExpire 永久授权的过期字段取值。
const LifetimeExpire = "LIFETIME"

var (
	// ErrMalformed 授权码格式不合法。
	ErrMalformed = errors.New("malformed license key")
	// ErrBadSignature 签名校验失败。
	ErrBadSignature = errors.New("license signature mismatch")
	// ErrMachineMismatch 授权码不属于本机。
	ErrMachineMismatch = errors.New("license issued for another machine")
	// ErrExpired 授权已过期。
	ErrExpired = errors.New("license expired")
)

// Payload 授权码载荷。
type Payload struct {
	Code   string `json:"code"`
	Ts     int64  `json:"ts"`
	Expire string `json:"expire"`
}

// Issue 用私钥签发授权码。expire 为 YYYY-MM-DD 或 LIFETIME。
func Issue(priv ed25519.PrivateKey, machineCode, expire string) (string, error) {
	if machineCode == "" {
		return "", errors.New("machine code is required")
	}
	if expire != LifetimeExpire {
		if _, err := time.Parse("2006-01-02", expire); err != nil {
			return "", fmt.Errorf("invalid expire date %q: %w", expire, err)
		}
	}

	payload, err := json.Marshal(Payload{
		Code:   machineCode,
		Ts:     time.Now().Unix(),
		Expire: expire,
	})
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	sig := ed25519.Sign(priv, payload)
	return keyPrefix +
		base64.RawURLEncoding.EncodeToString(payload) +
		"." +
		base64.StdEncoding.EncodeToString(sig), nil
}

// Verify 校验授权码的签名、机器码与有效期，返回解析出的载荷。
func Verify(pub ed25519.PublicKey, key, machineCode string) (*Payload, error) {
	return verifyAt(pub, key, machineCode, time.Now())
}

func verifyAt(pub ed25519.PublicKey, key, machineCode string, now time.Time) (*Payload, error) {
	key = strings.TrimSpace(key)
	if !strings.HasPrefix(key, keyPrefix) {
		return nil, ErrMalformed
	}
	parts := strings.SplitN(strings.TrimPrefix(key, keyPrefix), ".", 2)
	if len(parts) != 2 {
		return nil, ErrMalformed
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	sig, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if !ed25519.Verify(pub, payloadBytes, sig) {
		return nil, ErrBadSignature
	}

	var payload Payload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if payload.Code != machineCode {
		return nil, ErrMachineMismatch
	}
	if payload.Expire != LifetimeExpire {
		expireDay, err := time.Parse("2006-01-02", payload.Expire)
		if err != nil {
			return nil, fmt.Errorf("%w: bad expire date", ErrMalformed)
		}
		if now.After(expireDay.Add(24 * time.Hour)) {
			return nil, ErrExpired
		}
	}
	return &payload, nil
}
