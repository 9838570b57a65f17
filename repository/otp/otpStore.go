// Package otp stores short-lived verification challenges in Redis for the
// profile-security flows (email and password changes). A challenge binds the
// code to the change payload it authorizes, so verification and application
// happen as one operation with no "verified but not applied" window.
package otp

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"time"

	"circulation/util/apperr"
	"circulation/util/hash"

	"github.com/redis/go-redis/v9"
)

const (
	PurposeEmailChange    = "email_change"
	PurposePasswordChange = "password_change"
)

type Store struct {
	client      *redis.Client
	keyPrefix   string
	ttl         time.Duration
	resendAfter time.Duration
	maxAttempts int
}

type challenge struct {
	CodeHash string `json:"code_hash"`
	Payload  string `json:"payload"`
	Attempts int    `json:"attempts"`
}

func New(addr, password string) *Store {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: password}))
}

func NewWithClient(c *redis.Client) *Store {
	return &Store{
		client:      c,
		keyPrefix:   "circulation:otp",
		ttl:         5 * time.Minute,
		resendAfter: time.Minute,
		maxAttempts: 5,
	}
}

func (s *Store) key(subject, purpose string) string {
	return s.keyPrefix + ":" + purpose + ":" + subject
}

// Create issues a fresh 6-digit code for the subject and purpose, replacing
// any outstanding challenge. The payload is returned by a later Verify.
func (s *Store) Create(ctx context.Context, subject, purpose, payload string) (string, error) {
	resendKey := s.key(subject, purpose) + ":resend"
	allowed, err := s.client.SetNX(ctx, resendKey, "1", s.resendAfter).Result()
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", apperr.New(apperr.State, "verification code recently sent, try again shortly")
	}

	code, err := numericCode(6)
	if err != nil {
		return "", err
	}
	codeHash, err := hash.HashPassword(code)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(challenge{CodeHash: codeHash, Payload: payload})
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, s.key(subject, purpose), raw, s.ttl).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Verify checks the code and consumes the challenge on success or once the
// attempt budget is exhausted. Returns the payload bound at Create time.
func (s *Store) Verify(ctx context.Context, subject, purpose, code string) (string, error) {
	key := s.key(subject, purpose)
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", apperr.New(apperr.State, "verification code expired or not requested")
	}
	if err != nil {
		return "", err
	}

	var ch challenge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return "", err
	}
	if !hash.CheckPassword(ch.CodeHash, code) {
		ch.Attempts++
		if ch.Attempts >= s.maxAttempts {
			_ = s.client.Del(ctx, key).Err()
			return "", apperr.New(apperr.State, "too many verification attempts")
		}
		if updated, err := json.Marshal(ch); err == nil {
			_ = s.client.Set(ctx, key, updated, redis.KeepTTL).Err()
		}
		return "", apperr.New(apperr.Validation, "incorrect verification code")
	}

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return "", err
	}
	return ch.Payload, nil
}

func numericCode(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = '0' + byte(v.Int64())
	}
	return string(digits), nil
}
