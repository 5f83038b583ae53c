package domain

import (
	"time"
)

// Token is a provider access token with its expiry in unix time.
type Token struct {
	Value   string `json:"value"`
	Expires int64  `json:"expires"`
}

// NewToken creates a token whose expiry is ttl seconds from now.
func NewToken(value string, ttl int) *Token {
	return &Token{
		Value:   value,
		Expires: time.Now().UTC().Add(time.Duration(ttl) * time.Second).Unix(),
	}
}

// HasExpired returns whether the time now is at or past Expires.
func (t *Token) HasExpired() bool {
	return time.Now().UTC().Unix() >= t.Expires
}
