package utils

import "crypto/rand"

// sessionIDAlphabet is unambiguous alphanumeric: no separators, URL and
// cookie safe.
const sessionIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// SessionIDLength is the length of caller-visible session identifiers.
const SessionIDLength = 26

// NewSessionID returns a random opaque session identifier. Session ids are
// caller-visible and must not be guessable, so the bytes come from
// crypto/rand. Rejection sampling keeps the alphabet distribution uniform.
func NewSessionID() (string, error) {
	out := make([]byte, 0, SessionIDLength)
	buf := make([]byte, SessionIDLength*2)
	for len(out) < SessionIDLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			// 248 = 4*62; values above would bias the tail of the alphabet.
			if b < 248 {
				out = append(out, sessionIDAlphabet[int(b)%len(sessionIDAlphabet)])
				if len(out) == SessionIDLength {
					break
				}
			}
		}
	}
	return string(out), nil
}
