package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256" // SHA-256 hashing for refresh token digests
	"crypto/subtle" // constant-time digest comparison
	"encoding/hex"  // hex encoding of digests
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"       // unique jti claim on refresh tokens
)

// ErrInvalidToken is returned for every verification failure: bad signature,
// malformed token, or expiry. Callers must not be able to distinguish the
// reason beyond logging, so all failures collapse into this one error.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are short-lived and carried in the Authorization header when
// calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken represents a longer-lived JWT exchanged for new access tokens.
// It is signed with a secret distinct from the access-token secret and
// carries a unique jti claim so individual tokens could later be revoked by
// id. Only a digest of the serialized token is ever stored server-side.
type RefreshToken struct {
	Token string    // the serialized JWT string returned to the client
	Exp   time.Time // UTC expiration time, read back from the signed token
}

// AuthClaims is the verified view of an access or refresh token.
type AuthClaims struct {
	Sub      string    // user id
	Username string    // username (or email when the user has none)
	TokenID  string    // jti; empty on access tokens
	Exp      time.Time // expiry as encoded in the token
}

// NewAccessToken builds and signs an HS256 JWT for a user with the
// access-token secret and TTL. The JWT carries subject (sub), username,
// expiration (exp) and issued-at (iat) claims.
func NewAccessToken(secret, userID, username string, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken signs the same payload with the refresh-token secret, a
// longer TTL and a unique jti. The returned expiry is not the locally
// computed timestamp: the freshly minted token is verified and its exp claim
// read back, so the expiry persisted next to the session row is exactly the
// one verification will later compute.
func NewRefreshToken(secret, userID, username string, ttlDays int) (RefreshToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"jti":      uuid.NewString(),
		"exp":      exp.Unix(),
		"iat":      time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return RefreshToken{}, err
	}
	verified, err := VerifyToken(signed, secret)
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Token: signed, Exp: verified.Exp}, nil
}

// VerifyToken checks the signature and expiry of a token and returns its
// claims. Any failure is reported as ErrInvalidToken.
func VerifyToken(token, secret string) (AuthClaims, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with a different algorithm family.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return AuthClaims{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return AuthClaims{}, ErrInvalidToken
	}
	out := AuthClaims{}
	if sub, ok := claims["sub"].(string); ok {
		out.Sub = sub
	}
	if name, ok := claims["username"].(string); ok {
		out.Username = name
	}
	if jti, ok := claims["jti"].(string); ok {
		out.TokenID = jti
	}
	if expVal, ok := claims["exp"].(float64); ok {
		out.Exp = time.Unix(int64(expVal), 0).UTC()
	}
	if out.Sub == "" || out.Exp.IsZero() {
		return AuthClaims{}, ErrInvalidToken
	}
	return out, nil
}

// HashRefreshToken returns the SHA-256 digest of a serialized refresh token
// as a hex string. Only the digest is stored so a leaked database cannot be
// used to refresh sessions.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// RefreshHashEqual compares a stored digest against the digest of a presented
// token in constant time.
func RefreshHashEqual(storedHash, raw string) bool {
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(HashRefreshToken(raw))) == 1
}
