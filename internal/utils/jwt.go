package utils // package utils provides helper functions for token creation, verification and hashing

import (
    "crypto/rand"   // secure random number generation
    "crypto/sha256" // SHA-256 hashing for refresh tokens
    "encoding/hex"  // hex encoding functions
    "errors"        // sentinel error values and errors.Is
    "time"          // expiry arithmetic

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
    "github.com/google/uuid"       // token identifiers (jti claim)
)

// Verification failures.  Callers map all of these to a generic 401 so
// that the response does not reveal which check failed; the distinct
// values exist for logging and tests.
var (
    ErrTokenMalformed = errors.New("token malformed")
    ErrTokenExpired   = errors.New("token expired")
    ErrBadSignature   = errors.New("token signature invalid")
)

// AccessToken represents a signed JWT access token along with its expiry
// and identifier.  The TokenID is the jti claim and is what the
// revocation set keys on.
type AccessToken struct {
    Token   string    // the serialized JWT string
    TokenID string    // jti claim, used for revocation
    Exp     time.Time // the UTC expiration time
}

// AccessClaims is the decoded, verified content of an access token.
type AccessClaims struct {
    UserID    uint64    // sub claim
    Role      string    // role claim
    TokenID   string    // jti claim
    IssuedAt  time.Time // iat claim
    ExpiresAt time.Time // exp claim
}

// RemainingTTL returns how long the token is still valid from now.
// Negative results are clamped to zero.
func (c AccessClaims) RemainingTTL(now time.Time) time.Duration {
    d := c.ExpiresAt.Sub(now)
    if d < 0 {
        return 0
    }
    return d
}

// RefreshToken represents a long-lived token used to obtain new access
// tokens.  Only a SHA-256 hash of the raw string is stored in the
// database.
type RefreshToken struct {
    Raw string    // raw token string returned to the client
    Exp time.Time // UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The claims
// are {sub, role, jti, iat, exp}; the signature is computed over exactly
// those, so two tokens issued in the same second for the same user still
// differ through their jti.
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    jti := uuid.NewString()
    claims := jwt.MapClaims{
        "sub":  userID,
        "role": role,
        "jti":  jti,
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, TokenID: jti, Exp: exp}, nil
}

// VerifyAccessToken parses and verifies a raw access token.  It returns
// one of the sentinel errors above on failure.  Revocation is not checked
// here: the caller holds the revocation store and consults it with the
// returned TokenID.
func VerifyAccessToken(secret, raw string) (AccessClaims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, jwt.ErrTokenSignatureInvalid
        }
        return []byte(secret), nil
    })
    if err != nil {
        switch {
        case errors.Is(err, jwt.ErrTokenExpired):
            return AccessClaims{}, ErrTokenExpired
        case errors.Is(err, jwt.ErrTokenSignatureInvalid):
            return AccessClaims{}, ErrBadSignature
        default:
            return AccessClaims{}, ErrTokenMalformed
        }
    }
    if !tok.Valid {
        return AccessClaims{}, ErrTokenMalformed
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return AccessClaims{}, ErrTokenMalformed
    }

    var out AccessClaims
    sub, ok := mc["sub"].(float64) // numeric claims decode as float64
    if !ok || sub <= 0 {
        return AccessClaims{}, ErrTokenMalformed
    }
    out.UserID = uint64(sub)
    if out.Role, ok = mc["role"].(string); !ok || out.Role == "" {
        return AccessClaims{}, ErrTokenMalformed
    }
    if out.TokenID, ok = mc["jti"].(string); !ok || out.TokenID == "" {
        return AccessClaims{}, ErrTokenMalformed
    }
    if iat, ok := mc["iat"].(float64); ok {
        out.IssuedAt = time.Unix(int64(iat), 0).UTC()
    }
    if exp, ok := mc["exp"].(float64); ok {
        out.ExpiresAt = time.Unix(int64(exp), 0).UTC()
    }
    return out, nil
}

// NewRefreshToken returns a cryptographically secure random token (raw)
// and its expiration time.  The ttlDays parameter controls how many days
// the refresh token is valid.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
    raw, err := randomHex(48) // 48 bytes -> 96 hex chars
    if err != nil {
        return RefreshToken{}, err
    }
    return RefreshToken{
        Raw: raw,
        Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
    }, nil
}

// HashRefreshRaw returns the SHA-256 hash of the raw refresh token as a
// hex string.  Storing only the hash prevents attackers from using stolen
// database entries to refresh sessions.
func HashRefreshRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
