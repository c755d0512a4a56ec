package payment

// signature.go implements the gateway's webhook signature scheme.  The
// header has the form "t=<unix>,v1=<hex>" where v1 is the HMAC-SHA256 of
// "<t>.<rawBody>" under the shared secret.  Signing the timestamp
// together with the body lets receivers reject replayed deliveries
// outside a tolerance window.

import (
    "crypto/hmac"
    "crypto/sha256"
    "encoding/hex"
    "errors"
    "fmt"
    "strconv"
    "strings"
    "time"
)

// ErrInvalidSignature is returned for any header that does not verify:
// wrong format, wrong MAC, or a timestamp outside the tolerance window.
// Callers must not process the payload when they see this error.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// DefaultTolerance bounds the accepted clock skew between the gateway
// and this service.
const DefaultTolerance = 5 * time.Minute

// SignPayload produces a signature header for a payload at time t.  Used
// by the gateway (and by our tests) to produce verifiable deliveries.
func SignPayload(secret []byte, t time.Time, payload []byte) string {
    mac := computeMAC(secret, t.Unix(), payload)
    return fmt.Sprintf("t=%d,v1=%s", t.Unix(), mac)
}

// VerifySignature checks a signature header against the raw payload.
// Comparison is constant time.  A header may carry several v1 values
// (key rotation); verification succeeds when any of them matches.
func VerifySignature(secret []byte, header string, payload []byte, now time.Time, tolerance time.Duration) error {
    var (
        ts   int64
        macs []string
    )
    for _, part := range strings.Split(header, ",") {
        k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
        if !ok {
            return ErrInvalidSignature
        }
        switch k {
        case "t":
            n, err := strconv.ParseInt(v, 10, 64)
            if err != nil {
                return ErrInvalidSignature
            }
            ts = n
        case "v1":
            macs = append(macs, v)
        }
    }
    if ts == 0 || len(macs) == 0 {
        return ErrInvalidSignature
    }
    if tolerance <= 0 {
        tolerance = DefaultTolerance
    }
    skew := now.Unix() - ts
    if skew < 0 {
        skew = -skew
    }
    if time.Duration(skew)*time.Second > tolerance {
        return ErrInvalidSignature
    }
    expected := computeMAC(secret, ts, payload)
    for _, m := range macs {
        if hmac.Equal([]byte(m), []byte(expected)) {
            return nil
        }
    }
    return ErrInvalidSignature
}

func computeMAC(secret []byte, ts int64, payload []byte) string {
    h := hmac.New(sha256.New, secret)
    h.Write([]byte(strconv.FormatInt(ts, 10)))
    h.Write([]byte("."))
    h.Write(payload)
    return hex.EncodeToString(h.Sum(nil))
}
