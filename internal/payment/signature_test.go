package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	secret  = []byte("whsec_test")
	payload = []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	now     = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
)

func TestSignAndVerify(t *testing.T) {
	header := SignPayload(secret, now, payload)
	require.NoError(t, VerifySignature(secret, header, payload, now, DefaultTolerance))
}

func TestVerifyWrongSecret(t *testing.T) {
	header := SignPayload(secret, now, payload)
	err := VerifySignature([]byte("other"), header, payload, now, DefaultTolerance)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyTamperedPayload(t *testing.T) {
	header := SignPayload(secret, now, payload)
	err := VerifySignature(secret, header, []byte(`{"id":"evt_2"}`), now, DefaultTolerance)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyStaleTimestamp(t *testing.T) {
	header := SignPayload(secret, now.Add(-10*time.Minute), payload)
	err := VerifySignature(secret, header, payload, now, DefaultTolerance)
	require.ErrorIs(t, err, ErrInvalidSignature)

	// Inside the window it verifies.
	header = SignPayload(secret, now.Add(-4*time.Minute), payload)
	require.NoError(t, VerifySignature(secret, header, payload, now, DefaultTolerance))
}

func TestVerifyMalformedHeaders(t *testing.T) {
	for _, h := range []string{
		"",
		"t=abc,v1=deadbeef",
		"v1=deadbeef",
		"t=1756720800",
		"nonsense",
	} {
		err := VerifySignature(secret, h, payload, now, DefaultTolerance)
		require.ErrorIs(t, err, ErrInvalidSignature, "header %q", h)
	}
}

func TestVerifyMultipleMACs(t *testing.T) {
	// Key-rotation case: the valid v1 plus a stale one from the old key.
	good := SignPayload(secret, now, payload)
	header := good + ",v1=ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"
	require.NoError(t, VerifySignature(secret, header, payload, now, DefaultTolerance))
}
