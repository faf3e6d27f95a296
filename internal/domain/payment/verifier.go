package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/go-faster/errors"
)

// ErrInvalidSignature is returned when a payment callback's signature does
// not match the expected HMAC.
var ErrInvalidSignature = errors.New("invalid payment signature")

// Verifier authenticates payment gateway callbacks by recomputing the
// HMAC-SHA256 signature over the gateway order and payment references.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier with the gateway's shared secret.
func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

// Signature returns the hex digest of HMAC-SHA256(secret, orderRef + "|" + paymentRef).
func (v *Verifier) Signature(orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks the supplied signature in constant time and returns
// ErrInvalidSignature on mismatch. It does not look up or mutate any order.
func (v *Verifier) Verify(orderRef, paymentRef, signature string) error {
	expected := v.Signature(orderRef, paymentRef)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
