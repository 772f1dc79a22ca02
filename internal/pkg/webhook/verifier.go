package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Verifier handles inbound webhook signature verification for the
// POS sales feed.
type Verifier struct {
	token string
}

func NewVerifier(token string) *Verifier {
	return &Verifier{token: token}
}

// VerifyToken compares the x-callback-token header against the shared
// webhook token.
func (v *Verifier) VerifyToken(callbackToken string) bool {
	return strings.TrimSpace(callbackToken) == strings.TrimSpace(v.token)
}

// VerifyHMACSignature verifies an HMAC-SHA256 signature over the raw
// request body, hex-encoded in the x-signature header.
func (v *Verifier) VerifyHMACSignature(payload []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(v.token))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Event is the type of inbound POS event.
type Event string

const (
	EventSalesClosed    Event = "sales.closed"
	EventReturnsRemakes Event = "returns.remakes"
)
