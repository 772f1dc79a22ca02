package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestVerifyToken(t *testing.T) {
	v := NewVerifier("secret-token")

	if !v.VerifyToken("secret-token") {
		t.Error("VerifyToken with matching token = false, want true")
	}
	if !v.VerifyToken("  secret-token  ") {
		t.Error("VerifyToken should trim whitespace")
	}
	if v.VerifyToken("wrong-token") {
		t.Error("VerifyToken with wrong token = true, want false")
	}
}

func TestVerifyHMACSignature(t *testing.T) {
	v := NewVerifier("secret-token")
	payload := []byte(`{"invoice_id":"INV-001","amount":1500}`)

	mac := hmac.New(sha256.New, []byte("secret-token"))
	mac.Write(payload)
	sig := hex.EncodeToString(mac.Sum(nil))

	if !v.VerifyHMACSignature(payload, sig) {
		t.Error("VerifyHMACSignature with valid signature = false, want true")
	}
	if v.VerifyHMACSignature(payload, "deadbeef") {
		t.Error("VerifyHMACSignature with bad signature = true, want false")
	}
	if v.VerifyHMACSignature([]byte("tampered"), sig) {
		t.Error("VerifyHMACSignature with tampered payload = true, want false")
	}
}
