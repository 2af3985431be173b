package service

import (
	"crypto/ed25519"
	"encoding/hex"
	"strconv"
	"time"
)

// LoginMessagePrefix is the string clients sign, followed by the decimal
// unix timestamp from the login request.
const LoginMessagePrefix = "battleship-login:"

// VerifyLoginProof verifies an ed25519 login proof and checks that the
// signed timestamp is recent (within 1 hour) to mitigate replay attacks.
// The signed message is LoginMessagePrefix + timestamp.
func VerifyLoginProof(publicKeyHex string, timestamp int64, signatureHex string) (ed25519.PublicKey, bool) {
	pub, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return nil, false
	}

	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return nil, false
	}

	msg := []byte(LoginMessagePrefix + strconv.FormatInt(timestamp, 10))
	if !ed25519.Verify(ed25519.PublicKey(pub), msg, sig) {
		return nil, false
	}

	// Freshness check: require the signed timestamp within the last hour
	now := time.Now().Unix()
	// allow small clock skew, but reject anything older than 1 hour
	if now-timestamp > 3600 || timestamp-now > 300 {
		return nil, false
	}

	return ed25519.PublicKey(pub), true
}
