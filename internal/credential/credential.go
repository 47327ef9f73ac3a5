// Package credential issues the scannable proof of registration. The key is
// derived from the event, the participant, and the issuance instant, so two
// distinct registrations can never collide, and it is opaque: nothing about
// the event or participant can be recovered from it. Check-in resolves a
// presented key by store lookup, not by parsing.
package credential

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	id "campuspass/pkg/domain"
	dErrors "campuspass/pkg/domain-errors"
)

// Credential is the issued proof of registration: an opaque lookup key plus
// its QR rendering. Immutable once issued.
type Credential struct {
	Key string
	PNG []byte
}

// DataURL returns the QR image as a data URL suitable for direct embedding
// in clients.
func (c *Credential) DataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(c.PNG)
}

// Encoder derives credential keys and renders them as QR codes.
type Encoder struct {
	size int
}

// NewEncoder constructs an Encoder producing QR images of the default size.
func NewEncoder() *Encoder {
	return &Encoder{size: 256}
}

// Issue derives the credential for a registration issued at the given
// instant. Pure function of its inputs: it persists nothing. A rendering
// failure aborts issuance; no registration may be created without a
// scannable credential.
func (e *Encoder) Issue(eventID id.EventID, participantID id.UserID, issuedAt time.Time) (*Credential, error) {
	key := deriveKey(eventID, participantID, issuedAt)

	png, err := qrcode.Encode(key, qrcode.Medium, e.size)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeEncodingFailed, "failed to render credential")
	}
	return &Credential{Key: key, PNG: png}, nil
}

// deriveKey hashes event, participant, and issuance millisecond together.
// Millisecond resolution alone would collide for two registrations in the
// same instant; folding in both identities guarantees distinctness.
func deriveKey(eventID id.EventID, participantID id.UserID, issuedAt time.Time) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%d",
		eventID.String(), participantID.String(), issuedAt.UnixMilli()))
	return hex.EncodeToString(sum[:])
}
