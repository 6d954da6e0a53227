package ingest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// maxSignatureAge bounds how old a signed request may be before it is
// rejected as a possible replay.
const maxSignatureAge = 5 * time.Minute

var (
	ErrStaleTimestamp = eris.New("ingest: request timestamp outside freshness window")
	ErrBadSignature   = eris.New("ingest: signature mismatch")
)

// VerifySignature checks a Slack v0 request signature: the hex-encoded
// HMAC-SHA256 of "v0:<timestamp>:<body>" keyed with the signing secret.
// The comparison is constant time.
func VerifySignature(secret, timestamp, signature string, body []byte, now time.Time) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return eris.Wrap(err, "ingest: parse request timestamp")
	}

	age := now.Sub(time.Unix(ts, 0))
	if age > maxSignatureAge || age < -maxSignatureAge {
		return ErrStaleTimestamp
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:", timestamp)
	mac.Write(body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrBadSignature
	}
	return nil
}
