package mux

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader carries the webhook signature: "t=<unix>,v1=<hex hmac>".
const SignatureHeader = "Mux-Signature"

// DefaultWebhookTolerance bounds how old a signed webhook may be.
const DefaultWebhookTolerance = 5 * time.Minute

var (
	ErrSignatureMissing  = errors.New("mux: webhook signature missing")
	ErrSignatureMismatch = errors.New("mux: webhook signature mismatch")
	ErrSignatureExpired  = errors.New("mux: webhook signature timestamp outside tolerance")
)

// VerifyWebhookSignature checks header against the HMAC-SHA256 of
// "<timestamp>.<body>" keyed with secret.
func VerifyWebhookSignature(header string, body []byte, secret string, tolerance time.Duration, now time.Time) error {
	if header == "" {
		return ErrSignatureMissing
	}

	var (
		timestamp  string
		signatures []string
	)
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return ErrSignatureMissing
	}

	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrSignatureMismatch
	}
	if tolerance > 0 {
		age := now.Sub(time.Unix(unix, 0))
		if age > tolerance || age < -tolerance {
			return ErrSignatureExpired
		}
	}

	expected := SignWebhook(timestamp, body, secret)
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return ErrSignatureMismatch
}

// SignWebhook returns the hex signature the provider would send for body.
func SignWebhook(timestamp string, body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
