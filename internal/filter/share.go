package filter

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// EncodeString packs a config into a URL-safe string for share links.
// The payload is the canonical JSON encoding, base64url without padding,
// so equal configs always encode to the same string.
func EncodeString(c Config) (string, error) {
	canonical, err := MarshalCanonical(c)
	if err != nil {
		return "", fmt.Errorf("EncodeString: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(canonical), nil
}

// DecodeString unpacks a config produced by EncodeString.
//
// Share strings arrive from URLs and are untrusted: decoding is strict
// (unknown fields rejected), and decoded configs still require validation
// before compiling or evaluating.
func DecodeString(s string) (Config, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Config{}, fmt.Errorf("DecodeString: invalid encoding: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var c Config
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("DecodeString: invalid payload: %w", err)
	}
	return c, nil
}
