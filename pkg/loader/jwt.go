package loader

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/oakwood-commons/kvtree/pkg/jsonvalue"
)

// IsJWT reports whether input looks like a JWT: three non-empty
// dot-separated base64url parts, the first two of which decode to JSON
// objects. A leading "Bearer " is ignored.
func IsJWT(input string) bool {
	parts, ok := jwtParts(input)
	if !ok {
		return false
	}
	for i := 0; i < 2; i++ {
		if _, err := jwtSegment(parts[i]); err != nil {
			return false
		}
	}
	_, err := base64.RawURLEncoding.DecodeString(parts[2])
	return err == nil
}

// DecodeJWT decodes a JWT into an object with header, payload and signature
// fields. Header and payload keep their claim order; the signature stays in
// its base64url form.
func DecodeJWT(input string) (jsonvalue.Value, error) {
	parts, ok := jwtParts(input)
	if !ok {
		return jsonvalue.Value{}, invalid(fmt.Sprintf("invalid JWT: expected 3 parts, got %d", len(parts)), nil)
	}
	header, err := jwtSegment(parts[0])
	if err != nil {
		return jsonvalue.Value{}, invalid("invalid JWT header", err)
	}
	payload, err := jwtSegment(parts[1])
	if err != nil {
		return jsonvalue.Value{}, invalid("invalid JWT payload", err)
	}
	return jsonvalue.Object(
		jsonvalue.F("header", header),
		jsonvalue.F("payload", payload),
		jsonvalue.F("signature", jsonvalue.String(parts[2])),
	), nil
}

func jwtParts(input string) ([]string, bool) {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), "Bearer "))
	parts := strings.Split(input, ".")
	if len(parts) != 3 {
		return parts, false
	}
	for _, p := range parts {
		if p == "" {
			return parts, false
		}
	}
	return parts, true
}

func jwtSegment(part string) (jsonvalue.Value, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(part)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	v, err := jsonvalue.ParseJSON(decoded)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if !v.IsObject() {
		return jsonvalue.Value{}, fmt.Errorf("segment is %s, not an object", v.Kind())
	}
	return v, nil
}
