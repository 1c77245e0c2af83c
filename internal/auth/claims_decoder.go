package auth

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/smart-hospital-client/internal/domain"
	apperrors "github.com/spec-kit/smart-hospital-client/pkg/util"
)

// ClaimsDecoder extracts the identity payload from a session token.
type ClaimsDecoder interface {
	Decode(token string) (*domain.Claims, error)
}

// UnverifiedDecoder reads the payload segment of a three-part token without
// checking its signature or expiry. The result may only drive routing; the
// server authorizes every request on its own.
type UnverifiedDecoder struct {
	parser *jwt.Parser
}

// NewUnverifiedDecoder returns a decoder accepting padded and unpadded segments.
func NewUnverifiedDecoder() *UnverifiedDecoder {
	return &UnverifiedDecoder{parser: jwt.NewParser(jwt.WithPaddingAllowed())}
}

// Decode returns the claims carried by token, or a DECODE_ERROR when the token
// is empty, does not have three segments, or its payload is not base64 JSON.
func (d *UnverifiedDecoder) Decode(token string) (*domain.Claims, error) {
	if token == "" {
		return nil, apperrors.NewDecodeError("token absent", nil)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, apperrors.NewDecodeError(fmt.Sprintf("token has %d segments, want 3", len(parts)), nil)
	}

	payload, err := d.decodeSegment(parts[1])
	if err != nil {
		return nil, apperrors.NewDecodeError("payload is not base64", err)
	}

	var raw jwt.MapClaims
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, apperrors.NewDecodeError("payload is not a JSON object", err)
	}
	if raw == nil {
		return nil, apperrors.NewDecodeError("payload is not a JSON object", nil)
	}

	return claimsFromMap(raw), nil
}

// decodeSegment accepts the base64url alphabet used by JWTs and falls back to
// the standard alphabet some issuers emit.
func (d *UnverifiedDecoder) decodeSegment(seg string) ([]byte, error) {
	out, err := d.parser.DecodeSegment(seg)
	if err == nil {
		return out, nil
	}
	if std, stdErr := base64.StdEncoding.DecodeString(padSegment(seg)); stdErr == nil {
		return std, nil
	}
	return nil, err
}

func padSegment(seg string) string {
	if m := len(seg) % 4; m != 0 {
		seg += strings.Repeat("=", 4-m)
	}
	return seg
}

func claimsFromMap(raw jwt.MapClaims) *domain.Claims {
	claims := &domain.Claims{
		UserID:   stringClaim(raw, "user_id"),
		Role:     domain.Role(stringClaim(raw, "role")),
		Email:    stringClaim(raw, "email"),
		FullName: stringClaim(raw, "full_name"),
		Extra:    make(map[string]any),
	}
	if claims.UserID == "" {
		claims.UserID = stringClaim(raw, "sub")
	}
	if exp, err := raw.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		claims.ExpiresAt = &t
	}
	for key, val := range raw {
		switch key {
		case "user_id", "role", "email", "full_name":
			continue
		}
		claims.Extra[key] = val
	}
	return claims
}

func stringClaim(raw jwt.MapClaims, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
