package auth

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/smart-hospital-client/internal/domain"
	apperrors "github.com/spec-kit/smart-hospital-client/pkg/util"
)

func unsignedToken(payload string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".sig"
}

func TestDecodeRejectsMalformedTokens(t *testing.T) {
	decoder := NewUnverifiedDecoder()

	tests := []struct {
		name  string
		token string
	}{
		{name: "absent", token: ""},
		{name: "one segment", token: "abc"},
		{name: "two segments", token: "abc.def"},
		{name: "four segments", token: "a.b.c.d"},
		{name: "payload not base64", token: "h.!!!notbase64!!!.s"},
		{name: "payload not json", token: "h." + base64.RawURLEncoding.EncodeToString([]byte("role=manager")) + ".s"},
		{name: "payload json array", token: unsignedToken(`["manager"]`)},
		{name: "payload json null", token: unsignedToken(`null`)},
		{name: "empty payload", token: "h..s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := decoder.Decode(tt.token)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeDecode), "want DECODE_ERROR, got %v", err)
		})
	}
}

func TestDecodeUnsignedPayload(t *testing.T) {
	claims, err := NewUnverifiedDecoder().Decode(unsignedToken(`{"user_id":"u-1","role":"manager","ward":"B"}`))
	require.NoError(t, err)

	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, domain.RoleManager, claims.Role)
	assert.Equal(t, "B", claims.Extra["ward"])
	assert.Nil(t, claims.ExpiresAt)
}

func TestDecodeStandardAlphabetPayload(t *testing.T) {
	// a run of '?' encodes to "Pz8/" in the standard alphabet
	payload := `{"role":"dean","note":"??????"}`
	segment := base64.StdEncoding.EncodeToString([]byte(payload))
	require.Contains(t, segment, "/")
	token := "h." + segment + ".s"

	claims, err := NewUnverifiedDecoder().Decode(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDean, claims.Role)
}

func TestDecodeDoesNotVerifySignatureOrExpiry(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	token, _, err := tm.GenerateToken(&domain.User{ID: "u-9", Role: domain.RoleCleaner, Email: "c@x.io"})
	require.NoError(t, err)

	// tamper with the signature; decoding must still succeed
	tampered := token[:len(token)-2] + "xx"
	claims, err := NewUnverifiedDecoder().Decode(tampered)
	require.NoError(t, err)
	assert.Equal(t, "u-9", claims.UserID)
	assert.Equal(t, domain.RoleCleaner, claims.Role)
	assert.Equal(t, "c@x.io", claims.Email)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *claims.ExpiresAt, time.Minute)

	expired := unsignedToken(`{"user_id":"u-1","role":"cleaner","exp":1}`)
	claims, err = NewUnverifiedDecoder().Decode(expired)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCleaner, claims.Role)
}

func TestDecodeNumericUserID(t *testing.T) {
	claims, err := NewUnverifiedDecoder().Decode(unsignedToken(`{"user_id":12345678901,"role":"cleaner"}`))
	require.NoError(t, err)
	assert.Equal(t, "12345678901", claims.UserID)
}

func TestDecodeMissingRoleYieldsEmptyRole(t *testing.T) {
	claims, err := NewUnverifiedDecoder().Decode(unsignedToken(`{"user_id":"u-1"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.Role(""), claims.Role)
	assert.False(t, claims.Role.Valid())
}

func TestDecodeIsPure(t *testing.T) {
	token := unsignedToken(`{"user_id":"u-2","role":"bmc_commissioner"}`)
	decoder := NewUnverifiedDecoder()

	first, err := decoder.Decode(token)
	require.NoError(t, err)
	second, err := decoder.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
