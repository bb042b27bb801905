package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewIssuer("secret", "quiz-attempt-service", time.Hour)

	token, err := issuer.Issue("u1", "ada@example.com", "Ada")
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
	require.Equal(t, "ada@example.com", claims.Email)
	require.Equal(t, "Ada", claims.Name)
}

func TestParseRejectsBadTokens(t *testing.T) {
	issuer := NewIssuer("secret", "quiz-attempt-service", time.Hour)

	other, err := NewIssuer("other", "quiz-attempt-service", time.Hour).Issue("u1", "", "")
	require.NoError(t, err)
	_, err = issuer.Parse(other)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	expired := NewIssuer("secret", "quiz-attempt-service", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue("u1", "", "")
	require.NoError(t, err)
	_, err = issuer.Parse(old)
	require.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Parse(none)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueRequiresSubject(t *testing.T) {
	_, err := NewIssuer("secret", "", time.Hour).Issue("", "", "")
	require.Error(t, err)
}

func TestCallerContext(t *testing.T) {
	require.Equal(t, Caller{}, CallerFromContext(context.Background()))

	ctx := WithCaller(context.Background(), Caller{UserID: "u1"})
	require.Equal(t, "u1", CallerFromContext(ctx).UserID)
}
