package services

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duopet-backend/models"
)

func testUser() *models.User {
	return &models.User{ID: 42, LoginID: "mong", Nickname: "몽이", Role: models.RoleVet}
}

func TestTokenService_RoundTrip(t *testing.T) {
	t.Parallel()

	clock := newTestClock()
	svc := NewTokenService(testSecret, 30*time.Minute, 24*time.Hour, clock.Now)

	for _, category := range []string{models.CategoryAccess, models.CategoryRefresh} {
		tok, exp, err := svc.Issue(testUser(), category)
		require.NoError(t, err)

		claims, err := svc.ParseClaims(tok)
		require.NoError(t, err)
		assert.Equal(t, "mong", claims.Subject)
		assert.Equal(t, int64(42), claims.UserNo)
		assert.Equal(t, models.RoleVet, claims.Role)
		assert.Equal(t, category, claims.Category)
		assert.Equal(t, "몽이", claims.Nickname)
		assert.True(t, claims.ExpiresAt.Time.Equal(exp))

		got, err := svc.Expiration(tok)
		require.NoError(t, err)
		assert.True(t, got.Equal(exp))
	}

	refresh, exp, err := svc.Issue(testUser(), models.CategoryRefresh)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(24*time.Hour), exp)

	sub, err := svc.Subject(refresh)
	require.NoError(t, err)
	assert.Equal(t, "mong", sub)
	id, err := svc.UserID(refresh)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	role, err := svc.Role(refresh)
	require.NoError(t, err)
	assert.Equal(t, models.RoleVet, role)
	cat, err := svc.Category(refresh)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryRefresh, cat)
}

func TestTokenService_ExpiredStillParses(t *testing.T) {
	t.Parallel()

	clock := newTestClock()
	svc := NewTokenService(testSecret, time.Minute, time.Hour, clock.Now)

	tok, _, err := svc.Issue(testUser(), models.CategoryAccess)
	require.NoError(t, err)

	expired, err := svc.IsExpired(tok)
	require.NoError(t, err)
	assert.False(t, expired)

	clock.Advance(2 * time.Minute)

	claims, err := svc.ParseClaims(tok)
	require.NoError(t, err)
	assert.Equal(t, "mong", claims.Subject)

	expired, err = svc.IsExpired(tok)
	require.NoError(t, err)
	assert.True(t, expired)
	assert.Zero(t, svc.Remaining(claims))
}

func TestTokenService_ExpiresExactlyAtExp(t *testing.T) {
	t.Parallel()

	clock := newTestClock()
	svc := NewTokenService(testSecret, time.Minute, time.Hour, clock.Now)

	tok, _, err := svc.Issue(testUser(), models.CategoryAccess)
	require.NoError(t, err)

	clock.Advance(time.Minute)
	expired, err := svc.IsExpired(tok)
	require.NoError(t, err)
	assert.True(t, expired)
}

func TestTokenService_Malformed(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(testSecret, time.Minute, time.Hour, nil)

	for _, in := range []string{"", "   ", "not-a-jwt", "a.b"} {
		_, err := svc.ParseClaims(in)
		if !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("ParseClaims(%q): want ErrMalformedToken, got %v", in, err)
		}
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	t.Parallel()

	clock := newTestClock()
	other := NewTokenService("another-secret-another-secret-another-secret!!", time.Minute, time.Hour, clock.Now)
	svc := NewTokenService(testSecret, time.Minute, time.Hour, clock.Now)

	tok, _, err := other.Issue(testUser(), models.CategoryAccess)
	require.NoError(t, err)

	_, err = svc.ParseClaims(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// an expired token signed with the wrong key is still invalid, not expired
	clock.Advance(time.Hour)
	_, err = svc.ParseClaims(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(testSecret, time.Minute, time.Hour, nil)

	claims := models.Claims{
		UserNo:   1,
		Category: models.CategoryAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "mong",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.ParseClaims(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_VerifyCategory(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(testSecret, time.Minute, time.Hour, nil)

	access, _, err := svc.Issue(testUser(), models.CategoryAccess)
	require.NoError(t, err)
	refresh, _, err := svc.Issue(testUser(), models.CategoryRefresh)
	require.NoError(t, err)

	_, err = svc.Verify(access, models.CategoryAccess)
	assert.NoError(t, err)

	_, err = svc.Verify(access, models.CategoryRefresh)
	assert.ErrorIs(t, err, ErrTokenCategory)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Verify(refresh, models.CategoryAccess)
	assert.ErrorIs(t, err, ErrTokenCategory)
}

func TestTokenService_UnknownCategory(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(testSecret, time.Minute, time.Hour, nil)
	_, _, err := svc.Issue(testUser(), "id")
	assert.Error(t, err)
}

func TestTokenService_UniqueIDPerToken(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(testSecret, 30*time.Minute, 24*time.Hour, newTestClock().Now)

	a, _, err := svc.Issue(testUser(), models.CategoryRefresh)
	require.NoError(t, err)
	b, _, err := svc.Issue(testUser(), models.CategoryRefresh)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	ca, err := svc.ParseClaims(a)
	require.NoError(t, err)
	cb, err := svc.ParseClaims(b)
	require.NoError(t, err)
	assert.NotEmpty(t, ca.ID)
	assert.NotEqual(t, ca.ID, cb.ID)
}
