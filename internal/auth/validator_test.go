package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	apperrors "github.com/Alturino/catalog/internal/errors"
)

const (
	testSecret   = "test-secret-key"
	testIssuer   = "hedonify"
	testAudience = "catalog-service"
)

func signToken(t *testing.T, secret string, claims catalogClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed signing token with error: %s", err)
	}
	return token
}

func testClaims(subject string, expiresAt time.Time, scope string) catalogClaims {
	return catalogClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
}

func TestValidateToken(t *testing.T) {
	principal := uuid.New()

	tests := []struct {
		name           string
		token          func() string
		expectedKind   apperrors.Kind
		expectedScopes []string
	}{
		{
			name: "given valid token should return identity",
			token: func() string {
				return signToken(t, testSecret, testClaims(principal.String(), time.Now().Add(time.Hour), "catalog:read catalog:write"))
			},
			expectedScopes: []string{"catalog:read", "catalog:write"},
		},
		{
			name:         "given empty token should return unauthorized",
			token:        func() string { return "" },
			expectedKind: apperrors.KindUnauthorized,
		},
		{
			name:         "given malformed token should return unauthorized",
			token:        func() string { return "not.a.jwt" },
			expectedKind: apperrors.KindUnauthorized,
		},
		{
			name: "given expired token should return unauthorized",
			token: func() string {
				return signToken(t, testSecret, testClaims(principal.String(), time.Now().Add(-time.Hour), "catalog:read"))
			},
			expectedKind: apperrors.KindUnauthorized,
		},
		{
			name: "given token signed with wrong secret should return unauthorized",
			token: func() string {
				return signToken(t, "other-secret", testClaims(principal.String(), time.Now().Add(time.Hour), "catalog:read"))
			},
			expectedKind: apperrors.KindUnauthorized,
		},
		{
			name: "given token with wrong audience should return unauthorized",
			token: func() string {
				claims := testClaims(principal.String(), time.Now().Add(time.Hour), "catalog:read")
				claims.Audience = jwt.ClaimStrings{"order-service"}
				return signToken(t, testSecret, claims)
			},
			expectedKind: apperrors.KindUnauthorized,
		},
		{
			name: "given token with wrong issuer should return unauthorized",
			token: func() string {
				claims := testClaims(principal.String(), time.Now().Add(time.Hour), "catalog:read")
				claims.Issuer = "someone-else"
				return signToken(t, testSecret, claims)
			},
			expectedKind: apperrors.KindUnauthorized,
		},
		{
			name: "given token with non uuid subject should return unauthorized",
			token: func() string {
				return signToken(t, testSecret, testClaims("not-a-uuid", time.Now().Add(time.Hour), "catalog:read"))
			},
			expectedKind: apperrors.KindUnauthorized,
		},
	}

	validator := NewTokenValidator(testSecret, testIssuer, testAudience, 0, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := zerolog.New(os.Stdout).WithContext(context.Background())

			identity, err := validator.Validate(c, tt.token())
			if tt.expectedKind != "" {
				assert.Error(t, err)
				assert.EqualValues(t, tt.expectedKind, apperrors.KindOf(err))
				return
			}
			assert.NoError(t, err)
			assert.EqualValues(t, principal, identity.Principal)
			assert.EqualValues(t, tt.expectedScopes, identity.Scopes)
		})
	}
}

func TestValidateTokenCached(t *testing.T) {
	c := zerolog.New(os.Stdout).WithContext(context.Background())

	redisContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	defer func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	redisConnStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}
	redisOpt, err := redis.ParseURL(redisConnStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}
	redisClient := redis.NewClient(redisOpt)
	defer redisClient.Close()

	principal := uuid.New()
	token := signToken(t, testSecret, testClaims(principal.String(), time.Now().Add(time.Hour), "catalog:read"))
	validator := NewTokenValidator(testSecret, testIssuer, testAudience, time.Minute, redisClient)

	first, err := validator.Validate(c, token)
	assert.NoError(t, err)
	assert.EqualValues(t, principal, first.Principal)

	cached, err := redisClient.Exists(c, cacheKeyPrefix+hashToken(token)).Result()
	assert.NoError(t, err)
	assert.EqualValues(t, 1, cached, "identity should be cached after first validation")

	second, err := validator.Validate(c, token)
	assert.NoError(t, err)
	assert.EqualValues(t, first, second, "cached identity should match the first validation")
}
