package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	apperrors "github.com/Alturino/catalog/internal/errors"
	"github.com/Alturino/catalog/internal/log"
	"github.com/Alturino/catalog/internal/otel"
)

const cacheKeyPrefix = "auth:token:"

type catalogClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// TokenValidator verifies bearer credentials against the signing authority.
// Results may be cached keyed by token hash; a zero ttl disables the cache
// so every request re-validates.
type TokenValidator struct {
	secretKey string
	issuer    string
	audience  string
	ttl       time.Duration
	cache     *redis.Client
}

func NewTokenValidator(
	secretKey string,
	issuer string,
	audience string,
	ttl time.Duration,
	cache *redis.Client,
) TokenValidator {
	return TokenValidator{
		secretKey: secretKey,
		issuer:    issuer,
		audience:  audience,
		ttl:       ttl,
		cache:     cache,
	}
}

func (v TokenValidator) Validate(c context.Context, token string) (Identity, error) {
	c, span := otel.Tracer.Start(c, "TokenValidator Validate")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "TokenValidator Validate").
		Logger()

	if token == "" {
		otel.RecordError(apperrors.ErrEmptyAuth, span)
		logger.Error().Err(apperrors.ErrEmptyAuth).Msg(apperrors.ErrEmptyAuth.Error())
		return Identity{}, apperrors.ErrEmptyAuth
	}

	cacheKey := cacheKeyPrefix + hashToken(token)
	if v.cached() {
		logger = logger.With().Str(log.KeyProcess, "finding identity in cache").Logger()
		logger.Trace().Msg("finding identity in cache")
		jsonCache, err := v.cache.Get(c, cacheKey).Result()
		if err == nil && jsonCache != "" {
			identity := Identity{}
			if err := json.Unmarshal([]byte(jsonCache), &identity); err == nil {
				span.AddEvent("found identity in cache")
				logger.Debug().Msg("found identity in cache")
				return identity, nil
			}
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			logger.Error().Err(err).Msg("failed finding identity in cache")
		}
	}

	logger = logger.With().Str(log.KeyProcess, "parsing claims").Logger()
	logger.Trace().Msg("parsing claims")
	span.AddEvent("parsing claims")
	claims := catalogClaims{}
	jwtToken, err := jwt.ParseWithClaims(token,
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(v.secretKey), nil
		},
		jwt.WithAudience(v.audience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(v.issuer),
	)
	if err != nil {
		err = fmt.Errorf("failed parsing claims with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Identity{}, apperrors.Wrap(apperrors.KindUnauthorized, err)
	}
	if !jwtToken.Valid {
		otel.RecordError(apperrors.ErrTokenInvalid, span)
		logger.Error().Err(apperrors.ErrTokenInvalid).Msg(apperrors.ErrTokenInvalid.Error())
		return Identity{}, apperrors.ErrTokenInvalid
	}
	span.AddEvent("parsed claims")
	logger.Trace().Msg("parsed claims")

	logger = logger.With().Str(log.KeyProcess, "parsing subject").Logger()
	logger.Trace().Msg("parsing subject")
	subject, err := claims.GetSubject()
	if err != nil {
		err = fmt.Errorf("failed getting subject from claims with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Identity{}, apperrors.Wrap(apperrors.KindUnauthorized, err)
	}
	principal, err := uuid.Parse(subject)
	if err != nil {
		err = fmt.Errorf("failed parsing subject=%s with error=%w", subject, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Identity{}, apperrors.Wrap(apperrors.KindUnauthorized, err)
	}
	identity := Identity{Principal: principal, Scopes: strings.Fields(claims.Scope)}
	logger = logger.With().Str(log.KeyPrincipal, principal.String()).Logger()
	logger.Info().Msg("validated token")

	if v.cached() {
		logger = logger.With().
			Str(log.KeyProcess, "inserting identity to cache").
			Str(log.KeyCacheKey, cacheKey).
			Logger()
		logger.Trace().Msg("inserting identity to cache")
		payload, err := json.Marshal(identity)
		if err == nil {
			err = v.cache.Set(c, cacheKey, payload, v.ttl).Err()
		}
		if err != nil {
			err = fmt.Errorf("failed inserting identity to cache with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		} else {
			logger.Debug().Msg("inserted identity to cache")
		}
	}

	return identity, nil
}

func (v TokenValidator) cached() bool {
	return v.ttl > 0 && v.cache != nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
