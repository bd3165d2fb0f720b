package services

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/attunelab/attune-backend/internal/logger"
	"github.com/attunelab/attune-backend/internal/requestdata"
)

// SessionVerifier is the boundary to the external session collaborator: this
// subsystem only extracts an already-issued identity, it never issues or
// refreshes sessions.
type SessionVerifier interface {
	Verify(ctx context.Context, tokenString string) (*requestdata.RequestData, error)
}

type jwtSessionVerifier struct {
	log    *logger.Logger
	secret []byte
}

func NewJWTSessionVerifier(baseLog *logger.Logger, secret string) SessionVerifier {
	return &jwtSessionVerifier{
		log:    baseLog.With("service", "SessionVerifier"),
		secret: []byte(secret),
	}
}

func (v *jwtSessionVerifier) Verify(_ context.Context, tokenString string) (*requestdata.RequestData, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	rd := &requestdata.RequestData{TokenString: tokenString}
	rd.UserID = claimUUID(claims, "user_id")
	rd.TherapistID = claimUUID(claims, "therapist_id")
	rd.CoupleID = claimUUID(claims, "couple_id")
	if rd.UserID == uuid.Nil && rd.TherapistID == uuid.Nil {
		return nil, fmt.Errorf("token carries no identity")
	}
	return rd, nil
}

func claimUUID(claims jwt.MapClaims, key string) uuid.UUID {
	raw, ok := claims[key].(string)
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
