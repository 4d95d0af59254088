package common

import (
	"errors"
	"fmt"
	"time"

	"clientflow/leadboard/internal/constants"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenUsed    = errors.New("token already used")
	ErrTokenExpired = errors.New("token expired")
)

// CallbackToken is the verified content of a webhook callback token
type CallbackToken struct {
	Kind      constants.CallbackKind
	TableID   string
	RowID     string
	TokenID   string
	ExpiresAt time.Time
}

// CallbackSigner issues and checks the single-use tokens embedded in the callback URLs
// handed to enrichment webhooks
type CallbackSigner struct {
	secretKey []byte
	cache     CacheInterface
}

// NewCallbackSigner creates a new callback signer
func NewCallbackSigner(secretKey []byte, cache CacheInterface) *CallbackSigner {
	return &CallbackSigner{
		secretKey: secretKey,
		cache:     cache,
	}
}

// Sign creates a token allowing one callback for the given row
func (s *CallbackSigner) Sign(kind constants.CallbackKind, tableID, rowID string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"kind":     string(kind),
		"table_id": tableID,
		"row_id":   rowID,
		"jti":      uuid.New().String(),
		"exp":      now.Add(ttl).Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate checks signature, expiry and prior use without consuming the token
func (s *CallbackSigner) Validate(tokenString string) (*CallbackToken, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	kind, ok := (*claims)["kind"].(string)
	if !ok {
		return nil, errors.New("missing or invalid kind claim")
	}

	tableID, ok := (*claims)["table_id"].(string)
	if !ok {
		return nil, errors.New("missing or invalid table_id claim")
	}

	rowID, ok := (*claims)["row_id"].(string)
	if !ok {
		return nil, errors.New("missing or invalid row_id claim")
	}

	tokenID, ok := (*claims)["jti"].(string)
	if !ok {
		return nil, errors.New("missing or invalid jti claim")
	}

	expFloat, ok := (*claims)["exp"].(float64)
	if !ok {
		return nil, errors.New("missing or invalid exp claim")
	}
	expiresAt := time.Unix(int64(expFloat), 0)

	if time.Now().After(expiresAt) {
		return nil, ErrTokenExpired
	}

	if _, used := s.cache.Get(string(constants.CachePrefixUsedToken) + tokenID); used {
		return nil, ErrTokenUsed
	}

	return &CallbackToken{
		Kind:      constants.CallbackKind(kind),
		TableID:   tableID,
		RowID:     rowID,
		TokenID:   tokenID,
		ExpiresAt: expiresAt,
	}, nil
}

// Consume marks the token as used. It fails with ErrTokenUsed when another request
// got there first.
func (s *CallbackSigner) Consume(token *CallbackToken) error {
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return ErrTokenExpired
	}

	if !s.cache.Add(string(constants.CachePrefixUsedToken)+token.TokenID, "1", ttl) {
		return ErrTokenUsed
	}
	return nil
}
