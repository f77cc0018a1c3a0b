package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// TokenPrefix identifies CAD/MDT tokens
	TokenPrefix = "cad_"
	// TokenLength is the total length of random bytes (32 bytes = 256 bits)
	TokenLength = 32
)

// TokenGenerator generates and validates API tokens
type TokenGenerator struct{}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{}
}

// GenerateToken creates a new API token
// Format: cad_<base64url(32 random bytes)>
func (tg *TokenGenerator) GenerateToken() (token string, tokenHash string, tokenPrefix string, err error) {
	randomBytes := make([]byte, TokenLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	encodedToken := base64.RawURLEncoding.EncodeToString(randomBytes)
	fullToken := TokenPrefix + encodedToken

	return fullToken, tg.HashToken(fullToken), tg.ExtractPrefix(fullToken), nil
}

// HashToken computes the SHA256 hash of a token for lookup
func (tg *TokenGenerator) HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// ValidateTokenFormat checks if a token has the correct format
func (tg *TokenGenerator) ValidateTokenFormat(token string) error {
	if !strings.HasPrefix(token, TokenPrefix) {
		return fmt.Errorf("token must start with %q", TokenPrefix)
	}

	encodedPart := strings.TrimPrefix(token, TokenPrefix)
	if len(encodedPart) == 0 {
		return fmt.Errorf("token is too short")
	}

	if _, err := base64.RawURLEncoding.DecodeString(encodedPart); err != nil {
		return fmt.Errorf("invalid token encoding: %w", err)
	}

	return nil
}

// ExtractPrefix extracts the prefix from a token for display
func (tg *TokenGenerator) ExtractPrefix(token string) string {
	if !strings.HasPrefix(token, TokenPrefix) {
		return ""
	}

	encodedPart := strings.TrimPrefix(token, TokenPrefix)
	if len(encodedPart) >= 8 {
		return TokenPrefix + encodedPart[:8]
	}

	return token
}

// Authenticator turns a presented token into a user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*AuthContext, error)
}

// TokenStore looks tokens up in the api_tokens table
type TokenStore struct {
	db        *sql.DB
	generator *TokenGenerator
	now       func() time.Time
}

// NewTokenStore creates a new token store
func NewTokenStore(db *sql.DB) *TokenStore {
	return &TokenStore{
		db:        db,
		generator: NewTokenGenerator(),
		now:       time.Now,
	}
}

// Authenticate validates a token and loads its user. Every failure that is the
// caller's fault returns ErrInvalidToken; database failures are wrapped.
func (ts *TokenStore) Authenticate(ctx context.Context, token string) (*AuthContext, error) {
	if err := ts.generator.ValidateTokenFormat(token); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	query := `
		SELECT t.id, t.user_id, t.token_prefix, t.name, t.expires_at, t.revoked_at, t.created_at,
		       u.username, u.display_name, u.created_at
		FROM api_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.token_hash = $1
	`
	apiToken := &APIToken{TokenHash: ts.generator.HashToken(token)}
	user := &User{}
	var expiresAt, revokedAt sql.NullTime
	var displayName sql.NullString
	err := ts.db.QueryRowContext(ctx, query, apiToken.TokenHash).Scan(
		&apiToken.ID, &apiToken.UserID, &apiToken.TokenPrefix, &apiToken.Name,
		&expiresAt, &revokedAt, &apiToken.CreatedAt,
		&user.Username, &displayName, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	if expiresAt.Valid {
		apiToken.ExpiresAt = &expiresAt.Time
	}
	if revokedAt.Valid {
		apiToken.RevokedAt = &revokedAt.Time
	}
	if !apiToken.Usable(ts.now()) {
		return nil, ErrInvalidToken
	}

	user.ID = apiToken.UserID
	user.DisplayName = displayName.String

	return &AuthContext{User: user, Token: apiToken}, nil
}

// CreateToken stores a new token for the user and returns it. The plaintext token is
// only available here.
func (ts *TokenStore) CreateToken(ctx context.Context, userID int64, name string, expiresAt *time.Time) (*APIToken, string, error) {
	token, tokenHash, tokenPrefix, err := ts.generator.GenerateToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	apiToken := &APIToken{
		UserID:      userID,
		TokenHash:   tokenHash,
		TokenPrefix: tokenPrefix,
		Name:        name,
		ExpiresAt:   expiresAt,
		CreatedAt:   ts.now().UTC(),
	}

	query := `
		INSERT INTO api_tokens (user_id, token_hash, token_prefix, name, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err = ts.db.QueryRowContext(ctx, query,
		apiToken.UserID, apiToken.TokenHash, apiToken.TokenPrefix, apiToken.Name, apiToken.ExpiresAt, apiToken.CreatedAt,
	).Scan(&apiToken.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create token: %w", err)
	}

	return apiToken, token, nil
}

// RevokeToken marks a token as revoked
func (ts *TokenStore) RevokeToken(ctx context.Context, tokenID int64) error {
	result, err := ts.db.ExecContext(ctx,
		`UPDATE api_tokens SET revoked_at = $1 WHERE id = $2 AND revoked_at IS NULL`,
		ts.now().UTC(), tokenID,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrInvalidToken
	}
	return nil
}
