// Package auth authenticates requests to the CAD/MDT service.
//
// # Overview
//
// Identity (sign-up, social login, magic links) lives in a separate service. This
// package only verifies the opaque tokens that service issues and loads the user they
// belong to, so downstream code can look up organization membership by user ID.
//
// # Tokens
//
// Token format: cad_[base64url(32 random bytes)]
//
// Only the SHA256 hash is stored (api_tokens.token_hash). The first eight encoded
// characters are kept as token_prefix for display. Tokens may carry an expiry and can
// be revoked; either makes Authenticate return ErrInvalidToken.
//
//	store := auth.NewTokenStore(db)
//	authCtx, err := store.Authenticate(ctx, presented)
//	if errors.Is(err, auth.ErrInvalidToken) {
//		// 401
//	}
//
// Browser pages send the same token in the cadmdt_session cookie; API clients use
// "Authorization: Bearer cad_...". See middleware.AuthMiddleware.
package auth
