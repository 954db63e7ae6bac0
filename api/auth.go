// Package api - HTTP API surface
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

// Scopes guarding the telemetry routes
const (
	ScopeTelemetryWrite   = "write:gdm_telemetry"
	ScopeTelemetryRead    = "read:gdm_telemetry"
	ScopeTelemetryReadAll = "read:gdm_telemetry_all"
)

type contextKey string

// accessTokenContextKey carries the verified access token of a request
const accessTokenContextKey contextKey = "access-token"

// AccessToken a verified bearer token
type AccessToken struct {
	// Claims the raw token claims
	Claims jwt.MapClaims
	// Scopes granted scopes
	Scopes map[string]bool
}

/*
ParseAccessToken parse and verify a bearer token

The "scope" claim is accepted as either a space-delimited string or a list of
strings.

	@param tokenString string - the raw bearer token
	@param secret string - HMAC signing secret
	@returns verified token
*/
func ParseAccessToken(tokenString string, secret string) (AccessToken, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return AccessToken{}, fmt.Errorf("bearer token rejected [%w]", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return AccessToken{}, errors.New("bearer token rejected")
	}

	scopes := map[string]bool{}
	switch scopeClaim := claims["scope"].(type) {
	case string:
		for _, scope := range strings.Fields(scopeClaim) {
			scopes[scope] = true
		}
	case []interface{}:
		for _, entry := range scopeClaim {
			if scope, ok := entry.(string); ok {
				scopes[scope] = true
			}
		}
	}

	return AccessToken{Claims: claims, Scopes: scopes}, nil
}

// HasScope whether the token grants a scope
func (t AccessToken) HasScope(scope string) bool {
	return t.Scopes[scope]
}

// Subject the token subject, or empty when absent
func (t AccessToken) Subject() string {
	if sub, ok := t.Claims["sub"].(string); ok {
		return sub
	}
	return ""
}

// ClaimMatches whether a string claim carries exactly this value
func (t AccessToken) ClaimMatches(name string, value string) bool {
	claim, ok := t.Claims[name].(string)
	return ok && claim == value
}

// ======================================================================================
// Route guards

// RoutePolicy decides whether a verified token may use a route
type RoutePolicy func(token AccessToken, pathVars map[string]string) bool

// RequireScope pass when the token grants the scope
func RequireScope(scope string) RoutePolicy {
	return func(token AccessToken, _ map[string]string) bool {
		return token.HasScope(scope)
	}
}

// OwnerPathMatch pass when the named path parameter equals the token claim of
// the same name. This pins a caller to their own records.
func OwnerPathMatch(pathVar string) RoutePolicy {
	return func(token AccessToken, pathVars map[string]string) bool {
		owner, ok := pathVars[pathVar]
		return ok && token.ClaimMatches(pathVar, owner)
	}
}

// AllOf pass when every policy passes
func AllOf(policies ...RoutePolicy) RoutePolicy {
	return func(token AccessToken, pathVars map[string]string) bool {
		for _, policy := range policies {
			if !policy(token, pathVars) {
				return false
			}
		}
		return true
	}
}

// AnyOf pass when at least one policy passes
func AnyOf(policies ...RoutePolicy) RoutePolicy {
	return func(token AccessToken, pathVars map[string]string) bool {
		for _, policy := range policies {
			if policy(token, pathVars) {
				return true
			}
		}
		return false
	}
}

// ======================================================================================
// Middleware

/*
protected wrap a route with bearer token verification and a route policy

Requests without a verifiable token get 401. Requests whose token fails the
policy get 403.

	@param jwtSecret string - HMAC signing secret
	@param policy RoutePolicy - route access policy
	@param next http.HandlerFunc - the route handler
	@return wrapped handler
*/
func protected(jwtSecret string, policy RoutePolicy, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		token, err := ParseAccessToken(parts[1], jwtSecret)
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		if !policy(token, mux.Vars(r)) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), accessTokenContextKey, token)
		next(w, r.WithContext(ctx))
	}
}

// requestAccessToken the verified token attached by `protected`
func requestAccessToken(ctx context.Context) (AccessToken, bool) {
	token, ok := ctx.Value(accessTokenContextKey).(AccessToken)
	return token, ok
}
