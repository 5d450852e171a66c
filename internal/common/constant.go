// Package common contains shared constants, sentinel errors and small helpers
// used across the trading journal server.
package common

import "time"

// SessionCookieName is the cookie carrying the session credential.
const SessionCookieName = "session"

// AuthorizationHeaderName carries "Bearer <token>" credentials, which take
// precedence over the cookie.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the scheme prefix expected in the Authorization header.
const BearerPrefix = "Bearer "

// DefaultSessionTTL is the lifetime of a session credential.
const DefaultSessionTTL = 7 * 24 * time.Hour

// MinPasswordLength is the shortest password accepted at registration and reset.
const MinPasswordLength = 8
