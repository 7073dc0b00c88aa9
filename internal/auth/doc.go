// Package auth issues and verifies bearer tokens, hashes passwords and
// carries the authenticated user id through request contexts.
package auth
