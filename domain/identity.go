// Package domain contains core concepts of the messaging system.
// This file defines the Identity behind an authenticated connection.
// No runtime, network, or UI logic should be added here.
package domain

// Identity is the resolved, authenticated principal behind a connection.
// Immutable once resolved for a session; supplied by the auth service.
type Identity struct {
	ID       string
	Username string
}
