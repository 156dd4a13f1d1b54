package domain

// OnlineUser is one entry of a presence snapshot.
type OnlineUser struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// PresenceSnapshot is the set of identities currently reachable through at
// least one live connection. It is derived from the connection registry at
// broadcast time and never persisted.
type PresenceSnapshot struct {
	Online []OnlineUser `json:"online"`
}
