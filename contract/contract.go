//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes, avoiding the need for
// manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Peer is one live, authenticated connection as seen by the registry and
// the fan-out paths. Identity is immutable for the lifetime of the peer,
// and Push must never block on network I/O.
type Peer interface {
	ID() string
	Identity() domain.Identity
	Push(frame []byte) error
}

// IRegistry is the single source of truth for who is online.
// All operations are safe under arbitrary concurrent callers; mutations are
// totally ordered relative to reads, so no snapshot observes a connection
// mid-registration.
type IRegistry interface {
	Register(connID string, peer Peer)
	Unregister(connID string)
	Snapshot() []Peer
	Find(identityID string) []Peer
	Len() int
}

// IPresence recomputes the online snapshot and pushes it to every live
// connection. Best effort per connection.
type IPresence interface {
	Broadcast()
}
