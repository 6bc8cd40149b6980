// Package session defines the gate the ledger consults before attempting
// remote calls. Authentication itself lives outside this module; the ledger
// only needs "current user id or none".
package session

// Gate supplies the current user identity, if any. A false second return
// forces the ledger into local-only operation.
type Gate interface {
	CurrentUserID() (string, bool)
}

type staticGate struct {
	userID string
}

// Static returns a gate fixed to the given user id. An empty id yields an
// anonymous, remote-incapable gate.
func Static(userID string) Gate {
	return staticGate{userID: userID}
}

// Anonymous returns a gate with no user, disabling remote sync.
func Anonymous() Gate {
	return staticGate{}
}

func (g staticGate) CurrentUserID() (string, bool) {
	return g.userID, g.userID != ""
}

// GateFunc adapts a function to the Gate interface, for callers whose
// identity provider is consulted per call.
type GateFunc func() (string, bool)

func (f GateFunc) CurrentUserID() (string, bool) { return f() }
