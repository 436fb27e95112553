// Package fault implements the error taxonomy of §7: every component that
// reports a failure wraps it in a Fault carrying one of the five kinds so
// callers can dispatch on Kind without string matching.
package fault

import "fmt"

// Kind classifies a Fault along the lines of §7's taxonomy.
type Kind int

const (
	// InvalidInput covers malformed packets, unknown commands, and
	// out-of-range parameters. Surfaced to the origin; does not abort the
	// tick.
	InvalidInput Kind = iota
	// Authorization covers permission denied, banned, not whitelisted, and
	// server-full conditions. Surfaced as a disconnect reason.
	Authorization
	// Persistence covers region read failures and NBT corruption. The
	// caller treats the chunk as absent and regenerates it.
	Persistence
	// ResourceExhaustion covers scheduled-tick overflow, piston pushes
	// beyond the limit, and chunks beyond 255 sectors. The operation aborts;
	// the world continues.
	ResourceExhaustion
	// Invariant covers internal invariant violations: negative entity ids,
	// paths pointing outside the arena, watcher sets referencing
	// disconnected players. The offending actor is removed; the world
	// continues.
	Invariant
)

// String returns the taxonomy name used in log fields.
func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case Authorization:
		return "authorization"
	case Persistence:
		return "persistence"
	case ResourceExhaustion:
		return "resource_exhaustion"
	case Invariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// Fault is an error tagged with a taxonomy Kind and, optionally, the actor
// (player, entity, chunk) whose scope the failure is clamped to.
type Fault struct {
	Kind  Kind
	Actor string
	Err   error
}

func (f *Fault) Error() string {
	if f.Actor != "" {
		return fmt.Sprintf("%s (%s): %v", f.Kind, f.Actor, f.Err)
	}
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// New builds a Fault of the given kind wrapping err, scoped to actor (may be
// empty when the failure has no single owning actor).
func New(kind Kind, actor string, err error) *Fault {
	return &Fault{Kind: kind, Actor: actor, Err: err}
}

// Invalid builds an InvalidInput fault.
func Invalid(actor string, err error) *Fault { return New(InvalidInput, actor, err) }

// Unauthorized builds an Authorization fault.
func Unauthorized(actor string, err error) *Fault { return New(Authorization, actor, err) }

// Persist builds a Persistence fault.
func Persist(actor string, err error) *Fault { return New(Persistence, actor, err) }

// Exhausted builds a ResourceExhaustion fault.
func Exhausted(actor string, err error) *Fault { return New(ResourceExhaustion, actor, err) }

// Invalidated builds an Invariant fault.
func Invalidated(actor string, err error) *Fault { return New(Invariant, actor, err) }
