package domain

import (
	"github.com/google/uuid"
)

// IdentityKind discriminates the shopper identity union.
type IdentityKind string

const (
	IdentityKindAnonymous IdentityKind = "anonymous"
	IdentityKindGuest     IdentityKind = "guest"
	IdentityKindUser      IdentityKind = "user"
)

// Identity is the resolved shopper for a request: an authenticated user,
// a guest session, or nobody. It is a tagged union rather than a pair of
// nullable IDs so the "both set" and "both unset while acting" states are
// unrepresentable.
type Identity struct {
	kind    IdentityKind
	userID  uuid.UUID
	guestID uuid.UUID
}

// AnonymousIdentity returns the identity of a visitor with no session.
func AnonymousIdentity() Identity {
	return Identity{kind: IdentityKindAnonymous}
}

// UserIdentity returns the identity of an authenticated user.
func UserIdentity(userID uuid.UUID) Identity {
	return Identity{kind: IdentityKindUser, userID: userID}
}

// GuestIdentity returns the identity of a guest session.
func GuestIdentity(guestSessionID uuid.UUID) Identity {
	return Identity{kind: IdentityKindGuest, guestID: guestSessionID}
}

// Kind reports which arm of the union this identity is.
func (i Identity) Kind() IdentityKind {
	if i.kind == "" {
		return IdentityKindAnonymous
	}
	return i.kind
}

// IsAnonymous reports whether no session of either kind was resolved.
func (i Identity) IsAnonymous() bool {
	return i.Kind() == IdentityKindAnonymous
}

// UserID returns the user ID and true when the identity is a user.
func (i Identity) UserID() (uuid.UUID, bool) {
	if i.kind != IdentityKindUser {
		return uuid.Nil, false
	}
	return i.userID, true
}

// GuestSessionID returns the guest session ID and true when the identity
// is a guest.
func (i Identity) GuestSessionID() (uuid.UUID, bool) {
	if i.kind != IdentityKindGuest {
		return uuid.Nil, false
	}
	return i.guestID, true
}

// CartOwner names the owner of a cart: exactly one of a user or a guest
// session. The zero value is not a valid owner.
type CartOwner struct {
	kind    IdentityKind
	userID  uuid.UUID
	guestID uuid.UUID
}

// UserCartOwner returns a cart owner for an authenticated user.
func UserCartOwner(userID uuid.UUID) CartOwner {
	return CartOwner{kind: IdentityKindUser, userID: userID}
}

// GuestCartOwner returns a cart owner for a guest session.
func GuestCartOwner(guestSessionID uuid.UUID) CartOwner {
	return CartOwner{kind: IdentityKindGuest, guestID: guestSessionID}
}

// CartOwnerFromIdentity converts a resolved identity into a cart owner.
// Returns false for anonymous identities, which cannot own carts.
func CartOwnerFromIdentity(id Identity) (CartOwner, bool) {
	switch id.Kind() {
	case IdentityKindUser:
		return UserCartOwner(id.userID), true
	case IdentityKindGuest:
		return GuestCartOwner(id.guestID), true
	default:
		return CartOwner{}, false
	}
}

// Kind reports which arm of the union this owner is.
func (o CartOwner) Kind() IdentityKind {
	return o.kind
}

// Valid reports whether the owner names a user or a guest session.
func (o CartOwner) Valid() bool {
	return o.kind == IdentityKindUser || o.kind == IdentityKindGuest
}

// UserID returns the owning user ID and true for user-owned carts.
func (o CartOwner) UserID() (uuid.UUID, bool) {
	if o.kind != IdentityKindUser {
		return uuid.Nil, false
	}
	return o.userID, true
}

// GuestSessionID returns the owning guest session ID and true for
// guest-owned carts.
func (o CartOwner) GuestSessionID() (uuid.UUID, bool) {
	if o.kind != IdentityKindGuest {
		return uuid.Nil, false
	}
	return o.guestID, true
}
