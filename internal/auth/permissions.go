package auth

import "github.com/google/uuid"

// Actor is the resolved identity behind a request. A nil *Actor means the
// request is anonymous.
type Actor struct {
	ID          uuid.UUID
	Username    string
	IsStaff     bool
	IsSuperuser bool
}

// HasOwner is implemented by entities that belong to a single account.
// Permission checks use it instead of reflecting over field names, so the
// ownership contract is checkable at compile time.
type HasOwner interface {
	OwnerID() uuid.UUID
}

// AnyoneReadSuperuserWrite grants reads to everyone, including anonymous
// requests, and writes only to authenticated superusers.
func AnyoneReadSuperuserWrite(actor *Actor, write bool) bool {
	if !write {
		return true
	}
	return IsSuperuser(actor)
}

// SuperuserOnly grants any access only to an authenticated superuser.
func SuperuserOnly(actor *Actor) bool {
	return IsSuperuser(actor)
}

// OwnerOrSuperuser grants object access to superusers and to the object's
// owner. Objects that do not expose an owner are denied, never an error.
func OwnerOrSuperuser(actor *Actor, obj any) bool {
	if actor == nil {
		return false
	}
	if actor.IsSuperuser {
		return true
	}
	owned, ok := obj.(HasOwner)
	if !ok {
		return false
	}
	owner := owned.OwnerID()
	return owner != uuid.Nil && owner == actor.ID
}

func IsSuperuser(actor *Actor) bool {
	return actor != nil && actor.IsSuperuser
}

func IsAuthenticated(actor *Actor) bool {
	return actor != nil && actor.ID != uuid.Nil
}
