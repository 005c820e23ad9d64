package auth

import (
	"testing"

	"github.com/google/uuid"
)

type ownedThing struct {
	owner uuid.UUID
}

func (o ownedThing) OwnerID() uuid.UUID { return o.owner }

type ownerlessThing struct{}

func TestAnyoneReadSuperuserWrite(t *testing.T) {
	super := &Actor{ID: uuid.New(), IsSuperuser: true}
	regular := &Actor{ID: uuid.New()}

	if !AnyoneReadSuperuserWrite(nil, false) {
		t.Fatal("anonymous read denied")
	}
	if AnyoneReadSuperuserWrite(nil, true) {
		t.Fatal("anonymous write allowed")
	}
	if AnyoneReadSuperuserWrite(regular, true) {
		t.Fatal("non-superuser write allowed")
	}
	if !AnyoneReadSuperuserWrite(super, true) {
		t.Fatal("superuser write denied")
	}
}

func TestSuperuserOnly(t *testing.T) {
	if SuperuserOnly(nil) {
		t.Fatal("anonymous allowed")
	}
	if SuperuserOnly(&Actor{ID: uuid.New()}) {
		t.Fatal("regular user allowed")
	}
	if !SuperuserOnly(&Actor{ID: uuid.New(), IsSuperuser: true}) {
		t.Fatal("superuser denied")
	}
}

func TestOwnerOrSuperuser(t *testing.T) {
	ownerID := uuid.New()
	owner := &Actor{ID: ownerID}
	other := &Actor{ID: uuid.New()}
	super := &Actor{ID: uuid.New(), IsSuperuser: true}
	obj := ownedThing{owner: ownerID}

	if !OwnerOrSuperuser(owner, obj) {
		t.Fatal("owner denied")
	}
	if OwnerOrSuperuser(other, obj) {
		t.Fatal("stranger allowed")
	}
	if !OwnerOrSuperuser(super, obj) {
		t.Fatal("superuser denied")
	}
	if OwnerOrSuperuser(nil, obj) {
		t.Fatal("anonymous allowed")
	}
}

func TestOwnerOrSuperuserDeniesOwnerlessObjects(t *testing.T) {
	actor := &Actor{ID: uuid.New()}
	if OwnerOrSuperuser(actor, ownerlessThing{}) {
		t.Fatal("object without owner allowed")
	}
	if OwnerOrSuperuser(actor, ownedThing{}) {
		t.Fatal("zero-uuid owner treated as match")
	}
}
