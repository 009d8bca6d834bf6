package appointment

import "github.com/google/uuid"

// Participants maps the tagged role set to user ids so callers resolve
// "which role is this user" once instead of re-checking three nullable fields.
type Participants struct {
	byRole map[Role]uuid.UUID
}

func NewParticipants(customer, storeOwner, freeBarber *uuid.UUID) Participants {
	byRole := make(map[Role]uuid.UUID, 3)
	if customer != nil {
		byRole[RoleCustomer] = *customer
	}
	if storeOwner != nil {
		byRole[RoleStoreOwner] = *storeOwner
	}
	if freeBarber != nil {
		byRole[RoleFreeBarber] = *freeBarber
	}
	return Participants{byRole: byRole}
}

func (p Participants) RoleOf(userID uuid.UUID) (Role, bool) {
	for role, id := range p.byRole {
		if id == userID {
			return role, true
		}
	}
	return "", false
}

func (p Participants) ID(role Role) (uuid.UUID, bool) {
	id, ok := p.byRole[role]
	return id, ok
}

func (p Participants) IDPtr(role Role) *uuid.UUID {
	if id, ok := p.byRole[role]; ok {
		return &id
	}
	return nil
}

func (p Participants) Contains(userID uuid.UUID) bool {
	_, ok := p.RoleOf(userID)
	return ok
}

// IDs returns the distinct participant ids, at most one per role.
func (p Participants) IDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(p.byRole))
	ids := make([]uuid.UUID, 0, len(p.byRole))
	for _, role := range []Role{RoleCustomer, RoleStoreOwner, RoleFreeBarber} {
		id, ok := p.byRole[role]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func (p Participants) Len() int {
	return len(p.byRole)
}
