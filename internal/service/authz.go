package service

import (
	"context"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// RoleLookup maps an authenticated user to a role. It is the role half of the
// authorization gate; identity verification is the JWT middleware's job.
type RoleLookup interface {
	RoleOf(ctx context.Context, userID uuid.UUID) (Role, error)
}

type staticRoleLookup struct {
	roles map[uuid.UUID]Role
}

// NewStaticRoleLookup builds a RoleLookup from configured user ID lists.
// Unknown users resolve to RoleUser. IDs that fail to parse are skipped.
func NewStaticRoleLookup(adminIDs, moderatorIDs []string) RoleLookup {
	roles := make(map[uuid.UUID]Role, len(adminIDs)+len(moderatorIDs))
	for _, s := range moderatorIDs {
		if id, err := uuid.Parse(s); err == nil {
			roles[id] = RoleModerator
		}
	}
	for _, s := range adminIDs {
		if id, err := uuid.Parse(s); err == nil {
			roles[id] = RoleAdmin
		}
	}
	return &staticRoleLookup{roles: roles}
}

func (l *staticRoleLookup) RoleOf(_ context.Context, userID uuid.UUID) (Role, error) {
	if role, ok := l.roles[userID]; ok {
		return role, nil
	}
	return RoleUser, nil
}
