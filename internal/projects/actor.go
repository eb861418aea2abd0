package projects

import (
	"strings"

	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/models"
	"stockroom/pkg/roles"
)

// Actor is whoever performs a project operation. It is always passed in
// explicitly.
type Actor struct {
	Username string
	Name     string
	Role     roles.Role
}

func (a Actor) String() string {
	if a.Username != "" {
		return a.Username
	}
	return a.Name
}

func (a Actor) identifiers() map[string]struct{} {
	ids := map[string]struct{}{}
	for _, v := range []string{a.Username, a.Name} {
		if n := normalize(v); n != "" {
			ids[n] = struct{}{}
		}
	}
	return ids
}

// IsAssigned reports whether the actor is one of the project's workers,
// matched case-insensitively on name or username.
func (a Actor) IsAssigned(p *models.Project) bool {
	ids := a.identifiers()
	if len(ids) == 0 {
		return false
	}
	for _, w := range p.Workers {
		for _, v := range []string{w.Username, w.Name} {
			if _, ok := ids[normalize(v)]; ok {
				return true
			}
		}
	}
	return false
}

// IsCreator reports whether the actor created the project.
func (a Actor) IsCreator(p *models.Project) bool {
	creator := normalize(p.CreatedBy)
	if creator == "" {
		return false
	}
	_, ok := a.identifiers()[creator]
	return ok
}

func (a Actor) IsPrivileged() bool {
	return a.Role.HasPermission(roles.Privileged)
}

func (a Actor) CanSee(p *models.Project) bool {
	return a.IsPrivileged() || a.IsCreator(p) || a.IsAssigned(p)
}

func requireAssigned(a Actor, p *models.Project) error {
	if !a.IsAssigned(p) {
		return custom_error.NewUnauthorized(a.String(), "Not authorized for this project")
	}
	return nil
}

func requirePrivileged(a Actor) error {
	if !a.IsPrivileged() {
		return custom_error.NewUnauthorized(a.String(), "Only a project manager can do this")
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
