package roles

import "strings"

// Role is the permission level of an actor.
type Role string

const (
	Worker Role = "worker"
	Master Role = "master"
	Admin  Role = "admin"
)

// HierarchyLevel orders roles; a higher level includes the lower ones.
type HierarchyLevel int

const (
	WorkerLevel HierarchyLevel = 1
	MasterLevel HierarchyLevel = 2
	AdminLevel  HierarchyLevel = 3
)

// Privileged is the role required for project management operations.
const Privileged = Master

func Parse(value string) Role {
	return Role(strings.ToLower(strings.TrimSpace(value)))
}

func (r Role) GetHierarchyLevel() HierarchyLevel {
	switch r {
	case Worker:
		return WorkerLevel
	case Master:
		return MasterLevel
	case Admin:
		return AdminLevel
	default:
		return 0
	}
}

// HasPermission reports whether r reaches requiredRole in the hierarchy.
// Unknown roles have no permissions at all.
func (r Role) HasPermission(requiredRole Role) bool {
	level := r.GetHierarchyLevel()
	return level > 0 && level >= requiredRole.GetHierarchyLevel()
}

func (r Role) IsValid() bool {
	switch r {
	case Worker, Master, Admin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}
