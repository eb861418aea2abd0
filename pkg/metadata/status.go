package metadata

import (
	"fmt"
	"strings"
)

// ProjectStatus is the lifecycle state of a project. Only active and finished
// are ever stored; upcoming is derived at read time.
type ProjectStatus string

const (
	StatusActive   ProjectStatus = "active"
	StatusUpcoming ProjectStatus = "upcoming"
	StatusFinished ProjectStatus = "finished"
)

// NewStatus accepts the values that may be written through a status change.
func NewStatus(value string) (ProjectStatus, error) {
	status := ProjectStatus(strings.ToLower(strings.TrimSpace(value)))
	if !status.isSettable() {
		return "", fmt.Errorf("status must be '%s' or '%s', got %q", StatusFinished, StatusActive, value)
	}
	return status, nil
}

func (s ProjectStatus) isSettable() bool {
	switch s {
	case StatusActive, StatusFinished:
		return true
	default:
		return false
	}
}

func (s ProjectStatus) String() string {
	return string(s)
}
