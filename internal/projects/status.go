package projects

import (
	"time"

	"stockroom/pkg/metadata"
	"stockroom/pkg/models"
)

const dateLayout = "2006-01-02"

// DerivedStatus is the status shown for a project on a given day. A stored
// active project whose start date is still ahead reads as upcoming. Finished
// is never overridden, and unreadable dates keep the stored status.
func DerivedStatus(p *models.Project, today time.Time) metadata.ProjectStatus {
	if p.Status != metadata.StatusActive {
		return p.Status
	}

	start, err := time.Parse(dateLayout, p.StartDate)
	if err != nil {
		return p.Status
	}
	if _, err := time.Parse(dateLayout, p.EndDate); err != nil {
		return p.Status
	}

	day, _ := time.Parse(dateLayout, today.Format(dateLayout))
	if day.Before(start) {
		return metadata.StatusUpcoming
	}
	return metadata.StatusActive
}
