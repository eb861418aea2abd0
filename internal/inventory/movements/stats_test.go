package movements

import (
	"testing"

	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/stretchr/testify/assert"
)

func statsLog() []models.MovementLogEntry {
	return []models.MovementLogEntry{
		{ArticleNumber: "A-1", UserName: "ola", Action: metadata.ActionTake, Quantity: 5, Timestamp: "2024-01-01T08:00:00.000000Z"},
		{ArticleNumber: "A-2", UserName: "ola", Action: metadata.ActionTake, Quantity: 1, Timestamp: "2024-01-02T08:00:00.000000Z"},
		{ArticleNumber: "A-1", UserName: "ola", Action: metadata.ActionReturn, Quantity: 2, Timestamp: "2024-01-02T09:30:00.000000Z"},
		{ArticleNumber: "A-2", UserName: "piotr", Action: metadata.ActionTake, Quantity: 7, Timestamp: "2024-01-02T10:00:00.000000Z"},
		{ArticleNumber: "A-3", UserName: "piotr", Action: metadata.ActionTake, Quantity: 1, Timestamp: "garbage"},
	}
}

func TestTopUsersAndItems(t *testing.T) {
	stats := NewStats(statsLog(), map[string]string{"A-2": "Anchor"})

	assert.Equal(t, []UserQuantity{
		{UserName: "piotr", Quantity: 8},
		{UserName: "ola", Quantity: 6},
	}, stats.TopUsers())

	assert.Equal(t, []ItemQuantity{
		{ArticleNumber: "A-2", ProductName: "Anchor", Quantity: 8},
		{ArticleNumber: "A-1", Quantity: 5},
		{ArticleNumber: "A-3", Quantity: 1},
	}, stats.TopItems())
}

func TestDailyUsage(t *testing.T) {
	assert.Equal(t, []DailyQuantity{
		{Day: "", Quantity: 1},
		{Day: "2024-01-01", Quantity: 5},
		{Day: "2024-01-02", Quantity: 8},
	}, NewStats(statsLog(), nil).DailyUsage())
}

func TestUserStats(t *testing.T) {
	stats := NewStats(statsLog(), map[string]string{"A-1": "Drill bit"})

	assert.Equal(t, []string{"ola", "piotr"}, stats.Users())

	ola := stats.UserStats("ola")
	assert.Equal(t, 6, ola.TotalTaken)
	assert.Equal(t, 2, ola.TotalReturned)
	assert.Equal(t, "2024-01-02 09:30", ola.LastActive)
	assert.Equal(t, []ArticleCount{
		{ArticleNumber: "A-1", Name: "Drill bit", Count: 2},
		{ArticleNumber: "A-2", Name: "A-2", Count: 1},
	}, ola.TopItems)
	assert.Equal(t, []ItemQuantity{
		{ArticleNumber: "A-1", ProductName: "Drill bit", Quantity: 3},
		{ArticleNumber: "A-2", ProductName: "A-2", Quantity: 1},
	}, ola.UnreturnedItems)

	nobody := stats.UserStats("nobody")
	assert.Zero(t, nobody.TotalTaken)
	assert.Empty(t, nobody.LastActive)
	assert.Empty(t, nobody.TopItems)
}

func TestIssueCounts(t *testing.T) {
	issues := []models.IssueReport{
		{ArticleNumber: "B-2", ProductName: "Anchor", Count: 5},
		{ArticleNumber: "A-1", ProductName: "Drill bit"},
		{ArticleNumber: "A-1", ProductName: "Drill bit"},
		{ArticleNumber: "C-3", ProductName: "Clamp"},
	}

	assert.Equal(t, []models.IssueCount{
		{ArticleNumber: "A-1", ProductName: "Drill bit", Reports: 2},
		{ArticleNumber: "B-2", ProductName: "Anchor", Reports: 1},
		{ArticleNumber: "C-3", ProductName: "Clamp", Reports: 1},
	}, IssueCounts(issues))
	assert.Empty(t, IssueCounts(nil))
}
