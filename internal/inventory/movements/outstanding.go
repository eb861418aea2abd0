package movements

import (
	"sort"

	"stockroom/pkg/metadata"
	"stockroom/pkg/models"
)

// NetOutstanding sums takes minus returns per (article, user) and keeps only
// what is still out. Entries with another action are ignored.
func NetOutstanding(entries []models.MovementLogEntry) map[models.OutstandingKey]int {
	net := make(map[models.OutstandingKey]int)
	for _, e := range entries {
		key := models.OutstandingKey{ArticleNumber: e.ArticleNumber, UserName: e.UserName}
		switch e.Action {
		case metadata.ActionTake:
			net[key] += e.Quantity
		case metadata.ActionReturn:
			net[key] -= e.Quantity
		}
	}

	for key, qty := range net {
		if qty <= 0 {
			delete(net, key)
		}
	}
	return net
}

// OutstandingLine is one NetOutstanding result in list form.
type OutstandingLine struct {
	ArticleNumber string `json:"article_number"`
	UserName      string `json:"user_name"`
	Quantity      int    `json:"quantity"`
}

// SortedOutstanding lists a NetOutstanding result by article, then user.
func SortedOutstanding(net map[models.OutstandingKey]int) []OutstandingLine {
	lines := make([]OutstandingLine, 0, len(net))
	for key, qty := range net {
		lines = append(lines, OutstandingLine{ArticleNumber: key.ArticleNumber, UserName: key.UserName, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].ArticleNumber != lines[j].ArticleNumber {
			return lines[i].ArticleNumber < lines[j].ArticleNumber
		}
		return lines[i].UserName < lines[j].UserName
	})
	return lines
}
