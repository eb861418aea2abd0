package movements

import (
	"sort"
	"strings"
	"time"

	"stockroom/pkg/metadata"
	"stockroom/pkg/models"
)

const (
	topLimit         = 10
	topArticlesLimit = 5
)

type UserQuantity struct {
	UserName string `json:"user_name"`
	Quantity int    `json:"quantity"`
}

type ItemQuantity struct {
	ArticleNumber string `json:"article_number"`
	ProductName   string `json:"product_name"`
	Quantity      int    `json:"quantity"`
}

type DailyQuantity struct {
	Day      string `json:"day"`
	Quantity int    `json:"quantity"`
}

type ArticleCount struct {
	ArticleNumber string `json:"article_number"`
	Name          string `json:"name"`
	Count         int    `json:"count"`
}

type UserStats struct {
	UserName        string         `json:"user_name"`
	TotalTaken      int            `json:"total_taken"`
	TotalReturned   int            `json:"total_returned"`
	LastActive      string         `json:"last_active"`
	TopItems        []ArticleCount `json:"top_items"`
	UnreturnedItems []ItemQuantity `json:"unreturned_items"`
}

// Stats aggregates a movement log. names maps article numbers to product
// names and may be nil.
type Stats struct {
	entries []models.MovementLogEntry
	names   map[string]string
}

func NewStats(entries []models.MovementLogEntry, names map[string]string) *Stats {
	if names == nil {
		names = map[string]string{}
	}
	return &Stats{entries: entries, names: names}
}

// TopUsers ranks users by quantity taken.
func (s *Stats) TopUsers() []UserQuantity {
	totals := map[string]int{}
	for _, e := range s.takes() {
		totals[e.UserName] += e.Quantity
	}

	out := make([]UserQuantity, 0, len(totals))
	for user, qty := range totals {
		out = append(out, UserQuantity{UserName: user, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].UserName < out[j].UserName
	})
	return limit(out, topLimit)
}

// TopItems ranks articles by quantity taken.
func (s *Stats) TopItems() []ItemQuantity {
	totals := map[string]int{}
	for _, e := range s.takes() {
		totals[e.ArticleNumber] += e.Quantity
	}

	out := make([]ItemQuantity, 0, len(totals))
	for article, qty := range totals {
		out = append(out, ItemQuantity{ArticleNumber: article, ProductName: s.names[article], Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].ArticleNumber < out[j].ArticleNumber
	})
	return limit(out, topLimit)
}

// DailyUsage sums takes per calendar day, oldest first. Entries whose
// timestamp cannot be read fall into the "" day.
func (s *Stats) DailyUsage() []DailyQuantity {
	totals := map[string]int{}
	for _, e := range s.takes() {
		totals[day(e.Timestamp)] += e.Quantity
	}

	out := make([]DailyQuantity, 0, len(totals))
	for d, qty := range totals {
		out = append(out, DailyQuantity{Day: d, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// Users lists everyone who appears in the log.
func (s *Stats) Users() []string {
	seen := map[string]struct{}{}
	for _, e := range s.entries {
		if e.UserName != "" {
			seen[e.UserName] = struct{}{}
		}
	}
	users := make([]string, 0, len(seen))
	for u := range seen {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

func (s *Stats) UserStats(userName string) UserStats {
	var mine []models.MovementLogEntry
	for _, e := range s.entries {
		if e.UserName == userName {
			mine = append(mine, e)
		}
	}
	sortNewestFirst(mine)

	stats := UserStats{UserName: userName, TopItems: []ArticleCount{}, UnreturnedItems: []ItemQuantity{}}
	counts := map[string]int{}
	for _, e := range mine {
		switch e.Action {
		case metadata.ActionTake:
			stats.TotalTaken += e.Quantity
		case metadata.ActionReturn:
			stats.TotalReturned += e.Quantity
		}
		if e.ArticleNumber != "" {
			counts[e.ArticleNumber]++
		}
	}
	if len(mine) > 0 {
		stats.LastActive = lastActive(mine[0].Timestamp)
	}

	for article, count := range counts {
		stats.TopItems = append(stats.TopItems, ArticleCount{ArticleNumber: article, Name: s.name(article), Count: count})
	}
	sort.Slice(stats.TopItems, func(i, j int) bool {
		if stats.TopItems[i].Count != stats.TopItems[j].Count {
			return stats.TopItems[i].Count > stats.TopItems[j].Count
		}
		return stats.TopItems[i].ArticleNumber < stats.TopItems[j].ArticleNumber
	})
	stats.TopItems = limit(stats.TopItems, topArticlesLimit)

	for _, line := range SortedOutstanding(NetOutstanding(mine)) {
		stats.UnreturnedItems = append(stats.UnreturnedItems, ItemQuantity{
			ArticleNumber: line.ArticleNumber,
			ProductName:   s.name(line.ArticleNumber),
			Quantity:      line.Quantity,
		})
	}
	return stats
}

func (s *Stats) takes() []models.MovementLogEntry {
	var out []models.MovementLogEntry
	for _, e := range s.entries {
		if e.Action == metadata.ActionTake {
			out = append(out, e)
		}
	}
	return out
}

func (s *Stats) name(article string) string {
	if n := s.names[article]; n != "" {
		return n
	}
	return article
}

func day(timestamp string) string {
	ts := strings.TrimSpace(timestamp)
	if len(ts) < 10 {
		return ""
	}
	if _, err := time.Parse("2006-01-02", ts[:10]); err != nil {
		return ""
	}
	return ts[:10]
}

// lastActive renders a timestamp to the minute, "2006-01-02 15:04".
func lastActive(timestamp string) string {
	ts := timestamp
	if len(ts) > 16 {
		ts = ts[:16]
	}
	return strings.Replace(ts, "T", " ", 1)
}

func limit[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// IssueCounts ranks items by how many issue reports were filed against them.
func IssueCounts(issues []models.IssueReport) []models.IssueCount {
	type key struct{ article, name string }
	counts := map[key]int{}
	for _, issue := range issues {
		counts[key{issue.ArticleNumber, issue.ProductName}]++
	}

	out := make([]models.IssueCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.IssueCount{ArticleNumber: k.article, ProductName: k.name, Reports: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Reports != out[j].Reports {
			return out[i].Reports > out[j].Reports
		}
		if out[i].ArticleNumber != out[j].ArticleNumber {
			return out[i].ArticleNumber < out[j].ArticleNumber
		}
		return out[i].ProductName < out[j].ProductName
	})
	return limit(out, topLimit)
}
