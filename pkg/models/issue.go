package models

// IssueReport is a problem a user reported against a catalog item. Issue
// holds the reported issue types joined by ",".
type IssueReport struct {
	ID            string `json:"id"`
	Issue         string `json:"issue"`
	ArticleNumber string `json:"article_number"`
	ProductName   string `json:"product_name"`
	Count         int    `json:"count"`
	Timestamp     string `json:"timestamp"`
	UserName      string `json:"user_name"`
	CreatedAt     string `json:"created_at"`
}

// IssueCount is the number of reports filed against one item.
type IssueCount struct {
	ArticleNumber string `json:"article_number"`
	ProductName   string `json:"product_name"`
	Reports       int    `json:"reports"`
}
