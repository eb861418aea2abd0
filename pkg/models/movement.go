package models

import "stockroom/pkg/metadata"

// MovementLogEntry is one immutable take or return event.
type MovementLogEntry struct {
	ID            string          `json:"id"`
	ArticleNumber string          `json:"article_number"`
	Quantity      int             `json:"quantity"`
	Action        metadata.Action `json:"action"`
	UserName      string          `json:"user_name"`
	Timestamp     string          `json:"timestamp"`
	Status        string          `json:"status"`
	ProjectRef    string          `json:"project_ref"`
}

// OutstandingKey identifies who still holds how much of an article.
type OutstandingKey struct {
	ArticleNumber string `json:"article_number"`
	UserName      string `json:"user_name"`
}
