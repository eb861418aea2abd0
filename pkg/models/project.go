package models

import "stockroom/pkg/metadata"

type Worker struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

// LineItem is an entry of the items or taken_by_worker lists.
type LineItem struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

// ReturnedItem is an entry of the returned_by_worker list.
type ReturnedItem struct {
	ItemID     string `json:"item_id"`
	ItemName   string `json:"item_name"`
	Quantity   int    `json:"quantity"`
	ReturnType string `json:"return_type"`
}

type Project struct {
	ID               string                 `json:"id"`
	ProjectNumber    string                 `json:"project_number"`
	CreatedBy        string                 `json:"created_by"`
	CreatedAt        string                 `json:"created_at"`
	StartDate        string                 `json:"start_date"`
	EndDate          string                 `json:"end_date"`
	Status           metadata.ProjectStatus `json:"status"`
	CustomerName     string                 `json:"customer_name"`
	Workers          []Worker               `json:"workers"`
	Items            []LineItem             `json:"items"`
	TakenByWorker    []LineItem             `json:"taken_by_worker"`
	ReturnedByWorker []ReturnedItem         `json:"returned_by_worker"`
}

// ProjectItemSummary is one requested line with what has happened to it.
type ProjectItemSummary struct {
	ItemID            string `json:"item_id"`
	ItemName          string `json:"item_name"`
	ProjectedQuantity int    `json:"projected_quantity"`
	TakenQuantity     int    `json:"used_quantity"`
	ReturnedQuantity  int    `json:"returned_quantity"`
	IsTaken           bool   `json:"is_taken"`
}

type ProjectView struct {
	ProjectNumber string                 `json:"project_number"`
	CreatedBy     string                 `json:"created_by"`
	StartDate     string                 `json:"start_date"`
	EndDate       string                 `json:"end_date"`
	Status        metadata.ProjectStatus `json:"status"`
	CustomerName  string                 `json:"customer_name"`
	Workers       []string               `json:"workers"`
	Items         []ProjectItemSummary   `json:"project_items"`
	ItemsCount    int                    `json:"items_count"`
}

// CatalogLine is a requested line enriched with catalog data for pickup.
type CatalogLine struct {
	ItemID    string `json:"item_id"`
	ItemName  string `json:"item_name"`
	Quantity  int    `json:"quantity"`
	Location  string `json:"location"`
	Unit      string `json:"unit"`
	Type      string `json:"type"`
	Available string `json:"available"`
}
