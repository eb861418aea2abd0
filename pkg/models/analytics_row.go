package models

// AnalyticsRow is one line of the consolidated per-project item table.
type AnalyticsRow struct {
	ArticleNumber     string `json:"article_number"`
	OrderTime         string `json:"order_time"`
	OrderStatus       string `json:"order_status"`
	Warehouse         string `json:"warehouse"`
	Driller           string `json:"driller"`
	ProjectNumber     string `json:"project_number"`
	PickupTime        string `json:"pickup_time"`
	ItemName          string `json:"item_name"`
	ProjectedQuantity int    `json:"projected_quantity"`
	TakenQuantity     int    `json:"taken_quantity"`
	ReturnedQuantity  int    `json:"returned_quantity"`
	Comments          string `json:"comments"`
}

// AnalyticsKey is the composite business key of an AnalyticsRow.
type AnalyticsKey struct {
	ArticleNumber string
	ProjectNumber string
	OrderTime     string
}

func (r AnalyticsRow) Key() AnalyticsKey {
	return AnalyticsKey{
		ArticleNumber: r.ArticleNumber,
		ProjectNumber: r.ProjectNumber,
		OrderTime:     r.OrderTime,
	}
}
