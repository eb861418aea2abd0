package models

// Item is a catalog product with its current stock counter. ArticleNumber is
// the business key; ID is the store's own identifier.
type Item struct {
	ID                 string `json:"id"`
	ArticleNumber      string `json:"article_number"`
	ProductName        string `json:"product_name"`
	ProductDescription string `json:"product_description"`
	Stock              int    `json:"stock"`
	SafetyStock        int    `json:"safety_stock"`
	Category           string `json:"category"`
	Location           string `json:"location"`
	Unit               string `json:"unit"`
	CommentOnStock     string `json:"comment_on_stock"`
}

// Label is what users see in messages about the item.
func (i *Item) Label() string {
	if i.ProductDescription != "" {
		return i.ProductDescription
	}
	if i.ProductName != "" {
		return i.ProductName
	}
	return i.ID
}

// SafetyStockShortage is an item below its safety target.
type SafetyStockShortage struct {
	Item
	Deficit int `json:"deficit"`
}
