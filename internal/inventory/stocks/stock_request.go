package stocks

type StockCommentRequest struct {
	ItemID  string `json:"item_id"`
	Comment string `json:"comment"`
}
