package stocks

import (
	"context"
	"fmt"
	"strconv"

	"stockroom/internal/store"
	custom_error "stockroom/pkg/errors"
	"stockroom/pkg/models"
)

// StockRepository maps product rows to items. Rows come back from the store
// exactly as held, so every write starts from the row that was read.
type StockRepository struct {
	store store.Store
}

func NewRepository(s store.Store) *StockRepository {
	return &StockRepository{store: s}
}

// StockRecord is an item together with the row it was read from.
type StockRecord struct {
	Item models.Item
	Ref  store.RowRef
	Row  store.Row
}

func (r *StockRepository) GetStockItems(ctx context.Context) ([]models.Item, error) {
	records, err := r.store.ReadTable(ctx, store.TableProducts, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to read products: %w", err)
	}

	items := make([]models.Item, 0, len(records))
	for _, rec := range records {
		items = append(items, transformToItem(rec.Row))
	}
	return items, nil
}

func (r *StockRepository) GetStockItem(ctx context.Context, id string) (*StockRecord, error) {
	return r.findOne(ctx, store.Filter{"id": id}, "item", id)
}

func (r *StockRepository) GetStockItemByArticle(ctx context.Context, articleNumber string) (*StockRecord, error) {
	return r.findOne(ctx, store.Filter{"article_number": articleNumber}, "article", articleNumber)
}

// ItemsByArticle indexes the catalog by article number. Project lines refer to
// items by article number.
func (r *StockRepository) ItemsByArticle(ctx context.Context) (map[string]models.Item, error) {
	items, err := r.GetStockItems(ctx)
	if err != nil {
		return nil, err
	}
	byArticle := make(map[string]models.Item, len(items))
	for _, item := range items {
		if item.ArticleNumber == "" {
			continue
		}
		if _, seen := byArticle[item.ArticleNumber]; !seen {
			byArticle[item.ArticleNumber] = item
		}
	}
	return byArticle, nil
}

// UpsertItems writes catalog entries in bulk, matched on id.
func (r *StockRepository) UpsertItems(ctx context.Context, items []models.Item) error {
	rows := make([]store.Row, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			return custom_error.NewInvalidArgument("id", "missing for article %s", item.ArticleNumber)
		}
		rows = append(rows, transformToRow(item))
	}
	if err := r.store.UpsertRows(ctx, store.TableProducts, rows, "id"); err != nil {
		return fmt.Errorf("failed to upsert %d items: %w", len(rows), err)
	}
	return nil
}

func (r *StockRepository) UpdateStockItem(ctx context.Context, rec *StockRecord) error {
	if err := r.store.UpdateRow(ctx, store.TableProducts, rec.Ref, rec.Row); err != nil {
		return fmt.Errorf("failed to update item %s: %w", rec.Item.ID, err)
	}
	return nil
}

func (r *StockRepository) findOne(ctx context.Context, filter store.Filter, resource, key string) (*StockRecord, error) {
	records, err := r.store.ReadTable(ctx, store.TableProducts, filter)
	if err != nil {
		return nil, fmt.Errorf("unable to read products: %w", err)
	}
	if len(records) == 0 {
		return nil, custom_error.NewNotFound(resource, key)
	}

	rec := records[0]
	return &StockRecord{
		Item: transformToItem(rec.Row),
		Ref:  rec.Ref,
		Row:  rec.Row.Pad(store.ColumnsOf(store.TableProducts, rec.Row)),
	}, nil
}

func transformToItem(row store.Row) models.Item {
	return models.Item{
		ID:                 row.Get("id"),
		ArticleNumber:      row.Get("article_number"),
		ProductName:        row.Get("product_name"),
		ProductDescription: row.Get("product_description"),
		Stock:              row.Int("stock", 0),
		SafetyStock:        row.Int("safety_stock", 0),
		Category:           row.Get("category"),
		Location:           row.Get("location"),
		Unit:               row.Get("unit"),
		CommentOnStock:     row.Get("comment_on_stock"),
	}
}

func transformToRow(item models.Item) store.Row {
	return store.Row{
		"id":                  item.ID,
		"article_number":      item.ArticleNumber,
		"product_name":        item.ProductName,
		"product_description": item.ProductDescription,
		"stock":               strconv.Itoa(item.Stock),
		"safety_stock":        strconv.Itoa(item.SafetyStock),
		"category":            item.Category,
		"location":            item.Location,
		"unit":                item.Unit,
		"comment_on_stock":    item.CommentOnStock,
	}
}

func setStock(rec *StockRecord, stock int) {
	rec.Item.Stock = stock
	rec.Row["stock"] = strconv.Itoa(stock)
}
