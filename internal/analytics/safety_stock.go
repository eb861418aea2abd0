package analytics

import (
	"sort"

	"stockroom/pkg/models"
)

// ItemsBelowSafetyStock returns the items short of their safety target,
// largest deficit first and, on equal deficits, the larger target first.
func ItemsBelowSafetyStock(items []models.Item) []models.SafetyStockShortage {
	shortages := []models.SafetyStockShortage{}
	for _, item := range items {
		if item.SafetyStock > 0 && item.Stock < item.SafetyStock {
			shortages = append(shortages, models.SafetyStockShortage{
				Item:    item,
				Deficit: item.SafetyStock - item.Stock,
			})
		}
	}

	sort.SliceStable(shortages, func(i, j int) bool {
		if shortages[i].Deficit != shortages[j].Deficit {
			return shortages[i].Deficit > shortages[j].Deficit
		}
		return shortages[i].SafetyStock > shortages[j].SafetyStock
	})
	return shortages
}
