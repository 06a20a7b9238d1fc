package addons

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/printshop-backend/internal/productconfig"
)

// TogglePaperStock attaches stock to the product or detaches it when already
// attached. The first attached stock becomes the default, and detaching the
// default promotes the first remaining stock.
func TogglePaperStock(stocks []productconfig.ProductPaperStock, stock productconfig.ProductPaperStock) ([]productconfig.ProductPaperStock, bool, error) {
	if stock.AdditionalCost.IsNegative() {
		return nil, false, productconfig.InvalidAddOn("additional_cost", stock.AdditionalCost.String(), "additional cost cannot be negative")
	}
	if productconfig.HasMorePlaces(stock.AdditionalCost, productconfig.PricePlaces) {
		return nil, false, productconfig.InvalidAddOn("additional_cost", stock.AdditionalCost.String(), fmt.Sprintf("additional cost allows at most %d decimal places", productconfig.PricePlaces))
	}

	out := make([]productconfig.ProductPaperStock, 0, len(stocks)+1)
	removedDefault := false
	found := false
	for _, existing := range stocks {
		if existing.PaperStockID == stock.PaperStockID {
			found = true
			removedDefault = existing.IsDefault
			continue
		}
		out = append(out, existing)
	}

	if found {
		if removedDefault && len(out) > 0 {
			out = setDefault(out, out[0].PaperStockID)
		}
		return out, false, nil
	}

	stock.IsDefault = len(out) == 0
	out = append(out, stock)
	return out, true, nil
}

// SetDefaultPaperStock makes id the single default stock.
func SetDefaultPaperStock(stocks []productconfig.ProductPaperStock, id uuid.UUID) ([]productconfig.ProductPaperStock, error) {
	for _, stock := range stocks {
		if stock.PaperStockID == id {
			return setDefault(stocks, id), nil
		}
	}
	return nil, productconfig.UnconfiguredOption("paper_stock_id", id.String(), "paper stock is not attached to the product")
}

// DefaultCount returns how many stocks are flagged default.
func DefaultCount(stocks []productconfig.ProductPaperStock) int {
	n := 0
	for _, stock := range stocks {
		if stock.IsDefault {
			n++
		}
	}
	return n
}

func setDefault(stocks []productconfig.ProductPaperStock, id uuid.UUID) []productconfig.ProductPaperStock {
	out := make([]productconfig.ProductPaperStock, len(stocks))
	for i, stock := range stocks {
		stock.IsDefault = stock.PaperStockID == id
		out[i] = stock
	}
	return out
}
