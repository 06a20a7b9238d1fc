// Package publish checks whether a draft configuration may go live.
package publish

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/printshop-backend/internal/addons"
	"github.com/angelmondragon/printshop-backend/internal/productconfig"
	"github.com/angelmondragon/printshop-backend/internal/tiers"
	pkgerrors "github.com/angelmondragon/printshop-backend/pkg/errors"
)

// Result lists every violation found. OK is true only when Errors is empty.
type Result struct {
	OK     bool                      `json:"ok"`
	Errors []productconfig.Violation `json:"errors"`
}

// Err folds the violations into one validation error, or nil when OK.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	var combined error
	for _, v := range r.Errors {
		combined = multierr.Append(combined, fmt.Errorf("%w: %s: %s", productconfig.ErrValidation, v.Field, v.Message))
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, combined, "configuration is not publishable").
		WithDetails(map[string]any{"violations": r.Errors})
}

type collector struct {
	errs []productconfig.Violation
}

func (c *collector) add(kind, field string, value any, message string) {
	c.errs = append(c.errs, productconfig.Violation{Kind: kind, Field: field, Value: value, Message: message})
}

func (c *collector) addErr(kind string, err error) {
	if err == nil {
		return
	}
	if v, ok := productconfig.ViolationOf(err); ok {
		c.add(kind, v.Field, v.Value, v.Message)
		return
	}
	c.add(kind, "", nil, err.Error())
}

// Validate runs every structural check independently and collects all
// failures.
func Validate(cfg productconfig.ProductConfig) Result {
	c := &collector{}

	checkPaperStocks(c, cfg)
	checkQuantities(c, cfg)
	checkSizes(c, cfg)
	checkRush(c, cfg)
	checkGangRun(c, cfg)
	if !cfg.BasePrice.IsPositive() {
		c.add("base_price", "base_price", cfg.BasePrice.String(), "base price must be greater than zero")
	}
	c.addErr("tiers", tiers.CheckPartition(cfg.Tiers))
	checkAddOns(c, cfg)

	return Result{OK: len(c.errs) == 0, Errors: c.errs}
}

func checkPaperStocks(c *collector, cfg productconfig.ProductConfig) {
	if len(cfg.PaperStocks) == 0 {
		c.add("paper_stock", "paper_stocks", nil, "at least one paper stock must be attached")
		return
	}
	if n := addons.DefaultCount(cfg.PaperStocks); n != 1 {
		c.add("paper_stock", "paper_stocks", n, "exactly one paper stock must be the default")
	}
	for i, stock := range cfg.PaperStocks {
		if stock.AdditionalCost.IsNegative() {
			c.add("paper_stock", fmt.Sprintf("paper_stocks[%d].additional_cost", i), stock.AdditionalCost.String(), "additional cost cannot be negative")
		}
		if stock.Multiplier.IsNegative() {
			c.add("paper_stock", fmt.Sprintf("paper_stocks[%d].multiplier", i), stock.Multiplier.String(), "multiplier cannot be negative")
		}
	}
}

func checkQuantities(c *collector, cfg productconfig.ProductConfig) {
	if cfg.QuantityGroupID == nil && len(cfg.Quantities) == 0 {
		c.add("quantity", "quantities", nil, "a quantity group or at least one quantity is required")
	}
	for i, q := range cfg.Quantities {
		if q <= 0 {
			c.add("quantity", fmt.Sprintf("quantities[%d]", i), q, "quantities must be positive")
		}
	}
}

func checkSizes(c *collector, cfg productconfig.ProductConfig) {
	if cfg.SizeGroupID == nil && len(cfg.Sizes) == 0 {
		c.add("size", "sizes", nil, "a size group or at least one size is required")
	}
}

func checkRush(c *collector, cfg productconfig.ProductConfig) {
	if !cfg.Rush.Available {
		return
	}
	if cfg.Rush.Days >= cfg.ProductionDays {
		c.add("rush", "rush.days", cfg.Rush.Days, fmt.Sprintf("rush days must be shorter than production time (%d)", cfg.ProductionDays))
	}
	if cfg.Rush.Fee.IsNegative() {
		c.add("rush", "rush.fee", cfg.Rush.Fee.String(), "rush fee cannot be negative")
	}
}

func checkGangRun(c *collector, cfg productconfig.ProductConfig) {
	if !cfg.GangRun.Eligible {
		return
	}
	if cfg.GangRun.MinGangQuantity < 1 {
		c.add("gang_run", "gang_run.min_gang_quantity", cfg.GangRun.MinGangQuantity, "minimum gang quantity must be at least 1")
	}
	if cfg.GangRun.MaxGangQuantity <= cfg.GangRun.MinGangQuantity {
		c.add("gang_run", "gang_run.max_gang_quantity", cfg.GangRun.MaxGangQuantity, "maximum gang quantity must exceed the minimum")
	}
}

func checkAddOns(c *collector, cfg productconfig.ProductConfig) {
	for _, set := range cfg.AddOnSets() {
		c.addErr("addon_set", addons.CheckOrdering(set))

		for _, item := range set.Items {
			field := fmt.Sprintf("addon_sets[%s].addons[%s]", set.ID, item.AddOnID)
			def, ok := cfg.AddOns[item.AddOnID]
			if !ok {
				c.add("addon", field, item.AddOnID.String(), "attached add-on does not exist in the catalog")
				continue
			}
			if !def.Active {
				c.add("addon", field, def.Name, "attached add-on is inactive")
			}
			if err := def.Configuration.Validate(def.PricingModel); err != nil {
				c.addErr("addon", err)
				continue
			}
			if def.Mandatory && def.Configuration.Custom != nil && def.Configuration.Custom.DefaultChoice == "" {
				c.add("addon", field, def.Name, "mandatory add-ons with choices need a default choice")
			}
		}
	}
}
