// Package gangrun decides whether a quantity may share a press run with
// other orders.
package gangrun

import (
	"github.com/angelmondragon/printshop-backend/internal/productconfig"
	"github.com/angelmondragon/printshop-backend/pkg/enums"
)

// IsAllowed reports whether quantity can be pooled. A false result is not an
// error; the order falls back to standalone production.
func IsAllowed(cfg productconfig.GangRunConfig, quantity int) bool {
	if !cfg.Eligible {
		return false
	}
	return quantity >= cfg.MinGangQuantity && quantity <= cfg.MaxGangQuantity
}

// Path returns the production path for quantity.
func Path(cfg productconfig.GangRunConfig, quantity int) enums.ProductionPath {
	if IsAllowed(cfg, quantity) {
		return enums.ProductionPathGangRun
	}
	return enums.ProductionPathStandalone
}
