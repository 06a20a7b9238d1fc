package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/printshop-backend/internal/addons"
	"github.com/angelmondragon/printshop-backend/internal/gangrun"
	"github.com/angelmondragon/printshop-backend/internal/pricing"
	"github.com/angelmondragon/printshop-backend/internal/productconfig"
	"github.com/angelmondragon/printshop-backend/internal/publish"
	"github.com/angelmondragon/printshop-backend/internal/tiers"
	"github.com/angelmondragon/printshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/printshop-backend/pkg/errors"
	"github.com/angelmondragon/printshop-backend/pkg/logger"
	"github.com/angelmondragon/printshop-backend/pkg/metrics"
)

const defaultMaxEditRetries = 3

// Service exposes product configuration editing and storefront quoting.
type Service interface {
	CreateConfig(ctx context.Context, input CreateConfigInput) (*ConfigDTO, error)
	GetConfig(ctx context.Context, productID uuid.UUID) (*ConfigDTO, error)
	InsertTier(ctx context.Context, productID uuid.UUID, tier productconfig.PricingTier) (*ConfigDTO, error)
	RemoveTier(ctx context.Context, productID uuid.UUID, index int) (*ConfigDTO, error)
	ReplaceTiers(ctx context.Context, productID uuid.UUID, table []productconfig.PricingTier) (*ConfigDTO, error)
	TogglePaperStock(ctx context.Context, productID, paperStockID uuid.UUID, additionalCost decimal.Decimal) (*ConfigDTO, error)
	SetDefaultPaperStock(ctx context.Context, productID, paperStockID uuid.UUID) (*ConfigDTO, error)
	Validate(ctx context.Context, productID uuid.UUID) (publish.Result, error)
	Publish(ctx context.Context, productID uuid.UUID) (*ConfigDTO, error)
	Quote(ctx context.Context, input QuoteInput) (*pricing.PriceBreakdown, error)
	CheckGangRun(ctx context.Context, productID uuid.UUID, quantity int) (*GangRunDTO, error)
	ListAddOns(ctx context.Context, activeOnly bool) ([]productconfig.AddOnDefinition, error)
	ToggleSetAddOn(ctx context.Context, setID, addOnID uuid.UUID) (*AddOnSetDTO, error)
	ReorderSet(ctx context.Context, setID uuid.UUID, from, to int) (*AddOnSetDTO, error)
}

// CreateConfigInput holds the validated payload for a new draft product.
type CreateConfigInput struct {
	Name              string
	BasePrice         decimal.Decimal
	SetupFee          decimal.Decimal
	Tiers             []productconfig.PricingTier
	QuantityGroupID   *uuid.UUID
	Quantities        []int
	SizeGroupID       *uuid.UUID
	Sizes             []string
	ProductionDays    int
	Rush              productconfig.RushConfig
	GangRun           productconfig.GangRunConfig
	DefaultAddOnSetID *uuid.UUID
	ExtraAddOnSetIDs  []uuid.UUID
}

// QuoteInput is a storefront price request.
type QuoteInput struct {
	ProductID      uuid.UUID
	Quantity       int
	PaperStockID   *uuid.UUID
	SelectedAddOns map[uuid.UUID]string
	SubFields      map[uuid.UUID]map[string]string
	RushRequested  bool
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams configure the product configuration service.
type ServiceParams struct {
	Repo           *Repository
	Tx             txRunner
	Cache          *SnapshotCache
	Metrics        *metrics.PricingMetrics
	Logger         *logger.Logger
	MaxEditRetries int
}

type service struct {
	repo       *Repository
	tx         txRunner
	cache      *SnapshotCache
	metrics    *metrics.PricingMetrics
	logg       *logger.Logger
	maxRetries int
}

// NewService constructs the product configuration service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	retries := params.MaxEditRetries
	if retries <= 0 {
		retries = defaultMaxEditRetries
	}
	return &service{
		repo:       params.Repo,
		tx:         params.Tx,
		cache:      params.Cache,
		metrics:    params.Metrics,
		logg:       params.Logger,
		maxRetries: retries,
	}, nil
}

// CreateConfig stores a new draft configuration referencing existing sets.
func (s *service) CreateConfig(ctx context.Context, input CreateConfigInput) (*ConfigDTO, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.BasePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base_price cannot be negative")
	}
	if input.SetupFee.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "setup_fee cannot be negative")
	}
	if productconfig.HasMorePlaces(input.BasePrice, productconfig.PricePlaces) || productconfig.HasMorePlaces(input.SetupFee, productconfig.PricePlaces) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("base_price and setup_fee allow at most %d decimal places", productconfig.PricePlaces))
	}
	table, err := tiers.ReplaceTiers(input.Tiers)
	if err != nil {
		return nil, err
	}

	setIDs := append([]uuid.UUID(nil), input.ExtraAddOnSetIDs...)
	if input.DefaultAddOnSetID != nil {
		setIDs = append(setIDs, *input.DefaultAddOnSetID)
	}
	sets, err := s.repo.AddOns().LoadAddOnSets(ctx, setIDs)
	if err != nil {
		return nil, err
	}

	cfg := productconfig.ProductConfig{
		Name:            strings.TrimSpace(input.Name),
		Status:          enums.ConfigStatusDraft,
		BasePrice:       input.BasePrice,
		SetupFee:        input.SetupFee,
		Tiers:           table,
		QuantityGroupID: input.QuantityGroupID,
		Quantities:      input.Quantities,
		SizeGroupID:     input.SizeGroupID,
		Sizes:           input.Sizes,
		ProductionDays:  input.ProductionDays,
		Rush:            input.Rush,
		GangRun:         input.GangRun,
	}
	if input.DefaultAddOnSetID != nil {
		set, ok := sets[*input.DefaultAddOnSetID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "default addon set not found")
		}
		cfg.DefaultAddOnSet = &set
	}
	for _, id := range input.ExtraAddOnSetIDs {
		set, ok := sets[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "addon set not found").
				WithDetails(map[string]any{"addon_set_id": id})
		}
		cfg.ExtraAddOnSets = append(cfg.ExtraAddOnSets, set)
	}

	var created productconfig.ProductConfig
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		created, err = s.repo.WithTx(tx).CreateProductConfig(ctx, cfg)
		return err
	}); err != nil {
		return nil, pkgerrors.EnsureTyped(err, pkgerrors.CodeDependency, "create product configuration")
	}

	ctx = s.logg.WithProductID(ctx, created.ProductID.String())
	s.logg.Info(ctx, "product configuration created")
	return s.GetConfig(ctx, created.ProductID)
}

func (s *service) GetConfig(ctx context.Context, productID uuid.UUID) (*ConfigDTO, error) {
	cfg, err := s.repo.LoadProductConfig(ctx, productID)
	if err != nil {
		return nil, err
	}
	return NewConfigDTO(cfg), nil
}

func (s *service) InsertTier(ctx context.Context, productID uuid.UUID, tier productconfig.PricingTier) (*ConfigDTO, error) {
	cfg, err := s.edit(ctx, "insert_tier", productID, func(_ context.Context, cfg *productconfig.ProductConfig) error {
		table, err := tiers.InsertTier(cfg.Tiers, tier)
		if err != nil {
			return err
		}
		cfg.Tiers = table
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewConfigDTO(cfg), nil
}

func (s *service) RemoveTier(ctx context.Context, productID uuid.UUID, index int) (*ConfigDTO, error) {
	cfg, err := s.edit(ctx, "remove_tier", productID, func(_ context.Context, cfg *productconfig.ProductConfig) error {
		table, err := tiers.RemoveTier(cfg.Tiers, index)
		if err != nil {
			return err
		}
		cfg.Tiers = table
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewConfigDTO(cfg), nil
}

func (s *service) ReplaceTiers(ctx context.Context, productID uuid.UUID, table []productconfig.PricingTier) (*ConfigDTO, error) {
	cfg, err := s.edit(ctx, "replace_tiers", productID, func(_ context.Context, cfg *productconfig.ProductConfig) error {
		normalized, err := tiers.ReplaceTiers(table)
		if err != nil {
			return err
		}
		cfg.Tiers = normalized
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewConfigDTO(cfg), nil
}

// TogglePaperStock attaches a catalog stock to the product, or detaches it
// when already attached.
func (s *service) TogglePaperStock(ctx context.Context, productID, paperStockID uuid.UUID, additionalCost decimal.Decimal) (*ConfigDTO, error) {
	cfg, err := s.edit(ctx, "toggle_paper_stock", productID, func(ctx context.Context, cfg *productconfig.ProductConfig) error {
		candidate := productconfig.ProductPaperStock{PaperStockID: paperStockID, AdditionalCost: additionalCost}
		if _, attached := cfg.FindPaperStock(paperStockID); !attached {
			stock, err := s.repo.GetPaperStock(ctx, paperStockID)
			if err != nil {
				return err
			}
			if !stock.IsActive {
				return productconfig.UnconfiguredOption("paper_stock_id", paperStockID.String(), "inactive paper stocks cannot be attached")
			}
			candidate.Name = stock.Name
			candidate.Multiplier = stock.Multiplier
		}
		stocks, _, err := addons.TogglePaperStock(cfg.PaperStocks, candidate)
		if err != nil {
			return err
		}
		cfg.PaperStocks = stocks
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewConfigDTO(cfg), nil
}

func (s *service) SetDefaultPaperStock(ctx context.Context, productID, paperStockID uuid.UUID) (*ConfigDTO, error) {
	cfg, err := s.edit(ctx, "set_default_paper_stock", productID, func(_ context.Context, cfg *productconfig.ProductConfig) error {
		stocks, err := addons.SetDefaultPaperStock(cfg.PaperStocks, paperStockID)
		if err != nil {
			return err
		}
		cfg.PaperStocks = stocks
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewConfigDTO(cfg), nil
}

// Validate reports every publish blocker without changing the product.
func (s *service) Validate(ctx context.Context, productID uuid.UUID) (publish.Result, error) {
	cfg, err := s.repo.LoadProductConfig(ctx, productID)
	if err != nil {
		return publish.Result{}, err
	}
	return publish.Validate(cfg), nil
}

// Publish moves the product to PUBLISHED once it passes validation.
func (s *service) Publish(ctx context.Context, productID uuid.UUID) (*ConfigDTO, error) {
	cfg, err := s.edit(ctx, "publish", productID, func(_ context.Context, cfg *productconfig.ProductConfig) error {
		cfg.Status = enums.ConfigStatusPublished
		if cfg.PublishedAt == nil {
			now := time.Now().UTC()
			cfg.PublishedAt = &now
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, productconfig.ErrValidation) {
			s.metrics.IncPublish("rejected")
		}
		return nil, err
	}
	s.metrics.IncPublish("published")
	return NewConfigDTO(cfg), nil
}

// Quote prices a selection against the published configuration.
func (s *service) Quote(ctx context.Context, input QuoteInput) (*pricing.PriceBreakdown, error) {
	start := time.Now()
	cfg, source, err := s.loadPublished(ctx, input.ProductID)
	if err != nil {
		s.metrics.IncQuote("error")
		return nil, err
	}

	breakdown, err := pricing.ResolvePrice(cfg, pricing.Selection{
		Quantity:      input.Quantity,
		PaperStockID:  input.PaperStockID,
		AddOns:        input.SelectedAddOns,
		SubFields:     input.SubFields,
		RushRequested: input.RushRequested,
	})
	s.metrics.ObserveResolve(source, time.Since(start))
	if err != nil {
		s.metrics.IncQuote("rejected")
		return nil, err
	}
	s.metrics.IncQuote("ok")
	return breakdown, nil
}

func (s *service) CheckGangRun(ctx context.Context, productID uuid.UUID, quantity int) (*GangRunDTO, error) {
	if quantity <= 0 {
		return nil, productconfig.InvalidQuantity(quantity)
	}
	cfg, _, err := s.loadPublished(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &GangRunDTO{
		ProductID:      productID,
		Quantity:       quantity,
		Allowed:        gangrun.IsAllowed(cfg.GangRun, quantity),
		ProductionPath: gangrun.Path(cfg.GangRun, quantity),
	}, nil
}

func (s *service) ListAddOns(ctx context.Context, activeOnly bool) ([]productconfig.AddOnDefinition, error) {
	return s.repo.AddOns().ListAddOns(ctx, activeOnly)
}

// ToggleSetAddOn attaches or detaches a catalog add-on on a shared set.
func (s *service) ToggleSetAddOn(ctx context.Context, setID, addOnID uuid.UUID) (*AddOnSetDTO, error) {
	def, err := s.repo.AddOns().GetAddOn(ctx, addOnID)
	if err != nil {
		return nil, err
	}
	set, err := s.editSet(ctx, "toggle_addon", setID, func(set productconfig.AddOnSet) (productconfig.AddOnSet, error) {
		next, _, err := addons.ToggleAddOn(set, def)
		return next, err
	})
	if err != nil {
		return nil, err
	}
	dto := NewAddOnSetDTO(set)
	return &dto, nil
}

func (s *service) ReorderSet(ctx context.Context, setID uuid.UUID, from, to int) (*AddOnSetDTO, error) {
	set, err := s.editSet(ctx, "reorder_addons", setID, func(set productconfig.AddOnSet) (productconfig.AddOnSet, error) {
		items, err := addons.Reorder(set.Items, from, to)
		if err != nil {
			return set, err
		}
		set.Items = items
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	dto := NewAddOnSetDTO(set)
	return &dto, nil
}

// edit loads the product, applies mutate to a copy and saves it with an
// optimistic version check, reloading and reapplying on conflict. Edits
// that leave a published product unpublishable are rejected. A published
// result also locks the add-on sets it was validated against, so a set edit
// committed meanwhile forces a reload instead of publishing past it.
func (s *service) edit(ctx context.Context, op string, productID uuid.UUID, mutate func(context.Context, *productconfig.ProductConfig) error) (productconfig.ProductConfig, error) {
	ctx = s.logg.WithProductID(ctx, productID.String())

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		current, err := s.repo.LoadProductConfig(ctx, productID)
		if err != nil {
			return productconfig.ProductConfig{}, err
		}

		next := current.Clone()
		if err := mutate(ctx, &next); err != nil {
			return productconfig.ProductConfig{}, err
		}
		if next.Status == enums.ConfigStatusPublished {
			if err := publish.Validate(next).Err(); err != nil {
				return productconfig.ProductConfig{}, err
			}
		}

		var saved productconfig.ProductConfig
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)
			if next.Status == enums.ConfigStatusPublished {
				for _, set := range next.AddOnSets() {
					if err := txRepo.AddOns().LockAddOnSet(ctx, set.ID, set.Version); err != nil {
						return err
					}
				}
			}
			var err error
			saved, err = txRepo.SaveProductConfig(ctx, next, current.Version)
			return err
		})
		if err == nil {
			s.cache.Invalidate(ctx, productID)
			s.logg.Info(s.logg.WithFields(ctx, map[string]any{"operation": op, "version": saved.Version}), "product configuration saved")
			return saved, nil
		}
		if !errors.Is(err, productconfig.ErrVersionConflict) {
			return productconfig.ProductConfig{}, err
		}
		s.conflict(ctx, op, attempt)
		lastErr = err
	}
	return productconfig.ProductConfig{}, lastErr
}

// editSet is edit for shared add-on sets. The change is refused when any
// published product referencing the set would stop validating. The check runs
// after the set row is written, inside the same transaction, so it sees every
// publish that committed before the lock was taken.
func (s *service) editSet(ctx context.Context, op string, setID uuid.UUID, mutate func(productconfig.AddOnSet) (productconfig.AddOnSet, error)) (productconfig.AddOnSet, error) {
	ctx = s.logg.WithAddOnSetID(ctx, setID.String())

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		current, err := s.repo.AddOns().LoadAddOnSet(ctx, setID)
		if err != nil {
			return productconfig.AddOnSet{}, err
		}
		next, err := mutate(current.Clone())
		if err != nil {
			return productconfig.AddOnSet{}, err
		}

		var (
			saved      productconfig.AddOnSet
			productIDs []uuid.UUID
		)
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)
			var err error
			saved, err = txRepo.AddOns().SaveAddOnSet(ctx, next, current.Version)
			if err != nil {
				return err
			}
			productIDs, err = txRepo.ProductIDsForAddOnSet(ctx, setID)
			if err != nil {
				return err
			}
			return checkPublishedWithSet(ctx, txRepo, productIDs, saved)
		})
		if err == nil {
			s.cache.Invalidate(ctx, productIDs...)
			s.logg.Info(s.logg.WithFields(ctx, map[string]any{"operation": op, "version": saved.Version, "products": len(productIDs)}), "addon set saved")
			return saved, nil
		}
		if !errors.Is(err, productconfig.ErrVersionConflict) {
			return productconfig.AddOnSet{}, err
		}
		s.conflict(ctx, op, attempt)
		lastErr = err
	}
	return productconfig.AddOnSet{}, lastErr
}

func checkPublishedWithSet(ctx context.Context, repo *Repository, productIDs []uuid.UUID, set productconfig.AddOnSet) error {
	for _, id := range productIDs {
		cfg, err := repo.LoadProductConfig(ctx, id)
		if err != nil {
			return err
		}
		if cfg.Status != enums.ConfigStatusPublished {
			continue
		}
		cfg.ReplaceSet(set)

		var missing []uuid.UUID
		for _, item := range set.Items {
			if _, ok := cfg.AddOns[item.AddOnID]; !ok {
				missing = append(missing, item.AddOnID)
			}
		}
		if len(missing) > 0 {
			defs, err := repo.AddOns().GetAddOns(ctx, missing)
			if err != nil {
				return err
			}
			if cfg.AddOns == nil {
				cfg.AddOns = make(map[uuid.UUID]productconfig.AddOnDefinition, len(defs))
			}
			for defID, def := range defs {
				cfg.AddOns[defID] = def
			}
		}

		if err := publish.Validate(cfg).Err(); err != nil {
			return err
		}
	}
	return nil
}

// loadPublished prefers the snapshot cache. A miss reports the product's
// generation, which tags the refill so an edit committed meanwhile wins.
func (s *service) loadPublished(ctx context.Context, productID uuid.UUID) (productconfig.ProductConfig, string, error) {
	cached, generation, ok := s.cache.Get(ctx, productID)
	if ok && cached.Status == enums.ConfigStatusPublished {
		return cached, "cache", nil
	}
	cfg, err := s.repo.LoadProductConfig(ctx, productID)
	if err != nil {
		return productconfig.ProductConfig{}, "db", err
	}
	if cfg.Status != enums.ConfigStatusPublished {
		return productconfig.ProductConfig{}, "db", pkgerrors.New(pkgerrors.CodeNotFound, "product is not published")
	}
	s.cache.Put(ctx, cfg, generation)
	return cfg, "db", nil
}

func (s *service) conflict(ctx context.Context, op string, attempt int) {
	s.metrics.IncConflict(op)
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"operation": op, "attempt": attempt}), "version conflict, retrying edit")
}
