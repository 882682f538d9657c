package imports

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/erp/dashboard/internal/domain/inventory"
	"go.uber.org/zap"
)

// StockInitialValidator asks the server whether a store may still load initial stock
type StockInitialValidator interface {
	ValidateStockInitial(ctx context.Context, storeCode string) (inventory.StockInitialValidation, error)
}

// Verdict is the outcome of a stock-initial check for one store
type Verdict struct {
	StoreCode string
	Allowed   bool
	Message   string
}

// StockInitialGuard blocks a second initial stock load into the same store.
// Verdicts are cached per store code; stores already known to carry initial
// stock are blocked without asking the server.
type StockInitialGuard struct {
	validator StockInitialValidator
	logger    *zap.Logger

	mu       sync.Mutex
	known    map[string]inventory.Store
	verdicts map[string]Verdict
	selected string
}

// NewStockInitialGuard creates a guard backed by validator
func NewStockInitialGuard(validator StockInitialValidator, logger *zap.Logger) *StockInitialGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockInitialGuard{
		validator: validator,
		logger:    logger,
		known:     make(map[string]inventory.Store),
		verdicts:  make(map[string]Verdict),
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// SetStores records the store list so HasInitialStock can short-circuit checks
func (g *StockInitialGuard) SetStores(stores []inventory.Store) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.known = make(map[string]inventory.Store, len(stores))
	for _, s := range stores {
		g.known[normalizeCode(s.Code)] = s
	}
}

// SelectStore changes the selected store and re-checks it against the server
func (g *StockInitialGuard) SelectStore(ctx context.Context, storeCode string) (Verdict, error) {
	key := normalizeCode(storeCode)
	g.mu.Lock()
	changed := key != normalizeCode(g.selected)
	g.selected = strings.TrimSpace(storeCode)
	if changed {
		delete(g.verdicts, key)
	}
	g.mu.Unlock()

	if key == "" {
		return Verdict{Message: "A store must be selected"}, nil
	}
	return g.verdict(ctx, storeCode)
}

// Selected returns the store code last passed to SelectStore
func (g *StockInitialGuard) Selected() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selected
}

// Check returns a ValidationError when storeCode must not receive initial stock.
// Server errors are returned as is and leave nothing cached.
func (g *StockInitialGuard) Check(ctx context.Context, storeCode string) error {
	v, err := g.verdict(ctx, storeCode)
	if err != nil {
		return err
	}
	if v.Allowed {
		return nil
	}
	msg := v.Message
	if msg == "" {
		msg = fmt.Sprintf("Store %s already has initial stock loaded", v.StoreCode)
	}
	return newValidationError(ErrCodeStockInitialDone, "%s", msg)
}

// Invalidate drops the cached verdict for storeCode, e.g. after its stock import finished
func (g *StockInitialGuard) Invalidate(storeCode string) {
	code := normalizeCode(storeCode)
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.verdicts, code)
	if s, ok := g.known[code]; ok {
		s.HasInitialStock = true
		g.known[code] = s
	}
}

func (g *StockInitialGuard) verdict(ctx context.Context, storeCode string) (Verdict, error) {
	code := strings.TrimSpace(storeCode)
	key := normalizeCode(code)
	g.mu.Lock()
	if s, ok := g.known[key]; ok && s.HasInitialStock {
		g.mu.Unlock()
		return Verdict{StoreCode: code, Message: inventory.ErrStockInitialDone.Message}, nil
	}
	if v, ok := g.verdicts[key]; ok {
		g.mu.Unlock()
		return v, nil
	}
	g.mu.Unlock()

	res, err := g.validator.ValidateStockInitial(ctx, code)
	if err != nil {
		g.logger.Warn("Stock initial validation failed", zap.String("store_code", code), zap.Error(err))
		return Verdict{}, fmt.Errorf("failed to verify initial stock for store %s: %w", code, err)
	}
	v := Verdict{StoreCode: code, Allowed: res.CanPerformStockInitial, Message: res.ValidationMessage}

	g.mu.Lock()
	g.verdicts[key] = v
	g.mu.Unlock()
	return v, nil
}
