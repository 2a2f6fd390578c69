package pos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradewind-erp/tradewind/internal/broadcast"
	"github.com/tradewind-erp/tradewind/internal/catalog"
	"github.com/tradewind-erp/tradewind/internal/ledger"
	"github.com/tradewind-erp/tradewind/internal/platform/db"
	"github.com/tradewind-erp/tradewind/internal/shared"
)

// Business-rule violations surfaced to the caller. Each is detected inside
// the relevant atomic unit and never retried automatically.
var (
	ErrSaleNotFound        = errors.New("sale not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrItemNotFound        = errors.New("sale item not found")
	ErrSaleNotPending      = errors.New("sale is not open for changes")
	ErrAlreadyCompleted    = errors.New("sale already completed")
	ErrNoItems             = errors.New("sale has no line items")
	ErrInsufficientStock   = errors.New("insufficient stock for this operation")
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrInvalidDiscount     = errors.New("discount must not be negative")
	ErrInvalidAmount       = errors.New("amount paid must not be negative")
	ErrInvalidMethod       = errors.New("unknown payment method")
)

// AuditPort records before/after snapshots of mutating actions.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// SettingsPort reads runtime settings.
type SettingsPort interface {
	GetInt(ctx context.Context, key string, fallback int64) int64
}

// TaskPort enqueues fire-and-forget background work after a completed sale.
type TaskPort interface {
	EnqueueDashboardRefresh(ctx context.Context) error
	EnqueueReceiptRender(ctx context.Context, saleID int64) error
}

// Service is the sale transaction engine. It owns the PENDING → COMPLETED
// state machine and is the only writer of sale-driven stock movements.
type Service struct {
	repo      Repository
	publisher broadcast.Publisher
	audit     AuditPort
	tasks     TaskPort
	settings  SettingsPort
	logger    *slog.Logger

	lowStockFallback int64
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	LowStockThreshold int64
}

// NewService builds Service. publisher, audit, tasks and settings may be nil;
// the corresponding side effects are skipped.
func NewService(repo Repository, publisher broadcast.Publisher, audit AuditPort, tasks TaskPort, settings SettingsPort, cfg ServiceConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	threshold := cfg.LowStockThreshold
	if threshold <= 0 {
		threshold = 5
	}
	return &Service{
		repo:             repo,
		publisher:        publisher,
		audit:            audit,
		tasks:            tasks,
		settings:         settings,
		logger:           logger,
		lowStockFallback: threshold,
	}
}

const saleNumberAttempts = 3

// StartSale allocates the next sale number and creates a PENDING sale with
// zero totals. No stock or payment side effects.
func (s *Service) StartSale(ctx context.Context, actor shared.Identity, req StartSaleRequest) (*Sale, error) {
	terminalID := req.TerminalID
	if terminalID == nil && actor.TerminalID != "" {
		t := actor.TerminalID
		terminalID = &t
	}

	var saleID int64
	var lastErr error
	for attempt := 0; attempt < saleNumberAttempts; attempt++ {
		lastErr = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			n, err := tx.NextSaleNumber(ctx)
			if err != nil {
				return err
			}
			sale := &Sale{
				Number:        fmt.Sprintf("POS-%06d", n),
				UserID:        actor.UserID,
				CustomerID:    req.CustomerID,
				TerminalID:    terminalID,
				Status:        SaleStatusPending,
				PaymentStatus: PaymentStatusUnpaid,
				Subtotal:      decimal.Zero,
				TaxTotal:      decimal.Zero,
				Total:         decimal.Zero,
				CreatedAt:     time.Now().UTC(),
			}
			id, err := tx.InsertSale(ctx, sale)
			if err != nil {
				return err
			}
			saleID = id
			return nil
		})
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, ErrNumberTaken) && !db.SerializationFailure(lastErr) {
			return nil, fmt.Errorf("start sale: %w", lastErr)
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("start sale: %w", lastErr)
	}

	sale, err := s.repo.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, actor, broadcast.EventSaleStarted, sale, nil)
	s.recordAudit(ctx, actor, "pos:sale_started", sale, nil)
	return sale, nil
}

// AddItem appends quantity of a product to an open sale, merging with an
// existing line for the same product. Stock is checked here but only
// decremented at completion.
func (s *Service) AddItem(ctx context.Context, actor shared.Identity, saleID int64, req AddItemRequest) (*SaleItem, *Sale, error) {
	if req.Quantity < 1 {
		return nil, nil, ErrInvalidQuantity
	}
	if req.Discount.IsNegative() {
		return nil, nil, ErrInvalidDiscount
	}

	var item SaleItem
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.GetSaleForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale.Status != SaleStatusPending {
			return fmt.Errorf("%w: sale %s is %s", ErrSaleNotPending, sale.Number, sale.Status)
		}

		product, err := tx.GetProduct(ctx, req.ProductID)
		if err != nil {
			return err
		}

		existing, err := tx.FindItemByProduct(ctx, saleID, req.ProductID)
		if err != nil {
			return err
		}

		mergedQty := req.Quantity
		if existing != nil {
			mergedQty += existing.Quantity
		}
		// Advisory check only; the authoritative re-check happens at
		// completion under a product row lock.
		if mergedQty > product.Stock {
			return fmt.Errorf("%w: product %q has %d available, requested %d",
				ErrInsufficientStock, product.Name, product.Stock, mergedQty)
		}

		if existing != nil {
			// Re-merge keeps the original price/tax snapshot; only the
			// quantity and accumulated discount change.
			existing.Quantity = mergedQty
			existing.Discount = existing.Discount.Add(req.Discount)
			existing.LineTotal = LineTotal(existing.UnitPrice, existing.Quantity, existing.Discount, existing.TaxRate)
			if err := tx.UpdateItem(ctx, *existing); err != nil {
				return err
			}
			item = *existing
		} else {
			item = SaleItem{
				SaleID:      saleID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    req.Quantity,
				UnitPrice:   product.UnitPrice,
				TaxRate:     product.TaxRate,
				Discount:    req.Discount,
			}
			item.LineTotal = LineTotal(item.UnitPrice, item.Quantity, item.Discount, item.TaxRate)
			id, err := tx.InsertItem(ctx, &item)
			if err != nil {
				return err
			}
			item.ID = id
		}

		return s.recomputeTotals(ctx, tx, saleID)
	})
	if err != nil {
		return nil, nil, err
	}

	sale, err := s.repo.GetSale(ctx, saleID)
	if err != nil {
		return nil, nil, err
	}
	s.emit(ctx, actor, broadcast.EventSaleItemAdded, sale, nil)
	s.recordAudit(ctx, actor, "pos:item_added", sale, map[string]any{
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
	})
	return &item, sale, nil
}

// RemoveItem deletes a line and recomputes totals.
func (s *Service) RemoveItem(ctx context.Context, actor shared.Identity, saleID, itemID int64) (*Sale, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.GetSaleForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale.Status != SaleStatusPending {
			return fmt.Errorf("%w: sale %s is %s", ErrSaleNotPending, sale.Number, sale.Status)
		}
		if err := tx.DeleteItem(ctx, saleID, itemID); err != nil {
			return err
		}
		return s.recomputeTotals(ctx, tx, saleID)
	})
	if err != nil {
		return nil, err
	}

	sale, err := s.repo.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, actor, broadcast.EventSaleItemRemoved, sale, nil)
	s.recordAudit(ctx, actor, "pos:item_removed", sale, map[string]any{"item_id": itemID})
	return sale, nil
}

// CompleteSale settles an open sale in one atomic unit: re-verify stock
// under product row locks (acquired in ascending product order), decrement
// stock, append SALE ledger rows, flip the sale to COMPLETED and insert the
// payment. A duplicate completion fails with ErrAlreadyCompleted and
// performs no writes.
func (s *Service) CompleteSale(ctx context.Context, actor shared.Identity, saleID int64, req CompleteSaleRequest) (*CompleteSaleResult, error) {
	if !req.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, req.PaymentMethod)
	}
	if req.AmountPaid.IsNegative() {
		return nil, ErrInvalidAmount
	}

	threshold := s.lowStockThreshold(ctx)

	var payment Payment
	var change decimal.Decimal
	var lowStock []catalog.Product
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.GetSaleForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale.Status == SaleStatusCompleted {
			return fmt.Errorf("%w: sale %s", ErrAlreadyCompleted, sale.Number)
		}
		if len(sale.Items) == 0 {
			return fmt.Errorf("%w: sale %s", ErrNoItems, sale.Number)
		}

		_, _, total := SaleTotals(sale.Items)
		if req.AmountPaid.LessThan(total) {
			return fmt.Errorf("%w: %s remaining", ErrInsufficientPayment, total.Sub(req.AmountPaid).StringFixed(2))
		}

		// Lock product rows in a deterministic order so concurrent
		// completions with overlapping products cannot deadlock.
		items := make([]SaleItem, len(sale.Items))
		copy(items, sale.Items)
		sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

		for _, item := range items {
			product, err := tx.GetProductForUpdate(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if product.Stock < item.Quantity {
				return fmt.Errorf("%w: product %q has %d available, requested %d",
					ErrInsufficientStock, product.Name, product.Stock, item.Quantity)
			}
			if err := tx.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
			if err := tx.InsertMovement(ctx, ledger.Movement{
				ProductID: item.ProductID,
				Delta:     -item.Quantity,
				Type:      ledger.MovementSale,
				Reference: sale.Number,
				Note:      fmt.Sprintf("sale of %d x %s", item.Quantity, item.ProductName),
			}); err != nil {
				return err
			}
			remaining := product.Stock - item.Quantity
			if remaining <= threshold {
				product.Stock = remaining
				lowStock = append(lowStock, *product)
			}
		}

		now := time.Now().UTC()
		if err := tx.MarkCompleted(ctx, saleID, req.PaymentMethod, now); err != nil {
			return err
		}
		subtotal, taxTotal, saleTotal := SaleTotals(sale.Items)
		if err := tx.UpdateSaleTotals(ctx, saleID, subtotal, taxTotal, saleTotal); err != nil {
			return err
		}

		payment = Payment{
			SaleID:    saleID,
			Amount:    req.AmountPaid,
			Method:    req.PaymentMethod,
			Status:    "COMPLETED",
			Reference: req.PaymentReference,
			CreatedAt: now,
		}
		paymentID, err := tx.InsertPayment(ctx, &payment)
		if err != nil {
			return err
		}
		payment.ID = paymentID
		change = req.AmountPaid.Sub(saleTotal)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sale, err := s.repo.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, actor, broadcast.EventSaleCompleted, sale, map[string]any{
		"payment": payment,
		"change":  change,
	})
	for _, product := range lowStock {
		s.emit(ctx, actor, broadcast.EventStockAlert, sale, map[string]any{
			"product_id":   product.ID,
			"product_name": product.Name,
			"stock":        product.Stock,
			"threshold":    threshold,
		})
	}
	s.enqueueFollowups(ctx, saleID)
	s.recordAudit(ctx, actor, "pos:sale_completed", sale, map[string]any{
		"payment_method": string(req.PaymentMethod),
		"amount_paid":    req.AmountPaid.StringFixed(2),
		"change":         change.StringFixed(2),
	})

	return &CompleteSaleResult{Sale: sale, Payment: &payment, Change: change}, nil
}

// GetSale returns the sale projection including items and payments.
func (s *Service) GetSale(ctx context.Context, saleID int64) (*Sale, error) {
	return s.repo.GetSale(ctx, saleID)
}

// recomputeTotals re-reads the items inside the current transaction and
// persists freshly summed totals, so the last committed recompute reflects
// the union of all committed item changes.
func (s *Service) recomputeTotals(ctx context.Context, tx TxRepository, saleID int64) error {
	items, err := tx.ListItems(ctx, saleID)
	if err != nil {
		return err
	}
	subtotal, taxTotal, total := SaleTotals(items)
	return tx.UpdateSaleTotals(ctx, saleID, subtotal, taxTotal, total)
}

func (s *Service) lowStockThreshold(ctx context.Context) int64 {
	if s.settings == nil {
		return s.lowStockFallback
	}
	return s.settings.GetInt(ctx, shared.SettingLowStockThreshold, s.lowStockFallback)
}

// emit publishes one event to the originating terminal, the manager and
// owner role channels, and the sale owner's user channel. Publish failures
// are logged and swallowed; they never fail the originating operation.
func (s *Service) emit(ctx context.Context, actor shared.Identity, eventType string, sale *Sale, extra map[string]any) {
	if s.publisher == nil {
		return
	}
	payload := map[string]any{"sale": sale}
	for k, v := range extra {
		payload[k] = v
	}
	event := broadcast.NewEvent(eventType, payload)

	topics := []string{
		broadcast.RoleTopic(shared.RoleManager),
		broadcast.RoleTopic(shared.RoleOwner),
	}
	terminal := actor.TerminalID
	if terminal == "" && sale.TerminalID != nil {
		terminal = *sale.TerminalID
	}
	if terminal != "" {
		topics = append(topics, broadcast.TerminalTopic(terminal))
	}
	if sale.UserID != 0 {
		topics = append(topics, broadcast.UserTopic(sale.UserID))
	}

	for _, topic := range topics {
		if err := s.publisher.Publish(ctx, topic, event); err != nil {
			s.logger.Warn("broadcast publish failed",
				slog.String("topic", topic),
				slog.String("event", eventType),
				slog.Any("error", err))
		}
	}
}

// enqueueFollowups triggers the dashboard refresh and receipt render tasks.
// Both are best-effort.
func (s *Service) enqueueFollowups(ctx context.Context, saleID int64) {
	if s.tasks == nil {
		return
	}
	if err := s.tasks.EnqueueDashboardRefresh(ctx); err != nil {
		s.logger.Warn("enqueue dashboard refresh", slog.Any("error", err))
	}
	if err := s.tasks.EnqueueReceiptRender(ctx, saleID); err != nil {
		s.logger.Warn("enqueue receipt render", slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Identity, action string, sale *Sale, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if meta == nil {
		meta = map[string]any{}
	}
	meta["sale_number"] = sale.Number
	meta["status"] = string(sale.Status)
	meta["total"] = sale.Total.StringFixed(2)
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.UserID,
		Action:   action,
		Entity:   "sale",
		EntityID: fmt.Sprintf("%d", sale.ID),
		Meta:     meta,
	}); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
