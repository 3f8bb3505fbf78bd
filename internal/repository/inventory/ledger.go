package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kirana-labs/kirana/internal/database"
	"github.com/kirana-labs/kirana/internal/entity"
)

var ledgerTracer = otel.Tracer("github.com/kirana-labs/kirana/repository/inventory")

// Unavailable reasons surfaced to callers. Insufficient stock carries the
// remaining count, e.g. "insufficient_stock (1 left)".
const (
	ReasonNotFound        = "not_found_for_provider"
	ReasonInvalidCategory = "invalid_category"
	ReasonInvalidQuantity = "invalid_quantity"
)

// Line is one requested (product, quantity) pair. Product identity is scoped
// to a single provider's catalog: (name, category, provider pincode).
type Line struct {
	Name     string
	Category entity.Category
	Quantity int
}

// Unavailable describes one line that could not be reserved.
type Unavailable struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// Reserved pairs a locked catalog row with the reserved quantity.
type Reserved struct {
	Product  entity.Product
	Quantity int
}

// Ledger performs atomic check-and-decrement over one provider's stock.
type Ledger struct {
	writer *bun.DB
}

// NewLedger wires the ledger against the primary connection.
func NewLedger(conns *database.Connections) *Ledger {
	return &Ledger{writer: conns.Writer}
}

// ReserveTx validates every line in input order against the provider's catalog
// and, only when all validate, decrements stock and bumps the sold counter.
// Rows are locked with FOR UPDATE so concurrent reservations serialize; two
// bundles racing for the last unit cannot both decrement past zero. Evaluation
// continues past a failing line so the caller receives the complete
// unavailable set in one round-trip. The caller owns commit/rollback and must
// roll back whenever unavailable is non-empty.
func (l *Ledger) ReserveTx(ctx context.Context, tx bun.IDB, prov *entity.Provider, lines []Line) ([]Reserved, []Unavailable, error) {
	ctx, span := ledgerTracer.Start(ctx, "InventoryLedger.Reserve", trace.WithAttributes(
		attribute.Int64("provider.id", prov.ID),
		attribute.Int("lines", len(lines)),
	))
	defer span.End()

	var reserved []Reserved
	var unavailable []Unavailable

	for _, line := range lines {
		if !line.Category.Valid() {
			unavailable = append(unavailable, Unavailable{Name: line.Name, Category: string(line.Category), Reason: ReasonInvalidCategory})
			continue
		}
		if line.Quantity < 1 {
			unavailable = append(unavailable, Unavailable{Name: line.Name, Category: string(line.Category), Reason: ReasonInvalidQuantity})
			continue
		}

		p := new(entity.Product)
		q := tx.NewSelect().Model(p).
			Where("provider_id = ?", prov.ID).
			Where("name = ?", line.Name).
			Where("category = ?", line.Category).
			Where("pincode = ?", prov.Pincode).
			Limit(1)
		// SQLite has no row locks; its single-writer transactions already
		// serialize writers.
		if tx.Dialect().Name() != dialect.SQLite {
			q = q.For("UPDATE")
		}
		err := q.Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			unavailable = append(unavailable, Unavailable{Name: line.Name, Category: string(line.Category), Reason: ReasonNotFound})
			continue
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "lock failed")
			return nil, nil, err
		}

		if p.Stock < line.Quantity {
			unavailable = append(unavailable, Unavailable{
				Name:     line.Name,
				Category: string(line.Category),
				Reason:   fmt.Sprintf("insufficient_stock (%d left)", p.Stock),
			})
			continue
		}

		reserved = append(reserved, Reserved{Product: *p, Quantity: line.Quantity})
	}

	if len(unavailable) > 0 {
		span.SetStatus(codes.Error, "lines unavailable")
		return nil, unavailable, nil
	}

	now := time.Now().UTC()
	for i := range reserved {
		res := &reserved[i]
		_, err := tx.NewUpdate().Model((*entity.Product)(nil)).
			Set("stock = stock - ?", res.Quantity).
			Set("total_sold = total_sold + ?", res.Quantity).
			Set("updated_at = ?", now).
			Where("id = ?", res.Product.ID).
			Exec(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "decrement failed")
			return nil, nil, err
		}
		res.Product.Stock -= res.Quantity
		res.Product.TotalSold += int64(res.Quantity)
	}

	return reserved, nil, nil
}
