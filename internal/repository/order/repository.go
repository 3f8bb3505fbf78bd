package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kirana-labs/kirana/internal/database"
	"github.com/kirana-labs/kirana/internal/entity"
	"github.com/kirana-labs/kirana/internal/repository/inventory"
)

var repoTracer = otel.Tracer("github.com/kirana-labs/kirana/repository/order")

// Sentinel errors for order lookups and authorization.
var (
	ErrNotFound     = errors.New("order not found")
	ErrUnauthorized = errors.New("caller not authorized for order")
)

// errBundleConflict rolls the placement transaction back when reservation
// rejects any line.
var errBundleConflict = errors.New("bundle conflict")

// Repository persists order lines. Bundle placement composes the inventory
// ledger and the line insert inside one transaction so reservation and order
// creation commit or roll back as a single unit.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
	ledger *inventory.Ledger
}

// NewRepository wires the order repository.
func NewRepository(conns *database.Connections, ledger *inventory.Ledger) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
		ledger: ledger,
	}
}

// PlaceBundle reserves stock for every line against the provider and creates
// the order lines, all within one transaction. On any unavailable line nothing
// is written and the complete unavailable list is returned. The returned lines
// carry their generated ids and the priced product row.
func (r *Repository) PlaceBundle(ctx context.Context, consumerID int64, prov *entity.Provider, bundleID string, lines []inventory.Line) ([]entity.OrderLine, []inventory.Unavailable, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.PlaceBundle", trace.WithAttributes(
		attribute.Int64("consumer.id", consumerID),
		attribute.Int64("provider.id", prov.ID),
		attribute.String("bundle.id", bundleID),
	))
	defer span.End()

	var created []entity.OrderLine
	var unavailable []inventory.Unavailable

	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		reserved, rejected, err := r.ledger.ReserveTx(ctx, tx, prov, lines)
		if err != nil {
			return err
		}
		if len(rejected) > 0 {
			unavailable = rejected
			return errBundleConflict
		}

		now := time.Now().UTC()
		created = make([]entity.OrderLine, 0, len(reserved))
		for _, res := range reserved {
			created = append(created, entity.OrderLine{
				ConsumerID:         consumerID,
				ProductID:          res.Product.ID,
				Quantity:           res.Quantity,
				Status:             entity.StatusPending,
				AssignedProviderID: prov.ID,
				BundleID:           bundleID,
				CreatedAt:          now,
				UpdatedAt:          now,
			})
		}
		if _, err := tx.NewInsert().Model(&created).Exec(ctx); err != nil {
			return err
		}
		for i := range created {
			product := reserved[i].Product
			created[i].Product = &product
		}
		return nil
	})

	if errors.Is(err, errBundleConflict) {
		span.SetStatus(codes.Error, "lines unavailable")
		return nil, unavailable, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transaction failed")
		return nil, nil, err
	}
	return created, nil, nil
}

// GetLine fetches one order line with its product row.
func (r *Repository) GetLine(ctx context.Context, id int64) (*entity.OrderLine, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetLine", trace.WithAttributes(attribute.Int64("order_line.id", id)))
	defer span.End()

	line := new(entity.OrderLine)
	err := r.reader.NewSelect().Model(line).
		Relation("Product").
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return line, nil
}

// UpdateLineStatus sets the status of a single line. The caller must own the
// product or be the line's assigned provider.
func (r *Repository) UpdateLineStatus(ctx context.Context, lineID int64, status entity.Status, callerID int64) (*entity.OrderLine, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.UpdateLineStatus", trace.WithAttributes(
		attribute.Int64("order_line.id", lineID),
		attribute.String("status", string(status)),
	))
	defer span.End()

	line, err := r.GetLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if !authorized(line, callerID) {
		span.SetStatus(codes.Error, "unauthorized")
		return nil, ErrUnauthorized
	}

	now := time.Now().UTC()
	_, err = r.writer.NewUpdate().Model((*entity.OrderLine)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", now).
		Where("id = ?", lineID).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, err
	}

	line.Status = status
	line.UpdatedAt = now
	return line, nil
}

// UpdateBundleStatus applies the status to every line in the bundle the caller
// is authorized for. Lines the caller may not touch are skipped without
// failing the call; ErrNotFound is returned only when the bundle has no lines
// at all.
func (r *Repository) UpdateBundleStatus(ctx context.Context, bundleID string, status entity.Status, callerID int64) ([]entity.OrderLine, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.UpdateBundleStatus", trace.WithAttributes(
		attribute.String("bundle.id", bundleID),
		attribute.String("status", string(status)),
	))
	defer span.End()

	var updated []entity.OrderLine
	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var lines []entity.OrderLine
		err := tx.NewSelect().Model(&lines).
			Relation("Product").
			Where("?TableAlias.bundle_id = ?", bundleID).
			Order("order_line.id ASC").
			Scan(ctx)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrNotFound
		}

		now := time.Now().UTC()
		ids := make([]int64, 0, len(lines))
		for i := range lines {
			if !authorized(&lines[i], callerID) {
				continue
			}
			lines[i].Status = status
			lines[i].UpdatedAt = now
			ids = append(ids, lines[i].ID)
			updated = append(updated, lines[i])
		}
		if len(ids) == 0 {
			return nil
		}

		_, err = tx.NewUpdate().Model((*entity.OrderLine)(nil)).
			Set("status = ?", status).
			Set("updated_at = ?", now).
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "transaction failed")
		}
		return nil, err
	}
	return updated, nil
}

// ListByConsumer returns a consumer's order lines, newest first.
func (r *Repository) ListByConsumer(ctx context.Context, consumerID int64) ([]entity.OrderLine, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListByConsumer", trace.WithAttributes(attribute.Int64("consumer.id", consumerID)))
	defer span.End()

	var lines []entity.OrderLine
	err := r.reader.NewSelect().Model(&lines).
		Relation("Product").
		Where("?TableAlias.consumer_id = ?", consumerID).
		Order("order_line.created_at DESC", "order_line.id DESC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return lines, nil
}

// ListByProvider returns the lines assigned to a provider or backed by a
// product it owns, newest first.
func (r *Repository) ListByProvider(ctx context.Context, providerID int64) ([]entity.OrderLine, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListByProvider", trace.WithAttributes(attribute.Int64("provider.id", providerID)))
	defer span.End()

	var lines []entity.OrderLine
	err := r.reader.NewSelect().Model(&lines).
		Relation("Product").
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.assigned_provider_id = ?", providerID).
				WhereOr("product.provider_id = ?", providerID)
		}).
		Order("order_line.created_at DESC", "order_line.id DESC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return lines, nil
}

// authorized reports whether the caller owns the line's product or is its
// assigned provider.
func authorized(line *entity.OrderLine, callerID int64) bool {
	if line.AssignedProviderID == callerID {
		return true
	}
	return line.Product != nil && line.Product.ProviderID == callerID
}
