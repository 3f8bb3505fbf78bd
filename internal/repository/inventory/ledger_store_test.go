package inventory

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/kirana-labs/kirana/internal/entity"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A single connection keeps every statement on the same in-memory store.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	if _, err := db.NewCreateTable().Model((*entity.Product)(nil)).Exec(context.Background()); err != nil {
		t.Fatalf("create products table: %v", err)
	}
	return db
}

func seedProducts(t *testing.T, db *bun.DB, products []entity.Product) {
	t.Helper()
	if _, err := db.NewInsert().Model(&products).Exec(context.Background()); err != nil {
		t.Fatalf("seed products: %v", err)
	}
}

func productByName(t *testing.T, db *bun.DB, name string) entity.Product {
	t.Helper()
	p := new(entity.Product)
	err := db.NewSelect().Model(p).Where("name = ?", name).Scan(context.Background())
	if err != nil {
		t.Fatalf("load product %s: %v", name, err)
	}
	return *p
}

var errConflict = errors.New("reservation conflict")

// reserve mirrors the production caller: ReserveTx inside one transaction,
// rolled back whenever any line is unavailable.
func reserve(db *bun.DB, ledger *Ledger, prov *entity.Provider, lines []Line) ([]Reserved, []Unavailable, error) {
	var reserved []Reserved
	var unavailable []Unavailable
	err := db.RunInTx(context.Background(), &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		reserved, unavailable, txErr = ledger.ReserveTx(ctx, tx, prov, lines)
		if txErr != nil {
			return txErr
		}
		if len(unavailable) > 0 {
			return errConflict
		}
		return nil
	})
	return reserved, unavailable, err
}

func testProvider() *entity.Provider {
	return &entity.Provider{ID: 1, Pincode: "600017"}
}

func testCatalog() []entity.Product {
	return []entity.Product{
		{ProviderID: 1, Name: "Rice", Category: entity.CategoryCereals, PriceCents: 7200, Stock: 5, Pincode: "600017"},
		{ProviderID: 1, Name: "Tomato", Category: entity.CategoryVegetables, PriceCents: 3200, Stock: 1, Pincode: "600017"},
		{ProviderID: 2, Name: "Banana", Category: entity.CategoryFruits, PriceCents: 5000, Stock: 9, Pincode: "600004"},
	}
}

func TestReserveConflictLeavesStockUntouched(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db, testCatalog())
	ledger := &Ledger{writer: db}

	reserved, unavailable, err := reserve(db, ledger, testProvider(), []Line{
		{Name: "Rice", Category: entity.CategoryCereals, Quantity: 2},
		{Name: "Tomato", Category: entity.CategoryVegetables, Quantity: 2},
	})
	if !errors.Is(err, errConflict) {
		t.Fatalf("err = %v, want conflict rollback", err)
	}
	if reserved != nil {
		t.Fatalf("reserved = %v, want nil", reserved)
	}
	if len(unavailable) != 1 {
		t.Fatalf("unavailable = %+v, want exactly the tomato line", unavailable)
	}
	if unavailable[0].Name != "Tomato" || unavailable[0].Reason != "insufficient_stock (1 left)" {
		t.Fatalf("unavailable[0] = %+v", unavailable[0])
	}

	// All-or-nothing: the satisfiable rice line must not have been decremented.
	if rice := productByName(t, db, "Rice"); rice.Stock != 5 || rice.TotalSold != 0 {
		t.Fatalf("rice stock/sold = %d/%d, want 5/0", rice.Stock, rice.TotalSold)
	}
	if tomato := productByName(t, db, "Tomato"); tomato.Stock != 1 || tomato.TotalSold != 0 {
		t.Fatalf("tomato stock/sold = %d/%d, want 1/0", tomato.Stock, tomato.TotalSold)
	}
}

func TestReserveReportsUnknownAndForeignProducts(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db, testCatalog())
	ledger := &Ledger{writer: db}

	// Banana exists but belongs to another provider's catalog.
	_, unavailable, err := reserve(db, ledger, testProvider(), []Line{
		{Name: "Mango", Category: entity.CategoryFruits, Quantity: 1},
		{Name: "Banana", Category: entity.CategoryFruits, Quantity: 1},
	})
	if !errors.Is(err, errConflict) {
		t.Fatalf("err = %v, want conflict rollback", err)
	}
	if len(unavailable) != 2 {
		t.Fatalf("unavailable = %+v, want both lines", unavailable)
	}
	for i, u := range unavailable {
		if u.Reason != ReasonNotFound {
			t.Fatalf("unavailable[%d].Reason = %q, want %q", i, u.Reason, ReasonNotFound)
		}
	}
}

func TestReserveCommitsWhenAllLinesValidate(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db, testCatalog())
	ledger := &Ledger{writer: db}

	reserved, unavailable, err := reserve(db, ledger, testProvider(), []Line{
		{Name: "Rice", Category: entity.CategoryCereals, Quantity: 2},
		{Name: "Tomato", Category: entity.CategoryVegetables, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if unavailable != nil {
		t.Fatalf("unavailable = %+v, want nil", unavailable)
	}
	if len(reserved) != 2 {
		t.Fatalf("reserved %d lines, want 2", len(reserved))
	}
	if reserved[0].Product.Stock != 3 || reserved[1].Product.Stock != 0 {
		t.Fatalf("reserved stocks = %d/%d, want 3/0", reserved[0].Product.Stock, reserved[1].Product.Stock)
	}

	if rice := productByName(t, db, "Rice"); rice.Stock != 3 || rice.TotalSold != 2 {
		t.Fatalf("rice stock/sold = %d/%d, want 3/2", rice.Stock, rice.TotalSold)
	}
	if tomato := productByName(t, db, "Tomato"); tomato.Stock != 0 || tomato.TotalSold != 1 {
		t.Fatalf("tomato stock/sold = %d/%d, want 0/1", tomato.Stock, tomato.TotalSold)
	}
}

func TestReserveLastUnitGoesToExactlyOneReservation(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db, testCatalog())
	ledger := &Ledger{writer: db}

	line := []Line{{Name: "Tomato", Category: entity.CategoryVegetables, Quantity: 1}}

	if _, _, err := reserve(db, ledger, testProvider(), line); err != nil {
		t.Fatalf("first reservation: %v", err)
	}

	_, unavailable, err := reserve(db, ledger, testProvider(), line)
	if !errors.Is(err, errConflict) {
		t.Fatalf("err = %v, want conflict rollback", err)
	}
	if len(unavailable) != 1 || unavailable[0].Reason != "insufficient_stock (0 left)" {
		t.Fatalf("unavailable = %+v, want insufficient_stock (0 left)", unavailable)
	}
	if tomato := productByName(t, db, "Tomato"); tomato.Stock != 0 || tomato.TotalSold != 1 {
		t.Fatalf("tomato stock/sold = %d/%d, want 0/1", tomato.Stock, tomato.TotalSold)
	}
}
