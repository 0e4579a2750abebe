package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestDumpExtractsPgxDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_orders_order_number", TableName: "orders"}
	err := Internal(fmt.Errorf("insert order: %w", pgErr), "persist order")

	d := Dump(err)
	if d.Code != CodeInternal {
		t.Fatalf("expected internal code, got %s", d.Code)
	}
	if d.PG == nil || d.PG.SQLState != "23505" || d.PG.Constraint != "ux_orders_order_number" || d.PG.Table != "orders" {
		t.Fatalf("unexpected pg fields %+v", d.PG)
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d", len(d.Chain))
	}
}

func TestDumpExtractsPqDetails(t *testing.T) {
	err := fmt.Errorf("update stock: %w", &pq.Error{Code: "40001", Table: "stocks"})
	d := Dump(err)
	if d.PG == nil || d.PG.SQLState != "40001" || d.PG.Table != "stocks" {
		t.Fatalf("unexpected pq fields %+v", d.PG)
	}
	if d.Code != "" {
		t.Fatalf("untyped error should have empty code, got %s", d.Code)
	}
}

func TestDumpNil(t *testing.T) {
	if d := Dump(nil); d.TopMessage != "" || len(d.Chain) != 0 || d.PG != nil {
		t.Fatalf("expected empty dump, got %+v", d)
	}
}

func TestDumpFields(t *testing.T) {
	plain := Dump(Conflict("table busy")).Fields()
	if plain["error_code"] != CodeConflict {
		t.Fatalf("expected error_code, got %v", plain["error_code"])
	}
	if _, ok := plain["pg_sqlstate"]; ok {
		t.Fatal("pg fields must be absent without a postgres error")
	}

	withPG := Dump(fmt.Errorf("lock: %w", &pgconn.PgError{Code: "55P03", TableName: "tables"})).Fields()
	if withPG["pg_sqlstate"] != "55P03" || withPG["pg_table"] != "tables" {
		t.Fatalf("unexpected pg fields %v", withPG)
	}
	if _, ok := withPG["error_code"]; ok {
		t.Fatal("untyped error should not carry error_code")
	}
}

func TestSQLState(t *testing.T) {
	if got := SQLState(fmt.Errorf("x: %w", &pq.Error{Code: "40P01"})); got != "40P01" {
		t.Fatalf("expected 40P01, got %q", got)
	}
	if got := SQLState(fmt.Errorf("plain")); got != "" {
		t.Fatalf("expected empty sqlstate, got %q", got)
	}
}
