package db

import (
	"context"
	"path/filepath"
	"testing"

	"imagemarket/internal/models"
	"imagemarket/internal/store"
	"imagemarket/internal/store/storetest"
)

func openTestDB(t *testing.T, seed bool) *DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "uploads.db")
	db, err := Init(DriverSQLite, dsn, seed)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return openTestDB(t, true)
	})
}

func TestInitRejectsUnknownDriver(t *testing.T) {
	if _, err := Init("mysql", "whatever", false); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestSeedRunsOnlyOnEmptyTable(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "reopen.db")

	first, err := Init(DriverSQLite, dsn, true)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	created, err := first.CreateUpload(context.Background(), models.Upload{Title: "kept", UserID: "user_9"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	first.Close()

	second, err := Init(DriverSQLite, dsn, true)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	all, err := second.ListUploads(context.Background(), models.UploadFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("reopened store has %d uploads, want 3", len(all))
	}

	next, err := second.CreateUpload(context.Background(), models.Upload{Title: "after reopen"})
	if err != nil {
		t.Fatalf("create after reopen: %v", err)
	}
	if next.ID == created.ID {
		t.Fatalf("id %q reused after reopen", next.ID)
	}
}

func TestRebind(t *testing.T) {
	pg := &DB{driver: DriverPostgres}
	if got := pg.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Fatalf("postgres rebind = %q", got)
	}
	lite := &DB{driver: DriverSQLite}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("sqlite rebind = %q", got)
	}
}

func TestPriceRoundTripsAsCents(t *testing.T) {
	db := openTestDB(t, false)
	ctx := context.Background()

	created, err := db.CreateUpload(ctx, models.Upload{Title: "p", Price: 1999, UserID: "u"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := db.GetUpload(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Price.String() != "19.99" {
		t.Fatalf("price = %s, want 19.99", got.Price)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("createdAt = %v, want %v", got.CreatedAt, created.CreatedAt)
	}
}
