package sqlstore_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"testing"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-fleetbridge/core"
	fleetmigrations "github.com/goliatone/go-fleetbridge/migrations"
	sqlstore "github.com/goliatone/go-fleetbridge/store/sql"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool {
	return false
}

func (c testPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c testPersistenceConfig) GetServer() string {
	return c.server
}

func (c testPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c testPersistenceConfig) GetOtelIdentifier() string {
	return "go-fleetbridge-tests"
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:fleetbridge-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := testPersistenceConfig{
		driver: "sqlite3",
		server: dsn,
	}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	ctx := context.Background()
	_, err = fleetmigrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != fleetmigrations.DialectSQLite {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, fleetmigrations.WithValidationTargets(fleetmigrations.DialectSQLite))
	if err != nil {
		_ = client.Close()
		t.Fatalf("register migrations: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}

	return client, func() {
		_ = client.Close()
	}
}

func newLinkStore(t *testing.T, client *persistence.Client) *sqlstore.RepositoryFactory {
	t.Helper()
	factory := sqlstore.NewRepositoryFactory()
	if err := factory.BuildStores(client); err != nil {
		t.Fatalf("build stores: %v", err)
	}
	return factory
}

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	var tableName string
	if err := client.DB().NewRaw(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		"inspection_links",
	).Scan(context.Background(), &tableName); err != nil {
		t.Fatalf("query sqlite master: %v", err)
	}
	if tableName != "inspection_links" {
		t.Fatalf("expected inspection_links table, got %q", tableName)
	}
}

func TestInspectionLinkStore_UpsertKeepsExistingFieldOnNull(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()
	store := newLinkStore(t, client).InspectionLinkStore()

	internal := "WO-INT-5"
	first, err := store.Upsert(ctx, core.InspectionLink{
		InspectionID:   "insp-100",
		InternalNumber: &internal,
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if first.InternalNumber == nil || *first.InternalNumber != internal {
		t.Fatalf("expected internal number stored, got %+v", first)
	}
	if first.ExternalWorkOrderID != nil {
		t.Fatalf("expected nil external id, got %d", *first.ExternalWorkOrderID)
	}

	external := int64(42)
	second, err := store.Upsert(ctx, core.InspectionLink{
		InspectionID:        "insp-100",
		ExternalWorkOrderID: &external,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ExternalWorkOrderID == nil || *second.ExternalWorkOrderID != external {
		t.Fatalf("expected external id stored, got %+v", second)
	}
	if second.InternalNumber == nil || *second.InternalNumber != internal {
		t.Fatalf("second upsert must keep the internal number, got %+v", second)
	}

	stored, err := store.Get(ctx, "insp-100")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.InternalNumber == nil || stored.ExternalWorkOrderID == nil {
		t.Fatalf("expected both fields populated, got %+v", stored)
	}
}

func TestInspectionLinkStore_UpsertOverwritesWithNonNull(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()
	store := newLinkStore(t, client).InspectionLinkStore()

	first := int64(42)
	if _, err := store.Upsert(ctx, core.InspectionLink{
		InspectionID:        "insp-200",
		ExternalWorkOrderID: &first,
	}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := int64(43)
	updated, err := store.Upsert(ctx, core.InspectionLink{
		InspectionID:        "insp-200",
		ExternalWorkOrderID: &second,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if updated.ExternalWorkOrderID == nil || *updated.ExternalWorkOrderID != second {
		t.Fatalf("last non-null value must win, got %+v", updated)
	}
}

func TestInspectionLinkStore_GetMissingReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()
	store := newLinkStore(t, client).InspectionLinkStore()

	if _, err := store.Get(ctx, "insp-missing"); !errors.Is(err, core.ErrLinkNotFound) {
		t.Fatalf("expected link-not-found, got %v", err)
	}
}

func TestInspectionLinkStore_UpsertRejectsEmptyLink(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()
	store := newLinkStore(t, client).InspectionLinkStore()

	if _, err := store.Upsert(ctx, core.InspectionLink{InspectionID: "insp-300"}); err == nil {
		t.Fatalf("expected validation error for link with no fields")
	}
}
