package cache

import (
	"context"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"foodinspect/internal/infrastructure/persistence/model"
)

func setupCache(t *testing.T) *GeocodeCache {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "cache.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.GeocodeKV{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewGeocodeCache(db)
}

func TestCacheSetGetDelete(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	if _, found, err := c.Get(ctx, "revgeo:41.88000,-87.63000"); err != nil || found {
		t.Fatalf("Get() on empty cache: found=%v err=%v", found, err)
	}

	if err := c.Set(ctx, "revgeo:41.88000,-87.63000", `{"city":"Chicago"}`, 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, found, err := c.Get(ctx, "revgeo:41.88000,-87.63000")
	if err != nil || !found {
		t.Fatalf("Get() after set: found=%v err=%v", found, err)
	}
	if value != `{"city":"Chicago"}` {
		t.Fatalf("value = %q", value)
	}

	if err := c.Delete(ctx, "revgeo:41.88000,-87.63000"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, found, _ := c.Get(ctx, "revgeo:41.88000,-87.63000"); found {
		t.Fatal("key survived delete")
	}
}

func TestCacheSetOverwritesValue(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v1", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Set(ctx, "k", "v2", 0); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	value, found, err := c.Get(ctx, "k")
	if err != nil || !found || value != "v2" {
		t.Fatalf("Get() = %q found=%v err=%v", value, found, err)
	}
}

func TestCacheRejectsEmptyKey(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	if _, _, err := c.Get(ctx, "  "); err == nil {
		t.Fatal("Get() expected error for empty key")
	}
	if err := c.Set(ctx, "", "v", 0); err == nil {
		t.Fatal("Set() expected error for empty key")
	}
}
