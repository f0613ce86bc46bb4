package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/five82/storefront/internal/config"
	"github.com/five82/storefront/internal/persist"
)

const catalogFixture = `
[[products]]
id = "p1"
slug = "lamp"
name = "Desk Lamp"
price = 24.5
stock = 3
category = "home"
`

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	b, done, err := openBackend(ctx, config.StorageConfig{Backend: config.BackendMemory})
	if err != nil {
		t.Fatalf("openBackend(memory) returned error: %v", err)
	}
	done()
	if _, ok := b.(*persist.Memory); !ok {
		t.Fatalf("memory backend = %T, want *persist.Memory", b)
	}

	dir := filepath.Join(t.TempDir(), "state")
	b, done, err = openBackend(ctx, config.StorageConfig{Backend: config.BackendFile, Dir: dir})
	if err != nil {
		t.Fatalf("openBackend(file) returned error: %v", err)
	}
	done()
	if d, ok := b.(*persist.Dir); !ok || d.Path() != dir {
		t.Fatalf("file backend = %#v, want *persist.Dir at %q", b, dir)
	}

	if _, _, err := openBackend(ctx, config.StorageConfig{Backend: "s3"}); err == nil {
		t.Fatal("openBackend(s3) returned nil error")
	}
}

func TestCatalogSource_FileReloadsOnFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	if err := os.WriteFile(path, []byte(catalogFixture), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	source, fetch, err := catalogSource(config.CatalogConfig{File: path, URL: "ignored:1"})
	if err != nil {
		t.Fatalf("catalogSource returned error: %v", err)
	}

	updated := catalogFixture + `
[[products]]
id = "p2"
slug = "chair"
name = "Chair"
price = 80
stock = 1
category = "home"
`
	if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	items, err := fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("fetch returned %d items, want 2", len(items))
	}
	if _, err := source.ProductBySlug(context.Background(), "chair"); err != nil {
		t.Fatalf("source not refreshed after fetch: %v", err)
	}
}

func TestCatalogSource_MissingFileFails(t *testing.T) {
	if _, _, err := catalogSource(config.CatalogConfig{File: filepath.Join(t.TempDir(), "none.toml")}); err == nil {
		t.Fatal("catalogSource returned nil error for missing file")
	}
}

func TestStorageLabel(t *testing.T) {
	tests := []struct {
		cfg  config.StorageConfig
		want string
	}{
		{config.StorageConfig{Backend: config.BackendMemory}, "memory"},
		{config.StorageConfig{Backend: config.BackendFile, Dir: "/tmp/s"}, "file /tmp/s"},
		{config.StorageConfig{Backend: config.BackendPostgres, DSN: "postgres://u:secret@h/db"}, "postgres"},
	}
	for _, tt := range tests {
		if got := storageLabel(tt.cfg); got != tt.want {
			t.Fatalf("storageLabel(%+v) = %q, want %q", tt.cfg, got, tt.want)
		}
	}
}

func TestNotifyPersistError_KeepsNewestWithoutBlocking(t *testing.T) {
	ch := make(chan error, 1)
	notify := notifyPersistError(ch)

	first := errors.New("disk full")
	second := errors.New("read-only file system")
	notify(first)
	notify(second)

	select {
	case got := <-ch:
		if got != second {
			t.Fatalf("received %v, want %v", got, second)
		}
	default:
		t.Fatal("no error delivered")
	}
}
