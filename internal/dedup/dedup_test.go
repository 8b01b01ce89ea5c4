package dedup

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func setupTestDedup(t *testing.T) (*Deduplicator, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	d, err := New("redis://"+mr.Addr(), "")
	if err != nil {
		mr.Close()
		t.Fatalf("New: %v", err)
	}
	return d, mr
}

func TestAlreadySentNewKey(t *testing.T) {
	d, mr := setupTestDedup(t)
	defer mr.Close()
	defer d.Close()

	ctx := context.Background()
	if d.AlreadySent(ctx, "alert:ABC:2026-06-20") {
		t.Error("AlreadySent should return false for new key")
	}
}

func TestRecordAndAlreadySent(t *testing.T) {
	d, mr := setupTestDedup(t)
	defer mr.Close()
	defer d.Close()

	ctx := context.Background()
	d.Record(ctx, "alert:ABC:2026-06-20")

	if !d.AlreadySent(ctx, "alert:ABC:2026-06-20") {
		t.Error("AlreadySent should return true after Record")
	}
}

func TestRecordSetsTTL(t *testing.T) {
	d, mr := setupTestDedup(t)
	defer mr.Close()
	defer d.Close()

	ctx := context.Background()
	d.Record(ctx, "alert:ABC:2026-06-20")

	if ttl := mr.TTL("alert:ABC:2026-06-20"); ttl != keyTTL {
		t.Errorf("TTL = %v, want %v", ttl, keyTTL)
	}
}

func TestClear(t *testing.T) {
	d, mr := setupTestDedup(t)
	defer mr.Close()
	defer d.Close()

	ctx := context.Background()
	d.Record(ctx, "alert:XYZ:2026-06-25")

	if !d.AlreadySent(ctx, "alert:XYZ:2026-06-25") {
		t.Fatal("should be sent after Record")
	}

	d.Clear(ctx, "alert:XYZ:2026-06-25")
	if d.AlreadySent(ctx, "alert:XYZ:2026-06-25") {
		t.Error("AlreadySent should return false after Clear")
	}
}

func TestAlreadySentFailOpen(t *testing.T) {
	d, mr := setupTestDedup(t)
	defer d.Close()

	// Stop Redis to simulate failure
	mr.Close()

	ctx := context.Background()
	if d.AlreadySent(ctx, "any:key") {
		t.Error("AlreadySent should return false (fail-open) when Redis is down")
	}
}
