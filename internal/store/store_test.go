package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/config"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("doc-%d", n)
	}
}

func openSQLite(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// implementations returns one fresh store per backend for the given tenant.
func implementations(t *testing.T, name, projectID string) map[string]Store {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}

	mem, err := NewMemory(projectID, WithClock(clock.Now), WithIDGenerator(sequentialIDs()))
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	g, err := NewGorm(openSQLite(t, name), projectID, WithClock(clock.Now), WithIDGenerator(sequentialIDs()))
	if err != nil {
		t.Fatalf("NewGorm: %v", err)
	}
	return map[string]Store{"memory": mem, "gorm": g}
}

func TestNewRequiresProjectID(t *testing.T) {
	if _, err := NewMemory(""); !errors.Is(err, config.ErrMissingProjectID) {
		t.Errorf("NewMemory: expected ErrMissingProjectID, got %v", err)
	}
	if _, err := NewGorm(nil, ""); !errors.Is(err, config.ErrMissingProjectID) {
		t.Errorf("NewGorm: expected ErrMissingProjectID, got %v", err)
	}
}

func TestAddFetchAllOrdering(t *testing.T) {
	ctx := context.Background()
	for name, s := range implementations(t, "ordering", "gym-one") {
		t.Run(name, func(t *testing.T) {
			first, err := s.Add(ctx, "programs", Record{"name": "Yoga", "id": "ignored"})
			if err != nil {
				t.Fatalf("Add: %v", err)
			}
			second, err := s.Add(ctx, "programs", Record{"name": "Boxing"})
			if err != nil {
				t.Fatalf("Add: %v", err)
			}
			if first == "ignored" {
				t.Errorf("caller supplied id must not be used")
			}

			all, err := s.FetchAll(ctx, "programs")
			if err != nil {
				t.Fatalf("FetchAll: %v", err)
			}
			if len(all) != 2 {
				t.Fatalf("expected 2 records, got %d", len(all))
			}
			if all[0].ID() != second || all[1].ID() != first {
				t.Errorf("expected newest first, got %s then %s", all[0].ID(), all[1].ID())
			}
			if all[0].String("name") != "Boxing" {
				t.Errorf("unexpected first record %v", all[0])
			}
			if _, ok := all[0]["createdAt"]; !ok {
				t.Errorf("expected createdAt stamp, got %v", all[0])
			}
			if _, ok := all[0]["updatedAt"]; !ok {
				t.Errorf("expected updatedAt stamp, got %v", all[0])
			}
		})
	}
}

func TestTenantScoping(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t, "scoping")
	a, _ := NewGorm(db, "gym-a")
	b, _ := NewGorm(db, "gym-b")

	id, err := a.Add(ctx, "gallery", Record{"url": "a.jpg"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	all, err := b.FetchAll(ctx, "gallery")
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("tenant b must not see tenant a records, got %v", all)
	}
	if _, err := b.FetchOne(ctx, "gallery", id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound across tenants, got %v", err)
	}
}

func TestFetchOneAndUpdate(t *testing.T) {
	ctx := context.Background()
	for name, s := range implementations(t, "update", "gym-one") {
		t.Run(name, func(t *testing.T) {
			if _, err := s.FetchOne(ctx, "inquiries", "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := s.Update(ctx, "inquiries", "missing", Record{"status": "closed"}); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound on update, got %v", err)
			}

			id, err := s.Add(ctx, "inquiries", Record{"name": "Ann", "status": "new"})
			if err != nil {
				t.Fatalf("Add: %v", err)
			}
			before, _ := s.FetchOne(ctx, "inquiries", id)

			if err := s.Update(ctx, "inquiries", id, Record{"status": "contacted"}); err != nil {
				t.Fatalf("Update: %v", err)
			}
			rec, err := s.FetchOne(ctx, "inquiries", id)
			if err != nil {
				t.Fatalf("FetchOne: %v", err)
			}
			if rec.String("status") != "contacted" || rec.String("name") != "Ann" {
				t.Errorf("unexpected record after update: %v", rec)
			}
			if rec.ID() != id {
				t.Errorf("expected id %s, got %s", id, rec.ID())
			}
			if reflect.DeepEqual(before["updatedAt"], rec["updatedAt"]) {
				t.Errorf("expected updatedAt to be refreshed")
			}
		})
	}
}

func TestJSONNumbersReadBackAsFloat64(t *testing.T) {
	ctx := context.Background()
	for name, s := range implementations(t, "numbers", "gym-one") {
		t.Run(name, func(t *testing.T) {
			id, err := s.Add(ctx, "testimonials", Record{
				"rating": float64(0),
				"stats":  map[string]any{"visits": float64(12)},
				"scores": []any{float64(1), float64(2.5)},
			})
			if err != nil {
				t.Fatalf("Add: %v", err)
			}
			rec, err := s.FetchOne(ctx, "testimonials", id)
			if err != nil {
				t.Fatalf("FetchOne: %v", err)
			}
			if rec["rating"] != float64(0) {
				t.Errorf("rating = %#v, want float64(0)", rec["rating"])
			}
			if v := rec["stats"].(map[string]any)["visits"]; v != float64(12) {
				t.Errorf("nested number = %#v", v)
			}
			if !reflect.DeepEqual(rec["scores"], []any{float64(1), float64(2.5)}) {
				t.Errorf("scores = %#v", rec["scores"])
			}
		})
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range implementations(t, "delete", "gym-one") {
		t.Run(name, func(t *testing.T) {
			id, _ := s.Add(ctx, "testimonials", Record{"name": "Bo"})
			if err := s.Delete(ctx, "testimonials", id); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.FetchOne(ctx, "testimonials", id); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound after delete, got %v", err)
			}
			if err := s.Delete(ctx, "testimonials", id); err != nil {
				t.Errorf("deleting a missing record should succeed, got %v", err)
			}
		})
	}
}

func TestMergeSemantics(t *testing.T) {
	ctx := context.Background()
	for name, s := range implementations(t, "merge", "gym-one") {
		t.Run(name, func(t *testing.T) {
			initial := Record{
				"hero":    map[string]any{"title": "Be strong"},
				"gallery": []any{map[string]any{"id": "g1"}},
				"contact": map[string]any{"address": "Main St", "whatsappNumber": "old"},
			}
			if err := s.Merge(ctx, "website", "gymProData", initial); err != nil {
				t.Fatalf("Merge create: %v", err)
			}

			err := s.Merge(ctx, "website", "gymProData", Record{
				"contact": map[string]any{"whatsappNumber": "+1555"},
				"gallery": []any{},
			})
			if err != nil {
				t.Fatalf("Merge update: %v", err)
			}

			rec, err := s.FetchOne(ctx, "website", "gymProData")
			if err != nil {
				t.Fatalf("FetchOne: %v", err)
			}
			contact, _ := rec["contact"].(map[string]any)
			if contact["address"] != "Main St" || contact["whatsappNumber"] != "+1555" {
				t.Errorf("expected nested merge of contact, got %v", contact)
			}
			if gallery, _ := rec["gallery"].([]any); len(gallery) != 0 {
				t.Errorf("expected arrays to be replaced, got %v", rec["gallery"])
			}
			hero, _ := rec["hero"].(map[string]any)
			if hero["title"] != "Be strong" {
				t.Errorf("expected untouched field to survive, got %v", rec["hero"])
			}
			if _, ok := rec["createdAt"]; ok {
				t.Errorf("merge must not stamp createdAt into data")
			}
		})
	}
}

func TestMemoryFailCollection(t *testing.T) {
	ctx := context.Background()
	m, _ := NewMemory("gym-one")
	boom := errors.New("unavailable")

	m.FailCollection("programs", boom)
	if _, err := m.FetchAll(ctx, "programs"); !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	if _, err := m.FetchAll(ctx, "gallery"); err != nil {
		t.Fatalf("other collections must keep working, got %v", err)
	}

	m.FailCollection("programs", nil)
	if _, err := m.FetchAll(ctx, "programs"); err != nil {
		t.Fatalf("expected failure to clear, got %v", err)
	}
}

func TestMergeIntoDoesNotAliasSource(t *testing.T) {
	src := map[string]any{"footer": map[string]any{"socialMedia": map[string]any{"facebook": "fb"}}}
	dst := map[string]any{"footer": map[string]any{"copyright": "2025"}}

	MergeInto(dst, src)
	src["footer"].(map[string]any)["socialMedia"].(map[string]any)["facebook"] = "changed"

	footer := dst["footer"].(map[string]any)
	if footer["copyright"] != "2025" {
		t.Errorf("expected sibling key preserved, got %v", footer)
	}
	if footer["socialMedia"].(map[string]any)["facebook"] != "fb" {
		t.Errorf("merged value must be a copy, got %v", footer["socialMedia"])
	}
}
