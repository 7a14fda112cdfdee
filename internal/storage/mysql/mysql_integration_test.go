//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"lovehome/internal/domain"
	mysqlrepo "lovehome/internal/storage/mysql"
)

// ---------- small helpers ----------

func migrationsDir(t *testing.T) string {
	t.Helper()
	if dir := os.Getenv("MIGRATIONS_DIR"); dir != "" {
		return dir
	}
	// repo-root migrations/ relative to this package
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir(t)

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("migrations dir %s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=love_home",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "love_home")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return ts
}

func seedHouse(t *testing.T, repo *mysqlrepo.Repo, areaID int64, title string, price int64) int64 {
	t.Helper()
	h := domain.House{
		UserID:    1,
		Title:     title,
		Price:     price,
		AreaID:    areaID,
		Address:   "addr",
		RoomCount: 1,
		Acreage:   40,
		Unit:      "1br",
		Capacity:  2,
		Beds:      "1 double",
		Deposit:   price,
		MinDays:   1,
		MaxDays:   30,
	}
	if err := repo.InsertHouse(context.Background(), &h); err != nil {
		t.Fatalf("InsertHouse %s: %v", title, err)
	}
	return h.ID
}

// ---------- the tests ----------

func TestRepo_MySQL_SearchAndConflicts(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	area := domain.Area{Name: "Riverside"}
	if err := repo.InsertArea(ctx, &area); err != nil {
		t.Fatalf("InsertArea: %v", err)
	}
	other := domain.Area{Name: "Old Town"}
	if err := repo.InsertArea(ctx, &other); err != nil {
		t.Fatalf("InsertArea: %v", err)
	}

	h100 := seedHouse(t, repo, area.ID, "mid", 100)
	h200 := seedHouse(t, repo, area.ID, "high", 200)
	h50 := seedHouse(t, repo, area.ID, "low", 50)
	seedHouse(t, repo, other.ID, "elsewhere", 10)

	booked := domain.Order{HouseID: h200, BeginDate: day(t, "2024-01-10"), EndDate: day(t, "2024-01-20"), Status: "COMPLETE"}
	if err := repo.InsertOrder(ctx, &booked); err != nil {
		t.Fatalf("InsertOrder: %v", err)
	}

	// Overlapping request window excludes the booked house.
	ids, err := repo.ConflictHouseIDs(ctx, ptr(day(t, "2024-01-15")), ptr(day(t, "2024-01-25")))
	if err != nil {
		t.Fatalf("ConflictHouseIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != h200 {
		t.Fatalf("expected conflict [%d], got %v", h200, ids)
	}

	// Disjoint window right after checkout: no conflict.
	ids, err = repo.ConflictHouseIDs(ctx, ptr(day(t, "2024-01-21")), ptr(day(t, "2024-01-25")))
	if err != nil {
		t.Fatalf("ConflictHouseIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no conflicts, got %v", ids)
	}

	// One-sided bounds keep their historical predicates.
	ids, err = repo.ConflictHouseIDs(ctx, ptr(day(t, "2024-01-05")), nil)
	if err != nil || len(ids) != 1 {
		t.Fatalf("start-only: ids=%v err=%v", ids, err)
	}
	ids, err = repo.ConflictHouseIDs(ctx, nil, ptr(day(t, "2024-01-05")))
	if err != nil || len(ids) != 1 {
		t.Fatalf("end-only: ids=%v err=%v", ids, err)
	}

	// Area filter + price ascending.
	areaTok := fmt.Sprintf("%d", area.ID)
	items, total, err := repo.SearchHouses(ctx, domain.HouseSearch{AreaID: areaTok, SortKey: "price-inc", Limit: 10, Offset: 0})
	if err != nil {
		t.Fatalf("SearchHouses: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("total=%d items=%d", total, len(items))
	}
	if items[0].Price != 50 || items[1].Price != 100 || items[2].Price != 200 {
		t.Fatalf("wrong order: %+v", items)
	}
	if items[0].AreaName != "Riverside" {
		t.Fatalf("area name not joined: %+v", items[0])
	}

	// Exclusion applied as NOT IN.
	items, total, err = repo.SearchHouses(ctx, domain.HouseSearch{AreaID: areaTok, ExcludedIDs: []int64{h200}, SortKey: "price-des", Limit: 10, Offset: 0})
	if err != nil {
		t.Fatalf("SearchHouses: %v", err)
	}
	if total != 2 || items[0].HouseID != h100 || items[1].HouseID != h50 {
		t.Fatalf("exclusion failed: total=%d items=%+v", total, items)
	}

	// Limit/offset windowing.
	items, total, err = repo.SearchHouses(ctx, domain.HouseSearch{AreaID: areaTok, SortKey: "price-inc", Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("SearchHouses: %v", err)
	}
	if total != 3 || len(items) != 1 || items[0].Price != 200 {
		t.Fatalf("windowing failed: total=%d items=%+v", total, items)
	}
}

func TestRepo_MySQL_DetailAndImages(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	area := domain.Area{Name: "Harbor"}
	if err := repo.InsertArea(ctx, &area); err != nil {
		t.Fatalf("InsertArea: %v", err)
	}
	id := seedHouse(t, repo, area.ID, "pier view", 900)

	if err := repo.InsertHouseImage(ctx, id, "a.jpg"); err != nil {
		t.Fatalf("InsertHouseImage: %v", err)
	}
	if err := repo.SetIndexImage(ctx, id, "a.jpg"); err != nil {
		t.Fatalf("SetIndexImage: %v", err)
	}
	// second image must not displace the cover
	if err := repo.InsertHouseImage(ctx, id, "b.jpg"); err != nil {
		t.Fatalf("InsertHouseImage: %v", err)
	}
	if err := repo.SetIndexImage(ctx, id, "b.jpg"); err != nil {
		t.Fatalf("SetIndexImage: %v", err)
	}

	hv, err := repo.GetHouse(ctx, id)
	if err != nil {
		t.Fatalf("GetHouse: %v", err)
	}
	if hv.Title != "pier view" || hv.AreaName != "Harbor" || hv.Price != 900 {
		t.Fatalf("unexpected view: %+v", hv)
	}
	if len(hv.ImgURLs) != 2 || hv.ImgURLs[0] != "a.jpg" {
		t.Fatalf("unexpected images: %v", hv.ImgURLs)
	}

	items, err := repo.ListTopBooked(ctx, 5)
	if err != nil || len(items) != 1 {
		t.Fatalf("ListTopBooked: items=%v err=%v", items, err)
	}
	if items[0].ImgURL != "a.jpg" {
		t.Fatalf("cover image displaced: %+v", items[0])
	}

	if _, err := repo.GetHouse(ctx, 999999); err != domain.ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func ptr[T any](v T) *T { return &v }
