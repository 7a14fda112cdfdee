package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"lovehome/internal/adapters/observability"
	"lovehome/internal/domain"
	"lovehome/internal/shared"
	mysqlrepo "lovehome/internal/storage/mysql"
)

// seedFile is the import format: areas by name, houses referencing areas
// by position (1-based), orders referencing houses the same way.
type seedFile struct {
	Areas  []string `json:"areas"`
	Houses []struct {
		UserID    int64  `json:"user_id"`
		Title     string `json:"title"`
		Price     int64  `json:"price"` // minor units
		Area      int    `json:"area"`
		Address   string `json:"address"`
		RoomCount int    `json:"room_count"`
		Acreage   int    `json:"acreage"`
		Unit      string `json:"unit"`
		Capacity  int    `json:"capacity"`
		Beds      string `json:"beds"`
		Deposit   int64  `json:"deposit"` // minor units
		MinDays   int    `json:"min_days"`
		MaxDays   int    `json:"max_days"`
	} `json:"houses"`
	Orders []struct {
		House     int    `json:"house"`
		BeginDate string `json:"begin_date"`
		EndDate   string `json:"end_date"`
		Status    string `json:"status"`
	} `json:"orders"`
}

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	path := os.Getenv("SEED_FILE")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		log.Fatal().Msg("seed file required (SEED_FILE or argv[1])")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("read seed file failed")
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		log.Fatal().Err(err).Msg("parse seed file failed")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	repo := mysqlrepo.New(db)

	log.Info().
		Int("areas", len(seed.Areas)).
		Int("houses", len(seed.Houses)).
		Int("orders", len(seed.Orders)).
		Int("workers", cfg.Workers).
		Msg("seeder starting")

	// Areas first; houses reference them by position.
	areaIDs := make([]int64, len(seed.Areas))
	for i, name := range seed.Areas {
		a := domain.Area{Name: name}
		if err := repo.InsertArea(ctx, &a); err != nil {
			log.Fatal().Err(err).Str("area", name).Msg("insert area failed")
		}
		areaIDs[i] = a.ID
	}

	// Houses fan out under a bounded worker count.
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup
	houseIDs := make([]int64, len(seed.Houses))

	for i, sh := range seed.Houses {
		i, sh := i, sh
		if sh.Area < 1 || sh.Area > len(areaIDs) {
			log.Fatal().Int("house", i+1).Int("area", sh.Area).Msg("house references unknown area")
		}

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			h := domain.House{
				UserID:    sh.UserID,
				Title:     sh.Title,
				Price:     sh.Price,
				AreaID:    areaIDs[sh.Area-1],
				Address:   sh.Address,
				RoomCount: sh.RoomCount,
				Acreage:   sh.Acreage,
				Unit:      sh.Unit,
				Capacity:  sh.Capacity,
				Beds:      sh.Beds,
				Deposit:   sh.Deposit,
				MinDays:   sh.MinDays,
				MaxDays:   sh.MaxDays,
			}
			if err := repo.InsertHouse(ctx, &h); err != nil {
				log.Warn().Err(err).Str("title", sh.Title).Msg("insert house failed")
				return
			}
			houseIDs[i] = h.ID
			log.Info().Int64("id", h.ID).Str("title", sh.Title).Msg("house seeded")
		}()
	}
	wg.Wait()

	for i, so := range seed.Orders {
		if so.House < 1 || so.House > len(houseIDs) || houseIDs[so.House-1] == 0 {
			log.Warn().Int("order", i+1).Int("house", so.House).Msg("order references unseeded house")
			continue
		}
		begin, err := time.Parse("2006-01-02", so.BeginDate)
		if err != nil {
			log.Fatal().Err(err).Int("order", i+1).Msg("bad begin date")
		}
		end, err := time.Parse("2006-01-02", so.EndDate)
		if err != nil {
			log.Fatal().Err(err).Int("order", i+1).Msg("bad end date")
		}
		if begin.After(end) {
			log.Fatal().Int("order", i+1).Msg("begin date after end date")
		}
		o := domain.Order{HouseID: houseIDs[so.House-1], BeginDate: begin, EndDate: end, Status: so.Status}
		if err := repo.InsertOrder(ctx, &o); err != nil {
			log.Warn().Err(err).Int("order", i+1).Msg("insert order failed")
		}
	}

	log.Info().Msg("seeding completed")
}
