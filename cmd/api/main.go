package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "lovehome/internal/adapters/http_server"
	"lovehome/internal/adapters/imagestore"
	"lovehome/internal/adapters/observability"
	redisad "lovehome/internal/adapters/redis"
	"lovehome/internal/app"
	"lovehome/internal/shared"
	mysqlrepo "lovehome/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	images, err := imagestore.New(cfg.ImageBase, cfg.ImageKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("image store client init failed")
	}

	q := app.NewQueryService(repo, cache, app.TTLs{
		Area:   cfg.AreaTTL,
		Index:  cfg.IndexTTL,
		Detail: cfg.DetailTTL,
		List:   cfg.ListTTL,
	})
	c := app.NewCommandService(repo, images, cfg.ImageDomain)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, C: c})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
