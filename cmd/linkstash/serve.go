package main

import (
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joestump/linkstash/internal/api"
	"github.com/joestump/linkstash/internal/auth"
	"github.com/joestump/linkstash/internal/config"
	"github.com/joestump/linkstash/internal/db"
	"github.com/joestump/linkstash/internal/links"
	"github.com/joestump/linkstash/internal/logger"
	"github.com/joestump/linkstash/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.Log.Level, cfg.Log.Pretty)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			userStore := store.NewUserStore(database, cfg.BcryptCost)
			tagStore := store.NewTagStore(database)
			linkStore := store.NewLinkStore(database, tagStore)

			tokens := auth.NewTokenService(cfg.Token.Secret, cfg.Token.Lifetime)
			authMiddleware := auth.NewMiddleware(tokens, userStore)
			cookies := auth.CookiePolicy{Days: cfg.CookieDays, Secure: cfg.Production()}

			router := api.NewRouter(api.Deps{
				Logger:         log,
				DB:             database,
				AuthMiddleware: authMiddleware,
				Tokens:         tokens,
				Cookies:        cookies,
				Users:          userStore,
				Links:          links.NewService(linkStore),
			})

			log.Info("listening", zap.String("addr", cfg.HTTP.Addr))
			return http.ListenAndServe(cfg.HTTP.Addr, router)
		},
	}
}
