package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/tokensmith/internal/config"
	healthctrl "github.com/dropDatabas3/tokensmith/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/tokensmith/internal/http/controllers/oauth"
	"github.com/dropDatabas3/tokensmith/internal/http/router"
	oauthsvc "github.com/dropDatabas3/tokensmith/internal/http/services/oauth"
	jwtx "github.com/dropDatabas3/tokensmith/internal/jwt"
	"github.com/dropDatabas3/tokensmith/internal/metrics"
	"github.com/dropDatabas3/tokensmith/internal/observability/logger"
	"github.com/dropDatabas3/tokensmith/internal/rate"
	"github.com/dropDatabas3/tokensmith/internal/security/password"
	"github.com/dropDatabas3/tokensmith/internal/store/core"
	"github.com/dropDatabas3/tokensmith/internal/store/memory"
	"github.com/dropDatabas3/tokensmith/internal/store/pg"
	migrations "github.com/dropDatabas3/tokensmith/migrations/postgres"
)

var configPath string

func main() {
	// .env es opcional; en prod la config llega por entorno
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "tokensmith",
		Short:         "Motor de emisión de tokens OAuth2",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "Path al YAML de configuración")

	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	return cfg, nil
}

// openStore elige el driver de storage según la config.
func openStore(ctx context.Context, cfg *config.Config) (core.Repository, error) {
	switch cfg.Storage.Driver {
	case "pg":
		return pg.New(ctx, cfg.Storage.DSN, pg.Config{
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MinIdleConns:    cfg.Storage.Postgres.MinIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("storage driver %q no soportado (pg|memory)", cfg.Storage.Driver)
	}
}

func buildLimiter(cfg *config.Config) rate.Limiter {
	if !cfg.Rate.Enabled {
		return nil
	}
	switch cfg.Cache.Kind {
	case "redis":
		client := rdb.NewClient(&rdb.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		return rate.NewRedisLimiter(client, cfg.Cache.Redis.Prefix, cfg.Rate.Token.Limit, cfg.RateWindow())
	default:
		return rate.NewMemoryLimiter(cfg.Rate.Token.Limit, cfg.RateWindow())
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el token endpoint HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			log := logger.L()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			repo, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := metrics.Register(nil); err != nil {
				return err
			}

			issuer := jwtx.NewIssuer(cfg.JWT.Issuer, []byte(cfg.JWT.Secret))
			issuer.AccessTTL = cfg.AccessTTL()
			issuer.RefreshTTL = cfg.RefreshTTL()

			services := oauthsvc.NewServices(oauthsvc.Deps{Repo: repo, Issuer: issuer})

			handler := router.New(router.Deps{
				OAuth:       oauthctrl.NewControllers(services),
				Health:      healthctrl.NewHealthController(repo),
				RateLimiter: buildLimiter(cfg),
			})

			srv := &http.Server{
				Addr:         cfg.Server.Addr,
				Handler:      handler,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				log.Info("token endpoint listening",
					logger.String("addr", cfg.Server.Addr),
					logger.String("storage", cfg.Storage.Driver))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				log.Info("shutting down")
				return srv.Shutdown(shutCtx)
			})

			return g.Wait()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el esquema embebido sobre postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != "pg" {
				return fmt.Errorf("migrate requiere storage.driver=pg (actual: %s)", cfg.Storage.Driver)
			}

			ctx := cmd.Context()
			store, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{})
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(ctx, migrations.Schema()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.L().Info("schema applied")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var (
		appName   string
		demoMode  bool
		roles     []string
		email     string
		plainPass string
		keyID     string
		keySecret string
		keyScope  string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Crea una app, una cuenta y una API key de desarrollo",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			repo, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			app := &core.App{Name: appName, DemoMode: demoMode, Roles: roles}
			if len(roles) > 0 {
				app.DefaultRole = roles[0]
			}
			if err := repo.Apps().Create(ctx, app); err != nil {
				return fmt.Errorf("seed app: %w", err)
			}

			hash, err := password.Hash(password.Default, plainPass)
			if err != nil {
				return err
			}
			acct := &core.Account{
				ID:           uuid.NewString(),
				AppID:        app.ID,
				Email:        email,
				Name:         "Seed User",
				PasswordHash: &hash,
			}
			if len(roles) > 0 {
				acct.Role = roles[0]
			}
			if err := repo.Accounts().Create(ctx, acct); err != nil {
				return fmt.Errorf("seed account: %w", err)
			}

			secretHash, err := password.Hash(password.Default, keySecret)
			if err != nil {
				return err
			}
			key := &core.APIKey{
				ID:          keyID,
				SecretHash:  secretHash,
				Description: "seeded dev key",
				Scope:       keyScope,
				AccountID:   acct.ID,
			}
			if err := repo.APIKeys().Create(ctx, key); err != nil {
				return fmt.Errorf("seed api key: %w", err)
			}

			fmt.Printf("app:      app:%d (%s)\n", app.ID, app.Name)
			fmt.Printf("account:  %s (%s)\n", acct.ID, acct.Email)
			fmt.Printf("api key:  %s\n", key.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&appName, "app-name", "dev-app", "Nombre de la app")
	cmd.Flags().BoolVar(&demoMode, "demo", true, "Habilitar demo mode en la app")
	cmd.Flags().StringSliceVar(&roles, "roles", []string{"appUser"}, "Roles declarados por la app")
	cmd.Flags().StringVar(&email, "email", "dev@example.com", "Email de la cuenta seed")
	cmd.Flags().StringVar(&plainPass, "password", "changeme123", "Password de la cuenta seed")
	cmd.Flags().StringVar(&keyID, "key-id", "dev-key", "ID de la API key")
	cmd.Flags().StringVar(&keySecret, "key-secret", "dev-secret", "Secret de la API key")
	cmd.Flags().StringVar(&keyScope, "key-scope", "read write", "Scope otorgado a la API key")

	return cmd
}
