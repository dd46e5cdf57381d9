package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"HospitalHub/cache"
	"HospitalHub/config"
	"HospitalHub/database"
	"HospitalHub/events"
	"HospitalHub/jobs"
	"HospitalHub/logger"
	"HospitalHub/migrations"
	"HospitalHub/repository"
	"HospitalHub/repository/memory"
	"HospitalHub/repository/mongostore"
	"HospitalHub/routes"
	"HospitalHub/services"
	"HospitalHub/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
)

const shutdownTimeout = 10 * time.Second

var startServer = listen

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "hospitalhub",
		Short:        "Hospital appointment and department API",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd(), tokenCmd())
	return root
}

type app struct {
	cfg      *config.Config
	repos    repository.Set
	services *services.Services
	db       *mongo.Database
	closers  []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("shutdown step failed")
		}
	}
}

func (a *app) seedOptions() jobs.SeedOptions {
	return jobs.SeedOptions{AdminEmail: a.cfg.SeedAdminEmail, AdminPassword: a.cfg.SeedAdminPass}
}

/*
* Load config and logging
* Open the store, then the optional cache and broker which fall back to no-ops
* A memory store starts empty so it is seeded right away
 */
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Env)
	util.ExposeErrors = cfg.IsDev()

	a := &app{cfg: cfg}
	deps := services.Deps{JWTSecret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL()}

	switch cfg.Storage {
	case config.StorageMemory:
		a.repos = memory.New().Repositories()
		log.Warn().Msg("using the in-memory store, data is lost on exit")
	default:
		client, db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { return client.Disconnect(context.Background()) })
		if err := database.EnsureIndexes(ctx, db); err != nil {
			a.Close()
			return nil, err
		}
		a.db = db
		a.repos = mongostore.New(db)
	}
	deps.Repos = a.repos

	if cfg.RedisAddr != "" {
		rc, err := cache.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, caching disabled")
		} else {
			deps.Cache = rc
			a.closers = append(a.closers, rc.Close)
		}
	}

	if cfg.AMQPURL != "" {
		pub, err := events.NewRabbitMQPublisher(cfg.AMQPURL, cfg.EventsQueue)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq unavailable, appointment events disabled")
		} else {
			deps.Events = pub
			a.closers = append(a.closers, pub.Close)
		}
	}

	a.services = services.New(deps)

	if cfg.Storage == config.StorageMemory {
		if err := jobs.Seed(ctx, a.repos, a.services.Departments, a.seedOptions(), time.Now().UTC()); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.db != nil {
				if _, err := migrations.Run(ctx, a.db); err != nil {
					return err
				}
				if err := jobs.Seed(ctx, a.repos, a.services.Departments, a.seedOptions(), time.Now().UTC()); err != nil {
					return err
				}
			}

			if a.cfg.JobsEnabled {
				scheduler, err := jobs.NewScheduler(a.cfg.ExpirySchedule, a.services.Appointments)
				if err != nil {
					return err
				}
				scheduler.Start()
				defer scheduler.Stop()
			}

			if a.cfg.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := &http.Server{
				Addr:              ":" + a.cfg.Port,
				Handler:           routes.Engine(a.cfg.CORSOrigins, a.services),
				ReadHeaderTimeout: 10 * time.Second,
			}
			log.Info().Str("port", a.cfg.Port).Str("env", a.cfg.Env).Msg("server starting")
			return startServer(ctx, srv)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending MongoDB migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if a.db == nil {
				return errors.New("migrations need STORAGE=mongo")
			}
			applied, err := migrations.Run(cmd.Context(), a.db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the first admin and the default departments",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := jobs.Seed(cmd.Context(), a.repos, a.services.Departments, a.seedOptions(), time.Now().UTC()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "seed complete")
			return nil
		},
	}
}

// tokenCmd mints a bearer token for an existing account, for local testing.
func tokenCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for the given account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" {
				return errors.New("--email is required")
			}
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			user, err := a.repos.Users.FindByEmail(cmd.Context(), strings.ToLower(strings.TrimSpace(email)))
			if err != nil {
				return fmt.Errorf("find %s: %w", email, err)
			}
			token, expiresAt, err := a.services.Auth.IssueToken(user)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\nexpires %s\n", token, expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

/*
* Serve until the context is cancelled
* Then drain in-flight requests within the shutdown timeout
 */
func listen(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
