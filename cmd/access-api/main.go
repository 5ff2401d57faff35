package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SudityaSenaNimmala/Access-Requests/internal/api"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/api/request"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/config"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/core"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/db"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/logging"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/metrics"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/target"
)

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "create-user" {
		createUser(os.Args[2:])
		return
	}

	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "migrations", "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL, *migrateDirFlag); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	metrics.RegisterPgxPoolMetrics(pool)

	secretsKey, err := cfg.DecodedSecretsKey()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid secrets key")
	}
	runner := target.NewRunner(secretsKey, cfg.TargetConnectTimeout, cfg.MaxResultDocs)

	srv, err := api.NewServer(logger, pool, runner, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting access API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
}

func createUser(args []string) {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)
	email := fs.String("email", "", "Email address (required)")
	name := fs.String("name", "", "Display name (required)")
	role := fs.String("role", "developer", "Role: developer, team_lead, or admin")
	teamLead := fs.String("team-lead", "", "Team lead user ID (required for developers)")
	fs.Parse(args)

	if *email == "" || *name == "" {
		fmt.Fprintln(os.Stderr, "error: --email and --name are required")
		fmt.Fprintln(os.Stderr, "usage: access-api create-user --email <email> --name <name> [--role <role>] [--team-lead <id>]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	in := request.CreateUser{Email: *email, Name: *name, Role: *role}
	if *teamLead != "" {
		in.TeamLeadID = teamLead
	}

	svc := core.NewUserService(pool)
	user, apiKey, err := svc.Create(ctx, in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User created successfully.\n\n")
	fmt.Printf("  Name:    %s\n", user.Name)
	fmt.Printf("  Email:   %s\n", user.Email)
	fmt.Printf("  Role:    %s\n", user.Role)
	fmt.Printf("  ID:      %s\n", user.ID)
	fmt.Printf("  API key: %s\n\n", apiKey)
	fmt.Printf("Save this key - it will not be shown again.\n")
}
