package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"notesync/cmd/internal/config"
	"notesync/cmd/internal/domain/entity"
	"notesync/cmd/internal/domain/sqlite"
	"notesync/cmd/internal/domain/sqlite/repository"
	"notesync/cmd/internal/http/handler"
	"notesync/cmd/internal/http/server"
	"notesync/cmd/internal/infrastructure/aws/storage"
	"notesync/cmd/internal/service"
	"notesync/cmd/internal/service/jobs"
	"notesync/cmd/internal/utils/validators"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:          "notesync",
		Short:        "Multi-device note synchronization server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP sync server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the notes table and index if they are missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}

			db, err := sqlite.Init(cfg.DatabasePath)
			if err != nil {
				return err
			}

			sqlDB, err := db.DB()
			if err == nil {
				defer sqlDB.Close()
			}

			fmt.Printf("Schema ready at %s\n", cfg.DatabasePath)
			return nil
		},
	}
}

func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx, validators.New())
	if err != nil {
		return nil, err
	}

	log.SetLevel(config.ParseLogLevel(cfg.LogLevel))
	return cfg, nil
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		log.Errorf("failed to load configuration: %v", err)
		return err
	}

	// Schema bootstrap happens once here, never per request
	db, err := sqlite.Init(cfg.DatabasePath)
	if err != nil {
		log.Errorf("failed to initialize database: %v", err)
		return err
	}

	noteRepo := repository.NewNoteRepository(db)
	syncService := service.NewSyncService(service.SyncConfig{
		NoteRepo: noteRepo,
		Validate: validators.New(),
		Policy:   entity.ConflictPolicy(cfg.ConflictPolicy),
	})
	syncRoutes := handler.NewSyncDefault(syncService)

	if cfg.S3Bucket != "" {
		s3Client, err := storage.NewStorageClient(ctx, cfg.S3Region, cfg.S3Bucket)
		if err != nil {
			log.Errorf("failed to initialize S3 client: %v", err)
			return err
		}
		go jobs.NewSnapshotExporter(noteRepo, s3Client, cfg.SnapshotInterval).Start(ctx)
	}

	e := server.NewServer(&server.ServerConfig{
		SyncToken:    cfg.SyncToken,
		BodyLimit:    cfg.BodyLimit,
		RateLimitRPS: cfg.RateLimitRPS,
	}, syncRoutes)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on :%s (env %s, conflict policy %s)", cfg.Port, cfg.Env, cfg.ConflictPolicy)
		errCh <- e.Start(":" + cfg.Port)
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
