package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/evalex7/e-plan/internal/auth"
	"github.com/evalex7/e-plan/internal/backup"
	"github.com/evalex7/e-plan/internal/config"
	"github.com/evalex7/e-plan/internal/excel"
	httphandler "github.com/evalex7/e-plan/internal/http"
	"github.com/evalex7/e-plan/internal/http/middleware"
	"github.com/evalex7/e-plan/internal/model"
	"github.com/evalex7/e-plan/internal/pdf"
	"github.com/evalex7/e-plan/internal/service"
)

var rootCmd = &cobra.Command{
	Use:           "maintenance-service",
	Short:         "Maintenance contract planner",
	Long:          `Keeps maintenance contracts, their schedule and kanban boards, and serves them over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	exportCollections string
	exportOut         string
)

func init() {
	exportCmd.Flags().StringVar(&exportCollections, "collections", "", "comma separated collections to export (default: all)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: BACKUP_DIR/maintenance_backup_<date>.json)")
	resetCmd.Flags().Bool("yes", false, "confirm deleting all data")

	rootCmd.AddCommand(serveCmd, exportCmd, importCmd, regenerateCmd, resetCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		pdfGenerator, err := pdf.NewGenerator(a.cfg.Documents.PDFFontPath)
		if err != nil {
			return fmt.Errorf("init pdf generator: %w", err)
		}
		docs := service.NewDocumentService(a.engine, excel.NewGenerator(), pdfGenerator)

		var parser middleware.TokenParser
		if a.cfg.AuthEnabled() {
			parser = auth.NewParser(a.cfg.Auth.AccessSecret)
		} else {
			a.log.Warn().Msg("JWT_ACCESS_SECRET is empty, API runs without authentication")
		}

		handler := httphandler.NewHandler(a.engine, docs, a.log)
		defer handler.Close()
		router := httphandler.NewRouter(handler, middleware.Auth(parser), a.cfg.Environment)

		addr := fmt.Sprintf("%s:%d", a.cfg.HTTP.Host, a.cfg.HTTP.Port)
		server := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}

		errCh := make(chan error, 1)
		go func() {
			a.log.Info().Str("addr", addr).Msg("starting maintenance service")
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stopped: %w", err)
			}
		case <-cmd.Context().Done():
			a.log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				a.log.Error().Err(err).Msg("graceful shutdown failed")
			}
		}

		if err := a.engine.Flush(context.Background()); err != nil {
			return fmt.Errorf("flush pending changes: %w", err)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a JSON backup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		var data []byte
		if names := config.ParseList(exportCollections); len(names) > 0 {
			collections := make([]model.Collection, 0, len(names))
			for _, name := range names {
				c, err := model.ParseCollection(name)
				if err != nil {
					return err
				}
				collections = append(collections, c)
			}
			data, err = a.engine.ExportSelectedData(collections...)
		} else {
			data, err = a.engine.ExportData()
		}
		if err != nil {
			return err
		}

		out := exportOut
		if out == "" {
			out = filepath.Join(a.cfg.Documents.BackupDir, backup.FileName(time.Now()))
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write backup: %w", err)
		}
		a.log.Info().Str("file", out).Int("bytes", len(data)).Msg("backup written")
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace collections with the contents of a JSON backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read backup: %w", err)
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		collections, err := a.engine.ImportData(cmd.Context(), data)
		if err != nil {
			return err
		}
		a.log.Info().Interface("collections", collections).Msg("backup imported")
		return nil
	},
}

var regenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Re-derive maintenance tasks and board cards from the contracts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		result, err := a.engine.RegenerateAllTasks(cmd.Context())
		if err != nil {
			return err
		}
		a.log.Info().
			Int("tasks", len(result.Tasks)).
			Int("created", result.Created).
			Int("updated", result.Updated).
			Int("removed", result.Removed).
			Msg("tasks regenerated")
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every contract, object, engineer, task and report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		confirmed, _ := cmd.Flags().GetBool("yes")
		if !confirmed {
			return errors.New("reset deletes all data, pass --yes to confirm")
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.engine.ResetData(cmd.Context()); err != nil {
			return err
		}
		a.log.Info().Msg("all data removed")
		return nil
	},
}
