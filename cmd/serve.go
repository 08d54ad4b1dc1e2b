package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiForms/internal/config"
	"github.com/parisxmas/OxiDB/OxiForms/internal/handler"
	"github.com/parisxmas/OxiDB/OxiForms/internal/router"
	"github.com/parisxmas/OxiDB/OxiForms/internal/seed"
	"github.com/parisxmas/OxiDB/OxiForms/internal/service"
)

var (
	seedOnStart   bool
	shutdownGrace time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&seedOnStart, "seed", false, "load the bundled sample forms after startup")
	serveCmd.Flags().DurationVar(&shutdownGrace, "grace", 10*time.Second, "shutdown grace period")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	st, err := openStore(cfg.Store, log)
	if err != nil {
		return err
	}
	defer st.close()

	formSvc := service.NewFormService(st.forms, log)
	subSvc := service.NewSubmissionService(st.subs, st.forms, log)

	afterPrepare := func() {
		if !seedOnStart {
			return
		}
		if err := seedForms(formSvc, log); err != nil {
			log.Warn("Seeding failed", zap.Error(err))
		}
	}

	if background(cfg.Store.Driver) {
		go func() {
			log.Info("Background init: starting")
			start := time.Now()
			if err := st.prepare(); err != nil {
				log.Warn("Background init failed", zap.Error(err))
				return
			}
			log.Info("Background init: all done", zap.Duration("took", time.Since(start).Round(time.Millisecond)))
			afterPrepare()
		}()
	} else {
		if err := st.prepare(); err != nil {
			return err
		}
		afterPrepare()
	}

	r := router.New(log, cfg.Server.AllowedOrigins, router.Handlers{
		Forms:       handler.NewFormHandler(formSvc, log),
		Submit:      handler.NewSubmitHandler(subSvc, log),
		AdminForms:  handler.NewAdminFormHandler(formSvc, log),
		Submissions: handler.NewSubmissionHandler(subSvc, log),
		Dashboard:   handler.NewDashboardHandler(formSvc, subSvc, log),
		Assets:      handler.NewAssetHandler(assetDirs(cfg.Assets), log),
		Health:      handler.NewHealthHandler(st.pinger, log),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("OxiForms server starting", zap.String("addr", cfg.Server.Addr), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func assetDirs(cfg config.AssetsConfig) handler.AssetDirs {
	return handler.AssetDirs{
		FormioCSS:    cfg.FormioDirs,
		BootstrapCSS: cfg.BootstrapDirs,
		Fonts:        cfg.FontDirs,
	}
}

func seedForms(forms *service.FormService, log *zap.Logger) error {
	inputs, err := seed.Forms()
	if err != nil {
		return err
	}
	res, err := seed.Run(forms, inputs, log)
	if err != nil {
		return err
	}
	log.Info("Seeding finished", zap.Int("created", res.Created), zap.Int("updated", res.Updated))
	return nil
}
