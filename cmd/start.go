package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vehicle-sync/core/loader"
	"vehicle-sync/core/logger"
	"vehicle-sync/core/middleware/auth"
	"vehicle-sync/core/middleware/rayid"
	"vehicle-sync/feature/integrity"
	"vehicle-sync/feature/media"
	"vehicle-sync/feature/vehicle"

	_ "vehicle-sync/docs/swagger"
)

// @title Vehicle Sync API
// @version 1.0
// @description Delta sync of Syscara vehicle listings into Webflow CMS, plus the public media proxy.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync server",
	Long:  `Starts the HTTP server exposing the sync trigger, the diagnostics and the media proxy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadServices(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		logg := svc.logger
		zap.ReplaceGlobals(logg)
		cfg := svc.cfg

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager(logg)
		mgr.Register(media.NewFeature(
			media.NewService(svc.source, svc.store, cfg.Storage.Bucket, cfg.Media, logg),
			cfg.Sync.MediaPath,
		))

		var history vehicle.History
		if svc.db != nil {
			history = svc.runLog
		}
		vehicleSvc := vehicle.NewService(svc.source, svc.executor, history,
			svc.executor.Mapper(), svc.executor.Filter(), logg)
		mgr.Register(vehicle.NewFeature(vehicleSvc, cfg.Server.Origin()))
		mgr.Register(integrity.NewFeature(newIntegrityService(svc)))

		// RayID first so every later log line carries it.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

		// The CMS embeds media URLs, so the proxy must stay reachable without a key.
		mediaPath := cfg.Sync.MediaPath
		app.Use(auth.New(auth.Config{
			ApiKey: cfg.Server.ApiKey,
			Skip: func(c *fiber.Ctx) bool {
				return strings.HasPrefix(c.Path(), mediaPath)
			},
		}))

		if err := mgr.LoadAll(app); err != nil {
			return fmt.Errorf("failed to load features: %w", err)
		}

		errCh := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			errCh <- app.Listen(":" + cfg.Server.Port)
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case <-quit:
		}
		logg.Info("Shutting down server...")
		return app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
