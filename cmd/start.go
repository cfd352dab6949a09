package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"emby-tagger/core/loader"
	"emby-tagger/core/logger"
	"emby-tagger/core/metrics"
	"emby-tagger/core/middleware/auth"
	"emby-tagger/core/middleware/rayid"
	"emby-tagger/feature/catalog"
	"emby-tagger/feature/integrity"
	"emby-tagger/feature/servers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "emby-tagger/docs/swagger"
)

// @title Emby Tagger API
// @version 1.0
// @description API for syncing Emby catalogs and mapping remote items to the local library.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the emby tagger server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Metrics registry
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder := metrics.NewCollector(reg)

		// 2. Configuration, logger, database and services
		a, err := bootstrap(recorder, true)
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		logg := a.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		if a.store == nil {
			logg.Info("Report archive disabled")
		} else {
			logg.Info("Report archive enabled", zap.String("bucket", a.archive.Bucket()))
		}

		// 3. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ReadTimeout:           a.cfg.Server.ReadTimeout(),
			BodyLimit:             a.cfg.Server.BodyLimit(),
		})

		// 4. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(servers.NewFeature(a.servers))
		mgr.Register(catalog.NewFeature(a.catalog))
		mgr.Register(integrity.NewFeature(a.integrity))

		// RayID must be first to trace everything.
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

		// Public endpoints
		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Get("/metrics", metrics.Handler(reg))

		app.Use(auth.New(auth.Config{
			ApiKey: a.cfg.Server.ApiKey,
			Skip:   []string{"/swagger", "/metrics"},
		}))

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("addr", a.cfg.Server.Addr()))
			if err := app.Listen(a.cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
