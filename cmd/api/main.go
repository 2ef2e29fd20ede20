package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campus-energy/internal/api/handlers"
	"campus-energy/internal/api/middleware"
	"campus-energy/internal/config"
	"campus-energy/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error("loading config", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	st, err := store.New(cfg.Data.DBPath)
	if err != nil {
		logger.Error("opening store", "path", cfg.Data.DBPath, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.ErrorHandler())

	deps := handlers.Deps{Store: st, Cfg: cfg, Log: logger}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/forecast", deps.RunForecast)
		api.POST("/schedule/battery", deps.RunBatterySchedule)
		api.POST("/schedule/timetable", deps.RunTimetable)

		api.GET("/buildings", deps.ListBuildings)
		api.GET("/rank", deps.RankBuildings)
	}

	addr := fmt.Sprintf(":%s", port)
	logger.Info("starting API server", "addr", addr)
	if err := router.Run(addr); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
