package main

import (
	"fmt"
	"log"

	"weather-app-api/config"
	"weather-app-api/handlers"
	"weather-app-api/middleware"
	"weather-app-api/models"
	"weather-app-api/observability"
	"weather-app-api/services"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := observability.NewLogger()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get sql db handle", zap.Error(err))
	}
	if err := sqlDB.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	// Additive migration for databases predating the reading columns, then
	// table creation for fresh databases.
	if err := models.EnsureHistoryColumns(db); err != nil {
		logger.Fatal("Failed to migrate weather_history columns", zap.Error(err))
	}
	if err := db.AutoMigrate(&models.WeatherHistory{}); err != nil {
		logger.Fatal("Failed to auto-migrate schema", zap.Error(err))
	}

	// Services
	geocoder := services.NewGeocodingService(cfg.Upstream)
	weather := services.NewWeatherService(cfg.Upstream)
	youtube := services.NewYouTubeService(cfg.Upstream)
	history := services.NewHistoryService(db)

	renderer := services.NewStaticMapRenderer()
	templates := services.TileTemplates(cfg.Tiles.URLTemplate)
	renderCache, err := services.NewRenderCache(renderer, templates, services.DefaultRenderCacheSize)
	if err != nil {
		logger.Fatal("Failed to build render cache", zap.Error(err))
	}

	// Handlers
	weatherHandler := handlers.NewWeatherHandler(geocoder, weather, logger)
	locationsHandler := handlers.NewLocationsHandler(geocoder)
	mapsHandler := handlers.NewMapsHandler(geocoder, renderCache)
	youtubeHandler := handlers.NewYouTubeHandler(youtube)
	historyHandler := handlers.NewHistoryHandler(history)
	exportHandler := handlers.NewExportHandler(history)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SetupCORS(cfg.CORS))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Liveness probe
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/weather/current", weatherHandler.Current)
	router.POST("/weather/forecast", weatherHandler.Forecast)

	router.POST("/weather/history", historyHandler.Create)
	router.GET("/weather/history", historyHandler.List)
	router.GET("/weather/history/search", historyHandler.Search)
	router.PUT("/weather/history/:id", historyHandler.Update)
	router.DELETE("/weather/history/:id", historyHandler.Delete)

	router.POST("/locations/search", locationsHandler.Search)

	router.GET("/maps/by-coords", mapsHandler.ByCoords)
	router.GET("/maps/by-coords/image", mapsHandler.ByCoordsImage)
	router.GET("/maps/:location", mapsHandler.ForLocation)

	router.GET("/youtube/:location", youtubeHandler.ForLocation)

	router.GET("/export/csv", exportHandler.CSV)
	router.GET("/export/json", exportHandler.JSON)
	router.GET("/export/xml", exportHandler.XML)
	router.GET("/export/pdf", exportHandler.PDF)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
