package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/berkes/beancount-degiro/src/config"
	"github.com/berkes/beancount-degiro/src/database"
	"github.com/berkes/beancount-degiro/src/handlers"
	"github.com/berkes/beancount-degiro/src/logger"
	"github.com/berkes/beancount-degiro/src/services"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	statementFile := flag.String("file", "", "Convert a single statement CSV to beancount on stdout and exit")
	flag.Parse()

	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("beancount-degiro starting...")

	database.InitDB(config.Cfg.DatabasePath)

	memCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)
	tickerService := services.NewTickerService(memCache)

	importService, err := services.NewImportService(tickerService, memCache)
	if err != nil {
		logger.L.Error("Failed to initialize import service", "error", err)
		os.Exit(1)
	}

	if *statementFile != "" {
		runOneShot(importService, *statementFile)
		return
	}

	if len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}

	importHandler := handlers.NewImportHandler(importService)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handlers.HandleHealth)
	mux.Handle("POST /api/import", handlers.AuthMiddleware(http.HandlerFunc(importHandler.HandleImport)))
	mux.Handle("GET /api/import/latest", handlers.AuthMiddleware(http.HandlerFunc(importHandler.HandleLatestResult)))

	addr := ":" + config.Cfg.Port
	logger.L.Info("Server listening", "addr", addr)
	if err := http.ListenAndServe(addr, rateLimitMiddleware(mux)); err != nil {
		logger.L.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// runOneShot converts one statement file and writes beancount to stdout;
// diagnostics go to the structured log on stderr.
func runOneShot(importService services.ImportService, path string) {
	f, err := os.Open(path)
	if err != nil {
		logger.L.Error("Failed to open statement file", "path", path, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	result, err := importService.ProcessImport(f, path)
	if err != nil {
		logger.L.Error("Conversion failed", "path", path, "error", err)
		os.Exit(1)
	}
	fmt.Print(result.Beancount)
	if len(result.Diagnostics) > 0 {
		logger.L.Warn("Conversion finished with diagnostics", "count", len(result.Diagnostics))
	}
}
