// Command respcached serves a directory of files through the caching
// middleware. It is both the demo for the library and a handy static
// server with correct HTTP caching behavior.
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vasistbhargav/respcache"
	"github.com/vasistbhargav/respcache/metrics"
	"github.com/vasistbhargav/respcache/store"
)

var (
	// CLI flags
	portFlag           int
	dirFlag            string
	configFlag         string
	storeFlag          string
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.IntVar(&portFlag, "port", 8080, "Port to listen on")
	flag.StringVar(&dirFlag, "dir", ".", "Directory to serve")
	flag.StringVar(&configFlag, "config", "", "Config file (yaml)")
	flag.StringVar(&storeFlag, "store", "", "Store backend: memory, ristretto, sqlite or redis (overrides config)")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stdout)")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stdout})
	if logFilenameFlag != "" {
		if logFileOutput, err := os.OpenFile(logFilenameFlag, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	var config Config
	if configFlag != "" {
		var err error
		if config, err = getConfig(configFlag); err != nil {
			log.Fatal().Err(err).Str("file", configFlag).Msg("Could not read config")
		}
	}
	if storeFlag != "" {
		config.Store = storeFlag
	}
	if config.MaxCacheSize <= 0 {
		config.MaxCacheSize = respcache.DefaultMaxCacheSize
	}
	if config.MaxCachedBodySize <= 0 {
		config.MaxCachedBodySize = respcache.DefaultMaxCachedBodySize
	}

	cache := respcache.New(respcache.Options{
		Store:             newStore(config),
		MaxCachedBodySize: config.MaxCachedBodySize,
		MaxCacheSize:      config.MaxCacheSize,
		VaryByHeaders:     config.VaryByHeaders,
		VaryByQueryKeys:   config.VaryByQueryKeys,
		Rules:             config.Rules,
	})

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.Handle("/*", cache.Middleware(http.FileServer(http.Dir(dirFlag))))

	log.Info().Msgf("Serving %s on port %d with %s store", dirFlag, portFlag, storeName(config))
	if err := http.ListenAndServe(fmt.Sprintf(":%d", portFlag), router); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func newStore(config Config) store.Store {
	switch storeName(config) {
	case "memory":
		return store.NewMemory(store.MemoryConfig{
			MaxSize:      config.MaxCacheSize,
			MaxEntrySize: config.MaxCachedBodySize,
		})
	case "ristretto":
		s, err := store.NewRistretto(config.MaxCacheSize, config.MaxCachedBodySize)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not create ristretto store")
		}
		return s
	case "sqlite":
		filename := config.DB
		if filename == "" {
			filename = "cache.db"
		}
		s, err := store.NewSQLite(filename, config.MaxCacheSize, config.MaxCachedBodySize)
		if err != nil {
			log.Fatal().Err(err).Str("db", filename).Msg("Could not open cache database")
		}
		return s
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: config.Redis})
		return store.NewRedis(client, store.WithMaxEntrySize(config.MaxCachedBodySize))
	default:
		log.Fatal().Str("store", config.Store).Msg("Unknown store backend")
		return nil
	}
}

func storeName(config Config) string {
	if config.Store == "" {
		return "memory"
	}
	return config.Store
}
