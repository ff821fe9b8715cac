package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"pump-match/database"
	"pump-match/internal/cache"
	"pump-match/internal/engine"
	"pump-match/internal/helius"
	"pump-match/internal/profile"
	"pump-match/shared/config"
	"pump-match/shared/env"
	"pump-match/shared/logger"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Panicf("FATAL PANIC RECOVERY: %v", r)
		}
	}()

	walletFlag := flag.String("wallet", "", "Wallet address to analyze")
	matchFlag := flag.Bool("match", false, "Rank match candidates for the wallet instead of printing the analysis")
	intentFlag := flag.String("intent", "", "Declared intent for matching (BUILD_SQUAD, JOIN_PROJECT, HIRE_TALENT, FIND_FUNDING, NETWORK)")
	limitFlag := flag.Int("limit", 0, "Maximum number of match candidates (0 uses the configured default)")
	configFlag := flag.String("config", "config.yaml", "Path to the YAML configuration file")
	flag.Parse()

	if *walletFlag == "" {
		log.Fatalf("FATAL: -wallet is required.")
	}

	if err := env.LoadEnv(); err != nil {
		log.Fatalf("FATAL: Failed to load environment variables: %v", err)
	}
	log.Println("INFO: Environment variables loaded via shared/env.")

	log.Println("INFO: Loading application configuration...")
	cfg, errCfg := config.LoadConfig(*configFlag)
	if errCfg != nil {
		log.Fatalf("FATAL: Failed to load %s: %v", *configFlag, errCfg)
	}
	config.SetGlobalConfig(cfg)

	appEnv := cfg.App.Environment
	if appEnv == "" {
		appEnv = "production"
	}
	loggerCfg := logger.Config{
		Level:       cfg.Logging.Level,
		Environment: appEnv,
	}
	appLogger, err := logger.NewLogger(loggerCfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	appLogger.Info("Application logger initialized successfully.")

	appLogger.Info("Initializing Helius client...")
	if env.HeliusRPCURL == "" {
		appLogger.Fatal("HELIUS_RPC_URL not set in environment variables. This is required for the Helius client.")
	}
	heliusClient, errHelius := helius.NewClient(appLogger)
	if errHelius != nil {
		appLogger.Fatal("Failed to initialize Helius client", zap.Error(errHelius))
	}
	appLogger.Info("Helius client initialized successfully.")

	var dsn string
	if env.DATABASE_URL != "" {
		appLogger.Info("Using DATABASE_URL for database connection.")
		dsn = env.DATABASE_URL
	} else {
		appLogger.Warn("DATABASE_URL not set. Attempting to construct DSN from PG* variables.")
		if env.PGHOST == "" || env.PGPORT == "" || env.PGUSER == "" || env.PGDATABASE == "" {
			appLogger.Fatal("Essential database connection variables are missing (DATABASE_URL or PG*)")
		}
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			env.PGHOST, env.PGUSER, env.PGPASSWORD, env.PGDATABASE, env.PGPORT,
		)
		appLogger.Info("Constructed Database DSN using individual variables (password hidden)")
	}

	appLogger.Info("Connecting to database...")
	db, errDb := database.ConnectToDatabase(dsn)
	if errDb != nil {
		appLogger.Fatal("Database connection failed", zap.Error(errDb))
	}
	appLogger.Info("Database connection established successfully.")

	appLogger.Info("Running database migrations...")
	if errMigrate := database.MigrateDatabase(db); errMigrate != nil {
		appLogger.Fatal("Database migration failed", zap.Error(errMigrate))
	}
	appLogger.Info("Database migrations completed.")

	ctx := context.Background()

	var memo cache.Cache = cache.Noop{}
	if env.RedisAddr != "" {
		redisCache, errRedis := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     env.RedisAddr,
			Password: env.RedisPassword,
			DB:       env.RedisDB,
			TTL:      time.Duration(cfg.Redis.TTLMinutes) * time.Minute,
		}, appLogger)
		if errRedis != nil {
			appLogger.Warn("Redis unavailable, proceeding without analysis cache", zap.Error(errRedis))
		} else {
			defer redisCache.Close()
			memo = redisCache
		}
	} else {
		appLogger.Warn("REDIS_ADDR not set, proceeding without analysis cache.")
	}

	analyzer := engine.NewAnalyzer(heliusClient, database.NewProfileStore(db), memo, engine.Config{
		TxPageLimit:    cfg.Engine.TxPageLimit,
		MaxTxPages:     cfg.Engine.MaxTxPages,
		AssetPageLimit: cfg.Engine.AssetPageLimit,
		CandidateLimit: cfg.Engine.CandidateLimit,
		PumpProgramID:  env.PumpFunProgramID,
	}, appLogger)

	if *matchFlag {
		matches, errMatch := analyzer.FindMatches(ctx, *walletFlag, profile.Intent(*intentFlag), *limitFlag)
		if errMatch != nil {
			appLogger.Fatal("Match ranking failed", zap.String("wallet", *walletFlag), zap.Error(errMatch))
		}
		printJSON(appLogger, matches)
		return
	}

	analysis, errAnalyze := analyzer.AnalyzeWallet(ctx, *walletFlag)
	if errAnalyze != nil {
		appLogger.Fatal("Wallet analysis failed", zap.String("wallet", *walletFlag), zap.Error(errAnalyze))
	}
	printJSON(appLogger, analysis)
}

func printJSON(appLogger *logger.Logger, payload any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		appLogger.Fatal("Failed to encode output", zap.Error(err))
	}
}
