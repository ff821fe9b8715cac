package env

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	HeliusAPIKey string
	HeliusRPCURL string

	PumpFunProgramID string

	DATABASE_URL string

	PGHOST     string
	PGPORT     string
	PGUSER     string
	PGPASSWORD string
	PGDATABASE string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AnalysisCacheTTLMinutes int
)

func loadEnvVariable(key string, isRequired bool) string {
	value := os.Getenv(key)
	if isRequired && value == "" {
		log.Fatalf("FATAL: Environment variable %s is required but not set.", key)
	}
	isHidden := key == "HELIUS_API_KEY" || key == "PGPASSWORD" || key == "DATABASE_URL" || key == "REDIS_PASSWORD"
	if value == "" {
		if !isRequired {
			log.Printf("INFO: Environment variable %s is not set.", key)
		}
	} else if isHidden {
		log.Printf("INFO: Loaded %s (value hidden)", key)
	} else {
		log.Printf("INFO: Loaded %s = %s", key, value)
	}
	return value
}

func loadIntEnv(key string, required bool, fallback int) int {
	strValue := loadEnvVariable(key, required)
	if strValue == "" {
		if !required {
			log.Printf("INFO: Optional integer environment variable %s is missing, defaulting to %d.", key, fallback)
			return fallback
		}
		log.Fatalf("FATAL: Required integer environment variable %s is missing after load.", key)
		return fallback
	}
	parsed, err := strconv.Atoi(strValue)
	if err != nil {
		log.Fatalf("FATAL: Failed to parse integer environment variable %s='%s': %v", key, strValue, err)
	}
	return parsed
}

func LoadEnv() error {
	err := godotenv.Load()
	if err != nil {
		log.Println("INFO: .env file not found or error loading, relying on system environment variables.")
	} else {
		log.Println("INFO: .env file loaded successfully.")
	}

	HeliusAPIKey = loadEnvVariable("HELIUS_API_KEY", true)
	HeliusRPCURL = loadEnvVariable("HELIUS_RPC_URL", true)
	PumpFunProgramID = loadEnvVariable("PUMPFUN_PROGRAM_ID", false)

	DATABASE_URL = loadEnvVariable("DATABASE_URL", false)

	PGHOST = loadEnvVariable("PGHOST", false)
	PGPORT = loadEnvVariable("PGPORT", false)
	PGUSER = loadEnvVariable("PGUSER", false)
	PGPASSWORD = loadEnvVariable("PGPASSWORD", false)
	PGDATABASE = loadEnvVariable("PGDATABASE", false)

	RedisAddr = loadEnvVariable("REDIS_ADDR", false)
	RedisPassword = loadEnvVariable("REDIS_PASSWORD", false)
	RedisDB = loadIntEnv("REDIS_DB", false, 0)

	AnalysisCacheTTLMinutes = loadIntEnv("ANALYSIS_CACHE_TTL_MINUTES", false, 10)

	if DATABASE_URL == "" {
		log.Println("WARN: DATABASE_URL is not set. Connection logic will rely on PG* variables.")
	}
	if RedisAddr == "" {
		log.Println("WARN: REDIS_ADDR is not set. Analysis results will not be cached.")
	}

	log.Println("INFO: Environment variables loading process complete.")
	return nil
}
