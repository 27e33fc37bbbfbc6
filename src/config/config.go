package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port               string
	DatabasePath       string
	LogLevel           string
	JWTSecret          string
	MaxUploadSizeBytes int64

	// Statement interpretation
	Language                string // rule set language tag, e.g. "de"
	HomeCurrency            string // the account's base currency
	FileEncoding            string // text encoding of uploaded statements
	FXMatchTolerancePercent float64

	// Account templates. Tokens: {currency}, {isin}, {ticker}.
	LiquidityAccount       string
	StocksAccount          string
	SplitsAccount          string
	FeesAccount            string
	InterestAccount        string
	PnLAccount             string
	DivIncomeAccount       string
	WhtAccount             string
	RoundingErrorAccount   string
	DepositAccount         string // optional; deposit rows are skipped when empty
}

var Cfg *AppConfig

func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found. Relying on OS environment variables and defaults.")
	}

	log.Println("Loading application configuration...")

	jwtSecret := getEnv("JWT_SECRET", "insecure-development-secret-key-at-least-32-bytes")
	if jwtSecret == "insecure-development-secret-key-at-least-32-bytes" {
		log.Println("WARNING: Using default insecure JWT_SECRET. Set JWT_SECRET environment variable for production.")
	}

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	toleranceStr := getEnv("FX_MATCH_TOLERANCE_PERCENT", "2.0")
	tolerance, err := strconv.ParseFloat(toleranceStr, 64)
	if err != nil || tolerance <= 0 {
		log.Printf("WARNING: Invalid FX_MATCH_TOLERANCE_PERCENT '%s'. Using default 2.0. Error: %v", toleranceStr, err)
		tolerance = 2.0
	}

	Cfg = &AppConfig{
		Port:               getEnv("PORT", "8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "./degiro.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		JWTSecret:          jwtSecret,
		MaxUploadSizeBytes: maxUploadSizeBytes,

		Language:                getEnv("STATEMENT_LANGUAGE", "de"),
		HomeCurrency:            getEnv("HOME_CURRENCY", "EUR"),
		FileEncoding:            getEnv("FILE_ENCODING", "utf-8"),
		FXMatchTolerancePercent: tolerance,

		LiquidityAccount:     getEnv("LIQUIDITY_ACCOUNT", "Assets:Invest:Degiro:{currency}"),
		StocksAccount:        getEnv("STOCKS_ACCOUNT", "Assets:Invest:Stocks:Degiro:{ticker}"),
		SplitsAccount:        getEnv("SPLITS_ACCOUNT", "Assets:Invest:Splits:Degiro:{ticker}"),
		FeesAccount:          getEnv("FEES_ACCOUNT", "Expenses:Invest:Fees:Degiro:{currency}"),
		InterestAccount:      getEnv("INTEREST_ACCOUNT", "Expenses:Invest:Interest:Degiro"),
		PnLAccount:           getEnv("PNL_ACCOUNT", "Income:Invest:PnL:Degiro"),
		DivIncomeAccount:     getEnv("DIV_INCOME_ACCOUNT", "Income:Invest:Dividends"),
		WhtAccount:           getEnv("WHT_ACCOUNT", "Expenses:Invest:WithholdingTax:Degiro"),
		RoundingErrorAccount: getEnv("ROUNDING_ERROR_ACCOUNT", "Expenses:Invest:Fees:RoundingError"),
		DepositAccount:       getEnv("DEPOSIT_ACCOUNT", ""),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, Language=%s, HomeCurrency=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.Language, Cfg.HomeCurrency)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
