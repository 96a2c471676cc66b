package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultReportURLTemplate is the weekly category report on salesfinder.
const DefaultReportURLTemplate = "https://salesfinder.ru/ozon/category/{cat}/info/products?date={d1}&date2={d2}"

// DefaultCategories are the marketplace category ids exported every week.
var DefaultCategories = []string{
	"1", "4", "7", "10", "13", "16", "19", "7711",
	"2", "5", "8", "11", "14", "17", "20", "7788",
	"3", "6", "9", "12", "15", "18", "21", "7789",
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	SourceRoot   string
	OutputDir    string
	OutputFormat string

	ReviewThreshold int
	BreakoutRevenue float64
	LoadConcurrency int
	SkipBadFiles    bool
	Debug           bool

	ChromeBin         string
	ReportURLTemplate string
	ReportCategories  []string
	OpenRateLimitMs   int
	MaxRetries        int
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	root := getEnv("SOURCE_ROOT", "./exports")

	return &Config{
		SourceRoot:   root,
		OutputDir:    getEnv("OUTPUT_DIR", root),
		OutputFormat: strings.ToLower(getEnv("OUTPUT_FORMAT", "xlsx")),

		ReviewThreshold: getEnvInt("REVIEW_THRESHOLD", 200),
		BreakoutRevenue: getEnvFloat("BREAKOUT_REVENUE", 15000),
		LoadConcurrency: getEnvInt("LOAD_CONCURRENCY", 4),
		SkipBadFiles:    getEnvBool("SKIP_BAD_FILES", false),
		Debug:           getEnvBool("LOG_DEBUG", false),

		ChromeBin:         getEnv("CHROME_BIN", ""),
		ReportURLTemplate: getEnv("REPORT_URL_TEMPLATE", DefaultReportURLTemplate),
		ReportCategories:  getEnvList("REPORT_CATEGORIES", DefaultCategories),
		OpenRateLimitMs:   getEnvInt("OPEN_RATE_LIMIT_MS", 500),
		MaxRetries:        getEnvInt("MAX_RETRIES", 3),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList splits a comma separated value, ignoring blank items.
func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
