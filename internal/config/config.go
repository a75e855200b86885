package config

import (
	"fmt"
	"github.com/CrossPunks/marketplace-engine/internal/log"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"math/big"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env     string
	Network string
	Index   string
	Debug   bool

	StorePath  string
	ApiPort    string
	HealthPort string

	Market        MarketConfig
	Sale          SaleConfig
	History       bool
	Webhook       WebhookConfig
	ElasticSearch ElasticSearchConfig
	Aws           AwsConfig
}

type MarketConfig struct {
	Owner   string
	Custody string
}

type SaleConfig struct {
	Admin         string
	Beneficiary   string
	Collection    string
	Treasury      string
	UnitPrice     *big.Int
	PaymentToken  string
	PlatformToken string
}

type WebhookConfig struct {
	Url     string
	Retries int
	Timeout int
}

type AwsConfig struct {
	AccessKey string
	SecretKey string
	Region    string
}

type ElasticSearchConfig struct {
	Hosts            []string
	Sniff            bool
	HealthCheck      bool
	Debug            bool
	Username         string
	Password         string
	AwsSigned        bool
	BulkPersistCount int
	Refresh          string
}

func Init(app string) {
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("Unable to load .env")
	}

	initLogger(app)
}

func initLogger(app string) {
	log.NewLogger(getString("LOG_PATH", fmt.Sprintf("./var/%s.log", app)), Get().Debug)
}

func Get() *Config {
	return &Config{
		Env:        getString("ENV", ""),
		Network:    getString("NETWORK", "mainnet"),
		Index:      getString("INDEX_NAME", "crosspunks"),
		Debug:      getBool("DEBUG", false),
		StorePath:  getString("STORE_PATH", "./var/market.db"),
		ApiPort:    getString("API_PORT", "8080"),
		HealthPort: getString("HEALTH_PORT", "8082"),
		Market: MarketConfig{
			Owner:   getString("MARKET_OWNER", ""),
			Custody: getString("MARKET_CUSTODY", "market"),
		},
		Sale: SaleConfig{
			Admin:         getString("SALE_ADMIN", ""),
			Beneficiary:   getString("SALE_BENEFICIARY", ""),
			Collection:    getString("SALE_COLLECTION", "crosspunks"),
			Treasury:      getString("SALE_TREASURY", "sale"),
			UnitPrice:     getBigInt("SALE_UNIT_PRICE", "100000000000000000"),
			PaymentToken:  getString("SALE_PAYMENT_TOKEN", "BUSD"),
			PlatformToken: getString("SALE_PLATFORM_TOKEN", "CST"),
		},
		History: getBool("HISTORY", false),
		Webhook: WebhookConfig{
			Url:     getString("WEBHOOK_URL", ""),
			Retries: getInt("WEBHOOK_RETRIES", 3),
			Timeout: getInt("WEBHOOK_TIMEOUT", 10),
		},
		Aws: AwsConfig{
			AccessKey: getString("AWS_ACCESS_KEY_ID", ""),
			SecretKey: getString("AWS_SECRET_KEY_ID", ""),
			Region:    getString("AWS_REGION", ""),
		},
		ElasticSearch: ElasticSearchConfig{
			Hosts:            getSlice("ELASTIC_SEARCH_HOSTS", make([]string, 0), ","),
			Sniff:            getBool("ELASTIC_SEARCH_SNIFF", true),
			HealthCheck:      getBool("ELASTIC_SEARCH_HEALTH_CHECK", true),
			Debug:            getBool("ELASTIC_SEARCH_DEBUG", false),
			Username:         getString("ELASTIC_SEARCH_USERNAME", ""),
			Password:         getString("ELASTIC_SEARCH_PASSWORD", ""),
			AwsSigned:        getBool("ELASTIC_SEARCH_AWS_SIGNED", false),
			BulkPersistCount: getInt("ELASTIC_SEARCH_BULK_PERSIST_COUNT", 300),
			Refresh:          getString("ELASTIC_SEARCH_REFRESH", "wait_for"),
		},
	}
}

func getString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

func getInt(key string, defaultValue int) int {
	valStr := getString(key, "")
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultValue
	}

	return val
}

func getBool(key string, defaultValue bool) bool {
	valStr := getString(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultValue
}

func getBigInt(key string, defaultValue string) *big.Int {
	valStr := getString(key, defaultValue)
	val, ok := new(big.Int).SetString(valStr, 10)
	if !ok {
		val, _ = new(big.Int).SetString(defaultValue, 10)
	}

	return val
}

func getSlice(key string, defaultVal []string, sep string) []string {
	valStr := getString(key, "")
	if valStr == "" {
		return defaultVal
	}

	return strings.Split(valStr, sep)
}
