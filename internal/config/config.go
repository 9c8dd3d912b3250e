// Package config loads process configuration from the environment once at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nikolayk812/sqlcpp-cart/internal/cart"
	"github.com/nikolayk812/sqlcpp-cart/internal/domain"
	"github.com/nikolayk812/sqlcpp-cart/internal/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Config struct {
	Cart   cart.Config
	Tables repository.Tables

	LogLevel string
	HTTPAddr string

	// DatabaseURL empty means carts live in process memory.
	DatabaseURL string

	RedisAddr    string
	RedisChannel string

	KafkaBrokers []string
	KafkaTopic   string
}

func Load() (Config, error) {
	var (
		cfg  Config
		errs []error
	)

	pricing := domain.DefaultPricing()
	pricing.DefaultTax = getEnvDecimal("CART_DEFAULT_TAX", pricing.DefaultTax, &errs)
	pricing.TaxIncluded = getEnvBool("CART_TAX_INCLUDED", pricing.TaxIncluded, &errs)
	pricing.OptionPriceSum = getEnvBool("CART_OPTION_PRICE_SUM", pricing.OptionPriceSum, &errs)
	pricing.Format.Decimals = int32(getEnvInt("CART_DECIMALS", int(pricing.Format.Decimals), &errs))
	pricing.Format.DecimalPoint = getEnv("CART_DECIMAL_POINT", pricing.Format.DecimalPoint)
	pricing.Format.ThousandSeparator = getEnvRaw("CART_THOUSAND_SEPARATOR", pricing.Format.ThousandSeparator)

	if pricing.Format.Decimals < 0 {
		errs = append(errs, fmt.Errorf("CART_DECIMALS[%d] is negative", pricing.Format.Decimals))
	}

	cfg.Cart = cart.Config{
		Pricing:              pricing,
		AllowDifferentSeller: getEnvBool("CART_ALLOW_DIFFERENT_SELLER", false, &errs),
	}

	if code := getEnv("CART_CURRENCY", ""); code != "" {
		unit, err := currency.ParseISO(code)
		if err != nil {
			errs = append(errs, fmt.Errorf("CART_CURRENCY[%s] is not valid: %w", code, err))
		}
		cfg.Cart.Currency = unit
	}

	defaults := repository.DefaultTables()
	cfg.Tables = repository.Tables{
		Carts: getEnv("CART_TABLE", defaults.Carts),
		Items: getEnv("CART_ITEMS_TABLE", defaults.Items),
	}

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisChannel = getEnv("REDIS_CHANNEL", "cart-events")
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "cart-events")
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getEnvRaw keeps whitespace, so a space can be used as a separator.
func getEnvRaw(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getEnvInt(key string, def int, errs *[]error) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s[%s] is not an integer: %w", key, v, err))
		return def
	}

	return n
}

func getEnvBool(key string, def bool, errs *[]error) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s[%s] is not a bool: %w", key, v, err))
		return def
	}

	return b
}

func getEnvDecimal(key string, def decimal.Decimal, errs *[]error) decimal.Decimal {
	v := getEnv(key, "")
	if v == "" {
		return def
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s[%s] is not a number: %w", key, v, err))
		return def
	}

	return d
}
