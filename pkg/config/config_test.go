package config

import (
	"strings"
	"testing"
)

func devConfig() *Config {
	return &Config{
		Environment:          EnvDevelopment,
		LogLevel:             "info",
		SessionAuthKey:       strings.Repeat("a", 32),
		SessionEncryptionKey: strings.Repeat("b", 32),
		CORSAllowedOrigins:   "https://market.example.com",
		MarketAddress:        "0x5fbdb2315678afecb367f032d93f642f64180aa3",
		FeeRecipient:         "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266",
		FeePercent:           1,
		AssetContractAddress: "0xe7f1725e7734ce288f8367e1bb143e90bb3f0512",
		CurrencySymbol:       "ETH",
		CurrencyDecimals:     18,
	}
}

func TestValidateMarketplace(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		if err := ValidateMarketplace(devConfig()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("zero fee is allowed", func(t *testing.T) {
		cfg := devConfig()
		cfg.FeePercent = 0
		if err := ValidateMarketplace(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative fee", func(c *Config) { c.FeePercent = -1 }, "FEE_PERCENT"},
		{"fee above 100", func(c *Config) { c.FeePercent = 101 }, "FEE_PERCENT"},
		{"bad market address", func(c *Config) { c.MarketAddress = "market" }, "MARKET_ADDRESS"},
		{"bad fee recipient", func(c *Config) { c.FeeRecipient = "" }, "FEE_RECIPIENT"},
		{"bad asset contract", func(c *Config) { c.AssetContractAddress = "0x1" }, "ASSET_CONTRACT_ADDRESS"},
		{"market equals asset contract", func(c *Config) { c.AssetContractAddress = c.MarketAddress }, "must differ"},
		{"decimals out of range", func(c *Config) { c.CurrencyDecimals = 40 }, "CURRENCY_DECIMALS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := devConfig()
			tt.mutate(cfg)
			err := ValidateMarketplace(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateForProduction(t *testing.T) {
	t.Run("non-production is a no-op", func(t *testing.T) {
		cfg := devConfig()
		cfg.SessionAuthKey = "short"
		cfg.FaucetEnabled = true
		if err := ValidateForProduction(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("valid production config", func(t *testing.T) {
		cfg := devConfig()
		cfg.Environment = EnvProduction
		if err := ValidateForProduction(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"short auth key", func(c *Config) { c.SessionAuthKey = "short" }, "SESSION_AUTH_KEY"},
		{"short encryption key", func(c *Config) { c.SessionEncryptionKey = "short" }, "SESSION_ENCRYPTION_KEY"},
		{"debug logging", func(c *Config) { c.LogLevel = "debug" }, "LOG_LEVEL"},
		{"faucet enabled", func(c *Config) { c.FaucetEnabled = true }, "FAUCET_ENABLED"},
		{"wildcard cors", func(c *Config) { c.CORSAllowedOrigins = "*" }, "CORS_ALLOWED_ORIGINS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := devConfig()
			cfg.Environment = EnvProduction
			tt.mutate(cfg)
			err := ValidateForProduction(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestConfig_Currency(t *testing.T) {
	c := devConfig().Currency()
	if c.Symbol != "ETH" || c.Decimals != 18 {
		t.Fatalf("unexpected currency: %+v", c)
	}
}
