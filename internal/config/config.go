package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const devAdminSecret = "admin123"

type Config struct {
	HTTPAddr         string
	Mode             string
	AdminSecret      string
	JWTSecret        string
	WSOrigin         string
	UIDist           string
	DBDSN            string
	PositionTTL      time.Duration
	SettleBiasOffset float64
	SettleBiasScale  float64
}

func (c Config) Production() bool {
	return c.Mode == "production"
}

func Load() (Config, error) {
	var c Config
	var missing []string
	c.HTTPAddr = os.Getenv("HTTP_ADDR")
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	c.Mode = strings.ToLower(strings.TrimSpace(os.Getenv("MODE")))
	if c.Mode == "" {
		c.Mode = "development"
	}
	if c.Mode != "development" && c.Mode != "production" {
		return c, errors.New("invalid MODE: use development or production")
	}
	c.AdminSecret = os.Getenv("ADMIN_SECRET")
	if c.AdminSecret == "" {
		if c.Mode == "production" {
			missing = append(missing, "ADMIN_SECRET")
		} else {
			c.AdminSecret = devAdminSecret
		}
	}
	c.JWTSecret = os.Getenv("JWT_SECRET")
	c.WSOrigin = os.Getenv("WS_ORIGIN")
	if c.WSOrigin == "" {
		c.WSOrigin = "*"
	}
	c.UIDist = os.Getenv("UI_DIST")
	c.DBDSN = os.Getenv("DB_DSN")
	ttl := os.Getenv("POSITION_TTL")
	if ttl == "" {
		c.PositionTTL = 10 * time.Second
	} else {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return c, err
		}
		if d <= 0 {
			return c, errors.New("POSITION_TTL must be positive")
		}
		c.PositionTTL = d
	}
	var err error
	c.SettleBiasOffset, err = floatEnv("SETTLE_BIAS_OFFSET", 0.4)
	if err != nil {
		return c, err
	}
	c.SettleBiasScale, err = floatEnv("SETTLE_BIAS_SCALE", 10)
	if err != nil {
		return c, err
	}
	if len(missing) > 0 {
		return c, errors.New("missing required env: " + strings.Join(missing, ","))
	}
	return c, nil
}

func floatEnv(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return f, nil
}
