// Package config loads process configuration from the environment (and an
// optional local .env file), following the teacher's own bootstrap
// convention, generalized to this service's settings.
package config

import (
	"bufio"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config is every environment-sourced setting the server needs to boot.
type Config struct {
	DBDSN           string
	AutoMigrate     bool
	UploadBase      string
	PublicMediaURL  string
	AllowedOrigins  []string
	ServiceJWTSecret []byte
	AdsPixelID      string
	AdsAccessToken  string
	HTTPAddr        string
	AuthRoot        string
	ProbeInterval   time.Duration
	MPForceX1000    bool
}

// Load reads ./.env (if present) into the environment, then builds a
// Config from it. It calls log.Fatal on any setting this process cannot
// run without, same as the teacher's initDB does for DB_DSN.
func Load() Config {
	loadDotEnv()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}

	secret := os.Getenv("SERVICE_JWT_SECRET")
	if secret == "" {
		secret = "dev-insecure-secret-change"
		log.Printf("config: SERVICE_JWT_SECRET not set, using development fallback")
	}

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8081"
	}

	uploadBase := os.Getenv("UPLOAD_BASE")
	if uploadBase == "" {
		uploadBase = "uploads"
	}

	authRoot := os.Getenv("WA_AUTH_ROOT")
	if authRoot == "" {
		authRoot = "wa-auth"
	}

	return Config{
		DBDSN:            dsn,
		AutoMigrate:      parseBool(os.Getenv("DB_AUTO_MIGRATE"), true),
		UploadBase:       uploadBase,
		PublicMediaURL:   os.Getenv("PUBLIC_MEDIA_URL"),
		AllowedOrigins:   parseCSV(os.Getenv("ALLOWED_ORIGINS")),
		ServiceJWTSecret: []byte(secret),
		AdsPixelID:       os.Getenv("ADS_PIXEL_ID"),
		AdsAccessToken:   os.Getenv("ADS_ACCESS_TOKEN"),
		HTTPAddr:         addr,
		AuthRoot:         authRoot,
		ProbeInterval:    20 * time.Second,
		MPForceX1000:     parseBool(os.Getenv("MP_FORCE_X1000"), true),
	}
}

func parseBool(v string, def bool) bool {
	if v == "" {
		return def
	}
	lv := strings.ToLower(v)
	return lv != "false" && lv != "0" && lv != "no"
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// loadDotEnv loads key=value pairs from a local .env file into the
// environment without overwriting variables that are already set.
func loadDotEnv() {
	path := ".env"
	if _, err := os.Stat(path); err != nil {
		return
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if eq := strings.IndexByte(line, '='); eq > 0 {
			key := strings.TrimSpace(line[:eq])
			val := strings.TrimSpace(line[eq+1:])
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
	}
}

// ServiceClaims is the payload a trusted internal caller's service-role JWT
// must carry: which persistence row it is allowed to act as (ref) and its
// capability tier (role).
type ServiceClaims struct {
	Ref  string
	Role string
}

// ValidateServiceToken parses and validates a service-role bearer token
// against secret, returning the ref/role claims it carries.
func ValidateServiceToken(tokenStr string, secret []byte) (ServiceClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("config: unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return ServiceClaims{}, errors.New("config: invalid service token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ServiceClaims{}, errors.New("config: invalid service token claims")
	}
	ref, _ := claims["ref"].(string)
	role, _ := claims["role"].(string)
	if ref == "" || role == "" {
		return ServiceClaims{}, errors.New("config: service token missing ref/role claims")
	}
	return ServiceClaims{Ref: ref, Role: role}, nil
}
