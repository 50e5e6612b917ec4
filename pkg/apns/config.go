package apns

import (
	"crypto/tls"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/token"

	"github.com/dmitrymomot/apnskit/pkg/pool"
)

// Config is the environment-variable form of Configuration.
type Config struct {
	AuthType            string        `env:"APNS_AUTH_TYPE" envDefault:"token"`        // "token" or "certificate"
	KeyPath             string        `env:"APNS_KEY_PATH"`                            // .p8 signing key, token auth
	KeyID               string        `env:"APNS_KEY_ID"`                              // token auth
	TeamID              string        `env:"APNS_TEAM_ID"`                             // token auth
	CertificatePath     string        `env:"APNS_CERT_PATH"`                           // .p12 or .pem, certificate auth
	CertificatePassword string        `env:"APNS_CERT_PASSWORD"`                       // certificate auth
	Topic               string        `env:"APNS_TOPIC,required"`                      // usually the app bundle id
	Timeout             time.Duration `env:"APNS_TIMEOUT" envDefault:"0s"`             // 0 disables the bound
	Environment         string        `env:"APNS_ENVIRONMENT" envDefault:"sandbox"`    // default environment for clients
	MaxConnsPerWorker   int           `env:"APNS_MAX_CONNS_PER_WORKER" envDefault:"1"` // pool cap per GOMAXPROCS worker
}

// LoadConfig reads Config from the process environment after loading the
// given .env files, if any. Variables already set take precedence over the
// files.
func LoadConfig(files ...string) (Config, error) {
	var cfg Config
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return cfg, errors.Join(ErrLoadConfig, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Join(ErrLoadConfig, err)
	}
	return cfg, nil
}

// DefaultEnvironment parses the Environment field.
func (c Config) DefaultEnvironment() (Environment, error) {
	return ParseEnvironment(c.Environment)
}

// PoolOptions returns the pool settings carried by c, for
// pool.WithPoolOptions or apnskit.WithPoolOptions.
func (c Config) PoolOptions() []pool.Option {
	return []pool.Option{pool.WithMaxConnsPerWorker(c.MaxConnsPerWorker)}
}

// Configuration loads the credentials referenced by c.
func (c Config) Configuration() (Configuration, error) {
	auth, err := c.authentication()
	if err != nil {
		return Configuration{}, err
	}

	cfg := Configuration{
		Auth:    auth,
		Topic:   c.Topic,
		Timeout: c.Timeout,
	}
	if err := cfg.Validate(); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

func (c Config) authentication() (AuthenticationMethod, error) {
	switch strings.ToLower(c.AuthType) {
	case "token":
		key, err := token.AuthKeyFromFile(c.KeyPath)
		if err != nil {
			return AuthenticationMethod{}, errors.Join(ErrLoadCredentials, err)
		}
		return TokenAuth(key, c.KeyID, c.TeamID), nil

	case "certificate", "cert":
		var (
			cert tls.Certificate
			err  error
		)
		if strings.EqualFold(filepath.Ext(c.CertificatePath), ".p12") {
			cert, err = certificate.FromP12File(c.CertificatePath, c.CertificatePassword)
		} else {
			cert, err = certificate.FromPemFile(c.CertificatePath, c.CertificatePassword)
		}
		if err != nil {
			return AuthenticationMethod{}, errors.Join(ErrLoadCredentials, err)
		}
		return CertificateAuth(cert), nil

	default:
		return AuthenticationMethod{}, ErrInvalidAuthType
	}
}
