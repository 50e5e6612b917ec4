package apns

import (
	"crypto/ecdsa"
	"crypto/tls"
	"log/slog"
	"time"

	"github.com/sideshow/apns2/token"
)

type authKind int

const (
	authNone authKind = iota
	authCertificate
	authToken
)

// AuthenticationMethod is either a provider certificate or a signing key
// used to mint provider tokens.
type AuthenticationMethod struct {
	kind        authKind
	certificate tls.Certificate
	token       *token.Token
}

// CertificateAuth authenticates with a TLS client certificate.
func CertificateAuth(cert tls.Certificate) AuthenticationMethod {
	return AuthenticationMethod{kind: authCertificate, certificate: cert}
}

// TokenAuth authenticates with JWT provider tokens signed by key.
// The token is shared by every connection built from the configuration.
func TokenAuth(key *ecdsa.PrivateKey, keyID, teamID string) AuthenticationMethod {
	return AuthenticationMethod{
		kind:  authToken,
		token: &token.Token{AuthKey: key, KeyID: keyID, TeamID: teamID},
	}
}

// IsZero reports whether no method was chosen.
func (a AuthenticationMethod) IsZero() bool {
	return a.kind == authNone
}

func (a AuthenticationMethod) String() string {
	switch a.kind {
	case authCertificate:
		return "certificate"
	case authToken:
		return "token"
	default:
		return "none"
	}
}

// Configuration is everything needed to reach APNs except the environment.
// It is set once per application and shared read-only afterwards.
type Configuration struct {
	Auth  AuthenticationMethod
	Topic string
	// Timeout bounds both the wait for a pooled connection and the request.
	// Zero means no bound beyond the caller's context.
	Timeout time.Duration
	// Logger overrides the application logger for pool and connection logs.
	Logger *slog.Logger
}

// Validate checks the fields required to open a connection.
func (c Configuration) Validate() error {
	switch {
	case c.Auth.IsZero():
		return ErrMissingAuth
	case c.Auth.kind == authToken && c.Auth.token.AuthKey == nil:
		return ErrMissingAuth
	case c.Topic == "":
		return ErrMissingTopic
	case c.Timeout < 0:
		return ErrInvalidTimeout
	}
	return nil
}

// FullConfiguration binds the configuration to an environment.
func (c Configuration) FullConfiguration(env Environment) FullConfiguration {
	return FullConfiguration{Configuration: c, Environment: env}
}

// FullConfiguration is a Configuration resolved for one environment.
type FullConfiguration struct {
	Configuration
	Environment Environment
}

// Validate checks the configuration and the environment.
func (c FullConfiguration) Validate() error {
	if !c.Environment.Valid() {
		return ErrInvalidEnvironment
	}
	return c.Configuration.Validate()
}
