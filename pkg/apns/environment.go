package apns

import (
	"fmt"
	"strings"

	"github.com/sideshow/apns2"
)

// Environment selects the APNs endpoint a client talks to.
type Environment int

const (
	Sandbox Environment = iota
	Production
)

// ParseEnvironment accepts "sandbox"/"development" and "production".
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sandbox", "development", "dev":
		return Sandbox, nil
	case "production", "prod":
		return Production, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidEnvironment, s)
	}
}

func (e Environment) String() string {
	switch e {
	case Sandbox:
		return "sandbox"
	case Production:
		return "production"
	default:
		return fmt.Sprintf("Environment(%d)", int(e))
	}
}

// Host returns the gateway URL for the environment.
func (e Environment) Host() string {
	if e == Production {
		return apns2.HostProduction
	}
	return apns2.HostDevelopment
}

// Valid reports whether e is one of the declared environments.
func (e Environment) Valid() bool {
	return e == Sandbox || e == Production
}
