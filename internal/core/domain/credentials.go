package domain

import "strings"

// Credentials authenticate the engine against a registry.
type Credentials struct {
	Username string
	Password string
	Endpoint string // e.g. https://123456789012.dkr.ecr.eu-west-1.amazonaws.com
}

// Registry returns the endpoint host without scheme.
func (c Credentials) Registry() string {
	host := strings.TrimPrefix(c.Endpoint, "https://")
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimSuffix(host, "/")
}
