package domain

import (
	"fmt"
	"strings"
)

// CleanupScope selects what CleanUp removes.
type CleanupScope string

const (
	ScopeImages     CleanupScope = "images"
	ScopeContainers CleanupScope = "containers"
	ScopeAll        CleanupScope = "all"
)

// ParseCleanupScope parses a scope name case-insensitively.
func ParseCleanupScope(s string) (CleanupScope, error) {
	switch scope := CleanupScope(strings.ToLower(strings.TrimSpace(s))); scope {
	case ScopeImages, ScopeContainers, ScopeAll:
		return scope, nil
	default:
		return "", fmt.Errorf("unknown cleanup scope %q (want images, containers or all)", s)
	}
}
