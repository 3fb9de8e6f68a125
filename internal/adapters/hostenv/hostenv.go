package hostenv

import (
	"os"
	"strings"
)

// SageMaker detects SageMaker notebook hosts, which keep a "SageMaker"
// entry in the home directory.
type SageMaker struct {
	Home string // defaults to the user's home directory
}

// Restricted reports whether the home directory has a sagemaker entry.
func (s SageMaker) Restricted() bool {
	home := s.Home
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return false
		}
	}

	entries, err := os.ReadDir(home)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if strings.ToLower(e.Name()) == "sagemaker" {
			return true
		}
	}
	return false
}
