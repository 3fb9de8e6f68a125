package ports

import (
	"context"

	"github.com/melih/dockship/internal/core/domain"
)

// Decider answers yes/no questions on behalf of the operator.
type Decider interface {
	Confirm(ctx context.Context, q domain.Question) (bool, error)
}
