package provider

import (
	"context"
	"time"

	"github.com/moneymaven/insights/internal/domain"
)

// Client is the read surface of a banking provider.
type Client interface {
	Accounts(ctx context.Context) ([]domain.Account, error)
	Transactions(ctx context.Context, accountID string, from, to time.Time) ([]domain.ProviderTransaction, error)
	Balance(ctx context.Context, accountID string) (*domain.Balance, error)
}
