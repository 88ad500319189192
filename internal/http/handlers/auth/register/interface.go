package register

import (
	"context"
)

type Service interface {
	Register(ctx context.Context, name, email, password, role, walletAddress string) (string, string, error)
}
