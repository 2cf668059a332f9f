package payment

import "context"

type Store interface {
	Record(ctx context.Context, p *Payment) error
	List(ctx context.Context, tenant string, opts ListOpts) ([]*Payment, error)
}
