package domain

import "context"

type Service interface {
	Quote(ctx context.Context, req QuoteRequest) (*QuoteResult, error)
}
