package service

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/marketplace/internal/config"
	"github.com/smallbiznis/marketplace/internal/lineitem/domain"
	"github.com/smallbiznis/marketplace/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/marketplace/internal/observability/metrics"
	"github.com/smallbiznis/marketplace/internal/observability/tracing"
	"github.com/smallbiznis/marketplace/pkg/money"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log     *zap.Logger
	pricing *config.PricingConfigHolder
	metrics *obsmetrics.Metrics
	tracer  trace.Tracer
}

type ServiceParam struct {
	fx.In

	Log     *zap.Logger
	Pricing *config.PricingConfigHolder
	Metrics *obsmetrics.Metrics `optional:"true"`
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:     p.Log.Named("lineitem.service"),
		pricing: p.Pricing,
		metrics: p.Metrics,
		tracer:  otel.Tracer("marketplace/lineitem"),
	}
}

func (s *Service) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.QuoteResult, error) {
	unitType := req.Listing.UnitType()
	ctx, span := s.tracer.Start(ctx, "lineitem.quote", trace.WithAttributes(
		tracing.SafeAttributes(
			attribute.String("unit_type", unitType.String()),
			attribute.String("listing_id", req.Listing.ID),
		)...,
	))
	defer span.End()

	result, err := s.quote(req)
	if err != nil {
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, failureReason(err))
		s.metrics.RecordQuoteFailure(ctx, unitType.String(), failureReason(err))
		logger.WithContext(ctx, s.log).Debug("line item quote rejected",
			zap.String("unit_type", unitType.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.RecordQuote(ctx, unitType.String(), len(result.LineItems))
	logger.WithContext(ctx, s.log).Debug("line items calculated",
		zap.String("listing_id", req.Listing.ID),
		zap.String("unit_type", unitType.String()),
		zap.Int("line_items", len(result.LineItems)),
		zap.Int64("payin_total", result.PayinTotal.Amount),
		zap.Int64("payout_total", result.PayoutTotal.Amount),
		zap.String("currency", result.PayinTotal.Currency),
	)
	return result, nil
}

func (s *Service) quote(req domain.QuoteRequest) (*domain.QuoteResult, error) {
	cfg := s.pricing.Get()

	providerCommission := req.ProviderCommission
	if providerCommission == nil {
		providerCommission = commissionFromConfig(cfg.ProviderCommission)
	}
	customerCommission := req.CustomerCommission
	if customerCommission == nil {
		customerCommission = commissionFromConfig(cfg.CustomerCommission)
	}

	order := req.OrderData
	loc := cfg.Location()
	order.BookingStart = inLocation(order.BookingStart, loc)
	order.BookingEnd = inLocation(order.BookingEnd, loc)

	items, err := TransactionLineItems(req.Listing, order, providerCommission, customerCommission)
	if err != nil {
		return nil, err
	}
	validItems, err := ConstructValidLineItems(items)
	if err != nil {
		return nil, err
	}

	currency := req.Listing.Price().Currency
	payin, err := PayinTotal(validItems, currency)
	if err != nil {
		return nil, err
	}
	payout, err := PayoutTotal(validItems, currency)
	if err != nil {
		return nil, err
	}

	return &domain.QuoteResult{
		LineItems:   validItems,
		PayinTotal:  payin,
		PayoutTotal: payout,
	}, nil
}

func commissionFromConfig(c config.CommissionConfig) *domain.Commission {
	if c.Percentage == nil {
		return nil
	}
	return &domain.Commission{Percentage: domain.Float64(*c.Percentage)}
}

func inLocation(t *time.Time, loc *time.Location) *time.Time {
	if t == nil {
		return nil
	}
	local := t.In(loc)
	return &local
}

// failureReason keeps metric labels to the known error set.
func failureReason(err error) string {
	for _, known := range []error{
		domain.ErrMissingQuantity,
		domain.ErrInvalidCommission,
		domain.ErrInvalidListingPrice,
		domain.ErrInvalidLineItemCode,
		domain.ErrInvalidPricingMode,
		domain.ErrTooManyLineItems,
		money.ErrCurrencyMismatch,
		money.ErrInvalidFactor,
		money.ErrAmountOverflow,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "internal"
}
