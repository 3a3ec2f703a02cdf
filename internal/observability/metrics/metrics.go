package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	quotes        metric.Int64Counter
	quoteFailures metric.Int64Counter
	lineItems     metric.Int64Histogram
	rateLimited   metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the pricing instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "marketplace"
	}
	meter := provider.Meter(name)

	quotes, err := meter.Int64Counter("marketplace_line_item_quotes_total",
		metric.WithDescription("Line item computations that produced a price breakdown."))
	if err != nil {
		return nil, err
	}
	quoteFailures, err := meter.Int64Counter("marketplace_line_item_quote_failures_total",
		metric.WithDescription("Line item computations rejected, by reason."))
	if err != nil {
		return nil, err
	}
	lineItems, err := meter.Int64Histogram("marketplace_line_items_per_quote",
		metric.WithDescription("Number of line items in a computed breakdown."))
	if err != nil {
		return nil, err
	}

	rateLimited, err := meter.Int64Counter("marketplace_rate_limited_requests_total",
		metric.WithDescription("Requests rejected by the rate limiter, by route."))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		quotes:        quotes,
		quoteFailures: quoteFailures,
		lineItems:     lineItems,
		rateLimited:   rateLimited,
	}, nil
}

// RecordQuote counts a successful computation and its line item count.
func (m *Metrics) RecordQuote(ctx context.Context, unitType string, lineItems int) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("unit_type", strings.TrimSpace(unitType)))
	m.quotes.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.lineItems.Record(ctx, int64(lineItems), metric.WithAttributes(attrs...))
}

// RecordQuoteFailure counts a rejected computation.
func (m *Metrics) RecordQuoteFailure(ctx context.Context, unitType, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("unit_type", strings.TrimSpace(unitType)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.quoteFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimited counts a request turned away by the rate limiter.
func (m *Metrics) RecordRateLimited(ctx context.Context, route string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("route", strings.TrimSpace(route)))
	m.rateLimited.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"unit_type":   {},
	"reason":      {},
	"route":       {},
	"method":      {},
	"status_code": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
