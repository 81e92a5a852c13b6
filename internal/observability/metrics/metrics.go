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
	shipmentsCreated metric.Int64Counter
	eventsRecorded   metric.Int64Counter
	invitesSent      metric.Int64Counter
	publicTracks     metric.Int64Counter
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

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "parceltrail"
	}
	meter := provider.Meter(name)

	shipmentsCreated, err := meter.Int64Counter("parceltrail_shipments_created_total")
	if err != nil {
		return nil, err
	}
	eventsRecorded, err := meter.Int64Counter("parceltrail_travel_events_recorded_total")
	if err != nil {
		return nil, err
	}
	invitesSent, err := meter.Int64Counter("parceltrail_invitations_sent_total")
	if err != nil {
		return nil, err
	}
	publicTracks, err := meter.Int64Counter("parceltrail_public_track_lookups_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		shipmentsCreated: shipmentsCreated,
		eventsRecorded:   eventsRecorded,
		invitesSent:      invitesSent,
		publicTracks:     publicTracks,
	}, nil
}

// RecordShipmentCreated increments shipment creation counts.
func (m *Metrics) RecordShipmentCreated(ctx context.Context, orgID string) {
	if m == nil {
		return
	}
	m.shipmentsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("org_id", orgID)))
}

// RecordTravelEvent increments travel event counts per classification.
func (m *Metrics) RecordTravelEvent(ctx context.Context, orgID, eventType string) {
	if m == nil {
		return
	}
	m.eventsRecorded.Add(ctx, 1, metric.WithAttributes(
		attribute.String("org_id", orgID),
		attribute.String("event_type", eventType),
	))
}

// RecordInviteSent increments invitation notification counts.
func (m *Metrics) RecordInviteSent(ctx context.Context, orgID string, delivered bool) {
	if m == nil {
		return
	}
	m.invitesSent.Add(ctx, 1, metric.WithAttributes(
		attribute.String("org_id", orgID),
		attribute.Bool("delivered", delivered),
	))
}

// RecordPublicTrack increments public tracking lookups.
func (m *Metrics) RecordPublicTrack(ctx context.Context, found bool) {
	if m == nil {
		return
	}
	m.publicTracks.Add(ctx, 1, metric.WithAttributes(attribute.Bool("found", found)))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
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
