package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/rand"

	"github.com/smartpark/spotsim/config"
	coremetrics "github.com/smartpark/spotsim/core/metrics"
	"github.com/smartpark/spotsim/core/sim"
	"github.com/smartpark/spotsim/infra/logger"
	"github.com/smartpark/spotsim/infra/metrics"
	"github.com/smartpark/spotsim/infra/mqtt"
	"github.com/smartpark/spotsim/internal/eventbus"
)

// Service wires the configuration into a running simulator: MQTT client,
// metrics sinks, event bus and the fleet runner.
type Service struct {
	runner       *sim.Runner
	client       *mqtt.PahoClient
	availability string
	bus          *eventbus.Bus
	log          logger.Logger
	promEnabled  bool
	promPort     string
	offlineOnce  sync.Once
	closeOnce    sync.Once
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	mqttCfg := cfg.MQTT
	if mqttCfg.LWTTopic == "" {
		mqttCfg.LWTTopic = mqtt.AvailabilityTopic(mqttCfg.TopicPrefix, mqttCfg.ClientID)
		mqttCfg.LWTPayload = "offline"
		mqttCfg.LWTQoS = 1
		mqttCfg.LWTRetain = true
	}
	client, err := mqtt.NewPahoClient(mqttCfg)
	if err != nil {
		return nil, fmt.Errorf("mqtt client: %w", err)
	}
	// Announce liveness on the same topic the LWT clears.
	if err := client.Publish(mqttCfg.LWTTopic, []byte("online"), mqttCfg.LWTQoS, mqttCfg.LWTRetain); err != nil {
		logg.Warnf("availability publish: %v", err)
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	src := rand.NewSource(seed)
	spots := sim.NewFleet(cfg.Sim, time.Now(), src)

	prefix := cfg.MQTT.TopicPrefix
	topic := func(spotID string) string { return mqtt.StatusTopic(prefix, spotID) }

	bus := eventbus.New()
	runner := sim.NewRunner(cfg.Sim, spots, client, topic, bus, sink, logger.New("runner"))
	return &Service{
		runner:       runner,
		client:       client,
		availability: mqttCfg.LWTTopic,
		bus:          bus,
		log:          logg,
		promEnabled:  cfg.Metrics.PrometheusEnabled,
		promPort:     cfg.Metrics.PrometheusPort,
	}, nil
}

// Run starts the simulation loop and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	sub := s.bus.Subscribe()
	go s.echo(sub)
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	// The availability flag must be retracted while the client is still
	// connected, so cancellation reaches the runner only afterwards.
	inner, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
			s.publishOffline()
			cancel()
		case <-inner.Done():
		}
	}()
	return s.runner.Run(inner)
}

func (s *Service) publishOffline() {
	s.offlineOnce.Do(func() {
		if err := s.client.Publish(s.availability, []byte("offline"), 1, true); err != nil {
			s.log.Warnf("availability publish: %v", err)
		}
	})
}

// echo mirrors every published status change to the log, matching the
// operator-facing console output of the original deployment.
func (s *Service) echo(sub <-chan eventbus.Event) {
	for ev := range sub {
		sc, ok := ev.(sim.StatusChanged)
		if !ok {
			continue
		}
		s.log.Infof("%s | %s => %s (distance=%.1fcm)",
			sc.Event.Timestamp, sc.Event.SpotID, sc.Event.Status, sc.Event.DistanceCm)
	}
}

// Close releases the sink connection and the event bus exactly once. A
// graceful shutdown retracts the availability flag itself instead of
// waiting for the broker to fire the LWT.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		s.publishOffline()
		s.runner.Close()
		s.bus.Close()
	})
	return nil
}
