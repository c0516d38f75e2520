package main

import (
	"context"
	"fmt"
	"time"

	"github.com/akriventsev/tradebus/framework/adapters/messagebus"
	"github.com/akriventsev/tradebus/framework/bus"
	"github.com/akriventsev/tradebus/framework/container"
	"github.com/akriventsev/tradebus/framework/identity"
	"github.com/akriventsev/tradebus/framework/invoke"
	"github.com/akriventsev/tradebus/framework/transport"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type orderPlaced struct {
	OrderID string
	Symbol  string
}

func (o orderPlaced) PublishableType() string { return bus.TypeOrderPlaced }

// sinkConfigFor returns the default config DefaultSinkFactory expects for
// sinkType; inmemory needs none, the brokered sinks connect with their
// package-level DefaultXConfig().
func sinkConfigFor(sinkType string) interface{} {
	switch sinkType {
	case "redis":
		return messagebus.DefaultRedisConfig()
	case "kafka":
		return messagebus.DefaultKafkaConfig()
	case "nats":
		return messagebus.DefaultNATSConfig()
	default:
		return messagebus.DefaultInMemoryConfig()
	}
}

// demoCmd exercises Register/Send, Subscribe/Publish and Request/Response
// against a single in-process bus, so the three messaging patterns can be
// inspected without a broker. The bus itself is assembled through
// container.BusModule/Initializer rather than built standalone, the same
// path any real tradebus service would use to wire it alongside its other
// modules.
func demoCmd(ctx context.Context) *cobra.Command {
	var sinkType string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a self-contained walkthrough of send, publish, and request/response",
		RunE: func(cmd *cobra.Command, args []string) error {
			sink, err := messagebus.NewSinkFactory().Create(sinkType, sinkConfigFor(sinkType))
			if err != nil {
				return fmt.Errorf("failed to build %s sink: %w", sinkType, err)
			}

			// Retries absorb transient broker blips, the breaker absorbs
			// sustained ones; both sit between the bus and the raw sink.
			retrying := messagebus.NewRetrySink(sink, &transport.ExponentialBackoffRetryPolicy{
				InitialDelay: 50 * time.Millisecond,
				MaxDelay:     2 * time.Second,
				Multiplier:   2,
				MaxAttempts:  3,
			})
			guarded := messagebus.NewBreakerSink(sinkType+"-sink", retrying)

			busModule := container.NewBusModule(bus.NewBuilder().
				WithName("tradebusd.demo").
				WithTraderID(identity.TraderID("trader-1")).
				WithSerializer(invoke.DefaultSerializer()).
				WithSink(guarded))

			cnt, err := container.NewContainerBuilder(&container.Config{}).
				WithDefaults().
				WithModule(busModule).
				Build(ctx)
			if err != nil {
				return fmt.Errorf("failed to build container: %w", err)
			}
			defer func() { _ = cnt.Shutdown(ctx) }()

			b, err := container.Get[*bus.Bus](cnt, container.BusDependencyKey)
			if err != nil {
				return fmt.Errorf("bus module did not register a bus: %w", err)
			}

			quoteHandler := bus.NewHandler("quotes", func(msg bus.Message) {
				req := msg.(bus.Request)
				_ = b.Response(bus.Response{CorrelationID: req.ID, Payload: "42.00"})
			})
			if err := b.Register("quotes.get", quoteHandler); err != nil {
				return err
			}

			riskHandler := bus.NewHandler("risk-monitor", func(msg bus.Message) {
				fmt.Printf("risk monitor observed: %+v\n", msg)
			})
			if err := b.Subscribe("order.*", riskHandler, 10); err != nil {
				return err
			}

			if err := b.Request("quotes.get", bus.Request{
				ID: invoke.GenerateCorrelationID(),
				Callback: func(resp bus.Response) {
					fmt.Printf("quote received: %v\n", resp.Payload)
				},
			}); err != nil {
				return err
			}

			if err := b.Publish(ctx, "order.placed", orderPlaced{OrderID: "o-1", Symbol: "BTC-USD"}); err != nil {
				return err
			}

			counters := b.Counters()
			log.Info().
				Int64("sent", counters.Sent).
				Int64("req", counters.Req).
				Int64("res", counters.Res).
				Int64("pub", counters.Pub).
				Msg("demo complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&sinkType, "sink", "inmemory", "external sink backend: inmemory, redis, kafka, nats")
	return cmd
}
