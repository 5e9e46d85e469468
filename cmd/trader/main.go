package main

import (
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/pkg/sys"

	"main/internal/bus"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/schema"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config")
	traderID := flag.String("trader-id", "TRADER-001", "Trader id when no config file is given")
	count := flag.Int("count", 0, "Override the number of ticks to publish (0=use config)")
	pyroscopeAddr := flag.String("pyroscope", "", "Pyroscope server address (empty=disable)")
	flag.Parse()

	if *pyroscopeAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "trader/bus",
			ServerAddress:   *pyroscopeAddr,
			Tags: map[string]string{
				"env": "local",
			},
			Logger: emptyLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	loaded, err := loadConfig(*configPath, *traderID)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *count > 0 {
		loaded.Feed.Count = *count
	}

	metrics := obs.NewMetrics()
	loaded.Bus.Metrics = metrics
	mbus, err := bus.New(loaded.Bus)
	if err != nil {
		log.Fatalf("bus construction failed: %v", err)
	}
	defer func() {
		if err := mbus.Close(); err != nil {
			log.Printf("bus close failed: %v", err)
		}
	}()

	if err := run(mbus, loaded.Feed); err != nil {
		log.Fatalf("run failed: %v", err)
	}

	snapshot := metrics.Snapshot()
	log.Printf("counters: sent=%d req=%d res=%d pub=%d",
		mbus.SentCount(), mbus.ReqCount(), mbus.ResCount(), mbus.PubCount())
	log.Printf("metrics: dispatch=%v dropped=%d emit=%d publish_latency=%+v emit_latency=%+v",
		snapshot.DispatchCounts, snapshot.DroppedCount, snapshot.EmitCount,
		snapshot.PublishLatency, snapshot.EmitLatency)
}

func run(mbus *bus.MessageBus, feed ops.FeedSpec) error {
	topic := "data.trades." + feed.Symbol

	var fills uint64
	executor := bus.Handler{
		ID: "executor",
		Fn: func(msg any) {
			order, ok := msg.(schema.SubmitOrder)
			if !ok {
				return
			}
			fills++
			fill := schema.OrderFilled{
				OrderID: order.OrderID,
				Symbol:  order.Symbol,
				Side:    order.Side,
				Price:   order.Price,
				Qty:     order.Qty,
				TsEvent: time.Now().UTC().UnixNano(),
				TsInit:  time.Now().UTC().UnixNano(),
			}
			if err := mbus.Publish("events.order.filled", fill); err != nil {
				log.Printf("publish fill failed: %v", err)
			}
		},
	}
	if err := mbus.Register("execution", executor); err != nil {
		return err
	}

	var orderID uint64
	strategy := bus.Handler{
		ID: "momentum-strategy",
		Fn: func(msg any) {
			tick, ok := msg.(schema.TradeTick)
			if !ok {
				return
			}
			orderID++
			order := schema.SubmitOrder{
				OrderID:     orderID,
				Symbol:      tick.Symbol,
				Side:        schema.OrderSideBuy,
				Type:        schema.OrderTypeLimit,
				TimeInForce: schema.TimeInForceGTC,
				Price:       tick.Price,
				Qty:         feed.Size,
			}
			if err := mbus.Send("execution", order); err != nil {
				log.Printf("send order failed: %v", err)
			}
		},
	}
	if err := mbus.Subscribe("data.trades.*", strategy, 10); err != nil {
		return err
	}

	recorder := bus.Handler{
		ID: "tick-recorder",
		Fn: func(msg any) {},
	}
	if err := mbus.Subscribe("data.*", recorder, 0); err != nil {
		return err
	}

	var ticker *time.Ticker
	if feed.Interval > 0 {
		ticker = time.NewTicker(feed.Interval)
		defer ticker.Stop()
	}

	for i := 0; i < feed.Count; i++ {
		now := time.Now().UTC().UnixNano()
		tick := schema.TradeTick{
			Symbol:        feed.Symbol,
			Price:         feed.Price + schema.Price(i),
			Size:          feed.Size,
			AggressorSide: schema.OrderSideBuy,
			TradeID:       uuid.NewString(),
			TsEvent:       now,
			TsInit:        now,
		}
		if err := mbus.Publish(topic, tick); err != nil {
			return err
		}

		if ticker != nil {
			select {
			case <-sys.Shutdown():
				log.Printf("shutdown requested, stopping feed")
				return nil
			case <-ticker.C:
			}
		}
	}
	log.Printf("published %d ticks, executor filled %d orders", feed.Count, fills)
	return nil
}

func loadConfig(path, traderID string) (ops.Loaded, error) {
	if path != "" {
		return ops.Load(path)
	}
	return ops.Resolve(ops.FileConfig{
		TraderID:   traderID,
		Serializer: "json",
		Feed: ops.FeedConfig{
			Symbol: "BTC-USDT",
			Count:  10,
		},
	})
}

type emptyLogger struct{}

func (emptyLogger) Infof(_ string, _ ...interface{})  {}
func (emptyLogger) Debugf(_ string, _ ...interface{}) {}
func (emptyLogger) Errorf(_ string, _ ...interface{}) {}
