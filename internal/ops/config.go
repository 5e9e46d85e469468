package ops

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/yanun0323/decimal"

	"main/internal/bus"
	"main/internal/schema"
	"main/internal/serde"
	"main/internal/sink"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	TraderID    string     `json:"traderId"`
	InstanceID  string     `json:"instanceId"`
	Name        string     `json:"name"`
	Serializer  string     `json:"serializer"`
	TypesFilter []string   `json:"typesFilter"`
	Sink        SinkConfig `json:"sink"`
	Feed        FeedConfig `json:"feed"`
}

// SinkConfig selects and configures the external sink.
type SinkConfig struct {
	Kind     string         `json:"kind"` // "none", "postgres", "file"
	Postgres PostgresConfig `json:"postgres"`
	File     FileSinkConfig `json:"file"`
}

// PostgresConfig describes the Postgres sink connection.
type PostgresConfig struct {
	Host       string            `json:"host"`
	Port       int               `json:"port"`
	User       string            `json:"user"`
	Password   string            `json:"password"`
	Database   string            `json:"database"`
	SSLMode    string            `json:"sslMode"`
	Params     map[string]string `json:"params"`
	ConnString string            `json:"connString"`
}

// FileSinkConfig describes the append-only file sink.
type FileSinkConfig struct {
	Dir            string `json:"dir"`
	FilePrefix     string `json:"filePrefix"`
	MaxSegmentSize int64  `json:"maxSegmentSize"`
}

// FeedConfig describes the synthetic trade feed the demo publishes.
// Price and size are decimal strings in the file.
type FeedConfig struct {
	Symbol        string           `json:"symbol"`
	PriceDecimals int              `json:"priceDecimals"`
	SizeDecimals  int              `json:"sizeDecimals"`
	Price         *decimal.Decimal `json:"price"`
	Size          *decimal.Decimal `json:"size"`
	Count         int              `json:"count"`
	IntervalMs    int              `json:"intervalMs"`
}

// FeedSpec is the resolved feed definition.
type FeedSpec struct {
	Symbol   string
	Price    schema.Price
	Size     schema.Quantity
	Count    int
	Interval time.Duration
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Bus  *bus.Config
	Feed FeedSpec
}

// Load reads a JSON config file and resolves the bus configuration,
// opening the configured sink.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}
	return Resolve(cfg)
}

// Resolve builds the runtime objects from a parsed config.
func Resolve(cfg FileConfig) (Loaded, error) {
	if cfg.TraderID == "" {
		return Loaded{}, fmt.Errorf("traderId is empty")
	}

	serializer, err := resolveSerializer(cfg.Serializer)
	if err != nil {
		return Loaded{}, err
	}
	filter, err := resolveTypesFilter(cfg.TypesFilter)
	if err != nil {
		return Loaded{}, err
	}
	database, err := resolveSink(cfg.Sink)
	if err != nil {
		return Loaded{}, err
	}
	feed, err := resolveFeed(cfg.Feed)
	if err != nil {
		if database != nil {
			_ = database.Close()
		}
		return Loaded{}, err
	}

	return Loaded{
		Bus: &bus.Config{
			TraderID:    cfg.TraderID,
			InstanceID:  cfg.InstanceID,
			Name:        cfg.Name,
			Serializer:  serializer,
			Database:    database,
			TypesFilter: filter,
		},
		Feed: feed,
	}, nil
}

func resolveSerializer(kind string) (serde.Serializer, error) {
	switch kind {
	case "", "json":
		return serde.JSON{}, nil
	case "binary":
		return serde.Binary{}, nil
	default:
		return nil, fmt.Errorf("unknown serializer: %q", kind)
	}
}

func resolveTypesFilter(names []string) ([]reflect.Type, error) {
	if len(names) == 0 {
		return nil, nil
	}
	filter := make([]reflect.Type, 0, len(names))
	for _, name := range names {
		t, ok := schema.TypeByName(name)
		if !ok {
			return nil, fmt.Errorf("typesFilter entry is not a publishable type: %q", name)
		}
		filter = append(filter, t)
	}
	return filter, nil
}

func resolveSink(cfg SinkConfig) (sink.Sink, error) {
	switch cfg.Kind {
	case "", "none":
		return nil, nil
	case "postgres":
		return sink.NewPostgres(sink.PostgresOption{
			Host:       cfg.Postgres.Host,
			Port:       cfg.Postgres.Port,
			User:       cfg.Postgres.User,
			Password:   cfg.Postgres.Password,
			Database:   cfg.Postgres.Database,
			SSLMode:    cfg.Postgres.SSLMode,
			Params:     cfg.Postgres.Params,
			ConnString: cfg.Postgres.ConnString,
		})
	case "file":
		return sink.NewFile(sink.FileConfig{
			Dir:            cfg.File.Dir,
			FilePrefix:     cfg.File.FilePrefix,
			MaxSegmentSize: cfg.File.MaxSegmentSize,
		})
	default:
		return nil, fmt.Errorf("unknown sink kind: %q", cfg.Kind)
	}
}

func resolveFeed(cfg FeedConfig) (FeedSpec, error) {
	if cfg.Symbol == "" {
		cfg.Symbol = "TEST-USD"
	}
	if cfg.PriceDecimals < 0 || cfg.SizeDecimals < 0 {
		return FeedSpec{}, fmt.Errorf("feed decimals must be >= 0")
	}
	if cfg.PriceDecimals == 0 {
		cfg.PriceDecimals = 8
	}
	if cfg.SizeDecimals == 0 {
		cfg.SizeDecimals = 8
	}
	if cfg.Count <= 0 {
		cfg.Count = 1
	}

	priceStr := "100"
	if cfg.Price != nil {
		priceStr = cfg.Price.String()
	}
	price, err := schema.ParsePrice(priceStr, cfg.PriceDecimals)
	if err != nil {
		return FeedSpec{}, fmt.Errorf("invalid feed price: %w", err)
	}

	sizeStr := "1"
	if cfg.Size != nil {
		sizeStr = cfg.Size.String()
	}
	size, err := schema.ParseQuantity(sizeStr, cfg.SizeDecimals)
	if err != nil {
		return FeedSpec{}, fmt.Errorf("invalid feed size: %w", err)
	}

	return FeedSpec{
		Symbol:   cfg.Symbol,
		Price:    price,
		Size:     size,
		Count:    cfg.Count,
		Interval: time.Duration(cfg.IntervalMs) * time.Millisecond,
	}, nil
}
