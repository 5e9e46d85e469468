package sink

import (
	"fmt"
	"net/url"
	"time"

	"github.com/yanun0323/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	defaultPostgresHost    = "localhost"
	defaultPostgresPort    = 5432
	defaultPostgresSSLMode = "disable"
)

// PostgresOption defines connection options for the Postgres sink.
type PostgresOption struct {
	Host       string
	Port       int
	User       string
	Password   string
	Database   string
	SSLMode    string
	Params     map[string]string
	ConnString string
	Config     *gorm.Config
}

// PublishedMessage is one externally published payload row.
type PublishedMessage struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Topic     string `gorm:"index"`
	Payload   []byte
	CreatedAt time.Time
}

// Postgres persists published payloads into a Postgres table.
type Postgres struct {
	opt PostgresOption
	db  *gorm.DB
}

// NewPostgres opens the connection pool and migrates the message table.
func NewPostgres(option PostgresOption) (*Postgres, error) {
	connString, err := option.dsn()
	if err != nil {
		return nil, err
	}

	config := option.Config
	if config == nil {
		config = &gorm.Config{}
	}

	db, err := gorm.Open(postgres.Open(connString), config)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres sink")
	}
	if err := db.AutoMigrate(&PublishedMessage{}); err != nil {
		return nil, errors.Wrap(err, "migrate published messages")
	}

	return &Postgres{opt: option, db: db}, nil
}

// Publish inserts one payload row.
func (s *Postgres) Publish(topic string, payload []byte) error {
	row := PublishedMessage{Topic: topic, Payload: payload}
	if err := s.db.Create(&row).Error; err != nil {
		return errors.Wrap(err, "insert published message").With("topic", topic)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Postgres) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (opt PostgresOption) dsn() (string, error) {
	if opt.ConnString != "" {
		return opt.ConnString, nil
	}
	if opt.Database == "" {
		return "", fmt.Errorf("postgres database is empty")
	}

	host := opt.Host
	if host == "" {
		host = defaultPostgresHost
	}

	port := opt.Port
	if port == 0 {
		port = defaultPostgresPort
	}

	sslMode := opt.SSLMode
	if sslMode == "" {
		sslMode = defaultPostgresSSLMode
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", host, port),
		Path:   "/" + opt.Database,
	}

	if opt.User != "" {
		if opt.Password != "" {
			u.User = url.UserPassword(opt.User, opt.Password)
		} else {
			u.User = url.User(opt.User)
		}
	}

	query := url.Values{}
	query.Set("sslmode", sslMode)
	for key, value := range opt.Params {
		if key == "" {
			continue
		}
		query.Set(key, value)
	}
	u.RawQuery = query.Encode()

	return u.String(), nil
}
