package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	JWTSecret       string
	JWTIssuer       string
	TokenTTL        time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string

	// StrictTransitions enables the linear order lifecycle; permissive otherwise.
	StrictTransitions bool
	DeliveryFee       decimal.Decimal

	WSSendBuffer   int
	WSPingInterval time.Duration
	WSWriteTimeout time.Duration
	WSCompression  bool

	// AMQPURL enables mirroring of realtime events to RabbitMQ when set.
	AMQPURL         string
	AMQPExchange    string
	MirrorWorkers   int
	MirrorQueueSize int
}

const (
	defaultRunAddress      = ":8080"
	defaultJWTSecret       = "change-me-in-production"
	defaultJWTIssuer       = "foodrush"
	defaultTokenTTL        = 24 * time.Hour
	defaultShutdownTimeout = 10 * time.Second
	defaultLogLevel        = "info"
	defaultDeliveryFee     = "30"
	defaultWSSendBuffer    = 64
	defaultWSPingInterval  = 25 * time.Second
	defaultWSWriteTimeout  = 10 * time.Second
	defaultAMQPExchange    = "order_events"
	defaultMirrorWorkers   = 2
	defaultMirrorQueueSize = 256
)

// Load parses configuration from an optional .env file, flags and environment variables.
func Load() (*Config, error) {
	// a missing .env is fine; real deployments inject the environment directly
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:        getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:       getString(lookup, "DATABASE_URI", ""),
		JWTSecret:         getString(lookup, "JWT_SECRET", defaultJWTSecret),
		JWTIssuer:         getString(lookup, "JWT_ISSUER", defaultJWTIssuer),
		TokenTTL:          getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LogLevel:          getString(lookup, "LOG_LEVEL", defaultLogLevel),
		StrictTransitions: getBool(lookup, "STRICT_TRANSITIONS", false),
		WSSendBuffer:      getInt(lookup, "WS_SEND_BUFFER", defaultWSSendBuffer),
		WSPingInterval:    getDuration(lookup, "WS_PING_INTERVAL", defaultWSPingInterval),
		WSWriteTimeout:    getDuration(lookup, "WS_WRITE_TIMEOUT", defaultWSWriteTimeout),
		WSCompression:     getBool(lookup, "WS_COMPRESSION", false),
		AMQPURL:           getString(lookup, "AMQP_URL", ""),
		AMQPExchange:      getString(lookup, "AMQP_EXCHANGE", defaultAMQPExchange),
		MirrorWorkers:     getInt(lookup, "MIRROR_WORKERS", defaultMirrorWorkers),
		MirrorQueueSize:   getInt(lookup, "MIRROR_QUEUE_SIZE", defaultMirrorQueueSize),
	}

	fs := flag.NewFlagSet("foodrush", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		tokenTTLStr        = cfg.TokenTTL.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		pingIntervalStr    = cfg.WSPingInterval.String()
		deliveryFeeStr     = getString(lookup, "DELIVERY_FEE", defaultDeliveryFee)
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.JWTIssuer, "jwt-issuer", cfg.JWTIssuer, "Issuer claim of auth tokens")
	fs.StringVar(&tokenTTLStr, "token-ttl", tokenTTLStr, "Lifetime of issued auth tokens")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	fs.BoolVar(&cfg.StrictTransitions, "strict-transitions", cfg.StrictTransitions, "Only allow the next lifecycle status or cancellation")
	fs.StringVar(&deliveryFeeStr, "delivery-fee", deliveryFeeStr, "Flat delivery fee added at checkout")
	fs.IntVar(&cfg.WSSendBuffer, "ws-send-buffer", cfg.WSSendBuffer, "Outbound frames buffered per websocket session")
	fs.StringVar(&pingIntervalStr, "ws-ping-interval", pingIntervalStr, "Interval between websocket pings")
	fs.BoolVar(&cfg.WSCompression, "ws-compression", cfg.WSCompression, "Negotiate per-message websocket compression")
	fs.StringVar(&cfg.AMQPURL, "amqp-url", cfg.AMQPURL, "RabbitMQ URL for event mirroring")
	fs.StringVar(&cfg.AMQPExchange, "amqp-exchange", cfg.AMQPExchange, "RabbitMQ exchange for mirrored events")
	fs.IntVar(&cfg.MirrorWorkers, "mirror-workers", cfg.MirrorWorkers, "Number of event mirror workers")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.TokenTTL, err = time.ParseDuration(tokenTTLStr); err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.WSPingInterval, err = time.ParseDuration(pingIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid ws ping interval: %w", err)
	}

	if cfg.DeliveryFee, err = decimal.NewFromString(deliveryFeeStr); err != nil {
		return nil, fmt.Errorf("invalid delivery fee: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.WSSendBuffer <= 0 {
		cfg.WSSendBuffer = defaultWSSendBuffer
	}

	if cfg.WSPingInterval <= 0 {
		cfg.WSPingInterval = defaultWSPingInterval
	}

	if cfg.WSWriteTimeout <= 0 {
		cfg.WSWriteTimeout = defaultWSWriteTimeout
	}

	if cfg.MirrorWorkers <= 0 {
		cfg.MirrorWorkers = defaultMirrorWorkers
	}

	if cfg.MirrorQueueSize <= 0 {
		cfg.MirrorQueueSize = defaultMirrorQueueSize
	}

	if cfg.AMQPExchange == "" {
		cfg.AMQPExchange = defaultAMQPExchange
	}

	if cfg.DeliveryFee.IsNegative() {
		return nil, fmt.Errorf("delivery fee must not be negative")
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
