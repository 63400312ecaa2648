package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath は CONFIG_PATH が未設定のときに読み込む設定ファイルです。
	DefaultPath = "assets/local.yaml"

	envConfigPath       = "CONFIG_PATH"
	envDatabasePassword = "DATABASE_PASSWORD"
	envKafkaBrokers     = "KAFKA_BROKERS"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Logging     LoggingConfig     `yaml:"logging"`
	Transaction TransactionConfig `yaml:"transaction"`
	Events      EventsConfig      `yaml:"events"`
	Outbox      OutboxConfig      `yaml:"outbox"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	Leave       LeaveConfig       `yaml:"leave"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port" validate:"min=1,max=65535"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns       int           `yaml:"max_open_conns" validate:"min=0"`
	MaxIdleConns       int           `yaml:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
	// SlowQueryThreshold を超えたクエリは Warn で記録されます。0 のとき記録しません。
	SlowQueryThreshold    time.Duration `yaml:"-"`
	SlowQueryThresholdRaw string        `yaml:"slow_query_threshold"`
}

// LoggingConfig は zap ロガーの設定です。
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	Mode  string `yaml:"mode" validate:"oneof=production development"`
}

// TransactionConfig は書き込みトランザクションの再試行とロック待ちの設定です。
type TransactionConfig struct {
	MaxAttempts    int           `yaml:"max_attempts" validate:"min=1,max=10"`
	LockTimeout    time.Duration `yaml:"-"`
	LockTimeoutRaw string        `yaml:"lock_timeout"`
}

// EventsConfig はプロセス内イベントバスの設定です。
type EventsConfig struct {
	Workers         int             `yaml:"workers" validate:"min=1"`
	QueueSize       int             `yaml:"queue_size" validate:"min=1"`
	MaxAttempts     int             `yaml:"max_attempts" validate:"min=1,max=10"`
	RetryBackoff    []time.Duration `yaml:"-"`
	RetryBackoffRaw []string        `yaml:"retry_backoff"`
}

// OutboxConfig は outbox リレーの設定です。
type OutboxConfig struct {
	Enabled         bool          `yaml:"enabled"`
	PollInterval    time.Duration `yaml:"-"`
	PollIntervalRaw string        `yaml:"poll_interval"`
	BatchSize       int           `yaml:"batch_size" validate:"min=1,max=1000"`
}

// KafkaConfig は outbox の送信先です。
type KafkaConfig struct {
	Brokers     []string `yaml:"brokers"`
	TopicPrefix string   `yaml:"topic_prefix"`
}

// SchedulerConfig は定期ジョブの確認間隔です。
type SchedulerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Interval    time.Duration `yaml:"-"`
	IntervalRaw string        `yaml:"interval"`
}

// LeaveConfig は休暇ルールの設定です。
type LeaveConfig struct {
	CancellationWindow    time.Duration `yaml:"-"`
	CancellationWindowRaw string        `yaml:"cancellation_window"`
}

// Path は CONFIG_PATH 環境変数、なければ DefaultPath を返します。
func Path() string {
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}
	return DefaultPath
}

// LoadDotEnv はカレントディレクトリに .env があれば環境変数へ読み込みます。既存の環境変数は上書きしません。
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config: load .env: %w", err)
	}
	return nil
}

// Load は指定されたパスから設定ファイルを読み込み、環境変数の上書きを適用します。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envDatabasePassword); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv(envKafkaBrokers); v != "" {
		var brokers []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		c.Kafka.Brokers = brokers
	}
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	if err := c.Database.validateAndNormalize(); err != nil {
		return err
	}

	c.applyDefaults()

	var err error
	if c.Transaction.LockTimeout, err = parseDurationAllowEmpty(c.Transaction.LockTimeoutRaw); err != nil {
		return fmt.Errorf("config: transaction.lock_timeout: %w", err)
	}
	if c.Events.RetryBackoff, err = parseDurations(c.Events.RetryBackoffRaw); err != nil {
		return fmt.Errorf("config: events.retry_backoff: %w", err)
	}
	if c.Outbox.PollInterval, err = parseDurationAllowEmpty(c.Outbox.PollIntervalRaw); err != nil {
		return fmt.Errorf("config: outbox.poll_interval: %w", err)
	}
	if c.Scheduler.Interval, err = parseDurationAllowEmpty(c.Scheduler.IntervalRaw); err != nil {
		return fmt.Errorf("config: scheduler.interval: %w", err)
	}
	if c.Leave.CancellationWindow, err = parseDurationAllowEmpty(c.Leave.CancellationWindowRaw); err != nil {
		return fmt.Errorf("config: leave.cancellation_window: %w", err)
	}
	if c.Leave.CancellationWindow < 0 {
		return fmt.Errorf("config: leave.cancellation_window must not be negative")
	}

	if c.Outbox.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must be set when outbox is enabled")
	}

	return validateStruct(c)
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Mode == "" {
		c.Logging.Mode = "production"
	}
	if c.Transaction.MaxAttempts == 0 {
		c.Transaction.MaxAttempts = 3
	}
	if c.Transaction.LockTimeoutRaw == "" {
		c.Transaction.LockTimeoutRaw = "5s"
	}
	if c.Events.Workers == 0 {
		c.Events.Workers = 4
	}
	if c.Events.QueueSize == 0 {
		c.Events.QueueSize = 256
	}
	if c.Events.MaxAttempts == 0 {
		c.Events.MaxAttempts = 3
	}
	if c.Events.RetryBackoffRaw == nil {
		c.Events.RetryBackoffRaw = []string{"1s", "2s", "5s"}
	}
	if c.Outbox.PollIntervalRaw == "" {
		c.Outbox.PollIntervalRaw = "3s"
	}
	if c.Outbox.BatchSize == 0 {
		c.Outbox.BatchSize = 50
	}
	if c.Kafka.TopicPrefix == "" {
		c.Kafka.TopicPrefix = "workforce"
	}
	if c.Scheduler.IntervalRaw == "" {
		c.Scheduler.IntervalRaw = "1h"
	}
	if c.Leave.CancellationWindowRaw == "" {
		c.Leave.CancellationWindowRaw = "24h"
	}
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	slow, err := parseDurationAllowEmpty(d.SlowQueryThresholdRaw)
	if err != nil {
		return fmt.Errorf("config: database.slow_query_threshold: %w", err)
	}
	d.SlowQueryThreshold = slow

	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

func parseDurations(raws []string) ([]time.Duration, error) {
	out := make([]time.Duration, 0, len(raws))
	for i, raw := range raws {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("[%d]: must not be negative", i)
		}
		out = append(out, d)
	}
	return out, nil
}

// DSN は pgx 用の接続文字列を返します。認証情報は URL エスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + strconv.Itoa(d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}
