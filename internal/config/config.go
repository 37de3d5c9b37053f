package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/league"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

// JobConfig is the cron cadence of one scheduled job.
type JobConfig struct {
	Schedule string
	Enabled  bool
}

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	CORSAllowedOrigins         []string
	InternalJobToken           string
	LogLevel                   logging.Level
	DBURL                      string
	DBDisablePreparedBinary    bool
	DBMaxOpenConns             int
	DBMaxIdleConns             int
	DBBootstrapSeed            bool
	FootballAPIBaseURL         string
	FootballAPIKey             string
	FootballAPITimeout         time.Duration
	FootballAPIMaxRetries      int
	FootballCircuitEnabled     bool
	FootballCircuitFailures    int
	FootballCircuitOpenTimeout time.Duration
	FootballCircuitHalfOpenMax int
	FootballLeagues            []league.Target
	IngestBatchSize            int
	IngestLeagueDelay          time.Duration
	IngestMatchDelay           time.Duration
	IngestRetryMaxAttempts     int
	IngestRetryInitial         time.Duration
	IngestRetryMaxInterval     time.Duration
	SchedulerEnabled           bool
	SchedulerShutdownTimeout   time.Duration
	SchedulerTimezone          *time.Location
	Jobs                       map[string]JobConfig
	CleanupTokenStaleAfter     time.Duration
	CleanupJobRunRetention     time.Duration
	CleanupRawPayloadRetention time.Duration
	PushEnabled                bool
	PushBaseURL                string
	PushProjectID              string
	PushAccessToken            string
	PushTimeout                time.Duration
	PushFanoutBatchSize        int
	PushFanoutWorkers          int
	PushAndroidChannelID       string
	PushWebIcon                string
	FollowMaxTeams             int
	FollowMaxLeagues           int
	FollowMaxMatches           int
	ReferenceCacheTTL          time.Duration
	PlacesEnabled              bool
	PlacesBaseURL              string
	PlacesAPIKey               string
	PlacesTimeout              time.Duration
	PlacesCacheTTL             time.Duration
	EventBusEnabled            bool
	EventBusURL                string
	EventBusExchange           string
	EventBusQueue              string
	LiveFeedEnabled            bool
	SwaggerEnabled             bool
	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	UptraceSampleRatio         float64
	BetterStackEnabled         bool
	BetterStackEndpoint        string
	BetterStackToken           string
	BetterStackTimeout         time.Duration
	BetterStackMinLevel        logging.Level
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	PprofEnabled               bool
	PprofAddr                  string
}

// Job names mirror the scheduler registrations; env keys use JOB_<NAME>_CRON with
// dashes turned into underscores.
var jobDefaults = map[string]JobConfig{
	"daily-fixtures": {Schedule: "0 6 * * *", Enabled: true},
	"live-polling":   {Schedule: "*/2 * * * *", Enabled: true},
	"match-events":   {Schedule: "* * * * *", Enabled: true},
	"cleanup":        {Schedule: "0 3 * * *", Enabled: true},
	"health":         {Schedule: "*/5 * * * *", Enabled: true},
	"metrics":        {Schedule: "*/15 * * * *", Enabled: true},
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "matchday-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("HTTP_ADDR", getEnv("APP_HTTP_ADDR", ":8080")),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		InternalJobToken:   strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		LogLevel:           parseLogLevel(getEnv("LOG_LEVEL", getEnv("APP_LOG_LEVEL", "info"))),
		DBURL:              getEnv("DB_URL", ""),
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	if err := loadHTTP(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadDatabase(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadFootballAPI(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadIngestion(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadScheduler(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadPush(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadFollows(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadPlaces(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadEventBus(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadHTTP(cfg *Config) error {
	var err error
	if cfg.ReadTimeout, err = getEnvAsDuration("APP_READ_TIMEOUT", 10*time.Second); err != nil {
		return err
	}
	if cfg.WriteTimeout, err = getEnvAsDuration("APP_WRITE_TIMEOUT", 15*time.Second); err != nil {
		return err
	}
	if cfg.LiveFeedEnabled, err = getEnvAsBool("LIVE_FEED_ENABLED", true); err != nil {
		return err
	}
	if cfg.SwaggerEnabled, err = getEnvAsBool("SWAGGER_ENABLED", cfg.AppEnv != EnvProd); err != nil {
		return err
	}
	return nil
}

func loadDatabase(cfg *Config) error {
	var err error
	if cfg.DBDisablePreparedBinary, err = getEnvAsBool("DB_DISABLE_PREPARED_BINARY_RESULT", true); err != nil {
		return err
	}
	if cfg.DBMaxOpenConns, err = getEnvAsInt("DB_MAX_OPEN_CONNS", 20); err != nil {
		return fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if cfg.DBMaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be > 0")
	}
	if cfg.DBMaxIdleConns, err = getEnvAsInt("DB_MAX_IDLE_CONNS", 10); err != nil {
		return fmt.Errorf("parse DB_MAX_IDLE_CONNS: %w", err)
	}
	if cfg.DBMaxIdleConns < 0 {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must be >= 0")
	}
	if cfg.DBBootstrapSeed, err = getEnvAsBool("DB_BOOTSTRAP_SEED", cfg.AppEnv == EnvDev); err != nil {
		return err
	}
	return nil
}

func loadFootballAPI(cfg *Config) error {
	var err error
	cfg.FootballAPIBaseURL = strings.TrimSpace(getEnv("FOOTBALL_API_BASE_URL", "https://v3.football.api-sports.io"))
	cfg.FootballAPIKey = strings.TrimSpace(getEnv("FOOTBALL_API_KEY", ""))

	if cfg.FootballAPITimeout, err = getEnvAsDuration("FOOTBALL_API_TIMEOUT", 20*time.Second); err != nil {
		return err
	}
	if cfg.FootballAPITimeout <= 0 {
		return fmt.Errorf("FOOTBALL_API_TIMEOUT must be > 0")
	}
	if cfg.FootballAPIMaxRetries, err = getEnvAsInt("FOOTBALL_API_MAX_RETRIES", 2); err != nil {
		return fmt.Errorf("parse FOOTBALL_API_MAX_RETRIES: %w", err)
	}
	if cfg.FootballAPIMaxRetries < 0 {
		return fmt.Errorf("FOOTBALL_API_MAX_RETRIES must be >= 0")
	}
	if cfg.FootballCircuitEnabled, err = getEnvAsBool("FOOTBALL_API_CIRCUIT_ENABLED", true); err != nil {
		return err
	}
	if cfg.FootballCircuitFailures, err = getEnvAsInt("FOOTBALL_API_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return fmt.Errorf("parse FOOTBALL_API_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.FootballCircuitFailures < 1 {
		return fmt.Errorf("FOOTBALL_API_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if cfg.FootballCircuitOpenTimeout, err = getEnvAsDuration("FOOTBALL_API_CIRCUIT_OPEN_TIMEOUT", 30*time.Second); err != nil {
		return err
	}
	if cfg.FootballCircuitOpenTimeout <= 0 {
		return fmt.Errorf("FOOTBALL_API_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	if cfg.FootballCircuitHalfOpenMax, err = getEnvAsInt("FOOTBALL_API_CIRCUIT_HALF_OPEN_MAX_REQ", 2); err != nil {
		return fmt.Errorf("parse FOOTBALL_API_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.FootballCircuitHalfOpenMax < 1 {
		return fmt.Errorf("FOOTBALL_API_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	if cfg.FootballLeagues, err = parseLeagueTargets(getEnv("FOOTBALL_LEAGUES", "")); err != nil {
		return fmt.Errorf("parse FOOTBALL_LEAGUES: %w", err)
	}
	return nil
}

func loadIngestion(cfg *Config) error {
	var err error
	if cfg.IngestBatchSize, err = getEnvAsInt("INGEST_BATCH_SIZE", 10); err != nil {
		return fmt.Errorf("parse INGEST_BATCH_SIZE: %w", err)
	}
	if cfg.IngestBatchSize <= 0 {
		return fmt.Errorf("INGEST_BATCH_SIZE must be > 0")
	}
	if cfg.IngestLeagueDelay, err = getEnvAsDuration("INGEST_LEAGUE_DELAY", time.Second); err != nil {
		return err
	}
	if cfg.IngestMatchDelay, err = getEnvAsDuration("INGEST_MATCH_DELAY", 500*time.Millisecond); err != nil {
		return err
	}
	if cfg.IngestLeagueDelay < 0 || cfg.IngestMatchDelay < 0 {
		return fmt.Errorf("INGEST_LEAGUE_DELAY and INGEST_MATCH_DELAY must be >= 0")
	}
	if cfg.IngestRetryMaxAttempts, err = getEnvAsInt("INGEST_RETRY_MAX_ATTEMPTS", 3); err != nil {
		return fmt.Errorf("parse INGEST_RETRY_MAX_ATTEMPTS: %w", err)
	}
	if cfg.IngestRetryMaxAttempts <= 0 {
		return fmt.Errorf("INGEST_RETRY_MAX_ATTEMPTS must be > 0")
	}
	if cfg.IngestRetryInitial, err = getEnvAsDuration("INGEST_RETRY_INITIAL_INTERVAL", 500*time.Millisecond); err != nil {
		return err
	}
	if cfg.IngestRetryMaxInterval, err = getEnvAsDuration("INGEST_RETRY_MAX_INTERVAL", 10*time.Second); err != nil {
		return err
	}
	if cfg.IngestRetryInitial <= 0 || cfg.IngestRetryMaxInterval <= 0 {
		return fmt.Errorf("INGEST_RETRY_INITIAL_INTERVAL and INGEST_RETRY_MAX_INTERVAL must be > 0")
	}
	return nil
}

func loadScheduler(cfg *Config) error {
	var err error
	if cfg.SchedulerEnabled, err = getEnvAsBool("SCHEDULER_ENABLED", true); err != nil {
		return err
	}
	if cfg.SchedulerShutdownTimeout, err = getEnvAsDuration("SCHEDULER_SHUTDOWN_TIMEOUT", 30*time.Second); err != nil {
		return err
	}
	if cfg.SchedulerShutdownTimeout <= 0 {
		return fmt.Errorf("SCHEDULER_SHUTDOWN_TIMEOUT must be > 0")
	}

	tz := strings.TrimSpace(getEnv("SCHEDULER_TIMEZONE", "UTC"))
	if cfg.SchedulerTimezone, err = time.LoadLocation(tz); err != nil {
		return fmt.Errorf("parse SCHEDULER_TIMEZONE: %w", err)
	}

	cfg.Jobs = make(map[string]JobConfig, len(jobDefaults))
	for name, def := range jobDefaults {
		key := jobEnvKey(name)
		job := JobConfig{Schedule: strings.TrimSpace(getEnv(key+"_CRON", def.Schedule))}
		if job.Enabled, err = getEnvAsBool(key+"_ENABLED", def.Enabled); err != nil {
			return err
		}
		cfg.Jobs[name] = job
	}

	if cfg.CleanupTokenStaleAfter, err = getEnvAsDuration("CLEANUP_TOKEN_STALE_AFTER", 60*24*time.Hour); err != nil {
		return err
	}
	if cfg.CleanupJobRunRetention, err = getEnvAsDuration("CLEANUP_JOB_RUN_RETENTION", 14*24*time.Hour); err != nil {
		return err
	}
	if cfg.CleanupRawPayloadRetention, err = getEnvAsDuration("CLEANUP_RAW_PAYLOAD_RETENTION", 30*24*time.Hour); err != nil {
		return err
	}
	if cfg.CleanupTokenStaleAfter <= 0 || cfg.CleanupJobRunRetention <= 0 || cfg.CleanupRawPayloadRetention <= 0 {
		return fmt.Errorf("CLEANUP_* durations must be > 0")
	}
	return nil
}

func loadPush(cfg *Config) error {
	var err error
	if cfg.PushEnabled, err = getEnvAsBool("PUSH_ENABLED", false); err != nil {
		return err
	}
	cfg.PushBaseURL = strings.TrimSpace(getEnv("PUSH_BASE_URL", "https://fcm.googleapis.com"))
	cfg.PushProjectID = strings.TrimSpace(getEnv("PUSH_PROJECT_ID", ""))
	cfg.PushAccessToken = strings.TrimSpace(getEnv("PUSH_ACCESS_TOKEN", ""))
	cfg.PushAndroidChannelID = strings.TrimSpace(getEnv("PUSH_ANDROID_CHANNEL_ID", "match_updates"))
	cfg.PushWebIcon = strings.TrimSpace(getEnv("PUSH_WEB_ICON", ""))
	if cfg.PushEnabled && cfg.PushProjectID == "" {
		return fmt.Errorf("PUSH_PROJECT_ID is required when PUSH_ENABLED=true")
	}

	if cfg.PushTimeout, err = getEnvAsDuration("PUSH_TIMEOUT", 10*time.Second); err != nil {
		return err
	}
	if cfg.PushTimeout <= 0 {
		return fmt.Errorf("PUSH_TIMEOUT must be > 0")
	}
	if cfg.PushFanoutBatchSize, err = getEnvAsInt("PUSH_FANOUT_BATCH_SIZE", 500); err != nil {
		return fmt.Errorf("parse PUSH_FANOUT_BATCH_SIZE: %w", err)
	}
	if cfg.PushFanoutBatchSize <= 0 {
		return fmt.Errorf("PUSH_FANOUT_BATCH_SIZE must be > 0")
	}
	if cfg.PushFanoutWorkers, err = getEnvAsInt("PUSH_FANOUT_WORKERS", 16); err != nil {
		return fmt.Errorf("parse PUSH_FANOUT_WORKERS: %w", err)
	}
	if cfg.PushFanoutWorkers <= 0 {
		return fmt.Errorf("PUSH_FANOUT_WORKERS must be > 0")
	}
	return nil
}

func loadFollows(cfg *Config) error {
	limits := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{key: "FOLLOW_MAX_TEAMS", fallback: 50, dst: &cfg.FollowMaxTeams},
		{key: "FOLLOW_MAX_LEAGUES", fallback: 30, dst: &cfg.FollowMaxLeagues},
		{key: "FOLLOW_MAX_MATCHES", fallback: 100, dst: &cfg.FollowMaxMatches},
	}
	for _, limit := range limits {
		value, err := getEnvAsInt(limit.key, limit.fallback)
		if err != nil {
			return fmt.Errorf("parse %s: %w", limit.key, err)
		}
		if value <= 0 {
			return fmt.Errorf("%s must be > 0", limit.key)
		}
		*limit.dst = value
	}

	ttl, err := getEnvAsDuration("REFERENCE_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return err
	}
	cfg.ReferenceCacheTTL = ttl
	return nil
}

func loadPlaces(cfg *Config) error {
	var err error
	if cfg.PlacesEnabled, err = getEnvAsBool("PLACES_ENABLED", false); err != nil {
		return err
	}
	cfg.PlacesBaseURL = strings.TrimSpace(getEnv("PLACES_BASE_URL", "https://maps.googleapis.com"))
	cfg.PlacesAPIKey = strings.TrimSpace(getEnv("PLACES_API_KEY", ""))
	if cfg.PlacesEnabled && cfg.PlacesAPIKey == "" {
		return fmt.Errorf("PLACES_API_KEY is required when PLACES_ENABLED=true")
	}
	if cfg.PlacesTimeout, err = getEnvAsDuration("PLACES_TIMEOUT", 5*time.Second); err != nil {
		return err
	}
	if cfg.PlacesCacheTTL, err = getEnvAsDuration("PLACES_CACHE_TTL", 24*time.Hour); err != nil {
		return err
	}
	if cfg.PlacesTimeout <= 0 || cfg.PlacesCacheTTL <= 0 {
		return fmt.Errorf("PLACES_TIMEOUT and PLACES_CACHE_TTL must be > 0")
	}
	return nil
}

func loadEventBus(cfg *Config) error {
	var err error
	if cfg.EventBusEnabled, err = getEnvAsBool("EVENTBUS_ENABLED", false); err != nil {
		return err
	}
	cfg.EventBusURL = strings.TrimSpace(getEnv("EVENTBUS_AMQP_URL", ""))
	cfg.EventBusExchange = strings.TrimSpace(getEnv("EVENTBUS_EXCHANGE", "matchday.events"))
	cfg.EventBusQueue = strings.TrimSpace(getEnv("EVENTBUS_QUEUE", "matchday.notifications"))
	if cfg.EventBusEnabled && cfg.EventBusURL == "" {
		return fmt.Errorf("EVENTBUS_AMQP_URL is required when EVENTBUS_ENABLED=true")
	}
	return nil
}

func loadObservability(cfg *Config) error {
	var err error
	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false); err != nil {
		return err
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if cfg.UptraceLogsEnabled, err = getEnvAsBool("UPTRACE_LOGS_ENABLED", true); err != nil {
		return err
	}
	if cfg.UptraceSampleRatio, err = getEnvAsFloat("UPTRACE_TRACE_SAMPLE_RATIO", 1); err != nil {
		return err
	}
	if cfg.UptraceSampleRatio <= 0 || cfg.UptraceSampleRatio > 1 {
		return fmt.Errorf("UPTRACE_TRACE_SAMPLE_RATIO must be in (0, 1]")
	}

	if cfg.BetterStackEnabled, err = getEnvAsBool("BETTERSTACK_ENABLED", false); err != nil {
		return err
	}
	cfg.BetterStackEndpoint = strings.TrimSpace(getEnv("BETTERSTACK_ENDPOINT", ""))
	if cfg.BetterStackEnabled && cfg.BetterStackEndpoint == "" {
		return fmt.Errorf("BETTERSTACK_ENDPOINT is required when BETTERSTACK_ENABLED=true")
	}
	cfg.BetterStackToken = strings.TrimSpace(getEnv("BETTERSTACK_TOKEN", ""))
	if cfg.BetterStackTimeout, err = getEnvAsDuration("BETTERSTACK_TIMEOUT", 3*time.Second); err != nil {
		return err
	}
	if cfg.BetterStackTimeout <= 0 {
		return fmt.Errorf("BETTERSTACK_TIMEOUT must be > 0")
	}
	cfg.BetterStackMinLevel = parseLogLevel(getEnv("BETTERSTACK_MIN_LEVEL", "error"))

	if cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", false); err != nil {
		return err
	}
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false); err != nil {
		return err
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	if cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", 15*time.Second); err != nil {
		return err
	}
	if cfg.PyroscopeUploadRate <= 0 {
		return fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}
	return nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func jobEnvKey(name string) string {
	return "JOB_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

// parseLeagueTargets reads "39:2025,274:2025" into provider league id and season pairs.
func parseLeagueTargets(raw string) ([]league.Target, error) {
	out := make([]league.Target, 0)
	for _, item := range splitCSV(raw) {
		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid league item %q, expected league_id:season", item)
		}

		refID, err := strconv.ParseInt(strings.TrimSpace(segments[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid league id in item %q: %w", item, err)
		}
		season, err := strconv.Atoi(strings.TrimSpace(segments[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid season in item %q: %w", item, err)
		}
		if refID <= 0 || season <= 0 {
			return nil, fmt.Errorf("league id and season must be > 0 in item %q", item)
		}

		out = append(out, league.Target{LeagueRefID: refID, Season: season})
	}
	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
