package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sharicrepas/sharibot/internal/analytics"
	"github.com/sharicrepas/sharibot/internal/api"
	"github.com/sharicrepas/sharibot/internal/bot"
	"github.com/sharicrepas/sharibot/internal/lockfile"
	"github.com/sharicrepas/sharibot/internal/messaging"
	"github.com/sharicrepas/sharibot/internal/scheduler"
	"github.com/sharicrepas/sharibot/internal/store"
	"github.com/sharicrepas/sharibot/internal/twiliowhatsapp"
	"github.com/sharicrepas/sharibot/internal/util"
	"github.com/sharicrepas/sharibot/internal/whatsapp"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for Sharibot state data
	DefaultStateDir = "/var/lib/sharibot"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "sharibot.db"
	// BackendWhatsmeow selects the direct WhatsApp Web transport
	BackendWhatsmeow = "whatsmeow"
	// BackendTwilio selects the Twilio WhatsApp Business API transport
	BackendTwilio = "twilio"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	slog.Info("Bootstrapping Sharibot", "backend", *flags.backend)
	slog.Debug("Final configuration", "state_dir", *flags.stateDir, "dsn_set", *flags.dbDSN != "", "api_addr", *flags.apiAddr)
	if err := run(flags); err != nil {
		slog.Error("Sharibot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Sharibot exited successfully")
}

// Config holds environment configuration
type Config struct {
	WhatsAppDSN string
	DatabaseURL string
	StateDir    string
	APIAddr     string
	Backend     string
}

// Flags holds command line flag values
type Flags struct {
	qrOutput *string
	numeric  *bool
	stateDir *string
	dbDSN    *string
	apiAddr  *string
	backend  *string
}

// initializeLogger sets up structured logging; LOG_DEBUG=1 enables debug output
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("LOG_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		WhatsAppDSN: os.Getenv("WHATSAPP_DB_DSN"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StateDir:    os.Getenv("SHARIBOT_STATE_DIR"),
		APIAddr:     os.Getenv("API_ADDR"),
		Backend:     os.Getenv("MESSAGING_BACKEND"),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No SHARIBOT_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.Backend == "" {
		config.Backend = BackendWhatsmeow
	}

	// Default to WhatsApp DSN if specific not set
	if config.WhatsAppDSN == "" {
		config.WhatsAppDSN = config.DatabaseURL
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.WhatsAppDSN == "" {
		config.WhatsAppDSN = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.WhatsAppDSN)
	}

	slog.Debug("environment variables loaded",
		"WHATSAPP_DB_DSN_SET", config.WhatsAppDSN != "",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"SHARIBOT_STATE_DIR", config.StateDir,
		"API_ADDR", config.APIAddr,
		"MESSAGING_BACKEND", config.Backend)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		qrOutput: flag.String("qr-output", "", "path to write login QR code"),
		numeric:  flag.Bool("numeric-code", false, "use numeric login code instead of QR code"),
		stateDir: flag.String("state-dir", config.StateDir, "state directory for Sharibot data (overrides $SHARIBOT_STATE_DIR)"),
		dbDSN:    flag.String("db-dsn", config.WhatsAppDSN, "database DSN for WhatsApp and the order store (overrides $WHATSAPP_DB_DSN or $DATABASE_URL)"),
		apiAddr:  flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		backend:  flag.String("backend", config.Backend, "messaging backend, whatsmeow or twilio (overrides $MESSAGING_BACKEND)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"qrOutput", *flags.qrOutput,
		"numeric", *flags.numeric,
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"apiAddr", *flags.apiAddr,
		"backend", *flags.backend)

	// Follow a changed state directory when the DSN was never set explicitly
	if *flags.dbDSN == config.WhatsAppDSN && config.WhatsAppDSN == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if !strings.Contains(*flags.dbDSN, "postgres://") && !strings.Contains(*flags.dbDSN, "host=") {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
	}
	return nil
}

// buildWhatsAppOptions constructs WhatsApp client configuration options
func buildWhatsAppOptions(flags Flags) []whatsapp.Option {
	var waOpts []whatsapp.Option
	if *flags.qrOutput != "" {
		waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
	}
	if *flags.numeric {
		waOpts = append(waOpts, whatsapp.WithNumericCode())
	}
	if *flags.dbDSN != "" {
		waOpts = append(waOpts, whatsapp.WithDBDSN(*flags.dbDSN))
	}
	return waOpts
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		if store.DetectDSNType(*flags.dbDSN) == "postgres" {
			slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
			storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
		} else {
			slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", *flags.dbDSN)
			storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
		}
	} else {
		slog.Debug("No database DSN provided, will use in-memory store")
	}
	return storeOpts
}

// buildMessagingService constructs the transport selected by the backend flag.
func buildMessagingService(flags Flags) (messaging.Service, error) {
	switch *flags.backend {
	case BackendTwilio:
		client, err := twiliowhatsapp.NewClient()
		if err != nil {
			return nil, err
		}
		return messaging.NewTwilioService(client), nil
	default:
		client, err := whatsapp.NewClient(buildWhatsAppOptions(flags)...)
		if err != nil {
			return nil, err
		}
		return messaging.NewWhatsAppService(client), nil
	}
}

// run wires the store, transport, analytics, bot engine, and API server and
// blocks until a shutdown signal arrives.
func run(flags Flags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lock, err := lockfile.Acquire(*flags.stateDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	st, err := store.NewStore(buildStoreOptions(flags)...)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Warn("Failed to close store", "error", err)
		}
	}()

	msgService, err := buildMessagingService(flags)
	if err != nil {
		return err
	}
	if err := msgService.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := msgService.Stop(); err != nil {
			slog.Warn("Failed to stop messaging service", "error", err)
		}
	}()

	analyzer := analytics.NewAnalyzer(analytics.WithStore(st))

	sched := scheduler.NewScheduler()
	defer sched.Stop()
	if err := sched.ScheduleClosingReport(analyzer); err != nil {
		return err
	}

	engine := bot.NewEngine(
		bot.WithStore(st),
		bot.WithMessagingService(msgService),
		bot.WithAnalyzer(analyzer),
	)
	go func() {
		if err := engine.Run(ctx); err != nil {
			slog.Error("Bot engine stopped", "error", err)
			stop()
		}
	}()

	apiOpts := []api.Option{
		api.WithStore(st),
		api.WithMessagingService(msgService),
		api.WithAnalyzer(analyzer),
	}
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	return api.NewServer(apiOpts...).Run(ctx)
}
