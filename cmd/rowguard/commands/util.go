package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/marmos91/rowguard/internal/cli/output"
	"github.com/marmos91/rowguard/internal/cli/prompt"
	"github.com/marmos91/rowguard/internal/logger"
	"github.com/marmos91/rowguard/pkg/config"
	"github.com/marmos91/rowguard/pkg/engine"
	"github.com/marmos91/rowguard/pkg/store"
)

// EnvPassword supplies the password of --as for non-interactive use.
const EnvPassword = "ROWGUARD_PASSWORD"

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// openEngine loads the configuration and opens the engine over the
// configured database. The returned close function releases the store.
func openEngine() (*config.Config, *engine.Engine, func(), error) {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return nil, nil, nil, err
	}
	if err := InitLogger(cfg); err != nil {
		return nil, nil, nil, err
	}

	s, err := store.New(&cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	eng := engine.New(s, engine.Config{Audit: cfg.Engine.Audit, BcryptCost: cfg.Engine.BcryptCost})
	return cfg, eng, func() { _ = s.Close() }, nil
}

// loginAs opens a connection bound to username. The password comes from
// ROWGUARD_PASSWORD or an interactive prompt.
func loginAs(ctx context.Context, eng *engine.Engine, username string) (*engine.Conn, error) {
	password, err := prompt.PasswordFromEnv(EnvPassword, fmt.Sprintf("Password for %s", username))
	if err != nil {
		return nil, err
	}
	conn := eng.Connect()
	if _, err := conn.Login(ctx, username, password); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func newPrinter(w io.Writer) (*output.Printer, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(w, format), nil
}
