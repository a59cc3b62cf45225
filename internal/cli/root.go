package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/quad400/kaydee-boutique/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootOptions holds flags shared by every command.
type RootOptions struct {
	LogLevel string
	// Out receives log output; stdout when nil.
	Out io.Writer
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "kaydee",
		Short: "Kaydee Boutique catalog and cart service",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.LogLevel == "" {
				return nil
			}
			if _, err := logrus.ParseLevel(opts.LogLevel); err != nil {
				return WrapExitError(ExitCommandError, "invalid --log-level", err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level override (debug|info|warn|error)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	return cmd
}

func newLogger(out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stdout
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger
}

// setup builds the logger and loads configuration. The flag wins over
// LOG_LEVEL.
func setup(opts *RootOptions) (*config.Config, *logrus.Logger, error) {
	logger := newLogger(opts.Out)
	cfg, err := config.LoadConfig(logger)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	level := cfg.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Unknown log level %q, using info", level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	if logLevel < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	return cfg, logger, nil
}

func describe(cfg *config.Config) string {
	return fmt.Sprintf("storage=%s http=%s grpc=%s", cfg.StorageDriver, cfg.HTTPPort, cfg.GrpcPort)
}
