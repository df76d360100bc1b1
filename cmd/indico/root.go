package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/joseph-ayodele/indico-client/client"
	"github.com/joseph-ayodele/indico-client/internal/common"
	"github.com/joseph-ayodele/indico-client/internal/journal"
)

// app is the state shared by every subcommand, built before any of them runs.
type app struct {
	cfg    *common.Config
	logger *slog.Logger
	client *client.Client
	out    io.Writer

	shutdown func(context.Context) error
}

func newRootCmd() *cobra.Command {
	return newRootCmdFor(&app{out: os.Stdout})
}

func newRootCmdFor(a *app) *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:           "indico",
		Short:         "Submit documents to Indico workflows and track the results",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, v, cfgFile)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.shutdown != nil {
				return a.shutdown(cmd.Context())
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.indico.yaml)")
	pf.String("host", "", "platform host (env INDICO_HOST)")
	pf.String("protocol", "", "http or https (env INDICO_PROTOCOL)")
	pf.String("api-token-path", "", "file holding the API token (env INDICO_API_TOKEN_PATH)")
	pf.String("journal", "", "journal URL, sqlite://path or postgres://... (env JOURNAL_URL)")
	pf.Bool("verbose", false, "debug logging")
	pf.Bool("trace", false, "print OpenTelemetry spans to stderr")
	for key, flag := range map[string]string{
		"host":           "host",
		"protocol":       "protocol",
		"api_token_path": "api-token-path",
		"journal":        "journal",
		"verbose":        "verbose",
		"trace":          "trace",
	} {
		cobra.CheckErr(v.BindPFlag(key, pf.Lookup(flag)))
	}
	// Env beats the config file, flags beat env.
	for key, env := range map[string]string{
		"host":           "INDICO_HOST",
		"protocol":       "INDICO_PROTOCOL",
		"api_token_path": "INDICO_API_TOKEN_PATH",
		"journal":        "JOURNAL_URL",
	} {
		cobra.CheckErr(v.BindEnv(key, env))
	}

	root.AddCommand(
		newSubmitCmd(a),
		newExtractCmd(a),
		newJobCmd(a),
		newSubmissionCmd(a),
		newJournalCmd(a),
	)
	return root
}

// init loads .env, then resolves settings through viper: flags beat env, env
// beats the config file.
func (a *app) init(cmd *cobra.Command, v *viper.Viper, cfgFile string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".indico")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	level := slog.LevelInfo
	if v.GetBool("verbose") {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	a.cfg = common.LoadConfig()
	if s := v.GetString("host"); s != "" {
		a.cfg.Indico.Host = s
	}
	if s := v.GetString("protocol"); s != "" {
		a.cfg.Indico.Protocol = s
	}
	if s := v.GetString("api_token_path"); s != "" {
		a.cfg.Indico.APITokenPath = s
	}
	if s := v.GetString("journal"); s != "" {
		a.cfg.Journal.URL = s
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	clientCfg := a.cfg.Indico.ClientConfig()
	if v.GetBool("trace") {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(cmd.ErrOrStderr()), stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		clientCfg.TracerProvider = tp
		a.shutdown = tp.Shutdown
	}
	a.client = client.NewClient(clientCfg, a.logger)
	return nil
}

// requireAuth fails commands that call the platform when no token is set.
func (a *app) requireAuth() error {
	return a.cfg.Indico.ValidateAuth()
}

func (a *app) openJournal(ctx context.Context) (journal.Store, error) {
	return journal.Open(ctx, journal.Config{URL: a.cfg.Journal.URL}, a.logger)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
