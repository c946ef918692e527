package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	txflow "github.com/branched-services/go-txflow"
	"github.com/branched-services/go-txflow/config"
	"github.com/branched-services/go-txflow/record"
)

// dialFunc connects a backend for a binding.
type dialFunc func(ctx context.Context, b *txflow.NetworkBinding) (txflow.Backend, error)

// app carries the state shared by all commands of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer
	dial   dialFunc
	creds  txflow.CredentialSource

	configPath string
	network    string
	timeout    time.Duration
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
	runID  string
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		out:    out,
		errOut: errOut,
		dial:   dialEthclient,
	}
}

func dialEthclient(ctx context.Context, b *txflow.NetworkBinding) (txflow.Backend, error) {
	client, err := txflow.Dial(ctx, b)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// load reads configuration and builds the logger. Flags win over the file.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("network") {
		cfg.Network = a.network
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Confirm.Timeout = a.timeout
	}
	a.cfg = cfg
	a.runID = uuid.NewString()
	a.logger = newLogger(a.errOut, cfg.Log, a.verbose).With("run_id", a.runID)
	return nil
}

func newLogger(w io.Writer, cfg config.LogConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// session is a bound, connected orchestrator for one command.
type session struct {
	binding *txflow.NetworkBinding
	backend txflow.Backend
	orch    *txflow.Orchestrator
}

func (s *session) Close() {
	if c, ok := s.backend.(interface{ Close() }); ok {
		c.Close()
	}
}

func (a *app) session(ctx context.Context) (*session, error) {
	creds := a.creds
	if creds == nil {
		var err error
		creds, err = a.cfg.Credentials()
		if err != nil {
			return nil, &txflow.ConfigurationError{Network: a.cfg.Network, Err: err}
		}
	}

	binding, err := txflow.NewNetworkBinding(a.cfg.NetworkTable(), a.cfg.Network, creds)
	if err != nil {
		return nil, err
	}
	backend, err := a.dial(ctx, binding)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("connected",
		"network", binding.Name(),
		"endpoint", binding.EndpointURL(),
		"chain_id", binding.ChainID(),
		"signer", binding.From().Hex(),
	)

	orch := txflow.NewOrchestrator(binding, backend,
		txflow.WithLogger(a.logger),
		txflow.WithPollInterval(a.cfg.Confirm.PollInterval),
	)
	return &session{binding: binding, backend: backend, orch: orch}, nil
}

func (a *app) records() *record.Store {
	return record.NewStore(a.cfg.Records.Dir)
}

// stringArgs turns CLI strings into call arguments; the orchestrator
// coerces them per ABI type.
func stringArgs(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func chainID(b *txflow.NetworkBinding) uint64 {
	return b.ChainID().Uint64()
}

func describeArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = fmt.Sprintf("%q", a)
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}
