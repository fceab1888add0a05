package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/daticahealth/datisession/auth"
	"github.com/daticahealth/datisession/config"
	"github.com/daticahealth/datisession/logs"
	"github.com/daticahealth/datisession/session"
	"github.com/daticahealth/datisession/tokenstore"
)

// Version is set at build time.
var Version = "dev"

var (
	configFile string
	cfg        *config.Config
	logger     = logs.Discard()
	console    = logs.NewConsole(nil, nil)
)

func bindFlags(root *cobra.Command) {
	def := config.Default()
	f := root.PersistentFlags()
	f.StringVar(&configFile, "config", "", "config file (default $XDG_CONFIG_HOME/datisession/config.yaml)")
	f.BoolP("verbose", "v", false, "print verbose messages")
	f.String("base-url", def.BaseURL, "auth API base URL")
	f.Duration("timeout", def.Timeout, "timeout for each auth API call")
	f.String("token-store", def.TokenStore, "where the session token is kept: file, kubeconfig, redis or memory")
	f.String("token-path", def.TokenPath, "token file for the file store (default $XDG_STATE_HOME/datisession/token)")
	f.String("kubeconfig", def.Kubeconfig, "kubeconfig file for the kubeconfig store")
	f.String("kube-user", def.KubeUser, "kubeconfig user entry that holds the token")
	f.String("redis-url", def.RedisURL, "redis URL for the redis store")
	f.String("redis-key", def.RedisKey, "redis key for the redis store")
	f.Bool("evict-stale-token", def.EvictStaleToken, "remove a stored token the server rejects")
	f.String("log-level", def.LogLevel, "structured log level: debug, info, warn or error")
	f.String("log-format", def.LogFormat, "structured log format: text or json")
}

// loadConfig resolves configuration once per invocation and sets up logging.
func loadConfig(cmd *cobra.Command) error {
	c, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	cfg = c
	console = logs.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr())
	console.ConfigureVerbosity(c.Verbose)
	level := c.LogLevel
	if c.Verbose {
		level = "debug"
	}
	logger = logs.Setup(c.LogFormat, level, cmd.ErrOrStderr())
	console.Printv("Configuration: %s", c)
	return nil
}

func authClient() *auth.Client {
	return auth.New(cfg.BaseURL,
		auth.WithTimeout(cfg.Timeout),
		auth.WithUserAgent("datisession/"+Version))
}

func managerOptions() []session.Option {
	return []session.Option{
		session.WithLogger(logger),
		session.WithStaleTokenEviction(cfg.EvictStaleToken),
	}
}

// newManager builds a session manager that has not checked the stored token yet.
func newManager() (*session.Manager, func(), error) {
	store, closeStore, err := tokenstore.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return session.New(authClient(), store, managerOptions()...), closer(closeStore), nil
}

// openManager builds a session manager and resolves its status from the stored token.
func openManager(ctx context.Context) (*session.Manager, func(), error) {
	store, closeStore, err := tokenstore.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	start := time.Now()
	m := session.Open(ctx, authClient(), store, managerOptions()...)
	console.Printv("Session status resolved in %s: %s", time.Since(start).Round(time.Millisecond), m.Status())
	return m, closer(closeStore), nil
}

func closer(fn func() error) func() {
	return func() {
		if err := fn(); err != nil {
			logs.LogError(logger, slog.LevelWarn, "closing token store failed", err)
		}
	}
}
