// tokyadmin is the terminal admin client for the Toky sports-event
// platform: chat moderation, scoreboards, cheer counters and raffle draws
// against the remote API (or a local tokysim).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toky-team/toky-admin/internal/config"
	"github.com/toky-team/toky-admin/internal/domain"
	"github.com/toky-team/toky-admin/internal/httpx"
	"github.com/toky-team/toky-admin/internal/logx"
	"github.com/toky-team/toky-admin/internal/realtime"

	"go.uber.org/zap"
)

// app holds what every subcommand needs; built once in PersistentPreRunE.
type app struct {
	cfg config.Config
	log *zap.Logger
	api *httpx.Client
	reg *realtime.Registry
}

var sportAliases = map[string]domain.Sport{
	"football":   domain.Football,
	"basketball": domain.Basketball,
	"baseball":   domain.Baseball,
	"rugby":      domain.Rugby,
	"icehockey":  domain.IceHockey,
}

func parseSport(name string) (domain.Sport, error) {
	if s, ok := sportAliases[name]; ok {
		return s, nil
	}
	s := domain.Sport(name)
	if s.Valid() {
		return s, nil
	}
	return "", fmt.Errorf("unknown sport %q", name)
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "tokyadmin",
		Short: "Admin client for the Toky sports-event platform",
		Long: `Moderate chat, control scoreboards, reset cheer counters and run
raffle draws against the platform's admin API.

Set TOKY_API_URL (and optionally TOKY_WS_URL) to point at the backend;
run tokysim for a local one.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.Load()
			a.log = logx.New(a.cfg.LogLevel)
			api, err := httpx.New(a.cfg, a.log)
			if err != nil {
				return err
			}
			a.api = api
			a.reg = realtime.NewRegistry(a.cfg, api.Jar(), a.log)
			// Sessions live in an in-memory cookie jar, so commands needing
			// auth log in at startup when TOKY_USERNAME is set.
			if a.cfg.Username != "" && cmd.Name() != "login" {
				if err := api.Login(cmd.Context(), a.cfg.Username); err != nil {
					return fmt.Errorf("login as %s: %w", a.cfg.Username, err)
				}
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.reg != nil {
				a.reg.Close()
			}
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	rootCmd.AddCommand(createLoginCmd(a))
	rootCmd.AddCommand(createHealthCmd(a))
	rootCmd.AddCommand(createChatCmd(a))
	rootCmd.AddCommand(createScoreCmd(a))
	rootCmd.AddCommand(createCounterCmd(a, "cheer"))
	rootCmd.AddCommand(createCounterCmd(a, "like"))
	rootCmd.AddCommand(createRaffleCmd(a))
	rootCmd.AddCommand(createUsersCmd(a))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
