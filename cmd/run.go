package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cakedaybot/cakeday/config"
	"github.com/cakedaybot/cakeday/internal/discord"
	"github.com/cakedaybot/cakeday/internal/keepalive"
	"github.com/cakedaybot/cakeday/service"
	"github.com/cakedaybot/cakeday/store"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bot by config",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Init(cfgFile)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			var corrupt *store.CorruptError
			if errors.As(err, &corrupt) {
				// never reset to empty on our own, that loses everyone's data
				return fmt.Errorf("%w; fix or move the file and restart", err)
			}
			return err
		}
		logger.WithFields(logrus.Fields{
			"path":    cfg.Store.Path,
			"records": st.Len(),
		}).Info("birthday store loaded")

		gate := service.NewGate(cfg.Busy, logger)
		bot, err := discord.New(cfg, st, gate, logger)
		if err != nil {
			return err
		}
		notifier, err := service.NewNotifier(cfg.Notify, cfg.Bot.GuildID, st, bot, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return bot.Start(ctx)
		})
		g.Go(func() error {
			return notifier.Start(ctx)
		})
		if cfg.HTTP.Addr != "" {
			g.Go(func() error {
				return keepalive.New(cfg.HTTP.Addr, logger).Start(ctx)
			})
		}

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Info("shut down")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
