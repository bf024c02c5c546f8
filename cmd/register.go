package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cakedaybot/cakeday/config"
	"github.com/cakedaybot/cakeday/internal/discord"
	"github.com/cakedaybot/cakeday/service"
	"github.com/cakedaybot/cakeday/store"
)

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register the guild slash commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Init(cfgFile)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		bot, err := discord.New(cfg, store.NewMemoryStore(), service.NewGate(cfg.Busy, logger), logger)
		if err != nil {
			return err
		}

		// registration is plain REST; the gateway is only needed to
		// discover the application ID when it is not configured
		if cfg.Bot.AppID == "" {
			if err := bot.Open(); err != nil {
				return err
			}
			defer bot.Close()
		}

		return bot.RegisterCommands()
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
}
