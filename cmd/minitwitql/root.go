package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"minitwitql/internal/config"
	"minitwitql/internal/logging"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

// cli carries what every subcommand shares.
type cli struct {
	conf *viper.Viper
}

func newRootCmd() *cobra.Command {
	c := &cli{conf: viper.New()}
	root := &cobra.Command{
		Use:   "minitwitql",
		Short: "minitwitql: a GraphQL API for minitwit users and messages",
		Long: `
minitwitql serves users and messages over GraphQL. Clients register and log in
on /login and send the returned token in the Authorization header of every
request to /graphql. Configuration comes from flags, MINITWITQL_* environment
variables, an optional .env file and an optional config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return config.BindFlags(c.conf, cmd.Flags())
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(c.serveCmd(), c.messagesCmd(), c.versionCmd())
	return root
}

func (c *cli) logger(cfg config.LogConfig) (*zap.Logger, error) {
	return logging.New(cfg.Level, cfg.Format)
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "minitwitql %s\n", version)
		},
	}
}
