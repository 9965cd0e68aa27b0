package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"minitwitql/internal/app"
	"minitwitql/internal/config"
	"minitwitql/internal/models"
	"minitwitql/internal/store"
	"minitwitql/internal/timeline"
)

func (c *cli) messagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Inspect and moderate stored messages",
	}
	cmd.AddCommand(c.messagesListCmd(), c.messagesRemoveCmd())
	return cmd
}

// openTimeline opens the configured store without requiring the auth settings
// that only the server needs.
func (c *cli) openTimeline(ctx context.Context) (*timeline.Service, store.Store, error) {
	cfg, err := config.Read(c.conf)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Store.Validate(); err != nil {
		return nil, nil, err
	}
	st, err := app.OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	return timeline.New(st.Messages(), st.Users(), nil), st, nil
}

func (c *cli) messagesListCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Dump all messages as id,userId,date,text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			tl, st, err := c.openTimeline(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			var page models.Page
			if userID != "" {
				page, err = tl.ByUser(ctx, userID)
			} else {
				page, err = tl.Messages(ctx)
			}
			for ; err == nil && len(page.Data) > 0; page, err = next(ctx, tl, userID, page.Cursor) {
				for _, m := range page.Data {
					fmt.Fprintf(cmd.OutOrStdout(), "%s,%s,%s,%q\n", m.ID, m.UserID, m.Date, m.Text)
				}
			}
			return err
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Only list messages of this user id.")
	return cmd
}

func next(ctx context.Context, tl *timeline.Service, userID, cursor string) (models.Page, error) {
	if userID != "" {
		return tl.MoreByUser(ctx, userID, cursor)
	}
	return tl.MoreMessages(ctx, cursor)
}

func (c *cli) messagesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <message_id>...",
		Short: "Remove messages by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tl, st, err := c.openTimeline(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			failed := 0
			for _, id := range args {
				if err := tl.Remove(ctx, id); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Can't remove %s: %s\n", id, err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed message: %s\n", id)
			}
			if failed > 0 {
				return errors.Errorf("%d of %d messages not removed", failed, len(args))
			}
			return nil
		},
	}
}
