package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"octlabel/internal/discover"
	"octlabel/internal/store"
)

func newFoldersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "folders <root>",
		Short: "List the labellable folders under a root directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			folders, err := discover.New(cfg, logger).Discover(args[0])
			if err != nil {
				return err
			}
			st, err := store.Open(cfg, logger)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(folders))
			for i, folder := range folders {
				state := "pending"
				if _, ok := st.Get(folder.Key); ok {
					state = "annotated"
				}
				rows = append(rows, []string{strconv.Itoa(i + 1), folder.Key, state})
			}
			renderRows(cmd.OutOrStdout(), []string{"#", "Folder", "State"}, rows)
			return nil
		},
	}
}
