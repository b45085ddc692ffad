package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"octlabel/internal/tiffmeta"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <image>",
		Short: "Print best-effort metadata for one image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := tiffmeta.Extract(args[0])
			out := cmd.OutOrStdout()
			for _, field := range res.Fields {
				fmt.Fprintf(out, "%s: %s\n", field.Key, field.Value)
			}
			for _, issue := range res.Issues {
				fmt.Fprintf(out, "%s error: %s\n", issue.Stage, issue.Message)
			}
			return nil
		},
	}
}
