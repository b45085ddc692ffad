package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"octlabel/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize the annotation table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg, logger)
			if err != nil {
				return err
			}

			headers := []string{"Key"}
			for _, label := range cfg.Labels.Columns() {
				headers = append(headers, humanLabel(label))
			}
			headers = append(headers, humanLabel(cfg.Labels.CommentColumn))

			rows := make([][]string, 0, st.Len())
			for _, key := range st.Keys() {
				rec, _ := st.Get(key)
				row := []string{key}
				for _, label := range cfg.Labels.TissueTypes {
					row = append(row, rec.Tissue[label].Cell())
				}
				for _, label := range cfg.Labels.ClinicalClasses {
					row = append(row, rec.Clinical[label].Cell())
				}
				for _, label := range cfg.Labels.OtherAttributes {
					row = append(row, rec.Other[label].Cell())
				}
				rows = append(rows, append(row, rec.Comment))
			}

			renderRows(cmd.OutOrStdout(), headers, rows)
			fmt.Fprintf(cmd.OutOrStdout(), "%d record(s) in %s\n", st.Len(), st.Path())
			return nil
		},
	}
}
