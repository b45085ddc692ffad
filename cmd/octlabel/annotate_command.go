package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"octlabel/internal/config"
	"octlabel/internal/discover"
	"octlabel/internal/session"
	"octlabel/internal/store"
)

func newAnnotateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "annotate <root>",
		Short: "Step through labellable folders and record annotations",
		Long: `Annotate walks the labellable folders under the given root directory and
records, per folder, which tissue types and clinical classifications are
present. Labels are staged per folder and written to the annotation table
when the folder is committed with "n"; skipping or jumping never saves.`,
		Args: cobra.ExactArgs(1),
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
				if errors.Is(err, discover.ErrNoFolders) {
					return fmt.Errorf("nothing to annotate: %w", err)
				}
				return err
			}
			st, err := store.Open(cfg, logger)
			if err != nil {
				return err
			}
			sess, err := session.New(cfg, folders, st, logger)
			if err != nil {
				return err
			}
			return runAnnotateLoop(cmd, cfg, sess)
		},
	}
}

func runAnnotateLoop(cmd *cobra.Command, cfg *config.Config, sess *session.Session) error {
	in := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	printAnnotateHelp(out)
	for !sess.Finished() {
		printView(out, cfg, sess.Current())
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			break
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch verb {
		case "n", "next":
			if err := sess.Advance(true); err != nil {
				fmt.Fprintf(out, "not saved: %v\n", err)
			}
		case "s", "skip":
			if err := sess.Advance(false); err != nil {
				fmt.Fprintf(out, "%v\n", err)
			}
		case "g":
			if i, err := strconv.Atoi(rest); err == nil {
				sess.JumpToFolder(i - 1)
			}
		case "f":
			if i, err := strconv.Atoi(rest); err == nil {
				sess.JumpToFrame(i - 1)
			}
		case "+":
			sess.ChangeFrame(1)
		case "-":
			sess.ChangeFrame(-1)
		case "t":
			toggleLabel(out, cfg.Labels.TissueTypes, rest, sess.Current().Record.Tissue, sess.SetTissue)
		case "k":
			toggleLabel(out, cfg.Labels.ClinicalClasses, rest, sess.Current().Record.Clinical, sess.SetClinical)
		case "o":
			toggleLabel(out, cfg.Labels.OtherAttributes, rest, sess.Current().Record.Other, sess.SetOther)
		case "e":
			sess.SetClinicalEnabled(!sess.Current().ClinicalEnabled)
		case "c":
			sess.SetComment(rest)
		case "m":
			printMetadata(out, sess)
		case "h", "help":
			printAnnotateHelp(out)
		case "q", "quit":
			return nil
		default:
			fmt.Fprintf(out, "unknown command %q (h for help)\n", verb)
		}
	}
	if sess.Finished() {
		fmt.Fprintln(out, "All folders processed.")
	}
	return in.Err()
}

func toggleLabel(out io.Writer, labels []string, arg string, current map[string]store.Tri, set func(string, bool) error) {
	label, err := resolveLabel(labels, arg)
	if err != nil {
		fmt.Fprintf(out, "%v\n", err)
		return
	}
	if err := set(label, !current[label].Bool()); err != nil {
		fmt.Fprintf(out, "%v\n", err)
	}
}

// resolveLabel accepts a 1-based index or an exact label name.
func resolveLabel(labels []string, arg string) (string, error) {
	if arg == "" {
		return "", errors.New("label name or number required")
	}
	if i, err := strconv.Atoi(arg); err == nil {
		if i < 1 || i > len(labels) {
			return "", fmt.Errorf("label number %d out of range 1-%d", i, len(labels))
		}
		return labels[i-1], nil
	}
	for _, label := range labels {
		if strings.EqualFold(label, arg) {
			return label, nil
		}
	}
	return "", fmt.Errorf("unknown label %q", arg)
}

func printView(out io.Writer, cfg *config.Config, view session.View) {
	fmt.Fprintf(out, "\n[%d/%d] %s\n", view.FolderIndex+1, view.FolderCount, view.Key)
	if len(view.Frames) == 0 {
		fmt.Fprintln(out, "frame: none (folder unreadable or empty)")
	} else {
		frame := view.Frames[view.FrameIndex]
		fmt.Fprintf(out, "frame: %d/%d  %s page %d\n",
			view.FrameIndex+1, len(view.Frames), filepath.Base(frame.Path), frame.Page)
	}

	printGroup(out, "tissue   (t)", cfg.Labels.TissueTypes, view.Record.Tissue)
	clinicalState := "off"
	if view.ClinicalEnabled {
		clinicalState = "on"
	}
	fmt.Fprintf(out, "clinical (k, master %s via e):", clinicalState)
	printCells(out, cfg.Labels.ClinicalClasses, view.Record.Clinical)
	printGroup(out, "other    (o)", cfg.Labels.OtherAttributes, view.Record.Other)
	if view.Record.Comment != "" {
		fmt.Fprintf(out, "comment: %s\n", view.Record.Comment)
	}
}

func printGroup(out io.Writer, heading string, labels []string, values map[string]store.Tri) {
	fmt.Fprintf(out, "%s:", heading)
	printCells(out, labels, values)
}

func printCells(out io.Writer, labels []string, values map[string]store.Tri) {
	for i, label := range labels {
		cell := values[label].Cell()
		if cell == "" {
			cell = "-"
		}
		fmt.Fprintf(out, " [%d]%s=%s", i+1, label, cell)
	}
	fmt.Fprintln(out)
}

func printMetadata(out io.Writer, sess *session.Session) {
	res, ok := sess.Metadata()
	if !ok {
		fmt.Fprintln(out, "no current frame")
		return
	}
	for _, field := range res.Fields {
		fmt.Fprintf(out, "%s: %s\n", field.Key, field.Value)
	}
	for _, issue := range res.Issues {
		fmt.Fprintf(out, "%s error: %s\n", issue.Stage, issue.Message)
	}
}

func printAnnotateHelp(out io.Writer) {
	fmt.Fprint(out, `commands:
  n              commit folder and advance
  s              skip folder without saving
  g <i>          jump to folder i (no save)
  f <i> / + / -  select frame
  t|k|o <label>  toggle a tissue/clinical/other label (name or number)
  e              enable/disable clinical classification
  c <text>       set comment
  m              show metadata for the current frame
  q              quit
`)
}
