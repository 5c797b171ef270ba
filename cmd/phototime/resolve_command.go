package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"phototime/internal/config"
	"phototime/internal/dirname"
	"phototime/internal/exiftool"
	"phototime/internal/logging"
	"phototime/internal/resolve"
	"phototime/internal/sidecar"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <file>",
		Short: "Show the timestamp a file would receive without applying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return resolveOne(cmd, cfg, args[0])
		},
	}
	return cmd
}

func resolveOne(cmd *cobra.Command, cfg *config.Config, pathArg string) error {
	path, err := config.ExpandPath(pathArg)
	if err != nil {
		return fmt.Errorf("resolve file path: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("inspect file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory; resolve expects a single file", path)
	}

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("resolve timezone: %w", err)
	}

	extractors := []resolve.Extractor{sidecar.NewExtractor(loc)}
	if cfg.Exiftool.Enabled {
		extractors = append(extractors, exiftool.NewExtractor(cfg.Exiftool.Binary, exiftool.WithTimeout(cfg.ExiftoolTimeout())))
	}
	extractors = append(extractors, dirname.NewExtractor(cfg.Resolve.MinYear))

	resolver := resolve.New(logging.NewNop(), loc, extractors)

	out := cmd.OutOrStdout()
	colorize := stdoutIsTerminal()

	candidate, ok := resolver.Lookup(cmd.Context(), path)
	if !ok {
		fmt.Fprintf(out, "File:     %s\n", path)
		fmt.Fprintf(out, "Modified: %s\n", info.ModTime().In(loc).Format(time.RFC3339))
		fmt.Fprintf(out, "Action:   %s\n", actionLabel(resolve.ActionNoTimestamp, colorize))
		return nil
	}

	resolved := candidate.Time(loc)
	action := resolve.ActionUpdated
	if info.ModTime().Unix() == resolved.Unix() {
		action = resolve.ActionIdentical
	}

	fmt.Fprintf(out, "File:     %s\n", path)
	fmt.Fprintf(out, "Source:   %s\n", candidate.Source)
	fmt.Fprintf(out, "Stamp:    %s\n", candidate.Stamp())
	fmt.Fprintf(out, "Resolved: %s\n", resolved.Format(time.RFC3339))
	fmt.Fprintf(out, "Modified: %s\n", info.ModTime().In(loc).Format(time.RFC3339))
	fmt.Fprintf(out, "Action:   %s\n", actionLabel(action, colorize))
	return nil
}
