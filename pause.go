package main

import (
	"github.com/spf13/cobra"
)

func newPauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause <source_folder>",
		Short: "Suppress background rescans for a source folder",
		Long: `Pause background rescans for a source folder on a running serve process.
Reads still work normally — a scan-on-first-visit is still triggered if
nothing has been indexed yet. Pausing only suppresses the coordinator's
opportunistic refresh-on-stale background scans.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setPaused(cmd, args[0], true)
		},
	}
}

func setPaused(cmd *cobra.Command, sourceFolder string, paused bool) error {
	cc := mustCLIContext(cmd.Context())

	var status scanStatusDTO

	url := resolvedServerAddr(cc) + "/api/indexer/pause"
	body := pauseRequest{SourceFolder: sourceFolder, Paused: paused}

	if err := daemonRequest("POST", url, body, &status); err != nil {
		return err
	}

	word := "paused"
	if !paused {
		word = "resumed"
	}

	statusf(cc.Flags.Quiet, "Source folder %s %s\n", sourceFolder, word)

	return nil
}

type pauseRequest struct {
	SourceFolder string `json:"source_folder"`
	Paused       bool   `json:"paused"`
}
