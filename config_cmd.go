package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect resolved configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration after all overrides",
		RunE:  runConfigShow,
	}
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())

	if cc.Flags.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(cc.Cfg)
	}

	fmt.Printf("listen_addr  %s\n", cc.Cfg.Server.ListenAddr)
	fmt.Printf("data_dir     %s\n", cc.Cfg.Server.DataDir)
	fmt.Printf("batch_size   %d\n", cc.Cfg.Scan.BatchSize)
	fmt.Printf("stale_after  %s\n", cc.Cfg.Scan.StaleAfter)
	fmt.Printf("log_level    %s\n", cc.Cfg.Logging.Level)
	fmt.Printf("log_format   %s\n", cc.Cfg.Logging.Format)

	return nil
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path resolved for this invocation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := mustCLIContext(cmd.Context())
			fmt.Println(cc.CfgPath)

			return nil
		},
	}
}
