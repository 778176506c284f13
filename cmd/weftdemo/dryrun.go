package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weftrun/weft"
)

var dryRunCmd = &cobra.Command{
	Use:   "dry-run",
	Short: "Wire the registration tree without initializing any resource",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadDemoConfig(configPath)
		if err != nil {
			return err
		}

		app := buildApp(cfg)
		opts := append(cfg.runOptions(), weft.WithDryRun(true))
		if _, err := weft.RunWithOptions(app.roots, opts); err != nil {
			return fmt.Errorf("wiring failed: %w", err)
		}
		fmt.Println("wiring ok")
		return nil
	},
}
