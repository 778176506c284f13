package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/weftrun/weft"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Boot the runtime and print the resource dependency graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadDemoConfig(configPath)
		if err != nil {
			return err
		}

		app := buildApp(cfg)
		rt, err := weft.RunWithOptions(app.roots, cfg.runOptions())
		if err != nil {
			return fmt.Errorf("booting runtime: %w", err)
		}
		defer rt.Dispose(cmd.Context())

		graph := rt.DependencyGraph()
		ids := make([]string, 0, len(graph))
		for id := range graph {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			deps := graph[id]
			sort.Strings(deps)
			fmt.Printf("%s -> %v\n", id, deps)
		}
		return nil
	},
}
