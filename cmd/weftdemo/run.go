package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weftrun/weft"
)

var runCmd = &cobra.Command{
	Use:   "run [input]",
	Short: "Boot the runtime and invoke the demo task",
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
		defer rt.Dispose(context.Background())

		input := "weftdemo"
		if len(args) > 0 {
			input = args[0]
		}

		result, err := weft.RunTask(rt, context.Background(), app.sayHello, input)
		if err != nil {
			return fmt.Errorf("running say-hello: %w", err)
		}
		fmt.Println(result)
		return nil
	},
}
