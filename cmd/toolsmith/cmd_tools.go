package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toolsmith-ai/toolsmith/pkg/config"
	"github.com/toolsmith-ai/toolsmith/pkg/tools"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Inspect stored tools",
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every tool the agent can call",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := config.ResolveRuntimePaths()
		if err != nil {
			return err
		}

		cfg, err := config.Load(paths.ConfigPath)
		if err != nil {
			return err
		}

		registry := tools.NewRegistry()
		store := tools.NewStore(paths.ToolsDir, cfg.Tools.PythonBin, cfg.Tools.PipBin, false)
		registry.RegisterBuiltin(tools.NewThinkTool())
		registry.RegisterBuiltin(tools.NewCreateTool(registry, store))
		store.LoadAll(cmd.Context(), registry)

		for _, schema := range registry.Schemas() {
			fmt.Printf("%-24s %s\n", schema.Name, schema.Description)
		}
		return nil
	},
}

func init() {
	toolsCmd.AddCommand(toolsListCmd)
}
