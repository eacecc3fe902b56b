package main

import (
	"os"

	"github.com/matsen/refcart/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a refcart workspace in the current directory",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// InitResult is the JSON output for the init command.
type InitResult struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	existed := config.IsWorkspace(cwd)
	if err := config.InitWorkspace(cwd); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	status := "created"
	if existed {
		status = "exists"
	}

	result := InitResult{Status: status, Path: config.WorkspacePath(cwd)}
	if humanOutput {
		outputHuman("Workspace %s at %s\n", status, result.Path)
		return nil
	}
	return outputJSON(result)
}
