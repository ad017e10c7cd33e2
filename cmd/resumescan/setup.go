package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/mark3labs/resumescan/internal/config"
	"github.com/spf13/cobra"
)

const (
	promptYes = "Yes"
	promptNo  = "No"
)

var setupFlags struct {
	project bool
	force   bool
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create resumescan configuration file",
	Long: `Create a resumescan configuration file.

setup asks for the matching service origin and whether scans should be
recorded, then writes the answers on top of the defaults. Pass --backend-url
to skip the origin prompt.

By default, creates a global config at ~/.config/resumescan/resumescan.yml.
Use --project to create a project-local config in the current directory.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVarP(&setupFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	setupCmd.Flags().BoolVarP(&setupFlags.force, "force", "f", false, "Overwrite existing config file")
}

func runSetup(cmd *cobra.Command, args []string) error {
	// Determine target path
	targetPath := config.GlobalPath()
	if setupFlags.project {
		targetPath = config.ProjectPath()
	}

	// Check if config already exists
	if !setupFlags.force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	cfg := config.Defaults()

	if cmd.Flags().Changed("backend-url") {
		cfg.BackendURL = strings.TrimSpace(rootFlags.backendURL)
	} else {
		origin, err := promptOrigin(cfg.BackendURL)
		if err != nil {
			return err
		}
		cfg.BackendURL = origin

		history, err := promptYesNo("Record scans in local history?")
		if err != nil {
			return err
		}
		cfg.History = history
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Write config to target location
	var err error
	if setupFlags.project {
		err = config.WriteProject(cfg)
	} else {
		err = config.WriteGlobal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	// Print success message
	fmt.Fprintf(cmd.OutOrStdout(), "Config written to: %s\n\n", targetPath)
	fmt.Fprintln(cmd.OutOrStdout(), "Run 'resumescan' to get started.")
	return nil
}

func promptOrigin(def string) (string, error) {
	prompt := promptui.Prompt{
		Label:    "Matching service URL",
		Default:  def,
		Validate: validateOrigin,
	}
	origin, err := prompt.Run()
	if err != nil {
		return "", promptError(err)
	}
	return strings.TrimRight(strings.TrimSpace(origin), "/"), nil
}

func promptYesNo(label string) (bool, error) {
	prompt := promptui.Select{
		Label: label,
		Items: []string{promptYes, promptNo},
	}
	_, choice, err := prompt.Run()
	if err != nil {
		return false, promptError(err)
	}
	return choice == promptYes, nil
}

// validateOrigin accepts absolute http and https URLs.
func validateOrigin(input string) error {
	u, err := url.Parse(strings.TrimSpace(input))
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("URL must start with http:// or https://")
	}
	if u.Host == "" {
		return errors.New("URL must include a host")
	}
	return nil
}

func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return errors.New("setup cancelled")
	}
	return fmt.Errorf("prompt failed: %w", err)
}

// fileExists checks if a file exists (helper for setup command).
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
