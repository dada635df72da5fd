package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/hitpull/packages/core/config"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new hitpull project",
	Long: `Initialize a new hitpull project in the current directory.

This creates:
  - hitpull.yaml    - Configuration with sample requests
  - src/index.md    - Sample page with a front matter request

Examples:
  hitpull init
  hitpull init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const sampleConfig = `# hitpull configuration
source: src
destination: build
timeout: 30s
metadataFile: metadata.json

requests:
  # shorthand: GET and log the response
  - https://www.google.com/humans.txt

  # store the response in global metadata
  - url: https://api.github.com/repos/:owner/:repo
    params:
      - owner: golang
        repo: go
      - owner: spf13
        repo: cobra
    out:
      key: repos.:repo
      select: stargazers_count

  # write the response to a file
  - url: https://raw.githubusercontent.com/:owner/:repo/master/README.md
    params:
      - owner: spf13
        repo: cobra
    out:
      path: readmes/:repo.md
`

const sampleIndex = `---
title: Home
request:
  url: https://api.github.com/repos/golang/go
  out:
    key: repo
---
# Home
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, "hitpull.yaml")
	indexFile := filepath.Join(cwd, "src", "index.md")

	if !forceInit {
		for _, f := range []string{configFile, indexFile} {
			if _, err := os.Stat(f); err == nil {
				return withExitCode(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
			}
		}
	}

	if _, err := config.Parse([]byte(sampleConfig)); err != nil {
		return fmt.Errorf("sample config: %w", err)
	}

	if err := os.WriteFile(configFile, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(indexFile), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(indexFile, []byte(sampleIndex), 0o644); err != nil {
		return fmt.Errorf("failed to write sample page: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", configFile)
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", indexFile)
	fmt.Fprintf(cmd.OutOrStdout(), "\nRun 'hitpull build' to fetch and write the build.\n")
	return nil
}
