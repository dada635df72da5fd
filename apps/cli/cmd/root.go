package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/abdul-hamid-achik/hitpull/packages/logging"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag    string
	envFileFlag   string
	logLevelFlag  string
	logPrettyFlag bool
	noColorFlag   bool
	verboseFlag   bool
	outputFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "hitpull",
	Short: "Pull HTTP responses into a static build.",
	Long: `hitpull expands request templates into concrete HTTP requests, sends
them concurrently and writes each response into a build tree: a file's
contents, a front matter field or the global metadata.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(logging.Config{
			Level:   logging.Level(logLevelFlag),
			Pretty:  logPrettyFlag,
			NoColor: noColorFlag,
			Output:  cmd.ErrOrStderr(),
		})
	},
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitCode(err))
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFlag, "config", "c", getEnvString("HITPULL_CONFIG", ""), "Path to config file (env: HITPULL_CONFIG)")
	pf.StringVar(&envFileFlag, "env-file", getEnvString("HITPULL_ENV_FILE", ""), "Path to .env file for ${VAR} expansion (env: HITPULL_ENV_FILE)")
	pf.StringVar(&logLevelFlag, "log-level", string(logging.DefaultConfig().Level), "Log level: debug, info, warn, error (env: "+logging.EnvLevel+")")
	pf.BoolVar(&logPrettyFlag, "log-pretty", getEnvBool("HITPULL_LOG_PRETTY", false), "Human-readable log output (env: HITPULL_LOG_PRETTY)")
	pf.BoolVar(&noColorFlag, "no-color", getEnvBool("HITPULL_NO_COLOR", false), "Disable colored output (env: HITPULL_NO_COLOR)")
	pf.BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output")
	pf.StringVarP(&outputFlag, "output", "o", getEnvString("HITPULL_OUTPUT", "console"), "Output format: console, json (env: HITPULL_OUTPUT)")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
