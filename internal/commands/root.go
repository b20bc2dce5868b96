// internal/commands/root.go
package coach

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mwiater/coach/internal/appconfig"
	"github.com/mwiater/coach/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// boolFlags and stringFlags are the persistent flags mirrored into viper.
var (
	boolFlags   = []string{"debug", "jsonMode"}
	stringFlags = []string{"logFile", "corpusPath", "cacheBackend", "cachePath", "embeddingProvider", "chatProvider"}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "coach",
	Short:         "coach answers career questions from a corpus of blog articles",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureConfigLoaded(); err != nil {
			return err
		}

		for _, name := range boolFlags {
			if !cmd.Flags().Changed(name) {
				_ = cmd.Flags().Set(name, strconv.FormatBool(viper.GetBool(name)))
			}
		}
		for _, name := range stringFlags {
			if !cmd.Flags().Changed(name) {
				_ = cmd.Flags().Set(name, viper.GetString(name))
			}
		}
		if !cmd.Flags().Changed("topK") {
			_ = cmd.Flags().Set("topK", strconv.Itoa(viper.GetInt("topK")))
		}

		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ConfigPath = cfgFile
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		currentConfig = &cfg

		if err := logging.Init(currentConfig.LogFilePath(), currentConfig.Debug); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		_ = logging.Close()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	for key, value := range appconfig.Defaults() {
		viper.SetDefault(key, value)
	}
	_ = viper.BindEnv("openAIAPIKey", "OPENAI_API_KEY")
	_ = viper.BindEnv("openAIBaseURL", "OPENAI_BASE_URL")

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")
	flags.Bool("debug", false, "enable debug logging")
	flags.Bool("jsonMode", false, "enable JSON output mode")
	flags.String("logFile", "", "path to the log file (empty disables logging)")
	flags.String("corpusPath", "", "path to the article corpus (JSON array)")
	flags.String("cacheBackend", "", "embedding cache backend: file or sqlite")
	flags.String("cachePath", "", "embedding cache location")
	flags.String("embeddingProvider", "", "embedding provider: openai or ollama")
	flags.String("chatProvider", "", "chat provider: openai or ollama")
	flags.Int("topK", 0, "passages retrieved per question")

	for _, name := range append(append([]string{"topK"}, boolFlags...), stringFlags...) {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config file. A missing file is not an error.
func ensureConfigLoaded() error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
