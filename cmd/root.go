package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sap-gg/clifeed/internal"
	"github.com/sap-gg/clifeed/internal/logging"
)

var cfgFile string

const (
	FeedsSourceKey         = "feeds.source"
	TablesFileKey          = "tables.file"
	BypassValidationKey    = "links.bypass_validation"
	ChecksumsVerifyKey     = "checksums.verify"
	BuildInfoKey           = "build.info"
	BuildVersionKey        = "build.version"
	BuildInprocVersionKey  = "build.inproc_version"
	BuildIDKey             = "build.id"
	bypassValidationFlag   = "bypass-link-validation"
	defaultConfigDirectory = "clifeed"
)

var rootCmd = &cobra.Command{
	Use:   "clifeed",
	Short: "Publishes core tools builds into the tooling release feeds",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, configErr := initConfig()
		logging.Init()
		if configErr != nil { // handle error after logging is initialized
			return configErr
		}
		if configPath != "" {
			log.Info().Msgf("using config file: %s", configPath)
		}
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Error().Err(err).Msg("command execution failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/"+internal.ConfigName+".yaml)")

	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	_ = viper.BindPFlag(logging.LogLevelKey, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("log-format", "console", "log format: console, json")
	_ = viper.BindPFlag(logging.LogFormatKey, rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.PersistentFlags().Bool("no-color", false, "disable color output")
	_ = viper.BindPFlag(logging.LogNoColorKey, rootCmd.PersistentFlags().Lookup("no-color"))

	rootCmd.PersistentFlags().String("feed-source", internal.DefaultFeedSource,
		"URL or directory the feed files are read from")
	_ = viper.BindPFlag(FeedsSourceKey, rootCmd.PersistentFlags().Lookup("feed-source"))

	rootCmd.PersistentFlags().String("tables", "",
		"YAML or TOML file merged over the built-in lookup tables")
	_ = viper.BindPFlag(TablesFileKey, rootCmd.PersistentFlags().Lookup("tables"))

	viper.SetEnvPrefix(internal.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// release pipelines set this one without the prefix
	_ = viper.BindEnv(BypassValidationKey, internal.BypassValidationEnv)

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

func initConfig() (string, error) {
	// reads in config file and ENV variables if set.
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// search order: current dir, $HOME, XDG config
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}

		config, err := os.UserConfigDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(config, defaultConfigDirectory))
		}

		viper.SetConfigType("yaml")
		viper.SetConfigName(internal.ConfigName)
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundError) {
			return "", err
		}
	} else {
		return viper.ConfigFileUsed(), nil
	}

	return "", nil
}

// bypassLinkValidation reports whether the reachability check is disabled.
// Only the exact value "1" disables it.
func bypassLinkValidation() bool {
	return viper.GetString(BypassValidationKey) == internal.BypassValidationOn
}
