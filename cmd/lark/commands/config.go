package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/larksuite/oapi-client/internal/constants"
	"github.com/larksuite/oapi-client/pkg/larkclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Configuration keys shared by flags, environment variables and the config
// file.
const (
	KeyEndpoint  = "endpoint"
	KeyToken     = "token"
	KeyAppID     = "app_id"
	KeyAppSecret = "app_secret"
	KeyOutput    = "output"
)

var configKeys = []string{KeyEndpoint, KeyToken, KeyAppID, KeyAppSecret, KeyOutput}

// Config represents the CLI configuration.
type Config struct {
	Endpoint  string `json:"endpoint"             yaml:"endpoint"`
	Token     string `json:"token,omitempty"      yaml:"token,omitempty"`
	AppID     string `json:"app_id,omitempty"     yaml:"app_id,omitempty"`
	AppSecret string `json:"app_secret,omitempty" yaml:"app_secret,omitempty"`
	Output    string `json:"output,omitempty"     yaml:"output,omitempty"`
}

// ConfigDir returns ~/.lark.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".lark"), nil
}

func loadConfig() *Config {
	return &Config{
		Endpoint:  larkclient.NormalizeEndpoint(viper.GetString(KeyEndpoint)),
		Token:     viper.GetString(KeyToken),
		AppID:     viper.GetString(KeyAppID),
		AppSecret: viper.GetString(KeyAppSecret),
		Output:    viper.GetString(KeyOutput),
	}
}

// masked returns a copy safe to print.
func (c *Config) masked() *Config {
	out := *c
	out.Token = maskSecret(c.Token)
	out.AppSecret = maskSecret(c.AppSecret)

	return &out
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}

	if len(s) <= constants.StringTruncationLimit {
		return constants.MaskedSecret
	}

	return s[:constants.StringTruncationLimit] + constants.MaskedSecret
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the settings stored in ~/.lark/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			config := loadConfig().masked()
			w := cmd.OutOrStdout()

			switch format {
			case constants.FormatJSON:
				return StandardJSONRenderer(w, config)
			case constants.FormatYAML:
				return StandardYAMLRenderer(w, config)
			default:
				return renderTable(w, []string{"Property", "Value"}, [][]string{
					{"Endpoint", config.Endpoint},
					{"Token", valueOrNA(config.Token)},
					{"App ID", valueOrNA(config.AppID)},
					{"App Secret", valueOrNA(config.AppSecret)},
					{"Output", valueOrNA(config.Output)},
				})
			}
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set one of: endpoint, token, app_id, app_secret, output",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			if !slices.Contains(configKeys, key) {
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
			}

			if key == KeyOutput {
				if _, err := parseOutputFormat(value); err != nil {
					return err
				}
			}

			viper.Set(key, value)

			if err := saveConfig(); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", key)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value from the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			if !slices.Contains(configKeys, key) {
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
			}

			viper.Set(key, "")

			if err := saveConfig(); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", key)

			return nil
		},
	}
}

// configFile returns the file settings are saved to.
func configFile() (string, error) {
	if file := viper.ConfigFileUsed(); file != "" {
		return file, nil
	}

	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.yml"), nil
}

// saveConfig writes the effective settings to the config file.
func saveConfig() error {
	file, err := configFile()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(file), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		Endpoint:  viper.GetString(KeyEndpoint),
		Token:     viper.GetString(KeyToken),
		AppID:     viper.GetString(KeyAppID),
		AppSecret: viper.GetString(KeyAppSecret),
		Output:    viper.GetString(KeyOutput),
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(file, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
