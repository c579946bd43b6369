package commands

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	configapp "github.com/doeshing/aicmd-go/internal/application/config"
	"github.com/doeshing/aicmd-go/internal/infrastructure/cli/helpers"
	configinfra "github.com/doeshing/aicmd-go/internal/infrastructure/config"
)

const (
	envKeyEditor  = "EDITOR"
	defaultEditor = "vi"
)

// NewConfigCommand creates the config command with all subcommands. The
// subcommands read the file directly so a broken config can still be
// inspected and fixed.
func NewConfigCommand(loader func() *configinfra.FileLoader) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect aicmd configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd, loader())
		},
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), loader().Path())
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show full configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return showConfiguration(cmd, loader())
			},
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Get a configuration value by dotted path (e.g. search.workers)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return getConfigurationValue(cmd, loader(), args[0])
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a configuration value (value accepts YAML syntax)",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return setConfigurationValue(cmd, loader(), args[0], strings.Join(args[1:], " "))
			},
		},
		&cobra.Command{
			Use:   "edit",
			Short: "Edit configuration in $EDITOR",
			RunE: func(cmd *cobra.Command, args []string) error {
				return editConfiguration(loader())
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Validate configuration file",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loader().Load(cmd.Context())
				if err != nil {
					return fmt.Errorf("configuration validation failed: %w", err)
				}
				if err := configapp.Validate(cfg); err != nil {
					return fmt.Errorf("configuration validation failed: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), MsgConfigurationValid)
				return nil
			},
		},
		&cobra.Command{
			Use:   "diff",
			Short: "Show diff versus default configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return showConfigurationDiff(cmd, loader())
			},
		},
	)

	return configCmd
}

func showConfiguration(cmd *cobra.Command, loader *configinfra.FileLoader) error {
	cfg, err := loader.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return writeYAML(cmd.OutOrStdout(), cfg)
}

func getConfigurationValue(cmd *cobra.Command, loader *configinfra.FileLoader, keyPath string) error {
	cfg, err := loader.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	generic, err := helpers.ConfigToMap(cfg)
	if err != nil {
		return err
	}
	value, found := helpers.TraverseNestedMap(generic, strings.Split(keyPath, "."))
	if !found {
		return fmt.Errorf("key %s not found in configuration", keyPath)
	}
	return writeYAML(cmd.OutOrStdout(), value)
}

func setConfigurationValue(cmd *cobra.Command, loader *configinfra.FileLoader, keyPath, value string) error {
	cfg, err := loader.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfgMap, err := helpers.ConfigToMap(cfg)
	if err != nil {
		return err
	}
	if !helpers.SetNestedMapValue(cfgMap, strings.Split(keyPath, "."), helpers.ParseYAMLValue(value)) {
		return fmt.Errorf("unable to set key %s", keyPath)
	}
	updated, err := helpers.MapToConfig(cfgMap)
	if err != nil {
		return err
	}
	if err := helpers.SaveConfigWithValidation(loader, updated); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s updated in %s\n", keyPath, loader.Path())
	return nil
}

func editConfiguration(loader *configinfra.FileLoader) error {
	editor := os.Getenv(envKeyEditor)
	if editor == "" {
		editor = defaultEditor
	}
	cmd := exec.Command(editor, loader.Path())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to run editor %s: %w", editor, err)
	}
	return nil
}

func showConfigurationDiff(cmd *cobra.Command, loader *configinfra.FileLoader) error {
	current, err := loader.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load current configuration: %w", err)
	}
	diff := cmp.Diff(configinfra.Defaults(), current)
	if diff == "" {
		fmt.Fprintln(cmd.OutOrStdout(), MsgNoDifferencesFromDefault)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), diff)
	return nil
}

func writeYAML(out io.Writer, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}
