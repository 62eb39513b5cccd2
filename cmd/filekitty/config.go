package main

import (
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bastet/filekitty/internal/config"
	"github.com/bastet/filekitty/internal/output"
)

// newConfigCmd creates the config command and its subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change persistent settings",
		Long: `Show the current settings or change one. Settings live in
settings.yaml inside the config directory and keep their defaults
until set.

Keys: ` + strings.Join(config.Keys(), ", "),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting and save it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigPath(cmd)
		},
	})

	return cmd
}

// runConfigShow executes the config show command.
func runConfigShow(cmd *cobra.Command) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), output.IsTTY(cmd.OutOrStdout())).
		WithStderr(cmd.ErrOrStderr())

	settings, err := loadSettings()
	if err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.WriteJSON(settings)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		err = output.NewSystemErrorWithCause("serializing settings", err)
		printer.Error(err)
		return err
	}
	printer.Print("%s", string(data))
	return nil
}

// runConfigSet executes the config set command.
func runConfigSet(cmd *cobra.Command, key, value string) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), output.IsTTY(cmd.OutOrStdout())).
		WithStderr(cmd.ErrOrStderr())

	settings, err := loadSettings()
	if err != nil {
		printer.Error(err)
		return err
	}

	if err := settings.Set(key, value); err != nil {
		err = output.NewUserError(err.Error())
		printer.Error(err)
		return err
	}
	if err := settings.Save(); err != nil {
		err = output.NewSystemErrorWithCause("saving settings", err)
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{"key": key, "value": value})
	}
	return printer.Success(map[string]any{
		"message": "Set " + key + " = " + value,
	})
}

// runConfigPath executes the config path command.
func runConfigPath(cmd *cobra.Command) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), output.IsTTY(cmd.OutOrStdout())).
		WithStderr(cmd.ErrOrStderr())

	path := config.SettingsPath()
	if path == "" {
		err := output.NewSystemError("cannot resolve config directory")
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{"path": path})
	}
	printer.Println(path)
	return nil
}
