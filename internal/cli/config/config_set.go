package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/webhook-notifier/internal/cli/shared"
	cfgpkg "github.com/ariel-frischer/webhook-notifier/internal/config"
)

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in a YAML config file.

By default the value is written to the config file currently in use, or to
./.webhookrc.yaml when none exists. Use --user to write the user-level file
(~/.claude/plugins/webhook-notifier/.webhookrc.yaml).

The value is validated against the key's expected type. Comments and key
order in the file are preserved.`,
	Example: `  # Point the webhook at a new endpoint
  webhook-notifier config set notifiers.webhook.url https://hooks.example.com/claude

  # Enable retries with linear backoff
  webhook-notifier config set notifiers.webhook.retry.enabled true
  webhook-notifier config set notifiers.webhook.retry.backoff linear

  # Enable desktop notifications for this user
  webhook-notifier config set notifiers.desktop.enabled true --user`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get the effective value at a dotted configuration path.

Any path in the merged configuration may be read, including whole sections,
which are printed as JSON.`,
	Example: `  # Get the webhook URL
  webhook-notifier config get notifiers.webhook.url

  # Get the whole desktop section
  webhook-notifier config get notifiers.desktop`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List all settable configuration keys",
	Long:  `Display every key accepted by config set with its type and description.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigKeys,
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configKeysCmd)

	configSetCmd.Flags().Bool("user", false, "Set in the user-level config file")
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	if _, err := cfgpkg.GetKeySchema(key); err != nil {
		return formatUnknownKeyError(key)
	}

	filePath, err := resolveSetPath(cmd)
	if err != nil {
		return err
	}
	if err := cfgpkg.SetConfigValue(filePath, key, value); err != nil {
		return fmt.Errorf("setting config value: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, filePath)
	return nil
}

// resolveSetPath picks the file config set writes to.
func resolveSetPath(cmd *cobra.Command) (string, error) {
	if useUser, _ := cmd.Flags().GetBool("user"); useUser {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return cfgpkg.UserConfigPath(home), nil
	}

	if path, _ := cmd.Flags().GetString(shared.ConfigFlag); path != "" {
		return path, nil
	}
	if m, err := shared.LoadConfig(cmd); err == nil && isYAML(m.Path()) {
		return m.Path(), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	return filepath.Join(wd, cfgpkg.FileBaseName+".yaml"), nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	out := cmd.OutOrStdout()

	m, err := shared.LoadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	value, err := m.Get(key)
	if errors.Is(err, cfgpkg.ErrKeyNotFound) {
		return formatUnknownKeyError(key)
	}
	if err != nil {
		return err
	}

	switch v := value.(type) {
	case map[string]interface{}, []interface{}, []string:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize value: %w", err)
		}
		fmt.Fprintln(out, string(data))
	default:
		fmt.Fprintln(out, v)
	}
	return nil
}

func runConfigKeys(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	keys := make([]string, 0, len(cfgpkg.KnownKeys))
	for k := range cfgpkg.KnownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		schema := cfgpkg.KnownKeys[k]
		typeName := schema.Type.String()
		if len(schema.AllowedValues) > 0 {
			typeName = strings.Join(schema.AllowedValues, "|")
		}
		fmt.Fprintf(out, "%-45s %-22s %s\n", k, typeName, schema.Description)
	}
	return nil
}

func formatUnknownKeyError(key string) error {
	var similar []string
	prefix := key
	if i := strings.LastIndex(key, "."); i > 0 {
		prefix = key[:i]
	}
	for k := range cfgpkg.KnownKeys {
		if strings.HasPrefix(k, prefix) {
			similar = append(similar, k)
		}
	}
	sort.Strings(similar)

	msg := fmt.Sprintf("unknown configuration key: %s", key)
	if len(similar) > 0 {
		msg += "\nDid you mean one of:\n  " + strings.Join(similar, "\n  ")
	}
	return errors.New(msg)
}
