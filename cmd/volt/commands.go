package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/voltcfg/volt/internal/document"
	"github.com/voltcfg/volt/internal/schema"
	"github.com/voltcfg/volt/internal/tui"
)

// Command flags
var (
	configPath     string
	exportFormat   string
	exportDefaults bool
	listSection    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to settings.json (defaults to the per-user config directory)")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(unsetCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(exportCmd)
}

// settingsPath resolves the document location, honoring --config.
func settingsPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return document.DefaultPath()
}

// loadDocument opens the settings document for the CLI commands.
func loadDocument() (*document.Document, error) {
	path, err := settingsPath()
	if err != nil {
		return nil, err
	}
	return document.Load(path, schema.Default())
}

func runEditor(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the interactive editor needs a terminal; see 'volt --help' for scriptable commands")
	}

	doc, err := loadDocument()
	if err != nil {
		return err
	}
	return tui.Run(doc)
}

// getCmd prints one setting
var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a setting's effective value",
	Long: `Print the effective value of a setting as JSON.

The effective value is the explicit value from settings.json when one
is set, or the schema default otherwise. Unknown keys print null
unless explicitly set.`,
	Example: `  # A known setting, explicit or default
  volt get amp.updates.mode

  # An unknown key set by hand
  volt get amp.experimental.modes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument()
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(doc.Get(args[0]), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding value: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

// setCmd writes one setting
var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting and save",
	Long: `Set a setting to the given value and save the document.

The value is parsed as JSON first; input that is not valid JSON is
stored as a plain string, so quoting is only needed for structured
values. Known keys are validated against the schema before saving.`,
	Example: `  volt set amp.notifications.enabled false
  volt set amp.terminal.theme solarized-dark
  volt set amp.tools.disable '["browser"]'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument()
		if err != nil {
			return err
		}

		key := args[0]
		value := parseValueArg(args[1])
		if err := doc.Schema().Validate(key, value); err != nil {
			return err
		}

		doc.Set(key, value)
		if err := doc.Save(); err != nil {
			return err
		}
		fmt.Printf("Set %s\n", key)
		return nil
	},
}

// unsetCmd removes one setting
var unsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a setting's explicit value and save",
	Long: `Remove the explicit value of a setting and save the document.

Known keys revert to their schema default; unknown keys are deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument()
		if err != nil {
			return err
		}

		doc.Remove(args[0])
		if !doc.Dirty() {
			fmt.Printf("%s has no explicit value\n", args[0])
			return nil
		}
		if err := doc.Save(); err != nil {
			return err
		}
		fmt.Printf("Unset %s\n", args[0])
		return nil
	},
}

// listCmd shows all settings grouped by section
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings with their effective values",
	Long: `List every known setting grouped by section, plus any unknown
keys present in the document. Settings with an explicit value are
marked with *.`,
	Example: `  volt list
  volt list --section tools`,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument()
		if err != nil {
			return err
		}

		sections, err := selectedSections()
		if err != nil {
			return err
		}

		s := doc.Schema()
		for _, section := range sections {
			defs := s.ForSection(section)
			unknown := []string{}
			if section == schema.Advanced {
				unknown = doc.UnknownKeys()
			}
			if len(defs) == 0 && len(unknown) == 0 {
				continue
			}

			fmt.Printf("%s:\n", section.Label())
			for _, def := range defs {
				marker := " "
				if _, set := doc.GetRaw(def.Key); set {
					marker = "*"
				}
				fmt.Printf("  %s %-45s %s\n", marker, def.Key, compactJSON(doc.Get(def.Key)))
			}
			for _, key := range unknown {
				fmt.Printf("  * %-45s %s\n", key, compactJSON(doc.Get(key)))
			}
			fmt.Println()
		}
		return nil
	},
}

// selectedSections resolves the --section filter to the sections the
// list command should print, in display order.
func selectedSections() ([]schema.Section, error) {
	if listSection == "" {
		return schema.AllSections(), nil
	}
	for _, section := range schema.AllSections() {
		if strings.EqualFold(section.Label(), listSection) {
			return []schema.Section{section}, nil
		}
	}
	labels := make([]string, 0, len(schema.AllSections()))
	for _, section := range schema.AllSections() {
		labels = append(labels, section.Label())
	}
	return nil, fmt.Errorf("unknown section %q, expected one of: %s",
		listSection, strings.Join(labels, ", "))
}

// pathCmd prints the document location
var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := settingsPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

// exportCmd dumps the effective configuration
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the configuration",
	Long: `Export the configuration as a single document.

By default only values explicitly set in settings.json are exported,
unknown keys included. With --defaults, every known setting is filled
in at its explicit or default value.`,
	Example: `  volt export
  volt export --defaults
  volt export --format yaml > settings.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument()
		if err != nil {
			return err
		}

		merged := make(map[string]any)
		if exportDefaults {
			for _, key := range doc.Schema().Keys() {
				merged[key] = doc.Get(key)
			}
		}
		for _, key := range doc.Keys() {
			merged[key] = doc.Get(key)
		}

		switch exportFormat {
		case "json":
			out, err := json.MarshalIndent(merged, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding export: %w", err)
			}
			fmt.Println(string(out))
		case "yaml":
			out, err := yaml.Marshal(plainValue(merged))
			if err != nil {
				return fmt.Errorf("encoding export: %w", err)
			}
			fmt.Print(string(out))
		default:
			return fmt.Errorf("unknown format %q, expected json or yaml", exportFormat)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format (json, yaml)")
	exportCmd.Flags().BoolVar(&exportDefaults, "defaults", false,
		"Include schema defaults for settings with no explicit value")
	listCmd.Flags().StringVar(&listSection, "section", "",
		"Only list the named section (general, permissions, tools, mcps, advanced)")
}

// parseValueArg interprets a command-line value: valid JSON is taken
// as-is, anything else is a plain string.
func parseValueArg(raw string) any {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var parsed any
	if err := dec.Decode(&parsed); err == nil && !dec.More() {
		return parsed
	}
	return raw
}

// plainValue rewrites json.Number into native numeric types so the
// YAML encoder emits numbers instead of quoted strings.
func plainValue(value any) any {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = plainValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = plainValue(item)
		}
		return out
	default:
		return value
	}
}

// compactJSON renders a value on one line for the list view.
func compactJSON(value any) string {
	out, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(out)
}
