package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dotcommander/glsllint/internal/config"
	"github.com/dotcommander/glsllint/internal/cue"
)

var initForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration glsllint would use, after merging defaults, the
.glsllintrc file, GLSLLINT_* environment variables and flags.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runConfigShow(cmd.OutOrStdout()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Write a config file with the default settings",
	Long: `Write the default configuration to .glsllintrc.yaml in the project root, or
to the given file. JSON is written for .json files.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runConfigInit(cmd.OutOrStdout(), args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Check a config file against the schema",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		code, err := runConfigCheck(cmd.OutOrStdout(), args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
			return
		}
		if code != 0 {
			exitFunc(code)
		}
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(w io.Writer) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}

	if cfg.ConfigFile != "" {
		fmt.Fprintf(w, "# from %s\n", cfg.ConfigFile)
	}
	data, err := yaml.Marshal(cfg.AsMap())
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func runConfigInit(w io.Writer, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}

	path := filepath.Join(root, ".glsllintrc.yaml")
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg, err := config.LoadConfig(root)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	if err := config.SaveConfig(cfg, path); err != nil {
		return err
	}

	fmt.Fprintf(w, "Wrote %s\n", path)
	return nil
}

// runConfigCheck returns 1 when the file has schema issues.
func runConfigCheck(w io.Writer, args []string) (int, error) {
	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		cfg, err := loadRunConfig()
		if err != nil {
			return 0, err
		}
		path = cfg.ConfigFile
	}
	if path == "" {
		fmt.Fprintln(w, "No config file found")
		return 0, nil
	}

	v := cue.NewValidator()
	if err := v.LoadSchemas(); err != nil {
		return 0, err
	}
	issues, err := v.ValidateFile(path)
	if err != nil {
		return 0, err
	}
	if len(issues) == 0 {
		fmt.Fprintf(w, "%s: ok\n", path)
		return 0, nil
	}
	for _, issue := range issues {
		fmt.Fprintln(w, issue.String())
	}
	return 1, nil
}
