package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/OliveiraNt/polyglot/internal/config"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "polyglot.yml"

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a polyglot.yml with the default settings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := defaultConfigFile
	if len(args) == 1 {
		path = args[0]
	}

	if !initForce {
		_, err := os.Stat(path)
		if err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite it", path)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	if err := config.WriteConfig(path, config.Defaults()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
