package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <path-word>",
	Short: "Retry the failed chapters and pages of a comic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		controller, err := openController()
		if err != nil {
			return err
		}
		defer controller.Close()

		if err := controller.ResetFailed(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("🔁 Failed work of '%s' queued again\n", args[0])
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <path-word>",
	Short: "Remove a comic from the backlog",
	Long:  "Remove a comic with its chapters and pages from the backlog. Downloaded files are kept.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		controller, err := openController()
		if err != nil {
			return err
		}
		defer controller.Close()

		if err := controller.RemoveComic(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("🗑  Removed '%s'\n", args[0])
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <path-word>",
	Short: "Compile the downloaded pages of a comic into an EPub",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = filepath.Join(cfg.DataDir, "exports")
		}

		controller, err := openController()
		if err != nil {
			return err
		}
		defer controller.Close()

		path, err := controller.Export(cmd.Context(), args[0], output)
		if err != nil {
			return err
		}
		fmt.Printf("📖 EPub written to %s\n", path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "output directory (default <data dir>/exports)")
}
