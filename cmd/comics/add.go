package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <path-word>",
	Short: "Queue a comic for download",
	Long:  "Look a comic up by its path word and queue it with every chapter of a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		group, _ := cmd.Flags().GetString("group")

		controller, err := openController()
		if err != nil {
			return err
		}
		defer controller.Close()

		fmt.Printf("🔍 Looking up '%s'...\n", args[0])
		comic, added, err := controller.AddComic(cmd.Context(), args[0], group)
		if err != nil {
			return err
		}

		fmt.Printf("✅ Queued '%s' with %d new chapters\n", comic.Name, added)
		fmt.Println("💡 Start downloading with: comics run")
		return nil
	},
}

func init() {
	addCmd.Flags().StringP("group", "g", "default", "chapter group path word")
}
