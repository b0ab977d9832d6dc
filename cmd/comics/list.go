package cmd

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the comics in the backlog",
	Long:  "Display every queued comic with its download progress in a formatted table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		controller, err := openController()
		if err != nil {
			return err
		}
		defer controller.Close()

		comics, err := controller.Library(cmd.Context())
		if err != nil {
			return err
		}

		if len(comics) == 0 {
			fmt.Println("📚 The backlog is empty. Use 'comics add <path-word>' to queue a comic.")
			return nil
		}

		columns := []table.Column{
			{Title: "Path word", Width: 24},
			{Title: "Name", Width: 30},
			{Title: "Status", Width: 8},
			{Title: "Chapters", Width: 8},
			{Title: "Pages", Width: 8},
			{Title: "Done", Width: 8},
			{Title: "Failed", Width: 8},
		}

		rows := []table.Row{}
		for _, comic := range comics {
			rows = append(rows, table.Row{
				truncateString(comic.PathWord, 22),
				truncateString(comic.Name, 28),
				comic.Status.String(),
				fmt.Sprintf("%d", comic.Chapters),
				fmt.Sprintf("%d", comic.TotalPages),
				fmt.Sprintf("%d", comic.SuccessPages),
				fmt.Sprintf("%d", comic.FailedPages),
			})
		}

		t := table.New(
			table.WithColumns(columns),
			table.WithRows(rows),
			table.WithFocused(false),
			table.WithHeight(len(rows)),
		)

		s := table.DefaultStyles()
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
		s.Selected = lipgloss.NewStyle()
		t.SetStyles(s)

		fmt.Printf("\n📚 Backlog (%d comics)\n\n", len(comics))
		fmt.Println(t.View())
		return nil
	},
}

func truncateString(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
