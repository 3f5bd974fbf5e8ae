package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/dkzhang/stockchat/internal/storage/sqlite"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1).
		MarginBottom(1)

	userStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6"))

	assistantStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#10B981"))

	successStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)

	dividerStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))
)

func printTitle() {
	fmt.Println(titleStyle.Render("📊 StockChat"))
}

func printMessage(msg sqlite.ChatMessage) {
	if msg.Role == sqlite.RoleUser {
		fmt.Printf("%s %s\n", userStyle.Render("User:"), msg.Text)
	} else {
		fmt.Printf("%s %s\n", assistantStyle.Render("Assistant:"), msg.Text)
	}
}

func printDivider() {
	fmt.Println(dividerStyle.Render("────────────────────────────────────────"))
}

func printError(msg string) {
	fmt.Println(errorStyle.Render(msg))
}

func printSuccess(msg string) {
	fmt.Println(successStyle.Render(msg))
}
