package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/RivanJarjes/score-mvp-prototype/api"
	"github.com/RivanJarjes/score-mvp-prototype/config"
	"github.com/RivanJarjes/score-mvp-prototype/tui"
)

func main() {
	session := flag.String("session", "", "open a specific session on startup")
	flag.Parse()

	config.LoadEnv()
	config.InitLogger()

	client := api.NewClient(config.APIURL())

	m := tui.NewModel(client, *session)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
