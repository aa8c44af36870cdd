package main

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/farkle/cmd/farkle/shared"
	"github.com/lox/farkle/internal/client"
	"github.com/lox/farkle/internal/tui"
)

// ClientCmd runs the interactive terminal client
type ClientCmd struct {
	Server string `kong:"default='http://localhost:8080',help='Server URL'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
}

func (c *ClientCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	networkClient := client.NewClient(c.Server, logger)
	if err := networkClient.Connect(); err != nil {
		return err
	}
	defer func() { _ = networkClient.Disconnect() }()

	model := tui.NewModel(networkClient, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	tui.Attach(networkClient, program)

	_, err := program.Run()
	return err
}
