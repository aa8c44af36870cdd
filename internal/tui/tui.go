// Package tui implements the interactive terminal client for the dice game.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/farkle/internal/client"
	"github.com/lox/farkle/internal/server"
)

// Messages pushed into the program from the network client.

type RoomUpdateMsg struct {
	Update server.RoomUpdateData
}

type JoinedMsg struct {
	Joined server.RoomJoinedData
}

type ServerErrorMsg struct {
	Err server.ErrorData
}

// Model is the Bubble Tea model for the dice game client
type Model struct {
	client *client.Client
	logger *log.Logger

	logViewport viewport.Model
	input       textinput.Model

	gameLog []string
	update  *server.RoomUpdateData
	seat    int
	code    string

	width    int
	height   int
	quitting bool
}

// NewModel creates the TUI model around a connected client
func NewModel(c *client.Client, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "create <name>, join <code> <name>, roll, keep 1 3, bank"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.Prompt = "> "

	return &Model{
		client:      c,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		input:       ti,
		seat:        -1,
		gameLog:     []string{InfoStyle.Render("Welcome. Type help for commands.")},
	}
}

// Attach registers network handlers that feed the running program
func Attach(c *client.Client, p *tea.Program) {
	c.AddEventHandler(server.MessageTypeRoomUpdate, func(msg *server.Message) {
		var update server.RoomUpdateData
		if err := server.DecodeData(msg, &update); err != nil {
			return
		}
		p.Send(RoomUpdateMsg{Update: update})
	})

	c.AddEventHandler(server.MessageTypeRoomJoined, func(msg *server.Message) {
		var joined server.RoomJoinedData
		if err := server.DecodeData(msg, &joined); err != nil {
			return
		}
		p.Send(JoinedMsg{Joined: joined})
	})

	c.AddEventHandler(server.MessageTypeError, func(msg *server.Message) {
		var errData server.ErrorData
		if err := server.DecodeData(msg, &errData); err != nil {
			return
		}
		p.Send(ServerErrorMsg{Err: errData})
	})
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case JoinedMsg:
		m.seat = msg.Joined.Seat
		m.code = msg.Joined.Code
		m.appendLog(SuccessStyle.Render(fmt.Sprintf("Joined room %s as seat %d", msg.Joined.Code, msg.Joined.Seat+1)))

	case RoomUpdateMsg:
		m.applyUpdate(msg.Update)

	case ServerErrorMsg:
		m.appendLog(ErrorStyle.Render(fmt.Sprintf("Error: %s", msg.Err.Message)))

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line != "" {
				if cmd := m.runCommand(line); cmd != nil {
					return m, cmd
				}
			}
		case "pgup":
			m.logViewport.HalfPageUp()
		case "pgdown":
			m.logViewport.HalfPageDown()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// runCommand executes a parsed input line against the network client
func (m *Model) runCommand(line string) tea.Cmd {
	command, err := ParseCommand(line)
	if err != nil {
		m.appendLog(ErrorStyle.Render(err.Error()))
		return nil
	}

	switch command.Name {
	case "create":
		err = m.client.CreateRoom(command.Who)
	case "join":
		err = m.client.JoinRoom(command.Code, command.Who)
	case "roll":
		err = m.client.Roll()
	case "keep":
		err = m.client.Keep(command.Dice)
	case "bank":
		err = m.client.Bank()
	case "new":
		err = m.client.NewGame()
	case "help":
		m.appendLog(InfoStyle.Render(HelpText()))
	case "quit":
		m.quitting = true
		return tea.Sequence(tea.ClearScreen, tea.Quit)
	}

	if err != nil {
		m.appendLog(ErrorStyle.Render(err.Error()))
	}
	return nil
}

// applyUpdate records a fresh room snapshot and surfaces its log lines
func (m *Model) applyUpdate(update server.RoomUpdateData) {
	if m.update != nil && m.update.Game.LastAction != update.Game.LastAction && update.Game.LastAction != "" {
		m.appendLog(GameLogStyle.Render(update.Game.LastAction))
	}
	m.update = &update
}

func (m *Model) appendLog(line string) {
	m.gameLog = append(m.gameLog, line)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.GotoBottom()
}

func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	boardHeight := lipgloss.Height(m.renderBoard())
	m.logViewport.Width = m.width - 2
	m.logViewport.Height = max(3, m.height-boardHeight-4)
	m.input.Width = m.width - 4
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderBoard(),
		m.logViewport.View(),
		m.input.View(),
	)
}

// renderBoard renders the header, seats and dice for the current snapshot
func (m *Model) renderBoard() string {
	if m.update == nil {
		return HeaderStyle.Render(" FARKLE ") + "\n" + InfoStyle.Render("Not in a room yet.")
	}

	update := *m.update
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(fmt.Sprintf(" FARKLE  room %s ", update.Code)))
	b.WriteString("\n")

	for i, seat := range update.Seats {
		marker := "  "
		if update.Game.Phase != "waiting" && update.Game.Phase != "game_over" && i == update.Game.ActiveSeat {
			marker = TurnStyle.Render("->")
		}
		name := seat.Name
		if name == "" {
			name = "(empty)"
		}
		presence := ""
		if seat.Name != "" && !seat.Online {
			presence = InfoStyle.Render(" offline")
		}
		you := ""
		if i == m.seat {
			you = InfoStyle.Render(" (you)")
		}
		b.WriteString(fmt.Sprintf("%s %-20s %6d%s%s\n", marker, name, seat.Score, you, presence))
	}

	b.WriteString(RenderDice(update.Game))
	b.WriteString("\n")

	switch update.Game.Phase {
	case "waiting":
		b.WriteString(InfoStyle.Render("Waiting for an opponent. Share the room code."))
	case "game_over":
		if update.Game.Winner != nil {
			b.WriteString(SuccessStyle.Render(fmt.Sprintf("%s wins! Type new for a rematch.", update.Seats[*update.Game.Winner].Name)))
		}
	default:
		b.WriteString(TurnStyle.Render(fmt.Sprintf("Turn points: %d", update.Game.TurnPoints)))
	}

	return b.String()
}

// RenderDice renders the dice row. Kept dice are dimmed; positions are
// one-based to match keep input.
func RenderDice(state server.GameStateData) string {
	var parts []string
	for i, die := range state.Dice {
		if die == 0 {
			parts = append(parts, InfoStyle.Render("[ ]"))
			continue
		}
		face := fmt.Sprintf("[%d]", die)
		if i < len(state.KeptMask) && state.KeptMask[i] {
			parts = append(parts, KeptDieStyle.Render(face))
		} else {
			parts = append(parts, DieStyle.Render(face))
		}
	}
	return strings.Join(parts, " ")
}
