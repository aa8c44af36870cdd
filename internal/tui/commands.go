package tui

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is a parsed player instruction from the input line.
type Command struct {
	Name string
	Code string   // join
	Who  string   // create, join
	Dice []int    // keep, zero-based die indices
	Args []string // raw arguments, for help output
}

// ParseCommand parses one input line into a command. Die positions are
// entered one-based and converted to zero-based indices.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	name := strings.ToLower(fields[0])
	args := fields[1:]

	switch name {
	case "create":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("usage: create <name>")
		}
		return Command{Name: "create", Who: args[0]}, nil

	case "join":
		if len(args) != 2 {
			return Command{}, fmt.Errorf("usage: join <code> <name>")
		}
		return Command{Name: "join", Code: strings.ToUpper(args[0]), Who: args[1]}, nil

	case "roll", "r":
		return Command{Name: "roll"}, nil

	case "keep", "k":
		if len(args) == 0 {
			return Command{}, fmt.Errorf("usage: keep <die> [die...]")
		}
		dice := make([]int, 0, len(args))
		for _, arg := range args {
			pos, err := strconv.Atoi(arg)
			if err != nil || pos < 1 || pos > 6 {
				return Command{}, fmt.Errorf("die positions are 1-6, got %q", arg)
			}
			dice = append(dice, pos-1)
		}
		return Command{Name: "keep", Dice: dice}, nil

	case "bank", "b":
		return Command{Name: "bank"}, nil

	case "new":
		return Command{Name: "new"}, nil

	case "help", "h", "?":
		return Command{Name: "help"}, nil

	case "quit", "q", "exit":
		return Command{Name: "quit"}, nil

	default:
		return Command{}, fmt.Errorf("unknown command %q, try help", name)
	}
}

// HelpText lists the available commands.
func HelpText() string {
	return strings.Join([]string{
		"create <name>       create a room and take seat 1",
		"join <code> <name>  join a room (reuse your name to reconnect)",
		"roll                roll the free dice",
		"keep <die> [die..]  set aside dice by position, e.g. keep 1 3 5",
		"bank                bank your turn points and pass the turn",
		"new                 start a rematch after a finished game",
		"quit                leave",
	}, "\n")
}
