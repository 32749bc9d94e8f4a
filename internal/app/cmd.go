package app

import (
	"fmt"
	"strconv"
)

// Command is the mode the binary starts in.
type Command string

const (
	// CommandServe runs the HTTP API and the signaling endpoint.
	CommandServe Command = "serve"
	// CommandMigrate applies, rolls back or reports schema migrations.
	CommandMigrate Command = "migrate"
)

// MigrateAction is the migrate subcommand's verb.
type MigrateAction string

const (
	MigrateUp      MigrateAction = "up"
	MigrateDown    MigrateAction = "down"
	MigrateVersion MigrateAction = "version"
)

// Invocation is a parsed command line.
type Invocation struct {
	Command Command
	Action  MigrateAction
	// Steps is how many migrations "migrate down" rolls back.
	Steps int
}

// ParseArgs parses os.Args[1:]. No arguments means serve.
//
//	hirelens [serve]
//	hirelens migrate [up | down [steps] | version]
func ParseArgs(args []string) (Invocation, error) {
	if len(args) == 0 || args[0] == string(CommandServe) {
		if len(args) > 1 {
			return Invocation{}, fmt.Errorf("serve takes no arguments, got %q", args[1:])
		}
		return Invocation{Command: CommandServe}, nil
	}
	if args[0] != string(CommandMigrate) {
		return Invocation{}, fmt.Errorf("unknown command %q (want serve or migrate)", args[0])
	}

	inv := Invocation{Command: CommandMigrate, Action: MigrateUp}
	rest := args[1:]
	if len(rest) == 0 {
		return inv, nil
	}
	switch MigrateAction(rest[0]) {
	case MigrateUp, MigrateVersion:
		inv.Action = MigrateAction(rest[0])
		if len(rest) > 1 {
			return Invocation{}, fmt.Errorf("migrate %s takes no arguments", rest[0])
		}
	case MigrateDown:
		inv.Action = MigrateDown
		inv.Steps = 1
		if len(rest) > 2 {
			return Invocation{}, fmt.Errorf("migrate down takes at most one argument")
		}
		if len(rest) == 2 {
			n, err := strconv.Atoi(rest[1])
			if err != nil || n <= 0 {
				return Invocation{}, fmt.Errorf("migrate down: steps must be a positive integer, got %q", rest[1])
			}
			inv.Steps = n
		}
	default:
		return Invocation{}, fmt.Errorf("unknown migrate action %q (want up, down or version)", rest[0])
	}
	return inv, nil
}
