package shell

import "strings"

// commandKind enumerates every operation the shell can dispatch to the
// engine and navigator. Input lines are parsed into commands first; the
// dispatcher is a plain switch over this enum.
type commandKind int

const (
	cmdUnknown commandKind = iota
	cmdHelp
	cmdList
	cmdPlay
	cmdPause
	cmdResume
	cmdToggle
	cmdStop
	cmdNext
	cmdPrev
	cmdSeek
	cmdSearch
	cmdFind
	cmdShuffle
	cmdRepeat
	cmdEq
	cmdVolume
	cmdStatus
	cmdQuit
)

type command struct {
	kind commandKind
	args []string
}

var commandNames = map[string]commandKind{
	"help":    cmdHelp,
	"h":       cmdHelp,
	"?":       cmdHelp,
	"list":    cmdList,
	"ls":      cmdList,
	"play":    cmdPlay,
	"pause":   cmdPause,
	"resume":  cmdResume,
	"toggle":  cmdToggle,
	"t":       cmdToggle,
	"stop":    cmdStop,
	"next":    cmdNext,
	"n":       cmdNext,
	"prev":    cmdPrev,
	"b":       cmdPrev,
	"seek":    cmdSeek,
	"search":  cmdSearch,
	"/":       cmdSearch,
	"find":    cmdFind,
	"shuffle": cmdShuffle,
	"repeat":  cmdRepeat,
	"eq":      cmdEq,
	"vol":     cmdVolume,
	"volume":  cmdVolume,
	"status":  cmdStatus,
	"quit":    cmdQuit,
	"exit":    cmdQuit,
	"q":       cmdQuit,
}

func parseCommand(line string) command {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{kind: cmdUnknown}
	}

	kind, ok := commandNames[strings.ToLower(fields[0])]
	if !ok {
		return command{kind: cmdUnknown, args: fields}
	}
	return command{kind: kind, args: fields[1:]}
}
