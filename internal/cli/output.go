package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/cory-johannsen/pokemcp/internal/game/combat"
)

var (
	titleColor  = color.New(color.FgCyan, color.Bold)
	turnColor   = color.New(color.FgYellow, color.Bold)
	faintColor  = color.New(color.FgRed)
	winnerColor = color.New(color.FgGreen, color.Bold)
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printBattle writes the battle log, colouring turn headers, faints and the
// winner line, followed by the turn count.
func printBattle(w io.Writer, r combat.Result) {
	titleColor.Fprintf(w, "%s (%d HP) vs %s (%d HP)\n",
		r.Pokemon1, r.InitialHP[r.Pokemon1], r.Pokemon2, r.InitialHP[r.Pokemon2])
	fmt.Fprintln(w, strings.Repeat("=", 40))
	last := len(r.Log) - 1
	for i, line := range r.Log {
		switch {
		case i == last && strings.HasSuffix(line, " wins!"):
			winnerColor.Fprintln(w, line)
		case strings.HasPrefix(line, "Turn "):
			turnColor.Fprintln(w, line)
		case strings.HasSuffix(line, " fainted!"):
			faintColor.Fprintln(w, line)
		default:
			fmt.Fprintln(w, "  "+line)
		}
	}
	unit := "turns"
	if r.Turns == 1 {
		unit = "turn"
	}
	fmt.Fprintf(w, "Battle finished in %d %s.\n", r.Turns, unit)
}
