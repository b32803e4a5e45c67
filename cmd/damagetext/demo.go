package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"

	"github.com/sparroh/disablefloatingtext/pkg/hostbridge"
)

var demoTargets = []struct {
	class    string
	isPlayer bool
}{
	{"Bug", false},
	{"Turret", false},
	{"Drone", false},
	{"Player", true},
	{"", false},
}

// runDemo drives the extension through the host bridge the way the game does:
// texts spawn every frame, the player turns enemy text off halfway through and
// back on near the end, and the host recycles some texts on its own.
func runDemo(w io.Writer, frames int) {
	rng := rand.New(rand.NewPCG(1, 2))
	next := 1

	call := func(command string, args ...string) string {
		out := hostbridge.Call(command, args)
		Logger.Debug("demo call", "command", command, "reply", out)
		return out
	}

	fmt.Fprintln(w, call(":VERSION:"))

	for frame := range frames {
		switch frame {
		case frames / 2, frames - frames/8:
			fmt.Fprintf(w, "frame %d toggle -> %s\n", frame, call(":TOGGLE:"))
		}

		for range rng.IntN(4) {
			t := demoTargets[rng.IntN(len(demoTargets))]
			poolName := "hits"
			if rng.IntN(5) == 0 {
				poolName = ""
			}
			call(":SPAWN:", strconv.Itoa(next), t.class, strconv.FormatBool(t.isPlayer), poolName)

			if rng.IntN(3) == 0 {
				call(":DAMAGE:", t.class, strconv.FormatBool(t.isPlayer))
			}
			next++
		}

		// the host lets some old texts fade out by itself
		if next > 10 && rng.IntN(6) == 0 {
			call(":RECYCLE:", strconv.Itoa(rng.IntN(next-1)+1))
		}

		if hidden := call(":FRAME:"); hidden != `["ok", []]` {
			fmt.Fprintf(w, "frame %d hidden %s\n", frame, hidden)
		}
	}

	call(":LOG:", "info", "runDemo", fmt.Sprintf("demo ran %d frames, %d spawns", frames, next-1))
	fmt.Fprintln(w, call(":STATUS:"))
}
