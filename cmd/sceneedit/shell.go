package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/roomkit/sceneedit/internal/dispatcher"
	"github.com/roomkit/sceneedit/internal/handlers"
	"github.com/roomkit/sceneedit/internal/journal"
	"github.com/roomkit/sceneedit/internal/layout"
	"github.com/roomkit/sceneedit/internal/parser"
	"github.com/roomkit/sceneedit/internal/scene"
	"github.com/roomkit/sceneedit/internal/util"
	"github.com/roomkit/sceneedit/pkg/core"
)

// Commands handled by the shell itself rather than the scene handlers.
const (
	cmdHelp    = ":HELP:"
	cmdHistory = ":HISTORY:"
	cmdJournal = ":JOURNAL:"
	cmdInvalid = ":INVALID:"
)

// verbs maps typed words to dispatcher commands.
var verbs = map[string]string{
	"add":        handlers.CmdObjectAdd,
	"update":     handlers.CmdObjectUpdate,
	"set":        handlers.CmdObjectUpdate,
	"remove":     handlers.CmdObjectRemove,
	"rm":         handlers.CmdObjectRemove,
	"select":     handlers.CmdSelect,
	"pick":       handlers.CmdPick,
	"undo":       handlers.CmdUndo,
	"redo":       handlers.CmdRedo,
	"list":       handlers.CmdSceneList,
	"ls":         handlers.CmdSceneList,
	"collisions": handlers.CmdSceneCollision,
	"area":       handlers.CmdSceneArea,
	"presets":    handlers.CmdCatalogList,
	"history":    cmdHistory,
	"journal":    cmdJournal,
	"help":       cmdHelp,
}

const helpText = `commands:
  add <preset> [x,y,z] [rotation]     place a preset (rotation in radians or 90deg)
  update <id> key=value...            name, pos, rot, color, meta.<key>
  remove <id>                         delete an object
  select <id>|none                    change the selection
  pick <x> <z>                        select the object at a floor point
  undo | redo                         step through history
  list                                show the scene
  collisions | area                   floor plan checks
  presets [category]                  show the catalog
  history | journal [n]               show history depth or journal entries
  help | quit`

var errQuit = errors.New("quit")

// historyInfo is the result of the history command.
type historyInfo struct {
	Mode  scene.Mode
	Limit int
	Undo  int
	Redo  int
}

// shell turns input lines into events and prints their results.
type shell struct {
	store   *scene.Store
	journal *journal.Journal
	out     io.Writer
	errOut  io.Writer

	// only touched from the dispatcher loop
	failed int
}

func (sh *shell) register(d *dispatcher.Dispatcher) {
	d.Register(cmdHelp, func(dispatcher.Event) (any, error) { return helpText, nil })
	d.Register(cmdHistory, sh.handleHistory)
	d.Register(cmdJournal, sh.handleJournal)
	d.Register(cmdInvalid, func(e dispatcher.Event) (any, error) {
		return nil, errors.New(strings.Join(e.Args, " "))
	})
}

func (sh *shell) handleHistory(dispatcher.Event) (any, error) {
	u, r := sh.store.HistoryDepth()
	return historyInfo{Mode: sh.store.Mode(), Limit: sh.store.HistoryLimit(), Undo: u, Redo: r}, nil
}

func (sh *shell) handleJournal(e dispatcher.Event) (any, error) {
	if sh.journal == nil {
		return nil, errors.New("journal is disabled")
	}
	limit := 20
	if len(e.Args) > 0 {
		n, err := strconv.Atoi(e.Args[0])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("journal: bad limit %q", e.Args[0])
		}
		limit = n
	}
	return sh.journal.Entries(limit)
}

// parseLine converts one input line to an event. It returns errQuit for
// quit and ok=false for blank or comment lines.
func parseLine(line string) (e dispatcher.Event, ok bool, err error) {
	words, err := util.SplitArgs(line)
	if err != nil {
		return dispatcher.Event{Command: cmdInvalid, Args: []string{err.Error()}}, true, nil
	}
	if len(words) == 0 {
		return dispatcher.Event{}, false, nil
	}

	verb := strings.ToLower(words[0])
	if verb == "quit" || verb == "exit" {
		return dispatcher.Event{}, false, errQuit
	}

	cmd, found := verbs[verb]
	if !found {
		return dispatcher.Event{Command: cmdInvalid, Args: []string{"unknown command", words[0] + ";", "try help"}}, true, nil
	}
	return dispatcher.Event{Command: cmd, Args: words[1:]}, true, nil
}

// read feeds events until input ends, quit is typed or ctx is done.
// It always closes events.
func (sh *shell) read(ctx context.Context, r io.Reader, events chan<- dispatcher.Event) {
	defer close(events)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		e, ok, err := parseLine(scanner.Text())
		if errors.Is(err, errQuit) {
			return
		}
		if !ok {
			continue
		}
		select {
		case events <- e:
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil {
		select {
		case events <- dispatcher.Event{Command: cmdInvalid, Args: []string{"read input:", err.Error()}}:
		case <-ctx.Done():
		}
	}
}

// reply prints one result. It runs on the dispatcher loop.
func (sh *shell) reply(r dispatcher.Result) {
	if r.Err != nil {
		sh.failed++
		fmt.Fprintln(sh.errOut, "error:", r.Err)
		return
	}
	render(sh.out, r.Event.Command, r.Value)
}

func render(w io.Writer, cmd string, v any) {
	switch r := v.(type) {
	case core.PlacedObject:
		verb := "updated"
		if cmd == handlers.CmdObjectAdd {
			verb = "added"
		}
		fmt.Fprintf(w, "%s %s (%s) at %s\n", verb, r.ID, r.Name, parser.FormatVec3(r.Position))

	case string:
		switch cmd {
		case handlers.CmdObjectRemove:
			fmt.Fprintf(w, "removed %s\n", r)
		case handlers.CmdSelect, handlers.CmdPick:
			if r == "" {
				r = "none"
			}
			fmt.Fprintf(w, "selected: %s\n", r)
		default:
			fmt.Fprintln(w, r)
		}

	case bool:
		name := strings.ToLower(strings.Trim(cmd, ":"))
		if r {
			fmt.Fprintf(w, "%s: ok\n", name)
		} else {
			fmt.Fprintf(w, "%s: nothing to %s\n", name, name)
		}

	case float64:
		fmt.Fprintf(w, "occupied floor area: %.2f m²\n", r)

	case core.Snapshot:
		renderSnapshot(w, r)

	case []layout.Collision:
		if len(r) == 0 {
			fmt.Fprintln(w, "no collisions")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "A\tB\tOVERLAP")
		for _, c := range r {
			fmt.Fprintf(tw, "%s\t%s\t%.3f\n", c.A, c.B, c.Area)
		}
		tw.Flush()

	case []core.Preset:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tCATEGORY\tSIZE (W×H×D)\tCOLOR")
		for _, p := range r {
			fmt.Fprintf(tw, "%s\t%s\t%g×%g×%g\t%s\n", p.Name, p.Category, p.Size.Width(), p.Size.Height(), p.Size.Depth(), p.Color)
		}
		tw.Flush()

	case historyInfo:
		limit := fmt.Sprint(r.Limit)
		if r.Limit == 0 {
			limit = "unbounded"
		}
		fmt.Fprintf(w, "history: mode=%s limit=%s undo=%d redo=%d\n", r.Mode, limit, r.Undo, r.Redo)

	case []journal.Entry:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SEQ\tTIME\tKIND\tOBJECT\tUNDO\tREDO")
		for _, e := range r {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\n", e.Seq, e.RecordedAt.Format("15:04:05.000"), e.Kind, e.ObjectID, e.UndoDepth, e.RedoDepth)
		}
		tw.Flush()

	case nil:

	default:
		fmt.Fprintln(w, v)
	}
}

func renderSnapshot(w io.Writer, s core.Snapshot) {
	if len(s.Objects) == 0 {
		fmt.Fprintln(w, "scene is empty")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, " \tID\tNAME\tCATEGORY\tPOSITION\tROTATION\tCOLOR")
	for _, o := range s.Objects {
		mark := " "
		if o.ID == s.SelectedID {
			mark = "*"
		}
		deg := o.Rotation * 180 / math.Pi
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.1f°\t%s\n", mark, o.ID, o.Name, o.Category, parser.FormatVec3(o.Position), deg, o.Color)
	}
	tw.Flush()
}
