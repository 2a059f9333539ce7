// Package cli implements a line-oriented terminal view of the organizer.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"package-organizer/internal/domain"
	"package-organizer/internal/services"
	"package-organizer/internal/state"
)

const helpText = `commands:
  status                      show zones and progress
  select N [N...]             add numbers to the selection
  deselect N                  drop a number from the selection
  clear                       empty the selection
  assign ZONE [N...]          assign numbers (or the selection) to a zone
  remove N                    unassign a package
  deliver N | undeliver N     set delivered status
  done N                      toggle delivered status
  phase assign|deliver        switch phase
  undo                        revert the last change
  reset                       clear all packages and history
  range N                     set the route size (1-100)
  dark on|off                 set the theme preference
  zones                       list zone ids
  export [FILE]               write a backup (stdout when FILE is omitted)
  import FILE                 load a backup
  quit`

// Shell reads commands from an input stream and renders results as text.
type Shell struct {
	Organizer *services.Organizer
	Out       io.Writer
	ReadFile  func(name string) ([]byte, error)
	WriteFile func(name string, data []byte) error
}

func NewShell(org *services.Organizer, out io.Writer) *Shell {
	return &Shell{
		Organizer: org,
		Out:       out,
		ReadFile:  os.ReadFile,
		WriteFile: func(name string, data []byte) error { return os.WriteFile(name, data, 0o644) },
	}
}

// Run processes commands until EOF, "quit" or context cancellation.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	s.prompt()
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(sc.Text())
		if line == "quit" || line == "exit" {
			return nil
		}
		if line != "" {
			s.Exec(ctx, line)
		}
		s.prompt()
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("shell: read input: %w", err)
	}
	return nil
}

func (s *Shell) prompt() { fmt.Fprint(s.Out, "> ") }

// Exec runs one command line.
func (s *Shell) Exec(ctx context.Context, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	cmd, args := fields[0], fields[1:]
	org := s.Organizer

	switch cmd {
	case "help", "?":
		fmt.Fprintln(s.Out, helpText)
	case "status":
		s.render(org.View())
	case "zones":
		for _, z := range org.View().Snapshot.Zones {
			fmt.Fprintf(s.Out, "%-12s %s\n", z.Spec.ID, z.Spec.Name)
		}
	case "select":
		ns, ok := s.numbers(args, 1)
		if !ok {
			return
		}
		var res services.Result
		for _, n := range ns {
			res = org.Select(ctx, n)
			if res.Rejected {
				break
			}
		}
		s.render(res)
	case "deselect":
		if n, ok := s.number(args); ok {
			s.render(org.Deselect(ctx, n))
		}
	case "clear":
		s.render(org.ClearSelection(ctx))
	case "assign":
		if len(args) == 0 {
			fmt.Fprintln(s.Out, "usage: assign ZONE [N...]")
			return
		}
		if len(args) == 1 {
			s.render(org.AssignSelection(ctx, args[0]))
			return
		}
		if ns, ok := s.numbers(args[1:], 1); ok {
			s.render(org.Assign(ctx, ns, args[0]))
		}
	case "remove":
		if n, ok := s.number(args); ok {
			s.render(org.Remove(ctx, n))
		}
	case "deliver", "undeliver":
		if n, ok := s.number(args); ok {
			s.render(org.SetDelivered(ctx, n, cmd == "deliver"))
		}
	case "done":
		if n, ok := s.number(args); ok {
			s.render(org.ToggleDelivered(ctx, n))
		}
	case "phase":
		switch strings.Join(args, " ") {
		case "assign", "assigning":
			s.render(org.StartAssigning(ctx))
		case "deliver", "delivering":
			s.render(org.StartDelivery(ctx))
		default:
			fmt.Fprintln(s.Out, "usage: phase assign|deliver")
		}
	case "undo":
		s.render(org.Undo(ctx))
	case "reset":
		s.render(org.Reset(ctx))
	case "range":
		if len(args) != 1 {
			fmt.Fprintln(s.Out, "usage: range N")
			return
		}
		r, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(s.Out, "! warning: %q is not a number\n", args[0])
			return
		}
		s.render(org.SetRange(ctx, r))
	case "dark":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			fmt.Fprintln(s.Out, "usage: dark on|off")
			return
		}
		s.render(org.SetDarkMode(ctx, args[0] == "on"))
	case "export":
		s.export(ctx, args)
	case "import":
		if len(args) != 1 {
			fmt.Fprintln(s.Out, "usage: import FILE")
			return
		}
		doc, err := s.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(s.Out, "! error: %v\n", err)
			return
		}
		s.render(org.Import(ctx, doc))
	default:
		fmt.Fprintf(s.Out, "unknown command %q, try help\n", cmd)
	}
}

func (s *Shell) export(ctx context.Context, args []string) {
	doc, name, err := s.Organizer.Export(ctx)
	if err != nil {
		fmt.Fprintf(s.Out, "! error: %v\n", err)
		return
	}
	if len(args) == 0 {
		fmt.Fprintln(s.Out, string(doc))
		return
	}
	if args[0] != "-" {
		name = args[0]
	}
	if err := s.WriteFile(name, doc); err != nil {
		fmt.Fprintf(s.Out, "! error: %v\n", err)
		return
	}
	fmt.Fprintf(s.Out, "exported to %s\n", name)
}

func (s *Shell) number(args []string) (domain.PackageNumber, bool) {
	ns, ok := s.numbers(args, 1)
	if !ok {
		return 0, false
	}
	if len(ns) != 1 {
		fmt.Fprintln(s.Out, "expected exactly one package number")
		return 0, false
	}
	return ns[0], true
}

func (s *Shell) numbers(args []string, min int) ([]domain.PackageNumber, bool) {
	if len(args) < min {
		fmt.Fprintln(s.Out, "expected a package number")
		return nil, false
	}
	out := make([]domain.PackageNumber, 0, len(args))
	for _, a := range args {
		n, err := domain.ParsePackageNumber(a)
		if err != nil {
			fmt.Fprintf(s.Out, "! warning: %v\n", err)
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func (s *Shell) render(res services.Result) {
	for _, n := range res.Notices {
		fmt.Fprintf(s.Out, "! %s: %s\n", n.Level, n.Message)
	}
	writeSnapshot(s.Out, res.Snapshot)
}

func writeSnapshot(w io.Writer, snap state.Snapshot) {
	fmt.Fprintf(w, "[%s] range=%d assigned=%d delivered=%d remaining=%d\n",
		snap.Phase, snap.PackageRange, snap.Counts.Assigned, snap.Counts.Delivered, snap.Counts.Remaining)

	for _, z := range snap.Zones {
		if len(z.Packages) == 0 {
			continue
		}
		delivered := make(map[domain.PackageNumber]bool, len(z.Delivered))
		for _, n := range z.Delivered {
			delivered[n] = true
		}
		parts := make([]string, 0, len(z.Packages))
		for _, n := range z.Packages {
			if delivered[n] {
				parts = append(parts, n.String()+"*")
			} else {
				parts = append(parts, n.String())
			}
		}
		fmt.Fprintf(w, "  %-15s %s\n", z.Spec.Name, strings.Join(parts, " "))
	}

	if len(snap.Selection) > 0 {
		parts := make([]string, 0, len(snap.Selection))
		for _, n := range snap.Selection {
			parts = append(parts, n.String())
		}
		fmt.Fprintf(w, "  selected: %s\n", strings.Join(parts, " "))
	}
}
