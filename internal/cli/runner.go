// Package cli dispatches tada's subcommands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/client"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/log"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/server"
	"github.com/Makepad-fr/tada/internal/service"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/store/sqlitestore"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
	"github.com/Makepad-fr/tada/internal/view"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Options tune output behavior from root flags.
type Options struct {
	Config *config.Config
	Group  bool // list grouped by pending/completed
	Stdout io.Writer
	Stderr io.Writer
}

type runner struct {
	ctx    context.Context
	cfg    *config.Config
	group  bool
	stdout io.Writer
	stderr io.Writer
}

// Run dispatches subcommands and returns an exit code.
func Run(ctx context.Context, args []string, opt Options) int {
	r := &runner{
		ctx:    ctx,
		cfg:    opt.Config,
		group:  opt.Group,
		stdout: opt.Stdout,
		stderr: opt.Stderr,
	}
	if r.cfg == nil {
		r.cfg = config.Default()
	}
	if r.stdout == nil {
		r.stdout = os.Stdout
	}
	if r.stderr == nil {
		r.stderr = os.Stderr
	}

	if len(args) == 0 {
		PrintHelp(r.stderr)
		return ExitUsage
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(r.stdout)
		return ExitOK

	case "serve":
		if len(a) != 0 {
			return r.usage("tada serve")
		}
		return r.serve()

	case "ls":
		if len(a) > 1 {
			return r.usage("tada ls [all|pending|completed]")
		}
		f, code, ok := r.filterArg(a)
		if !ok {
			return code
		}
		return r.list(f)

	case "add":
		if len(a) == 0 {
			return r.usage("tada add <body...>")
		}
		return r.add(strings.Join(a, " "))

	case "done", "rm":
		if len(a) != 1 {
			return r.usage(fmt.Sprintf("tada %s <id>", cmd))
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(a[0], "#"), 10, 64)
		if err != nil || id <= 0 {
			ui.Fail(r.stderr, cmd+": not a todo id: "+a[0])
			return ExitUsage
		}
		op := view.OpToggle
		if cmd == "rm" {
			op = view.OpDelete
		}
		return r.change(op, id)

	case "tui":
		if len(a) > 1 {
			return r.usage("tada tui [all|pending|completed]")
		}
		f, code, ok := r.filterArg(a)
		if !ok {
			return code
		}
		return r.tui(f)

	case "auth":
		return r.auth(a)
	}

	ui.Fail(r.stderr, "unknown subcommand: "+cmd)
	fmt.Fprintln(r.stderr)
	PrintHelp(r.stderr)
	return ExitUsage
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `tada - todos over the wire

Usage:
  tada [-config file] [-theme classic|neon|mono] [-group] <subcommand> [args]

Subcommands:
  serve                 Run the todo service
  ls [filter]           List todos (filter: all, pending, completed)
  add <body...>         Add a todo (the body can be multiple words)
  done <id>             Toggle a todo between pending and completed
  rm <id>               Delete a todo
  tui [filter]          Open the interactive list
  auth login <token>    Store the token sent to the service
  auth logout           Forget the stored token
  auth status           Show where the current token comes from

Examples:
  tada serve
  tada add "Buy milk"
  tada ls pending
  tada done 2
  tada rm 3
`)
}

func (r *runner) usage(line string) int {
	ui.Fail(r.stderr, "usage: "+line)
	return ExitUsage
}

func (r *runner) filterArg(a []string) (model.Filter, int, bool) {
	raw := r.cfg.UI.Filter
	if len(a) == 1 {
		raw = a[0]
	}
	f, err := model.ParseFilter(raw)
	if err != nil {
		ui.Fail(r.stderr, err.Error())
		return "", ExitUsage, false
	}
	return f, ExitOK, true
}

// fail reports err and returns the runtime error exit code.
func (r *runner) fail(what string, err error) int {
	log.Debug().Err(err).Str("op", what).Msg("command failed")
	ui.Fail(r.stderr, what+": "+describe(err, r.cfg.Client.URL))
	return ExitError
}

func describe(err error, url string) string {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, view.ErrUnknownTodo):
		return "no such todo (run `tada ls` to see ids)"
	case errors.Is(err, service.ErrUnauthorized):
		return "not authorized (run `tada auth login <token>`)"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case client.IsTransport(err):
		return fmt.Sprintf("cannot reach the todo service at %s: %v", url, err)
	}
	return err.Error()
}

func (r *runner) client() (*client.Client, error) {
	token, err := auth.Token()
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	return client.New(client.Options{
		BaseURL: r.cfg.Client.URL,
		Token:   token,
		Timeout: r.cfg.Client.Timeout.Duration,
	}), nil
}

// -------------- subcommand impls ----------------

func (r *runner) serve() int {
	svc, closeStore, err := openStore(r.cfg.Server)
	if err != nil {
		return r.fail("open store", err)
	}
	defer closeStore()

	srv := server.New(svc, server.Options{
		Addr:  r.cfg.Server.Addr,
		Token: r.cfg.Server.Token,
		Mode:  r.cfg.Server.Mode,
	})
	if err := srv.Run(r.ctx); err != nil {
		return r.fail("serve", err)
	}
	return ExitOK
}

// openStore opens the backend cfg names.
func openStore(cfg config.ServerConfig) (service.TodoService, func(), error) {
	switch cfg.Store {
	case "json":
		s, err := jsonstore.Open(cfg.JSONPath)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", s.Path()).Msg("using json store")
		return s, func() {}, nil
	default:
		s, err := sqlitestore.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				log.Warn().Err(err).Msg("close database")
			}
		}, nil
	}
}

func (r *runner) list(f model.Filter) int {
	c, err := r.client()
	if err != nil {
		return r.fail("ls", err)
	}
	v := view.New(c, f)
	if _, err := v.Refresh(r.ctx); err != nil {
		return r.fail("ls", err)
	}
	todos := v.Todos()

	t := ui.Current()
	lines := []string{
		t.Title.Render("Todos") + " " + t.Muted.Render("("+f.Title()+")") + "  " + ui.Summary(todos, 28),
		"",
	}
	if r.group {
		lines = append(lines, groupLines(todos)...)
	} else {
		lines = append(lines, flatLines(todos)...)
	}
	lines = append(lines, "", t.Muted.Render("Tip: add with `tada add \"Buy milk\"`"))
	ui.Panel(r.stdout, lines)
	return ExitOK
}

func (r *runner) add(body string) int {
	if _, err := service.NormalizeBody(body); err != nil {
		ui.Fail(r.stderr, "add: "+err.Error())
		return ExitUsage
	}
	c, err := r.client()
	if err != nil {
		return r.fail("add", err)
	}
	td, err := c.CreateTodo(r.ctx, body)
	if err != nil {
		return r.fail("add", err)
	}
	ui.OK(r.stdout, fmt.Sprintf("added #%d %s", td.ID, td.Body))
	return ExitOK
}

// change toggles or deletes id through a list view over every todo.
func (r *runner) change(op view.Op, id int64) int {
	c, err := r.client()
	if err != nil {
		return r.fail(op.String(), err)
	}
	v := view.New(c, model.FilterAll)
	if _, err := v.Refresh(r.ctx); err != nil {
		return r.fail(op.String(), err)
	}
	if op == view.OpToggle {
		_, err = v.Toggle(r.ctx, id)
	} else {
		_, err = v.Delete(r.ctx, id)
	}
	if err != nil {
		return r.fail(op.String(), err)
	}

	switch td, ok := v.Lookup(id); {
	case op == view.OpDelete:
		ui.OK(r.stdout, fmt.Sprintf("removed #%d", id))
	case ok && td.Done():
		ui.OK(r.stdout, fmt.Sprintf("completed #%d", id))
	default:
		ui.OK(r.stdout, fmt.Sprintf("reopened #%d", id))
	}
	return ExitOK
}

func (r *runner) tui(f model.Filter) int {
	c, err := r.client()
	if err != nil {
		return r.fail("tui", err)
	}
	// stderr belongs to the alt screen while the program runs
	if r.cfg.Log.File == "" {
		log.SetLevel("disabled")
		defer log.SetLevel(r.cfg.Log.Level)
	}
	err = tui.Run(r.ctx, c, tui.Options{
		Filter:  f,
		Timeout: r.cfg.Client.Timeout.Duration,
	})
	if err != nil {
		return r.fail("tui", err)
	}
	return ExitOK
}

func (r *runner) auth(a []string) int {
	if len(a) == 0 {
		return r.usage("tada auth <login|logout|status>")
	}
	switch a[0] {
	case "login":
		if len(a) != 2 {
			return r.usage("tada auth login <token>")
		}
		if err := auth.SetToken(a[1], nil); err != nil {
			if errors.Is(err, auth.ErrEmptyToken) {
				ui.Fail(r.stderr, "auth: "+err.Error())
				return ExitUsage
			}
			return r.fail("auth login", err)
		}
		ui.OK(r.stdout, "token saved")
		return ExitOK

	case "logout":
		if err := auth.DeleteToken(); err != nil {
			return r.fail("auth logout", err)
		}
		ui.OK(r.stdout, "logged out")
		return ExitOK

	case "status":
		ti, err := auth.GetToken()
		if err != nil {
			return r.fail("auth status", err)
		}
		if ti == nil {
			fmt.Fprintln(r.stdout, "not logged in")
			return ExitOK
		}
		fmt.Fprintf(r.stdout, "token %s (from %s)\n", auth.Mask(ti.Token), ti.Source)
		return ExitOK
	}
	return r.usage("tada auth <login|logout|status>")
}

// -------------- rendering helpers --------------

func flatLines(todos []model.Todo) []string {
	if len(todos) == 0 {
		return []string{ui.Current().Muted.Render("no todos")}
	}
	out := make([]string, 0, len(todos))
	for _, td := range todos {
		out = append(out, ui.TodoLine(td))
	}
	return out
}

func groupLines(todos []model.Todo) []string {
	var pend, done []model.Todo
	for _, td := range todos {
		if td.Done() {
			done = append(done, td)
		} else {
			pend = append(pend, td)
		}
	}
	t := ui.Current()
	section := func(title string, todos []model.Todo) []string {
		lines := []string{t.Accent.Render(title)}
		if len(todos) == 0 {
			return append(lines, t.Muted.Render("(none)"))
		}
		return append(lines, flatLines(todos)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Completed", done)...)
}
