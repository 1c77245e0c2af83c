package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spec-kit/smart-hospital-client/internal/api/dto"
	"github.com/spec-kit/smart-hospital-client/internal/apiclient"
	"github.com/spec-kit/smart-hospital-client/internal/domain"
	"github.com/spec-kit/smart-hospital-client/internal/events"
	"github.com/spec-kit/smart-hospital-client/internal/ui"
)

const shellHelp = `commands:
  goto <login|register>                  switch the signed-out page
  refresh                                reload the current page
  login <email> [password]               sign in
  register <email> <role> <full name>    create an account (roles: cleaner, manager, dean, bmc_commissioner)
  logout                                 sign out
  submit <room> <photo file>             send an after-cleaning photo (cleaner)
  approve <record id>                    approve a record (manager)
  rework <record id>                     send a record back for rework (manager)
  assign <room> <cleaner id> <YYYY-MM-DD> [notes]
                                         assign a cleaning task (dean, bmc_commissioner)
  report                                 download the weekly report (dean, bmc_commissioner)
  status                                 show the stored session
  quit                                   leave
`

// usageError is a malformed shell command. Action failures are reported as
// notifications instead.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usage(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

var errQuit = errors.New("quit")

// lineReader reads one line per request so that a password prompt can take
// over the terminal between commands.
type lineReader struct {
	requests chan struct{}
	lines    chan string
	done     chan struct{}
}

func newLineReader(in io.Reader) *lineReader {
	r := &lineReader{
		requests: make(chan struct{}),
		lines:    make(chan string),
		done:     make(chan struct{}),
	}
	go r.loop(bufio.NewScanner(in))
	return r
}

func (r *lineReader) loop(sc *bufio.Scanner) {
	defer close(r.done)
	for range r.requests {
		if !sc.Scan() {
			return
		}
		r.lines <- sc.Text()
	}
}

// Next returns the next input line. ok is false at end of input.
func (r *lineReader) Next(ctx context.Context) (line string, ok bool, err error) {
	select {
	case r.requests <- struct{}{}:
	case <-r.done:
		return "", false, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
	select {
	case line := <-r.lines:
		return line, true, nil
	case <-r.done:
		return "", false, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

type shell struct {
	rt       *clientRuntime
	out      io.Writer
	lines    *lineReader
	password func(ctx context.Context) (string, error)
}

func newShell(rt *clientRuntime, in io.Reader, out io.Writer) *shell {
	s := &shell{rt: rt, out: out, lines: newLineReader(in)}
	s.password = func(ctx context.Context) (string, error) {
		fmt.Fprint(out, "Password: ")
		line, ok, err := s.lines.Next(ctx)
		if err != nil {
			return "", err
		}
		if !ok || line == "" {
			return "", usage("password is required")
		}
		return line, nil
	}
	return s
}

// loop reads commands until quit, end of input or cancellation.
func (s *shell) loop(ctx context.Context) error {
	if err := s.rt.app.Start(ctx); err != nil {
		return err
	}
	s.settle(ctx)

	for {
		fmt.Fprint(s.out, "> ")
		line, ok, err := s.lines.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(s.out)
			return nil
		}

		err = s.execute(ctx, line)
		switch {
		case errors.Is(err, errQuit):
			return nil
		case errors.Is(err, events.ErrQueueClosed):
			return err
		}
		var ue *usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(s.out, ue.msg)
		}
		s.settle(ctx)
	}
}

func (s *shell) settle(ctx context.Context) {
	if err := s.rt.settle(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintln(s.out, "still waiting for the server; results will appear when they arrive")
	}
}

// execute runs one command line. Errors from actions have already been shown
// as notifications by the time they are returned.
func (s *shell) execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	app := s.rt.app

	switch name {
	case "help", "?":
		fmt.Fprint(s.out, shellHelp)
		return nil
	case "quit", "exit":
		return errQuit
	case "goto":
		if len(args) != 1 {
			return usage("usage: goto <login|register>")
		}
		return app.Navigate(ctx, ui.ParseHash(args[0]))
	case "refresh":
		return app.Refresh(ctx)
	case "status":
		return printStatus(ctx, s.rt, s.out)
	case "login":
		if len(args) < 1 || len(args) > 2 {
			return usage("usage: login <email> [password]")
		}
		password := ""
		if len(args) == 2 {
			password = args[1]
		} else {
			var err error
			if password, err = s.password(ctx); err != nil {
				return err
			}
		}
		return app.Session.Login(ctx, args[0], password)
	case "register":
		if len(args) < 3 {
			return usage("usage: register <email> <role> <full name>")
		}
		password, err := s.password(ctx)
		if err != nil {
			return err
		}
		return app.Session.Register(ctx, dto.RegisterRequest{
			Email:    args[0],
			Role:     args[1],
			FullName: strings.Join(args[2:], " "),
			Password: password,
		})
	case "logout":
		return app.Session.Logout(ctx)
	case "submit":
		if len(args) != 2 {
			return usage("usage: submit <room> <photo file>")
		}
		return app.Dashboard.SubmitVerification(ctx, args[0], args[1])
	case "approve", "rework":
		if len(args) != 1 {
			return usage("usage: %s <record id>", name)
		}
		id, err := apiclient.ParseRecordID(args[0])
		if err != nil {
			return usage("%s", err.Error())
		}
		status := domain.ApprovalApproved
		if name == "rework" {
			status = domain.ApprovalRework
		}
		return app.Dashboard.Review(ctx, id, status)
	case "assign":
		if len(args) < 3 {
			return usage("usage: assign <room> <cleaner id> <YYYY-MM-DD> [notes]")
		}
		return app.Dashboard.AssignTask(ctx, args[0], args[1], args[2], strings.Join(args[3:], " "))
	case "report":
		return app.Dashboard.DownloadReport(ctx)
	default:
		return usage("unknown command %q, type help", name)
	}
}
