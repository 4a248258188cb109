// Command taskctl is a terminal client for the Task Tracker API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/artem13815/tasktracker/pkg/auth"
	"github.com/artem13815/tasktracker/pkg/client"
	"github.com/artem13815/tasktracker/pkg/task"
)

type command struct {
	summary string
	usage   string
	flags   func(fs *pflag.FlagSet)
	run     func(env *runEnv, fs *pflag.FlagSet) error
}

// runEnv carries what every command needs.
type runEnv struct {
	ctx         context.Context
	out         io.Writer
	server      string
	sessionPath string
}

var commands = map[string]command{
	"login": {
		summary: "log in and remember the session",
		usage:   "login --email EMAIL --password PASSWORD",
		flags: func(fs *pflag.FlagSet) {
			fs.String("email", "", "account email")
			fs.String("password", "", "account password")
		},
		run: runLogin,
	},
	"register": {
		summary: "create an account and log in",
		usage:   "register --name NAME --email EMAIL --password PASSWORD [--role employee|admin]",
		flags: func(fs *pflag.FlagSet) {
			fs.String("name", "", "full name")
			fs.String("email", "", "account email")
			fs.String("password", "", "at least 6 characters")
			fs.String("role", string(auth.RoleEmployee), "employee or admin")
		},
		run: runRegister,
	},
	"logout": {
		summary: "forget the stored session",
		usage:   "logout",
		run:     runLogout,
	},
	"whoami": {
		summary: "show the logged-in user",
		usage:   "whoami",
		run:     runWhoami,
	},
	"tasks": {
		summary: "list tasks",
		usage:   "tasks [--status STATUS] [--assignee ID] [--page N] [--limit N]",
		flags: func(fs *pflag.FlagSet) {
			fs.String("status", "", "Pending, In Progress or Completed")
			fs.String("assignee", "", "assignee id (admin only)")
			fs.Int("page", 1, "page number")
			fs.Int("limit", 10, "tasks per page")
		},
		run: runTasks,
	},
	"create": {
		summary: "create and assign a task (admin)",
		usage:   "create --title T --description D --assignee ID --due YYYY-MM-DD",
		flags: func(fs *pflag.FlagSet) {
			fs.String("title", "", "task title")
			fs.String("description", "", "task description")
			fs.String("assignee", "", "employee id, see 'taskctl employees'")
			fs.String("due", "", "due date, YYYY-MM-DD")
		},
		run: runCreate,
	},
	"status": {
		summary: "change a task's status",
		usage:   `status ID "Pending"|"In Progress"|"Completed"`,
		run:     runStatus,
	},
	"delete": {
		summary: "delete a task (admin)",
		usage:   "delete ID",
		run:     runDelete,
	},
	"employees": {
		summary: "list employees (admin)",
		usage:   "employees",
		run:     runEmployees,
	},
	"add-employee": {
		summary: "register a new employee account (admin)",
		usage:   "add-employee --name NAME --email EMAIL --password PASSWORD",
		flags: func(fs *pflag.FlagSet) {
			fs.String("name", "", "full name")
			fs.String("email", "", "account email")
			fs.String("password", "", "at least 6 characters")
		},
		run: runAddEmployee,
	},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	global := pflag.NewFlagSet("taskctl", pflag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(stderr)
	server := global.String("server", os.Getenv("TASKCTL_SERVER"), "API base URL, e.g. http://localhost:5000/api")
	global.Usage = func() { usage(stderr) }
	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	rest := global.Args()
	if len(rest) == 0 {
		usage(stderr)
		return 2
	}

	name := rest[0]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		usage(stderr)
		return 2
	}
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: taskctl %s\n", cmd.usage)
		fs.PrintDefaults()
	}
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	if err := fs.Parse(rest[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	env := &runEnv{ctx: ctx, out: stdout, server: *server, sessionPath: client.SessionFilePath()}
	if err := cmd.run(env, fs); err != nil {
		client.RenderError(stderr, describe(err))
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: taskctl [--server URL] <command> [flags]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %-13s %s\n", n, commands[n].summary)
	}
}

// describe turns failures into a short message for the terminal.
func describe(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, client.ErrNoSession):
		return err.Error()
	case errors.Is(err, errUsage):
		return err.Error()
	}
	return "Something went wrong: " + err.Error()
}

var errUsage = errors.New("invalid arguments")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

func mustString(fs *pflag.FlagSet, name string) string {
	v, _ := fs.GetString(name)
	return strings.TrimSpace(v)
}

func mustInt(fs *pflag.FlagSet, name string) int {
	v, _ := fs.GetInt(name)
	return v
}

func (e *runEnv) anonymous() *client.Client {
	return client.New(e.server, "")
}

// authed builds a client from the stored session.
func (e *runEnv) authed() (*client.Client, *client.StoredSession, error) {
	s, err := client.LoadSession(e.sessionPath)
	if err != nil {
		return nil, nil, err
	}
	server := e.server
	if server == "" {
		server = s.Server
	}
	return client.New(server, s.Token), s, nil
}

func (e *runEnv) remember(c *client.Client, s client.Session) error {
	return client.SaveSession(e.sessionPath, &client.StoredSession{Server: c.BaseURL, Token: s.Token, User: s.User})
}

func runLogin(env *runEnv, fs *pflag.FlagSet) error {
	c := env.anonymous()
	s, err := c.Login(env.ctx, mustString(fs, "email"), mustString(fs, "password"))
	if err != nil {
		return err
	}
	if err := env.remember(c, s); err != nil {
		return err
	}
	fmt.Fprintf(env.out, "Welcome, %s (%s)\n", s.User.Name, s.User.Role)
	return nil
}

func runRegister(env *runEnv, fs *pflag.FlagSet) error {
	c := env.anonymous()
	s, err := c.Register(env.ctx, mustString(fs, "name"), mustString(fs, "email"), mustString(fs, "password"), auth.Role(mustString(fs, "role")))
	if err != nil {
		return err
	}
	if err := env.remember(c, s); err != nil {
		return err
	}
	fmt.Fprintf(env.out, "Registered %s as %s\n", s.User.Email, s.User.Role)
	return nil
}

func runLogout(env *runEnv, _ *pflag.FlagSet) error {
	if err := client.ClearSession(env.sessionPath); err != nil {
		return err
	}
	fmt.Fprintln(env.out, "Logged out")
	return nil
}

func runWhoami(env *runEnv, _ *pflag.FlagSet) error {
	c, _, err := env.authed()
	if err != nil {
		return err
	}
	u, err := c.Me(env.ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.out, "%s <%s> %s\n", u.Name, u.Email, u.Role)
	return nil
}

func runTasks(env *runEnv, fs *pflag.FlagSet) error {
	c, s, err := env.authed()
	if err != nil {
		return err
	}
	list, err := c.ListTasks(env.ctx, client.ListParams{
		Status:     mustString(fs, "status"),
		AssignedTo: mustString(fs, "assignee"),
		Page:       mustInt(fs, "page"),
		Limit:      mustInt(fs, "limit"),
	})
	if err != nil {
		return err
	}
	admin := s.User.Role == auth.RoleAdmin
	if !admin {
		stats, err := c.Stats(env.ctx)
		if err != nil {
			return err
		}
		client.RenderStats(env.out, stats)
		fmt.Fprintln(env.out)
	}
	client.RenderTasks(env.out, list, time.Now(), admin)
	return nil
}

func runCreate(env *runEnv, fs *pflag.FlagSet) error {
	c, _, err := env.authed()
	if err != nil {
		return err
	}
	t, err := c.CreateTask(env.ctx, client.NewTask{
		Title:       mustString(fs, "title"),
		Description: mustString(fs, "description"),
		AssignedTo:  mustString(fs, "assignee"),
		DueDate:     mustString(fs, "due"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(env.out, "Created task %s assigned to %s\n", t.ID, t.AssignedTo.Name)
	return nil
}

func runStatus(env *runEnv, fs *pflag.FlagSet) error {
	args := fs.Args()
	if len(args) < 2 {
		return usageError("expected a task id and a status")
	}
	status := task.Status(strings.Join(args[1:], " "))
	if !status.Valid() {
		return usageError("status must be one of Pending, In Progress, Completed")
	}
	c, _, err := env.authed()
	if err != nil {
		return err
	}
	t, err := c.UpdateStatus(env.ctx, args[0], status)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.out, "%s %s\n", client.StatusBadge(t.Status), t.Title)
	return nil
}

func runDelete(env *runEnv, fs *pflag.FlagSet) error {
	if fs.NArg() != 1 {
		return usageError("expected a task id")
	}
	c, _, err := env.authed()
	if err != nil {
		return err
	}
	if err := c.DeleteTask(env.ctx, fs.Arg(0)); err != nil {
		return err
	}
	fmt.Fprintln(env.out, "Task deleted successfully")
	return nil
}

func runEmployees(env *runEnv, _ *pflag.FlagSet) error {
	c, _, err := env.authed()
	if err != nil {
		return err
	}
	users, err := c.Employees(env.ctx)
	if err != nil {
		return err
	}
	client.RenderUsers(env.out, users)
	return nil
}

// runAddEmployee registers the account without touching the admin's session.
func runAddEmployee(env *runEnv, fs *pflag.FlagSet) error {
	c, s, err := env.authed()
	if err != nil {
		return err
	}
	if s.User.Role != auth.RoleAdmin {
		return &client.APIError{Status: http.StatusForbidden, Message: "Access denied"}
	}
	created, err := client.New(c.BaseURL, "").Register(env.ctx,
		mustString(fs, "name"), mustString(fs, "email"), mustString(fs, "password"), auth.RoleEmployee)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.out, "Added employee %s (%s)\n", created.User.Name, created.User.ID)
	return nil
}
