// Package cli is the taskdeck terminal front end. Each command builds the
// API client from the saved session, runs, and exits.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"taskdeck/internal/client"
	"taskdeck/internal/tasklist"
	"taskdeck/internal/validation"
)

const DefaultAPIURL = "http://localhost:8080/api"

// Config holds what the commands need from the environment.
type Config struct {
	APIURL      string
	SessionPath string
	HTTPTimeout time.Duration
	Password    validation.PasswordPolicy
	Out         io.Writer
	Err         io.Writer
	In          io.Reader
}

// ConfigFromEnv reads TASKDECK_API_URL, TASKDECK_SESSION and
// TASKDECK_PASSWORD_POLICY.
func ConfigFromEnv() (Config, error) {
	policy, err := validation.ParsePolicy(os.Getenv("TASKDECK_PASSWORD_POLICY"))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		APIURL:      os.Getenv("TASKDECK_API_URL"),
		SessionPath: os.Getenv("TASKDECK_SESSION"),
		Password:    policy,
		Out:         os.Stdout,
		Err:         os.Stderr,
		In:          os.Stdin,
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.SessionPath == "" {
		p, err := client.DefaultSessionPath()
		if err != nil {
			return cfg, err
		}
		cfg.SessionPath = p
	}
	return cfg, nil
}

type CLI struct {
	cfg   Config
	in    *bufio.Reader
	now   func() time.Time
	theme theme
}

func New(cfg Config) *CLI {
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Err == nil {
		cfg.Err = io.Discard
	}
	if cfg.In == nil {
		cfg.In = strings.NewReader("")
	}
	if cfg.Password == "" {
		cfg.Password = validation.PolicyBasic
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 15 * time.Second
	}
	return &CLI{
		cfg:   cfg,
		in:    bufio.NewReader(cfg.In),
		now:   time.Now,
		theme: newTheme(),
	}
}

var errUsage = errors.New("usage")

// Run executes one command. Global flags come before the command name.
func (c *CLI) Run(ctx context.Context, args []string) error {
	root := flag.NewFlagSet("taskdeck", flag.ContinueOnError)
	root.SetOutput(c.cfg.Err)
	root.StringVar(&c.cfg.APIURL, "api", c.cfg.APIURL, "API base url")
	root.Usage = c.usage
	if err := root.Parse(args); err != nil {
		return err
	}
	rest := root.Args()
	if len(rest) == 0 {
		c.usage()
		return errUsage
	}

	cmd, cmdArgs := rest[0], rest[1:]
	var err error
	switch cmd {
	case "register":
		err = c.cmdRegister(ctx, cmdArgs)
	case "login":
		err = c.cmdLogin(ctx, cmdArgs)
	case "logout":
		err = c.cmdLogout(ctx)
	case "list", "ls":
		err = c.cmdList(ctx, cmdArgs)
	case "show":
		err = c.cmdShow(ctx, cmdArgs)
	case "add":
		err = c.cmdAdd(ctx, cmdArgs)
	case "edit":
		err = c.cmdEdit(ctx, cmdArgs)
	case "done", "toggle":
		err = c.cmdToggle(ctx, cmdArgs)
	case "rm", "delete":
		err = c.cmdDelete(ctx, cmdArgs)
	case "profile":
		err = c.cmdProfile(ctx, cmdArgs)
	case "passwd":
		err = c.cmdPasswd(ctx, cmdArgs)
	case "report":
		err = c.cmdReport(ctx, cmdArgs)
	case "telegram":
		err = c.cmdTelegram(ctx, cmdArgs)
	case "watch":
		err = c.cmdWatch(ctx, cmdArgs)
	case "stopwatch":
		err = c.cmdStopwatch(ctx)
	case "help":
		c.usage()
		return nil
	default:
		c.usage()
		return fmt.Errorf("unknown command: %s", cmd)
	}

	if cmd != "login" && client.IsUnauthorized(err) {
		return errors.New("not logged in; run `taskdeck login`")
	}
	return err
}

func (c *CLI) usage() {
	fmt.Fprint(c.cfg.Err, `usage: taskdeck [-api URL] <command> [flags]

commands:
  register   create an account
  login      log in and save the session
  logout     revoke and forget the session
  list       list tasks (-search, -bucket all|high|medium|low, -sort created_at|priority|deadline)
  show ID    show one task
  add        create a task (-title, -desc, -priority, -deadline)
  edit ID    change a task
  done ID    toggle completion
  rm ID      delete a task
  profile    show or update the profile
  passwd     change password
  report     download the PDF task report (-o file)
  telegram   status | link TOKEN | unlink
  watch      live countdowns for incomplete tasks
  stopwatch  interactive stopwatch
`)
}

func (c *CLI) client() (*client.Client, error) {
	return client.New(c.cfg.APIURL,
		client.WithHTTPClient(&http.Client{Timeout: c.cfg.HTTPTimeout}),
		client.WithSessionStore(client.NewSessionStore(c.cfg.SessionPath)),
	)
}

// model builds a loaded view-model that prints notifications to stderr.
func (c *CLI) model(ctx context.Context) (*tasklist.Model, error) {
	api, err := c.client()
	if err != nil {
		return nil, err
	}
	m := tasklist.New(api, tasklist.NotifierFunc(func(n tasklist.Notification) {
		if client.IsUnauthorized(n.Err) {
			return
		}
		fmt.Fprintln(c.cfg.Err, c.theme.err(n.Message()))
	}))
	if err := m.Load(ctx); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

// readLine prompts and reads one line from the input.
func (c *CLI) readLine(prompt string) (string, error) {
	fmt.Fprint(c.cfg.Out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *CLI) printf(format string, args ...any) {
	fmt.Fprintf(c.cfg.Out, format, args...)
}
