package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"taskdeck/internal/models"
	"taskdeck/internal/tasklist"
	"taskdeck/internal/validation"
)

func (c *CLI) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.cfg.Err)
	return fs
}

// splitID takes the leading positional id off args.
func splitID(cmd string, args []string) (string, []string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" || strings.HasPrefix(args[0], "-") {
		return "", nil, fmt.Errorf("%s: missing task id", cmd)
	}
	return args[0], args[1:], nil
}

// resolveID matches a full id or a unique prefix against the loaded tasks.
func resolveID(m *tasklist.Model, ref string) (string, error) {
	if _, ok := m.Get(ref); ok {
		return ref, nil
	}
	var match string
	for _, t := range m.Visible() {
		if strings.HasPrefix(t.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("task id %q is ambiguous", ref)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no task matches %q", ref)
	}
	return match, nil
}

var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseDeadline accepts RFC 3339, local date-times and a relative offset
// such as +3d or +90m.
func parseDeadline(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if strings.HasPrefix(s, "+") {
		rel := s[1:]
		if strings.HasSuffix(rel, "d") {
			var days int
			if _, err := fmt.Sscanf(rel, "%dd", &days); err != nil {
				return time.Time{}, fmt.Errorf("invalid deadline %q", s)
			}
			return now.AddDate(0, 0, days), nil
		}
		d, err := time.ParseDuration(rel)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid deadline %q", s)
		}
		return now.Add(d), nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid deadline %q", s)
}

// ===== account =====

func (c *CLI) cmdRegister(ctx context.Context, args []string) error {
	fs := c.flags("register")
	var req models.RegisterRequest
	fs.StringVar(&req.Name, "name", "", "full name")
	fs.StringVar(&req.Email, "email", "", "e-mail address")
	fs.StringVar(&req.Phone, "phone", "", "phone, 11 digits")
	fs.StringVar(&req.Username, "username", "", "login name")
	fs.StringVar(&req.Password, "password", "", "password (prompted when empty)")
	fs.StringVar(&req.ProfilePicture, "picture", "", "profile picture url")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if req.Password == "" {
		p, err := c.readLine("Password: ")
		if err != nil {
			return err
		}
		req.Password = p
	}

	switch {
	case strings.TrimSpace(req.Name) == "":
		return errors.New("name is required")
	case strings.TrimSpace(req.Username) == "":
		return errors.New("username is required")
	case !validation.Email(req.Email):
		return errors.New("invalid email format")
	case !validation.Phone(req.Phone):
		return errors.New("phone must be exactly 11 digits")
	case !c.cfg.Password.Check(req.Password):
		return errors.New("password must be " + c.cfg.Password.Describe())
	}

	api, err := c.client()
	if err != nil {
		return err
	}
	if err := api.Register(ctx, req); err != nil {
		return err
	}
	c.printf("%s registered; run `taskdeck login -u %s`\n", c.theme.ok(req.Username), req.Username)
	return nil
}

func (c *CLI) cmdLogin(ctx context.Context, args []string) error {
	fs := c.flags("login")
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var err error
	if *username == "" {
		if *username, err = c.readLine("Username: "); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = c.readLine("Password: "); err != nil {
			return err
		}
	}

	api, err := c.client()
	if err != nil {
		return err
	}
	sess, err := api.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	c.printf("logged in as %s\n", c.theme.bold(sess.Username))
	return nil
}

func (c *CLI) cmdLogout(ctx context.Context) error {
	api, err := c.client()
	if err != nil {
		return err
	}
	if api.Session() == nil {
		c.printf("not logged in\n")
		return nil
	}
	if err := api.Logout(ctx); err != nil {
		fmt.Fprintln(c.cfg.Err, c.theme.err("server logout failed: "+err.Error()))
	}
	c.printf("logged out\n")
	return nil
}

// ===== tasks =====

func (c *CLI) cmdList(ctx context.Context, args []string) error {
	fs := c.flags("list")
	search := fs.String("search", "", "title contains")
	bucket := fs.String("bucket", "all", "all, high, medium or low")
	sortBy := fs.String("sort", "created_at", "created_at, priority or deadline")
	if err := fs.Parse(args); err != nil {
		return err
	}
	b, err := tasklist.ParseBucket(*bucket)
	if err != nil {
		return err
	}
	key, err := tasklist.ParseSortKey(*sortBy)
	if err != nil {
		return err
	}

	m, err := c.model(ctx)
	if err != nil {
		return err
	}
	defer m.Close()
	m.SetFilter(tasklist.Filter{Search: *search, Bucket: b})
	m.SetSort(key)

	visible := m.Visible()
	if len(visible) == 0 {
		c.printf("No tasks found.\n")
	} else {
		now := c.now()
		c.printf("%s\n", c.theme.header())
		for _, t := range visible {
			c.printf("%s\n", c.theme.row(t, now))
		}
	}
	c.printf("%s\n", c.theme.stats(m.Stats()))
	return nil
}

func (c *CLI) cmdShow(ctx context.Context, args []string) error {
	ref, _, err := splitID("show", args)
	if err != nil {
		return err
	}
	m, err := c.model(ctx)
	if err != nil {
		return err
	}
	defer m.Close()
	id, err := resolveID(m, ref)
	if err != nil {
		return err
	}
	t, _ := m.Get(id)
	c.printf("%s", c.theme.detail(t, c.now()))
	return nil
}

func (c *CLI) cmdAdd(ctx context.Context, args []string) error {
	d := tasklist.NewDraft()
	fs := c.flags("add")
	fs.StringVar(&d.Title, "title", "", "task title")
	fs.StringVar(&d.Description, "desc", "", "description")
	fs.IntVar(&d.Priority, "priority", d.Priority, "priority 1-10")
	deadline := fs.String("deadline", "", "deadline: RFC3339, 2006-01-02 15:04, or +3d / +90m")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if d.Title == "" && fs.NArg() > 0 {
		d.Title = strings.Join(fs.Args(), " ")
	}
	var err error
	if d.Deadline, err = parseDeadline(*deadline, c.now()); err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}

	m, err := c.model(ctx)
	if err != nil {
		return err
	}
	defer m.Close()
	t, err := m.Create(ctx, d)
	if err != nil {
		return err
	}
	if t == nil {
		c.printf("task created; list reloaded\n")
		return nil
	}
	c.printf("Added task: %s (ID: %s)\n", c.theme.bold(t.Title), shortID(t.ID))
	return nil
}

func (c *CLI) cmdEdit(ctx context.Context, args []string) error {
	ref, rest, err := splitID("edit", args)
	if err != nil {
		return err
	}
	fs := c.flags("edit")
	title := fs.String("title", "", "new title")
	desc := fs.String("desc", "", "new description")
	priority := fs.Int("priority", 0, "new priority 1-10")
	deadline := fs.String("deadline", "", "new deadline")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if len(set) == 0 {
		return errors.New("edit: nothing to change")
	}

	m, err := c.model(ctx)
	if err != nil {
		return err
	}
	defer m.Close()
	id, err := resolveID(m, ref)
	if err != nil {
		return err
	}
	cur, _ := m.Get(id)
	d := tasklist.DraftFrom(cur)
	if set["title"] {
		d.Title = *title
	}
	if set["desc"] {
		d.Description = *desc
	}
	if set["priority"] {
		d.Priority = *priority
	}
	if set["deadline"] {
		if d.Deadline, err = parseDeadline(*deadline, c.now()); err != nil {
			return err
		}
	}

	t, err := m.Save(ctx, id, d)
	if err != nil {
		return err
	}
	if t != nil {
		c.printf("Updated task: %s\n", c.theme.bold(t.Title))
	}
	return nil
}

func (c *CLI) cmdToggle(ctx context.Context, args []string) error {
	ref, _, err := splitID("done", args)
	if err != nil {
		return err
	}
	m, err := c.model(ctx)
	if err != nil {
		return err
	}
	defer m.Close()
	id, err := resolveID(m, ref)
	if err != nil {
		return err
	}
	if err := m.Toggle(ctx, id); err != nil {
		return err
	}
	t, _ := m.Get(id)
	state := "reopened"
	if t.IsCompleted {
		state = c.theme.ok("completed")
	}
	c.printf("%s %s\n", c.theme.bold(t.Title), state)
	c.printf("%s\n", c.theme.stats(m.Stats()))
	return nil
}

func (c *CLI) cmdDelete(ctx context.Context, args []string) error {
	ref, _, err := splitID("rm", args)
	if err != nil {
		return err
	}
	m, err := c.model(ctx)
	if err != nil {
		return err
	}
	defer m.Close()
	id, err := resolveID(m, ref)
	if err != nil {
		return err
	}
	if err := m.Delete(ctx, id); err != nil {
		return err
	}
	c.printf("Deleted task %s\n", shortID(id))
	return nil
}

// ===== profile =====

func (c *CLI) cmdProfile(ctx context.Context, args []string) error {
	fs := c.flags("profile")
	name := fs.String("name", "", "new name")
	email := fs.String("email", "", "new e-mail")
	phone := fs.String("phone", "", "new phone")
	picture := fs.String("picture", "", "new profile picture url")
	if err := fs.Parse(args); err != nil {
		return err
	}
	api, err := c.client()
	if err != nil {
		return err
	}
	cur, err := api.Profile(ctx)
	if err != nil {
		return err
	}

	changed := false
	fs.Visit(func(*flag.Flag) { changed = true })
	if !changed {
		c.printProfile(cur.User, &cur.Statistics)
		return nil
	}

	req := models.UpdateProfileRequest{
		Name:           cur.User.Name,
		Email:          cur.User.Email,
		Phone:          cur.User.Phone,
		ProfilePicture: cur.User.ProfilePicture,
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			req.Name = *name
		case "email":
			req.Email = *email
		case "phone":
			req.Phone = *phone
		case "picture":
			req.ProfilePicture = *picture
		}
	})
	if !validation.Email(req.Email) {
		return errors.New("invalid email format")
	}
	if !validation.Phone(req.Phone) {
		return errors.New("phone must be exactly 11 digits")
	}
	p, err := api.UpdateProfile(ctx, req)
	if err != nil {
		return err
	}
	c.printf("%s\n", c.theme.ok("profile updated"))
	c.printProfile(*p, nil)
	return nil
}

func (c *CLI) printProfile(p models.Profile, stats *models.Statistics) {
	c.printf("%s (%s)\n", c.theme.bold(p.Name), p.Username)
	c.printf("  email:   %s\n", p.Email)
	c.printf("  phone:   %s\n", p.Phone)
	if p.ProfilePicture != "" {
		c.printf("  picture: %s\n", p.ProfilePicture)
	}
	if stats != nil {
		c.printf("  %s\n", c.theme.stats(*stats))
	}
}

func (c *CLI) cmdPasswd(ctx context.Context, args []string) error {
	fs := c.flags("passwd")
	current := fs.String("current", "", "current password (prompted when empty)")
	next := fs.String("new", "", "new password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var err error
	if *current == "" {
		if *current, err = c.readLine("Current password: "); err != nil {
			return err
		}
	}
	if *next == "" {
		if *next, err = c.readLine("New password: "); err != nil {
			return err
		}
	}
	if !c.cfg.Password.Check(*next) {
		return errors.New("password must be " + c.cfg.Password.Describe())
	}
	api, err := c.client()
	if err != nil {
		return err
	}
	if err := api.ChangePassword(ctx, *current, *next); err != nil {
		return err
	}
	c.printf("%s\n", c.theme.ok("password changed"))
	return nil
}

func (c *CLI) cmdReport(ctx context.Context, args []string) error {
	fs := c.flags("report")
	out := fs.String("o", "tasks.pdf", "output file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	api, err := c.client()
	if err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := api.DownloadReport(ctx, f); err != nil {
		f.Close()
		_ = os.Remove(*out)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	c.printf("report saved to %s\n", *out)
	return nil
}

// ===== telegram =====

func (c *CLI) cmdTelegram(ctx context.Context, args []string) error {
	sub := "status"
	if len(args) > 0 {
		sub = args[0]
	}
	api, err := c.client()
	if err != nil {
		return err
	}

	var st *models.TelegramStatus
	switch sub {
	case "status":
		st, err = api.TelegramStatus(ctx)
	case "link":
		if len(args) < 2 {
			return errors.New("telegram link: missing token; send /start to the bot to get one")
		}
		st, err = api.LinkTelegram(ctx, args[1])
	case "unlink":
		st, err = api.UnlinkTelegram(ctx)
	default:
		return fmt.Errorf("telegram: unknown subcommand %s", sub)
	}
	if err != nil {
		return err
	}

	if !st.Linked || st.LinkInfo == nil {
		c.printf("telegram: %s\n", c.theme.faint("not linked"))
		return nil
	}
	c.printf("telegram: %s to chat %d", c.theme.ok("linked"), st.LinkInfo.ChatID)
	if st.LinkInfo.LinkedAt != nil {
		c.printf(" since %s", st.LinkInfo.LinkedAt.Local().Format("2006-01-02 15:04"))
	}
	c.printf(", notifications %s\n", map[bool]string{true: "on", false: "off"}[st.LinkInfo.Notify])
	return nil
}
