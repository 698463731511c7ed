package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/diewo77/epic-events/internal/apperr"
	"github.com/diewo77/epic-events/internal/auth"
	"github.com/diewo77/epic-events/internal/db"
	"github.com/diewo77/epic-events/internal/report"
	"github.com/diewo77/epic-events/internal/services"
)

// command is one CLI entry point. Commands with session set run only with a
// valid stored token and receive the resolved session.
type command struct {
	summary string
	session bool
	run     func(ctx context.Context, a *App, s *auth.Session, args []string) error
}

var commands = map[string]command{
	"login":       {summary: "log in and store a session token", run: cmdLogin},
	"logout":      {summary: "remove the stored session token", run: cmdLogout},
	"whoami":      {summary: "show the current session", session: true, run: cmdWhoami},
	"register":    {summary: "create a user", session: true, run: cmdRegister},
	"update-user": {summary: "update a user found by email", session: true, run: cmdUpdateUser},

	"client add":    {summary: "create a client", session: true, run: cmdClientAdd},
	"client list":   {summary: "list clients", session: true, run: cmdClientList},
	"client show":   {summary: "show one client", session: true, run: cmdClientShow},
	"client update": {summary: "update a client", session: true, run: cmdClientUpdate},
	"client delete": {summary: "delete a client with its contracts and events", session: true, run: cmdClientDelete},

	"contract add":    {summary: "create a contract", session: true, run: cmdContractAdd},
	"contract list":   {summary: "list contracts", session: true, run: cmdContractList},
	"contract show":   {summary: "show one contract", session: true, run: cmdContractShow},
	"contract update": {summary: "update a contract", session: true, run: cmdContractUpdate},
	"contract filter": {summary: "filter contracts for the current role", session: true, run: cmdContractFilter},

	"event add":    {summary: "create an event for a signed contract", session: true, run: cmdEventAdd},
	"event list":   {summary: "list events", session: true, run: cmdEventList},
	"event show":   {summary: "show one event", session: true, run: cmdEventShow},
	"event update": {summary: "update an event", session: true, run: cmdEventUpdate},
	"event filter": {summary: "filter events for the current role", session: true, run: cmdEventFilter},

	"migrate":     {summary: "apply the schema", run: cmdMigrate},
	"seed":        {summary: "seed roles and the bootstrap admin", run: cmdSeed},
	"seed-demo":   {summary: "create a demo client, contract and event", session: true, run: cmdSeedDemo},
	"report-test": {summary: "send a test notification to every sink", run: cmdReportTest},
}

func (a *App) dispatch(ctx context.Context, cmd command, args []string) error {
	var s *auth.Session
	if cmd.session {
		if s = a.sessions.Resolve(ctx); s == nil {
			return apperr.Auth("session", "not logged in or session expired")
		}
	}
	return cmd.run(ctx, a, s, args)
}

// ─────────────────────────────────────────────────────────────────────────────
// Session
// ─────────────────────────────────────────────────────────────────────────────

func cmdLogin(ctx context.Context, a *App, _ *auth.Session, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password, read from stdin when omitted")
	set, err := parseFlags(fs, args, "email")
	if err != nil {
		return err
	}
	if !set["password"] {
		if *password, err = readLine(a.in); err != nil {
			return usagef("login: password: %v", err)
		}
	}
	s, err := a.sessions.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	return a.printSession(s)
}

func readLine(r io.Reader) (string, error) {
	if r == nil {
		return "", io.EOF
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" && err != nil {
		return "", err
	}
	return line, nil
}

func cmdLogout(_ context.Context, a *App, _ *auth.Session, args []string) error {
	if _, err := parseFlags(newFlags("logout"), args); err != nil {
		return err
	}
	if err := a.sessions.Logout(); err != nil {
		return err
	}
	return a.message("Logged out")
}

func cmdWhoami(_ context.Context, a *App, s *auth.Session, args []string) error {
	if _, err := parseFlags(newFlags("whoami"), args); err != nil {
		return err
	}
	return a.printSession(s)
}

// ─────────────────────────────────────────────────────────────────────────────
// Users
// ─────────────────────────────────────────────────────────────────────────────

func cmdRegister(ctx context.Context, a *App, s *auth.Session, args []string) error {
	fs := newFlags("register")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	role := fs.String("role", "", "Admin, Commercial, Support or Gestion")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}
	u, err := a.svc.Users.Register(ctx, s.User, services.RegisterInput{
		FullName: *name, Email: *email, Password: *password, Role: *role,
	})
	if err != nil {
		return err
	}
	return a.printUser(u)
}

func cmdUpdateUser(ctx context.Context, a *App, s *auth.Session, args []string) error {
	fs := newFlags("update-user")
	email := fs.String("email", "", "email of the user to update")
	name := fs.String("name", "", "new full name")
	newEmail := fs.String("new-email", "", "new email")
	password := fs.String("password", "", "new password")
	set, err := parseFlags(fs, args, "email")
	if err != nil {
		return err
	}
	u, err := a.svc.Users.Update(ctx, s.User, *email, services.UserUpdate{
		FullName: opt(set, "name", *name),
		Email:    opt(set, "new-email", *newEmail),
		Password: opt(set, "password", *password),
	})
	if err != nil {
		return err
	}
	return a.printUser(u)
}

// ─────────────────────────────────────────────────────────────────────────────
// Clients
// ─────────────────────────────────────────────────────────────────────────────

func cmdClientAdd(ctx context.Context, a *App, s *auth.Session, args []string) error {
	fs := newFlags("client add")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email")
	phone := fs.String("phone", "", "phone")
	company := fs.String("company", "", "company name")
	sales := fs.Uint("sales-contact", 0, "commercial user id, defaults to you")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}
	c, err := a.svc.Clients.Create(ctx, s.User, services.ClientInput{
		FullName: *name, Email: *email, Phone: *phone, CompanyName: *company,
		SalesContactID: *sales,
	})
	if err != nil {
		return err
	}
	return printItem(a, clientColumns, *c)
}

func cmdClientList(ctx context.Context, a *App, s *auth.Session, args []string) error {
	if _, err := parseFlags(newFlags("client list"), args); err != nil {
		return err
	}
	rows, err := a.svc.Clients.List(ctx, s.User)
	if err != nil {
		return err
	}
	return printRows(a, clientColumns, rows)
}

func cmdClientShow(ctx context.Context, a *App, s *auth.Session, args []string) error {
	fs := newFlags("client show")
	id := fs.Uint("id", 0, "client id")
	if _, err := parseFlags(fs, args, "id"); err != nil {
		return err
	}
	c, err := a.svc.Clients.Get(ctx, s.User, *id)
	if err != nil {
		return err
	}
	return printItem(a, clientColumns, *c)
}

func cmdClientUpdate(ctx context.Context, a *App, s *auth.Session, args []string) error {
	fs := newFlags("client update")
	id := fs.Uint("id", 0, "client id")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email")
	phone := fs.String("phone", "", "phone")
	company := fs.String("company", "", "company name")
	sales := fs.Uint("sales-contact", 0, "commercial user id")
	set, err := parseFlags(fs, args, "id")
	if err != nil {
		return err
	}
	c, err := a.svc.Clients.Update(ctx, s.User, *id, services.ClientUpdate{
		FullName:       opt(set, "name", *name),
		Email:          opt(set, "email", *email),
		Phone:          opt(set, "phone", *phone),
		CompanyName:    opt(set, "company", *company),
		SalesContactID: opt(set, "sales-contact", *sales),
	})
	if err != nil {
		return err
	}
	return printItem(a, clientColumns, *c)
}

func cmdClientDelete(ctx context.Context, a *App, s *auth.Session, args []string) error {
	fs := newFlags("client delete")
	id := fs.Uint("id", 0, "client id")
	if _, err := parseFlags(fs, args, "id"); err != nil {
		return err
	}
	if err := a.svc.Clients.Delete(ctx, s.User, *id); err != nil {
		return err
	}
	return a.message(fmt.Sprintf("Client %d deleted", *id))
}

// ─────────────────────────────────────────────────────────────────────────────
// Contracts
// ─────────────────────────────────────────────────────────────────────────────

func cmdContractAdd(ctx context.Context, a *App, s *auth.Session, args []string) error {
	fs := newFlags("contract add")
	client := fs.Uint("client", 0, "client id")
	total := fs.Float64("total", 0, "total amount")
	due := fs.Float64("due", 0, "amount due")
	signed := fs.Bool("signed", false, "contract is signed")
	sales := fs.Uint("sales-contact", 0, "commercial user id, defaults to you")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}
	c, err := a.svc.Contracts.Create(ctx, s.User, services.ContractInput{
		ClientID: *client, TotalAmount: *total, AmountDue: *due, Signed: *signed,
		SalesContactID: *sales,
	})
	if err != nil {
		return err
	}
	return printItem(a, contractColumns, *c)
}

func cmdContractList(ctx context.Context, a *App, s *auth.Session, args []string) error {
	if _, err := parseFlags(newFlags("contract list"), args); err != nil {
		return err
	}
	rows, err := a.svc.Contracts.List(ctx, s.User)
	if err != nil {
		return err
	}
	return printRows(a, contractColumns, rows)
}

func cmdContractShow(ctx context.Context, a *App, s *auth.Session, args []string) error {
	fs := newFlags("contract show")
	id := fs.Uint("id", 0, "contract id")
	if _, err := parseFlags(fs, args, "id"); err != nil {
		return err
	}
	c, err := a.svc.Contracts.Get(ctx, s.User, *id)
	if err != nil {
		return err
	}
	return printItem(a, contractColumns, *c)
}

func cmdContractUpdate(ctx context.Context, a *App, s *auth.Session, args []string) error {
	fs := newFlags("contract update")
	id := fs.Uint("id", 0, "contract id")
	total := fs.Float64("total", 0, "total amount")
	due := fs.Float64("due", 0, "amount due")
	signed := fs.Bool("signed", false, "signed state, -signed=false to unsign")
	sales := fs.Uint("sales-contact", 0, "commercial user id")
	set, err := parseFlags(fs, args, "id")
	if err != nil {
		return err
	}
	c, err := a.svc.Contracts.Update(ctx, s.User, *id, services.ContractUpdate{
		TotalAmount:    opt(set, "total", *total),
		AmountDue:      opt(set, "due", *due),
		Signed:         opt(set, "signed", *signed),
		SalesContactID: opt(set, "sales-contact", *sales),
	})
	if err != nil {
		return err
	}
	return printItem(a, contractColumns, *c)
}

func cmdContractFilter(ctx context.Context, a *App, s *auth.Session, args []string) error {
	fs := newFlags("contract filter")
	id := fs.Uint("id", 0, "contract id")
	client := fs.Uint("client", 0, "client id")
	minDue := fs.Float64("min-due", 0, "minimum amount due, inclusive")
	maxDue := fs.Float64("max-due", 0, "maximum amount due, inclusive")
	set, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	sets, err := a.svc.Contracts.Filter(ctx, s.User, services.ContractFilter{
		ID:           ptrIf(set, "id", *id),
		ClientID:     ptrIf(set, "client", *client),
		MinAmountDue: ptrIf(set, "min-due", *minDue),
		MaxAmountDue: ptrIf(set, "max-due", *maxDue),
	})
	if err != nil {
		return err
	}
	return printSets(a, contractColumns, sets)
}

// ─────────────────────────────────────────────────────────────────────────────
// Events
// ─────────────────────────────────────────────────────────────────────────────

func cmdEventAdd(ctx context.Context, a *App, s *auth.Session, args []string) error {
	fs := newFlags("event add")
	contract := fs.Uint("contract", 0, "contract id")
	support := fs.String("support", "", "support contact full name")
	start := timeFlag(fs, "start", "start, YYYY-MM-DD HH:MM")
	end := timeFlag(fs, "end", "end, YYYY-MM-DD HH:MM")
	location := fs.String("location", "", "location")
	attendees := fs.Int("attendees", 0, "expected attendees")
	notes := fs.String("notes", "", "notes")
	set, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	e, err := a.svc.Events.Create(ctx, s.User, services.EventInput{
		ContractID:     *contract,
		SupportContact: ptrIf(set, "support", *support),
		StartDate:      start.t,
		EndDate:        end.t,
		Location:       *location,
		Attendees:      *attendees,
		Notes:          ptrIf(set, "notes", *notes),
	})
	if err != nil {
		return err
	}
	return printItem(a, eventColumns, *e)
}

func cmdEventList(ctx context.Context, a *App, s *auth.Session, args []string) error {
	if _, err := parseFlags(newFlags("event list"), args); err != nil {
		return err
	}
	rows, err := a.svc.Events.List(ctx, s.User)
	if err != nil {
		return err
	}
	return printRows(a, eventColumns, rows)
}

func cmdEventShow(ctx context.Context, a *App, s *auth.Session, args []string) error {
	fs := newFlags("event show")
	id := fs.Uint("id", 0, "event id")
	if _, err := parseFlags(fs, args, "id"); err != nil {
		return err
	}
	e, err := a.svc.Events.Get(ctx, s.User, *id)
	if err != nil {
		return err
	}
	return printItem(a, eventColumns, *e)
}

func cmdEventUpdate(ctx context.Context, a *App, s *auth.Session, args []string) error {
	fs := newFlags("event update")
	id := fs.Uint("id", 0, "event id")
	support := fs.String("support", "", "support contact full name, empty to unassign")
	start := timeFlag(fs, "start", "start, YYYY-MM-DD HH:MM")
	end := timeFlag(fs, "end", "end, YYYY-MM-DD HH:MM")
	location := fs.String("location", "", "location")
	attendees := fs.Int("attendees", 0, "expected attendees")
	notes := fs.String("notes", "", "notes, empty to clear")
	set, err := parseFlags(fs, args, "id")
	if err != nil {
		return err
	}
	e, err := a.svc.Events.Update(ctx, s.User, *id, services.EventUpdate{
		SupportContact: opt(set, "support", *support),
		StartDate:      opt(set, "start", start.t),
		EndDate:        opt(set, "end", end.t),
		Location:       opt(set, "location", *location),
		Attendees:      opt(set, "attendees", *attendees),
		Notes:          opt(set, "notes", *notes),
	})
	if err != nil {
		return err
	}
	return printItem(a, eventColumns, *e)
}

func cmdEventFilter(ctx context.Context, a *App, s *auth.Session, args []string) error {
	fs := newFlags("event filter")
	id := fs.Uint("id", 0, "event id")
	contract := fs.Uint("contract", 0, "contract id")
	support := fs.String("support", "", "support contact full name")
	from := timeFlag(fs, "from", "earliest start, inclusive")
	until := timeFlag(fs, "until", "latest end, inclusive")
	location := fs.String("location", "", "case-insensitive location substring")
	minAtt := fs.Int("min-attendees", 0, "minimum attendees, inclusive")
	maxAtt := fs.Int("max-attendees", 0, "maximum attendees, inclusive")
	set, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	sets, err := a.svc.Events.Filter(ctx, s.User, services.EventFilter{
		ID:             ptrIf(set, "id", *id),
		ContractID:     ptrIf(set, "contract", *contract),
		SupportContact: ptrIf(set, "support", *support),
		StartFrom:      ptrIf(set, "from", from.t),
		EndUntil:       ptrIf(set, "until", until.t),
		Location:       *location,
		MinAttendees:   ptrIf(set, "min-attendees", *minAtt),
		MaxAttendees:   ptrIf(set, "max-attendees", *maxAtt),
	})
	if err != nil {
		return err
	}
	return printSets(a, eventColumns, sets)
}

// ─────────────────────────────────────────────────────────────────────────────
// Maintenance
// ─────────────────────────────────────────────────────────────────────────────

// cmdMigrate reports the schema state. NewApp already ran the migrations,
// so this is a no-op apart from the summary line.
func cmdMigrate(_ context.Context, a *App, _ *auth.Session, args []string) error {
	if _, err := parseFlags(newFlags("migrate"), args); err != nil {
		return err
	}
	return a.message(fmt.Sprintf("Schema up to date (%s %s)", a.cfg.Database.Driver, db.MaskDSN(a.cfg.Database.DSN)))
}

func cmdSeed(_ context.Context, a *App, _ *auth.Session, args []string) error {
	if _, err := parseFlags(newFlags("seed"), args); err != nil {
		return err
	}
	if !a.cfg.Bootstrap.HasBootstrapAdmin() {
		return a.message("Roles seeded; set ADMIN_EMAIL and ADMIN_PASSWORD to create an administrator")
	}
	created, err := db.SeedAdmin(a.db, a.digest, a.cfg.Bootstrap)
	if err != nil {
		return apperr.Storage("seed", err)
	}
	if !created {
		return a.message("Roles seeded; administrator already exists")
	}
	return a.message(fmt.Sprintf("Roles seeded; administrator %s created", a.cfg.Bootstrap.AdminEmail))
}

// Demo data mirrors the fixtures used in walkthroughs.
var (
	demoSupport = "Test Support"
	demoNotes   = "Test Event"
)

func cmdSeedDemo(ctx context.Context, a *App, s *auth.Session, args []string) error {
	if _, err := parseFlags(newFlags("seed-demo"), args); err != nil {
		return err
	}
	client, err := a.svc.Clients.Create(ctx, s.User, services.ClientInput{
		FullName:    "Test Client",
		Email:       "test@client.com",
		Phone:       "+33612345678",
		CompanyName: "Test Company Inc.",
	})
	if err != nil {
		return err
	}
	contract, err := a.svc.Contracts.Create(ctx, s.User, services.ContractInput{
		ClientID: client.ID, TotalAmount: 5000, AmountDue: 2500, Signed: true,
	})
	if err != nil {
		return err
	}
	start := time.Date(2025, 6, 10, 14, 0, 0, 0, time.Local)
	event, err := a.svc.Events.Create(ctx, s.User, services.EventInput{
		ContractID:     contract.ID,
		SupportContact: &demoSupport,
		StartDate:      start,
		EndDate:        start.Add(8 * time.Hour),
		Location:       "Test Location",
		Attendees:      50,
		Notes:          &demoNotes,
	})
	if err != nil {
		return err
	}
	return a.message(fmt.Sprintf("Demo data created: client %d, contract %d, event %d", client.ID, contract.ID, event.ID))
}

func cmdReportTest(ctx context.Context, a *App, _ *auth.Session, args []string) error {
	if _, err := parseFlags(newFlags("report-test"), args); err != nil {
		return err
	}
	a.reports.Report(ctx, report.New(report.TestError, report.LevelError, "test notification", map[string]any{
		"source": "report-test",
	}))
	return a.message("Test notification queued")
}
