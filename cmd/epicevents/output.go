package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/diewo77/epic-events/internal/auth"
	"github.com/diewo77/epic-events/internal/models"
	"github.com/diewo77/epic-events/internal/services"
)

const timeLayout = "2006-01-02 15:04"

// columns renders one entity type as a table.
type columns[T any] struct {
	header []string
	cells  func(T) []string
}

var clientColumns = columns[models.Client]{
	header: []string{"ID", "NAME", "EMAIL", "PHONE", "COMPANY", "SALES"},
	cells: func(c models.Client) []string {
		return []string{fmtID(c.ID), c.FullName, c.Email, c.Phone, c.CompanyName, fmtID(c.SalesContactID)}
	},
}

var contractColumns = columns[models.Contract]{
	header: []string{"ID", "CLIENT", "SALES", "TOTAL", "DUE", "STATUS"},
	cells: func(c models.Contract) []string {
		return []string{fmtID(c.ID), fmtID(c.ClientID), fmtID(c.SalesContactID), money(c.TotalAmount), money(c.AmountDue), string(c.Status())}
	},
}

var eventColumns = columns[models.Event]{
	header: []string{"ID", "CONTRACT", "SUPPORT", "START", "END", "LOCATION", "ATTENDEES"},
	cells: func(e models.Event) []string {
		support := "-"
		if e.Assigned() {
			support = *e.SupportContact
		}
		return []string{
			fmtID(e.ID), fmtID(e.ContractID), support,
			localTime(e.StartDate), localTime(e.EndDate),
			e.Location, strconv.Itoa(e.Attendees),
		}
	},
}

func fmtID(v uint) string { return strconv.FormatUint(uint64(v), 10) }
func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
func localTime(t time.Time) string { return t.Local().Format(timeLayout) }

// jsonRow is the JSON shape of a listing row.
type jsonRow[T any] struct {
	Item     T    `json:"item"`
	Editable bool `json:"editable"`
}

type jsonSet[T any] struct {
	Label string       `json:"label"`
	Rows  []jsonRow[T] `json:"rows"`
}

func toJSONRows[T any](rows []services.Row[T]) []jsonRow[T] {
	out := make([]jsonRow[T], len(rows))
	for i, r := range rows {
		out[i] = jsonRow[T]{Item: r.Item, Editable: r.Editable}
	}
	return out
}

func (a *App) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printRows prints a listing with an EDIT column marking rows the caller
// may update.
func printRows[T any](a *App, cols columns[T], rows []services.Row[T]) error {
	if a.json {
		return a.writeJSON(toJSONRows(rows))
	}
	return writeTable(a, cols, rows)
}

func printItem[T any](a *App, cols columns[T], item T) error {
	if a.json {
		return a.writeJSON(item)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(cols.header, "\t"))
	fmt.Fprintln(tw, strings.Join(cols.cells(item), "\t"))
	return tw.Flush()
}

// printSets prints each labelled result set in order. Empty sets are still
// printed so the caller sees which scopes were searched.
func printSets[T any](a *App, cols columns[T], sets []services.ResultSet[T]) error {
	if a.json {
		out := make([]jsonSet[T], len(sets))
		for i, s := range sets {
			out[i] = jsonSet[T]{Label: s.Label, Rows: toJSONRows(s.Rows)}
		}
		return a.writeJSON(out)
	}
	for i, s := range sets {
		if i > 0 {
			fmt.Fprintln(a.out)
		}
		fmt.Fprintf(a.out, "%s (%d)\n", s.Label, len(s.Rows))
		if len(s.Rows) == 0 {
			continue
		}
		if err := writeTable(a, cols, s.Rows); err != nil {
			return err
		}
	}
	return nil
}

func writeTable[T any](a *App, cols columns[T], rows []services.Row[T]) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(append(cols.header, "EDIT"), "\t"))
	for _, r := range rows {
		edit := ""
		if r.Editable {
			edit = "yes"
		}
		fmt.Fprintln(tw, strings.Join(append(cols.cells(r.Item), edit), "\t"))
	}
	return tw.Flush()
}

type sessionView struct {
	ID        uint      `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (a *App) printSession(s *auth.Session) error {
	v := sessionView{
		ID:        s.User.ID,
		FullName:  s.User.FullName,
		Email:     s.User.Email,
		Role:      string(s.User.RoleName()),
		ExpiresAt: s.ExpiresAt,
	}
	if a.json {
		return a.writeJSON(v)
	}
	_, err := fmt.Fprintf(a.out, "%s <%s> (%s), session expires %s\n",
		v.FullName, v.Email, v.Role, localTime(v.ExpiresAt))
	return err
}

func (a *App) printUser(u *models.User) error {
	if a.json {
		return a.writeJSON(u)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE")
	fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.FullName, u.Email, u.RoleName())
	return tw.Flush()
}

func (a *App) message(msg string) error {
	if a.json {
		return a.writeJSON(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(a.out, msg)
	return err
}
