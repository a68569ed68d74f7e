package output

import (
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/marmos91/rowguard/pkg/models"
)

// TimeFormat renders timestamps in tables.
const TimeFormat = "2006-01-02 15:04:05"

// TableRenderer is implemented by types that can render themselves as a table.
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
}

// PrintTable writes data as a borderless table.
func PrintTable(w io.Writer, data TableRenderer) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(data.Headers())

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	table.AppendBulk(data.Rows())
	table.Render()
	return nil
}

// UserTable lists users.
type UserTable []*models.User

func (t UserTable) Headers() []string {
	return []string{"ID", "Username", "Role", "Enabled", "Last Login"}
}

func (t UserTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, u := range t {
		last := "-"
		if u.LastLogin != nil {
			last = formatTime(*u.LastLogin)
		}
		rows = append(rows, []string{u.ID, u.Username, u.Role, strconv.FormatBool(u.Enabled), last})
	}
	return rows
}

// PrincipalTable lists durable principals.
type PrincipalTable []*models.Principal

func (t PrincipalTable) Headers() []string {
	return []string{"Name", "ID", "Acts As", "Enabled", "Created"}
}

func (t PrincipalTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, p := range t {
		rows = append(rows, []string{p.Name, p.ID, p.UserID, strconv.FormatBool(p.Enabled), formatTime(p.CreatedAt)})
	}
	return rows
}

// GrantTable lists project grants.
type GrantTable []*models.Grant

func (t GrantTable) Headers() []string {
	return []string{"Project", "User", "Level", "Granted By"}
}

func (t GrantTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, g := range t {
		rows = append(rows, []string{g.ProjectID, g.UserID, string(g.Level), g.GrantedBy})
	}
	return rows
}

// AuditTable lists policy decisions, newest first.
type AuditTable []*models.AuditEntry

func (t AuditTable) Headers() []string {
	return []string{"Time", "User", "Operation", "Collection", "Target", "Decision", "Reason"}
}

func (t AuditTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, e := range t {
		rows = append(rows, []string{
			formatTime(e.Timestamp), e.UserID, e.Operation, e.Collection, e.Target, e.Decision, e.Reason,
		})
	}
	return rows
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(TimeFormat)
}
