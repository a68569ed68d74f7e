package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/rowguard/pkg/models"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "empty defaults to table", input: "", want: FormatTable},
		{name: "JSON uppercase", input: "JSON", want: FormatJSON},
		{name: "yml alias", input: "yml", want: FormatYAML},
		{name: "invalid format", input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserTable(t *testing.T) {
	now := time.Now()
	users := UserTable{
		{ID: "u1", Username: "casey", Role: "user", Enabled: true, LastLogin: &now},
		{ID: "u2", Username: "daven", Role: "admin"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatTable).Print(users))

	out := buf.String()
	assert.Contains(t, out, "USERNAME")
	assert.Contains(t, out, "casey")
	assert.Contains(t, out, "daven")
	assert.Equal(t, "-", users.Rows()[1][4])
}

func TestAuditTable(t *testing.T) {
	entries := AuditTable{{
		Timestamp: time.Now(), UserID: "u1", Operation: "update", Collection: "records",
		Target: "r1", Decision: "deny", Reason: "reader grant does not allow writes",
	}}
	rows := entries.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "deny", rows[0][5])
	assert.Len(t, rows[0], len(entries.Headers()))
}

func TestPrinterJSONAndYAML(t *testing.T) {
	grants := GrantTable{{ProjectID: "p1", UserID: "u1", Level: models.LevelOwner}}

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatJSON).Print(grants))
	assert.Contains(t, buf.String(), `"level": "owner"`)

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, FormatYAML).Print(map[string]string{"name": "cidz"}))
	assert.Contains(t, buf.String(), "name: cidz")
}
