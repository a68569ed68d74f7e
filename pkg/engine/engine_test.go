package engine

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/marmos91/rowguard/pkg/models"
	"github.com/marmos91/rowguard/pkg/store"
)

type fixture struct {
	t      *testing.T
	store  *store.GORMStore
	engine *Engine
	users  map[string]string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.New(&store.Config{Type: store.DatabaseTypeSQLite, SQLite: store.SQLiteConfig{Path: ":memory:"}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return &fixture{
		t:      t,
		store:  s,
		engine: New(s, Config{Audit: true, BcryptCost: bcrypt.MinCost}),
		users:  map[string]string{},
	}
}

func (f *fixture) user(name string, role models.UserRole) string {
	f.t.Helper()
	hash, err := models.HashPasswordWithCost(name+"-password", bcrypt.MinCost)
	require.NoError(f.t, err)
	id, err := f.store.CreateUser(context.Background(), &models.User{
		Username:     name,
		PasswordHash: hash,
		Enabled:      true,
		Role:         string(role),
	})
	require.NoError(f.t, err)
	f.users[name] = id
	return id
}

// login opens a connection and logs name in.
func (f *fixture) login(name string) *Conn {
	f.t.Helper()
	c := f.engine.Connect()
	f.t.Cleanup(c.Close)
	_, err := c.Login(context.Background(), name, name+"-password")
	require.NoError(f.t, err)
	return c
}

// rocks seeds the shared project fixture: casey owns p1 and shanan owns
// p3, each with three records; daven writes p1 and reads p3.
func (f *fixture) rocks() (p1, p3 string) {
	f.t.Helper()
	ctx := context.Background()
	for _, name := range []string{"casey", "daven", "shanan"} {
		f.user(name, models.RoleUser)
	}

	casey, shanan := f.login("casey"), f.login("shanan")
	proj1, err := casey.CreateProject(ctx, &models.Project{Name: "Project 1"})
	require.NoError(f.t, err)
	proj3, err := shanan.CreateProject(ctx, &models.Project{Name: "Project 3"})
	require.NoError(f.t, err)

	for _, lith := range []string{"Granite", "Basalt", "Shale"} {
		_, err := casey.CreateRecord(ctx, &models.Record{ProjectID: proj1.ID, Lithology: lith, TimePeriod: "cambrian"})
		require.NoError(f.t, err)
		_, err = shanan.CreateRecord(ctx, &models.Record{ProjectID: proj3.ID, Lithology: lith, TimePeriod: "devonian"})
		require.NoError(f.t, err)
	}

	_, err = casey.Grant(ctx, proj1.ID, f.users["daven"], models.LevelWriter)
	require.NoError(f.t, err)
	_, err = shanan.Grant(ctx, proj3.ID, f.users["daven"], models.LevelReader)
	require.NoError(f.t, err)
	return proj1.ID, proj3.ID
}

func countRecords(t *testing.T, c *Conn) int {
	t.Helper()
	records, err := c.ListRecords(context.Background(), models.RecordFilter{})
	require.NoError(t, err)
	return len(records)
}

func countGrants(t *testing.T, c *Conn) int {
	t.Helper()
	grants, err := c.ListGrants(context.Background(), "")
	require.NoError(t, err)
	return len(grants)
}

func TestMessageVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, name := range []string{"user1", "user2", "user3"} {
		f.user(name, models.RoleUser)
	}
	u1, u2 := f.login("user1"), f.login("user2")

	_, err := u1.SendMessage(ctx, &models.Message{ToUserID: f.users["user2"], Body: "hello"})
	require.NoError(t, err)
	_, err = u2.SendMessage(ctx, &models.Message{ToUserID: f.users["user1"], Body: "hi back"})
	require.NoError(t, err)
	_, err = u1.SendMessage(ctx, &models.Message{ToUserID: f.users["user3"], Body: "hey"})
	require.NoError(t, err)

	tests := []struct {
		user string
		want int
	}{
		{"user1", 3},
		{"user2", 2},
		{"user3", 1},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			msgs, err := f.login(tt.user).ListMessages(ctx, models.MessageFilter{})
			require.NoError(t, err)
			assert.Len(t, msgs, tt.want)
		})
	}

	t.Run("Anonymous", func(t *testing.T) {
		c := f.engine.Connect()
		defer c.Close()
		msgs, err := c.ListMessages(ctx, models.MessageFilter{})
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}

func TestSpoofedSenderIsDenied(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, name := range []string{"user1", "user2", "user3"} {
		f.user(name, models.RoleUser)
	}
	u1 := f.login("user1")

	m, err := u1.SendMessage(ctx, &models.Message{FromUserID: f.users["user1"], ToUserID: f.users["user2"], Body: "should work"})
	require.NoError(t, err)
	assert.Equal(t, f.users["user1"], m.FromUserID)

	_, err = u1.SendMessage(ctx, &models.Message{FromUserID: f.users["user3"], ToUserID: f.users["user2"], Body: "should not work"})
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	msgs, err := f.login("user2").ListMessages(ctx, models.MessageFilter{FromUserID: f.users["user3"]})
	require.NoError(t, err)
	assert.Empty(t, msgs)

	_, err = u1.SendMessage(ctx, &models.Message{ToUserID: "nobody", Body: "lost"})
	assert.ErrorIs(t, err, models.ErrUnknownRecipient)
}

func TestSendMessageLeavesArgumentUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, name := range []string{"user1", "user2", "user3"} {
		f.user(name, models.RoleUser)
	}
	u1 := f.login("user1")

	in := &models.Message{ToUserID: f.users["user2"], Body: "hello"}
	m, err := u1.SendMessage(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, f.users["user1"], m.FromUserID)
	assert.NotEmpty(t, m.ID)
	assert.Empty(t, in.FromUserID)
	assert.Empty(t, in.ID)

	spoofed := &models.Message{FromUserID: f.users["user3"], ToUserID: f.users["user2"], Body: "forged"}
	_, err = u1.SendMessage(ctx, spoofed)
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
	assert.Equal(t, &models.Message{FromUserID: f.users["user3"], ToUserID: f.users["user2"], Body: "forged"}, spoofed)
}

func TestCallerSuppliedIDsAreReplaced(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p1, _ := f.rocks()
	f.user("robin", models.RoleUser)
	casey, shanan, robin := f.login("casey"), f.login("shanan"), f.login("robin")

	records, err := casey.ListRecords(ctx, models.RecordFilter{ProjectID: p1})
	require.NoError(t, err)
	require.NotEmpty(t, records)
	hidden := records[0]

	own, err := robin.CreateProject(ctx, &models.Project{ID: p1, Name: "Robin's"})
	require.NoError(t, err)
	assert.NotEqual(t, p1, own.ID)

	r, err := robin.CreateRecord(ctx, &models.Record{ID: hidden.ID, ProjectID: own.ID, Lithology: "Chalk"})
	require.NoError(t, err)
	assert.NotEqual(t, hidden.ID, r.ID)

	sent, err := casey.SendMessage(ctx, &models.Message{ToUserID: f.users["shanan"], Body: "private"})
	require.NoError(t, err)
	m, err := robin.SendMessage(ctx, &models.Message{ID: sent.ID, ToUserID: f.users["casey"], Body: "hi"})
	require.NoError(t, err)
	assert.NotEqual(t, sent.ID, m.ID)

	// Originals are untouched.
	got, err := casey.GetRecord(ctx, hidden.ID)
	require.NoError(t, err)
	assert.Equal(t, hidden.Lithology, got.Lithology)
	assert.Equal(t, p1, got.ProjectID)
	proj, err := casey.GetProject(ctx, p1)
	require.NoError(t, err)
	assert.Equal(t, "Project 1", proj.Name)
	msg, err := shanan.GetMessage(ctx, sent.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", msg.Body)
}

func TestDeleteNeedsCapability(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, name := range []string{"user1", "user2", "user3", "deleter"} {
		f.user(name, models.RoleUser)
	}
	require.NoError(t, f.store.GrantCapability(ctx, &models.Capability{UserID: f.users["deleter"], Name: models.CapabilityDelete}))

	u1 := f.login("user1")
	m, err := u1.SendMessage(ctx, &models.Message{ToUserID: f.users["user3"], Body: "one"})
	require.NoError(t, err)
	_, err = u1.SendMessage(ctx, &models.Message{ToUserID: f.users["user2"], Body: "two"})
	require.NoError(t, err)

	fromUser1 := models.MessageFilter{FromUserID: f.users["user1"]}

	_, err = f.login("user3").DeleteMessages(ctx, fromUser1)
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
	err = u1.DeleteMessage(ctx, m.ID)
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	msgs, err := u1.ListMessages(ctx, fromUser1)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	n, err := f.login("deleter").DeleteMessages(ctx, fromUser1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	msgs, err = u1.ListMessages(ctx, fromUser1)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMessageUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, name := range []string{"user1", "user2", "user3"} {
		f.user(name, models.RoleUser)
	}
	u1, u2 := f.login("user1"), f.login("user2")
	m, err := u1.SendMessage(ctx, &models.Message{ToUserID: f.users["user2"], Body: "draft"})
	require.NoError(t, err)

	updated, err := u1.UpdateMessage(ctx, m.ID, "final")
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Body)
	assert.Equal(t, f.users["user2"], updated.ToUserID)

	_, err = u2.UpdateMessage(ctx, m.ID, "tampered")
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	_, err = f.login("user3").UpdateMessage(ctx, m.ID, "tampered")
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	_, err = f.login("user3").GetMessage(ctx, m.ID)
	assert.ErrorIs(t, err, models.ErrMessageNotFound)

	got, err := u2.GetMessage(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Body)
}

func TestProjectVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p1, p3 := f.rocks()
	casey, daven, shanan := f.login("casey"), f.login("daven"), f.login("shanan")

	assert.Equal(t, 3, countRecords(t, casey))
	assert.Equal(t, 6, countRecords(t, daven))
	assert.Equal(t, 3, countRecords(t, shanan))

	assert.Equal(t, 2, countGrants(t, casey))
	assert.Equal(t, 2, countGrants(t, shanan))

	projects, err := daven.ListProjects(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{p1, p3}, lo.Map(projects, func(p *models.Project, _ int) string { return p.ID }))

	_, err = casey.GetProject(ctx, p3)
	assert.ErrorIs(t, err, models.ErrProjectNotFound)
	_, err = casey.GetProject(ctx, p1)
	assert.NoError(t, err)

	anon := f.engine.Connect()
	defer anon.Close()
	assert.Equal(t, 0, countRecords(t, anon))
	assert.Equal(t, 0, countGrants(t, anon))
}

func TestCoOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, p3 := f.rocks()
	casey, shanan := f.login("casey"), f.login("shanan")

	_, err := shanan.Grant(ctx, p3, f.users["casey"], models.LevelOwner)
	require.NoError(t, err)

	assert.Equal(t, 3, countGrants(t, shanan))
	assert.Equal(t, 5, countGrants(t, casey))
	assert.Equal(t, 6, countRecords(t, casey))

	n, err := casey.UpdateRecords(ctx, models.RecordFilter{ProjectID: p3}, models.RecordPatch{TimePeriod: lo.ToPtr("ordovician")})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	records, err := shanan.ListRecords(ctx, models.RecordFilter{ProjectID: p3, TimePeriod: "ordovician"})
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestDowngradeBlocksWritesMidSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p1, _ := f.rocks()
	casey, daven := f.login("casey"), f.login("daven")

	_, err := daven.UpdateProject(ctx, p1, models.ProjectPatch{Description: lo.ToPtr("edited by daven")})
	require.NoError(t, err)

	_, err = casey.Grant(ctx, p1, f.users["daven"], models.LevelReader)
	require.NoError(t, err)

	_, err = daven.UpdateProject(ctx, p1, models.ProjectPatch{Description: lo.ToPtr("again")})
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	records, err := daven.ListRecords(ctx, models.RecordFilter{ProjectID: p1})
	require.NoError(t, err)
	require.NotEmpty(t, records)
	_, err = daven.UpdateRecord(ctx, records[0].ID, models.RecordPatch{Notes: lo.ToPtr("nope")})
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	p, err := casey.GetProject(ctx, p1)
	require.NoError(t, err)
	assert.Equal(t, "edited by daven", p.Description)
}

func TestBulkUpdateIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _ = f.rocks()
	daven := f.login("daven")

	// daven sees six records but may only write the three in p1.
	_, err := daven.UpdateRecords(ctx, models.RecordFilter{}, models.RecordPatch{Notes: lo.ToPtr("bulk")})
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	records, err := daven.ListRecords(ctx, models.RecordFilter{})
	require.NoError(t, err)
	for _, r := range records {
		assert.Empty(t, r.Notes)
	}

	n, err := daven.UpdateRecords(ctx, models.RecordFilter{TimePeriod: "cambrian"}, models.RecordPatch{Notes: lo.ToPtr("bulk")})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	// No visible match is not an error and changes nothing.
	n, err = f.login("casey").UpdateRecords(ctx, models.RecordFilter{TimePeriod: "devonian"}, models.RecordPatch{Notes: lo.ToPtr("x")})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRecordWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p1, p3 := f.rocks()
	daven := f.login("daven")

	_, err := daven.CreateRecord(ctx, &models.Record{ProjectID: p1, Lithology: "Gneiss"})
	require.NoError(t, err)
	_, err = daven.CreateRecord(ctx, &models.Record{ProjectID: p3, Lithology: "Gneiss"})
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
	_, err = daven.CreateRecord(ctx, &models.Record{ProjectID: "missing", Lithology: "Gneiss"})
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	records, err := daven.ListRecords(ctx, models.RecordFilter{ProjectID: p1})
	require.NoError(t, err)
	require.NotEmpty(t, records)

	// Moving a record needs writer on both ends.
	_, err = daven.UpdateRecord(ctx, records[0].ID, models.RecordPatch{ProjectID: lo.ToPtr(p3)})
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	_, err = daven.UpdateRecord(ctx, "missing", models.RecordPatch{Notes: lo.ToPtr("x")})
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	err = daven.DeleteRecord(ctx, records[0].ID)
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
	err = f.login("casey").DeleteRecord(ctx, records[0].ID)
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
}

func TestDeleteProjectCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p1, _ := f.rocks()
	f.user("janitor", models.RoleUser)
	require.NoError(t, f.store.GrantCapability(ctx, &models.Capability{UserID: f.users["janitor"], Name: models.CapabilityDelete}))

	err := f.login("casey").DeleteProject(ctx, p1)
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	require.NoError(t, f.login("janitor").DeleteProject(ctx, p1))

	assert.Equal(t, 3, countRecords(t, f.login("daven")))
	grants, err := f.store.ListGrants(ctx)
	require.NoError(t, err)
	for _, g := range grants {
		assert.NotEqual(t, p1, g.ProjectID)
	}
}

func TestDurablePrincipalMirrorsCreator(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p1, p3 := f.rocks()
	casey, shanan := f.login("casey"), f.login("shanan")

	_, err := casey.CreateDurablePrincipal(ctx, "cidz", "cidz-password")
	require.NoError(t, err)
	_, err = shanan.CreateDurablePrincipal(ctx, "shanan_direct", "shanan-password")
	require.NoError(t, err)

	cidz, err := f.engine.ConnectAs(ctx, "cidz", "cidz-password")
	require.NoError(t, err)
	defer cidz.Close()

	assert.Equal(t, countRecords(t, casey), countRecords(t, cidz))
	assert.Equal(t, countGrants(t, casey), countGrants(t, cidz))

	direct, err := f.engine.ConnectAs(ctx, "shanan_direct", "shanan-password")
	require.NoError(t, err)
	defer direct.Close()

	projects, err := direct.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
	assert.Equal(t, 3, countRecords(t, direct))

	_, err = direct.UpdateProject(ctx, p1, models.ProjectPatch{Name: lo.ToPtr("hijacked")})
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
	_, err = direct.CreateRecord(ctx, &models.Record{ProjectID: p1, Lithology: "Chert"})
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	// Live alias: shanan gains casey's project and the principal follows.
	_, err = casey.Grant(ctx, p1, f.users["shanan"], models.LevelReader)
	require.NoError(t, err)
	assert.Equal(t, 6, countRecords(t, direct))
	assert.Equal(t, countRecords(t, shanan), countRecords(t, direct))

	_, err = direct.UpdateRecords(ctx, models.RecordFilter{ProjectID: p3}, models.RecordPatch{Notes: lo.ToPtr("via principal")})
	require.NoError(t, err)
}

func TestConnectAsFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user("casey", models.RoleUser)

	before := f.engine.ActiveConnections()
	_, err := f.engine.ConnectAs(ctx, "nobody", "whatever-password")
	assert.ErrorIs(t, err, models.ErrAuthenticationFailed)
	assert.Equal(t, before, f.engine.ActiveConnections())

	c := f.engine.Connect()
	_, err = c.CreateDurablePrincipal(ctx, "anon_alias", "some-password")
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
	c.Close()
}

func TestUsersSeeOnlyThemselves(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user("casey", models.RoleUser)
	f.user("daven", models.RoleUser)
	casey := f.login("casey")

	users, err := casey.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "casey", users[0].Username)

	me, err := casey.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.users["casey"], me.ID)

	anon := f.engine.Connect()
	defer anon.Close()
	_, err = anon.Me(ctx)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestLogoutAndClose(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.rocks()
	c := f.login("casey")

	id, ok := c.CurrentUser()
	assert.True(t, ok)
	assert.Equal(t, f.users["casey"], id)

	c.Logout(ctx)
	c.Logout(ctx)
	_, ok = c.CurrentUser()
	assert.False(t, ok)
	assert.Equal(t, 0, countRecords(t, c))

	c.Close()
	_, err := c.ListRecords(ctx, models.RecordFilter{})
	assert.ErrorIs(t, err, ErrConnClosed)
	_, err = c.Login(ctx, "casey", "casey-password")
	assert.ErrorIs(t, err, ErrConnClosed)
}

func TestDisabledUserLosesAccessMidSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.rocks()
	daven := f.login("daven")
	require.Equal(t, 6, countRecords(t, daven))

	require.NoError(t, f.store.SetUserEnabled(ctx, f.users["daven"], false))
	assert.Equal(t, 0, countRecords(t, daven))
}

func TestAdminOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user("root", models.RoleAdmin)
	f.user("casey", models.RoleUser)
	admin, casey := f.login("root"), f.login("casey")

	_, err := casey.CreateUser(ctx, NewUser{Username: "eve", Password: "eve-password"})
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	u, err := admin.CreateUser(ctx, NewUser{Username: "eve", Password: "eve-password"})
	require.NoError(t, err)
	assert.True(t, u.Enabled)
	assert.Equal(t, string(models.RoleUser), u.Role)

	cost, err := bcrypt.Cost([]byte(u.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
	assert.Equal(t, bcrypt.MinCost, f.store.BcryptCost())

	_, err = admin.CreateUser(ctx, NewUser{Username: "eve", Password: "eve-password"})
	assert.ErrorIs(t, err, models.ErrConflict)

	require.NoError(t, admin.GrantCapability(ctx, u.ID, models.CapabilityDelete))
	assert.ErrorIs(t, casey.GrantCapability(ctx, f.users["casey"], models.CapabilityDelete), models.ErrPermissionDenied)
	assert.ErrorIs(t, admin.GrantCapability(ctx, u.ID, models.CapabilityName("drop")), models.ErrInvalidCapability)
	require.NoError(t, admin.RevokeCapability(ctx, u.ID, models.CapabilityDelete))

	require.NoError(t, admin.SetUserEnabled(ctx, u.ID, false))
	eve := f.engine.Connect()
	defer eve.Close()
	_, err = eve.Login(ctx, "eve", "eve-password")
	assert.ErrorIs(t, err, models.ErrAuthenticationFailed)

	// Admin does not imply row visibility.
	_, err = casey.CreateProject(ctx, &models.Project{Name: "private"})
	require.NoError(t, err)
	projects, err := admin.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)

	entries, err := admin.ListAudit(ctx, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
	own, err := casey.ListAudit(ctx, 0)
	require.NoError(t, err)
	for _, e := range own {
		assert.Equal(t, f.users["casey"], e.UserID)
	}
}

func TestResumeFromHandle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.rocks()

	orig := f.engine.Connect()
	defer orig.Close()
	h, err := orig.Login(ctx, "daven", "daven-password")
	require.NoError(t, err)

	c := f.engine.Connect()
	defer c.Close()
	require.NoError(t, c.Resume(ctx, h))
	assert.Equal(t, 6, countRecords(t, c))

	forged := *h
	forged.PrincipalID = "not-a-principal"
	other := f.engine.Connect()
	defer other.Close()
	assert.ErrorIs(t, other.Resume(ctx, &forged), models.ErrAuthenticationFailed)
	assert.ErrorIs(t, other.Resume(ctx, nil), models.ErrAuthenticationFailed)

	require.NoError(t, f.store.SetUserEnabled(ctx, f.users["daven"], false))
	assert.ErrorIs(t, other.Resume(ctx, h), models.ErrAuthenticationFailed)
	_, ok := other.CurrentUser()
	assert.False(t, ok)
}
