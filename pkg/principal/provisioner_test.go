package principal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/marmos91/rowguard/pkg/models"
	"github.com/marmos91/rowguard/pkg/policy"
	"github.com/marmos91/rowguard/pkg/session"
	"github.com/marmos91/rowguard/pkg/store"
)

const principalPassword = "principal-secret"

type env struct {
	store   *store.GORMStore
	engine  *policy.Engine
	prov    *Provisioner
	casey   *session.Context
	caseyID string
	shanan  *session.Context
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	s, err := store.New(&store.Config{Type: store.DatabaseTypeSQLite, SQLite: store.SQLiteConfig{Path: ":memory:"}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	engine := policy.New(s)
	e := &env{store: s, engine: engine, prov: New(engine, WithBcryptCost(bcrypt.MinCost))}

	bind := func(name string) (*session.Context, string) {
		hash, err := models.HashPasswordWithCost(name+"-password", bcrypt.MinCost)
		require.NoError(t, err)
		id, err := s.CreateUser(ctx, &models.User{Username: name, PasswordHash: hash, Enabled: true})
		require.NoError(t, err)
		sess := session.New()
		require.NoError(t, sess.Bind(session.Binding{UserID: id, Username: name}))
		return sess, id
	}
	e.casey, e.caseyID = bind("casey")
	e.shanan, _ = bind("shanan")
	return e
}

// connect binds a fresh session the way a direct principal login does.
func (e *env) connect(t *testing.T, name string) *session.Context {
	t.Helper()
	pr, err := e.prov.Authenticate(context.Background(), name, principalPassword)
	require.NoError(t, err)
	sess := session.New()
	require.NoError(t, sess.Bind(session.Binding{PrincipalID: pr.ID, PrincipalName: pr.Name}))
	return sess
}

func TestCreateDurablePrincipal(t *testing.T) {
	ctx := context.Background()

	t.Run("AliasesCreator", func(t *testing.T) {
		e := newEnv(t)
		p, err := e.prov.CreateDurablePrincipal(ctx, e.casey, "cidz", principalPassword)
		require.NoError(t, err)
		assert.Equal(t, "cidz", p.Name)
		assert.Equal(t, e.caseyID, p.UserID)
		assert.True(t, p.Enabled)
		assert.NotEqual(t, principalPassword, p.PasswordHash)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.prov.CreateDurablePrincipal(ctx, e.casey, "cidz", principalPassword)
		require.NoError(t, err)
		_, err = e.prov.CreateDurablePrincipal(ctx, e.shanan, "cidz", principalPassword)
		assert.ErrorIs(t, err, models.ErrDuplicatePrincipal)
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("Anonymous", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.prov.CreateDurablePrincipal(ctx, session.New(), "cidz", principalPassword)
		assert.ErrorIs(t, err, models.ErrPermissionDenied)
	})

	t.Run("InvalidName", func(t *testing.T) {
		e := newEnv(t)
		for _, name := range []string{"", "Cidz", "1cidz", "ci-dz", "a23456789012345678901234567890123456789012345678901234567890abcd"} {
			_, err := e.prov.CreateDurablePrincipal(ctx, e.casey, name, principalPassword)
			assert.ErrorIs(t, err, models.ErrInvalidPrincipalName, name)
		}
	})

	t.Run("WeakPassword", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.prov.CreateDurablePrincipal(ctx, e.casey, "cidz", "short")
		assert.ErrorIs(t, err, models.ErrPasswordTooShort)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, err := e.prov.CreateDurablePrincipal(ctx, e.casey, "cidz", principalPassword)
	require.NoError(t, err)

	_, err = e.prov.Authenticate(ctx, "cidz", principalPassword)
	require.NoError(t, err)

	_, errWrong := e.prov.Authenticate(ctx, "cidz", "wrong-password")
	_, errUnknown := e.prov.Authenticate(ctx, "nobody", principalPassword)
	assert.ErrorIs(t, errWrong, models.ErrAuthenticationFailed)
	assert.ErrorIs(t, errUnknown, models.ErrAuthenticationFailed)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())

	require.NoError(t, e.store.SetUserEnabled(ctx, e.caseyID, false))
	_, err = e.prov.Authenticate(ctx, "cidz", principalPassword)
	assert.ErrorIs(t, err, models.ErrAuthenticationFailed)
}

func TestPrincipalIsLiveAlias(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, err := e.prov.CreateDurablePrincipal(ctx, e.casey, "cidz", principalPassword)
	require.NoError(t, err)
	cidz := e.connect(t, "cidz")

	visible := func(sess *session.Context) int64 {
		id, err := e.engine.ResolveSession(ctx, sess)
		require.NoError(t, err)
		n, err := e.store.CountProjects(ctx, policy.VisibleProjects(id))
		require.NoError(t, err)
		return n
	}
	assert.Zero(t, visible(cidz))

	// A project created after the principal is visible through it.
	_, err = e.store.CreateProject(ctx, &models.Project{Name: "late"}, e.caseyID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, visible(cidz))
	assert.Equal(t, visible(e.casey), visible(cidz))

	// Disabling the user cuts off the principal mid-session.
	require.NoError(t, e.store.SetUserEnabled(ctx, e.caseyID, false))
	assert.Zero(t, visible(cidz))
}

func TestSetEnabled(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, err := e.prov.CreateDurablePrincipal(ctx, e.casey, "cidz", principalPassword)
	require.NoError(t, err)
	cidz := e.connect(t, "cidz")

	err = e.prov.SetEnabled(ctx, e.shanan, "cidz", false)
	assert.ErrorIs(t, err, models.ErrPrincipalNotFound)

	require.NoError(t, e.prov.SetEnabled(ctx, e.casey, "cidz", false))
	id, err := e.engine.ResolveSession(ctx, cidz)
	require.NoError(t, err)
	assert.Equal(t, policy.Anonymous, id)

	_, err = e.prov.Authenticate(ctx, "cidz", principalPassword)
	assert.ErrorIs(t, err, models.ErrAuthenticationFailed)

	list, err := e.prov.ListPrincipals(ctx, e.casey)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Enabled)

	list, err = e.prov.ListPrincipals(ctx, e.shanan)
	require.NoError(t, err)
	assert.Empty(t, list)
}
