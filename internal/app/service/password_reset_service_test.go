package service

import (
	"context"
	"testing"
	"time"

	"github.com/spf-popaccueil/popaccueil-backend/internal/app/model"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resetFixture struct {
	repos  testRepos
	auth   AuthService
	reset  PasswordResetService
	mail   *fakeMailer
	clock  *time.Time
	member *model.User
}

func setupPasswordResetTest(t *testing.T) *resetFixture {
	repos := setupRepos(t)
	now := time.Now().UTC()
	clock := &now
	codec := util.NewResetTokenCodec("reset-secret", time.Hour, func() time.Time { return *clock })
	mail := &fakeMailer{}
	issuer := NewTokenIssuer(repos.tokens)

	f := &resetFixture{
		repos: repos,
		auth:  NewAuthService(repos.users, repos.tokens, issuer),
		reset: NewPasswordResetService(repos.users, codec, issuer, mail),
		mail:  mail,
		clock: clock,
	}
	f.member = createMember(t, repos, "jane@example.org", "old-password", false)
	return f
}

func (f *resetFixture) reload(t *testing.T) *model.User {
	u, err := f.repos.users.FindByID(f.member.ID)
	require.NoError(t, err)
	return u
}

func TestPasswordResetService_RequestReset_KnownEmail(t *testing.T) {
	f := setupPasswordResetTest(t)

	require.NoError(t, f.reset.RequestReset(context.Background(), " Jane@Example.org"))

	stored := f.reload(t)
	require.NotNil(t, stored.ResetPasswordToken)
	require.NotNil(t, stored.ResetPasswordExpiresAt)
	assert.WithinDuration(t, f.clock.Add(time.Hour), *stored.ResetPasswordExpiresAt, time.Second)

	require.Len(t, f.mail.sent, 1)
	sent := f.mail.last()
	assert.Equal(t, "jane@example.org", sent.To)
	assert.Equal(t, "Jane", sent.FirstName)
	assert.Equal(t, *stored.ResetPasswordToken, sent.Token)
}

func TestPasswordResetService_RequestReset_UnknownEmail(t *testing.T) {
	f := setupPasswordResetTest(t)

	require.NoError(t, f.reset.RequestReset(context.Background(), "nobody@example.org"))

	assert.Empty(t, f.mail.sent)
	assert.Nil(t, f.reload(t).ResetPasswordToken)
}

func TestPasswordResetService_RequestReset_MailFailureIsSwallowed(t *testing.T) {
	f := setupPasswordResetTest(t)
	f.mail.fail = true

	require.NoError(t, f.reset.RequestReset(context.Background(), "jane@example.org"))
	assert.NotNil(t, f.reload(t).ResetPasswordToken, "token is stored even when mail fails")
}

func TestPasswordResetService_ResetPassword(t *testing.T) {
	f := setupPasswordResetTest(t)
	require.NoError(t, f.reset.RequestReset(context.Background(), "jane@example.org"))
	token := f.mail.last().Token

	session, err := f.reset.ResetPassword(token, "new-password")
	require.NoError(t, err)
	assert.Equal(t, f.member.ID, session.UserID)
	assert.Equal(t, model.TokenTypeBearer, session.Type)

	stored := f.reload(t)
	assert.Nil(t, stored.ResetPasswordToken)
	assert.True(t, stored.CheckPassword("new-password"))
	assert.False(t, stored.CheckPassword("old-password"))

	_, err = f.auth.Login("jane@example.org", "new-password")
	assert.NoError(t, err)
	_, err = f.auth.Login("jane@example.org", "old-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordResetService_TokenIsSingleUse(t *testing.T) {
	f := setupPasswordResetTest(t)
	require.NoError(t, f.reset.RequestReset(context.Background(), "jane@example.org"))
	token := f.mail.last().Token

	_, err := f.reset.ResetPassword(token, "first-new")
	require.NoError(t, err)

	_, err = f.reset.ResetPassword(token, "second-new")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
	assert.True(t, f.reload(t).CheckPassword("first-new"))
}

func TestPasswordResetService_NewRequestSupersedesOld(t *testing.T) {
	f := setupPasswordResetTest(t)
	require.NoError(t, f.reset.RequestReset(context.Background(), "jane@example.org"))
	first := f.mail.last().Token
	require.NoError(t, f.reset.RequestReset(context.Background(), "jane@example.org"))
	second := f.mail.last().Token
	require.NotEqual(t, first, second)

	_, err := f.reset.ResetPassword(first, "from-first")
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	_, err = f.reset.ResetPassword(second, "from-second")
	assert.NoError(t, err)
}

func TestPasswordResetService_ExpiredToken(t *testing.T) {
	f := setupPasswordResetTest(t)
	require.NoError(t, f.reset.RequestReset(context.Background(), "jane@example.org"))
	token := f.mail.last().Token

	*f.clock = f.clock.Add(61 * time.Minute)

	_, err := f.reset.ResetPassword(token, "too-late")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
	assert.True(t, f.reload(t).CheckPassword("old-password"))
}

func TestPasswordResetService_RejectsForeignTokens(t *testing.T) {
	f := setupPasswordResetTest(t)
	require.NoError(t, f.reset.RequestReset(context.Background(), "jane@example.org"))

	otherCodec := util.NewResetTokenCodec("other-secret", time.Hour, nil)
	forged, _, err := otherCodec.Issue(f.member.ID)
	require.NoError(t, err)

	sameKey := util.NewResetTokenCodec("reset-secret", time.Hour, func() time.Time { return *f.clock })
	validButNotStored, _, err := sameKey.Issue(f.member.ID)
	require.NoError(t, err)

	ghost, _, err := sameKey.Issue(9999)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"Empty", ""},
		{"Garbage", "garbage"},
		{"Other key", forged},
		{"Signed but never stored", validButNotStored},
		{"Unknown user", ghost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := f.reset.ResetPassword(tt.token, "hacked")
			assert.ErrorIs(t, err, ErrInvalidResetToken)
			assert.Nil(t, session)
		})
	}
	assert.True(t, f.reload(t).CheckPassword("old-password"))
}
