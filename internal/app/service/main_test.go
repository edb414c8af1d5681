package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spf-popaccueil/popaccueil-backend/internal/app/repository"
	"github.com/spf-popaccueil/popaccueil-backend/internal/db"
	"github.com/spf-popaccueil/popaccueil-backend/internal/mailer"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	util.SetBcryptCost(bcrypt.MinCost)
	m.Run()
}

// fakeMailer records reset mails and can be told to fail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.PasswordResetMail
	fail bool
}

func (f *fakeMailer) SendPasswordReset(ctx context.Context, mail mailer.PasswordResetMail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("mail provider down")
	}
	f.sent = append(f.sent, mail)
	return nil
}

func (f *fakeMailer) last() mailer.PasswordResetMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

type testRepos struct {
	db     *gorm.DB
	users  repository.UserRepository
	tokens repository.TokenRepository
}

func setupRepos(t *testing.T) testRepos {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return testRepos{
		db:     testDB,
		users:  repository.NewUserRepository(testDB),
		tokens: repository.NewTokenRepository(testDB),
	}
}
