package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"daylog/internal/domain"
	"daylog/internal/repository/sqlite"
)

type testEnv struct {
	users      UserService
	activities ActivityService
}

func newTestEnv(t *testing.T, opts UserOptions) testEnv {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "daylog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)
	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, activityRepo.Init(ctx))

	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.MinCost
	}
	return testEnv{
		users:      NewUserService(userRepo, opts),
		activities: NewActivityService(activityRepo),
	}
}

func (e testEnv) register(t *testing.T, username string) domain.Viewer {
	t.Helper()
	user, err := e.users.Register(context.Background(), domain.RegisterInput{
		Username: username,
		Password: username + "-password",
	})
	require.NoError(t, err)
	return domain.AuthenticatedViewer(user.ID)
}

func (e testEnv) post(t *testing.T, viewer domain.Viewer, title, privacy string) *domain.Activity {
	t.Helper()
	activity, err := e.activities.Create(context.Background(), viewer, domain.CreateActivityInput{
		Title:    title,
		Mood:     "neutral",
		Category: "personal",
		Privacy:  privacy,
	})
	require.NoError(t, err)
	return activity
}

func feedTitles(t *testing.T, e testEnv, viewer domain.Viewer, filter domain.ActivityFilter) []string {
	t.Helper()
	activities, err := Collect(e.activities.ListForViewer(context.Background(), viewer, filter))
	require.NoError(t, err)
	out := make([]string, len(activities))
	for i, a := range activities {
		out[i] = a.Title
	}
	return out
}
