package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func (e *testEnv) setPreference(t *testing.T, u *model.User, minAge, maxAge, distance int, genders ...model.Gender) {
	t.Helper()
	require.NoError(t, e.prefs.Upsert(context.Background(), &model.Preference{
		UserID:        u.ID,
		MinAge:        minAge,
		MaxAge:        maxAge,
		MaxDistanceKm: distance,
		Genders:       datatypes.JSONSlice[model.Gender](genders),
	}))
}

func candidateIDs(resp *model.BrowseResponse) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(resp.Candidates))
	for _, c := range resp.Candidates {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestBrowse_RanksByDistanceThenInterests(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := env.browseService()
	ctx := context.Background()

	seeker := env.newUser(t, "Seeker", gender(model.GenderMale), interests("music", "hiking", "chess"))
	env.setPreference(t, seeker, 25, 30, 10, model.GenderFemale)

	c := env.newUser(t, "C", aged(27), kmNorth(3), interests("music", "hiking"))
	d := env.newUser(t, "D", aged(28), kmNorth(3.05), interests("music"))
	e := env.newUser(t, "E", aged(26), kmNorth(8))
	env.newUser(t, "TooFar", aged(27), kmNorth(12))
	env.newUser(t, "TooOld", aged(31), kmNorth(1))
	env.newUser(t, "WrongGender", gender(model.GenderMale), kmNorth(1))

	resp, err := svc.Browse(ctx, seeker.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{c.ID, d.ID, e.ID}, candidateIDs(resp))
	assert.Equal(t, 27, resp.Candidates[0].Age)
	assert.InDelta(t, 3.0, resp.Candidates[0].DistanceKm, 0.01)
	assert.Equal(t, "https://cdn.test/C.jpg", resp.Candidates[0].PrimaryPhotoURL)
}

func TestBrowse_Exclusions(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := env.browseService()
	ctx := context.Background()

	seeker := env.newUser(t, "Seeker")
	env.setPreference(t, seeker, 18, 40, 50, model.GenderFemale)

	visible := env.newUser(t, "Visible")
	swiped := env.newUser(t, "Swiped")
	blockedBySeeker := env.newUser(t, "BlockedBySeeker")
	blockedSeeker := env.newUser(t, "BlockedSeeker")
	env.newUser(t, "Banned", banned())
	env.newUser(t, "Nowhere", noLocation())

	noPhoto := &model.User{Name: "NoPhoto", Email: "nophoto@spark.test", Gender: model.GenderFemale}
	b := epoch.AddDate(-25, 0, 0)
	lat, lon := moscowLat, moscowLon
	noPhoto.Birthdate, noPhoto.Latitude, noPhoto.Longitude = &b, &lat, &lon
	require.NoError(t, env.users.Create(ctx, noPhoto))

	_, err := env.swipes.Create(ctx, &model.Swipe{SwiperID: seeker.ID, TargetID: swiped.ID, Direction: model.DirectionLeft})
	require.NoError(t, err)
	_, err = env.blocks.Create(ctx, &model.Block{BlockerID: seeker.ID, BlockedID: blockedBySeeker.ID})
	require.NoError(t, err)
	_, err = env.blocks.Create(ctx, &model.Block{BlockerID: blockedSeeker.ID, BlockedID: seeker.ID})
	require.NoError(t, err)

	resp, err := svc.Browse(ctx, seeker.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{visible.ID}, candidateIDs(resp))
}

func TestBrowse_Preconditions(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := env.browseService()
	ctx := context.Background()

	noPref := env.newUser(t, "NoPref")
	_, err := svc.Browse(ctx, noPref.ID)
	assert.ErrorIs(t, err, ErrNoPreference)

	lost := env.newUser(t, "Lost", noLocation())
	env.setPreference(t, lost, 18, 40, 50, model.GenderMale)
	_, err = svc.Browse(ctx, lost.ID)
	assert.ErrorIs(t, err, ErrNoLocation)

	_, err = svc.Browse(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)

	alone := env.newUser(t, "Alone")
	env.setPreference(t, alone, 18, 40, 50, model.GenderMale)
	resp, err := svc.Browse(ctx, alone.ID)
	require.NoError(t, err)
	assert.Empty(t, resp.Candidates)
}

func TestUpdatePreference(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := env.browseService()
	ctx := context.Background()
	user := env.newUser(t, "Alice")

	pref, err := svc.GetPreference(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 18, pref.MinAge)
	assert.Equal(t, 35, pref.MaxAge)

	pref, err = svc.UpdatePreference(ctx, user.ID, model.UpdatePreferenceRequest{
		MinAge:        20,
		MaxAge:        30,
		MaxDistanceKm: 15,
		Genders:       []model.Gender{model.GenderMale, model.GenderMale, model.GenderOther},
	})
	require.NoError(t, err)
	assert.Equal(t, 20, pref.MinAge)
	assert.Equal(t, 15, pref.MaxDistanceKm)
	assert.Equal(t, []model.Gender{model.GenderMale, model.GenderOther}, []model.Gender(pref.Genders))

	invalid := []model.UpdatePreferenceRequest{
		{MinAge: 17, MaxAge: 30, MaxDistanceKm: 10, Genders: []model.Gender{model.GenderMale}},
		{MinAge: 20, MaxAge: 101, MaxDistanceKm: 10, Genders: []model.Gender{model.GenderMale}},
		{MinAge: 31, MaxAge: 30, MaxDistanceKm: 10, Genders: []model.Gender{model.GenderMale}},
		{MinAge: 20, MaxAge: 30, MaxDistanceKm: 0, Genders: []model.Gender{model.GenderMale}},
		{MinAge: 20, MaxAge: 30, MaxDistanceKm: 1001, Genders: []model.Gender{model.GenderMale}},
		{MinAge: 20, MaxAge: 30, MaxDistanceKm: 10},
		{MinAge: 20, MaxAge: 30, MaxDistanceKm: 10, Genders: []model.Gender{"ROBOT"}},
	}
	for _, req := range invalid {
		_, err := svc.UpdatePreference(ctx, user.ID, req)
		assert.ErrorIs(t, err, ErrInvalidPreference, "%+v", req)
	}
}
