package ranker

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/geo"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

const (
	seekerLat = 55.75
	seekerLon = 37.61
)

var asOf = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

// kmNorth returns the latitude that lies km north of the seeker.
func kmNorth(km float64) float64 {
	return seekerLat + km/(geo.EarthRadiusKm*math.Pi/180)
}

func ptr(f float64) *float64 { return &f }

func newSeeker() *model.User {
	return &model.User{
		ID:        uuid.New(),
		Name:      "S",
		Gender:    model.GenderMale,
		Latitude:  ptr(seekerLat),
		Longitude: ptr(seekerLon),
		Interests: datatypes.JSONSlice[string]{"music", "hiking", "chess", "films", "travel"},
	}
}

func newCandidate(name string, age int, gender model.Gender, lat float64, interests ...string) model.User {
	birth := time.Date(asOf.Year()-age, time.January, 1, 0, 0, 0, 0, time.UTC)
	id := uuid.New()
	return model.User{
		ID:        id,
		Name:      name,
		Gender:    gender,
		Birthdate: &birth,
		City:      "Moscow",
		Latitude:  ptr(lat),
		Longitude: ptr(seekerLon),
		Interests: datatypes.JSONSlice[string](interests),
		Photos:    []model.Photo{{ID: uuid.New(), UserID: id, URL: "https://cdn.test/" + name + ".jpg", IsPrimary: true}},
	}
}

func femalePref(seeker *model.User) *model.Preference {
	return &model.Preference{
		UserID:        seeker.ID,
		MinAge:        20,
		MaxAge:        30,
		MaxDistanceKm: 50,
		Genders:       datatypes.JSONSlice[model.Gender]{model.GenderFemale},
	}
}

func names(cs []model.CandidateSummary) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}

func TestRank_DistanceDominatesOverlap(t *testing.T) {
	seeker := newSeeker()
	pool := []model.User{
		newCandidate("E", 25, model.GenderFemale, kmNorth(40), "music", "hiking", "chess", "films", "travel"),
		newCandidate("D", 25, model.GenderFemale, kmNorth(10)),
		newCandidate("C", 25, model.GenderFemale, kmNorth(10), "music", "chess"),
	}

	got, err := Rank(Request{Seeker: seeker, Preference: femalePref(seeker), AsOf: asOf}, pool)
	require.NoError(t, err)

	assert.Equal(t, []string{"C", "D", "E"}, names(got))
	assert.Equal(t, 10.0, got[0].DistanceKm)
	assert.Equal(t, 40.0, got[2].DistanceKm)
	assert.Equal(t, 25, got[0].Age)
	assert.Equal(t, "https://cdn.test/C.jpg", got[0].PrimaryPhotoURL)
}

func TestRank_TieBreakWithinEpsilon(t *testing.T) {
	seeker := newSeeker()
	pool := []model.User{
		newCandidate("near-no-overlap", 25, model.GenderFemale, kmNorth(5.00)),
		newCandidate("slightly-farther-overlap", 25, model.GenderFemale, kmNorth(5.05), "music"),
		newCandidate("clearly-farther", 25, model.GenderFemale, kmNorth(5.30), "music", "chess", "films"),
	}

	got, err := Rank(Request{Seeker: seeker, Preference: femalePref(seeker), AsOf: asOf}, pool)
	require.NoError(t, err)
	assert.Equal(t, []string{"slightly-farther-overlap", "near-no-overlap", "clearly-farther"}, names(got))
}

func TestRank_Filters(t *testing.T) {
	seeker := newSeeker()
	swiped := newCandidate("swiped", 25, model.GenderFemale, kmNorth(1))
	blocked := newCandidate("blocked", 25, model.GenderFemale, kmNorth(1))
	banned := newCandidate("banned", 25, model.GenderFemale, kmNorth(1))
	banned.IsBanned = true
	noPhoto := newCandidate("no-photo", 25, model.GenderFemale, kmNorth(1))
	noPhoto.Photos = nil
	noLocation := newCandidate("no-location", 25, model.GenderFemale, kmNorth(1))
	noLocation.Latitude = nil
	noBirthdate := newCandidate("no-birthdate", 25, model.GenderFemale, kmNorth(1))
	noBirthdate.Birthdate = nil
	self := *seeker
	self.Photos = []model.Photo{{URL: "x"}}
	self.Gender = model.GenderFemale

	pool := []model.User{
		self,
		swiped,
		blocked,
		banned,
		noPhoto,
		noLocation,
		noBirthdate,
		newCandidate("male", 25, model.GenderMale, kmNorth(1)),
		newCandidate("too-young", 19, model.GenderFemale, kmNorth(1)),
		newCandidate("too-old", 31, model.GenderFemale, kmNorth(1)),
		newCandidate("too-far", 25, model.GenderFemale, kmNorth(51)),
		newCandidate("edge-age", 30, model.GenderFemale, kmNorth(49)),
		newCandidate("ok", 20, model.GenderFemale, kmNorth(2)),
	}

	got, err := Rank(Request{
		Seeker:     seeker,
		Preference: femalePref(seeker),
		Excluded:   map[uuid.UUID]struct{}{swiped.ID: {}, blocked.ID: {}},
		AsOf:       asOf,
	}, pool)
	require.NoError(t, err)
	assert.Equal(t, []string{"ok", "edge-age"}, names(got))
}

func TestRank_LimitAndEmpty(t *testing.T) {
	seeker := newSeeker()
	pref := femalePref(seeker)

	pool := make([]model.User, 0, 40)
	for i := range 40 {
		pool = append(pool, newCandidate("c", 25, model.GenderFemale, kmNorth(float64(i)+0.5)))
	}

	got, err := Rank(Request{Seeker: seeker, Preference: pref, AsOf: asOf}, pool)
	require.NoError(t, err)
	assert.Len(t, got, DefaultLimit)

	got, err = Rank(Request{Seeker: seeker, Preference: pref, AsOf: asOf, Limit: 5}, pool)
	require.NoError(t, err)
	assert.Len(t, got, 5)

	got, err = Rank(Request{Seeker: seeker, Preference: pref, AsOf: asOf}, nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRank_Preconditions(t *testing.T) {
	seeker := newSeeker()

	_, err := Rank(Request{Seeker: seeker}, nil)
	assert.ErrorIs(t, err, ErrNoPreference)

	seeker.Latitude = nil
	_, err = Rank(Request{Seeker: seeker, Preference: femalePref(seeker)}, nil)
	assert.ErrorIs(t, err, ErrNoLocation)
}

func TestRank_Deterministic(t *testing.T) {
	seeker := newSeeker()
	pool := []model.User{
		newCandidate("a", 25, model.GenderFemale, kmNorth(3), "music"),
		newCandidate("b", 25, model.GenderFemale, kmNorth(3.02), "music"),
		newCandidate("c", 25, model.GenderFemale, kmNorth(7)),
		newCandidate("d", 25, model.GenderFemale, kmNorth(3.01), "music", "films"),
	}
	req := Request{Seeker: seeker, Preference: femalePref(seeker), AsOf: asOf}

	first, err := Rank(req, pool)
	require.NoError(t, err)

	reversed := []model.User{pool[3], pool[2], pool[1], pool[0]}
	second, err := Rank(req, reversed)
	require.NoError(t, err)

	assert.Equal(t, names(first), names(second))
	assert.Equal(t, "d", first[0].Name)
	assert.Equal(t, "c", first[3].Name)
}
