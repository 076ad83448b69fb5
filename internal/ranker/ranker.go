// Package ranker filters and orders the browse feed of a seeker.
package ranker

import (
	"bytes"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/geo"
	"github.com/quocanhngo/spark/internal/model"
)

const (
	// DefaultLimit caps the feed length
	DefaultLimit = 30

	// TieEpsilonKm is the distance difference under which interest overlap decides order
	TieEpsilonKm = 0.1
)

var (
	ErrNoPreference = errors.New("seeker has no preference")
	ErrNoLocation   = errors.New("seeker has no location")
)

// Request is everything Rank needs about the seeker.
type Request struct {
	Seeker     *model.User
	Preference *model.Preference
	// Excluded holds ids already swiped on or blocked in either direction
	Excluded map[uuid.UUID]struct{}
	AsOf     time.Time
	Limit    int
}

type scored struct {
	user     *model.User
	age      int
	distance float64
	overlap  int
}

// Rank returns at most req.Limit eligible candidates from pool, nearest first.
// Candidates whose distances differ by less than TieEpsilonKm are ordered by
// descending interest overlap. An empty result is not an error.
func Rank(req Request, pool []model.User) ([]model.CandidateSummary, error) {
	if req.Preference == nil {
		return nil, ErrNoPreference
	}
	if req.Seeker == nil || !req.Seeker.HasLocation() {
		return nil, ErrNoLocation
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	seeker := req.Seeker
	eligible := make([]scored, 0, len(pool))
	for i := range pool {
		c := &pool[i]
		s, ok := evaluate(seeker, req.Preference, req.Excluded, c, asOf)
		if !ok {
			continue
		}
		eligible = append(eligible, s)
	}

	// Deterministic base order before the tolerant comparison below
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].distance != eligible[j].distance {
			return eligible[i].distance < eligible[j].distance
		}
		return bytes.Compare(eligible[i].user.ID[:], eligible[j].user.ID[:]) < 0
	})
	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if math.Abs(a.distance-b.distance) < TieEpsilonKm {
			return a.overlap > b.overlap
		}
		return a.distance < b.distance
	})

	if len(eligible) > limit {
		eligible = eligible[:limit]
	}

	out := make([]model.CandidateSummary, 0, len(eligible))
	for _, s := range eligible {
		out = append(out, summarize(s))
	}
	return out, nil
}

func evaluate(seeker *model.User, pref *model.Preference, excluded map[uuid.UUID]struct{}, c *model.User, asOf time.Time) (scored, bool) {
	if c.ID == seeker.ID || c.IsBanned {
		return scored{}, false
	}
	if _, skip := excluded[c.ID]; skip {
		return scored{}, false
	}
	if !pref.Accepts(c.Gender) {
		return scored{}, false
	}
	if c.Birthdate == nil || len(c.Photos) == 0 || !c.HasLocation() {
		return scored{}, false
	}

	age := geo.AgeYears(*c.Birthdate, asOf)
	if age < pref.MinAge || age > pref.MaxAge {
		return scored{}, false
	}

	d := geo.DistanceKm(*seeker.Latitude, *seeker.Longitude, *c.Latitude, *c.Longitude)
	if d > float64(pref.MaxDistanceKm) {
		return scored{}, false
	}

	return scored{
		user:     c,
		age:      age,
		distance: d,
		overlap:  geo.InterestOverlap(seeker.Interests, c.Interests),
	}, true
}

func summarize(s scored) model.CandidateSummary {
	interests := []string(s.user.Interests)
	if interests == nil {
		interests = []string{}
	}
	var photoURL string
	if p := s.user.PrimaryPhoto(); p != nil {
		photoURL = p.URL
	}
	return model.CandidateSummary{
		ID:              s.user.ID,
		Name:            s.user.Name,
		Age:             s.age,
		City:            s.user.City,
		PrimaryPhotoURL: photoURL,
		Interests:       interests,
		DistanceKm:      geo.RoundKm(s.distance),
	}
}
