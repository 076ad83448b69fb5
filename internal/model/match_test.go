package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalPair(t *testing.T) {
	lo := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	hi := uuid.MustParse("ffffffff-1111-1111-1111-111111111111")

	a, b := CanonicalPair(hi, lo)
	assert.Equal(t, lo, a)
	assert.Equal(t, hi, b)

	a, b = CanonicalPair(lo, hi)
	assert.Equal(t, lo, a)
	assert.Equal(t, hi, b)
}

func TestCanonicalPair_MatchesStringOrder(t *testing.T) {
	for range 50 {
		u1, u2 := uuid.New(), uuid.New()
		a, b := CanonicalPair(u1, u2)
		assert.LessOrEqual(t, a.String(), b.String())
	}
}

func TestMatch_Participants(t *testing.T) {
	u1, u2, other := uuid.New(), uuid.New(), uuid.New()
	m := NewMatch(u1, u2)

	assert.True(t, m.HasUser(u1))
	assert.True(t, m.HasUser(u2))
	assert.False(t, m.HasUser(other))
	assert.Equal(t, u2, m.PartnerOf(u1))
	assert.Equal(t, u1, m.PartnerOf(u2))
}

func TestDirection(t *testing.T) {
	assert.True(t, DirectionRight.Positive())
	assert.True(t, DirectionSuper.Positive())
	assert.False(t, DirectionLeft.Positive())
	assert.False(t, Direction("UP").Valid())
}

func TestPreference_Accepts(t *testing.T) {
	p := DefaultPreference(uuid.New())
	assert.True(t, p.Accepts(GenderFemale))
	assert.Equal(t, 18, p.MinAge)
	assert.Equal(t, 35, p.MaxAge)
	assert.Equal(t, 50, p.MaxDistanceKm)

	p.Genders = []Gender{GenderMale}
	assert.False(t, p.Accepts(GenderFemale))
}
