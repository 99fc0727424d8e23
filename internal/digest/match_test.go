package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "속보 삼성전자 실적 발표", NormalizeTitle("[속보] 삼성전자 '실적' 발표"))
	assert.Equal(t, "a inc beats forecast", NormalizeTitle(`“A Inc” beats | forecast…`))
	assert.Equal(t, "", NormalizeTitle("()[]|"))
}

func TestTitleSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, TitleSimilarity("alpha beta", "beta alpha"))
	assert.Equal(t, 0.0, TitleSimilarity("", "alpha"))
	assert.Equal(t, 0.0, TitleSimilarity("alpha", ""))
	// {a,inc,beats,forecast} vs {a,inc,profit,beats,forecast}: 4/5
	assert.InDelta(t, 0.8, TitleSimilarity("A Inc beats forecast", "A Inc profit beats forecast"), 1e-9)
}

// Ten tokens vs seventeen tokens sharing seven: 7/20 = exactly 0.35.
const (
	titleAtThreshold       = "t1 t2 t3 t4 t5 t6 t7 a1 a2 a3"
	titleAtThresholdOther  = "t1 t2 t3 t4 t5 t6 t7 b1 b2 b3 b4 b5 b6 b7 b8 b9 b10"
	titleBelowThreshold    = "t1 x1 x2"
	titleBelowThresholdTwo = "t1 y1 y2" // similarity 1/5 = 0.2
)

func TestMatchThresholdBoundaryInclusive(t *testing.T) {
	asn := Match([]string{titleAtThreshold}, []string{titleAtThresholdOther}, 0.35)
	j, ok := asn.Matched(0)
	require.True(t, ok, "score exactly at threshold must count as a match")
	assert.Equal(t, 0, j)
	assert.InDelta(t, 0.35, asn.Scores[0], 1e-9)
}

func TestMatchBelowThreshold(t *testing.T) {
	asn := Match([]string{titleBelowThreshold}, []string{titleBelowThresholdTwo}, 0.35)
	_, ok := asn.Matched(0)
	assert.False(t, ok)
	assert.Equal(t, 0, asn.Overlap())
}

func TestMatchEmptySearchList(t *testing.T) {
	asn := Match([]string{"some title"}, nil, 0.35)
	_, ok := asn.Matched(0)
	assert.False(t, ok)
	assert.Empty(t, asn.Consumed)
}

func TestMatchIdenticalTitlesGreedyInOrder(t *testing.T) {
	titles := []string{"same headline", "same headline", "same headline"}
	asn := Match(titles, []string{"same headline", "same headline"}, 0.35)

	j0, ok0 := asn.Matched(0)
	j1, ok1 := asn.Matched(1)
	_, ok2 := asn.Matched(2)

	require.True(t, ok0)
	require.True(t, ok1)
	assert.Equal(t, 0, j0, "first primary takes the lowest search index")
	assert.Equal(t, 1, j1)
	assert.False(t, ok2, "no remaining candidate for the last duplicate")
}

func TestMatchBijective(t *testing.T) {
	primary := []string{"nvidia earnings surge", "samsung chip output", "nvidia earnings jump"}
	search := []string{"nvidia earnings surge again", "samsung chip output rises"}

	asn := Match(primary, search, 0.35)

	seen := map[int]bool{}
	for i := range primary {
		if j, ok := asn.Matched(i); ok {
			assert.False(t, seen[j], "search item %d consumed twice", j)
			seen[j] = true
		}
	}
}

func TestMatchDeterministic(t *testing.T) {
	primary := []string{"alpha beta gamma", "delta epsilon zeta", "alpha beta delta"}
	search := []string{"alpha beta gamma delta", "delta epsilon zeta eta", "alpha beta"}

	first := Match(primary, search, 0.35)
	for i := 0; i < 20; i++ {
		again := Match(primary, search, 0.35)
		assert.Equal(t, first.PrimaryToSearch, again.PrimaryToSearch)
	}
}

func TestMatchZeroScoreNeverMatches(t *testing.T) {
	// Threshold 0 with disjoint tokens: best score is 0.0, which must not
	// produce a match even though 0 >= 0.
	asn := Match([]string{"alpha"}, []string{"beta"}, 0)
	_, ok := asn.Matched(0)
	assert.False(t, ok)
}
