package release

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	testCases := []struct {
		name     string
		keys     []string
		major    int
		expected string
		ok       bool
	}{
		{
			name:     "bumps minor of the greatest matching key",
			keys:     []string{"2.4.0", "2.5.0", "3.0.0"},
			major:    2,
			expected: "2.6.0",
			ok:       true,
		},
		{
			name:     "patch is reset",
			keys:     []string{"3.0.2", "3.0.14"},
			major:    3,
			expected: "3.1.0",
			ok:       true,
		},
		{
			name:     "numeric not lexical ordering",
			keys:     []string{"4.9.0", "4.10.0", "4.100.0", "4.11.0"},
			major:    4,
			expected: "4.101.0",
			ok:       true,
		},
		{
			name:     "suffixed keys count toward their stream",
			keys:     []string{"4.83.0", "4.84.0-inproc"},
			major:    4,
			expected: "4.85.0",
			ok:       true,
		},
		{
			name:     "other majors are ignored",
			keys:     []string{"1.0.0", "3.9.0", "20.1.0"},
			major:    2,
			expected: "",
			ok:       false,
		},
		{
			name:     "unparseable keys are skipped",
			keys:     []string{"latest", "2.1.0"},
			major:    2,
			expected: "2.2.0",
			ok:       true,
		},
		{
			name:     "empty feed",
			keys:     nil,
			major:    4,
			expected: "",
			ok:       false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, ok := Next(tc.keys, tc.major)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, v)
		})
	}
}

func TestNextProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		major := 1 + rng.Intn(5)

		var keys []string
		maxMinor := -1
		for n := rng.Intn(8); n > 0; n-- {
			keyMajor := 1 + rng.Intn(5)
			minor := rng.Intn(120)
			keys = append(keys, fmt.Sprintf("%d.%d.%d", keyMajor, minor, rng.Intn(30)))
			if keyMajor == major && minor > maxMinor {
				maxMinor = minor
			}
		}

		v, ok := Next(keys, major)
		if maxMinor < 0 {
			assert.False(t, ok, "keys %v major %d", keys, major)
			continue
		}
		require.True(t, ok, "keys %v major %d", keys, major)
		assert.Equal(t, fmt.Sprintf("%d.%d.0", major, maxMinor+1), v, "keys %v", keys)
	}
}

func TestResolverSharesResultPerScopeAndMajor(t *testing.T) {
	r := NewResolver()
	keys := []string{"4.83.0", "3.2.0"}

	first, ok := r.NextVersion("cli-feed-v4.json", keys, 4)
	require.True(t, ok)
	assert.Equal(t, "4.84.0", first)

	// the first tag inserted its entry; the second tag must land on the same key
	keys = append(keys, first)
	second, ok := r.NextVersion("cli-feed-v4.json", keys, 4)
	require.True(t, ok)
	assert.Equal(t, first, second)

	other, ok := r.NextVersion("cli-feed-v4.json", keys, 3)
	require.True(t, ok)
	assert.Equal(t, "3.3.0", other)

	fresh, ok := r.NextVersion("cli-feed-v3.json", keys, 4)
	require.True(t, ok)
	assert.Equal(t, "4.85.0", fresh)

	_, ok = r.NextVersion("cli-feed-v3.json", keys, 9)
	assert.False(t, ok)
	_, ok = r.NextVersion("cli-feed-v3.json", []string{"9.0.0"}, 9)
	assert.False(t, ok, "a missing stream stays missing for the run")
}
