package idpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimSplitsInterval(t *testing.T) {
	p := New(0, 10)
	require.True(t, p.TryClaim(5))
	assert.Equal(t, []Interval{{0, 4}, {6, 10}}, p.Free())
	assert.False(t, p.IsFree(5))
	assert.True(t, p.IsFree(4))
	assert.True(t, p.IsFree(6))
}

func TestClaimShapes(t *testing.T) {
	tests := []struct {
		name   string
		claims []int
		want   []Interval
	}{
		{"start endpoint", []int{0}, []Interval{{1, 10}}},
		{"end endpoint", []int{10}, []Interval{{0, 9}}},
		{"lone member", []int{5, 4, 6}, []Interval{{0, 3}, {7, 10}}},
		{"remove singleton interval", []int{1, 0}, []Interval{{2, 10}}},
		{"many splits", []int{2, 4, 6, 8}, []Interval{{0, 1}, {3, 3}, {5, 5}, {7, 7}, {9, 10}}},
		{"singleton between splits", []int{2, 4, 3}, []Interval{{0, 1}, {5, 10}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(0, 10)
			for _, id := range tt.claims {
				require.True(t, p.TryClaim(id), "claim %d", id)
			}
			assert.Equal(t, tt.want, p.Free())
		})
	}
}

func TestTryClaimUnavailable(t *testing.T) {
	p := New(100, 200)
	assert.False(t, p.TryClaim(99))
	assert.False(t, p.TryClaim(201))
	require.True(t, p.TryClaim(150))
	assert.False(t, p.TryClaim(150))

	err := p.Claim(150)
	require.ErrorIs(t, err, ErrUnavailable)
	require.NoError(t, p.Claim(151))
	assert.Equal(t, []Interval{{100, 149}, {152, 200}}, p.Free())
}

func TestNext(t *testing.T) {
	p := New(0, 2)
	id, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, id)

	// Next only peeks.
	id, err = p.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, id)

	for i := 0; i < 3; i++ {
		id, err := p.Next()
		require.NoError(t, err)
		require.NoError(t, p.Claim(id))
	}
	_, err = p.Next()
	require.ErrorIs(t, err, ErrExhausted)
}

func TestNextSkipsClaimedPrefix(t *testing.T) {
	p := New(1, 20)
	for _, id := range []int{1, 2, 3, 7} {
		require.True(t, p.TryClaim(id))
	}
	id, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, 4, id)
}

func TestInvertedRange(t *testing.T) {
	p := New(10, 5)
	assert.Empty(t, p.Free())
	assert.False(t, p.InRange(7))
	_, err := p.Next()
	require.ErrorIs(t, err, ErrExhausted)
}

func TestNextFromLeavesLowerIDsFree(t *testing.T) {
	p := New(0, 10)
	id, err := p.NextFrom(1)
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	require.NoError(t, p.Claim(id))
	assert.True(t, p.IsFree(0))

	require.True(t, p.TryClaim(2))
	require.True(t, p.TryClaim(3))
	id, err = p.NextFrom(1)
	require.NoError(t, err)
	assert.Equal(t, 4, id)

	p = New(10, 20)
	id, err = p.NextFrom(1)
	require.NoError(t, err)
	assert.Equal(t, 10, id)

	p = New(0, 0)
	_, err = p.NextFrom(1)
	require.ErrorIs(t, err, ErrExhausted)
}

func TestRelease(t *testing.T) {
	tests := []struct {
		name   string
		claims []int
		id     int
		want   []Interval
	}{
		{"joins both sides", []int{5}, 5, []Interval{{0, 10}}},
		{"extends left", []int{5, 6}, 5, []Interval{{0, 5}, {7, 10}}},
		{"extends right", []int{5, 6}, 6, []Interval{{0, 4}, {6, 10}}},
		{"new singleton", []int{4, 5, 6}, 5, []Interval{{0, 3}, {5, 5}, {7, 10}}},
		{"before first", []int{0, 1}, 0, []Interval{{0, 0}, {2, 10}}},
		{"after last", []int{9, 10}, 10, []Interval{{0, 8}, {10, 10}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(0, 10)
			for _, id := range tt.claims {
				require.True(t, p.TryClaim(id))
			}
			require.True(t, p.Release(tt.id))
			assert.Equal(t, tt.want, p.Free())
		})
	}

	p := New(0, 10)
	assert.False(t, p.Release(3), "already free")
	assert.False(t, p.Release(11), "out of range")
}
