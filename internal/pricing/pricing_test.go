package pricing

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/model"
)

func fixed(v int64) model.RoomPriceTier {
	return model.RoomPriceTier{ID: 1, Name: "fixed", AdjustmentType: model.AdjustmentFixed, AdjustmentValue: v}
}

func percent(v int64) model.RoomPriceTier {
	return model.RoomPriceTier{ID: 2, Name: "percent", AdjustmentType: model.AdjustmentPercentage, AdjustmentValue: v}
}

func TestComputePrice_Fixed(t *testing.T) {
	for _, base := range []int64{0, 1, 999, 1000, 123456} {
		for _, v := range []int64{0, 1, 200, 5000} {
			got, err := ComputePrice(base, fixed(v))
			require.NoError(t, err)
			assert.Equal(t, base+v, got, "base=%d v=%d", base, v)
		}
	}
}

func TestComputePrice_Percentage(t *testing.T) {
	cases := []struct {
		name string
		base int64
		pct  int64
		want int64
	}{
		{"half of even base", 1000, 50, 1500},
		{"half rounds up", 999, 50, 1499},
		{"half of odd base rounds up", 1001, 50, 1502},
		{"below half rounds down", 1003, 10, 1103},
		{"at half rounds up", 1005, 10, 1106},
		{"zero percent", 750, 0, 750},
		{"double", 400, 100, 800},
		{"zero base", 0, 75, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputePrice(tc.base, percent(tc.pct))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestComputePrice_RoomScenario(t *testing.T) {
	s1, err := ComputePrice(1000, fixed(200))
	require.NoError(t, err)
	assert.Equal(t, int64(1200), s1)

	s2, err := ComputePrice(1000, percent(50))
	require.NoError(t, err)
	assert.Equal(t, int64(1500), s2)
}

func TestComputePrice_InvalidTier(t *testing.T) {
	tier := model.RoomPriceTier{ID: 9, AdjustmentType: "dynamic", AdjustmentValue: 10}
	_, err := ComputePrice(1000, tier)
	assert.ErrorIs(t, err, ErrInvalidTier)
	assert.ErrorIs(t, Engine{}.ValidateTier(tier), ErrInvalidTier)
}

func TestComputePrice_InvalidAmount(t *testing.T) {
	_, err := ComputePrice(-1, fixed(10))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ComputePrice(1000, fixed(-100))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ComputePrice(1000, percent(-10))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestComputePrice_Overflow(t *testing.T) {
	cases := []struct {
		name string
		base int64
		tier model.RoomPriceTier
	}{
		{"percentage product", 1 << 40, percent(1 << 23)},
		{"percentage sum", math.MaxInt64 - 10, percent(1)},
		{"fixed sum", math.MaxInt64, fixed(1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputePrice(tc.base, tc.tier)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}

	// 2^62 fits; 2^62 mod 100 is 4 so the share rounds down
	got, err := ComputePrice(1<<40, percent(1<<22))
	require.NoError(t, err)
	assert.Equal(t, int64(1<<40)+int64(1<<62)/100, got)
}

func TestComputePrice_Discounts(t *testing.T) {
	e := Engine{AllowDiscounts: true}

	got, err := e.ComputePrice(1000, fixed(-150))
	require.NoError(t, err)
	assert.Equal(t, int64(850), got)

	// -10% of 1005 is -100.5, rounded half up to -100
	got, err = e.ComputePrice(1005, percent(-10))
	require.NoError(t, err)
	assert.Equal(t, int64(905), got)

	_, err = e.ComputePrice(100, fixed(-101))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.NoError(t, e.ValidateTier(fixed(-5)))
	assert.ErrorIs(t, Engine{}.ValidateTier(fixed(-5)), ErrInvalidAmount)
}

func TestComputePrice_ConcurrentCallsAgree(t *testing.T) {
	tier := percent(33)
	want, err := ComputePrice(1234, tier)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]int64, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = ComputePrice(1234, tier)
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
