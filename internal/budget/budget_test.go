package budget

import (
	"strings"
	"testing"
)

func Test_Estimate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"below one token rounds up", "ab", 1},
		{"exact multiple", strings.Repeat("x", 40), 10},
		{"truncates", strings.Repeat("x", 43), 10},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Estimate(tc.in); got != tc.want {
				t.Errorf("Estimate(%q): want %d, got %d", tc.in, tc.want, got)
			}
		})
	}
}

func Test_EstimateExchange_IncludesOverhead(t *testing.T) {
	t.Parallel()

	got := EstimateExchange(strings.Repeat("u", 40), strings.Repeat("a", 80))
	want := 2*perItemOverhead + 10 + 20
	if got != want {
		t.Errorf("want %d, got %d", want, got)
	}
}

func Test_TrimOldest_NothingToDrop(t *testing.T) {
	t.Parallel()

	if drop := TrimOldest([]int{10, 10}, 5, 100); drop != 0 {
		t.Errorf("want 0 drops when under budget, got %d", drop)
	}
}

func Test_TrimOldest_DropsFromFront(t *testing.T) {
	t.Parallel()

	// fixed 50 + items 30+30+30 = 140; budget 100 -> drop first two.
	if drop := TrimOldest([]int{30, 30, 30}, 50, 100); drop != 2 {
		t.Errorf("want 2 drops, got %d", drop)
	}
}

func Test_TrimOldest_FixedAloneOverBudget(t *testing.T) {
	t.Parallel()

	if drop := TrimOldest([]int{10, 10}, 500, 100); drop != 2 {
		t.Errorf("want everything dropped, got %d", drop)
	}
}

func Test_TrimOldest_EmptyHistory(t *testing.T) {
	t.Parallel()

	if drop := TrimOldest(nil, 500, 100); drop != 0 {
		t.Errorf("want 0 for empty history, got %d", drop)
	}
}
