package risk

type Direction string

const (
	TrendStable    Direction = "stable"
	TrendDegrading Direction = "degrading"
	TrendImproving Direction = "improving"
)

const (
	trendWindow    = 5
	trendThreshold = 10
)

type Trend struct {
	Direction Direction
	Evolution int
	Scores    []int
}

// ComputeTrend compares the first and last of the most recent five scores,
// given oldest first. A move of more than 10 points either way is a trend.
func ComputeTrend(history []int) Trend {
	if len(history) < 2 {
		return Trend{Direction: TrendStable}
	}
	window := history
	if len(window) > trendWindow {
		window = window[len(window)-trendWindow:]
	}
	scores := make([]int, len(window))
	copy(scores, window)

	evolution := scores[len(scores)-1] - scores[0]
	dir := TrendStable
	switch {
	case evolution > trendThreshold:
		dir = TrendDegrading
	case evolution < -trendThreshold:
		dir = TrendImproving
	}
	return Trend{Direction: dir, Evolution: evolution, Scores: scores}
}
