package risk

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/alexanderramin/spic/internal/domain"
)

// Criterion is one row of the risk table: a weight in percent and four
// cutoffs. Cutoffs are strict greater-than boundaries, ascending except for
// progress where lower values mean higher risk.
type Criterion struct {
	Weight   int     `mapstructure:"weight" yaml:"weight"`
	Low      float64 `mapstructure:"low" yaml:"low"`
	Medium   float64 `mapstructure:"medium" yaml:"medium"`
	High     float64 `mapstructure:"high" yaml:"high"`
	Critical float64 `mapstructure:"critical" yaml:"critical"`
}

// bucket maps v to 25/50/75/100. Values at or under Medium land in 25.
func (c Criterion) bucket(v float64) int {
	switch {
	case v > c.Critical:
		return 100
	case v > c.High:
		return 75
	case v > c.Medium:
		return 50
	}
	return 25
}

// bucketWithFloor is bucket with a 0 floor for values at or under Low.
func (c Criterion) bucketWithFloor(v float64) int {
	if v <= c.Low {
		return 0
	}
	return c.bucket(v)
}

// bucketBelow is the inverted mapping used for progress.
func (c Criterion) bucketBelow(v float64) int {
	switch {
	case v < c.Critical:
		return 100
	case v < c.High:
		return 75
	case v < c.Medium:
		return 50
	}
	return 0
}

type Criteria struct {
	Delay    Criterion `mapstructure:"delay" yaml:"delay"`
	Budget   Criterion `mapstructure:"budget" yaml:"budget"`
	Alerts   Criterion `mapstructure:"alerts" yaml:"alerts"`
	Blocking Criterion `mapstructure:"blocking" yaml:"blocking"`
	Progress Criterion `mapstructure:"progress" yaml:"progress"`
}

func (c Criteria) WeightSum() int {
	return c.Delay.Weight + c.Budget.Weight + c.Alerts.Weight + c.Blocking.Weight + c.Progress.Weight
}

// Band is an inclusive score range.
type Band struct {
	Min int `mapstructure:"min" yaml:"min"`
	Max int `mapstructure:"max" yaml:"max"`
}

func (b Band) contains(score int) bool { return score >= b.Min && score <= b.Max }

// Bands maps composite scores onto risk levels.
type Bands struct {
	Low      Band `mapstructure:"low" yaml:"low"`
	Medium   Band `mapstructure:"medium" yaml:"medium"`
	High     Band `mapstructure:"high" yaml:"high"`
	Critical Band `mapstructure:"critical" yaml:"critical"`
}

// LevelFor returns the level whose band contains score. Scores outside every
// band fall back to low; validated bands cover [0,100] so this only happens
// for out-of-range input.
func (b Bands) LevelFor(score int) domain.RiskLevel {
	switch {
	case b.Critical.contains(score):
		return domain.RiskCritical
	case b.High.contains(score):
		return domain.RiskHigh
	case b.Medium.contains(score):
		return domain.RiskMedium
	}
	return domain.RiskLow
}

// SeverityWeights is the additive contribution of one active alert per severity.
type SeverityWeights struct {
	Low      int `mapstructure:"low" yaml:"low"`
	Medium   int `mapstructure:"medium" yaml:"medium"`
	High     int `mapstructure:"high" yaml:"high"`
	Critical int `mapstructure:"critical" yaml:"critical"`
}

// For returns the weight of sev. Unknown severities weigh as low.
func (w SeverityWeights) For(sev domain.Severity) int {
	switch sev {
	case domain.SeverityCritical:
		return w.Critical
	case domain.SeverityHigh:
		return w.High
	case domain.SeverityMedium:
		return w.Medium
	}
	return w.Low
}

// Thresholds is the complete, typed risk table.
type Thresholds struct {
	Criteria Criteria        `mapstructure:"criteria" yaml:"criteria"`
	Levels   Bands           `mapstructure:"levels" yaml:"levels"`
	Severity SeverityWeights `mapstructure:"severity_weights" yaml:"severity_weights"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Criteria: Criteria{
			Delay:    Criterion{Weight: 25, Low: 0, Medium: 7, High: 21, Critical: 45},
			Budget:   Criterion{Weight: 30, Low: 0, Medium: 5, High: 15, Critical: 25},
			Alerts:   Criterion{Weight: 20, Low: 0, Medium: 2, High: 5, Critical: 10},
			Blocking: Criterion{Weight: 15, Low: 0, Medium: 1, High: 2, Critical: 3},
			Progress: Criterion{Weight: 10, Low: 80, Medium: 60, High: 40, Critical: 20},
		},
		Levels: Bands{
			Low:      Band{Min: 0, Max: 25},
			Medium:   Band{Min: 26, Max: 50},
			High:     Band{Min: 51, Max: 75},
			Critical: Band{Min: 76, Max: 100},
		},
		Severity: SeverityWeights{Low: 5, Medium: 10, High: 15, Critical: 25},
	}
}

// Validate checks the table invariants: weights sum to 100, cutoffs are
// monotonic, and level bands partition [0,100] without gap or overlap.
func (t Thresholds) Validate() error {
	var errs []error

	if sum := t.Criteria.WeightSum(); sum != 100 {
		errs = append(errs, fmt.Errorf("criterion weights sum to %d, want 100", sum))
	}
	named := []struct {
		name string
		c    Criterion
		desc bool
	}{
		{"delay", t.Criteria.Delay, false},
		{"budget", t.Criteria.Budget, false},
		{"alerts", t.Criteria.Alerts, false},
		{"blocking", t.Criteria.Blocking, false},
		{"progress", t.Criteria.Progress, true},
	}
	for _, n := range named {
		if n.c.Weight < 0 {
			errs = append(errs, fmt.Errorf("%s: weight %d is negative", n.name, n.c.Weight))
		}
		ordered := n.c.Low < n.c.Medium && n.c.Medium < n.c.High && n.c.High < n.c.Critical
		if n.desc {
			ordered = n.c.Low > n.c.Medium && n.c.Medium > n.c.High && n.c.High > n.c.Critical
		}
		if !ordered {
			errs = append(errs, fmt.Errorf("%s: cutoffs %v/%v/%v/%v are not monotonic",
				n.name, n.c.Low, n.c.Medium, n.c.High, n.c.Critical))
		}
	}

	bands := []struct {
		name string
		b    Band
	}{
		{"low", t.Levels.Low}, {"medium", t.Levels.Medium}, {"high", t.Levels.High}, {"critical", t.Levels.Critical},
	}
	if t.Levels.Low.Min != 0 {
		errs = append(errs, fmt.Errorf("level low must start at 0, starts at %d", t.Levels.Low.Min))
	}
	if t.Levels.Critical.Max != 100 {
		errs = append(errs, fmt.Errorf("level critical must end at 100, ends at %d", t.Levels.Critical.Max))
	}
	for i, lb := range bands {
		if lb.b.Min > lb.b.Max {
			errs = append(errs, fmt.Errorf("level %s: min %d exceeds max %d", lb.name, lb.b.Min, lb.b.Max))
		}
		if i > 0 && lb.b.Min != bands[i-1].b.Max+1 {
			errs = append(errs, fmt.Errorf("levels %s/%s are not contiguous at %d/%d",
				bands[i-1].name, lb.name, bands[i-1].b.Max, lb.b.Min))
		}
	}

	w := t.Severity
	if w.Low < 0 || w.Medium < 0 || w.High < 0 || w.Critical < 0 {
		errs = append(errs, fmt.Errorf("severity weights must not be negative"))
	}

	if len(errs) > 0 {
		return eris.Wrapf(domain.ErrConfiguration, "risk thresholds: %v", errors.Join(errs...))
	}
	return nil
}
