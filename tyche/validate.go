package tyche

import (
	"fmt"
)

// Validate checks every rule invariant at once. Either the whole rule set is
// accepted or the first violation is returned wrapped in ErrInvalidRules;
// nothing is ever partially applied.
func (r Rules) Validate() error {
	if err := r.Economy.validate(); err != nil {
		return err
	}
	if err := r.Blocks.validate(); err != nil {
		return err
	}
	if err := r.Difficulty.validate(); err != nil {
		return err
	}
	if r.Fusion.MinInOutCountRatio == 0 {
		return invalid("fusion min in/out count ratio must be positive")
	}
	if r.Files.Blocks == "" || r.Files.BlocksCache == "" || r.Files.BlockIndexes == "" || r.Files.TxPool == "" {
		return invalid("storage file names must not be empty")
	}
	return nil
}

func (e EconomyRules) validate() error {
	if e.EmissionSpeedFactor == 0 || e.EmissionSpeedFactor > 64 {
		return invalid("emission speed factor %d out of (0, 64]", e.EmissionSpeedFactor)
	}
	if e.DecimalPlaces > MaxDecimalPlaces {
		return invalid("decimal places %d above %d", e.DecimalPlaces, MaxDecimalPlaces)
	}
	if e.MoneySupply == 0 {
		return invalid("money supply must be positive")
	}
	return nil
}

func (b BlocksRules) validate() error {
	if b.GrowthDenominator == 0 {
		return invalid("block growth denominator must be positive")
	}
	if b.RewardWindow == 0 {
		return invalid("reward window must be positive")
	}
	if b.FullRewardZone == 0 {
		return invalid("full reward zone must be positive")
	}
	return nil
}

func (d DifficultyRules) validate() error {
	if d.Target == 0 || d.Target > MaxDifficultyTarget {
		return invalid("difficulty target %d out of (0, %d]", d.Target, MaxDifficultyTarget)
	}
	if d.FutureTimeLimit > MaxDifficultyTarget {
		return invalid("difficulty future time limit %d above %d", d.FutureTimeLimit, MaxDifficultyTarget)
	}
	windows := []struct {
		name string
		size uint64
	}{
		{"difficulty", d.Window},
		{"LWMA", d.LWMAWindow},
		{"LWMA-2", d.LWMA2Window},
		{"LWMA-2 retune", d.LWMA2RetuneWindow},
	}
	for _, w := range windows {
		if w.size < 2 || w.size > MaxDifficultyWindow {
			return invalid("%s window %d out of [2, %d]", w.name, w.size, MaxDifficultyWindow)
		}
	}
	// 2*Cut <= Window-2, without the doubling.
	if d.Cut > (d.Window-2)/2 {
		return invalid("difficulty cut %d too large for window %d", d.Cut, d.Window)
	}
	u := d.Upgrades
	if u.V2 > u.V3 || u.V3 > u.V4 || u.V4 > u.V5 {
		return invalid("difficulty upgrade heights must not decrease")
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRules, fmt.Sprintf(format, args...))
}
