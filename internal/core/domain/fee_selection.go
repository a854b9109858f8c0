package domain

// FeeLevel is a named fee-speed tier.
type FeeLevel int

const (
	FeeLevelNone FeeLevel = iota
	FeeLevelRegular
	FeeLevelPriority
	FeeLevelCustom
)

func (l FeeLevel) String() string {
	switch l {
	case FeeLevelNone:
		return "none"
	case FeeLevelRegular:
		return "regular"
	case FeeLevelPriority:
		return "priority"
	case FeeLevelCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// FeeLevelSet is the set of levels an engine offers.
type FeeLevelSet map[FeeLevel]struct{}

// NewFeeLevelSet returns a set containing the given levels.
func NewFeeLevelSet(levels ...FeeLevel) FeeLevelSet {
	set := make(FeeLevelSet, len(levels))
	for _, l := range levels {
		set[l] = struct{}{}
	}
	return set
}

// Contains returns whether the level belongs to the set.
func (s FeeLevelSet) Contains(level FeeLevel) bool {
	_, ok := s[level]
	return ok
}

// FeeSelection is the chosen fee level plus the levels the engine makes
// available. SelectedLevel is always a member of AvailableLevels; the
// UI must only offer levels already present.
type FeeSelection struct {
	SelectedLevel   FeeLevel
	AvailableLevels FeeLevelSet
	// CustomAmount in the fee asset's minor units, meaningful only when
	// SelectedLevel is FeeLevelCustom.
	CustomAmount int64
}

// NewFeeSelection returns the default selection of engines that do not
// charge a network fee.
func NewFeeSelection() FeeSelection {
	return FeeSelection{
		SelectedLevel:   FeeLevelNone,
		AvailableLevels: NewFeeLevelSet(FeeLevelNone),
	}
}
