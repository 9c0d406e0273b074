package enum

// UserLevel is the gamification rank tier derived from accumulated points.
type UserLevel string

const (
	UserLevelBronze  UserLevel = "bronze"
	UserLevelSilver  UserLevel = "silver"
	UserLevelGold    UserLevel = "gold"
	UserLevelDiamond UserLevel = "diamond"
)

// IsValid reports whether the level is one of the known tiers.
func (l UserLevel) IsValid() bool {
	switch l {
	case UserLevelBronze, UserLevelSilver, UserLevelGold, UserLevelDiamond:
		return true
	}

	return false
}

// Threshold returns the point count at which this tier promotes to the next,
// and false for the terminal diamond tier.
func (l UserLevel) Threshold() (int, bool) {
	switch l {
	case UserLevelBronze:
		return 100, true
	case UserLevelSilver:
		return 200, true
	case UserLevelGold:
		return 350, true
	case UserLevelDiamond:
		return 500, false
	}

	return 0, false
}

// Next returns the successor tier, and false if the level is terminal.
func (l UserLevel) Next() (UserLevel, bool) {
	switch l {
	case UserLevelBronze:
		return UserLevelSilver, true
	case UserLevelSilver:
		return UserLevelGold, true
	case UserLevelGold:
		return UserLevelDiamond, true
	}

	return l, false
}

// Persona is one of the fixed user archetypes chosen during onboarding.
// It drives default preferences and the assistant's prompt context.
type Persona string

const (
	PersonaResident  Persona = "resident"
	PersonaCommuter  Persona = "commuter"
	PersonaMerchant  Persona = "merchant"
	PersonaOrganizer Persona = "organizer"
)

// IsValid reports whether the persona is one of the four archetypes.
func (p Persona) IsValid() bool {
	switch p {
	case PersonaResident, PersonaCommuter, PersonaMerchant, PersonaOrganizer:
		return true
	}

	return false
}
