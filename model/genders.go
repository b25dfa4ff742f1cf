/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

// Gender is the stored gender code of a user.
type Gender int

const (
	GenderUnspecified Gender = iota
	GenderMale
	GenderFemale
	GenderDiverse
)

// Genders lists every valid gender code with its display name.
var Genders = map[Gender]string{
	GenderUnspecified: "unspecified",
	GenderMale:        "male",
	GenderFemale:      "female",
	GenderDiverse:     "diverse",
}

func (g Gender) Valid() bool {
	_, ok := Genders[g]
	return ok
}

func (g Gender) String() string {
	if name, ok := Genders[g]; ok {
		return name
	}
	return "invalid"
}

// ParseGender accepts a display name from Genders.
func ParseGender(name string) (Gender, bool) {
	for g, n := range Genders {
		if n == name {
			return g, true
		}
	}
	return 0, false
}

// TrainingLevel is informational; any value is accepted.
type TrainingLevel int

const (
	TrainingLevelBeginner TrainingLevel = iota
	TrainingLevelAdvanced
	TrainingLevelPro
)

var TrainingLevels = map[TrainingLevel]string{
	TrainingLevelBeginner: "beginner",
	TrainingLevelAdvanced: "advanced",
	TrainingLevelPro:      "pro",
}

func (l TrainingLevel) String() string {
	if name, ok := TrainingLevels[l]; ok {
		return name
	}
	return "custom"
}
