/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-openapi/strfmt"

	"github.com/suparena/sportstore/datastore"
	"github.com/suparena/sportstore/errors"
	"github.com/suparena/sportstore/storagemodels"
)

// Document keys of a stored user.
const (
	UserFirstNameKey           = "firstName"
	UserLastNameKey            = "lastName"
	UserEmailAddressKey        = "emailAddress"
	UserBirthdayKey            = "birthday"
	UserGenderKey              = "gender"
	UserTrainingLevelKey       = "trainingLevel"
	UserMaxPulseKey            = "maxPulse"
	UserActiveRunningPlanIDKey = "activeRunningPlanId"
)

const (
	defaultLastName   = "Athlete"
	placeholderDomain = "athlete.local"
)

// User is an athlete. The email address is unique across all stored users.
type User struct {
	storagemodels.Base

	firstName           string
	lastName            string
	emailAddress        string
	birthday            time.Time
	gender              Gender
	trainingLevel       TrainingLevel
	maxPulse            int
	activeRunningPlanID *storagemodels.Identifier
}

// NewUser returns a user with a fresh identifier, a placeholder email
// address and today's date as birthday.
func NewUser() *User {
	u := &User{
		Base:     storagemodels.NewBase(),
		lastName: defaultLastName,
		birthday: localMidnight(time.Now()),
	}
	u.emailAddress = fmt.Sprintf("%s@%s", u.Identifier(), placeholderDomain)
	return u
}

// RehydrateUser builds a user from a stored document in one step.
func RehydrateUser(m storagemodels.Mapper, doc storagemodels.Document) (*User, error) {
	if doc == nil {
		return nil, errors.NewNotFoundError(UsersCollection, "<nil document>")
	}
	u := &User{}
	if err := u.Read(m, doc); err != nil {
		return nil, err
	}
	return u, nil
}

// Accessors for the stored fields.

func (u *User) FirstName() string { return u.firstName }
func (u *User) LastName() string { return u.lastName }
func (u *User) EmailAddress() string { return u.emailAddress }
func (u *User) Gender() Gender { return u.gender }
func (u *User) MaxPulse() int { return u.maxPulse }

// TrainingLevel is informational; it never affects MaxPulse.
func (u *User) TrainingLevel() TrainingLevel { return u.trainingLevel }

// Setters accept any value; uniqueness of the email address is checked by
// the store on Save and Update.

func (u *User) SetFirstName(name string) { u.firstName = name }
func (u *User) SetLastName(name string) { u.lastName = name }
func (u *User) SetMaxPulse(pulse int) { u.maxPulse = pulse }
func (u *User) SetEmailAddress(addr string) { u.emailAddress = addr }

// SetTrainingLevel accepts levels outside TrainingLevels.
func (u *User) SetTrainingLevel(level TrainingLevel) { u.trainingLevel = level }

// SetGender stores g if it is listed in Genders. Other values are ignored
// without notice; use SetGenderStrict to be told.
func (u *User) SetGender(g Gender) {
	_ = u.SetGenderStrict(g)
}

// SetGenderStrict stores g or rejects it, keeping the previous value.
func (u *User) SetGenderStrict(g Gender) error {
	if !g.Valid() {
		return errors.NewValidationError(UserGenderKey, fmt.Sprintf("unknown gender code %d", int(g)))
	}
	u.gender = g
	return nil
}

// Birthday returns the calendar date of birth.
func (u *User) Birthday() strfmt.Date {
	y, m, d := u.birthday.Date()
	return strfmt.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// SetBirthday stores the date as midnight in the local zone.
func (u *User) SetBirthday(date strfmt.Date) {
	y, m, d := time.Time(date).Date()
	u.birthday = time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// Age returns the completed years between the birthday and now.
func (u *User) Age(now time.Time) int {
	by, bm, bd := u.birthday.Date()
	ny, nm, nd := now.In(time.Local).Date()
	age := ny - by
	if nm < bm || (nm == bm && nd < bd) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// CalculateMaxPulse sets the max pulse from the age formula and returns it.
func (u *User) CalculateMaxPulse(now time.Time) int {
	base := 220
	if u.gender == GenderFemale {
		base = 226
	}
	u.maxPulse = base - u.Age(now)
	return u.maxPulse
}

// ActiveRunningPlanID returns the referenced plan identifier, or nil.
func (u *User) ActiveRunningPlanID() *storagemodels.Identifier {
	if u.activeRunningPlanID == nil {
		return nil
	}
	id := *u.activeRunningPlanID
	return &id
}

func (u *User) SetActiveRunningPlanID(id *storagemodels.Identifier) {
	if id == nil || id.IsZero() {
		u.activeRunningPlanID = nil
		return
	}
	v := *id
	u.activeRunningPlanID = &v
}

// ActiveRunningPlan resolves the plan reference. A reference to a plan that
// no longer exists yields found == false and leaves the reference in place.
func (u *User) ActiveRunningPlan(ctx context.Context, ds *datastore.Datastore) (*RunningPlan, bool, error) {
	if u.activeRunningPlanID == nil {
		return nil, false, nil
	}
	return datastore.FindByIdentifier[*RunningPlan](ctx, ds, *u.activeRunningPlanID)
}

func (u *User) Write(m storagemodels.Mapper) storagemodels.Document {
	var planID interface{}
	if u.activeRunningPlanID != nil {
		planID = u.activeRunningPlanID.String()
	}
	return storagemodels.Document{
		storagemodels.IdentifierKey: u.Identifier().String(),
		UserFirstNameKey:            u.firstName,
		UserLastNameKey:             u.lastName,
		UserEmailAddressKey:         u.emailAddress,
		UserBirthdayKey:             m.EncodeTime(u.birthday),
		UserGenderKey:               int64(u.gender),
		UserTrainingLevelKey:        int64(u.trainingLevel),
		UserMaxPulseKey:             int64(u.maxPulse),
		UserActiveRunningPlanIDKey:  planID,
	}
}

// Read replaces every field from doc. On error the user is left unchanged.
func (u *User) Read(m storagemodels.Mapper, doc storagemodels.Document) error {
	if doc == nil {
		return nil
	}
	r := storagemodels.NewReader(m, doc)
	id := r.Identifier(storagemodels.IdentifierKey)
	firstName := r.String(UserFirstNameKey)
	lastName := r.String(UserLastNameKey)
	email := r.String(UserEmailAddressKey)
	birthday := r.Time(UserBirthdayKey)
	gender := Gender(r.Int(UserGenderKey))
	level := TrainingLevel(r.Int(UserTrainingLevelKey))
	pulse := r.Int(UserMaxPulseKey)
	planID := r.OptionalIdentifier(UserActiveRunningPlanIDKey)
	if err := r.Err(); err != nil {
		return fmt.Errorf("read user: %w", err)
	}
	if !gender.Valid() {
		return errors.NewTypeMismatchError(UserGenderKey, "gender code", int64(gender))
	}

	u.Base = storagemodels.RestoreBase(id)
	u.firstName = firstName
	u.lastName = lastName
	u.emailAddress = email
	u.birthday = localMidnight(birthday)
	u.gender = gender
	u.trainingLevel = level
	u.maxPulse = pulse
	u.activeRunningPlanID = planID
	return nil
}

// Equal reports whether other is the same user with the same email address.
func (u *User) Equal(other storagemodels.PersistentObject) bool {
	if !storagemodels.SameIdentity(u, other) {
		return false
	}
	o, ok := other.(*User)
	if !ok || u == nil || o == nil {
		return u == nil && o == nil
	}
	return u.emailAddress == o.emailAddress
}

func (u *User) Hash() uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(u.Identifier().String())
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(u.emailAddress)
	return h.Sum64()
}

func (u *User) String() string {
	return fmt.Sprintf("%s %s <%s>", u.firstName, u.lastName, u.emailAddress)
}

func localMidnight(t time.Time) time.Time {
	y, m, d := t.In(time.Local).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
