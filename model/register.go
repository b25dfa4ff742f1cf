/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"github.com/suparena/sportstore/registry"
)

const (
	UsersCollection        = "users"
	RunningPlansCollection = "running_plans"
)

// Register adds User and RunningPlan to r.
func Register(r *registry.Registry) error {
	if err := registry.Register(r, UsersCollection, RehydrateUser, UserEmailAddressKey); err != nil {
		return err
	}
	return registry.Register(r, RunningPlansCollection, RehydrateRunningPlan)
}
