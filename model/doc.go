/*
Package model holds the sportstore entities: User and RunningPlan.

Both embed storagemodels.Base and are registered with Register:

	reg := registry.NewRegistry()
	if err := model.Register(reg); err != nil {
	    return err
	}

Users are unique by email address. A user refers to its active running plan
by identifier only, so the plan can be deleted independently; resolve the
reference with User.ActiveRunningPlan.
*/
package model
