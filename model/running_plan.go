/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/sportstore/errors"
	"github.com/suparena/sportstore/storagemodels"
)

const (
	RunningPlanNameKey      = "name"
	RunningPlanRemarksKey   = "remarks"
	RunningPlanStartDateKey = "startDate"
	RunningPlanCompletedKey = "completed"
)

// RunningPlan is a training plan a user can follow. Users refer to plans by
// identifier only; deleting a plan leaves those references dangling.
type RunningPlan struct {
	storagemodels.Base

	name      string
	remarks   string
	startDate time.Time
	completed bool
}

// NewRunningPlan returns a plan starting today.
func NewRunningPlan(name string) *RunningPlan {
	return &RunningPlan{
		Base:      storagemodels.NewBase(),
		name:      name,
		startDate: localMidnight(time.Now()),
	}
}

func RehydrateRunningPlan(m storagemodels.Mapper, doc storagemodels.Document) (*RunningPlan, error) {
	if doc == nil {
		return nil, errors.NewNotFoundError(RunningPlansCollection, "<nil document>")
	}
	p := &RunningPlan{}
	if err := p.Read(m, doc); err != nil {
		return nil, err
	}
	return p, nil
}

// Accessors for the stored fields.

func (p *RunningPlan) Name() string { return p.name }
func (p *RunningPlan) Remarks() string { return p.remarks }
func (p *RunningPlan) Completed() bool { return p.completed }

// Setters for the stored fields.

func (p *RunningPlan) SetName(name string) { p.name = name }
func (p *RunningPlan) SetRemarks(remarks string) { p.remarks = remarks }
func (p *RunningPlan) SetCompleted(done bool) { p.completed = done }

// StartDate returns the calendar date the plan starts on.
func (p *RunningPlan) StartDate() strfmt.Date {
	y, m, d := p.startDate.Date()
	return strfmt.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func (p *RunningPlan) SetStartDate(date strfmt.Date) {
	y, m, d := time.Time(date).Date()
	p.startDate = time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func (p *RunningPlan) Write(m storagemodels.Mapper) storagemodels.Document {
	return storagemodels.Document{
		storagemodels.IdentifierKey: p.Identifier().String(),
		RunningPlanNameKey:          p.name,
		RunningPlanRemarksKey:       p.remarks,
		RunningPlanStartDateKey:     m.EncodeTime(p.startDate),
		RunningPlanCompletedKey:     p.completed,
	}
}

func (p *RunningPlan) Read(m storagemodels.Mapper, doc storagemodels.Document) error {
	if doc == nil {
		return nil
	}
	r := storagemodels.NewReader(m, doc)
	id := r.Identifier(storagemodels.IdentifierKey)
	name := r.String(RunningPlanNameKey)
	remarks := r.String(RunningPlanRemarksKey)
	start := r.Time(RunningPlanStartDateKey)
	completed := r.Bool(RunningPlanCompletedKey)
	if err := r.Err(); err != nil {
		return fmt.Errorf("read running plan: %w", err)
	}

	p.Base = storagemodels.RestoreBase(id)
	p.name = name
	p.remarks = remarks
	p.startDate = localMidnight(start)
	p.completed = completed
	return nil
}

func (p *RunningPlan) Equal(other storagemodels.PersistentObject) bool {
	return storagemodels.SameIdentity(p, other)
}

func (p *RunningPlan) String() string {
	return fmt.Sprintf("%s (%s)", p.name, time.Time(p.StartDate()).Format(time.DateOnly))
}
