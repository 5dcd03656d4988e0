package testutil

import (
	"fmt"
	"time"

	"github.com/mcoot/truthlie/internal/model"
)

// Epoch is the start time for mock clocks in tests
var Epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// Round builds a round about employee with three titled statements
func Round(id model.RoundID, employee string, status model.RoundStatus, lieIndex int) model.GameRound {
	r := model.GameRound{
		ID:           id,
		EmployeeName: employee,
		Department:   model.DefaultProfileField,
		Introducer:   model.DefaultProfileField,
		LieIndex:     lieIndex,
		Status:       status,
		Votes:        []model.Vote{},
		CreatedAt:    Epoch,
	}
	for i := range r.Statements {
		r.Statements[i] = model.Statement{ID: i + 1, Title: fmt.Sprintf("%s statement %d", employee, i+1)}
	}
	return r
}
