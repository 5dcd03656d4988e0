package round

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcoot/truthlie/internal/model"
)

// StatementInput is one statement as entered on the round form
type StatementInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Form is the field values entered when authoring a round
type Form struct {
	EmployeeName string                               `json:"employeeName"`
	Department   string                               `json:"department"`
	Introducer   string                               `json:"introducer"`
	Picture      *model.Picture                       `json:"picture,omitempty"`
	Statements   [model.StatementCount]StatementInput `json:"statements"`
	Lie          int                                  `json:"lie"` // 1-3; 0 when not selected
}

// NewForm returns an empty form with no lie selected
func NewForm() Form {
	return Form{}
}

// LieIndex returns the 0-based position of the lie, or model.NoLie
func (f Form) LieIndex() int {
	if f.Lie == 0 {
		return model.NoLie
	}
	return f.Lie - 1
}

// FormProvider yields the field values for round creation
type FormProvider interface {
	RoundForm(ctx context.Context) (Form, error)
}

// StaticForm is a FormProvider that always yields the same form
type StaticForm Form

// RoundForm returns the form
func (f StaticForm) RoundForm(ctx context.Context) (Form, error) {
	return Form(f), nil
}

// normalize trims every field and checks the values that are invalid in any status
func (f Form) normalize() (Form, error) {
	f.EmployeeName = strings.TrimSpace(f.EmployeeName)
	f.Department = strings.TrimSpace(f.Department)
	f.Introducer = strings.TrimSpace(f.Introducer)
	for i := range f.Statements {
		f.Statements[i].Title = strings.TrimSpace(f.Statements[i].Title)
		f.Statements[i].Content = strings.TrimSpace(f.Statements[i].Content)
	}

	if f.EmployeeName == "" {
		return f, model.ErrMissingEmployeeName
	}
	if f.Lie < 0 || f.Lie > model.StatementCount {
		return f, fmt.Errorf("%w: lie %d", model.ErrInvalidStatementIndex, f.Lie)
	}
	if f.Picture != nil && f.Picture.Size > model.MaxPictureSize {
		return f, fmt.Errorf("%w: %s is %d bytes", model.ErrPictureTooLarge, f.Picture.Name, f.Picture.Size)
	}
	return f, nil
}

// FormFromRound repopulates a form from a stored round
func FormFromRound(r *model.GameRound) Form {
	f := Form{
		EmployeeName: r.EmployeeName,
		Department:   r.Department,
		Introducer:   r.Introducer,
		Picture:      r.Picture,
		Lie:          r.LieIndex + 1,
	}
	if f.Department == model.DefaultProfileField {
		f.Department = ""
	}
	if f.Introducer == model.DefaultProfileField {
		f.Introducer = ""
	}
	for i, st := range r.Statements {
		f.Statements[i] = StatementInput{Title: st.Title, Content: st.Content}
	}
	return f
}

func defaultIfBlank(value string) string {
	if value == "" {
		return model.DefaultProfileField
	}
	return value
}
