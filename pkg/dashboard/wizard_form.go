package dashboard

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/sentinel-sim/sentinel/internal/models"
)

// WizardForm renders the current wizard step as a huh form bound to the
// wizard's fields. The form is rebuilt whenever the step changes.
type WizardForm struct {
	Wizard *Wizard
	Form   *huh.Form

	width int
	Err   error // last local error, shown under the form
}

// NewWizardForm wraps w and builds the form for its current step
func NewWizardForm(w *Wizard, width int) *WizardForm {
	wf := &WizardForm{Wizard: w, width: width}
	wf.buildForm()
	return wf
}

func (wf *WizardForm) buildForm() {
	f := &wf.Wizard.Fields

	var groups []*huh.Group
	switch wf.Wizard.Step {
	case StepDetails:
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("Campaign Name").
				Value(&f.Name).
				Placeholder("Q1 Security Training").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errNameRequired
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Value(&f.Description).
				Placeholder("Optional description...").
				Lines(3),
			huh.NewMultiSelect[string]().
				Title("Target Users").
				Options(huh.NewOptions(TargetGroups...)...).
				Value(&f.Targets),
		).Title("Step 1 of 3: Campaign Details"))

	case StepContent:
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[models.Difficulty]().
				Title("Difficulty Level").
				Options(
					huh.NewOption("Easy", models.DifficultyEasy),
					huh.NewOption("Medium", models.DifficultyMedium),
					huh.NewOption("Hard", models.DifficultyHard),
				).
				Value(&f.Difficulty),
			huh.NewNote().
				Title("Email Preview").
				DescriptionFunc(func() string {
					return EmailPreviews[f.Difficulty]
				}, &f.Difficulty),
		).Title("Step 2 of 3: Email Content"))

	case StepSchedule:
		groups = append(groups,
			huh.NewGroup(
				huh.NewSelect[models.ScheduleType]().
					Title("Schedule").
					Options(
						huh.NewOption("Send Now", models.ScheduleNow),
						huh.NewOption("Schedule for specific date/time", models.ScheduleAt),
						huh.NewOption("Set Recurring Schedule", models.ScheduleRecurring),
					).
					Value(&f.Schedule),
			).Title("Step 3 of 3: Schedule"),
			huh.NewGroup(
				huh.NewInput().
					Title("Send At").
					Value(&f.ScheduleDate).
					Placeholder("2006-01-02 15:04").
					Validate(validateScheduleDate),
			).WithHideFunc(func() bool { return f.Schedule != models.ScheduleAt }),
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Recurring Schedule").
					Options(huh.NewOptions(RecurringOptions...)...).
					Value(&f.Recurring),
			).WithHideFunc(func() bool { return f.Schedule != models.ScheduleRecurring }),
		)
	}

	wf.Form = huh.NewForm(groups...).
		WithTheme(huh.ThemeDracula()).
		WithShowHelp(false)
	if wf.width > 0 {
		wf.Form = wf.Form.WithWidth(wf.width)
	}
}

// Init starts the current step's form
func (wf *WizardForm) Init() tea.Cmd {
	return wf.Form.Init()
}

// Completed reports whether the user finished every field of the step
func (wf *WizardForm) Completed() bool {
	return wf.Form.State == huh.StateCompleted
}

// Next advances the wizard and rebuilds the form for the new step
func (wf *WizardForm) Next() (tea.Cmd, error) {
	before := wf.Wizard.Step
	if err := wf.Wizard.Next(); err != nil {
		wf.Err = err
		if wf.Completed() {
			wf.buildForm()
			return wf.Init(), err
		}
		return nil, err
	}
	wf.Err = nil
	if wf.Wizard.Step == before {
		return nil, nil
	}
	wf.buildForm()
	return wf.Init(), nil
}

// Back steps the wizard back and rebuilds the form
func (wf *WizardForm) Back() (tea.Cmd, error) {
	before := wf.Wizard.Step
	if err := wf.Wizard.Back(); err != nil {
		return nil, err
	}
	wf.Err = nil
	if wf.Wizard.Step == before {
		return nil, nil
	}
	wf.buildForm()
	return wf.Init(), nil
}

// Reopen rebuilds the current step after a completed form, e.g. when a
// submission failed and the user should be able to edit again
func (wf *WizardForm) Reopen() tea.Cmd {
	wf.buildForm()
	return wf.Init()
}

// SetWidth resizes the form
func (wf *WizardForm) SetWidth(width int) {
	wf.width = width
	wf.Form = wf.Form.WithWidth(width)
}

func validateScheduleDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return errDateRequired
	}
	if _, err := parseScheduleDate(s, time.Local); err != nil {
		return errDateFormat
	}
	return nil
}
