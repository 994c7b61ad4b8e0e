package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sentinel-sim/sentinel/internal/models"
	"github.com/sentinel-sim/sentinel/internal/remote"
)

// Wizard steps
const (
	StepDetails  = 1 // name, description, targets
	StepContent  = 2 // difficulty and email preview
	StepSchedule = 3 // when to send
)

var (
	// ErrSubmitting is returned for step changes while a create is in flight
	ErrSubmitting = errors.New("submission in progress")
	// ErrNotAtFinalStep is returned when submitting before the schedule step
	ErrNotAtFinalStep = errors.New("campaign can only be created from the final step")
	// ErrAlreadyCreated is returned when submitting a wizard that succeeded
	ErrAlreadyCreated = errors.New("campaign already created")
)

// ValidationError is a local, synchronous input error. It never reaches
// the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

var (
	errNameRequired = &ValidationError{Field: "name", Message: "campaign name is required"}
	errDateRequired = &ValidationError{Field: "schedule_date", Message: "a date is required for scheduled campaigns"}
	errDateFormat   = &ValidationError{Field: "schedule_date", Message: "use YYYY-MM-DD HH:MM or RFC3339"}
)

// TargetGroups are the selectable recipient groups
var TargetGroups = []string{"All Users", "Sales Team", "Engineering", "Marketing"}

// RecurringOptions are the supported recurring rules
var RecurringOptions = []string{
	"Every Monday",
	"Every 2nd Tuesday of the month",
	"Quarterly (First Monday)",
	"Monthly (Last Friday)",
}

// EmailPreviews is the sample subject line shown per difficulty
var EmailPreviews = map[models.Difficulty]string{
	models.DifficultyEasy:   "Dear User, Please update your password at your convenience.",
	models.DifficultyMedium: "Urgent: Your account requires immediate verification to prevent suspension.",
	models.DifficultyHard:   "IT Security Alert: Mandatory password reset required within 24 hours.",
}

// scheduleLayouts are accepted for ScheduleDate, tried in order
var scheduleLayouts = []string{time.RFC3339, "2006-01-02 15:04"}

// WizardFields holds the user's input across all steps
type WizardFields struct {
	Name         string
	Description  string
	Targets      []string
	Difficulty   models.Difficulty
	Schedule     models.ScheduleType
	Recurring    string
	ScheduleDate string
}

// SubmissionState tracks the create request
type SubmissionState int

const (
	SubmissionIdle SubmissionState = iota
	SubmissionSubmitting
	SubmissionSucceeded
	SubmissionFailed
)

func (s SubmissionState) String() string {
	switch s {
	case SubmissionSubmitting:
		return "submitting"
	case SubmissionSucceeded:
		return "succeeded"
	case SubmissionFailed:
		return "failed"
	}
	return "idle"
}

// Submission is the outcome of the last submit. Reason is set when failed.
type Submission struct {
	State  SubmissionState
	Reason string
	Err    error
}

// Creator issues the create request
type Creator interface {
	CreateCampaign(ctx context.Context, req *remote.CreateCampaignRequest) (*models.Campaign, error)
}

// Wizard is the three-step create campaign flow
type Wizard struct {
	Step       int
	Fields     WizardFields
	Submission Submission

	onSucceeded []func(models.Campaign)
	location    *time.Location
}

// NewWizard returns a wizard on step 1 with default choices
func NewWizard() *Wizard {
	return &Wizard{
		Step: StepDetails,
		Fields: WizardFields{
			Difficulty: models.DifficultyMedium,
			Schedule:   models.ScheduleNow,
			Recurring:  RecurringOptions[0],
		},
		location: time.Local,
	}
}

// OnSucceeded registers a hook run after a successful create
func (w *Wizard) OnSucceeded(fn func(models.Campaign)) {
	w.onSucceeded = append(w.onSucceeded, fn)
}

// Submitting reports whether a create request is in flight
func (w *Wizard) Submitting() bool {
	return w.Submission.State == SubmissionSubmitting
}

// Next advances one step. Step 1 requires a name; step 3 is terminal.
func (w *Wizard) Next() error {
	if w.Submitting() {
		return ErrSubmitting
	}
	if w.Step >= StepSchedule {
		return nil
	}
	if err := w.validateStep(w.Step); err != nil {
		return err
	}
	w.Step++
	return nil
}

// Back steps back, floored at step 1
func (w *Wizard) Back() error {
	if w.Submitting() {
		return ErrSubmitting
	}
	if w.Step > StepDetails {
		w.Step--
	}
	return nil
}

func (w *Wizard) validateStep(step int) error {
	switch step {
	case StepDetails:
		if strings.TrimSpace(w.Fields.Name) == "" {
			return errNameRequired
		}
	case StepSchedule:
		switch w.Fields.Schedule {
		case models.ScheduleAt:
			if strings.TrimSpace(w.Fields.ScheduleDate) == "" {
				return errDateRequired
			}
			if _, err := w.scheduleTime(); err != nil {
				return errDateFormat
			}
		case models.ScheduleRecurring:
			if w.Fields.Recurring == "" {
				return &ValidationError{Field: "recurring", Message: "pick a recurring schedule"}
			}
		case models.ScheduleNow:
		default:
			return &ValidationError{Field: "schedule", Message: fmt.Sprintf("unknown schedule %q", w.Fields.Schedule)}
		}
	}
	return nil
}

func (w *Wizard) scheduleTime() (time.Time, error) {
	return parseScheduleDate(w.Fields.ScheduleDate, w.location)
}

func parseScheduleDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range scheduleLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// Validate checks every step
func (w *Wizard) Validate() error {
	for step := StepDetails; step <= StepSchedule; step++ {
		if err := w.validateStep(step); err != nil {
			return err
		}
	}
	return nil
}

// ToRequest builds the create payload from the fields
func (w *Wizard) ToRequest() (*remote.CreateCampaignRequest, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	f := w.Fields
	req := &remote.CreateCampaignRequest{
		Name:         strings.TrimSpace(f.Name),
		Description:  strings.TrimSpace(f.Description),
		Difficulty:   string(f.Difficulty),
		TargetUsers:  append([]string(nil), f.Targets...),
		ScheduleType: string(f.Schedule),
	}
	if len(req.TargetUsers) == 0 {
		req.TargetUsers = []string{TargetGroups[0]}
	}
	switch f.Schedule {
	case models.ScheduleAt:
		t, _ := w.scheduleTime()
		req.ScheduleDate = t.UTC().Format(time.RFC3339)
	case models.ScheduleRecurring:
		req.Recurring = f.Recurring
	}
	return req, nil
}

// BeginSubmit moves to submitting and returns the single request to send.
// Callers must report the outcome through Resolve.
func (w *Wizard) BeginSubmit() (*remote.CreateCampaignRequest, error) {
	switch {
	case w.Submitting():
		return nil, ErrSubmitting
	case w.Submission.State == SubmissionSucceeded:
		return nil, ErrAlreadyCreated
	case w.Step != StepSchedule:
		return nil, ErrNotAtFinalStep
	}
	req, err := w.ToRequest()
	if err != nil {
		return nil, err
	}
	w.Submission = Submission{State: SubmissionSubmitting}
	return req, nil
}

// Resolve records the outcome of the request issued by BeginSubmit. On
// failure the fields are left as entered so the user can retry.
func (w *Wizard) Resolve(created *models.Campaign, err error) {
	if !w.Submitting() {
		return
	}
	if err != nil {
		w.Submission = Submission{State: SubmissionFailed, Reason: err.Error(), Err: err}
		return
	}
	w.Submission = Submission{State: SubmissionSucceeded}
	var camp models.Campaign
	if created != nil {
		camp = created.Clone()
	}
	for _, fn := range w.onSucceeded {
		fn(camp)
	}
}

// Submit runs BeginSubmit, the create request and Resolve synchronously
func (w *Wizard) Submit(ctx context.Context, creator Creator) error {
	req, err := w.BeginSubmit()
	if err != nil {
		return err
	}
	created, err := creator.CreateCampaign(ctx, req)
	w.Resolve(created, err)
	return err
}
