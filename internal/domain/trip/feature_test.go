package trip

import (
	"context"
	"math"
	"testing"

	"github.com/cucumber/godog"
	"github.com/go-faster/errors"
)

type wizardTestContext struct {
	wizard    *Wizard
	submitErr error
}

func (c *wizardTestContext) aNewTripWizard() error {
	c.wizard = NewWizard()
	c.submitErr = nil
	return nil
}

func (c *wizardTestContext) iChooseTheTripType(s string) error {
	t, err := ParseTripType(s)
	if err != nil {
		return err
	}
	c.wizard.SetTripType(t)
	return nil
}

func (c *wizardTestContext) iSelectTheCategory(id string) error {
	c.wizard.SetSelectedCategory(id)
	return nil
}

func (c *wizardTestContext) iSelectTheHospital(id string) error {
	c.wizard.SetSelectedHospital(id)
	return nil
}

func (c *wizardTestContext) iSelectTheAccommodation(id string) error {
	c.wizard.SetSelectedAccommodation(id)
	return nil
}

func (c *wizardTestContext) iGoToTheNextStep() error {
	c.wizard.NextStep()
	return nil
}

func (c *wizardTestContext) iFillInContact(name, email, phone string) error {
	c.wizard.SetContactInfo(ContactUpdate{Name: &name, Email: &email, Phone: &phone})
	return nil
}

func (c *wizardTestContext) iSubmitTheTrip() error {
	return c.wizard.SubmitChecked()
}

func (c *wizardTestContext) iTryToSubmitTheTrip() error {
	c.submitErr = c.wizard.SubmitChecked()
	return nil
}

func (c *wizardTestContext) theWizardHasSteps(n int) error {
	if got := c.wizard.TotalSteps(); got != n {
		return errors.Errorf("expected %d steps, got %d", n, got)
	}
	return nil
}

func (c *wizardTestContext) theCurrentStepIs(name string) error {
	step, ok := c.wizard.CurrentStep()
	if !ok {
		return errors.Errorf("no current step at index %d", c.wizard.CurrentIndex())
	}
	if string(step) != name {
		return errors.Errorf("expected step %q, got %q", name, step)
	}
	return nil
}

func (c *wizardTestContext) iCanProceed() error {
	if !c.wizard.CanProceed() {
		return errors.New("expected to be able to proceed")
	}
	return nil
}

func (c *wizardTestContext) iCannotProceed() error {
	if c.wizard.CanProceed() {
		return errors.New("expected to be blocked")
	}
	return nil
}

func (c *wizardTestContext) theTripIsSubmitted() error {
	if !c.wizard.Submitted() {
		return errors.New("trip is not submitted")
	}
	return nil
}

func (c *wizardTestContext) theTripIsNotSubmitted() error {
	if c.wizard.Submitted() {
		return errors.New("trip is submitted")
	}
	return nil
}

func (c *wizardTestContext) theSubmissionIsRejected() error {
	if !errors.Is(c.submitErr, ErrNotReady) {
		return errors.Errorf("expected ErrNotReady, got %v", c.submitErr)
	}
	return nil
}

func (c *wizardTestContext) theProgressIsPercent(pct int) error {
	got := c.wizard.Progress() * 100
	if math.Abs(got-float64(pct)) > 1e-6 {
		return errors.Errorf("expected progress %d%%, got %.2f%%", pct, got)
	}
	return nil
}

func initializeWizardScenario(ctx *godog.ScenarioContext) {
	tc := &wizardTestContext{}

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, tc.aNewTripWizard()
	})

	ctx.Step(`^a new trip wizard$`, tc.aNewTripWizard)

	ctx.Step(`^I choose the "([^"]*)" trip type$`, tc.iChooseTheTripType)
	ctx.Step(`^I select the "([^"]*)" category$`, tc.iSelectTheCategory)
	ctx.Step(`^I select the "([^"]*)" hospital$`, tc.iSelectTheHospital)
	ctx.Step(`^I select the "([^"]*)" accommodation$`, tc.iSelectTheAccommodation)
	ctx.Step(`^I go to the next step$`, tc.iGoToTheNextStep)
	ctx.Step(`^I fill in contact "([^"]*)" "([^"]*)" "([^"]*)"$`, tc.iFillInContact)
	ctx.Step(`^I submit the trip$`, tc.iSubmitTheTrip)
	ctx.Step(`^I try to submit the trip$`, tc.iTryToSubmitTheTrip)

	ctx.Step(`^the wizard has (\d+) steps$`, tc.theWizardHasSteps)
	ctx.Step(`^the current step is "([^"]*)"$`, tc.theCurrentStepIs)
	ctx.Step(`^I can proceed$`, tc.iCanProceed)
	ctx.Step(`^I cannot proceed$`, tc.iCannotProceed)
	ctx.Step(`^the trip is submitted$`, tc.theTripIsSubmitted)
	ctx.Step(`^the trip is not submitted$`, tc.theTripIsNotSubmitted)
	ctx.Step(`^the submission is rejected$`, tc.theSubmissionIsRejected)
	ctx.Step(`^the progress is (\d+) percent$`, tc.theProgressIsPercent)
}

func TestWizardFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeWizardScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
