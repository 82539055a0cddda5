// Package trip implements the custom trip builder: a wizard whose step
// sequence depends on the chosen trip type, with per-step validation gates
// and a terminal submission state.
package trip

import (
	"slices"

	"github.com/go-faster/errors"
)

// ErrNotReady is returned by SubmitChecked when the wizard is not on a valid
// contact step.
var ErrNotReady = errors.New("trip is not ready for submission")

// ContactInfo holds the inquiry contact form.
type ContactInfo struct {
	Name          string
	Email         string
	Phone         string
	Country       string
	PreferredDate string
	Message       string
}

// ContactUpdate is a partial contact form; nil fields keep their value.
type ContactUpdate struct {
	Name          *string
	Email         *string
	Phone         *string
	Country       *string
	PreferredDate *string
	Message       *string
}

// State is a snapshot of the wizard. Empty strings mean "not selected".
type State struct {
	TripType              TripType
	CurrentStep           int
	SelectedCategory      string
	SelectedHospital      string
	SelectedAccommodation string
	SelectedRestaurants   []string
	SelectedAttractions   []string
	Contact               ContactInfo
	Submitted             bool
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithOvershoot lets NextStep move the cursor one past the contact step,
// leaving the renderer to clamp it. By default the cursor stops on contact.
func WithOvershoot() Option {
	return func(w *Wizard) { w.overshoot = true }
}

// Wizard is the trip builder state machine. It is not safe for concurrent
// use; callers serialize mutations (see Registry).
type Wizard struct {
	overshoot bool

	tripType      TripType
	current       int
	category      string
	hospital      string
	accommodation string
	restaurants   idSet
	attractions   idSet
	contact       ContactInfo
	submitted     bool
}

// NewWizard creates a wizard in the initial "no trip type" state.
func NewWizard(opts ...Option) *Wizard {
	w := &Wizard{}
	for _, o := range opts {
		o(w)
	}
	return w
}

// State returns a copy of the current wizard state.
func (w *Wizard) State() State {
	return State{
		TripType:              w.tripType,
		CurrentStep:           w.current,
		SelectedCategory:      w.category,
		SelectedHospital:      w.hospital,
		SelectedAccommodation: w.accommodation,
		SelectedRestaurants:   w.restaurants.values(),
		SelectedAttractions:   w.attractions.values(),
		Contact:               w.contact,
		Submitted:             w.submitted,
	}
}

// Submitted reports whether the wizard reached its terminal state.
func (w *Wizard) Submitted() bool { return w.submitted }

// SetTripType selects the trip type and rewinds to the first step. Prior
// selections are kept; steps outside the new type are ignored by
// validation and by Summary.
func (w *Wizard) SetTripType(t TripType) {
	if w.submitted {
		return
	}
	w.tripType = t
	w.current = 0
}

// SetSelectedCategory sets the treatment category and clears the hospital,
// which is only meaningful within a category.
func (w *Wizard) SetSelectedCategory(id string) {
	if w.submitted {
		return
	}
	w.category = id
	w.hospital = ""
}

// SetSelectedHospital sets the treatment hospital.
func (w *Wizard) SetSelectedHospital(id string) {
	if w.submitted {
		return
	}
	w.hospital = id
}

// SetSelectedAccommodation sets the accommodation.
func (w *Wizard) SetSelectedAccommodation(id string) {
	if w.submitted {
		return
	}
	w.accommodation = id
}

// ToggleRestaurant adds the restaurant if absent, removes it otherwise.
func (w *Wizard) ToggleRestaurant(id string) {
	if w.submitted {
		return
	}
	w.restaurants.toggle(id)
}

// ToggleAttraction adds the attraction if absent, removes it otherwise.
func (w *Wizard) ToggleAttraction(id string) {
	if w.submitted {
		return
	}
	w.attractions.toggle(id)
}

// SetContactInfo merges the non-nil fields of u into the contact form.
func (w *Wizard) SetContactInfo(u ContactUpdate) {
	if w.submitted {
		return
	}
	merge(&w.contact.Name, u.Name)
	merge(&w.contact.Email, u.Email)
	merge(&w.contact.Phone, u.Phone)
	merge(&w.contact.Country, u.Country)
	merge(&w.contact.PreferredDate, u.PreferredDate)
	merge(&w.contact.Message, u.Message)
}

// Reset returns the wizard to its initial empty state. This is the only
// transition out of the submitted state.
func (w *Wizard) Reset() {
	*w = Wizard{overshoot: w.overshoot}
}

// Steps returns the step sequence of the active trip type, or nil before a
// type is chosen.
func (w *Wizard) Steps() []Step {
	return w.tripType.Steps()
}

// TotalSteps returns the number of steps, or 0 before a type is chosen.
func (w *Wizard) TotalSteps() int {
	return len(w.Steps())
}

// CurrentStep returns the step under the cursor. ok is false before a type
// is chosen, or when the cursor overshoots the last step.
func (w *Wizard) CurrentStep() (Step, bool) {
	steps := w.Steps()
	if w.current < 0 || w.current >= len(steps) {
		return "", false
	}
	return steps[w.current], true
}

// CurrentIndex returns the cursor position.
func (w *Wizard) CurrentIndex() int { return w.current }

// NextStep moves the cursor forward. It does not consult the validator; the
// caller gates it with CanProceed.
func (w *Wizard) NextStep() {
	if w.submitted {
		return
	}
	limit := w.TotalSteps() - 1
	if w.overshoot {
		limit = w.TotalSteps()
	}
	if w.current < limit {
		w.current++
	}
}

// PrevStep moves the cursor back, never below the first step.
func (w *Wizard) PrevStep() {
	if w.submitted {
		return
	}
	if w.current > 0 {
		w.current--
	}
}

// SetCurrentStep jumps directly to step i. Indices outside the step list are
// ignored. Restricting jumps to completed steps is the caller's concern; see
// JumpBack.
func (w *Wizard) SetCurrentStep(i int) {
	if w.submitted {
		return
	}
	if i < 0 || i >= w.TotalSteps() {
		return
	}
	w.current = i
}

// JumpBack moves to a completed step, one strictly before the cursor. It
// reports whether the jump happened.
func (w *Wizard) JumpBack(i int) bool {
	if w.submitted || i < 0 || i >= w.current {
		return false
	}
	w.current = i
	return true
}

// Progress returns the completed fraction for display, (index+1)/total.
func (w *Wizard) Progress() float64 {
	total := w.TotalSteps()
	if total == 0 {
		return 0
	}
	p := float64(w.current+1) / float64(total)
	if p > 1 {
		p = 1
	}
	return p
}

// CanProceed evaluates the validator for the current step.
func (w *Wizard) CanProceed() bool {
	step, ok := w.CurrentStep()
	if !ok {
		return false
	}
	return CanAdvance(step, w.State())
}

// Submit moves the wizard to its terminal state. Callers are expected to have
// gated it with CanProceed on the contact step. Calling it again is a no-op.
func (w *Wizard) Submit() {
	w.submitted = true
}

// SubmitChecked submits only when the cursor is on a valid contact step.
// Re-submitting an already submitted wizard succeeds without changes.
func (w *Wizard) SubmitChecked() error {
	if w.submitted {
		return nil
	}
	step, ok := w.CurrentStep()
	if !ok || step != StepContact {
		return errors.Wrap(ErrNotReady, "not on contact step")
	}
	if !CanAdvance(StepContact, w.State()) {
		return errors.Wrap(ErrNotReady, "contact name, email and phone are required")
	}
	w.Submit()
	return nil
}

// Summary is the trip as it will be submitted: only selections that belong
// to steps of the active trip type.
type Summary struct {
	TripType      TripType
	Category      string
	Hospital      string
	Accommodation string
	Restaurants   []string
	Attractions   []string
	Contact       ContactInfo
}

// Summary builds the submission view of the trip.
func (w *Wizard) Summary() Summary {
	s := Summary{
		TripType: w.tripType,
		Contact:  w.contact,
	}
	t := w.tripType
	if t.Has(StepTreatment) {
		s.Category = w.category
		s.Hospital = w.hospital
	}
	if t.Has(StepAccommodation) {
		s.Accommodation = w.accommodation
	}
	if t.Has(StepDining) {
		s.Restaurants = w.restaurants.values()
	}
	if t.Has(StepAttractions) {
		s.Attractions = w.attractions.values()
	}
	return s
}

func merge(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// idSet is a set of ids that remembers insertion order for stable output.
type idSet struct {
	ids []string
}

func (s *idSet) toggle(id string) {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return
	}
	s.ids = append(s.ids, id)
}

func (s *idSet) values() []string {
	return slices.Clone(s.ids)
}
