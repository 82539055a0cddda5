package trip

import (
	"github.com/go-faster/errors"
)

// ErrUnknownTripType is returned when a trip type identifier is not recognised.
var ErrUnknownTripType = errors.New("unknown trip type")

// Step names one phase of the trip builder.
type Step string

const (
	StepTreatment     Step = "treatment"
	StepAccommodation Step = "accommodation"
	StepDining        Step = "dining"
	StepAttractions   Step = "attractions"
	StepContact       Step = "contact"
)

// TripType selects which optional steps the wizard walks through.
type TripType string

const (
	// MedicalOnly covers treatment only.
	MedicalOnly TripType = "medical-only"
	// MedicalStay adds an accommodation step.
	MedicalStay TripType = "medical-stay"
	// FullExperience adds accommodation, dining and attractions.
	FullExperience TripType = "full-experience"
)

// TripTypes lists the supported trip types in display order.
var TripTypes = []TripType{MedicalOnly, MedicalStay, FullExperience}

var typeSteps = map[TripType][]Step{
	MedicalOnly:    {StepTreatment},
	MedicalStay:    {StepTreatment, StepAccommodation},
	FullExperience: {StepTreatment, StepAccommodation, StepDining, StepAttractions},
}

// ParseTripType validates a trip type identifier.
func ParseTripType(s string) (TripType, error) {
	t := TripType(s)
	if _, ok := typeSteps[t]; !ok {
		return "", errors.Wrapf(ErrUnknownTripType, "%q", s)
	}
	return t, nil
}

// Steps returns the ordered step list for the trip type, always ending with
// the contact step. An unknown type has no steps.
func (t TripType) Steps() []Step {
	own, ok := typeSteps[t]
	if !ok {
		return nil
	}
	steps := make([]Step, 0, len(own)+1)
	steps = append(steps, own...)
	return append(steps, StepContact)
}

// Has reports whether the step is part of the trip type's sequence.
func (t TripType) Has(step Step) bool {
	for _, s := range t.Steps() {
		if s == step {
			return true
		}
	}
	return false
}
