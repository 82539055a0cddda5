package trip

// CanAdvance reports whether the given step is complete for state s.
// Dining and attractions are optional and always pass. Contact fields are
// only checked for presence; format checks belong to the form layer.
func CanAdvance(step Step, s State) bool {
	switch step {
	case StepTreatment:
		return s.SelectedCategory != "" && s.SelectedHospital != ""
	case StepAccommodation:
		return s.SelectedAccommodation != ""
	case StepDining, StepAttractions:
		return true
	case StepContact:
		c := s.Contact
		return c.Name != "" && c.Email != "" && c.Phone != ""
	default:
		return false
	}
}
