package condition

// Slot holds the single Status a battler carries. Once a Status other than
// None is applied it is permanent for the battle.
//
// Not safe for concurrent use; a battle owns its slots exclusively.
type Slot struct {
	status Status
}

// Status returns the current status.
func (s *Slot) Status() Status { return s.status }

// Afflicted reports whether a status other than None is active.
func (s *Slot) Afflicted() bool { return s.status != None }

// Apply sets st if the slot is currently None.
//
// Postcondition: Returns true iff the slot changed. An afflicted slot never changes.
func (s *Slot) Apply(st Status) bool {
	if st == None || s.status != None {
		return false
	}
	s.status = st
	return true
}
