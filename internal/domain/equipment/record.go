package equipment

import "time"

// Record is one safety-equipment assignment as read from the record store:
// a piece of equipment handed to an employee, with the certification validity
// date of the item. Records are read-only snapshots; the notifier never
// writes them back.
type Record struct {
	HolderName      string
	RegistrationID  string
	EquipmentName   string
	CertificationID string
	ExpiryDate      time.Time // date precision, no time-of-day component
	Returned        bool
}
