package notifications

import "time"

// Kind identifies the domain event being dispatched.
type Kind string

const (
	KindUserRegistered    Kind = "user.registered"
	KindEmailVerification Kind = "email.verification"
	KindPasswordReset     Kind = "password.reset"
	KindTagActivated      Kind = "tag.activated"
	KindPetRegistered     Kind = "pet.registered"
	KindPetScanned        Kind = "pet.scanned"
	KindPetLostModeChange Kind = "pet.lost_mode_changed"
)

// Event carries everything a backend needs to notify the affected owner.
// Fields are populated per kind; unused fields stay zero.
type Event struct {
	Kind           Kind
	To             string
	Name           string
	Token          string
	TagCode        string
	ActivationCode string
	PetName        string
	Latitude       float64
	Longitude      float64
	At             time.Time
}
