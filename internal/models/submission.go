package models

// Submission is the normalised set of contact-form fields extracted from one request.
// Every field is optional at this level; empty strings mean "not provided".
type Submission struct {
	Email     string `json:"email" validate:"mailbox"`
	FirstName string `json:"prenom"`
	Age       string `json:"age"`
	Weight    string `json:"poids"`
	Height    string `json:"taille"`
	Level     string `json:"niveau"`
	Goal      string `json:"objectif"`
	Schedule  string `json:"dispo"`
	Location  string `json:"lieu"`
	Equipment string `json:"materiel"`
}

// Mode controls sender address, recipient overrides and validation strictness.
type Mode int

const (
	ModeProduction Mode = iota
	ModeTest
)

// IsTest reports whether the mode is Test.
func (m Mode) IsTest() bool {
	return m == ModeTest
}

func (m Mode) String() string {
	if m == ModeTest {
		return "test"
	}
	return "production"
}
