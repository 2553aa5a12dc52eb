package model

// ItemKind is the category a raw user-supplied value is classified into.
type ItemKind int

const (
	// ItemEmail is a syntactically valid e-mail address.
	ItemEmail ItemKind = iota

	// ItemPhone is a phone number: an optional leading "+" and 7 to 15 digits.
	ItemPhone

	// ItemCredential is anything else, treated as a password or login.
	ItemCredential
)

// String returns a human-readable representation of the item kind.
func (k ItemKind) String() string {
	switch k {
	case ItemEmail:
		return "email"
	case ItemPhone:
		return "phone"
	case ItemCredential:
		return "credential"
	default:
		return "unknown"
	}
}

// CheckItem is a value submitted for a leak check together with its kind.
// It is produced once by classification and never mutated.
type CheckItem struct {
	// Value is the trimmed user input. For credentials this is a secret
	// and must never be logged or sent to a provider in full.
	Value string `json:"-"`

	// Kind is the classification result.
	Kind ItemKind `json:"kind"`
}
