package classify

import (
	"regexp"
	"strings"

	"github.com/nao1215/scamguard/internal/model"
)

var (
	emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// Classify assigns a kind to a raw value. Rules are evaluated in order
// (email, phone, credential) and the first match wins. It never fails:
// every input that is neither an e-mail nor a phone number is a credential.
func Classify(raw string) model.CheckItem {
	value := strings.TrimSpace(raw)

	switch {
	case emailRegex.MatchString(value):
		return model.CheckItem{Value: value, Kind: model.ItemEmail}
	case phoneRegex.MatchString(value):
		return model.CheckItem{Value: value, Kind: model.ItemPhone}
	default:
		return model.CheckItem{Value: value, Kind: model.ItemCredential}
	}
}
