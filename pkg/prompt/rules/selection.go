package rules

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ResponseLength string

const (
	LengthVeryShort ResponseLength = "very_short"
	LengthShort     ResponseLength = "short"
	LengthMedium    ResponseLength = "medium"
	LengthDetailed  ResponseLength = "detailed"
)

type SpeakingStyle string

const (
	StyleFormal       SpeakingStyle = "formal"
	StyleFriendly     SpeakingStyle = "friendly"
	StyleCasual       SpeakingStyle = "casual"
	StyleProfessional SpeakingStyle = "professional"
)

type Dialect string

const (
	DialectFormalArabic Dialect = "formal_arabic"
	DialectEgyptian     Dialect = "egyptian"
	DialectGulf         Dialect = "gulf"
	DialectLevantine    Dialect = "levantine"
	DialectMoroccan     Dialect = "moroccan"
)

// Selection is what a company picked in its response rules settings.
// Empty radio values mean "nothing selected".
type Selection struct {
	ResponseLength ResponseLength `json:"responseLength"`
	SpeakingStyle  SpeakingStyle  `json:"speakingStyle"`
	Dialect        Dialect        `json:"dialect"`
	Rules          []string       `json:"rules"`
	CustomRules    string         `json:"customRules"`
}

// DefaultSelection is applied whenever a company has no usable selection.
func DefaultSelection() *Selection {
	return &Selection{
		ResponseLength: LengthMedium,
		SpeakingStyle:  StyleFriendly,
		Dialect:        DialectEgyptian,
		Rules: []string{
			"no_regreet",
			"no_fake_info",
			"stay_on_topic",
			"answer_from_data",
			"suggest_alternatives",
		},
	}
}

// Parse decodes the response rules JSON stored in company settings.
// Empty input yields (nil, nil). Unknown radio values are rejected so the
// caller can fall back to DefaultSelection.
func Parse(raw []byte) (*Selection, error) {
	if len(strings.TrimSpace(string(raw))) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var sel Selection
	if err := json.Unmarshal(raw, &sel); err != nil {
		return nil, fmt.Errorf("decode response rules: %w", err)
	}
	if sel.ResponseLength != "" {
		if _, ok := lengthInstructions[sel.ResponseLength]; !ok {
			return nil, fmt.Errorf("unknown response length %q", sel.ResponseLength)
		}
	}
	if sel.SpeakingStyle != "" {
		if _, ok := styleInstructions[sel.SpeakingStyle]; !ok {
			return nil, fmt.Errorf("unknown speaking style %q", sel.SpeakingStyle)
		}
	}
	if sel.Dialect != "" {
		if _, ok := dialectInstructions[sel.Dialect]; !ok {
			return nil, fmt.Errorf("unknown dialect %q", sel.Dialect)
		}
	}
	return &sel, nil
}
