// api/schemas/actions.go
package schemas

// -- Automation Action Schemas --

// ActionType identifies the kind of browser interaction a step performs.
type ActionType string

const (
	ActionNavigate       ActionType = "navigate"
	ActionClick          ActionType = "click"
	ActionInputText      ActionType = "input_text"
	ActionSendKeys       ActionType = "send_keys"
	ActionScroll         ActionType = "scroll"
	ActionExtractContent ActionType = "extract_content"
	ActionWait           ActionType = "wait"
	ActionScreenshot     ActionType = "screenshot"
)

// knownActionTypes is the authoritative set used for script validation.
var knownActionTypes = map[ActionType]struct{}{
	ActionNavigate:       {},
	ActionClick:          {},
	ActionInputText:      {},
	ActionSendKeys:       {},
	ActionScroll:         {},
	ActionExtractContent: {},
	ActionWait:           {},
	ActionScreenshot:     {},
}

// Valid reports whether t is a recognized action type.
func (t ActionType) Valid() bool {
	_, ok := knownActionTypes[t]
	return ok
}

// Step defines a single scripted interaction.
type Step struct {
	Action       ActionType `json:"action"`
	Selector     string     `json:"selector,omitempty"`
	Value        string     `json:"value,omitempty"`
	URL          string     `json:"url,omitempty"`
	Direction    string     `json:"direction,omitempty"`
	Milliseconds int        `json:"milliseconds,omitempty"`
}

// Script is an ordered sequence of steps executed by the driver.
type Script struct {
	Name  string `json:"name,omitempty"`
	Steps []Step `json:"steps"`
}
