package parser

// State is the position of a RequestParser in the request grammar.
type State int

// Parser states, in the order they are visited.
const (
	StateMethod State = iota
	StateTarget
	StateVersion
	StateHeaderName
	StateHeaderValue
	StateBody
	StateEnd
)

var stateNames = [...]string{
	StateMethod:      "METHOD",
	StateTarget:      "TARGET",
	StateVersion:     "VERSION",
	StateHeaderName:  "HEADER_NAME",
	StateHeaderValue: "HEADER_VALUE",
	StateBody:        "BODY",
	StateEnd:         "END",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}
