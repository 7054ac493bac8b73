package message

import "strings"

// Param is one `;`-separated parameter of a structured header value.
// A parameter written without `=` has HasValue false.
type Param struct {
	Name     string
	Value    string
	HasValue bool
}

// HeaderValue is a structured header value such as
// `multipart/form-data; boundary="XYZ"`.
type HeaderValue struct {
	Main   string
	Params []Param
}

// Param returns the value of the last parameter called name.
func (v HeaderValue) Param(name string) (string, bool) {
	for i := len(v.Params) - 1; i >= 0; i-- {
		if strings.EqualFold(v.Params[i].Name, name) {
			return v.Params[i].Value, v.Params[i].HasValue
		}
	}
	return "", false
}

// ParseHeaderValue splits value into its main token and parameters.
// Names and values are trimmed and one layer of matching quotes is removed
// from values.
func ParseHeaderValue(value string) HeaderValue {
	main, tail, found := strings.Cut(value, ";")
	hv := HeaderValue{Main: strings.TrimSpace(main)}
	if !found {
		return hv
	}

	for {
		segment, rest, more := strings.Cut(tail, ";")
		name, val, hasValue := strings.Cut(segment, "=")
		name = strings.TrimSpace(name)
		if hasValue {
			val = unquote(strings.TrimSpace(val))
		}
		if name != "" || hasValue {
			hv.Params = append(hv.Params, Param{Name: name, Value: val, HasValue: hasValue})
		}
		if !more {
			return hv
		}
		tail = rest
	}
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
