package models

import "regexp"

// CountryCodeRule describes the accepted local phone shape for a dialing code
type CountryCodeRule struct {
	Code    string         `json:"code"`
	Country string         `json:"country"`
	Pattern *regexp.Regexp `json:"-"`
	Format  string         `json:"format"`
}

// PatternString returns the rule's regular expression source
func (r CountryCodeRule) PatternString() string {
	if r.Pattern == nil {
		return ""
	}
	return r.Pattern.String()
}
