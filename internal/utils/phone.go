package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ArowuTest/mawadha-giveaway-backend/internal/models"
)

// countryCodeRules is the fixed set of supported dialing codes, in display order
var countryCodeRules = []models.CountryCodeRule{
	{Code: "+971", Country: "UAE", Pattern: regexp.MustCompile(`^[0-9]{9}$`), Format: "XX XXX XXXX"},
	{Code: "+966", Country: "Saudi Arabia", Pattern: regexp.MustCompile(`^[0-9]{9}$`), Format: "XX XXX XXXX"},
	{Code: "+973", Country: "Bahrain", Pattern: regexp.MustCompile(`^[0-9]{8}$`), Format: "XXXX XXXX"},
	{Code: "+974", Country: "Qatar", Pattern: regexp.MustCompile(`^[0-9]{8}$`), Format: "XXXX XXXX"},
	{Code: "+965", Country: "Kuwait", Pattern: regexp.MustCompile(`^[0-9]{8}$`), Format: "XXXX XXXX"},
	{Code: "+968", Country: "Oman", Pattern: regexp.MustCompile(`^[0-9]{8}$`), Format: "XXXX XXXX"},
	{Code: "+91", Country: "India", Pattern: regexp.MustCompile(`^[0-9]{10}$`), Format: "XXXXX XXXXX"},
}

var rulesByCode = func() map[string]models.CountryCodeRule {
	m := make(map[string]models.CountryCodeRule, len(countryCodeRules))
	for _, r := range countryCodeRules {
		m[r.Code] = r
	}
	return m
}()

// CountryCodeRules returns a copy of the supported dialing code rules
func CountryCodeRules() []models.CountryCodeRule {
	out := make([]models.CountryCodeRule, len(countryCodeRules))
	copy(out, countryCodeRules)
	return out
}

// LookupCountryCode returns the rule for code, or ErrUnknownCountryCode
func LookupCountryCode(code string) (models.CountryCodeRule, error) {
	rule, ok := rulesByCode[code]
	if !ok {
		return models.CountryCodeRule{}, models.ErrUnknownCountryCode
	}
	return rule, nil
}

// ValidatePhone reports whether phone fully matches the local number shape for countryCode.
// It does not normalize; callers pass the result of NormalizePhone.
func ValidatePhone(phone, countryCode string) bool {
	rule, err := LookupCountryCode(countryCode)
	if err != nil {
		return false
	}
	return rule.Pattern.MatchString(phone)
}

// NormalizePhone strips whitespace and dashes from user-entered phone numbers
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, phone)
}
