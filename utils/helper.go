package utils

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/ttacon/libphonenumber"
)

const DateLayout = "2006-01-02"

var (
	parentheticalRe = regexp.MustCompile(`\([^)]*\)`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// NormalizeNameForMatch removes "( ... )" groups, collapses whitespace,
// lowercases and trims. Two names match when their normalized forms are equal.
func NormalizeNameForMatch(name string) string {
	s := parentheticalRe.ReplaceAllString(name, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

func ValidatePhoneNumber(phoneNumber, countryCode string) error {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return err // Phone number is invalid
	}

	if !libphonenumber.IsValidNumber(p) {
		return fmt.Errorf("phone number is not valid")
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD string. Empty input is (nil, nil).
func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date format %q, use YYYY-MM-DD", value)
	}
	return &d, nil
}

// ParseDateLenient is ParseDate with malformed input treated as absent.
func ParseDateLenient(value string) *time.Time {
	d, err := ParseDate(value)
	if err != nil {
		return nil
	}
	return d
}

// execute given template string and return generated string
func ExecTemplate(tString string, data map[string]interface{}) (string, error) {
	t, err := template.New("sql").Parse(tString)
	if err != nil {
		return "", errors.New("error parsing sql template: " + err.Error())
	}
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		return "", errors.New("failed to execute sql template: " + err.Error())
	}
	return b.String(), nil
}

// UniqueSlice keeps the first occurrence of every element.
func UniqueSlice[T comparable](slice []T) []T {
	keys := make(map[T]bool)
	var list []T
	for _, entry := range slice {
		if _, value := keys[entry]; !value {
			keys[entry] = true
			list = append(list, entry)
		}
	}
	return list
}
