// Package catalog resolves free-form queries against the S&S Activewear
// catalog and normalizes its JSON payloads into records and flat rows.
package catalog

import "regexp"

// IdentifierClass is the kind of identifier a search string looks like.
type IdentifierClass uint8

const (
	FreeText IdentifierClass = iota
	DirectIdentifier
	StyleNamePattern
)

func (c IdentifierClass) String() string {
	switch c {
	case DirectIdentifier:
		return "direct"
	case StyleNamePattern:
		return "style"
	}
	return "free-text"
}

var (
	skuPattern       = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]+$`)
	gtinPattern      = regexp.MustCompile(`^[0-9]{13,14}$`)
	styleIDPattern   = regexp.MustCompile(`^[0-9]{1,9}$`)
	styleNamePattern = regexp.MustCompile(`^[0-9]{3,4}[A-Za-z]?$`)
)

// Classify reports which identifier class query belongs to. Rules are tried
// in order and the first match wins; the input is not trimmed or case folded.
//
// A bare 3-4 digit style number such as "2000" also fits the numeric style
// id shape; it is classified as StyleNamePattern so it reaches the style
// filter rather than a single-product lookup.
func Classify(query string) IdentifierClass {
	switch {
	case skuPattern.MatchString(query), gtinPattern.MatchString(query):
		return DirectIdentifier
	case styleNamePattern.MatchString(query):
		return StyleNamePattern
	case styleIDPattern.MatchString(query):
		return DirectIdentifier
	}
	return FreeText
}
