package domain

import "strings"

// Reserved symbols shared by the compiler and the recognizers.
const (
	// Epsilon is the empty symbol. It always has id 0 in a symbol table.
	Epsilon = "<eps>"

	BeginPrefix = "__begin__"
	EndPrefix   = "__end__"
	LabelPrefix = "__label__"

	// MetaPrefix is shared by every meta marker.
	MetaPrefix = "__"
)

// BeginMarker returns the output symbol opening the entity span tag.
func BeginMarker(tag string) string { return BeginPrefix + tag }

// EndMarker returns the output symbol closing the entity span tag.
func EndMarker(tag string) string { return EndPrefix + tag }

// LabelMarker returns the output symbol selecting intent.
func LabelMarker(intent string) string { return LabelPrefix + intent }

// IsMeta reports whether sym is a meta marker (never a spoken word).
func IsMeta(sym string) bool {
	return strings.HasPrefix(sym, MetaPrefix)
}

// SlotSymbol returns the replace symbol standing for slot name ("$colors").
func SlotSymbol(name string) string {
	return "$" + strings.TrimPrefix(name, "$")
}

// RuleSymbol returns the replace symbol standing for a qualified rule ("<Grammar.rule>").
func RuleSymbol(grammar, rule string) string {
	return "<" + grammar + "." + rule + ">"
}

// IsReplaceSymbol reports whether sym is a placeholder for a slot or rule.
func IsReplaceSymbol(sym string) bool {
	if sym == Epsilon {
		return false
	}
	return strings.HasPrefix(sym, "$") || (strings.HasPrefix(sym, "<") && strings.HasSuffix(sym, ">"))
}

// IsWord reports whether sym is a literal word (no epsilon, marker or placeholder).
func IsWord(sym string) bool {
	return sym != "" && sym != Epsilon && !IsMeta(sym) && !IsReplaceSymbol(sym)
}
