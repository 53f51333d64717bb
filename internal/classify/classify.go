// Package classify turns a free-text extension description into a
// structured requirement record using keyword-trigger tables.
package classify

import (
	"sort"
	"strings"
)

// Requirements is the structured result of analyzing a description.
// It is immutable once returned by Analyze; downstream consumers re-scan
// OriginalText for their own finer-grained triggers instead of mutating it.
type Requirements struct {
	NeedsPopup         bool
	NeedsContentScript bool
	NeedsBackground    bool
	NeedsCSS           bool

	// Permissions is deduplicated and sorted so identical input always
	// yields an identical record.
	Permissions []string

	// Features collects human-readable tags in detection order.
	Features []string

	// OriginalText is the lowercased input the flags were derived from.
	OriginalText string
}

// Feature tags appended when the matching flag is set.
const (
	FeaturePopupUI    = "popup_ui"
	FeatureContentMod = "content_modification"
	FeatureBackground = "background_logic"
)

// Trigger vocabularies, scanned in declared order; the first match sets the
// flag and appends its tag. Bare "show", "display" and "time" are
// deliberately absent from popupTriggers - they match far too much prose
// ("every time the browser opens" is not a popup request). Popup intent for
// extraction results and timers is handled by the special cases in Analyze.
var (
	popupTriggers = []string{
		"popup", "button", "menu", "click", "interface", "ui",
		"panel", "window", "input", "form",
		"date", "calculator", "converter", "tool",
	}

	contentTriggers = []string{
		"highlight", "webpage", "website", "page", "dom", "text",
		"change", "modify", "replace", "extract", "find", "search",
		"color", "style", "hide", "remove", "add", "insert",
		"phone number", "email", "link", "image", "element",
		"all websites", "any website", "every page",
	}

	backgroundTriggers = []string{
		"block", "blocking", "automation", "automatic", "alarm",
		"timer", "schedule", "filter", "url", "monitor", "track",
		"every time", "on startup", "browser opens", "redirect",
		"intercept", "request", "api call", "fetch", "listener",
	}

	cssTriggers = []string{
		"style", "css", "color", "theme", "design", "beautiful",
		"styled", "gradient", "background", "font", "layout",
	}
)

// permissionRule maps a trigger vocabulary to the permission identifiers it
// implies. Grants are unioned as a block - a rule never adds a subset.
type permissionRule struct {
	triggers []string
	grants   []string
}

var permissionRules = []permissionRule{
	{triggers: []string{"storage", "save", "remember"}, grants: []string{"storage"}},
	{triggers: []string{"tab", "url", "website"}, grants: []string{"tabs"}},
	{triggers: []string{"block", "filter"}, grants: []string{
		"webRequest", "webRequestBlocking",
		"declarativeNetRequest", "declarativeNetRequestWithHostAccess",
	}},
	{triggers: []string{"alarm", "timer", "schedule"}, grants: []string{"alarms"}},
}

// contentScriptPermissions are granted whenever a content script is needed,
// independent of any further textual trigger.
var contentScriptPermissions = []string{"activeTab", "scripting"}

// Analyze classifies a description into a Requirements record. It never
// fails: input with no recognized trigger yields all-false flags and empty
// permission and feature sets. The caller guarantees non-empty input.
func Analyze(text string) *Requirements {
	req := &Requirements{OriginalText: strings.ToLower(text)}

	if matchAny(req.OriginalText, popupTriggers) {
		req.NeedsPopup = true
		req.Features = append(req.Features, FeaturePopupUI)
	}
	// Extraction results need somewhere to be displayed.
	if strings.Contains(req.OriginalText, "extract") && strings.Contains(req.OriginalText, "display") {
		req.NeedsPopup = true
		req.appendFeature(FeaturePopupUI)
	}
	// Timers get a popup with controls unless one was already requested.
	if !req.NeedsPopup &&
		(strings.Contains(req.OriginalText, "timer") || strings.Contains(req.OriginalText, "pomodoro")) {
		req.NeedsPopup = true
		req.appendFeature(FeaturePopupUI)
	}

	if matchAny(req.OriginalText, contentTriggers) {
		req.NeedsContentScript = true
		req.Features = append(req.Features, FeatureContentMod)
	}

	if matchAny(req.OriginalText, backgroundTriggers) {
		req.NeedsBackground = true
		req.Features = append(req.Features, FeatureBackground)
	}

	// A popup always ships a stylesheet; the override is applied last so it
	// holds no matter which path set NeedsPopup.
	req.NeedsCSS = matchAny(req.OriginalText, cssTriggers) || req.NeedsPopup

	req.Permissions = derivePermissions(req)

	return req
}

// derivePermissions runs the permission pass over the flags and text.
// Additions are set-union, so rules sharing a grant stay idempotent.
func derivePermissions(req *Requirements) []string {
	grants := make(map[string]struct{})

	if req.NeedsContentScript {
		for _, p := range contentScriptPermissions {
			grants[p] = struct{}{}
		}
	}
	for _, rule := range permissionRules {
		if matchAny(req.OriginalText, rule.triggers) {
			for _, p := range rule.grants {
				grants[p] = struct{}{}
			}
		}
	}

	if len(grants) == 0 {
		return nil
	}
	perms := make([]string, 0, len(grants))
	for p := range grants {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms
}

// appendFeature appends tag unless it is already present.
func (r *Requirements) appendFeature(tag string) {
	for _, f := range r.Features {
		if f == tag {
			return
		}
	}
	r.Features = append(r.Features, tag)
}

// HasPermission reports whether the record carries the given identifier.
func (r *Requirements) HasPermission(name string) bool {
	for _, p := range r.Permissions {
		if p == name {
			return true
		}
	}
	return false
}

// matchAny reports whether any trigger appears as an exact substring of
// text. Multi-word triggers ("phone number", "all websites") are substring
// matches too, never tokenized - "phone" alone does not satisfy
// "phone number".
func matchAny(text string, triggers []string) bool {
	for _, t := range triggers {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
