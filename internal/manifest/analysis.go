package manifest

import (
	"extforge/internal/classify"
)

// Defaults applied when the analysis leaves a field empty.
const (
	DefaultName    = "Generated Extension"
	DefaultVersion = "1.0"

	// descriptionLimit bounds the manifest description field; the cut is
	// cosmetic, classification already ran on the full text.
	descriptionLimit = 100
)

// Analysis is the flat translation between a requirement record and the
// manifest builder. Zero values fall back to the standard artifact names.
type Analysis struct {
	Name        string
	Version     string
	Description string

	NeedPopup      bool
	NeedContent    bool
	NeedBackground bool
	NeedCSS        bool

	// Permissions may mix API identifiers and host patterns; Build splits
	// them.
	Permissions []string

	// ContentMatches lists host patterns targeted by content scripts.
	// Empty means "all pages" when a content script is requested.
	ContentMatches []string

	PopupFile      string
	BackgroundFile string
	ContentJS      []string
	ContentCSS     []string

	// Icons maps icon size to path, e.g. "48" -> "icon48.png".
	Icons map[string]string
}

// FromRequirements translates a requirement record into the builder input.
// The description is the raw (untruncated, original-case) input text.
func FromRequirements(req *classify.Requirements, description string) Analysis {
	return Analysis{
		Name:           DefaultName,
		Version:        DefaultVersion,
		Description:    truncate(description, descriptionLimit),
		NeedPopup:      req.NeedsPopup,
		NeedContent:    req.NeedsContentScript,
		NeedBackground: req.NeedsBackground,
		NeedCSS:        req.NeedsCSS,
		Permissions:    append([]string(nil), req.Permissions...),
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
