// Package manifest builds and persists Manifest V3 documents for generated
// extensions.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the manifest's fixed name under the output directory.
const FileName = "manifest.json"

// AllURLs is the universal host-match sentinel.
const AllURLs = "<all_urls>"

// Manifest is a Manifest V3 document. Field order here fixes the JSON
// field order, so repeated builds serialize byte-identically.
type Manifest struct {
	ManifestVersion int               `json:"manifest_version"`
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Description     string            `json:"description"`
	Icons           map[string]string `json:"icons,omitempty"`
	Action          *Action           `json:"action,omitempty"`
	Background      *Background       `json:"background,omitempty"`
	ContentScripts  []ContentScript   `json:"content_scripts,omitempty"`
	Permissions     []string          `json:"permissions,omitempty"`
	HostPermissions []string          `json:"host_permissions,omitempty"`
}

// Action declares the toolbar popup.
type Action struct {
	DefaultPopup string `json:"default_popup"`
	DefaultIcon  string `json:"default_icon,omitempty"`
}

// Background declares the MV3 service worker.
type Background struct {
	ServiceWorker string `json:"service_worker"`
}

// ContentScript declares one content-script injection group.
type ContentScript struct {
	Matches []string `json:"matches"`
	JS      []string `json:"js"`
	CSS     []string `json:"css,omitempty"`
}

// Build constructs a manifest from an analysis. It never fails; missing
// names and versions fall back to defaults, and sections appear only when
// the corresponding flag is set.
func Build(a Analysis) *Manifest {
	name := a.Name
	if name == "" {
		name = DefaultName
	}

	matches := a.ContentMatches
	if a.NeedContent && len(matches) == 0 {
		// Content script requested with no target: run on all pages.
		matches = []string{AllURLs}
	}

	// Split the raw permission list into API permissions and host patterns,
	// preserving order and dropping duplicates.
	var perms, hosts []string
	for _, p := range a.Permissions {
		if isHostPattern(p) {
			hosts = appendUnique(hosts, p)
		} else {
			perms = appendUnique(perms, p)
		}
	}
	for _, m := range matches {
		if isHostPattern(m) {
			hosts = appendUnique(hosts, m)
		}
	}

	m := &Manifest{
		ManifestVersion: 3,
		Name:            name,
		Version:         normalizeVersion(a.Version),
		Description:     a.Description,
	}

	if len(a.Icons) > 0 {
		m.Icons = a.Icons
	}

	if a.NeedPopup {
		popup := a.PopupFile
		if popup == "" {
			popup = "popup.html"
		}
		action := &Action{DefaultPopup: popup}
		if icon, ok := a.Icons["48"]; ok {
			action.DefaultIcon = icon
		}
		m.Action = action
	}

	if a.NeedBackground {
		worker := a.BackgroundFile
		if worker == "" {
			worker = "background.js"
		}
		m.Background = &Background{ServiceWorker: worker}
	}

	if a.NeedContent {
		js := a.ContentJS
		if len(js) == 0 {
			js = []string{"content.js"}
		}
		entry := ContentScript{Matches: matches, JS: js}
		if a.NeedCSS {
			css := a.ContentCSS
			if len(css) == 0 {
				css = []string{"styles.css"}
			}
			entry.CSS = css
		}
		m.ContentScripts = []ContentScript{entry}
	}

	if len(perms) > 0 {
		m.Permissions = perms
	}
	if len(hosts) > 0 {
		m.HostPermissions = hosts
	}

	return m
}

// Write serializes the manifest to manifest.json under outDir, creating the
// directory if absent, and returns the written path.
func Write(m *Manifest, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(outDir, FileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", FileName, err)
	}
	return path, nil
}

// Read loads a manifest written by Write.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// isHostPattern distinguishes URL-scope permission strings from API-level
// ones: the universal sentinel, anything with a scheme separator, and
// wildcard or http(s)-prefixed patterns are host patterns.
func isHostPattern(s string) bool {
	s = strings.TrimSpace(s)
	return s == AllURLs ||
		strings.Contains(s, "://") ||
		strings.HasPrefix(s, "*") ||
		strings.HasPrefix(s, "http")
}

func normalizeVersion(v string) string {
	if strings.TrimSpace(v) == "" {
		return DefaultVersion
	}
	return v
}

func appendUnique(list []string, s string) []string {
	for _, have := range list {
		if have == s {
			return list
		}
	}
	return append(list, s)
}
