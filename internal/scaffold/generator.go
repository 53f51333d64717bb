// Package scaffold assembles the source files of a generated extension.
//
// Each file is stitched together from fixed fragments chosen by keyword
// checks against the lowercased description, then written to the output
// directory in a fixed order. A remote generator can be attached to
// produce the file set instead; any remote failure falls back to the
// local fragments, so generation as a whole never fails for remote
// reasons.
package scaffold

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"extforge/internal/classify"
)

// Names of the files this package can emit.
const (
	PopupHTML    = "popup.html"
	PopupJS      = "popup.js"
	ContentJS    = "content.js"
	BackgroundJS = "background.js"
	StylesCSS    = "styles.css"
)

// fileOrder is the fixed emission order, for writes and for remote results.
var fileOrder = []string{PopupHTML, PopupJS, ContentJS, BackgroundJS, StylesCSS}

// Source identifies which branch produced a file set.
type Source string

const (
	// SourceLocal means the files came from the built-in fragments.
	SourceLocal Source = "local"
	// SourceRemote means the files came from a remote generator.
	SourceRemote Source = "remote"
)

// File is a single generated artifact.
type File struct {
	Name    string
	Content string
}

// Result reports one generation run.
type Result struct {
	Files  []File
	Source Source
}

// FileNames returns the names of the generated files in emission order.
func (r *Result) FileNames() []string {
	names := make([]string, len(r.Files))
	for i, f := range r.Files {
		names[i] = f.Name
	}
	return names
}

// RemoteGenerator produces a filename to content mapping for the given
// requirements. Returned maps must satisfy ValidateFileMap; the generator
// re-checks and treats violations as a failed attempt.
type RemoteGenerator interface {
	GenerateFiles(ctx context.Context, req *classify.Requirements, description string) (map[string]string, error)
}

// Generator writes extension source files for analyzed requirements.
type Generator struct {
	remote RemoteGenerator
	logger *zap.Logger
}

// New returns a Generator. A nil remote disables the remote branch so
// every run uses the local fragments.
func New(remote RemoteGenerator, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{remote: remote, logger: logger}
}

// GenerateAll produces the file set for req and writes it under outDir,
// creating the directory if needed. Files are written sequentially in
// emission order. The remote branch is attempted at most once; on any
// error or invalid response the local fragments are used instead.
func (g *Generator) GenerateAll(ctx context.Context, req *classify.Requirements, description, outDir string) (*Result, error) {
	result := g.produce(ctx, req, description)
	if err := g.writeFiles(outDir, result.Files); err != nil {
		return nil, err
	}
	return result, nil
}

func (g *Generator) produce(ctx context.Context, req *classify.Requirements, description string) *Result {
	if g.remote != nil {
		files, err := g.remote.GenerateFiles(ctx, req, description)
		if err == nil {
			err = ValidateFileMap(files)
		}
		if err == nil {
			g.logger.Info("remote generation succeeded", zap.Int("files", len(files)))
			return &Result{Files: orderFileMap(files), Source: SourceRemote}
		}
		g.logger.Warn("remote generation failed, falling back to local templates", zap.Error(err))
	}
	return &Result{Files: Render(req, description), Source: SourceLocal}
}

func (g *Generator) writeFiles(outDir string, files []File) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}
	for _, f := range files {
		path := filepath.Join(outDir, f.Name)
		if err := os.WriteFile(path, []byte(f.Content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
		g.logger.Debug("wrote file", zap.String("path", path), zap.Int("bytes", len(f.Content)))
	}
	return nil
}

// Render assembles the local file set for req without touching disk.
// Which files appear is driven entirely by the requirement flags; the
// contents re-scan the description for finer-grained keywords.
func Render(req *classify.Requirements, description string) []File {
	text := strings.ToLower(description)

	var files []File
	if req.NeedsPopup {
		files = append(files,
			File{Name: PopupHTML, Content: renderPopupHTML(text)},
			File{Name: PopupJS, Content: renderPopupJS(text, req.NeedsContentScript)},
		)
	}
	if req.NeedsContentScript {
		files = append(files, File{Name: ContentJS, Content: renderContentJS(text)})
	}
	if req.NeedsBackground {
		files = append(files, File{Name: BackgroundJS, Content: renderBackgroundJS(text)})
	}
	if req.NeedsCSS {
		files = append(files, File{Name: StylesCSS, Content: stylesCSS})
	}
	return files
}

// ValidateFileMap checks a remote result against the known file names.
// An empty map or any unknown key is an error; partial acceptance is
// never attempted.
func ValidateFileMap(files map[string]string) error {
	if len(files) == 0 {
		return fmt.Errorf("remote generator returned no files")
	}
	for name := range files {
		if !knownFileName(name) {
			return fmt.Errorf("remote generator returned unknown file %q", name)
		}
	}
	return nil
}

// AllFileNames returns every file name this package can emit, in
// emission order.
func AllFileNames() []string {
	names := make([]string, len(fileOrder))
	copy(names, fileOrder)
	return names
}

func knownFileName(name string) bool {
	for _, n := range fileOrder {
		if n == name {
			return true
		}
	}
	return false
}

// orderFileMap flattens a validated remote map into emission order.
func orderFileMap(files map[string]string) []File {
	ordered := make([]File, 0, len(files))
	for _, name := range fileOrder {
		if content, ok := files[name]; ok {
			ordered = append(ordered, File{Name: name, Content: content})
		}
	}
	return ordered
}

func renderPopupHTML(text string) string {
	hasButton := strings.Contains(text, "button") || strings.Contains(text, "click")
	hasInput := strings.Contains(text, "input") || strings.Contains(text, "form")
	hasTimer := strings.Contains(text, "timer") || strings.Contains(text, "pomodoro")
	showDate := strings.Contains(text, "date")
	showTime := strings.Contains(text, "time")
	extractEmails := strings.Contains(text, "extract") && strings.Contains(text, "email")

	var b strings.Builder
	b.WriteString(popupHTMLHeader)
	if showDate {
		b.WriteString(popupDateSection)
	}
	if showTime {
		b.WriteString(popupTimeSection)
	}
	if hasTimer {
		b.WriteString(popupTimerSection)
	}
	if hasInput {
		b.WriteString(popupInputSection)
	}
	if extractEmails {
		b.WriteString(popupEmailSection)
	}
	// The bare action button only appears when no specialized section
	// already provides one.
	if hasButton && !hasInput && !hasTimer && !extractEmails {
		b.WriteString(popupActionSection)
	}
	if !(showDate || showTime || hasTimer || hasInput || hasButton || extractEmails) {
		b.WriteString(popupDefaultSection)
	}
	b.WriteString(popupHTMLFooter)
	return b.String()
}

func renderPopupJS(text string, needsContent bool) string {
	hasButton := strings.Contains(text, "button") || strings.Contains(text, "click")
	hasTimer := strings.Contains(text, "timer") || strings.Contains(text, "pomodoro")
	showDate := strings.Contains(text, "date")
	showTime := strings.Contains(text, "time")
	extractEmails := strings.Contains(text, "extract") && strings.Contains(text, "email")

	var b strings.Builder
	b.WriteString(popupJSHeader)
	if showDate {
		b.WriteString(popupJSDate)
	}
	if showTime {
		b.WriteString(popupJSTime)
	}
	if hasTimer {
		b.WriteString(popupJSTimer)
	}
	if extractEmails {
		b.WriteString(popupJSEmail)
	}
	if hasButton && needsContent && !extractEmails {
		b.WriteString(popupJSContentButton)
	} else if hasButton && !needsContent {
		b.WriteString(popupJSLocalButton)
	}
	b.WriteString(popupJSFooter)
	return b.String()
}

func renderContentJS(text string) string {
	highlight := strings.Contains(text, "highlight")
	phone := strings.Contains(text, "phone")
	email := strings.Contains(text, "email")
	changeColor := strings.Contains(text, "color") || strings.Contains(text, "blue")
	extract := strings.Contains(text, "extract")

	var b strings.Builder
	b.WriteString(contentJSHeader)
	if highlight && phone {
		b.WriteString(contentJSHighlightPhones)
	}
	if extract && email {
		b.WriteString(contentJSExtractEmails)
	}
	if changeColor {
		b.WriteString(contentJSRecolor)
	}
	if !(highlight || extract || changeColor) {
		b.WriteString(contentJSGenericStub)
	}
	return b.String()
}

func renderBackgroundJS(text string) string {
	block := strings.Contains(text, "block")
	timer := strings.Contains(text, "timer") || strings.Contains(text, "alarm")
	monitor := strings.Contains(text, "monitor") || strings.Contains(text, "track")

	var b strings.Builder
	b.WriteString(backgroundJSHeader)
	if block {
		data := struct{ Sites string }{Sites: jsStringArray(blockedSitePatterns(text))}
		if err := backgroundBlockTpl.Execute(&b, data); err != nil {
			// The template is static and the data is a plain string;
			// execution cannot fail at runtime.
			panic(fmt.Sprintf("scaffold: background block template: %v", err))
		}
	}
	if timer {
		b.WriteString(backgroundJSAlarm)
	}
	if monitor {
		b.WriteString(backgroundJSMonitor)
	}
	if !(block || timer || monitor) {
		b.WriteString(backgroundJSDefault)
	}
	return b.String()
}

// blockedSitePatterns maps site names found in the description to match
// patterns. Unrecognized sites get a placeholder the user must edit.
func blockedSitePatterns(text string) []string {
	known := []struct{ name, pattern string }{
		{"facebook", "*://*.facebook.com/*"},
		{"tiktok", "*://*.tiktok.com/*"},
		{"youtube", "*://*.youtube.com/*"},
	}

	var sites []string
	for _, s := range known {
		if strings.Contains(text, s.name) {
			sites = append(sites, s.pattern)
		}
	}
	if len(sites) == 0 {
		sites = []string{"*://example.com/*"}
	}
	return sites
}

// jsStringArray renders items as a single-quoted JavaScript array literal.
func jsStringArray(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
