package scaffold

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extforge/internal/classify"
)

type fakeRemote struct {
	files map[string]string
	err   error
	calls int
}

func (f *fakeRemote) GenerateFiles(ctx context.Context, req *classify.Requirements, description string) (map[string]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.files, nil
}

func contentOf(t *testing.T, files []File, name string) string {
	t.Helper()
	for _, f := range files {
		if f.Name == name {
			return f.Content
		}
	}
	t.Fatalf("file %s not in result", name)
	return ""
}

func TestRenderDatePopup(t *testing.T) {
	desc := "Create an extension that shows a popup with today's date."
	req := classify.Analyze(desc)
	files := Render(req, desc)

	result := &Result{Files: files}
	assert.Equal(t, []string{PopupHTML, PopupJS, StylesCSS}, result.FileNames())

	html := contentOf(t, files, PopupHTML)
	assert.Contains(t, html, `id="date-display"`)
	assert.NotContains(t, html, `id="time-display"`)
	assert.NotContains(t, html, `id="action-btn"`)

	js := contentOf(t, files, PopupJS)
	assert.Contains(t, js, "toLocaleDateString")
	assert.NotContains(t, js, "addEventListener('click'")
}

func TestRenderPhoneHighlighter(t *testing.T) {
	desc := "Make an extension that highlights all phone numbers on any website."
	req := classify.Analyze(desc)
	files := Render(req, desc)

	result := &Result{Files: files}
	assert.Equal(t, []string{ContentJS}, result.FileNames())

	js := contentOf(t, files, ContentJS)
	assert.Contains(t, js, `/\b\d{3}[-.]?\d{3}[-.]?\d{4}\b/g`)
	assert.Contains(t, js, "highlightPhoneNumbers();")
	assert.NotContains(t, js, "Generic content script")
}

func TestRenderSiteBlocker(t *testing.T) {
	desc := "Block Facebook and TikTok every time the browser opens."
	req := classify.Analyze(desc)
	require.False(t, req.NeedsPopup)
	require.True(t, req.NeedsBackground)

	files := Render(req, desc)
	result := &Result{Files: files}
	assert.Equal(t, []string{BackgroundJS}, result.FileNames())

	js := contentOf(t, files, BackgroundJS)
	assert.Contains(t, js, "const blockedSites = ['*://*.facebook.com/*', '*://*.tiktok.com/*'];")
	assert.NotContains(t, js, "youtube")
	assert.NotContains(t, js, "example.com")
}

func TestRenderPomodoro(t *testing.T) {
	desc := "Create a pomodoro timer that shows a notification every 25 minutes."
	req := classify.Analyze(desc)
	files := Render(req, desc)

	result := &Result{Files: files}
	assert.Equal(t, []string{PopupHTML, PopupJS, BackgroundJS, StylesCSS}, result.FileNames())

	html := contentOf(t, files, PopupHTML)
	assert.Contains(t, html, `id="timer-display"`)
	// "time" is a substring of "timer", so the clock section rides along.
	assert.Contains(t, html, `id="time-display"`)

	js := contentOf(t, files, PopupJS)
	assert.Contains(t, js, "let timeLeft = 25 * 60;")
	assert.Contains(t, js, "updateTime();")

	bg := contentOf(t, files, BackgroundJS)
	assert.Contains(t, bg, "chrome.alarms.create('timerAlarm'")
	assert.Contains(t, bg, "chrome.notifications.create")
	assert.NotContains(t, bg, "blockedSites")
}

func TestRenderEmailExtractor(t *testing.T) {
	desc := "Create an extension that extracts email addresses from the current page and displays them when I click a button in the popup."
	req := classify.Analyze(desc)
	files := Render(req, desc)

	html := contentOf(t, files, PopupHTML)
	assert.Contains(t, html, `id="extract-btn"`)
	// The email section brings its own button; the bare action button
	// must not be added alongside it.
	assert.NotContains(t, html, `id="action-btn"`)

	js := contentOf(t, files, PopupJS)
	assert.Contains(t, js, "{ action: 'getEmails' }")
	assert.NotContains(t, js, "{ action: 'execute' }")

	content := contentOf(t, files, ContentJS)
	assert.Contains(t, content, "function extractEmails()")
	assert.Contains(t, content, "request.action === 'getEmails'")
	assert.NotContains(t, content, "Generic content script")
}

func TestRenderBlueRecolor(t *testing.T) {
	desc := "Change the text color to blue when I click the button on any website."
	req := classify.Analyze(desc)
	files := Render(req, desc)

	content := contentOf(t, files, ContentJS)
	assert.Contains(t, content, "element.style.color = 'blue';")
	assert.NotContains(t, content, "Generic content script")

	js := contentOf(t, files, PopupJS)
	assert.Contains(t, js, "{ action: 'execute' }")

	html := contentOf(t, files, PopupHTML)
	assert.Contains(t, html, `id="action-btn"`)
}

func TestRenderGenericContentStub(t *testing.T) {
	desc := "Hide the sidebar element on every page."
	req := classify.Analyze(desc)
	require.True(t, req.NeedsContentScript)

	files := Render(req, desc)
	content := contentOf(t, files, ContentJS)
	assert.Contains(t, content, "Generic content script functionality")
	assert.Contains(t, content, "Content script executed successfully!")
}

func TestRenderPopupDefaultSection(t *testing.T) {
	desc := "Open a small popup panel."
	req := classify.Analyze(desc)
	files := Render(req, desc)

	html := contentOf(t, files, PopupHTML)
	assert.Contains(t, html, "Extension is active and ready!")

	js := contentOf(t, files, PopupJS)
	assert.NotContains(t, js, "addEventListener('click'")
}

func TestRenderLocalButtonWithoutContentScript(t *testing.T) {
	desc := "A popup with a button to cheer me up."
	req := classify.Analyze(desc)
	require.False(t, req.NeedsContentScript)

	files := Render(req, desc)
	js := contentOf(t, files, PopupJS)
	assert.Contains(t, js, "Button clicked!")
	assert.NotContains(t, js, "chrome.tabs.sendMessage")
}

func TestRenderURLTracker(t *testing.T) {
	desc := "Track every url I visit in the background."
	req := classify.Analyze(desc)
	files := Render(req, desc)

	result := &Result{Files: files}
	assert.Equal(t, []string{BackgroundJS, StylesCSS}, result.FileNames())

	bg := contentOf(t, files, BackgroundJS)
	assert.Contains(t, bg, "chrome.tabs.onUpdated.addListener")
	assert.Contains(t, bg, "visitedUrls")
}

func TestRenderOrderWithAllFlags(t *testing.T) {
	req := &classify.Requirements{
		NeedsPopup:         true,
		NeedsContentScript: true,
		NeedsBackground:    true,
		NeedsCSS:           true,
	}
	files := Render(req, "button timer block")

	result := &Result{Files: files}
	assert.Equal(t, AllFileNames(), result.FileNames())
}

func TestRenderDeterministic(t *testing.T) {
	desc := "Create a pomodoro timer that shows a notification every 25 minutes."
	req := classify.Analyze(desc)

	first := Render(req, desc)
	second := Render(req, desc)
	assert.Equal(t, first, second)
}

func TestGenerateAllWritesLocalFiles(t *testing.T) {
	desc := "Create a pomodoro timer that shows a notification every 25 minutes."
	req := classify.Analyze(desc)
	outDir := filepath.Join(t.TempDir(), "nested", "out")

	g := New(nil, nil)
	result, err := g.GenerateAll(context.Background(), req, desc, outDir)
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, result.Source)

	for _, f := range result.Files {
		data, err := os.ReadFile(filepath.Join(outDir, f.Name))
		require.NoError(t, err)
		assert.Equal(t, f.Content, string(data))
	}
}

func TestGenerateAllRemoteSuccess(t *testing.T) {
	remote := &fakeRemote{files: map[string]string{
		ContentJS: "// remote content script\n",
		PopupHTML: "<html>remote</html>",
	}}
	desc := "Highlight phone numbers on any website."
	req := classify.Analyze(desc)
	outDir := t.TempDir()

	g := New(remote, nil)
	result, err := g.GenerateAll(context.Background(), req, desc, outDir)
	require.NoError(t, err)

	assert.Equal(t, SourceRemote, result.Source)
	assert.Equal(t, 1, remote.calls)
	assert.Equal(t, []string{PopupHTML, ContentJS}, result.FileNames())

	data, err := os.ReadFile(filepath.Join(outDir, ContentJS))
	require.NoError(t, err)
	assert.Equal(t, "// remote content script\n", string(data))

	data, err = os.ReadFile(filepath.Join(outDir, PopupHTML))
	require.NoError(t, err)
	assert.Equal(t, "<html>remote</html>", string(data))
}

func TestGenerateAllRemoteFailureFallsBack(t *testing.T) {
	remote := &fakeRemote{err: errors.New("api unreachable")}
	desc := "Make an extension that highlights all phone numbers on any website."
	req := classify.Analyze(desc)
	outDir := t.TempDir()

	g := New(remote, nil)
	result, err := g.GenerateAll(context.Background(), req, desc, outDir)
	require.NoError(t, err)

	assert.Equal(t, SourceLocal, result.Source)
	assert.Equal(t, 1, remote.calls, "remote must be attempted exactly once")
	assert.Equal(t, []string{ContentJS}, result.FileNames())

	data, err := os.ReadFile(filepath.Join(outDir, ContentJS))
	require.NoError(t, err)
	assert.Contains(t, string(data), "highlightPhoneNumbers")
}

func TestGenerateAllRemoteInvalidResponseFallsBack(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{name: "unknown file name", files: map[string]string{"evil.js": "x"}},
		{name: "empty map", files: map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &fakeRemote{files: tt.files}
			desc := "Open a small popup panel."
			req := classify.Analyze(desc)

			g := New(remote, nil)
			result, err := g.GenerateAll(context.Background(), req, desc, t.TempDir())
			require.NoError(t, err)
			assert.Equal(t, SourceLocal, result.Source)
			assert.Equal(t, []string{PopupHTML, PopupJS, StylesCSS}, result.FileNames())
		})
	}
}

func TestValidateFileMap(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr bool
	}{
		{name: "nil", files: nil, wantErr: true},
		{name: "empty", files: map[string]string{}, wantErr: true},
		{name: "unknown key", files: map[string]string{"manifest.json": "{}"}, wantErr: true},
		{name: "subset", files: map[string]string{PopupHTML: "<html></html>"}, wantErr: false},
		{
			name: "full set",
			files: map[string]string{
				PopupHTML: "a", PopupJS: "b", ContentJS: "c", BackgroundJS: "d", StylesCSS: "e",
			},
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileMap(tt.files)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBlockedSitePatterns(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single site",
			text: "block facebook for me",
			want: []string{"*://*.facebook.com/*"},
		},
		{
			name: "all known sites",
			text: "block facebook, tiktok and youtube",
			want: []string{"*://*.facebook.com/*", "*://*.tiktok.com/*", "*://*.youtube.com/*"},
		},
		{
			name: "no recognized site",
			text: "block distracting websites",
			want: []string{"*://example.com/*"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, blockedSitePatterns(tt.text))
		})
	}
}

func TestJSStringArray(t *testing.T) {
	assert.Equal(t, "['*://example.com/*']", jsStringArray([]string{"*://example.com/*"}))
	assert.Equal(t, "['a', 'b']", jsStringArray([]string{"a", "b"}))
}
