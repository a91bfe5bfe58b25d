// internal/editor/profile.go
//
// Named option bundles.
//
// A profile is a function returning fresh Options, so callers may mutate the
// result freely.  Form definitions reference profiles by name
// (`profile: common`) and overlay their own settings on top.  Built-ins:
//
//	admin       – admin textarea styling (class vLargeTextField)
//	admin-html  – admin + the composite text/html mode
//	common      – full-featured HTML editor: ambiance theme, search and
//	              match highlighting, line numbers, wrapping, F11 full screen
//
// Applications register more during init().  Re-registering a name replaces
// the earlier entry.

package editor

import (
	"fmt"
	"slices"
	"strconv"
	"sync"
)

// Profile produces a fresh Options value.
type Profile func() Options

var (
	profileMu sync.RWMutex
	profiles  = map[string]Profile{}
)

// RegisterProfile adds or replaces a named profile.
func RegisterProfile(name string, p Profile) {
	profileMu.Lock()
	profiles[name] = p
	profileMu.Unlock()
}

// LookupProfile returns the Options of a profile.  An empty name yields zero
// Options.  Unknown names wrap ErrInvalidConfiguration.
func LookupProfile(name string) (Options, error) {
	if name == "" {
		return Options{}, nil
	}
	profileMu.RLock()
	p, ok := profiles[name]
	profileMu.RUnlock()
	if !ok {
		return Options{}, fmt.Errorf("%w: unknown profile %q", ErrInvalidConfiguration, name)
	}
	return p(), nil
}

// ProfileNames lists registered profiles in sorted order.
func ProfileNames() []string {
	profileMu.RLock()
	defer profileMu.RUnlock()
	out := make([]string, 0, len(profiles))
	for n := range profiles {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

func init() {
	RegisterProfile("admin", AdminOptions)
	RegisterProfile("admin-html", AdminHTMLOptions)
	RegisterProfile("common", func() Options { return CommonOptions(4) })
}

// AdminOptions styles the textarea like the admin site's large text field.
func AdminOptions() Options {
	return Options{Attrs: map[string]string{"class": "vLargeTextField"}}
}

// AdminHTMLOptions is AdminOptions editing HTML with embedded JS and CSS.
func AdminHTMLOptions() Options {
	o := AdminOptions()
	o.Mode = Mode{Name: "text/html"}
	return o
}

// CommonOptions is a full-featured HTML editor with the given indent unit.
func CommonOptions(indentUnit int) Options {
	return Options{
		Mode:      Mode{Name: "text/html"},
		Theme:     Theme{"ambiance"},
		Utilities: []string{"search", "searchcursor", "dialog", "overlay", "match-highlighter"},
		Configuration: Configuration{
			{Key: "lineNumbers", Value: "true"},
			{Key: "lineWrapping", Value: "true"},
			{Key: "indentUnit", Value: strconv.Itoa(indentUnit)},
			{Key: "onCursorActivity", Value: commonCursorActivity},
			{Key: "extraKeys", Value: commonExtraKeys},
		},
		ExtraJS:  commonJS,
		ExtraCSS: commonCSS,
	}
}

const commonCursorActivity = `function(editor) {
    editor.setLineClass(hlLine, null, null);
    hlLine = editor.setLineClass(editor.getCursor().line, null, "activeline");
    editor.matchHighlight("CodeMirror-matchhighlight");
}`

const commonExtraKeys = `{
    "F11": function(cm) { setFullScreen(cm, !isFullScreen(cm)); },
    "Esc": function(cm) { if (isFullScreen(cm)) setFullScreen(cm, false); }
}`

const commonJS = `function isFullScreen(cm) {
    return /CodeMirror-fullscreen/.test(cm.getWrapperElement().className);
}
function winHeight() {
    return window.innerHeight || (document.documentElement || document.body).clientHeight;
}
function setFullScreen(cm, full) {
    var wrap = cm.getWrapperElement(), scroll = cm.getScrollerElement();
    if (full) {
        wrap.className += " CodeMirror-fullscreen";
        scroll.style.height = winHeight() + "px";
        document.documentElement.style.overflow = "hidden";
    } else {
        wrap.className = wrap.className.replace(" CodeMirror-fullscreen", "");
        scroll.style.height = "";
        document.documentElement.style.overflow = "";
    }
    cm.refresh();
}
CodeMirror.connect(window, "resize", function() {
    var showing = document.body.getElementsByClassName("CodeMirror-fullscreen")[0];
    if (!showing) return;
    showing.CodeMirror.getScrollerElement().style.height = winHeight() + "px";
});
var hlLine = window.$$id$$.setLineClass(0, "activeline");`

const commonCSS = `textarea#$$id$$ ~ .CodeMirror .CodeMirror-selected {
    background-color: green;
    opacity: 0.3;
}
textarea#$$id$$ ~ .CodeMirror:not(.CodeMirror-fullscreen) .CodeMirror-scroll {
    height: auto !important;
    overflow-y: hidden;
    overflow-x: auto;
}
textarea#$$id$$ ~ .CodeMirror span.CodeMirror-matchhighlight { background: darkgreen; opacity: 0.3; }
textarea#$$id$$ ~ .CodeMirror-fullscreen {
    display: block;
    left: 0;
    position: absolute;
    top: 0;
    width: 100%;
    z-index: 9999;
}`
