package wizard

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/resumescan/internal/tui/theme"
)

// FileItem represents a file or directory in the file picker.
type FileItem struct {
	name  string // Name of file/directory
	path  string // Full path
	isDir bool   // True if directory
}

// Render returns the display line for the item.
func (f *FileItem) Render(width int, checked bool) string {
	mark := "[ ]"
	if f.isDir {
		mark = " ▸ "
	} else if checked {
		mark = "[x]"
	}

	display := mark + " " + f.name
	if f.isDir && f.name != ".." {
		display += "/"
	}

	// Truncate if too long
	if width > 8 && lipgloss.Width(display) > width-2 {
		runes := []rune(display)
		if len(runes) > width-5 {
			display = string(runes[:width-5]) + "..."
		}
	}
	return display
}

// FilePickerStep is a multi-select file browser.
type FilePickerStep struct {
	currentPath string      // Current directory path
	items       []*FileItem // All items in current directory
	selectedIdx int         // Index of the cursor
	offset      int         // First visible item
	checked     []string    // Chosen file paths in selection order
	showHidden  bool
	err         string
	width       int // Available width
	height      int // Available height
}

// NewFilePickerStep creates a file picker rooted at dir.
func NewFilePickerStep(dir string, showHidden bool) *FilePickerStep {
	if dir == "" {
		if cwd, err := os.Getwd(); err == nil {
			dir = cwd
		} else {
			dir = "."
		}
	}

	fp := &FilePickerStep{
		showHidden: showHidden,
		width:      60,
		height:     10,
	}
	if err := fp.loadDirectory(dir); err != nil {
		fp.err = err.Error()
	}
	return fp
}

// loadDirectory loads files and directories from the given path.
func (f *FilePickerStep) loadDirectory(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	f.items = f.items[:0]

	// Add parent directory entry if not at root
	if absPath != filepath.Dir(absPath) {
		f.items = append(f.items, &FileItem{
			name:  "..",
			path:  filepath.Dir(absPath),
			isDir: true,
		})
	}

	var dirs, files []*FileItem
	for _, entry := range entries {
		if !f.showHidden && strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		item := &FileItem{
			name:  entry.Name(),
			path:  filepath.Join(absPath, entry.Name()),
			isDir: entry.IsDir(),
		}
		if item.isDir {
			dirs = append(dirs, item)
		} else {
			files = append(files, item)
		}
	}

	byName := func(items []*FileItem) {
		sort.Slice(items, func(i, j int) bool {
			return strings.ToLower(items[i].name) < strings.ToLower(items[j].name)
		})
	}
	byName(dirs)
	byName(files)

	// Directories first, then files
	f.items = append(f.items, dirs...)
	f.items = append(f.items, files...)

	f.currentPath = absPath
	f.selectedIdx = 0
	f.offset = 0
	f.err = ""
	return nil
}

// SetSize updates the dimensions for the file picker.
func (f *FilePickerStep) SetSize(width, height int) {
	f.width = width
	f.height = height
}

// listHeight is the number of item rows that fit.
func (f *FilePickerStep) listHeight() int {
	// path, blank, selection count, blank, hint bar
	h := f.height - 5
	if h < 3 {
		h = 3
	}
	return h
}

// Update handles messages for the file picker step.
func (f *FilePickerStep) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if f.selectedIdx > 0 {
			f.selectedIdx--
		}
	case "down", "j":
		if f.selectedIdx < len(f.items)-1 {
			f.selectedIdx++
		}
	case "space":
		if item := f.current(); item != nil && !item.isDir {
			f.toggle(item.path)
			if f.selectedIdx < len(f.items)-1 {
				f.selectedIdx++
			}
		}
	case "a":
		f.toggleAll()
	case ".":
		f.showHidden = !f.showHidden
		f.reload()
		show := f.showHidden
		return func() tea.Msg { return HiddenToggledMsg{Show: show} }
	case "backspace":
		if parent := filepath.Dir(f.currentPath); parent != f.currentPath {
			f.navigate(parent)
		}
	case "enter":
		item := f.current()
		if item == nil {
			return nil
		}
		if item.isDir {
			f.navigate(item.path)
			return nil
		}
		// A lone file under the cursor is submitted directly.
		if len(f.checked) == 0 {
			return f.submit([]string{item.path})
		}
		return f.submit(f.Selected())
	case "ctrl+d":
		return f.submit(f.Selected())
	}

	f.keepCursorVisible()
	return nil
}

func (f *FilePickerStep) submit(paths []string) tea.Cmd {
	dir := f.currentPath
	return func() tea.Msg {
		return FilesSubmittedMsg{Paths: paths, Dir: dir}
	}
}

func (f *FilePickerStep) navigate(path string) {
	if err := f.loadDirectory(path); err != nil {
		f.err = err.Error()
	}
}

func (f *FilePickerStep) reload() {
	idx := f.selectedIdx
	f.navigate(f.currentPath)
	if idx < len(f.items) {
		f.selectedIdx = idx
	}
}

func (f *FilePickerStep) current() *FileItem {
	if f.selectedIdx >= 0 && f.selectedIdx < len(f.items) {
		return f.items[f.selectedIdx]
	}
	return nil
}

func (f *FilePickerStep) toggle(path string) {
	if i := slices.Index(f.checked, path); i >= 0 {
		f.checked = slices.Delete(f.checked, i, i+1)
		return
	}
	f.checked = append(f.checked, path)
}

// toggleAll checks every file in the current directory, or clears them when
// all are already checked.
func (f *FilePickerStep) toggleAll() {
	var files []string
	allChecked := true
	for _, item := range f.items {
		if item.isDir {
			continue
		}
		files = append(files, item.path)
		if !f.isChecked(item.path) {
			allChecked = false
		}
	}
	for _, p := range files {
		if allChecked == f.isChecked(p) {
			f.toggle(p)
		}
	}
}

func (f *FilePickerStep) isChecked(path string) bool {
	return slices.Contains(f.checked, path)
}

func (f *FilePickerStep) keepCursorVisible() {
	h := f.listHeight()
	if f.selectedIdx < f.offset {
		f.offset = f.selectedIdx
	}
	if f.selectedIdx >= f.offset+h {
		f.offset = f.selectedIdx - h + 1
	}
}

// View renders the file picker step.
func (f *FilePickerStep) View() string {
	s := theme.Current().S()
	var b strings.Builder

	b.WriteString(s.Muted.Render(f.currentPath))
	b.WriteString("\n\n")

	if len(f.items) == 0 {
		b.WriteString(s.Muted.Italic(true).Render("Directory is empty"))
		b.WriteString("\n")
	}

	end := min(f.offset+f.listHeight(), len(f.items))
	for i := f.offset; i < end; i++ {
		item := f.items[i]
		line := item.Render(f.width, f.isChecked(item.path))
		switch {
		case i == f.selectedIdx:
			line = s.ListSelected.Render(line)
		case f.isChecked(item.path):
			line = s.ListChecked.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if f.err != "" {
		b.WriteString(s.Error.Render("✗ " + f.err))
	} else {
		b.WriteString(s.Base.Render(fmt.Sprintf("%d selected", len(f.checked))))
	}
	b.WriteString("\n")

	b.WriteString(renderHintBar(
		"↑↓", "navigate",
		"space", "toggle",
		"a", "all",
		"enter", "open/upload",
		"ctrl+d", "upload selected",
		"backspace", "up",
	))
	return b.String()
}

// Selected returns the checked paths in the order they were chosen.
func (f *FilePickerStep) Selected() []string {
	return slices.Clone(f.checked)
}

// CurrentPath returns the directory being shown.
func (f *FilePickerStep) CurrentPath() string {
	return f.currentPath
}
