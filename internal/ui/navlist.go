package ui

// NavList is a cursor over a fixed set of options. The cursor is -1 only
// when there are no options; movement wraps at both ends.
type NavList struct {
	Options  []string
	selected int
}

func NewNavList(options ...string) NavList {
	l := NavList{Options: options, selected: -1}
	if len(options) > 0 {
		l.selected = 0
	}
	return l
}

func (l *NavList) Next() {
	l.selected = nextIndex(l.selected, len(l.Options))
}

func (l *NavList) Previous() {
	l.selected = prevIndex(l.selected, len(l.Options))
}

// Selected reports the cursor position, false when the list is empty.
func (l NavList) Selected() (int, bool) {
	if l.selected < 0 || l.selected >= len(l.Options) {
		return 0, false
	}
	return l.selected, true
}

func (l NavList) Current() string {
	i, ok := l.Selected()
	if !ok {
		return ""
	}
	return l.Options[i]
}

// nextIndex and prevIndex are shared by every list-like screen so the
// task list wraps exactly the way menus do. -1 means nothing selected.
func nextIndex(cur, n int) int {
	if n <= 0 {
		return -1
	}
	if cur < 0 {
		return 0
	}
	return wrapIndex(cur+1, n)
}

func prevIndex(cur, n int) int {
	if n <= 0 {
		return -1
	}
	if cur < 0 {
		return 0
	}
	return wrapIndex(cur-1, n)
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

// clampSelection keeps cur inside [0, n) and yields -1 for an empty list.
func clampSelection(cur, n int) int {
	if n <= 0 {
		return -1
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
