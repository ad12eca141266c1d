package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("6")
	colorSelect = lipgloss.Color("4")
	colorWhite  = lipgloss.Color("15")
	colorDim    = lipgloss.Color("8")
	colorOK     = lipgloss.Color("2")
	colorWarn   = lipgloss.Color("3")
	colorError  = lipgloss.Color("1")
	colorTitle  = lipgloss.Color("11")
	colorPend   = lipgloss.Color("5")
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
	formPanelStyle = panelStyle.BorderForeground(colorWarn)
	statusBarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorWarn).
			Padding(1, 3).
			Align(lipgloss.Center)

	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	highlightStyle = lipgloss.NewStyle().Bold(true).Background(colorSelect).Foreground(colorWhite)
	dimStyle       = lipgloss.NewStyle().Foreground(colorDim)
	doneStyle      = dimStyle.Strikethrough(true)
	activeField    = lipgloss.NewStyle().Bold(true).Foreground(colorTitle)
	okStyle        = lipgloss.NewStyle().Foreground(colorOK)
	warnStyle      = lipgloss.NewStyle().Foreground(colorWarn)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	pendingStyle   = lipgloss.NewStyle().Foreground(colorPend)
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorTitle)
)

const highlightSymbol = ">> "

// renderOptions draws a menu-style list with the cursor row highlighted.
func renderOptions(l NavList) string {
	var rows []string
	sel, ok := l.Selected()
	for i, opt := range l.Options {
		if ok && i == sel {
			rows = append(rows, highlightStyle.Render(highlightSymbol+opt))
			continue
		}
		rows = append(rows, "   "+opt)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// framed wraps body in a titled panel sized to width.
func framed(style lipgloss.Style, title, body string, width int) string {
	if width > 0 {
		style = style.Width(max(width-style.GetHorizontalBorderSize(), 10))
	}
	return style.Render(headerStyle.Render(title) + "\n\n" + body)
}
