package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorError     = lipgloss.Color("196")
	colorShipment  = lipgloss.Color("39")
	colorTruck     = lipgloss.Color("208")
)

// SelectedItem style for the currently highlighted row.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// NormalItem style for unselected rows.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// SendingItem style for optimistic placeholders awaiting the server.
var SendingItem = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Italic(true).
	Padding(0, 1)

// NewItem marks the freshly published post.
var NewItem = lipgloss.NewStyle().
	Foreground(colorSuccess).
	Bold(true)

// TypeBadge style for the content-type badge of a feed row.
var TypeBadge = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Background(lipgloss.Color("236")).
	Padding(0, 1).
	MarginRight(1)

// MetaItem style for author, age and counters.
var MetaItem = lipgloss.NewStyle().
	Foreground(colorMuted)

// LikedMark style for the viewer's own like.
var LikedMark = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// SheetHeader style for the comment sheet title.
var SheetHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Padding(0, 1)

// ReplyIndent style for replies under a comment.
var ReplyIndent = lipgloss.NewStyle().
	PaddingLeft(4)

// Composer style for the comment input bar.
var Composer = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("240")).
	Padding(0, 1)

// ComposerHint style for the reply target above the input.
var ComposerHint = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// PublishBar style for the publishing banner.
var PublishBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorError).
	Bold(true).
	Padding(0, 1)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// Toast styles by severity.
var (
	ToastInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Padding(0, 1)
	ToastSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("16")).Background(colorSuccess).Padding(0, 1)
	ToastError   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(colorError).Padding(0, 1)
)

// Modal style for the confirmation dialog.
var Modal = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorHighlight).
	Padding(1, 2)

// ModalTitle style for the dialog title.
var ModalTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
