package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/ragchat/widget/internal/models"
)

const sidebarWidth = 32

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	faintStyle = lipgloss.NewStyle().Faint(true)

	userLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	botLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	chipStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8"))

	buttonStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	disabledButtonStyle = lipgloss.NewStyle().Faint(true)

	sidebarStyle = lipgloss.NewStyle().
			Width(sidebarWidth).
			Padding(0, 1).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("8"))

	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("1")).
			Padding(0, 1)

	statusStyles = map[models.UploadStatus]lipgloss.Style{
		models.UploadStatusUploading: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		models.UploadStatusUploaded:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		models.UploadStatusError:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		models.UploadStatusTimeout:   lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	}
)
