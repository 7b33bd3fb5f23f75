package tui

import (
	"github.com/rgehrsitz/opioid-eda/internal/domain"
)

// Message types for the Bubble Tea update cycle

// NavigateMsg switches to the page at Index
type NavigateMsg struct {
	Index int
}

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}

// ReportLoadedMsg delivers the assembled report
type ReportLoadedMsg struct {
	Report *domain.Report
}
