// Package display provides output formatting and display functions for prefqctl.
//
// This package handles all user-facing output: submitted batches, drained
// preferences and generated keys, each in table or JSON form. Tables use
// text/tabwriter with lipgloss highlighting of the winning side; JSON goes
// through the same goccy/go-json codec as the wire protocol.
//
// All display functions respect the global --output setting and write to an
// io.Writer so commands print to stdout and tests to a buffer.
package display

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/concave-dev/prefq/cmd/prefqctl/client"
	"github.com/concave-dev/prefq/cmd/prefqctl/config"
	"github.com/goccy/go-json"
)

var (
	leftStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#42E7FF")).Bold(true)
	rightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE763")).Bold(true)
)

// SubmittedQuery is one row of the submit output.
type SubmittedQuery struct {
	QueryID string `json:"query_id"`
	Left    string `json:"left"`
	Right   string `json:"right"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// writeJSON prints v indented.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// side renders a preference as the name of the preferred side.
func side(leftPreferred bool) string {
	if leftPreferred {
		return leftStyle.Render("LEFT")
	}
	return rightStyle.Render("RIGHT")
}

// DisplaySubmitted prints the outcome of every pair of a batch in pair order.
func DisplaySubmitted(w io.Writer, rows []SubmittedQuery) error {
	if config.Global.Output == "json" {
		if rows == nil {
			rows = []SubmittedQuery{}
		}
		return writeJSON(w, rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "QUERY ID\tLEFT\tRIGHT\tSTATUS")
	for _, r := range rows {
		status := r.Status
		if r.Error != "" && config.Global.Verbose {
			status += " (" + r.Error + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.QueryID, r.Left, r.Right, status)
	}
	return tw.Flush()
}

// DisplayPreferences prints answers in the order given.
func DisplayPreferences(w io.Writer, prefs []client.Preference) error {
	if config.Global.Output == "json" {
		if prefs == nil {
			prefs = []client.Preference{}
		}
		return writeJSON(w, prefs)
	}

	if len(prefs) == 0 {
		_, err := fmt.Fprintln(w, "No feedback available")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tQUERY ID\tPREFERRED")
	for i, p := range prefs {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, p.QueryID, side(p.LeftPreferred))
	}
	return tw.Flush()
}

// DisplayFeedback prints a raw drain, sorted by query id since the server
// gives no order.
func DisplayFeedback(w io.Writer, feedback map[string]bool) error {
	ids := make([]string, 0, len(feedback))
	for id := range feedback {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	prefs := make([]client.Preference, 0, len(ids))
	for _, id := range ids {
		prefs = append(prefs, client.Preference{QueryID: id, LeftPreferred: feedback[id]})
	}
	return DisplayPreferences(w, prefs)
}

// DisplayKeyPair prints where keygen wrote the key files.
func DisplayKeyPair(w io.Writer, publicPath, privatePath string) error {
	if config.Global.Output == "json" {
		return writeJSON(w, map[string]string{"public_key": publicPath, "private_key": privatePath})
	}

	fmt.Fprintf(w, "Key pair generated:\n")
	fmt.Fprintf(w, "  Public:  %s\n", publicPath)
	_, err := fmt.Fprintf(w, "  Private: %s\n", privatePath)
	return err
}
