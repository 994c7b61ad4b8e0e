package keymap

import (
	"fmt"
	"strings"
)

var helpSections = []struct {
	Title   string
	Context Context
}{
	{"VIEWS", ContextMain},
	{"REPORT / USER DETAIL", ContextModal},
	{"CREATE CAMPAIGN WIZARD", ContextWizard},
	{"SEARCH", ContextSearch},
	{"GLOBAL", ContextGlobal},
}

// GenerateHelp renders the help modal text from registered bindings.
// Keys bound to the same command in a section are joined with " / ".
func (r *Registry) GenerateHelp() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString("\nSENTINEL DASHBOARD - Key Bindings\n")

	for _, sec := range helpSections {
		bindings := r.bindings[sec.Context]
		if len(bindings) == 0 {
			continue
		}
		sb.WriteString("\n" + sec.Title + ":\n")

		var order []Command
		keys := make(map[Command][]string)
		desc := make(map[Command]string)
		for _, b := range bindings {
			if _, seen := keys[b.Command]; !seen {
				order = append(order, b.Command)
				desc[b.Command] = b.Description
			}
			keys[b.Command] = append(keys[b.Command], b.Key)
		}
		for _, cmd := range order {
			sb.WriteString(fmt.Sprintf("  %-20s %s\n", strings.Join(keys[cmd], " / "), desc[cmd]))
		}
	}

	sb.WriteString("\nPress ? to close help\n")
	return sb.String()
}

// FooterHints returns short "key desc" hints for the status bar
func (r *Registry) FooterHints(ctx Context, limit int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[Command]bool)
	var hints []string
	for _, b := range r.bindings[ctx] {
		if seen[b.Command] {
			continue
		}
		seen[b.Command] = true
		hints = append(hints, b.Key+" "+strings.ToLower(b.Description))
		if limit > 0 && len(hints) == limit {
			break
		}
	}
	return hints
}
