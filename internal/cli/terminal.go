package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bastiangx/wordcraft/pkg/suggest"
	"github.com/bastiangx/wordcraft/pkg/wordtools"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	wordStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	noteStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
	rewriteStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
)

func renderResponse(w io.Writer, resp suggest.Response, showNotes bool) {
	if len(resp.Suggestions) == 0 {
		fmt.Fprintln(w, noteStyle.Render(resp.Explanation))
		return
	}
	header := fmt.Sprintf("%d suggestions", len(resp.Suggestions))
	if resp.DetectedBlank {
		header += " for the blank"
	}
	fmt.Fprintln(w, header+":")
	for i, c := range resp.Suggestions {
		fmt.Fprintf(w, "%2d. %s %s %s\n", i+1, pad(wordStyle.Render(c.Word), c.Word, 18), c.POS, formatScore(c.Score, c.LearnedScore))
		if showNotes && c.Note != "" {
			fmt.Fprintf(w, "    %s\n", noteStyle.Render(c.Note))
		}
	}
	for i, rw := range resp.Rewrites {
		label := "rewrite"
		if i > 0 {
			label = fmt.Sprintf("variant %d", i)
		}
		fmt.Fprintf(w, "%s: %s\n", label, rewriteStyle.Render(rw))
	}
	if showNotes && resp.Explanation != "" {
		fmt.Fprintln(w, noteStyle.Render(resp.Explanation))
	}
}

func renderWords(w io.Writer, res wordtools.Result, showNotes bool) {
	if len(res.Candidates) == 0 {
		note := res.Note
		if note == "" {
			note = "No results."
		}
		fmt.Fprintln(w, noteStyle.Render(note))
		return
	}
	for i, c := range res.Candidates {
		var flags []string
		if c.Rhyme {
			flags = append(flags, "rhyme")
		}
		if c.RelationMatch {
			flags = append(flags, "meaning")
		}
		line := fmt.Sprintf("%2d. %s %s %s", i+1, pad(wordStyle.Render(c.Word), c.Word, 18), c.POS, formatScore(c.Score, c.LearnedScore))
		if len(flags) > 0 {
			line += " [" + strings.Join(flags, "+") + "]"
		}
		fmt.Fprintln(w, line)
		if showNotes && c.Reason != "" {
			fmt.Fprintf(w, "    %s\n", noteStyle.Render(c.Reason))
		}
	}
	if showNotes && res.Note != "" {
		fmt.Fprintln(w, noteStyle.Render(res.Note))
	}
}

func formatScore(score float64, learned *float64) string {
	if learned == nil {
		return fmt.Sprintf("(%.3f)", score)
	}
	return fmt.Sprintf("(%.3f, learned %.3f)", score, *learned)
}

// pad right-pads a styled word to width using the plain word's length.
func pad(styled, plain string, width int) string {
	if n := width - len([]rune(plain)); n > 0 {
		return styled + strings.Repeat(" ", n)
	}
	return styled
}
