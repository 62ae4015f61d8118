// Package formatter renders rewrite issues for terminals, with the source
// lines they point at.
package formatter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"

	"github.com/gnolang/argsinto/internal"
	tt "github.com/gnolang/argsinto/internal/types"
)

const tabWidth = 8

var (
	ruleStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	gutterStyle  = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	hintStyle    = color.New(color.FgGreen, color.Bold)

	severityStyles = map[tt.Severity]*color.Color{
		tt.SeverityError:   color.New(color.FgRed, color.Bold),
		tt.SeverityWarning: color.New(color.FgHiYellow, color.Bold),
		tt.SeverityInfo:    messageStyle,
	}
)

var issueTmpl = template.Must(template.New("issue").Parse(issueTemplate))

// GenerateFormattedIssue formats issues of the file whose lines are in
// snippet into a human-readable string.
func GenerateFormattedIssue(issues []tt.Issue, snippet *internal.SourceCode) string {
	var builder strings.Builder
	for _, issue := range issues {
		var buf bytes.Buffer
		if err := issueTmpl.Execute(&buf, newIssueView(issue, snippet.Lines)); err != nil {
			fmt.Fprintf(&builder, "Error formatting issue: %v\n", err)
			continue
		}
		builder.Write(buf.Bytes())
	}
	return builder.String()
}

// issueView holds the lines of a rendered issue, colors included. Empty
// optional lines are skipped by the template.
type issueView struct {
	Title    string
	Location string
	Gutter   string
	Lines    []string
	// Underline marks the reported columns below Lines.
	Underline  string
	Message    string
	Suggestion string
	Note       string
}

func newIssueView(issue tt.Issue, lines []string) issueView {
	start, end := issue.Start.Line, issue.End.Line
	width := len(strconv.Itoa(end))
	margin := strings.Repeat(" ", width+1)

	v := issueView{
		Title:      severityLabel(issue.Severity) + ruleStyle.Sprint(issue.Rule),
		Location:   gutterStyle.Sprint(strings.Repeat(" ", width)+"--> ") + fileStyle.Sprintf("%s:%d:%d", issue.Filename, start, issue.Start.Column),
		Gutter:     gutterStyle.Sprint(margin + "|"),
		Suggestion: hint(margin, "help: ", issue.Suggestion),
		Note:       hint(margin, "note: ", issue.Note),
	}
	if !inRange(start, end, lines) {
		v.Message = gutterStyle.Sprint(margin+"| ") + messageStyle.Sprint(issue.Message)
		return v
	}

	indent := commonIndent(lines[start-1 : end])
	for i := start; i <= end; i++ {
		v.Lines = append(v.Lines, gutterStyle.Sprintf("%*d | ", width, i)+strings.TrimPrefix(lines[i-1], indent))
	}

	// columns are 1-based and the end column is exclusive
	shift := visualColumn(indent, len(indent)+1)
	from := max(visualColumn(lines[start-1], issue.Start.Column)-shift, 0)
	to := visualColumn(lines[end-1], issue.End.Column) - shift
	v.Underline = gutterStyle.Sprint(margin+"| ") + strings.Repeat(" ", from) + messageStyle.Sprint(strings.Repeat("~", max(to-from, 1)))
	v.Message = gutterStyle.Sprint(margin+"= ") + messageStyle.Sprint(issue.Message)
	return v
}

func severityLabel(s tt.Severity) string {
	style, ok := severityStyles[s]
	if !ok {
		return ""
	}
	return style.Sprint(strings.ToLower(s.String()) + ": ")
}

// hint renders a "= label: text" line, continuation lines aligned under
// the text.
func hint(margin, label, text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\n", "\n"+margin+strings.Repeat(" ", len(label)+2))
	return gutterStyle.Sprint(margin+"= ") + hintStyle.Sprint(label) + text
}

func inRange(start, end int, lines []string) bool {
	return start > 0 && start <= end && end <= len(lines)
}

// visualColumn returns the width of line before the 1-based column,
// expanding tabs.
func visualColumn(line string, column int) int {
	width := 0
	for i, ch := range line {
		if i+1 >= column {
			break
		}
		if ch == '\t' {
			width += tabWidth - width%tabWidth
		} else {
			width++
		}
	}
	return width
}

// commonIndent returns the leading white space shared by the non-blank
// lines.
func commonIndent(lines []string) string {
	var prefix []rune
	found := false
	for _, line := range lines {
		body := strings.TrimLeftFunc(line, unicode.IsSpace)
		if body == "" {
			continue
		}
		indent := []rune(line[:len(line)-len(body)])
		if !found {
			prefix, found = indent, true
			continue
		}
		n := 0
		for n < len(prefix) && n < len(indent) && prefix[n] == indent[n] {
			n++
		}
		prefix = prefix[:n]
	}
	return string(prefix)
}
