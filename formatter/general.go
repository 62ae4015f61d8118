package formatter

// issueTemplate renders an issue as a header, the offending lines with the
// node underlined, then the message, suggestion and note.
const issueTemplate = `{{.Title}}
{{.Location}}
{{.Gutter}}
{{range .Lines}}{{.}}
{{end}}{{with .Underline}}{{.}}
{{end}}{{.Message}}
{{with .Suggestion}}{{.}}
{{end}}{{with .Note}}{{.}}
{{end}}
`
