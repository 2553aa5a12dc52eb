// Package report renders leak checks, scan verdicts and risk analyses.
//
// Writers for different output formats share the Writer interface:
//   - SimpleWriter: plain text, also used for chat replies
//   - MarkdownWriter: Markdown with tables and GitHub alerts
//   - JSONWriter: structured JSON for tool integration
//
// Writers can be composed with MultiWriter.
package report
