package lint

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatText renders a result as human-readable text for the terminal.
func FormatText(result *Result) string {
	var b strings.Builder

	for _, issue := range result.Issues {
		fmt.Fprintf(&b, "%s: %s [%s] %s\n",
			issue.Severity, issue.FilePath, issue.Rule, issue.Message)
	}

	if len(result.Issues) > 0 {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%d files scanned: %d errors, %d warnings\n",
		result.FilesTotal, result.ErrorCount(), result.WarningCount())
	return b.String()
}

// FormatJSON renders a result as indented JSON for tooling.
func FormatJSON(result *Result) (string, error) {
	type jsonIssue struct {
		File     string `json:"file"`
		Severity string `json:"severity"`
		Rule     string `json:"rule"`
		Message  string `json:"message"`
	}
	out := struct {
		FilesTotal int         `json:"files_total"`
		Errors     int         `json:"errors"`
		Warnings   int         `json:"warnings"`
		Issues     []jsonIssue `json:"issues"`
	}{
		FilesTotal: result.FilesTotal,
		Errors:     result.ErrorCount(),
		Warnings:   result.WarningCount(),
		Issues:     make([]jsonIssue, 0, len(result.Issues)),
	}
	for _, issue := range result.Issues {
		out.Issues = append(out.Issues, jsonIssue{
			File:     issue.FilePath,
			Severity: issue.Severity.String(),
			Rule:     issue.Rule,
			Message:  issue.Message,
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
