package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github-readme-generator/internal/common"
	"github-readme-generator/internal/domain"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// copyToClipboard 测试中替换
var copyToClipboard = clipboard.WriteAll

func validateOutput(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML:
		return nil
	}
	return common.NewError(common.ErrCodeInvalidInput, fmt.Sprintf("不支持的输出格式: %q (可选 text, json, yaml)", format))
}

// writeStructured 以 json 或 yaml 输出任意值
func writeStructured(w io.Writer, format string, value interface{}) error {
	switch format {
	case outputYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(value); err != nil {
			return err
		}
		return encoder.Close()
	default:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	}
}

// writeResult 输出操作结果；text 模式下文档原样输出，其余内容作为摘要
func writeResult(w io.Writer, format string, result domain.Result) error {
	if format != outputText {
		return writeStructured(w, format, result)
	}

	if !result.Success {
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("❌ [%s] %s", result.ErrorCode, result.Error)))
	}
	if result.Document != nil {
		fmt.Fprintln(w, result.Document.Content)
		return nil
	}
	if result.Analysis != nil {
		writeAnalysis(w, result.Analysis)
	}
	return nil
}

func writeAnalysis(w io.Writer, analysis *domain.Analysis) {
	field := func(key, value string) {
		fmt.Fprintf(w, "%s %s\n", keyStyle.Render(fmt.Sprintf("%-16s", key+":")), value)
	}
	fmt.Fprintln(w, titleStyle.Render("📦 "+analysis.FullName))
	if analysis.Description != "" {
		field("description", analysis.Description)
	}
	field("type", string(analysis.ProjectType))
	field("technologies", strings.Join(analysis.Technologies, ", "))
	field("package manager", string(analysis.PackageManager))
	field("tests", fmt.Sprintf("%t", analysis.HasTests))
	field("ci", fmt.Sprintf("%t", analysis.HasCI))
	field("license", analysis.License)
	field("stars", fmt.Sprintf("%d", analysis.Stars))
	if analysis.Structure != nil {
		files, dirs, unavailable := analysis.Structure.Stats()
		field("structure", fmt.Sprintf("%d files, %d dirs, %d unavailable", files, dirs, unavailable))
	}
	for _, note := range analysis.Notes {
		fmt.Fprintln(w, noteStyle.Render("⚠️ "+note))
	}
}

func writeHistory(w io.Writer, format string, records []*domain.HistoryRecord) error {
	if format != outputText {
		return writeStructured(w, format, records)
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "📭 没有历史记录")
		return nil
	}
	for _, record := range records {
		fmt.Fprintf(w, "%s %s %s/%s\n",
			keyStyle.Render(record.GeneratedAt.UTC().Format("2006-01-02 15:04:05")),
			titleStyle.Render(record.RepoFullName),
			record.Language, record.Style)
	}
	return nil
}
