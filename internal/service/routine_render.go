package service

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	routineMarkdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	routineSanitizer = bluemonday.UGCPolicy()
)

// RoutineMarkdown 把周计划整理为 Markdown，每天一个二级标题。
func RoutineMarkdown(routine *WeeklyRoutine) string {
	if routine == nil {
		return ""
	}

	var builder strings.Builder
	for i, day := range routine.Days {
		if i > 0 {
			builder.WriteString("\n")
		}
		fmt.Fprintf(&builder, "## %s\n\n", escapeMarkdownLine(day.Day))
		for _, exercise := range day.Exercises {
			fmt.Fprintf(&builder, "- **%s** — %s", escapeMarkdownLine(exercise.Name), escapeMarkdownLine(exercise.SetsReps))
			if link := safeVideoLink(exercise.YouTubeURL); link != "" {
				fmt.Fprintf(&builder, " ([video](%s))", link)
			}
			builder.WriteString("\n")
			if tip := strings.TrimSpace(exercise.FormTip); tip != "" {
				fmt.Fprintf(&builder, "\n  %s\n\n", escapeMarkdownLine(tip))
			}
		}
	}
	return builder.String()
}

// RenderRoutineHTML 将周计划渲染为经过清洗的 HTML，模型输出一律视为不可信内容。
func RenderRoutineHTML(routine *WeeklyRoutine) (string, error) {
	var buf bytes.Buffer
	if err := routineMarkdownEngine.Convert([]byte(RoutineMarkdown(routine)), &buf); err != nil {
		return "", fmt.Errorf("render routine markdown: %w", err)
	}
	return routineSanitizer.Sanitize(buf.String()), nil
}

// safeVideoLink 仅保留 http/https 链接，其他内容丢弃。
func safeVideoLink(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	if parsed.Host == "" {
		return ""
	}
	return strings.NewReplacer("(", "%28", ")", "%29", " ", "%20").Replace(parsed.String())
}

func escapeMarkdownLine(value string) string {
	flattened := strings.Join(strings.Fields(value), " ")
	return strings.NewReplacer("*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "#", `\#`, "`", "\\`").Replace(flattened)
}
