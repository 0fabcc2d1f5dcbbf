package service

import (
	"log"
	"strings"
	"unicode/utf8"
)

const maxAILogSnippetRunes = 1024

// logAIExchange 输出一次模型调用的请求或响应片段，requestID 用于串联同一次生成。
func logAIExchange(requestID, phase, content string) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		log.Printf("[AI ROUTINE %s] %s: <empty>", requestID, phase)
		return
	}

	runeCount := utf8.RuneCountInString(trimmed)
	snippet := trimmed
	if runeCount > maxAILogSnippetRunes {
		snippet = string([]rune(trimmed)[:maxAILogSnippetRunes]) + "…(truncated)"
	}
	log.Printf("[AI ROUTINE %s] %s (runes=%d): %s", requestID, phase, runeCount, snippet)
}
