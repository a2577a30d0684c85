package service

import "strings"

const (
	// 原文超过这个长度先截断，控制 token 成本
	maxBodyChars = 8000
	chunkChars   = 1500
	overlapWords = 50
)

// truncateBody caps very long bodies before any remote call.
func truncateBody(text string) string {
	runes := []rune(text)
	if len(runes) <= maxBodyChars {
		return text
	}
	return string(runes[:maxBodyChars]) + "\n\n[Email truncated due to length]"
}

// chunkText splits a long body into word-aligned chunks of at most
// maxChars characters, with a 50-word overlap between neighbours so a
// sentence cut at a boundary still appears whole in one chunk.
func chunkText(text string, maxChars int) []string {
	if len(text) <= maxChars {
		return []string{text}
	}

	words := strings.Fields(text)
	var chunks []string
	var current []string
	currentLen := 0

	for _, w := range words {
		if currentLen+len(w)+1 > maxChars && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))

			overlapStart := len(current) - overlapWords
			if overlapStart < 0 {
				overlapStart = 0
			}
			current = append([]string(nil), current[overlapStart:]...)
			currentLen = 0
			for _, ow := range current {
				currentLen += len(ow) + 1
			}
		}
		current = append(current, w)
		currentLen += len(w) + 1
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}
