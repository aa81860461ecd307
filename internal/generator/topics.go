package generator

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxFallbackTopics = 3

var hashtagPattern = regexp.MustCompile(`#[a-zA-Z0-9]+`)

var stopWords = map[string]struct{}{
	"about": {}, "after": {}, "again": {}, "below": {}, "could": {},
	"every": {}, "first": {}, "found": {}, "great": {}, "house": {},
	"large": {}, "learn": {}, "never": {}, "other": {}, "place": {},
	"small": {}, "study": {}, "their": {}, "there": {}, "these": {},
	"thing": {}, "think": {}, "three": {}, "water": {}, "where": {},
	"which": {}, "world": {}, "would": {}, "write": {},
}

// ExtractTopics returns the hashtags of content without the '#', in order
// of appearance. Without hashtags it falls back to at most three words
// longer than four characters that are not common words.
func ExtractTopics(content string) []string {
	tags := hashtagPattern.FindAllString(content, -1)
	if len(tags) > 0 {
		topics := make([]string, 0, len(tags))
		for _, tag := range tags {
			topics = append(topics, strings.TrimPrefix(tag, "#"))
		}
		return topics
	}

	topics := []string{}
	for _, word := range strings.Fields(content) {
		if utf8.RuneCountInString(word) <= 4 {
			continue
		}
		if _, stop := stopWords[strings.ToLower(word)]; stop {
			continue
		}
		topics = append(topics, word)
		if len(topics) == maxFallbackTopics {
			break
		}
	}
	return topics
}

// FirstSentence is the text before the first period, trimmed.
func FirstSentence(content string) string {
	before, _, _ := strings.Cut(content, ".")
	return strings.TrimSpace(before)
}
