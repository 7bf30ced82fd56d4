package llm

import (
	"regexp"
	"strings"
)

var (
	jsonFence = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)```")
	htmlFence = regexp.MustCompile("(?is)```(?:html)?\\s*(.*?)```")
)

// StripJSON 去掉模型偶尔附带的 ```json 代码块包裹，以及首尾的闲聊文字。
func StripJSON(text string) string {
	text = strings.TrimSpace(text)
	if m := jsonFence.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		return text
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

// StripHTML 提取 ```html 代码块中的内容；没有代码块时原样返回去除首尾空白的文本。
func StripHTML(text string) string {
	if m := htmlFence.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}
