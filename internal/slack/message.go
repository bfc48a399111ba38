package slack

import "strings"

// Message is an incoming webhook payload. Text is the notification fallback
type Message struct {
	Text   string  `json:"text"`
	Blocks []Block `json:"blocks,omitempty"`
}

// Block is a Block Kit layout block
type Block struct {
	Type   string       `json:"type"`
	Text   *TextObject  `json:"text,omitempty"`
	Fields []TextObject `json:"fields,omitempty"`
}

// TextObject is a plain_text or mrkdwn text element
type TextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// maxFieldText is the Block Kit limit for a section field
const maxFieldText = 2000

// Header returns a header block
func Header(text string) Block {
	return Block{Type: "header", Text: &TextObject{Type: "plain_text", Text: text}}
}

// Markdown returns a section block with a single mrkdwn paragraph
func Markdown(text string) Block {
	return Block{Type: "section", Text: &TextObject{Type: "mrkdwn", Text: clip(text)}}
}

// Fields returns a section block rendering label/value pairs side by side
func Fields(pairs ...[2]string) Block {
	fields := make([]TextObject, 0, len(pairs))
	for _, p := range pairs {
		fields = append(fields, TextObject{Type: "mrkdwn", Text: clip("*" + p[0] + ":*\n" + p[1])})
	}

	return Block{Type: "section", Fields: fields}
}

// Divider returns a divider block
func Divider() Block {
	return Block{Type: "divider"}
}

func clip(s string) string {
	if len(s) <= maxFieldText {
		return s
	}

	cut := maxFieldText - len("…")
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}

	return strings.TrimSpace(s[:cut]) + "…"
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
