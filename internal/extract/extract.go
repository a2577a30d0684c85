// Package extract renders the human-readable content of a raw email
// container as plain text.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message/mail"

	"mailbrief/internal/model"
)

// Parse parses a raw RFC 5322 message and extracts subject, sender, the
// Date header verbatim, and a plain-text body. When the message carries
// both a text/plain and a text/html part the plain part wins; HTML is
// tag-stripped only when no plain part exists. Attachments are skipped.
// A message without any text part yields an empty body, not an error.
func Parse(raw []byte) (*model.ParsedEmail, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		if mr == nil {
			return nil, fmt.Errorf("failed to parse email container: %w", err)
		}
		// 头部有非致命问题（如未知字符集）时继续尽量提取正文
	}
	defer mr.Close()

	parsed := &model.ParsedEmail{
		Date: mr.Header.Get("Date"),
	}
	if subject, err := mr.Header.Subject(); err == nil {
		parsed.Subject = subject
	} else {
		parsed.Subject = mr.Header.Get("Subject")
	}
	parsed.From = senderString(mr)

	var textBody, htmlBody string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// 坏掉的 part 跳过，继续找可用正文
			break
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue // attachment
		}

		contentType, _, _ := header.ContentType()
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			if textBody == "" {
				textBody = strings.TrimSpace(string(body))
			}
		case strings.HasPrefix(contentType, "text/html"):
			if htmlBody == "" {
				htmlBody = strings.TrimSpace(string(body))
			}
		}
	}

	switch {
	case textBody != "":
		parsed.Body = textBody
	case htmlBody != "":
		parsed.Body = StripHTML(htmlBody)
	default:
		parsed.Body = ""
	}

	return parsed, nil
}

func senderString(mr *mail.Reader) string {
	addrs, err := mr.Header.AddressList("From")
	if err != nil || len(addrs) == 0 {
		return mr.Header.Get("From")
	}
	from := addrs[0]
	if from.Name != "" {
		return fmt.Sprintf("%s <%s>", from.Name, from.Address)
	}
	return from.Address
}

// Snippet returns the first max characters of text, collapsed to one line.
func Snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
