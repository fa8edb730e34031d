package gmail

import (
	"encoding/base64"
	"regexp"
	"strings"

	gmailapi "google.golang.org/api/gmail/v1"
)

// ExtractText returns the plain decoded text of a message body. Preference
// order: first text/plain part at any nesting depth, then first text/html
// part stripped to text, then the flat top-level body. Malformed base64 and
// missing parts both yield "".
func ExtractText(payload *gmailapi.MessagePart) string {
	if payload == nil {
		return ""
	}

	if len(payload.Parts) == 0 {
		if payload.Body == nil {
			return ""
		}
		return decodeBody(payload.Body.Data)
	}

	if plain := findMime(payload.Parts, "text/plain"); plain != "" {
		return plain
	}
	if html := findMime(payload.Parts, "text/html"); html != "" {
		return StripHTML(html)
	}
	return ""
}

// findMime walks the part tree depth-first looking for the first part of the
// given media type. The walk is an explicit stack rather than recursion:
// nesting depth is provider-supplied and therefore untrusted.
func findMime(parts []*gmailapi.MessagePart, mime string) string {
	stack := make([]*gmailapi.MessagePart, 0, len(parts))
	// Push in reverse so the stack pops parts in document order.
	for i := len(parts) - 1; i >= 0; i-- {
		stack = append(stack, parts[i])
	}

	for len(stack) > 0 {
		part := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if part == nil {
			continue
		}

		if part.MimeType == mime && part.Body != nil && part.Body.Data != "" {
			if text := decodeBody(part.Body.Data); text != "" {
				return text
			}
		}

		for i := len(part.Parts) - 1; i >= 0; i-- {
			stack = append(stack, part.Parts[i])
		}
	}
	return ""
}

// decodeBody decodes Gmail's base64url body data, tolerating missing padding.
func decodeBody(data string) string {
	if data == "" {
		return ""
	}
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	return ""
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripHTML reduces markup to a plain-text approximation: tags removed, the
// common entities unescaped, whitespace collapsed.
func StripHTML(html string) string {
	text := tagPattern.ReplaceAllString(html, " ")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&quot;", "\"")
	return strings.Join(strings.Fields(text), " ")
}

// Header returns the named header value from a message part header list.
func Header(headers []*gmailapi.MessagePartHeader, name string) string {
	for _, header := range headers {
		if strings.EqualFold(header.Name, name) {
			return header.Value
		}
	}
	return ""
}
