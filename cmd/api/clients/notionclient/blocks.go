package notionclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/DavidPARK0417/draiger-sub002/internal/logger"
	"github.com/DavidPARK0417/draiger-sub002/models"
)

// 하위 블록은 이 깊이까지만 따라간다. 더 깊은 블록은 본문에서 빠진다.
const maxBlockDepth = 3

type textBlock struct {
	RichText []richText `json:"rich_text"`
	Checked  bool       `json:"checked"`
	Language string     `json:"language"`
}

type imageBlock struct {
	File     *fileURL   `json:"file"`
	External *fileURL   `json:"external"`
	Caption  []richText `json:"caption"`
}

type block struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	HasChildren bool        `json:"has_children"`
	Paragraph   *textBlock  `json:"paragraph"`
	Heading1    *textBlock  `json:"heading_1"`
	Heading2    *textBlock  `json:"heading_2"`
	Heading3    *textBlock  `json:"heading_3"`
	Bulleted    *textBlock  `json:"bulleted_list_item"`
	Numbered    *textBlock  `json:"numbered_list_item"`
	ToDo        *textBlock  `json:"to_do"`
	Quote       *textBlock  `json:"quote"`
	Callout     *textBlock  `json:"callout"`
	Toggle      *textBlock  `json:"toggle"`
	Code        *textBlock  `json:"code"`
	Image       *imageBlock `json:"image"`

	children []block
}

func (b block) isListItem() bool {
	switch b.Type {
	case "bulleted_list_item", "numbered_list_item", "to_do":
		return true
	}
	return false
}

// FetchContent renders the block content of one page as markdown.
func (c *Client) FetchContent(ctx context.Context, ct models.ContentType, pageID string) (string, error) {
	creds, err := c.credentials(ct)
	if err != nil {
		return "", err
	}
	pageID = strings.TrimSpace(pageID)
	if pageID == "" {
		return "", unavailable("page id is empty")
	}
	blocks, err := c.blockTree(ctx, creds, pageID, 1)
	if err != nil {
		return "", err
	}
	return renderMarkdown(blocks, ""), nil
}

func (c *Client) blockTree(ctx context.Context, creds credentials, blockID string, depth int) ([]block, error) {
	raws, err := c.listChildren(ctx, creds, blockID)
	if err != nil {
		return nil, err
	}
	out := make([]block, 0, len(raws))
	for _, raw := range raws {
		var b block
		if err := json.Unmarshal(raw, &b); err != nil {
			logger.WarnWithFields("skip undecodable block", logger.Fields{
				"parent_id": blockID,
				"error":     err.Error(),
			})
			continue
		}
		if b.HasChildren && depth < maxBlockDepth && b.Type != "child_page" && b.Type != "child_database" {
			if b.children, err = c.blockTree(ctx, creds, b.ID, depth+1); err != nil {
				return nil, err
			}
		}
		out = append(out, b)
	}
	return out, nil
}

// listChildren follows the block children cursor until the source reports no more.
func (c *Client) listChildren(ctx context.Context, creds credentials, blockID string) ([]json.RawMessage, error) {
	var all []json.RawMessage
	relPath := path.Join("/v1/blocks", blockID, "children")
	cursor := ""
	for {
		query := url.Values{"page_size": {strconv.Itoa(queryPageSize)}}
		if cursor != "" {
			query.Set("start_cursor", cursor)
		}
		resp, status, errBody, err := c.send(ctx, creds, http.MethodGet, relPath, query, nil)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, unavailable("block children: status=%d body=%s", status, errBody)
		}
		all = append(all, resp.Results...)
		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			return all, nil
		}
		if *resp.NextCursor == cursor {
			return nil, unavailable("cursor did not advance (%s)", cursor)
		}
		cursor = *resp.NextCursor
	}
}

// renderMarkdown turns blocks into markdown. List items are separated by a single
// newline, every other block by a blank line.
func renderMarkdown(blocks []block, indent string) string {
	var sb strings.Builder
	number := 0
	var prev *block
	for i := range blocks {
		b := blocks[i]
		if b.Type == "numbered_list_item" {
			number++
		} else {
			number = 0
		}
		text := renderBlock(b, number)
		if text == "" && len(b.children) == 0 {
			continue
		}
		if prev != nil {
			if prev.isListItem() && b.isListItem() {
				sb.WriteString("\n")
			} else {
				sb.WriteString("\n\n")
			}
		}
		sb.WriteString(indentLines(text, indent))
		if len(b.children) > 0 {
			childIndent := indent
			if b.isListItem() || b.Type == "toggle" {
				childIndent += "  "
			}
			if text != "" {
				sb.WriteString("\n")
				if !b.isListItem() {
					sb.WriteString("\n")
				}
			}
			sb.WriteString(renderMarkdown(b.children, childIndent))
		}
		prev = &blocks[i]
	}
	return sb.String()
}

func renderBlock(b block, number int) string {
	switch b.Type {
	case "paragraph":
		return inline(b.Paragraph)
	case "heading_1":
		return prefixed("# ", inline(b.Heading1))
	case "heading_2":
		return prefixed("## ", inline(b.Heading2))
	case "heading_3":
		return prefixed("### ", inline(b.Heading3))
	case "bulleted_list_item":
		return "- " + inline(b.Bulleted)
	case "numbered_list_item":
		return fmt.Sprintf("%d. %s", number, inline(b.Numbered))
	case "to_do":
		box := "[ ]"
		if b.ToDo != nil && b.ToDo.Checked {
			box = "[x]"
		}
		return "- " + box + " " + inline(b.ToDo)
	case "quote":
		return quoteLines(inline(b.Quote))
	case "callout":
		return quoteLines(inline(b.Callout))
	case "toggle":
		return inline(b.Toggle)
	case "code":
		if b.Code == nil {
			return ""
		}
		return "```" + b.Code.Language + "\n" + plain(b.Code.RichText) + "\n```"
	case "divider":
		return "---"
	case "image":
		if b.Image == nil {
			return ""
		}
		src := ""
		if b.Image.File != nil {
			src = b.Image.File.URL
		} else if b.Image.External != nil {
			src = b.Image.External.URL
		}
		if src == "" {
			return ""
		}
		return fmt.Sprintf("![%s](%s)", plain(b.Image.Caption), src)
	}
	return ""
}

func inline(t *textBlock) string {
	if t == nil {
		return ""
	}
	var sb strings.Builder
	for _, rt := range t.RichText {
		text := rt.PlainText
		if text == "" {
			continue
		}
		a := rt.Annotations
		if a.Code {
			text = "`" + text + "`"
		}
		if a.Bold {
			text = "**" + text + "**"
		}
		if a.Italic {
			text = "_" + text + "_"
		}
		if a.Strikethrough {
			text = "~~" + text + "~~"
		}
		if rt.Href != nil && *rt.Href != "" {
			text = "[" + text + "](" + *rt.Href + ")"
		}
		sb.WriteString(text)
	}
	return sb.String()
}

func plain(parts []richText) string {
	var sb strings.Builder
	for _, rt := range parts {
		sb.WriteString(rt.PlainText)
	}
	return sb.String()
}

func prefixed(prefix, text string) string {
	if text == "" {
		return ""
	}
	return prefix + text
}

func quoteLines(text string) string {
	if text == "" {
		return ""
	}
	return "> " + strings.ReplaceAll(text, "\n", "\n> ")
}

func indentLines(text, indent string) string {
	if indent == "" || text == "" {
		return text
	}
	return indent + strings.ReplaceAll(text, "\n", "\n"+indent)
}
