package htmlutil

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// PageTitle pulls the <title> text out of an HTML document, or ""
// when the markup has none or does not parse. Used to turn an
// unexpected portal response into a readable error detail.
func PageTitle(page string) string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return ""
	}
	title := findTitle(doc)
	if title == nil {
		return ""
	}
	return strings.TrimSpace(GetText(title))
}

func findTitle(node *html.Node) *html.Node {
	if node == nil {
		return nil
	}
	if node.Type == html.ElementNode && node.Data == "title" {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findTitle(child); found != nil {
			return found
		}
	}
	return nil
}
