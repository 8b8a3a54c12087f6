package matching

import (
	"strings"

	"github.com/beevik/etree"
)

// MatchXPath evaluates XPath conditions against an XML body and returns the
// number that held. Each condition maps a path to the expected trimmed text of
// the first element it selects, or to an attribute value for paths ending in
// /@name. A body that is not XML satisfies none.
func MatchXPath(conditions map[string]string, body []byte) int {
	if len(conditions) == 0 {
		return 0
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return 0
	}
	if doc.Root() == nil {
		return 0
	}

	matched := 0
	for path, expected := range conditions {
		if value, ok := ExtractXPath(doc, path); ok && value == expected {
			matched++
		}
	}
	return matched
}

// ExtractXPath returns the value selected by path.
//
// Supported syntax is what etree understands (/a/b, //b, /a/b[1]) plus a
// trailing /@attr to read an attribute.
func ExtractXPath(doc *etree.Document, path string) (string, bool) {
	if doc == nil || path == "" {
		return "", false
	}

	if elemPath, attrName, ok := strings.Cut(path, "/@"); ok {
		if elemPath == "" || elemPath == "/" {
			elemPath = "/*"
		}
		elem := doc.FindElement(elemPath)
		if elem == nil {
			return "", false
		}
		attr := elem.SelectAttr(attrName)
		if attr == nil {
			return "", false
		}
		return attr.Value, true
	}

	elem := doc.FindElement(path)
	if elem == nil {
		return "", false
	}
	return strings.TrimSpace(elem.Text()), true
}
