// Copyright (c) 2026 OpenPackage Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package mapping

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---\n"

// SplitFrontmatter separates a markdown document's leading "---\n...\n---\n"
// YAML frontmatter block from its body. ok is false if no frontmatter block
// is present, in which case body is the original content unchanged.
func SplitFrontmatter(content []byte) (frontmatter *yaml.Node, body []byte, ok bool) {
	if !bytes.HasPrefix(content, []byte(frontmatterDelim)) {
		return nil, content, false
	}
	rest := content[len(frontmatterDelim):]
	end := bytes.Index(rest, []byte("\n"+frontmatterDelim))
	if end < 0 {
		return nil, content, false
	}
	raw := rest[:end]
	body = rest[end+len("\n"+frontmatterDelim):]

	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, content, false
	}
	return &node, body, true
}

// JoinFrontmatter renders node back into a "---\n...\n---\n" block followed
// by body. A nil node yields body unchanged.
func JoinFrontmatter(node *yaml.Node, body []byte) ([]byte, error) {
	if node == nil {
		return body, nil
	}
	data, err := yaml.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("marshalling frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(frontmatterDelim)
	buf.Write(data)
	buf.WriteString(frontmatterDelim)
	buf.Write(body)
	return buf.Bytes(), nil
}

// Overlay shallow-merges override on top of base: every top-level key
// present in override replaces the corresponding key in base (or is added,
// if absent); keys present only in base are preserved. Both base and
// override must be YAML mapping documents; a nil base is treated as empty.
func Overlay(base, override *yaml.Node) (*yaml.Node, error) {
	if override == nil {
		return base, nil
	}

	overrideMap, err := mappingNode(override)
	if err != nil {
		return nil, fmt.Errorf("overlay: %w", err)
	}

	var baseMap *yaml.Node
	if base != nil {
		baseMap, err = mappingNode(base)
		if err != nil {
			return nil, fmt.Errorf("overlay base: %w", err)
		}
	} else {
		baseMap = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}

	merged := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	merged.Content = append(merged.Content, baseMap.Content...)

	for i := 0; i+1 < len(overrideMap.Content); i += 2 {
		key := overrideMap.Content[i]
		val := overrideMap.Content[i+1]
		replaced := false
		for j := 0; j+1 < len(merged.Content); j += 2 {
			if merged.Content[j].Value == key.Value {
				merged.Content[j+1] = val
				replaced = true
				break
			}
		}
		if !replaced {
			merged.Content = append(merged.Content, key, val)
		}
	}

	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{merged}}
	return doc, nil
}

// mappingNode unwraps a document node down to its top-level mapping node.
func mappingNode(n *yaml.Node) (*yaml.Node, error) {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}, nil
		}
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a YAML mapping, got kind %v", n.Kind)
	}
	return n, nil
}
