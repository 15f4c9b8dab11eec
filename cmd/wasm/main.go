//go:build js && wasm

// Package main exposes the html5 parser to JavaScript hosts via syscall/js.
package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/basalt-labs/html5"
	"github.com/basalt-labs/html5/dom"
	_ "github.com/basalt-labs/html5/selector" // Register selector functions with dom
	"github.com/basalt-labs/html5/serialize"
	"github.com/basalt-labs/html5/tokenizer"
)

func main() {
	js.Global().Set("html5", js.ValueOf(map[string]any{
		"parse":         js.FuncOf(parse),
		"parseFragment": js.FuncOf(parseFragment),
		"tokenize":      js.FuncOf(tokenize),
		"query":         js.FuncOf(query),
		"version":       js.ValueOf(html5.Version),
	}))

	// Block forever so the exported functions stay callable.
	select {}
}

type parseOptions struct {
	Format   string
	Selector string
	Pretty   bool
}

func optionsAt(args []js.Value, idx int, defaults parseOptions) parseOptions {
	if idx >= len(args) || args[idx].IsUndefined() || args[idx].IsNull() {
		return defaults
	}
	v := args[idx]
	opts := defaults
	if format := v.Get("format"); !format.IsUndefined() {
		opts.Format = format.String()
	}
	if selector := v.Get("selector"); !selector.IsUndefined() {
		opts.Selector = selector.String()
	}
	if pretty := v.Get("pretty"); !pretty.IsUndefined() {
		opts.Pretty = pretty.Bool()
	}
	return opts
}

// jsonReply marshals payload and rehydrates it as a native JS object.
// Round-tripping through JSON.parse avoids building nested js.Value trees
// by hand.
func jsonReply(payload map[string]any) any {
	data, err := json.Marshal(payload)
	if err != nil {
		return jsonReply(map[string]any{
			"success": false,
			"error":   "JSON encoding error: " + err.Error(),
		})
	}
	return js.Global().Get("JSON").Call("parse", string(data))
}

func errorResult(msg string) any {
	return jsonReply(map[string]any{"success": false, "error": msg})
}

// parse parses a full document.
// Arguments: html (string), options ({format: "html"|"text"|"tree", pretty: bool})
func parse(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("parse requires an HTML string argument")
	}
	opts := optionsAt(args, 1, parseOptions{Format: "html"})

	doc, err := html5.Parse(args[0].String())
	if err != nil {
		return errorResult("parse error: " + err.Error())
	}

	switch opts.Format {
	case "tree":
		return jsonReply(map[string]any{"success": true, "tree": nodeToTree(doc)})
	case "text":
		return jsonReply(map[string]any{"success": true, "result": textContent(doc)})
	}
	return jsonReply(map[string]any{
		"success": true,
		"result": serialize.ToHTML(doc, serialize.Options{
			Pretty:     opts.Pretty,
			IndentSize: 2,
		}),
	})
}

// parseFragment parses an HTML fragment against a context element.
// Arguments: html (string), context (string), options (object)
func parseFragment(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return errorResult("parseFragment requires html and context arguments")
	}
	opts := optionsAt(args, 2, parseOptions{Format: "html"})

	nodes, err := html5.ParseFragment(args[0].String(), args[1].String())
	if err != nil {
		return errorResult("parse error: " + err.Error())
	}

	results := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if opts.Format == "text" {
			results = append(results, textContent(node))
			continue
		}
		results = append(results, serialize.ToHTML(node, serialize.Options{
			Pretty:     opts.Pretty,
			IndentSize: 2,
		}))
	}
	return jsonReply(map[string]any{"success": true, "results": results})
}

// tokenize runs just the tokenizer over the input.
// Arguments: html (string). Returns an array of token objects.
func tokenize(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("tokenize requires an HTML string argument")
	}

	tok := tokenizer.New(args[0].String())
	var tokens []map[string]any
	for {
		tt := tok.Next()
		tokens = append(tokens, tokenToJS(&tt))
		if tt.Type == tokenizer.EOF {
			break
		}
	}

	return jsonReply(map[string]any{
		"success": true,
		"tokens":  tokens,
		"errors":  errorsToJS(tok.Errors()),
	})
}

// query parses HTML and runs a CSS selector over the result.
// Arguments: html (string), selector (string), options (object)
func query(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return errorResult("query requires html and selector arguments")
	}
	selectorStr := args[1].String()
	if selectorStr == "" {
		return errorResult("selector cannot be empty")
	}
	opts := optionsAt(args, 2, parseOptions{Format: "html", Pretty: true})

	doc, err := html5.Parse(args[0].String())
	if err != nil {
		return errorResult("parse error: " + err.Error())
	}
	matches, err := doc.Query(selectorStr)
	if err != nil {
		return errorResult("selector error: " + err.Error())
	}

	var results []map[string]any
	for i, elem := range matches {
		var serialized string
		if opts.Format == "text" {
			serialized = textContent(elem)
		} else {
			serialized = serialize.ToHTML(elem, serialize.Options{
				Pretty:     opts.Pretty,
				IndentSize: 2,
			})
		}
		results = append(results, map[string]any{
			"index":   i,
			"tagName": elem.TagName,
			"html":    serialized,
			"tree":    nodeToTree(elem),
		})
	}

	return jsonReply(map[string]any{
		"success": true,
		"count":   len(matches),
		"matches": results,
	})
}

func tokenToJS(t *tokenizer.Token) map[string]any {
	result := map[string]any{"type": t.Type.String()}
	switch t.Type {
	case tokenizer.DOCTYPE:
		result["name"] = t.Name
		if t.PublicID != nil {
			result["publicId"] = *t.PublicID
		}
		if t.SystemID != nil {
			result["systemId"] = *t.SystemID
		}
		result["forceQuirks"] = t.ForceQuirks
	case tokenizer.StartTag, tokenizer.EndTag:
		result["name"] = t.Name
		result["selfClosing"] = t.SelfClosing
		if len(t.Attrs) > 0 {
			result["attributes"] = tokenizer.AttrsToMap(t.Attrs)
		}
	case tokenizer.Comment, tokenizer.Character:
		result["data"] = t.Data
	}
	return result
}

func errorsToJS(errs []tokenizer.ParseError) []map[string]any {
	if len(errs) == 0 {
		return nil
	}
	out := make([]map[string]any, len(errs))
	for i, e := range errs {
		out[i] = map[string]any{
			"code":   e.Code,
			"line":   e.Line,
			"column": e.Column,
		}
	}
	return out
}

// textContent concatenates the text descendants of any container node.
func textContent(node dom.Node) string {
	var buf []byte
	var walk func(dom.Node)
	walk = func(n dom.Node) {
		switch n := n.(type) {
		case *dom.Text:
			buf = append(buf, n.Data...)
		case *dom.Element:
			for _, c := range n.Children() {
				walk(c)
			}
		case *dom.Document:
			for _, c := range n.Children() {
				walk(c)
			}
		}
	}
	walk(node)
	return string(buf)
}

func nodeToTree(node dom.Node) map[string]any {
	switch n := node.(type) {
	case *dom.Document:
		children := make([]map[string]any, 0)
		for _, child := range n.Children() {
			children = append(children, nodeToTree(child))
		}
		return map[string]any{"type": "document", "children": children}
	case *dom.DocumentType:
		return map[string]any{
			"type":     "doctype",
			"name":     n.Name,
			"publicId": n.PublicID,
			"systemId": n.SystemID,
		}
	case *dom.Element:
		children := make([]map[string]any, 0)
		for _, child := range n.Children() {
			children = append(children, nodeToTree(child))
		}
		attrs := make(map[string]string)
		for _, attr := range n.Attributes.All() {
			attrs[attr.Name] = attr.Value
		}
		return map[string]any{
			"type":       "element",
			"tagName":    n.TagName,
			"namespace":  n.Namespace,
			"attributes": attrs,
			"children":   children,
		}
	case *dom.Text:
		return map[string]any{"type": "text", "data": n.Data}
	case *dom.Comment:
		return map[string]any{"type": "comment", "data": n.Data}
	}
	return map[string]any{"type": "unknown"}
}
