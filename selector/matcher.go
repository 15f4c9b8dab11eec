package selector

import (
	"strconv"
	"strings"

	"github.com/basalt-labs/html5/dom"
)

// matchAST checks if an element matches a parsed selector AST.
func matchAST(elem *dom.Element, sel selectorAST) bool {
	switch s := sel.(type) {
	case ComplexSelector:
		return matchComplex(elem, s)
	case SelectorList:
		for _, alternative := range s.Selectors {
			if matchComplex(elem, alternative) {
				return true
			}
		}
		return false
	}
	return false
}

// matchComplex evaluates a combinator chain right-to-left: the rightmost
// compound must match the candidate itself, then each combinator walks
// outward/backward through the tree looking for a node matching the next
// compound to the left.
func matchComplex(elem *dom.Element, sel ComplexSelector) bool {
	if len(sel.Parts) == 0 {
		return false
	}

	last := len(sel.Parts) - 1
	if !matchCompound(elem, sel.Parts[last].Compound) {
		return false
	}

	current := elem
	for i := last - 1; i >= 0; i-- {
		combinator := sel.Parts[i+1].Combinator
		compound := sel.Parts[i].Compound

		next := stepCombinator(current, combinator, compound)
		if next == nil {
			return false
		}
		current = next
	}
	return true
}

// stepCombinator finds the node the match continues from, or nil when the
// combinator cannot be satisfied.
func stepCombinator(from *dom.Element, c Combinator, compound CompoundSelector) *dom.Element {
	switch c {
	case CombinatorChild:
		if p := parentElement(from); p != nil && matchCompound(p, compound) {
			return p
		}
	case CombinatorDescendant:
		for p := parentElement(from); p != nil; p = parentElement(p) {
			if matchCompound(p, compound) {
				return p
			}
		}
	case CombinatorAdjacent:
		if prev := previousElementSibling(from); prev != nil && matchCompound(prev, compound) {
			return prev
		}
	case CombinatorGeneral:
		for prev := previousElementSibling(from); prev != nil; prev = previousElementSibling(prev) {
			if matchCompound(prev, compound) {
				return prev
			}
		}
	}
	// CombinatorNone only precedes the first part; reaching it here means
	// the selector was malformed.
	return nil
}

// matchCompound requires every simple selector in the compound to hold.
func matchCompound(elem *dom.Element, compound CompoundSelector) bool {
	for _, sel := range compound.Selectors {
		if !matchSimple(elem, sel) {
			return false
		}
	}
	return true
}

func matchSimple(elem *dom.Element, sel SimpleSelector) bool {
	switch sel.Kind {
	case KindTag:
		// HTML tag names compare case-insensitively; foreign ones don't.
		if elem.Namespace == dom.NamespaceHTML {
			return strings.EqualFold(elem.TagName, sel.Name)
		}
		return elem.TagName == sel.Name
	case KindUniversal:
		return true
	case KindID:
		return elem.ID() == sel.Name
	case KindClass:
		return elem.HasClass(sel.Name)
	case KindAttr:
		return matchAttribute(elem, sel)
	case KindPseudo:
		return matchPseudo(elem, sel)
	}
	return false
}

// attrValueMatchers implements the comparison half of each attribute
// operator (AttrExists is handled by matchAttribute before a value lookup
// even happens, so it has no entry here).
var attrValueMatchers = map[AttrOperator]func(val, target string) bool{
	AttrEquals: func(val, target string) bool { return val == target },
	AttrIncludes: func(val, target string) bool {
		for _, w := range strings.Fields(val) {
			if w == target {
				return true
			}
		}
		return false
	},
	AttrDashPrefix: func(val, target string) bool {
		return val == target || strings.HasPrefix(val, target+"-")
	},
	AttrPrefixMatch: func(val, target string) bool {
		return target != "" && strings.HasPrefix(val, target)
	},
	AttrSuffixMatch: func(val, target string) bool {
		return target != "" && strings.HasSuffix(val, target)
	},
	AttrSubstring: func(val, target string) bool {
		return target != "" && strings.Contains(val, target)
	},
}

func matchAttribute(elem *dom.Element, sel SimpleSelector) bool {
	if sel.Operator == AttrExists {
		return elem.HasAttr(sel.Name)
	}
	if !elem.HasAttr(sel.Name) {
		return false
	}
	matches, ok := attrValueMatchers[sel.Operator]
	if !ok {
		return false
	}
	return matches(elem.Attr(sel.Name), sel.Value)
}

// positionPredicate evaluates one structural pseudo-class against the
// element's position on a sibling axis: its 1-based index and the total
// count, counted forward or from the end.
type positionPredicate struct {
	ofType  bool // restrict the axis to same-tag siblings
	fromEnd bool
	match   func(index, total int) bool
}

func first(index, _ int) bool    { return index == 1 }
func only(index, total int) bool { return index == 1 && total == 1 }

// argumentlessPseudos are the structural pseudo-classes that need no
// An+B argument. :empty and :root are handled separately since they are
// not sibling-position checks.
var argumentlessPseudos = map[string]positionPredicate{
	"first-child":   {match: first},
	"last-child":    {fromEnd: true, match: first},
	"only-child":    {match: only},
	"first-of-type": {ofType: true, match: first},
	"last-of-type":  {ofType: true, fromEnd: true, match: first},
	"only-of-type":  {ofType: true, match: only},
}

// nthPseudos map the An+B family onto the same axis machinery; the An+B
// formula itself is evaluated by matchesNth.
var nthPseudos = map[string]positionPredicate{
	"nth-child":        {},
	"nth-last-child":   {fromEnd: true},
	"nth-of-type":      {ofType: true},
	"nth-last-of-type": {ofType: true, fromEnd: true},
}

func matchPseudo(elem *dom.Element, sel SimpleSelector) bool {
	if pred, ok := argumentlessPseudos[sel.Name]; ok {
		index, total := siblingPosition(elem, pred.ofType, pred.fromEnd)
		return index > 0 && pred.match(index, total)
	}
	if pred, ok := nthPseudos[sel.Name]; ok {
		a, b, valid := parseNthExpression(sel.Value)
		if !valid {
			return false
		}
		index, _ := siblingPosition(elem, pred.ofType, pred.fromEnd)
		return index > 0 && matchesNth(index, a, b)
	}

	switch sel.Name {
	case "empty":
		return isEmpty(elem)
	case "root":
		return isRoot(elem)
	case "not":
		return matchNot(elem, sel.Value)
	}
	// Unsupported pseudo-class.
	return false
}

// siblingPosition locates elem on its sibling axis. index is 1-based and
// 0 when the element is somehow absent from its own parent's child list.
func siblingPosition(elem *dom.Element, ofType, fromEnd bool) (index, total int) {
	siblings := siblingAxis(elem, ofType)
	for i, sib := range siblings {
		if sib == elem {
			index = i + 1
			break
		}
	}
	total = len(siblings)
	if index > 0 && fromEnd {
		index = total - index + 1
	}
	return index, total
}

// siblingAxis collects elem's element siblings in order, including elem
// itself; with ofType set, only siblings sharing elem's tag name count.
func siblingAxis(elem *dom.Element, ofType bool) []*dom.Element {
	parent := elem.Parent()
	if parent == nil {
		return []*dom.Element{elem}
	}
	var out []*dom.Element
	for _, child := range parent.Children() {
		e, ok := child.(*dom.Element)
		if !ok {
			continue
		}
		if ofType && !strings.EqualFold(e.TagName, elem.TagName) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func parentElement(elem *dom.Element) *dom.Element {
	if p, ok := elem.Parent().(*dom.Element); ok {
		return p
	}
	return nil
}

func previousElementSibling(elem *dom.Element) *dom.Element {
	parent := elem.Parent()
	if parent == nil {
		return nil
	}
	var prev *dom.Element
	for _, child := range parent.Children() {
		if child == elem {
			return prev
		}
		if e, ok := child.(*dom.Element); ok {
			prev = e
		}
	}
	return nil
}

// isEmpty holds when the element has no element children and only
// whitespace text.
func isEmpty(elem *dom.Element) bool {
	for _, child := range elem.Children() {
		switch c := child.(type) {
		case *dom.Element:
			return false
		case *dom.Text:
			if strings.TrimSpace(c.Data) != "" {
				return false
			}
		}
	}
	return true
}

// isRoot holds for an element whose parent is the document itself (or a
// fragment root).
func isRoot(elem *dom.Element) bool {
	switch elem.Parent().(type) {
	case *dom.Document, *dom.DocumentFragment:
		return true
	}
	return false
}

// matchNot inverts the inner selector; an inner selector that fails to
// parse matches nothing, so :not(<garbage>) is false.
func matchNot(elem *dom.Element, arg string) bool {
	if arg == "" {
		return true
	}
	inner, err := Parse(arg)
	if err != nil {
		return false
	}
	return !inner.Match(elem)
}

// parseNthExpression decodes an An+B argument ("odd", "even", "3", "2n",
// "2n+1", "-n+3", ...), returning ok=false for anything malformed.
func parseNthExpression(expr string) (int, int, bool) {
	expr = strings.TrimSpace(strings.ToLower(expr))

	switch expr {
	case "odd":
		return 2, 1, true
	case "even":
		return 2, 0, true
	}

	// A bare integer is B with A=0.
	if n, err := strconv.Atoi(expr); err == nil {
		return 0, n, true
	}

	nIdx := strings.Index(expr, "n")
	if nIdx < 0 {
		return 0, 0, false
	}

	var a int
	switch aStr := expr[:nIdx]; aStr {
	case "", "+":
		a = 1
	case "-":
		a = -1
	default:
		var err error
		if a, err = strconv.Atoi(aStr); err != nil {
			return 0, 0, false
		}
	}

	b := 0
	if bStr := strings.TrimSpace(expr[nIdx+1:]); bStr != "" {
		var err error
		if b, err = strconv.Atoi(strings.TrimPrefix(bStr, "+")); err != nil {
			return 0, 0, false
		}
	}
	return a, b, true
}

// matchesNth reports whether a 1-based index satisfies An+B: some n >= 0
// with index == a*n + b.
func matchesNth(index, a, b int) bool {
	if a == 0 {
		return index == b
	}
	diff := index - b
	if a > 0 {
		return diff >= 0 && diff%a == 0
	}
	return diff <= 0 && diff%a == 0
}
