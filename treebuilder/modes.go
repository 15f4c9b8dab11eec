package treebuilder

// InsertionMode is a step in the tree construction state machine: which
// mode is active determines how the next token gets turned into DOM
// mutations (or into a mode switch, or both).
type InsertionMode int

// The insertion modes, in the order the specification introduces them.
const (
	Initial InsertionMode = iota
	BeforeHTML
	BeforeHead
	InHead
	InHeadNoscript
	AfterHead
	InBody
	Text
	InTable
	InTableText
	InCaption
	InColumnGroup
	InTableBody
	InRow
	InCell
	InSelect
	InSelectInTable
	InTemplate
	AfterBody
	InFrameset
	AfterFrameset
	AfterAfterBody
	AfterAfterFrameset
)

var insertionModeLabels = map[InsertionMode]string{
	Initial:             "initial",
	BeforeHTML:          "before html",
	BeforeHead:          "before head",
	InHead:              "in head",
	InHeadNoscript:      "in head noscript",
	AfterHead:           "after head",
	InBody:              "in body",
	Text:                "text",
	InTable:             "in table",
	InTableText:         "in table text",
	InCaption:           "in caption",
	InColumnGroup:       "in column group",
	InTableBody:         "in table body",
	InRow:               "in row",
	InCell:              "in cell",
	InSelect:            "in select",
	InSelectInTable:     "in select in table",
	InTemplate:          "in template",
	AfterBody:           "after body",
	InFrameset:          "in frameset",
	AfterFrameset:       "after frameset",
	AfterAfterBody:      "after after body",
	AfterAfterFrameset:  "after after frameset",
}

// String names the mode for diagnostics; it is not used for dispatch.
func (m InsertionMode) String() string {
	if name, ok := insertionModeLabels[m]; ok {
		return name
	}
	return "unknown"
}
