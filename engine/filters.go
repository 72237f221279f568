package engine

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/tabulon-io/tabulon/schema"
)

// ============================================================================
// FILTER EVALUATOR — Recursive AND/OR predicate tree
// ============================================================================
// Evaluate is a pure function of (row, node, caseSensitive). Malformed data
// never raises: a value that will not coerce to the operator's type, or an
// invalid regex pattern, makes the condition false.
//
// Operator semantics follow the operator's declared type family, not the
// runtime shape of the value — see the per-type operator tables below.
// ============================================================================

// Operator families. "is empty" / "is not empty" are type-agnostic and are
// checked before any family dispatch.
var (
	stringOperators = map[string]bool{
		"is": true, "is not": true,
		"contains": true, "does not contain": true,
		"startswith": true, "endswith": true,
		"in": true, "not in": true,
		"regexp": true,
	}
	numberOperators = map[string]bool{
		"=": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	}
	dateOperators = map[string]bool{
		"is before": true, "is after": true,
	}
)

// KnownOperator reports whether an operator name belongs to any family.
// Configuration validation at the boundary uses this; the evaluator itself
// quietly returns false for unknown operators.
func KnownOperator(op string) bool {
	return op == "is empty" || op == "is not empty" ||
		stringOperators[op] || numberOperators[op] || dateOperators[op]
}

// Evaluate applies a filter node to a row.
// Groups: empty → true; AND → all children; OR → any child. Short-circuits.
func Evaluate(row Row, node FilterNode, caseSensitive bool) bool {
	switch n := node.(type) {
	case *Group:
		if len(n.Children) == 0 {
			return true
		}
		if n.Logic == LogicOr {
			for _, child := range n.Children {
				if Evaluate(row, child, caseSensitive) {
					return true
				}
			}
			return false
		}
		for _, child := range n.Children {
			if !Evaluate(row, child, caseSensitive) {
				return false
			}
		}
		return true
	case *Condition:
		return evaluateCondition(row, n, caseSensitive)
	default:
		return false
	}
}

func evaluateCondition(row Row, c *Condition, caseSensitive bool) bool {
	value := row[c.Field]
	blank := schema.IsBlank(value)

	// Type-agnostic emptiness checks come first.
	switch c.Operator {
	case "is empty":
		return blank
	case "is not empty":
		return !blank
	}

	switch {
	case numberOperators[c.Operator]:
		return evaluateNumber(value, c.Operator, c.Value)
	case dateOperators[c.Operator]:
		return evaluateDate(value, c.Operator, c.Value)
	case stringOperators[c.Operator]:
		return evaluateString(value, c.Operator, c.Value, caseSensitive)
	default:
		return false
	}
}

// evaluateNumber applies a numeric operator. Both sides must parse as
// non-blank finite numbers, otherwise the condition is false — not an error.
func evaluateNumber(value, op, target string) bool {
	a, ok := parseFinite(value)
	if !ok {
		return false
	}
	b, ok := parseFinite(target)
	if !ok {
		return false
	}
	switch op {
	case "=":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	}
	return false
}

func parseFinite(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// evaluateDate applies a date operator. Both sides must parse as valid
// calendar dates, else false.
func evaluateDate(value, op, target string) bool {
	a, ok := schema.ParseDate(value)
	if !ok {
		return false
	}
	b, ok := schema.ParseDate(target)
	if !ok {
		return false
	}
	switch op {
	case "is before":
		return a.Before(b)
	case "is after":
		return a.After(b)
	}
	return false
}

// evaluateString applies a string operator to the string representations of
// both sides, honoring the case flag.
func evaluateString(value, op, target string, caseSensitive bool) bool {
	a, b := value, target
	if !caseSensitive {
		a = strings.ToLower(a)
		b = strings.ToLower(b)
	}

	switch op {
	case "is":
		return a == b
	case "is not":
		return a != b
	case "contains":
		return strings.Contains(a, b)
	case "does not contain":
		return !strings.Contains(a, b)
	case "startswith":
		return strings.HasPrefix(a, b)
	case "endswith":
		return strings.HasSuffix(a, b)
	case "in":
		return inList(a, b)
	case "not in":
		return !inList(a, b)
	case "regexp":
		// Compile against the original pattern; case folding is done with
		// the insensitive flag, not by lowering the pattern text.
		pattern := target
		if !caseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(value)
	}
	return false
}

// inList tests membership in a literal comma-separated list. Both sides are
// assumed already case-folded by the caller.
func inList(value, list string) bool {
	for _, item := range strings.Split(list, ",") {
		if strings.TrimSpace(item) == value {
			return true
		}
	}
	return false
}

// ============================================================================
// TREE MUTATION — Path-copying rebuilds addressed by node id
// ============================================================================
// Each edit returns a NEW root; the original tree is never touched. This
// keeps edits pure and makes external undo/redo bookkeeping trivial.
// ============================================================================

// InsertNode adds a child under the group with the given id, returning the
// new root and whether the parent was found.
func InsertNode(root *Group, parentID string, child FilterNode) (*Group, bool) {
	rebuilt, found := rebuildInsert(root, parentID, child)
	return rebuilt.(*Group), found
}

func rebuildInsert(node FilterNode, parentID string, child FilterNode) (FilterNode, bool) {
	g, ok := node.(*Group)
	if !ok {
		return node, false
	}
	if g.ID == parentID {
		clone := *g
		clone.Children = append(append([]FilterNode{}, g.Children...), child)
		return &clone, true
	}
	for i, c := range g.Children {
		if rebuilt, found := rebuildInsert(c, parentID, child); found {
			clone := *g
			clone.Children = append([]FilterNode{}, g.Children...)
			clone.Children[i] = rebuilt
			return &clone, true
		}
	}
	return node, false
}

// RemoveNode deletes the node with the given id, returning the new root.
// The root group itself cannot be removed.
func RemoveNode(root *Group, id string) (*Group, bool) {
	if root.ID == id {
		return root, false
	}
	rebuilt, found := rebuildRemove(root, id)
	return rebuilt.(*Group), found
}

func rebuildRemove(node FilterNode, id string) (FilterNode, bool) {
	g, ok := node.(*Group)
	if !ok {
		return node, false
	}
	for i, c := range g.Children {
		if c.NodeID() == id {
			clone := *g
			clone.Children = append([]FilterNode{}, g.Children[:i]...)
			clone.Children = append(clone.Children, g.Children[i+1:]...)
			return &clone, true
		}
		if rebuilt, found := rebuildRemove(c, id); found {
			clone := *g
			clone.Children = append([]FilterNode{}, g.Children...)
			clone.Children[i] = rebuilt
			return &clone, true
		}
	}
	return node, false
}

// UpdateCondition replaces the field/operator/value of the condition with
// the given id, returning the new root.
func UpdateCondition(root *Group, id, field, operator, value string) (*Group, bool) {
	rebuilt, found := rebuildUpdate(root, id, func(n FilterNode) FilterNode {
		c, ok := n.(*Condition)
		if !ok {
			return n
		}
		clone := *c
		clone.Field, clone.Operator, clone.Value = field, operator, value
		return &clone
	})
	return rebuilt.(*Group), found
}

// SetGroupLogic switches a group between AND and OR, returning the new root.
func SetGroupLogic(root *Group, id string, logic Logic) (*Group, bool) {
	rebuilt, found := rebuildUpdate(root, id, func(n FilterNode) FilterNode {
		g, ok := n.(*Group)
		if !ok {
			return n
		}
		clone := *g
		clone.Logic = logic
		return &clone
	})
	return rebuilt.(*Group), found
}

func rebuildUpdate(node FilterNode, id string, apply func(FilterNode) FilterNode) (FilterNode, bool) {
	if node.NodeID() == id {
		return apply(node), true
	}
	g, ok := node.(*Group)
	if !ok {
		return node, false
	}
	for i, c := range g.Children {
		if rebuilt, found := rebuildUpdate(c, id, apply); found {
			clone := *g
			clone.Children = append([]FilterNode{}, g.Children...)
			clone.Children[i] = rebuilt
			return &clone, true
		}
	}
	return node, false
}

// FindNode locates a node by id, or nil.
func FindNode(root FilterNode, id string) FilterNode {
	if root.NodeID() == id {
		return root
	}
	if g, ok := root.(*Group); ok {
		for _, c := range g.Children {
			if found := FindNode(c, id); found != nil {
				return found
			}
		}
	}
	return nil
}

// ValidateFilter checks every condition in a tree for a known operator.
// This is boundary validation of configuration; data problems never error.
func ValidateFilter(root FilterNode) error {
	if root == nil {
		return nil
	}
	switch n := root.(type) {
	case *Group:
		if n.Logic != LogicAnd && n.Logic != LogicOr {
			return errors.Errorf("filter group %s: unknown logic %q", n.ID, n.Logic)
		}
		for _, c := range n.Children {
			if err := ValidateFilter(c); err != nil {
				return err
			}
		}
		return nil
	case *Condition:
		if !KnownOperator(n.Operator) {
			return errors.Errorf("filter condition %s: unknown operator %q", n.ID, n.Operator)
		}
		return nil
	default:
		return nil
	}
}
