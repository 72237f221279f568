package engine

import (
	"testing"
)

// ============================================================================
// FILTER EVALUATOR TESTS
// ============================================================================

func cond(field, op, value string) *Condition {
	return NewCondition(field, op, value)
}

func groupOf(logic Logic, children ...FilterNode) *Group {
	g := NewGroup(logic)
	g.Children = children
	return g
}

func TestEmptyGroupIsVacuouslyTrue(t *testing.T) {
	row := Row{"name": "tom"}
	if !Evaluate(row, NewGroup(LogicAnd), false) {
		t.Error("empty AND group should match everything")
	}
	if !Evaluate(row, NewGroup(LogicOr), false) {
		t.Error("empty OR group should match everything")
	}
}

func TestEmptinessOperatorsAreComplements(t *testing.T) {
	rows := []Row{
		{"v": "x"},
		{"v": ""},
		{"v": "   "},
		{}, // absent key
	}
	for i, row := range rows {
		empty := Evaluate(row, cond("v", "is empty", ""), false)
		notEmpty := Evaluate(row, cond("v", "is not empty", ""), false)
		if empty == notEmpty {
			t.Errorf("row %d: is empty and is not empty must be complements", i)
		}
	}
}

func TestAndGroupEquivalence(t *testing.T) {
	row := Row{"name": "tom", "age": "30"}
	a := cond("name", "is", "tom")
	b := cond("age", ">", "25")
	c := cond("age", ">", "40")

	and := func(children ...FilterNode) bool {
		return Evaluate(row, groupOf(LogicAnd, children...), false)
	}
	if and(a, b) != (Evaluate(row, a, false) && Evaluate(row, b, false)) {
		t.Error("AND(a,b) should equal a && b")
	}
	if and(a, c) != (Evaluate(row, a, false) && Evaluate(row, c, false)) {
		t.Error("AND(a,c) should equal a && c")
	}
}

func TestOrGroupShortCircuits(t *testing.T) {
	row := Row{"name": "tom"}
	// Second condition has an invalid regex; OR must already be true.
	g := groupOf(LogicOr,
		cond("name", "is", "tom"),
		cond("name", "regexp", "("),
	)
	if !Evaluate(row, g, false) {
		t.Error("OR group with a true first child should be true")
	}
}

func TestCaseSensitivity(t *testing.T) {
	row := Row{"name": "tom"}
	c := cond("name", "is", "Tom")
	if !Evaluate(row, c, false) {
		t.Error("case-insensitive: 'tom' is 'Tom' should be true")
	}
	if Evaluate(row, c, true) {
		t.Error("case-sensitive: 'tom' is 'Tom' should be false")
	}
}

func TestStringOperators(t *testing.T) {
	row := Row{"name": "Tomas"}
	cases := []struct {
		op, value string
		want      bool
	}{
		{"contains", "oma", true},
		{"does not contain", "xyz", true},
		{"startswith", "to", true}, // case-insensitive
		{"endswith", "AS", true},
		{"is not", "tom", true},
		{"in", "alice, tomas, bob", true},
		{"not in", "alice, bob", true},
		{"in", "alice, bob", false},
		{"regexp", "^tom", true},
	}
	for _, c := range cases {
		if got := Evaluate(row, cond("name", c.op, c.value), false); got != c.want {
			t.Errorf("%q %q = %v, want %v", c.op, c.value, got, c.want)
		}
	}
}

func TestCaseSensitiveMembershipAndRegex(t *testing.T) {
	row := Row{"name": "Tomas"}
	if Evaluate(row, cond("name", "in", "tomas, bob"), true) {
		t.Error("case-sensitive membership should not match 'tomas'")
	}
	if Evaluate(row, cond("name", "regexp", "^tom"), true) {
		t.Error("case-sensitive regex should not match '^tom'")
	}
	if !Evaluate(row, cond("name", "regexp", "^Tom"), true) {
		t.Error("case-sensitive regex should match '^Tom'")
	}
}

func TestInvalidRegexIsFalse(t *testing.T) {
	row := Row{"name": "tom"}
	if Evaluate(row, cond("name", "regexp", "[unclosed"), false) {
		t.Error("invalid regex pattern must evaluate false, not raise")
	}
}

func TestNumericOperators(t *testing.T) {
	row := Row{"amt": "20"}
	cases := []struct {
		op, value string
		want      bool
	}{
		{">", "15", true},
		{"<", "15", false},
		{">=", "20", true},
		{"<=", "19.99", false},
		{"=", "20.0", true},
		{"!=", "21", true},
	}
	for _, c := range cases {
		if got := Evaluate(row, cond("amt", c.op, c.value), false); got != c.want {
			t.Errorf("amt %s %s = %v, want %v", c.op, c.value, got, c.want)
		}
	}
}

func TestNonNumericOperandIsFalse(t *testing.T) {
	if Evaluate(Row{"amt": "abc"}, cond("amt", ">", "15"), false) {
		t.Error("non-numeric row value must make the condition false")
	}
	if Evaluate(Row{"amt": "20"}, cond("amt", ">", "lots"), false) {
		t.Error("non-numeric comparison value must make the condition false")
	}
	if Evaluate(Row{"amt": ""}, cond("amt", ">", "15"), false) {
		t.Error("blank row value must make the condition false")
	}
}

func TestDateOperators(t *testing.T) {
	row := Row{"joined": "2026-01-15"}
	if !Evaluate(row, cond("joined", "is before", "2026-02-01"), false) {
		t.Error("2026-01-15 is before 2026-02-01")
	}
	if !Evaluate(row, cond("joined", "is after", "2025-12-31"), false) {
		t.Error("2026-01-15 is after 2025-12-31")
	}
	if Evaluate(row, cond("joined", "is before", "not-a-date"), false) {
		t.Error("unparseable comparison date must make the condition false")
	}
	if Evaluate(Row{"joined": "soon"}, cond("joined", "is before", "2026-02-01"), false) {
		t.Error("unparseable row date must make the condition false")
	}
}

func TestNestedGroups(t *testing.T) {
	// name is tom AND (age > 40 OR city is berlin)
	row := Row{"name": "tom", "age": "30", "city": "Berlin"}
	g := groupOf(LogicAnd,
		cond("name", "is", "tom"),
		groupOf(LogicOr,
			cond("age", ">", "40"),
			cond("city", "is", "berlin"),
		),
	)
	if !Evaluate(row, g, false) {
		t.Error("nested OR should rescue the AND group")
	}
}

// ============================================================================
// TREE MUTATION TESTS — path-copying by node id
// ============================================================================

func TestInsertNodeIsPathCopying(t *testing.T) {
	root := NewGroup(LogicAnd)
	child := cond("a", "is", "1")

	next, found := InsertNode(root, root.ID, child)
	if !found {
		t.Fatal("parent group not found")
	}
	if len(root.Children) != 0 {
		t.Error("original root must be untouched")
	}
	if len(next.Children) != 1 {
		t.Fatalf("new root should have 1 child, has %d", len(next.Children))
	}
	if next.ID != root.ID {
		t.Error("rebuilt root keeps its id")
	}
}

func TestUpdateConditionByID(t *testing.T) {
	c := cond("a", "is", "1")
	root := groupOf(LogicAnd, groupOf(LogicOr, c))

	next, found := UpdateCondition(root, c.ID, "b", ">", "2")
	if !found {
		t.Fatal("condition not found")
	}
	updated := FindNode(next, c.ID).(*Condition)
	if updated.Field != "b" || updated.Operator != ">" || updated.Value != "2" {
		t.Errorf("condition not updated: %+v", updated)
	}
	original := FindNode(root, c.ID).(*Condition)
	if original.Field != "a" {
		t.Error("original tree must be untouched")
	}
}

func TestRemoveNodeByID(t *testing.T) {
	c1 := cond("a", "is", "1")
	c2 := cond("b", "is", "2")
	inner := groupOf(LogicOr, c1, c2)
	root := groupOf(LogicAnd, inner)

	next, found := RemoveNode(root, c1.ID)
	if !found {
		t.Fatal("node not found")
	}
	if FindNode(next, c1.ID) != nil {
		t.Error("removed node still reachable")
	}
	if FindNode(next, c2.ID) == nil {
		t.Error("sibling must survive removal")
	}
	if FindNode(root, c1.ID) == nil {
		t.Error("original tree must be untouched")
	}
}

func TestRootCannotBeRemoved(t *testing.T) {
	root := NewGroup(LogicAnd)
	if _, found := RemoveNode(root, root.ID); found {
		t.Error("root group must not be removable")
	}
}

func TestSetGroupLogic(t *testing.T) {
	inner := NewGroup(LogicAnd)
	root := groupOf(LogicAnd, inner)

	next, found := SetGroupLogic(root, inner.ID, LogicOr)
	if !found {
		t.Fatal("group not found")
	}
	if FindNode(next, inner.ID).(*Group).Logic != LogicOr {
		t.Error("logic not switched")
	}
	if inner.Logic != LogicAnd {
		t.Error("original group must be untouched")
	}
}

func TestValidateFilter(t *testing.T) {
	good := groupOf(LogicAnd, cond("a", "is", "1"))
	if err := ValidateFilter(good); err != nil {
		t.Errorf("valid tree rejected: %v", err)
	}
	bad := groupOf(LogicAnd, cond("a", "sounds like", "1"))
	if err := ValidateFilter(bad); err == nil {
		t.Error("unknown operator must be rejected at the boundary")
	}
}
