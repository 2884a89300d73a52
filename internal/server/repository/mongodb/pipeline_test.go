package mongodb

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

// The pipelines run server-side, so these tests pin their shape: one
// $set stage, correctly parameterized, and marshalable as BSON. Every
// caller-supplied value must arrive wrapped in $literal so strings that
// start with "$" are stored verbatim instead of resolving as field paths.

func marshalStage(t *testing.T, stage bson.D) bson.M {
	t.Helper()
	raw, err := bson.Marshal(stage)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}

func unwrapLiteral(t *testing.T, v any) any {
	t.Helper()
	m, ok := v.(bson.M)
	if !ok {
		t.Fatalf("value %v (%T) is not $literal-wrapped", v, v)
	}
	inner, ok := m["$literal"]
	if !ok {
		t.Fatalf("value %v lacks $literal", m)
	}
	return inner
}

func TestRecentPipelineShape(t *testing.T) {
	p := recentPipeline("$r42", 10)
	if len(p) != 1 {
		t.Fatalf("stages = %d", len(p))
	}
	m := marshalStage(t, p[0])
	set, ok := m["$set"].(bson.M)
	if !ok {
		t.Fatalf("no $set stage: %v", m)
	}
	slice, ok := set["recentlyViewed"].(bson.M)["$slice"].(bson.A)
	if !ok {
		t.Fatalf("no $slice: %v", set)
	}
	if limit, _ := slice[1].(int32); limit != 10 {
		t.Fatalf("slice limit = %v", slice[1])
	}
	concat := slice[0].(bson.M)["$concatArrays"].(bson.A)
	head := concat[0].(bson.A)
	if len(head) != 1 || unwrapLiteral(t, head[0]) != "$r42" {
		t.Fatalf("prepended head = %v", head)
	}
	filter := concat[1].(bson.M)["$filter"].(bson.M)
	cond := filter["cond"].(bson.M)["$ne"].(bson.A)
	if unwrapLiteral(t, cond[1]) != "$r42" {
		t.Fatalf("filter cond = %v", cond)
	}
}

func TestNotePipelineShape(t *testing.T) {
	// dollar-prefixed free text must survive as text, never as a path
	const text = "$0.50 cheaper with store brand"
	p := notePipeline("r42", text)
	if len(p) != 1 {
		t.Fatalf("stages = %d", len(p))
	}
	m := marshalStage(t, p[0])
	set, ok := m["$set"].(bson.M)
	if !ok {
		t.Fatalf("no $set stage: %v", m)
	}
	cond, ok := set["recipeNotes"].(bson.M)["$cond"].(bson.A)
	if !ok || len(cond) != 3 {
		t.Fatalf("no three-arm $cond: %v", set)
	}
	in := cond[0].(bson.M)["$in"].(bson.A)
	if unwrapLiteral(t, in[0]) != "r42" {
		t.Fatalf("membership probe id = %v", in[0])
	}
	// replace arm rewrites the matching entry
	replaced := cond[1].(bson.M)["$map"].(bson.M)
	inner := replaced["in"].(bson.M)["$cond"].(bson.A)
	eq := inner[0].(bson.M)["$eq"].(bson.A)
	if unwrapLiteral(t, eq[1]) != "r42" {
		t.Fatalf("match comparison = %v", eq)
	}
	entry := unwrapLiteral(t, inner[1]).(bson.M)
	if entry["recipeId"] != "r42" || entry["notes"] != text {
		t.Fatalf("replacement entry = %v", entry)
	}
	// append arm concatenates exactly one new entry
	appended := cond[2].(bson.M)["$concatArrays"].(bson.A)
	tail := appended[1].(bson.A)
	if len(tail) != 1 {
		t.Fatalf("append tail = %v", tail)
	}
	tailEntry := unwrapLiteral(t, tail[0]).(bson.M)
	if tailEntry["notes"] != text {
		t.Fatalf("appended entry = %v", tailEntry)
	}
}
