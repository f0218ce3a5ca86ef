package bytecode

import (
	"testing"

	"github.com/tidwall/gjson"
)

func TestSerializeQueryableByPath(t *testing.T) {
	prog := compileSource(t, "proc main\necho 1 + 2\nend\n")

	data, err := Serialize(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !gjson.ValidBytes(data) {
		t.Fatal("serialized bytecode is not valid JSON")
	}

	ops := gjson.GetBytes(data, "procs.main.chunk.code.#.op")
	var names []string
	for _, r := range ops.Array() {
		names = append(names, r.String())
	}
	wantLast := "echo"
	if len(names) == 0 || names[len(names)-1] != wantLast {
		t.Fatalf("expected last op to be %q, got %v", wantLast, names)
	}

	constInitName := gjson.GetBytes(data, "const_init.name").String()
	if constInitName != "<const-init>" {
		t.Fatalf("unexpected const_init name: %q", constInitName)
	}
}
