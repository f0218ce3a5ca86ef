package bytecode

import "encoding/json"

// dump is the JSON-serializable view of a Program, used by `cylium compile
// --json` for machine-readable bytecode inspection.
type dump struct {
	ConstInit chunkDump           `json:"const_init"`
	Procs     map[string]procDump `json:"procs"`
}

type procDump struct {
	Params []string  `json:"params"`
	Chunk  chunkDump `json:"chunk"`
}

type chunkDump struct {
	Name      string      `json:"name"`
	Constants []string    `json:"constants"`
	Code      []instrDump `json:"code"`
}

type instrDump struct {
	Offset int    `json:"offset"`
	Line   int    `json:"line"`
	Op     string `json:"op"`
	Int    int64  `json:"int,omitempty"`
	Str    string `json:"str,omitempty"`
}

// Serialize renders prog as indented JSON, for `cylium compile --json` and
// for tooling that wants to inspect compiled tapes without linking this package.
func Serialize(prog *Program) ([]byte, error) {
	d := dump{
		ConstInit: dumpChunk(prog.ConstInit),
		Procs:     make(map[string]procDump, len(prog.Procs)),
	}
	for name, pc := range prog.Procs {
		d.Procs[name] = procDump{Params: pc.Params, Chunk: dumpChunk(pc.Chunk)}
	}
	return json.MarshalIndent(d, "", "  ")
}

func dumpChunk(c *Chunk) chunkDump {
	cd := chunkDump{Name: c.Name}
	for _, v := range c.Constants {
		cd.Constants = append(cd.Constants, v.Text())
	}
	for i, in := range c.Code {
		cd.Code = append(cd.Code, instrDump{
			Offset: i,
			Line:   c.Lines[i],
			Op:     opName(in.Op),
			Int:    in.Int,
			Str:    in.Str,
		})
	}
	return cd
}
