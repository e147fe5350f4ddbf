package symbol

import (
	"sort"
	"sync"

	"github.com/uchchwhash/f77lint/ast"
	"github.com/uchchwhash/f77lint/diag"
	"github.com/uchchwhash/f77lint/token"
)

// CommonRegistry gathers the declared member types of every COMMON
// block across units and files. Units record their observations as
// they are analyzed, possibly concurrently; Check then compares the
// layouts in source order, so the canonical layout of a block is the
// one declared first by file, line and column regardless of which
// worker finished first.
type CommonRegistry struct {
	mu  sync.Mutex
	obs []blockObs
}

// blockObs is one unit's declaration of one block.
type blockObs struct {
	name    string
	unit    string
	pos     token.Position
	members []commonMember
}

// commonMember is one member with its resolved type.
type commonMember struct {
	name string
	typ  string
	pos  token.Position
}

func NewCommonRegistry() *CommonRegistry {
	return &CommonRegistry{}
}

// record collects the unit's COMMON declarations. Multiple COMMON
// statements naming the same block within a unit append to one
// observation.
func (cr *CommonRegistry) record(unit *ast.ProgramUnit, table *Table, rules ImplicitRules) {
	members := make(map[string][]commonMember)
	var order []string
	ast.Inspect(unit, func(node ast.Node) bool {
		st, ok := node.(*ast.Common)
		if !ok {
			return true
		}
		for _, blk := range st.Blocks {
			if _, seen := members[blk.Name]; !seen {
				order = append(order, blk.Name)
			}
			for _, ent := range blk.Entities {
				typ := ""
				if sym := table.Lookup(ent.Name); sym != nil {
					typ = sym.Type
				}
				if typ == "" {
					typ = rules.TypeFor(ent.Name)
				}
				members[blk.Name] = append(members[blk.Name], commonMember{
					name: ent.Name, typ: typ, pos: ent.NamePos,
				})
			}
		}
		return false
	})
	if len(order) == 0 {
		return
	}

	unitName := unit.Name
	if unitName == "" {
		unitName = "main program"
	}
	cr.mu.Lock()
	defer cr.mu.Unlock()
	for _, name := range order {
		ms := members[name]
		pos := unit.Start
		if len(ms) > 0 {
			pos = ms[0].pos
		}
		cr.obs = append(cr.obs, blockObs{name: name, unit: unitName, pos: pos, members: ms})
	}
}

// Check compares every later declaration of a block against the
// earliest one, position by position, and reports differing declared
// types at the later site.
func (cr *CommonRegistry) Check() []diag.Diagnostic {
	cr.mu.Lock()
	obs := make([]blockObs, len(cr.obs))
	copy(obs, cr.obs)
	cr.mu.Unlock()

	sort.SliceStable(obs, func(i, j int) bool {
		a, b := obs[i].pos, obs[j].pos
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Col < b.Col
	})

	var ds []diag.Diagnostic
	canon := make(map[string]*blockObs)
	for i := range obs {
		o := &obs[i]
		first, seen := canon[o.name]
		if !seen {
			canon[o.name] = o
			continue
		}
		display := "/" + o.name + "/"
		if o.name == "" {
			display = "blank COMMON"
		}
		for j, m := range o.members {
			if j >= len(first.members) {
				break
			}
			want := first.members[j].typ
			if want == "" || m.typ == "" || want == m.typ {
				continue
			}
			ds = append(ds, diag.Warningf(diag.CodeCommonConflict, m.pos,
				"%s in COMMON %s is %s here but %s in %s (%s)",
				m.name, display, m.typ, want, first.unit, first.pos.File))
		}
	}
	return ds
}
