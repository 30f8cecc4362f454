package roster

// Grid is an in-memory Workbook. Readers materialise uploads into it.
type Grid struct {
	names []string
	rows  map[string][][]Cell
}

var _ Workbook = (*Grid)(nil)

func NewGrid() *Grid {
	return &Grid{rows: map[string][][]Cell{}}
}

// AddSheet appends a sheet; a repeated name replaces the earlier grid but
// keeps its original position.
func (g *Grid) AddSheet(name string, rows [][]Cell) {
	if _, ok := g.rows[name]; !ok {
		g.names = append(g.names, name)
	}
	g.rows[name] = rows
}

func (g *Grid) SheetNames() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

func (g *Grid) Rows(sheet string) [][]Cell {
	return g.rows[sheet]
}
