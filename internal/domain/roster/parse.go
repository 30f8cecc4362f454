package roster

// Workbook is the minimal view of an uploaded spreadsheet the parser needs.
// Rows returns the raw grid of a sheet, first row included.
type Workbook interface {
	SheetNames() []string
	Rows(sheet string) [][]Cell
}

// Fixed column layout of a roster sheet (0-indexed).
const (
	colEmployeeName = iota
	colEmployeePhone
	colEmployeeAddress
	colPayRate
	colRole
	colHoursWorked
	colClientName
	colClientAddress
	colCleaningValue
	colHouseSize
	colPaymentMethod
	colDayOfCleaning
	colTimeOfCleaning
	colSpecialRequest
	colClientPhone
	colTypeClean
	colTeamExpenses // read only on rows that open an employee
)

// rowState is the accumulator folded over the rows of a single sheet.
type rowState struct {
	cursor    *Employee
	employees []Employee
	clients   []Client
	dropped   int
}

// Parse walks every sheet top to bottom and splits rows into employees and
// the clients they own. The team of every record is the sheet name. It never
// fails: malformed cells fall back to zero values.
func Parse(wb Workbook) ParseResult {
	out := ParseResult{Employees: []Employee{}, Clients: []Client{}}
	if wb == nil {
		return out
	}
	for _, sheet := range wb.SheetNames() {
		rows := wb.Rows(sheet)
		if len(rows) <= 1 {
			continue
		}
		state := rowState{}
		for _, row := range rows {
			state = parseRow(state, sheet, row)
		}
		out.Employees = append(out.Employees, state.employees...)
		out.Clients = append(out.Clients, state.clients...)
		out.DroppedClientRows += state.dropped
	}
	return out
}

func parseRow(state rowState, sheet string, row []Cell) rowState {
	if emp, ok := employeeFromRow(sheet, row); ok {
		state.employees = append(state.employees, emp)
		state.cursor = &emp
	}

	if !opensRecord(cellAt(row, colClientName)) {
		return state
	}
	if state.cursor == nil {
		state.dropped++
		return state
	}
	state.clients = append(state.clients, clientFromRow(state.cursor.Team, row))
	return state
}

func opensRecord(c Cell) bool {
	return c.Truthy() && c.Text() != ""
}

func employeeFromRow(sheet string, row []Cell) (Employee, bool) {
	name := cellAt(row, colEmployeeName)
	if !opensRecord(name) {
		return Employee{}, false
	}
	emp := Employee{
		Name:        name.Text(),
		Phone:       cellAt(row, colEmployeePhone).Text(),
		Address:     cellAt(row, colEmployeeAddress).Text(),
		PayRate:     cellAt(row, colPayRate).Amount(),
		Role:        cellAt(row, colRole).Text(),
		HoursWorked: cellAt(row, colHoursWorked).Amount(),
		Team:        sheet,
	}
	if hint := cellAt(row, colTeamExpenses); hint.Kind == CellNumber {
		expenses := hint.Amount()
		emp.TeamExpenses = &expenses
	}
	return emp, true
}

func clientFromRow(team string, row []Cell) Client {
	return Client{
		Name:           cellAt(row, colClientName).Text(),
		Address:        cellAt(row, colClientAddress).Text(),
		CleaningValue:  cellAt(row, colCleaningValue).Amount(),
		HouseSize:      cellAt(row, colHouseSize).Amount(),
		PaymentMethod:  cellAt(row, colPaymentMethod).Text(),
		DayOfCleaning:  DecodeDate(cellAt(row, colDayOfCleaning)),
		TimeOfCleaning: DecodeTime(cellAt(row, colTimeOfCleaning)),
		SpecialRequest: cellAt(row, colSpecialRequest).Text(),
		Phone:          cellAt(row, colClientPhone).Text(),
		TypeClean:      cellAt(row, colTypeClean).Truthy(),
		Team:           team,
	}
}
