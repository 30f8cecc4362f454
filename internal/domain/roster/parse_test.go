package roster

import (
	"reflect"
	"testing"
)

func s(value string) Cell  { return StringCell(value) }
func n(value float64) Cell { return NumberCell(value) }

func aliceRow() []Cell {
	return []Cell{
		s("Alice"), s("555-1111"), s("1 Main St"), n(20), s("Lead"), n(10),
		s("Bob Client"), s("2 Oak St"), n(150), n(1200), s("Cash"), n(45000), n(0.5),
		s("ring bell"), s("555-2222"), n(1),
	}
}

func gridWith(sheets ...any) *Grid {
	g := NewGrid()
	for i := 0; i+1 < len(sheets); i += 2 {
		g.AddSheet(sheets[i].(string), sheets[i+1].([][]Cell))
	}
	return g
}

func TestParseEmployeeAndClientOnSameRow(t *testing.T) {
	wb := gridWith("TeamA", [][]Cell{{}, aliceRow()})

	got := Parse(wb)

	wantEmployee := Employee{
		Name: "Alice", Phone: "555-1111", Address: "1 Main St", PayRate: 20,
		Role: "Lead", HoursWorked: 10, Team: "TeamA",
	}
	wantClient := Client{
		Name: "Bob Client", Address: "2 Oak St", CleaningValue: 150, HouseSize: 1200,
		PaymentMethod: "Cash", DayOfCleaning: "2023-03-15", TimeOfCleaning: "12:00",
		SpecialRequest: "ring bell", Phone: "555-2222", TypeClean: true, Team: "TeamA",
	}
	if len(got.Employees) != 1 || !reflect.DeepEqual(got.Employees[0], wantEmployee) {
		t.Fatalf("unexpected employees: %+v", got.Employees)
	}
	if len(got.Clients) != 1 || !reflect.DeepEqual(got.Clients[0], wantClient) {
		t.Fatalf("unexpected clients: %+v", got.Clients)
	}
	if got.DroppedClientRows != 0 {
		t.Fatalf("expected no dropped rows, got %d", got.DroppedClientRows)
	}
}

func TestParseKeepsFullSerialTime(t *testing.T) {
	row := aliceRow()
	row[colCleaningValue] = n(1e12)
	row[colTimeOfCleaning] = n(45000.5)

	got := Parse(gridWith("TeamA", [][]Cell{{}, row}))

	if len(got.Clients) != 1 {
		t.Fatalf("expected 1 client, got %d", len(got.Clients))
	}
	if got.Clients[0].TimeOfCleaning != "1080012:00" || got.Clients[0].CleaningValue != 1e12 {
		t.Fatalf("unexpected client: %+v", got.Clients[0])
	}
}

func TestParseClientRowsAttachToLatestEmployee(t *testing.T) {
	rows := [][]Cell{
		{s("Alice"), s("555"), s(""), n(18), s("Cleaner"), n(30)},
		{{}, {}, {}, {}, {}, {}, s("Client One"), s("1 Elm"), n(100)},
		{s("Bea"), s("556"), s(""), n(19), s("Cleaner"), n(25)},
		{{}, {}, {}, {}, {}, {}, s("Client Two"), s("2 Elm"), n(120)},
		{{}, {}, {}, {}, {}, {}, s("Client Three"), s("3 Elm"), n(90)},
	}
	got := Parse(gridWith("North", rows))

	if len(got.Employees) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(got.Employees))
	}
	if len(got.Clients) != 3 {
		t.Fatalf("expected 3 clients, got %d", len(got.Clients))
	}
	for _, client := range got.Clients {
		if client.Team != "North" {
			t.Fatalf("expected client team North, got %q", client.Team)
		}
	}
	if got.Clients[2].Name != "Client Three" || got.Clients[2].CleaningValue != 90 {
		t.Fatalf("unexpected last client: %+v", got.Clients[2])
	}
}

func TestParseDropsClientBeforeFirstEmployee(t *testing.T) {
	rows := [][]Cell{
		{{}, {}, {}, {}, {}, {}, s("Early Client"), s("9 Pine")},
		{s("Alice"), s("555")},
		{{}, {}, {}, {}, {}, {}, s("Late Client")},
	}
	got := Parse(gridWith("South", rows))

	if len(got.Clients) != 1 || got.Clients[0].Name != "Late Client" {
		t.Fatalf("expected only the late client, got %+v", got.Clients)
	}
	if got.DroppedClientRows != 1 {
		t.Fatalf("expected 1 dropped row, got %d", got.DroppedClientRows)
	}
}

func TestParseCursorResetsPerSheet(t *testing.T) {
	wb := gridWith(
		"Red", [][]Cell{{s("Alice")}, {s("Ann")}},
		"Blue", [][]Cell{{{}, {}, {}, {}, {}, {}, s("Orphan")}, {s("Bob")}},
	)
	got := Parse(wb)

	if len(got.Clients) != 0 {
		t.Fatalf("client must not attach to an employee of another sheet: %+v", got.Clients)
	}
	if got.DroppedClientRows != 1 {
		t.Fatalf("expected 1 dropped row, got %d", got.DroppedClientRows)
	}
	if len(got.Employees) != 3 || got.Employees[2].Team != "Blue" {
		t.Fatalf("unexpected employees: %+v", got.Employees)
	}
}

func TestParseSkipsSheetsWithSingleRow(t *testing.T) {
	wb := gridWith("Solo", [][]Cell{aliceRow()}, "Empty", [][]Cell{})
	got := Parse(wb)
	if len(got.Employees) != 0 || len(got.Clients) != 0 {
		t.Fatalf("expected nothing from single-row sheets, got %+v", got)
	}
}

func TestParseDefaultsForShortAndMalformedRows(t *testing.T) {
	rows := [][]Cell{
		{s("  Carla  "), n(5551234), {}, s("abc"), {}, n(-4)},
		{s("Dan"), {}, {}, s("17.5")},
	}
	got := Parse(gridWith("West", rows))

	if len(got.Employees) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(got.Employees))
	}
	carla := got.Employees[0]
	if carla.Name != "Carla" || carla.Phone != "5551234" || carla.PayRate != 0 || carla.HoursWorked != 0 {
		t.Fatalf("unexpected defaults: %+v", carla)
	}
	if got.Employees[1].PayRate != 17.5 {
		t.Fatalf("expected numeric text to parse, got %v", got.Employees[1].PayRate)
	}
	if len(got.Clients) != 0 {
		t.Fatalf("expected no clients, got %+v", got.Clients)
	}
}

func TestParseClientDefaults(t *testing.T) {
	rows := [][]Cell{
		{s("Eve")},
		{{}, {}, {}, {}, {}, {}, s("Frank"), {}, s("n/a"), {}, {}, s("tomorrow"), {}, {}, {}, n(0)},
	}
	got := Parse(gridWith("East", rows))
	if len(got.Clients) != 1 {
		t.Fatalf("expected 1 client, got %d", len(got.Clients))
	}
	client := got.Clients[0]
	if client.CleaningValue != 0 || client.DayOfCleaning != "" || client.TimeOfCleaning != "" || client.TypeClean {
		t.Fatalf("unexpected client defaults: %+v", client)
	}
}

func TestParseTeamExpensesHint(t *testing.T) {
	row := append(aliceRow(), n(250))
	got := Parse(gridWith("TeamA", [][]Cell{{}, row, {s("Zed"), {}, {}, {}, {}, {}, {}, {}, {}, {}, {}, {}, {}, {}, {}, {}, s("x")}}))

	if got.Employees[0].TeamExpenses == nil || *got.Employees[0].TeamExpenses != 250 {
		t.Fatalf("expected expenses hint 250, got %v", got.Employees[0].TeamExpenses)
	}
	if got.Employees[1].TeamExpenses != nil {
		t.Fatalf("non-numeric hint must be ignored, got %v", *got.Employees[1].TeamExpenses)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	wb := gridWith(
		"Red", [][]Cell{{}, aliceRow(), {{}, {}, {}, {}, {}, {}, s("Second")}},
		"Blue", [][]Cell{{s("Bob")}, {{}, {}, {}, {}, {}, {}, s("Third"), {}, {}, {}, {}, n(45100), n(0.75)}},
	)
	first := Parse(wb)
	second := Parse(wb)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("parse is not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestParseNilWorkbook(t *testing.T) {
	got := Parse(nil)
	if got.Employees == nil || got.Clients == nil {
		t.Fatal("expected empty, non-nil slices")
	}
}
