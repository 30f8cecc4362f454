package rosterhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"cleanops/internal/domain/audit"
	"cleanops/internal/domain/roster"
	"cleanops/internal/platform/jobs"
	"cleanops/internal/platform/metrics"
	"cleanops/internal/transport/http/middleware"
)

type fakeService struct {
	calls     int
	employees []roster.Employee
	clients   []roster.Client
	err       error
	teams     []roster.Team
	schedules map[string]roster.Schedule
	window    roster.ScheduleRange
}

func (f *fakeService) ImportRoster(ctx context.Context, companyID string, employees []roster.Employee, clients []roster.Client) (roster.ImportResult, error) {
	f.calls++
	f.employees = employees
	f.clients = clients
	if f.err != nil {
		return roster.ImportResult{}, f.err
	}
	teams := map[string]bool{}
	for _, emp := range employees {
		teams[emp.Team] = true
	}
	return roster.ImportResult{Teams: len(teams), Employees: len(employees), Clients: len(clients)}, nil
}

func (f *fakeService) ListTeams(ctx context.Context, companyID string) ([]roster.Team, error) {
	return f.teams, nil
}

func (f *fakeService) TeamSchedule(ctx context.Context, companyID, teamID string, window roster.ScheduleRange) (roster.Schedule, error) {
	f.window = window
	if window.From != "" && window.To != "" && window.From > window.To {
		return roster.Schedule{}, roster.ErrInvalidRange
	}
	schedule, ok := f.schedules[companyID+"/"+teamID]
	if !ok {
		return roster.Schedule{}, roster.ErrTeamNotFound
	}
	return schedule, nil
}

type fakeRuns struct {
	specs []jobs.Spec
}

func (f *fakeRuns) Track(ctx context.Context, spec jobs.Spec, fn func(context.Context) (any, error)) (any, error) {
	f.specs = append(f.specs, spec)
	return fn(ctx)
}

func (f *fakeRuns) List(ctx context.Context, companyID string, limit, offset int) ([]jobs.Run, error) {
	return []jobs.Run{{ID: "run-1", CompanyID: companyID, Source: jobs.SourceUpload, Status: jobs.StatusSucceeded}}, nil
}

type fakeIdempotency struct {
	hashes    map[string]string
	responses map[string]json.RawMessage
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{hashes: map[string]string{}, responses: map[string]json.RawMessage{}}
}

func (f *fakeIdempotency) Check(ctx context.Context, companyID, actorID, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	hash, ok := f.hashes[key]
	if !ok {
		return nil, false, nil
	}
	if hash != requestHash {
		return nil, false, middleware.ErrIdempotencyConflict
	}
	return f.responses[key], true, nil
}

func (f *fakeIdempotency) Save(ctx context.Context, companyID, actorID, endpoint, key, requestHash string, response json.RawMessage) error {
	f.hashes[key] = requestHash
	f.responses[key] = response
	return nil
}

type fakeRecorder struct {
	entries []audit.Entry
}

func (f *fakeRecorder) Record(ctx context.Context, entry audit.Entry) error {
	f.entries = append(f.entries, entry)
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func rosterWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "Red"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	if _, err := f.NewSheet("Blue"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	set := func(sheet, cell string, value any) {
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			t.Fatalf("set %s!%s: %v", sheet, cell, err)
		}
	}
	set("Red", "G1", "Early Client")
	set("Red", "A2", "Alice")
	set("Red", "D2", 20)
	set("Red", "F2", 10)
	set("Red", "G2", "C1")
	set("Red", "I2", 150)
	set("Blue", "A1", "Bob")
	set("Blue", "G2", "C2")

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func multipartRequest(t *testing.T, path, fileName string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func serve(t *testing.T, h *Handler, req *http.Request, authenticated bool) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if authenticated {
		req = req.WithContext(middleware.WithPrincipal(req.Context(), middleware.Principal{AdminID: "admin-1", CompanyID: "company-1"}))
	}
	router := chi.NewRouter()
	h.RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
	return rec, env
}

func TestImportParsesAndImportsWorkbook(t *testing.T) {
	service := &fakeService{}
	runs := &fakeRuns{}
	recorder := &fakeRecorder{}
	collector := metrics.New()
	h := NewHandler(service, runs, nil, recorder, collector, 1<<20)

	rec, env := serve(t, h, multipartRequest(t, "/roster/import", "roster.xlsx", rosterWorkbook(t)), true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}

	var got ImportResponse
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	want := ImportResponse{ImportResult: roster.ImportResult{Teams: 2, Employees: 2, Clients: 2}, DroppedClientRows: 1}
	if got != want {
		t.Fatalf("unexpected response: %+v", got)
	}
	if service.employees[0].Name != "Alice" || service.employees[0].PayRate != 20 || service.clients[0].CleaningValue != 150 {
		t.Fatalf("unexpected parsed rows: %+v %+v", service.employees, service.clients)
	}
	if len(runs.specs) != 1 || runs.specs[0].Source != jobs.SourceUpload || runs.specs[0].FileName != "roster.xlsx" {
		t.Fatalf("unexpected tracked runs: %+v", runs.specs)
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Action != audit.ActionRosterImport {
		t.Fatalf("expected import audit entry, got %+v", recorder.entries)
	}
	snapshot := collector.Snapshot()
	if snapshot["importsTotal"] != uint64(1) || snapshot["rowsImportedTotal"] != uint64(4) {
		t.Fatalf("unexpected metrics: %+v", snapshot)
	}
}

func TestImportFailureReportsNothingSaved(t *testing.T) {
	service := &fakeService{err: roster.ErrImportFailed}
	h := NewHandler(service, &fakeRuns{}, nil, nil, nil, 1<<20)

	rec, env := serve(t, h, multipartRequest(t, "/roster/import", "roster.xlsx", rosterWorkbook(t)), true)
	if rec.Code != http.StatusUnprocessableEntity || env.Error == nil || env.Error.Code != "import_failed" {
		t.Fatalf("expected 422 import_failed, got %d %s", rec.Code, rec.Body.String())
	}
	if env.Error.Message != "import failed, nothing was saved" {
		t.Fatalf("unexpected message %q", env.Error.Message)
	}
}

func TestImportRejectsUnreadableFile(t *testing.T) {
	service := &fakeService{}
	h := NewHandler(service, &fakeRuns{}, nil, nil, nil, 1<<20)

	rec, env := serve(t, h, multipartRequest(t, "/roster/import", "roster.xlsx", []byte("not a workbook")), true)
	if rec.Code != http.StatusBadRequest || env.Error.Code != "invalid_workbook" {
		t.Fatalf("expected 400 invalid_workbook, got %d %s", rec.Code, rec.Body.String())
	}
	if service.calls != 0 {
		t.Fatal("import must not run for an unreadable file")
	}
}

func TestImportRequiresFileAndAuth(t *testing.T) {
	h := NewHandler(&fakeService{}, &fakeRuns{}, nil, nil, nil, 1<<20)

	rec, _ := serve(t, h, multipartRequest(t, "/roster/import", "roster.xlsx", rosterWorkbook(t)), false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("note", "no file"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	writer.Close()
	req := httptest.NewRequest(http.MethodPost, "/roster/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec, env := serve(t, h, req, true)
	if rec.Code != http.StatusBadRequest || env.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestImportIdempotencyReplay(t *testing.T) {
	service := &fakeService{}
	h := NewHandler(service, &fakeRuns{}, newFakeIdempotency(), nil, nil, 1<<20)
	data := rosterWorkbook(t)

	first := multipartRequest(t, "/roster/import", "roster.xlsx", data)
	first.Header.Set("Idempotency-Key", "upload-1")
	rec, firstEnv := serve(t, h, first, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	second := multipartRequest(t, "/roster/import", "roster.xlsx", data)
	second.Header.Set("Idempotency-Key", "upload-1")
	rec, secondEnv := serve(t, h, second, true)
	if rec.Code != http.StatusCreated || rec.Header().Get("Idempotent-Replay") != "true" {
		t.Fatalf("expected replay, got %d headers=%v", rec.Code, rec.Header())
	}
	if !bytes.Equal(firstEnv.Data, secondEnv.Data) {
		t.Fatalf("replayed body differs:\n%s\n%s", firstEnv.Data, secondEnv.Data)
	}
	if service.calls != 1 {
		t.Fatalf("expected a single import, got %d", service.calls)
	}

	third := multipartRequest(t, "/roster/import", "roster.xlsx", append(data, 0))
	third.Header.Set("Idempotency-Key", "upload-1")
	rec, env := serve(t, h, third, true)
	if rec.Code != http.StatusConflict || env.Error.Code != "idempotency_conflict" {
		t.Fatalf("expected 409, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestPreviewDoesNotImport(t *testing.T) {
	service := &fakeService{}
	h := NewHandler(service, &fakeRuns{}, nil, nil, nil, 1<<20)

	rec, env := serve(t, h, multipartRequest(t, "/roster/preview", "roster.xlsx", rosterWorkbook(t)), true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var parsed roster.ParseResult
	if err := json.Unmarshal(env.Data, &parsed); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(parsed.Employees) != 2 || len(parsed.Clients) != 2 || parsed.DroppedClientRows != 1 {
		t.Fatalf("unexpected preview: %+v", parsed)
	}
	if service.calls != 0 {
		t.Fatal("preview must not import")
	}
}

func TestListTeamsAndImports(t *testing.T) {
	service := &fakeService{teams: []roster.Team{{ID: "t1", Name: "Red"}}}
	h := NewHandler(service, &fakeRuns{}, nil, nil, nil, 1<<20)

	rec, env := serve(t, h, httptest.NewRequest(http.MethodGet, "/teams", nil), true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var teams []roster.Team
	if err := json.Unmarshal(env.Data, &teams); err != nil || len(teams) != 1 || teams[0].Name != "Red" {
		t.Fatalf("unexpected teams %s: %v", env.Data, err)
	}

	rec, env = serve(t, h, httptest.NewRequest(http.MethodGet, "/roster/imports?limit=5", nil), true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var runs []jobs.Run
	if err := json.Unmarshal(env.Data, &runs); err != nil || len(runs) != 1 || runs[0].CompanyID != "company-1" {
		t.Fatalf("unexpected runs %s: %v", env.Data, err)
	}
}

func TestListImportsWithoutRunTracker(t *testing.T) {
	h := NewHandler(&fakeService{}, nil, nil, nil, nil, 1<<20)

	rec, env := serve(t, h, httptest.NewRequest(http.MethodGet, "/roster/imports", nil), true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if string(env.Data) != "[]" {
		t.Fatalf("expected empty list, got %s", env.Data)
	}
}

func TestTeamSchedule(t *testing.T) {
	service := &fakeService{schedules: map[string]roster.Schedule{
		"company-1/t1": {
			Team: roster.Team{ID: "t1", Name: "Red"},
			Clients: []roster.ScheduledClient{{ID: "c1", Client: roster.Client{
				Name: "C1", Team: "Red", DayOfCleaning: "2023-03-15", TimeOfCleaning: "12:00", Phone: "555-0100",
			}}},
		},
		"company-2/t2": {Team: roster.Team{ID: "t2", Name: "Blue"}},
	}}
	h := NewHandler(service, nil, nil, nil, nil, 1<<20)

	rec, env := serve(t, h, httptest.NewRequest(http.MethodGet, "/teams/t1/schedule?from=2023-03-13&to=2023-03-19", nil), true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var schedule struct {
		Team    roster.Team `json:"team"`
		Clients []struct {
			ID             string `json:"id"`
			DayOfCleaning  string `json:"dayOfCleaning"`
			TimeOfCleaning string `json:"timeOfCleaning"`
			Phone          string `json:"phone"`
		} `json:"clients"`
	}
	if err := json.Unmarshal(env.Data, &schedule); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if schedule.Team.Name != "Red" || len(schedule.Clients) != 1 {
		t.Fatalf("unexpected schedule %s", env.Data)
	}
	client := schedule.Clients[0]
	if client.ID != "c1" || client.DayOfCleaning != "2023-03-15" || client.TimeOfCleaning != "12:00" || client.Phone != "555-0100" {
		t.Fatalf("unexpected client %+v", client)
	}
	if service.window.From != "2023-03-13" || service.window.To != "2023-03-19" {
		t.Fatalf("window not passed through: %+v", service.window)
	}

	// t2 belongs to another company.
	rec, env = serve(t, h, httptest.NewRequest(http.MethodGet, "/teams/t2/schedule", nil), true)
	if rec.Code != http.StatusNotFound || env.Error.Code != "not_found" {
		t.Fatalf("expected 404, got %d %s", rec.Code, rec.Body.String())
	}

	rec, env = serve(t, h, httptest.NewRequest(http.MethodGet, "/teams/t1/schedule?from=15-03-2023", nil), true)
	if rec.Code != http.StatusBadRequest || env.Error.Code != "validation_error" {
		t.Fatalf("expected 400 for a bad date, got %d %s", rec.Code, rec.Body.String())
	}

	rec, env = serve(t, h, httptest.NewRequest(http.MethodGet, "/teams/t1/schedule?from=2023-03-20&to=2023-03-01", nil), true)
	if rec.Code != http.StatusBadRequest || env.Error.Code != "validation_error" {
		t.Fatalf("expected 400 for a reversed range, got %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = serve(t, h, httptest.NewRequest(http.MethodGet, "/teams/t1/schedule", nil), false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
