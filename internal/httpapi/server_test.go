package httpapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openvarco/varco/internal/auth"
	"github.com/openvarco/varco/internal/httpapi"
	"github.com/openvarco/varco/internal/varco/service"
	"github.com/openvarco/varco/internal/varco/store/memory"
	"github.com/openvarco/varco/internal/varco/types"
)

var testZones = []string{"corridor", "gate", "entrance"}

const (
	testUser     = "manager"
	testPassword = "hunter2-but-longer"
)

// newTestServer wires up the full dependency graph using in-memory stores
// and returns an httptest.Server whose URL can be hit with a plain http.Client.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	records := memory.NewAccessRecordStore()
	scanners := memory.NewScannerStore()

	gen := service.NewCodeGenerator(records, 5, 50)
	accessSvc := service.NewAccessService(records, gen, testZones)
	validationSvc := service.NewValidationService(records)
	scannerSvc := service.NewScannerService(scanners, time.Minute)

	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	authMgr := auth.NewManager(testUser, hash, time.Hour)

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:            log.New(io.Discard, "", 0),
		Addr:              ":0",
		AccessService:     accessSvc,
		ValidationService: validationSvc,
		ScannerService:    scannerSvc,
		Auth:              authMgr,
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func login(t *testing.T, ts *httptest.Server) string {
	t.Helper()

	body, _ := json.Marshal(types.LoginRequest{Username: testUser, Password: testPassword})
	resp, err := http.Post(ts.URL+"/v1/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}

	var lr types.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return lr.Token
}

func doAuthed(t *testing.T, ts *httptest.Server, token, method, path string, body []byte) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, ts.URL+path, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func createCode(t *testing.T, ts *httptest.Server, token string) string {
	t.Helper()

	body := []byte(`{"name":"Alice","surname":"Smith","date_in":"2025-01-10","date_out":"2025-01-12"}`)
	resp := doAuthed(t, ts, token, http.MethodPost, "/v1/codes", body)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}

	var cr types.CreateCodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return cr.Code
}

// ── Validation protocol ──────────────────────────────────────────────────────

func TestValidate_ActiveCode_200(t *testing.T) {
	ts := newTestServer(t)
	code := createCode(t, ts, login(t, ts))

	body := []byte(`{"code":"` + code + `"}`)
	resp, err := http.Post(ts.URL+"/v1/validate/gate", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var vr types.ValidateResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if vr.Status != "success" {
		t.Errorf("expected status=success, got %q", vr.Status)
	}
}

func TestValidate_InactiveZone_403(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)
	code := createCode(t, ts, token)

	resp := doAuthed(t, ts, token, http.MethodPut, "/v1/codes/"+code+"/zones/gate", []byte(`{"active":false}`))
	resp.Body.Close()

	body := []byte(`{"code":"` + code + `"}`)
	vresp, err := http.Post(ts.URL+"/v1/validate/gate", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer vresp.Body.Close()

	if vresp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", vresp.StatusCode)
	}

	var vr types.ValidateResponse
	if err := json.NewDecoder(vresp.Body).Decode(&vr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if vr.Status != "inactive" {
		t.Errorf("expected status=inactive, got %q", vr.Status)
	}

	// Other zones keep answering success.
	body = []byte(`{"code":"` + code + `"}`)
	cresp, err := http.Post(ts.URL+"/v1/validate/corridor", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post corridor: %v", err)
	}
	defer cresp.Body.Close()
	if cresp.StatusCode != http.StatusOK {
		t.Errorf("expected corridor 200, got %d", cresp.StatusCode)
	}
}

func TestValidate_UnknownCode_404(t *testing.T) {
	ts := newTestServer(t)

	body := []byte(`{"code":"DOESNOTEXIST"}`)
	resp, err := http.Post(ts.URL+"/v1/validate/gate", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var vr types.ValidateResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if vr.Status != "not_found" {
		t.Errorf("expected status=not_found, got %q", vr.Status)
	}
}

func TestValidate_MissingCode_400(t *testing.T) {
	ts := newTestServer(t)

	body := []byte(`{"code":"  "}`)
	resp, err := http.Post(ts.URL+"/v1/validate/gate", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestValidate_FreeFormCase(t *testing.T) {
	ts := newTestServer(t)
	code := createCode(t, ts, login(t, ts))

	body, _ := json.Marshal(types.ValidateRequest{Code: "  " + strings.ToLower(code) + " "})
	resp, err := http.Post(ts.URL+"/v1/validate/entrance", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for case-insensitive code, got %d", resp.StatusCode)
	}
}

func TestValidate_IgnoresUnknownFields(t *testing.T) {
	ts := newTestServer(t)
	code := createCode(t, ts, login(t, ts))

	// Scanner firmware tags requests with extras the server never asked for.
	body := []byte(`{"code":"` + code + `","timestamp":"2025-01-10T08:00:00Z","rssi":-61}`)
	resp, err := http.Post(ts.URL+"/v1/validate/gate", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 despite extra JSON fields, got %d", resp.StatusCode)
	}
}

// ── Management protocol ──────────────────────────────────────────────────────

func TestManagement_RequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	paths := []struct {
		method, path string
	}{
		{http.MethodPost, "/v1/codes"},
		{http.MethodGet, "/v1/codes"},
		{http.MethodDelete, "/v1/codes/X7B2Q"},
		{http.MethodPost, "/v1/codes/X7B2Q/zones/gate/toggle"},
		{http.MethodGet, "/v1/scanners"},
	}

	for _, p := range paths {
		req, _ := http.NewRequest(p.method, ts.URL+p.path, bytes.NewReader(nil))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", p.method, p.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", p.method, p.path, resp.StatusCode)
		}
	}
}

func TestLogin_BadPassword_401(t *testing.T) {
	ts := newTestServer(t)

	body := []byte(`{"username":"manager","password":"wrong"}`)
	resp, err := http.Post(ts.URL+"/v1/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateCode_RejectionReasons(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)

	cases := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "bad date format",
			body:       `{"name":"Alice","surname":"Smith","date_in":"10-01-2025","date_out":"2025-01-12"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_date_format",
		},
		{
			name:       "inverted range",
			body:       `{"name":"Alice","surname":"Smith","date_in":"2025-03-05","date_out":"2025-03-01"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "date_range_invalid",
		},
		{
			name:       "missing name",
			body:       `{"surname":"Smith","date_in":"2025-01-10","date_out":"2025-01-12"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_input",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doAuthed(t, ts, token, http.MethodPost, "/v1/codes", []byte(tc.body))
			defer resp.Body.Close()

			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, resp.StatusCode)
			}

			var eb struct {
				Error string `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&eb); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if eb.Error != tc.wantError {
				t.Errorf("expected error=%s, got %q", tc.wantError, eb.Error)
			}
		})
	}
}

func TestCreateCode_Duplicate_409(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)
	_ = createCode(t, ts, token)

	body := []byte(`{"name":"Alice","surname":"Smith","date_in":"2025-01-10","date_out":"2025-01-12"}`)
	resp := doAuthed(t, ts, token, http.MethodPost, "/v1/codes", body)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestListCodes_IncludesZoneStates(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)
	code := createCode(t, ts, token)

	resp := doAuthed(t, ts, token, http.MethodGet, "/v1/codes", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var lr types.ListCodesResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if lr.Count != 1 || len(lr.Codes) != 1 {
		t.Fatalf("expected 1 code, got %d", lr.Count)
	}
	entry := lr.Codes[0]
	if entry.Code != code {
		t.Errorf("expected code %s, got %s", code, entry.Code)
	}
	for _, zone := range testZones {
		active, ok := entry.Zones[zone]
		if !ok {
			t.Errorf("expected zone %s present", zone)
		}
		if !active {
			t.Errorf("expected zone %s active", zone)
		}
	}
}

func TestToggleZone_FlipsAndReports(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)
	code := createCode(t, ts, token)

	resp := doAuthed(t, ts, token, http.MethodPost, "/v1/codes/"+code+"/zones/gate/toggle", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var zr types.ZoneStateResponse
	if err := json.NewDecoder(resp.Body).Decode(&zr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if zr.Active {
		t.Error("expected active=false after toggling a fresh code")
	}
}

func TestToggleZone_InvalidZone_400(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)
	code := createCode(t, ts, token)

	resp := doAuthed(t, ts, token, http.MethodPost, "/v1/codes/"+code+"/zones/rooftop/toggle", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestToggleZone_UnknownCode_404(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)

	resp := doAuthed(t, ts, token, http.MethodPost, "/v1/codes/NOSUCH/zones/gate/toggle", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDeleteCode_ValidationReturnsNotFoundAfter(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)
	code := createCode(t, ts, token)

	resp := doAuthed(t, ts, token, http.MethodDelete, "/v1/codes/"+code, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}

	for _, zone := range testZones {
		body := []byte(`{"code":"` + code + `"}`)
		vresp, err := http.Post(ts.URL+"/v1/validate/"+zone, "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("post %s: %v", zone, err)
		}
		vresp.Body.Close()
		if vresp.StatusCode != http.StatusNotFound {
			t.Errorf("zone %s: expected 404 after delete, got %d", zone, vresp.StatusCode)
		}
	}
}

// ── Scanner heartbeats ───────────────────────────────────────────────────────

func TestHeartbeatAndScannerList(t *testing.T) {
	ts := newTestServer(t)

	body := []byte(`{"scanner_id":"gate-01","zone":"gate","firmware_version":"1.0.0"}`)
	resp, err := http.Post(ts.URL+"/v1/heartbeat", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post heartbeat: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var hr types.HeartbeatResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !hr.OK || hr.ScannerID != "gate-01" {
		t.Errorf("unexpected heartbeat response: %+v", hr)
	}

	token := login(t, ts)
	lresp := doAuthed(t, ts, token, http.MethodGet, "/v1/scanners", nil)
	defer lresp.Body.Close()

	var sl types.ScannerListResponse
	if err := json.NewDecoder(lresp.Body).Decode(&sl); err != nil {
		t.Fatalf("decode scanners: %v", err)
	}
	if len(sl.Scanners) != 1 {
		t.Fatalf("expected 1 scanner, got %d", len(sl.Scanners))
	}
	if !sl.Scanners[0].Online {
		t.Error("expected scanner online right after heartbeat")
	}
}

func TestHeartbeat_MissingScannerID_400(t *testing.T) {
	ts := newTestServer(t)

	body := []byte(`{"zone":"gate"}`)
	resp, err := http.Post(ts.URL+"/v1/heartbeat", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
