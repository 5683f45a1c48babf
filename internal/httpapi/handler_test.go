package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"breedcore/internal/blob"
	"breedcore/internal/core"
	"breedcore/pkg/domain"
)

type testAPI struct {
	t      *testing.T
	svc    *core.Service
	server *httptest.Server
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	svc := core.NewInMemoryService()
	svc.UseBlobStore(blob.NewMemory())
	server := httptest.NewServer(New(svc, nil).Router())
	t.Cleanup(server.Close)
	return &testAPI{t: t, svc: svc, server: server}
}

func (a *testAPI) do(method, path string, body any) (*http.Response, []byte) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	if err != nil {
		a.t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		a.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		a.t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func (a *testAPI) createFemale(heatDates ...string) map[string]any {
	a.t.Helper()
	resp, raw := a.do(http.MethodPost, "/api/v1/females", map[string]any{
		"name": "Dam", "species": "cat", "hemisphere": "north", "heatDates": heatDates,
	})
	if resp.StatusCode != http.StatusCreated {
		a.t.Fatalf("create female: %d %s", resp.StatusCode, raw)
	}
	return decodeMap(a.t, raw)
}

func (a *testAPI) createPlan(femaleID string) map[string]any {
	a.t.Helper()
	resp, raw := a.do(http.MethodPost, "/api/v1/plans", map[string]any{
		"name": "Spring litter", "femaleId": femaleID,
	})
	if resp.StatusCode != http.StatusCreated {
		a.t.Fatalf("create plan: %d %s", resp.StatusCode, raw)
	}
	return decodeMap(a.t, raw)
}

func decodeMap(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return m
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)
	resp, raw := api.do(http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: %d %s", resp.StatusCode, raw)
	}
}

func TestMetricsEndpointServes(t *testing.T) {
	api := newTestAPI(t)
	resp, _ := api.do(http.MethodGet, "/metrics", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics: %d", resp.StatusCode)
	}
}

func TestCycleSummaryIncludesSeasonalWindow(t *testing.T) {
	api := newTestAPI(t)
	female := api.createFemale("2026-01-01", "2026-01-22", "2026-02-12")

	resp, raw := api.do(http.MethodGet, fmt.Sprintf("/api/v1/females/%s/cycle-summary", female["id"]), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary: %d %s", resp.StatusCode, raw)
	}
	body := decodeMap(t, raw)
	if body["avg_all"] == nil {
		t.Fatalf("missing average: %s", raw)
	}
	if body["seasonalWindow"] == nil {
		t.Fatalf("cats are seasonal, window expected: %s", raw)
	}
}

func TestOverridePatchContract(t *testing.T) {
	api := newTestAPI(t)
	female := api.createFemale()
	path := fmt.Sprintf("/api/v1/females/%s", female["id"])

	// Out-of-range value fails with the exact contract message.
	resp, raw := api.do(http.MethodPatch, path, map[string]any{"femaleCycleLenOverrideDays": 10})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", resp.StatusCode, raw)
	}
	body := decodeMap(t, raw)
	if body["error"] != "must be an integer between 30 and 730 days" {
		t.Fatalf("wrong message: %s", raw)
	}
	if body["field"] != "femaleCycleLenOverrideDays" {
		t.Fatalf("wrong field: %s", raw)
	}

	// Non-numeric values fail the same way.
	resp, raw = api.do(http.MethodPatch, path, map[string]any{"femaleCycleLenOverrideDays": "soon"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric, got %d %s", resp.StatusCode, raw)
	}

	// A valid value sets the override.
	resp, raw = api.do(http.MethodPatch, path, map[string]any{"femaleCycleLenOverrideDays": 200})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set override: %d %s", resp.StatusCode, raw)
	}
	if decodeMap(t, raw)["cycle_override"] == nil {
		t.Fatalf("override not set: %s", raw)
	}

	// Explicit null clears it.
	resp, raw = api.do(http.MethodPatch, path, map[string]any{"femaleCycleLenOverrideDays": nil})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clear override: %d %s", resp.StatusCode, raw)
	}
	if decodeMap(t, raw)["cycle_override"] != nil {
		t.Fatalf("null must clear the override: %s", raw)
	}

	// A payload without the field leaves it alone.
	resp, _ = api.do(http.MethodPatch, path, map[string]any{"femaleCycleLenOverrideDays": 200})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("re-set override: %d", resp.StatusCode)
	}
	resp, raw = api.do(http.MethodPatch, path, map[string]any{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("empty patch: %d %s", resp.StatusCode, raw)
	}
	if decodeMap(t, raw)["cycle_override"] == nil {
		t.Fatalf("absent field must not clear the override: %s", raw)
	}
}

func TestPlanEventLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	female := api.createFemale("2026-01-01", "2026-01-22", "2026-02-12")
	plan := api.createPlan(female["id"].(string))
	planPath := fmt.Sprintf("/api/v1/plans/%s", plan["id"])

	resp, raw := api.do(http.MethodPost, planPath+"/events", map[string]any{"stage": "attempted", "date": "2026-03-07"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("record attempt: %d %s", resp.StatusCode, raw)
	}
	body := decodeMap(t, raw)
	recorded := body["plan"].(map[string]any)
	if recorded["stage"] != "attempted" {
		t.Fatalf("stage not advanced: %s", raw)
	}

	// Earlier confirmation date conflicts.
	resp, raw = api.do(http.MethodPost, planPath+"/events", map[string]any{"stage": "confirmed", "date": "2026-03-01"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d %s", resp.StatusCode, raw)
	}
	if decodeMap(t, raw)["code"] != "date_out_of_sequence" {
		t.Fatalf("wrong code: %s", raw)
	}

	// Stale version conflicts.
	resp, raw = api.do(http.MethodPost, planPath+"/events", map[string]any{"stage": "confirmed", "date": "2026-04-04", "expectedVersion": 99})
	if resp.StatusCode != http.StatusConflict || decodeMap(t, raw)["code"] != "stale_write" {
		t.Fatalf("expected stale_write 409, got %d %s", resp.StatusCode, raw)
	}

	// Birth creates and links the offspring group.
	resp, raw = api.do(http.MethodPost, planPath+"/events", map[string]any{"stage": "birthed", "date": "2026-05-11"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("record birth: %d %s", resp.StatusCode, raw)
	}
	recorded = decodeMap(t, raw)["plan"].(map[string]any)
	groupID, _ := recorded["offspring_group_id"].(string)
	if groupID == "" {
		t.Fatalf("birth must link a group: %s", raw)
	}
	resp, _ = api.do(http.MethodGet, "/api/v1/groups/"+groupID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("linked group not retrievable: %d", resp.StatusCode)
	}
}

func TestDeletionGuardOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	female := api.createFemale("2026-01-01", "2026-01-22", "2026-02-12")
	plan := api.createPlan(female["id"].(string))
	planPath := fmt.Sprintf("/api/v1/plans/%s", plan["id"])

	api.do(http.MethodPost, planPath+"/events", map[string]any{"stage": "attempted", "date": "2026-03-07"})
	resp, raw := api.do(http.MethodPost, planPath+"/events", map[string]any{"stage": "birthed", "date": "2026-05-11"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("record birth: %d %s", resp.StatusCode, raw)
	}
	groupID := decodeMap(t, raw)["plan"].(map[string]any)["offspring_group_id"].(string)

	resp, raw = api.do(http.MethodPost, "/api/v1/groups/"+groupID+"/offspring", map[string]any{"name": "kit-1"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add offspring: %d %s", resp.StatusCode, raw)
	}
	kitID := decodeMap(t, raw)["id"].(string)

	resp, raw = api.do(http.MethodPatch, "/api/v1/offspring/"+kitID+"/flags", map[string]any{"hasContract": true, "hasBuyer": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set flags: %d %s", resp.StatusCode, raw)
	}

	resp, raw = api.do(http.MethodGet, "/api/v1/offspring/"+kitID+"/deletion-evaluation", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("evaluate: %d %s", resp.StatusCode, raw)
	}
	var decision domain.DeletionDecision
	if err := json.Unmarshal(raw, &decision); err != nil {
		t.Fatalf("decode decision: %v", err)
	}
	if decision.Outcome != domain.OutcomeBlocked {
		t.Fatalf("expected BLOCKED, got %+v", decision)
	}
	if len(decision.Blockers) != 2 || decision.Blockers[0] != "hasBuyer" || decision.Blockers[1] != "hasContract" {
		t.Fatalf("expected [hasBuyer hasContract], got %+v", decision.Blockers)
	}

	// Deleting a blocked record returns the decision with a conflict status.
	resp, raw = api.do(http.MethodDelete, "/api/v1/offspring/"+kitID, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d %s", resp.StatusCode, raw)
	}

	// Group deletion aggregates member blockers.
	resp, raw = api.do(http.MethodGet, "/api/v1/groups/"+groupID+"/deletion-evaluation", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("group evaluate: %d %s", resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, &decision); err != nil {
		t.Fatalf("decode group decision: %v", err)
	}
	if decision.Outcome != domain.OutcomeBlocked {
		t.Fatalf("group with members must be blocked, got %+v", decision)
	}
}

func TestNotFoundMapping(t *testing.T) {
	api := newTestAPI(t)
	resp, raw := api.do(http.MethodGet, "/api/v1/females/missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d %s", resp.StatusCode, raw)
	}
	if decodeMap(t, raw)["code"] != "not_found" {
		t.Fatalf("wrong code: %s", raw)
	}
}

func TestUnknownSpeciesRejected(t *testing.T) {
	api := newTestAPI(t)
	resp, raw := api.do(http.MethodPost, "/api/v1/females", map[string]any{"name": "Dam", "species": "dragon"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", resp.StatusCode, raw)
	}
}

func TestAttachDocumentOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	female := api.createFemale("2026-01-01", "2026-01-22", "2026-02-12")
	plan := api.createPlan(female["id"].(string))
	planPath := fmt.Sprintf("/api/v1/plans/%s", plan["id"])

	api.do(http.MethodPost, planPath+"/events", map[string]any{"stage": "attempted", "date": "2026-03-07"})
	_, raw := api.do(http.MethodPost, planPath+"/events", map[string]any{"stage": "birthed", "date": "2026-05-11"})
	groupID := decodeMap(t, raw)["plan"].(map[string]any)["offspring_group_id"].(string)
	_, raw = api.do(http.MethodPost, "/api/v1/groups/"+groupID+"/offspring", map[string]any{"name": "kit-1"})
	kitID := decodeMap(t, raw)["id"].(string)

	req, err := http.NewRequest(http.MethodPost,
		api.server.URL+"/api/v1/offspring/"+kitID+"/documents?filename=contract.pdf",
		strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("attach: %d %s", resp.StatusCode, body)
	}

	// The document flag now blocks deletion.
	_, raw = api.do(http.MethodGet, "/api/v1/offspring/"+kitID+"/deletion-evaluation", nil)
	var decision domain.DeletionDecision
	if err := json.Unmarshal(raw, &decision); err != nil {
		t.Fatalf("decode decision: %v", err)
	}
	if decision.Outcome != domain.OutcomeBlocked {
		t.Fatalf("expected document blocker, got %+v", decision)
	}
}
