package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"kakeibo/internal/core"
	"kakeibo/internal/log"
	"kakeibo/internal/render"
	"kakeibo/internal/services"
	"kakeibo/internal/storage"
	"kakeibo/internal/storage/memory"
)

type failingPersister struct {
	storage.Persister
	fail bool
}

func (p *failingPersister) Save(ctx context.Context, entries []core.Entry) error {
	if p.fail {
		return errors.New("disk full")
	}
	return p.Persister.Save(ctx, entries)
}

type testEnv struct {
	srv       *Server
	ledger    *services.LedgerService
	persister *failingPersister
}

func newTestServer(t *testing.T, opts Options) testEnv {
	t.Helper()
	p := &failingPersister{Persister: storage.NewSlotPersister(memory.New())}
	ledger, err := services.OpenLedger(context.Background(), p, services.Options{
		Clock:    func() time.Time { return time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC) },
		Location: time.UTC,
		Logger:   log.Discard(),
	})
	if err != nil {
		t.Fatalf("OpenLedger() error = %v", err)
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	srv := NewServer(":0", ledger, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return testEnv{srv: srv, ledger: ledger, persister: p}
}

func (e testEnv) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func entryForm(date, member, typ, amount string) url.Values {
	return url.Values{
		"date":        {date},
		"member":      {member},
		"type":        {typ},
		"category":    {"給与"},
		"description": {"May"},
		"amount":      {amount},
	}
}

func TestIndexAndHealth(t *testing.T) {
	env := newTestServer(t, Options{})

	rr := env.do(http.MethodGet, "/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"家計簿", `value="2024-05-10"`, render.EmptyMessage, `colspan="7"`, `id="entry-form"`} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("security headers not applied")
	}

	for _, path := range []string{"/healthz", "/readyz", "/metrics", "/static/app.js"} {
		rr := env.do(http.MethodGet, path, nil)
		if rr.Code != http.StatusOK {
			t.Errorf("%s status=%d", path, rr.Code)
		}
	}

	if rr := env.do(http.MethodGet, "/nope", nil); rr.Code != http.StatusNotFound {
		t.Errorf("unknown path status=%d", rr.Code)
	}
}

func TestCreateEntryValidationAndSuccess(t *testing.T) {
	env := newTestServer(t, Options{})

	tests := []struct {
		name string
		form url.Values
	}{
		{"zero amount", entryForm("2024-05-01", "Alice", "income", "0")},
		{"missing member", entryForm("2024-05-01", "", "income", "100")},
		{"non-numeric amount", entryForm("2024-05-01", "Alice", "income", "abc")},
		{"unknown type", entryForm("2024-05-01", "Alice", "gift", "100")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(http.MethodPost, "/entries", tt.form)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status=%d, want 422", rr.Code)
			}
			trigger := rr.Header().Get("HX-Trigger")
			var got map[string]struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal([]byte(trigger), &got); err != nil {
				t.Fatalf("bad HX-Trigger %q: %v", trigger, err)
			}
			n := got["show-notification"]
			if n.Type != "error" || n.Message != render.InvalidInputMessage {
				t.Errorf("notification = %+v", n)
			}
			if len(env.ledger.Snapshot().Entries) != 0 {
				t.Error("rejected entry was stored")
			}
		})
	}

	rr := env.do(http.MethodPost, "/entries", entryForm("2024-05-01", "Alice", "income", "300000"))
	if rr.Code != http.StatusOK {
		t.Fatalf("create status=%d", rr.Code)
	}
	trigger := rr.Header().Get("HX-Trigger")
	for _, want := range []string{`"ledger:refresh"`, `"form:reset":{"date":"2024-05-10"}`, `"entry:added"`} {
		if !strings.Contains(trigger, want) {
			t.Errorf("HX-Trigger missing %s: %s", want, trigger)
		}
	}

	rr = env.do(http.MethodGet, "/ui/ledger", nil)
	body := rr.Body.String()
	if strings.Contains(body, render.EmptyMessage) {
		t.Error("placeholder still shown after add")
	}
	for _, want := range []string{"income-row", "Alice", "収入", "300,000"} {
		if !strings.Contains(body, want) {
			t.Errorf("ledger partial missing %q", want)
		}
	}
}

func TestCreateEntryAcceptsJSON(t *testing.T) {
	env := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(
		`{"date":"2024-05-02","member":"Bob","type":"expense","category":"食費","description":"rice","amount":2500}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	env.srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	entries := env.ledger.Snapshot().Entries
	if len(entries) != 1 || !entries[0].Amount.Equal(core.Yen(2500)) || entries[0].Type != core.Expense {
		t.Errorf("entries = %+v", entries)
	}
}

func TestCreateEntrySaveFailure(t *testing.T) {
	env := newTestServer(t, Options{})
	env.persister.fail = true

	rr := env.do(http.MethodPost, "/entries", entryForm("2024-05-01", "Alice", "income", "10"))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", rr.Code)
	}
	if len(env.ledger.Snapshot().Entries) != 0 {
		t.Error("failed save left an entry behind")
	}
}

func TestDeleteFlow(t *testing.T) {
	env := newTestServer(t, Options{})
	if rr := env.do(http.MethodPost, "/entries", entryForm("2024-05-01", "Alice", "income", "300000")); rr.Code != http.StatusOK {
		t.Fatalf("create status=%d", rr.Code)
	}
	id := env.ledger.Snapshot().Entries[0].ID
	base := "/entries/" + strconv.FormatInt(id, 10)

	rr := env.do(http.MethodPost, base+"/delete", url.Values{})
	if rr.Code != http.StatusOK {
		t.Fatalf("prepare status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), render.ConfirmDeleteMessage) || !strings.Contains(rr.Body.String(), "pending-delete") {
		t.Errorf("confirmation row missing: %s", rr.Body.String())
	}

	rr = env.do(http.MethodPost, base+"/delete/confirm", url.Values{"decision": {"no"}})
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "income-row") {
		t.Fatalf("cancel status=%d body=%s", rr.Code, rr.Body.String())
	}
	if len(env.ledger.Snapshot().Entries) != 1 {
		t.Fatal("cancel removed the entry")
	}

	rr = env.do(http.MethodPost, base+"/delete/confirm", url.Values{"decision": {"yes"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("confirm status=%d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), `"ledger:refresh"`) {
		t.Errorf("confirm should refresh the ledger: %s", rr.Header().Get("HX-Trigger"))
	}

	snap := env.ledger.Snapshot()
	if len(snap.Entries) != 0 || !snap.Summary.Balance.Equal(core.Yen(0)) {
		t.Errorf("after delete = %+v", snap)
	}
	body := env.do(http.MethodGet, "/ui/ledger", nil).Body.String()
	if !strings.Contains(body, render.EmptyMessage) {
		t.Error("placeholder missing after deleting the only entry")
	}

	if rr := env.do(http.MethodPost, base+"/delete", url.Values{}); rr.Code != http.StatusNotFound {
		t.Errorf("delete of missing entry status=%d", rr.Code)
	}
	if rr := env.do(http.MethodPost, "/entries/abc/delete", url.Values{}); rr.Code != http.StatusBadRequest {
		t.Errorf("bad id status=%d", rr.Code)
	}
}

func TestAPIEntries(t *testing.T) {
	env := newTestServer(t, Options{CORSAllowedOrigins: []string{"http://localhost:3000"}})

	rr := env.do(http.MethodGet, "/api/entries", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"entries":[]`) {
		t.Errorf("empty ledger should encode as []: %s", rr.Body.String())
	}

	env.do(http.MethodPost, "/entries", entryForm("2024-05-01", "Alice", "income", "300000"))
	env.do(http.MethodPost, "/entries", entryForm("2024-05-03", "Alice", "expense", "50000"))

	req := httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr = httptest.NewRecorder()
	env.srv.Handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	var payload struct {
		Entries []core.Entry `json:"entries"`
		Summary core.Summary `json:"summary"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Entries) != 2 || payload.Entries[0].Date != "2024-05-03" {
		t.Errorf("entries = %+v", payload.Entries)
	}
	if !payload.Summary.Balance.Equal(core.Yen(250000)) {
		t.Errorf("balance = %v", payload.Summary.Balance)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	env.srv.Handler.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected Access-Control-Allow-Origin %q", got)
	}

	if rr := env.do(http.MethodPost, "/api/entries", url.Values{}); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/entries status=%d", rr.Code)
	}
}

func TestRateLimitOnPosts(t *testing.T) {
	env := newTestServer(t, Options{RateLimitPerMinute: 1})

	if rr := env.do(http.MethodPost, "/entries", entryForm("2024-05-01", "Alice", "income", "1")); rr.Code != http.StatusOK {
		t.Fatalf("first post status=%d", rr.Code)
	}
	if rr := env.do(http.MethodPost, "/entries", entryForm("2024-05-01", "Alice", "income", "1")); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second post status=%d, want 429", rr.Code)
	}
	if rr := env.do(http.MethodGet, "/ui/ledger", nil); rr.Code != http.StatusOK {
		t.Errorf("GET should not be rate limited, status=%d", rr.Code)
	}
}
