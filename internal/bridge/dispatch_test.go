package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openpath-labs/openpath-bridge/internal/ports"
)

type recordedCall struct {
	name    string
	args    []string
	timeout time.Duration
}

// fakeRunner records invocations and answers with a scripted outcome.
type fakeRunner struct {
	calls   []recordedCall
	outcome ports.Outcome
	err     error
	fn      func(name string, args ...string) (ports.Outcome, error)
}

func (f *fakeRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (ports.Outcome, error) {
	f.calls = append(f.calls, recordedCall{name: name, args: args, timeout: timeout})
	if f.fn != nil {
		return f.fn(name, args...)
	}
	return f.outcome, f.err
}

// recordingSink captures debug lines for assertions.
type recordingSink struct {
	lines   []string
	rotated int
}

func (s *recordingSink) Append(message string) { s.lines = append(s.lines, message) }
func (s *recordingSink) RotateIfOversized()    { s.rotated++ }

func newTestDispatcher(t *testing.T, runner *fakeRunner) (*Dispatcher, *recordingSink) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.UpdateScript = filepath.Join(t.TempDir(), "openpath-update.sh")
	sink := &recordingSink{}
	return NewDispatcher(cfg, runner, sink), sink
}

func dispatch(t *testing.T, d *Dispatcher, payload string) any {
	t.Helper()
	return d.Dispatch(context.Background(), json.RawMessage(payload))
}

func TestDispatchPing(t *testing.T) {
	d, _ := newTestDispatcher(t, &fakeRunner{})

	// Extra fields in the request must not matter.
	resp := dispatch(t, d, `{"action":"ping","domains":["x"],"extra":42}`)

	got, ok := resp.(pingResponse)
	if !ok {
		t.Fatalf("response type = %T, want pingResponse", resp)
	}
	want := pingResponse{Success: true, Action: "ping", Message: "pong"}
	if got != want {
		t.Fatalf("ping response = %+v, want %+v", got, want)
	}
}

func TestDispatchPingToleratesMistypedFields(t *testing.T) {
	// A mistyped unrelated field must not block the action: ping never
	// fails, whatever else the request carries.
	payloads := []string{
		`{"action":"ping","domains":"x"}`,
		`{"action":"ping","domains":7}`,
		`{"action":"ping","domains":{"nested":true}}`,
	}
	d, _ := newTestDispatcher(t, &fakeRunner{})

	for _, payload := range payloads {
		resp := dispatch(t, d, payload)
		got, ok := resp.(pingResponse)
		if !ok {
			t.Fatalf("payload %q: response type = %T, want pingResponse", payload, resp)
		}
		want := pingResponse{Success: true, Action: "ping", Message: "pong"}
		if got != want {
			t.Fatalf("payload %q: response = %+v, want %+v", payload, got, want)
		}
	}
}

func TestDispatchNonStringAction(t *testing.T) {
	d, _ := newTestDispatcher(t, &fakeRunner{})

	tests := []struct {
		payload string
		want    string
	}{
		{`{"action":7}`, "Unknown action: 7"},
		{`{"domains":["a.example"]}`, "Unknown action: "},
	}
	for _, tt := range tests {
		resp := dispatch(t, d, tt.payload)
		got, ok := resp.(errorResponse)
		if !ok {
			t.Fatalf("payload %q: response type = %T, want errorResponse", tt.payload, resp)
		}
		if got.Success || got.Error != tt.want {
			t.Fatalf("payload %q: response = %+v, want error %q", tt.payload, got, tt.want)
		}
	}
}

func TestDispatchUnknownAction(t *testing.T) {
	d, _ := newTestDispatcher(t, &fakeRunner{})

	resp := dispatch(t, d, `{"action":"frobnicate"}`)

	got, ok := resp.(errorResponse)
	if !ok {
		t.Fatalf("response type = %T, want errorResponse", resp)
	}
	if got.Success || got.Error != "Unknown action: frobnicate" {
		t.Fatalf("response = %+v", got)
	}
}

func TestDispatchInvalidFormat(t *testing.T) {
	payloads := []string{
		`"just a string"`,
		`[1,2,3]`,
		`null`,
		`42`,
		`{not json at all`,
		``,
	}
	d, _ := newTestDispatcher(t, &fakeRunner{})

	for _, payload := range payloads {
		resp := dispatch(t, d, payload)
		got, ok := resp.(errorResponse)
		if !ok {
			t.Fatalf("payload %q: response type = %T, want errorResponse", payload, resp)
		}
		if got.Success || got.Error != "Invalid message format" {
			t.Fatalf("payload %q: response = %+v", payload, got)
		}
	}
}

func TestCheckNoDomains(t *testing.T) {
	runner := &fakeRunner{}
	d, _ := newTestDispatcher(t, runner)

	payloads := []string{
		`{"action":"check"}`,
		`{"action":"check","domains":[]}`,
		`{"action":"check","domains":"x"}`,
		`{"action":"check","domains":null}`,
	}
	for _, payload := range payloads {
		resp := dispatch(t, d, payload)
		got, ok := resp.(errorResponse)
		if !ok {
			t.Fatalf("payload %q: response type = %T, want errorResponse", payload, resp)
		}
		if got.Success || got.Error != "No domains provided" {
			t.Fatalf("payload %q: response = %+v", payload, got)
		}
	}
	if len(runner.calls) != 0 {
		t.Fatalf("runner invoked %d times for empty batches", len(runner.calls))
	}
}

func TestCheckDropsInvalidEntries(t *testing.T) {
	runner := &fakeRunner{outcome: ports.Outcome{Stdout: "NO"}}
	d, _ := newTestDispatcher(t, runner)

	resp := dispatch(t, d, `{"action":"check","domains":["good.com","bad domain","a;rm -rf /",7,null]}`)

	got, ok := resp.(checkResponse)
	if !ok {
		t.Fatalf("response type = %T, want checkResponse", resp)
	}
	if !got.Success {
		t.Fatal("batch with droppable entries must still succeed")
	}
	if len(got.Results) != 1 || got.Results[0].Domain != "good.com" {
		t.Fatalf("results = %+v, want exactly good.com", got.Results)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("runner invoked %d times, want 1", len(runner.calls))
	}
	call := runner.calls[0]
	if call.name != DefaultWhitelistCmd || len(call.args) != 2 || call.args[0] != "check" || call.args[1] != "good.com" {
		t.Fatalf("runner call = %+v", call)
	}
	if call.timeout != 10*time.Second {
		t.Fatalf("check timeout = %v, want 10s", call.timeout)
	}
}

func TestCheckTruncatesToMaxDomains(t *testing.T) {
	runner := &fakeRunner{outcome: ports.Outcome{Stdout: "NO"}}
	d, _ := newTestDispatcher(t, runner)

	domains := make([]string, 60)
	for i := range domains {
		domains[i] = fmt.Sprintf("d%02d.example", i)
	}
	payload, err := json.Marshal(map[string]any{"action": "check", "domains": domains})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	resp := d.Dispatch(context.Background(), payload)
	got := resp.(checkResponse)

	if len(got.Results) != 50 {
		t.Fatalf("got %d results, want 50", len(got.Results))
	}
	for i, res := range got.Results {
		if want := fmt.Sprintf("d%02d.example", i); res.Domain != want {
			t.Fatalf("results[%d].Domain = %q, want %q (input order)", i, res.Domain, want)
		}
	}
}

func TestCheckParsesToolOutput(t *testing.T) {
	tests := []struct {
		name        string
		stdout      string
		inWhitelist bool
		resolves    bool
		resolvedIP  string
	}{
		{"whitelisted and resolving es", "example.com: SÍ → 93.184.216.34", true, true, "93.184.216.34"},
		{"whitelisted and resolving en", "example.com: YES → 93.184.216.34", true, true, "93.184.216.34"},
		{"whitelisted only", "example.com: YES (no resolver)", true, false, ""},
		{"resolving only", "example.com: NO → 1.1.1.1", false, true, "1.1.1.1"},
		{"neither", "example.com: NO", false, false, ""},
		{"arrow without address", "example.com: SÍ →", true, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{outcome: ports.Outcome{Stdout: tt.stdout}}
			d, _ := newTestDispatcher(t, runner)

			resp := dispatch(t, d, `{"action":"check","domains":["example.com"]}`)
			got := resp.(checkResponse)
			if len(got.Results) != 1 {
				t.Fatalf("results = %+v", got.Results)
			}
			res := got.Results[0]
			if res.InWhitelist != tt.inWhitelist || res.Resolves != tt.resolves {
				t.Fatalf("result = %+v, want in_whitelist=%v resolves=%v", res, tt.inWhitelist, tt.resolves)
			}
			switch {
			case tt.resolvedIP == "" && res.ResolvedIP != nil:
				t.Fatalf("resolved_ip = %q, want null", *res.ResolvedIP)
			case tt.resolvedIP != "" && (res.ResolvedIP == nil || *res.ResolvedIP != tt.resolvedIP):
				t.Fatalf("resolved_ip = %v, want %q", res.ResolvedIP, tt.resolvedIP)
			}
		})
	}
}

func TestCheckSubprocessFailureDegrades(t *testing.T) {
	for _, runErr := range []error{ports.ErrTimedOut, errors.New("fork failed")} {
		runner := &fakeRunner{err: runErr}
		d, sink := newTestDispatcher(t, runner)

		resp := dispatch(t, d, `{"action":"check","domains":["slow.example"]}`)
		got := resp.(checkResponse)

		if !got.Success {
			t.Fatalf("err %v: batch must succeed despite subprocess failure", runErr)
		}
		if len(got.Results) != 1 {
			t.Fatalf("err %v: results = %+v", runErr, got.Results)
		}
		res := got.Results[0]
		if res.Domain != "slow.example" || res.InWhitelist || res.Resolves || res.ResolvedIP != nil {
			t.Fatalf("err %v: degraded result = %+v, want zero values", runErr, res)
		}
		if len(sink.lines) == 0 {
			t.Fatalf("err %v: subprocess failure was not logged", runErr)
		}
	}
}

func TestListSplitsLines(t *testing.T) {
	runner := &fakeRunner{outcome: ports.Outcome{Stdout: "a.example\n  b.example \n\n\nc.example\n"}}
	d, _ := newTestDispatcher(t, runner)

	resp := dispatch(t, d, `{"action":"list"}`)
	got := resp.(listResponse)

	want := []string{"a.example", "b.example", "c.example"}
	if len(got.Domains) != len(want) {
		t.Fatalf("domains = %v, want %v", got.Domains, want)
	}
	for i := range want {
		if got.Domains[i] != want[i] {
			t.Fatalf("domains = %v, want %v", got.Domains, want)
		}
	}
	if call := runner.calls[0]; call.args[0] != "domains" {
		t.Fatalf("runner call = %+v", call)
	}
}

func TestListToolFailureYieldsEmptySuccess(t *testing.T) {
	runner := &fakeRunner{err: errors.New("no such binary")}
	d, sink := newTestDispatcher(t, runner)

	resp := dispatch(t, d, `{"action":"list"}`)
	got := resp.(listResponse)

	if !got.Success {
		t.Fatal("tool failure must not surface as protocol failure")
	}
	if got.Domains == nil || len(got.Domains) != 0 {
		t.Fatalf("domains = %#v, want empty non-nil list", got.Domains)
	}
	if len(sink.lines) == 0 {
		t.Fatal("tool failure was not logged")
	}
}

func TestStatusActiveMarkers(t *testing.T) {
	tests := []struct {
		stdout string
		active bool
	}{
		{"Sistema ACTIVO desde 08:00", true},
		{"whitelist service is Active", true},
		{"servicio detenido", false},
		{"", false},
	}

	for _, tt := range tests {
		runner := &fakeRunner{outcome: ports.Outcome{Stdout: tt.stdout}}
		d, _ := newTestDispatcher(t, runner)

		resp := dispatch(t, d, `{"action":"status"}`)
		got := resp.(statusResponse)

		if !got.Success {
			t.Fatalf("stdout %q: success = false", tt.stdout)
		}
		if got.Status.Active != tt.active || got.Status.Output != tt.stdout {
			t.Fatalf("stdout %q: status = %+v, want active=%v", tt.stdout, got.Status, tt.active)
		}
	}
}

func TestStatusToolFailureAbsorbed(t *testing.T) {
	runner := &fakeRunner{err: ports.ErrTimedOut}
	d, _ := newTestDispatcher(t, runner)

	resp := dispatch(t, d, `{"action":"status"}`)
	got := resp.(statusResponse)

	if !got.Success || got.Status.Active || got.Status.Output != "" {
		t.Fatalf("response = %+v, want empty successful status", got)
	}
}

func TestGetHostname(t *testing.T) {
	d, _ := newTestDispatcher(t, &fakeRunner{})
	d.hostname = func() (string, error) { return "workstation-7", nil }

	resp := dispatch(t, d, `{"action":"get-hostname"}`)
	got := resp.(hostnameResponse)

	want := hostnameResponse{Success: true, Action: "get-hostname", Hostname: "workstation-7"}
	if got != want {
		t.Fatalf("response = %+v, want %+v", got, want)
	}
}

func TestUpdateScriptMissing(t *testing.T) {
	runner := &fakeRunner{}
	d, _ := newTestDispatcher(t, runner)
	// newTestDispatcher points UpdateScript at a path that does not exist.

	resp := dispatch(t, d, `{"action":"update-whitelist"}`)
	got := resp.(actionErrorResponse)

	want := actionErrorResponse{Success: false, Action: "update-whitelist", Error: "Update script not found"}
	if got != want {
		t.Fatalf("response = %+v, want %+v", got, want)
	}
	if len(runner.calls) != 0 {
		t.Fatal("runner invoked although the script is missing")
	}
}

func TestUpdateSuccess(t *testing.T) {
	runner := &fakeRunner{outcome: ports.Outcome{Stdout: "whitelist refreshed\n"}}
	d, _ := newTestDispatcher(t, runner)
	writeUpdateScript(t, d)

	resp := dispatch(t, d, `{"action":"update-whitelist"}`)
	got := resp.(updateResponse)

	if !got.Success || got.Output != "whitelist refreshed\n" || got.Error != nil {
		t.Fatalf("response = %+v", got)
	}
	call := runner.calls[0]
	if call.name != d.cfg.UpdateScript || len(call.args) != 1 || call.args[0] != "--update" {
		t.Fatalf("runner call = %+v", call)
	}
	if call.timeout != 60*time.Second {
		t.Fatalf("update timeout = %v, want 60s", call.timeout)
	}
}

func TestUpdateNonzeroExit(t *testing.T) {
	runner := &fakeRunner{outcome: ports.Outcome{Stdout: "partial\n", Stderr: "mirror unreachable\n", ExitCode: 2}}
	d, _ := newTestDispatcher(t, runner)
	writeUpdateScript(t, d)

	resp := dispatch(t, d, `{"action":"update-whitelist"}`)
	got := resp.(updateResponse)

	if got.Success {
		t.Fatal("nonzero exit reported as success")
	}
	if got.Error == nil || *got.Error != "mirror unreachable\n" {
		t.Fatalf("error = %v, want script stderr", got.Error)
	}
	if got.Output != "partial\n" {
		t.Fatalf("output = %q, want script stdout", got.Output)
	}
}

func TestUpdateTimeout(t *testing.T) {
	runner := &fakeRunner{err: ports.ErrTimedOut}
	d, _ := newTestDispatcher(t, runner)
	writeUpdateScript(t, d)

	resp := dispatch(t, d, `{"action":"update-whitelist"}`)
	got := resp.(actionErrorResponse)

	want := actionErrorResponse{Success: false, Action: "update-whitelist", Error: "Update timed out"}
	if got != want {
		t.Fatalf("response = %+v, want %+v", got, want)
	}
}

func writeUpdateScript(t *testing.T, d *Dispatcher) {
	t.Helper()
	if err := os.WriteFile(d.cfg.UpdateScript, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write update script: %v", err)
	}
}
