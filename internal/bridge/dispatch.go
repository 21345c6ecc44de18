package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/openpath-labs/openpath-bridge/internal/ports"
	"github.com/openpath-labs/openpath-bridge/internal/sanitize"
)

// request is the decoded inbound envelope. Both fields are loosely
// typed on purpose: a mistyped action or domains value must not block
// an unrelated action, so field-level decoding is deferred to the
// handler that actually consumes the field.
type request struct {
	Action  any             `json:"action"`
	Domains json.RawMessage `json:"domains"`
}

// actionName renders the action discriminator for dispatch. A missing
// action dispatches as "", any non-string value as its printed form,
// so both end up in the unknown-action response instead of a format
// error.
func (r request) actionName() string {
	switch v := r.Action.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// DomainCheckResult describes one domain from a check request. A
// domain whose check failed keeps the zero values: not whitelisted,
// not resolving, no address.
type DomainCheckResult struct {
	Domain      string  `json:"domain"`
	InWhitelist bool    `json:"in_whitelist"`
	Resolves    bool    `json:"resolves"`
	ResolvedIP  *string `json:"resolved_ip"`
}

// SystemStatus is the status action's payload.
type SystemStatus struct {
	Output string `json:"output"`
	Active bool   `json:"active"`
}

// Response envelopes. Every response carries the success flag; each
// action defines its own payload beyond that.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type actionErrorResponse struct {
	Success bool   `json:"success"`
	Action  string `json:"action"`
	Error   string `json:"error"`
}

type checkResponse struct {
	Success bool                `json:"success"`
	Action  string              `json:"action"`
	Results []DomainCheckResult `json:"results"`
}

type listResponse struct {
	Success bool     `json:"success"`
	Action  string   `json:"action"`
	Domains []string `json:"domains"`
}

type statusResponse struct {
	Success bool         `json:"success"`
	Action  string       `json:"action"`
	Status  SystemStatus `json:"status"`
}

type pingResponse struct {
	Success bool   `json:"success"`
	Action  string `json:"action"`
	Message string `json:"message"`
}

type hostnameResponse struct {
	Success  bool   `json:"success"`
	Action   string `json:"action"`
	Hostname string `json:"hostname"`
}

type updateResponse struct {
	Success bool    `json:"success"`
	Action  string  `json:"action"`
	Output  string  `json:"output"`
	Error   *string `json:"error"`
}

// Dispatcher maps an action name to its handler. It holds no state
// across requests beyond the debug log.
type Dispatcher struct {
	cfg      Config
	runner   ports.CommandRunner
	sink     ports.Sink
	hostname func() (string, error)
}

// NewDispatcher creates a dispatcher using runner for subprocess
// execution and sink for debug logging.
func NewDispatcher(cfg Config, runner ports.CommandRunner, sink ports.Sink) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		runner:   runner,
		sink:     sink,
		hostname: os.Hostname,
	}
}

// Dispatch decodes one request payload and returns the response value
// to encode back to the peer. It never fails: every problem becomes a
// success=false response, so the peer never sees anything but a
// well-formed envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, raw json.RawMessage) any {
	req, ok := decodeRequest(raw)
	if !ok {
		return errorResponse{Error: "Invalid message format"}
	}

	action := req.actionName()
	switch action {
	case "check":
		return d.handleCheck(ctx, req)
	case "list":
		return d.handleList(ctx)
	case "status":
		return d.handleStatus(ctx)
	case "ping":
		return pingResponse{Success: true, Action: "ping", Message: "pong"}
	case "get-hostname":
		return d.handleHostname()
	case "update-whitelist":
		return d.handleUpdate(ctx)
	default:
		return errorResponse{Error: fmt.Sprintf("Unknown action: %s", action)}
	}
}

// decodeRequest parses the payload, requiring a JSON object at the top
// level. Anything else (arrays, strings, null, undecodable bytes) is
// rejected before action dispatch.
func decodeRequest(raw json.RawMessage) (request, bool) {
	var req request
	if !isJSONObject(raw) {
		return req, false
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, false
	}
	return req, true
}

func isJSONObject(raw []byte) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}

func (d *Dispatcher) handleCheck(ctx context.Context, req request) any {
	// A domains value that is not an array degrades to an empty batch;
	// the decode error is deliberately ignored.
	var entries []any
	if len(req.Domains) > 0 {
		_ = json.Unmarshal(req.Domains, &entries)
	}
	if len(entries) == 0 {
		return errorResponse{Error: "No domains provided"}
	}

	if len(entries) > d.cfg.MaxDomains {
		entries = entries[:d.cfg.MaxDomains]
	}

	results := make([]DomainCheckResult, 0, len(entries))
	for _, entry := range entries {
		raw, ok := entry.(string)
		if !ok {
			continue
		}
		domain, err := sanitize.Domain(raw)
		if err != nil {
			// Per-domain rejection: the rest of the batch proceeds.
			continue
		}
		results = append(results, d.checkDomain(ctx, domain))
	}
	return checkResponse{Success: true, Action: "check", Results: results}
}

// checkDomain runs `whitelist check <domain>` and interprets its
// output. A timeout or launch failure degrades to a zero-valued result
// for this one domain; the request as a whole still succeeds.
func (d *Dispatcher) checkDomain(ctx context.Context, domain string) DomainCheckResult {
	res := DomainCheckResult{Domain: domain}
	out, err := d.runner.Run(ctx, d.cfg.CheckTimeout, d.cfg.WhitelistCmd, "check", domain)
	if err != nil {
		d.sink.Append(fmt.Sprintf("error checking domain %s: %v", domain, err))
		return res
	}
	res.InWhitelist, res.Resolves, res.ResolvedIP = parseCheckOutput(out.Stdout)
	return res
}

func (d *Dispatcher) handleList(ctx context.Context) any {
	resp := listResponse{Success: true, Action: "list", Domains: []string{}}
	out, err := d.runner.Run(ctx, d.cfg.CheckTimeout, d.cfg.WhitelistCmd, "domains")
	if err != nil {
		// Tool errors are logged, not surfaced: an empty list is a
		// valid answer as far as the peer is concerned.
		d.sink.Append(fmt.Sprintf("error getting domains: %v", err))
		return resp
	}
	resp.Domains = parseDomainList(out.Stdout)
	return resp
}

func (d *Dispatcher) handleStatus(ctx context.Context) any {
	resp := statusResponse{Success: true, Action: "status"}
	out, err := d.runner.Run(ctx, d.cfg.CheckTimeout, d.cfg.WhitelistCmd, "status")
	if err != nil {
		d.sink.Append(fmt.Sprintf("error getting status: %v", err))
		return resp
	}
	resp.Status = SystemStatus{Output: out.Stdout, Active: statusActive(out.Stdout)}
	return resp
}

func (d *Dispatcher) handleHostname() any {
	name, err := d.hostname()
	if err != nil {
		d.sink.Append(fmt.Sprintf("error reading hostname: %v", err))
	}
	return hostnameResponse{Success: true, Action: "get-hostname", Hostname: name}
}

func (d *Dispatcher) handleUpdate(ctx context.Context) any {
	if _, err := os.Stat(d.cfg.UpdateScript); err != nil {
		return actionErrorResponse{Action: "update-whitelist", Error: "Update script not found"}
	}

	out, err := d.runner.Run(ctx, d.cfg.UpdateTimeout, d.cfg.UpdateScript, "--update")
	if err != nil {
		msg := "Update timed out"
		if !errors.Is(err, ports.ErrTimedOut) {
			msg = err.Error()
		}
		d.sink.Append("update-whitelist failed: " + msg)
		return actionErrorResponse{Action: "update-whitelist", Error: msg}
	}

	resp := updateResponse{
		Success: out.ExitCode == 0,
		Action:  "update-whitelist",
		Output:  out.Stdout,
	}
	if out.ExitCode != 0 {
		stderr := out.Stderr
		resp.Error = &stderr
	}
	return resp
}
