package hook

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/marcelsud/automation-connect/automation"
)

const (
	HeaderAPIKey      = "X-N8N-API-KEY"
	HeaderWorkflowID  = "X-N8N-Workflow-Id"
	HeaderExecutionID = "X-N8N-Execution-Id"

	// OptionAction selects a workflow API action instead of a plain webhook send
	OptionAction = "action"
)

type BasicAuth struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type N8nConfig struct {
	WebhookURL string     `mapstructure:"webhook_url"`
	BaseURL    string     `mapstructure:"base_url"`
	APIKey     string     `mapstructure:"api_key"`
	BasicAuth  *BasicAuth `mapstructure:"basic_auth"`
}

type N8nDriver struct {
	*automation.Base[N8nConfig]
}

func NewN8n(cfg automation.Config, kit automation.Toolkit) (automation.Driver, error) {
	base, err := automation.NewBase[N8nConfig](N8n, cfg, kit, automation.Capabilities{
		Inbound:  true,
		Outbound: true,
		Actions: map[string]string{
			"send":             "Send data to webhook",
			"trigger_workflow": "Trigger specific workflow",
			"execute_workflow": "Execute workflow via API",
			"get_workflow":     "Get workflow information",
			"list_workflows":   "List all workflows",
		},
		Events: []string{"webhook", "workflow_completed", "workflow_failed", "workflow_started", "execution_finished"},
	})
	if err != nil {
		return nil, err
	}
	return &N8nDriver{Base: base}, nil
}

/* Send posts to the webhook URL. The "action" option switches to the workflow
 * API: trigger_workflow, execute_workflow and get_workflow take "workflow_id"
 */
func (d *N8nDriver) Send(ctx context.Context, data map[string]any, opts automation.Options) (any, error) {
	switch action := opts.String(OptionAction, "send"); action {
	case "send":
		target := d.Typed().WebhookURL
		if target == "" {
			target = opts.String("webhook_url", "")
		}
		return d.webhook(ctx, target, data, opts)
	case "trigger_workflow":
		id, err := workflowID(opts)
		if err != nil {
			return nil, err
		}
		base, err := d.baseURL()
		if err != nil {
			return nil, err
		}
		return d.webhook(ctx, base+"/webhook/"+url.PathEscape(id), data, opts)
	case "execute_workflow":
		id, err := workflowID(opts)
		if err != nil {
			return nil, err
		}
		return d.api(ctx, http.MethodPost, "/api/v1/workflows/"+url.PathEscape(id)+"/execute", map[string]any{"data": data})
	case "get_workflow":
		id, err := workflowID(opts)
		if err != nil {
			return nil, err
		}
		return d.api(ctx, http.MethodGet, "/api/v1/workflows/"+url.PathEscape(id), nil)
	case "list_workflows":
		return d.api(ctx, http.MethodGet, "/api/v1/workflows", nil)
	default:
		return nil, fmt.Errorf("n8n action %q: %w", action, automation.ErrUnsupportedAction)
	}
}

func (d *N8nDriver) webhook(ctx context.Context, target string, data map[string]any, opts automation.Options) (any, error) {
	cfg := d.Typed()
	if target == "" {
		return nil, automation.MissingConfig(N8n, "webhook_url")
	}

	call := automation.HTTPCall{
		Method: strings.ToUpper(opts.String("method", http.MethodPost)),
		URL:    target,
		Header: http.Header{"User-Agent": {UserAgent}},
		JSON:   data,
	}
	if cfg.APIKey != "" {
		call.Header.Set(HeaderAPIKey, cfg.APIKey)
	}
	if ba := cfg.BasicAuth; ba != nil && ba.Username != "" && ba.Password != "" {
		call.User, call.Pass = ba.Username, ba.Password
	}
	if extra, ok := opts["headers"].(map[string]any); ok {
		for k, v := range extra {
			call.Header.Set(k, fmt.Sprint(v))
		}
	}
	if call.Method == http.MethodGet {
		call.JSON = nil
	}
	return d.Do(ctx, call)
}

func (d *N8nDriver) api(ctx context.Context, method, path string, body any) (any, error) {
	base, err := d.baseURL()
	if err != nil {
		return nil, err
	}
	key := d.Typed().APIKey
	if key == "" {
		return nil, automation.MissingConfig(N8n, "api_key")
	}
	return d.Do(ctx, automation.HTTPCall{
		Method: method,
		URL:    base + path,
		Header: http.Header{HeaderAPIKey: {key}},
		JSON:   body,
	})
}

func (d *N8nDriver) baseURL() (string, error) {
	base := d.Typed().BaseURL
	if base == "" {
		return "", automation.MissingConfig(N8n, "base_url")
	}
	return strings.TrimRight(base, "/"), nil
}

func workflowID(opts automation.Options) (string, error) {
	id := opts.String("workflow_id", "")
	if id == "" {
		return "", fmt.Errorf("n8n: workflow_id option is required")
	}
	return id, nil
}

// HandleWebhook extracts the workflow and execution ids from headers or payload
func (d *N8nDriver) HandleWebhook(_ context.Context, req *automation.Request) (any, error) {
	payload := req.Payload()
	workflow := firstOf(req.HeaderValue(HeaderWorkflowID), payload["workflowId"])
	execution := firstOf(req.HeaderValue(HeaderExecutionID), payload["executionId"])

	d.Kit.Logger.Info().Str("method", req.Method).Any("workflow_id", workflow).Msg("n8n webhook received")
	out := received(payload, d.Now())
	delete(out, "data")
	out["workflow_id"] = workflow
	out["execution_id"] = execution
	return out, nil
}

func firstOf(header string, fallback any) any {
	if header != "" {
		return header
	}
	return fallback
}
