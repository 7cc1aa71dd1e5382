// Package automation is the execution collaborator: it turns a selected
// action plus parameters into an automation command and gates website opening
// on the permission registry. Literal device/browser control stays behind the
// Executor interface.
package automation

import (
	"context"
	"fmt"
	"strings"

	"aria/internal/logging"
	"aria/internal/store"
)

// PermissionRequiredError is the executor's escape code: the action cannot
// proceed until the user decides about the resource.
type PermissionRequiredError struct {
	Domain string // normalized domain awaiting a decision
	URL    string // the raw target as the user gave it
}

func (e *PermissionRequiredError) Error() string {
	return fmt.Sprintf("permission required for %s", e.Domain)
}

// DomainBlockedError means the target domain is on the blocked list. The
// action is refused without asking.
type DomainBlockedError struct {
	Domain string
}

func (e *DomainBlockedError) Error() string {
	return fmt.Sprintf("domain %s is blocked", e.Domain)
}

// Registry is the permission collaborator consumed by the executor.
type Registry interface {
	CheckPermission(domain string) (store.PermissionDecision, error)
}

// Executor dispatches one selected action.
type Executor interface {
	Execute(ctx context.Context, action string, params map[string]string) (string, error)
}

// commandTemplates maps actions to automation command templates. {key}
// placeholders are filled from the action parameters.
var commandTemplates = map[string]string{
	"search_youtube":             "search youtube for {topic}",
	"check_local_videos":         "search local videos for {topic}",
	"open_spotify":               "open spotify.com",
	"search_youtube_music":       "search youtube for {music_query} music",
	"open_netflix":               "open netflix.com",
	"search_google":              "search for {topic}",
	"search_wikipedia":           "search wikipedia for {topic}",
	"search_bing":                "search bing for {topic}",
	"search_google_news":         "search for latest news",
	"open_news_website":          "open news.google.com",
	"open_website":               "open {url}",
	"open_facebook":              "open facebook.com",
	"open_twitter":               "open twitter.com",
	"open_instagram":             "open instagram.com",
	"get_system_status":          "report system status",
	"check_performance":          "report performance metrics",
	"open_application":           "open {application}",
	"open_notepad":               "open notepad",
	"open_calculator":            "open calculator",
	"open_explorer":              "open file explorer",
	"search_files":               "search files for {topic}",
	"open_calendar":              "open calendar",
	"create_reminder":            "create reminder {topic}",
	"search_educational_content": "search for {topic} course",
	"find_tutorials":             "search youtube for {topic} tutorial",
	"open_email":                 "open email",
	"open_messaging":             "open messaging",
	"search_products":            "search for {topic} to buy",
	"open_shopping_site":         "open amazon.com",
}

// paramDefaults fills placeholders when the parameter was never extracted,
// so the command stays well formed ("search youtube for videos") instead of
// trailing off.
var paramDefaults = map[string]map[string]string{
	"search_youtube":       {"topic": "videos"},
	"search_youtube_music": {"music_query": "music"},
	"search_google":        {"topic": "information"},
	"open_website":         {"url": "google.com"},
	"open_application":     {"application": "notepad"},
}

// BuildCommand synthesizes the automation command for an action. Unknown
// actions fall back to the humanized action id; placeholders with neither a
// parameter nor a default are dropped rather than leaked.
func BuildCommand(action string, params map[string]string) string {
	tmpl, ok := commandTemplates[action]
	if !ok {
		return strings.ReplaceAll(action, "_", " ")
	}
	out := tmpl
	for key, value := range params {
		if value != "" {
			out = strings.ReplaceAll(out, "{"+key+"}", value)
		}
	}
	for key, value := range paramDefaults[action] {
		out = strings.ReplaceAll(out, "{"+key+"}", value)
	}
	// Strip placeholders that had no parameter and no default.
	for {
		start := strings.Index(out, "{")
		if start < 0 {
			break
		}
		end := strings.Index(out[start:], "}")
		if end < 0 {
			break
		}
		out = out[:start] + out[start+end+1:]
	}
	return strings.Join(strings.Fields(out), " ")
}

// CommandExecutor is the default Executor: it synthesizes commands and
// enforces website permissions. It does not touch the OS.
type CommandExecutor struct {
	perms Registry
}

// NewCommandExecutor builds an executor over the permission registry.
func NewCommandExecutor(perms Registry) *CommandExecutor {
	return &CommandExecutor{perms: perms}
}

// Execute runs one action. For open_website the target domain must be
// trusted; an unknown domain returns *PermissionRequiredError so the caller
// can start the security confirmation flow.
func (e *CommandExecutor) Execute(ctx context.Context, action string, params map[string]string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if action == "open_website" {
		return e.openWebsite(params)
	}

	cmd := BuildCommand(action, params)
	logging.Decision("executing action=%s command=%q", action, cmd)
	return cmd, nil
}

func (e *CommandExecutor) openWebsite(params map[string]string) (string, error) {
	raw := params["url"]
	domain, err := store.NormalizeDomain(raw)
	if err != nil {
		return "", fmt.Errorf("cannot open website: %w", err)
	}

	decision, err := e.perms.CheckPermission(domain)
	if err != nil {
		return "", fmt.Errorf("permission check for %s: %w", domain, err)
	}

	switch decision {
	case store.PermissionAllowed:
		cmd := BuildCommand("open_website", map[string]string{"url": domain})
		logging.Security("open_website allowed: %s", domain)
		return cmd, nil
	case store.PermissionDenied:
		logging.Security("open_website refused, domain blocked: %s", domain)
		return "", &DomainBlockedError{Domain: domain}
	default:
		logging.Security("open_website needs a decision: %s", domain)
		return "", &PermissionRequiredError{Domain: domain, URL: raw}
	}
}
