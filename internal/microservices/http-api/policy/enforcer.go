package policy

import (
	_ "embed"
	"fmt"
	"net/http"
	"os"
	"strings"

	"yamdb/internal/metrics"
	"yamdb/pkg/apperror"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/rs/zerolog/log"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Resource is a coarse resource kind guarded by the policy.
type Resource string

const (
	ResourceAuth    Resource = "auth"
	ResourceCatalog Resource = "catalog"
	ResourceReview  Resource = "review"
	ResourceComment Resource = "comment"
	ResourceUsers   Resource = "users"
	ResourceMe      Resource = "me"
)

type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

// ActionFor maps an HTTP method to an action. Safe methods read, everything else writes.
func ActionFor(method string) Action {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ActionRead
	default:
		return ActionWrite
	}
}

type Config struct {
	// ModelPath and PolicyPath override the embedded files when they exist.
	ModelPath  string
	PolicyPath string
}

// Policy evaluates the coarse permission table.
type Policy struct {
	enforcer *casbin.SyncedEnforcer
}

func New(cfg Config) (*Policy, error) {
	var m model.Model
	var err error

	if cfg.ModelPath != "" && fileExists(cfg.ModelPath) {
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" && fileExists(cfg.PolicyPath) {
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadEmbeddedPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	return &Policy{enforcer: enforcer}, nil
}

// loadEmbeddedPolicy parses the embedded policy CSV.
func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch rule := parts[1:]; parts[0] {
		case "p":
			if len(rule) != 3 {
				return fmt.Errorf("malformed policy line %q", line)
			}
			if _, err := enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", rule, err)
			}
		case "g":
			if len(rule) != 2 {
				return fmt.Errorf("malformed grouping line %q", line)
			}
			if _, err := enforcer.AddGroupingPolicy(rule[0], rule[1]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", rule, err)
			}
		}
	}
	return nil
}

// Allow evaluates the coarse table for the actor's level.
func (p *Policy) Allow(a Actor, res Resource, method string) (bool, error) {
	act := ActionFor(method)
	allowed, err := p.enforcer.Enforce(a.Level.String(), string(res), string(act))
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	metrics.RecordAuthzDecision(a.Level.String(), string(res), string(act), allowed)
	return allowed, nil
}

// Check is Allow turned into an error: 401 for anonymous actors, 403 otherwise.
func (p *Policy) Check(a Actor, res Resource, method string) error {
	allowed, err := p.Allow(a, res, method)
	if err != nil {
		return err
	}
	if allowed {
		return nil
	}

	log.Debug().
		Str("user", a.Username).
		Str("level", a.Level.String()).
		Str("resource", string(res)).
		Str("method", method).
		Msg("authorization denied")

	if !a.Authenticated() {
		return apperror.Unauthorized("")
	}
	return apperror.Forbidden(fmt.Sprintf("%s access to %s requires a higher role than %s", ActionFor(method), res, a.Level))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
