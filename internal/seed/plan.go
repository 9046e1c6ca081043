package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PlanAccount is a named account a seed plan pins in place, so dev and
// staging logins survive reseeds.
type PlanAccount struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Bio      string `yaml:"bio"`
	Admin    bool   `yaml:"admin"`
}

// Plan is a declarative seeding recipe loaded from a YAML file. Flags given
// on the command line override the plan's sizes.
type Plan struct {
	Users    int           `yaml:"users"`
	Posts    int           `yaml:"posts"`
	Clean    bool          `yaml:"clean"`
	MaxDays  int           `yaml:"max_days"`
	Accounts []PlanAccount `yaml:"accounts"`
}

// LoadPlan reads and validates a seed plan file.
func LoadPlan(path string) (*Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed plan: %w", err)
	}

	var plan Plan
	if err := yaml.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("parse seed plan: %w", err)
	}

	if plan.Users < 0 || plan.Posts < 0 || plan.MaxDays < 0 {
		return nil, fmt.Errorf("seed plan sizes must be non-negative")
	}
	seen := make(map[string]struct{}, len(plan.Accounts))
	for i, acct := range plan.Accounts {
		if acct.Username == "" {
			return nil, fmt.Errorf("seed plan account %d: username is required", i)
		}
		if _, dup := seen[acct.Username]; dup {
			return nil, fmt.Errorf("seed plan account %q appears twice", acct.Username)
		}
		seen[acct.Username] = struct{}{}
	}
	return &plan, nil
}

// ApplyTo folds the plan's sizes into opts, keeping any value the caller
// already set explicitly.
func (p *Plan) ApplyTo(opts *Options) {
	if p.Users > 0 {
		opts.NumUsers = p.Users
	}
	if p.Posts > 0 {
		opts.NumPosts = p.Posts
	}
	if p.MaxDays > 0 {
		opts.MaxDays = p.MaxDays
	}
	if p.Clean {
		opts.ShouldClean = true
	}
	if len(p.Accounts) > 0 {
		opts.Accounts = p.Accounts
	}
}
