package setup

import (
	"fmt"
	"time"

	"github.com/LavaJover/shvark-commission-service/internal/config"
	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/LavaJover/shvark-commission-service/internal/usecase/eligibility"
)

// InitializeEligibility собирает Gate: встроенные политики + переопределения из конфига
func InitializeEligibility(cfg config.Eligibility) (*eligibility.Gate, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("eligibility timezone %q: %w", cfg.Timezone, err)
	}

	overrides := make([]eligibility.Override, 0, len(cfg.Policies))
	for _, p := range cfg.Policies {
		o := eligibility.Override{Category: domain.RequestCategory(p.Category)}
		for _, role := range p.Roles {
			o.Roles = append(o.Roles, domain.Role(role))
		}
		if p.Rule != "" {
			o.Window = &eligibility.WindowSpec{
				Rule:       p.Rule,
				DayOfMonth: p.DayOfMonth,
				Weekday:    p.Weekday,
				Days:       p.Days,
			}
		}
		overrides = append(overrides, o)
	}

	policies, err := eligibility.ApplyOverrides(eligibility.DefaultPolicies(), overrides)
	if err != nil {
		return nil, err
	}
	return eligibility.NewGate(eligibility.NewRegistry(), policies, loc)
}
