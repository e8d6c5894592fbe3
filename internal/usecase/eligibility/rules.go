package eligibility

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
)

const (
	RuleAlways     = "always"
	RuleDayOfMonth = "day_of_month"
	RuleWeekday    = "weekday"
	RuleEveryNDays = "every_n_days"
)

// WindowInput - то, что правило окна знает о подаче
type WindowInput struct {
	Now       time.Time
	Deal      *domain.Deal
	LastClaim *domain.Request
}

// WindowRule - предикат окна подачи. Новое правило регистрируется в Registry
// и подключается политикой по имени, без изменений в движке заявок
type WindowRule interface {
	Name() string
	ValidateSpec(spec WindowSpec) error
	Allows(in WindowInput, spec WindowSpec) error
}

type Registry struct {
	mu    sync.RWMutex
	rules map[string]WindowRule
}

// NewRegistry создает реестр со встроенными правилами
func NewRegistry() *Registry {
	r := &Registry{rules: make(map[string]WindowRule)}
	r.Register(alwaysRule{})
	r.Register(dayOfMonthRule{})
	r.Register(weekdayRule{})
	r.Register(everyNDaysRule{})
	return r
}

func (r *Registry) Register(rule WindowRule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.Name()] = rule
}

func (r *Registry) Rule(name string) (WindowRule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[name]
	return rule, ok
}

type alwaysRule struct{}

func (alwaysRule) Name() string                         { return RuleAlways }
func (alwaysRule) ValidateSpec(WindowSpec) error        { return nil }
func (alwaysRule) Allows(WindowInput, WindowSpec) error { return nil }

type dayOfMonthRule struct{}

func (dayOfMonthRule) Name() string { return RuleDayOfMonth }

func (dayOfMonthRule) ValidateSpec(spec WindowSpec) error {
	if spec.DayOfMonth < 1 || spec.DayOfMonth > 31 {
		return fmt.Errorf("day_of_month must be in [1,31], got %d", spec.DayOfMonth)
	}
	return nil
}

func (dayOfMonthRule) Allows(in WindowInput, spec WindowSpec) error {
	if in.Now.Day() != spec.DayOfMonth {
		return fmt.Errorf("%w: open only on day %d of the month", domain.ErrWindowClosed, spec.DayOfMonth)
	}
	return nil
}

type weekdayRule struct{}

func (weekdayRule) Name() string { return RuleWeekday }

func (weekdayRule) ValidateSpec(spec WindowSpec) error {
	_, err := parseWeekday(spec.Weekday)
	return err
}

func (weekdayRule) Allows(in WindowInput, spec WindowSpec) error {
	day, err := parseWeekday(spec.Weekday)
	if err != nil {
		return err
	}
	if in.Now.Weekday() != day {
		return fmt.Errorf("%w: open only on %s", domain.ErrWindowClosed, day)
	}
	return nil
}

// everyNDaysRule - не чаще раза в N дней с последней принятой или ожидающей заявки
type everyNDaysRule struct{}

func (everyNDaysRule) Name() string { return RuleEveryNDays }

func (everyNDaysRule) ValidateSpec(spec WindowSpec) error {
	if spec.Days < 0 {
		return fmt.Errorf("days must not be negative, got %d", spec.Days)
	}
	return nil
}

func (everyNDaysRule) Allows(in WindowInput, spec WindowSpec) error {
	days := spec.Days
	if days == 0 {
		if in.Deal == nil || !in.Deal.SalaryEnabled {
			return fmt.Errorf("%w: no fixed commission terms", domain.ErrWindowClosed)
		}
		days = in.Deal.SalaryFrequencyDays
	}
	if in.LastClaim == nil {
		return nil
	}
	opensAt := in.LastClaim.CreatedAt.AddDate(0, 0, days)
	if in.Now.Before(opensAt) {
		return fmt.Errorf("%w: next claim allowed from %s", domain.ErrWindowClosed, opensAt.Format(time.RFC3339))
	}
	return nil
}

func parseWeekday(name string) (time.Weekday, error) {
	for day := time.Sunday; day <= time.Saturday; day++ {
		if strings.EqualFold(day.String(), name) {
			return day, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}
