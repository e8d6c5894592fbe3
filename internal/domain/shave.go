package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type CommissionType string

const (
	CommissionPercentage  CommissionType = "percentage"
	CommissionFixedPerFtd CommissionType = "fixed_per_ftd"
)

// ShaveEdge - правило перераспределения комиссии source -> target.
// С посредником ребро логически состоит из двух хопов source -> intermediary -> target,
// каждый из которых несет полное значение Value
type ShaveEdge struct {
	ID             string
	SourceID       string
	TargetID       string
	IntermediaryID string
	CommissionType CommissionType
	Value          decimal.Decimal
	CreatedBy      string
	CreatedAt      time.Time
}

// Hop - направленное ребро графа после разворачивания посредника
type Hop struct {
	From string
	To   string
}

func (e *ShaveEdge) HasIntermediary() bool {
	return e.IntermediaryID != ""
}

// Hops разворачивает ребро в направленные хопы
func (e *ShaveEdge) Hops() []Hop {
	if e.HasIntermediary() {
		return []Hop{
			{From: e.SourceID, To: e.IntermediaryID},
			{From: e.IntermediaryID, To: e.TargetID},
		}
	}
	return []Hop{{From: e.SourceID, To: e.TargetID}}
}

// Beneficiaries - пользователи, получающие долю по ребру
func (e *ShaveEdge) Beneficiaries() []string {
	if e.HasIntermediary() {
		return []string{e.TargetID, e.IntermediaryID}
	}
	return []string{e.TargetID}
}

func (e *ShaveEdge) Validate() error {
	if e.SourceID == "" || e.TargetID == "" {
		return fmt.Errorf("%w: source and target are required", ErrInvalidShaveValue)
	}
	if e.SourceID == e.TargetID || e.SourceID == e.IntermediaryID || e.TargetID == e.IntermediaryID {
		return ErrSelfReferencingEdge
	}
	switch e.CommissionType {
	case CommissionPercentage:
		if !validPercentage(e.Value) {
			return fmt.Errorf("%w: percentage must be in (0,100]", ErrInvalidShaveValue)
		}
	case CommissionFixedPerFtd:
		if !e.Value.IsPositive() {
			return fmt.Errorf("%w: fixed value must be positive", ErrInvalidShaveValue)
		}
	default:
		return fmt.Errorf("%w: unknown commission type %q", ErrInvalidShaveValue, e.CommissionType)
	}
	return nil
}

type ShaveRepository interface {
	// CreateEdgeChecked сериализует запись ребер: check вызывается с актуальным набором ребер
	// и при ошибке вставка не выполняется
	CreateEdgeChecked(ctx context.Context, edge *ShaveEdge, check func(existing []*ShaveEdge) error) error
	DeleteEdge(ctx context.Context, edgeID string) error
	ListEdges(ctx context.Context) ([]*ShaveEdge, error)
}
