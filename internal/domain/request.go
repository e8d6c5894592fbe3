package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type RequestKind string

const (
	KindPayout  RequestKind = "payout"
	KindExpense RequestKind = "expense"
	KindSalary  RequestKind = "salary"
	KindReward  RequestKind = "reward"
)

type PayoutSubtype string

const (
	SubtypeCpa         PayoutSubtype = "cpa"
	SubtypeRevshare    PayoutSubtype = "revshare"
	SubtypeSalary      PayoutSubtype = "salary"
	SubtypeFtdReferral PayoutSubtype = "ftd_referral"
	SubtypeExpense     PayoutSubtype = "expense"
	SubtypeReward      PayoutSubtype = "reward"
)

// RequestCategory - ключ политики допуска и защиты от дублей:
// "payout:<subtype>" для выплат, вид заявки для остальных
type RequestCategory string

func CategoryFor(kind RequestKind, subtype PayoutSubtype) RequestCategory {
	if kind == KindPayout {
		return RequestCategory(string(kind) + ":" + string(subtype))
	}
	return RequestCategory(kind)
}

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusDeferred RequestStatus = "deferred"
	StatusAccepted RequestStatus = "accepted"
	StatusDeclined RequestStatus = "declined"
)

// OpenStatuses - заявка еще ожидает решения администратора
var OpenStatuses = []RequestStatus{StatusPending, StatusDeferred}

func (s RequestStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusDeclined
}

type PayoutDestination struct {
	CryptoType    string
	Network       string
	WalletAddress string
}

type Request struct {
	ID             string
	UserID         string
	Kind           RequestKind
	Subtype        PayoutSubtype
	Category       RequestCategory
	LedgerCategory LedgerCategory
	Funded         bool
	Amount         decimal.Decimal
	Destination    PayoutDestination
	Note           string
	AttachmentRef  string
	Status         RequestStatus
	AdminNote      string
	ResolvedBy     string
	ResolvedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Transition - check-then-set смена статуса заявки
type Transition struct {
	RequestID  string
	From       []RequestStatus
	To         RequestStatus
	AdminNote  string
	ResolvedBy string
	At         time.Time
}

type RequestFilter struct {
	UserID   *string
	Kind     *RequestKind
	Category *RequestCategory
	Statuses []RequestStatus
	Page     int
	Limit    int
}

type RequestRepository interface {
	GetRequestByID(ctx context.Context, requestID string) (*Request, error)
	ListRequests(ctx context.Context, filter RequestFilter) ([]*Request, int64, error)
}

// RequestTx - операции с заявками внутри транзакции
type RequestTx interface {
	CreateRequest(ctx context.Context, request *Request) error
	// TransitionRequest возвращает обновленную заявку и статус до перехода.
	// ErrNotPending - статус заявки не входит в From или изменился конкурентно
	TransitionRequest(ctx context.Context, tr Transition) (*Request, RequestStatus, error)
	// FindOpenRequest и LastClaim ищут среди заявок любой из categories
	FindOpenRequest(ctx context.Context, userID string, categories []RequestCategory) (*Request, error)
	LastClaim(ctx context.Context, userID string, categories []RequestCategory, statuses []RequestStatus) (*Request, error)
}
