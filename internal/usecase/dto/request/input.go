package requestdto

import "github.com/shopspring/decimal"

type SubmitRequestInput struct {
	UserID           string
	Kind             string
	Subtype          string
	Amount           decimal.Decimal
	CryptoType       string
	Network          string
	WalletAddress    string
	Note             string
	AttachmentFileID string
}

type ResolveRequestInput struct {
	RequestID string
	AdminID   string
	Action    string
	Note      string
}

type ListRequestsInput struct {
	UserID   *string
	Kind     *string
	Category *string
	Status   *string
	Page     int64
	Limit    int64
}
