package types

type TradeDirection string

type TransactionType string

type WithdrawStatus string

type AdminEvent string

const (
	TradeDirectionLong  TradeDirection = "long"
	TradeDirectionShort TradeDirection = "short"
)

const (
	TransactionTypeDeposit         TransactionType = "deposit"
	TransactionTypeWithdrawRequest TransactionType = "withdraw-request"
	TransactionTypeWithdrawDecide  TransactionType = "withdraw-decision"
	TransactionTypeAdjustment      TransactionType = "adjustment"
)

const (
	WithdrawStatusPending  WithdrawStatus = "pending"
	WithdrawStatusApproved WithdrawStatus = "approved"
	WithdrawStatusRejected WithdrawStatus = "rejected"
)

const (
	AdminEventUserRegistered  AdminEvent = "user-registered"
	AdminEventDeposit         AdminEvent = "deposit"
	AdminEventWithdrawRequest AdminEvent = "withdraw-request"
	AdminEventWithdrawDecide  AdminEvent = "withdraw-decision"
	AdminEventNewPosition     AdminEvent = "new-position"
	AdminEventPositionClosed  AdminEvent = "position-closed"
	AdminEventBalanceUpdate   AdminEvent = "balance-update"
)
