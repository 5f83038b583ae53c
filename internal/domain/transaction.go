package domain

// TransactionDirection is the provider's DEBIT/CREDIT marker.
type TransactionDirection string

const (
	Debit  TransactionDirection = "DEBIT"
	Credit TransactionDirection = "CREDIT"
)

// Provider transaction-type codes we care about. The provider taxonomy is
// wider than this; unknown codes pass through untouched.
const (
	TypeCardPurchases         = "CardPurchases"
	TypeDebitOrders           = "DebitOrders"
	TypeATMWithdrawals        = "ATMWithdrawals"
	TypeFeesAndInterest       = "FeesAndInterest"
	TypeOnlineBankingPayments = "OnlineBankingPayments"
	TypeDeposits              = "Deposits"
)

// ProviderTransaction is one transaction record exactly as the banking
// provider returns it. The analytics core only ever reads it.
type ProviderTransaction struct {
	UUID            string               `json:"uuid"`
	AccountID       string               `json:"accountId"`
	Description     string               `json:"description"`
	Amount          float64              `json:"amount"`
	Type            TransactionDirection `json:"type"`
	TransactionType string               `json:"transactionType"`
	TransactionDate string               `json:"transactionDate"`
	RunningBalance  *float64             `json:"runningBalance,omitempty"`
}

// AnalyticsTransaction is the normalized, categorized internal representation.
// Amount is always a magnitude; Type carries the direction. Built fresh on
// every projection and never mutated afterwards.
type AnalyticsTransaction struct {
	ID              string               `json:"id"`
	AccountID       string               `json:"accountId"`
	Description     string               `json:"description"`
	Amount          float64              `json:"amount"`
	Type            TransactionDirection `json:"type"`
	Date            string               `json:"date"`
	Category        Category             `json:"category"`
	Merchant        string               `json:"normalizedMerchant"`
	TransactionType string               `json:"transactionType"`
}
