package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType 流水类型
type TransactionType string

const (
	TxInvestment TransactionType = "INVESTMENT"
	TxReturn     TransactionType = "RETURN"
	TxReversal   TransactionType = "REVERSAL"
)

// Transaction 资金流水，只追加不修改
type Transaction struct {
	gorm.Model
	UserID       uint            `gorm:"column:user_id;index;not null"`
	InvestmentID *uint           `gorm:"column:investment_id;index"`
	Type         TransactionType `gorm:"column:type;type:varchar(16);not null"`
	Amount       decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null"`
	Reference    string          `gorm:"column:reference;type:varchar(32);uniqueIndex;not null"`
}

func (Transaction) TableName() string {
	return "transactions"
}
