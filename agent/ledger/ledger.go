// Package ledger is the financial transactions collaborator: plain CRUD and
// balance aggregates over Postgres, consumed by the financial specialist's
// tools.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Transaction type ids as seeded in transaction_types.
const (
	TypeIncome   int64 = 1
	TypeExpenses int64 = 2
	TypeTransfer int64 = 3
)

// Portuguese and English spellings the model may use for a transaction type.
var typeAliases = map[string]string{
	"INCOME":        "INCOME",
	"ENTRADA":       "INCOME",
	"GANHEI":        "INCOME",
	"RECEITA":       "INCOME",
	"SALÁRIO":       "INCOME",
	"EXPENSE":       "EXPENSES",
	"EXPENSES":      "EXPENSES",
	"GASTO":         "EXPENSES",
	"GASTEI":        "EXPENSES",
	"COMPRA":        "EXPENSES",
	"COMPREI":       "EXPENSES",
	"TRANSFER":      "TRANSFER",
	"TRANSFERENCIA": "TRANSFER",
}

var ErrInvalidType = errors.New("invalid transaction type")

// CanonicalType normalizes a model-provided type spelling to the canonical
// name stored in transaction_types.
func CanonicalType(name string) (string, error) {
	canonical, ok := typeAliases[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, name)
	}
	return canonical, nil
}

type Transaction struct {
	bun.BaseModel `bun:"table:transactions,alias:t"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Amount        float64   `bun:"amount" json:"amount"`
	TypeID        int64     `bun:"type" json:"type_id"`
	CategoryID    *int64    `bun:"category_id" json:"category_id,omitempty"`
	Description   string    `bun:"description,nullzero" json:"description,omitempty"`
	PaymentMethod string    `bun:"payment_method,nullzero" json:"payment_method,omitempty"`
	OccurredAt    time.Time `bun:"occurred_at,nullzero,default:now()" json:"occurred_at"`
	SourceText    string    `bun:"source_text" json:"source_text"`
}

type TransactionType struct {
	bun.BaseModel `bun:"table:transaction_types,alias:tt"`

	ID   int64  `bun:"id,pk" json:"id"`
	Type string `bun:"type" json:"type"`
}

// InsertInput carries one transaction to record. Either TypeID or TypeName
// may be set; with neither, the transaction defaults to an expense.
type InsertInput struct {
	Amount        float64
	SourceText    string
	OccurredAt    *time.Time
	TypeID        *int64
	TypeName      string
	CategoryID    *int64
	Description   string
	PaymentMethod string
}

type QueryFilters struct {
	Text     string
	TypeName string
	Date     string
	DateFrom string
	DateTo   string
	Limit    int
}

type Service struct {
	db *bun.DB
}

func New(db *bun.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Insert(ctx context.Context, in InsertInput) (Transaction, error) {
	typeID, err := s.resolveTypeID(ctx, in.TypeID, in.TypeName)
	if err != nil {
		return Transaction{}, err
	}

	tx := Transaction{
		Amount:        in.Amount,
		TypeID:        typeID,
		CategoryID:    in.CategoryID,
		Description:   in.Description,
		PaymentMethod: in.PaymentMethod,
		SourceText:    in.SourceText,
	}
	if in.OccurredAt != nil {
		tx.OccurredAt = in.OccurredAt.UTC()
	}

	if _, err := s.db.NewInsert().Model(&tx).Returning("id, occurred_at").Exec(ctx); err != nil {
		return Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return tx, nil
}

func (s *Service) Query(ctx context.Context, f QueryFilters) ([]Transaction, error) {
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	q := s.db.NewSelect().Model((*Transaction)(nil))

	if text := strings.TrimSpace(f.Text); text != "" {
		pattern := "%" + text + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("description ILIKE ?", pattern).WhereOr("source_text ILIKE ?", pattern)
		})
	}
	if typeName := strings.TrimSpace(f.TypeName); typeName != "" {
		canonical, err := CanonicalType(typeName)
		if err != nil {
			return nil, err
		}
		q = q.Where("type = (SELECT id FROM transaction_types WHERE UPPER(type) = ?)", canonical)
	}
	if f.Date != "" {
		q = q.Where("DATE(occurred_at) = ?", f.Date)
	}
	if f.DateFrom != "" && f.DateTo != "" {
		q = q.Where("DATE(occurred_at) BETWEEN ? AND ?", f.DateFrom, f.DateTo)
	}

	var txs []Transaction
	if err := q.Order("occurred_at DESC").Limit(limit).Scan(ctx, &txs); err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	return txs, nil
}

// TotalBalance sums income minus expenses over all transactions.
func (s *Service) TotalBalance(ctx context.Context) (float64, error) {
	return s.balance(ctx, "")
}

// DailyBalance sums income minus expenses for one local date (YYYY-MM-DD).
func (s *Service) DailyBalance(ctx context.Context, date string) (float64, error) {
	if strings.TrimSpace(date) == "" {
		return 0, errors.New("date is required")
	}
	return s.balance(ctx, date)
}

func (s *Service) balance(ctx context.Context, date string) (float64, error) {
	q := s.db.NewSelect().
		Model((*Transaction)(nil)).
		ColumnExpr("COALESCE(SUM(CASE WHEN t.type = ? THEN amount WHEN t.type = ? THEN -amount ELSE 0 END), 0)", TypeIncome, TypeExpenses)
	if date != "" {
		q = q.Where("DATE(occurred_at) = ?", date)
	}

	var balance float64
	if err := q.Scan(ctx, &balance); err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}
	return balance, nil
}

func (s *Service) resolveTypeID(ctx context.Context, typeID *int64, typeName string) (int64, error) {
	if name := strings.TrimSpace(typeName); name != "" {
		canonical, err := CanonicalType(name)
		if err != nil {
			return 0, err
		}
		var tt TransactionType
		err = s.db.NewSelect().Model(&tt).Where("UPPER(type) = ?", canonical).Limit(1).Scan(ctx)
		if err != nil {
			return 0, fmt.Errorf("%w: lookup %q: %v", ErrInvalidType, canonical, err)
		}
		return tt.ID, nil
	}
	if typeID != nil && *typeID > 0 {
		return *typeID, nil
	}
	return TypeExpenses, nil
}
