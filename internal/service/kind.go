package service

import (
	"fmt"
	"strings"
)

// Kind names one of the hierarchical collections.
type Kind string

const (
	KindAccounts              Kind = "accounts"
	KindAccountCategories     Kind = "account-categories"
	KindTransactionCategories Kind = "transaction-categories"
)

// Kinds lists every hierarchy kind in display order.
func Kinds() []Kind {
	return []Kind{KindAccounts, KindAccountCategories, KindTransactionCategories}
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) Title() string {
	switch k {
	case KindAccounts:
		return "Accounts"
	case KindAccountCategories:
		return "Account Categories"
	case KindTransactionCategories:
		return "Transaction Categories"
	default:
		return string(k)
	}
}
