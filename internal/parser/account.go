package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/stevenh6696/bookkeeping-notebook/internal/models"
)

// ResolveAccount returns the first configured account whose statement
// prefix is a prefix of the file's base name. Accounts without a prefix
// never match; overlapping prefixes are resolved by configuration order.
func ResolveAccount(accounts []models.Account, filename string) (models.Account, error) {
	base := filepath.Base(filename)
	for _, acct := range accounts {
		if acct.Prefix == "" {
			continue
		}
		if strings.HasPrefix(base, acct.Prefix) {
			return acct, nil
		}
	}
	return models.Account{}, fmt.Errorf("%s: %w", base, ErrNoMatchingAccount)
}
