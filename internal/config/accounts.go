package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/stevenh6696/bookkeeping-notebook/internal/models"
)

// accountEntry is one item of the accounts list in the accounts file:
//
//	accounts:
//	  - name: Visa
//	    prefix: visa_statement_
//	    type: credit
//	    negative_separator: Purchases
type accountEntry struct {
	Name              string `mapstructure:"name"`
	Prefix            string `mapstructure:"prefix"`
	Type              string `mapstructure:"type"`
	NegativeSeparator string `mapstructure:"negative_separator"`
}

// LoadAccounts reads the account configuration file (YAML, JSON or TOML,
// by extension). Account order in the file is the order prefixes are
// tried in.
func LoadAccounts(path string) ([]models.Account, error) {
	v, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var raw []accountEntry
	if err := v.UnmarshalKey("accounts", &raw); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	return parseAccounts(raw)
}

// readFile reads the accounts file, which also holds the category list.
func readFile(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read accounts file: %w", err)
	}
	return v, nil
}

func parseAccounts(raw []accountEntry) ([]models.Account, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("no accounts configured")
	}

	var errors []string
	seen := make(map[string]bool, len(raw))
	accounts := make([]models.Account, 0, len(raw))
	for i, r := range raw {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			errors = append(errors, fmt.Sprintf("account %d has no name", i+1))
			continue
		}
		if seen[name] {
			errors = append(errors, fmt.Sprintf("account %q is configured twice", name))
			continue
		}
		seen[name] = true

		signType, err := models.ParseSignType(r.Type)
		if err != nil {
			errors = append(errors, fmt.Sprintf("account %q: %v", name, err))
			continue
		}
		accounts = append(accounts, models.Account{
			Name:              name,
			Prefix:            r.Prefix,
			Type:              signType,
			NegativeSeparator: r.NegativeSeparator,
		})
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("invalid accounts configuration:\n- %s", strings.Join(errors, "\n- "))
	}
	return accounts, nil
}

// AccountNames returns the configured account names in file order.
func AccountNames(accounts []models.Account) []string {
	names := make([]string, len(accounts))
	for i, a := range accounts {
		names[i] = a.Name
	}
	return names
}
