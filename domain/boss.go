//go:generate go run go.uber.org/mock/mockgen -source=boss.go -destination=../mocks/mock_boss.go -package=mocks
package domain

import "strings"

// Boss is the metadata record of a raid target as returned by the catalog.
type Boss struct {
	Name string `json:"name"`
	Tier int    `json:"tier"`
}

func (b Boss) IsZero() bool {
	return b.Name == ""
}

// NormalizeName gives the lookup form of a boss or location name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// BossResolver resolves a boss by name.
type BossResolver interface {
	ResolveBoss(name string) (Boss, error)
}

// TierCatalog lists the bosses available in a raid tier, in catalog order.
type TierCatalog interface {
	ResolveTierCatalog(tier int) ([]string, error)
}
