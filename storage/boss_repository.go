// Package storage keeps the boss catalog: boss records and tier lists live in
// badger, boss names are also indexed in bluge for fuzzy lookups.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"raid-lab/domain"
	raiderrors "raid-lab/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

const (
	bossPrefix = "boss:"
	tierPrefix = "tier:"
)

var (
	_ domain.BossResolver = (*BossRepository)(nil)
	_ domain.TierCatalog  = (*BossRepository)(nil)
)

type BossRepository struct {
	db    *badger.DB
	index *BossIndex
	log   *slog.Logger
}

func NewBossRepository(db *badger.DB, index *BossIndex, log *slog.Logger) *BossRepository {
	return &BossRepository{db: db, index: index, log: log}
}

func bossKey(name string) []byte {
	return []byte(bossPrefix + domain.NormalizeName(name))
}

func tierKey(tier int) []byte {
	return []byte(fmt.Sprintf("%s%02d", tierPrefix, tier))
}

// SaveTier stores a tier list in order together with one record per boss.
func (r *BossRepository) SaveTier(tier int, names []string) error {
	names = lo.Uniq(lo.FilterMap(names, func(name string, _ int) (string, bool) {
		name = strings.TrimSpace(name)
		return name, name != ""
	}))
	if len(names) == 0 {
		return raiderrors.ErrEmptyCatalog
	}
	list, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("marshal tier %d: %w", tier, err)
	}

	bosses := lo.Map(names, func(name string, _ int) domain.Boss {
		return domain.Boss{Name: name, Tier: tier}
	})
	err = r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(tierKey(tier), list); err != nil {
			return err
		}
		for _, boss := range bosses {
			data, err := json.Marshal(boss)
			if err != nil {
				return err
			}
			if err := txn.Set(bossKey(boss.Name), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if r.index == nil {
		return nil
	}
	for _, boss := range bosses {
		if err := r.index.Index(boss); err != nil {
			return fmt.Errorf("index %s: %w", boss.Name, err)
		}
	}
	return nil
}

// Seed stores every tier of the catalog.
func (r *BossRepository) Seed(catalog map[int][]string) error {
	for tier, names := range catalog {
		if err := r.SaveTier(tier, names); err != nil {
			return err
		}
	}
	return nil
}

// ResolveBoss looks the boss up by exact name first, then through the fuzzy
// index.
func (r *BossRepository) ResolveBoss(name string) (domain.Boss, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Boss{}, raiderrors.ErrUnknownBoss
	}
	boss, err := r.getBoss(name)
	if err == nil {
		return boss, nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Boss{}, err
	}
	if r.index == nil {
		return domain.Boss{}, fmt.Errorf("%s: %w", name, raiderrors.ErrUnknownBoss)
	}

	closest, ok, err := r.index.Search(context.Background(), name)
	if err != nil {
		return domain.Boss{}, err
	}
	if !ok {
		return domain.Boss{}, fmt.Errorf("%s: %w", name, raiderrors.ErrUnknownBoss)
	}
	r.log.Debug("Boss resolved by fuzzy search", "input", name, "boss", closest)
	boss, err = r.getBoss(closest)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Boss{}, fmt.Errorf("%s: %w", name, raiderrors.ErrUnknownBoss)
	}
	return boss, err
}

func (r *BossRepository) getBoss(name string) (domain.Boss, error) {
	var boss domain.Boss
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(bossKey(name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &boss)
		})
	})
	return boss, err
}

func (r *BossRepository) ResolveTierCatalog(tier int) ([]string, error) {
	var names []string
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tierKey(tier))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &names)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("tier %d: %w", tier, raiderrors.ErrUnknownTier)
	}
	return names, err
}

// Bosses lists every stored boss ordered by key.
func (r *BossRepository) Bosses() ([]domain.Boss, error) {
	var bosses []domain.Boss
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(bossPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var boss domain.Boss
				if err := json.Unmarshal(val, &boss); err != nil {
					return err
				}
				bosses = append(bosses, boss)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return bosses, err
}
