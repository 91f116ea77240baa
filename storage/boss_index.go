package storage

import (
	"context"
	"fmt"

	"raid-lab/domain"

	"github.com/blugelabs/bluge"
)

const (
	nameField       = "name"
	maxFuzziness    = 2
	fuzzySearchTopN = 1
)

// BossIndex is a full-text index over boss names, used when a host
// mistypes a boss.
type BossIndex struct {
	writer *bluge.Writer
}

func NewBossIndex(writer *bluge.Writer) *BossIndex {
	return &BossIndex{writer: writer}
}

// NewInMemoryBossIndex opens an index that lives as long as the process.
func NewInMemoryBossIndex() (*BossIndex, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, fmt.Errorf("open boss index: %w", err)
	}
	return NewBossIndex(writer), nil
}

func (i *BossIndex) Index(boss domain.Boss) error {
	key := domain.NormalizeName(boss.Name)
	doc := bluge.NewDocument(key).
		AddField(bluge.NewKeywordField(nameField, key).StoreValue())
	return i.writer.Update(doc.ID(), doc)
}

// Search returns the normalized name of the closest indexed boss.
func (i *BossIndex) Search(ctx context.Context, name string) (string, bool, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return "", false, err
	}
	defer reader.Close()

	query := bluge.NewFuzzyQuery(domain.NormalizeName(name)).
		SetField(nameField).
		SetFuzziness(maxFuzziness)
	dmi, err := reader.Search(ctx, bluge.NewTopNSearch(fuzzySearchTopN, query))
	if err != nil {
		return "", false, err
	}
	match, err := dmi.Next()
	if err != nil || match == nil {
		return "", false, err
	}

	var found string
	err = match.VisitStoredFields(func(field string, value []byte) bool {
		if field == nameField {
			found = string(value)
			return false
		}
		return true
	})
	if err != nil {
		return "", false, err
	}
	return found, found != "", nil
}

func (i *BossIndex) Close() error {
	return i.writer.Close()
}
