package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
)

// TemplateBankEntry holds the source parameters of one search template.
type TemplateBankEntry struct {
	TemplateID int64
	Mass1      float64
	Mass2      float64
	Spin1z     float64
	Spin2z     float64
}

// BankStore is an opened template bank. Entries are fetched by template id
// on demand; banks routinely hold hundreds of thousands of templates.
type BankStore struct {
	*sql.DB
	Path string
	Size int64
}

// OpenBank opens a template bank store file.
func OpenBank(path string) (*BankStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &StoreAccessError{Path: path, Err: err}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreAccessError{Path: path, Err: err}
	}

	b := &BankStore{DB: db, Path: path}
	if err := db.QueryRow("SELECT COUNT(*) FROM bank").Scan(&b.Size); err != nil {
		db.Close()
		return nil, &StoreAccessError{Path: path, Err: fmt.Errorf("failed to read bank: %w", err)}
	}
	return b, nil
}

// Template fetches one bank entry by template id. A template id recorded on
// a trigger but absent from the bank is a JoinResolutionError.
func (b *BankStore) Template(templateID int64) (TemplateBankEntry, error) {
	entry := TemplateBankEntry{TemplateID: templateID}
	err := b.QueryRow(`SELECT mass1, mass2, spin1z, spin2z
		FROM bank WHERE template_id = ?`, templateID).Scan(
		&entry.Mass1,
		&entry.Mass2,
		&entry.Spin1z,
		&entry.Spin2z,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return TemplateBankEntry{}, &JoinResolutionError{
			Path: b.Path,
			Key:  fmt.Sprintf("template_id %d", templateID),
		}
	}
	if err != nil {
		return TemplateBankEntry{}, &StoreAccessError{Path: b.Path, Err: fmt.Errorf("failed to fetch template %d: %w", templateID, err)}
	}
	return entry, nil
}
