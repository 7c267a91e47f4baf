package lending

import (
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// starterCatalog is the fixed stock the library opens with.
var starterCatalog = []CD{
	{ID: 1, Name: "Seventeenth Heaven", Type: "kpop", Quantity: 56, Artist: "Seventeen", ReleasedYear: 2023},
	{ID: 2, Name: "FML", Type: "kpop", Quantity: 23, Artist: "Seventeen", ReleasedYear: 2023},
	{ID: 3, Name: "17 Carat", Type: "kpop", Quantity: 65, Artist: "Seventeen", ReleasedYear: 2024},
	{ID: 4, Name: "Face the Sun", Type: "kpop", Quantity: 34, Artist: "Seventeen", ReleasedYear: 2020},
	{ID: 5, Name: "17 Is Right Here", Type: "kpop", Quantity: 64, Artist: "Seventeen", ReleasedYear: 2019},
	{ID: 6, Name: "5-Star", Type: "kpop", Quantity: 43, Artist: "Stray Kids", ReleasedYear: 2022},
	{ID: 7, Name: "Rock-Star", Type: "kpop", Quantity: 64, Artist: "Stray Kids", ReleasedYear: 2022},
	{ID: 8, Name: "ODDINARY", Type: "kpop", Quantity: 24, Artist: "Stray Kids", ReleasedYear: 2021},
	{ID: 9, Name: "Mixtape", Type: "kpop", Quantity: 12, Artist: "Stray Kids", ReleasedYear: 2018},
	{ID: 10, Name: "The Sound", Type: "kpop", Quantity: 54, Artist: "Stray Kids", ReleasedYear: 2017},
	{ID: 11, Name: "XOXO", Type: "kpop", Quantity: 76, Artist: "EXO", ReleasedYear: 2014},
	{ID: 12, Name: "The War", Type: "kpop", Quantity: 45, Artist: "EXO", ReleasedYear: 2017},
	{ID: 13, Name: "Don't Fight the Feeling", Type: "kpop", Quantity: 35, Artist: "EXO", ReleasedYear: 2016},
	{ID: 14, Name: "OBSESSION", Type: "kpop", Quantity: 98, Artist: "EXO", ReleasedYear: 2015},
}

// seedCatalog inserts the starter catalog iff the cds table is empty, so
// reopening the database is a no-op.
func (d *Database) seedCatalog() error {
	tx, err := d.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM cds)`); err != nil {
		return fmt.Errorf("check catalog: %w", err)
	}
	if exists {
		return nil
	}

	for _, cd := range starterCatalog {
		if _, err := tx.NamedExec(`INSERT INTO cds(cd_id, cd_name, cd_type, cd_quantity, cd_artist, cd_released_year)
            VALUES(:cd_id, :cd_name, :cd_type, :cd_quantity, :cd_artist, :cd_released_year)`, cd); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	d.log.Info("catalog seeded", zap.Int("titles", len(starterCatalog)))
	return nil
}

// GetCD fetches a single catalog title.
func (d *Database) GetCD(id int64) (*CD, error) {
	var cd CD
	err := d.db.Get(&cd, `SELECT cd_id, cd_name, cd_type, cd_quantity, cd_artist, cd_released_year
        FROM cds WHERE cd_id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCDNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cd %d: %w", id, err)
	}
	return &cd, nil
}

// AvailableCopies reports how many copies of the CD are on the shelf.
func (d *Database) AvailableCopies(id int64) (int64, error) {
	var quantity int64
	err := d.db.Get(&quantity, `SELECT cd_quantity FROM cds WHERE cd_id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrCDNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("available copies for cd %d: %w", id, err)
	}
	return quantity, nil
}

// ListCDs returns the whole catalog ordered by id.
func (d *Database) ListCDs() ([]*CD, error) {
	var cds []*CD
	if err := d.db.Select(&cds, `SELECT cd_id, cd_name, cd_type, cd_quantity, cd_artist, cd_released_year
        FROM cds ORDER BY cd_id`); err != nil {
		return nil, fmt.Errorf("list cds: %w", err)
	}
	return cds, nil
}
