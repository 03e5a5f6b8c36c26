/*
Package sqlstore provides an implementation of modelstore.Store over a
MySQL, PostgreSQL or SQLite database. Models are rows of a single table
keyed by name.
*/
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gluco-ml/gluco/feature"
	"github.com/gluco-ml/gluco/modelstore"
	"github.com/gluco-ml/gluco/storage"
	"github.com/juju/errors"
)

type sqlStore struct {
	db     *sql.DB
	driver storage.SQLDriver
	table  string
}

/*
New takes a database, its driver and a table prefix, ensures the models
table exists and returns a modelstore.Store on it.
*/
func New(ctx context.Context, db *sql.DB, driver storage.SQLDriver, prefix storage.TablePrefix) (modelstore.Store, error) {
	s := &sqlStore{db, driver, prefix.ModelsTable()}
	if err := s.init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *sqlStore) init(ctx context.Context) error {
	nameType, dataType := "TEXT", "TEXT"
	if s.driver == storage.MySQL {
		nameType, dataType = "VARCHAR(255)", "LONGTEXT"
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (name %s NOT NULL PRIMARY KEY, algorithm VARCHAR(32) NOT NULL, data %s NOT NULL)",
		s.driver.Quote(s.table), nameType, dataType)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return errors.Annotatef(err, "creating table %s", s.table)
	}
	return nil
}

func (s *sqlStore) Save(ctx context.Context, m *modelstore.Model) error {
	data, err := modelstore.Encode(m)
	if err != nil {
		return err
	}
	var stmt string
	if s.driver == storage.MySQL {
		stmt = fmt.Sprintf("INSERT INTO %s (name, algorithm, data) VALUES (?, ?, ?) "+
			"ON DUPLICATE KEY UPDATE algorithm = VALUES(algorithm), data = VALUES(data)", s.driver.Quote(s.table))
	} else {
		stmt = fmt.Sprintf("INSERT INTO %s (name, algorithm, data) VALUES (%s, %s, %s) "+
			"ON CONFLICT (name) DO UPDATE SET algorithm = excluded.algorithm, data = excluded.data",
			s.driver.Quote(s.table), s.driver.Placeholder(1), s.driver.Placeholder(2), s.driver.Placeholder(3))
	}
	if _, err := s.db.ExecContext(ctx, stmt, m.Name, string(m.Algorithm), string(data)); err != nil {
		return errors.Annotatef(err, "saving model %q", m.Name)
	}
	return nil
}

func (s *sqlStore) Load(ctx context.Context, name string, features []feature.Feature) (*modelstore.Model, error) {
	var data string
	stmt := fmt.Sprintf("SELECT data FROM %s WHERE name = %s", s.driver.Quote(s.table), s.driver.Placeholder(1))
	err := s.db.QueryRowContext(ctx, stmt, name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("model %s", name)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "loading model %q", name)
	}
	return modelstore.Decode([]byte(data), features)
}

func (s *sqlStore) Delete(ctx context.Context, name string) error {
	stmt := fmt.Sprintf("DELETE FROM %s WHERE name = %s", s.driver.Quote(s.table), s.driver.Placeholder(1))
	result, err := s.db.ExecContext(ctx, stmt, name)
	if err != nil {
		return errors.Annotatef(err, "deleting model %q", name)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.Trace(err)
	}
	if n == 0 {
		return errors.NotFoundf("model %s", name)
	}
	return nil
}

func (s *sqlStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT name FROM %s ORDER BY name", s.driver.Quote(s.table)))
	if err != nil {
		return nil, errors.Annotate(err, "listing models")
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Trace(err)
		}
		names = append(names, name)
	}
	return names, errors.Trace(rows.Err())
}

func (s *sqlStore) Close(ctx context.Context) error {
	return s.db.Close()
}
