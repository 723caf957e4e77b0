package catalog

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS catalog_items (
	id                   INTEGER PRIMARY KEY,
	name                 TEXT NOT NULL,
	type_1               TEXT,
	type_2               TEXT,
	primary_color        TEXT,
	region               TEXT,
	generation           INTEGER,
	legendary            TEXT NOT NULL DEFAULT 'false',
	mythical             TEXT NOT NULL DEFAULT 'false',
	baby                 TEXT NOT NULL DEFAULT 'false',
	fossil               TEXT NOT NULL DEFAULT 'false',
	starter              TEXT NOT NULL DEFAULT 'false',
	mega_evolve          TEXT NOT NULL DEFAULT 'false',
	gigantamax           TEXT NOT NULL DEFAULT 'false',
	evolves              TEXT NOT NULL DEFAULT 'false',
	evolves_from_stone   TEXT NOT NULL DEFAULT 'false',
	evolves_from_trading TEXT NOT NULL DEFAULT 'false',
	popularity           REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_catalog_items_name ON catalog_items(name);
`

// #endregion schema

// #region store-struct
// Store holds the catalog records in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// busyTimeoutMS is how long a connection waits on a locked database.
const busyTimeoutMS = 5000

// NewStore opens a SQLite database and runs migrations. The pool holds a
// single connection, so writers from concurrent rounds queue instead of
// failing with SQLITE_BUSY.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)", dbPath, sep, busyTimeoutMS)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region columns
func selectColumns() string {
	cols := []string{AttrID, AttrName, AttrType1, AttrType2, AttrColor, AttrRegion, AttrGeneration}
	cols = append(cols, FlagAttributes...)
	cols = append(cols, AttrPopularity)
	return strings.Join(cols, ", ")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (Item, error) {
	var it Item
	var type1, type2, color, region sql.NullString
	var gen sql.NullInt64
	flags := make([]sql.NullString, len(FlagAttributes))

	dest := []any{&it.ID, &it.Name, &type1, &type2, &color, &region, &gen}
	for i := range flags {
		dest = append(dest, &flags[i])
	}
	dest = append(dest, &it.Popularity)

	if err := row.Scan(dest...); err != nil {
		return Item{}, err
	}
	it.Type1 = type1.String
	it.Type2 = type2.String
	it.Color = color.String
	it.Region = region.String
	if gen.Valid {
		it.Generation = int(gen.Int64)
	}
	it.Flags = make(map[string]string, len(FlagAttributes))
	for i, name := range FlagAttributes {
		v := False
		if flags[i].Valid && flags[i].String != "" {
			v = flags[i].String
		}
		it.Flags[name] = v
	}
	return it, nil
}

func (s *Store) queryItems(query string, args ...any) ([]Item, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// whereClause renders an AND-joined condition list. Attribute names are
// checked against the schema before they reach the SQL text.
func whereClause(filter Filter) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	keys := make([]string, 0, len(filter))
	for k := range filter {
		if !IsAttribute(k) {
			return "", nil, fmt.Errorf("filter %q: %w", k, ErrUnknownAttribute)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		conds = append(conds, k+" = ?")
		args = append(args, filterArg(k, filter[k]))
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func filterArg(attr, value string) any {
	switch attr {
	case AttrID, AttrGeneration:
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	case AttrPopularity:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return value
}

// #endregion columns

// #region queries
// AllItems returns every record in ascending id order.
func (s *Store) AllItems() ([]Item, error) {
	items, err := s.queryItems(`SELECT ` + selectColumns() + ` FROM catalog_items ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("all items: %w", err)
	}
	return items, nil
}

// FilterItems returns the records matching every filter entry.
func (s *Store) FilterItems(filter Filter) ([]Item, error) {
	where, args, err := whereClause(filter)
	if err != nil {
		return nil, err
	}
	items, err := s.queryItems(`SELECT `+selectColumns()+` FROM catalog_items`+where+` ORDER BY id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("filter items: %w", err)
	}
	return items, nil
}

// DistinctValues lists the non-empty values of attr in sorted order.
func (s *Store) DistinctValues(attr string) ([]string, error) {
	if !IsAttribute(attr) {
		return nil, fmt.Errorf("distinct %q: %w", attr, ErrUnknownAttribute)
	}
	rows, err := s.db.Query(
		`SELECT DISTINCT ` + attr + ` FROM catalog_items
		 WHERE ` + attr + ` IS NOT NULL AND ` + attr + ` != '' ORDER BY ` + attr,
	)
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", attr, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan distinct: %w", err)
		}
		values = append(values, textValue(v))
	}
	return values, rows.Err()
}

// GroupedCounts counts records per value of attr, optionally narrowed by filter.
func (s *Store) GroupedCounts(attr string, filter Filter) (map[string]int, error) {
	if !IsAttribute(attr) {
		return nil, fmt.Errorf("group %q: %w", attr, ErrUnknownAttribute)
	}
	where, args, err := whereClause(filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT `+attr+`, COUNT(*) FROM catalog_items`+where+` GROUP BY `+attr, args...)
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", attr, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var v any
		var n int
		if err := rows.Scan(&v, &n); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		counts[textValue(v)] += n
	}
	return counts, rows.Err()
}

// ItemByID looks up a single record.
func (s *Store) ItemByID(id int) (Item, bool, error) {
	it, err := scanItem(s.db.QueryRow(`SELECT `+selectColumns()+` FROM catalog_items WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return Item{}, false, nil
	}
	if err != nil {
		return Item{}, false, fmt.Errorf("item %d: %w", id, err)
	}
	return it, true, nil
}

// ItemByName looks up a record by exact name, falling back to a
// case-insensitive match.
func (s *Store) ItemByName(name string) (Item, bool, error) {
	it, err := scanItem(s.db.QueryRow(`SELECT `+selectColumns()+` FROM catalog_items WHERE name = ? ORDER BY id LIMIT 1`, name))
	if err == nil {
		return it, true, nil
	}
	if err != sql.ErrNoRows {
		return Item{}, false, fmt.Errorf("item %q: %w", name, err)
	}
	it, err = scanItem(s.db.QueryRow(`SELECT `+selectColumns()+` FROM catalog_items WHERE lower(name) = lower(?) ORDER BY id LIMIT 1`, name))
	if err == sql.ErrNoRows {
		return Item{}, false, nil
	}
	if err != nil {
		return Item{}, false, fmt.Errorf("item %q: %w", name, err)
	}
	return it, true, nil
}

// Names returns every item name in ascending id order.
func (s *Store) Names() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM catalog_items ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Count returns the number of catalog records.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM catalog_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func textValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// #endregion queries

// #region popularity
// PopularityWriter is the read-modify-write surface of popularity scores.
type PopularityWriter interface {
	Popularity(id int) (float64, bool, error)
	SetPopularity(id int, value float64) error
	DecayPopularityExcept(ids []int, factor float64) error
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

type popularityOps struct {
	q querier
}

// Popularity reads the score of one item. ok is false when the id is absent.
func (s *Store) Popularity(id int) (float64, bool, error) {
	return popularityOps{s.db}.Popularity(id)
}

// SetPopularity overwrites the score of one item.
func (s *Store) SetPopularity(id int, value float64) error {
	return popularityOps{s.db}.SetPopularity(id, value)
}

// DecayPopularityExcept multiplies every score by factor, skipping ids.
func (s *Store) DecayPopularityExcept(ids []int, factor float64) error {
	return popularityOps{s.db}.DecayPopularityExcept(ids, factor)
}

// UpdatePopularity runs fn in one transaction. Nothing fn wrote is kept
// when it returns an error.
func (s *Store) UpdatePopularity(fn func(PopularityWriter) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(popularityOps{tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit popularity: %w", err)
	}
	return nil
}

func (o popularityOps) Popularity(id int) (float64, bool, error) {
	var p sql.NullFloat64
	err := o.q.QueryRow(`SELECT popularity FROM catalog_items WHERE id = ?`, id).Scan(&p)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get popularity %d: %w", id, err)
	}
	return p.Float64, true, nil
}

func (o popularityOps) SetPopularity(id int, value float64) error {
	if _, err := o.q.Exec(`UPDATE catalog_items SET popularity = ? WHERE id = ?`, value, id); err != nil {
		return fmt.Errorf("set popularity %d: %w", id, err)
	}
	return nil
}

func (o popularityOps) DecayPopularityExcept(ids []int, factor float64) error {
	query := `UPDATE catalog_items SET popularity = popularity * ?`
	args := []any{factor}
	if len(ids) > 0 {
		query += ` WHERE id NOT IN (` + strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",") + `)`
		for _, id := range ids {
			args = append(args, id)
		}
	}
	if _, err := o.q.Exec(query, args...); err != nil {
		return fmt.Errorf("decay popularity: %w", err)
	}
	return nil
}

// ResetPopularity zeroes every score.
func (s *Store) ResetPopularity() error {
	if _, err := s.db.Exec(`UPDATE catalog_items SET popularity = 0`); err != nil {
		return fmt.Errorf("reset popularity: %w", err)
	}
	return nil
}

// PopularityStats reports min/max/avg over the catalog and the topN items.
func (s *Store) PopularityStats(topN int) (PopularityStats, error) {
	var st PopularityStats
	var minP, maxP, avgP sql.NullFloat64
	err := s.db.QueryRow(
		`SELECT MIN(popularity), MAX(popularity), AVG(popularity), COUNT(*) FROM catalog_items`,
	).Scan(&minP, &maxP, &avgP, &st.Total)
	if err != nil {
		return PopularityStats{}, fmt.Errorf("popularity stats: %w", err)
	}
	st.Min, st.Max, st.Avg = minP.Float64, maxP.Float64, avgP.Float64

	top, err := s.queryItems(
		`SELECT `+selectColumns()+` FROM catalog_items ORDER BY popularity DESC, id ASC LIMIT ?`, topN,
	)
	if err != nil {
		return PopularityStats{}, fmt.Errorf("top items: %w", err)
	}
	st.Top = top
	return st, nil
}

// #endregion popularity

// #region upsert
// Upsert inserts or replaces catalog records in one transaction.
// Existing popularity is kept unless the incoming item carries a non-zero score.
func (s *Store) Upsert(items []Item) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	cols := []string{AttrID, AttrName, AttrType1, AttrType2, AttrColor, AttrRegion, AttrGeneration}
	cols = append(cols, FlagAttributes...)
	cols = append(cols, AttrPopularity)

	updates := make([]string, 0, len(cols))
	for _, c := range cols[1 : len(cols)-1] {
		updates = append(updates, c+" = excluded."+c)
	}
	updates = append(updates,
		"popularity = CASE WHEN excluded.popularity != 0 THEN excluded.popularity ELSE catalog_items.popularity END")

	stmt, err := tx.Prepare(
		`INSERT INTO catalog_items (` + strings.Join(cols, ", ") + `)
		 VALUES (` + strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",") + `)
		 ON CONFLICT(id) DO UPDATE SET ` + strings.Join(updates, ", "),
	)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		args := []any{it.ID, it.Name, nullIfEmpty(it.Type1), nullIfEmpty(it.Type2),
			nullIfEmpty(it.Color), nullIfEmpty(it.Region), nullIfZero(it.Generation)}
		for _, f := range FlagAttributes {
			args = append(args, it.Flag(f))
		}
		args = append(args, it.Popularity)
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("upsert item %d: %w", it.ID, err)
		}
	}

	return tx.Commit()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

// #endregion upsert
