package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"uk.co.dudmesh.groupchat/internal/model"
)

// sqliteLog keeps a group's log in its own in-memory database, so nothing
// survives a restart. A shared-cache memory database lives only while some
// connection to it is open: keeper pins one that is never used for queries,
// so the pool may drop and reopen its own connection without losing the log.
// The pool is capped at one more connection, which serializes writers.
type sqliteLog struct {
	db     *sqlx.DB
	keeper *sqlx.Conn
}

type messageRow struct {
	ID        string `db:"ID"`
	Author    string `db:"Author"`
	Content   string `db:"Content"`
	Kind      int    `db:"Kind"`
	CreatedAt string `db:"CreatedAt"`
}

func SQLiteBackend(model.GroupID) (Log, error) {
	dbName := "groupchat-" + model.CreateID()
	db, err := sqlx.Connect("sqlite3", "file:"+dbName+"?mode=memory&cache=shared")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	keeper, err := db.Connx(context.Background())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("pinning database: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	log := &sqliteLog{db: db, keeper: keeper}
	if err := log.createTables(); err != nil {
		log.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	return log, nil
}

func (l *sqliteLog) createTables() error {
	_, err := l.db.Exec(`create table if not exists message(
		Seq       integer primary key autoincrement,
		ID        text not null,
		Author    text not null,
		Content   text not null,
		Kind      tinyint not null,
		CreatedAt text not null
	)`)
	if err != nil {
		return fmt.Errorf("creating message table: %w", err)
	}
	return nil
}

func (l *sqliteLog) Append(message model.Message) error {
	row := messageRow{
		ID:        string(message.ID),
		Author:    message.Author,
		Content:   message.Content,
		Kind:      int(message.Kind),
		CreatedAt: message.CreatedAt,
	}
	res, err := l.db.NamedExec(`insert into message
		(ID, Author, Content, Kind, CreatedAt)
		values(:ID, :Author, :Content, :Kind, :CreatedAt)`, row)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	if rows, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	} else if rows != 1 {
		return fmt.Errorf("expected 1 row to be affected, got %d", rows)
	}
	return nil
}

func (l *sqliteLog) Snapshot() ([]model.Message, error) {
	var rows []messageRow
	err := l.db.Select(&rows, `select ID, Author, Content, Kind, CreatedAt from message order by Seq`)
	if err != nil {
		return nil, fmt.Errorf("selecting messages: %w", err)
	}

	messages := make([]model.Message, len(rows))
	for i, row := range rows {
		messages[i] = model.Message{
			ID:        model.MessageID(row.ID),
			Author:    row.Author,
			Content:   row.Content,
			Kind:      model.ContentKind(row.Kind),
			CreatedAt: row.CreatedAt,
		}
	}
	return messages, nil
}

func (l *sqliteLog) Len() (int, error) {
	var count int
	if err := l.db.Get(&count, `select count(*) from message`); err != nil {
		return 0, fmt.Errorf("counting messages: %w", err)
	}
	return count, nil
}

func (l *sqliteLog) Close() error {
	return errors.Join(l.keeper.Close(), l.db.Close())
}
