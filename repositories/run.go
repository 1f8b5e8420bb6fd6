//go:generate go run go.uber.org/mock/mockgen -source=run.go -destination=../mocks/mock_run_repository.go -package=mocks
package repositories

import (
	"birdsong-lab/domain"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

const runPrefix = "run:"

type IRunRepository interface {
	Store(run RunRecord) error
	List(limit int) ([]RunRecord, error)
}

// RunRecord summarises one engine run over a phase of a task document.
type RunRecord struct {
	ID         uuid.UUID    `msgpack:"id"`
	Phase      domain.Phase `msgpack:"phase"`
	ConfigFile string       `msgpack:"config_file"`
	StartedAt  time.Time    `msgpack:"started_at"`
	FinishedAt time.Time    `msgpack:"finished_at"`
	Items      []RunItem    `msgpack:"items"`
}

type RunItem struct {
	BirdID string `msgpack:"bird_id"`
	Output string `msgpack:"output"`
	Error  string `msgpack:"error,omitempty"`
}

func (r RunRecord) Failed() int {
	n := 0
	for _, it := range r.Items {
		if it.Error != "" {
			n++
		}
	}
	return n
}

type RunRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewRunRepository(db *badger.DB, log *slog.Logger) *RunRepository {
	return &RunRepository{db: db, log: log}
}

func runKey(r RunRecord) string {
	return fmt.Sprintf("%s%020d:%s", runPrefix, r.StartedAt.UnixNano(), r.ID)
}

func DecodeRunRecord(val []byte) (RunRecord, error) {
	var run RunRecord
	err := msgpack.Unmarshal(val, &run)
	return run, err
}

func (r RunRepository) Store(run RunRecord) error {
	bytes, err := msgpack.Marshal(run)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(runKey(run)), bytes)
	})
}

// List returns the most recent runs first. A limit <= 0 returns every run.
func (r RunRepository) List(limit int) ([]RunRecord, error) {
	var runs []RunRecord
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(runPrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// In reverse mode Seek lands on the last key <= the seek key
		seekKey := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(runs) == limit {
				r.log.Debug(fmt.Sprintf("Maximum of %d runs reached", limit))
				return nil
			}
			var run RunRecord
			err := it.Item().Value(func(val []byte) (err error) {
				run, err = DecodeRunRecord(val)
				return err
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			runs = append(runs, run)
		}
		return nil
	})
	return runs, err
}
