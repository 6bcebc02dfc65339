package db

import (
	"github.com/boltdb/bolt"
)

// a named sequence counter holding the last value handed out
type Counter struct {
	ABucketElement
	ID	string	`json:"_id"`
	Seq	int		`json:"seq"`
}

func (c *Counter) Key() []byte {
	return []byte(c.ID)
}

func (c *Counter) Bucket() []byte {
	return []byte(Counters)
}

// increment the counter with the given id as part of the given writable transaction and return the new value. A
// missing counter starts from zero
func IncrementCounter(tx *bolt.Tx, id string) (int, error) {
	counter := &Counter{ID: id}
	if err := GetElement(tx, counter); err != nil {
		if _, ok := err.(*ErrKeyNotFoundInBucket); !ok {
			return 0, err
		}
	}
	counter.Seq++
	if err := PutElement(tx, counter); err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

// set the counter with the given id to the given value, creating it if needed
func (m *BoltDBManager) SetCounter(id string, seq int) error {
	return m.Update(&Counter{ID: id, Seq: seq})
}
