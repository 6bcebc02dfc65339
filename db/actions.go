// facade for accessing the DB
package db

import (
	"encoding/json"
	"github.com/boltdb/bolt"
)

// update (or create, if they don't exist yet) the given elements in the DB
func (m *BoltDBManager) Update(elements ...IBucketElement) error {
	if len(elements) == 0 {
		return nil
	}
	return m.boltDb.Update(func (tx *bolt.Tx) error {
		for _, element := range elements {
			if err := PutElement(tx, element); err != nil {
				return err
			}
		}
		return nil
	})
}

// update (or create) the given element as part of the given writable transaction
func PutElement(tx *bolt.Tx, element IBucketElement) error {
	bucket := element.Bucket()
	dbBucket := tx.Bucket(bucket)
	if dbBucket == nil {
		err := &ErrBucketNotFound{string(bucket)}
		logger.WithError(err).Errorf("error updating \"%s\" bucket", string(bucket))
		return err
	}
	key := element.Key()
	if dbBucket.Get(key) == nil {
		logger.Debugf("inserting element with key = \"%x\" into \"%s\" bucket", key, string(bucket))
		element.MarkInsert()
	} else {
		logger.Debugf("updating element with key = \"%x\" in \"%s\" bucket", key, string(bucket))
		element.MarkUpdate()
	}
	objectBytes, err := json.Marshal(element)
	if err != nil {
		logger.WithError(err).Errorf("error updating key = \"%x\" in \"%s\" bucket", key, string(bucket))
		return err
	}
	if err := dbBucket.Put(key, objectBytes); err != nil {
		logger.WithError(err).Errorf("error updating key = \"%x\" in \"%s\" bucket", key, string(bucket))
		return err
	}
	return nil
}

// fill the given element with the data stored for its key, as part of the given transaction
func GetElement(tx *bolt.Tx, element IBucketElement) error {
	bucket := element.Bucket()
	dbBucket := tx.Bucket(bucket)
	if dbBucket == nil {
		return &ErrBucketNotFound{string(bucket)}
	}
	key := element.Key()
	objectBytes := dbBucket.Get(key)
	if objectBytes == nil {
		return &ErrKeyNotFoundInBucket{string(bucket), string(key)}
	}
	return json.Unmarshal(objectBytes, element)
}

// insert the given element as part of the given writable transaction. ErrKeyExistsInBucket is returned if its key
// is already taken
func InsertElement(tx *bolt.Tx, element IBucketElement) error {
	bucket := element.Bucket()
	dbBucket := tx.Bucket(bucket)
	if dbBucket == nil {
		return &ErrBucketNotFound{string(bucket)}
	}
	if dbBucket.Get(element.Key()) != nil {
		return &ErrKeyExistsInBucket{string(bucket), string(element.Key())}
	}
	return PutElement(tx, element)
}

// delete the given elements as part of the given writable transaction. ErrKeyNotFoundInBucket is returned for an
// element that isn't stored
func DeleteElements(tx *bolt.Tx, elements ...IBucketElement) error {
	for _, element := range elements {
		bucket := element.Bucket()
		dbBucket := tx.Bucket(bucket)
		if dbBucket == nil {
			err := &ErrBucketNotFound{string(bucket)}
			logger.WithError(err).Errorf("error deleting elements from \"%s\" bucket", string(bucket))
			return err
		}
		key := element.Key()
		if dbBucket.Get(key) == nil {
			return &ErrKeyNotFoundInBucket{string(bucket), string(key)}
		}
		if err := dbBucket.Delete(key); err != nil {
			logger.WithError(err).Errorf("error deleting key = \"%x\" from \"%s\" bucket", key, string(bucket))
			return err
		}
	}
	return nil
}

// delete the given keys (if they exist) from the given bucket as part of the given writable transaction
func DeleteKeys(tx *bolt.Tx, bucket []byte, keys ...[]byte) error {
	dbBucket := tx.Bucket(bucket)
	if dbBucket == nil {
		err := &ErrBucketNotFound{string(bucket)}
		logger.WithError(err).Errorf("error deleting keys from \"%s\" bucket", string(bucket))
		return err
	}
	for _, key := range keys {
		if err := dbBucket.Delete(key); err != nil {
			logger.WithError(err).Errorf("error deleting key = \"%x\" from \"%s\" bucket", key, string(bucket))
			return err
		}
	}
	return nil
}

// a function that accepts the bucket element key and data and processes it using the implemented strategy
type BucketElementProcessingFunc func([]byte, []byte) error

// given a bucket and a processing function, process all elements in that bucket in key order
func (m *BoltDBManager) QueryBucket(bucket []byte, process BucketElementProcessingFunc) error {
	return m.boltDb.View(func (tx *bolt.Tx) error {
		return QueryBucketInTx(tx, bucket, process)
	})
}

// same as QueryBucket, as part of the given transaction
func QueryBucketInTx(tx *bolt.Tx, bucket []byte, process BucketElementProcessingFunc) error {
	dbBucket := tx.Bucket(bucket)
	if dbBucket == nil {
		err := &ErrBucketNotFound{string(bucket)}
		logger.WithError(err).Errorf("error querying \"%s\" bucket", string(bucket))
		return err
	}
	dbCursor := dbBucket.Cursor()
	for elementKey, elementBytes := dbCursor.First(); elementKey != nil; elementKey, elementBytes = dbCursor.Next() {
		if err := process(elementKey, elementBytes); err != nil {
			logger.WithError(err).Errorf("error querying \"%s\" bucket", string(bucket))
			return err
		}
	}
	return nil
}

// return the last key of the given bucket, or nil if the bucket is empty
func (m *BoltDBManager) LastKey(bucket []byte) ([]byte, error) {
	var last []byte
	if err := m.boltDb.View(func (tx *bolt.Tx) error {
		dbBucket := tx.Bucket(bucket)
		if dbBucket == nil {
			return &ErrBucketNotFound{string(bucket)}
		}
		if k, _ := dbBucket.Cursor().Last(); k != nil {
			last = append([]byte{}, k...)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return last, nil
}

// run the given function in a read-only transaction
func (m *BoltDBManager) View(fn func(tx *bolt.Tx) error) error {
	return m.boltDb.View(fn)
}

// run the given function in a writable transaction. Everything the function did is rolled back if it returns an error
func (m *BoltDBManager) Transaction(fn func(tx *bolt.Tx) error) error {
	return m.boltDb.Update(fn)
}
