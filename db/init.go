package db

import (
	"fmt"
	"github.com/boltdb/bolt"
	"github.com/dchest/uniuri"
	"os"
	"path/filepath"
)

// manages all operations against a single Bolt DB file
type BoltDBManager struct {
	path	string
	boltDb	*bolt.DB
}

// open the BoltDB in the given dir and make sure the given buckets exist in it. In case the DB exists in the given
// dir, then the existing DB will be used
func Open(dir string, buckets ...string) (*BoltDBManager, error) {
	dbPath := filepath.Join(dir, DatabaseFileName)
	logger.Infof("loading DB from %s ...", dir)
	if err := os.MkdirAll(dir, dbDirPerms); err != nil {
		logger.WithError(err).Errorf("failed to create DB dir %s", dir)
		return nil, err
	}
	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			logger.Infof("DB doesn't exist in %s. Creating new one...", dir)
		} else {
			logger.WithError(err).Errorf("failed to initialize DB at %s", dir)
			return nil, err
		}
	}
	boltDb, err := bolt.Open(dbPath, dbPerms, &bolt.Options{Timeout: dbOpenTimeout})
	if err != nil {
		logger.WithError(err).Errorf("failed to load DB from %s", dir)
		return nil, err
	}
	m := &BoltDBManager{path: dbPath, boltDb: boltDb}
	if err := m.initBuckets(append(buckets, Counters)...); err != nil {
		logger.WithError(err).Errorf("failed to initialize DB at %s", dir)
		_ = boltDb.Close()
		return nil, err
	}
	logger.Infof("DB loaded successfully from %s", dir)
	return m, nil
}

func (m *BoltDBManager) initBuckets(buckets ...string) error {
	return m.boltDb.Update(func (tx *bolt.Tx) error {
		for _, bucket := range buckets {
			logger.Debugf("validating existence of bucket \"%s\"", bucket)
			_, err := tx.CreateBucketIfNotExists([]byte(bucket))
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// path of the DB file
func (m *BoltDBManager) Path() string {
	return m.path
}

// close the underlying DB file
func (m *BoltDBManager) Close() error {
	return m.boltDb.Close()
}

// initializes a DB with the given buckets for testing and returns a cleanup function
func InitDbForTest(buckets ...string) (*BoltDBManager, func()) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("student_manager_test_db_%s", uniuri.New()))
	m, err := Open(path, buckets...)
	if err != nil {
		panic(err)
	}
	return m, func() {
		if err := m.Close(); err != nil {
			panic(err)
		}
		if err := os.RemoveAll(path); err != nil {
			panic(err)
		}
	}
}
