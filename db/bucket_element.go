package db

import "time"

// implementors of this interface specify to which Bucket they should be put and what should be their unique Key
type IBucketElement interface {
	// get the key that should be associated with this element
	Key() []byte
	// get the name of the bucket that this element should be stored in
	Bucket() []byte
	// mark as created in the DB
	MarkInsert()
	// mark as updated in the DB
	MarkUpdate()
}

// a common struct that should be embedded into all implementors of IBucketElement
type ABucketElement struct {
	CreatedOn	time.Time	`json:"created_on"`
	UpdatedOn	time.Time	`json:"updated_on"`
}

func (e *ABucketElement) MarkInsert() {
	e.CreatedOn = time.Now().UTC()
	e.UpdatedOn = e.CreatedOn
}

func (e *ABucketElement) MarkUpdate() {
	e.UpdatedOn = time.Now().UTC()
}
