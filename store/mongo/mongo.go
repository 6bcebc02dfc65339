// Package mongo stores students and groups in MongoDB collections.
package mongo

import (
	"context"
	"time"

	"github.com/APB2021/student_manager/elements/groups"
	"github.com/APB2021/student_manager/elements/students"
	"github.com/APB2021/student_manager/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var logger = logrus.WithFields(logrus.Fields{"component": "mongo_store"})

const (
	// counter ids
	NIACounter		= "alumno_nia"
	GroupCounter	= "grupo_numero"

	// the NIA counter is set to this value when there are no students, so the first NIA is base + 1
	niaBase			= 1000
	defaultTimeout	= 10 * time.Second
)

type Config struct {
	URI					string
	Database			string
	Students			string
	Groups				string
	Counters			string
	// timeout of each single operation
	Timeout				time.Duration
}

type Store struct {
	client		*mongo.Client
	students	*mongo.Collection
	groups		*mongo.Collection
	counters	*mongo.Collection
	timeout		time.Duration
}

// connect to the configured MongoDB, create the indexes and reconcile the NIA counter with the stored students
func Open(ctx context.Context, config Config) (*Store, error) {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	logger.Infof("connecting to MongoDB database %s ...", config.Database)
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to MongoDB")
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "error connecting to MongoDB")
	}
	database := client.Database(config.Database)
	s := &Store{
		client:		client,
		students:	database.Collection(config.Students),
		groups:		database.Collection(config.Groups),
		counters:	database.Collection(config.Counters),
		timeout:	timeout,
	}
	if err := s.init(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	logger.Infof("connected to MongoDB database %s", config.Database)
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	if _, err := s.students.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:		bson.D{{Key: "nia", Value: 1}},
		Options:	options.Index().SetUnique(true),
	}); err != nil {
		return errors.Wrap(err, "error creating students index")
	}
	if _, err := s.groups.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:		bson.D{{Key: "nombreGrupo", Value: 1}},
		Options:	options.Index().SetUnique(true),
	}); err != nil {
		return errors.Wrap(err, "error creating groups index")
	}
	return s.syncNIACounter(ctx)
}

// set the NIA counter to the highest stored NIA, or to the base value when there are no students
func (s *Store) syncNIACounter(ctx context.Context) error {
	seq := niaBase
	last := &studentDocument{}
	err := s.students.FindOne(ctx, bson.D{}, options.FindOne().SetSort(bson.D{{Key: "nia", Value: -1}})).Decode(last)
	switch {
	case err == nil:
		seq = last.NIA
	case errors.Is(err, mongo.ErrNoDocuments):
	default:
		return errors.Wrap(err, "error reading the highest NIA")
	}
	if _, err := s.counters.UpdateOne(ctx, bson.M{"_id": NIACounter}, bson.M{"$set": bson.M{"seq": seq}},
		options.Update().SetUpsert(true)); err != nil {
		return errors.Wrap(err, "error setting the NIA counter")
	}
	logger.Debugf("NIA counter set to %d", seq)
	return nil
}

func (s *Store) nextSequence(ctx context.Context, id string) (int, error) {
	counter := &counterDocument{}
	err := s.counters.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)).Decode(counter)
	if err != nil {
		return 0, errors.Wrapf(err, "error incrementing counter %s", id)
	}
	return counter.Seq, nil
}

func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) findGroup(ctx context.Context, name string) (*groupDocument, error) {
	doc := &groupDocument{}
	if err := s.groups.FindOne(ctx, bson.M{"nombreGrupo": groups.NormalizeName(name)}).Decode(doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrGroupNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *Store) findStudent(ctx context.Context, nia int) (*studentDocument, error) {
	doc := &studentDocument{}
	if err := s.students.FindOne(ctx, bson.M{"nia": nia}).Decode(doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrStudentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *Store) findStudents(ctx context.Context, filter interface{}) ([]*students.Student, error) {
	cursor, err := s.students.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "nia", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "error listing students")
	}
	var docs []studentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "error listing students")
	}
	result := make([]*students.Student, 0, len(docs))
	for i := range docs {
		result = append(result, docs[i].toStudent())
	}
	return result, nil
}

func (s *Store) InsertStudent(ctx context.Context, student *students.Student) error {
	if err := store.CheckInsertable(student); err != nil {
		return err
	}
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	group, err := s.findGroup(ctx, student.Group.Name)
	if err != nil {
		return err
	}
	nia, err := s.nextSequence(ctx, NIACounter)
	if err != nil {
		return err
	}
	doc := &studentDocument{
		NIA:		nia,
		Name:		student.Name,
		Surname:	student.Surname,
		Gender:		string(student.Gender),
		BirthDate:	student.BirthDate,
		Cycle:		student.Cycle,
		Course:		student.Course,
		Group:		*group,
	}
	if _, err := s.students.InsertOne(ctx, doc); err != nil {
		return errors.Wrapf(err, "error inserting student %d", nia)
	}
	student.NIA = nia
	student.Group.Number = group.Number
	logger.Debugf("inserted student %d into group %s", nia, group.Name)
	return nil
}

func (s *Store) GetStudent(ctx context.Context, nia int) (*students.Student, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	doc, err := s.findStudent(ctx, nia)
	if err != nil {
		return nil, err
	}
	return doc.toStudent(), nil
}

func (s *Store) ListStudents(ctx context.Context) ([]*students.Student, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.findStudents(ctx, bson.D{})
}

func (s *Store) ListStudentsByGroup(ctx context.Context, groupName string) ([]*students.Student, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	group, err := s.findGroup(ctx, groupName)
	if err != nil {
		return nil, err
	}
	return s.findStudents(ctx, bson.M{"grupo.nombreGrupo": group.Name})
}

func (s *Store) UpdateStudentName(ctx context.Context, nia int, name string) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	result, err := s.students.UpdateOne(ctx, bson.M{"nia": nia}, bson.M{"$set": bson.M{"nombre": students.NormalizeText(name)}})
	if err != nil {
		return errors.Wrapf(err, "error updating student %d", nia)
	}
	if result.MatchedCount == 0 {
		return store.ErrStudentNotFound
	}
	return nil
}

func (s *Store) ChangeStudentGroup(ctx context.Context, nia int, groupName string) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	student, err := s.findStudent(ctx, nia)
	if err != nil {
		return err
	}
	group, err := s.findGroup(ctx, groupName)
	if err != nil {
		return err
	}
	if student.Group.Name == group.Name {
		return store.ErrSameGroup
	}
	if _, err := s.students.UpdateOne(ctx, bson.M{"nia": nia}, bson.M{"$set": bson.M{"grupo": group}}); err != nil {
		return errors.Wrapf(err, "error moving student %d to group %s", nia, group.Name)
	}
	return nil
}

func (s *Store) DeleteStudent(ctx context.Context, nia int) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	result, err := s.students.DeleteOne(ctx, bson.M{"nia": nia})
	if err != nil {
		return errors.Wrapf(err, "error deleting student %d", nia)
	}
	if result.DeletedCount == 0 {
		return store.ErrStudentNotFound
	}
	return nil
}

func (s *Store) DeleteStudentsByGroup(ctx context.Context, groupName string) (int, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	group, err := s.findGroup(ctx, groupName)
	if err != nil {
		return 0, err
	}
	result, err := s.students.DeleteMany(ctx, bson.M{"grupo.nombreGrupo": group.Name})
	if err != nil {
		return 0, errors.Wrapf(err, "error deleting students of group %s", group.Name)
	}
	return int(result.DeletedCount), nil
}

func (s *Store) insertGroup(ctx context.Context, g *groups.Group) error {
	if _, err := s.findGroup(ctx, g.Name); err == nil {
		return store.ErrGroupExists
	} else if err != store.ErrGroupNotFound {
		return err
	}
	number, err := s.nextSequence(ctx, GroupCounter)
	if err != nil {
		return err
	}
	if _, err := s.groups.InsertOne(ctx, &groupDocument{Number: number, Name: g.Name}); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrGroupExists
		}
		return errors.Wrapf(err, "error inserting group %s", g.Name)
	}
	g.Number = number
	return nil
}

func (s *Store) InsertGroup(ctx context.Context, g *groups.Group) error {
	g.Name = groups.NormalizeName(g.Name)
	if g.Name == "" {
		return groups.ErrInvalidName
	}
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.insertGroup(ctx, g)
}

func (s *Store) GetGroup(ctx context.Context, name string) (*groups.Group, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	doc, err := s.findGroup(ctx, name)
	if err != nil {
		return nil, err
	}
	return doc.toGroup(), nil
}

func (s *Store) EnsureGroup(ctx context.Context, name string) (*groups.Group, error) {
	group := groups.New(name)
	if group.Name == "" {
		return nil, groups.ErrInvalidName
	}
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	doc, err := s.findGroup(ctx, group.Name)
	if err == nil {
		return doc.toGroup(), nil
	}
	if err != store.ErrGroupNotFound {
		return nil, err
	}
	logger.Infof("creating missing group %s", group.Name)
	if err := s.insertGroup(ctx, group); err != nil {
		// lost a race against a concurrent creation
		if err == store.ErrGroupExists {
			if doc, err := s.findGroup(ctx, group.Name); err == nil {
				return doc.toGroup(), nil
			}
		}
		return nil, err
	}
	return group, nil
}

func (s *Store) ListGroups(ctx context.Context) ([]*groups.Group, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	cursor, err := s.groups.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "nombreGrupo", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "error listing groups")
	}
	var docs []groupDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "error listing groups")
	}
	result := make([]*groups.Group, 0, len(docs))
	for i := range docs {
		result = append(result, docs[i].toGroup())
	}
	return result, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
