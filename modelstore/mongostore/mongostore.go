/*
Package mongostore provides an implementation of modelstore.Store backed by
a MongoDB collection on the default database of a session.
*/
package mongostore

import (
	"context"

	"github.com/gluco-ml/gluco/feature"
	"github.com/gluco-ml/gluco/modelstore"
	"github.com/juju/errors"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

type document struct {
	Name      string `bson:"_id"`
	Algorithm string `bson:"algorithm"`
	Data      string `bson:"data"`
}

type mongoStore struct {
	session    *mgo.Session
	collection string
}

/*
New takes a MongoDB session and a prefix and returns a modelstore.Store on
the prefix_models collection of the default database of the session.
*/
func New(session *mgo.Session, prefix string) modelstore.Store {
	return &mongoStore{session, prefix + "_models"}
}

func (ms *mongoStore) Save(ctx context.Context, m *modelstore.Model) error {
	data, err := modelstore.Encode(m)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err = ms.models().UpsertId(m.Name, &document{m.Name, string(m.Algorithm), string(data)})
	if err != nil {
		return errors.Annotatef(err, "saving model %q in mongo", m.Name)
	}
	return nil
}

func (ms *mongoStore) Load(ctx context.Context, name string, features []feature.Feature) (*modelstore.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var doc document
	err := ms.models().FindId(name).One(&doc)
	if err == mgo.ErrNotFound {
		return nil, errors.NotFoundf("model %s", name)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "loading model %q from mongo", name)
	}
	return modelstore.Decode([]byte(doc.Data), features)
}

func (ms *mongoStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := ms.models().RemoveId(name)
	if err == mgo.ErrNotFound {
		return errors.NotFoundf("model %s", name)
	}
	if err != nil {
		return errors.Annotatef(err, "deleting model %q from mongo", name)
	}
	return nil
}

func (ms *mongoStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var docs []document
	err := ms.models().Find(nil).Select(bson.M{"_id": 1}).Sort("_id").All(&docs)
	if err != nil {
		return nil, errors.Annotate(err, "listing models in mongo")
	}
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	return names, nil
}

func (ms *mongoStore) Close(ctx context.Context) error {
	ms.session.Close()
	return nil
}

func (ms *mongoStore) models() *mgo.Collection {
	return ms.session.DB("").C(ms.collection)
}
