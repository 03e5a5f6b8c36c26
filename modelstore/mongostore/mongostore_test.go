package mongostore

import (
	"os"
	"testing"

	"github.com/gluco-ml/gluco/modelstore/storetest"
	"github.com/stretchr/testify/suite"
	mgo "gopkg.in/mgo.v2"
)

type MongoTestSuite struct {
	storetest.Suite
	uri string
}

func (s *MongoTestSuite) SetupTest() {
	session, err := mgo.Dial(s.uri)
	s.Require().NoError(err)
	err = session.DB("").C("gluco_test_models").DropCollection()
	if err != nil && err.Error() != "ns not found" {
		s.Require().NoError(err)
	}
	s.Store = New(session, "gluco_test")
}

func TestMongo(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI is not set")
	}
	suite.Run(t, &MongoTestSuite{uri: uri})
}
