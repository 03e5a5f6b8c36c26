/*
Package modelstore persists trained classifiers under a name so that the
command line can grow or fit a model once and predict with it later.
*/
package modelstore

import (
	"encoding/json"
	"time"

	"github.com/gluco-ml/gluco/feature"
	"github.com/gluco-ml/gluco/nb"
	"github.com/gluco-ml/gluco/tree"
	treejson "github.com/gluco-ml/gluco/tree/json"
	"github.com/juju/errors"
)

// Algorithm names the kind of classifier held by a Model.
type Algorithm string

const (
	ID3        Algorithm = "id3"
	NaiveBayes Algorithm = "naive-bayes"
)

/*
Model is a named, trained classifier. Exactly one of Tree and NaiveBayes is
set, according to Algorithm.
*/
type Model struct {
	Name       string
	Algorithm  Algorithm
	TrainedAt  time.Time
	Tree       *tree.Tree
	NaiveBayes *nb.Model
}

type envelope struct {
	Name      string          `json:"name"`
	Algorithm Algorithm       `json:"algorithm"`
	TrainedAt time.Time       `json:"trained_at"`
	Model     json.RawMessage `json:"model"`
}

// NewID3Model wraps a decision tree trained now.
func NewID3Model(name string, t *tree.Tree) *Model {
	return &Model{Name: name, Algorithm: ID3, TrainedAt: time.Now().UTC(), Tree: t}
}

// NewNaiveBayesModel wraps a Naive Bayes model trained now.
func NewNaiveBayesModel(name string, m *nb.Model) *Model {
	return &Model{Name: name, Algorithm: NaiveBayes, TrainedAt: time.Now().UTC(), NaiveBayes: m}
}

/*
Encode returns the JSON encoding of a model: its name, algorithm and
training time around the encoding of the classifier itself.
*/
func Encode(m *Model) ([]byte, error) {
	if m.Name == "" {
		return nil, errors.NotValidf("model without name")
	}
	var (
		raw []byte
		err error
	)
	switch m.Algorithm {
	case ID3:
		if m.Tree == nil {
			return nil, errors.NotValidf("id3 model %s without tree", m.Name)
		}
		raw, err = treejson.Marshal(m.Tree)
	case NaiveBayes:
		if m.NaiveBayes == nil {
			return nil, errors.NotValidf("naive bayes model %s without parameters", m.Name)
		}
		raw, err = json.Marshal(m.NaiveBayes)
	default:
		return nil, errors.NotSupportedf("algorithm %q", m.Algorithm)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "encoding model %s", m.Name)
	}
	return json.Marshal(&envelope{m.Name, m.Algorithm, m.TrainedAt, raw})
}

/*
Decode takes the output of Encode and an optional slice of features that
decision trees refer to by name, and returns the decoded model.
*/
func Decode(data []byte, features []feature.Feature) (*Model, error) {
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, errors.Annotate(err, "decoding model")
	}
	m := &Model{Name: e.Name, Algorithm: e.Algorithm, TrainedAt: e.TrainedAt}
	var err error
	switch e.Algorithm {
	case ID3:
		m.Tree, err = treejson.Unmarshal(e.Model, features)
	case NaiveBayes:
		m.NaiveBayes = &nb.Model{}
		err = json.Unmarshal(e.Model, m.NaiveBayes)
		if err == nil && m.NaiveBayes.Statistics == nil {
			err = errors.NotValidf("naive bayes model without statistics")
		}
	default:
		return nil, errors.NotSupportedf("algorithm %q of model %s", e.Algorithm, e.Name)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "decoding model %s", e.Name)
	}
	return m, nil
}
