package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gluco-ml/gluco/config"
	"github.com/gluco-ml/gluco/feature"
	"github.com/gluco-ml/gluco/log"
	"github.com/gluco-ml/gluco/modelstore"
	"github.com/gluco-ml/gluco/modelstore/mongostore"
	"github.com/gluco-ml/gluco/modelstore/redisstore"
	"github.com/gluco-ml/gluco/modelstore/sqlstore"
	"github.com/gluco-ml/gluco/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/redis.v5"
)

/*
modelFlags locate a model either in a JSON file or, when a store URL is
set, under a name in a model store.
*/
type modelFlags struct {
	modelPath string
	storeURL  string
	name      string
	prefix    string
}

func (mf *modelFlags) register(cmd *cobra.Command, pathUsage string, defaultName string) {
	cmd.PersistentFlags().StringVarP(&(mf.modelPath), "model", "f", "", pathUsage)
	cmd.PersistentFlags().StringVar(&(mf.storeURL), "store", "", "URL of a model store (redis://, mongodb://, mysql://, postgres://, sqlite:// or a .db file) to use instead of model files")
	cmd.PersistentFlags().StringVarP(&(mf.name), "name", "n", defaultName, "name of the model in the store")
}

func (mf *modelFlags) resolve(cmd *cobra.Command, settings *config.Config) {
	if !cmd.Flags().Changed("store") {
		mf.storeURL = settings.Store.URL
	}
	mf.prefix = settings.Store.Prefix
}

func (mf *modelFlags) Validate(requirePath bool) error {
	if mf.storeURL == "" && requirePath && mf.modelPath == "" {
		return fmt.Errorf("required model flag was not set and no model store is configured")
	}
	if mf.storeURL != "" && mf.name == "" {
		return fmt.Errorf("required name flag was not set")
	}
	return nil
}

/*
save writes the model to the store when one is set, and to the model file,
or STDOUT when there is no store either.
*/
func (mf *modelFlags) save(ctx context.Context, m *modelstore.Model) error {
	if mf.storeURL != "" {
		store, err := openStore(ctx, mf.storeURL, mf.prefix)
		if err != nil {
			return err
		}
		defer store.Close(ctx)
		if err := store.Save(ctx, m); err != nil {
			return fmt.Errorf("saving model %s: %v", m.Name, err)
		}
		log.Logger().Info("saved model", zap.String("name", m.Name), zap.String("store", log.RedactDBURL(mf.storeURL)))
		if mf.modelPath == "" {
			return nil
		}
	}
	data, err := modelstore.Encode(m)
	if err != nil {
		return err
	}
	if mf.modelPath == "" {
		_, err = fmt.Println(string(data))
		return err
	}
	if err := os.WriteFile(mf.modelPath, data, 0o644); err != nil {
		return fmt.Errorf("writing model to %s: %v", mf.modelPath, err)
	}
	log.Logger().Info("wrote model", zap.String("path", mf.modelPath))
	return nil
}

/*
load reads the model from the store or the model file and checks it was
trained with the expected algorithm. Decision nodes refer to the given
features by name.
*/
func (mf *modelFlags) load(ctx context.Context, algorithm modelstore.Algorithm, features []feature.Feature) (*modelstore.Model, error) {
	var m *modelstore.Model
	if mf.storeURL != "" && mf.modelPath == "" {
		store, err := openStore(ctx, mf.storeURL, mf.prefix)
		if err != nil {
			return nil, err
		}
		defer store.Close(ctx)
		if m, err = store.Load(ctx, mf.name, features); err != nil {
			return nil, fmt.Errorf("loading model %s: %v", mf.name, err)
		}
	} else {
		data, err := os.ReadFile(mf.modelPath)
		if err != nil {
			return nil, fmt.Errorf("reading model from %s: %v", mf.modelPath, err)
		}
		if m, err = modelstore.Decode(data, features); err != nil {
			return nil, fmt.Errorf("parsing model from %s: %v", mf.modelPath, err)
		}
	}
	if m.Algorithm != algorithm {
		return nil, fmt.Errorf("model %s was trained with %s, not %s", m.Name, m.Algorithm, algorithm)
	}
	return m, nil
}

// openStore opens the model store behind a URL.
func openStore(ctx context.Context, url, prefix string) (modelstore.Store, error) {
	log.Logger().Debug("opening model store", zap.String("url", log.RedactDBURL(url)))
	switch {
	case strings.HasPrefix(url, storage.RedisPrefix):
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("parsing redis URL: %v", err)
		}
		return redisstore.New(redis.NewClient(opts), prefix), nil
	case strings.HasPrefix(url, storage.MongoPrefix):
		session, err := mgo.Dial(url)
		if err != nil {
			return nil, fmt.Errorf("connecting to mongo: %v", err)
		}
		return mongostore.New(session, prefix), nil
	case storage.IsSQL(url):
		db, driver, err := storage.OpenSQL(url)
		if err != nil {
			return nil, err
		}
		store, err := sqlstore.New(ctx, db, driver, storage.TablePrefix(prefix+"_"))
		if err != nil {
			db.Close()
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown model store %s", log.RedactDBURL(url))
}
