package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/juju/errors"
	"github.com/juju/mgo/v3"
	"github.com/juju/mgo/v3/bson"
	"github.com/smallbiznis/labform/internal/labform/domain"
	"github.com/smallbiznis/labform/pkg/docstore"
	"go.uber.org/zap"
)

const labFormsC = "labforms"

// labFormDoc uses the record's camelCase field names; _id holds the
// snowflake id.
type labFormDoc struct {
	DocID         int64     `bson:"_id"`
	CarNo         string    `bson:"carNo"`
	SiNo          float64   `bson:"siNo"`
	PaddyName     string    `bson:"paddyName"`
	PaddyMoisture float64   `bson:"paddyMoisture"`
	RiceMoisture  float64   `bson:"riceMoisture"`
	PaddyWeight   float64   `bson:"paddyWeight"`
	Husk          float64   `bson:"husk"`
	Bran          float64   `bson:"bran"`
	Dust          float64   `bson:"dust"`
	DDC           float64   `bson:"ddc"`
	PaddyPercent  float64   `bson:"paddyPercent"`
	TotalRice     float64   `bson:"totalRice"`
	HuskToRice    float64   `bson:"huskToRice"`
	TotalHandRice float64   `bson:"totalHandRice"`
	CreatedBy     string    `bson:"createdBy"`
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

type mongoRepository struct {
	client *docstore.Client
	log    *zap.Logger

	indexed atomic.Bool
}

func NewMongoRepository(client *docstore.Client, log *zap.Logger) domain.Repository {
	return &mongoRepository{client: client, log: log.Named("labform.mongo")}
}

func (r *mongoRepository) collection() (*mgo.Collection, func(), error) {
	session, err := r.client.Session()
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	coll := session.DB("").C(labFormsC)
	r.ensureIndexes(func() error {
		return coll.EnsureIndex(mgo.Index{Key: []string{"carNo", "-createdAt"}, Background: true})
	})
	return coll, session.Close, nil
}

// ensureIndexes retries on every call until one attempt succeeds. Queries
// stay correct without the index, so a failure is only logged.
func (r *mongoRepository) ensureIndexes(ensure func() error) {
	if r.indexed.Load() {
		return
	}
	if err := ensure(); err != nil {
		r.log.Warn("ensuring lab form indexes", zap.String("collection", labFormsC), zap.Error(err))
		return
	}
	r.indexed.Store(true)
}

func (r *mongoRepository) Insert(_ context.Context, form *domain.LabForm) error {
	coll, closer, err := r.collection()
	if err != nil {
		return errors.Trace(err)
	}
	defer closer()

	if err := coll.Insert(toDoc(form)); err != nil {
		return errors.Annotatef(err, "inserting lab form %v", form.ID)
	}
	return nil
}

func (r *mongoRepository) List(_ context.Context, filter domain.ListFilter) ([]domain.LabForm, error) {
	coll, closer, err := r.collection()
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer closer()

	query := bson.M{}
	if filter.CarNo != "" {
		query["carNo"] = filter.CarNo
	}

	var docs []labFormDoc
	if err := coll.Find(query).Sort("-createdAt", "-_id").All(&docs); err != nil {
		return nil, errors.Annotate(err, "listing lab forms")
	}

	items := make([]domain.LabForm, 0, len(docs))
	for i := range docs {
		items = append(items, fromDoc(&docs[i]))
	}
	return items, nil
}

func (r *mongoRepository) Delete(_ context.Context, id snowflake.ID) (bool, error) {
	coll, closer, err := r.collection()
	if err != nil {
		return false, errors.Trace(err)
	}
	defer closer()

	err = coll.RemoveId(id.Int64())
	if err == mgo.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, errors.Annotatef(err, "removing lab form %v", id)
	}
	return true, nil
}

func toDoc(f *domain.LabForm) labFormDoc {
	return labFormDoc{
		DocID:         f.ID.Int64(),
		CarNo:         f.CarNo,
		SiNo:          f.SiNo,
		PaddyName:     f.PaddyName,
		PaddyMoisture: f.PaddyMoisture,
		RiceMoisture:  f.RiceMoisture,
		PaddyWeight:   f.PaddyWeight,
		Husk:          f.Husk,
		Bran:          f.Bran,
		Dust:          f.Dust,
		DDC:           f.DDC,
		PaddyPercent:  f.PaddyPercent,
		TotalRice:     f.TotalRice,
		HuskToRice:    f.HuskToRice,
		TotalHandRice: f.TotalHandRice,
		CreatedBy:     f.CreatedBy,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

func fromDoc(d *labFormDoc) domain.LabForm {
	return domain.LabForm{
		ID:            snowflake.ID(d.DocID),
		CarNo:         d.CarNo,
		SiNo:          d.SiNo,
		PaddyName:     d.PaddyName,
		PaddyMoisture: d.PaddyMoisture,
		RiceMoisture:  d.RiceMoisture,
		PaddyWeight:   d.PaddyWeight,
		Husk:          d.Husk,
		Bran:          d.Bran,
		Dust:          d.Dust,
		DDC:           d.DDC,
		PaddyPercent:  d.PaddyPercent,
		TotalRice:     d.TotalRice,
		HuskToRice:    d.HuskToRice,
		TotalHandRice: d.TotalHandRice,
		CreatedBy:     d.CreatedBy,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}
