package history

import (
	"context"
	"github.com/CrossPunks/marketplace-engine/internal/config"
	"github.com/CrossPunks/marketplace-engine/internal/entity"
	"github.com/aws/aws-sdk-go/aws/credentials"
	awssigner "github.com/aws/aws-sdk-go/aws/signer/v4"
	"github.com/olivere/elastic/v7"
	"github.com/patrickmn/go-cache"
	"github.com/sha1sum/aws_signing_client"
	"go.uber.org/zap"
	"strings"
	"time"
)

// Index buffers settlement records and bulk-persists them to Elasticsearch.
// It is a non-authoritative mirror of the engine's own effects; the bolt
// repositories remain the source of truth.
type Index interface {
	GetClient() *elastic.Client

	InstallIndices()

	AddIndexRequest(index string, entity entity.Entity)
	GetRequests() []Request
	ClearRequests()

	BatchPersist() bool
	Persist() int
}

type index struct {
	client  *elastic.Client
	cache   *cache.Cache
	refresh string
}

type Request struct {
	Index  string
	Entity entity.Entity
}

func New() (Index, error) {
	client, err := newClient()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("History: Failed to create ES client")
	}

	return index{client, cache.New(5*time.Minute, 10*time.Minute), config.Get().ElasticSearch.Refresh}, err
}

func newClient() (*elastic.Client, error) {
	opts := []elastic.ClientOptionFunc{
		elastic.SetURL(strings.Join(config.Get().ElasticSearch.Hosts, ",")),
		elastic.SetSniff(config.Get().ElasticSearch.Sniff),
		elastic.SetHealthcheck(config.Get().ElasticSearch.HealthCheck),
	}

	if config.Get().ElasticSearch.Debug {
		opts = append(opts, elastic.SetTraceLog(ElasticLogger{}))
	}

	if config.Get().ElasticSearch.Username != "" {
		opts = append(opts, elastic.SetBasicAuth(
			config.Get().ElasticSearch.Username,
			config.Get().ElasticSearch.Password,
		))
	}

	if config.Get().ElasticSearch.AwsSigned {
		creds := credentials.NewStaticCredentials(config.Get().Aws.AccessKey, config.Get().Aws.SecretKey, "")
		signer := awssigner.NewSigner(creds)

		awsClient, err := aws_signing_client.New(signer, nil, "es", config.Get().Aws.Region)
		if err != nil {
			return nil, err
		}
		opts = append(opts, elastic.SetHttpClient(awsClient))
	}

	return elastic.NewClient(opts...)
}

func (i index) GetClient() *elastic.Client {
	return i.client
}

func (i index) InstallIndices() {
	zap.L().Info("History: Install indices")

	for _, idx := range []Indices{MarketActionIndex, ErrorIndex} {
		if err := i.createIndex(idx.Get()); err != nil {
			zap.S().With(zap.Error(err)).Fatalf("History: Failed to create index %s", idx.Get())
		}
	}
}

func (i index) createIndex(index string) error {
	ctx := context.Background()

	exists, err := i.client.IndexExists(index).Do(ctx)
	if err != nil {
		return err
	}

	if !exists {
		createIndex, err := i.client.CreateIndex(index).Do(ctx)
		if err != nil {
			return err
		}

		if createIndex.Acknowledged {
			zap.S().Infof("History: Created index %s", index)
		}
	}

	return nil
}

func (i index) AddIndexRequest(index string, entity entity.Entity) {
	zap.L().With(
		zap.String("index", index),
		zap.String("slug", entity.Slug()),
	).Debug("History: AddIndexRequest")

	i.cache.Set(entity.Slug(), Request{index, entity}, cache.DefaultExpiration)
}

func (i index) GetRequests() []Request {
	requests := make([]Request, 0)

	for _, item := range i.cache.Items() {
		requests = append(requests, item.Object.(Request))
	}

	return requests
}

func (i index) ClearRequests() {
	i.cache.Flush()
}

func (i index) BatchPersist() bool {
	if len(i.GetRequests()) < config.Get().ElasticSearch.BulkPersistCount {
		return false
	}

	start := time.Now()
	actions := i.Persist()

	zap.L().With(
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("actions", actions),
	).Info("History: Persisting data")

	return true
}

func (i index) Persist() int {
	requests := i.GetRequests()

	bulk := i.client.Bulk()
	for _, r := range requests {
		bulk.Add(elastic.NewBulkIndexRequest().Index(r.Index).Id(r.Entity.Slug()).Doc(r.Entity))
	}

	actions := bulk.NumberOfActions()
	if actions != 0 {
		i.persist(bulk)
	}

	i.ClearRequests()

	return actions
}

func (i index) persist(bulk *elastic.BulkService) {
	zap.S().Debugf("History: Persisting %d actions", bulk.NumberOfActions())

	response, err := bulk.Refresh(i.refresh).Do(context.Background())
	if err != nil {
		zap.L().With(zap.Error(err)).Error("History: Failed to persist requests")
		return
	}

	for _, failed := range response.Failed() {
		zap.L().With(
			zap.Any("error", failed.Error),
			zap.String("index", failed.Index),
			zap.String("id", failed.Id),
		).Error("History: Failed to persist request")
	}
}

type ElasticLogger struct{}

func (l ElasticLogger) Printf(format string, v ...interface{}) {
	zap.S().Debugf(format, v...)
}
